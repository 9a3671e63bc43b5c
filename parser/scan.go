package parser

// scanDocuments returns the balanced {...} and [...] spans embedded in text.
// Brackets inside double-quoted strings are ignored. A span still open at the
// end of the input runs to the end so the repairing parser can close it.
func scanDocuments(text string) []string {
	var spans []string
	i := 0
	for i < len(text) {
		c := text[i]
		if c != '{' && c != '[' {
			i++
			continue
		}
		end := matchSpan(text, i)
		spans = append(spans, text[i:end])
		i = end
	}
	return spans
}

// matchSpan returns the index just past the container opening at start, or
// len(text) if it never closes.
func matchSpan(text string, start int) int {
	depth := 0
	inString := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(text)
}
