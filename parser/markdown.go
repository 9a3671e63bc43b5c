package parser

import "strings"

const fenceMarker = "```"

type fence struct {
	lang string
	body string
	// closed is false when the block ran to the end of the input.
	closed bool
}

// findFences returns every ``` block in text, in order. An opening fence
// without a closing one extends to the end of the input.
func findFences(text string) []fence {
	var out []fence
	rest := text
	for {
		start := strings.Index(rest, fenceMarker)
		if start < 0 {
			return out
		}
		rest = rest[start+len(fenceMarker):]
		header, after, hasNL := strings.Cut(rest, "\n")
		var lang string
		if hasNL {
			lang = strings.TrimSpace(header)
			rest = after
		} else {
			// ```{...}``` on one line
			rest = header
		}
		if strings.ContainsAny(lang, " \t{[\"") {
			// Not an info string; content started on the fence line.
			rest = header + "\n" + after
			lang = ""
		}
		end := strings.Index(rest, fenceMarker)
		if end < 0 {
			out = append(out, fence{lang: lang, body: rest})
			return out
		}
		out = append(out, fence{lang: lang, body: rest[:end], closed: true})
		rest = rest[end+len(fenceMarker):]
	}
}
