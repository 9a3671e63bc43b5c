package schema

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseType parses a type expression:
//
//	string | int | float | bool | null | media
//	Name               class or enum resolved through reg
//	T[]  T?            list, optional
//	map<K, V>          map
//	A | B              union
//	(A, B)  (A,)       tuple
//	"lit"  42  true    literals
//	(T)                grouping
//
// reg may be nil when the expression names no class or enum.
func ParseType(expr string, reg *Registry) (Type, error) {
	p := &exprParser{src: expr, reg: reg}
	t, err := p.union()
	if err != nil {
		return nil, err
	}
	p.space()
	if p.pos < len(p.src) {
		return nil, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return t, nil
}

// MustParseType is ParseType that panics on error.
func MustParseType(expr string, reg *Registry) Type {
	t, err := ParseType(expr, reg)
	if err != nil {
		panic(err)
	}
	return t
}

type exprParser struct {
	src string
	pos int
	reg *Registry
}

func (p *exprParser) errorf(format string, args ...any) error {
	return fmt.Errorf("schema: type %q at %d: %s", p.src, p.pos, fmt.Sprintf(format, args...))
}

func (p *exprParser) space() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *exprParser) accept(tok string) bool {
	p.space()
	if strings.HasPrefix(p.src[p.pos:], tok) {
		p.pos += len(tok)
		return true
	}
	return false
}

func (p *exprParser) union() (Type, error) {
	first, err := p.postfix()
	if err != nil {
		return nil, err
	}
	variants := []Type{first}
	for p.accept("|") {
		t, err := p.postfix()
		if err != nil {
			return nil, err
		}
		variants = append(variants, t)
	}
	if len(variants) == 1 {
		return first, nil
	}
	return UnionOf(variants...), nil
}

func (p *exprParser) postfix() (Type, error) {
	t, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.accept("[]"):
			t = ListOf(t)
		case p.accept("?"):
			t = OptionalOf(t)
		default:
			return t, nil
		}
	}
}

func (p *exprParser) primary() (Type, error) {
	p.space()
	if p.pos >= len(p.src) {
		return nil, p.errorf("unexpected end of expression")
	}
	switch c := p.src[p.pos]; {
	case c == '(':
		return p.group()
	case c == '"' || c == '\'':
		return p.stringLiteral(c)
	case c == '-' || (c >= '0' && c <= '9'):
		return p.intLiteral()
	case isIdentStart(c):
		return p.named()
	default:
		return nil, p.errorf("unexpected %q", c)
	}
}

func (p *exprParser) group() (Type, error) {
	p.pos++ // (
	first, err := p.union()
	if err != nil {
		return nil, err
	}
	items := []Type{first}
	tuple := false
	for p.accept(",") {
		tuple = true
		p.space()
		if p.pos < len(p.src) && p.src[p.pos] == ')' {
			break
		}
		t, err := p.union()
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	if !p.accept(")") {
		return nil, p.errorf("missing )")
	}
	if tuple {
		return TupleOf(items...), nil
	}
	return first, nil
}

func (p *exprParser) stringLiteral(q byte) (Type, error) {
	start := p.pos
	p.pos++
	for p.pos < len(p.src) && p.src[p.pos] != q {
		if p.src[p.pos] == '\\' {
			p.pos++
		}
		p.pos++
	}
	if p.pos >= len(p.src) {
		return nil, p.errorf("unterminated string literal")
	}
	p.pos++
	raw := p.src[start:p.pos]
	if q == '\'' {
		raw = `"` + strings.ReplaceAll(raw[1:len(raw)-1], `"`, `\"`) + `"`
	}
	s, err := strconv.Unquote(raw)
	if err != nil {
		return nil, p.errorf("bad string literal %s", raw)
	}
	return LiteralString(s), nil
}

func (p *exprParser) intLiteral() (Type, error) {
	start := p.pos
	p.pos++
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	i, err := strconv.ParseInt(p.src[start:p.pos], 10, 64)
	if err != nil {
		return nil, p.errorf("bad int literal %s", p.src[start:p.pos])
	}
	return LiteralInt(i), nil
}

func (p *exprParser) named() (Type, error) {
	start := p.pos
	for p.pos < len(p.src) && isIdentPart(p.src[p.pos]) {
		p.pos++
	}
	name := p.src[start:p.pos]
	switch name {
	case "string":
		return String, nil
	case "int":
		return Int, nil
	case "float":
		return Float, nil
	case "bool":
		return Bool, nil
	case "null":
		return Null, nil
	case "media", "image", "audio":
		return Media, nil
	case "true":
		return LiteralBool(true), nil
	case "false":
		return LiteralBool(false), nil
	case "map":
		return p.mapType()
	}
	if t, ok := p.reg.Resolve(name); ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w: %s in %q", ErrUnresolved, name, p.src)
}

func (p *exprParser) mapType() (Type, error) {
	if !p.accept("<") {
		return nil, p.errorf("expected < after map")
	}
	k, err := p.union()
	if err != nil {
		return nil, err
	}
	if !p.accept(",") {
		return nil, p.errorf("expected , in map")
	}
	v, err := p.union()
	if err != nil {
		return nil, err
	}
	if !p.accept(">") {
		return nil, p.errorf("expected > closing map")
	}
	return MapOf(k, v), nil
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9') || c == '.'
}
