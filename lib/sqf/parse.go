package sqf

import (
	"fmt"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Error Type
// --------------------------------------------------------------------------

// SyntaxError reports the byte offset at which a literal could not be parsed.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("sqf: %s at offset %d", e.Msg, e.Offset)
}

// --------------------------------------------------------------------------
// Parser
// --------------------------------------------------------------------------

// Parse decodes a single literal value from s.
// Arrays become []any, strings become string, numbers become float64,
// booleans become bool and nil/any become nil.
// Trailing non-whitespace input is an error.
func Parse(s string) (any, error) {
	p := &parser{src: s}
	p.skipSpace()
	v, err := p.value(0)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected trailing input %q", p.rest(8))
	}
	return v, nil
}

// ParseArray is like Parse but requires the top level value to be an array.
func ParseArray(s string) ([]any, error) {
	v, err := Parse(s)
	if err != nil {
		return nil, err
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, &SyntaxError{Offset: 0, Msg: fmt.Sprintf("expected array, got %s", TypeName(v))}
	}
	return arr, nil
}

// maxDepth bounds array nesting so hostile input cannot exhaust the stack
const maxDepth = 512

type parser struct {
	src string
	pos int
}

func (p *parser) value(depth int) (any, error) {
	if p.pos >= len(p.src) {
		return nil, p.errorf("unexpected end of input")
	}

	switch c := p.src[p.pos]; {
	case c == '[':
		if depth >= maxDepth {
			return nil, p.errorf("arrays nested deeper than %d", maxDepth)
		}
		return p.array(depth + 1)
	case c == '"' || c == '\'':
		return p.string(c)
	case c == '-' || c == '+' || c == '.' || c == '$' || isDigit(c):
		return p.number()
	case isIdentStart(c):
		return p.word()
	default:
		return nil, p.errorf("unexpected character %q", c)
	}
}

func (p *parser) array(depth int) (any, error) {
	p.pos++ // '['
	arr := make([]any, 0)

	p.skipSpace()
	if p.consume(']') {
		return arr, nil
	}

	for {
		p.skipSpace()
		v, err := p.value(depth)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)

		p.skipSpace()
		if p.consume(',') {
			continue
		}
		if p.consume(']') {
			return arr, nil
		}
		if p.pos >= len(p.src) {
			return nil, p.errorf("unterminated array")
		}
		return nil, p.errorf("expected ',' or ']' but found %q", p.src[p.pos])
	}
}

// string reads a quoted string. The quote character is escaped by doubling it.
func (p *parser) string(quote byte) (any, error) {
	start := p.pos
	p.pos++

	var sb strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == quote {
			if p.pos+1 < len(p.src) && p.src[p.pos+1] == quote {
				sb.WriteByte(quote)
				p.pos += 2
				continue
			}
			p.pos++
			return sb.String(), nil
		}
		sb.WriteByte(c)
		p.pos++
	}

	return nil, &SyntaxError{Offset: start, Msg: "unterminated string"}
}

func (p *parser) number() (any, error) {
	start := p.pos

	if p.src[p.pos] == '-' || p.src[p.pos] == '+' {
		p.pos++
	}

	// hexadecimal: 0x1F or $1F
	if strings.HasPrefix(p.src[p.pos:], "0x") || strings.HasPrefix(p.src[p.pos:], "0X") || strings.HasPrefix(p.src[p.pos:], "$") {
		return p.hex(start)
	}

	for p.pos < len(p.src) && (isDigit(p.src[p.pos]) || p.src[p.pos] == '.') {
		p.pos++
	}
	if p.pos < len(p.src) && (p.src[p.pos] == 'e' || p.src[p.pos] == 'E') {
		p.pos++
		if p.pos < len(p.src) && (p.src[p.pos] == '-' || p.src[p.pos] == '+') {
			p.pos++
		}
		for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
			p.pos++
		}
	}

	f, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return nil, &SyntaxError{Offset: start, Msg: fmt.Sprintf("invalid number %q", p.src[start:p.pos])}
	}
	return f, nil
}

func (p *parser) hex(start int) (any, error) {
	neg := p.src[start] == '-'
	if p.src[p.pos] == '$' {
		p.pos++
	} else {
		p.pos += 2
	}

	digits := p.pos
	for p.pos < len(p.src) && isHexDigit(p.src[p.pos]) {
		p.pos++
	}

	u, err := strconv.ParseUint(p.src[digits:p.pos], 16, 64)
	if err != nil {
		return nil, &SyntaxError{Offset: start, Msg: fmt.Sprintf("invalid hex number %q", p.src[start:p.pos])}
	}
	f := float64(u)
	if neg {
		f = -f
	}
	return f, nil
}

// word reads the bare keywords the engine produces when serializing values.
func (p *parser) word() (any, error) {
	start := p.pos
	for p.pos < len(p.src) && isIdentPart(p.src[p.pos]) {
		p.pos++
	}

	switch w := p.src[start:p.pos]; strings.ToLower(w) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "nil", "any":
		return nil, nil
	default:
		return nil, &SyntaxError{Offset: start, Msg: fmt.Sprintf("unknown identifier %q", w)}
	}
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

func (p *parser) consume(c byte) bool {
	if p.pos < len(p.src) && p.src[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) rest(n int) string {
	end := p.pos + n
	if end > len(p.src) {
		end = len(p.src)
	}
	return p.src[p.pos:end]
}

func (p *parser) errorf(format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }
