package bejvalue

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// ParseText parses a JSON text document into a Value tree, giving the CLI
// and tests something to feed the codec from a file on disk.
func ParseText(src []byte) (Value, error) {
	p := &textParser{src: src}
	p.skipSpace()
	v, err := p.parseValue()
	if err != nil {
		return Value{}, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return Value{}, fmt.Errorf("bejvalue: trailing data at offset %d", p.pos)
	}
	return v, nil
}

type textParser struct {
	src []byte
	pos int
}

func (p *textParser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *textParser) peek() (byte, bool) {
	if p.pos >= len(p.src) {
		return 0, false
	}
	return p.src[p.pos], true
}

func (p *textParser) parseValue() (Value, error) {
	p.skipSpace()
	c, ok := p.peek()
	if !ok {
		return Value{}, fmt.Errorf("bejvalue: unexpected end of input")
	}

	switch {
	case c == '{':
		return p.parseObject()
	case c == '[':
		return p.parseArray()
	case c == '"':
		s, err := p.parseString()
		return String(s), err
	case c == 't':
		return p.parseLiteral("true", Bool(true))
	case c == 'f':
		return p.parseLiteral("false", Bool(false))
	case c == 'n':
		return p.parseLiteral("null", Null())
	case c == '-' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	default:
		return Value{}, fmt.Errorf("bejvalue: unexpected character %q at offset %d", c, p.pos)
	}
}

func (p *textParser) parseLiteral(lit string, v Value) (Value, error) {
	if p.pos+len(lit) > len(p.src) || string(p.src[p.pos:p.pos+len(lit)]) != lit {
		return Value{}, fmt.Errorf("bejvalue: invalid literal at offset %d", p.pos)
	}
	p.pos += len(lit)
	return v, nil
}

func (p *textParser) parseNumber() (Value, error) {
	start := p.pos
	if c, ok := p.peek(); ok && c == '-' {
		p.pos++
	}
	for {
		c, ok := p.peek()
		if !ok {
			break
		}
		if (c >= '0' && c <= '9') || c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-' {
			p.pos++
			continue
		}
		break
	}
	n, err := strconv.ParseFloat(string(p.src[start:p.pos]), 64)
	if err != nil {
		return Value{}, fmt.Errorf("bejvalue: invalid number at offset %d: %w", start, err)
	}
	return Number(n), nil
}

func (p *textParser) parseString() (string, error) {
	if c, ok := p.peek(); !ok || c != '"' {
		return "", fmt.Errorf("bejvalue: expected string at offset %d", p.pos)
	}
	p.pos++

	var b strings.Builder
	for {
		c, ok := p.peek()
		if !ok {
			return "", fmt.Errorf("bejvalue: unterminated string")
		}
		if c == '"' {
			p.pos++
			return b.String(), nil
		}
		if c == '\\' {
			p.pos++
			esc, ok := p.peek()
			if !ok {
				return "", fmt.Errorf("bejvalue: unterminated escape")
			}
			p.pos++
			switch esc {
			case '"', '\\', '/':
				b.WriteByte(esc)
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case 'b':
				b.WriteByte('\b')
			case 'f':
				b.WriteByte('\f')
			case 'u':
				r, err := p.parseUnicodeEscape()
				if err != nil {
					return "", err
				}
				b.WriteRune(r)
			default:
				return "", fmt.Errorf("bejvalue: invalid escape \\%c", esc)
			}
			continue
		}
		p.pos++
		b.WriteByte(c)
	}
}

func (p *textParser) parseUnicodeEscape() (rune, error) {
	if p.pos+4 > len(p.src) {
		return 0, fmt.Errorf("bejvalue: truncated unicode escape")
	}
	hi, err := strconv.ParseUint(string(p.src[p.pos:p.pos+4]), 16, 32)
	if err != nil {
		return 0, fmt.Errorf("bejvalue: invalid unicode escape: %w", err)
	}
	p.pos += 4

	r := rune(hi)
	if utf16.IsSurrogate(r) {
		if p.pos+6 <= len(p.src) && p.src[p.pos] == '\\' && p.src[p.pos+1] == 'u' {
			lo, err := strconv.ParseUint(string(p.src[p.pos+2:p.pos+6]), 16, 32)
			if err == nil {
				pair := utf16.DecodeRune(r, rune(lo))
				if pair != utf8.RuneError {
					p.pos += 6
					return pair, nil
				}
			}
		}
	}
	return r, nil
}

func (p *textParser) parseArray() (Value, error) {
	p.pos++ // '['
	var items []Value

	p.skipSpace()
	if c, ok := p.peek(); ok && c == ']' {
		p.pos++
		return Array(items), nil
	}

	for {
		v, err := p.parseValue()
		if err != nil {
			return Value{}, err
		}
		items = append(items, v)

		p.skipSpace()
		c, ok := p.peek()
		if !ok {
			return Value{}, fmt.Errorf("bejvalue: unterminated array")
		}
		if c == ',' {
			p.pos++
			continue
		}
		if c == ']' {
			p.pos++
			return Array(items), nil
		}
		return Value{}, fmt.Errorf("bejvalue: expected ',' or ']' at offset %d", p.pos)
	}
}

func (p *textParser) parseObject() (Value, error) {
	p.pos++ // '{'
	var members []Member

	p.skipSpace()
	if c, ok := p.peek(); ok && c == '}' {
		p.pos++
		return Object(members), nil
	}

	for {
		p.skipSpace()
		key, err := p.parseString()
		if err != nil {
			return Value{}, err
		}

		p.skipSpace()
		if c, ok := p.peek(); !ok || c != ':' {
			return Value{}, fmt.Errorf("bejvalue: expected ':' at offset %d", p.pos)
		}
		p.pos++

		val, err := p.parseValue()
		if err != nil {
			return Value{}, err
		}
		members = append(members, Member{Key: key, Value: val})

		p.skipSpace()
		c, ok := p.peek()
		if !ok {
			return Value{}, fmt.Errorf("bejvalue: unterminated object")
		}
		if c == ',' {
			p.pos++
			continue
		}
		if c == '}' {
			p.pos++
			return Object(members), nil
		}
		return Value{}, fmt.Errorf("bejvalue: expected ',' or '}' at offset %d", p.pos)
	}
}

// WriteText renders v as compact JSON text. Pretty-printing is left to
// callers.
func WriteText(v Value) string {
	var b strings.Builder
	writeValue(&b, v)
	return b.String()
}

func writeValue(b *strings.Builder, v Value) {
	switch v.kind {
	case KindNull:
		b.WriteString("null")
	case KindBool:
		if v.boolean {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case KindNumber:
		b.WriteString(strconv.FormatFloat(v.number, 'g', -1, 64))
	case KindString:
		writeString(b, v.str)
	case KindArray:
		b.WriteByte('[')
		for i, item := range v.array {
			if i > 0 {
				b.WriteByte(',')
			}
			writeValue(b, item)
		}
		b.WriteByte(']')
	case KindObject:
		b.WriteByte('{')
		for i, m := range v.object {
			if i > 0 {
				b.WriteByte(',')
			}
			writeString(b, m.Key)
			b.WriteByte(':')
			writeValue(b, m.Value)
		}
		b.WriteByte('}')
	}
}

func writeString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
}
