package luatable

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrDecode is matched by every *DecodeError.
	ErrDecode = errors.New("luatable: syntax error")
	// ErrType is returned when the decoded document is not a keyed table.
	ErrType = errors.New("luatable: top-level value is not a map")
)

// DecodeError reports a syntax violation. Offset is a byte offset into the original text;
// Line and Column are 1-based.
type DecodeError struct {
	Offset int
	Line   int
	Column int
	Msg    string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("luatable: line %d, column %d: %s", e.Line, e.Column, e.Msg)
}

// Is lets errors.Is(err, ErrDecode) match.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// Decode parses the table literal between the first '{' and the last '}' of text.
// Everything outside that span (a "mission = " prefix, header comments) is ignored.
func Decode(text string) (*Table, error) {
	v, err := DecodeValue(text)
	if err != nil {
		return nil, err
	}
	t, ok := v.(*Table)
	if !ok || t.IsArray() {
		return nil, fmt.Errorf("%w: got %s", ErrType, typeName(v))
	}
	return t, nil
}

// DecodeValue is Decode without the requirement that the result is a keyed table.
func DecodeValue(text string) (any, error) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start == -1 || end == -1 || end < start {
		d := &decoder{src: text}
		return nil, d.errorf(0, "no table literal found")
	}

	d := &decoder{src: text, pos: start, end: end + 1}
	v, err := d.value()
	if err != nil {
		return nil, err
	}
	if err := d.skipSpace(); err != nil {
		return nil, err
	}
	if d.pos != d.end {
		return nil, d.errorf(d.pos, "unexpected %q after table", d.src[d.pos])
	}
	return v, nil
}

func typeName(v any) string {
	switch t := v.(type) {
	case *Table:
		if t.IsArray() {
			return "array"
		}
		return "table"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}

type decoder struct {
	src string
	pos int
	end int
}

func (d *decoder) errorf(offset int, format string, args ...any) error {
	line, col := 1, 1
	for i := 0; i < offset && i < len(d.src); i++ {
		if d.src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return &DecodeError{Offset: offset, Line: line, Column: col, Msg: fmt.Sprintf(format, args...)}
}

func (d *decoder) eof() bool {
	return d.pos >= d.end
}

func (d *decoder) peek() byte {
	if d.eof() {
		return 0
	}
	return d.src[d.pos]
}

func (d *decoder) peekAt(n int) byte {
	if d.pos+n >= d.end {
		return 0
	}
	return d.src[d.pos+n]
}

// skipSpace skips whitespace and comments.
func (d *decoder) skipSpace() error {
	for !d.eof() {
		c := d.src[d.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v':
			d.pos++
		case c == '-' && d.peekAt(1) == '-':
			start := d.pos
			d.pos += 2
			if d.peek() == '[' {
				if level, ok := d.longBracketLevel(); ok {
					if _, err := d.longString(level, start); err != nil {
						return err
					}
					continue
				}
			}
			for !d.eof() && d.src[d.pos] != '\n' {
				d.pos++
			}
		default:
			return nil
		}
	}
	return nil
}

// longBracketLevel reports whether a long bracket ([[ or [==[) opens at pos.
func (d *decoder) longBracketLevel() (int, bool) {
	if d.peek() != '[' {
		return 0, false
	}
	i := d.pos + 1
	level := 0
	for i < d.end && d.src[i] == '=' {
		level++
		i++
	}
	if i < d.end && d.src[i] == '[' {
		return level, true
	}
	return 0, false
}

func (d *decoder) longString(level int, start int) (string, error) {
	d.pos += level + 2
	// a newline directly after the opening bracket is skipped
	if d.peek() == '\r' {
		d.pos++
	}
	if d.peek() == '\n' {
		d.pos++
	}
	closing := "]" + strings.Repeat("=", level) + "]"
	i := strings.Index(d.src[d.pos:d.end], closing)
	if i < 0 {
		return "", d.errorf(start, "unfinished long string")
	}
	s := d.src[d.pos : d.pos+i]
	d.pos += i + len(closing)
	return s, nil
}

func (d *decoder) value() (any, error) {
	if err := d.skipSpace(); err != nil {
		return nil, err
	}
	if d.eof() {
		return nil, d.errorf(d.pos, "unexpected end of input, expected value")
	}

	c := d.peek()
	switch {
	case c == '{':
		return d.table()
	case c == '"' || c == '\'':
		return d.quoted()
	case c == '[':
		if level, ok := d.longBracketLevel(); ok {
			return d.longString(level, d.pos)
		}
		return nil, d.errorf(d.pos, "unexpected '['")
	case c == '-' || c == '.' || isDigit(c):
		return d.number()
	case isIdentStart(c):
		start := d.pos
		word := d.ident()
		switch word {
		case "true":
			return true, nil
		case "false":
			return false, nil
		case "nil":
			return nil, nil
		}
		return nil, d.errorf(start, "unexpected identifier %q", word)
	}
	return nil, d.errorf(d.pos, "unexpected %q", c)
}

func (d *decoder) table() (*Table, error) {
	open := d.pos
	d.pos++ // '{'
	t := NewTable()

	for {
		if err := d.skipSpace(); err != nil {
			return nil, err
		}
		if d.eof() {
			return nil, d.errorf(open, "unclosed table")
		}
		if d.peek() == '}' {
			d.pos++
			return t, nil
		}

		if err := d.field(t); err != nil {
			return nil, err
		}

		if err := d.skipSpace(); err != nil {
			return nil, err
		}
		switch d.peek() {
		case ',', ';':
			d.pos++
		case '}':
		default:
			if d.eof() {
				return nil, d.errorf(open, "unclosed table")
			}
			return nil, d.errorf(d.pos, "expected ',' or '}', got %q", d.peek())
		}
	}
}

func (d *decoder) field(t *Table) error {
	c := d.peek()

	// [key] = value
	if c == '[' {
		if _, long := d.longBracketLevel(); !long {
			keyPos := d.pos
			d.pos++
			key, err := d.value()
			if err != nil {
				return err
			}
			switch key.(type) {
			case string, float64, bool:
			default:
				return d.errorf(keyPos, "invalid table key of type %s", typeName(key))
			}
			if err := d.skipSpace(); err != nil {
				return err
			}
			if d.peek() != ']' {
				return d.errorf(d.pos, "expected ']' after key")
			}
			d.pos++
			if err := d.expectAssign(); err != nil {
				return err
			}
			v, err := d.value()
			if err != nil {
				return err
			}
			t.Set(key, v)
			return nil
		}
	}

	// name = value
	if isIdentStart(c) {
		save := d.pos
		word := d.ident()
		if err := d.skipSpace(); err != nil {
			return err
		}
		if d.peek() == '=' && d.peekAt(1) != '=' {
			d.pos++
			v, err := d.value()
			if err != nil {
				return err
			}
			t.Set(word, v)
			return nil
		}
		d.pos = save
	}

	v, err := d.value()
	if err != nil {
		return err
	}
	t.Append(v)
	return nil
}

func (d *decoder) expectAssign() error {
	if err := d.skipSpace(); err != nil {
		return err
	}
	if d.peek() != '=' {
		return d.errorf(d.pos, "expected '='")
	}
	d.pos++
	return nil
}

func (d *decoder) ident() string {
	start := d.pos
	for !d.eof() && isIdentPart(d.src[d.pos]) {
		d.pos++
	}
	return d.src[start:d.pos]
}

func (d *decoder) number() (float64, error) {
	start := d.pos
	neg := false
	if d.peek() == '-' {
		neg = true
		d.pos++
		if err := d.skipSpace(); err != nil {
			return 0, err
		}
	}

	var f float64
	if d.peek() == '0' && (d.peekAt(1) == 'x' || d.peekAt(1) == 'X') {
		d.pos += 2
		digits := d.pos
		for !d.eof() && isHexDigit(d.src[d.pos]) {
			d.pos++
		}
		if digits == d.pos {
			return 0, d.errorf(start, "malformed hex number")
		}
		n, err := strconv.ParseUint(d.src[digits:d.pos], 16, 64)
		if err != nil {
			return 0, d.errorf(start, "malformed hex number: %v", err)
		}
		f = float64(n)
	} else {
		numStart := d.pos
		digits := 0
		for !d.eof() && isDigit(d.src[d.pos]) {
			d.pos++
			digits++
		}
		if d.peek() == '.' {
			d.pos++
			for !d.eof() && isDigit(d.src[d.pos]) {
				d.pos++
				digits++
			}
		}
		if digits == 0 {
			return 0, d.errorf(start, "malformed number")
		}
		if c := d.peek(); c == 'e' || c == 'E' {
			d.pos++
			if c := d.peek(); c == '+' || c == '-' {
				d.pos++
			}
			expDigits := d.pos
			for !d.eof() && isDigit(d.src[d.pos]) {
				d.pos++
			}
			if expDigits == d.pos {
				return 0, d.errorf(start, "malformed number exponent")
			}
		}
		var err error
		f, err = strconv.ParseFloat(d.src[numStart:d.pos], 64)
		if err != nil {
			return 0, d.errorf(start, "malformed number %q", d.src[numStart:d.pos])
		}
	}

	if !d.eof() && isIdentPart(d.src[d.pos]) {
		return 0, d.errorf(start, "malformed number near %q", d.src[start:d.pos+1])
	}
	if neg {
		f = -f
	}
	return f, nil
}

func (d *decoder) quoted() (string, error) {
	start := d.pos
	quote := d.src[d.pos]
	d.pos++

	var sb strings.Builder
	for {
		if d.eof() {
			return "", d.errorf(start, "unfinished string")
		}
		c := d.src[d.pos]
		switch {
		case c == quote:
			d.pos++
			return sb.String(), nil
		case c == '\n':
			return "", d.errorf(start, "unfinished string")
		case c == '\\':
			d.pos++
			if err := d.escape(&sb); err != nil {
				return "", err
			}
		default:
			sb.WriteByte(c)
			d.pos++
		}
	}
}

func (d *decoder) escape(sb *strings.Builder) error {
	if d.eof() {
		return d.errorf(d.pos, "unfinished escape sequence")
	}
	c := d.src[d.pos]
	d.pos++
	switch c {
	case 'n':
		sb.WriteByte('\n')
	case 't':
		sb.WriteByte('\t')
	case 'r':
		sb.WriteByte('\r')
	case 'a':
		sb.WriteByte('\a')
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case 'v':
		sb.WriteByte('\v')
	case '\\', '"', '\'':
		sb.WriteByte(c)
	case '\n':
		sb.WriteByte('\n')
		if d.peek() == '\r' {
			d.pos++
		}
	case '\r':
		sb.WriteByte('\n')
		if d.peek() == '\n' {
			d.pos++
		}
	case 'x':
		if d.pos+2 > d.end || !isHexDigit(d.src[d.pos]) || !isHexDigit(d.src[d.pos+1]) {
			return d.errorf(d.pos-2, "invalid hex escape")
		}
		n, _ := strconv.ParseUint(d.src[d.pos:d.pos+2], 16, 8)
		sb.WriteByte(byte(n))
		d.pos += 2
	case 'z':
		for !d.eof() && strings.IndexByte(" \t\n\r\f\v", d.src[d.pos]) >= 0 {
			d.pos++
		}
	default:
		if !isDigit(c) {
			return d.errorf(d.pos-2, "invalid escape sequence '\\%c'", c)
		}
		start := d.pos - 1
		for d.pos < d.end && d.pos-start < 3 && isDigit(d.src[d.pos]) {
			d.pos++
		}
		n, _ := strconv.Atoi(d.src[start:d.pos])
		if n > 255 {
			return d.errorf(start-1, "decimal escape too large")
		}
		sb.WriteByte(byte(n))
	}
	return nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
