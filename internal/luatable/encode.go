package luatable

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Encode renders v as a Lua literal in the layout the mission editor writes: one entry per
// line, tab indentation, bracketed keys and a trailing comma after every entry.
func Encode(v any) string {
	var sb strings.Builder
	encodeValue(&sb, v, 0)
	return sb.String()
}

// EncodeNamed renders "name = <literal>" followed by a newline, the form of a mission entry.
func EncodeNamed(name string, t *Table) string {
	return name + " = " + Encode(t) + "\n"
}

func encodeValue(sb *strings.Builder, v any, depth int) {
	switch val := v.(type) {
	case nil:
		sb.WriteString("nil")
	case bool:
		sb.WriteString(strconv.FormatBool(val))
	case float64:
		sb.WriteString(formatNumber(val))
	case int:
		sb.WriteString(strconv.Itoa(val))
	case string:
		sb.WriteString(quote(val))
	case *Table:
		encodeTable(sb, val, depth)
	default:
		sb.WriteString(quote(fmt.Sprint(val)))
	}
}

func encodeTable(sb *strings.Builder, t *Table, depth int) {
	if t.Len() == 0 {
		sb.WriteString("{}")
		return
	}
	indent := strings.Repeat("\t", depth+1)
	array := t.IsArray()

	sb.WriteString("{\n")
	for _, e := range t.Entries() {
		sb.WriteString(indent)
		if !array {
			sb.WriteByte('[')
			encodeValue(sb, e.Key, depth+1)
			sb.WriteString("] = ")
		}
		encodeValue(sb, e.Value, depth+1)
		sb.WriteString(",\n")
	}
	sb.WriteString(strings.Repeat("\t", depth))
	sb.WriteByte('}')
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "(0/0)"
	case math.IsInf(f, 1):
		return "math.huge"
	case math.IsInf(f, -1):
		return "-math.huge"
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func quote(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if c < 0x20 || c == 0x7f {
				fmt.Fprintf(&sb, `\%03d`, c)
			} else {
				sb.WriteByte(c)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
