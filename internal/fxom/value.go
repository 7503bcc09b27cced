package fxom

import (
	"strings"
)

// ValueKind classifies the text of a textual property.
type ValueKind uint8

const (
	ValueLiteral    ValueKind = iota
	ValueExpression           // $id or $id.path
	ValueBinding              // ${expression}
	ValueHandler              // #method
	ValueLocation             // @path
	ValueResource             // %key
)

func (k ValueKind) String() string {
	switch k {
	case ValueExpression:
		return "expression"
	case ValueBinding:
		return "binding"
	case ValueHandler:
		return "handler"
	case ValueLocation:
		return "location"
	case ValueResource:
		return "resource"
	default:
		return "literal"
	}
}

// Value is a classified property value. Text is the payload without its
// prefix; for literals the escape character is removed.
type Value struct {
	Kind ValueKind
	Text string
}

// ParseValue classifies s. A leading backslash escapes the prefix
// characters.
func ParseValue(s string) Value {
	if s == "" {
		return Value{Kind: ValueLiteral}
	}
	switch s[0] {
	case '\\':
		return Value{Kind: ValueLiteral, Text: s[1:]}
	case '$':
		if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
			return Value{Kind: ValueBinding, Text: strings.TrimSpace(s[2 : len(s)-1])}
		}
		return Value{Kind: ValueExpression, Text: s[1:]}
	case '#':
		return Value{Kind: ValueHandler, Text: s[1:]}
	case '@':
		return Value{Kind: ValueLocation, Text: s[1:]}
	case '%':
		return Value{Kind: ValueResource, Text: s[1:]}
	}
	return Value{Kind: ValueLiteral, Text: s}
}

// IsExpression reports whether the value refers to other objects.
func (v Value) IsExpression() bool {
	return v.Kind == ValueExpression || v.Kind == ValueBinding
}

// Roots returns the object ids an expression starts from.
func (v Value) Roots() []string {
	switch v.Kind {
	case ValueExpression:
		if id := leadingIdent(v.Text); id != "" {
			return []string{id}
		}
	case ValueBinding:
		var out []string
		scanIdents(v.Text, func(start, end int) {
			out = append(out, v.Text[start:end])
		})
		return out
	}
	return nil
}

// References reports whether the value is an expression rooted at id.
func (v Value) References(id string) bool {
	for _, r := range v.Roots() {
		if r == id {
			return true
		}
	}
	return false
}

// RenameRoot rewrites expression roots equal to from; other values are
// returned unchanged.
func RenameRoot(s, from, to string) string {
	v := ParseValue(s)
	switch v.Kind {
	case ValueExpression:
		if leadingIdent(v.Text) == from {
			return "$" + to + v.Text[len(from):]
		}
	case ValueBinding:
		var b strings.Builder
		last := 0
		scanIdents(v.Text, func(start, end int) {
			if v.Text[start:end] == from {
				b.WriteString(v.Text[last:start])
				b.WriteString(to)
				last = end
			}
		})
		if last > 0 {
			b.WriteString(v.Text[last:])
			return "${" + b.String() + "}"
		}
	}
	return s
}

func isIdentStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}

func leadingIdent(s string) string {
	if s == "" || !isIdentStart(s[0]) {
		return ""
	}
	i := 1
	for i < len(s) && isIdentPart(s[i]) {
		i++
	}
	return s[:i]
}

// scanIdents reports identifiers of an expression that are not member
// accesses, keywords or inside string literals.
func scanIdents(s string, fn func(start, end int)) {
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '"' || c == '\'':
			j := i + 1
			for j < len(s) && s[j] != c {
				if s[j] == '\\' {
					j++
				}
				j++
			}
			i = j + 1
		case isIdentStart(c):
			j := i + 1
			for j < len(s) && isIdentPart(s[j]) {
				j++
			}
			if !memberAccess(s, i) && !keywords[s[i:j]] {
				fn(i, j)
			}
			i = j
		case c >= '0' && c <= '9':
			for i < len(s) && (isIdentPart(s[i]) || s[i] == '.') {
				i++
			}
		default:
			i++
		}
	}
}

func memberAccess(s string, i int) bool {
	for j := i - 1; j >= 0; j-- {
		switch s[j] {
		case ' ', '\t':
			continue
		case '.':
			return true
		}
		return false
	}
	return false
}

var keywords = map[string]bool{
	"true": true, "false": true, "null": true,
}
