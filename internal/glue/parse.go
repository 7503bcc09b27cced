package glue

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ParseError is a malformed-markup failure with its location.
type ParseError struct {
	Line   int
	Column int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Msg)
}

// Parse reads markup text into a new tree. On failure nothing is returned;
// callers keep whatever tree they held before.
func Parse(data []byte) (*Document, error) {
	doc := NewDocument()
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true

	var (
		stack []*Element
		texts []*strings.Builder
	)
	fail := func(msg string) error {
		line, col := dec.InputPos()
		return &ParseError{Line: line, Column: col, Msg: msg}
	}

	for {
		line, _ := dec.InputPos()
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var se *xml.SyntaxError
			if errors.As(err, &se) {
				_, col := dec.InputPos()
				return nil, &ParseError{Line: se.Line, Column: col, Msg: se.Msg}
			}
			return nil, fail(err.Error())
		}

		switch tok := tok.(type) {
		case xml.StartElement:
			if len(stack) == 0 && doc.root != nil {
				return nil, fail(fmt.Sprintf("second root element <%s>", qualified(tok.Name)))
			}
			e := NewElement(doc, qualified(tok.Name))
			e.line = line
			for _, a := range tok.Attr {
				name := qualified(a.Name)
				if e.attrs.Has(name) {
					return nil, fail(fmt.Sprintf("duplicate attribute %q on <%s>", name, e.tag))
				}
				e.attrs.Set(name, a.Value)
			}
			if len(stack) == 0 {
				doc.root = e
			} else {
				stack[len(stack)-1].Append(e)
			}
			stack = append(stack, e)
			texts = append(texts, &strings.Builder{})

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fail(fmt.Sprintf("unexpected </%s>", qualified(tok.Name)))
			}
			top := stack[len(stack)-1]
			if name := qualified(tok.Name); name != top.tag {
				return nil, fail(fmt.Sprintf("<%s> closed by </%s>", top.tag, name))
			}
			top.text = strings.TrimSpace(texts[len(texts)-1].String())
			stack = stack[:len(stack)-1]
			texts = texts[:len(texts)-1]

		case xml.CharData:
			if len(stack) == 0 {
				if len(bytes.TrimSpace(tok)) > 0 {
					return nil, fail("text outside the root element")
				}
				continue
			}
			texts[len(texts)-1].Write(tok)

		case xml.Comment:
			c := NewComment(doc, string(tok))
			c.line = line
			switch {
			case len(stack) > 0:
				stack[len(stack)-1].Append(c)
			case doc.root == nil:
				doc.header = append(doc.header, c)
			default:
				doc.trailer = append(doc.trailer, c)
			}

		case xml.ProcInst:
			if tok.Target == "xml" {
				continue
			}
			if len(stack) > 0 {
				return nil, fail(fmt.Sprintf("processing instruction <?%s?> inside an element", tok.Target))
			}
			pi := NewInstruction(doc, tok.Target, strings.TrimSpace(string(tok.Inst)))
			pi.line = line
			if doc.root == nil {
				doc.header = append(doc.header, pi)
			} else {
				doc.trailer = append(doc.trailer, pi)
			}

		case xml.Directive:
			// DOCTYPE and friends carry nothing the tree keeps.
		}
	}

	if len(stack) > 0 {
		return nil, fail(fmt.Sprintf("unexpected end of input inside <%s>", stack[len(stack)-1].tag))
	}
	if doc.root == nil {
		return nil, fail("no root element")
	}
	return doc, nil
}

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}
