package glue

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

const indentUnit = "   "

var (
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"\n", "&#10;",
		"\r", "&#13;",
		"\t", "&#9;",
	)
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\r", "&#13;",
	)
)

// Bytes serializes the tree. Attribute order and child order are emitted
// exactly as held.
func (d *Document) Bytes() []byte {
	var buf bytes.Buffer
	_, _ = d.WriteTo(&buf)
	return buf.Bytes()
}

// String is Bytes as a string.
func (d *Document) String() string {
	return string(d.Bytes())
}

// WriteTo serializes the tree into w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: bufio.NewWriter(w)}
	cw.str(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	if len(d.header) > 0 {
		cw.str("\n")
		for _, h := range d.header {
			writeElement(cw, h, 0)
		}
	}
	if d.root != nil {
		cw.str("\n")
		writeElement(cw, d.root, 0)
	}
	for _, t := range d.trailer {
		writeElement(cw, t, 0)
	}
	if cw.err == nil {
		cw.err = cw.w.Flush()
	}
	return cw.n, cw.err
}

func writeElement(w *countingWriter, e *Element, depth int) {
	indent := strings.Repeat(indentUnit, depth)
	switch e.kind {
	case KindComment:
		w.str(indent + "<!--" + e.text + "-->\n")
		return
	case KindInstruction:
		w.str(indent + "<?" + e.tag)
		if e.text != "" {
			w.str(" " + e.text)
		}
		w.str("?>\n")
		return
	}

	w.str(indent + "<" + e.tag)
	for _, a := range e.attrs.All() {
		w.str(" " + a.Name + `="` + attrEscaper.Replace(a.Value) + `"`)
	}
	switch {
	case len(e.children) == 0 && e.text == "":
		w.str(" />\n")
	case len(e.children) == 0:
		w.str(">" + escapeText(e.text) + "</" + e.tag + ">\n")
	default:
		w.str(">\n")
		if e.text != "" {
			w.str(indent + indentUnit + escapeText(e.text) + "\n")
		}
		for _, c := range e.children {
			writeElement(w, c, depth+1)
		}
		w.str(indent + "</" + e.tag + ">\n")
	}
}

// escapeText keeps multi-line bodies such as scripts readable by using a
// CDATA section when escaping would be needed. Carriage returns are always
// escaped since parsing folds a literal one into a newline.
func escapeText(s string) string {
	if strings.Contains(s, "\n") && strings.ContainsAny(s, "<&") && !strings.Contains(s, "\r") && !strings.Contains(s, "]]>") {
		return "<![CDATA[" + s + "]]>"
	}
	return textEscaper.Replace(s)
}

type countingWriter struct {
	w   *bufio.Writer
	n   int64
	err error
}

func (c *countingWriter) str(s string) {
	if c.err != nil {
		return
	}
	n, err := c.w.WriteString(s)
	c.n += int64(n)
	c.err = err
}
