package glue

import (
	"fmt"
	"slices"
	"strings"
)

// Document is a markup tree: header items, one root element and trailer
// items. Header and trailer hold processing instructions and comments.
type Document struct {
	header  []*Element
	root    *Element
	trailer []*Element
}

// NewDocument returns an empty tree.
func NewDocument() *Document {
	return &Document{}
}

// Root returns the root element, nil when empty.
func (d *Document) Root() *Element {
	return d.root
}

// SetRoot installs e as root. The previous root is detached from the tree
// but stays owned by d. A nil e empties the tree.
func (d *Document) SetRoot(e *Element) {
	if e != nil {
		if e.doc != d {
			panic(fmt.Sprintf("glue: <%s> belongs to another document", e.tag))
		}
		if e.kind != KindElement {
			panic("glue: root must be an element")
		}
		if e.IsAttached() && d.root != e {
			panic(fmt.Sprintf("glue: <%s> is already attached", e.tag))
		}
	}
	d.root = e
}

// Header returns a copy of the items before the root.
func (d *Document) Header() []*Element {
	return slices.Clone(d.header)
}

// Trailer returns a copy of the items after the root.
func (d *Document) Trailer() []*Element {
	return slices.Clone(d.trailer)
}

// AddHeader appends an instruction or comment before the root.
func (d *Document) AddHeader(e *Element) {
	if e.kind == KindElement {
		panic("glue: header only holds instructions and comments")
	}
	if e.doc != d || e.IsAttached() {
		panic("glue: header item must be a detached item of this document")
	}
	d.header = append(d.header, e)
}

// Imports lists the targets of import instructions in header order.
func (d *Document) Imports() []string {
	var out []string
	for _, h := range d.header {
		if h.kind == KindInstruction && h.tag == "import" {
			out = append(out, strings.TrimSpace(h.text))
		}
	}
	return out
}

// AddImport appends an import instruction unless it is already present.
func (d *Document) AddImport(name string) bool {
	if slices.Contains(d.Imports(), name) {
		return false
	}
	d.AddHeader(NewInstruction(d, "import", name))
	return true
}

// Walk visits every element of the root subtree.
func (d *Document) Walk(fn func(*Element) bool) {
	if d.root != nil {
		d.root.Walk(fn)
	}
}

// EqualDocuments compares two trees structurally, header and trailer
// included.
func EqualDocuments(a, b *Document) bool {
	return slices.EqualFunc(a.header, b.header, Equal) &&
		Equal(a.root, b.root) &&
		slices.EqualFunc(a.trailer, b.trailer, Equal)
}
