package glue

import (
	"fmt"
	"slices"
	"weak"
)

// Kind distinguishes the markup items a tree can hold.
type Kind uint8

const (
	KindElement Kind = iota
	KindComment
	KindInstruction
)

func (k Kind) String() string {
	switch k {
	case KindElement:
		return "element"
	case KindComment:
		return "comment"
	case KindInstruction:
		return "instruction"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Element is one node of the markup tree. The parent link is weak: a
// parent owns its children, never the reverse.
type Element struct {
	doc      *Document
	parent   weak.Pointer[Element]
	kind     Kind
	tag      string // tag for elements, target for instructions
	attrs    *Attributes
	children []*Element
	text     string // trimmed content, comment body or instruction data
	line     int
}

// NewElement creates a detached element owned by doc.
func NewElement(doc *Document, tag string) *Element {
	if doc == nil {
		panic("glue: element needs a document")
	}
	return &Element{doc: doc, kind: KindElement, tag: tag, attrs: newAttributes()}
}

// NewComment creates a detached comment owned by doc.
func NewComment(doc *Document, text string) *Element {
	e := NewElement(doc, "")
	e.kind = KindComment
	e.text = text
	return e
}

// NewInstruction creates a detached processing instruction owned by doc.
func NewInstruction(doc *Document, target, data string) *Element {
	e := NewElement(doc, target)
	e.kind = KindInstruction
	e.text = data
	return e
}

func (e *Element) Kind() Kind              { return e.kind }
func (e *Element) Tag() string             { return e.tag }
func (e *Element) Attributes() *Attributes { return e.attrs }
func (e *Element) Text() string            { return e.text }
func (e *Element) Document() *Document     { return e.doc }

// Line is the 1-based source line the element started on, 0 when the
// element was created in memory.
func (e *Element) Line() int { return e.line }

// SetTag renames the element.
func (e *Element) SetTag(tag string) {
	e.tag = tag
}

// SetText replaces the content text.
func (e *Element) SetText(text string) {
	e.text = text
}

// Parent returns the enclosing element, nil for detached or root elements.
func (e *Element) Parent() *Element {
	return e.parent.Value()
}

// Children returns a copy of the child list.
func (e *Element) Children() []*Element {
	return slices.Clone(e.children)
}

// ChildCount returns the number of children.
func (e *Element) ChildCount() int {
	return len(e.children)
}

// Child returns the i-th child.
func (e *Element) Child(i int) *Element {
	return e.children[i]
}

// IndexOf returns the position of child or -1.
func (e *Element) IndexOf(child *Element) int {
	return slices.Index(e.children, child)
}

// IsAttached reports whether e sits in its document's tree or header.
func (e *Element) IsAttached() bool {
	if e.Parent() != nil {
		return true
	}
	return e.doc.root == e || slices.Contains(e.doc.header, e) || slices.Contains(e.doc.trailer, e)
}

// Insert attaches child at index; an index out of range appends.
// Attaching an element that already has a parent, or that belongs to
// another document, is a programming error.
func (e *Element) Insert(index int, child *Element) {
	if e.kind != KindElement {
		panic(fmt.Sprintf("glue: cannot add children to a %s", e.kind))
	}
	if child.doc != e.doc {
		panic(fmt.Sprintf("glue: <%s> belongs to another document", child.tag))
	}
	if child.IsAttached() {
		panic(fmt.Sprintf("glue: <%s> is already attached", child.tag))
	}
	for p := e; p != nil; p = p.Parent() {
		if p == child {
			panic(fmt.Sprintf("glue: <%s> cannot be attached inside itself", child.tag))
		}
	}
	if index < 0 || index > len(e.children) {
		index = len(e.children)
	}
	e.children = slices.Insert(e.children, index, child)
	child.parent = weak.Make(e)
}

// Append attaches child as the last child.
func (e *Element) Append(child *Element) {
	e.Insert(-1, child)
}

// Detach removes e from its parent and returns the index it had, or -1.
func (e *Element) Detach() int {
	p := e.Parent()
	if p == nil {
		return -1
	}
	i := p.IndexOf(e)
	if i >= 0 {
		p.children = slices.Delete(p.children, i, i+1)
	}
	e.parent = weak.Pointer[Element]{}
	return i
}

// MoveToDocument hands a detached subtree over to dest.
func (e *Element) MoveToDocument(dest *Document) {
	if e.IsAttached() {
		panic(fmt.Sprintf("glue: <%s> must be detached before changing document", e.tag))
	}
	e.Walk(func(x *Element) bool {
		x.doc = dest
		return true
	})
}

// Walk visits e and its descendants in document order until fn returns false
// for a subtree.
func (e *Element) Walk(fn func(*Element) bool) {
	if !fn(e) {
		return
	}
	for _, c := range e.children {
		c.Walk(fn)
	}
}

// Clone deep-copies the subtree. The copy is detached and owned by the same
// document.
func (e *Element) Clone() *Element {
	c := &Element{
		doc:   e.doc,
		kind:  e.kind,
		tag:   e.tag,
		attrs: e.attrs.clone(),
		text:  e.text,
		line:  e.line,
	}
	for _, child := range e.children {
		cc := child.Clone()
		cc.parent = weak.Make(c)
		c.children = append(c.children, cc)
	}
	return c
}

// Equal reports whether two subtrees have the same kind, tag, attribute
// order, text and child order.
func Equal(a, b *Element) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.kind != b.kind || a.tag != b.tag || a.text != b.text {
		return false
	}
	if !slices.Equal(a.attrs.All(), b.attrs.All()) {
		return false
	}
	return slices.EqualFunc(a.children, b.children, Equal)
}
