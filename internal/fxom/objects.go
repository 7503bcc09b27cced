package fxom

import "fmt"

// Instance is an element that instantiates a class.
type Instance struct {
	objectCore
	propertySet
}

// Class returns the class the instance instantiates, the type attribute for
// an fx:root element.
func (i *Instance) Class() string {
	if i.IsFxRoot() {
		return i.attr(AttrType)
	}
	return i.elem.Tag()
}

// IsFxRoot reports whether the instance is declared as fx:root.
func (i *Instance) IsFxRoot() bool { return i.elem.Tag() == TagRoot }

// FxID returns the fx:id attribute.
func (i *Instance) FxID() string { return i.attr(AttrID) }

// SetFxID sets the fx:id; the empty string removes it.
func (i *Instance) SetFxID(id string) AttrChange { return i.setAttr(AttrID, id) }

// Controller returns the fx:controller attribute.
func (i *Instance) Controller() string { return i.attr(AttrController) }

// SetController sets the fx:controller; the empty string removes it.
func (i *Instance) SetController(class string) AttrChange {
	return i.setAttr(AttrController, class)
}

// Attr returns a structural attribute such as fx:value or fx:factory.
func (i *Instance) Attr(name string) string { return i.attr(name) }

// SetFxRoot switches the element between <Class> and
// <fx:root type="Class">. Turning it on inserts the type attribute at
// typeIndex. The returned index is where the type attribute was before
// turning it off, -1 otherwise.
func (i *Instance) SetFxRoot(on bool, typeIndex int) int {
	if on == i.IsFxRoot() {
		return -1
	}
	defer i.doc.update()()
	attrs := i.elem.Attributes()
	if on {
		attrs.Insert(typeIndex, AttrType, i.elem.Tag())
		i.elem.SetTag(TagRoot)
		return -1
	}
	class, idx, _ := attrs.Remove(AttrType)
	i.elem.SetTag(class)
	return idx
}

// DefaultCollection returns the implicit collection, nil when there is none.
func (i *Instance) DefaultCollection() *PropertyC {
	for _, p := range i.list() {
		if c, ok := p.(*PropertyC); ok && c.IsImplicit() {
			return c
		}
	}
	return nil
}

// IntrinsicKind distinguishes the intrinsic elements.
type IntrinsicKind uint8

const (
	IntrinsicInclude IntrinsicKind = 1 << iota
	IntrinsicReference
	IntrinsicCopy

	AnyIntrinsic = IntrinsicInclude | IntrinsicReference | IntrinsicCopy
)

func (k IntrinsicKind) String() string {
	switch k {
	case IntrinsicInclude:
		return "include"
	case IntrinsicReference:
		return "reference"
	case IntrinsicCopy:
		return "copy"
	default:
		return fmt.Sprintf("IntrinsicKind(%d)", uint8(k))
	}
}

// Tag returns the element name for the kind.
func (k IntrinsicKind) Tag() string {
	switch k {
	case IntrinsicInclude:
		return TagInclude
	case IntrinsicReference:
		return TagReference
	case IntrinsicCopy:
		return TagCopy
	}
	panic(fmt.Sprintf("fxom: no tag for %v", k))
}

// Intrinsic is an fx:include, fx:reference or fx:copy element.
type Intrinsic struct {
	objectCore
	propertySet
	kind     IntrinsicKind
	target   Object
	included *Document
}

// Kind returns which intrinsic this is.
func (n *Intrinsic) Kind() IntrinsicKind { return n.kind }

// Source returns the referenced id or, for an include, the document path.
func (n *Intrinsic) Source() string { return n.attr(AttrSource) }

// SetSource replaces the source attribute.
func (n *Intrinsic) SetSource(source string) AttrChange { return n.setAttr(AttrSource, source) }

// FxID returns the fx:id attribute, which only includes usually carry.
func (n *Intrinsic) FxID() string { return n.attr(AttrID) }

// SetFxID sets the fx:id; the empty string removes it.
func (n *Intrinsic) SetFxID(id string) AttrChange { return n.setAttr(AttrID, id) }

// Target is the object a reference or copy resolved to at the last refresh,
// nil when unresolved.
func (n *Intrinsic) Target() Object { return n.target }

// Included is the document an include loaded at the last refresh.
func (n *Intrinsic) Included() *Document { return n.included }

// Define holds objects that are declared but not placed in the scene.
type Define struct {
	objectCore
	items *PropertyC
}

// Items is the collection of declared objects.
func (d *Define) Items() *PropertyC { return d.items }

// Script is an fx:script element, inline or with a source attribute.
type Script struct {
	objectCore
}

// Source returns the external script path, "" for inline scripts.
func (s *Script) Source() string { return s.attr(AttrSource) }

// Body returns the inline script text.
func (s *Script) Body() string { return s.elem.Text() }

// SetBody replaces the inline text and returns the previous one.
func (s *Script) SetBody(body string) string {
	defer s.doc.update()()
	prev := s.elem.Text()
	s.elem.SetText(body)
	return prev
}

// Comment is a markup comment kept as an object.
type Comment struct {
	objectCore
}

// Text returns the comment text.
func (c *Comment) Text() string { return c.elem.Text() }

// SetText replaces the text and returns the previous one.
func (c *Comment) SetText(text string) string {
	defer c.doc.update()()
	prev := c.elem.Text()
	c.elem.SetText(text)
	return prev
}

// Virtual is an object without markup. It carries its live value directly.
type Virtual struct {
	objectCore
}
