package fxom

import (
	"fmt"

	"github.com/agentic-research/fxom/internal/glue"
)

// The constructors below create detached nodes owned by d. Attach them with
// AddValue, AddProperty or SetRoot.

// NewInstance creates an instance of class with no properties.
func (d *Document) NewInstance(class string) *Instance {
	i := &Instance{}
	i.propertySet = newPropertySet(i)
	d.register(d.arena, i, glue.NewElement(d.markup, class))
	return i
}

// NewIntrinsic creates an include, reference or copy pointing at source.
func (d *Document) NewIntrinsic(kind IntrinsicKind, source string) *Intrinsic {
	n := &Intrinsic{kind: kind}
	n.propertySet = newPropertySet(n)
	e := glue.NewElement(d.markup, kind.Tag())
	e.Attributes().Set(AttrSource, source)
	d.register(d.arena, n, e)
	return n
}

// NewDefine creates an empty fx:define.
func (d *Document) NewDefine() *Define {
	n := &Define{}
	d.register(d.arena, n, glue.NewElement(d.markup, TagDefine))
	n.items = d.newItems(d.arena, n)
	return n
}

func (d *Document) newItems(a *arena, owner *Define) *PropertyC {
	items := &PropertyC{}
	d.register(a, items, nil)
	items.owner = owner
	return items
}

// NewScript creates an fx:script. A non-empty source makes it external.
func (d *Document) NewScript(source, body string) *Script {
	n := &Script{}
	e := glue.NewElement(d.markup, TagScript)
	if source != "" {
		e.Attributes().Set(AttrSource, source)
	}
	e.SetText(body)
	d.register(d.arena, n, e)
	return n
}

// NewComment creates a comment object.
func (d *Document) NewComment(text string) *Comment {
	n := &Comment{}
	d.register(d.arena, n, glue.NewComment(d.markup, text))
	return n
}

// NewVirtual creates an object without markup holding live.
func (d *Document) NewVirtual(live any) *Virtual {
	n := &Virtual{}
	d.register(d.arena, n, nil)
	n.setLive(live)
	return n
}

// NewAttributeProperty creates a textual property kept as an attribute.
func (d *Document) NewAttributeProperty(name, value string) *PropertyT {
	checkPropertyName(name)
	p := &PropertyT{value: value}
	p.name = name
	d.register(d.arena, p, nil)
	return p
}

// NewElementProperty creates a textual property kept as a property element.
func (d *Document) NewElementProperty(name, value string) *PropertyT {
	checkPropertyName(name)
	p := &PropertyT{value: value}
	p.name = name
	e := glue.NewElement(d.markup, name)
	e.SetText(value)
	d.register(d.arena, p, e)
	return p
}

// NewCollection creates an empty collection with its own property element.
func (d *Document) NewCollection(name string) *PropertyC {
	checkPropertyName(name)
	p := &PropertyC{}
	p.name = name
	d.register(d.arena, p, glue.NewElement(d.markup, name))
	return p
}

// NewImplicitCollection creates an empty collection whose values will sit
// directly under the owner's element.
func (d *Document) NewImplicitCollection(name string) *PropertyC {
	p := &PropertyC{}
	p.name = name
	d.register(d.arena, p, nil)
	return p
}

func checkPropertyName(name string) {
	if name == "" {
		panic("fxom: empty property name")
	}
	if name == AttrID || name == AttrController {
		panic(fmt.Sprintf("fxom: %s is not a property", name))
	}
}
