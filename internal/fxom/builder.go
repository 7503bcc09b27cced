package fxom

import (
	"strings"

	"github.com/agentic-research/fxom/internal/glue"
)

// builder turns markup elements into nodes registered in arena. Nodes are
// only published by the caller once the whole subtree built cleanly.
type builder struct {
	doc   *Document
	arena *arena
}

func (b *builder) object(e *glue.Element) (Object, error) {
	switch e.Kind() {
	case glue.KindComment:
		c := &Comment{}
		b.doc.register(b.arena, c, e)
		return c, nil
	case glue.KindInstruction:
		return nil, malformed(e.Line(), "processing instruction <?%s?> inside an element", e.Tag())
	}

	switch tag := e.Tag(); tag {
	case TagInclude, TagReference, TagCopy:
		n := &Intrinsic{kind: intrinsicKind(tag)}
		n.propertySet = newPropertySet(n)
		b.doc.register(b.arena, n, e)
		if n.kind != IntrinsicInclude && n.Source() == "" {
			return nil, malformed(e.Line(), "<%s> without source", tag)
		}
		return n, b.content(n, e, "")
	case TagDefine:
		n := &Define{}
		b.doc.register(b.arena, n, e)
		n.items = b.doc.newItems(b.arena, n)
		for _, c := range e.Children() {
			v, err := b.object(c)
			if err != nil {
				return nil, err
			}
			n.items.values = append(n.items.values, v)
			v.objectData().parent = n.items
		}
		return n, nil
	case TagScript:
		n := &Script{}
		b.doc.register(b.arena, n, e)
		if e.ChildCount() > 0 {
			return nil, malformed(e.Line(), "<%s> cannot have child elements", tag)
		}
		return n, nil
	default:
		if IsPropertyTag(tag) {
			return nil, malformed(e.Line(), "property element <%s> where an object is expected", tag)
		}
		if strings.HasPrefix(tag, "fx:") && tag != TagRoot {
			return nil, malformed(e.Line(), "unknown element <%s>", tag)
		}
		n := &Instance{}
		n.propertySet = newPropertySet(n)
		b.doc.register(b.arena, n, e)
		if n.IsFxRoot() && n.Class() == "" {
			return nil, malformed(e.Line(), "<%s> without type", tag)
		}
		return n, b.content(n, e, n.Class())
	}
}

func intrinsicKind(tag string) IntrinsicKind {
	switch tag {
	case TagInclude:
		return IntrinsicInclude
	case TagReference:
		return IntrinsicReference
	default:
		return IntrinsicCopy
	}
}

// content builds the properties of an owner: attributes first, then property
// elements and the implicit collection in child order.
func (b *builder) content(owner Owner, e *glue.Element, class string) error {
	set := owner.properties()
	add := func(p Property, line int) error {
		if set.Property(p.Name()) != nil {
			return malformed(line, "%v %q", ErrDuplicateProperty, p.Name())
		}
		set.m.Set(p.Name(), p)
		p.propertyData().owner = owner
		return nil
	}

	for _, a := range e.Attributes().All() {
		if isStructuralAttr(owner, a.Name) {
			continue
		}
		p := &PropertyT{value: a.Value}
		p.name = a.Name
		b.doc.register(b.arena, p, nil)
		if err := add(p, e.Line()); err != nil {
			return err
		}
	}

	var implicit *PropertyC
	for _, c := range e.Children() {
		if c.Kind() == glue.KindElement && IsPropertyTag(c.Tag()) {
			p, err := b.property(c)
			if err != nil {
				return err
			}
			if err := add(p, c.Line()); err != nil {
				return err
			}
			continue
		}
		v, err := b.object(c)
		if err != nil {
			return err
		}
		if implicit == nil {
			implicit = &PropertyC{}
			implicit.name = b.defaultName(class)
			b.doc.register(b.arena, implicit, nil)
			if err := add(implicit, c.Line()); err != nil {
				return err
			}
		}
		implicit.values = append(implicit.values, v)
		v.objectData().parent = implicit
	}
	return nil
}

func (b *builder) defaultName(class string) string {
	if class != "" && b.doc.md != nil {
		if name := b.doc.md.DefaultProperty(class); name != "" {
			return name
		}
	}
	return DefaultCollection
}

// property builds a property element: text without child elements is a
// textual property, anything else a collection.
func (b *builder) property(e *glue.Element) (Property, error) {
	if e.ChildCount() == 0 && e.Text() != "" {
		p := &PropertyT{value: e.Text()}
		p.name = e.Tag()
		b.doc.register(b.arena, p, e)
		return p, nil
	}
	p := &PropertyC{}
	p.name = e.Tag()
	b.doc.register(b.arena, p, e)
	for _, c := range e.Children() {
		v, err := b.object(c)
		if err != nil {
			return nil, err
		}
		p.values = append(p.values, v)
		v.objectData().parent = p
	}
	return p, nil
}

// isStructuralAttr reports attributes that are not properties: the fx
// namespace, namespace declarations, and the type or source of intrinsic
// elements.
func isStructuralAttr(owner Owner, name string) bool {
	if strings.HasPrefix(name, "fx:") || name == "xmlns" || strings.HasPrefix(name, "xmlns:") {
		return true
	}
	switch o := owner.(type) {
	case *Instance:
		return name == AttrType && o.IsFxRoot()
	case *Intrinsic:
		return name == AttrSource
	}
	return false
}
