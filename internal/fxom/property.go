package fxom

import (
	"fmt"
	"slices"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/agentic-research/fxom/internal/glue"
)

// PropertyT is a textual property, held either as an attribute of the
// owner's element or as a property element whose text is the value.
type PropertyT struct {
	propertyCore
	value string
}

// Value returns the property text.
func (p *PropertyT) Value() string { return p.value }

// IsAttribute reports whether the property is kept as an attribute.
func (p *PropertyT) IsAttribute() bool { return p.elem == nil }

// SetValue replaces the text in place and returns the previous value.
func (p *PropertyT) SetValue(v string) string {
	defer p.doc.update()()
	prev := p.value
	p.value = v
	switch {
	case p.elem != nil:
		p.elem.SetText(v)
	case p.owner != nil:
		p.owner.Element().Attributes().Set(p.name, v)
	}
	return prev
}

// PropertyC is a collection property. An implicit collection has no element
// of its own: its values sit directly under the owner's element.
type PropertyC struct {
	propertyCore
	values []Object
}

// IsImplicit reports whether the collection has no property element.
func (p *PropertyC) IsImplicit() bool { return p.elem == nil }

// Values returns the values in order.
func (p *PropertyC) Values() []Object { return slices.Clone(p.values) }

// Len returns the number of values.
func (p *PropertyC) Len() int { return len(p.values) }

// Value returns the value at i.
func (p *PropertyC) Value(i int) Object { return p.values[i] }

// IndexOf returns the position of v or -1.
func (p *PropertyC) IndexOf(v Object) int { return indexOf(p.values, v) }

// container is the element the value elements live under, nil while an
// implicit collection is detached.
func (p *PropertyC) container() *glue.Element {
	if p.elem != nil {
		return p.elem
	}
	if p.owner != nil {
		return p.owner.Element()
	}
	return nil
}

func (p *PropertyC) checkValue(v Object) {
	switch {
	case v.Document() != p.doc:
		panic("fxom: value belongs to another document")
	case v.ParentProperty() != nil:
		panic("fxom: value is already in a collection")
	case p.doc.root == v:
		panic("fxom: the document root cannot be added to a collection")
	case IsAncestor(v, p):
		panic("fxom: value would contain its own collection")
	}
}

// AddValue inserts v at index; a negative or out of range index appends.
func (p *PropertyC) AddValue(v Object, index int) {
	p.checkValue(v)
	if index < 0 || index > len(p.values) {
		index = len(p.values)
	}
	p.insert(v, index, -1)
}

// InsertValue puts v back where RemoveValue found it.
func (p *PropertyC) InsertValue(v Object, pos Position) {
	p.checkValue(v)
	at := -1
	if len(pos.glue) == 1 {
		at = pos.glue[0]
	}
	p.insert(v, min(pos.index, len(p.values)), at)
}

func (p *PropertyC) insert(v Object, index, at int) {
	defer p.doc.update()()
	if host, e := p.container(), v.Element(); host != nil && e != nil {
		if at < 0 {
			at = p.glueIndex(index)
		}
		insertChild(host, at, e)
	}
	p.values = slices.Insert(p.values, index, v)
	v.objectData().parent = p
}

// RemoveValue takes v out of the collection.
func (p *PropertyC) RemoveValue(v Object) Position {
	i := p.IndexOf(v)
	if i < 0 {
		panic("fxom: value is not in this collection")
	}
	defer p.doc.update()()
	pos := Position{index: i, glue: []int{-1}}
	if host, e := p.container(), v.Element(); host != nil && e != nil && e.Parent() == host {
		pos.glue[0] = e.Detach()
	}
	p.values = slices.Delete(p.values, i, i+1)
	v.objectData().parent = nil
	return pos
}

// glueIndex is the markup slot for a value entering at index: before the next
// value with markup, after the previous one, or where the collection sits
// among the owner's properties.
func (p *PropertyC) glueIndex(index int) int {
	host := p.container()
	for _, v := range p.values[index:] {
		if e := v.Element(); e != nil && e.Parent() == host {
			return host.IndexOf(e)
		}
	}
	for j := index - 1; j >= 0; j-- {
		if e := p.values[j].Element(); e != nil && e.Parent() == host {
			return host.IndexOf(e) + 1
		}
	}
	if p.elem == nil && p.owner != nil {
		if o, ok := p.owner.(Owner); ok {
			set := o.properties()
			return set.glueIndex(set.indexOf(p.name), p)
		}
	}
	return -1
}

// hosted returns the elements a property contributes under its owner's element.
func hosted(p Property) []*glue.Element {
	switch p := p.(type) {
	case *PropertyT:
		if p.elem != nil {
			return []*glue.Element{p.elem}
		}
	case *PropertyC:
		if p.elem != nil {
			return []*glue.Element{p.elem}
		}
		var out []*glue.Element
		for _, v := range p.values {
			if e := v.Element(); e != nil && e.Parent() != nil {
				out = append(out, e)
			}
		}
		return out
	}
	return nil
}

func insertChild(host *glue.Element, at int, e *glue.Element) {
	if at < 0 || at > host.ChildCount() {
		host.Append(e)
		return
	}
	host.Insert(at, e)
}

// propertySet is the ordered property map shared by instances and intrinsics.
type propertySet struct {
	self Owner
	m    *orderedmap.OrderedMap[string, Property]
}

func newPropertySet(self Owner) propertySet {
	return propertySet{self: self, m: orderedmap.New[string, Property]()}
}

func (s *propertySet) properties() *propertySet { return s }

func (s *propertySet) list() []Property {
	out := make([]Property, 0, s.m.Len())
	for p := s.m.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Value)
	}
	return out
}

func (s *propertySet) indexOf(name string) int {
	i := 0
	for p := s.m.Oldest(); p != nil; p = p.Next() {
		if p.Key == name {
			return i
		}
		i++
	}
	return -1
}

// Properties returns the properties in document order.
func (s *propertySet) Properties() []Property { return s.list() }

// Property returns the named property or nil.
func (s *propertySet) Property(name string) Property {
	p, _ := s.m.Get(name)
	return p
}

// AddProperty attaches p at index in the property order; a negative index
// appends. The markup goes next to the neighbouring properties.
func (s *propertySet) AddProperty(p Property, index int) {
	s.checkProperty(p)
	if index < 0 || index > s.m.Len() {
		index = s.m.Len()
	}
	s.attach(p, index, nil)
}

// InsertProperty puts p back where RemoveProperty found it.
func (s *propertySet) InsertProperty(p Property, pos Position) {
	s.checkProperty(p)
	s.attach(p, min(pos.index, s.m.Len()), pos.glue)
}

func (s *propertySet) checkProperty(p Property) {
	switch {
	case p.Document() != s.self.Document():
		panic("fxom: property belongs to another document")
	case p.Owner() != nil:
		panic("fxom: property already has an owner")
	case s.m.Len() > 0 && s.Property(p.Name()) != nil:
		panic(fmt.Sprintf("fxom: %v: %s", ErrDuplicateProperty, p.Name()))
	case IsAncestor(p, s.self):
		panic("fxom: property would contain its own owner")
	}
}

func (s *propertySet) attach(p Property, index int, at []int) {
	defer s.self.Document().update()()
	host := s.self.Element()
	switch p := p.(type) {
	case *PropertyT:
		if p.elem == nil {
			attrs := host.Attributes()
			i := s.attrIndex(index)
			if len(at) == 1 && at[0] >= 0 {
				i = at[0]
			}
			attrs.Insert(i, p.name, p.value)
		} else {
			i := s.glueIndex(index, nil)
			if len(at) == 1 {
				i = at[0]
			}
			insertChild(host, i, p.elem)
		}
	case *PropertyC:
		if p.elem != nil {
			i := s.glueIndex(index, nil)
			if len(at) == 1 {
				i = at[0]
			}
			insertChild(host, i, p.elem)
			break
		}
		if len(at) == len(p.values) {
			for k, v := range p.values {
				if e := v.Element(); e != nil && at[k] >= 0 {
					insertChild(host, at[k], e)
				}
			}
			break
		}
		i := s.glueIndex(index, nil)
		for _, v := range p.values {
			if e := v.Element(); e != nil {
				insertChild(host, i, e)
				if i >= 0 {
					i++
				}
			}
		}
	}
	insertAt(s.m, index, p.Name(), p)
	p.propertyData().owner = s.self
}

// RemoveProperty detaches p from the owner.
func (s *propertySet) RemoveProperty(p Property) Position {
	if s.Property(p.Name()) != p {
		panic("fxom: property is not owned here")
	}
	defer s.self.Document().update()()
	pos := Position{index: s.indexOf(p.Name())}
	host := s.self.Element()
	switch p := p.(type) {
	case *PropertyT:
		if p.elem == nil {
			_, i, _ := host.Attributes().Remove(p.name)
			pos.glue = []int{i}
		} else {
			pos.glue = []int{p.elem.Detach()}
		}
	case *PropertyC:
		if p.elem != nil {
			pos.glue = []int{p.elem.Detach()}
			break
		}
		pos.glue = make([]int, len(p.values))
		for k, v := range p.values {
			pos.glue[k] = -1
			if e := v.Element(); e != nil && e.Parent() == host {
				pos.glue[k] = host.IndexOf(e)
			}
		}
		for _, v := range p.values {
			if e := v.Element(); e != nil && e.Parent() == host {
				e.Detach()
			}
		}
	}
	s.m.Delete(p.Name())
	p.propertyData().owner = nil
	return pos
}

// glueIndex is the child slot under the owner's element for a property
// entering the order at index.
func (s *propertySet) glueIndex(index int, skip Property) int {
	host := s.self.Element()
	ps := slices.DeleteFunc(s.list(), func(p Property) bool { return p == skip })
	for _, p := range ps[min(index, len(ps)):] {
		if es := hosted(p); len(es) > 0 {
			return host.IndexOf(es[0])
		}
	}
	for j := min(index, len(ps)) - 1; j >= 0; j-- {
		if es := hosted(ps[j]); len(es) > 0 {
			return host.IndexOf(es[len(es)-1]) + 1
		}
	}
	return -1
}

// attrIndex is the attribute slot for an attribute property entering at index.
func (s *propertySet) attrIndex(index int) int {
	attrs := s.self.Element().Attributes()
	ps := s.list()
	for _, p := range ps[index:] {
		if t, ok := p.(*PropertyT); ok && t.elem == nil {
			return attrs.Index(t.name)
		}
	}
	for j := index - 1; j >= 0; j-- {
		if t, ok := ps[j].(*PropertyT); ok && t.elem == nil {
			return attrs.Index(t.name) + 1
		}
	}
	return attrs.Len()
}

func insertAt[V any](m *orderedmap.OrderedMap[string, V], index int, key string, v V) {
	m.Set(key, v)
	i := 0
	for p := m.Oldest(); p != nil; p = p.Next() {
		if p.Key == key {
			continue
		}
		if i == index {
			_ = m.MoveBefore(key, p.Key)
			return
		}
		i++
	}
	_ = m.MoveToBack(key)
}
