package glue

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Attr is a single attribute as it appears in the markup.
type Attr struct {
	Name  string
	Value string
}

// Attributes is the ordered attribute set of an element.
// Setting an existing name updates it in place; new names append.
type Attributes struct {
	m *orderedmap.OrderedMap[string, string]
}

func newAttributes() *Attributes {
	return &Attributes{m: orderedmap.New[string, string]()}
}

// Len returns the number of attributes.
func (a *Attributes) Len() int {
	return a.m.Len()
}

// Get returns the value of name.
func (a *Attributes) Get(name string) (string, bool) {
	return a.m.Get(name)
}

// Value returns the value of name or "" when absent.
func (a *Attributes) Value(name string) string {
	v, _ := a.m.Get(name)
	return v
}

// Has reports whether name is present.
func (a *Attributes) Has(name string) bool {
	_, ok := a.m.Get(name)
	return ok
}

// Set updates name in place or appends it.
func (a *Attributes) Set(name, value string) {
	a.m.Set(name, value)
}

// Index returns the position of name or -1.
func (a *Attributes) Index(name string) int {
	i := 0
	for p := a.m.Oldest(); p != nil; p = p.Next() {
		if p.Key == name {
			return i
		}
		i++
	}
	return -1
}

// Insert places name at index. An existing name is moved there.
// An index past the end appends.
func (a *Attributes) Insert(index int, name, value string) {
	a.m.Set(name, value)
	var mark string
	found := false
	i := 0
	for p := a.m.Oldest(); p != nil; p = p.Next() {
		if p.Key == name {
			continue
		}
		if i == index {
			mark = p.Key
			found = true
			break
		}
		i++
	}
	if !found {
		if err := a.m.MoveToBack(name); err != nil {
			panic("glue: attribute vanished during insert: " + name)
		}
		return
	}
	if err := a.m.MoveBefore(name, mark); err != nil {
		panic("glue: attribute vanished during insert: " + name)
	}
}

// Remove deletes name and reports the value and position it had.
func (a *Attributes) Remove(name string) (value string, index int, ok bool) {
	index = a.Index(name)
	if index < 0 {
		return "", -1, false
	}
	value, _ = a.m.Delete(name)
	return value, index, true
}

// All returns the attributes in order.
func (a *Attributes) All() []Attr {
	out := make([]Attr, 0, a.m.Len())
	for p := a.m.Oldest(); p != nil; p = p.Next() {
		out = append(out, Attr{Name: p.Key, Value: p.Value})
	}
	return out
}

// Names returns the attribute names in order.
func (a *Attributes) Names() []string {
	out := make([]string, 0, a.m.Len())
	for p := a.m.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Key)
	}
	return out
}

func (a *Attributes) clone() *Attributes {
	c := newAttributes()
	for p := a.m.Oldest(); p != nil; p = p.Next() {
		c.m.Set(p.Key, p.Value)
	}
	return c
}
