package fxom

import (
	"fmt"

	"github.com/agentic-research/fxom/internal/glue"
)

// MoveToDocument takes o out of its collection, or out of the root slot,
// and hands it with its whole subtree to dest. Handles issued by the source
// document become stale.
func MoveToDocument(o Object, dest *Document) {
	src := o.Document()
	if src == dest {
		return
	}
	src.BeginUpdate()
	if p := o.ParentProperty(); p != nil {
		p.RemoveValue(o)
	} else if src.root == o {
		src.SetRoot(nil)
	}
	if e := o.Element(); e != nil {
		e.MoveToDocument(dest.markup)
	}
	walk(o, func(n Node) bool {
		c := n.core()
		src.arena.release(c.handle)
		c.doc = dest
		c.handle = dest.arena.alloc(n)
		return true
	})
	src.EndUpdate()
}

// Clone deep-copies o. The copy is detached and owned by the same document.
func Clone(o Object) Object {
	return CloneRenamed(o, nil)
}

// CloneRenamed is Clone with every fx:id of the copy passed through rename.
// An empty result drops the id.
func CloneRenamed(o Object, rename func(id string) string) Object {
	d := o.Document()
	if v, ok := o.(*Virtual); ok {
		return d.NewVirtual(v.live)
	}
	e := o.Element().Clone()
	if rename != nil {
		e.Walk(func(x *glue.Element) bool {
			if x.Kind() != glue.KindElement {
				return false
			}
			attrs := x.Attributes()
			if id, ok := attrs.Get(AttrID); ok {
				if id = rename(id); id == "" {
					attrs.Remove(AttrID)
				} else {
					attrs.Set(AttrID, id)
				}
			}
			return true
		})
	}
	b := &builder{doc: d, arena: d.arena}
	c, err := b.object(e)
	if err != nil {
		// The source subtree built once already.
		panic(fmt.Sprintf("fxom: clone: %v", err))
	}
	return c
}
