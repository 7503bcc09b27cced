// Package selection holds the set of selected objects that edit jobs read
// and produce.
package selection

import (
	"slices"

	"github.com/agentic-research/fxom/internal/fxom"
)

// Group is an immutable snapshot of selected objects in selection order with
// one anchor, the object last interacted with.
type Group struct {
	items  []fxom.Object
	anchor fxom.Object
}

// Empty is the group with nothing selected.
var Empty = &Group{}

// NewGroup builds a group. Duplicates are dropped, keeping the first
// position. A nil anchor, or one that is not an item, defaults to the last
// item. All items must belong to one document.
func NewGroup(items []fxom.Object, anchor fxom.Object) *Group {
	g := &Group{}
	var doc *fxom.Document
	for _, o := range items {
		if o == nil || slices.Contains(g.items, o) {
			continue
		}
		if doc == nil {
			doc = o.Document()
		} else if o.Document() != doc {
			panic("selection: items belong to different documents")
		}
		g.items = append(g.items, o)
	}
	if len(g.items) == 0 {
		return Empty
	}
	g.anchor = g.items[len(g.items)-1]
	if anchor != nil && slices.Contains(g.items, anchor) {
		g.anchor = anchor
	}
	return g
}

// Of is NewGroup with the last object as anchor.
func Of(items ...fxom.Object) *Group { return NewGroup(items, nil) }

// Items returns the selected objects in order.
func (g *Group) Items() []fxom.Object { return slices.Clone(g.items) }

// Len returns the number of selected objects.
func (g *Group) Len() int { return len(g.items) }

// IsEmpty reports whether nothing is selected.
func (g *Group) IsEmpty() bool { return len(g.items) == 0 }

// Anchor returns the anchor, nil for an empty group.
func (g *Group) Anchor() fxom.Object { return g.anchor }

// Document returns the document of the items, nil for an empty group.
func (g *Group) Document() *fxom.Document {
	if len(g.items) == 0 {
		return nil
	}
	return g.items[0].Document()
}

// Contains reports whether o is selected.
func (g *Group) Contains(o fxom.Object) bool { return slices.Contains(g.items, o) }

// Roots returns the items that have no selected ancestor, in order.
func (g *Group) Roots() []fxom.Object {
	var out []fxom.Object
	for _, o := range g.items {
		nested := false
		for _, other := range g.items {
			if other != o && fxom.IsAncestor(other, o) {
				nested = true
				break
			}
		}
		if !nested {
			out = append(out, o)
		}
	}
	return out
}

// CommonParent returns the collection holding every item, nil when the
// items are spread over several collections.
func (g *Group) CommonParent() *fxom.PropertyC {
	var parent *fxom.PropertyC
	for i, o := range g.items {
		p := o.ParentProperty()
		if p == nil || i > 0 && p != parent {
			return nil
		}
		parent = p
	}
	return parent
}

// Handles returns the items as a handle set.
func (g *Group) Handles() *fxom.HandleSet {
	s := fxom.NewHandleSet()
	for _, o := range g.items {
		s.Add(o)
	}
	return s
}

// Toggle returns a group with o added, or removed when already selected.
// An added object becomes the anchor.
func (g *Group) Toggle(o fxom.Object) *Group {
	if g.Contains(o) {
		return g.Without(o)
	}
	return NewGroup(append(g.Items(), o), o)
}

// Without returns a group lacking the given objects.
func (g *Group) Without(objs ...fxom.Object) *Group {
	items := slices.DeleteFunc(g.Items(), func(o fxom.Object) bool { return slices.Contains(objs, o) })
	return NewGroup(items, g.anchor)
}

// Equal reports whether both groups hold the same items in the same order
// with the same anchor.
func (g *Group) Equal(other *Group) bool {
	return g.anchor == other.anchor && slices.Equal(g.items, other.items)
}

// Model is the current selection of an editing session.
type Model struct {
	group    *Group
	revision uint64
}

// NewModel returns a model with nothing selected.
func NewModel() *Model { return &Model{group: Empty} }

// Group returns the current selection.
func (m *Model) Group() *Group { return m.group }

// Revision increases with every change of selection.
func (m *Model) Revision() uint64 { return m.revision }

// Select replaces the selection. A nil group clears it.
func (m *Model) Select(g *Group) {
	if g == nil {
		g = Empty
	}
	if m.group.Equal(g) {
		return
	}
	m.group = g
	m.revision++
}

// SelectObjects selects objs with the last one as anchor.
func (m *Model) SelectObjects(objs ...fxom.Object) { m.Select(Of(objs...)) }

// Toggle adds or removes one object.
func (m *Model) Toggle(o fxom.Object) { m.Select(m.group.Toggle(o)) }

// Clear empties the selection.
func (m *Model) Clear() { m.Select(Empty) }

// IsSelected reports whether o is selected.
func (m *Model) IsSelected(o fxom.Object) bool { return m.group.Contains(o) }

// Prune drops selected objects that no longer belong to doc's tree, such as
// after a reload.
func (m *Model) Prune(doc *fxom.Document) {
	root := doc.Root()
	var keep []fxom.Object
	for _, o := range m.group.items {
		if root != nil && o.Document() == doc && fxom.IsAncestor(root, o) {
			keep = append(keep, o)
		}
	}
	m.Select(NewGroup(keep, m.group.anchor))
}
