package fxom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveValue_InsertValueRestoresExactly(t *testing.T) {
	d, _ := load(t, mainView)
	root, _, label, _ := mainNodes(t, d)
	children := root.DefaultCollection()

	pos := children.RemoveValue(label)
	assert.Equal(t, 1, pos.Index())
	assert.Nil(t, label.ParentProperty())
	assert.NotContains(t, string(d.Text()), "Label")
	assert.Len(t, live(t, root).Objects["children"], 2)

	children.InsertValue(label, pos)
	assert.Equal(t, mainView, string(d.Text()))
	assert.Same(t, label, children.Value(1))
	assert.Len(t, live(t, root).Objects["children"], 3)
}

func TestRemoveProperty_InsertPropertyRestoresExactly(t *testing.T) {
	d, _ := load(t, mainView)
	root, _, _, _ := mainNodes(t, d)

	for _, name := range []string{"spacing", "children"} {
		p := root.Property(name)
		pos := root.RemoveProperty(p)
		assert.Nil(t, p.Owner())
		assert.Nil(t, root.Property(name))
		assert.NotEqual(t, mainView, string(d.Text()))

		root.InsertProperty(p, pos)
		assert.Equal(t, mainView, string(d.Text()), name)
		assert.Same(t, root, p.Owner())
	}
}

func TestAddValue_PlacesMarkupBetweenNeighbours(t *testing.T) {
	d, _ := load(t, mainView)
	root, _, _, _ := mainNodes(t, d)
	children := root.DefaultCollection()

	sep := d.NewInstance("Separator")
	children.AddValue(sep, 1)
	assert.Same(t, sep, children.Value(1))
	assert.Equal(t, "Separator", root.Element().Child(1).Tag())

	last := d.NewInstance("Region")
	children.AddValue(last, 99)
	assert.Same(t, last, children.Value(4))
	assert.Equal(t, "Region", root.Element().Child(4).Tag())
}

func TestAddValue_Preconditions(t *testing.T) {
	d, _ := load(t, mainView)
	root, button, _, _ := mainNodes(t, d)
	children := root.DefaultCollection()

	assert.Panics(t, func() { children.AddValue(button, 0) }, "already in a collection")
	assert.Panics(t, func() { children.AddValue(root, 0) }, "document root")
	other := NewDocument()
	assert.Panics(t, func() { children.AddValue(other.NewInstance("Pane"), 0) }, "foreign document")
}

func TestAddProperty_OrdersMarkup(t *testing.T) {
	d, _ := load(t, mainView)
	root, button, _, _ := mainNodes(t, d)

	padding := d.NewCollection("padding")
	padding.AddValue(d.NewInstance("Insets"), -1)
	root.AddProperty(padding, 1)
	assert.Equal(t, "padding", root.Element().Child(0).Tag(), "before the implicit children")
	assert.Equal(t, 1, root.properties().indexOf("padding"))

	text := button.Property("text")
	assert.Panics(t, func() { root.AddProperty(text, 0) }, "already owned")
	assert.Panics(t, func() { root.AddProperty(d.NewAttributeProperty("spacing", "1"), 0) }, "duplicate")

	style := d.NewAttributeProperty("style", "-fx-base: red")
	button.AddProperty(style, 0)
	assert.Equal(t, []string{"fx:id", "style", "text"}, button.Element().Attributes().Names())

	tip := d.NewElementProperty("accessibleText", "ok button")
	button.AddProperty(tip, -1)
	assert.Contains(t, string(d.Text()), "<accessibleText>ok button</accessibleText>")
}

func TestImplicitCollection_AddedToEmptyOwner(t *testing.T) {
	d, _ := load(t, `<VBox spacing="2" />`)
	root := d.Root().(*Instance)

	children := d.NewImplicitCollection("children")
	children.AddValue(d.NewInstance("Button"), -1)
	root.AddProperty(children, -1)
	assert.Equal(t, "Button", root.Element().Child(0).Tag())

	children.AddValue(d.NewInstance("Label"), 0)
	assert.Equal(t, "Label", root.Element().Child(0).Tag())
	assert.Equal(t, "Button", root.Element().Child(1).Tag())
}

func TestPropertyT_SetValueInPlace(t *testing.T) {
	d, _ := load(t, mainView)
	_, button, _, _ := mainNodes(t, d)
	text := button.Property("text").(*PropertyT)

	prev := text.SetValue("Apply")
	assert.Equal(t, "OK", prev)
	assert.Contains(t, string(d.Text()), `<Button fx:id="a" text="Apply" />`)
	text.SetValue(prev)
	assert.Equal(t, mainView, string(d.Text()))
}

func TestSetFxID_RestoreAttr(t *testing.T) {
	d, _ := load(t, mainView)
	_, button, label, _ := mainNodes(t, d)

	ch := button.SetFxID("")
	assert.Equal(t, "", button.FxID())
	button.RestoreAttr(ch)
	assert.Equal(t, mainView, string(d.Text()))

	ch = label.SetFxID("caption")
	assert.Contains(t, string(d.Text()), `<Label text="$a.text" fx:id="caption" />`)
	label.RestoreAttr(ch)
	assert.Equal(t, mainView, string(d.Text()))
}

func TestDescendantsAndAncestry(t *testing.T) {
	d, _ := load(t, mainView)
	root, button, _, ref := mainNodes(t, d)

	assert.True(t, IsAncestor(root, button))
	assert.False(t, IsAncestor(button, root))
	all := Descendants(root)
	require.NotEmpty(t, all)
	assert.Contains(t, all, Node(ref))

	set := SubtreeSet(button)
	assert.True(t, set.Contains(button))
	assert.True(t, set.Contains(button.Property("text")))
	assert.False(t, set.Contains(ref))
	assert.Equal(t, 2, set.Len())
}
