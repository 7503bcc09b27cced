package metadata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltin_Accessories(t *testing.T) {
	c := Builtin()

	acc := c.Accessory("VBox", "children")
	assert.Equal(t, AccessoryCollection, acc.Kind, "inherited from Pane")
	assert.Equal(t, "Node", acc.Content)

	assert.Equal(t, AccessorySingle, c.Accessory("Button", "graphic").Kind)
	assert.Equal(t, AccessoryNone, c.Accessory("Button", "children").Kind)
	assert.Equal(t, AccessoryNone, c.Accessory("Unknown", "children").Kind)

	assert.Equal(t, "children", c.DefaultProperty("javafx.scene.layout.VBox"))
	assert.Equal(t, "tabs", c.DefaultProperty("TabPane"))
	assert.Equal(t, "", c.DefaultProperty("Button"))
}

func TestBuiltin_Assignability(t *testing.T) {
	c := Builtin()
	assert.True(t, c.IsAssignable("Button", "Node"))
	assert.True(t, c.IsAssignable("VBox", "Parent"))
	assert.True(t, c.IsAssignable("Tab", "Tab"))
	assert.False(t, c.IsAssignable("Tab", "Node"))
	assert.False(t, c.IsAssignable("Color", "Node"))
	assert.True(t, c.IsAssignable("Color", ""))

	assert.True(t, Accepts(c, "VBox", "children", "Label"))
	assert.False(t, Accepts(c, "VBox", "children", "Tab"))
	assert.False(t, Accepts(c, "Label", "children", "Label"))
}

func TestLookup_Qualified(t *testing.T) {
	c := Builtin()
	cls, ok := c.Lookup("javafx.scene.control.Button")
	require.True(t, ok)
	assert.Equal(t, "javafx.scene.control.Button", cls.QualifiedName())
	assert.False(t, cls.Abstract)

	cls, ok = c.Lookup("Node")
	require.True(t, ok)
	assert.True(t, cls.Abstract)
}

func TestParseCatalog_Errors(t *testing.T) {
	cases := map[string]string{
		"syntax":        `class "A" {`,
		"unknown kind":  `class "A" { accessory "x" { kind = "many" } }`,
		"duplicate":     `class "A" {}` + "\n" + `class "A" {}`,
		"unknown super": `class "A" { extends = "B" }`,
		"cycle":         `class "A" { extends = "B" }` + "\n" + `class "B" { extends = "A" }`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(src), "test.hcl")
			assert.Error(t, err)
		})
	}
}

func TestLoadCatalog_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "widgets.hcl")
	src := `
class "Box" {
  default_property = "items"
  accessory "items" {
    kind    = "collection"
    content = "Item"
  }
}
class "Item" {}
class "SpecialItem" { extends = "Item" }
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Box", "Item", "SpecialItem"}, c.Classes())
	assert.True(t, Accepts(c, "Box", "items", "SpecialItem"))

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.hcl"))
	assert.Error(t, err)
}
