package widget

import (
	"testing"

	"github.com/agentic-research/fxom/internal/fxom"
	"github.com/agentic-research/fxom/internal/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const view = `<VBox xmlns:fx="http://javafx.com/fxml/1" fx:id="root" spacing="4.0">
   <Button fx:id="ok" text="OK" />
   <Label text="$ok.text" />
   <fx:copy source="ok" />
   <fx:define>
      <Double fx:id="gap" fx:value="8" />
   </fx:define>
</VBox>`

func TestInstantiate_BuildsWidgets(t *testing.T) {
	d, err := fxom.Load([]byte(view), fxom.WithInstantiator(New(metadata.Builtin())))
	require.NoError(t, err)

	v, ok := d.Root().Live()
	require.True(t, ok, "%v", d.Root().Failure())
	root := v.(*Widget)
	assert.Equal(t, "javafx.scene.layout.VBox", root.Class)
	assert.Equal(t, "root", root.ID)
	assert.Equal(t, "4.0", root.Get("spacing"))

	children := root.Children("children")
	require.Len(t, children, 3)
	button := children[0].(*Widget)
	assert.Equal(t, "Button#ok", button.String())
	assert.Equal(t, "OK", button.Get("text"))

	dup := children[2].(*Widget)
	assert.Equal(t, button.Class, dup.Class)
	assert.NotSame(t, button, dup, "fx:copy duplicates the widget")
}

func TestInstantiate_Failures(t *testing.T) {
	in := New(metadata.Builtin())

	_, err := in.Instantiate(&fxom.Request{Class: "Spinner"})
	assert.ErrorIs(t, err, fxom.ErrClassNotFound)

	_, err = in.Instantiate(&fxom.Request{Class: "Node"})
	assert.ErrorIs(t, err, fxom.ErrAbstractType)

	v, err := in.Instantiate(&fxom.Request{Class: "Double", Attributes: map[string]string{fxom.AttrValue: " 8 "}})
	require.NoError(t, err)
	assert.Equal(t, "8", v.(*Widget).Value)
}

func TestInstantiate_Strict(t *testing.T) {
	in := New(metadata.Builtin())
	in.Strict = true
	label, err := in.Instantiate(&fxom.Request{Class: "Label"})
	require.NoError(t, err)

	_, err = in.Instantiate(&fxom.Request{
		Class:      "TabPane",
		Properties: []fxom.PropertyValue{{Name: "tabs", Objects: []any{label}}},
	})
	assert.ErrorIs(t, err, fxom.ErrNotInstantiable)

	_, err = in.Instantiate(&fxom.Request{
		Class:      "VBox",
		Properties: []fxom.PropertyValue{{Name: "children", Objects: []any{label}}},
	})
	assert.NoError(t, err)
}
