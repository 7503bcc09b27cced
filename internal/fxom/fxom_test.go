package fxom

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const mainView = `<?xml version="1.0" encoding="UTF-8"?>

<?import javafx.scene.control.*?>
<?import javafx.scene.layout.*?>

<VBox xmlns:fx="http://javafx.com/fxml/1" fx:id="root" spacing="4.0">
   <Button fx:id="a" text="OK" />
   <Label text="$a.text" />
   <fx:reference source="a" />
</VBox>
`

// fakeObject is what fakeInstantiator produces.
type fakeObject struct {
	Class   string
	ID      string
	Text    map[string]string
	Objects map[string][]any
}

type fakeInstantiator struct {
	fail  map[string]error
	calls int
}

func (f *fakeInstantiator) Instantiate(req *Request) (any, error) {
	f.calls++
	if err := f.fail[req.Class]; err != nil {
		return nil, err
	}
	o := &fakeObject{Class: req.Class, ID: req.FxID, Text: map[string]string{}, Objects: map[string][]any{}}
	for _, p := range req.Properties {
		if p.IsText {
			o.Text[p.Name] = p.Text
		} else {
			o.Objects[p.Name] = p.Objects
		}
	}
	return o, nil
}

func load(t *testing.T, text string, opts ...Option) (*Document, *fakeInstantiator) {
	t.Helper()
	inst := &fakeInstantiator{fail: map[string]error{}}
	d, err := Load([]byte(text), append([]Option{WithInstantiator(inst)}, opts...)...)
	require.NoError(t, err)
	return d, inst
}

func live(t *testing.T, o Object) *fakeObject {
	t.Helper()
	v, ok := o.Live()
	require.True(t, ok, "no live object: %v", o.Failure())
	f, ok := v.(*fakeObject)
	require.True(t, ok)
	return f
}

// mainNodes returns the root and the three children of mainView.
func mainNodes(t *testing.T, d *Document) (*Instance, *Instance, *Instance, *Intrinsic) {
	t.Helper()
	root, ok := d.Root().(*Instance)
	require.True(t, ok)
	children := root.DefaultCollection()
	require.NotNil(t, children)
	require.Equal(t, 3, children.Len())
	button := children.Value(0).(*Instance)
	label := children.Value(1).(*Instance)
	ref := children.Value(2).(*Intrinsic)
	return root, button, label, ref
}
