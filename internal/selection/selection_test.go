package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/fxom/internal/fxom"
)

const view = `<VBox>
   <Button fx:id="a" />
   <HBox>
      <Label fx:id="b" />
   </HBox>
   <Label fx:id="c" />
</VBox>
`

func objects(t *testing.T) (*fxom.Document, []fxom.Object) {
	t.Helper()
	d, err := fxom.Load([]byte(view))
	require.NoError(t, err)
	ids := fxom.NewIDMap()
	fxom.Collect(d.Root(), ids)
	m := ids.Result()
	hbox := m["b"].ParentProperty().Owner()
	return d, []fxom.Object{m["a"], hbox, m["b"], m["c"]}
}

func TestNewGroup_DedupAndAnchor(t *testing.T) {
	_, o := objects(t)
	g := NewGroup([]fxom.Object{o[0], o[3], o[0]}, nil)
	assert.Equal(t, []fxom.Object{o[0], o[3]}, g.Items())
	assert.Same(t, o[3], g.Anchor())

	g = NewGroup([]fxom.Object{o[0], o[3]}, o[0])
	assert.Same(t, o[0], g.Anchor())

	g = NewGroup([]fxom.Object{o[0]}, o[3])
	assert.Same(t, o[0], g.Anchor(), "an anchor outside the items is ignored")

	assert.Same(t, Empty, NewGroup(nil, nil))
	assert.True(t, Empty.IsEmpty())
	assert.Nil(t, Empty.Document())
}

func TestNewGroup_MixedDocumentsPanics(t *testing.T) {
	_, o := objects(t)
	_, other := objects(t)
	assert.Panics(t, func() { Of(o[0], other[0]) })
}

func TestGroup_RootsAndCommonParent(t *testing.T) {
	_, o := objects(t)
	g := Of(o[1], o[2], o[3])
	assert.Equal(t, []fxom.Object{o[1], o[3]}, g.Roots())
	assert.Nil(t, g.CommonParent())

	sibs := Of(o[0], o[3])
	assert.NotNil(t, sibs.CommonParent())
	assert.Same(t, o[0].ParentProperty(), sibs.CommonParent())
	assert.Equal(t, 2, sibs.Handles().Len())
}

func TestGroup_ToggleWithout(t *testing.T) {
	_, o := objects(t)
	g := Of(o[0])
	g = g.Toggle(o[3])
	assert.Equal(t, []fxom.Object{o[0], o[3]}, g.Items())
	assert.Same(t, o[3], g.Anchor())

	g = g.Toggle(o[3])
	assert.Equal(t, []fxom.Object{o[0]}, g.Items())
	assert.True(t, g.Without(o[0]).IsEmpty())
}

func TestModel(t *testing.T) {
	d, o := objects(t)
	m := NewModel()
	assert.True(t, m.Group().IsEmpty())

	m.SelectObjects(o[0], o[2])
	assert.Equal(t, uint64(1), m.Revision())
	m.SelectObjects(o[0], o[2])
	assert.Equal(t, uint64(1), m.Revision(), "same selection is not a change")
	assert.True(t, m.IsSelected(o[2]))

	m.Toggle(o[2])
	assert.False(t, m.IsSelected(o[2]))

	m.SelectObjects(o[0], o[2])
	o[2].ParentProperty().RemoveValue(o[2])
	m.Prune(d)
	assert.Equal(t, []fxom.Object{o[0]}, m.Group().Items())

	m.Clear()
	assert.True(t, m.Group().IsEmpty())
}
