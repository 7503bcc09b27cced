package fxom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const idsView = `<VBox xmlns:fx="x" fx:id="root">
   <Button fx:id="dup" text="first" />
   <HBox>
      <Button fx:id="dup" text="second" />
      <Label fx:id="lbl" text="${dup.text + lbl2}" />
   </HBox>
   <fx:copy source="dup" />
   <TextField promptText="\$literal" text="$lbl.text" style="@style.css" />
</VBox>
`

func TestFirstByID_FirstOccurrence(t *testing.T) {
	d, _ := load(t, idsView)
	c := NewFirstByID("dup", nil)
	Collect(d.Root(), c)
	require.NotNil(t, c.Result())
	assert.Equal(t, "first", c.Result().(*Instance).Property("text").(*PropertyT).Value())

	missing := NewFirstByID("nope", nil)
	Collect(d.Root(), missing)
	assert.Nil(t, missing.Result())
}

func TestFirstByID_ExcludedSubtree(t *testing.T) {
	d, _ := load(t, idsView)
	first := NewFirstByID("dup", nil)
	Collect(d.Root(), first)

	c := NewFirstByID("dup", SubtreeSet(first.Result()))
	Collect(d.Root(), c)
	require.NotNil(t, c.Result())
	assert.Equal(t, "second", c.Result().(*Instance).Property("text").(*PropertyT).Value())
}

func TestIDMap_LastOccurrenceWins(t *testing.T) {
	d, _ := load(t, idsView)
	c := NewIDMap()
	Collect(d.Root(), c)

	ids := c.Result()
	assert.Len(t, ids, 3)
	assert.Equal(t, "second", ids["dup"].(*Instance).Property("text").(*PropertyT).Value())
	assert.Len(t, c.Duplicates()["dup"], 2)
	assert.NotContains(t, c.Duplicates(), "lbl")
}

func TestFirstByLiveType(t *testing.T) {
	d, _ := load(t, idsView)
	c := NewFirstByLiveType[*fakeObject]()
	Collect(d.Root(), c)
	assert.Same(t, d.Root(), c.Result(), "pre-order finds the root first")

	none := NewFirstByLiveType[string]()
	Collect(d.Root().(*Instance).DefaultCollection().Value(0), none)
	assert.Nil(t, none.Result())
}

func TestReferencesBySource_FollowsDeclaration(t *testing.T) {
	d, _ := load(t, mainView)
	_, button, _, ref := mainNodes(t, d)

	c := NewReferencesBySource("a")
	Collect(d.Root(), c)
	assert.Equal(t, []*Intrinsic{ref}, c.Result())

	ch := button.SetFxID("")
	c = NewReferencesBySource("a")
	Collect(d.Root(), c)
	assert.Empty(t, c.Result())

	raw := NewIntrinsics(IntrinsicReference, "a", nil)
	Collect(d.Root(), raw)
	assert.Equal(t, []*Intrinsic{ref}, raw.Result(), "the raw query ignores resolution")

	button.RestoreAttr(ch)
	c = NewReferencesBySource("a")
	Collect(d.Root(), c)
	assert.Equal(t, []*Intrinsic{ref}, c.Result())
}

func TestIntrinsics_KindsAndExclusion(t *testing.T) {
	d, _ := load(t, idsView)
	all := NewIntrinsics(AnyIntrinsic, "", nil)
	Collect(d.Root(), all)
	require.Len(t, all.Result(), 1)
	assert.Equal(t, IntrinsicCopy, all.Result()[0].Kind())

	refsOnly := NewIntrinsics(IntrinsicReference, "", nil)
	Collect(d.Root(), refsOnly)
	assert.Empty(t, refsOnly.Result())

	excluded := NewIntrinsics(AnyIntrinsic, "", SubtreeSet(all.Result()[0]))
	Collect(d.Root(), excluded)
	assert.Empty(t, excluded.Result())
}

func TestExpressionReferences(t *testing.T) {
	d, _ := load(t, idsView)
	c := NewExpressionReferences("lbl")
	Collect(d.Root(), c)
	require.Len(t, c.Result(), 1)
	assert.Equal(t, "$lbl.text", c.Result()[0].Value())

	b := NewExpressionReferences("dup")
	Collect(d.Root(), b)
	require.Len(t, b.Result(), 1)
	assert.Equal(t, "${dup.text + lbl2}", b.Result()[0].Value())
}

func TestSimpleProperties(t *testing.T) {
	d, _ := load(t, idsView)
	c := NewSimpleProperties()
	Collect(d.Root(), c)
	values := []string{}
	for _, p := range c.Result() {
		values = append(values, p.Value())
	}
	assert.Equal(t, []string{"first", "second", `\$literal`, "@style.css"}, values)
}

// pruneAt rejects objects of one class and records what it saw.
type pruneAt struct {
	objectsOnly
	class string
	seen  []string
	left  int
}

func (c *pruneAt) AcceptObject(o Object) bool {
	i, ok := o.(*Instance)
	return !ok || i.Class() != c.class
}

func (c *pruneAt) VisitObject(o Object) {
	if i, ok := o.(*Instance); ok {
		c.seen = append(c.seen, i.Class())
	}
}

func (c *pruneAt) Leave(Node) { c.left++ }

func TestCollect_PruneSkipsSubtree(t *testing.T) {
	d, _ := load(t, idsView)
	c := &pruneAt{class: "HBox"}
	Collect(d.Root(), c)
	assert.Equal(t, []string{"VBox", "Button", "TextField"}, c.seen)
}

func TestComposite_IndependentPruning(t *testing.T) {
	d, _ := load(t, idsView)
	pruning := &pruneAt{class: "HBox"}
	all := NewObjectsByClass("Button")
	exprs := NewExpressionReferences("dup")
	comp := NewComposite(pruning, all, exprs)
	assert.Equal(t, VisitAll, comp.Strategy())

	Collect(d.Root(), comp)
	assert.Equal(t, []string{"VBox", "Button", "TextField"}, pruning.seen)
	assert.Len(t, all.Result(), 2, "the other member still sees inside the pruned subtree")
	assert.Len(t, exprs.Result(), 1)

	single := &pruneAt{class: "HBox"}
	Collect(d.Root(), single)
	assert.Equal(t, single.left, pruning.left, "leave is only reported for entered nodes")
}

func TestDependencies_Locations(t *testing.T) {
	d, _ := load(t, idsView)
	deps := d.Dependencies()
	require.Len(t, deps, 1)
	assert.Equal(t, DependencyLocation, deps[0].Kind)
	assert.Equal(t, "style.css", deps[0].Path)
}
