package tests

import (
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/fxom/internal/fxom"
	"github.com/agentic-research/fxom/internal/index"
	"github.com/agentic-research/fxom/internal/job"
	"github.com/agentic-research/fxom/internal/linter"
	"github.com/agentic-research/fxom/internal/metadata"
	"github.com/agentic-research/fxom/internal/query"
	"github.com/agentic-research/fxom/internal/selection"
	"github.com/agentic-research/fxom/internal/widget"
)

// testFixture bundles the shared state for integration tests: an in-memory
// filesystem holding a main view and the view it includes, the document
// opened from it, and a job manager driving a selection model.
type testFixture struct {
	fs  billy.Filesystem
	doc *fxom.Document
	sel *selection.Model
	mgr *job.Manager
}

const mainView = `<?xml version="1.0" encoding="UTF-8"?>

<?import javafx.scene.control.*?>
<?import javafx.scene.layout.*?>

<BorderPane xmlns:fx="http://javafx.com/fxml/1" fx:id="root" fx:controller="example.Main">
   <top>
      <Label fx:id="title" text="Title" />
   </top>
   <Button fx:id="ok" onAction="#save" text="OK" />
   <fx:include fx:id="footer" source="part.fxml" />
   <Label text="$ok.text" />
</BorderPane>
`

const partView = `<HBox xmlns:fx="http://javafx.com/fxml/1">
   <Label text="footer" />
</HBox>
`

func openDocument(t *testing.T, fs billy.Filesystem) *fxom.Document {
	t.Helper()
	md := metadata.Builtin()
	doc, err := fxom.Open(fs, "main.fxml",
		fxom.WithMetadata(md),
		fxom.WithInstantiator(widget.New(md)),
	)
	require.NoError(t, err)
	return doc
}

func setup(t *testing.T) *testFixture {
	t.Helper()
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "main.fxml", []byte(mainView), 0o644))
	require.NoError(t, util.WriteFile(fs, "part.fxml", []byte(partView), 0o644))

	doc := openDocument(t, fs)
	sel := selection.NewModel()
	return &testFixture{fs: fs, doc: doc, sel: sel, mgr: job.NewManager(doc, sel, nil)}
}

func (f *testFixture) byID(t *testing.T, id string) fxom.Object {
	t.Helper()
	c := fxom.NewFirstByID(id, nil)
	fxom.Collect(f.doc.Root(), c)
	require.NotNil(t, c.Result(), "fx:id %s", id)
	return c.Result()
}

func TestLoad_InstantiatesEverything(t *testing.T) {
	f := setup(t)
	assert.Equal(t, mainView, string(f.doc.Text()))
	assert.Empty(t, linter.Lint(f.doc))

	live, ok := f.byID(t, "ok").Live()
	require.True(t, ok)
	w, ok := live.(*widget.Widget)
	require.True(t, ok)
	assert.Equal(t, "OK", w.Get("text"))

	footer := f.byID(t, "footer").(*fxom.Intrinsic)
	require.NotNil(t, footer.Included())
	assert.NoError(t, footer.Failure())
}

func TestEditSession_UndoRedoSave(t *testing.T) {
	f := setup(t)
	root := f.doc.Root().(*fxom.Instance)
	ok := f.byID(t, "ok")

	require.True(t, f.mgr.Push(job.NewRenameFxID(ok, "confirm")))
	assert.Contains(t, string(f.doc.Text()), `text="$confirm.text"`)

	require.True(t, f.mgr.Push(job.NewMoveIntoAccessory(selection.Of(ok), root, "center")))
	assert.Same(t, root.Property("center"), ok.ParentProperty())
	assert.True(t, f.sel.IsSelected(ok))

	expr := root.DefaultCollection().Value(1)
	require.True(t, f.mgr.Push(job.NewDuplicateSelection(selection.Of(expr))))
	assert.Equal(t, 3, root.DefaultCollection().Len())

	require.True(t, f.mgr.Push(job.NewDeleteObject(ok)))
	afterText := string(f.doc.Text())
	assert.NotContains(t, afterText, "Button")
	assert.NotContains(t, afterText, "$confirm")
	assert.True(t, f.sel.Group().IsEmpty())
	assert.Empty(t, linter.Lint(f.doc))

	for f.mgr.CanUndo() {
		f.mgr.Undo()
	}
	assert.Equal(t, mainView, string(f.doc.Text()))
	assert.False(t, f.mgr.IsModified())

	for f.mgr.CanRedo() {
		f.mgr.Redo()
	}
	assert.Equal(t, afterText, string(f.doc.Text()))
	assert.True(t, f.mgr.IsModified())

	require.NoError(t, f.doc.Save())
	f.mgr.MarkSaved()
	assert.False(t, f.doc.IsDirty())

	reopened := openDocument(t, f.fs)
	assert.Equal(t, afterText, string(reopened.Text()))
}

func TestIndexAndQuery(t *testing.T) {
	f := setup(t)

	ix, err := index.Create("", nil)
	require.NoError(t, err)
	defer func() { _ = ix.Close() }()

	part, err := fxom.Open(f.fs, "part.fxml")
	require.NoError(t, err)
	ix.AddDocument("main.fxml", f.doc)
	ix.AddDocument("part.fxml", part)
	require.NoError(t, ix.Flush())

	files, err := ix.Files(index.Token(index.KindClass, "Label"))
	require.NoError(t, err)
	assert.Equal(t, []string{"main.fxml", "part.fxml"}, files)

	files, err = ix.Files(index.Token(index.KindInclude, "part.fxml"))
	require.NoError(t, err)
	assert.Equal(t, []string{"main.fxml"}, files)

	ids, err := query.Run(f.doc, "$..id")
	require.NoError(t, err)
	assert.ElementsMatch(t, []any{"root", "title", "ok", "footer"}, ids)
}
