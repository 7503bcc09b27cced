package job

import (
	"testing"

	"github.com/agentic-research/fxom/internal/fxom"
	"github.com/agentic-research/fxom/internal/selection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_UndoRedo(t *testing.T) {
	d := load(t, formView)
	_, button, label, _ := formNodes(t, d)
	text := label.Property("text").(*fxom.PropertyT)
	m := NewManager(d, nil, nil)

	assert.False(t, m.CanUndo())
	require.True(t, m.Push(NewModifyValue(text, "one")))
	require.True(t, m.Push(NewModifyFxID(button, "ok")))
	assert.Equal(t, "Set fx:id to ok", m.UndoDescription())
	assert.Equal(t, uint64(2), m.Revision())

	m.Undo()
	assert.Equal(t, "a", button.FxID())
	assert.True(t, m.CanRedo())
	assert.Equal(t, "Set fx:id to ok", m.RedoDescription())

	m.Redo()
	assert.Equal(t, "ok", button.FxID())

	m.Undo()
	m.Undo()
	assert.Equal(t, formView, string(d.Text()))
	assert.False(t, m.CanUndo())
	assert.Panics(t, m.Undo)

	require.True(t, m.Push(NewModifyValue(text, "two")))
	assert.False(t, m.CanRedo(), "push clears redo")
}

func TestManager_RejectsNonExecutable(t *testing.T) {
	d := load(t, formView)
	m := NewManager(d, nil, nil)
	assert.False(t, m.Push(NewDeleteSelection(selection.Empty)))
	assert.False(t, m.CanUndo())
}

func TestManager_SavedPoint(t *testing.T) {
	d := load(t, formView)
	_, _, label, _ := formNodes(t, d)
	text := label.Property("text").(*fxom.PropertyT)
	m := NewManager(d, nil, nil)
	assert.False(t, m.IsModified())

	m.Push(NewModifyValue(text, "one"))
	m.MarkSaved()
	assert.False(t, m.IsModified())
	assert.False(t, d.IsDirty())

	m.Push(NewModifyValue(text, "two"))
	assert.True(t, m.IsModified())
	m.Undo()
	assert.False(t, m.IsModified(), "back at the saved state")
	m.Undo()
	assert.True(t, m.IsModified())

	m.Push(NewModifyValue(text, "three"))
	assert.True(t, m.IsModified(), "the saved state is gone")
	m.Undo()
	assert.True(t, m.IsModified())
}

func TestManager_DrivesSelection(t *testing.T) {
	d := load(t, formView)
	_, button, _, _ := formNodes(t, d)
	sel := selection.NewModel()
	sel.SelectObjects(button)
	m := NewManager(d, sel, nil)

	require.True(t, m.Push(NewDeleteSelection(sel.Group())))
	assert.True(t, sel.Group().IsEmpty())

	m.Undo()
	assert.True(t, sel.IsSelected(button))

	m.Redo()
	assert.False(t, sel.IsSelected(button))
}
