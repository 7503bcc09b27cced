package job

import (
	"io"
	"log/slog"

	"github.com/agentic-research/fxom/internal/fxom"
	"github.com/agentic-research/fxom/internal/selection"
)

// Manager keeps the undo and redo stacks of one document. Jobs that
// implement SelectionJob also drive the selection model, when there is one.
type Manager struct {
	doc      *fxom.Document
	sel      *selection.Model
	logger   *slog.Logger
	undo     []Job
	redo     []Job
	revision uint64
	// saved is the undo depth matching the file on disk; -1 once that
	// state can no longer be reached.
	saved int
}

// NewManager returns a manager for doc. sel and logger may be nil.
func NewManager(doc *fxom.Document, sel *selection.Model, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{doc: doc, sel: sel, logger: logger}
}

// Push executes j and records it for undo. A job that is not executable is
// dropped and Push reports false.
func (m *Manager) Push(j Job) bool {
	if !j.IsExecutable() {
		m.logger.Debug("job not executable", "job", j.Description())
		return false
	}
	j.Execute()
	if m.saved > len(m.undo) {
		m.saved = -1
	}
	m.undo = append(m.undo, j)
	m.redo = nil
	m.revision++
	m.logger.Debug("job executed", "job", j.Description(), "depth", len(m.undo))
	if s, ok := j.(SelectionJob); ok {
		m.selectGroup(s.SelectionAfter())
	}
	return true
}

// CanUndo reports whether there is a job to undo.
func (m *Manager) CanUndo() bool { return len(m.undo) > 0 }

// CanRedo reports whether there is a job to redo.
func (m *Manager) CanRedo() bool { return len(m.redo) > 0 }

// UndoDescription names the job Undo would revert, "" when there is none.
func (m *Manager) UndoDescription() string {
	if len(m.undo) == 0 {
		return ""
	}
	return m.undo[len(m.undo)-1].Description()
}

// RedoDescription names the job Redo would replay, "" when there is none.
func (m *Manager) RedoDescription() string {
	if len(m.redo) == 0 {
		return ""
	}
	return m.redo[len(m.redo)-1].Description()
}

// Undo reverts the last executed job.
func (m *Manager) Undo() {
	if len(m.undo) == 0 {
		panic("job: nothing to undo")
	}
	j := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	j.Undo()
	m.redo = append(m.redo, j)
	m.revision++
	m.logger.Debug("job undone", "job", j.Description(), "depth", len(m.undo))
	if s, ok := j.(SelectionJob); ok {
		m.selectGroup(s.SelectionBefore())
	}
}

// Redo replays the last undone job.
func (m *Manager) Redo() {
	if len(m.redo) == 0 {
		panic("job: nothing to redo")
	}
	j := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	j.Redo()
	m.undo = append(m.undo, j)
	m.revision++
	m.logger.Debug("job redone", "job", j.Description(), "depth", len(m.undo))
	if s, ok := j.(SelectionJob); ok {
		m.selectGroup(s.SelectionAfter())
	}
}

// Revision counts the jobs pushed, undone and redone.
func (m *Manager) Revision() uint64 { return m.revision }

// Clear forgets both stacks. The current state becomes the saved one.
func (m *Manager) Clear() {
	m.undo, m.redo = nil, nil
	m.saved = 0
	m.revision++
}

// MarkSaved records the current state as the one on disk.
func (m *Manager) MarkSaved() {
	m.saved = len(m.undo)
	m.doc.MarkSaved()
}

// IsModified reports whether the document differs from the saved state.
// Undoing back to the saved state clears it.
func (m *Manager) IsModified() bool { return m.saved != len(m.undo) }

func (m *Manager) selectGroup(g *selection.Group) {
	if m.sel == nil || g == nil {
		return
	}
	m.sel.Select(g)
	m.sel.Prune(m.doc)
}
