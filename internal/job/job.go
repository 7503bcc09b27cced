// Package job implements reversible edits over an fxom document. Every job
// moves through Fresh, Executed and Undone; executing a job that is not
// executable, or undoing one that never ran, panics.
package job

import (
	"errors"
	"fmt"

	"github.com/agentic-research/fxom/internal/fxom"
	"github.com/agentic-research/fxom/internal/metadata"
)

// ErrNotExecutable is the panic value when a non-executable job is executed.
var ErrNotExecutable = errors.New("job is not executable")

// State is the position of a job in its lifecycle.
type State uint8

const (
	Fresh State = iota
	Executed
	Undone
)

func (s State) String() string {
	switch s {
	case Executed:
		return "executed"
	case Undone:
		return "undone"
	default:
		return "fresh"
	}
}

// Job is a reversible edit.
type Job interface {
	// IsExecutable checks the preconditions once and caches the answer.
	IsExecutable() bool
	Execute()
	Undo()
	Redo()
	State() State
	Description() string
}

// Producer is implemented by jobs that declare the objects they leave in
// place, which become the selection after the job runs.
type Producer interface {
	Outputs() []fxom.Object
}

// step is the edit a machine drives.
type step interface {
	prepare() bool
	apply()
	revert()
}

// machine is the lifecycle shared by every job.
type machine struct {
	doc        *fxom.Document
	impl       step
	state      State
	checked    bool
	executable bool
}

func (m *machine) init(doc *fxom.Document, impl step) {
	m.doc, m.impl = doc, impl
}

// IsExecutable implements Job.
func (m *machine) IsExecutable() bool {
	if !m.checked {
		m.executable = m.doc != nil && m.impl.prepare()
		m.checked = true
	}
	return m.executable
}

// State implements Job.
func (m *machine) State() State { return m.state }

// Execute implements Job.
func (m *machine) Execute() {
	if m.state != Fresh {
		panic(fmt.Sprintf("job: execute in state %s", m.state))
	}
	if !m.IsExecutable() {
		panic(ErrNotExecutable)
	}
	m.doc.BeginUpdate()
	defer m.doc.EndUpdate()
	m.impl.apply()
	m.state = Executed
}

// Undo implements Job.
func (m *machine) Undo() {
	if m.state != Executed {
		panic(fmt.Sprintf("job: undo in state %s", m.state))
	}
	m.doc.BeginUpdate()
	defer m.doc.EndUpdate()
	m.impl.revert()
	m.state = Undone
}

// Redo implements Job.
func (m *machine) Redo() {
	if m.state != Undone {
		panic(fmt.Sprintf("job: redo in state %s", m.state))
	}
	m.doc.BeginUpdate()
	defer m.doc.EndUpdate()
	m.impl.apply()
	m.state = Executed
}

// Name is how an object appears in job descriptions.
func Name(o fxom.Object) string {
	switch o := o.(type) {
	case *fxom.Instance:
		return metadata.SimpleName(o.Class())
	case *fxom.Intrinsic:
		switch o.Kind() {
		case fxom.IntrinsicInclude:
			return "Include"
		case fxom.IntrinsicReference:
			return "Reference"
		default:
			return "Copy"
		}
	case *fxom.Define:
		return "Define"
	case *fxom.Script:
		return "Script"
	case *fxom.Comment:
		return "Comment"
	default:
		return "Object"
	}
}

// countLabel renders "Button" for one object and "3 Objects" otherwise.
func countLabel(objs []fxom.Object) string {
	if len(objs) == 1 {
		return Name(objs[0])
	}
	return fmt.Sprintf("%d Objects", len(objs))
}
