package job

import (
	"slices"

	"github.com/agentic-research/fxom/internal/fxom"
	"github.com/agentic-research/fxom/internal/selection"
)

// Batch runs an ordered list of sub-jobs computed on first use. It is
// executable only when the list is non-empty and every member is; undo runs
// the members backwards.
type Batch struct {
	machine
	makeSubJobs func() []Job
	describe    func(subs []Job) string
	subs        []Job
	computed    bool
}

// NewBatch returns a batch with a fixed description.
func NewBatch(doc *fxom.Document, description string, makeSubJobs func() []Job) *Batch {
	b := &Batch{}
	b.setup(doc, makeSubJobs, func([]Job) string { return description })
	return b
}

func (b *Batch) setup(doc *fxom.Document, makeSubJobs func() []Job, describe func([]Job) string) {
	b.makeSubJobs, b.describe = makeSubJobs, describe
	b.init(doc, b)
}

func (b *Batch) compute() {
	if !b.computed {
		if b.doc != nil {
			b.subs = b.makeSubJobs()
		}
		b.computed = true
	}
}

func (b *Batch) prepare() bool {
	b.compute()
	if len(b.subs) == 0 {
		return false
	}
	for _, s := range b.subs {
		if !s.IsExecutable() {
			return false
		}
	}
	return true
}

func (b *Batch) apply() {
	for _, s := range b.subs {
		if s.State() == Fresh {
			s.Execute()
		} else {
			s.Redo()
		}
	}
}

func (b *Batch) revert() {
	for i := len(b.subs) - 1; i >= 0; i-- {
		b.subs[i].Undo()
	}
}

// SubJobs returns the computed members, computing them if needed.
func (b *Batch) SubJobs() []Job {
	b.compute()
	return slices.Clone(b.subs)
}

// Outputs implements Producer with the outputs of every member.
func (b *Batch) Outputs() []fxom.Object {
	var out []fxom.Object
	for _, s := range b.subs {
		if p, ok := s.(Producer); ok {
			out = append(out, p.Outputs()...)
		}
	}
	return out
}

// Description implements Job. It computes the members so that it can
// describe what will actually happen.
func (b *Batch) Description() string {
	b.compute()
	return b.describe(b.subs)
}

// SelectionJob is a job that reads one selection and declares the next.
type SelectionJob interface {
	Job
	SelectionBefore() *selection.Group
	SelectionAfter() *selection.Group
}

// selectionBatch is a Batch built from a selection. The selection after the
// job is derived from the members' declared outputs.
type selectionBatch struct {
	Batch
	before *selection.Group
}

// SelectionBefore implements SelectionJob.
func (b *selectionBatch) SelectionBefore() *selection.Group { return b.before }

// SelectionAfter implements SelectionJob.
func (b *selectionBatch) SelectionAfter() *selection.Group {
	return selection.NewGroup(b.Outputs(), b.before.Anchor())
}
