package job

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agentic-research/fxom/internal/fxom"
	"github.com/agentic-research/fxom/internal/metadata"
	"github.com/agentic-research/fxom/internal/selection"
)

// ValidID reports whether id can serve as an fx:id: a letter, '_' or '$'
// followed by letters, digits, '_' or '$'.
func ValidID(id string) bool {
	if id == "" {
		return false
	}
	for i, r := range id {
		letter := r == '_' || r == '$' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
		if !letter && (i == 0 || r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// RenameFxIDJob changes an fx:id together with the references, copies and
// expressions that resolve through it.
type RenameFxIDJob struct {
	Batch
	obj fxom.Object
	id  string
}

// NewRenameFxID renames the fx:id of o to id.
func NewRenameFxID(o fxom.Object, id string) *RenameFxIDJob {
	j := &RenameFxIDJob{obj: o, id: id}
	old := fxom.FxID(o)
	j.setup(o.Document(), j.makeSubJobs, func([]Job) string {
		return fmt.Sprintf("Rename %s to %s", old, id)
	})
	return j
}

func (j *RenameFxIDJob) makeSubJobs() []Job {
	old := fxom.FxID(j.obj)
	root := j.doc.Root()
	if old == "" || old == j.id || !ValidID(j.id) || root == nil {
		return nil
	}
	ids := fxom.NewIDMap()
	refs := fxom.NewIntrinsics(fxom.IntrinsicReference|fxom.IntrinsicCopy, old, nil)
	exprs := fxom.NewExpressionReferences(old)
	fxom.Collect(root, fxom.NewComposite(ids, refs, exprs))
	if _, taken := ids.Result()[j.id]; taken {
		return nil
	}

	subs := []Job{NewModifyFxID(j.obj, j.id)}
	for _, r := range refs.Result() {
		if r.Target() == j.obj {
			subs = append(subs, NewModifySource(r, j.id))
		}
	}
	// Expressions resolve to the first declaration.
	if first := ids.All(old); len(first) > 0 && first[0] == j.obj {
		for _, p := range exprs.Result() {
			subs = append(subs, NewModifyValue(p, fxom.RenameRoot(p.Value(), old, j.id)))
		}
	}
	return subs
}

// DeleteJob removes objects together with the references, copies and
// expressions elsewhere in the document that point into them.
type DeleteJob struct {
	selectionBatch
	objs []fxom.Object
}

// NewDeleteObject deletes a single object.
func NewDeleteObject(o fxom.Object) *DeleteJob {
	return newDelete(selection.Of(o))
}

// NewDeleteSelection deletes every selected object.
func NewDeleteSelection(g *selection.Group) *DeleteJob {
	return newDelete(g)
}

func newDelete(g *selection.Group) *DeleteJob {
	j := &DeleteJob{objs: g.Roots()}
	j.before = g
	j.setup(g.Document(), j.makeSubJobs, func([]Job) string {
		if len(j.objs) == 0 {
			return "Delete"
		}
		return "Delete " + countLabel(j.objs)
	})
	return j
}

// SelectionAfter implements SelectionJob: nothing is left selected.
func (j *DeleteJob) SelectionAfter() *selection.Group { return selection.Empty }

func (j *DeleteJob) makeSubJobs() []Job {
	root := j.doc.Root()
	if len(j.objs) == 0 || root == nil {
		return nil
	}
	doomed := fxom.NewHandleSet()
	declared := fxom.NewIDMap()
	for _, o := range j.objs {
		doomed.AddSubtree(o)
		fxom.Collect(o, declared)
	}

	all := fxom.NewIDMap()
	refs := fxom.NewIntrinsics(fxom.IntrinsicReference|fxom.IntrinsicCopy, "", doomed)
	members := []fxom.Collector{all, refs}
	var exprs []*fxom.ExpressionReferences
	for id := range declared.Result() {
		c := fxom.NewExpressionReferences(id)
		exprs = append(exprs, c)
		members = append(members, c)
	}
	fxom.Collect(root, fxom.NewComposite(members...))

	// An id still declared outside the deleted objects keeps its users.
	orphaned := func(id string) bool {
		for _, o := range all.All(id) {
			if !doomed.Contains(o) {
				return false
			}
		}
		return true
	}

	var subs []Job
	seen := fxom.NewHandleSet()
	for _, r := range refs.Result() {
		if r.Target() == nil || !doomed.Contains(r.Target()) || r.ParentProperty() == nil || !orphaned(r.Source()) {
			continue
		}
		seen.AddSubtree(r)
		subs = append(subs, NewRemovePropertyValue(r))
	}
	for _, c := range exprs {
		for _, p := range c.Result() {
			if doomed.Contains(p) || seen.Contains(p) || p.Owner() == nil || seen.Contains(p.Owner()) {
				continue
			}
			for _, id := range fxom.ParseValue(p.Value()).Roots() {
				if orphaned(id) {
					seen.Add(p)
					subs = append(subs, NewRemoveProperty(p))
					break
				}
			}
		}
	}
	for _, o := range j.objs {
		if o.ParentProperty() != nil {
			subs = append(subs, NewRemovePropertyValue(o))
		} else if o == root {
			subs = append(subs, NewSetRoot(j.doc, nil))
		}
	}
	return subs
}

// MoveIntoAccessoryJob moves the selected objects into an accessory of a
// target object. Objects the accessory does not accept are dropped.
type MoveIntoAccessoryJob struct {
	selectionBatch
	target     fxom.Owner
	accessory  string
	candidates []fxom.Object
}

// NewMoveIntoAccessory moves the roots of g into accessory of target.
func NewMoveIntoAccessory(g *selection.Group, target fxom.Owner, accessory string) *MoveIntoAccessoryJob {
	j := &MoveIntoAccessoryJob{target: target, accessory: accessory}
	j.before = g
	j.setup(target.Document(), j.makeSubJobs, func([]Job) string {
		if len(j.candidates) == 0 {
			return "Move Into " + accessory
		}
		return fmt.Sprintf("Move %s Into %s", countLabel(j.candidates), accessory)
	})
	return j
}

// Candidates returns the objects that passed the accessory check.
func (j *MoveIntoAccessoryJob) Candidates() []fxom.Object {
	j.compute()
	return j.candidates
}

func (j *MoveIntoAccessoryJob) makeSubJobs() []Job {
	md := j.doc.Metadata()
	ownerClass := classOf(j.target)
	acc := md.Accessory(ownerClass, j.accessory)
	if acc.Kind == metadata.AccessoryNone {
		return nil
	}
	existing := j.target.Property(j.accessory)
	coll, isColl := existing.(*fxom.PropertyC)
	if existing != nil && !isColl {
		return nil
	}

	for _, o := range j.before.Roots() {
		switch {
		case o.ParentProperty() == nil,
			fxom.IsAncestor(o, j.target),
			isColl && o.ParentProperty() == coll:
			continue
		}
		class := classOf(o)
		if class == "" || !metadata.Accepts(md, ownerClass, j.accessory, class) {
			continue
		}
		j.candidates = append(j.candidates, o)
	}
	if len(j.candidates) == 0 {
		return nil
	}
	if acc.Kind == metadata.AccessorySingle && (len(j.candidates) > 1 || isColl && coll.Len() > 0) {
		return nil
	}

	var subs []Job
	for _, o := range j.candidates {
		if coll == nil {
			if md.DefaultProperty(ownerClass) == j.accessory {
				coll = j.doc.NewImplicitCollection(j.accessory)
			} else {
				coll = j.doc.NewCollection(j.accessory)
			}
			subs = append(subs, NewRelocateAttaching(o, coll, j.target))
			continue
		}
		subs = append(subs, NewRelocate(o, coll, -1))
	}
	return subs
}

// classOf returns the class an object stands for: its own, or the one of
// the object a reference, copy or include resolves to.
func classOf(o fxom.Object) string {
	switch o := o.(type) {
	case *fxom.Instance:
		return o.Class()
	case *fxom.Intrinsic:
		if t, ok := o.Target().(*fxom.Instance); ok {
			return t.Class()
		}
	}
	return ""
}

// DuplicateJob inserts a copy of every selected object right after it. The
// copies get fresh fx:ids.
type DuplicateJob struct {
	selectionBatch
	objs []fxom.Object
}

// NewDuplicateSelection duplicates the roots of g.
func NewDuplicateSelection(g *selection.Group) *DuplicateJob {
	j := &DuplicateJob{}
	for _, o := range g.Roots() {
		if o.ParentProperty() != nil {
			j.objs = append(j.objs, o)
		}
	}
	j.before = g
	j.setup(g.Document(), j.makeSubJobs, func([]Job) string {
		if len(j.objs) == 0 {
			return "Duplicate"
		}
		return "Duplicate " + countLabel(j.objs)
	})
	return j
}

// SelectionAfter implements SelectionJob: the copies are selected.
func (j *DuplicateJob) SelectionAfter() *selection.Group { return selection.Of(j.Outputs()...) }

func (j *DuplicateJob) makeSubJobs() []Job {
	root := j.doc.Root()
	if len(j.objs) == 0 || root == nil {
		return nil
	}
	ids := fxom.NewIDMap()
	fxom.Collect(root, ids)
	used := map[string]bool{}
	for id := range ids.Result() {
		used[id] = true
	}

	var subs []Job
	for _, o := range j.objs {
		c := fxom.CloneRenamed(o, func(id string) string { return freshID(id, used) })
		subs = append(subs, NewAddPropertyValueAfter(c, o))
	}
	return subs
}

// freshID derives an unused id from id by replacing its numeric suffix.
func freshID(id string, used map[string]bool) string {
	base := strings.TrimRightFunc(id, func(r rune) bool { return r >= '0' && r <= '9' })
	if base == "" {
		base = "id"
	}
	for n := 1; ; n++ {
		c := base + strconv.Itoa(n)
		if !used[c] {
			used[c] = true
			return c
		}
	}
}
