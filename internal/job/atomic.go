package job

import (
	"fmt"

	"github.com/agentic-research/fxom/internal/fxom"
)

// AddPropertyJob attaches a detached property to an owner.
type AddPropertyJob struct {
	machine
	owner  fxom.Owner
	prop   fxom.Property
	index  int
	pos    fxom.Position
	placed bool
}

// NewAddProperty adds p to owner at index; a negative index appends.
func NewAddProperty(owner fxom.Owner, p fxom.Property, index int) *AddPropertyJob {
	j := &AddPropertyJob{owner: owner, prop: p, index: index}
	j.init(owner.Document(), j)
	return j
}

func (j *AddPropertyJob) prepare() bool {
	return j.prop.Owner() == nil &&
		j.prop.Document() == j.owner.Document() &&
		j.owner.Property(j.prop.Name()) == nil &&
		!fxom.IsAncestor(j.prop, j.owner)
}

func (j *AddPropertyJob) apply() {
	if !j.placed {
		j.owner.AddProperty(j.prop, j.index)
		j.placed = true
		return
	}
	j.owner.InsertProperty(j.prop, j.pos)
}

func (j *AddPropertyJob) revert() { j.pos = j.owner.RemoveProperty(j.prop) }

// Description implements Job.
func (j *AddPropertyJob) Description() string { return "Add Property " + j.prop.Name() }

// RemovePropertyJob detaches a property from its owner.
type RemovePropertyJob struct {
	machine
	prop  fxom.Property
	owner fxom.Owner
	pos   fxom.Position
}

// NewRemoveProperty removes p from its owner.
func NewRemoveProperty(p fxom.Property) *RemovePropertyJob {
	j := &RemovePropertyJob{prop: p}
	j.init(p.Document(), j)
	return j
}

func (j *RemovePropertyJob) prepare() bool {
	owner, ok := j.prop.Owner().(fxom.Owner)
	j.owner = owner
	return ok && owner.Property(j.prop.Name()) == j.prop
}

func (j *RemovePropertyJob) apply()  { j.pos = j.owner.RemoveProperty(j.prop) }
func (j *RemovePropertyJob) revert() { j.owner.InsertProperty(j.prop, j.pos) }

// Description implements Job.
func (j *RemovePropertyJob) Description() string { return "Remove Property " + j.prop.Name() }

// AddPropertyValueJob puts a detached object into a collection.
type AddPropertyValueJob struct {
	machine
	value  fxom.Object
	target *fxom.PropertyC
	index  int
	after  fxom.Object
	pos    fxom.Position
	placed bool
}

// NewAddPropertyValue adds v to target at index; a negative index appends.
func NewAddPropertyValue(v fxom.Object, target *fxom.PropertyC, index int) *AddPropertyValueJob {
	j := &AddPropertyValueJob{value: v, target: target, index: index}
	j.init(target.Document(), j)
	return j
}

// NewAddPropertyValueAfter adds v right behind anchor, wherever anchor is
// when the job runs.
func NewAddPropertyValueAfter(v fxom.Object, anchor fxom.Object) *AddPropertyValueJob {
	j := &AddPropertyValueJob{value: v, target: anchor.ParentProperty(), index: -1, after: anchor}
	j.init(anchor.Document(), j)
	return j
}

func (j *AddPropertyValueJob) prepare() bool {
	return j.target != nil && detached(j.value) && j.value.Document() == j.target.Document() &&
		!fxom.IsAncestor(j.value, j.target)
}

func (j *AddPropertyValueJob) apply() {
	if !j.placed {
		index := j.index
		if j.after != nil {
			index = j.target.IndexOf(j.after) + 1
		}
		j.target.AddValue(j.value, index)
		j.placed = true
		return
	}
	j.target.InsertValue(j.value, j.pos)
}

func (j *AddPropertyValueJob) revert() { j.pos = j.target.RemoveValue(j.value) }

// Outputs implements Producer.
func (j *AddPropertyValueJob) Outputs() []fxom.Object { return []fxom.Object{j.value} }

// Description implements Job.
func (j *AddPropertyValueJob) Description() string { return "Add " + Name(j.value) }

// RemovePropertyValueJob takes an object out of its collection.
type RemovePropertyValueJob struct {
	machine
	value  fxom.Object
	parent *fxom.PropertyC
	pos    fxom.Position
}

// NewRemovePropertyValue removes v from the collection holding it.
func NewRemovePropertyValue(v fxom.Object) *RemovePropertyValueJob {
	j := &RemovePropertyValueJob{value: v}
	j.init(v.Document(), j)
	return j
}

func (j *RemovePropertyValueJob) prepare() bool {
	j.parent = j.value.ParentProperty()
	return j.parent != nil
}

func (j *RemovePropertyValueJob) apply()  { j.pos = j.parent.RemoveValue(j.value) }
func (j *RemovePropertyValueJob) revert() { j.parent.InsertValue(j.value, j.pos) }

// Description implements Job.
func (j *RemovePropertyValueJob) Description() string { return "Remove " + Name(j.value) }

// ReplaceObjectJob swaps an object for a detached one in the same place,
// whether that place is a collection slot or the document root.
type ReplaceObjectJob struct {
	machine
	old, replacement fxom.Object
	parent           *fxom.PropertyC
	pos              fxom.Position
}

// NewReplaceObject replaces old with replacement.
func NewReplaceObject(old, replacement fxom.Object) *ReplaceObjectJob {
	j := &ReplaceObjectJob{old: old, replacement: replacement}
	j.init(old.Document(), j)
	return j
}

func (j *ReplaceObjectJob) prepare() bool {
	j.parent = j.old.ParentProperty()
	if j.parent == nil && j.doc.Root() != j.old {
		return false
	}
	if j.parent == nil && j.replacement.Element() == nil {
		return false
	}
	return detached(j.replacement) && j.replacement.Document() == j.doc && !fxom.IsAncestor(j.old, j.replacement)
}

func (j *ReplaceObjectJob) apply() {
	if j.parent == nil {
		j.doc.SetRoot(j.replacement)
		return
	}
	j.pos = j.parent.RemoveValue(j.old)
	j.parent.InsertValue(j.replacement, j.pos)
}

func (j *ReplaceObjectJob) revert() {
	if j.parent == nil {
		j.doc.SetRoot(j.old)
		return
	}
	j.pos = j.parent.RemoveValue(j.replacement)
	j.parent.InsertValue(j.old, j.pos)
}

// Outputs implements Producer.
func (j *ReplaceObjectJob) Outputs() []fxom.Object { return []fxom.Object{j.replacement} }

// Description implements Job.
func (j *ReplaceObjectJob) Description() string { return "Replace " + Name(j.old) }

// ModifyValueJob changes the text of a textual property in place.
type ModifyValueJob struct {
	machine
	prop  *fxom.PropertyT
	value string
	prev  string
}

// NewModifyValue sets p to value.
func NewModifyValue(p *fxom.PropertyT, value string) *ModifyValueJob {
	j := &ModifyValueJob{prop: p, value: value}
	j.init(p.Document(), j)
	return j
}

func (j *ModifyValueJob) prepare() bool { return j.prop.Value() != j.value }
func (j *ModifyValueJob) apply()        { j.prev = j.prop.SetValue(j.value) }
func (j *ModifyValueJob) revert()       { j.prop.SetValue(j.prev) }

// Description implements Job.
func (j *ModifyValueJob) Description() string { return "Set " + j.prop.Name() }

// identified is an object carrying an fx:id.
type identified interface {
	fxom.Object
	FxID() string
	SetFxID(id string) fxom.AttrChange
	RestoreAttr(ch fxom.AttrChange)
}

// ModifyFxIDJob sets or removes the fx:id of an instance or include.
type ModifyFxIDJob struct {
	machine
	obj    fxom.Object
	id     string
	target identified
	change fxom.AttrChange
}

// NewModifyFxID sets the fx:id of o; an empty id removes it.
func NewModifyFxID(o fxom.Object, id string) *ModifyFxIDJob {
	j := &ModifyFxIDJob{obj: o, id: id}
	j.init(o.Document(), j)
	return j
}

func (j *ModifyFxIDJob) prepare() bool {
	t, ok := j.obj.(identified)
	j.target = t
	return ok && t.FxID() != j.id && (j.id == "" || ValidID(j.id))
}

func (j *ModifyFxIDJob) apply()  { j.change = j.target.SetFxID(j.id) }
func (j *ModifyFxIDJob) revert() { j.target.RestoreAttr(j.change) }

// Description implements Job.
func (j *ModifyFxIDJob) Description() string {
	if j.id == "" {
		return "Remove fx:id"
	}
	return "Set fx:id to " + j.id
}

// ModifySourceJob points a reference, copy or include at another source.
type ModifySourceJob struct {
	machine
	node   *fxom.Intrinsic
	source string
	change fxom.AttrChange
}

// NewModifySource sets the source of n.
func NewModifySource(n *fxom.Intrinsic, source string) *ModifySourceJob {
	j := &ModifySourceJob{node: n, source: source}
	j.init(n.Document(), j)
	return j
}

func (j *ModifySourceJob) prepare() bool { return j.source != "" && j.node.Source() != j.source }
func (j *ModifySourceJob) apply()        { j.change = j.node.SetSource(j.source) }
func (j *ModifySourceJob) revert()       { j.node.RestoreAttr(j.change) }

// Description implements Job.
func (j *ModifySourceJob) Description() string { return "Set Source to " + j.source }

// ModifyControllerJob sets the fx:controller of the root instance.
type ModifyControllerJob struct {
	machine
	class  string
	root   *fxom.Instance
	change fxom.AttrChange
}

// NewModifyController sets the controller class; "" removes it.
func NewModifyController(doc *fxom.Document, class string) *ModifyControllerJob {
	j := &ModifyControllerJob{class: class}
	j.init(doc, j)
	return j
}

func (j *ModifyControllerJob) prepare() bool {
	root, ok := j.doc.Root().(*fxom.Instance)
	j.root = root
	return ok && root.Controller() != j.class
}

func (j *ModifyControllerJob) apply()  { j.change = j.root.SetController(j.class) }
func (j *ModifyControllerJob) revert() { j.root.RestoreAttr(j.change) }

// Description implements Job.
func (j *ModifyControllerJob) Description() string {
	if j.class == "" {
		return "Remove Controller"
	}
	return "Set Controller to " + j.class
}

// ToggleFxRootJob switches the root between a plain element and fx:root.
type ToggleFxRootJob struct {
	machine
	root      *fxom.Instance
	wasRoot   bool
	typeIndex int
}

// NewToggleFxRoot toggles fx:root on the document root.
func NewToggleFxRoot(doc *fxom.Document) *ToggleFxRootJob {
	j := &ToggleFxRootJob{}
	j.init(doc, j)
	return j
}

func (j *ToggleFxRootJob) prepare() bool {
	root, ok := j.doc.Root().(*fxom.Instance)
	j.root = root
	if !ok {
		return false
	}
	j.wasRoot = root.IsFxRoot()
	// fx:root stores the class in the type attribute.
	return j.wasRoot || root.Property(fxom.AttrType) == nil
}

func (j *ToggleFxRootJob) apply() {
	if j.wasRoot {
		j.typeIndex = j.root.SetFxRoot(false, 0)
		return
	}
	j.root.SetFxRoot(true, 0)
}

func (j *ToggleFxRootJob) revert() {
	if j.wasRoot {
		j.root.SetFxRoot(true, j.typeIndex)
		return
	}
	j.root.SetFxRoot(false, 0)
}

// Description implements Job.
func (j *ToggleFxRootJob) Description() string { return "Use fx:root Construct" }

// SetRootJob installs a detached object, or nothing, as document root.
type SetRootJob struct {
	machine
	root fxom.Object
	prev fxom.Object
}

// NewSetRoot replaces the root with o; nil empties the document.
func NewSetRoot(doc *fxom.Document, o fxom.Object) *SetRootJob {
	j := &SetRootJob{root: o}
	j.init(doc, j)
	return j
}

func (j *SetRootJob) prepare() bool {
	if j.root == nil {
		return j.doc.Root() != nil
	}
	return j.root.Document() == j.doc && detached(j.root) && j.root.Element() != nil
}

func (j *SetRootJob) apply()  { j.prev = j.doc.SetRoot(j.root) }
func (j *SetRootJob) revert() { j.doc.SetRoot(j.prev) }

// Outputs implements Producer.
func (j *SetRootJob) Outputs() []fxom.Object {
	if j.root == nil {
		return nil
	}
	return []fxom.Object{j.root}
}

// Description implements Job.
func (j *SetRootJob) Description() string {
	if j.root == nil {
		return "Clear Root"
	}
	return "Set Root to " + Name(j.root)
}

// RelocateJob moves an object from its collection into another one.
type RelocateJob struct {
	machine
	value  fxom.Object
	target *fxom.PropertyC
	index  int
	from   *fxom.PropertyC
	fromAt fxom.Position
	toAt   fxom.Position
	placed bool

	// owner, when set, receives the detached target collection.
	owner  fxom.Owner
	collAt fxom.Position
}

// NewRelocate moves v into target at index; a negative index appends.
func NewRelocate(v fxom.Object, target *fxom.PropertyC, index int) *RelocateJob {
	j := &RelocateJob{value: v, target: target, index: index}
	j.init(v.Document(), j)
	return j
}

// NewRelocateAttaching moves v into a collection that is not attached yet.
// Executing appends target to owner; undoing takes it off again.
func NewRelocateAttaching(v fxom.Object, target *fxom.PropertyC, owner fxom.Owner) *RelocateJob {
	j := &RelocateJob{value: v, target: target, index: -1, owner: owner}
	j.init(v.Document(), j)
	return j
}

func (j *RelocateJob) prepare() bool {
	j.from = j.value.ParentProperty()
	if j.owner != nil && (j.target.Owner() != nil || j.owner.Property(j.target.Name()) != nil) {
		return false
	}
	return j.from != nil && j.from != j.target &&
		j.target.Document() == j.doc &&
		!fxom.IsAncestor(j.value, j.target)
}

func (j *RelocateJob) apply() {
	if j.owner != nil {
		if j.placed {
			j.owner.InsertProperty(j.target, j.collAt)
		} else {
			j.owner.AddProperty(j.target, -1)
		}
	}
	j.fromAt = j.from.RemoveValue(j.value)
	if !j.placed {
		j.target.AddValue(j.value, j.index)
		j.placed = true
		return
	}
	j.target.InsertValue(j.value, j.toAt)
}

func (j *RelocateJob) revert() {
	j.toAt = j.target.RemoveValue(j.value)
	j.from.InsertValue(j.value, j.fromAt)
	if j.owner != nil {
		j.collAt = j.owner.RemoveProperty(j.target)
	}
}

// Outputs implements Producer.
func (j *RelocateJob) Outputs() []fxom.Object { return []fxom.Object{j.value} }

// Description implements Job.
func (j *RelocateJob) Description() string {
	return fmt.Sprintf("Move %s Into %s", Name(j.value), j.target.Name())
}

func detached(o fxom.Object) bool {
	return o.ParentProperty() == nil && o.Document().Root() != o
}
