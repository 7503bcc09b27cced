package fxom

import (
	"fmt"
	"slices"
	"strings"

	"github.com/agentic-research/fxom/internal/glue"
)

// Markup names with structural meaning.
const (
	TagInclude   = "fx:include"
	TagReference = "fx:reference"
	TagCopy      = "fx:copy"
	TagDefine    = "fx:define"
	TagScript    = "fx:script"
	TagRoot      = "fx:root"

	AttrID         = "fx:id"
	AttrController = "fx:controller"
	AttrValue      = "fx:value"
	AttrConstant   = "fx:constant"
	AttrFactory    = "fx:factory"
	AttrSource     = "source"
	AttrType       = "type"
)

// Node is one node variant. The set of implementations is closed: *Instance,
// *Intrinsic, *Define, *Script, *Comment, *Virtual, *PropertyT, *PropertyC.
type Node interface {
	Document() *Document
	// Element is the markup element the node wraps. Virtual nodes,
	// attribute properties and implicit collections have none.
	Element() *glue.Element
	Handle() Handle
	core() *nodeCore
}

// Object is a node that can sit in a collection property.
type Object interface {
	Node
	// ParentProperty is the collection holding the object, nil for the
	// document root and detached objects.
	ParentProperty() *PropertyC
	// Live returns the instantiated object and whether there is one.
	Live() (any, bool)
	// Failure is the recorded cause when instantiation did not produce an
	// object.
	Failure() error
	objectData() *objectCore
}

// Property is a named slot of an owner object.
type Property interface {
	Node
	Name() string
	// Owner is the object the property belongs to, nil when detached.
	Owner() Object
	propertyData() *propertyCore
}

// Owner is an object that carries named properties: *Instance and *Intrinsic.
type Owner interface {
	Object
	Properties() []Property
	Property(name string) Property
	AddProperty(p Property, index int)
	InsertProperty(p Property, pos Position)
	RemoveProperty(p Property) Position
	properties() *propertySet
}

// Position records where a node sat, in the node graph and in the markup,
// so that it can be put back exactly.
type Position struct {
	index int
	glue  []int
}

// Index is the position in the owner's property order or the collection.
func (p Position) Index() int { return p.index }

type nodeCore struct {
	doc    *Document
	elem   *glue.Element
	handle Handle
}

func (c *nodeCore) Document() *Document      { return c.doc }
func (c *nodeCore) Element() *glue.Element { return c.elem }
func (c *nodeCore) Handle() Handle           { return c.handle }
func (c *nodeCore) core() *nodeCore          { return c }

type objectCore struct {
	nodeCore
	parent  *PropertyC
	live    any
	hasLive bool
	failure error
}

func (o *objectCore) ParentProperty() *PropertyC { return o.parent }
func (o *objectCore) Live() (any, bool)          { return o.live, o.hasLive }
func (o *objectCore) Failure() error             { return o.failure }
func (o *objectCore) objectData() *objectCore    { return o }

func (o *objectCore) setLive(v any) {
	o.live, o.hasLive, o.failure = v, true, nil
}

func (o *objectCore) setFailure(err error) {
	o.live, o.hasLive, o.failure = nil, false, err
}

// AttrChange is the prior state of a structural attribute, returned by the
// setters so the change can be reverted with RestoreAttr.
type AttrChange struct {
	name  string
	prev  string
	had   bool
	index int
}

func (o *objectCore) attr(name string) string {
	if o.elem == nil {
		return ""
	}
	return o.elem.Attributes().Value(name)
}

// setAttr sets or, for an empty value, removes a structural attribute.
// Updates keep the attribute's position.
func (o *objectCore) setAttr(name, value string) AttrChange {
	if o.elem == nil {
		panic(fmt.Sprintf("fxom: cannot set %s on a node without markup", name))
	}
	defer o.doc.update()()
	attrs := o.elem.Attributes()
	ch := AttrChange{name: name, index: attrs.Index(name)}
	ch.prev, ch.had = attrs.Get(name)
	if value == "" {
		attrs.Remove(name)
	} else {
		attrs.Set(name, value)
	}
	return ch
}

// RestoreAttr reverts a change made by one of the attribute setters.
func (o *objectCore) RestoreAttr(ch AttrChange) {
	if o.elem == nil {
		panic("fxom: cannot restore an attribute on a node without markup")
	}
	defer o.doc.update()()
	attrs := o.elem.Attributes()
	if ch.had {
		attrs.Insert(ch.index, ch.name, ch.prev)
	} else {
		attrs.Remove(ch.name)
	}
}

type propertyCore struct {
	nodeCore
	name  string
	owner Object
}

func (p *propertyCore) Name() string                { return p.name }
func (p *propertyCore) Owner() Object               { return p.owner }
func (p *propertyCore) propertyData() *propertyCore { return p }

// FxID returns the fx:id of an object, "" when it has none.
func FxID(o Object) string {
	switch o := o.(type) {
	case *Instance:
		return o.FxID()
	case *Intrinsic:
		return o.FxID()
	default:
		return ""
	}
}

// IsPropertyTag reports whether a tag names a property element rather than
// an object: the segment after the last dot starts with a lower-case letter.
func IsPropertyTag(tag string) bool {
	if strings.HasPrefix(tag, "fx:") || tag == "" {
		return false
	}
	last := tag[strings.LastIndexByte(tag, '.')+1:]
	return last != "" && last[0] >= 'a' && last[0] <= 'z'
}

// children lists the direct child nodes of n in document order.
func children(n Node) []Node {
	switch n := n.(type) {
	case *Instance:
		return propsAsNodes(n.list())
	case *Intrinsic:
		return propsAsNodes(n.list())
	case *Define:
		return []Node{n.items}
	case *PropertyC:
		out := make([]Node, len(n.values))
		for i, v := range n.values {
			out[i] = v
		}
		return out
	case *PropertyT, *Script, *Comment, *Virtual:
		return nil
	default:
		panic(fmt.Sprintf("fxom: unknown node %T", n))
	}
}

func propsAsNodes(ps []Property) []Node {
	out := make([]Node, len(ps))
	for i, p := range ps {
		out[i] = p
	}
	return out
}

// walk visits n and its descendants in pre-order; returning false skips the
// subtree.
func walk(n Node, fn func(Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range children(n) {
		walk(c, fn)
	}
}

// Parent returns the structural parent of n: the owner of a property, the
// collection holding an object, or the define holding an item collection.
func Parent(n Node) Node {
	switch n := n.(type) {
	case Object:
		if p := n.ParentProperty(); p != nil {
			return p
		}
	case Property:
		if o := n.Owner(); o != nil {
			return o
		}
	}
	return nil
}

// IsAncestor reports whether a is n or one of its ancestors.
func IsAncestor(a, n Node) bool {
	for x := n; x != nil; x = Parent(x) {
		if x == a {
			return true
		}
	}
	return false
}

// Descendants returns the nodes below n in pre-order, n excluded.
func Descendants(n Node) []Node {
	var out []Node
	walk(n, func(x Node) bool {
		if x != n {
			out = append(out, x)
		}
		return true
	})
	return out
}

func indexOf(values []Object, o Object) int {
	return slices.IndexFunc(values, func(v Object) bool { return v == o })
}
