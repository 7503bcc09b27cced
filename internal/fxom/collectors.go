package fxom

import "strings"

type objectsOnly struct{}

func (objectsOnly) Strategy() Strategy           { return VisitObjects }
func (objectsOnly) AcceptProperty(Property) bool { return true }
func (objectsOnly) VisitProperty(Property)       {}

type propertiesOnly struct{}

func (propertiesOnly) Strategy() Strategy       { return VisitProperties }
func (propertiesOnly) AcceptObject(Object) bool { return true }
func (propertiesOnly) VisitObject(Object)       {}

// FirstMatch finds the first object satisfying a predicate and stops
// descending once it has one.
type FirstMatch struct {
	objectsOnly
	pred    func(Object) bool
	exclude *HandleSet
	found   Object
}

// NewFirstMatch returns a collector for the first object matching pred.
func NewFirstMatch(pred func(Object) bool) *FirstMatch {
	return &FirstMatch{pred: pred}
}

// NewFirstByID finds the first object declaring fx:id id, skipping the
// nodes in exclude.
func NewFirstByID(id string, exclude *HandleSet) *FirstMatch {
	return &FirstMatch{
		pred:    func(o Object) bool { return FxID(o) == id },
		exclude: exclude,
	}
}

// NewFirstByLiveType finds the first object whose live value is a T.
func NewFirstByLiveType[T any]() *FirstMatch {
	return NewFirstMatch(func(o Object) bool {
		v, ok := o.Live()
		if !ok {
			return false
		}
		_, is := v.(T)
		return is
	})
}

// AcceptObject implements Collector.
func (c *FirstMatch) AcceptObject(o Object) bool {
	return c.found == nil && !c.exclude.Contains(o)
}

// VisitObject implements Collector.
func (c *FirstMatch) VisitObject(o Object) {
	if c.pred(o) {
		c.found = o
	}
}

// Result returns the match, nil when none.
func (c *FirstMatch) Result() Object { return c.found }

// AllMatches gathers every object satisfying a predicate.
type AllMatches struct {
	objectsOnly
	pred  func(Object) bool
	found []Object
}

// NewAllMatches returns a collector for all objects matching pred.
func NewAllMatches(pred func(Object) bool) *AllMatches {
	return &AllMatches{pred: pred}
}

// NewObjectsByClass matches instances of class, simple or qualified.
func NewObjectsByClass(class string) *AllMatches {
	simple := class[strings.LastIndexByte(class, '.')+1:]
	return NewAllMatches(func(o Object) bool {
		i, ok := o.(*Instance)
		if !ok {
			return false
		}
		c := i.Class()
		return c == class || c[strings.LastIndexByte(c, '.')+1:] == simple
	})
}

// NewScripts matches fx:script elements.
func NewScripts() *AllMatches {
	return NewAllMatches(func(o Object) bool {
		_, ok := o.(*Script)
		return ok
	})
}

// AcceptObject implements Collector.
func (c *AllMatches) AcceptObject(Object) bool { return true }

// VisitObject implements Collector.
func (c *AllMatches) VisitObject(o Object) {
	if c.pred(o) {
		c.found = append(c.found, o)
	}
}

// Result returns the matches in document order.
func (c *AllMatches) Result() []Object { return c.found }

// IDMap indexes objects by fx:id. When an id is declared twice the last
// declaration wins.
type IDMap struct {
	objectsOnly
	ids map[string]Object
	all map[string][]Object
}

// NewIDMap returns an empty index.
func NewIDMap() *IDMap {
	return &IDMap{ids: map[string]Object{}, all: map[string][]Object{}}
}

// AcceptObject implements Collector.
func (c *IDMap) AcceptObject(Object) bool { return true }

// VisitObject implements Collector.
func (c *IDMap) VisitObject(o Object) {
	if id := FxID(o); id != "" {
		c.ids[id] = o
		c.all[id] = append(c.all[id], o)
	}
}

// Result returns the id index.
func (c *IDMap) Result() map[string]Object { return c.ids }

// All returns every declaration of id in document order.
func (c *IDMap) All(id string) []Object { return c.all[id] }

// Duplicates returns the ids declared more than once with every declaration.
func (c *IDMap) Duplicates() map[string][]Object {
	out := map[string][]Object{}
	for id, objs := range c.all {
		if len(objs) > 1 {
			out[id] = objs
		}
	}
	return out
}

// Intrinsics gathers intrinsic elements by kind and, optionally, source.
type Intrinsics struct {
	objectsOnly
	kinds    IntrinsicKind
	source   string
	exclude  *HandleSet
	resolved bool
	found    []*Intrinsic
}

// NewIntrinsics matches intrinsics of the given kinds. An empty source
// matches any source; nodes in exclude are pruned.
func NewIntrinsics(kinds IntrinsicKind, source string, exclude *HandleSet) *Intrinsics {
	return &Intrinsics{kinds: kinds, source: source, exclude: exclude}
}

// NewReferencesBySource matches the references and copies that resolve
// through id.
func NewReferencesBySource(id string) *Intrinsics {
	c := NewIntrinsics(IntrinsicReference|IntrinsicCopy, id, nil)
	c.resolved = true
	return c
}

// AcceptObject implements Collector.
func (c *Intrinsics) AcceptObject(o Object) bool { return !c.exclude.Contains(o) }

// VisitObject implements Collector.
func (c *Intrinsics) VisitObject(o Object) {
	n, ok := o.(*Intrinsic)
	if !ok || n.kind&c.kinds == 0 {
		return
	}
	if c.source != "" && n.Source() != c.source {
		return
	}
	if c.resolved && n.target == nil {
		return
	}
	c.found = append(c.found, n)
}

// Result returns the matches in document order.
func (c *Intrinsics) Result() []*Intrinsic { return c.found }

// ExpressionReferences gathers textual properties whose expression starts
// from a given id.
type ExpressionReferences struct {
	propertiesOnly
	id    string
	found []*PropertyT
}

// NewExpressionReferences matches $id, $id.path and bindings using id.
func NewExpressionReferences(id string) *ExpressionReferences {
	return &ExpressionReferences{id: id}
}

// AcceptProperty implements Collector.
func (c *ExpressionReferences) AcceptProperty(Property) bool { return true }

// VisitProperty implements Collector.
func (c *ExpressionReferences) VisitProperty(p Property) {
	if t, ok := p.(*PropertyT); ok && ParseValue(t.value).References(c.id) {
		c.found = append(c.found, t)
	}
}

// Result returns the matches in document order.
func (c *ExpressionReferences) Result() []*PropertyT { return c.found }

// SimpleProperties gathers textual properties that are not expressions.
type SimpleProperties struct {
	propertiesOnly
	found []*PropertyT
}

// NewSimpleProperties returns an empty collector.
func NewSimpleProperties() *SimpleProperties { return &SimpleProperties{} }

// AcceptProperty implements Collector.
func (c *SimpleProperties) AcceptProperty(Property) bool { return true }

// VisitProperty implements Collector.
func (c *SimpleProperties) VisitProperty(p Property) {
	if t, ok := p.(*PropertyT); ok && !ParseValue(t.value).IsExpression() {
		c.found = append(c.found, t)
	}
}

// Result returns the matches in document order.
func (c *SimpleProperties) Result() []*PropertyT { return c.found }
