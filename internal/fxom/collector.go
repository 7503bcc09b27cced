package fxom

// Strategy says which node kinds a collector wants to see.
type Strategy uint8

const (
	VisitObjects Strategy = 1 << iota
	VisitProperties

	VisitAll = VisitObjects | VisitProperties
)

// Collector is a read-only query over a node subtree. The traversal is
// pre-order; a rejected node is not visited and its subtree is pruned.
// Nodes of a kind outside the strategy are traversed without being offered.
type Collector interface {
	Strategy() Strategy
	AcceptObject(o Object) bool
	VisitObject(o Object)
	AcceptProperty(p Property) bool
	VisitProperty(p Property)
}

// Leaver is implemented by collectors that need to know when the traversal
// is done with a node's subtree.
type Leaver interface {
	Leave(n Node)
}

// Collect runs c over n and its descendants.
func Collect(n Node, c Collector) {
	if n == nil {
		return
	}
	collect(n, c, c.Strategy())
}

func collect(n Node, c Collector, s Strategy) {
	switch n := n.(type) {
	case Object:
		if s&VisitObjects != 0 {
			if !c.AcceptObject(n) {
				return
			}
			c.VisitObject(n)
		}
	case Property:
		if _, text := n.(*PropertyT); text && s&VisitProperties == 0 {
			return
		}
		if s&VisitProperties != 0 {
			if !c.AcceptProperty(n) {
				return
			}
			c.VisitProperty(n)
		}
	}
	for _, child := range children(n) {
		collect(child, c, s)
	}
	if l, ok := c.(Leaver); ok {
		l.Leave(n)
	}
}

// Composite runs several collectors in one traversal. Each member keeps its
// own pruning: a member that rejects a node sees nothing of that subtree
// while the others continue.
type Composite struct {
	members []Collector
	// pruned[i] is the node at which member i stopped, nil while active.
	pruned   []Node
	strategy Strategy
}

// NewComposite combines members.
func NewComposite(members ...Collector) *Composite {
	c := &Composite{members: members, pruned: make([]Node, len(members))}
	for _, m := range members {
		c.strategy |= m.Strategy()
	}
	return c
}

// Strategy implements Collector.
func (c *Composite) Strategy() Strategy { return c.strategy }

// AcceptObject implements Collector.
func (c *Composite) AcceptObject(o Object) bool {
	return c.accept(o, VisitObjects, func(m Collector) bool { return m.AcceptObject(o) })
}

// AcceptProperty implements Collector.
func (c *Composite) AcceptProperty(p Property) bool {
	return c.accept(p, VisitProperties, func(m Collector) bool { return m.AcceptProperty(p) })
}

func (c *Composite) accept(n Node, kind Strategy, fn func(Collector) bool) bool {
	verdict := make([]bool, len(c.members))
	keep := false
	for i, m := range c.members {
		if c.pruned[i] != nil {
			continue
		}
		if m.Strategy()&kind == 0 {
			// Members that ignore this kind still need its subtree.
			verdict[i] = true
			keep = true
			continue
		}
		verdict[i] = fn(m)
		keep = keep || verdict[i]
	}
	if !keep {
		return false
	}
	for i := range c.members {
		if c.pruned[i] == nil && !verdict[i] {
			c.pruned[i] = n
		}
	}
	return true
}

// VisitObject implements Collector.
func (c *Composite) VisitObject(o Object) {
	for i, m := range c.members {
		if c.pruned[i] == nil && m.Strategy()&VisitObjects != 0 {
			m.VisitObject(o)
		}
	}
}

// VisitProperty implements Collector.
func (c *Composite) VisitProperty(p Property) {
	for i, m := range c.members {
		if c.pruned[i] == nil && m.Strategy()&VisitProperties != 0 {
			m.VisitProperty(p)
		}
	}
}

// Leave implements Leaver.
func (c *Composite) Leave(n Node) {
	for i, m := range c.members {
		switch c.pruned[i] {
		case n:
			c.pruned[i] = nil
		case nil:
			if _, text := n.(*PropertyT); text && m.Strategy()&VisitProperties == 0 {
				continue
			}
			if l, ok := m.(Leaver); ok {
				l.Leave(n)
			}
		}
	}
}
