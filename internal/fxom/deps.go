package fxom

// DependencyKind says where a document dependency comes from.
type DependencyKind uint8

const (
	DependencyLocation DependencyKind = iota // @path property value
	DependencyInclude
	DependencyScript
)

func (k DependencyKind) String() string {
	switch k {
	case DependencyInclude:
		return "include"
	case DependencyScript:
		return "script"
	default:
		return "location"
	}
}

// Dependency is a file the document needs, resolved against its location.
type Dependency struct {
	Kind DependencyKind
	Path string
	Node Node
}

// Dependencies lists the files the document refers to in document order
// per kind: @ locations, includes, then external scripts.
func (d *Document) Dependencies() []Dependency {
	if d.root == nil {
		return nil
	}
	simple := NewSimpleProperties()
	includes := NewIntrinsics(IntrinsicInclude, "", nil)
	scripts := NewScripts()
	Collect(d.root, NewComposite(simple, includes, scripts))

	var out []Dependency
	for _, p := range simple.Result() {
		if v := ParseValue(p.Value()); v.Kind == ValueLocation && v.Text != "" {
			out = append(out, Dependency{Kind: DependencyLocation, Path: d.ResolvePath(v.Text), Node: p})
		}
	}
	for _, n := range includes.Result() {
		if src := n.Source(); src != "" {
			out = append(out, Dependency{Kind: DependencyInclude, Path: d.ResolvePath(src), Node: n})
		}
	}
	for _, o := range scripts.Result() {
		if src := o.(*Script).Source(); src != "" {
			out = append(out, Dependency{Kind: DependencyScript, Path: d.ResolvePath(src), Node: o})
		}
	}
	return out
}
