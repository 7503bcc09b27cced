package fxom

import (
	"errors"
	"fmt"
	"net/url"
)

// Instantiator turns an instance description into a live object. Failures
// should wrap ErrClassNotFound, ErrNotInstantiable or ErrAbstractType when
// one of them applies.
type Instantiator interface {
	Instantiate(req *Request) (any, error)
}

// Copier is implemented by instantiators that can duplicate a live object
// for fx:copy. Without it a copy shares the source object.
type Copier interface {
	Copy(v any) (any, error)
}

// InstantiatorFunc adapts a function to Instantiator.
type InstantiatorFunc func(req *Request) (any, error)

// Instantiate implements Instantiator.
func (f InstantiatorFunc) Instantiate(req *Request) (any, error) { return f(req) }

// Request describes one instance to instantiate.
type Request struct {
	Class string
	FxID  string
	// Attributes holds the structural attributes such as fx:value,
	// fx:constant and fx:factory.
	Attributes map[string]string
	Properties []PropertyValue
	Location   *url.URL
	Context    any
	Resources  any
}

// Property returns the named property value.
func (r *Request) Property(name string) (PropertyValue, bool) {
	for _, p := range r.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return PropertyValue{}, false
}

// PropertyValue is a property handed to the instantiator: text for a textual
// property, the live objects of a collection otherwise.
type PropertyValue struct {
	Name    string
	Text    string
	IsText  bool
	Objects []any
}

// refresher runs one instantiation pass in document order, children first.
type refresher struct {
	doc  *Document
	done *HandleSet
}

func (d *Document) refresh() {
	if d.root == nil {
		return
	}
	r := &refresher{doc: d, done: NewHandleSet()}
	r.object(d.root)
}

func (r *refresher) object(o Object) {
	defer r.done.Add(o)
	switch o := o.(type) {
	case *Instance:
		r.instance(o)
	case *Intrinsic:
		for _, p := range o.list() {
			r.property(p)
		}
		switch o.kind {
		case IntrinsicInclude:
			r.include(o)
		default:
			r.resolve(o)
		}
	case *Define:
		items := make([]any, 0, len(o.items.values))
		for _, v := range o.items.values {
			r.object(v)
			if live, ok := contribution(v); ok {
				items = append(items, live)
			}
		}
		o.setLive(items)
	case *Script:
		if src := o.Source(); src != "" {
			o.setLive(src)
		} else {
			o.setLive(o.Body())
		}
	case *Comment:
		o.setLive(o.Text())
	case *Virtual:
	}
}

func (r *refresher) instance(o *Instance) {
	d := r.doc
	req := &Request{
		Class:      o.Class(),
		FxID:       o.FxID(),
		Attributes: map[string]string{},
		Location:   d.location,
		Context:    d.context,
		Resources:  d.resources,
	}
	for _, a := range o.elem.Attributes().All() {
		if isStructuralAttr(o, a.Name) {
			req.Attributes[a.Name] = a.Value
		}
	}
	for _, p := range o.list() {
		req.Properties = append(req.Properties, r.property(p))
	}
	if d.inst == nil {
		o.setFailure(ErrNoInstantiator)
		return
	}
	v, err := d.inst.Instantiate(req)
	if err != nil {
		var ie *InstantiationError
		if !errors.As(err, &ie) {
			err = &InstantiationError{Class: req.Class, Line: o.elem.Line(), Err: err}
		}
		o.setFailure(err)
		d.logger.Warn("instantiation failed", "class", req.Class, "line", o.elem.Line(), "err", err)
		return
	}
	o.setLive(v)
}

func (r *refresher) property(p Property) PropertyValue {
	switch p := p.(type) {
	case *PropertyT:
		return PropertyValue{Name: p.name, Text: p.value, IsText: true}
	case *PropertyC:
		pv := PropertyValue{Name: p.name}
		for _, v := range p.values {
			r.object(v)
			if live, ok := contribution(v); ok {
				pv.Objects = append(pv.Objects, live)
			}
		}
		return pv
	}
	panic(fmt.Sprintf("fxom: unknown property %T", p))
}

// resolve binds a reference or copy to the first object declaring its
// source id outside of the intrinsic itself.
func (r *refresher) resolve(o *Intrinsic) {
	c := NewFirstByID(o.Source(), SubtreeSet(o))
	Collect(r.doc.root, c)
	o.target = c.Result()
	switch {
	case o.target == nil:
		o.setFailure(fmt.Errorf("%w: %s", ErrUnresolved, o.Source()))
		return
	case !r.done.Contains(o.target):
		o.setFailure(fmt.Errorf("%w: %s", ErrForwardReference, o.Source()))
		return
	}
	live, ok := o.target.Live()
	if !ok {
		o.setFailure(fmt.Errorf("%w: %s has no object", ErrUnresolved, o.Source()))
		return
	}
	if cp, isCopier := r.doc.inst.(Copier); o.kind == IntrinsicCopy && isCopier {
		dup, err := cp.Copy(live)
		if err != nil {
			o.setFailure(fmt.Errorf("copy %s: %w", o.Source(), err))
			return
		}
		live = dup
	}
	o.setLive(live)
}

// contribution returns what an object adds to its parent collection.
// Declarations, scripts and comments add nothing.
func contribution(o Object) (any, bool) {
	switch o.(type) {
	case *Define, *Script, *Comment:
		return nil, false
	}
	return o.Live()
}
