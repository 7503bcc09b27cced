// Package widget is an fxom.Instantiator that builds generic widget values
// from a metadata catalog. It lets tools load, lint and query documents
// without a UI toolkit.
package widget

import (
	"fmt"
	"slices"
	"strings"

	"github.com/agentic-research/fxom/internal/fxom"
	"github.com/agentic-research/fxom/internal/metadata"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Widget is the live object of one instance.
type Widget struct {
	Class string // qualified when the catalog knows the package
	ID    string
	// Value is the fx:value, fx:constant or fx:factory argument for value
	// types.
	Value string
	Text  *orderedmap.OrderedMap[string, string]
	Items *orderedmap.OrderedMap[string, []any]
}

func newWidget(class, id string) *Widget {
	return &Widget{
		Class: class,
		ID:    id,
		Text:  orderedmap.New[string, string](),
		Items: orderedmap.New[string, []any](),
	}
}

// Get returns a textual property.
func (w *Widget) Get(name string) string {
	v, _ := w.Text.Get(name)
	return v
}

// Children returns the objects held by a collection property.
func (w *Widget) Children(name string) []any {
	v, _ := w.Items.Get(name)
	return v
}

func (w *Widget) String() string {
	name := metadata.SimpleName(w.Class)
	if w.ID != "" {
		return name + "#" + w.ID
	}
	return name
}

// valueTypes can be built from fx:value or fx:constant without being
// declared in the catalog.
var valueTypes = []string{"String", "Integer", "Double", "Float", "Long", "Boolean", "Character", "Short", "Byte"}

// Instantiator builds widgets for the classes of a catalog.
type Instantiator struct {
	catalog *metadata.Catalog
	// Strict rejects object properties the catalog declares no accessory
	// for.
	Strict bool
}

// New returns an instantiator over catalog.
func New(catalog *metadata.Catalog) *Instantiator {
	return &Instantiator{catalog: catalog}
}

// Instantiate implements fxom.Instantiator.
func (in *Instantiator) Instantiate(req *fxom.Request) (any, error) {
	if v, ok := valueArgument(req); ok && slices.Contains(valueTypes, metadata.SimpleName(req.Class)) {
		w := newWidget(req.Class, req.FxID)
		w.Value = v
		return w, nil
	}

	cls, ok := in.catalog.Lookup(req.Class)
	if !ok {
		return nil, fmt.Errorf("%w: %s", fxom.ErrClassNotFound, req.Class)
	}
	_, hasValue := valueArgument(req)
	if cls.Abstract && !hasValue {
		return nil, fmt.Errorf("%w: %s", fxom.ErrAbstractType, cls.QualifiedName())
	}

	w := newWidget(cls.QualifiedName(), req.FxID)
	w.Value, _ = valueArgument(req)
	for _, p := range req.Properties {
		if p.IsText {
			w.Text.Set(p.Name, p.Text)
			continue
		}
		if in.Strict {
			if err := in.check(cls, p); err != nil {
				return nil, err
			}
		}
		w.Items.Set(p.Name, p.Objects)
	}
	return w, nil
}

func (in *Instantiator) check(cls *metadata.Class, p fxom.PropertyValue) error {
	acc := in.catalog.Accessory(cls.Name, p.Name)
	switch acc.Kind {
	case metadata.AccessoryNone:
		return fmt.Errorf("%w: %s has no property %s", fxom.ErrNotInstantiable, cls.Name, p.Name)
	case metadata.AccessorySingle:
		if len(p.Objects) > 1 {
			return fmt.Errorf("%w: %s.%s holds a single object", fxom.ErrNotInstantiable, cls.Name, p.Name)
		}
	}
	for _, o := range p.Objects {
		if w, ok := o.(*Widget); ok && !in.catalog.IsAssignable(w.Class, acc.Content) {
			return fmt.Errorf("%w: %s does not fit %s.%s", fxom.ErrNotInstantiable, w, cls.Name, p.Name)
		}
	}
	return nil
}

// Copy implements fxom.Copier with a deep copy of widgets. Other values are
// shared.
func (in *Instantiator) Copy(v any) (any, error) {
	w, ok := v.(*Widget)
	if !ok {
		return v, nil
	}
	return w.clone(), nil
}

func (w *Widget) clone() *Widget {
	c := newWidget(w.Class, w.ID)
	c.Value = w.Value
	for p := w.Text.Oldest(); p != nil; p = p.Next() {
		c.Text.Set(p.Key, p.Value)
	}
	for p := w.Items.Oldest(); p != nil; p = p.Next() {
		items := make([]any, len(p.Value))
		for i, o := range p.Value {
			if cw, ok := o.(*Widget); ok {
				o = cw.clone()
			}
			items[i] = o
		}
		c.Items.Set(p.Key, items)
	}
	return c
}

func valueArgument(req *fxom.Request) (string, bool) {
	for _, name := range []string{fxom.AttrValue, fxom.AttrConstant, fxom.AttrFactory} {
		if v, ok := req.Attributes[name]; ok {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}

var (
	_ fxom.Instantiator = (*Instantiator)(nil)
	_ fxom.Copier       = (*Instantiator)(nil)
)
