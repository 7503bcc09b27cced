// Package query exports a document as JSON and runs JSONPath expressions
// over the export.
package query

import (
	"encoding/json"
	"fmt"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"github.com/agentic-research/fxom/api"
	"github.com/agentic-research/fxom/internal/fxom"
)

// Export converts doc into its export form.
func Export(doc *fxom.Document) *api.Document {
	out := &api.Document{Version: api.Version, Imports: doc.Markup().Imports()}
	if u := doc.Location(); u != nil {
		out.Location = u.String()
	}
	if root := doc.Root(); root != nil {
		o := object(root)
		out.Root = &o
	}
	return out
}

func object(o fxom.Object) api.Object {
	out := api.Object{}
	if e := o.Element(); e != nil {
		out.Line = e.Line()
	}
	if err := o.Failure(); err != nil {
		out.Error = err.Error()
	}
	switch o := o.(type) {
	case *fxom.Instance:
		out.Kind = "instance"
		out.Class = o.Class()
		out.ID = o.FxID()
		out.Controller = o.Controller()
	case *fxom.Intrinsic:
		out.Kind = o.Kind().String()
		out.ID = o.FxID()
		out.Source = o.Source()
	case *fxom.Define:
		out.Kind = "define"
		out.Properties = []api.Property{property(o.Items())}
		return out
	case *fxom.Script:
		out.Kind = "script"
		out.Source = o.Source()
		out.Text = o.Body()
	case *fxom.Comment:
		out.Kind = "comment"
		out.Text = o.Text()
	default:
		out.Kind = "virtual"
	}
	if owner, ok := o.(fxom.Owner); ok {
		for _, p := range owner.Properties() {
			out.Properties = append(out.Properties, property(p))
		}
	}
	return out
}

func property(p fxom.Property) api.Property {
	out := api.Property{Name: p.Name()}
	switch p := p.(type) {
	case *fxom.PropertyT:
		out.Value = p.Value()
		out.ValueKind = fxom.ParseValue(p.Value()).Kind.String()
		out.Attribute = p.IsAttribute()
	case *fxom.PropertyC:
		for _, v := range p.Values() {
			out.Objects = append(out.Objects, object(v))
		}
	}
	return out
}

// Generic returns the export of doc as generic JSON data (maps, slices and
// scalars), the form JSONPath expressions run over.
func Generic(doc *fxom.Document) (any, error) {
	data, err := json.Marshal(Export(doc))
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}
	v, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse export: %w", err)
	}
	return v, nil
}

// JSON renders the export of doc, indented.
func JSON(doc *fxom.Document) (string, error) {
	v, err := Generic(doc)
	if err != nil {
		return "", err
	}
	return oj.JSON(v, &oj.Options{Indent: 2}), nil
}

// Run evaluates a JSONPath expression against the export of doc.
func Run(doc *fxom.Document, expr string) ([]any, error) {
	x, err := jp.ParseString(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", expr, err)
	}
	data, err := Generic(doc)
	if err != nil {
		return nil, err
	}
	return x.Get(data), nil
}
