// Package skeleton generates the Go source of a controller for a document:
// one field per fx:id and one method per event handler.
package skeleton

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"text/template"
	"unicode"

	"mvdan.cc/gofumpt/format"

	"github.com/agentic-research/fxom/internal/fxom"
	"github.com/agentic-research/fxom/internal/metadata"
	"github.com/agentic-research/fxom/internal/writeback"
)

// Options control the generated file.
type Options struct {
	Package string // default "controller"
	// Type names the controller struct. The default is the simple name of
	// fx:controller, or "Controller".
	Type string
	// Source names the document in the generated comments.
	Source string
}

type field struct {
	Name  string
	ID    string
	Class string
}

type method struct {
	Name   string
	Events []string
}

type model struct {
	Package string
	Type    string
	Source  string
	Fields  []field
	Methods []method
}

var tmpl = template.Must(template.New("controller").Parse(`// Code generated by fxom skeleton. Edit freely.

package {{.Package}}

// {{.Type}} controls {{if .Source}}{{.Source}}{{else}}its document{{end}}.
type {{.Type}} struct {
{{- range .Fields}}
	{{.Name}} any ` + "`" + `fxml:"{{.ID}}"` + "`" + ` // {{.Class}}
{{- end}}
}

// Initialize runs once the fields are injected.
func (c *{{.Type}}) Initialize() {}
{{range .Methods}}
// {{.Name}} handles {{range $i, $e := .Events}}{{if $i}}, {{end}}{{$e}}{{end}}.
func (c *{{$.Type}}) {{.Name}}(event any) {}
{{end}}`))

// Generate returns the formatted controller source for doc.
func Generate(doc *fxom.Document, opts Options) ([]byte, error) {
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("skeleton: document has no root")
	}
	m := model{Package: opts.Package, Type: opts.Type, Source: opts.Source}
	if m.Package == "" {
		m.Package = "controller"
	}
	if m.Type == "" {
		m.Type = "Controller"
		if r, ok := root.(*fxom.Instance); ok && r.Controller() != "" {
			m.Type = exported(metadata.SimpleName(r.Controller()))
		}
	}

	declared := fxom.NewAllMatches(func(o fxom.Object) bool { return fxom.FxID(o) != "" })
	props := fxom.NewSimpleProperties()
	fxom.Collect(root, fxom.NewComposite(declared, props))

	seen := map[string]bool{}
	for _, o := range declared.Result() {
		id := fxom.FxID(o)
		if seen[id] {
			continue
		}
		seen[id] = true
		switch o := o.(type) {
		case *fxom.Instance:
			m.Fields = append(m.Fields, field{Name: exported(id), ID: id, Class: metadata.SimpleName(o.Class())})
		case *fxom.Intrinsic:
			if o.Kind() == fxom.IntrinsicInclude {
				m.Fields = append(m.Fields,
					field{Name: exported(id), ID: id, Class: "include " + o.Source()},
					field{Name: exported(id) + "Controller", ID: id + "Controller", Class: "controller of " + o.Source()})
			}
		}
	}

	for _, p := range props.Result() {
		v := fxom.ParseValue(p.Value())
		if v.Kind != fxom.ValueHandler || !isIdent(v.Text) {
			continue
		}
		event := p.Name()
		if owner := p.Owner(); owner != nil {
			if id := fxom.FxID(owner); id != "" {
				event += " of " + id
			}
		}
		name := exported(v.Text)
		i := slices.IndexFunc(m.Methods, func(x method) bool { return x.Name == name })
		if i < 0 {
			m.Methods = append(m.Methods, method{Name: name})
			i = len(m.Methods) - 1
		}
		m.Methods[i].Events = append(m.Methods[i].Events, event)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, m); err != nil {
		return nil, fmt.Errorf("skeleton: render: %w", err)
	}
	src, err := format.Source(buf.Bytes(), format.Options{LangVersion: "go1.25"})
	if err != nil {
		return nil, fmt.Errorf("skeleton: format: %w", err)
	}
	if err := writeback.Validate(src, strings.ToLower(m.Type)+".go"); err != nil {
		return nil, fmt.Errorf("skeleton: %w", err)
	}
	return src, nil
}

// exported upper-cases the first letter of an identifier.
func exported(id string) string {
	if id == "" {
		return id
	}
	r := []rune(id)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func isIdent(s string) bool {
	for i, r := range s {
		if r != '_' && !unicode.IsLetter(r) && (i == 0 || !unicode.IsDigit(r)) {
			return false
		}
	}
	return s != ""
}
