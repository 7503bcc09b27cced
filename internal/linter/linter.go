// Package linter reports problems in an fxom document that loading alone
// does not reject.
package linter

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"

	"github.com/agentic-research/fxom/internal/fxom"
	"github.com/agentic-research/fxom/internal/glue"
	"github.com/agentic-research/fxom/internal/writeback"
)

// Rules reported by Lint.
const (
	RuleDuplicateID        = "duplicate-id"
	RuleDanglingReference  = "dangling-reference"
	RuleForwardReference   = "forward-reference"
	RuleUnresolvedExpr     = "unresolved-expression"
	RuleInstantiation      = "instantiation"
	RuleScriptSyntax       = "script-syntax"
	RuleHandlerWithoutCode = "handler-without-controller"
)

// DefaultLanguage is the script language of documents without a
// <?language?> instruction.
const DefaultLanguage = "javascript"

type Diagnostic struct {
	Rule    string
	Message string
	Line    int // 1-based, 0 when the node was not parsed from text
}

func (d Diagnostic) String() string {
	if d.Line == 0 {
		return fmt.Sprintf("%s: %s", d.Rule, d.Message)
	}
	return fmt.Sprintf("line %d: %s: %s", d.Line, d.Rule, d.Message)
}

// Lint checks doc in one traversal and returns the findings ordered by
// line.
func Lint(doc *fxom.Document) []Diagnostic {
	root := doc.Root()
	if root == nil {
		return nil
	}
	ids := fxom.NewIDMap()
	refs := fxom.NewIntrinsics(fxom.IntrinsicReference|fxom.IntrinsicCopy, "", nil)
	props := fxom.NewSimpleProperties()
	scripts := fxom.NewScripts()
	failed := fxom.NewAllMatches(func(o fxom.Object) bool {
		_, isInstance := o.(*fxom.Instance)
		return isInstance && o.Failure() != nil
	})
	fxom.Collect(root, fxom.NewComposite(ids, refs, props, scripts, failed))

	var diags []Diagnostic
	report := func(n fxom.Node, rule, format string, args ...any) {
		diags = append(diags, Diagnostic{Rule: rule, Message: fmt.Sprintf(format, args...), Line: lineOf(n)})
	}

	for id, objs := range ids.Duplicates() {
		for _, o := range objs[1:] {
			report(o, RuleDuplicateID, "fx:id %q is already declared on line %d", id, lineOf(objs[0]))
		}
	}

	for _, r := range refs.Result() {
		switch {
		case r.Target() == nil:
			report(r, RuleDanglingReference, "%s source %q matches no fx:id", r.Kind(), r.Source())
		case errors.Is(r.Failure(), fxom.ErrForwardReference):
			report(r, RuleForwardReference, "%s source %q is declared later in the document", r.Kind(), r.Source())
		}
	}

	for _, o := range failed.Result() {
		err := o.Failure()
		if errors.Is(err, fxom.ErrNoInstantiator) {
			continue
		}
		report(o, RuleInstantiation, "%v", err)
	}

	language := Language(doc.Markup())
	var functions []string
	for _, o := range scripts.Result() {
		s := o.(*fxom.Script)
		if s.Source() != "" {
			continue
		}
		if errs := writeback.ScriptErrors([]byte(s.Body()), language); len(errs) > 0 {
			e := errs[0]
			report(s, RuleScriptSyntax, "%s at %d:%d (%d in script)", e.Message, e.Line+1, e.Column+1, len(errs))
		}
		functions = append(functions, Functions(s.Body(), language)...)
	}

	controller := ""
	if r, ok := root.(*fxom.Instance); ok {
		controller = r.Controller()
	}
	for _, p := range props.Result() {
		v := fxom.ParseValue(p.Value())
		switch v.Kind {
		case fxom.ValueExpression:
			for _, id := range v.Roots() {
				if _, ok := ids.Result()[id]; !ok && id != "controller" {
					report(p, RuleUnresolvedExpr, "%s=%q refers to unknown fx:id %q", p.Name(), p.Value(), id)
				}
			}
		case fxom.ValueHandler:
			if controller == "" && !slices.Contains(functions, v.Text) {
				report(p, RuleHandlerWithoutCode, "%s=%q has no controller or script function", p.Name(), p.Value())
			}
		}
	}

	slices.SortStableFunc(diags, func(a, b Diagnostic) int {
		return cmp.Or(cmp.Compare(a.Line, b.Line), cmp.Compare(a.Rule, b.Rule))
	})
	return diags
}

// Language returns the script language declared by the <?language?>
// instruction, or DefaultLanguage.
func Language(markup *glue.Document) string {
	for _, h := range markup.Header() {
		if h.Kind() == glue.KindInstruction && h.Tag() == "language" && h.Text() != "" {
			return h.Text()
		}
	}
	return DefaultLanguage
}

// Functions lists the top-level function names a JavaScript script body
// declares. Other languages yield nothing.
func Functions(body, language string) []string {
	if language != DefaultLanguage && language != "js" {
		return nil
	}
	lang := javascript.GetLanguage()
	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	src := []byte(body)
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil
	}

	q, err := sitter.NewQuery([]byte(`(program (function_declaration name: (identifier) @name))`), lang)
	if err != nil {
		return nil
	}
	qc := sitter.NewQueryCursor()
	qc.Exec(q, tree.RootNode())

	var names []string
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			names = append(names, c.Node.Content(src))
		}
	}
	return names
}

// lineOf is the source line of n, or of the nearest ancestor parsed from
// text.
func lineOf(n fxom.Node) int {
	for ; n != nil; n = fxom.Parent(n) {
		if e := n.Element(); e != nil && e.Line() > 0 {
			return e.Line()
		}
	}
	return 0
}
