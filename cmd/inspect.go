package cmd

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/disiqueira/gotree/v3"
	"github.com/spf13/cobra"

	"github.com/agentic-research/fxom/internal/fxom"
)

func newFmtCmd(g *globals) *cobra.Command {
	var write bool
	c := &cobra.Command{
		Use:   "fmt FILE",
		Short: "Print a document in canonical form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := g.open(cmd, args[0])
			if err != nil {
				return err
			}
			return emit(cmd, doc, write)
		},
	}
	c.Flags().BoolVarP(&write, "write", "w", false, "Write the result back to the file")
	return c
}

// emit saves doc when write is set and prints its text otherwise.
func emit(cmd *cobra.Command, doc *fxom.Document, write bool) error {
	if write {
		return doc.Save()
	}
	_, err := cmd.OutOrStdout().Write(doc.Text())
	return err
}

func newTreeCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "tree FILE",
		Short: "Print the object tree of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := g.open(cmd, args[0])
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), outline(doc))
			return err
		},
	}
}

// outline renders the node graph: objects with their properties below them,
// collections as branches.
func outline(doc *fxom.Document) string {
	root := doc.Root()
	if root == nil {
		return "(empty)\n"
	}
	t := gotree.New(label(root))
	addProperties(t, root)
	return t.Print()
}

func addProperties(t gotree.Tree, o fxom.Object) {
	var props []fxom.Property
	switch o := o.(type) {
	case fxom.Owner:
		props = o.Properties()
	case *fxom.Define:
		for _, v := range o.Items().Values() {
			addProperties(t.Add(label(v)), v)
		}
		return
	}
	for _, p := range props {
		switch p := p.(type) {
		case *fxom.PropertyT:
			t.Add(fmt.Sprintf("%s = %q", p.Name(), p.Value()))
		case *fxom.PropertyC:
			branch := t
			if !p.IsImplicit() {
				branch = t.Add(p.Name())
			}
			for _, v := range p.Values() {
				addProperties(branch.Add(label(v)), v)
			}
		}
	}
}

func label(o fxom.Object) string {
	var b strings.Builder
	switch o := o.(type) {
	case *fxom.Instance:
		if o.IsFxRoot() {
			b.WriteString("fx:root ")
		}
		b.WriteString(o.Class())
		if id := o.FxID(); id != "" {
			b.WriteString("#" + id)
		}
	case *fxom.Intrinsic:
		b.WriteString(o.Kind().Tag())
		if src := o.Source(); src != "" {
			b.WriteString(" " + src)
		}
	case *fxom.Define:
		b.WriteString(fxom.TagDefine)
	case *fxom.Script:
		b.WriteString(fxom.TagScript)
		if src := o.Source(); src != "" {
			b.WriteString(" " + src)
		}
	case *fxom.Comment:
		b.WriteString("<!--" + o.Text() + "-->")
	default:
		b.WriteString("(virtual)")
	}
	if err := o.Failure(); err != nil {
		b.WriteString(" [" + err.Error() + "]")
	}
	return b.String()
}

func newIDsCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "ids FILE",
		Short: "List the fx:ids a document declares",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := g.open(cmd, args[0])
			if err != nil {
				return err
			}
			if doc.Root() == nil {
				return nil
			}
			ids := fxom.NewIDMap()
			fxom.Collect(doc.Root(), ids)

			names := make([]string, 0, len(ids.Result()))
			for id := range ids.Result() {
				names = append(names, id)
			}
			slices.Sort(names)

			out := cmd.OutOrStdout()
			for _, id := range names {
				all := ids.All(id)
				first := all[0]
				fmt.Fprintf(out, "%-20s %-12s line %d", id, kindOf(first), lineOf(first))
				if len(all) > 1 {
					fmt.Fprintf(out, " (declared %d times)", len(all))
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}

func kindOf(o fxom.Object) string {
	if i, ok := o.(*fxom.Instance); ok {
		return i.Class()
	}
	return label(o)
}

// lineOf is the markup line of n, or of its owner for attribute properties.
func lineOf(n fxom.Node) int {
	if e := n.Element(); e != nil {
		return e.Line()
	}
	if p, ok := n.(fxom.Property); ok && p.Owner() != nil {
		return lineOf(p.Owner())
	}
	return 0
}

func newRefsCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "refs FILE ID",
		Short: "List the references and expressions that use an fx:id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := g.open(cmd, args[0])
			if err != nil {
				return err
			}
			if doc.Root() == nil {
				return nil
			}
			id := args[1]
			refs := fxom.NewReferencesBySource(id)
			exprs := fxom.NewExpressionReferences(id)
			fxom.Collect(doc.Root(), fxom.NewComposite(refs, exprs))

			out := cmd.OutOrStdout()
			for _, r := range refs.Result() {
				fmt.Fprintf(out, "line %d\t%s\n", lineOf(r), label(r))
			}
			for _, p := range exprs.Result() {
				fmt.Fprintf(out, "line %d\t%s = %s\n", lineOf(p), p.Name(), p.Value())
			}
			return nil
		},
	}
}

func newDepsCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "deps FILE",
		Short: "List the files a document depends on",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := g.open(cmd, args[0])
			if err != nil {
				return err
			}
			for _, d := range doc.Dependencies() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", d.Kind, d.Path)
			}
			return nil
		},
	}
}
