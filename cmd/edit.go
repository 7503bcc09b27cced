package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentic-research/fxom/internal/ctxlog"
	"github.com/agentic-research/fxom/internal/fxom"
	"github.com/agentic-research/fxom/internal/job"
	"github.com/agentic-research/fxom/internal/selection"
)

// push runs j against doc through a job manager, the way an editor would.
func push(cmd *cobra.Command, doc *fxom.Document, j job.Job) error {
	m := job.NewManager(doc, selection.NewModel(), ctxlog.FromContext(cmd.Context()))
	if !m.Push(j) {
		return fmt.Errorf("%s: %w", j.Description(), job.ErrNotExecutable)
	}
	return nil
}

func findByID(doc *fxom.Document, id string) (fxom.Object, error) {
	if doc.Root() == nil {
		return nil, fmt.Errorf("no object with fx:id %q", id)
	}
	c := fxom.NewFirstByID(id, nil)
	fxom.Collect(doc.Root(), c)
	if c.Result() == nil {
		return nil, fmt.Errorf("no object with fx:id %q", id)
	}
	return c.Result(), nil
}

func newRenameIDCmd(g *globals) *cobra.Command {
	var write bool
	c := &cobra.Command{
		Use:   "rename-id FILE OLD NEW",
		Short: "Rename an fx:id and every reference to it",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := g.open(cmd, args[0])
			if err != nil {
				return err
			}
			o, err := findByID(doc, args[1])
			if err != nil {
				return err
			}
			if err := push(cmd, doc, job.NewRenameFxID(o, args[2])); err != nil {
				return err
			}
			return emit(cmd, doc, write)
		},
	}
	c.Flags().BoolVarP(&write, "write", "w", false, "Write the result back to the file")
	return c
}

func newDeleteCmd(g *globals) *cobra.Command {
	var write bool
	c := &cobra.Command{
		Use:   "delete FILE ID...",
		Short: "Delete objects by fx:id along with the references to them",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := g.open(cmd, args[0])
			if err != nil {
				return err
			}
			var objs []fxom.Object
			for _, id := range args[1:] {
				o, err := findByID(doc, id)
				if err != nil {
					return err
				}
				objs = append(objs, o)
			}
			if err := push(cmd, doc, job.NewDeleteSelection(selection.Of(objs...))); err != nil {
				return err
			}
			return emit(cmd, doc, write)
		},
	}
	c.Flags().BoolVarP(&write, "write", "w", false, "Write the result back to the file")
	return c
}
