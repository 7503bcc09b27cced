package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/agentic-research/fxom/internal/ctxlog"
	"github.com/agentic-research/fxom/internal/index"
	"github.com/agentic-research/fxom/internal/linter"
	"github.com/agentic-research/fxom/internal/query"
	"github.com/agentic-research/fxom/internal/skeleton"
	"github.com/agentic-research/fxom/internal/writeback"
)

// errProblems is returned when lint finds something, so the exit status is
// non-zero.
var errProblems = errors.New("problems found")

func newLintCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "lint FILE...",
		Short: "Report problems loading alone does not reject",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			total := 0
			for _, name := range args {
				doc, err := g.open(cmd, name)
				if err != nil {
					return err
				}
				diags := linter.Lint(doc)
				for _, d := range diags {
					fmt.Fprintf(out, "%s: %s\n", name, d)
				}
				total += len(diags)
			}
			if total > 0 {
				return fmt.Errorf("%d %w", total, errProblems)
			}
			return nil
		},
	}
}

func newIndexCmd(g *globals) *cobra.Command {
	var (
		dbPath string
		find   []string
	)
	c := &cobra.Command{
		Use:   "index FILE...",
		Short: "Build a SQLite index of ids and references across documents",
		Long: `Builds the index at --db, replacing any previous one. Each --find
token (kind:name, for example ref:okButton or class:Button) prints the
documents that contain it.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := ctxlog.FromContext(cmd.Context())
			ix, err := index.Create(dbPath, logger)
			if err != nil {
				return err
			}
			defer func() { _ = ix.Close() }()

			for _, name := range args {
				doc, err := g.open(cmd, name)
				if err != nil {
					return err
				}
				ix.AddDocument(name, doc)
			}
			if err := ix.Flush(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, token := range find {
				files, err := ix.Files(token)
				if err != nil {
					return err
				}
				for _, f := range files {
					fmt.Fprintf(out, "%s\t%s\n", token, f)
				}
			}
			return nil
		},
	}
	c.Flags().StringVar(&dbPath, "db", "fxom-index.db", "Index database path (empty for a temporary one)")
	c.Flags().StringArrayVar(&find, "find", nil, "Token to look up after indexing (repeatable)")
	return c
}

func newQueryCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "query FILE [JSONPATH]",
		Short: "Export a document as JSON, optionally filtered by a JSONPath",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := g.open(cmd, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				s, err := query.JSON(doc)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, s)
				return err
			}
			results, err := query.Run(doc, args[1])
			if err != nil {
				return err
			}
			for _, r := range results {
				fmt.Fprintln(out, oj.JSON(r, &oj.Options{Sort: true}))
			}
			return nil
		},
	}
}

func newSkeletonCmd(g *globals) *cobra.Command {
	var (
		opts   skeleton.Options
		output string
	)
	c := &cobra.Command{
		Use:   "skeleton FILE",
		Short: "Generate a Go controller skeleton for a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := g.open(cmd, args[0])
			if err != nil {
				return err
			}
			if opts.Source == "" {
				opts.Source = args[0]
			}
			src, err := skeleton.Generate(doc, opts)
			if err != nil {
				return err
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(src)
				return err
			}
			abs, err := filepath.Abs(output)
			if err != nil {
				return err
			}
			return writeback.WriteFile(osfs.New(filepath.Dir(abs)), filepath.Base(abs), src)
		},
	}
	c.Flags().StringVar(&opts.Package, "package", "", "Package name (default controller)")
	c.Flags().StringVar(&opts.Type, "type", "", "Controller type name (default from fx:controller)")
	c.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	return c
}
