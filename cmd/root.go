package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/agentic-research/fxom/internal/ctxlog"
	"github.com/agentic-research/fxom/internal/fxom"
	"github.com/agentic-research/fxom/internal/metadata"
	"github.com/agentic-research/fxom/internal/widget"
)

// globals holds the persistent flags shared by every subcommand.
type globals struct {
	catalogPath string
	logLevel    string
	logFormat   string

	catalog *metadata.Catalog
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:           "fxom",
		Short:         "Inspect and edit FXML documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(g.logLevel, g.logFormat, cmd.ErrOrStderr())
			cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))

			if g.catalogPath == "" {
				g.catalog = metadata.Builtin()
				return nil
			}
			c, err := metadata.LoadCatalog(g.catalogPath)
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}
			logger.Debug("catalog loaded", "path", g.catalogPath, "classes", len(c.Classes()))
			g.catalog = c
			return nil
		},
	}

	root.PersistentFlags().StringVar(&g.catalogPath, "catalog", "", "Path to an HCL class catalog (default: built-in)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "text", "Log format: text, json")

	root.AddCommand(
		newFmtCmd(g),
		newTreeCmd(g),
		newIDsCmd(g),
		newRefsCmd(g),
		newDepsCmd(g),
		newLintCmd(g),
		newIndexCmd(g),
		newQueryCmd(g),
		newSkeletonCmd(g),
		newRenameIDCmd(g),
		newDeleteCmd(g),
	)
	return root
}

// open loads the document at name. The directory holding it becomes the
// filesystem root for includes and saves.
func (g *globals) open(cmd *cobra.Command, name string) (*fxom.Document, error) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return nil, err
	}
	fs := osfs.New(filepath.Dir(abs))
	return fxom.Open(fs, filepath.Base(abs),
		fxom.WithMetadata(g.catalog),
		fxom.WithInstantiator(widget.New(g.catalog)),
		fxom.WithLogger(ctxlog.FromContext(cmd.Context())),
	)
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "fxom:", err)
		os.Exit(1)
	}
}
