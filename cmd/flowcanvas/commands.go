package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/markus41/flowcanvas/internal/canvas"
	"github.com/markus41/flowcanvas/internal/canvas/catalog"
	"github.com/markus41/flowcanvas/internal/canvas/core"
	"github.com/markus41/flowcanvas/internal/canvas/migration"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "flowcanvas",
		Short:         "Workflow document tooling for the flowcanvas editor",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newExportCmd())
	root.AddCommand(newImportCmd())
	root.AddCommand(newCatalogCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newExportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export <workflow.json>",
		Short: "Wrap a workflow file into a portable export document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading workflow: %w", err)
			}
			var wf core.Workflow
			if err := json.Unmarshal(data, &wf); err != nil {
				return fmt.Errorf("parsing workflow: %w", err)
			}

			out, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			defer out.Close()

			if err := migration.Export(out, wf); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d nodes, %d edges\n", len(wf.Nodes), len(wf.Edges))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newImportCmd() *cobra.Command {
	var output, prefix string
	cmd := &cobra.Command{
		Use:   "import <export.json>",
		Short: "Unwrap an export document back into a workflow file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening export: %w", err)
			}
			defer f.Close()

			wf, err := migration.Import(f, migration.ImportOptions{Prefix: prefix})
			if err != nil {
				return err
			}

			out, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			defer out.Close()

			enc := json.NewEncoder(out)
			enc.SetIndent("", "    ")
			if err := enc.Encode(wf); err != nil {
				return fmt.Errorf("writing workflow: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Imported %d nodes, %d edges\n", len(wf.Nodes), len(wf.Edges))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "prefix added to every imported node and edge id")
	return cmd
}

func newCatalogCmd() *cobra.Command {
	var catalogFile string
	cmd := &cobra.Command{
		Use:   "catalog [query]",
		Short: "List or search node-type definitions in a catalog file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat := catalog.New()
			if err := cat.LoadFile(catalogFile); err != nil {
				return err
			}
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			for _, def := range cat.Search(query) {
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %-16s %s\n", def.TypeName, def.Category, def.DisplayName)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&catalogFile, "catalog", "c", "catalog.json", "catalog file to read")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), canvas.BuildInfo())
		},
	}
}

// openOutput returns the writer to use, or stdout when path is empty.
// Stdout is shielded from the caller's Close.
func openOutput(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{cmd.OutOrStdout()}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
