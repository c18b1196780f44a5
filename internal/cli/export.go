package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blueprint/pkg/errors"
	"github.com/matzehuels/blueprint/pkg/pipeline"
)

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		output  string
		refresh bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "export [version-id]",
		Short: "Export a stored project version as an exchange document",
		Long: `Export a stored project version as an exchange document.

The document is written to stdout unless --output is given. Exports are
cached until the version is saved again; use --refresh to rebuild one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := errors.ParseID(args[0])
			if err != nil {
				return err
			}
			return c.runExport(cmd.Context(), id, output, pipeline.ExportOptions{Refresh: refresh}, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the export cache")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runExport(ctx context.Context, id int, output string, opts pipeline.ExportOptions, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	data, hit, err := runner.Export(ctx, id, opts)
	if err != nil {
		return err
	}

	if output == "" {
		_, err = c.Out.Write(data)
		return err
	}
	if err := errors.ValidatePath(output); err != nil {
		return err
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", output)
	}

	prog.done("Exported project version", "id", id, "cached", hit)
	printSuccess(c.Out, "Exported project version %d", id)
	printFile(c.Out, output)
	return nil
}
