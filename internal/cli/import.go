package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blueprint/pkg/errors"
	"github.com/matzehuels/blueprint/pkg/pipeline"
)

type importOpts struct {
	dryRun   bool
	asJSON   bool
	maxBytes int64
	noCache  bool
}

// importCommand creates the import command.
func (c *CLI) importCommand() *cobra.Command {
	var opts importOpts

	cmd := &cobra.Command{
		Use:   "import [document.json]",
		Short: "Import an exchange document as a new project version",
		Long: `Import an exchange document as a new project version.

References to catalog entities are resolved by natural key against the
configured store. Unresolved references do not stop the import: they are
listed after the summary and the entity is saved without them.

Use "-" to read the document from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runImport(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "resolve the document without saving it")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the result as JSON")
	cmd.Flags().Int64Var(&opts.maxBytes, "max-bytes", 0, "maximum document size (0: server.max_document_bytes, -1: unlimited)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runImport(ctx context.Context, input string, opts importOpts) error {
	data, err := readInput(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	maxBytes := opts.maxBytes
	if maxBytes == 0 {
		maxBytes = c.settings().Server.MaxDocumentBytes
	}

	spinner := newSpinner(ctx, os.Stderr, "Importing "+displayName(input)+"...")
	spinner.Start()
	res, err := runner.Import(ctx, data, pipeline.ImportOptions{DryRun: opts.dryRun, MaxBytes: maxBytes})
	spinner.Stop()
	if err != nil {
		return err
	}

	if opts.asJSON {
		if res.Errors == nil {
			res.Errors = []string{}
		}
		enc := json.NewEncoder(c.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	c.printImport(res, opts.dryRun)
	return nil
}

func (c *CLI) printImport(res *pipeline.ImportResult, dryRun bool) {
	name := res.ProjectVersion.Name
	if name == "" {
		name = "(unnamed)"
	}
	if dryRun {
		printInfo(c.Out, "Resolved %s (dry run, nothing saved)", StyleValue.Render(name))
	} else {
		printSuccess(c.Out, "Imported %s as project version %d", StyleValue.Render(name), res.VersionID)
	}

	s := res.Stats
	printCounts(c.Out, []string{
		fmt.Sprintf("%d zones", s.Zones),
		fmt.Sprintf("%d devices", s.Devices),
		fmt.Sprintf("%d cloud nodes", s.CFNodes),
		fmt.Sprintf("%d services", s.Services),
	}, false)
	printDetail(c.Out, "import %s", res.ID)

	if len(res.Errors) == 0 {
		return
	}
	printWarning(c.Out, "%d unresolved references", len(res.Errors))
	printErrorTable(c.Out, res.Errors)
}

// readInput reads a file, or stdin for "-".
func readInput(input string) ([]byte, error) {
	if input == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read stdin")
		}
		return data, nil
	}
	if err := errors.ValidatePath(input); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", input)
	}
	return data, nil
}

func displayName(input string) string {
	if input == "-" {
		return "stdin"
	}
	return input
}
