package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blueprint/pkg/errors"
	"github.com/matzehuels/blueprint/pkg/pipeline"
	"github.com/matzehuels/blueprint/pkg/render/nodelink"
)

// graphCommand creates the graph command for drawing an exchange document.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		kindsStr string
		output   string
		noCache  bool
	)
	opts := pipeline.GraphOptions{Format: pipeline.DefaultFormat}

	cmd := &cobra.Command{
		Use:   "graph [document.json]",
		Short: "Draw the hierarchies of an exchange document",
		Long: `Draw the hierarchies of an exchange document as a node-link diagram.

Each entity kind (zones, devices, cfnodes, services) becomes a cluster and
parent/child links become edges. With --references, device zone and
service device references are drawn as dashed edges.

The output defaults to the input file name with the format's extension.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Kinds = parseList(kindsStr)
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "graph options")
			}
			return c.runGraph(cmd.Context(), args[0], output, opts, noCache)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", opts.Format, "output format: svg (default), dot")
	cmd.Flags().StringVarP(&kindsStr, "kinds", "k", "", "entity kinds to draw (comma-separated): "+strings.Join(nodelink.AllKinds, ", "))
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "show descriptions and types in node labels")
	cmd.Flags().BoolVar(&opts.References, "references", false, "draw zone and device references")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, or - for stdout")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass the graph cache")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runGraph(ctx context.Context, input, output string, opts pipeline.GraphOptions, noCache bool) error {
	data, err := readInput(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, os.Stderr, "Rendering "+displayName(input)+"...")
	spinner.Start()
	out, hit, err := runner.Graph(ctx, data, opts)
	spinner.Stop()
	if err != nil {
		return err
	}

	if output == "-" {
		_, err = c.Out.Write(out)
		return err
	}
	if output == "" {
		output = graphPath(input, opts.Format)
	}
	if err := errors.ValidatePath(output); err != nil {
		return err
	}
	if err := os.WriteFile(output, out, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", output)
	}

	printSuccess(c.Out, "Rendered %s", strings.ToUpper(opts.Format))
	printCounts(c.Out, []string{fmt.Sprintf("%d bytes", len(out))}, hit)
	printFile(c.Out, output)
	return nil
}

// graphPath derives the output path from the input path: "site.json"
// becomes "site.svg". Stdin input writes to "graph.<format>".
func graphPath(input, format string) string {
	if input == "-" {
		return "graph." + format
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
}
