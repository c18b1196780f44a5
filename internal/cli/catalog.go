package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/blueprint/pkg/catalog"
	"github.com/matzehuels/blueprint/pkg/errors"
)

// catalogCommand creates the catalog command.
func (c *CLI) catalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect reference catalog files",
	}

	cmd.AddCommand(c.catalogCheckCommand())

	return cmd
}

// catalogCheckCommand creates the "catalog check" subcommand.
func (c *CLI) catalogCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check [catalog.toml]",
		Short: "Report dangling references and duplicate natural keys",
		Long: `Report dangling references and duplicate natural keys in a catalog file.

Without an argument the catalog from the configuration (store.catalog) is
checked. The command fails when any problem is found.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.settings().Store.Catalog
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return errors.New(errors.ErrCodeInvalidInput, "no catalog given and store.catalog is not set")
			}

			cat, err := catalog.Load(path)
			if err != nil {
				return err
			}
			problems, err := cat.Check(cmd.Context())
			if err != nil {
				return err
			}

			if len(problems) == 0 {
				printSuccess(c.Out, "Catalog %s is consistent", path)
				return nil
			}
			printWarning(c.Out, "%d problems in %s", len(problems), path)
			printErrorTable(c.Out, problems)
			return errors.New(errors.ErrCodeInvalidInput, "catalog check found %d problems", len(problems))
		},
	}
}
