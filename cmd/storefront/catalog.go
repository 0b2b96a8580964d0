package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/talkincode/storefront/internal/catalog"
	"go.uber.org/multierr"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Export, import or reset the catalog",
}

var catalogExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the catalog as CSV (stdout when no file is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Release()

		data, err := catalog.ExportCSV(a.Session().View().Products)
		if err != nil {
			return err
		}
		if len(args) == 0 {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		return os.WriteFile(args[0], data, 0o644)
	},
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Upsert every product of a CSV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		products, err := catalog.ImportCSV(data)
		if err != nil {
			return err
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Release()

		var errs error
		imported := 0
		for _, p := range products {
			p = a.IDs().AssignIDs(p)
			if err := a.Session().Upsert(cmd.Context(), p); err != nil {
				errs = multierr.Append(errs, errors.Wrapf(err, "product %s", p.ID))
				continue
			}
			imported++
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d products\n", imported, len(products))
		return errs
	},
}

var catalogResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Replace the catalog with the built-in products",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Release()
		return a.Session().Reset(cmd.Context())
	},
}

func init() {
	catalogCmd.AddCommand(catalogExportCmd, catalogImportCmd, catalogResetCmd)
}
