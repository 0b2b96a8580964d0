package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/talkincode/storefront/config"
	"github.com/talkincode/storefront/internal/app"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Home bakery storefront: catalog, cart and order handoff",
	Long: `storefront serves the catalog and cart API of a home bakery and turns
the cart into an order message for WhatsApp.

Available commands:
  serve   - Run the HTTP API
  catalog - Export, import or reset the catalog
  cart    - Adjust quantities from the shell
  order   - Print the order message and its deep link`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "storefront.yml", "config file")
	rootCmd.AddCommand(serveCmd, catalogCmd, cartCmd, orderCmd)
}

// openApp loads the configuration and wires the application.
func openApp(ctx context.Context) (*app.Application, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, err
	}
	a := app.NewApplication(cfg)
	if err := a.Init(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
