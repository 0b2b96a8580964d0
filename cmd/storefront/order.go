package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/talkincode/storefront/internal/domain"
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show or adjust the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Release()
		fmt.Fprintln(cmd.OutOrStdout(), a.Session().View().Summary.Text)
		return nil
	},
}

var cartAdjustCmd = &cobra.Command{
	Use:   "adjust <line-id> <delta>",
	Short: "Change the quantity of a line item",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		delta, err := cast.ToIntE(args[1])
		if err != nil {
			return errors.Wrapf(err, "delta %q", args[1])
		}
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Release()

		qty, err := a.Session().Adjust(cmd.Context(), domain.LineID(args[0]), delta)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", args[0], qty)
		return nil
	},
}

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Print the order message and its WhatsApp link",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Release()

		out, err := a.Session().Checkout(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out.Message)
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout(), out.Link)
		return nil
	},
}

func init() {
	cartCmd.AddCommand(cartAdjustCmd)
}
