package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abolfazlirani/asar-backend-app/internal/runtimeconfig"
)

func newSyncPricesCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync-prices",
		Short: "Fetch the price feed once and replace the stored snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			container, err := root.container(ctx, func(cfg *runtimeconfig.Config) {
				cfg.Features.PriceSync = false
			})
			if err != nil {
				return err
			}
			defer container.Close()

			if err := container.SyncPrices(ctx, "cli"); err != nil {
				return err
			}
			items, err := container.PriceService().ListPrices(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored %d price item(s)\n", len(items))
			return nil
		},
	}
}
