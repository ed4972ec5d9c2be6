package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abolfazlirani/asar-backend-app/internal/runtimeconfig"
	"github.com/abolfazlirani/asar-backend-app/internal/storage"
)

func newMigrateCmd(root *rootOptions) *cobra.Command {
	var (
		seed      bool
		languages []string
	)
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create missing tables and optionally seed the default home page",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			container, err := root.container(ctx, func(cfg *runtimeconfig.Config) {
				cfg.Database.CreateSchema = true
				cfg.Features.PriceSync = false
			})
			if err != nil {
				return err
			}
			defer container.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "schema ready on %s\n", storage.Describe(container.Config.Database))
			if !seed {
				return nil
			}
			inserted, err := storage.SeedDefaults(ctx, container.DB(), time.Now(), languages...)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "seeded %d home page(s) for %s\n", inserted, strings.Join(languages, ","))
			return nil
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "insert the default home page when missing")
	cmd.Flags().StringSliceVar(&languages, "lang", []string{"fa"}, "languages to seed")
	return cmd
}
