// Command asar runs the asar content backend.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abolfazlirani/asar-backend-app/internal/di"
	"github.com/abolfazlirani/asar-backend-app/internal/runtimeconfig"
)

type rootOptions struct {
	envFiles []string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "asar:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "asar",
		Short:         "asar content backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", []string{".env"}, "dotenv files to load before reading the environment")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newMigrateCmd(opts))
	root.AddCommand(newSyncPricesCmd(opts))
	return root
}

func (o *rootOptions) config() (runtimeconfig.Config, error) {
	return runtimeconfig.Load(o.envFiles...)
}

// container builds the dependency graph. mutate may adjust the config for
// one-shot commands.
func (o *rootOptions) container(ctx context.Context, mutate func(*runtimeconfig.Config)) (*di.Container, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return di.NewContainer(ctx, cfg)
}
