package pricescmd

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/abolfazlirani/asar-backend-app/internal/commands"
	"github.com/abolfazlirani/asar-backend-app/internal/logging"
	"github.com/abolfazlirani/asar-backend-app/internal/prices"
	"github.com/abolfazlirani/asar-backend-app/pkg/interfaces"
)

const syncPricesMessageType = "asar.prices.sync"

// SyncPricesCommand refreshes the stored price snapshot from the upstream
// feed. Trigger names who asked for it, such as cron, startup or cli.
type SyncPricesCommand struct {
	Trigger string `json:"trigger"`
}

func (SyncPricesCommand) Type() string { return syncPricesMessageType }

func (c SyncPricesCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Trigger, validation.Required, validation.In("cron", "startup", "cli", "admin")),
	)
}

type SyncPricesHandler struct {
	inner *commands.Handler[SyncPricesCommand]
}

func NewSyncPricesHandler(service prices.Service, logger interfaces.Logger, opts ...commands.HandlerOption[SyncPricesCommand]) *SyncPricesHandler {
	if service == nil {
		panic("pricescmd: price service is required")
	}
	baseLogger := logging.Ensure(logger)

	exec := func(ctx context.Context, msg SyncPricesCommand) error {
		count, err := service.Sync(ctx)
		if err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"trigger": msg.Trigger,
			"count":   count,
		}).Info("prices.command.sync.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[SyncPricesCommand]{
		commands.WithLogger[SyncPricesCommand](baseLogger),
		commands.WithOperation[SyncPricesCommand]("prices.sync"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SyncPricesHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

func (h *SyncPricesHandler) Execute(ctx context.Context, msg SyncPricesCommand) error {
	return h.inner.Execute(ctx, msg)
}
