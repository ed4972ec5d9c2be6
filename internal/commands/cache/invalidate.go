package cachecmd

import (
	"context"
	"errors"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/abolfazlirani/asar-backend-app/internal/commands"
	"github.com/abolfazlirani/asar-backend-app/internal/logging"
	"github.com/abolfazlirani/asar-backend-app/pkg/interfaces"
)

const invalidateCacheMessageType = "asar.cache.invalidate"

// Cache targets.
const (
	TargetCategories = "categories"
	TargetPages      = "pages"
)

var ErrUnknownTarget = errors.New("cache command: unknown target")

// Invalidator is implemented by the cached repositories.
type Invalidator interface {
	InvalidateCache(ctx context.Context) error
}

// InvalidateCacheCommand clears the named repository caches. No targets
// means all of them.
type InvalidateCacheCommand struct {
	Targets []string `json:"targets,omitempty"`
}

func (InvalidateCacheCommand) Type() string { return invalidateCacheMessageType }

func (c InvalidateCacheCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Targets, validation.Each(validation.In(TargetCategories, TargetPages))),
	)
}

type InvalidateCacheHandler struct {
	inner *commands.Handler[InvalidateCacheCommand]
}

func NewInvalidateCacheHandler(targets map[string]Invalidator, logger interfaces.Logger, opts ...commands.HandlerOption[InvalidateCacheCommand]) *InvalidateCacheHandler {
	baseLogger := logging.Ensure(logger)

	exec := func(ctx context.Context, msg InvalidateCacheCommand) error {
		names := msg.Targets
		if len(names) == 0 {
			names = make([]string, 0, len(targets))
			for name := range targets {
				names = append(names, name)
			}
			sort.Strings(names)
		}
		for _, name := range names {
			target, ok := targets[name]
			if !ok || target == nil {
				return ErrUnknownTarget
			}
			if err := target.InvalidateCache(ctx); err != nil {
				return err
			}
			logging.WithFields(baseLogger, map[string]any{"target": name}).Info("cache.command.invalidated")
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[InvalidateCacheCommand]{
		commands.WithLogger[InvalidateCacheCommand](baseLogger),
		commands.WithOperation[InvalidateCacheCommand]("cache.invalidate"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &InvalidateCacheHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

func (h *InvalidateCacheHandler) Execute(ctx context.Context, msg InvalidateCacheCommand) error {
	return h.inner.Execute(ctx, msg)
}
