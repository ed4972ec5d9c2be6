package logging

import (
	"context"

	"github.com/abolfazlirani/asar-backend-app/pkg/interfaces"
)

const (
	rootModule       = "asar"
	layoutModule     = "asar.layout"
	contentModule    = "asar.content"
	pagesModule      = "asar.pages"
	commentsModule   = "asar.comments"
	engagementModule = "asar.engagement"
	devicesModule    = "asar.devices"
	pricesModule     = "asar.prices"
	schedulerModule  = "asar.scheduler"
	httpModule       = "asar.http"
)

// ModuleLogger returns the provider's logger for module annotated with a
// "module" field. A nil provider yields a no-op logger.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// LayoutLogger is used by the layout resolver.
func LayoutLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, layoutModule)
}

// ContentLogger is used by the article and category services.
func ContentLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, contentModule)
}

// PagesLogger is used by the page service.
func PagesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, pagesModule)
}

func CommentsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, commentsModule)
}

// EngagementLogger is used by the like and bookmark service.
func EngagementLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, engagementModule)
}

func DevicesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, devicesModule)
}

// PricesLogger is used by the price sync job.
func PricesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, pricesModule)
}

// SchedulerLogger is used by the cron scheduler.
func SchedulerLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, schedulerModule)
}

// HTTPLogger is used by the API handlers and server middleware.
func HTTPLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, httpModule)
}

// NoOp returns a logger that discards every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
