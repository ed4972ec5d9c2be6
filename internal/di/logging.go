package di

import (
	"fmt"
	"strings"

	"github.com/abolfazlirani/asar-backend-app/internal/logging/console"
	"github.com/abolfazlirani/asar-backend-app/internal/logging/gologger"
	"github.com/abolfazlirani/asar-backend-app/internal/runtimeconfig"
	"github.com/abolfazlirani/asar-backend-app/pkg/interfaces"
)

// NewLoggerProvider selects the console or go-logger provider.
func NewLoggerProvider(cfg runtimeconfig.LoggingConfig) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "console":
		opts := console.Options{}
		if level, ok := console.ParseLevel(cfg.Level); ok {
			opts.MinLevel = &level
		}
		return console.NewProvider(opts), nil
	case "gologger":
		return gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
	default:
		return nil, fmt.Errorf("di: unknown logging provider %q", cfg.Provider)
	}
}
