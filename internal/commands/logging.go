package commands

import (
	"strings"

	"github.com/abolfazlirani/asar-backend-app/internal/logging"
	"github.com/abolfazlirani/asar-backend-app/pkg/interfaces"
)

const commandModuleRoot = "asar.commands"

// CommandLogger returns a logger for the command handlers of module.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = "core"
	}
	logger := logging.ModuleLogger(provider, commandModuleRoot+"."+name)
	return logging.WithFields(logger, map[string]any{
		"component":      "command",
		"command_module": name,
	})
}
