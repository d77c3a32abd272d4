package log

import (
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/tacusci/logging/v2"
	"golang.org/x/term"
)

var Debug = func(format string, a ...interface{}) {
	logging.Debug(format, a...) //nolint
}

var Info = func(format string, a ...interface{}) {
	logging.Info(format, a...) //nolint
}

var Warn = func(format string, a ...interface{}) {
	logging.Warn(format, a...) //nolint
}

var Error = func(format string, a ...interface{}) {
	logging.Error(format, a...) //nolint
}

var Fatal = func(format string, a ...interface{}) {
	logging.Fatal(format, a...) //nolint
}

var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Configure sets the logging level from a level name (debug, info, warn
// or silent). Anything unrecognised falls back to warn, which also
// prints info lines.
func Configure(level string) {
	logging.ColorLogLevelLabelOnly = true
	logging.CallbackLabel = false
	color.NoColor = !isTerminal()

	switch strings.ToLower(level) {
	case "debug":
		logging.CurrentLoggingLevel = logging.DebugLevel
		logging.CallbackLabelLevel = 5
		logging.CallbackLabel = true
	case "info":
		logging.CurrentLoggingLevel = logging.InfoLevel
	case "silent":
		logging.CurrentLoggingLevel = logging.SilentLevel
	default:
		logging.CurrentLoggingLevel = logging.WarnLevel
	}
}
