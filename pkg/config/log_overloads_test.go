package config_test

import (
	"fmt"

	"github.com/tauraamui/panoexport/pkg/log"
)

func overloadWarnLog(overload func(string, ...interface{})) func() {
	logWarnRef := log.Warn
	log.Warn = overload
	return func() { log.Warn = logWarnRef }
}

// captureWarnings collects every formatted warning until reset is called.
func captureWarnings() (*[]string, func()) {
	warnings := []string{}
	reset := overloadWarnLog(func(format string, a ...interface{}) {
		warnings = append(warnings, fmt.Sprintf(format, a...))
	})
	return &warnings, reset
}
