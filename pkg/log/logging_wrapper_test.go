package log

import (
	"testing"

	"github.com/fatih/color"
	"github.com/matryer/is"
	"github.com/tacusci/logging/v2"
)

func overloadIsTerminal(overload func() bool) func() {
	isTerminalRef := isTerminal
	isTerminal = overload
	return func() { isTerminal = isTerminalRef }
}

func TestConfigureSetsLevelFromName(t *testing.T) {
	is := is.New(t)
	reset := overloadIsTerminal(func() bool { return true })
	defer reset()
	defer Configure("warn")

	Configure("DEBUG")
	is.Equal(logging.CurrentLoggingLevel, logging.DebugLevel)
	is.True(logging.CallbackLabel)

	Configure("info")
	is.Equal(logging.CurrentLoggingLevel, logging.InfoLevel)
	is.True(!logging.CallbackLabel)

	Configure("silent")
	is.Equal(logging.CurrentLoggingLevel, logging.SilentLevel)

	Configure("whatever")
	is.Equal(logging.CurrentLoggingLevel, logging.WarnLevel)
}

func TestConfigureDisablesColorWhenNotATerminal(t *testing.T) {
	is := is.New(t)
	reset := overloadIsTerminal(func() bool { return false })
	defer reset()
	defer func() { color.NoColor = false }()

	Configure("warn")
	is.True(color.NoColor)
}
