package configdef

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/dealancer/validate.v2"
)

// Values are the persisted defaults read from the config file. Every
// field is optional and is overridden by command line flags.
type Values struct {
	Engine          string `json:"engine"`
	Output          string `json:"output"`
	Format          string `json:"format"`
	ColorProcessing string `json:"color_processing"`
	BlendingWidth   *int   `json:"blending_width"`
	JournalPath     string `json:"journal_path"`
	MetricsPath     string `json:"metrics_path"`
}

func (v Values) RunValidate() error {
	if err := validate.Validate(&v); err != nil {
		return err
	}

	const validationErrorHeader = "validation failed: %w"
	if v.BlendingWidth != nil && *v.BlendingWidth < 0 {
		return fmt.Errorf(validationErrorHeader, errors.New("blending width must not be negative"))
	}
	if len(v.Engine) > 0 && !KnownEngine(v.Engine) {
		return fmt.Errorf(validationErrorHeader, fmt.Errorf("unknown engine %q", v.Engine))
	}
	return nil
}

// KnownEngine reports whether name selects one of the imaging engines.
func KnownEngine(name string) bool {
	switch strings.ToLower(name) {
	case "opencv", "synthetic", "mock":
		return true
	}
	return false
}

type Resolver interface {
	Resolve() (Values, error)
}
