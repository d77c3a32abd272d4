package configdef

import (
	"errors"
	"fmt"

	"github.com/tauraamui/panoexport/pkg/engine"
	"gopkg.in/dealancer/validate.v2"
)

const (
	DefaultOutput        = "panoImageOutput"
	DefaultWidth         = 2048
	DefaultHeight        = 1024
	DefaultBlendingWidth = 100
	DefaultFalloffValue  = 1.0
	DefaultEngine        = "opencv"
)

var (
	ErrArgument      = errors.New("argument error")
	ErrHelpRequested = errors.New("help requested")
)

// FrameRange selects the frames to export. All takes precedence over
// Start and End.
type FrameRange struct {
	Start, End uint
	All        bool
}

func (r FrameRange) String() string {
	if r.All {
		return "all"
	}
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// Rotation reorients the stitched panorama, both angles in degrees.
type Rotation struct {
	Front float64
	Down  float64
}

func (r Rotation) IsZero() bool { return r.Front == 0 && r.Down == 0 }

// Mode is decided once after argument resolution and is one of
// PanoramaMode or SixCameraMode.
type Mode interface {
	isMode()
	String() string
}

type PanoramaMode struct {
	Width    int
	Height   int
	Output   engine.OutputType
	Rotation Rotation
}

func (PanoramaMode) isMode() {}

func (m PanoramaMode) String() string {
	return fmt.Sprintf("Panoramic (%dx%d)", m.Width, m.Height)
}

type SixCameraMode struct{}

func (SixCameraMode) isMode() {}

func (SixCameraMode) String() string { return "6 Processed Camera Images" }

// CommandConfig is the fully resolved command. It is passed by value and
// never modified after resolution.
type CommandConfig struct {
	Input         string `validate:"empty=false"`
	Output        string `validate:"empty=false"`
	Range         FrameRange
	Format        engine.FileFormat
	FormatTag     string
	ColorMethod   engine.ColorMethod
	ColorTag      string
	RenderTag     string
	BlendingWidth int `validate:"gte=0"`
	Render        engine.RenderOptions
	Mode          Mode
	Engine        string
	JournalPath   string
	MetricsPath   string
}

func (c CommandConfig) IsSixCamera() bool {
	_, ok := c.Mode.(SixCameraMode)
	return ok
}

func (c CommandConfig) RunValidate() error {
	if err := validate.Validate(&c); err != nil {
		return err
	}
	if c.Mode == nil {
		return errors.New("export mode has not been resolved")
	}
	return nil
}
