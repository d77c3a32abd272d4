package engine

import (
	"strings"

	"github.com/spf13/afero"
)

// Stream reads recorded frames from a stream file.
type Stream interface {
	Open(path string) error
	// ExtractConfig writes the calibration embedded in the stream to dst.
	ExtractConfig(dst string) error
	Header() (StreamHeader, error)
	ReadImage() (Image, error)
	GoTo(frame uint) error
	NumImages() (uint, error)
	Close() error
}

// RenderOptions are the optional rendering toggles passed through from the
// command line.
type RenderOptions struct {
	SoftwareRendering bool
	AntiAliasing      bool
	FalloffEnabled    bool
	FalloffValue      float32
	Stabilization     bool
}

// Context is the processing state of the imaging engine: calibration,
// debayering, stitching geometry and encoding.
type Context interface {
	LoadConfig(path string) error
	SetColorProcessingMethod(ColorMethod) error
	SetBlendingWidth(int) error
	InitializeAlphaMasks(width, height int) error
	SetAlphaMasking(bool) error
	SetRenderOptions(RenderOptions) error
	ConfigureOutputImages(OutputType) error
	SetOffScreenImageSize(t OutputType, width, height int) error
	Set3DMapRotation(rx, ry, rz float64) error
	ConvertImage(img Image, dst [NumCameras][]byte, pf PixelFormat) error
	UpdateTextures(src [NumCameras][]byte, pf PixelFormat) error
	RenderOffScreenImage(t OutputType, pf PixelFormat) (ProcessedImage, error)
	SaveImage(img ProcessedImage, path string, ff FileFormat) error
	Close() error
}

type Backend interface {
	Name() string
	NewContext() (Context, error)
	NewStream() (Stream, error)
}

func Default() Backend {
	return OpenCV()
}

func OpenCV() Backend {
	return &openCVBackend{}
}

func Synthetic() Backend {
	return NewSynthetic(afero.NewOsFs())
}

func Resolve(t string) Backend {
	switch strings.ToLower(t) {
	case "synthetic", "mock":
		return Synthetic()
	default:
		return Default()
	}
}
