package session

import (
	"fmt"

	"github.com/tauraamui/panoexport/pkg/engine"
)

// FrameGeometry is derived once from the seed frame and holds for the
// whole run, whatever later frames look like.
type FrameGeometry struct {
	NativeWidth   int
	NativeHeight  int
	HighBitDepth  bool
	BytesPerPixel int
	Downsample    int
	TextureWidth  int
	TextureHeight int
}

func negotiateGeometry(seed engine.Image, highBitDepth bool, method engine.ColorMethod) FrameGeometry {
	g := FrameGeometry{
		NativeWidth:   seed.Cols,
		NativeHeight:  seed.Rows,
		HighBitDepth:  highBitDepth,
		BytesPerPixel: 4,
		Downsample:    method.Downsample(),
	}
	if highBitDepth {
		g.BytesPerPixel = 8
	}
	g.TextureWidth = g.NativeWidth / g.Downsample
	g.TextureHeight = g.NativeHeight / g.Downsample
	return g
}

// PixelFormat is the interleaved layout buffers are converted into.
func (g FrameGeometry) PixelFormat() engine.PixelFormat {
	if g.HighBitDepth {
		return engine.PixelFormatBGRU16
	}
	return engine.PixelFormatBGRU
}

// BufferSize is the byte length of a single camera buffer.
func (g FrameGeometry) BufferSize() int {
	return g.TextureWidth * g.TextureHeight * g.BytesPerPixel
}

func (g FrameGeometry) String() string {
	return fmt.Sprintf(
		"native %dx%d, texture %dx%d, %d bytes per pixel",
		g.NativeWidth, g.NativeHeight, g.TextureWidth, g.TextureHeight, g.BytesPerPixel,
	)
}
