package session

import (
	"testing"

	"github.com/matryer/is"
	"github.com/tauraamui/panoexport/pkg/engine"
)

func TestNegotiateGeometryDownsampleFactors(t *testing.T) {
	tests := []struct {
		method engine.ColorMethod
		w, h   int
	}{
		{method: engine.ColorMethodHQLinear, w: 1616, h: 1232},
		{method: engine.ColorMethodEdgeSensing, w: 1616, h: 1232},
		{method: engine.ColorMethodNearestNeighborFast, w: 1616, h: 1232},
		{method: engine.ColorMethodMono, w: 1616, h: 1232},
		{method: engine.ColorMethodDownsample4, w: 808, h: 616},
		{method: engine.ColorMethodDownsample16, w: 404, h: 308},
	}

	seed := engine.NewImage(0, 1616, 1232, engine.DataFormatRaw8, nil)
	for _, tt := range tests {
		t.Run(tt.method.String(), func(t *testing.T) {
			is := is.New(t)
			g := negotiateGeometry(seed, false, tt.method)
			is.Equal(g.NativeWidth, 1616)
			is.Equal(g.NativeHeight, 1232)
			is.Equal(g.TextureWidth, tt.w)
			is.Equal(g.TextureHeight, tt.h)
		})
	}
}

func TestNegotiateGeometryFloorsOddDimensions(t *testing.T) {
	is := is.New(t)
	g := negotiateGeometry(engine.NewImage(0, 1023, 767, engine.DataFormatRaw8, nil), false, engine.ColorMethodDownsample16)
	is.Equal(g.TextureWidth, 255)
	is.Equal(g.TextureHeight, 191)
}

func TestNegotiateGeometryStrideFollowsBitDepth(t *testing.T) {
	is := is.New(t)
	seed := engine.NewImage(0, 32, 16, engine.DataFormatRaw8, nil)

	std := negotiateGeometry(seed, false, engine.ColorMethodHQLinear)
	is.Equal(std.BytesPerPixel, 4)
	is.Equal(std.PixelFormat(), engine.PixelFormatBGRU)
	is.Equal(std.BufferSize(), 32*16*4)

	high := negotiateGeometry(seed, true, engine.ColorMethodHQLinear)
	is.Equal(high.BytesPerPixel, 8)
	is.Equal(high.PixelFormat(), engine.PixelFormatBGRU16)
	is.Equal(high.BufferSize(), 32*16*8)
}

func TestHighBitDepthDataFormats(t *testing.T) {
	high := map[engine.DataFormat]bool{
		engine.DataFormatRaw12:                             true,
		engine.DataFormatHalfHeightRaw12:                   true,
		engine.DataFormatColorSepJPEG12:                    true,
		engine.DataFormatColorSepHalfHeightJPEG12:          true,
		engine.DataFormatColorSepJPEG12Processed:           true,
		engine.DataFormatColorSepHalfHeightJPEG12Processed: true,
		engine.DataFormatRaw16:                             true,
		engine.DataFormatHalfHeightRaw16:                   true,
	}
	for f := engine.DataFormatRaw8; f <= engine.DataFormatColorSepHalfHeightJPEG12Processed; f++ {
		t.Run(f.String(), func(t *testing.T) {
			is := is.New(t)
			g := negotiateGeometry(engine.NewImage(0, 8, 8, f, nil), f.IsHighBitDepth(), engine.ColorMethodHQLinear)
			if high[f] {
				is.Equal(g.BytesPerPixel, 8)
				return
			}
			is.Equal(g.BytesPerPixel, 4)
		})
	}
}

func TestAllocateBuffersSizesEveryCamera(t *testing.T) {
	is := is.New(t)
	g := negotiateGeometry(engine.NewImage(0, 40, 20, engine.DataFormatRaw8, nil), true, engine.ColorMethodDownsample4)

	set, err := allocateBuffers(g)
	is.NoErr(err)
	for cam := 0; cam < engine.NumCameras; cam++ {
		is.Equal(len(set[cam]), 20*10*8)
	}

	set.release()
	is.Equal(set, BufferSet{})
}

func TestAllocateBuffersRejectsEmptyTexture(t *testing.T) {
	is := is.New(t)
	g := negotiateGeometry(engine.NewImage(0, 3, 3, engine.DataFormatRaw8, nil), false, engine.ColorMethodDownsample16)

	_, err := allocateBuffers(g)
	is.True(err != nil)
}
