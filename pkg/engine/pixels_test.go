package engine

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/matryer/is"
)

func TestWidenThenNarrowKeepsSamples(t *testing.T) {
	is := is.New(t)
	src := []byte{0x00, 0x01, 0x7F, 0xFF}
	wide := make([]byte, len(src)*2)

	is.NoErr(widen8To16(wide, src))
	is.Equal(wide[6:], []byte{0xFF, 0xFF})
	is.Equal(narrow16To8(wide), src)
}

func TestWidenRejectsWrongBuffer(t *testing.T) {
	is := is.New(t)
	err := widen8To16(make([]byte, 3), []byte{1, 2})
	is.Equal(err.Error(), "cannot widen 2 samples into buffer of 3 bytes")
}

func TestCheckBufferSize(t *testing.T) {
	is := is.New(t)
	is.NoErr(checkBufferSize(make([]byte, 4*2*3), 4, 2, PixelFormatBGR))
	is.Equal(
		checkBufferSize(make([]byte, 10), 4, 2, PixelFormatBGRU16).Error(),
		"buffer holds 10 bytes, 4x2 BGRU16 needs 64",
	)
}

func TestProcessedToImageSwapsChannelOrder(t *testing.T) {
	is := is.New(t)
	img, err := processedToImage(ProcessedImage{
		Data: []byte{10, 20, 30, 40, 50, 60}, Cols: 2, Rows: 1, PixelFormat: PixelFormatBGR,
	})
	is.NoErr(err)

	rgba, ok := img.(*image.RGBA)
	is.True(ok)
	is.Equal(rgba.RGBAAt(0, 0), color.RGBA{R: 30, G: 20, B: 10, A: 0xFF})
	is.Equal(rgba.RGBAAt(1, 0), color.RGBA{R: 60, G: 50, B: 40, A: 0xFF})
}

func TestProcessedToImageKeepsSixteenBitDepth(t *testing.T) {
	is := is.New(t)
	data := []byte{0x00, 0x10, 0x00, 0x20, 0x00, 0x30, 0xFF, 0xFF}
	img, err := processedToImage(ProcessedImage{Data: data, Cols: 1, Rows: 1, PixelFormat: PixelFormatBGRU16})
	is.NoErr(err)

	wide, ok := img.(*image.RGBA64)
	is.True(ok)
	is.Equal(wide.RGBA64At(0, 0), color.RGBA64{R: 0x3000, G: 0x2000, B: 0x1000, A: 0xFFFF})
}

func TestBGRURoundTripThroughCanvas(t *testing.T) {
	is := is.New(t)
	canvas := image.NewRGBA(image.Rect(0, 0, 2, 2))
	canvas.SetRGBA(1, 1, color.RGBA{R: 1, G: 2, B: 3, A: 0xFF})

	buf := make([]byte, 2*2*4)
	bgruFromRGBA(buf, canvas)
	is.Equal(buf[12:], []byte{3, 2, 1, 0xFF})

	back := rgbaFromBGRU(buf, 2, 2)
	is.Equal(back.RGBAAt(1, 1), color.RGBA{R: 1, G: 2, B: 3, A: 0xFF})
	is.Equal(bgrFromRGBA(back)[9:], []byte{3, 2, 1})
}

func TestYawShiftWrapsAround(t *testing.T) {
	is := is.New(t)
	is.Equal(yawShift(0, 100), 0)
	is.Equal(yawShift(math.Pi, 100), 50)
	is.Equal(yawShift(-math.Pi/2, 100), 75)
	is.Equal(yawShift(4*math.Pi, 100), 0)
	is.Equal(yawShift(1, 0), 0)
}

func TestPitchShift(t *testing.T) {
	is := is.New(t)
	is.Equal(pitchShift(math.Pi/2, 100), 50)
	is.Equal(pitchShift(-math.Pi/4, 100), -25)
}

func TestRingTileWidthsGiveRemainderToLastTile(t *testing.T) {
	is := is.New(t)
	is.Equal(ringTileWidths(97, 5), []int{19, 19, 19, 19, 21})
}

func TestContextStateValidatesSettings(t *testing.T) {
	is := is.New(t)
	s := newContextState()

	is.True(s.SetColorProcessingMethod(ColorMethod(42)) != nil)
	is.NoErr(s.SetColorProcessingMethod(ColorMethodMono))
	is.True(s.SetBlendingWidth(-1) != nil)
	is.Equal(s.SetAlphaMasking(true).Error(), "alpha masks have not been initialized")
	is.NoErr(s.InitializeAlphaMasks(16, 8))
	is.NoErr(s.SetAlphaMasking(true))
	is.True(s.SetRenderOptions(RenderOptions{FalloffEnabled: true, FalloffValue: 1.5}) != nil)
	is.True(s.Set3DMapRotation(math.NaN(), 0, 0) != nil)
}

func TestContextStateOutputNeedsConfigureBeforeSize(t *testing.T) {
	is := is.New(t)
	s := newContextState()

	is.Equal(s.SetOffScreenImageSize(OutputDome, 64, 32).Error(), "output dome has not been configured")
	is.NoErr(s.ConfigureOutputImages(OutputDome))
	_, err := s.outputSize(OutputDome)
	is.Equal(err.Error(), "off-screen output dome is not configured")

	is.True(s.SetOffScreenImageSize(OutputDome, 5, 32) != nil)
	is.NoErr(s.SetOffScreenImageSize(OutputDome, 64, 32))
	size, err := s.outputSize(OutputDome)
	is.NoErr(err)
	is.Equal(size, image.Pt(64, 32))
}
