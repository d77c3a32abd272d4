package engine

import (
	"encoding/binary"
	"image"
	"image/color"
	"math"

	"github.com/tauraamui/xerror"
)

// widen8To16 expands 8-bit samples into little-endian 16-bit samples,
// scaling so 0xFF maps onto 0xFFFF.
func widen8To16(dst, src []byte) error {
	if len(dst) != len(src)*2 {
		return xerror.Errorf("cannot widen %d samples into buffer of %d bytes", len(src), len(dst))
	}
	for i, s := range src {
		binary.LittleEndian.PutUint16(dst[i*2:], uint16(s)*257)
	}
	return nil
}

// narrow16To8 keeps the most significant byte of each little-endian sample.
func narrow16To8(src []byte) []byte {
	dst := make([]byte, len(src)/2)
	for i := range dst {
		dst[i] = src[i*2+1]
	}
	return dst
}

// toBGRU8 returns the pixel data as 8-bit BGRU regardless of input depth.
func toBGRU8(data []byte, pf PixelFormat) []byte {
	if pf == PixelFormatBGRU16 {
		return narrow16To8(data)
	}
	return data
}

func checkBufferSize(buf []byte, w, h int, pf PixelFormat) error {
	if want := w * h * pf.BytesPerPixel(); len(buf) != want {
		return xerror.Errorf(
			"buffer holds %d bytes, %dx%d %s needs %d", len(buf), w, h, pf, want,
		)
	}
	return nil
}

// processedToImage converts interleaved engine pixels into a Go image,
// keeping 16-bit depth where the source has it.
func processedToImage(p ProcessedImage) (image.Image, error) {
	if err := checkBufferSize(p.Data, p.Cols, p.Rows, p.PixelFormat); err != nil {
		return nil, err
	}
	rect := image.Rect(0, 0, p.Cols, p.Rows)
	bpp := p.PixelFormat.BytesPerPixel()

	switch p.PixelFormat {
	case PixelFormatBGRU16:
		img := image.NewRGBA64(rect)
		for i, px := 0, 0; i < len(p.Data); i, px = i+bpp, px+1 {
			img.SetRGBA64(px%p.Cols, px/p.Cols, color.RGBA64{
				B: binary.LittleEndian.Uint16(p.Data[i:]),
				G: binary.LittleEndian.Uint16(p.Data[i+2:]),
				R: binary.LittleEndian.Uint16(p.Data[i+4:]),
				A: 0xFFFF,
			})
		}
		return img, nil
	default:
		img := image.NewRGBA(rect)
		for i, px := 0, 0; i < len(p.Data); i, px = i+bpp, px+1 {
			img.SetRGBA(px%p.Cols, px/p.Cols, color.RGBA{
				B: p.Data[i], G: p.Data[i+1], R: p.Data[i+2], A: 0xFF,
			})
		}
		return img, nil
	}
}

// bgruFromRGBA writes an RGBA canvas into a BGRU buffer.
func bgruFromRGBA(dst []byte, img *image.RGBA) {
	b := img.Bounds()
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.RGBAAt(x, y)
			dst[i], dst[i+1], dst[i+2], dst[i+3] = c.B, c.G, c.R, 0xFF
			i += 4
		}
	}
}

func rgbaFromBGRU(src []byte, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i, px := 0, 0; px < w*h; i, px = i+4, px+1 {
		img.SetRGBA(px%w, px/w, color.RGBA{B: src[i], G: src[i+1], R: src[i+2], A: 0xFF})
	}
	return img
}

func bgrFromRGBA(img *image.RGBA) []byte {
	b := img.Bounds()
	out := make([]byte, 0, b.Dx()*b.Dy()*3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.RGBAAt(x, y)
			out = append(out, c.B, c.G, c.R)
		}
	}
	return out
}

// yawShift is the horizontal pixel offset an equirectangular image of
// the given width moves by when rotated ry radians about the vertical axis.
func yawShift(ry float64, width int) int {
	if width == 0 {
		return 0
	}
	shift := int(ry / (2 * math.Pi) * float64(width))
	shift %= width
	if shift < 0 {
		shift += width
	}
	return shift
}

// pitchShift is the vertical offset for a rotation of rx radians.
func pitchShift(rx float64, height int) int {
	return int(rx / math.Pi * float64(height))
}

// ringTileWidths splits width across the horizontal ring cameras, giving
// the remainder to the last tile.
func ringTileWidths(width, tiles int) []int {
	ws := make([]int, tiles)
	for i := range ws {
		ws[i] = width / tiles
	}
	ws[tiles-1] += width % tiles
	return ws
}
