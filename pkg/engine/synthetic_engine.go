package engine

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/spf13/afero"
	"github.com/tauraamui/xerror"
	"golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/tiff"
)

// NewSynthetic returns an engine which needs no camera hardware or
// vendor runtime. Streams are TOML descriptors and every frame is a
// generated canvas labelled with its camera and frame index.
func NewSynthetic(fs afero.Fs) Backend {
	return &syntheticBackend{fs: fs}
}

type syntheticBackend struct {
	fs afero.Fs
}

func (b *syntheticBackend) Name() string { return "synthetic" }

func (b *syntheticBackend) NewContext() (Context, error) {
	return &syntheticContext{fs: b.fs, contextState: newContextState()}, nil
}

func (b *syntheticBackend) NewStream() (Stream, error) {
	return &syntheticStream{fs: b.fs}, nil
}

type syntheticStream struct {
	fs     afero.Fs
	desc   streamDescriptor
	isOpen bool
	pos    uint
}

func (s *syntheticStream) Open(path string) error {
	desc, err := readDescriptor(s.fs, path)
	if err != nil {
		return xerror.Errorf("unable to open stream %s: %w", path, err)
	}
	if desc.Width <= 0 || desc.Height <= 0 {
		return xerror.Errorf("stream %s has invalid image size %dx%d", path, desc.Width, desc.Height)
	}
	s.desc = desc
	s.isOpen = true
	s.pos = 0
	return nil
}

func (s *syntheticStream) ExtractConfig(dst string) error {
	if !s.isOpen {
		return xerror.New("stream is not open")
	}
	return writeCalibration(s.fs, dst, s.desc.Calibration)
}

func (s *syntheticStream) Header() (StreamHeader, error) {
	if !s.isOpen {
		return StreamHeader{}, xerror.New("stream is not open")
	}
	return s.desc.header()
}

func (s *syntheticStream) ReadImage() (Image, error) {
	if !s.isOpen {
		return Image{}, xerror.New("stream is not open")
	}
	if s.pos >= s.desc.Frames {
		return Image{}, xerror.New("end of stream")
	}
	idx := s.pos
	s.pos++
	if s.desc.failsAt(idx) {
		return Image{}, xerror.Errorf("frame %d is corrupt", idx)
	}

	f, err := ParseDataFormat(s.desc.DataFormat)
	if err != nil {
		f = DataFormatRaw8
	}
	return Image{
		Index: idx, Cols: s.desc.Width, Rows: s.desc.Height,
		DataFormat: f, data: idx,
	}, nil
}

func (s *syntheticStream) GoTo(frame uint) error {
	if !s.isOpen {
		return xerror.New("stream is not open")
	}
	if frame > 0 && frame >= s.desc.Frames {
		return xerror.Errorf("frame %d is beyond the end of the stream (%d frames)", frame, s.desc.Frames)
	}
	s.pos = frame
	return nil
}

func (s *syntheticStream) NumImages() (uint, error) {
	if !s.isOpen {
		return 0, xerror.New("stream is not open")
	}
	return s.desc.Frames, nil
}

func (s *syntheticStream) Close() error {
	s.isOpen = false
	return nil
}

type syntheticContext struct {
	contextState
	fs       afero.Fs
	texSize  image.Point
	textures [NumCameras]*image.RGBA
	hasTex   bool
}

func (c *syntheticContext) LoadConfig(path string) error {
	return readCalibration(c.fs, path)
}

func (c *syntheticContext) ConvertImage(img Image, dst [NumCameras][]byte, pf PixelFormat) error {
	frame, ok := img.DataRef().(uint)
	if !ok {
		return xerror.New("must pass synthetic frame to synthetic conversion")
	}
	if pf != PixelFormatBGRU && pf != PixelFormatBGRU16 {
		return xerror.Errorf("cannot convert into %s buffers", pf)
	}

	w, h := textureSize(img, c.method)
	for cam := 0; cam < NumCameras; cam++ {
		if err := checkBufferSize(dst[cam], w, h, pf); err != nil {
			return xerror.Errorf("camera %d: %w", cam, err)
		}
	}
	c.texSize = image.Pt(w, h)

	for cam := 0; cam < NumCameras; cam++ {
		canvas, err := renderCameraCanvas(cam, frame, w, h, c.method == ColorMethodMono)
		if err != nil {
			return err
		}
		if pf == PixelFormatBGRU {
			bgruFromRGBA(dst[cam], canvas)
			continue
		}
		tmp := make([]byte, w*h*4)
		bgruFromRGBA(tmp, canvas)
		if err := widen8To16(dst[cam], tmp); err != nil {
			return err
		}
	}
	return nil
}

func (c *syntheticContext) UpdateTextures(src [NumCameras][]byte, pf PixelFormat) error {
	if c.texSize.Eq(image.Point{}) {
		return xerror.New("no image has been converted yet")
	}
	w, h := c.texSize.X, c.texSize.Y
	for cam := 0; cam < NumCameras; cam++ {
		if err := checkBufferSize(src[cam], w, h, pf); err != nil {
			return xerror.Errorf("camera %d: %w", cam, err)
		}
		c.textures[cam] = rgbaFromBGRU(toBGRU8(src[cam], pf), w, h)
	}
	c.hasTex = true
	return nil
}

func (c *syntheticContext) RenderOffScreenImage(t OutputType, pf PixelFormat) (ProcessedImage, error) {
	if pf != PixelFormatBGR {
		return ProcessedImage{}, xerror.Errorf("off-screen rendering only supports BGR, got %s", pf)
	}
	size, err := c.outputSize(t)
	if err != nil {
		return ProcessedImage{}, err
	}
	if !c.hasTex {
		return ProcessedImage{}, xerror.New("no textures have been uploaded")
	}

	scaler := xdraw.ApproxBiLinear
	if c.opts.SoftwareRendering && !c.opts.AntiAliasing {
		scaler = xdraw.NearestNeighbor
	}
	scale := func(cam, w, h int) (*image.RGBA, error) {
		tile := image.NewRGBA(image.Rect(0, 0, w, h))
		scaler.Scale(tile, tile.Bounds(), c.textures[cam], c.textures[cam].Bounds(), draw.Src, nil)
		return tile, nil
	}

	var out *image.RGBA
	if cam := t.RectifiedCamera(); cam >= 0 {
		out, _ = scale(cam, size.X, size.Y)
		c.applyFalloff(out)
	} else {
		out, err = c.composeRing(size, scale)
		if err != nil {
			return ProcessedImage{}, err
		}
	}

	out = rotateEquirect(out, c.rotation[0], c.rotation[1])
	return ProcessedImage{Data: bgrFromRGBA(out), Cols: size.X, Rows: size.Y, PixelFormat: PixelFormatBGR}, nil
}

func (c *syntheticContext) SaveImage(p ProcessedImage, path string, ff FileFormat) error {
	img, err := processedToImage(p)
	if err != nil {
		return err
	}
	f, err := c.fs.Create(path)
	if err != nil {
		return xerror.Errorf("unable to create image file %s: %w", path, err)
	}
	if err := encodeImage(f, img, ff); err != nil {
		f.Close()
		return xerror.Errorf("unable to encode %s: %w", path, err)
	}
	return f.Close()
}

func (c *syntheticContext) Close() error {
	c.textures = [NumCameras]*image.RGBA{}
	c.hasTex = false
	return nil
}

func encodeImage(w io.Writer, img image.Image, ff FileFormat) error {
	switch ff {
	case FileFormatPNG:
		return png.Encode(w, img)
	case FileFormatBMP:
		return bmp.Encode(w, img)
	case FileFormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
	}
}

// rotateEquirect shifts the image circularly for yaw and clamps for pitch.
func rotateEquirect(src *image.RGBA, rx, ry float64) *image.RGBA {
	b := src.Bounds()
	dx, dy := yawShift(ry, b.Dx()), pitchShift(rx, b.Dy())
	if dx == 0 && dy == 0 {
		return src
	}
	dst := image.NewRGBA(b)
	for y := 0; y < b.Dy(); y++ {
		sy := y - dy
		if sy < 0 {
			sy = 0
		}
		if sy >= b.Dy() {
			sy = b.Dy() - 1
		}
		for x := 0; x < b.Dx(); x++ {
			sx := (x + dx) % b.Dx()
			dst.SetRGBA(x, y, src.RGBAAt(sx, sy))
		}
	}
	return dst
}

var cameraColors = [NumCameras]color.RGBA{
	{R: 200, G: 60, B: 60, A: 255},
	{R: 60, G: 200, B: 60, A: 255},
	{R: 60, G: 60, B: 200, A: 255},
	{R: 200, G: 200, B: 60, A: 255},
	{R: 60, G: 200, B: 200, A: 255},
	{R: 200, G: 60, B: 200, A: 255},
}

var (
	labelFontOnce sync.Once
	labelFont     *truetype.Font
	labelFontErr  error
)

func renderCameraCanvas(cam int, frame uint, w, h int, mono bool) (*image.RGBA, error) {
	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	bg := cameraColors[cam]
	if mono {
		y := uint8((299*uint32(bg.R) + 587*uint32(bg.G) + 114*uint32(bg.B)) / 1000)
		bg = color.RGBA{R: y, G: y, B: y, A: 255}
	}
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)

	if h < 8 {
		return canvas, nil
	}
	if err := drawLabel(canvas, fmt.Sprintf("CAM %d F %06d", cam, frame)); err != nil {
		return nil, xerror.Errorf("unable to draw label onto camera %d canvas: %w", cam, err)
	}
	return canvas, nil
}

func drawLabel(canvas *image.RGBA, text string) error {
	labelFontOnce.Do(func() {
		labelFont, labelFontErr = freetype.ParseFont(goregular.TTF)
	})
	if labelFontErr != nil {
		return labelFontErr
	}

	size := float64(canvas.Bounds().Dy()) / 6
	drawer := &font.Drawer{
		Dst: canvas,
		Src: image.White,
		Face: truetype.NewFace(labelFont, &truetype.Options{
			Size:    size,
			Hinting: font.HintingFull,
		}),
	}
	drawer.Dot = fixed.Point26_6{
		X: fixed.I(2),
		Y: fixed.I(int(size) + 2),
	}
	drawer.DrawString(text)
	return nil
}
