package engine

import (
	"image"

	"github.com/spf13/afero"
	"github.com/tauraamui/xerror"
	"gocv.io/x/gocv"
)

var fs = afero.NewOsFs()

const sidecarExt = ".toml"

// The OpenCV engine reads any container OpenCV can decode whose frames
// hold the camera images side by side, camera 0 leftmost. Stream
// metadata and calibration come from an optional `<stream>.toml` sidecar.
type openCVBackend struct{}

func (b *openCVBackend) Name() string { return "opencv" }

func (b *openCVBackend) NewContext() (Context, error) {
	return &openCVContext{contextState: newContextState()}, nil
}

func (b *openCVBackend) NewStream() (Stream, error) {
	return &openCVStream{}, nil
}

var openVideoCapture = func(path string) (*gocv.VideoCapture, error) {
	return gocv.OpenVideoCapture(path)
}

var readFromVideoCapture = func(vc *gocv.VideoCapture, mat *gocv.Mat) bool {
	if vc.IsOpened() {
		return vc.Read(mat)
	}
	return false
}

var frameCount = func(vc *gocv.VideoCapture) float64 {
	return vc.Get(gocv.VideoCaptureFrameCount)
}

var writeImage = func(path string, mat gocv.Mat) bool {
	return gocv.IMWrite(path, mat)
}

type openCVStream struct {
	vc         *gocv.VideoCapture
	frame      gocv.Mat
	hasFrame   bool
	desc       streamDescriptor
	hasSidecar bool
	pos        uint
}

func (s *openCVStream) Open(path string) error {
	vc, err := openVideoCapture(path)
	if err != nil {
		return xerror.Errorf("unable to open video stream %s: %w", path, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return xerror.Errorf("unable to open video stream %s", path)
	}
	s.vc = vc
	s.frame = gocv.NewMat()
	s.hasFrame = true

	desc, err := readDescriptor(fs, path+sidecarExt)
	if err == nil {
		s.desc = desc
		s.hasSidecar = true
	} else {
		s.desc = streamDescriptor{Version: 7}
	}
	return nil
}

func (s *openCVStream) ExtractConfig(dst string) error {
	if !s.hasSidecar {
		return xerror.New("stream has no configuration sidecar")
	}
	return writeCalibration(fs, dst, s.desc.Calibration)
}

func (s *openCVStream) Header() (StreamHeader, error) {
	if s.vc == nil {
		return StreamHeader{}, xerror.New("stream is not open")
	}
	h, err := s.desc.header()
	if err != nil {
		return h, err
	}
	if h.EffectiveFrameRate() == 0 {
		fps := s.vc.Get(gocv.VideoCaptureFPS)
		h.FrameRate = float32(fps)
		h.LegacyFrameRate = uint32(fps)
	}
	return h, nil
}

func (s *openCVStream) ReadImage() (Image, error) {
	if s.vc == nil {
		return Image{}, xerror.New("stream is not open")
	}
	idx := s.pos
	s.pos++
	if ok := readFromVideoCapture(s.vc, &s.frame); !ok || s.frame.Empty() {
		return Image{}, xerror.Errorf("unable to read frame %d from video stream", idx)
	}
	if s.frame.Cols()%NumCameras != 0 {
		return Image{}, xerror.Errorf(
			"frame %d width %d does not split into %d cameras", idx, s.frame.Cols(), NumCameras,
		)
	}

	f, err := s.desc.header()
	if err != nil {
		return Image{}, err
	}
	return Image{
		Index: idx, Cols: s.frame.Cols() / NumCameras, Rows: s.frame.Rows(),
		DataFormat: f.DataFormat, data: &s.frame,
	}, nil
}

func (s *openCVStream) GoTo(frame uint) error {
	if s.vc == nil {
		return xerror.New("stream is not open")
	}
	total, err := s.NumImages()
	if err != nil {
		return xerror.Errorf("unable to seek to frame %d: %w", frame, err)
	}
	if frame > 0 && frame >= total {
		return xerror.Errorf("frame %d is beyond the end of the stream (%d frames)", frame, total)
	}
	s.vc.Set(gocv.VideoCapturePosFrames, float64(frame))
	s.pos = frame
	return nil
}

func (s *openCVStream) NumImages() (uint, error) {
	if s.vc == nil {
		return 0, xerror.New("stream is not open")
	}
	n := frameCount(s.vc)
	if n < 0 {
		return 0, xerror.New("video stream does not report a frame count")
	}
	return uint(n), nil
}

func (s *openCVStream) Close() error {
	if s.hasFrame {
		s.frame.Close()
		s.hasFrame = false
	}
	if s.vc == nil {
		return nil
	}
	err := s.vc.Close()
	s.vc = nil
	return err
}

type openCVContext struct {
	contextState
	texSize  image.Point
	textures [NumCameras]gocv.Mat
	hasTex   bool
}

func (c *openCVContext) LoadConfig(path string) error {
	return readCalibration(fs, path)
}

func (c *openCVContext) ConvertImage(img Image, dst [NumCameras][]byte, pf PixelFormat) error {
	mat, ok := img.DataRef().(*gocv.Mat)
	if !ok {
		return xerror.New("must pass OpenCV frame to OpenCV conversion")
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
		region := mat.Region(image.Rect(cam*img.Cols, 0, (cam+1)*img.Cols, img.Rows))
		bgru, err := c.debayer(region, w, h)
		region.Close()
		if err != nil {
			return xerror.Errorf("camera %d: %w", cam, err)
		}
		data := bgru.ToBytes()
		bgru.Close()

		if pf == PixelFormatBGRU {
			copy(dst[cam], data)
			continue
		}
		if err := widen8To16(dst[cam], data); err != nil {
			return err
		}
	}
	return nil
}

// debayer turns one camera region into a w x h 8-bit BGRA matrix using
// the configured color processing method.
func (c *openCVContext) debayer(src gocv.Mat, w, h int) (gocv.Mat, error) {
	scaled := src
	if src.Cols() != w || src.Rows() != h {
		scaled = gocv.NewMat()
		defer scaled.Close()
		interp := gocv.InterpolationArea
		if c.method == ColorMethodNearestNeighborFast {
			interp = gocv.InterpolationNearestNeighbor
		}
		gocv.Resize(src, &scaled, image.Pt(w, h), 0, 0, interp)
	}

	out := gocv.NewMat()
	switch {
	case scaled.Channels() == 1:
		gocv.CvtColor(scaled, &out, gocv.ColorGrayToBGRA)
	case c.method == ColorMethodMono:
		gray := gocv.NewMat()
		gocv.CvtColor(scaled, &gray, gocv.ColorBGRToGray)
		gocv.CvtColor(gray, &out, gocv.ColorGrayToBGRA)
		gray.Close()
	case scaled.Channels() == 3:
		gocv.CvtColor(scaled, &out, gocv.ColorBGRToBGRA)
	case scaled.Channels() == 4:
		scaled.CopyTo(&out)
	default:
		out.Close()
		return gocv.Mat{}, xerror.Errorf("unsupported channel count %d", scaled.Channels())
	}
	if out.Empty() {
		out.Close()
		return gocv.Mat{}, xerror.New("color conversion produced an empty image")
	}
	return out, nil
}

func (c *openCVContext) UpdateTextures(src [NumCameras][]byte, pf PixelFormat) error {
	if c.texSize.Eq(image.Point{}) {
		return xerror.New("no image has been converted yet")
	}
	w, h := c.texSize.X, c.texSize.Y
	for cam := 0; cam < NumCameras; cam++ {
		if err := checkBufferSize(src[cam], w, h, pf); err != nil {
			return xerror.Errorf("camera %d: %w", cam, err)
		}
	}

	c.releaseTextures()
	for cam := 0; cam < NumCameras; cam++ {
		data := append([]byte(nil), toBGRU8(src[cam], pf)...)
		mat, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC4, data)
		if err != nil {
			for i := 0; i < cam; i++ {
				c.textures[i].Close()
			}
			return xerror.Errorf("unable to upload camera %d texture: %w", cam, err)
		}
		c.textures[cam] = mat
	}
	c.hasTex = true
	return nil
}

func (c *openCVContext) RenderOffScreenImage(t OutputType, pf PixelFormat) (ProcessedImage, error) {
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

	interp := gocv.InterpolationLinear
	if c.opts.SoftwareRendering && !c.opts.AntiAliasing {
		interp = gocv.InterpolationNearestNeighbor
	}

	scale := func(cam, w, h int) (*image.RGBA, error) {
		tile := gocv.NewMat()
		defer tile.Close()
		gocv.Resize(c.textures[cam], &tile, image.Pt(w, h), 0, 0, interp)
		if tile.Empty() {
			return nil, xerror.Errorf("unable to scale camera %d texture", cam)
		}
		return rgbaFromBGRU(tile.ToBytes(), w, h), nil
	}

	var composed *image.RGBA
	if cam := t.RectifiedCamera(); cam >= 0 {
		composed, err = scale(cam, size.X, size.Y)
		if err == nil {
			c.applyFalloff(composed)
		}
	} else {
		composed, err = c.composeRing(size, scale)
	}
	if err != nil {
		return ProcessedImage{}, err
	}

	surface, err := matFromRGBA(composed)
	if err != nil {
		return ProcessedImage{}, err
	}
	defer surface.Close()

	rotated := c.rotate(surface)
	defer rotated.Close()

	bgr := gocv.NewMat()
	defer bgr.Close()
	gocv.CvtColor(rotated, &bgr, gocv.ColorBGRAToBGR)
	if bgr.Empty() {
		return ProcessedImage{}, xerror.New("off-screen rendering produced an empty image")
	}
	return ProcessedImage{Data: bgr.ToBytes(), Cols: size.X, Rows: size.Y, PixelFormat: PixelFormatBGR}, nil
}

func matFromRGBA(img *image.RGBA) (gocv.Mat, error) {
	b := img.Bounds()
	buf := make([]byte, b.Dx()*b.Dy()*4)
	bgruFromRGBA(buf, img)
	mat, err := gocv.NewMatFromBytes(b.Dy(), b.Dx(), gocv.MatTypeCV8UC4, buf)
	if err != nil {
		return gocv.Mat{}, xerror.Errorf("unable to upload composed image: %w", err)
	}
	return mat, nil
}

func (c *openCVContext) rotate(src gocv.Mat) gocv.Mat {
	w, h := src.Cols(), src.Rows()
	out := src.Clone()

	if dx := yawShift(c.rotation[1], w); dx > 0 {
		left := src.Region(image.Rect(dx, 0, w, h))
		right := src.Region(image.Rect(0, 0, dx, h))
		out.Close()
		out = gocv.NewMat()
		gocv.Hconcat(left, right, &out)
		left.Close()
		right.Close()
	}

	if dy := pitchShift(c.rotation[0], h); dy != 0 {
		m := gocv.NewMatWithSize(2, 3, gocv.MatTypeCV64F)
		m.SetDoubleAt(0, 0, 1)
		m.SetDoubleAt(0, 1, 0)
		m.SetDoubleAt(0, 2, 0)
		m.SetDoubleAt(1, 0, 0)
		m.SetDoubleAt(1, 1, 1)
		m.SetDoubleAt(1, 2, float64(dy))
		shifted := gocv.NewMat()
		gocv.WarpAffine(out, &shifted, m, image.Pt(w, h))
		m.Close()
		out.Close()
		out = shifted
	}
	return out
}

func (c *openCVContext) SaveImage(p ProcessedImage, path string, ff FileFormat) error {
	if err := checkBufferSize(p.Data, p.Cols, p.Rows, p.PixelFormat); err != nil {
		return err
	}

	data, mt := p.Data, gocv.MatTypeCV8UC3
	switch p.PixelFormat {
	case PixelFormatBGRU:
		mt = gocv.MatTypeCV8UC4
	case PixelFormatBGRU16:
		if ff == FileFormatPNG || ff == FileFormatTIFF {
			mt = gocv.MatTypeCV16UC4
		} else {
			data, mt = narrow16To8(p.Data), gocv.MatTypeCV8UC4
		}
	}

	src, err := gocv.NewMatFromBytes(p.Rows, p.Cols, mt, append([]byte(nil), data...))
	if err != nil {
		return xerror.Errorf("unable to wrap image for %s: %w", path, err)
	}
	defer src.Close()

	out := src
	if src.Channels() == 4 {
		bgr := gocv.NewMat()
		defer bgr.Close()
		gocv.CvtColor(src, &bgr, gocv.ColorBGRAToBGR)
		out = bgr
	}

	if !writeImage(path, out) {
		return xerror.Errorf("unable to write %s image to %s", ff, path)
	}
	return nil
}

func (c *openCVContext) releaseTextures() {
	if !c.hasTex {
		return
	}
	for cam := range c.textures {
		c.textures[cam].Close()
	}
	c.hasTex = false
}

func (c *openCVContext) Close() error {
	c.releaseTextures()
	return nil
}
