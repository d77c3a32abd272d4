package mocks

import (
	"fmt"
	"sync"

	"github.com/tauraamui/panoexport/pkg/engine"
	"github.com/tauraamui/xerror"
)

// EngineOptions control the shape of the fake stream and where the fake
// engine fails. Fail is keyed by the failing method name.
type EngineOptions struct {
	Frames     uint
	Cols, Rows int
	DataFormat engine.DataFormat
	Fail       map[string]error
	FailReadAt []uint
	// FailConvertAt, FailUpdateAt and FailRenderAt are frame indexes.
	FailConvertAt []uint
	FailUpdateAt  []uint
	FailRenderAt  []uint
	FailSave      func(path string) bool
	// ReshapeAt gives the listed frames different {cols, rows}.
	ReshapeAt map[uint][2]int
}

// Engine is an in memory engine.Backend which records what was asked
// of it.
type Engine struct {
	opts EngineOptions

	mu             sync.Mutex
	calls          []string
	saved          []string
	streamClosed   bool
	contextClosed  bool
	loadedConfig   string
	method         engine.ColorMethod
	blendingWidth  int
	maskSize       [2]int
	masking        bool
	renderOpts     engine.RenderOptions
	output         engine.OutputType
	offScreen      [2]int
	rotation       [3]float64
	rotationCalled bool
}

func NewEngine(opts EngineOptions) *Engine {
	if opts.Cols == 0 {
		opts.Cols = 16
	}
	if opts.Rows == 0 {
		opts.Rows = 8
	}
	return &Engine{opts: opts}
}

func (e *Engine) Name() string { return "mock" }

func (e *Engine) NewContext() (engine.Context, error) {
	if err := e.call("NewContext"); err != nil {
		return nil, err
	}
	return &mockContext{e: e}, nil
}

func (e *Engine) NewStream() (engine.Stream, error) {
	if err := e.call("NewStream"); err != nil {
		return nil, err
	}
	return &mockStream{e: e}, nil
}

// FailOn makes every later call of the named method fail with err.
func (e *Engine) FailOn(name string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.opts.Fail == nil {
		e.opts.Fail = map[string]error{}
	}
	e.opts.Fail[name] = err
}

// SetFrames changes the number of frames the stream reports.
func (e *Engine) SetFrames(n uint) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opts.Frames = n
}

func (e *Engine) call(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, name)
	return e.opts.Fail[name]
}

func (e *Engine) Calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string{}, e.calls...)
}

// Called reports how many times the named method was invoked.
func (e *Engine) Called(name string) int {
	n := 0
	for _, c := range e.Calls() {
		if c == name {
			n++
		}
	}
	return n
}

func (e *Engine) Saved() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string{}, e.saved...)
}

func (e *Engine) StreamClosed() bool  { return e.streamClosed }
func (e *Engine) ContextClosed() bool { return e.contextClosed }
func (e *Engine) LoadedConfig() string {
	return e.loadedConfig
}
func (e *Engine) BlendingWidth() int                  { return e.blendingWidth }
func (e *Engine) AlphaMasking() (bool, [2]int)        { return e.masking, e.maskSize }
func (e *Engine) RenderOptions() engine.RenderOptions { return e.renderOpts }
func (e *Engine) OffScreen() (engine.OutputType, [2]int) {
	return e.output, e.offScreen
}
func (e *Engine) Rotation() ([3]float64, bool) { return e.rotation, e.rotationCalled }
func (e *Engine) ColorMethod() engine.ColorMethod {
	return e.method
}

func contains(frames []uint, f uint) bool {
	for _, v := range frames {
		if v == f {
			return true
		}
	}
	return false
}

type mockStream struct {
	e      *Engine
	isOpen bool
	pos    uint
}

func (s *mockStream) Open(path string) error {
	if err := s.e.call("Open"); err != nil {
		return err
	}
	s.isOpen = true
	return nil
}

func (s *mockStream) ExtractConfig(dst string) error {
	return s.e.call("ExtractConfig")
}

func (s *mockStream) Header() (engine.StreamHeader, error) {
	if err := s.e.call("Header"); err != nil {
		return engine.StreamHeader{}, err
	}
	return engine.StreamHeader{
		SerialBase: 11, SerialHead: 12, FrameRate: 15,
		DataFormat: s.e.opts.DataFormat, Resolution: 2, StreamVersion: 7,
	}, nil
}

func (s *mockStream) ReadImage() (engine.Image, error) {
	if err := s.e.call("ReadImage"); err != nil {
		return engine.Image{}, err
	}
	if s.pos >= s.e.opts.Frames {
		return engine.Image{}, xerror.New("end of stream")
	}
	f := s.pos
	s.pos++
	if contains(s.e.opts.FailReadAt, f) {
		return engine.Image{}, xerror.Errorf("frame %d is unreadable", f)
	}
	cols, rows := s.e.opts.Cols, s.e.opts.Rows
	if dims, ok := s.e.opts.ReshapeAt[f]; ok {
		cols, rows = dims[0], dims[1]
	}
	return engine.NewImage(f, cols, rows, s.e.opts.DataFormat, f), nil
}

func (s *mockStream) GoTo(frame uint) error {
	if err := s.e.call("GoTo"); err != nil {
		return err
	}
	s.pos = frame
	return nil
}

func (s *mockStream) NumImages() (uint, error) {
	if err := s.e.call("NumImages"); err != nil {
		return 0, err
	}
	return s.e.opts.Frames, nil
}

func (s *mockStream) Close() error {
	s.e.streamClosed = true
	return s.e.call("StreamClose")
}

type mockContext struct {
	e         *Engine
	lastFrame uint
}

func (c *mockContext) LoadConfig(path string) error {
	if err := c.e.call("LoadConfig"); err != nil {
		return err
	}
	c.e.loadedConfig = path
	return nil
}

func (c *mockContext) SetColorProcessingMethod(m engine.ColorMethod) error {
	if err := c.e.call("SetColorProcessingMethod"); err != nil {
		return err
	}
	c.e.method = m
	return nil
}

func (c *mockContext) SetBlendingWidth(w int) error {
	if err := c.e.call("SetBlendingWidth"); err != nil {
		return err
	}
	c.e.blendingWidth = w
	return nil
}

func (c *mockContext) InitializeAlphaMasks(w, h int) error {
	if err := c.e.call("InitializeAlphaMasks"); err != nil {
		return err
	}
	c.e.maskSize = [2]int{w, h}
	return nil
}

func (c *mockContext) SetAlphaMasking(enabled bool) error {
	if err := c.e.call("SetAlphaMasking"); err != nil {
		return err
	}
	c.e.masking = enabled
	return nil
}

func (c *mockContext) SetRenderOptions(o engine.RenderOptions) error {
	if err := c.e.call("SetRenderOptions"); err != nil {
		return err
	}
	c.e.renderOpts = o
	return nil
}

func (c *mockContext) ConfigureOutputImages(t engine.OutputType) error {
	if err := c.e.call("ConfigureOutputImages"); err != nil {
		return err
	}
	c.e.output = t
	return nil
}

func (c *mockContext) SetOffScreenImageSize(t engine.OutputType, w, h int) error {
	if err := c.e.call("SetOffScreenImageSize"); err != nil {
		return err
	}
	c.e.offScreen = [2]int{w, h}
	return nil
}

func (c *mockContext) Set3DMapRotation(rx, ry, rz float64) error {
	if err := c.e.call("Set3DMapRotation"); err != nil {
		return err
	}
	c.e.rotation = [3]float64{rx, ry, rz}
	c.e.rotationCalled = true
	return nil
}

func (c *mockContext) ConvertImage(img engine.Image, dst [engine.NumCameras][]byte, pf engine.PixelFormat) error {
	if err := c.e.call("ConvertImage"); err != nil {
		return err
	}
	if contains(c.e.opts.FailConvertAt, img.Index) {
		return xerror.Errorf("unable to convert frame %d", img.Index)
	}
	ds := c.e.method.Downsample()
	want := (img.Cols / ds) * (img.Rows / ds) * pf.BytesPerPixel()
	for cam := range dst {
		if len(dst[cam]) != want {
			return xerror.Errorf("camera %d buffer holds %d bytes, frame %d needs %d", cam, len(dst[cam]), img.Index, want)
		}
	}
	c.lastFrame = img.Index
	for cam := range dst {
		for i := range dst[cam] {
			dst[cam][i] = byte(img.Index)
		}
	}
	return nil
}

func (c *mockContext) UpdateTextures(src [engine.NumCameras][]byte, pf engine.PixelFormat) error {
	if err := c.e.call("UpdateTextures"); err != nil {
		return err
	}
	if contains(c.e.opts.FailUpdateAt, c.lastFrame) {
		return xerror.Errorf("unable to upload textures for frame %d", c.lastFrame)
	}
	return nil
}

func (c *mockContext) RenderOffScreenImage(t engine.OutputType, pf engine.PixelFormat) (engine.ProcessedImage, error) {
	if err := c.e.call("RenderOffScreenImage"); err != nil {
		return engine.ProcessedImage{}, err
	}
	if contains(c.e.opts.FailRenderAt, c.lastFrame) {
		return engine.ProcessedImage{}, xerror.Errorf("unable to render frame %d", c.lastFrame)
	}
	w, h := c.e.offScreen[0], c.e.offScreen[1]
	return engine.ProcessedImage{Data: make([]byte, w*h*3), Cols: w, Rows: h, PixelFormat: pf}, nil
}

func (c *mockContext) SaveImage(img engine.ProcessedImage, path string, ff engine.FileFormat) error {
	if err := c.e.call("SaveImage"); err != nil {
		return err
	}
	if c.e.opts.FailSave != nil && c.e.opts.FailSave(path) {
		return fmt.Errorf("unable to write %s", path)
	}
	c.e.mu.Lock()
	c.e.saved = append(c.e.saved, path)
	c.e.mu.Unlock()
	return nil
}

func (c *mockContext) Close() error {
	c.e.contextClosed = true
	return c.e.call("ContextClose")
}
