package engine

import (
	"image"
	"math"

	"github.com/tauraamui/xerror"
)

// contextState holds the configuration shared by every Context
// implementation.
type contextState struct {
	method        ColorMethod
	blendingWidth int
	maskSize      image.Point
	masking       bool
	opts          RenderOptions
	outputs       map[OutputType]image.Point
	rotation      [3]float64
}

func newContextState() contextState {
	return contextState{
		method:        ColorMethodHQLinear,
		blendingWidth: 100,
		outputs:       map[OutputType]image.Point{},
	}
}

func (s *contextState) SetColorProcessingMethod(m ColorMethod) error {
	if m < ColorMethodHQLinear || m > ColorMethodMono {
		return xerror.Errorf("unsupported color processing method: %s", m)
	}
	s.method = m
	return nil
}

func (s *contextState) SetBlendingWidth(w int) error {
	if w < 0 {
		return xerror.Errorf("blending width must not be negative, got %d", w)
	}
	s.blendingWidth = w
	return nil
}

func (s *contextState) InitializeAlphaMasks(w, h int) error {
	if w <= 0 || h <= 0 {
		return xerror.Errorf("invalid alpha mask size %dx%d", w, h)
	}
	s.maskSize = image.Pt(w, h)
	return nil
}

func (s *contextState) SetAlphaMasking(enabled bool) error {
	if enabled && s.maskSize.Eq(image.Point{}) {
		return xerror.New("alpha masks have not been initialized")
	}
	s.masking = enabled
	return nil
}

func (s *contextState) SetRenderOptions(o RenderOptions) error {
	if o.FalloffEnabled && (o.FalloffValue < 0 || o.FalloffValue > 1) {
		return xerror.Errorf("falloff value %.2f out of range [0, 1]", o.FalloffValue)
	}
	s.opts = o
	if o.Stabilization {
		s.opts.Stabilization = false
		return xerror.New("image stabilization is not supported, rendering without it")
	}
	return nil
}

func (s *contextState) ConfigureOutputImages(t OutputType) error {
	if t < OutputPanoramic || t > OutputRectifyCam5 {
		return xerror.Errorf("unsupported output type: %s", t)
	}
	if _, ok := s.outputs[t]; !ok {
		s.outputs[t] = image.Point{}
	}
	return nil
}

func (s *contextState) SetOffScreenImageSize(t OutputType, w, h int) error {
	if _, ok := s.outputs[t]; !ok {
		return xerror.Errorf("output %s has not been configured", t)
	}
	if w < NumCameras || h <= 0 {
		return xerror.Errorf("invalid off-screen image size %dx%d", w, h)
	}
	s.outputs[t] = image.Pt(w, h)
	return nil
}

func (s *contextState) Set3DMapRotation(rx, ry, rz float64) error {
	for _, r := range []float64{rx, ry, rz} {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return xerror.New("rotation angles must be finite")
		}
	}
	s.rotation = [3]float64{rx, ry, rz}
	return nil
}

func (s *contextState) outputSize(t OutputType) (image.Point, error) {
	size, ok := s.outputs[t]
	if !ok || size.Eq(image.Point{}) {
		return image.Point{}, xerror.Errorf("off-screen output %s is not configured", t)
	}
	return size, nil
}

func textureSize(img Image, m ColorMethod) (int, int) {
	return img.Cols / m.Downsample(), img.Rows / m.Downsample()
}
