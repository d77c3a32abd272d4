package engine

import (
	"image"
	"image/color"
	"math"
)

// tileScaler scales the texture of camera cam to w x h.
type tileScaler func(cam, w, h int) (*image.RGBA, error)

// composeRing lays the horizontal ring cameras out left to right. Each
// camera is scaled to its tile plus half the blending width on either
// side, and neighbouring cameras are cross faded over that overlap. The
// strip wraps, so the last camera also fades into the first.
func (s *contextState) composeRing(size image.Point, scale tileScaler) (*image.RGBA, error) {
	widths := ringTileWidths(size.X, NumCameras-1)
	half := s.blendingWidth / 2
	for _, w := range widths {
		if half > w/2 {
			half = w / 2
		}
	}

	acc := make([]float64, size.X*size.Y*3)
	weights := make([]float64, size.X)
	x0 := 0
	for cam, tw := range widths {
		ext := tw + 2*half
		tile, err := scale(cam, ext, size.Y)
		if err != nil {
			return nil, err
		}
		s.applyFalloff(tile)

		for tx := 0; tx < ext; tx++ {
			wgt := s.seamWeight(tx, ext, half)
			if wgt == 0 {
				continue
			}
			x := wrap(x0-half+tx, size.X)
			weights[x] += wgt
			for y := 0; y < size.Y; y++ {
				c := tile.RGBAAt(tx, y)
				i := (y*size.X + x) * 3
				acc[i] += wgt * float64(c.R)
				acc[i+1] += wgt * float64(c.G)
				acc[i+2] += wgt * float64(c.B)
			}
		}
		x0 += tw
	}

	out := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	for y := 0; y < size.Y; y++ {
		for x := 0; x < size.X; x++ {
			if weights[x] == 0 {
				continue
			}
			i := (y*size.X + x) * 3
			out.SetRGBA(x, y, color.RGBA{
				R: channel(acc[i] / weights[x]),
				G: channel(acc[i+1] / weights[x]),
				B: channel(acc[i+2] / weights[x]),
				A: 0xFF,
			})
		}
	}
	return out, nil
}

// seamWeight is the contribution of column tx of a tile ext pixels wide
// whose outer half pixels on each side overlap a neighbour. Weights of two
// overlapping columns always sum to one. With alpha masking on the fade
// follows a smoothstep instead of a straight line.
func (s *contextState) seamWeight(tx, ext, half int) float64 {
	if half == 0 {
		return 1
	}
	edge := math.Min(float64(tx)+0.5, float64(ext-tx)-0.5)
	w := edge / float64(2*half)
	if w >= 1 {
		return 1
	}
	if s.masking {
		w = w * w * (3 - 2*w)
	}
	return w
}

// applyFalloff attenuates a camera image radially, so its corners keep
// FalloffValue of their brightness and its centre is untouched.
func (s *contextState) applyFalloff(img *image.RGBA) {
	if !s.opts.FalloffEnabled || s.opts.FalloffValue >= 1 {
		return
	}
	b := img.Bounds()
	cx, cy := float64(b.Dx())/2, float64(b.Dy())/2
	floor := float64(s.opts.FalloffValue)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		dy := (float64(y-b.Min.Y) + 0.5 - cy) / cy
		for x := b.Min.X; x < b.Max.X; x++ {
			dx := (float64(x-b.Min.X) + 0.5 - cx) / cx
			f := 1 - (1-floor)*(dx*dx+dy*dy)/2
			c := img.RGBAAt(x, y)
			img.SetRGBA(x, y, color.RGBA{
				R: channel(float64(c.R) * f),
				G: channel(float64(c.G) * f),
				B: channel(float64(c.B) * f),
				A: c.A,
			})
		}
	}
}

func wrap(x, n int) int {
	x %= n
	if x < 0 {
		x += n
	}
	return x
}

func channel(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
