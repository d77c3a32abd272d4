package session

import (
	"fmt"
	"math"

	"github.com/tauraamui/panoexport/pkg/engine"
	"github.com/tauraamui/xerror"
)

// BufferSet holds one converted image per camera. It is allocated once
// per run and reused for every frame.
type BufferSet [engine.NumCameras][]byte

// maxBufferBytes caps a single camera buffer.
const maxBufferBytes = math.MaxInt32

var allocate = func(size int) (buf []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return make([]byte, size), nil
}

func allocateBuffers(g FrameGeometry) (BufferSet, error) {
	var set BufferSet

	if g.TextureWidth <= 0 || g.TextureHeight <= 0 {
		return set, xerror.Errorf("%w: invalid texture size %dx%d", ErrResourceExhaustion, g.TextureWidth, g.TextureHeight)
	}
	if int64(g.TextureWidth)*int64(g.TextureHeight)*int64(g.BytesPerPixel) > maxBufferBytes {
		return set, xerror.Errorf("%w: camera buffer for %s is too large", ErrResourceExhaustion, g)
	}

	size := g.BufferSize()
	for cam := 0; cam < engine.NumCameras; cam++ {
		buf, err := allocate(size)
		if err != nil {
			return BufferSet{}, xerror.Errorf("%w: unable to allocate %d bytes for camera %d: %w", ErrResourceExhaustion, size, cam, err)
		}
		set[cam] = buf
	}
	return set, nil
}

func (b *BufferSet) release() {
	*b = BufferSet{}
}
