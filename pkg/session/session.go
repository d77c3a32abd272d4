package session

import (
	"errors"
	"math"
	"os"

	"github.com/spf13/afero"
	"github.com/tauraamui/panoexport/pkg/configdef"
	"github.com/tauraamui/panoexport/pkg/engine"
	"github.com/tauraamui/panoexport/pkg/log"
	"github.com/tauraamui/xerror"
)

const tempConfigPrefix = "lb_cfg_"

var (
	ErrInitialization     = errors.New("initialization error")
	ErrResourceExhaustion = errors.New("resource exhaustion")
)

var fs = afero.NewOsFs()

// Session owns every engine handle of a run. Open acquires them and
// Close releases them, and callers must always Close, even after a
// failed run.
type Session struct {
	Context  engine.Context
	Stream   engine.Stream
	Header   engine.StreamHeader
	Geometry FrameGeometry
	Buffers  BufferSet

	fs         afero.Fs
	cfg        configdef.CommandConfig
	tempConfig string
	closed     bool
}

type Option func(*Session)

// WithFs sets the filesystem the temporary stream config is written to.
func WithFs(f afero.Fs) Option {
	return func(s *Session) {
		s.fs = f
	}
}

// Open negotiates a session for cfg with the given engine. A partially
// opened session is closed before any error is returned.
func Open(backend engine.Backend, cfg configdef.CommandConfig, opts ...Option) (sess *Session, err error) {
	s := Session{fs: fs, cfg: cfg}
	for _, opt := range opts {
		opt(&s)
	}

	defer func() {
		if err != nil {
			if cerr := s.Close(); cerr != nil {
				log.Error("Unable to release session after failed open: %v", cerr)
			}
			sess = nil
		}
	}()

	if err := s.negotiate(backend); err != nil {
		return nil, err
	}
	return &s, nil
}

func initError(op string, err error) error {
	return xerror.Errorf("%w: %s: %w", ErrInitialization, op, err)
}

// PixelFormat of the session's buffers.
func (s *Session) PixelFormat() engine.PixelFormat {
	return s.Geometry.PixelFormat()
}

// Config is the command the session was opened for.
func (s *Session) Config() configdef.CommandConfig {
	return s.cfg
}

// Close releases buffers, stream, context and the temporary config file.
// Calling it more than once is a no-op.
func (s *Session) Close() error {
	if s == nil || s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	s.Buffers.release()

	if s.Stream != nil {
		if err := s.Stream.Close(); err != nil {
			log.Warn("Unable to close stream: %v", err)
			errs = append(errs, err)
		}
		s.Stream = nil
	}

	if s.Context != nil {
		if err := s.Context.Close(); err != nil {
			log.Warn("Unable to destroy engine context: %v", err)
			errs = append(errs, err)
		}
		s.Context = nil
	}

	s.removeTempConfig()

	if len(errs) > 0 {
		return xerror.Errorf("unable to close session: %w", errors.Join(errs...))
	}
	return nil
}

func (s *Session) removeTempConfig() {
	if len(s.tempConfig) == 0 {
		return
	}
	if err := s.fs.Remove(s.tempConfig); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("Unable to remove temporary config %s: %v", s.tempConfig, err)
	}
}

func degreesToRadians(d float64) float64 {
	return d * math.Pi / 180
}
