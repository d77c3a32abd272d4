package session

import (
	"github.com/spf13/afero"
	"github.com/tauraamui/panoexport/pkg/configdef"
	"github.com/tauraamui/panoexport/pkg/engine"
	"github.com/tauraamui/panoexport/pkg/log"
)

func (s *Session) negotiate(backend engine.Backend) error {
	ctx, err := backend.NewContext()
	if err != nil {
		return initError("unable to create engine context", err)
	}
	s.Context = ctx

	stream, err := backend.NewStream()
	if err != nil {
		return initError("unable to create stream context", err)
	}
	s.Stream = stream

	log.Info("Opening stream %s", s.cfg.Input)
	if err := s.Stream.Open(s.cfg.Input); err != nil {
		return initError("unable to open stream", err)
	}

	if err := s.loadEmbeddedConfig(); err != nil {
		return err
	}

	header, err := s.Stream.Header()
	if err != nil {
		return initError("unable to read stream header", err)
	}
	s.Header = header
	logStreamInfo(header)

	highBitDepth := header.DataFormat.IsHighBitDepth()

	if err := s.Context.SetColorProcessingMethod(s.cfg.ColorMethod); err != nil {
		return initError("unable to set color processing method", err)
	}

	seed, err := s.Stream.ReadImage()
	if err != nil {
		return initError("unable to read seed frame", err)
	}

	s.Geometry = negotiateGeometry(seed, highBitDepth, s.cfg.ColorMethod)
	log.Debug("Negotiated frame geometry: %s", s.Geometry)

	buffers, err := allocateBuffers(s.Geometry)
	if err != nil {
		return err
	}
	s.Buffers = buffers

	if err := s.Context.SetBlendingWidth(s.cfg.BlendingWidth); err != nil {
		log.Warn("Unable to set blending width %d, using engine default: %v", s.cfg.BlendingWidth, err)
	}

	if err := s.Context.InitializeAlphaMasks(s.Geometry.TextureWidth, s.Geometry.TextureHeight); err != nil {
		log.Warn("Unable to initialize alpha masks: %v", err)
	}
	if err := s.Context.SetAlphaMasking(true); err != nil {
		log.Warn("Unable to enable alpha masking: %v", err)
	}

	if pano, ok := s.cfg.Mode.(configdef.PanoramaMode); ok {
		if err := s.configurePanorama(pano); err != nil {
			return err
		}
	}

	if err := s.Stream.GoTo(0); err != nil {
		return initError("unable to rewind stream to first frame", err)
	}
	return nil
}

// loadEmbeddedConfig extracts the stream's calibration into a temporary
// file and loads it. Only a failed load is fatal.
func (s *Session) loadEmbeddedConfig() error {
	tmp, err := afero.TempFile(s.fs, "", tempConfigPrefix)
	if err != nil {
		log.Warn("Unable to create temporary config file, continuing without stream config: %v", err)
		return nil
	}
	s.tempConfig = tmp.Name()
	if err := tmp.Close(); err != nil {
		log.Warn("Unable to close temporary config file %s: %v", s.tempConfig, err)
	}

	if err := s.Stream.ExtractConfig(s.tempConfig); err != nil {
		log.Warn("Unable to extract stream config, continuing without it: %v", err)
		s.removeTempConfig()
		return nil
	}

	err = s.Context.LoadConfig(s.tempConfig)
	s.removeTempConfig()
	if err != nil {
		return initError("unable to load stream config", err)
	}
	return nil
}

func (s *Session) configurePanorama(pano configdef.PanoramaMode) error {
	if err := s.Context.SetRenderOptions(s.cfg.Render); err != nil {
		log.Warn("Unable to apply render options: %v", err)
	}

	if err := s.Context.ConfigureOutputImages(pano.Output); err != nil {
		return initError("unable to configure output images", err)
	}
	if err := s.Context.SetOffScreenImageSize(pano.Output, pano.Width, pano.Height); err != nil {
		return initError("unable to set off-screen image size", err)
	}

	if pano.Rotation.IsZero() {
		return nil
	}
	pitch, yaw := degreesToRadians(pano.Rotation.Front), degreesToRadians(pano.Rotation.Down)
	if err := s.Context.Set3DMapRotation(pitch, yaw, 0); err != nil {
		log.Warn("Unable to apply 3D map rotation (front %.2f, down %.2f): %v", pano.Rotation.Front, pano.Rotation.Down, err)
	}
	return nil
}

func logStreamInfo(h engine.StreamHeader) {
	log.Info("Stream information:")
	log.Info("  Base unit serial: %d", h.SerialBase)
	log.Info("  Head unit serial: %d", h.SerialHead)
	log.Info("  Frame rate: %.2f", h.EffectiveFrameRate())
	log.Info("  Data format: %s", h.DataFormat)
	log.Info("  Resolution: %d", h.Resolution)
	log.Info("  Stream version: %d", h.StreamVersion)
}
