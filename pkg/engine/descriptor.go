package engine

import (
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"github.com/tauraamui/xerror"
)

// streamDescriptor is the TOML document describing a stream. For the
// OpenCV engine it is the `<stream>.toml` sidecar next to the video; for
// the synthetic engine it is the stream file itself.
type streamDescriptor struct {
	SerialBase  uint32  `toml:"serial_base"`
	SerialHead  uint32  `toml:"serial_head"`
	DataFormat  string  `toml:"data_format"`
	FrameRate   float32 `toml:"frame_rate"`
	Resolution  int     `toml:"resolution"`
	Version     uint32  `toml:"version"`
	Calibration string  `toml:"calibration"`

	Frames     uint   `toml:"frames"`
	Width      int    `toml:"width"`
	Height     int    `toml:"height"`
	FailFrames []uint `toml:"fail_frames"`
}

func readDescriptor(fs afero.Fs, path string) (streamDescriptor, error) {
	d := streamDescriptor{Version: 7}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return d, err
	}
	if err := toml.Unmarshal(data, &d); err != nil {
		return d, xerror.Errorf("unable to parse stream descriptor %s: %w", path, err)
	}
	return d, nil
}

func (d streamDescriptor) header() (StreamHeader, error) {
	h := StreamHeader{
		SerialBase:    d.SerialBase,
		SerialHead:    d.SerialHead,
		FrameRate:     d.FrameRate,
		Resolution:    d.Resolution,
		StreamVersion: d.Version,
	}
	if d.Version < 7 {
		h.LegacyFrameRate = uint32(d.FrameRate)
		h.FrameRate = 0
	}
	if len(d.DataFormat) == 0 {
		return h, nil
	}
	f, err := ParseDataFormat(d.DataFormat)
	if err != nil {
		return h, err
	}
	h.DataFormat = f
	return h, nil
}

func (d streamDescriptor) failsAt(frame uint) bool {
	for _, f := range d.FailFrames {
		if f == frame {
			return true
		}
	}
	return false
}

func writeCalibration(fs afero.Fs, dst, calibration string) error {
	if len(calibration) == 0 {
		return xerror.New("stream carries no embedded configuration")
	}
	if err := afero.WriteFile(fs, dst, []byte(calibration), 0600); err != nil {
		return xerror.Errorf("unable to write configuration to %s: %w", dst, err)
	}
	return nil
}

func readCalibration(fs afero.Fs, path string) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return xerror.Errorf("unable to read configuration %s: %w", path, err)
	}
	if len(data) == 0 {
		return xerror.Errorf("configuration file %s is empty", path)
	}
	return nil
}
