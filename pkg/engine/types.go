package engine

import (
	"fmt"
	"strings"
)

// NumCameras is the number of physical cameras in a capture head.
const NumCameras = 6

type DataFormat int

const (
	DataFormatRaw8 DataFormat = iota
	DataFormatJPEG8
	DataFormatColorSepRaw8
	DataFormatColorSepJPEG8
	DataFormatHalfHeightRaw8
	DataFormatColorSepHalfHeightJPEG8
	DataFormatRaw16
	DataFormatHalfHeightRaw16
	DataFormatRaw12
	DataFormatHalfHeightRaw12
	DataFormatColorSepJPEG12
	DataFormatColorSepHalfHeightJPEG12
	DataFormatColorSepJPEG12Processed
	DataFormatColorSepHalfHeightJPEG12Processed
)

var dataFormatNames = map[DataFormat]string{
	DataFormatRaw8:                              "raw8",
	DataFormatJPEG8:                             "jpeg8",
	DataFormatColorSepRaw8:                      "color-sep-raw8",
	DataFormatColorSepJPEG8:                     "color-sep-jpeg8",
	DataFormatHalfHeightRaw8:                    "half-height-raw8",
	DataFormatColorSepHalfHeightJPEG8:           "color-sep-half-height-jpeg8",
	DataFormatRaw16:                             "raw16",
	DataFormatHalfHeightRaw16:                   "half-height-raw16",
	DataFormatRaw12:                             "raw12",
	DataFormatHalfHeightRaw12:                   "half-height-raw12",
	DataFormatColorSepJPEG12:                    "color-sep-jpeg12",
	DataFormatColorSepHalfHeightJPEG12:          "color-sep-half-height-jpeg12",
	DataFormatColorSepJPEG12Processed:           "color-sep-jpeg12-processed",
	DataFormatColorSepHalfHeightJPEG12Processed: "color-sep-half-height-jpeg12-processed",
}

func (f DataFormat) String() string {
	if n, ok := dataFormatNames[f]; ok {
		return n
	}
	return fmt.Sprintf("dataformat(%d)", int(f))
}

// IsHighBitDepth reports whether samples of this format are 12 or 16 bits wide.
func (f DataFormat) IsHighBitDepth() bool {
	switch f {
	case DataFormatRaw12,
		DataFormatHalfHeightRaw12,
		DataFormatColorSepJPEG12,
		DataFormatColorSepHalfHeightJPEG12,
		DataFormatColorSepJPEG12Processed,
		DataFormatColorSepHalfHeightJPEG12Processed,
		DataFormatRaw16,
		DataFormatHalfHeightRaw16:
		return true
	}
	return false
}

func ParseDataFormat(s string) (DataFormat, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for f, n := range dataFormatNames {
		if n == s {
			return f, nil
		}
	}
	return DataFormatRaw8, fmt.Errorf("unknown data format %q", s)
}

type ColorMethod int

const (
	ColorMethodHQLinear ColorMethod = iota
	ColorMethodEdgeSensing
	ColorMethodNearestNeighborFast
	ColorMethodDownsample4
	ColorMethodDownsample16
	ColorMethodMono
)

func (m ColorMethod) String() string {
	switch m {
	case ColorMethodHQLinear:
		return "hq-linear"
	case ColorMethodEdgeSensing:
		return "edge-sensing"
	case ColorMethodNearestNeighborFast:
		return "nearest-neighbor-fast"
	case ColorMethodDownsample4:
		return "downsample4"
	case ColorMethodDownsample16:
		return "downsample16"
	case ColorMethodMono:
		return "mono"
	}
	return fmt.Sprintf("colormethod(%d)", int(m))
}

// Downsample is the per-axis reduction the method applies to native images.
func (m ColorMethod) Downsample() int {
	switch m {
	case ColorMethodDownsample4:
		return 2
	case ColorMethodDownsample16:
		return 4
	}
	return 1
}

type PixelFormat int

const (
	PixelFormatBGRU PixelFormat = iota
	PixelFormatBGRU16
	PixelFormatBGR
)

func (p PixelFormat) String() string {
	switch p {
	case PixelFormatBGRU:
		return "BGRU"
	case PixelFormatBGRU16:
		return "BGRU16"
	case PixelFormatBGR:
		return "BGR"
	}
	return fmt.Sprintf("pixelformat(%d)", int(p))
}

// BytesPerPixel for the interleaved layouts the engine produces.
func (p PixelFormat) BytesPerPixel() int {
	switch p {
	case PixelFormatBGRU16:
		return 8
	case PixelFormatBGR:
		return 3
	}
	return 4
}

type OutputType int

const (
	OutputPanoramic OutputType = iota
	OutputDome
	OutputSpherical
	OutputRectifyCam0
	OutputRectifyCam1
	OutputRectifyCam2
	OutputRectifyCam3
	OutputRectifyCam4
	OutputRectifyCam5
)

func (o OutputType) String() string {
	switch o {
	case OutputPanoramic:
		return "panoramic"
	case OutputDome:
		return "dome"
	case OutputSpherical:
		return "spherical"
	}
	if o >= OutputRectifyCam0 && o <= OutputRectifyCam5 {
		return fmt.Sprintf("rectify-%d", o.RectifiedCamera())
	}
	return fmt.Sprintf("output(%d)", int(o))
}

// RectifiedCamera gives the camera index for rectify outputs, -1 otherwise.
func (o OutputType) RectifiedCamera() int {
	if o >= OutputRectifyCam0 && o <= OutputRectifyCam5 {
		return int(o - OutputRectifyCam0)
	}
	return -1
}

type FileFormat int

const (
	FileFormatJPG FileFormat = iota
	FileFormatBMP
	FileFormatTIFF
	FileFormatPNG
)

func (f FileFormat) Extension() string {
	switch f {
	case FileFormatBMP:
		return "bmp"
	case FileFormatTIFF:
		return "tiff"
	case FileFormatPNG:
		return "png"
	}
	return "jpg"
}

func (f FileFormat) String() string { return f.Extension() }

// StreamHeader is the metadata block at the head of a recorded stream.
type StreamHeader struct {
	SerialBase      uint32
	SerialHead      uint32
	FrameRate       float32
	LegacyFrameRate uint32
	DataFormat      DataFormat
	Resolution      int
	StreamVersion   uint32
}

// EffectiveFrameRate picks the integer rate field for streams older than
// version 7, which never populated the float one.
func (h StreamHeader) EffectiveFrameRate() float32 {
	if h.StreamVersion < 7 {
		return float32(h.LegacyFrameRate)
	}
	return h.FrameRate
}

// Image is one raw frame as read from a stream, covering all cameras.
type Image struct {
	Index      uint
	Cols, Rows int
	DataFormat DataFormat
	data       interface{}
}

// NewImage wraps a backend specific payload as a raw frame.
func NewImage(index uint, cols, rows int, f DataFormat, data interface{}) Image {
	return Image{Index: index, Cols: cols, Rows: rows, DataFormat: f, data: data}
}

// DataRef gives the backend specific payload of the raw frame.
func (i Image) DataRef() interface{} { return i.data }

// ProcessedImage describes interleaved pixels ready to be rendered or saved.
type ProcessedImage struct {
	Data        []byte
	Cols, Rows  int
	PixelFormat PixelFormat
}
