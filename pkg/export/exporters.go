package export

import (
	"fmt"
	"path/filepath"

	"github.com/tauraamui/panoexport/pkg/engine"
	"github.com/tauraamui/panoexport/pkg/log"
	"github.com/tauraamui/panoexport/pkg/session"
)

// Job is one converted frame waiting to be written.
type Job struct {
	Frame       uint
	Buffers     session.BufferSet
	Cols, Rows  int
	PixelFormat engine.PixelFormat
}

// Result counts what an exporter wrote for a single job.
type Result struct {
	Written  int
	Failures int
}

type Exporter interface {
	Export(job Job) Result
}

// SixCameraExporter writes each camera's converted buffer as its own
// image, <dir>/<frame>_cam<n>.<ext>.
type SixCameraExporter struct {
	ctx    engine.Context
	dir    string
	format engine.FileFormat
}

func NewSixCameraExporter(ctx engine.Context, dir string, format engine.FileFormat) SixCameraExporter {
	return SixCameraExporter{ctx: ctx, dir: dir, format: format}
}

func (e SixCameraExporter) Export(job Job) Result {
	var res Result
	for cam := 0; cam < engine.NumCameras; cam++ {
		img := engine.ProcessedImage{
			Data:        job.Buffers[cam],
			Cols:        job.Cols,
			Rows:        job.Rows,
			PixelFormat: job.PixelFormat,
		}
		path := cameraImagePath(e.dir, job.Frame, cam, e.format)
		if err := e.ctx.SaveImage(img, path, e.format); err != nil {
			log.Warn("Unable to save camera %d of frame %d to %s: %v", cam, job.Frame, path, err)
			res.Failures++
			continue
		}
		log.Debug("Wrote %s", path)
		res.Written++
	}
	return res
}

// PanoramaExporter renders the configured off-screen output from the
// uploaded textures and writes it as <dir>/<frame>.<ext>.
type PanoramaExporter struct {
	ctx    engine.Context
	output engine.OutputType
	dir    string
	format engine.FileFormat
}

func NewPanoramaExporter(ctx engine.Context, output engine.OutputType, dir string, format engine.FileFormat) PanoramaExporter {
	return PanoramaExporter{ctx: ctx, output: output, dir: dir, format: format}
}

func (e PanoramaExporter) Export(job Job) Result {
	img, err := e.ctx.RenderOffScreenImage(e.output, engine.PixelFormatBGR)
	if err != nil {
		log.Warn("Unable to render %s image for frame %d: %v", e.output, job.Frame, err)
		return Result{Failures: 1}
	}

	path := panoramaImagePath(e.dir, job.Frame, e.format)
	if err := e.ctx.SaveImage(img, path, e.format); err != nil {
		log.Warn("Unable to save frame %d to %s: %v", job.Frame, path, err)
		return Result{Failures: 1}
	}
	log.Debug("Wrote %s", path)
	return Result{Written: 1}
}

func cameraImagePath(dir string, frame uint, cam int, ff engine.FileFormat) string {
	return filepath.Join(dir, fmt.Sprintf("%06d_cam%d.%s", frame, cam, ff.Extension()))
}

func panoramaImagePath(dir string, frame uint, ff engine.FileFormat) string {
	return filepath.Join(dir, fmt.Sprintf("%06d.%s", frame, ff.Extension()))
}
