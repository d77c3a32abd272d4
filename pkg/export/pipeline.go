package export

import (
	"os"

	"github.com/spf13/afero"
	"github.com/tauraamui/panoexport/pkg/configdef"
	"github.com/tauraamui/panoexport/pkg/log"
	"github.com/tauraamui/panoexport/pkg/session"
	"github.com/tauraamui/xerror"
)

var fs = afero.NewOsFs()

type Stage string

const (
	StageRead    Stage = "read"
	StageConvert Stage = "convert"
	StageUpdate  Stage = "update"
	StageExport  Stage = "export"
)

// FrameOutcome reports what happened to a single frame. Stage names the
// step a skipped frame failed at.
type FrameOutcome struct {
	Frame    uint
	Skipped  bool
	Stage    Stage
	Written  int
	Failures int
}

type Recorder interface {
	RecordFrame(FrameOutcome)
}

type Summary struct {
	Span
	Total        uint
	Processed    int
	Skipped      int
	FilesWritten int
	SaveFailures int
}

func (s *Summary) add(o FrameOutcome) {
	if o.Skipped {
		s.Skipped++
		return
	}
	s.Processed++
	s.FilesWritten += o.Written
	s.SaveFailures += o.Failures
}

type Pipeline struct {
	sess      *session.Session
	cfg       configdef.CommandConfig
	fs        afero.Fs
	exporter  Exporter
	recorders []Recorder
}

type Option func(*Pipeline)

// WithFs sets the filesystem the output directory is created on.
func WithFs(f afero.Fs) Option {
	return func(p *Pipeline) {
		p.fs = f
	}
}

func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.recorders = append(p.recorders, r)
		}
	}
}

func NewPipeline(sess *session.Session, cfg configdef.CommandConfig, opts ...Option) *Pipeline {
	p := Pipeline{sess: sess, cfg: cfg, fs: fs}
	for _, opt := range opts {
		opt(&p)
	}

	switch mode := cfg.Mode.(type) {
	case configdef.PanoramaMode:
		p.exporter = NewPanoramaExporter(sess.Context, mode.Output, cfg.Output, cfg.Format)
	default:
		p.exporter = NewSixCameraExporter(sess.Context, cfg.Output, cfg.Format)
	}
	return &p
}

// Run exports every frame of the resolved range in order. Frames that
// fail are logged and skipped. Only failing to count or seek the stream
// ends the run early.
func (p *Pipeline) Run() (Summary, error) {
	total, err := p.sess.Stream.NumImages()
	if err != nil {
		return Summary{}, xerror.Errorf("%w: unable to count stream frames: %w", session.ErrInitialization, err)
	}

	span := ResolveRange(p.cfg.Range, total)
	summary := Summary{Span: span, Total: total}
	log.Info("Stream holds %d frames", total)

	if err := p.fs.MkdirAll(p.cfg.Output, os.ModeDir|os.ModePerm); err != nil {
		log.Warn("Unable to create output directory %s: %v", p.cfg.Output, err)
	}

	if total == 0 {
		log.Warn("Stream %s holds no frames, nothing to export", p.cfg.Input)
		return summary, nil
	}
	if span.Count == 0 {
		log.Warn("Start frame %d is after end frame %d, nothing to export", span.Start, span.End)
		return summary, nil
	}

	if span.Start > 0 {
		if err := p.sess.Stream.GoTo(span.Start); err != nil {
			return summary, xerror.Errorf("%w: unable to seek to frame %d: %w", session.ErrInitialization, span.Start, err)
		}
	}

	for i := uint(0); i < span.Count; i++ {
		frame := span.Start + i
		log.Info("Processing frame %d of %d", frame, span.End)

		outcome := p.processFrame(frame)
		summary.add(outcome)
		for _, r := range p.recorders {
			r.RecordFrame(outcome)
		}
	}
	return summary, nil
}

func (p *Pipeline) processFrame(frame uint) FrameOutcome {
	skip := func(stage Stage) FrameOutcome {
		return FrameOutcome{Frame: frame, Skipped: true, Stage: stage}
	}

	ctx, pf := p.sess.Context, p.sess.PixelFormat()

	img, err := p.sess.Stream.ReadImage()
	if err != nil {
		log.Warn("Unable to read frame %d, skipping: %v", frame, err)
		return skip(StageRead)
	}

	if err := ctx.ConvertImage(img, p.sess.Buffers, pf); err != nil {
		log.Warn("Unable to convert frame %d, skipping: %v", frame, err)
		return skip(StageConvert)
	}

	if !p.cfg.IsSixCamera() {
		if err := ctx.UpdateTextures(p.sess.Buffers, pf); err != nil {
			log.Warn("Unable to update textures for frame %d, skipping: %v", frame, err)
			return skip(StageUpdate)
		}
	}

	res := p.exporter.Export(Job{
		Frame:       frame,
		Buffers:     p.sess.Buffers,
		Cols:        p.sess.Geometry.TextureWidth,
		Rows:        p.sess.Geometry.TextureHeight,
		PixelFormat: pf,
	})
	outcome := FrameOutcome{Frame: frame, Written: res.Written, Failures: res.Failures}
	if res.Failures > 0 {
		outcome.Stage = StageExport
	}
	return outcome
}
