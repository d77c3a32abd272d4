package panoexport

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/tauraamui/panoexport/pkg/config"
	"github.com/tauraamui/panoexport/pkg/configdef"
	"github.com/tauraamui/panoexport/pkg/database"
	"github.com/tauraamui/panoexport/pkg/engine"
	"github.com/tauraamui/panoexport/pkg/export"
	"github.com/tauraamui/panoexport/pkg/log"
	"github.com/tauraamui/panoexport/pkg/session"
)

type App struct {
	resolver config.Resolver
	backend  engine.Backend
	fs       afero.Fs
	out      io.Writer
}

type Option func(*App)

// WithBackend fixes the imaging engine instead of resolving it from the
// command configuration.
func WithBackend(b engine.Backend) Option {
	return func(a *App) {
		a.backend = b
	}
}

func WithResolver(r config.Resolver) Option {
	return func(a *App) {
		a.resolver = r
	}
}

// WithFs sets the filesystem the session and pipeline work on.
func WithFs(f afero.Fs) Option {
	return func(a *App) {
		a.fs = f
	}
}

func WithOutput(w io.Writer) Option {
	return func(a *App) {
		a.out = w
	}
}

func New(opts ...Option) *App {
	a := App{resolver: config.DefaultResolver(), out: os.Stdout}
	for _, opt := range opts {
		opt(&a)
	}
	return &a
}

// Run resolves args and exports the selected frames. The session is
// always closed before Run returns. Any returned error means the process
// should exit non-zero.
func Run(args []string, opts ...Option) error {
	return New(opts...).Run(args)
}

func (a *App) Run(args []string) error {
	cfg, err := a.resolver.Resolve(args)
	if err != nil {
		a.reportResolveError(err)
		return err
	}

	printConfiguration(a.out, cfg)

	backend := a.backend
	if backend == nil {
		backend = engine.Resolve(cfg.Engine)
	}

	metrics := export.NewMetrics()
	journal := openJournal(cfg, backend.Name())

	summary, err := a.export(backend, cfg, metrics, journal)

	if journal != nil {
		if ferr := journal.Finish(summary, err); ferr != nil {
			log.Warn("Unable to finish run journal: %v", ferr)
		}
		if cerr := journal.Close(); cerr != nil {
			log.Warn("Unable to close run journal: %v", cerr)
		}
	}
	if len(cfg.MetricsPath) > 0 {
		if werr := metrics.WriteTextfile(cfg.MetricsPath); werr != nil {
			log.Warn("Unable to write run metrics to %s: %v", cfg.MetricsPath, werr)
		}
	}

	if err != nil {
		log.Error("Export failed: %v", err)
		return err
	}

	printSummary(a.out, summary)
	fmt.Fprintln(a.out, "\nExport complete.")
	return nil
}

func (a *App) export(
	backend engine.Backend, cfg configdef.CommandConfig, metrics *export.Metrics, journal *database.Journal,
) (export.Summary, error) {
	var sessOpts []session.Option
	pipeOpts := []export.Option{export.WithRecorder(metrics)}
	if a.fs != nil {
		sessOpts = append(sessOpts, session.WithFs(a.fs))
		pipeOpts = append(pipeOpts, export.WithFs(a.fs))
	}
	if journal != nil {
		pipeOpts = append(pipeOpts, export.WithRecorder(journal))
	}

	log.Info("Initializing %s engine...", backend.Name())
	sess, err := session.Open(backend, cfg, sessOpts...)
	if err != nil {
		return export.Summary{}, err
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			log.Error(cerr.Error())
		}
	}()

	return export.NewPipeline(sess, cfg, pipeOpts...).Run()
}

func (a *App) reportResolveError(err error) {
	if errors.Is(err, configdef.ErrHelpRequested) {
		config.PrintUsage(a.out)
		return
	}
	log.Error(err.Error())
	if errors.Is(err, configdef.ErrArgument) {
		config.PrintUsage(a.out)
	}
}

// openJournal returns nil when journaling is disabled or unavailable.
// The export runs either way.
func openJournal(cfg configdef.CommandConfig, engineName string) *database.Journal {
	if len(cfg.JournalPath) == 0 {
		return nil
	}

	journal, err := database.OpenJournal(cfg.JournalPath)
	if err != nil {
		log.Warn("Unable to open run journal, continuing without it: %v", err)
		return nil
	}
	if err := journal.Begin(cfg, engineName); err != nil {
		log.Warn("Unable to start run journal, continuing without it: %v", err)
		journal.Close()
		return nil
	}
	return journal
}

func printConfiguration(w io.Writer, cfg configdef.CommandConfig) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Input stream: %s\n", cfg.Input)
	fmt.Fprintf(w, "Output directory: %s\n", cfg.Output)
	fmt.Fprintf(w, "Frame range: %s\n", cfg.Range)
	fmt.Fprintf(w, "Export type: %s\n", cfg.Mode)
	if pano, ok := cfg.Mode.(configdef.PanoramaMode); ok && !pano.Rotation.IsZero() {
		fmt.Fprintf(w, "Rotation: Front %.1f, Down %.1f degrees\n", pano.Rotation.Front, pano.Rotation.Down)
	}
	fmt.Fprintf(w, "Output format: %s\n", cfg.FormatTag)
	fmt.Fprintf(w, "Color processing: %s\n", cfg.ColorTag)
	fmt.Fprintln(w)
}

func printSummary(w io.Writer, s export.Summary) {
	fmt.Fprintf(
		w, "\nFrames processed: %d, skipped: %d, files written: %d, save failures: %d\n",
		s.Processed, s.Skipped, s.FilesWritten, s.SaveFailures,
	)
}
