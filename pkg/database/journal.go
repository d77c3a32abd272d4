package database

import (
	"time"

	"github.com/tauraamui/panoexport/pkg/configdef"
	"github.com/tauraamui/panoexport/pkg/database/dbconn"
	"github.com/tauraamui/panoexport/pkg/database/models"
	"github.com/tauraamui/panoexport/pkg/database/repos"
	"github.com/tauraamui/panoexport/pkg/export"
	"github.com/tauraamui/panoexport/pkg/log"
	"github.com/tauraamui/xerror"
)

var now = time.Now

// Journal records a run and each of its frames. Recording failures are
// logged and never interrupt the export.
type Journal struct {
	db     dbconn.GormWrapper
	runs   repos.RunRepository
	frames repos.FrameRepository
	run    *models.Run
}

func OpenJournal(path string) (*Journal, error) {
	db, err := Connect(path)
	if err != nil {
		return nil, err
	}
	return NewJournal(db), nil
}

func NewJournal(db dbconn.GormWrapper) *Journal {
	return &Journal{
		db:     db,
		runs:   repos.RunRepository{DB: db},
		frames: repos.FrameRepository{DB: db},
	}
}

// Begin stores a new run for cfg.
func (j *Journal) Begin(cfg configdef.CommandConfig, engineName string) error {
	run := models.Run{
		Input:       cfg.Input,
		Output:      cfg.Output,
		Mode:        cfg.Mode.String(),
		Engine:      engineName,
		Format:      cfg.Format.Extension(),
		ColorMethod: cfg.ColorMethod.String(),
		StartFrame:  cfg.Range.Start,
		EndFrame:    cfg.Range.End,
	}
	if err := j.runs.Create(&run); err != nil {
		return xerror.Errorf("unable to record run: %w", err)
	}
	j.run = &run
	log.Debug("Recording run %s", run.UUID)
	return nil
}

func (j *Journal) RunUUID() string {
	if j.run == nil {
		return ""
	}
	return j.run.UUID
}

func (j *Journal) RecordFrame(o export.FrameOutcome) {
	if j.run == nil {
		return
	}
	rec := models.FrameRecord{
		RunUUID:  j.run.UUID,
		Frame:    o.Frame,
		Skipped:  o.Skipped,
		Stage:    string(o.Stage),
		Written:  o.Written,
		Failures: o.Failures,
	}
	if err := j.frames.Create(&rec); err != nil {
		log.Warn("Unable to record frame %d in journal: %v", o.Frame, err)
	}
}

// Finish stores the summary and final status of the run. A nil runErr
// marks the run completed.
func (j *Journal) Finish(summary export.Summary, runErr error) error {
	if j.run == nil {
		return nil
	}
	finished := now()
	j.run.StartFrame, j.run.EndFrame = summary.Start, summary.End
	j.run.TotalFrames = summary.Total
	j.run.Processed = summary.Processed
	j.run.Skipped = summary.Skipped
	j.run.FilesWritten = summary.FilesWritten
	j.run.SaveFailures = summary.SaveFailures
	j.run.FinishedAt = &finished
	j.run.Status = models.RunStatusCompleted
	if runErr != nil {
		j.run.Status = models.RunStatusFailed
		j.run.Error = runErr.Error()
	}

	if err := j.runs.Save(j.run); err != nil {
		return xerror.Errorf("unable to record run %s result: %w", j.run.UUID, err)
	}
	return nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}
