package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func init() {
	registerForAutomigration(&Run{})
}

const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Run is one invocation of the exporter.
type Run struct {
	gorm.Model
	UUID         string `gorm:"uniqueIndex"`
	Input        string
	Output       string
	Mode         string
	Engine       string
	Format       string
	ColorMethod  string
	StartFrame   uint
	EndFrame     uint
	TotalFrames  uint
	Processed    int
	Skipped      int
	FilesWritten int
	SaveFailures int
	Status       string
	Error        string
	FinishedAt   *time.Time
}

func (r *Run) BeforeCreate(tx *gorm.DB) error {
	if len(r.UUID) == 0 {
		r.UUID = uuid.NewString()
	}
	if len(r.Status) == 0 {
		r.Status = RunStatusRunning
	}
	return nil
}
