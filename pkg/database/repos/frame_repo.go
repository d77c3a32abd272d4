package repos

import (
	"github.com/tauraamui/panoexport/pkg/database/dbconn"
	"github.com/tauraamui/panoexport/pkg/database/models"
	"github.com/tauraamui/xerror"
)

type FrameRepository struct {
	DB dbconn.GormWrapper
}

func (r *FrameRepository) Create(frame *models.FrameRecord) error {
	return r.DB.Create(frame).Error()
}

func (r *FrameRepository) FindByRun(runUUID string) ([]models.FrameRecord, error) {
	frames := []models.FrameRecord{}
	if err := r.DB.Where("run_uuid = ?", runUUID).Find(&frames).Error(); err != nil {
		return frames, xerror.Errorf("unable to load frames of run %s: %w", runUUID, err)
	}

	return frames, nil
}
