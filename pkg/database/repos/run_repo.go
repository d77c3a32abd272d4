package repos

import (
	"github.com/tauraamui/panoexport/pkg/database/dbconn"
	"github.com/tauraamui/panoexport/pkg/database/models"
	"github.com/tauraamui/xerror"
)

type RunRepository struct {
	DB dbconn.GormWrapper
}

func (r *RunRepository) Create(run *models.Run) error {
	return r.DB.Create(run).Error()
}

func (r *RunRepository) Save(run *models.Run) error {
	return r.DB.Save(run).Error()
}

func (r *RunRepository) FindByUUID(uuid string) (models.Run, error) {
	run := models.Run{}
	if err := r.DB.Where("uuid = ?", uuid).First(&run).Error(); err != nil {
		return run, xerror.Errorf("run of uuid %s not found", uuid)
	}

	return run, nil
}
