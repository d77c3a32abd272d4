package database

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/tauraamui/panoexport/pkg/database/dbconn"
	"github.com/tauraamui/panoexport/pkg/database/models"
	"github.com/tauraamui/panoexport/pkg/log"
	"github.com/tauraamui/xerror"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var fs = afero.NewOsFs()

// Connect opens the journal database at path, creating its parent
// directory and schema when missing.
func Connect(path string) (dbconn.GormWrapper, error) {
	if len(path) == 0 {
		return nil, xerror.New("journal path is empty")
	}

	if dir := filepath.Dir(path); len(dir) > 0 {
		if err := fs.MkdirAll(dir, os.ModeDir|os.ModePerm); err != nil {
			return nil, xerror.Errorf("unable to create journal directory %s: %w", dir, err)
		}
	}

	log.Debug("Connecting to DB: %s", path) //nolint
	db, err := openDBConnection(path)
	if err != nil {
		return nil, xerror.Errorf("unable to open db connection: %w", err)
	}

	err = models.AutoMigrate(db)
	if err != nil {
		db.Close()
		return nil, xerror.Errorf("unable to run automigrations: %w", err)
	}

	return db, nil
}

var openDBConnection = func(path string) (dbconn.GormWrapper, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}
	return dbconn.Wrap(db), nil
}
