package repos_test

import (
	"errors"
	"testing"

	"github.com/matryer/is"
	"github.com/tauraamui/panoexport/pkg/database/dbconn"
	"github.com/tauraamui/panoexport/pkg/database/models"
	"github.com/tauraamui/panoexport/pkg/database/repos"
)

func TestRunRepositoryCreate(t *testing.T) {
	is := is.New(t)
	db := dbconn.Mock()
	repo := repos.RunRepository{DB: db}

	run := models.Run{Input: "stream.pgr"}
	is.NoErr(repo.Create(&run))
	is.Equal(len(db.Created()), 1)
	is.Equal(db.Created()[0], &run)
}

func TestRunRepositoryCreateReturnsError(t *testing.T) {
	is := is.New(t)
	db := dbconn.Mock().SetError(errors.New("disk full"))
	repo := repos.RunRepository{DB: db}

	err := repo.Create(&models.Run{})
	is.Equal(err.Error(), "disk full")
	is.Equal(len(db.Created()), 0)
}

func TestRunRepositorySave(t *testing.T) {
	is := is.New(t)
	db := dbconn.Mock()
	repo := repos.RunRepository{DB: db}

	run := models.Run{Status: models.RunStatusCompleted}
	is.NoErr(repo.Save(&run))
	is.Equal(db.Saved(), []interface{}{&run})
}

func TestRunRepositoryFindByUUID(t *testing.T) {
	is := is.New(t)
	db := dbconn.Mock().SetResult(models.Run{UUID: "abc", Input: "stream.pgr"})
	repo := repos.RunRepository{DB: db}

	run, err := repo.FindByUUID("abc")
	is.NoErr(err)
	is.Equal(run.Input, "stream.pgr")
	is.Equal(db.Chain().Where.Query, "uuid = ?")
	is.Equal(db.Chain().Where.Args, []interface{}{"abc"})
}

func TestRunRepositoryFindByUUIDNotFound(t *testing.T) {
	is := is.New(t)
	db := dbconn.Mock().SetError(errors.New("record not found"))
	repo := repos.RunRepository{DB: db}

	_, err := repo.FindByUUID("missing")
	is.Equal(err.Error(), "run of uuid missing not found")
}

func TestFrameRepositoryFindByRun(t *testing.T) {
	is := is.New(t)
	db := dbconn.Mock().SetResult([]models.FrameRecord{{RunUUID: "abc", Frame: 3, Skipped: true, Stage: "read"}})
	repo := repos.FrameRepository{DB: db}

	frames, err := repo.FindByRun("abc")
	is.NoErr(err)
	is.Equal(len(frames), 1)
	is.Equal(frames[0].Frame, uint(3))
	is.Equal(db.Chain().Where.Query, "run_uuid = ?")
}
