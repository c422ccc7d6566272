package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/utils/tests"
	"wcircle.app/watchcircle/internal/model"
)

// sqlRecorder captures every statement gorm builds so dry-run tests can
// assert on the generated SQL.
type sqlRecorder struct {
	statements []string
}

func (r *sqlRecorder) LogMode(logger.LogLevel) logger.Interface      { return r }
func (r *sqlRecorder) Info(context.Context, string, ...interface{})  {}
func (r *sqlRecorder) Warn(context.Context, string, ...interface{})  {}
func (r *sqlRecorder) Error(context.Context, string, ...interface{}) {}

func (r *sqlRecorder) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	sql, _ := fc()
	r.statements = append(r.statements, sql)
}

func dryRunDB(t *testing.T) (*gorm.DB, *sqlRecorder) {
	t.Helper()
	rec := &sqlRecorder{}
	db, err := gorm.Open(tests.DummyDialector{}, &gorm.Config{DryRun: true, Logger: rec})
	require.NoError(t, err)
	return db, rec
}

func findStatement(statements []string, substr string) string {
	for _, s := range statements {
		if strings.Contains(s, substr) {
			return s
		}
	}
	return ""
}

func TestRatingToggleFirstWriteIsUpsert(t *testing.T) {
	db, rec := dryRunDB(t)
	repo := NewRatingRepository(db)

	oldValue, newValue, err := repo.Toggle(context.Background(), &model.Rating{
		UserID:    uuid.New(),
		MediaID:   "m1",
		MediaType: "movie",
		Value:     model.RatingLove,
	})
	require.NoError(t, err)
	assert.Equal(t, "", oldValue)
	assert.Equal(t, model.RatingLove, newValue)

	// A plain INSERT here would let two sessions rating the same media for
	// the first time race each other into a duplicate-key failure; the
	// insert has to carry the conflict clause so the later write wins.
	insert := findStatement(rec.statements, "INSERT INTO")
	require.NotEmpty(t, insert)
	assert.Contains(t, insert, "ON CONFLICT")
	assert.Contains(t, insert, "DO UPDATE SET")
}
