package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"wcircle.app/watchcircle/internal/model"
)

func TestWatchStatusToggleFirstWriteIsUpsert(t *testing.T) {
	db, rec := dryRunDB(t)
	repo := NewWatchStatusRepository(db)

	oldStatus, newStatus, err := repo.Toggle(context.Background(), &model.WatchStatus{
		UserID:    uuid.New(),
		MediaID:   "m1",
		MediaType: "tv",
		Status:    model.StatusWatching,
	})
	require.NoError(t, err)
	assert.Equal(t, "", oldStatus)
	assert.Equal(t, model.StatusWatching, newStatus)

	insert := findStatement(rec.statements, "INSERT INTO")
	require.NotEmpty(t, insert)
	assert.Contains(t, insert, "ON CONFLICT")
	assert.Contains(t, insert, "DO UPDATE SET")
}
