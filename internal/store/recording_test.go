package store

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordingRepository_Lifecycle(t *testing.T) {
	s := newTestStore(t)
	repo := s.Recordings()

	rec, err := repo.Create("warmup")
	require.NoError(t, err)
	_, err = uuid.Parse(rec.ID)
	require.NoError(t, err, "recording IDs are UUIDs")
	assert.True(t, rec.Active())
	assert.False(t, rec.StartedAt.IsZero())

	require.NoError(t, repo.AppendFrame(rec.ID, 0, []byte(`{}`)))
	require.NoError(t, repo.AppendFrame(rec.ID, 66*time.Millisecond, []byte(`{"pose":{"poseLandmarks":[{"x":0.5,"y":0.5,"z":0}]}}`)))

	got, err := repo.Get(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "warmup", got.Name)
	assert.Equal(t, 2, got.Frames)
	assert.True(t, got.Active())

	stopped, err := repo.Stop(rec.ID)
	require.NoError(t, err)
	require.NotNil(t, stopped.StoppedAt)

	_, err = repo.Stop(rec.ID)
	assert.True(t, errors.Is(err, ErrRecordingStopped))
	err = repo.AppendFrame(rec.ID, time.Second, []byte(`{}`))
	assert.True(t, errors.Is(err, ErrRecordingStopped))

	frames, err := repo.Frames(rec.ID)
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Equal(t, 0, frames[0].Seq)
	assert.Equal(t, 1, frames[1].Seq)
	assert.Equal(t, 66*time.Millisecond, frames[1].Offset)
	assert.JSONEq(t, `{}`, string(frames[0].Data))

	got, err = repo.Get(rec.ID)
	require.NoError(t, err)
	assert.False(t, got.Active())
}

func TestRecordingRepository_List(t *testing.T) {
	s := newTestStore(t)
	repo := s.Recordings()

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	first, err := repo.Create("first")
	require.NoError(t, err)
	second, err := repo.Create("second")
	require.NoError(t, err)

	list, err := repo.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestRecordingRepository_NotFound(t *testing.T) {
	s := newTestStore(t)
	repo := s.Recordings()

	_, err := repo.Get("missing")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = repo.Stop("missing")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(repo.Delete("missing"), ErrNotFound))
	assert.True(t, errors.Is(repo.AppendFrame("missing", 0, []byte(`{}`)), ErrNotFound))
	_, err = repo.Frames("missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRecordingRepository_DeleteCascades(t *testing.T) {
	s := newTestStore(t)
	repo := s.Recordings()

	rec, err := repo.Create("gone")
	require.NoError(t, err)
	require.NoError(t, repo.AppendFrame(rec.ID, 0, []byte(`{}`)))

	require.NoError(t, repo.Delete(rec.ID))

	var n int
	require.NoError(t, s.DB().QueryRow(
		`SELECT COUNT(*) FROM recording_frames WHERE recording_id = ?`, rec.ID,
	).Scan(&n))
	assert.Zero(t, n)
}
