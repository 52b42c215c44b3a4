package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a requested resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrRecordingStopped is returned when appending to or stopping a
	// recording that has already been stopped.
	ErrRecordingStopped = errors.New("recording already stopped")
)

// Recording is a captured landmark session.
type Recording struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	StartedAt time.Time  `json:"started_at"`
	StoppedAt *time.Time `json:"stopped_at,omitempty"`
	Frames    int        `json:"frames"`
}

// Active reports whether the recording is still accepting frames.
func (r *Recording) Active() bool {
	return r.StoppedAt == nil
}

// RecordingFrame is one stored frame in wire format. Offset is measured from
// the recording start.
type RecordingFrame struct {
	Seq    int             `json:"seq"`
	Offset time.Duration   `json:"offset"`
	Data   json.RawMessage `json:"data"`
}

// RecordingRepository provides CRUD operations for recordings and their frames.
type RecordingRepository struct {
	db  *sql.DB
	now func() time.Time
}

// Recordings returns the recording repository for this store.
func (s *Store) Recordings() *RecordingRepository {
	return &RecordingRepository{db: s.db, now: time.Now}
}

// Create starts a new recording with a generated ID.
func (r *RecordingRepository) Create(name string) (*Recording, error) {
	rec := &Recording{
		ID:        uuid.NewString(),
		Name:      name,
		StartedAt: r.now(),
	}

	_, err := r.db.Exec(
		`INSERT INTO recordings (id, name, started_at, frames) VALUES (?, ?, ?, 0)`,
		rec.ID, rec.Name, rec.StartedAt,
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Stop marks a recording as finished.
func (r *RecordingRepository) Stop(id string) (*Recording, error) {
	rec, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	if !rec.Active() {
		return nil, ErrRecordingStopped
	}

	stoppedAt := r.now()
	if _, err := r.db.Exec(`UPDATE recordings SET stopped_at = ? WHERE id = ?`, stoppedAt, id); err != nil {
		return nil, err
	}
	rec.StoppedAt = &stoppedAt
	return rec, nil
}

// Get retrieves a recording by its ID.
func (r *RecordingRepository) Get(id string) (*Recording, error) {
	row := r.db.QueryRow(
		`SELECT id, name, started_at, stopped_at, frames FROM recordings WHERE id = ?`,
		id,
	)
	rec, err := scanRecording(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// List retrieves all recordings, newest first.
func (r *RecordingRepository) List() ([]*Recording, error) {
	rows, err := r.db.Query(
		`SELECT id, name, started_at, stopped_at, frames
		 FROM recordings ORDER BY started_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recordings []*Recording
	for rows.Next() {
		rec, err := scanRecording(rows)
		if err != nil {
			return nil, err
		}
		recordings = append(recordings, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return recordings, nil
}

// Delete removes a recording and its frames.
func (r *RecordingRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM recordings WHERE id = ?`, id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendFrame stores one wire-format frame at the end of an active recording.
func (r *RecordingRepository) AppendFrame(id string, offset time.Duration, data []byte) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var frames int
	var stoppedAt sql.NullTime
	err = tx.QueryRow(`SELECT frames, stopped_at FROM recordings WHERE id = ?`, id).Scan(&frames, &stoppedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if stoppedAt.Valid {
		return ErrRecordingStopped
	}

	if _, err := tx.Exec(
		`INSERT INTO recording_frames (recording_id, seq, offset_ms, data) VALUES (?, ?, ?, ?)`,
		id, frames, offset.Milliseconds(), string(data),
	); err != nil {
		return fmt.Errorf("insert frame: %w", err)
	}

	if _, err := tx.Exec(`UPDATE recordings SET frames = ? WHERE id = ?`, frames+1, id); err != nil {
		return err
	}

	return tx.Commit()
}

// Frames returns the stored frames of a recording in capture order.
func (r *RecordingRepository) Frames(id string) ([]RecordingFrame, error) {
	if _, err := r.Get(id); err != nil {
		return nil, err
	}

	rows, err := r.db.Query(
		`SELECT seq, offset_ms, data FROM recording_frames
		 WHERE recording_id = ?
		 ORDER BY seq`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var frames []RecordingFrame
	for rows.Next() {
		var f RecordingFrame
		var offsetMS int64
		var data string
		if err := rows.Scan(&f.Seq, &offsetMS, &data); err != nil {
			return nil, err
		}
		f.Offset = time.Duration(offsetMS) * time.Millisecond
		f.Data = json.RawMessage(data)
		frames = append(frames, f)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return frames, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecording(row rowScanner) (*Recording, error) {
	rec := &Recording{}
	var stoppedAt sql.NullTime
	if err := row.Scan(&rec.ID, &rec.Name, &rec.StartedAt, &stoppedAt, &rec.Frames); err != nil {
		return nil, err
	}
	if stoppedAt.Valid {
		t := stoppedAt.Time
		rec.StoppedAt = &t
	}
	return rec, nil
}
