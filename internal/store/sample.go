package store

import (
	"database/sql"
	"time"
)

// Sample is one processed frame of a session.
type Sample struct {
	SessionID  string    `json:"session_id"`
	Seq        int64     `json:"seq"`
	CapturedAt time.Time `json:"captured_at"`
	Detected   bool      `json:"detected"`
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	Z          float64   `json:"z"`
	RefX       float64   `json:"ref_x"`
	RefY       float64   `json:"ref_y"`
	DistanceCM float64   `json:"distance_cm"`
	LatencyUS  int64     `json:"latency_us"`
}

// SampleRepository provides access to session samples.
type SampleRepository struct {
	db *sql.DB
}

// Samples returns the sample repository for this store.
func (s *Store) Samples() *SampleRepository {
	return &SampleRepository{db: s.db}
}

// Append inserts samples in a single transaction.
func (r *SampleRepository) Append(samples []Sample) error {
	if len(samples) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO samples (session_id, seq, captured_at, detected, x, y, z, ref_x, ref_y, distance_cm, latency_us)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range samples {
		_, err := stmt.Exec(s.SessionID, s.Seq, s.CapturedAt, s.Detected,
			s.X, s.Y, s.Z, s.RefX, s.RefY, s.DistanceCM, s.LatencyUS)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// List returns a session's samples in capture order.
func (r *SampleRepository) List(sessionID string) ([]Sample, error) {
	rows, err := r.db.Query(
		`SELECT session_id, seq, captured_at, detected, x, y, z, ref_x, ref_y, distance_cm, latency_us
		 FROM samples
		 WHERE session_id = ?
		 ORDER BY seq`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		var s Sample
		err := rows.Scan(&s.SessionID, &s.Seq, &s.CapturedAt, &s.Detected,
			&s.X, &s.Y, &s.Z, &s.RefX, &s.RefY, &s.DistanceCM, &s.LatencyUS)
		if err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return samples, nil
}

// Count returns the number of samples stored for a session.
func (r *SampleRepository) Count(sessionID string) (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM samples WHERE session_id = ?`, sessionID).Scan(&n)
	return n, err
}
