package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ramitgoyal/zensync/internal/models"
)

// SessionStore handles committed session records, the per-day accumulated
// time map, and the active-session slot.
type SessionStore struct {
	db *DB
}

func NewSessionStore(db *DB) *SessionStore {
	return &SessionStore{db: db}
}

// AppendRecord commits a finished session and adds its duration to the
// daily time map in the same transaction, so a crash between the two writes
// cannot leave them disagreeing.
func (s *SessionStore) AppendRecord(rec *models.SessionRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO sessions (id, subject, session_type, duration, goal_duration, session_date)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Subject, string(rec.Type), rec.Duration, rec.GoalDuration, rec.Date)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO daily_time (session_date, seconds) VALUES (?, ?)
		ON CONFLICT(session_date) DO UPDATE SET seconds = seconds + excluded.seconds
	`, rec.Date, rec.Duration)
	if err != nil {
		return fmt.Errorf("bump daily time: %w", err)
	}

	return tx.Commit()
}

// ListRecords returns records newest first, optionally filtered by session
// type and a case-insensitive subject substring.
func (s *SessionStore) ListRecords(sessionType models.SessionType, subjectQuery string) ([]*models.SessionRecord, error) {
	query := `SELECT id, subject, session_type, duration, goal_duration, session_date FROM sessions`
	var conds []string
	var args []any
	if sessionType != "" {
		conds = append(conds, "session_type = ?")
		args = append(args, string(sessionType))
	}
	if subjectQuery != "" {
		conds = append(conds, "LOWER(subject) LIKE ?")
		args = append(args, "%"+strings.ToLower(subjectQuery)+"%")
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var records []*models.SessionRecord
	for rows.Next() {
		var rec models.SessionRecord
		var goal sql.NullInt64
		if err := rows.Scan(&rec.ID, &rec.Subject, &rec.Type, &rec.Duration, &goal, &rec.Date); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if goal.Valid {
			g := int(goal.Int64)
			rec.GoalDuration = &g
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// DeleteRecord removes one record by ID. The daily time map is deliberately
// not decremented; it only ever shrinks via Wipe.
func (s *SessionStore) DeleteRecord(id int64) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DailyTime returns the full date → seconds map.
func (s *SessionStore) DailyTime() (models.DailyTimeMap, error) {
	rows, err := s.db.Query(`SELECT session_date, seconds FROM daily_time`)
	if err != nil {
		return nil, fmt.Errorf("query daily time: %w", err)
	}
	defer rows.Close()

	m := models.DailyTimeMap{}
	for rows.Next() {
		var date string
		var seconds int
		if err := rows.Scan(&date, &seconds); err != nil {
			return nil, fmt.Errorf("scan daily time: %w", err)
		}
		m[date] = seconds
	}
	return m, rows.Err()
}

// SaveActive persists the active-session slot. Exactly one row exists; a
// second start must be rejected by the controller before reaching here.
func (s *SessionStore) SaveActive(a *models.ActiveSession) error {
	state, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal active session: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO active_session (slot, state) VALUES (1, ?)
		ON CONFLICT(slot) DO UPDATE SET state = excluded.state
	`, string(state))
	if err != nil {
		return fmt.Errorf("save active session: %w", err)
	}
	return nil
}

// LoadActive returns the persisted slot, or nil when absent. Malformed
// state is treated as absent rather than failing startup.
func (s *SessionStore) LoadActive() (*models.ActiveSession, error) {
	var state string
	err := s.db.QueryRow(`SELECT state FROM active_session WHERE slot = 1`).Scan(&state)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load active session: %w", err)
	}
	var a models.ActiveSession
	if err := json.Unmarshal([]byte(state), &a); err != nil {
		return nil, nil
	}
	return &a, nil
}

// ClearActive empties the slot.
func (s *SessionStore) ClearActive() error {
	if _, err := s.db.Exec(`DELETE FROM active_session WHERE slot = 1`); err != nil {
		return fmt.Errorf("clear active session: %w", err)
	}
	return nil
}

// ReplaceAll swaps in a full set of records and daily times atomically.
// Used by import; existing study data is discarded.
func (s *SessionStore) ReplaceAll(records []*models.SessionRecord, daily models.DailyTimeMap) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM sessions`); err != nil {
		return fmt.Errorf("clear sessions: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM daily_time`); err != nil {
		return fmt.Errorf("clear daily time: %w", err)
	}

	for _, rec := range records {
		_, err := tx.Exec(`
			INSERT INTO sessions (id, subject, session_type, duration, goal_duration, session_date)
			VALUES (?, ?, ?, ?, ?, ?)
		`, rec.ID, rec.Subject, string(rec.Type), rec.Duration, rec.GoalDuration, rec.Date)
		if err != nil {
			return fmt.Errorf("insert session %d: %w", rec.ID, err)
		}
	}
	for date, seconds := range daily {
		if _, err := tx.Exec(`INSERT INTO daily_time (session_date, seconds) VALUES (?, ?)`, date, seconds); err != nil {
			return fmt.Errorf("insert daily time %s: %w", date, err)
		}
	}

	return tx.Commit()
}

// Wipe deletes all study data: records, daily times, and the active slot.
func (s *SessionStore) Wipe() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM sessions`,
		`DELETE FROM daily_time`,
		`DELETE FROM active_session`,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("wipe: %w", err)
		}
	}
	return tx.Commit()
}
