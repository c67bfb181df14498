// Package transfer moves the full study-data state in and out of the
// backup file format the settings page downloads and uploads.
package transfer

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ramitgoyal/zensync/internal/models"
	"github.com/ramitgoyal/zensync/internal/store"
)

// ErrEmptyBackup is returned when an import payload has nothing to restore.
var ErrEmptyBackup = errors.New("backup contains no study data")

// Backup is the transfer format. Field names match the export files older
// releases produced so old backups import cleanly. User is raw JSON: old
// exports carry a differently-shaped user object, and import never reads
// it anyway.
type Backup struct {
	User           json.RawMessage         `json:"user,omitempty"`
	Sessions       []*models.SessionRecord `json:"sessions"`
	TodayStudyTime models.DailyTimeMap     `json:"todayStudyTime"`
	ExportDate     string                  `json:"exportDate"`
}

// Export snapshots all records and the daily time map.
func Export(sessions *store.SessionStore, user *models.User) (*Backup, error) {
	records, err := sessions.ListRecords("", "")
	if err != nil {
		return nil, err
	}
	daily, err := sessions.DailyTime()
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []*models.SessionRecord{}
	}

	var rawUser json.RawMessage
	if user != nil {
		rawUser, err = json.Marshal(user)
		if err != nil {
			return nil, fmt.Errorf("marshal user: %w", err)
		}
	}

	return &Backup{
		User:           rawUser,
		Sessions:       records,
		TodayStudyTime: daily,
		ExportDate:     time.Now().Format(time.RFC3339),
	}, nil
}

// Import replaces all records and daily times with the backup's contents.
// Session dates with a time component and legacy daily keys are normalized
// to plain calendar dates; unparsable entries are dropped rather than
// failing the whole import.
func Import(sessions *store.SessionStore, b *Backup) error {
	if len(b.Sessions) == 0 && len(b.TodayStudyTime) == 0 {
		return ErrEmptyBackup
	}

	records := make([]*models.SessionRecord, 0, len(b.Sessions))
	for _, rec := range b.Sessions {
		date, ok := normalizeDate(rec.Date)
		if !ok {
			continue
		}
		cp := *rec
		cp.Date = date
		records = append(records, &cp)
	}

	daily := models.DailyTimeMap{}
	for key, seconds := range b.TodayStudyTime {
		date, ok := normalizeDate(key)
		if !ok {
			continue
		}
		daily[date] += seconds
	}

	return sessions.ReplaceAll(records, daily)
}

// legacyLayouts are date forms older exports used: ISO timestamps from
// toISOString and the toDateString form the dashboard once keyed the daily
// map with.
var legacyLayouts = []string{
	"2006-01-02T15:04:05.000Z07:00",
	time.RFC3339,
	"Mon Jan 02 2006",
	"Mon Jan 2 2006",
}

func normalizeDate(s string) (string, bool) {
	if _, err := time.Parse(models.DateLayout, s); err == nil {
		return s, true
	}
	for _, layout := range legacyLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(models.DateLayout), true
		}
	}
	return "", false
}
