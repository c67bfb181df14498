package models

import "time"

// SessionType classifies what kind of work a study session was.
type SessionType string

const (
	SessionTypeStudy    SessionType = "Study"
	SessionTypeReview   SessionType = "Review"
	SessionTypePractice SessionType = "Practice"
	SessionTypeProject  SessionType = "Project"
)

var ValidSessionTypes = map[SessionType]bool{
	SessionTypeStudy:    true,
	SessionTypeReview:   true,
	SessionTypePractice: true,
	SessionTypeProject:  true,
}

func (t SessionType) IsValid() bool {
	return ValidSessionTypes[t]
}

// DateLayout is the only calendar-date form the store accepts. Every record
// date and every daily-time key is produced by this layout so date grouping
// and streak scans never straddle a time-of-day boundary.
const DateLayout = "2006-01-02"

// SessionRecord is one completed, immutable study session.
// ID is the unix-millisecond timestamp at commit time.
type SessionRecord struct {
	ID           int64       `json:"id"`
	Subject      string      `json:"subject"`
	Type         SessionType `json:"type"`
	Duration     int         `json:"duration"` // seconds
	GoalDuration *int        `json:"goalDuration,omitempty"`
	Date         string      `json:"date"` // YYYY-MM-DD
}

// ActiveSession is the singleton slot for the in-progress timer. It holds
// everything needed to reconstruct elapsed time after a process restart:
// elapsed = floor(now - StartTime) - PausedSeconds, frozen at LastPauseTime
// while paused.
type ActiveSession struct {
	Subject       string      `json:"subject"`
	Type          SessionType `json:"type"`
	GoalMinutes   *int        `json:"goalMinutes,omitempty"`
	StartTime     time.Time   `json:"startTime"`
	IsPaused      bool        `json:"isPaused"`
	PausedSeconds int         `json:"pausedSeconds"`
	LastPauseTime *time.Time  `json:"lastPauseTime,omitempty"`
}

// Elapsed returns whole seconds of study time as of now, excluding paused
// time. While paused the value is frozen at the moment the pause began.
// Never negative.
func (a *ActiveSession) Elapsed(now time.Time) int {
	end := now
	if a.IsPaused && a.LastPauseTime != nil {
		end = *a.LastPauseTime
	}
	elapsed := int(end.Sub(a.StartTime).Seconds()) - a.PausedSeconds
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// DailyTimeMap accumulates committed seconds per calendar date.
type DailyTimeMap map[string]int
