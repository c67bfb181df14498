// Package session owns the single active-session slot. All mutation goes
// through Start/Pause/Resume/End; nothing else may touch the slot. Every
// mutation is persisted synchronously, so killing the process mid-session
// loses nothing — elapsed time reconstructs from StartTime and
// PausedSeconds alone.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ramitgoyal/zensync/internal/models"
)

// Contract violations. Callers invoking lifecycle operations out of order
// get these back loudly instead of having the call swallowed.
var (
	ErrSessionActive   = errors.New("a session is already active")
	ErrNoActiveSession = errors.New("no active session")
	ErrAlreadyPaused   = errors.New("session is already paused")
	ErrNotPaused       = errors.New("session is not paused")
	ErrInvalidSession  = errors.New("invalid session parameters")
)

// Store is the persistence the controller needs. *store.SessionStore
// satisfies it.
type Store interface {
	SaveActive(*models.ActiveSession) error
	LoadActive() (*models.ActiveSession, error)
	ClearActive() error
	AppendRecord(*models.SessionRecord) error
}

// Controller tracks one active, possibly paused study timer.
//
// The mutex makes the check-and-set on the slot atomic: concurrent HTTP
// requests must not be able to break the at-most-one-active-session
// invariant.
type Controller struct {
	mu     sync.Mutex
	store  Store
	active *models.ActiveSession
	logger *slog.Logger
	now    func() time.Time
}

// NewController builds a controller, reloading any persisted slot so a
// relaunched process resumes the running timer.
func NewController(store Store, logger *slog.Logger) (*Controller, error) {
	active, err := store.LoadActive()
	if err != nil {
		return nil, fmt.Errorf("load active session: %w", err)
	}
	if active != nil {
		logger.Info("resumed active session", "subject", active.Subject, "paused", active.IsPaused)
	}
	return &Controller{
		store:  store,
		active: active,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Start begins a new session. Fails with ErrSessionActive if one is already
// running, leaving the existing slot untouched.
func (c *Controller) Start(subject string, sessionType models.SessionType, goalMinutes *int) (*models.ActiveSession, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" || !sessionType.IsValid() {
		return nil, ErrInvalidSession
	}
	if goalMinutes != nil && *goalMinutes <= 0 {
		return nil, ErrInvalidSession
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil {
		return nil, ErrSessionActive
	}

	a := &models.ActiveSession{
		Subject:     subject,
		Type:        sessionType,
		GoalMinutes: goalMinutes,
		StartTime:   c.now(),
	}
	if err := c.store.SaveActive(a); err != nil {
		return nil, err
	}
	c.active = a
	c.logger.Info("session started", "subject", subject, "type", sessionType)
	return snapshot(a), nil
}

// Pause freezes the timer, recording when the pause began.
func (c *Controller) Pause() (*models.ActiveSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		return nil, ErrNoActiveSession
	}
	if c.active.IsPaused {
		return nil, ErrAlreadyPaused
	}

	t := c.now()
	c.active.IsPaused = true
	c.active.LastPauseTime = &t
	if err := c.store.SaveActive(c.active); err != nil {
		return nil, err
	}
	return snapshot(c.active), nil
}

// Resume unfreezes the timer, folding the pause interval into
// PausedSeconds so elapsed time stays correct.
func (c *Controller) Resume() (*models.ActiveSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		return nil, ErrNoActiveSession
	}
	if !c.active.IsPaused {
		return nil, ErrNotPaused
	}

	if c.active.LastPauseTime != nil {
		c.active.PausedSeconds += int(c.now().Sub(*c.active.LastPauseTime).Seconds())
	}
	c.active.IsPaused = false
	c.active.LastPauseTime = nil
	if err := c.store.SaveActive(c.active); err != nil {
		return nil, err
	}
	return snapshot(c.active), nil
}

// End commits the session: appends an immutable record dated today, adds
// the elapsed seconds to the daily time map (the store does both in one
// transaction), and clears the slot.
func (c *Controller) End() (*models.SessionRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		return nil, ErrNoActiveSession
	}

	now := c.now()
	rec := &models.SessionRecord{
		ID:       now.UnixMilli(),
		Subject:  c.active.Subject,
		Type:     c.active.Type,
		Duration: c.active.Elapsed(now),
		Date:     now.Format(models.DateLayout),
	}
	if c.active.GoalMinutes != nil {
		goal := *c.active.GoalMinutes * 60
		rec.GoalDuration = &goal
	}

	if err := c.store.AppendRecord(rec); err != nil {
		return nil, fmt.Errorf("commit session: %w", err)
	}
	if err := c.store.ClearActive(); err != nil {
		return nil, fmt.Errorf("clear active session: %w", err)
	}
	c.active = nil
	c.logger.Info("session ended", "subject", rec.Subject, "duration_sec", rec.Duration)
	return rec, nil
}

// Active returns a copy of the current slot and its elapsed seconds, or
// nil when no session is running.
func (c *Controller) Active() (*models.ActiveSession, int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		return nil, 0
	}
	return snapshot(c.active), c.active.Elapsed(c.now())
}

// snapshot copies the slot so callers cannot mutate controller state behind
// the lock's back.
func snapshot(a *models.ActiveSession) *models.ActiveSession {
	cp := *a
	return &cp
}
