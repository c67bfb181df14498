package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/ramitgoyal/zensync/internal/models"
)

// ErrEmailTaken is returned when registering an email that already exists.
var ErrEmailTaken = errors.New("email already registered")

// UserStore handles user CRUD on SQLite.
type UserStore struct {
	db *DB
}

func NewUserStore(db *DB) *UserStore {
	return &UserStore{db: db}
}

// Create inserts a new user. Email is stored lowercased; a duplicate email
// returns ErrEmailTaken.
func (s *UserStore) Create(name, email, passwordHash string) (*models.User, error) {
	now := time.Now().Unix()
	u := &models.User{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(name),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := s.db.Exec(`
		INSERT INTO users (id, name, email, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// GetByEmail fetches a user by email (case-insensitive). Returns nil when
// no user exists.
func (s *UserStore) GetByEmail(email string) (*models.User, error) {
	return s.get(`SELECT id, name, email, password_hash, created_at, updated_at
		FROM users WHERE email = ?`, strings.ToLower(strings.TrimSpace(email)))
}

// GetByID fetches a user by ID. Returns nil when no user exists.
func (s *UserStore) GetByID(id string) (*models.User, error) {
	return s.get(`SELECT id, name, email, password_hash, created_at, updated_at
		FROM users WHERE id = ?`, id)
}

func (s *UserStore) get(query string, arg any) (*models.User, error) {
	var u models.User
	err := s.db.QueryRow(query, arg).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}
