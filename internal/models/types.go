package models

// RegisterRequest is the payload for POST /api/v1/auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the payload for POST /api/v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned from register and login. The token is also set
// as an httpOnly cookie; the body copy exists for non-browser clients.
type AuthResponse struct {
	User        *User  `json:"user"`
	AccessToken string `json:"accessToken"`
}

// StartSessionRequest is the payload for POST /api/v1/sessions/start.
type StartSessionRequest struct {
	Subject     string      `json:"subject"`
	Type        SessionType `json:"type"`
	GoalMinutes *int        `json:"goalMinutes,omitempty"`
}

// ActiveSessionResponse is the current slot plus its computed elapsed time.
type ActiveSessionResponse struct {
	Session *ActiveSession `json:"session"`
	Elapsed int            `json:"elapsed"` // seconds
}

// EndSessionResponse is returned from POST /api/v1/sessions/end.
type EndSessionResponse struct {
	Record  *SessionRecord `json:"record"`
	Elapsed int            `json:"elapsed"` // seconds
}

// ListSessionsResponse is returned from GET /api/v1/sessions.
type ListSessionsResponse struct {
	Sessions []*SessionRecord `json:"sessions"`
	Total    int              `json:"total"`
}

// HealthResponse reports server and database status.
type HealthResponse struct {
	Status       string `json:"status"`
	DB           string `json:"db"`
	SessionCount int    `json:"sessionCount"`
}
