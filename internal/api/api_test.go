package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ramitgoyal/zensync/internal/auth"
	"github.com/ramitgoyal/zensync/internal/models"
	"github.com/ramitgoyal/zensync/internal/session"
	"github.com/ramitgoyal/zensync/internal/store"
)

func setupRouter(t *testing.T) *chi.Mux {
	t.Helper()

	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessionStore := store.NewSessionStore(db)
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	authSvc := auth.NewService(store.NewUserStore(db), tokens, logger)
	controller, err := session.NewController(sessionStore, logger)
	if err != nil {
		t.Fatalf("controller: %v", err)
	}

	return NewRouter(db, sessionStore, controller, authSvc, tokens, "http://localhost:5173", false, logger)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func tokenCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == AccessTokenCookie {
			return c
		}
	}
	t.Fatal("expected accessToken cookie")
	return nil
}

func register(t *testing.T, router http.Handler) *http.Cookie {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", models.RegisterRequest{
		Name: "Ramit", Email: "ramit@example.com", Password: "secret123",
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	return tokenCookie(t, w)
}

func TestAuthEndpoints(t *testing.T) {
	router := setupRouter(t)

	t.Run("register sets cookie and strips password", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", models.RegisterRequest{
			Name: "Ramit", Email: "ramit@example.com", Password: "secret123",
		}, nil)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}

		cookie := tokenCookie(t, w)
		if !cookie.HttpOnly {
			t.Error("expected httpOnly cookie")
		}

		var resp models.AuthResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.AccessToken == "" || resp.User == nil {
			t.Fatalf("expected user and token, got %s", w.Body.String())
		}
		if bytes.Contains(w.Body.Bytes(), []byte("password")) {
			t.Error("response must not contain password material")
		}
	})

	t.Run("register missing field is 400", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", models.RegisterRequest{
			Name: "NoEmail", Password: "secret123",
		}, nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("duplicate email is 409", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", models.RegisterRequest{
			Name: "Again", Email: "ramit@example.com", Password: "secret123",
		}, nil)
		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
	})

	t.Run("login status codes", func(t *testing.T) {
		cases := []struct {
			name string
			req  models.LoginRequest
			want int
		}{
			{"ok", models.LoginRequest{Email: "ramit@example.com", Password: "secret123"}, http.StatusOK},
			{"missing password", models.LoginRequest{Email: "ramit@example.com"}, http.StatusBadRequest},
			{"unknown user", models.LoginRequest{Email: "nobody@example.com", Password: "secret123"}, http.StatusNotFound},
			{"bad password", models.LoginRequest{Email: "ramit@example.com", Password: "wrong"}, http.StatusUnauthorized},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				w := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", tc.req, nil)
				if w.Code != tc.want {
					t.Fatalf("expected %d, got %d: %s", tc.want, w.Code, w.Body.String())
				}
			})
		}
	})

	t.Run("current-user requires token", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/auth/current-user", nil, nil)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}

		login := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", models.LoginRequest{
			Email: "ramit@example.com", Password: "secret123",
		}, nil)
		w = doJSON(t, router, http.MethodGet, "/api/v1/auth/current-user", nil, tokenCookie(t, login))
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("logout clears cookie", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/auth/logout", nil, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		cookie := tokenCookie(t, w)
		if cookie.Value != "" || cookie.MaxAge >= 0 {
			t.Fatalf("expected expired empty cookie, got %+v", cookie)
		}
	})
}

func TestSessionEndpoints(t *testing.T) {
	router := setupRouter(t)
	cookie := register(t, router)

	t.Run("lifecycle over REST", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/sessions/start", models.StartSessionRequest{
			Subject: "Math", Type: models.SessionTypeStudy,
		}, cookie)
		if w.Code != http.StatusCreated {
			t.Fatalf("start: expected 201, got %d: %s", w.Code, w.Body.String())
		}

		// Second start must conflict and leave the first session alone.
		w = doJSON(t, router, http.MethodPost, "/api/v1/sessions/start", models.StartSessionRequest{
			Subject: "Physics", Type: models.SessionTypeReview,
		}, cookie)
		if w.Code != http.StatusConflict {
			t.Fatalf("second start: expected 409, got %d", w.Code)
		}

		w = doJSON(t, router, http.MethodGet, "/api/v1/sessions/active", nil, cookie)
		if w.Code != http.StatusOK {
			t.Fatalf("active: expected 200, got %d", w.Code)
		}
		var active models.ActiveSessionResponse
		_ = json.Unmarshal(w.Body.Bytes(), &active)
		if active.Session == nil || active.Session.Subject != "Math" {
			t.Fatalf("expected original session intact, got %s", w.Body.String())
		}

		if w = doJSON(t, router, http.MethodPost, "/api/v1/sessions/pause", nil, cookie); w.Code != http.StatusOK {
			t.Fatalf("pause: expected 200, got %d", w.Code)
		}
		if w = doJSON(t, router, http.MethodPost, "/api/v1/sessions/pause", nil, cookie); w.Code != http.StatusConflict {
			t.Fatalf("double pause: expected 409, got %d", w.Code)
		}
		if w = doJSON(t, router, http.MethodPost, "/api/v1/sessions/resume", nil, cookie); w.Code != http.StatusOK {
			t.Fatalf("resume: expected 200, got %d", w.Code)
		}

		w = doJSON(t, router, http.MethodPost, "/api/v1/sessions/end", nil, cookie)
		if w.Code != http.StatusOK {
			t.Fatalf("end: expected 200, got %d", w.Code)
		}
		var ended models.EndSessionResponse
		_ = json.Unmarshal(w.Body.Bytes(), &ended)
		if ended.Record == nil || ended.Record.Subject != "Math" {
			t.Fatalf("expected committed record, got %s", w.Body.String())
		}

		if w = doJSON(t, router, http.MethodGet, "/api/v1/sessions/active", nil, cookie); w.Code != http.StatusNotFound {
			t.Fatalf("active after end: expected 404, got %d", w.Code)
		}
		if w = doJSON(t, router, http.MethodPost, "/api/v1/sessions/end", nil, cookie); w.Code != http.StatusConflict {
			t.Fatalf("end without session: expected 409, got %d", w.Code)
		}
	})

	t.Run("list and delete", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/sessions/", nil, cookie)
		if w.Code != http.StatusOK {
			t.Fatalf("list: expected 200, got %d", w.Code)
		}
		var list models.ListSessionsResponse
		_ = json.Unmarshal(w.Body.Bytes(), &list)
		if list.Total != 1 {
			t.Fatalf("expected 1 record, got %d", list.Total)
		}

		w = doJSON(t, router, http.MethodDelete, "/api/v1/sessions/"+strconv.FormatInt(list.Sessions[0].ID, 10), nil, cookie)
		if w.Code != http.StatusNoContent {
			t.Fatalf("delete: expected 204, got %d", w.Code)
		}
	})

	t.Run("requires auth", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/sessions/", nil, nil)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})
}

func TestAnalyticsAndDataEndpoints(t *testing.T) {
	router := setupRouter(t)
	cookie := register(t, router)

	// Commit one session so analytics has data.
	doJSON(t, router, http.MethodPost, "/api/v1/sessions/start", models.StartSessionRequest{
		Subject: "Math", Type: models.SessionTypeStudy,
	}, cookie)
	doJSON(t, router, http.MethodPost, "/api/v1/sessions/end", nil, cookie)

	for _, path := range []string{
		"/api/v1/analytics/stats",
		"/api/v1/analytics/weekly",
		"/api/v1/analytics/monthly",
		"/api/v1/analytics/streak",
		"/api/v1/analytics/today",
	} {
		w := doJSON(t, router, http.MethodGet, path, nil, cookie)
		if w.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d: %s", path, w.Code, w.Body.String())
		}
	}

	t.Run("streak reports both variants", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/analytics/streak", nil, cookie)
		var streaks map[string]int
		_ = json.Unmarshal(w.Body.Bytes(), &streaks)
		if streaks["currentStreak"] != 1 || streaks["longestStreak"] != 1 {
			t.Fatalf("expected both streaks 1, got %+v", streaks)
		}
	})

	t.Run("export import wipe", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/data/export", nil, cookie)
		if w.Code != http.StatusOK {
			t.Fatalf("export: expected 200, got %d", w.Code)
		}
		backup := w.Body.Bytes()

		if w = doJSON(t, router, http.MethodDelete, "/api/v1/data/", nil, cookie); w.Code != http.StatusNoContent {
			t.Fatalf("wipe: expected 204, got %d", w.Code)
		}

		req := httptest.NewRequest(http.MethodPost, "/api/v1/data/import", bytes.NewReader(backup))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("import: expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		w = doJSON(t, router, http.MethodGet, "/api/v1/sessions/", nil, cookie)
		var list models.ListSessionsResponse
		_ = json.Unmarshal(w.Body.Bytes(), &list)
		if list.Total != 1 {
			t.Fatalf("expected restored record, got %d", list.Total)
		}
	})
}

func TestHealth(t *testing.T) {
	router := setupRouter(t)
	w := doJSON(t, router, http.MethodGet, "/health", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
