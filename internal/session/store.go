package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/isdelr/marketfront/internal/api"
	"github.com/isdelr/marketfront/internal/models"
	"github.com/rs/zerolog/log"
)

// storageKey is the well-known key the session record is persisted under.
const storageKey = "current_session"

// Store holds the current authenticated user. At most one session is active
// at a time; every mutation updates the in-memory copy and the persisted
// copy together.
type Store struct {
	mu      sync.Mutex
	db      *sql.DB
	api     *api.Client
	current *models.Session
}

// NewStore creates a session store backed by the local state database.
func NewStore(db *sql.DB, apiClient *api.Client) *Store {
	return &Store{db: db, api: apiClient}
}

// Restore adopts the persisted session, if any, as the current user. A
// missing, corrupt, or expired record means starting signed out; it is
// never an error.
func (s *Store) Restore() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var payload string
	err := s.db.QueryRow("SELECT payload FROM session WHERE key = ?", storageKey).Scan(&payload)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Warn().Err(err).Msg("Failed to read persisted session")
		}
		return
	}

	var sess models.Session
	if err := json.Unmarshal([]byte(payload), &sess); err != nil || sess.User.ID == "" {
		log.Warn().Msg("Discarding unreadable persisted session")
		s.clearPersisted()
		return
	}

	if sess.Token != "" && tokenExpired(sess.Token) {
		log.Info().Str("user_id", sess.User.ID).Msg("Persisted session expired, starting signed out")
		s.clearPersisted()
		return
	}

	s.current = &sess
	s.api.SetToken(sess.Token)
	log.Info().Str("user_id", sess.User.ID).Msg("Session restored")
}

// Login authenticates against the API and adopts the returned user as the
// current session.
func (s *Store) Login(ctx context.Context, email, password string) (models.Session, error) {
	body, err := s.api.Post(ctx, "/auth/login", models.Credentials{Email: email, Password: password})
	if err != nil {
		return models.Session{}, err
	}

	var resp models.AuthResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.Session{}, fmt.Errorf("failed to decode login response: %w", err)
	}
	if resp.User == nil {
		return models.Session{}, fmt.Errorf("login response carried no user")
	}

	sess := models.Session{User: *resp.User, Token: resp.Token}
	s.adopt(sess)
	return sess, nil
}

// Signup registers a new account. When the response carries a user it is
// adopted as the current session; otherwise the caller logs in explicitly.
func (s *Store) Signup(ctx context.Context, name, email, phone, password string) (*models.Session, error) {
	body, err := s.api.Post(ctx, "/auth/signup", models.SignupRequest{
		Name:     name,
		Email:    email,
		Phone:    phone,
		Password: password,
	})
	if err != nil {
		return nil, err
	}

	var resp models.AuthResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.User == nil {
		return nil, nil
	}

	sess := models.Session{User: *resp.User, Token: resp.Token}
	s.adopt(sess)
	return &sess, nil
}

// Logout clears the current user and its persisted copy.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.api.SetToken("")
	s.clearPersisted()
}

// Current returns a snapshot of the active session, or nil when signed out.
func (s *Store) Current() *models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	snapshot := *s.current
	return &snapshot
}

func (s *Store) adopt(sess models.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = &sess
	s.api.SetToken(sess.Token)
	s.persist(sess)
}

func (s *Store) persist(sess models.Session) {
	payload, err := json.Marshal(sess)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to encode session for persistence")
		return
	}
	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO session(key, payload, updated_at) VALUES(?, ?, CURRENT_TIMESTAMP)",
		storageKey, string(payload),
	)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to persist session")
	}
}

func (s *Store) clearPersisted() {
	if _, err := s.db.Exec("DELETE FROM session WHERE key = ?", storageKey); err != nil {
		log.Warn().Err(err).Msg("Failed to clear persisted session")
	}
}

// tokenExpired reports whether the token's exp claim is in the past. The
// signature is the backend's to verify; the client only reads the expiry.
func tokenExpired(tokenStr string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
