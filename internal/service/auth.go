// Package service holds the auth/session layer between the web API and the
// Plex client.
package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/pokerjest/trackAutoTool/internal/plex"
)

// Session is the per-token state, most importantly the media server the user
// selected. Sessions live in memory and are lost on restart by design.
type Session struct {
	Token           string
	User            plex.User
	AdminToken      string
	ServerURL       string
	ServerName      string
	ServerMachineID string
	IsManagedUser   bool
}

// SessionStore is an in-memory session map keyed by session ID.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

func (s *SessionStore) Create(sessionID string, session *Session) {
	s.mu.Lock()
	s.sessions[sessionID] = session
	s.mu.Unlock()
}

// Get returns a copy of the session so callers cannot race with updates.
func (s *SessionStore) Get(sessionID string) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return Session{}, false
	}
	return *session, true
}

// UpdateServer records the selected media server on an existing session.
func (s *SessionStore) UpdateServer(sessionID, serverURL, serverName, machineID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return false
	}
	session.ServerURL = serverURL
	session.ServerName = serverName
	session.ServerMachineID = machineID
	return true
}

func (s *SessionStore) Delete(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return false
	}
	delete(s.sessions, sessionID)
	return true
}

func (s *SessionStore) Clear() {
	s.mu.Lock()
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()
}

// PinInfo is what the frontend needs to drive the OAuth PIN flow.
type PinInfo struct {
	PinID     int    `json:"pin_id"`
	Code      string `json:"code"`
	AuthURL   string `json:"auth_url"`
	ExpiresIn int    `json:"expires_in"`
}

// AuthService handles login flows and session management.
type AuthService struct {
	client   *plex.Client
	sessions *SessionStore
	secret   string
	clientID string
}

func NewAuthService(client *plex.Client, sessions *SessionStore, secret, clientID string) *AuthService {
	return &AuthService{
		client:   client,
		sessions: sessions,
		secret:   secret,
		clientID: clientID,
	}
}

// sessionID derives a stable session key from the token without storing the
// raw token as a map key.
func (a *AuthService) sessionID(token string) string {
	sum := sha256.Sum256([]byte(token + a.secret))
	return hex.EncodeToString(sum[:])[:32]
}

// CreatePin starts the OAuth PIN flow and returns the URL the user opens to
// approve it.
func (a *AuthService) CreatePin() (*PinInfo, error) {
	pin, err := a.client.CreatePin()
	if err != nil {
		return nil, err
	}

	authURL := fmt.Sprintf(
		"https://app.plex.tv/auth#?clientID=%s&code=%s&context%%5Bdevice%%5D%%5Bproduct%%5D=%s",
		a.clientID, pin.Code, plex.Product,
	)

	return &PinInfo{
		PinID:     pin.ID,
		Code:      pin.Code,
		AuthURL:   authURL,
		ExpiresIn: pin.ExpiresIn,
	}, nil
}

// CheckPin reports whether the PIN has been approved and the token if so.
func (a *AuthService) CheckPin(pinID int, code string) (bool, string, error) {
	pin, err := a.client.CheckPin(pinID, code)
	if err != nil {
		return false, "", err
	}
	return pin.AuthToken != "", pin.AuthToken, nil
}

// LoginWithToken validates a token (from the PIN flow or manual entry) and
// creates a session for it.
func (a *AuthService) LoginWithToken(token string) (Session, error) {
	user, err := a.client.GetUser(token)
	if err != nil {
		return Session{}, err
	}

	session := &Session{Token: token, User: *user}
	a.sessions.Create(a.sessionID(token), session)
	return *session, nil
}

// ValidateToken checks a token against plex.tv and returns the user.
func (a *AuthService) ValidateToken(token string) (*plex.User, error) {
	return a.client.GetUser(token)
}

// GetSession returns the session for a token, if any.
func (a *AuthService) GetSession(token string) (Session, bool) {
	return a.sessions.Get(a.sessionID(token))
}

// GetOrCreateSession returns the existing session or registers a fresh one
// for an already-validated user.
func (a *AuthService) GetOrCreateSession(token string, user plex.User) Session {
	if session, ok := a.GetSession(token); ok {
		return session
	}
	session := &Session{Token: token, User: user}
	a.sessions.Create(a.sessionID(token), session)
	return *session
}

// HomeUsers lists the managed users of the account.
func (a *AuthService) HomeUsers(token string) ([]plex.HomeUser, error) {
	return a.client.GetHomeUsers(token)
}

// SwitchUser switches to a managed user and opens a session for the new
// token, keeping the admin token around for switching back.
func (a *AuthService) SwitchUser(adminToken, userUUID, pin string) (Session, error) {
	newToken, err := a.client.SwitchHomeUser(adminToken, userUUID, pin)
	if err != nil {
		return Session{}, err
	}
	if newToken == "" {
		return Session{}, &plex.AuthError{Message: "failed to get token for switched user"}
	}

	user, err := a.client.GetUser(newToken)
	if err != nil {
		return Session{}, err
	}

	session := &Session{
		Token:         newToken,
		User:          *user,
		AdminToken:    adminToken,
		IsManagedUser: true,
	}
	a.sessions.Create(a.sessionID(newToken), session)
	return *session, nil
}

// Logout drops the session. Returns false when there was none.
func (a *AuthService) Logout(token string) bool {
	return a.sessions.Delete(a.sessionID(token))
}

// UpdateSessionServer stores the selected server on the token's session.
func (a *AuthService) UpdateSessionServer(token, serverURL, serverName, machineID string) bool {
	return a.sessions.UpdateServer(a.sessionID(token), serverURL, serverName, machineID)
}
