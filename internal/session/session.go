// Package session keeps the signed in user and token pair, persisted
// between runs under the hrms_user and hrms_session keys.
package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hrmspro/hrms/internal/apiclient"
	"github.com/hrmspro/hrms/pkg/logger"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	KeyUser    = "hrms_user"
	KeySession = "hrms_session"

	// RoleAdmin is the only role the auth service hands out today.
	RoleAdmin = "Admin"
)

type State string

const (
	StateLoading         State = "loading"
	StateAuthenticated   State = "authenticated"
	StateUnauthenticated State = "unauthenticated"
)

// User is the normalized profile shown by the client.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	FullName  string `json:"full_name"`
	Role      string `json:"role"`
	Avatar    string `json:"avatar"`
	LoginTime string `json:"login_time,omitempty"`
}

// Result is how login and signup report back. Failures carry the
// message to show instead of an error.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type Store struct {
	api     apiclient.AuthAPI
	storage Storage
	logger  *slog.Logger
	now     func() time.Time

	mu        sync.RWMutex
	loading   bool
	user      *User
	session   *apiclient.Session
	listeners []func(State)

	initOnce sync.Once
}

func NewStore(api apiclient.AuthAPI, storage Storage, lg *slog.Logger) *Store {
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	if storage == nil {
		storage = NewMemoryStorage()
	}
	return &Store{
		api:     api,
		storage: storage,
		logger:  lg,
		now:     time.Now,
		loading: true,
	}
}

// Subscribe registers fn to be called after every state change.
func (s *Store) Subscribe(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

func (s *Store) stateLocked() State {
	switch {
	case s.loading:
		return StateLoading
	case s.user != nil:
		return StateAuthenticated
	default:
		return StateUnauthenticated
	}
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// AccessToken makes the store the API client's token source.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return ""
	}
	return s.session.AccessToken
}

// Init restores the persisted session. A stored token pair is refreshed;
// when that fails the cached user is kept as is. Only the first call does
// anything.
func (s *Store) Init(ctx context.Context) State {
	s.initOnce.Do(func() {
		s.restore(ctx)

		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
		s.notify()
	})
	return s.State()
}

func (s *Store) restore(ctx context.Context) {
	raw, ok, err := s.storage.Get(KeySession)
	if err != nil {
		s.logger.Warn("failed to read stored session", "error", err)
		return
	}

	if !ok {
		s.useCachedUser()
		return
	}

	var stored apiclient.Session
	if err := json.Unmarshal(raw, &stored); err != nil {
		s.logger.Warn("stored session is unreadable", "error", err)
		return
	}

	if s.refresh(ctx, stored.RefreshToken) {
		return
	}
	s.useCachedUser()
}

func (s *Store) useCachedUser() {
	raw, ok, err := s.storage.Get(KeyUser)
	if err != nil || !ok {
		return
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		s.logger.Warn("cached user is unreadable", "error", err)
		return
	}

	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
}

func (s *Store) refresh(ctx context.Context, refreshToken string) bool {
	if s.api == nil {
		return false
	}
	res, err := s.api.Refresh(ctx, refreshToken)
	if err != nil {
		s.logger.Debug("session refresh failed", "error", err)
		return false
	}

	u := normalize(res.User, res.User.FullName, res.User.Email, "")
	s.setUser(&u)
	if res.Session != nil {
		s.setSession(res.Session)
	}
	return true
}

func (s *Store) Login(ctx context.Context, email, password string) Result {
	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		return Result{Error: apiclient.ServerMessage(err, "Login failed")}
	}

	u := normalize(res.User, res.User.FullName, email, s.now().UTC().Format(time.RFC3339))
	s.setUser(&u)
	if res.Session != nil {
		s.setSession(res.Session)
	}
	s.notify()
	return Result{Success: true}
}

func (s *Store) Signup(ctx context.Context, fullName, email, password string) Result {
	res, err := s.api.Signup(ctx, fullName, email, password)
	if err != nil {
		return Result{Error: apiclient.ServerMessage(err, "Sign up failed")}
	}

	u := normalize(res.User, fullName, email, s.now().UTC().Format(time.RFC3339))
	s.setUser(&u)
	if res.Session != nil {
		s.setSession(res.Session)
	}
	s.notify()
	return Result{Success: true}
}

// Logout forgets the user locally. The tokens simply expire server side.
func (s *Store) Logout() error {
	s.mu.Lock()
	s.user = nil
	s.session = nil
	s.mu.Unlock()

	err := s.storage.Remove(KeyUser, KeySession)
	s.notify()
	return err
}

func (s *Store) setUser(u *User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()

	if b, err := json.Marshal(u); err == nil {
		if err := s.storage.Set(KeyUser, b); err != nil {
			s.logger.Warn("failed to persist user", "error", err)
		}
	}
}

func (s *Store) setSession(sess *apiclient.Session) {
	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()

	if b, err := json.Marshal(sess); err == nil {
		if err := s.storage.Set(KeySession, b); err != nil {
			s.logger.Warn("failed to persist session", "error", err)
		}
	}
}

func (s *Store) notify() {
	s.mu.RLock()
	state := s.stateLocked()
	listeners := append([]func(State){}, s.listeners...)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(state)
	}
}

var upper = cases.Upper(language.Und)

// normalize builds the display profile. The name falls back to the local
// part of the email and the avatar is the first letter of either.
func normalize(u apiclient.User, fullName, email, loginTime string) User {
	email = strings.TrimSpace(email)
	name := fullName
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}

	source := fullName
	if source == "" {
		source = email
	}
	avatar := ""
	for _, r := range source {
		avatar = upper.String(string(r))
		break
	}

	return User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      name,
		FullName:  fullName,
		Role:      RoleAdmin,
		Avatar:    avatar,
		LoginTime: loginTime,
	}
}
