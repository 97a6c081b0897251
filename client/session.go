package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/snackbasket/storefront-api/verify"
)

// SessionTTL bounds how long a verified session stays valid without a fresh
// login.
const SessionTTL = 24 * time.Hour

// State is the auth lifecycle position: anonymous until a code is requested,
// verifying until it is confirmed, authenticated after.
type State string

const (
	StateAnonymous     State = "anonymous"
	StateVerifying     State = "verifying"
	StateAuthenticated State = "authenticated"
)

// OTPProvider sends and checks one-time codes. The production implementation
// is *verify.Client; tests substitute fakes.
type OTPProvider interface {
	SendCode(ctx context.Context, phone string) error
	CheckCode(ctx context.Context, phone, code string) (bool, error)
}

// Session is the persisted identity of a verified shopper.
type Session struct {
	UserID    string    `json:"userId"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s Session) expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionStore runs the phone-OTP login state machine and persists the
// resulting session. The login hook fires exactly once per transition into
// the authenticated state.
type SessionStore struct {
	kv       KV
	provider OTPProvider

	onLogin  func(ctx context.Context)
	onLogout func()

	mu           sync.Mutex
	state        State
	session      *Session
	pendingPhone string
}

// newSessionStore restores persisted state. An expired session is purged,
// but the cart id is left alone so the shopper keeps their guest cart.
func newSessionStore(kv KV, provider OTPProvider) *SessionStore {
	s := &SessionStore{kv: kv, provider: provider, state: StateAnonymous}

	if raw, ok := kv.Get(keySession); ok {
		var sess Session
		if err := json.Unmarshal([]byte(raw), &sess); err == nil && !sess.expired(time.Now().UTC()) {
			s.session = &sess
			s.state = StateAuthenticated
			return s
		}
		kv.Delete(keySession)
		kv.Delete(keyAuthPhone)
	}
	return s
}

func (s *SessionStore) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current returns the active session, or nil when not authenticated.
func (s *SessionStore) Current() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	sess := *s.session
	return &sess
}

// identity feeds the API client's headers.
func (s *SessionStore) identity() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return "", ""
	}
	return s.session.UserID, s.session.Phone
}

// RequestCode normalizes the phone number and asks the provider to send a
// one-time code to it.
func (s *SessionStore) RequestCode(ctx context.Context, phone string) error {
	normalized, err := verify.NormalizePhone(phone)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.provider.SendCode(ctx, normalized); err != nil {
		return mapProviderError(err)
	}

	s.mu.Lock()
	s.pendingPhone = normalized
	s.state = StateVerifying
	s.mu.Unlock()

	s.kv.Set(keyAuthPhone, normalized)
	return nil
}

// VerifyCode checks the code against the pending phone and, on success,
// creates the session and fires the login hook.
func (s *SessionStore) VerifyCode(ctx context.Context, code string) (*Session, error) {
	s.mu.Lock()
	phone := s.pendingPhone
	s.mu.Unlock()
	if phone == "" {
		if stored, ok := s.kv.Get(keyAuthPhone); ok {
			phone = stored
		}
	}
	if phone == "" {
		return nil, fmt.Errorf("%w: request a code before verifying", ErrInvalidInput)
	}
	if code == "" {
		return nil, fmt.Errorf("%w: verification code is required", ErrInvalidInput)
	}

	approved, err := s.provider.CheckCode(ctx, phone, code)
	if err != nil {
		return nil, mapProviderError(err)
	}
	if !approved {
		return nil, ErrCodeIncorrect
	}

	now := time.Now().UTC()
	sess := Session{
		UserID:    phone,
		Phone:     phone,
		CreatedAt: now,
		ExpiresAt: now.Add(SessionTTL),
	}

	s.mu.Lock()
	wasAuthenticated := s.state == StateAuthenticated
	s.session = &sess
	s.state = StateAuthenticated
	s.pendingPhone = ""
	s.mu.Unlock()

	if data, err := json.Marshal(sess); err == nil {
		s.kv.Set(keySession, string(data))
	}

	if !wasAuthenticated && s.onLogin != nil {
		s.onLogin(ctx)
	}
	return &sess, nil
}

// Logout drops the session and pending state. Safe to call when already
// logged out.
func (s *SessionStore) Logout() {
	s.mu.Lock()
	wasAuthenticated := s.state == StateAuthenticated
	s.session = nil
	s.pendingPhone = ""
	s.state = StateAnonymous
	s.mu.Unlock()

	s.kv.Delete(keySession)
	s.kv.Delete(keyAuthPhone)

	if wasAuthenticated && s.onLogout != nil {
		s.onLogout()
	}
}

func mapProviderError(err error) error {
	switch {
	case errors.Is(err, verify.ErrRateLimited):
		return ErrRateLimited
	case errors.Is(err, verify.ErrRejected):
		return fmt.Errorf("%w: %v", ErrProviderRejected, err)
	default:
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
}
