package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/example/festisolde/internal/infrastructure/store"
	"github.com/example/festisolde/internal/logging"
	"github.com/example/festisolde/internal/model"
	"github.com/google/uuid"
)

var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

var logger = logging.New("auth")

// Tokens are issued on sign-up, sign-in and refresh.
type Tokens struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	ExpiresAt        time.Time `json:"expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// SessionListener is called with the new session, or nil after sign-out.
type SessionListener func(session *model.Session)

// Provider is the authentication capability: accounts, sessions and
// session-change notifications.
type Provider struct {
	profiles store.ProfileStore
	tokens   *JWTService

	mu        sync.Mutex
	revoked   map[string]time.Time
	listeners map[int]SessionListener
	nextID    int
}

func NewProvider(profiles store.ProfileStore, tokens *JWTService) *Provider {
	return &Provider{
		profiles:  profiles,
		tokens:    tokens,
		revoked:   make(map[string]time.Time),
		listeners: make(map[int]SessionListener),
	}
}

// SignUp creates a customer account and signs it in.
func (p *Provider) SignUp(ctx context.Context, email, password, fullName string) (*model.Session, *Tokens, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, nil, err
	}

	existing, err := p.profiles.GetProfileByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("lookup profile: %w", err)
	}
	if existing != nil {
		return nil, nil, ErrEmailTaken
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, nil, err
	}

	profile := &model.Profile{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(fullName),
		Role:         model.RoleCustomer,
	}
	if err := p.profiles.InsertProfile(ctx, profile); err != nil {
		return nil, nil, fmt.Errorf("create profile: %w", err)
	}

	logger.Info().Str("user_id", profile.ID).Msg("account created")
	return p.startSession(profile)
}

// SignIn checks the password and opens a session.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*model.Session, *Tokens, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	profile, err := p.profiles.GetProfileByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("lookup profile: %w", err)
	}
	if profile == nil || !CheckPassword(password, profile.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}
	return p.startSession(profile)
}

// SignOut revokes the session's tokens and notifies listeners. Either
// token may be empty; it fails only when neither one is valid.
func (p *Provider) SignOut(ctx context.Context, accessToken, refreshToken string) error {
	var firstErr error
	revoked := 0

	if accessToken != "" {
		claims, err := p.tokens.ValidateAccessToken(accessToken)
		if err != nil {
			firstErr = err
		} else {
			p.revoke(claims.ID, claims.ExpiresAt.Time)
			revoked++
		}
	}
	if refreshToken != "" {
		claims, err := p.tokens.ValidateRefreshToken(refreshToken)
		if err != nil && firstErr == nil {
			firstErr = err
		} else if err == nil {
			p.revoke(claims.ID, claims.ExpiresAt.Time)
			revoked++
		}
	}

	if revoked == 0 {
		if firstErr == nil {
			firstErr = ErrInvalidToken
		}
		return firstErr
	}
	p.notify(nil)
	return nil
}

// Refresh exchanges a refresh token for new tokens. The presented refresh
// token is revoked, so each one is single use.
func (p *Provider) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	claims, err := p.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if !p.revoke(claims.ID, claims.ExpiresAt.Time) {
		return nil, ErrRevokedToken
	}
	session := p.resolve(ctx, claims.Subject, "")
	return p.issue(session)
}

// revoke records a token id until its expiry and prunes expired entries. It
// reports false when the id was already revoked.
func (p *Provider) revoke(id string, expiresAt time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	for jti, exp := range p.revoked {
		if exp.Before(now) {
			delete(p.revoked, jti)
		}
	}
	if _, ok := p.revoked[id]; ok {
		return false
	}
	p.revoked[id] = expiresAt
	return true
}

// GetCurrentUser resolves the session behind an access token. The role and
// name come from the profile; when the profile cannot be read the session
// is a customer.
func (p *Provider) GetCurrentUser(ctx context.Context, accessToken string) (*model.Session, error) {
	claims, err := p.tokens.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	_, revoked := p.revoked[claims.ID]
	p.mu.Unlock()
	if revoked {
		return nil, ErrRevokedToken
	}

	return p.resolve(ctx, claims.Subject, claims.Email), nil
}

// OnSessionChange registers fn and returns a function that removes it.
func (p *Provider) OnSessionChange(fn SessionListener) (unsubscribe func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.listeners, id)
	}
}

func (p *Provider) resolve(ctx context.Context, userID, email string) *model.Session {
	session := &model.Session{UserID: userID, Email: email, Role: model.RoleCustomer}

	profile, err := p.profiles.GetProfile(ctx, userID)
	if err != nil {
		logger.Warn().Err(err).Str("user_id", userID).Msg("profile lookup failed, defaulting to customer")
		return session
	}
	if profile == nil {
		return session
	}
	session.Email = profile.Email
	session.FullName = profile.FullName
	session.Role = model.ParseRole(string(profile.Role))
	return session
}

func (p *Provider) startSession(profile *model.Profile) (*model.Session, *Tokens, error) {
	session := &model.Session{
		UserID:   profile.ID,
		Email:    profile.Email,
		FullName: profile.FullName,
		Role:     model.ParseRole(string(profile.Role)),
	}
	tokens, err := p.issue(session)
	if err != nil {
		return nil, nil, err
	}
	p.notify(session)
	return session, tokens, nil
}

func (p *Provider) issue(session *model.Session) (*Tokens, error) {
	access, expiresAt, err := p.tokens.GenerateAccessToken(session.UserID, session.Email, session.Role)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, refreshExpiresAt, err := p.tokens.GenerateRefreshToken(session.UserID)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	return &Tokens{
		AccessToken:      access,
		RefreshToken:     refresh,
		ExpiresAt:        expiresAt,
		RefreshExpiresAt: refreshExpiresAt,
	}, nil
}

func (p *Provider) notify(session *model.Session) {
	p.mu.Lock()
	listeners := make([]SessionListener, 0, len(p.listeners))
	for _, fn := range p.listeners {
		listeners = append(listeners, fn)
	}
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(session)
	}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}
