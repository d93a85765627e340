package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/example/festisolde/internal/infrastructure/store/mocks"
	"github.com/example/festisolde/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider() (*Provider, *mocks.MockProfileStore) {
	profiles := mocks.NewMockProfileStore()
	return NewProvider(profiles, newTestJWTService()), profiles
}

// ============================================
// SignUp / SignIn Tests
// ============================================

func TestProvider_SignUp(t *testing.T) {
	p, profiles := newTestProvider()
	ctx := context.Background()

	session, tokens, err := p.SignUp(ctx, "  Awa@Festi.BF ", "motdepasse", "Awa Ouédraogo")

	require.NoError(t, err)
	assert.Equal(t, "awa@festi.bf", session.Email)
	assert.Equal(t, model.RoleCustomer, session.Role)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	stored, err := profiles.GetProfileByEmail(ctx, "awa@festi.bf")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEqual(t, "motdepasse", stored.PasswordHash)
}

func TestProvider_SignUp_Errors(t *testing.T) {
	p, _ := newTestProvider()
	ctx := context.Background()
	_, _, err := p.SignUp(ctx, "awa@festi.bf", "motdepasse", "")
	require.NoError(t, err)

	_, _, err = p.SignUp(ctx, "AWA@festi.bf", "motdepasse", "")
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, _, err = p.SignUp(ctx, "not-an-email", "motdepasse", "")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, _, err = p.SignUp(ctx, "moussa@festi.bf", "short", "")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestProvider_SignIn(t *testing.T) {
	p, _ := newTestProvider()
	ctx := context.Background()
	_, _, err := p.SignUp(ctx, "awa@festi.bf", "motdepasse", "Awa")
	require.NoError(t, err)

	session, tokens, err := p.SignIn(ctx, "awa@festi.bf", "motdepasse")
	require.NoError(t, err)
	assert.Equal(t, "Awa", session.FullName)
	assert.NotEmpty(t, tokens.AccessToken)

	_, _, err = p.SignIn(ctx, "awa@festi.bf", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = p.SignIn(ctx, "nobody@festi.bf", "motdepasse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

// ============================================
// GetCurrentUser Tests
// ============================================

func TestProvider_GetCurrentUser_RoleFromProfile(t *testing.T) {
	p, profiles := newTestProvider()
	ctx := context.Background()
	session, tokens, err := p.SignUp(ctx, "fatou@festi.bf", "motdepasse", "Fatou")
	require.NoError(t, err)

	// Promoted after the token was issued.
	require.NoError(t, profiles.UpdateRole(ctx, session.UserID, model.RoleVendor))

	current, err := p.GetCurrentUser(ctx, tokens.AccessToken)

	require.NoError(t, err)
	assert.Equal(t, model.RoleVendor, current.Role)
	assert.Equal(t, "Fatou", current.FullName)
}

func TestProvider_GetCurrentUser_ProfileFailureIsCustomer(t *testing.T) {
	p, profiles := newTestProvider()
	ctx := context.Background()
	session, tokens, err := p.SignUp(ctx, "admin@festi.bf", "motdepasse", "")
	require.NoError(t, err)
	require.NoError(t, profiles.UpdateRole(ctx, session.UserID, model.RoleAdmin))
	profiles.GetErr = errors.New("profiles unavailable")

	current, err := p.GetCurrentUser(ctx, tokens.AccessToken)

	require.NoError(t, err)
	assert.Equal(t, model.RoleCustomer, current.Role)
	assert.Equal(t, session.UserID, current.UserID)
}

func TestProvider_GetCurrentUser_InvalidToken(t *testing.T) {
	p, _ := newTestProvider()

	_, err := p.GetCurrentUser(context.Background(), "garbage")

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestProvider_SignOut_RevokesToken(t *testing.T) {
	p, _ := newTestProvider()
	ctx := context.Background()
	_, tokens, err := p.SignUp(ctx, "awa@festi.bf", "motdepasse", "")
	require.NoError(t, err)

	require.NoError(t, p.SignOut(ctx, tokens.AccessToken, ""))

	_, err = p.GetCurrentUser(ctx, tokens.AccessToken)
	assert.ErrorIs(t, err, ErrRevokedToken)
}

func TestProvider_SignOut_RevokesRefreshToken(t *testing.T) {
	p, _ := newTestProvider()
	ctx := context.Background()
	_, tokens, err := p.SignUp(ctx, "awa@festi.bf", "motdepasse", "")
	require.NoError(t, err)

	require.NoError(t, p.SignOut(ctx, tokens.AccessToken, tokens.RefreshToken))

	fresh, err := p.Refresh(ctx, tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrRevokedToken)
	assert.Nil(t, fresh)
}

func TestProvider_SignOut_RefreshTokenOnly(t *testing.T) {
	p, _ := newTestProvider()
	ctx := context.Background()
	_, tokens, err := p.SignUp(ctx, "awa@festi.bf", "motdepasse", "")
	require.NoError(t, err)

	require.NoError(t, p.SignOut(ctx, "expired-or-garbage", tokens.RefreshToken))

	_, err = p.Refresh(ctx, tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrRevokedToken)
}

func TestProvider_SignOut_NoValidToken(t *testing.T) {
	p, _ := newTestProvider()
	ctx := context.Background()

	assert.ErrorIs(t, p.SignOut(ctx, "garbage", ""), ErrInvalidToken)
	assert.ErrorIs(t, p.SignOut(ctx, "", ""), ErrInvalidToken)
}

func TestProvider_Refresh(t *testing.T) {
	p, _ := newTestProvider()
	ctx := context.Background()
	session, tokens, err := p.SignUp(ctx, "awa@festi.bf", "motdepasse", "")
	require.NoError(t, err)

	fresh, err := p.Refresh(ctx, tokens.RefreshToken)
	require.NoError(t, err)

	current, err := p.GetCurrentUser(ctx, fresh.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, session.UserID, current.UserID)

	_, err = p.Refresh(ctx, tokens.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestProvider_Refresh_SingleUse(t *testing.T) {
	p, _ := newTestProvider()
	ctx := context.Background()
	_, tokens, err := p.SignUp(ctx, "awa@festi.bf", "motdepasse", "")
	require.NoError(t, err)

	fresh, err := p.Refresh(ctx, tokens.RefreshToken)
	require.NoError(t, err)

	_, err = p.Refresh(ctx, tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrRevokedToken)

	_, err = p.Refresh(ctx, fresh.RefreshToken)
	assert.NoError(t, err)
}

// ============================================
// Session Change Tests
// ============================================

func TestProvider_OnSessionChange(t *testing.T) {
	p, _ := newTestProvider()
	ctx := context.Background()

	var seen []*model.Session
	unsubscribe := p.OnSessionChange(func(s *model.Session) { seen = append(seen, s) })

	_, tokens, err := p.SignUp(ctx, "awa@festi.bf", "motdepasse", "")
	require.NoError(t, err)
	require.NoError(t, p.SignOut(ctx, tokens.AccessToken, tokens.RefreshToken))

	require.Len(t, seen, 2)
	assert.Equal(t, "awa@festi.bf", seen[0].Email)
	assert.Nil(t, seen[1])

	unsubscribe()
	_, _, err = p.SignIn(ctx, "awa@festi.bf", "motdepasse")
	require.NoError(t, err)
	assert.Len(t, seen, 2)
}
