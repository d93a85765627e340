package auth

import (
	"errors"
	"time"

	"github.com/example/festisolde/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrRevokedToken = errors.New("token has been revoked")
)

const tokenIssuer = "festisolde"

// Claims carries the identity an access token was issued for. Role is the
// role at sign-in; the profile is authoritative when resolving a session.
type Claims struct {
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
	jwt.RegisteredClaims
}

// JWTService signs and verifies HS256 tokens.
type JWTService struct {
	secretKey          []byte
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
}

func NewJWTService(secretKey string, accessExpiry, refreshExpiry time.Duration) *JWTService {
	return &JWTService{
		secretKey:          []byte(secretKey),
		accessTokenExpiry:  accessExpiry,
		refreshTokenExpiry: refreshExpiry,
	}
}

func (s *JWTService) GenerateAccessToken(userID, email string, role model.Role) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.accessTokenExpiry)

	claims := Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    tokenIssuer,
			Subject:   userID,
			Audience:  jwt.ClaimStrings{"access"},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return s.sign(claims, expiresAt)
}

func (s *JWTService) GenerateRefreshToken(userID string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.refreshTokenExpiry)

	claims := jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		Issuer:    tokenIssuer,
		Subject:   userID,
		Audience:  jwt.ClaimStrings{"refresh"},
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	return s.sign(claims, expiresAt)
}

func (s *JWTService) sign(claims jwt.Claims, expiresAt time.Time) (string, time.Time, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ValidateAccessToken verifies signature, expiry and audience.
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if err := s.parse(tokenString, claims, "access"); err != nil {
		return nil, err
	}
	return claims, nil
}

// ValidateRefreshToken returns the claims of a valid refresh token. Subject
// is the user id and ID the token id used for revocation.
func (s *JWTService) ValidateRefreshToken(tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	if err := s.parse(tokenString, claims, "refresh"); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *JWTService) parse(tokenString string, claims jwt.Claims, audience string) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secretKey, nil
	}, jwt.WithAudience(audience), jwt.WithIssuer(tokenIssuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpiredToken
		}
		return ErrInvalidToken
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

func (s *JWTService) AccessTokenExpiry() time.Duration  { return s.accessTokenExpiry }
func (s *JWTService) RefreshTokenExpiry() time.Duration { return s.refreshTokenExpiry }
