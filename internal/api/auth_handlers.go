package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/example/festisolde/internal/api/middleware"
	"github.com/example/festisolde/internal/auth"
	"github.com/example/festisolde/internal/model"
	"github.com/example/festisolde/internal/routing"
)

// The refresh cookie is scoped to the auth routes so logout can revoke it.
const (
	refreshTokenCookie = "refresh_token"
	refreshCookiePath  = "/api/auth"
)

// SignUpRequest represents the registration request body
type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// LoginRequest represents the login request body. Resume is where an
// interrupted action should continue after login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Resume   string `json:"resume,omitempty"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	User     *model.Session `json:"user"`
	Redirect routing.Route  `json:"redirect,omitempty"`
	Message  string         `json:"message,omitempty"`
}

// SignUp handles account registration
func (s *Server) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	session, tokens, err := s.auth.SignUp(r.Context(), req.Email, req.Password, req.FullName)
	switch {
	case errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrPasswordTooShort),
		errors.Is(err, auth.ErrPasswordTooLong),
		errors.Is(err, auth.ErrPasswordBlank):
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, auth.ErrEmailTaken):
		respondError(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		logger.Error().Err(err).Msg("sign up")
		respondError(w, "could not create account", http.StatusInternalServerError)
		return
	}

	s.setAuthCookies(w, r, tokens)
	redirect, _ := s.client(r).Router.Decide(r.Context(), session)
	respondJSON(w, http.StatusCreated, AuthResponse{
		User:     session,
		Redirect: redirect,
		Message:  "Registration successful",
	})
}

// Login handles sign-in and answers with the landing route
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	session, tokens, err := s.auth.SignIn(r.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		respondError(w, err.Error(), http.StatusUnauthorized)
		return
	}
	if err != nil {
		logger.Error().Err(err).Msg("sign in")
		respondError(w, "could not sign in", http.StatusInternalServerError)
		return
	}

	router := s.client(r).Router
	if resume := strings.TrimSpace(req.Resume); strings.HasPrefix(resume, "/") && !strings.HasPrefix(resume, "//") {
		router.StashResumePath(routing.Route(resume))
	}

	s.setAuthCookies(w, r, tokens)
	redirect, _ := router.Decide(r.Context(), session)
	respondJSON(w, http.StatusOK, AuthResponse{User: session, Redirect: redirect})
}

// Logout revokes the access and refresh tokens and clears the cookies
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	access := middleware.GetToken(r.Context())
	var refresh string
	if cookie, err := r.Cookie(refreshTokenCookie); err == nil {
		refresh = cookie.Value
	}
	if access != "" || refresh != "" {
		if err := s.auth.SignOut(r.Context(), access, refresh); err != nil {
			logger.Warn().Err(err).Msg("sign out")
		}
	}
	s.clearAuthCookies(w)
	respondJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

// Refresh handles token refresh
func (s *Server) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshTokenCookie)
	if err != nil || cookie.Value == "" {
		respondError(w, "no refresh token", http.StatusUnauthorized)
		return
	}

	tokens, err := s.auth.Refresh(r.Context(), cookie.Value)
	if err != nil {
		s.clearAuthCookies(w)
		respondError(w, "invalid refresh token", http.StatusUnauthorized)
		return
	}

	s.setAuthCookies(w, r, tokens)
	respondJSON(w, http.StatusOK, map[string]string{"message": "Token refreshed"})
}

// Me returns the current session
func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		respondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

// Landing recomputes where the current session should land, e.g. after a
// vendor has created their shop.
func (s *Server) Landing(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.GetSession(r.Context())
	redirect, ok := s.client(r).Router.Decide(r.Context(), session)
	if !ok {
		respondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	respondJSON(w, http.StatusOK, map[string]routing.Route{"redirect": redirect})
}

// Helper methods

func (s *Server) setAuthCookies(w http.ResponseWriter, r *http.Request, tokens *auth.Tokens) {
	secure := s.secure || r.TLS != nil

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    tokens.AccessToken,
		Path:     "/",
		Expires:  tokens.ExpiresAt,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})

	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    tokens.RefreshToken,
		Path:     refreshCookiePath,
		Expires:  tokens.RefreshExpiresAt,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *Server) clearAuthCookies(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    "",
		Path:     refreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
	})
}
