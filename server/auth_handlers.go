package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-session-auth/auth"
	apperrors "github.com/jrsteele09/go-session-auth/internal/errors"
	"github.com/jrsteele09/go-session-auth/users"
)

type loginRequest struct {
	LoginID  string `json:"login_id"`
	Password string `json:"password"`
}

type registerRequest struct {
	LoginID     string     `json:"login_id"`
	DisplayName string     `json:"display_name"`
	Email       string     `json:"email"`
	Password    string     `json:"password"`
	Role        users.Role `json:"role,omitempty"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LoginHandler authenticates a login_id/password pair, sets the token
// cookies and returns the user snapshot with the token pair.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "malformed request body")
			return
		}
		if req.LoginID == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "login_id and password are required")
			return
		}

		result, err := s.auth.Login(r.Context(), req.LoginID, req.Password)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}

		s.setTokenCookies(w, result.Tokens.AccessToken, result.Tokens.RefreshToken)
		writeJSON(w, http.StatusOK, result)
	}
}

// RegisterHandler creates a new account.
func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "malformed request body")
			return
		}
		if req.LoginID == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "login_id and password are required")
			return
		}
		if err := users.ValidatePasswordStrength(req.Password); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		user, err := s.auth.Register(r.Context(), auth.RegisterParams{
			LoginID:     req.LoginID,
			DisplayName: req.DisplayName,
			Email:       req.Email,
			Password:    req.Password,
			Role:        req.Role,
		})
		if err != nil {
			s.writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, user.Snapshot())
	}
}

// RefreshTokenHandler exchanges a refresh token for a new token pair. The
// token is taken from the request body, falling back to the refresh
// cookie.
func (s *Server) RefreshTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		_ = json.NewDecoder(r.Body).Decode(&req)

		raw := req.RefreshToken
		if raw == "" {
			if c, err := r.Cookie(CookieRefreshToken); err == nil {
				raw = c.Value
			}
		}
		if raw == "" {
			writeError(w, http.StatusUnauthorized, apperrors.ErrUnauthorized.Error())
			return
		}

		result, err := s.auth.Refresh(r.Context(), raw)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}

		s.setTokenCookies(w, result.Tokens.AccessToken, result.Tokens.RefreshToken)
		writeJSON(w, http.StatusOK, result)
	}
}

// LogoutHandler deletes the caller's cached session and clears the token
// cookies. The caller is identified by their access token.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.auth.ValidateAccess(s.accessTokenFrom(r))
		if err != nil {
			s.writeServiceError(w, err)
			return
		}

		if err := s.auth.Logout(r.Context(), claims.LoginID); err != nil {
			s.writeServiceError(w, err)
			return
		}

		s.clearTokenCookies(w)
		writeJSON(w, http.StatusOK, map[string]string{"message": "successfully logged out"})
	}
}

// SessionHandler returns the caller's cached session record, if present.
// Absence is 404: it means the session aged out or was logged out, not
// that the account does not exist.
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.auth.ValidateAccess(s.accessTokenFrom(r))
		if err != nil {
			s.writeServiceError(w, err)
			return
		}

		rec, err := s.auth.Session(r.Context(), claims.LoginID)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		if rec == nil {
			writeError(w, http.StatusNotFound, "no active session")
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

// accessTokenFrom pulls the access token from the Authorization header,
// falling back to the access cookie.
func (s *Server) accessTokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie(CookieAccessToken); err == nil {
		return c.Value
	}
	return ""
}

func (s *Server) setTokenCookies(w http.ResponseWriter, accessToken, refreshToken string) {
	secure := s.env != "DEV"
	http.SetCookie(w, &http.Cookie{
		Name:     CookieAccessToken,
		Value:    accessToken,
		Path:     "/",
		MaxAge:   s.cfg.AccessTTLSeconds,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     CookieRefreshToken,
		Value:    refreshToken,
		Path:     RouteRefreshToken,
		MaxAge:   s.cfg.RefreshTTLSeconds,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *Server) clearTokenCookies(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: CookieAccessToken, Value: "", Path: "/", MaxAge: -1})
	http.SetCookie(w, &http.Cookie{Name: CookieRefreshToken, Value: "", Path: RouteRefreshToken, MaxAge: -1})
}
