// Package users serves authentication, the current-user profile and user
// administration.
package users

import (
	"encoding/json"
	"net/http"

	"factory_inventory/internal/apperr"
	"factory_inventory/internal/auth"
	"factory_inventory/internal/config"
	"factory_inventory/internal/handlers"
	"factory_inventory/internal/security"
	"factory_inventory/internal/store"
)

// UserHandler serves user and auth requests.
type UserHandler struct {
	h *handlers.Handler
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(h *handlers.Handler) *UserHandler {
	return &UserHandler{h: h}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	User         store.User `json:"user"`
}

// issueTokens creates an access/refresh pair and registers the refresh JTI.
func (uh *UserHandler) issueTokens(r *http.Request, user store.User) (tokenResponse, error) {
	access, err := uh.h.Auth.IssueAccess(user.ID, user.Role)
	if err != nil {
		return tokenResponse{}, err
	}

	refresh, jti, err := uh.h.Auth.IssueRefresh(user.ID, user.Role)
	if err != nil {
		return tokenResponse{}, err
	}

	if err := uh.h.Refresh.Save(r.Context(), jti, user.ID, uh.h.Auth.RefreshTTL()); err != nil {
		return tokenResponse{}, err
	}

	return tokenResponse{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

// Login handles POST /auth/login. Unknown emails, wrong passwords and
// disabled accounts all answer the same 401.
func (uh *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.RespondBadRequest(w, "invalid request body", err.Error())
		return
	}
	if req.Email == "" || req.Password == "" {
		config.RespondBadRequest(w, "email and password are required", "")
		return
	}

	user, err := uh.h.Store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			config.RespondUnauthorized(w, "invalid credentials")
			return
		}
		config.RespondAppError(w, err, uh.h.Logger)
		return
	}

	if !user.IsActive || !security.VerifyPassword(user.PasswordHash, req.Password) {
		config.RespondUnauthorized(w, "invalid credentials")
		return
	}

	if err := uh.h.Store.TouchLastLogin(r.Context(), user.ID); err != nil {
		uh.h.Logger.Warn("failed to record login time", "user_id", user.ID, "error", err)
	}

	tokens, err := uh.issueTokens(r, user)
	if err != nil {
		config.RespondAppError(w, err, uh.h.Logger)
		return
	}

	uh.h.Logger.Info("user logged in", "user_id", user.ID, "role", auth.RoleName(user.Role))
	config.RespondJSON(w, http.StatusOK, tokens)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh handles POST /auth/refresh. The presented refresh token is
// revoked and a fresh pair issued, so each refresh token works exactly once.
func (uh *UserHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.RespondBadRequest(w, "invalid request body", err.Error())
		return
	}

	claims, err := uh.h.Auth.Verify(req.RefreshToken, auth.TokenKindRefresh)
	if err != nil {
		config.RespondAppError(w, err, uh.h.Logger)
		return
	}

	userID, err := uh.h.Refresh.Validate(r.Context(), claims.ID)
	if err != nil {
		config.RespondAppError(w, err, uh.h.Logger)
		return
	}

	// Rotate before issuing: a replayed token must find its JTI gone.
	if err := uh.h.Refresh.Revoke(r.Context(), claims.ID); err != nil {
		config.RespondAppError(w, err, uh.h.Logger)
		return
	}

	user, err := uh.h.Store.GetUser(r.Context(), userID)
	if err != nil || !user.IsActive {
		config.RespondUnauthorized(w, "account is no longer active")
		return
	}

	tokens, err := uh.issueTokens(r, user)
	if err != nil {
		config.RespondAppError(w, err, uh.h.Logger)
		return
	}

	config.RespondJSON(w, http.StatusOK, tokens)
}

// Logout handles POST /auth/logout by revoking the presented refresh token.
// Revoking an already-dead token still answers 204.
func (uh *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.RespondBadRequest(w, "invalid request body", err.Error())
		return
	}

	claims, err := uh.h.Auth.Verify(req.RefreshToken, auth.TokenKindRefresh)
	if err != nil {
		config.RespondNoContent(w)
		return
	}

	if err := uh.h.Refresh.Revoke(r.Context(), claims.ID); err != nil {
		uh.h.Logger.Warn("failed to revoke refresh token", "error", err)
	}
	config.RespondNoContent(w)
}
