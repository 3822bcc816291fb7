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

// Me handles GET /me.
func (uh *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		config.RespondUnauthorized(w, "authentication required")
		return
	}

	user, err := uh.h.Store.GetUser(r.Context(), claims.UserID)
	if err != nil {
		config.RespondAppError(w, err, uh.h.Logger)
		return
	}

	config.RespondJSON(w, http.StatusOK, user)
}

type updateMeRequest struct {
	Name        string `json:"name"`
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// UpdateMe handles PUT /me. A password change requires the old password.
func (uh *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		config.RespondUnauthorized(w, "authentication required")
		return
	}

	var req updateMeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.RespondBadRequest(w, "invalid request body", err.Error())
		return
	}
	if req.Name == "" {
		config.RespondBadRequest(w, "name is required", "")
		return
	}

	var newHash string
	if req.NewPassword != "" {
		current, err := uh.h.Store.GetUser(r.Context(), claims.UserID)
		if err != nil {
			config.RespondAppError(w, err, uh.h.Logger)
			return
		}
		if !security.VerifyPassword(current.PasswordHash, req.OldPassword) {
			config.RespondForbidden(w, "old password is incorrect")
			return
		}
		newHash, err = security.HashPassword(req.NewPassword, uh.h.BcryptCost)
		if err != nil {
			config.RespondInternalError(w, err, uh.h.Logger)
			return
		}
	}

	user, err := uh.h.Store.UpdateUserProfile(r.Context(), claims.UserID, req.Name, newHash)
	if err != nil {
		config.RespondAppError(w, err, uh.h.Logger)
		return
	}

	config.RespondJSON(w, http.StatusOK, user)
}

// slimUser is the reduced view storekeepers get of other accounts.
type slimUser struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Role     int     `json:"role"`
	IsActive bool    `json:"is_active"`
	Img      *string `json:"img,omitempty"`
}

// List handles GET /users. Owners and admins see full records; everyone
// else sees the slim view.
func (uh *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		config.RespondUnauthorized(w, "authentication required")
		return
	}

	users, err := uh.h.Store.ListUsers(r.Context())
	if err != nil {
		config.RespondAppError(w, err, uh.h.Logger)
		return
	}

	if claims.Role == auth.RoleOwner || claims.Role == auth.RoleAdmin {
		config.RespondJSON(w, http.StatusOK, map[string]any{"users": users})
		return
	}

	slim := make([]slimUser, 0, len(users))
	for _, u := range users {
		slim = append(slim, slimUser{
			ID: u.ID, Name: u.Name, Email: u.Email,
			Role: u.Role, IsActive: u.IsActive, Img: u.Img,
		})
	}
	config.RespondJSON(w, http.StatusOK, map[string]any{"users": slim})
}

type createUserRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Role     int     `json:"role"`
	Img      *string `json:"img"`
}

// Create handles POST /users under the role policy.
func (uh *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		config.RespondUnauthorized(w, "authentication required")
		return
	}

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.RespondBadRequest(w, "invalid request body", err.Error())
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		config.RespondBadRequest(w, "name, email and password are required", "")
		return
	}
	if !auth.IsValidRole(req.Role) {
		config.RespondBadRequest(w, "invalid role", "")
		return
	}

	if !auth.Allows(claims.Role, req.Role, auth.ActionCreate) {
		config.RespondForbidden(w, "not allowed to create an account with this role")
		return
	}

	hash, err := security.HashPassword(req.Password, uh.h.BcryptCost)
	if err != nil {
		config.RespondInternalError(w, err, uh.h.Logger)
		return
	}

	user, err := uh.h.Store.CreateUser(r.Context(), store.CreateUserParams{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		Img:          req.Img,
	})
	if err != nil {
		config.RespondAppError(w, err, uh.h.Logger)
		return
	}

	uh.h.Logger.Info("user created",
		"user_id", user.ID,
		"role", auth.RoleName(user.Role),
		"created_by", claims.UserID,
	)
	config.RespondJSON(w, http.StatusCreated, user)
}

type updateUserRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Role     int     `json:"role"`
	IsActive bool    `json:"is_active"`
	Img      *string `json:"img"`
}

// Update handles PUT /users/{id}. The policy must allow the action against
// both the target's current role and the requested one, so an admin can
// neither edit an owner nor promote anyone into one.
func (uh *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		config.RespondUnauthorized(w, "authentication required")
		return
	}

	id, err := handlers.PathID(r, "id")
	if err != nil {
		config.RespondAppError(w, err, uh.h.Logger)
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.RespondBadRequest(w, "invalid request body", err.Error())
		return
	}
	if req.Name == "" || req.Email == "" {
		config.RespondBadRequest(w, "name and email are required", "")
		return
	}
	if !auth.IsValidRole(req.Role) {
		config.RespondBadRequest(w, "invalid role", "")
		return
	}

	target, err := uh.h.Store.GetUser(r.Context(), id)
	if err != nil {
		config.RespondAppError(w, err, uh.h.Logger)
		return
	}

	self := claims.UserID == id
	permitted := auth.Allows(claims.Role, target.Role, auth.ActionUpdate) &&
		auth.Allows(claims.Role, req.Role, auth.ActionUpdate)
	if self && !permitted {
		// Self-service cannot change role or disable the account.
		permitted = auth.AllowsSelf(auth.ActionUpdate) &&
			req.Role == target.Role && req.IsActive == target.IsActive
	}
	if !permitted {
		config.RespondForbidden(w, "not allowed to update this account")
		return
	}

	user, err := uh.h.Store.UpdateUser(r.Context(), id, store.UpdateUserParams{
		Name:     req.Name,
		Email:    req.Email,
		Role:     req.Role,
		IsActive: req.IsActive,
		Img:      req.Img,
	})
	if err != nil {
		config.RespondAppError(w, err, uh.h.Logger)
		return
	}

	config.RespondJSON(w, http.StatusOK, user)
}

// Delete handles DELETE /users/{id}. Deleting an absent account answers
// 204; deleting the last owner answers 409.
func (uh *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		config.RespondUnauthorized(w, "authentication required")
		return
	}

	id, err := handlers.PathID(r, "id")
	if err != nil {
		config.RespondAppError(w, err, uh.h.Logger)
		return
	}

	target, err := uh.h.Store.GetUser(r.Context(), id)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			config.RespondNoContent(w)
			return
		}
		config.RespondAppError(w, err, uh.h.Logger)
		return
	}

	if !auth.Allows(claims.Role, target.Role, auth.ActionDelete) {
		config.RespondForbidden(w, "not allowed to delete this account")
		return
	}

	if _, _, err := uh.h.Store.DeleteUser(r.Context(), id, auth.RoleOwner); err != nil {
		config.RespondAppError(w, err, uh.h.Logger)
		return
	}

	uh.h.Logger.Info("user deleted", "user_id", id, "deleted_by", claims.UserID)
	config.RespondNoContent(w)
}
