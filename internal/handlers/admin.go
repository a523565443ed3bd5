package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/veyra-io/docflowgo/internal/middleware"
	"github.com/veyra-io/docflowgo/internal/models"
	"github.com/veyra-io/docflowgo/internal/utils"
)

func (r *Router) requireAdmin(w http.ResponseWriter, req *http.Request) bool {
	if !middleware.IsAdmin(req) {
		respondError(w, http.StatusForbidden, "Admin access required")
		return false
	}
	return true
}

// listUsers returns all users, active first
func (r *Router) listUsers(w http.ResponseWriter, req *http.Request) {
	if !r.requireAdmin(w, req) {
		return
	}
	var users []models.UserAuth
	if err := r.db.Preload("Office").Order("is_active DESC, username ASC").Find(&users).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch users")
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// getUser returns a single user by ID
func (r *Router) getUser(w http.ResponseWriter, req *http.Request) {
	if !r.requireAdmin(w, req) {
		return
	}
	vars := mux.Vars(req)
	var user models.UserAuth
	if err := r.db.Preload("Office").First(&user, "id = ?", vars["id"]).Error; err != nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// createUser provisions an account, optionally with a role and office
func (r *Router) createUser(w http.ResponseWriter, req *http.Request) {
	if !r.requireAdmin(w, req) {
		return
	}

	var body struct {
		RegisterRequest
		Role string `json:"role"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if body.Username == "" || body.Email == "" || len(body.Password) < 8 {
		respondError(w, http.StatusBadRequest, "Username, email and a password of at least 8 characters are required")
		return
	}
	if body.Role == "" {
		body.Role = models.RoleUser
	}
	if body.Role != models.RoleUser && body.Role != models.RoleAdmin {
		respondError(w, http.StatusBadRequest, "Invalid role")
		return
	}

	hash, err := utils.HashPassword(body.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	user := models.UserAuth{
		Username: body.Username,
		Password: hash,
		Email:    body.Email,
		Name:     body.Name,
		Position: body.Position,
		Role:     body.Role,
		IsActive: true,
	}
	if body.OfficeID != "" {
		user.OfficeID = &body.OfficeID
	}

	if err := r.db.Create(&user).Error; err != nil {
		respondError(w, http.StatusConflict, "Username or email already taken")
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

// updateUser changes a user's role, office, name or active flag
func (r *Router) updateUser(w http.ResponseWriter, req *http.Request) {
	if !r.requireAdmin(w, req) {
		return
	}
	vars := mux.Vars(req)

	var user models.UserAuth
	if err := r.db.First(&user, "id = ?", vars["id"]).Error; err != nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}

	var body struct {
		Name     *string `json:"name"`
		Position *string `json:"position"`
		Role     *string `json:"role"`
		OfficeID *string `json:"officeId"`
		IsActive *bool   `json:"isActive"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if body.Name != nil {
		user.Name = *body.Name
	}
	if body.Position != nil {
		user.Position = *body.Position
	}
	if body.Role != nil {
		if *body.Role != models.RoleUser && *body.Role != models.RoleAdmin {
			respondError(w, http.StatusBadRequest, "Invalid role")
			return
		}
		user.Role = *body.Role
	}
	if body.OfficeID != nil {
		if *body.OfficeID == "" {
			user.OfficeID = nil
		} else {
			user.OfficeID = body.OfficeID
		}
	}
	if body.IsActive != nil {
		user.IsActive = *body.IsActive
	}

	if err := r.db.Save(&user).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update user")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// deactivateUser disables an account. Accounts are never hard-deleted; their
// ledger rows must stay resolvable.
func (r *Router) deactivateUser(w http.ResponseWriter, req *http.Request) {
	if !r.requireAdmin(w, req) {
		return
	}
	vars := mux.Vars(req)

	var user models.UserAuth
	if err := r.db.First(&user, "id = ?", vars["id"]).Error; err != nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}

	user.IsActive = false
	if err := r.db.Save(&user).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to deactivate user")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "User deactivated",
		"id":      user.ID,
	})
}

// listOffices returns all offices
func (r *Router) listOffices(w http.ResponseWriter, req *http.Request) {
	var offices []models.Office
	if err := r.db.Order("name ASC").Find(&offices).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch offices")
		return
	}
	respondJSON(w, http.StatusOK, offices)
}

// createOffice registers a new organizational unit
func (r *Router) createOffice(w http.ResponseWriter, req *http.Request) {
	if !r.requireAdmin(w, req) {
		return
	}

	var office models.Office
	if err := json.NewDecoder(req.Body).Decode(&office); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if office.Name == "" || office.Code == "" {
		respondError(w, http.StatusBadRequest, "Name and code are required")
		return
	}

	if err := r.db.Create(&office).Error; err != nil {
		respondError(w, http.StatusConflict, "Office name or code already exists")
		return
	}
	respondJSON(w, http.StatusCreated, office)
}
