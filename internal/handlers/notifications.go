package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/veyra-io/docflowgo/internal/middleware"
	"github.com/veyra-io/docflowgo/internal/models"
)

// listNotifications returns the acting user's notifications, unread first
func (r *Router) listNotifications(w http.ResponseWriter, req *http.Request) {
	userID := middleware.UserID(req)

	q := r.db.Where("user_id = ?", userID).Order("is_read ASC, created_at DESC").Limit(100)
	if req.URL.Query().Get("unread") == "true" {
		q = q.Where("is_read = false")
	}

	var rows []models.Notification
	if err := q.Find(&rows).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch notifications")
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

// markNotificationRead marks one of the acting user's notifications as read
func (r *Router) markNotificationRead(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid notification ID")
		return
	}

	var row models.Notification
	if err := r.db.First(&row, "id = ? AND user_id = ?", uint(id), middleware.UserID(req)).Error; err != nil {
		respondError(w, http.StatusNotFound, "Notification not found")
		return
	}

	row.IsRead = true
	if err := r.db.Save(&row).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update notification")
		return
	}
	respondJSON(w, http.StatusOK, row)
}
