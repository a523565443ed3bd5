package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"github.com/veyra-io/docflowgo/internal/buildinfo"
	"github.com/veyra-io/docflowgo/internal/config"
	"github.com/veyra-io/docflowgo/internal/database"
	"github.com/veyra-io/docflowgo/internal/middleware"
	"github.com/veyra-io/docflowgo/internal/routing"
	"github.com/veyra-io/docflowgo/internal/websocket"
)

// Router wraps the mux router with the database, config and routing engine
type Router struct {
	*mux.Router
	db     *database.DB
	cfg    *config.Config
	engine *routing.Engine
	hub    *websocket.Hub
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(db *database.DB, cfg *config.Config, engine *routing.Engine, hub *websocket.Hub) *Router {
	r := &Router{
		Router: mux.NewRouter(),
		db:     db,
		cfg:    cfg,
		engine: engine,
		hub:    hub,
	}

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	// Auth routes
	auth := r.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", r.login).Methods("POST")
	auth.HandleFunc("/register", r.register).Methods("POST")
	auth.HandleFunc("/refresh", r.refresh).Methods("POST")

	// API routes (protected)
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Auth(cfg.JWTSecret))
	api.HandleFunc("/status", r.getStatus).Methods("GET")

	// Documents
	api.HandleFunc("/documents", r.listDocuments).Methods("GET")
	api.HandleFunc("/documents", r.createDocument).Methods("POST")
	api.HandleFunc("/documents/{id}", r.getDocument).Methods("GET")
	api.HandleFunc("/documents/{id}", r.updateDocument).Methods("PUT")

	// Routing chain
	api.HandleFunc("/documents/{id}/send", r.sendDocument).Methods("POST")
	api.HandleFunc("/documents/{id}/respond", r.respondDocument).Methods("POST")
	api.HandleFunc("/documents/{id}/forward", r.forwardDocument).Methods("POST")
	api.HandleFunc("/documents/{id}/chain", r.getChain).Methods("GET")
	api.HandleFunc("/documents/{id}/cancel", r.cancelDocument).Methods("POST")
	api.HandleFunc("/documents/{id}/publish", r.publishDocument).Methods("POST")
	api.HandleFunc("/documents/{id}/qr", r.documentQR).Methods("GET")

	// Attachments
	api.HandleFunc("/documents/{id}/files", r.uploadFile).Methods("POST")
	api.HandleFunc("/files/{fileId}", r.downloadFile).Methods("GET")

	// Notifications
	api.HandleFunc("/notifications", r.listNotifications).Methods("GET")
	api.HandleFunc("/notifications/{id}/read", r.markNotificationRead).Methods("POST")

	// Live updates
	api.HandleFunc("/ws", r.serveWs).Methods("GET")

	// Admin routes
	admin := api.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/users", r.listUsers).Methods("GET")
	admin.HandleFunc("/users", r.createUser).Methods("POST")
	admin.HandleFunc("/users/{id}", r.getUser).Methods("GET")
	admin.HandleFunc("/users/{id}", r.updateUser).Methods("PUT")
	admin.HandleFunc("/users/{id}", r.deactivateUser).Methods("DELETE")
	admin.HandleFunc("/offices", r.listOffices).Methods("GET")
	admin.HandleFunc("/offices", r.createOffice).Methods("POST")

	// Static files for the frontend bundle, if present
	publicDir := os.Getenv("FRONTEND_DIR")
	if publicDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(publicDir)))
	}

	return r
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"commit":    buildinfo.CommitHash,
		"startedAt": buildinfo.StartTime,
	})
}

// getStatus returns the current status
func (r *Router) getStatus(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "running",
		"connectedUsers": r.hub.ConnectedUsers(),
	})
}

// serveWs upgrades the authenticated request into a live event stream
func (r *Router) serveWs(w http.ResponseWriter, req *http.Request) {
	websocket.ServeWs(r.hub, middleware.UserID(req), w, req)
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondRoutingError maps engine failures onto HTTP codes per the error
// taxonomy: malformed routing input and validation problems are 400, holder
// violations 403, lost races 409.
func respondRoutingError(w http.ResponseWriter, err error) {
	var verr *routing.ValidationError
	switch {
	case errors.Is(err, routing.ErrDocumentNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, routing.ErrNotAuthorizedHolder),
		errors.Is(err, routing.ErrNotOwner):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, routing.ErrChainAlreadyActive),
		errors.Is(err, routing.ErrConflict):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, routing.ErrInvalidRecipient),
		errors.Is(err, routing.ErrNoRecipients),
		errors.Is(err, routing.ErrNoPrimaryRecipient),
		errors.Is(err, routing.ErrNotRoutable),
		errors.As(err, &verr):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "Internal error")
	}
}
