package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/veyra-io/docflowgo/internal/middleware"
	"github.com/veyra-io/docflowgo/internal/models"
)

// CreateDocumentRequest carries the owner-supplied document metadata
type CreateDocumentRequest struct {
	Subject  string `json:"subject"`
	Type     string `json:"type"`
	IsPublic bool   `json:"isPublic"`
}

// createDocument creates a draft document owned by the acting user
func (r *Router) createDocument(w http.ResponseWriter, req *http.Request) {
	var body CreateDocumentRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if body.Subject == "" {
		respondError(w, http.StatusBadRequest, "Subject is required")
		return
	}
	if !models.ValidDocType(body.Type) {
		respondError(w, http.StatusBadRequest, "Invalid document type")
		return
	}

	doc := models.Document{
		OwnerID:      middleware.UserID(req),
		Subject:      body.Subject,
		Type:         body.Type,
		Status:       models.DocStatusDraft,
		TrackingCode: uuid.New().String(),
		IsPublic:     body.IsPublic,
	}

	if err := r.db.Create(&doc).Error; err != nil {
		log.Printf("❌ Failed to create document: %v", err)
		respondError(w, http.StatusInternalServerError, "Database error")
		return
	}

	log.Printf("📄 Document created: %s (%s) by %s", doc.ID, doc.Type, doc.OwnerID)
	respondJSON(w, http.StatusCreated, doc)
}

// listDocuments returns documents visible to the acting user. The box query
// parameter selects the view: inbox (documents awaiting my action), outbox
// (documents I own), all (everything I may see).
func (r *Router) listDocuments(w http.ResponseWriter, req *http.Request) {
	userID := middleware.UserID(req)
	box := req.URL.Query().Get("box")
	status := req.URL.Query().Get("status")

	q := r.db.Model(&models.Document{}).Preload("Owner").Order("documents.created_at DESC").Limit(100)

	switch box {
	case "inbox":
		q = q.Joins("JOIN document_recipients dr ON dr.document_id = documents.document_id").
			Where("dr.user_id = ? AND dr.is_active = true AND dr.deleted_at IS NULL", userID)
	case "outbox":
		q = q.Where("owner_id = ?", userID)
	default:
		if !middleware.IsAdmin(req) {
			q = q.Where(
				"owner_id = ? OR is_public = true OR documents.document_id IN (?)",
				userID,
				r.db.Model(&models.DocumentRecipient{}).Select("document_id").Where("user_id = ?", userID),
			)
		}
	}
	if status != "" {
		q = q.Where("documents.status = ?", status)
	}

	var docs []models.Document
	if err := q.Find(&docs).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch documents")
		return
	}
	respondJSON(w, http.StatusOK, docs)
}

// getDocument returns one document with its files
func (r *Router) getDocument(w http.ResponseWriter, req *http.Request) {
	doc, ok := r.loadVisibleDocument(w, req)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

// updateDocument lets the owner re-edit subject and type while the document
// is still a draft or has been returned for rework
func (r *Router) updateDocument(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	userID := middleware.UserID(req)

	var doc models.Document
	if err := r.db.First(&doc, "document_id = ?", vars["id"]).Error; err != nil {
		respondError(w, http.StatusNotFound, "Document not found")
		return
	}
	if doc.OwnerID != userID {
		respondError(w, http.StatusForbidden, "Only the owner may edit a document")
		return
	}
	if doc.Status != models.DocStatusDraft && doc.Status != models.DocStatusReturned {
		respondError(w, http.StatusBadRequest, "Only draft or returned documents can be edited")
		return
	}

	var body CreateDocumentRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if body.Subject != "" {
		doc.Subject = body.Subject
	}
	if body.Type != "" {
		if !models.ValidDocType(body.Type) {
			respondError(w, http.StatusBadRequest, "Invalid document type")
			return
		}
		doc.Type = body.Type
	}

	if err := r.db.Save(&doc).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update document")
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

// loadVisibleDocument fetches the document and enforces read access: owner,
// chain participant, admin, or anyone when the document is public.
func (r *Router) loadVisibleDocument(w http.ResponseWriter, req *http.Request) (*models.Document, bool) {
	vars := mux.Vars(req)
	userID := middleware.UserID(req)

	var doc models.Document
	if err := r.db.Preload("Owner").Preload("Files").First(&doc, "document_id = ?", vars["id"]).Error; err != nil {
		respondError(w, http.StatusNotFound, "Document not found")
		return nil, false
	}

	if doc.IsPublic || doc.OwnerID == userID || middleware.IsAdmin(req) {
		return &doc, true
	}
	var count int64
	r.db.Model(&models.DocumentRecipient{}).
		Where("document_id = ? AND user_id = ?", doc.ID, userID).Count(&count)
	if count == 0 {
		respondError(w, http.StatusForbidden, "Not allowed to view this document")
		return nil, false
	}
	return &doc, true
}
