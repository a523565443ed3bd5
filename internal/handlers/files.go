package handlers

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/veyra-io/docflowgo/internal/middleware"
	"github.com/veyra-io/docflowgo/internal/models"
)

const maxUploadSize = 32 << 20 // 32MB

// uploadFile attaches a file to a document. kind=original is restricted to
// the owner; kind=response is for holders attaching evidence with their
// decision. Bytes land on disk under UPLOAD_DIR, metadata in document_files.
func (r *Router) uploadFile(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	userID := middleware.UserID(req)

	var doc models.Document
	if err := r.db.First(&doc, "document_id = ?", vars["id"]).Error; err != nil {
		respondError(w, http.StatusNotFound, "Document not found")
		return
	}

	req.Body = http.MaxBytesReader(w, req.Body, maxUploadSize)
	if err := req.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart payload")
		return
	}

	kind := req.FormValue("kind")
	if kind == "" {
		kind = models.FileKindOriginal
	}
	switch kind {
	case models.FileKindOriginal:
		if doc.OwnerID != userID {
			respondError(w, http.StatusForbidden, "Only the owner may attach original files")
			return
		}
		if doc.Status != models.DocStatusDraft && doc.Status != models.DocStatusReturned {
			respondError(w, http.StatusBadRequest, "Original files can only be attached before sending")
			return
		}
	case models.FileKindResponse:
		// holders attach evidence; membership in the chain is enough
		var count int64
		r.db.Model(&models.DocumentRecipient{}).
			Where("document_id = ? AND user_id = ?", doc.ID, userID).Count(&count)
		if count == 0 && doc.OwnerID != userID {
			respondError(w, http.StatusForbidden, "Not a participant of this document")
			return
		}
	default:
		respondError(w, http.StatusBadRequest, "Invalid file kind")
		return
	}

	file, header, err := req.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "File field is required")
		return
	}
	defer file.Close()

	dir := filepath.Join(r.cfg.UploadDir, doc.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("❌ Failed to create upload dir: %v", err)
		respondError(w, http.StatusInternalServerError, "Storage error")
		return
	}
	storagePath := filepath.Join(dir, uuid.New().String()+filepath.Ext(header.Filename))

	dst, err := os.Create(storagePath)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Storage error")
		return
	}
	size, err := io.Copy(dst, file)
	dst.Close()
	if err != nil {
		os.Remove(storagePath)
		respondError(w, http.StatusInternalServerError, "Storage error")
		return
	}

	record := models.DocumentFile{
		DocumentID:  doc.ID,
		UploaderID:  userID,
		Kind:        kind,
		FileName:    header.Filename,
		StoragePath: storagePath,
		Size:        size,
		ContentType: header.Header.Get("Content-Type"),
	}
	if err := r.db.Create(&record).Error; err != nil {
		os.Remove(storagePath)
		respondError(w, http.StatusInternalServerError, "Database error")
		return
	}

	log.Printf("📎 File attached: %s (%d bytes, %s) to document %s", record.FileName, size, kind, doc.ID)
	respondJSON(w, http.StatusCreated, record)
}

// downloadFile streams an attachment back to a participant
func (r *Router) downloadFile(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	fileID, err := strconv.ParseUint(vars["fileId"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid file ID")
		return
	}

	var record models.DocumentFile
	if err := r.db.First(&record, uint(fileID)).Error; err != nil {
		respondError(w, http.StatusNotFound, "File not found")
		return
	}

	// reuse document visibility rules
	req = mux.SetURLVars(req, map[string]string{"id": record.DocumentID})
	if _, ok := r.loadVisibleDocument(w, req); !ok {
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", record.FileName))
	if record.ContentType != "" {
		w.Header().Set("Content-Type", record.ContentType)
	}
	http.ServeFile(w, req, record.StoragePath)
}
