package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/veyra-io/docflowgo/internal/middleware"
	"github.com/veyra-io/docflowgo/internal/routing"
)

// sendDocument hands the document to the routing resolver: recipients for a
// broadcast, or the first hop plus through-users for a chain
func (r *Router) sendDocument(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)

	var body routing.SendRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	doc, err := r.engine.Send(vars["id"], middleware.UserID(req), body)
	if err != nil {
		respondRoutingError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

// RespondRequest carries a holder's decision. The isFinalApprover flag some
// clients still send is deliberately ignored: finality belongs to the
// routing plan, not the form.
type RespondRequest struct {
	Status         string `json:"status"` // approve, reject, return
	Comments       string `json:"comments"`
	ResponseFileID *uint  `json:"responseFileId"`
}

// respondDocument records the active holder's decision
func (r *Router) respondDocument(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)

	var body RespondRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	doc, err := r.engine.Respond(vars["id"], middleware.UserID(req), body.Status, body.Comments, body.ResponseFileID)
	if err != nil {
		respondRoutingError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

// ForwardRequest names the next holder
type ForwardRequest struct {
	ForwardToID    string `json:"forward_to_id"`
	Comments       string `json:"comments"`
	ResponseFileID *uint  `json:"responseFileId"`
}

// forwardDocument relays the document to its next holder. Forwarding across
// offices needs no special handling here; the engine does not distinguish.
func (r *Router) forwardDocument(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)

	var body ForwardRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	entry, err := r.engine.Forward(vars["id"], middleware.UserID(req), body.ForwardToID, body.Comments, body.ResponseFileID)
	if err != nil {
		respondRoutingError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, entry)
}

// getChain returns the document plus its ordered recipient ledger
func (r *Router) getChain(w http.ResponseWriter, req *http.Request) {
	if _, ok := r.loadVisibleDocument(w, req); !ok {
		return
	}
	vars := mux.Vars(req)
	doc, err := r.engine.Chain(vars["id"])
	if err != nil {
		respondRoutingError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

// cancelDocument is the owner-driven terminal transition; idempotent
func (r *Router) cancelDocument(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	doc, err := r.engine.Cancel(vars["id"], middleware.UserID(req))
	if err != nil {
		respondRoutingError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

// publishDocument flips the public-visibility flag
func (r *Router) publishDocument(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)

	var body struct {
		IsPublic *bool `json:"isPublic"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	public := true
	if body.IsPublic != nil {
		public = *body.IsPublic
	}

	doc, err := r.engine.SetPublic(vars["id"], middleware.UserID(req), public)
	if err != nil {
		respondRoutingError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}
