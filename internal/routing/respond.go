package routing

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/veyra-io/docflowgo/internal/models"
)

// Decisions a holder can record. Forwarding is a separate engine operation,
// not a decision variant; the chain only advances through Forward.
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
	DecisionReturn  = "return"
)

func decisionStatus(decision string) (string, bool) {
	switch decision {
	case DecisionApprove:
		return models.RecipientApproved, true
	case DecisionReject:
		return models.RecipientRejected, true
	case DecisionReturn:
		return models.RecipientReturned, true
	}
	return "", false
}

// Respond records the acting holder's decision on their active ledger row,
// deactivates it, and recomputes the document status from the ledger. Reject
// and return require an explanation; approve does not. A second call for the
// same holder fails with ErrNotAuthorizedHolder because the row is no longer
// active - that is the double-submit defense.
func (e *Engine) Respond(docID, actorID, decision, comments string, responseFileID *uint) (*models.Document, error) {
	status, ok := decisionStatus(decision)
	if !ok {
		return nil, validationf("unknown decision: " + decision)
	}
	if (decision == DecisionReject || decision == DecisionReturn) && strings.TrimSpace(comments) == "" {
		return nil, validationf("comments are required when rejecting or returning a document")
	}

	var result *models.Document
	var events []Event

	err := e.withDocument(docID, func(tx *gorm.DB, doc *models.Document, ledger []models.DocumentRecipient) error {
		events = nil // the transaction may retry
		entry, err := applyDecision(doc, ledger, actorID, status, comments, time.Now().UTC(), e.forInfo)
		if err != nil {
			return err
		}
		if responseFileID != nil {
			if err := e.checkResponseFile(tx, doc.ID, actorID, *responseFileID); err != nil {
				return err
			}
			entry.ResponseFileID = responseFileID
		}

		if err := tx.Save(entry).Error; err != nil {
			return err
		}
		if err := tx.Save(doc).Error; err != nil {
			return err
		}

		events = append(events, Event{
			Type:       models.EventRecipientResponded,
			DocumentID: doc.ID,
			ActorID:    actorID,
			Decision:   decision,
			DocStatus:  doc.Status,
			Recipients: []string{doc.OwnerID},
		})
		result = doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.emit(events)
	return result, nil
}

// checkResponseFile verifies the referenced upload belongs to this document
// and was uploaded by the responder.
func (e *Engine) checkResponseFile(tx *gorm.DB, docID, userID string, fileID uint) error {
	var count int64
	if err := tx.Model(&models.DocumentFile{}).
		Where("id = ? AND document_id = ? AND uploader_id = ?", fileID, docID, userID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return validationf("response file does not belong to this document")
	}
	return nil
}
