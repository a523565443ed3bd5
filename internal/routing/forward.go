package routing

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/veyra-io/docflowgo/internal/models"
)

// Forward relays the document to its next holder. One atomic operation closes
// the sender's row (status forwarded) and appends the receiver's active row
// at the next sequence number; splitting those two writes would let a racing
// responder break the single-active-holder invariant.
//
// Finality of the new row comes from the persisted routing plan first, then
// from the pluggable final-approver policy; the client has no say in it.
// Whether the target sits in the same office as the sender is caller policy -
// the engine does not care.
func (e *Engine) Forward(docID, fromUserID, toUserID, comments string, responseFileID *uint) (*models.DocumentRecipient, error) {
	if toUserID == "" {
		return nil, validationf("forward target is required")
	}
	if toUserID == fromUserID {
		return nil, validationf("cannot forward a document to yourself")
	}

	var created *models.DocumentRecipient
	var events []Event

	err := e.withDocument(docID, func(tx *gorm.DB, doc *models.Document, ledger []models.DocumentRecipient) error {
		events = nil // the transaction may retry
		target, err := e.loadUser(tx, toUserID)
		if err != nil {
			return err
		}

		sender, entry, err := applyForward(doc, ledger, fromUserID, target, comments, time.Now().UTC(), e.finalApprover, e.forInfo)
		if err != nil {
			return err
		}

		if sender != nil {
			if responseFileID != nil {
				if err := e.checkResponseFile(tx, doc.ID, fromUserID, *responseFileID); err != nil {
					return err
				}
				sender.ResponseFileID = responseFileID
			}
			if err := tx.Save(sender).Error; err != nil {
				return err
			}
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		if err := tx.Save(doc).Error; err != nil {
			return err
		}

		events = append(events, Event{
			Type:       models.EventHolderChanged,
			DocumentID: doc.ID,
			ActorID:    fromUserID,
			DocStatus:  doc.Status,
			Recipients: []string{toUserID, doc.OwnerID},
		})
		created = &entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.emit(events)
	return created, nil
}

func (e *Engine) loadUser(tx *gorm.DB, id string) (*models.UserAuth, error) {
	var user models.UserAuth
	if err := tx.First(&user, "id = ? AND is_active = true", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRecipient
		}
		return nil, err
	}
	return &user, nil
}
