package routing

// Pure state transitions over a (document, ledger) snapshot. The engine runs
// these inside the document-locked transaction and persists whatever they
// touched; tests run them directly against in-memory snapshots.

import (
	"time"

	"github.com/veyra-io/docflowgo/internal/models"
)

// applyDecision closes the acting holder's active row with a terminal
// decision status and re-derives the document status. Returns the mutated
// ledger row so the caller knows what to persist.
func applyDecision(doc *models.Document, ledger []models.DocumentRecipient, actorID, status string, comments string, now time.Time, forInfo ForInfoPolicy) (*models.DocumentRecipient, error) {
	// holder check first: a double-submit after the chain finished must fail
	// the same way it fails while the chain is live
	entry := activeEntryFor(ledger, actorID)
	if entry == nil {
		return nil, ErrNotAuthorizedHolder
	}
	if models.TerminalDocStatus(doc.Status) {
		return nil, ErrNotRoutable
	}

	entry.Status = status
	entry.Comments = comments
	entry.RespondedAt = &now
	entry.IsActive = false

	doc.Status = Aggregate(doc.Type, LedgerRound(ledger, doc.RoutingRound), forInfo)
	return entry, nil
}

// applyForward closes the sender's active row as forwarded (when one exists)
// and builds the receiver's new active row at the next sequence number.
// sender is nil when a past holder forwards a paused chain.
func applyForward(doc *models.Document, ledger []models.DocumentRecipient, fromUserID string, target *models.UserAuth, comments string, now time.Time, finalPolicy FinalApproverPolicy, forInfo ForInfoPolicy) (sender *models.DocumentRecipient, created models.DocumentRecipient, err error) {
	if models.TerminalDocStatus(doc.Status) || doc.Status == models.DocStatusReturned {
		return nil, created, ErrNotRoutable
	}

	sender = activeEntryFor(ledger, fromUserID)
	if sender == nil {
		// A past holder may still route onward, but only while the chain is
		// paused; if someone else holds the document the race is lost.
		if latestEntryFor(ledger, fromUserID) == nil {
			return nil, created, ErrNotAuthorizedHolder
		}
		if doc.Type != models.DocTypeForInfo && len(activeEntries(ledger)) > 0 {
			return nil, created, ErrChainAlreadyActive
		}
	}

	// the target must not already hold an active row; on a broadcast every
	// recipient is active, and a second row for one of them would give that
	// holder two live entries at once
	if activeEntryFor(ledger, target.ID) != nil {
		return nil, created, validationf("target already holds this document")
	}

	if sender != nil {
		sender.Status = models.RecipientForwarded
		sender.Comments = comments
		sender.RespondedAt = &now
		sender.IsActive = false
		// finality travels with the document, not the closed row
		sender.IsFinalApprover = false
	}

	// broadcasts have no terminal approval semantics, so no finality either
	final := false
	if doc.Type != models.DocTypeForInfo {
		if doc.FinalRecipientID != nil && *doc.FinalRecipientID == target.ID {
			final = true
		} else if finalPolicy != nil && finalPolicy(target) {
			final = true
		}
	}

	created = models.DocumentRecipient{
		DocumentID:      doc.ID,
		UserID:          target.ID,
		Status:          models.RecipientPending,
		Sequence:        maxSequence(ledger) + 1,
		Round:           doc.RoutingRound,
		ForwardedBy:     &fromUserID,
		IsActive:        true,
		IsFinalApprover: final,
	}

	doc.Status = Aggregate(doc.Type, append(LedgerRound(ledger, doc.RoutingRound), created), forInfo)
	return sender, created, nil
}
