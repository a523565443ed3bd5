package routing

import (
	"github.com/veyra-io/docflowgo/internal/models"
)

// ForInfoPolicy decides the aggregate status of a broadcast document once no
// veto applies. Informational documents have no approval semantics, so what
// "done" means is a deployment decision, not engine logic.
type ForInfoPolicy func(ledger []models.DocumentRecipient) string

// ForInfoAllAcknowledged treats a broadcast as approved once every recipient
// has responded, and in_review until then. This is the default policy.
func ForInfoAllAcknowledged(ledger []models.DocumentRecipient) string {
	for i := range ledger {
		if !ledger[i].Responded() {
			return models.DocStatusInReview
		}
	}
	return models.DocStatusApproved
}

// Aggregate derives the document status from the full recipient ledger.
// Priority order: any reject wins, then any return, then unanimous approval,
// otherwise the document is still in review. Rows closed as "forwarded" are
// hops, not decisions, and never block unanimity.
//
// The function is pure; running it twice over the same ledger yields the same
// status. Draft, pending and cancelled are owner-driven document states set
// outside the ledger and are not reachable from here.
func Aggregate(docType string, ledger []models.DocumentRecipient, forInfo ForInfoPolicy) string {
	for i := range ledger {
		if ledger[i].Status == models.RecipientRejected {
			return models.DocStatusRejected
		}
	}
	for i := range ledger {
		if ledger[i].Status == models.RecipientReturned {
			return models.DocStatusReturned
		}
	}

	if docType == models.DocTypeForInfo {
		if forInfo == nil {
			forInfo = ForInfoAllAcknowledged
		}
		return forInfo(ledger)
	}

	decided := 0
	for i := range ledger {
		switch ledger[i].Status {
		case models.RecipientForwarded:
			// a hop, ignore
		case models.RecipientApproved:
			decided++
		default:
			return models.DocStatusInReview
		}
	}
	if decided == 0 {
		return models.DocStatusInReview
	}
	return models.DocStatusApproved
}

// LedgerRound filters the ledger down to the rows of one routing round.
// Aggregation runs over the current round only, so a document returned in an
// earlier round is not vetoed forever once it is re-edited and re-sent.
func LedgerRound(ledger []models.DocumentRecipient, round int) []models.DocumentRecipient {
	out := make([]models.DocumentRecipient, 0, len(ledger))
	for i := range ledger {
		if ledger[i].Round == round {
			out = append(out, ledger[i])
		}
	}
	return out
}
