package routing

// The active-holder guard: pure scans over a ledger snapshot. The engine runs
// them inside the same transaction as the write they protect, so the answer
// cannot go stale between the check and the mutation.

import (
	"github.com/veyra-io/docflowgo/internal/models"
)

// activeEntries returns the indices of rows with is_active = true.
// For chain documents this has length 0 or 1; broadcasts may have many.
func activeEntries(ledger []models.DocumentRecipient) []int {
	var idx []int
	for i := range ledger {
		if ledger[i].IsActive {
			idx = append(idx, i)
		}
	}
	return idx
}

// currentHolder returns the unique active entry, or nil when the document is
// terminal or paused. Only meaningful for chain documents; a broadcast has no
// single holder.
func currentHolder(ledger []models.DocumentRecipient) *models.DocumentRecipient {
	idx := activeEntries(ledger)
	if len(idx) != 1 {
		return nil
	}
	return &ledger[idx[0]]
}

// activeEntryFor returns the acting user's active ledger row, or nil. A nil
// result covers both "never was a holder" and "already responded".
func activeEntryFor(ledger []models.DocumentRecipient, userID string) *models.DocumentRecipient {
	for i := range ledger {
		if ledger[i].UserID == userID && ledger[i].IsActive {
			return &ledger[i]
		}
	}
	return nil
}

// latestEntryFor returns the user's most recent row regardless of activity,
// or nil if the user never appeared in the chain.
func latestEntryFor(ledger []models.DocumentRecipient, userID string) *models.DocumentRecipient {
	var found *models.DocumentRecipient
	for i := range ledger {
		if ledger[i].UserID == userID {
			if found == nil || ledger[i].Sequence > found.Sequence {
				found = &ledger[i]
			}
		}
	}
	return found
}

// maxSequence returns the highest sequence number in the ledger, 0 when empty
func maxSequence(ledger []models.DocumentRecipient) int {
	max := 0
	for i := range ledger {
		if ledger[i].Sequence > max {
			max = ledger[i].Sequence
		}
	}
	return max
}
