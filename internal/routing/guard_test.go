package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/veyra-io/docflowgo/internal/models"
)

func TestCurrentHolder(t *testing.T) {
	ledger := []models.DocumentRecipient{
		{UserID: "u7", Status: models.RecipientForwarded, Sequence: 1},
		{UserID: "u3", Status: models.RecipientPending, Sequence: 2, IsActive: true},
	}
	holder := currentHolder(ledger)
	if assert.NotNil(t, holder) {
		assert.Equal(t, "u3", holder.UserID)
	}

	// no active rows: terminal or paused
	ledger[1].IsActive = false
	assert.Nil(t, currentHolder(ledger))
}

func TestCurrentHolderAmbiguousForBroadcast(t *testing.T) {
	ledger := []models.DocumentRecipient{
		{UserID: "u1", Status: models.RecipientPending, Sequence: 1, IsActive: true},
		{UserID: "u2", Status: models.RecipientPending, Sequence: 2, IsActive: true},
	}
	assert.Nil(t, currentHolder(ledger), "a broadcast has no single holder")
}

func TestActiveEntryForDistinguishesRows(t *testing.T) {
	// u7 held the document twice across forwards; only the later row is live
	ledger := []models.DocumentRecipient{
		{UserID: "u7", Status: models.RecipientForwarded, Sequence: 1},
		{UserID: "u3", Status: models.RecipientForwarded, Sequence: 2},
		{UserID: "u7", Status: models.RecipientPending, Sequence: 3, IsActive: true},
	}
	entry := activeEntryFor(ledger, "u7")
	if assert.NotNil(t, entry) {
		assert.Equal(t, 3, entry.Sequence)
	}
	assert.Nil(t, activeEntryFor(ledger, "u3"))
	assert.Nil(t, activeEntryFor(ledger, "nobody"))
}

func TestLatestEntryFor(t *testing.T) {
	ledger := []models.DocumentRecipient{
		{UserID: "u7", Status: models.RecipientForwarded, Sequence: 1},
		{UserID: "u7", Status: models.RecipientApproved, Sequence: 3},
	}
	entry := latestEntryFor(ledger, "u7")
	if assert.NotNil(t, entry) {
		assert.Equal(t, 3, entry.Sequence)
	}
	assert.Nil(t, latestEntryFor(ledger, "u9"))
}

func TestMaxSequence(t *testing.T) {
	assert.Zero(t, maxSequence(nil))
	ledger := []models.DocumentRecipient{
		{Sequence: 2}, {Sequence: 5}, {Sequence: 1},
	}
	assert.Equal(t, 5, maxSequence(ledger))
}
