package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veyra-io/docflowgo/internal/models"
)

func ledgerWith(statuses ...string) []models.DocumentRecipient {
	ledger := make([]models.DocumentRecipient, 0, len(statuses))
	for i, s := range statuses {
		ledger = append(ledger, models.DocumentRecipient{
			DocumentID: "doc-1",
			UserID:     "user-" + string(rune('a'+i)),
			Status:     s,
			Sequence:   i + 1,
			Round:      1,
			IsActive:   s == models.RecipientPending,
		})
	}
	return ledger
}

func TestAggregatePriorityOrder(t *testing.T) {
	testCases := []struct {
		name     string
		statuses []string
		want     string
	}{
		{"all approved", []string{models.RecipientApproved, models.RecipientApproved}, models.DocStatusApproved},
		{"reject dominates approve", []string{models.RecipientApproved, models.RecipientRejected}, models.DocStatusRejected},
		{"reject dominates return", []string{models.RecipientReturned, models.RecipientRejected}, models.DocStatusRejected},
		{"return dominates approve", []string{models.RecipientApproved, models.RecipientReturned}, models.DocStatusReturned},
		{"single returned", []string{models.RecipientReturned}, models.DocStatusReturned},
		{"mixed pending stays in review", []string{models.RecipientApproved, models.RecipientPending}, models.DocStatusInReview},
		{"empty ledger stays in review", nil, models.DocStatusInReview},
		{"only forwarded rows stay in review", []string{models.RecipientForwarded}, models.DocStatusInReview},
		{"forwarded hop never blocks unanimity", []string{models.RecipientForwarded, models.RecipientApproved}, models.DocStatusApproved},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Aggregate(models.DocTypeOrder, ledgerWith(tc.statuses...), nil)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAggregateIsIdempotent(t *testing.T) {
	ledger := ledgerWith(models.RecipientForwarded, models.RecipientApproved, models.RecipientPending)
	first := Aggregate(models.DocTypeOrder, ledger, nil)
	for i := 0; i < 5; i++ {
		require.Equal(t, first, Aggregate(models.DocTypeOrder, ledger, nil))
	}
}

func TestAggregateForInfoDefaultPolicy(t *testing.T) {
	// acknowledged = any terminal response; done once everyone responded
	partial := ledgerWith(models.RecipientApproved, models.RecipientPending)
	assert.Equal(t, models.DocStatusInReview, Aggregate(models.DocTypeForInfo, partial, nil))

	done := ledgerWith(models.RecipientApproved, models.RecipientApproved)
	assert.Equal(t, models.DocStatusApproved, Aggregate(models.DocTypeForInfo, done, nil))
}

func TestAggregateForInfoRejectionDominates(t *testing.T) {
	// two broadcast recipients, one approves and one rejects - the veto wins
	// regardless of response order
	ledger := ledgerWith(models.RecipientApproved, models.RecipientRejected)
	assert.Equal(t, models.DocStatusRejected, Aggregate(models.DocTypeForInfo, ledger, nil))

	reversed := ledgerWith(models.RecipientRejected, models.RecipientApproved)
	assert.Equal(t, models.DocStatusRejected, Aggregate(models.DocTypeForInfo, reversed, nil))
}

func TestAggregateForInfoCustomPolicy(t *testing.T) {
	// a deployment may treat broadcasts as perpetually informational
	never := func([]models.DocumentRecipient) string { return models.DocStatusInReview }
	done := ledgerWith(models.RecipientApproved, models.RecipientApproved)
	assert.Equal(t, models.DocStatusInReview, Aggregate(models.DocTypeForInfo, done, never))
}

func TestLedgerRoundScopesAggregation(t *testing.T) {
	// round 1 ended in a return; the re-sent round 2 must not inherit the veto
	ledger := []models.DocumentRecipient{
		{UserID: "a", Status: models.RecipientReturned, Sequence: 1, Round: 1},
		{UserID: "a", Status: models.RecipientApproved, Sequence: 2, Round: 2},
	}
	assert.Equal(t, models.DocStatusReturned, Aggregate(models.DocTypeOrder, LedgerRound(ledger, 1), nil))
	assert.Equal(t, models.DocStatusApproved, Aggregate(models.DocTypeOrder, LedgerRound(ledger, 2), nil))
}
