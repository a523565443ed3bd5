package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veyra-io/docflowgo/internal/models"
)

func TestBuildPlanShapeErrors(t *testing.T) {
	_, err := BuildPlan("carrier_pigeon", nil, "u1", nil)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = BuildPlan(models.DocTypeForInfo, nil, "", nil)
	require.ErrorIs(t, err, ErrNoRecipients)

	_, err = BuildPlan(models.DocTypeOrder, nil, "", []string{"u2"})
	require.ErrorIs(t, err, ErrNoPrimaryRecipient)
}

func TestBuildPlanBroadcastDedupes(t *testing.T) {
	plan, err := BuildPlan(models.DocTypeForInfo, []string{"u1", "u2", "u1", ""}, "", nil)
	require.NoError(t, err)
	assert.True(t, plan.Broadcast())
	assert.Equal(t, []string{"u1", "u2"}, plan.BroadcastIDs)
	assert.Empty(t, plan.FinalRecipientID(), "broadcasts have no final approver")
}

func TestBuildPlanChainFinalRecipient(t *testing.T) {
	// the last through-user is the planned final approver
	plan, err := BuildPlan(models.DocTypeOrder, nil, "u7", []string{"u3", "u9"})
	require.NoError(t, err)
	assert.Equal(t, "u9", plan.FinalRecipientID())

	// without through-users the initial recipient is also the last hop
	plan, err = BuildPlan(models.DocTypeMemorandum, nil, "u7", nil)
	require.NoError(t, err)
	assert.Equal(t, "u7", plan.FinalRecipientID())

	// the initial recipient never doubles as a through-user
	plan, err = BuildPlan(models.DocTypeOrder, nil, "u7", []string{"u7", "u3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"u3"}, plan.ThroughIDs)
}

func TestSeedEntriesChain(t *testing.T) {
	plan, err := BuildPlan(models.DocTypeOrder, nil, "u7", []string{"u3"})
	require.NoError(t, err)

	entries := plan.SeedEntries("doc-1", 1)
	require.Len(t, entries, 1)
	assert.Equal(t, "u7", entries[0].UserID)
	assert.Equal(t, 1, entries[0].Sequence)
	assert.True(t, entries[0].IsActive)
	assert.False(t, entries[0].IsFinalApprover, "through-users remain, u7 is not the last hop")
}

func TestSeedEntriesChainWithoutThroughUsers(t *testing.T) {
	plan, err := BuildPlan(models.DocTypeOrder, nil, "u7", nil)
	require.NoError(t, err)

	entries := plan.SeedEntries("doc-1", 1)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].IsFinalApprover, "sole recipient is the final approver")
}

func TestSeedEntriesBroadcast(t *testing.T) {
	plan, err := BuildPlan(models.DocTypeForInfo, []string{"u1", "u2", "u3"}, "", nil)
	require.NoError(t, err)

	entries := plan.SeedEntries("doc-1", 1)
	require.Len(t, entries, 3)
	for i, e := range entries {
		assert.Equal(t, i+1, e.Sequence, "sequences stay gap-free from 1")
		assert.True(t, e.IsActive, "broadcast recipients act in parallel")
		assert.False(t, e.IsFinalApprover)
	}
}

func TestSeedEntriesContinuesSequenceAcrossRounds(t *testing.T) {
	plan, err := BuildPlan(models.DocTypeOrder, nil, "u7", nil)
	require.NoError(t, err)

	// a re-send after a return picks up where the old round stopped
	entries := plan.SeedEntries("doc-1", 4)
	require.Len(t, entries, 1)
	assert.Equal(t, 4, entries[0].Sequence)
}

func TestNextThrough(t *testing.T) {
	plan, err := BuildPlan(models.DocTypeOrder, nil, "u7", []string{"u3", "u9"})
	require.NoError(t, err)

	ledger := []models.DocumentRecipient{
		{UserID: "u7", Status: models.RecipientForwarded, Sequence: 1},
	}
	assert.Equal(t, "u3", plan.NextThrough(ledger))

	ledger = append(ledger, models.DocumentRecipient{UserID: "u3", Status: models.RecipientPending, Sequence: 2})
	assert.Equal(t, "u9", plan.NextThrough(ledger))

	ledger = append(ledger, models.DocumentRecipient{UserID: "u9", Status: models.RecipientPending, Sequence: 3})
	assert.Empty(t, plan.NextThrough(ledger))
}
