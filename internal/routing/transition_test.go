package routing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veyra-io/docflowgo/internal/models"
)

func chainDoc(finalID string) *models.Document {
	doc := &models.Document{
		ID:           "doc-1",
		OwnerID:      "owner",
		Type:         models.DocTypeOrder,
		Status:       models.DocStatusPending,
		RoutingRound: 1,
	}
	if finalID != "" {
		doc.FinalRecipientID = &finalID
	}
	return doc
}

func countActive(ledger []models.DocumentRecipient) int {
	return len(activeEntries(ledger))
}

func TestApplyDecisionClosesEntry(t *testing.T) {
	doc := chainDoc("u7")
	ledger := []models.DocumentRecipient{
		{DocumentID: doc.ID, UserID: "u7", Status: models.RecipientPending, Sequence: 1, Round: 1, IsActive: true, IsFinalApprover: true},
	}
	now := time.Now().UTC()

	entry, err := applyDecision(doc, ledger, "u7", models.RecipientApproved, "ok", now, nil)
	require.NoError(t, err)
	assert.Equal(t, models.RecipientApproved, entry.Status)
	assert.False(t, entry.IsActive)
	assert.Equal(t, &now, entry.RespondedAt)
	assert.Equal(t, models.DocStatusApproved, doc.Status)
	assert.Zero(t, countActive(ledger))
}

func TestApplyDecisionDoubleSubmit(t *testing.T) {
	doc := chainDoc("u7")
	ledger := []models.DocumentRecipient{
		{DocumentID: doc.ID, UserID: "u7", Status: models.RecipientPending, Sequence: 1, Round: 1, IsActive: true},
	}
	now := time.Now().UTC()

	_, err := applyDecision(doc, ledger, "u7", models.RecipientApproved, "", now, nil)
	require.NoError(t, err)

	// the row is closed; the same holder acting again is rejected, and the
	// ledger still has exactly one terminal row for that holder
	_, err = applyDecision(doc, ledger, "u7", models.RecipientApproved, "", now, nil)
	require.ErrorIs(t, err, ErrNotAuthorizedHolder)
	require.Len(t, ledger, 1)
}

func TestApplyDecisionStranger(t *testing.T) {
	doc := chainDoc("u7")
	ledger := []models.DocumentRecipient{
		{DocumentID: doc.ID, UserID: "u7", Status: models.RecipientPending, Sequence: 1, Round: 1, IsActive: true},
	}
	_, err := applyDecision(doc, ledger, "intruder", models.RecipientApproved, "", time.Now(), nil)
	require.ErrorIs(t, err, ErrNotAuthorizedHolder)
}

func TestApplyDecisionOnTerminalDocument(t *testing.T) {
	doc := chainDoc("u7")
	doc.Status = models.DocStatusCancelled
	ledger := []models.DocumentRecipient{
		{DocumentID: doc.ID, UserID: "u7", Status: models.RecipientPending, Sequence: 1, Round: 1, IsActive: true},
	}
	_, err := applyDecision(doc, ledger, "u7", models.RecipientApproved, "", time.Now(), nil)
	require.ErrorIs(t, err, ErrNotRoutable)
}

func TestApplyForwardCreatesExactlyOneActiveRow(t *testing.T) {
	doc := chainDoc("u3")
	ledger := []models.DocumentRecipient{
		{DocumentID: doc.ID, UserID: "u7", Status: models.RecipientPending, Sequence: 1, Round: 1, IsActive: true},
	}
	target := &models.UserAuth{ID: "u3", Role: models.RoleUser, IsActive: true}

	sender, created, err := applyForward(doc, ledger, "u7", target, "please review", time.Now().UTC(), DefaultFinalApproverPolicy, nil)
	require.NoError(t, err)

	require.NotNil(t, sender)
	assert.Equal(t, models.RecipientForwarded, sender.Status)
	assert.False(t, sender.IsActive)

	assert.Equal(t, "u3", created.UserID)
	assert.Equal(t, 2, created.Sequence, "sequence = previous max + 1")
	assert.True(t, created.IsActive)
	assert.Equal(t, "u7", *created.ForwardedBy)
	assert.True(t, created.IsFinalApprover, "u3 is the planned final recipient")

	// at most one active row across the whole ledger
	assert.Zero(t, countActive(ledger))
	assert.Equal(t, models.DocStatusInReview, doc.Status)
}

func TestApplyForwardAdminPolicyGrantsFinality(t *testing.T) {
	doc := chainDoc("u9")
	ledger := []models.DocumentRecipient{
		{DocumentID: doc.ID, UserID: "u7", Status: models.RecipientPending, Sequence: 1, Round: 1, IsActive: true},
	}
	admin := &models.UserAuth{ID: "boss", Role: models.RoleAdmin, IsActive: true}

	_, created, err := applyForward(doc, ledger, "u7", admin, "", time.Now(), DefaultFinalApproverPolicy, nil)
	require.NoError(t, err)
	assert.True(t, created.IsFinalApprover, "administrative authority qualifies even off-plan")
}

func TestApplyForwardNonFinalTarget(t *testing.T) {
	doc := chainDoc("u9")
	ledger := []models.DocumentRecipient{
		{DocumentID: doc.ID, UserID: "u7", Status: models.RecipientPending, Sequence: 1, Round: 1, IsActive: true},
	}
	target := &models.UserAuth{ID: "u5", Role: models.RoleUser, IsActive: true}

	_, created, err := applyForward(doc, ledger, "u7", target, "", time.Now(), DefaultFinalApproverPolicy, nil)
	require.NoError(t, err)
	assert.False(t, created.IsFinalApprover)
}

func TestApplyForwardLostRace(t *testing.T) {
	// u7 already forwarded once; u3 now holds the document. u7's second
	// forward must fail instead of spawning a second active row.
	doc := chainDoc("u3")
	ledger := []models.DocumentRecipient{
		{DocumentID: doc.ID, UserID: "u7", Status: models.RecipientForwarded, Sequence: 1, Round: 1},
		{DocumentID: doc.ID, UserID: "u3", Status: models.RecipientPending, Sequence: 2, Round: 1, IsActive: true},
	}
	target := &models.UserAuth{ID: "u5", Role: models.RoleUser, IsActive: true}

	_, _, err := applyForward(doc, ledger, "u7", target, "", time.Now(), DefaultFinalApproverPolicy, nil)
	require.ErrorIs(t, err, ErrChainAlreadyActive)
	assert.Equal(t, 1, countActive(ledger))
}

func TestApplyForwardByStranger(t *testing.T) {
	doc := chainDoc("u3")
	ledger := []models.DocumentRecipient{
		{DocumentID: doc.ID, UserID: "u7", Status: models.RecipientPending, Sequence: 1, Round: 1, IsActive: true},
	}
	target := &models.UserAuth{ID: "u5", Role: models.RoleUser, IsActive: true}

	_, _, err := applyForward(doc, ledger, "intruder", target, "", time.Now(), DefaultFinalApproverPolicy, nil)
	require.ErrorIs(t, err, ErrNotAuthorizedHolder)
}

func TestApplyForwardByPastBroadcastRecipient(t *testing.T) {
	// broadcast recipient u7 already acknowledged, then relays the document
	// to a colleague who was not on the original list; the new row joins the
	// broadcast as another parallel recipient
	doc := &models.Document{
		ID:           "doc-1",
		OwnerID:      "owner",
		Type:         models.DocTypeForInfo,
		Status:       models.DocStatusInReview,
		RoutingRound: 1,
	}
	ledger := []models.DocumentRecipient{
		{DocumentID: doc.ID, UserID: "u7", Status: models.RecipientApproved, Sequence: 1, Round: 1},
		{DocumentID: doc.ID, UserID: "u8", Status: models.RecipientPending, Sequence: 2, Round: 1, IsActive: true},
	}
	target := &models.UserAuth{ID: "u3", Role: models.RoleUser, IsActive: true}

	sender, created, err := applyForward(doc, ledger, "u7", target, "", time.Now(), DefaultFinalApproverPolicy, nil)
	require.NoError(t, err)
	assert.Nil(t, sender, "the acknowledged row stays as it was")
	assert.Equal(t, 3, created.Sequence)
	assert.True(t, created.IsActive)
	assert.Equal(t, models.DocStatusInReview, doc.Status)
}

func TestApplyForwardToActiveBroadcastRecipient(t *testing.T) {
	// u8 is still a pending broadcast recipient; forwarding to them must not
	// hand them a second live row
	doc := &models.Document{
		ID:           "doc-1",
		OwnerID:      "owner",
		Type:         models.DocTypeForInfo,
		Status:       models.DocStatusInReview,
		RoutingRound: 1,
	}
	ledger := []models.DocumentRecipient{
		{DocumentID: doc.ID, UserID: "u7", Status: models.RecipientPending, Sequence: 1, Round: 1, IsActive: true},
		{DocumentID: doc.ID, UserID: "u8", Status: models.RecipientPending, Sequence: 2, Round: 1, IsActive: true},
	}
	target := &models.UserAuth{ID: "u8", Role: models.RoleUser, IsActive: true}

	_, _, err := applyForward(doc, ledger, "u7", target, "", time.Now(), DefaultFinalApproverPolicy, nil)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	active := 0
	for i := range ledger {
		if ledger[i].UserID == "u8" && ledger[i].IsActive {
			active++
		}
	}
	assert.Equal(t, 1, active, "one live row per holder")
	require.True(t, ledger[0].IsActive, "the failed forward must not close the sender's row")
}

func TestApplyForwardClearsSenderFinality(t *testing.T) {
	// the planned final approver routes onward instead of deciding; the flag
	// moves to the new row rather than lingering on the forwarded one
	doc := chainDoc("u7")
	ledger := []models.DocumentRecipient{
		{DocumentID: doc.ID, UserID: "u7", Status: models.RecipientPending, Sequence: 1, Round: 1, IsActive: true, IsFinalApprover: true},
	}
	admin := &models.UserAuth{ID: "boss", Role: models.RoleAdmin, IsActive: true}

	sender, created, err := applyForward(doc, ledger, "u7", admin, "", time.Now(), DefaultFinalApproverPolicy, nil)
	require.NoError(t, err)
	assert.False(t, sender.IsFinalApprover)
	assert.True(t, created.IsFinalApprover)
}

// Full chain walk-through: an order sent to user 7 with user 3 as the
// through-user, forwarded once, then approved by the final approver.
func TestChainEndToEnd(t *testing.T) {
	plan, err := BuildPlan(models.DocTypeOrder, nil, "u7", []string{"u3"})
	require.NoError(t, err)

	doc := chainDoc(plan.FinalRecipientID())
	require.Equal(t, "u3", *doc.FinalRecipientID)

	ledger := plan.SeedEntries(doc.ID, 1)
	for i := range ledger {
		ledger[i].Round = 1
	}
	require.Len(t, ledger, 1)
	require.True(t, ledger[0].IsActive)

	// user 7 forwards to user 3
	target := &models.UserAuth{ID: "u3", Role: models.RoleUser, IsActive: true}
	sender, hop, err := applyForward(doc, ledger, "u7", target, "routing onward", time.Now().UTC(), DefaultFinalApproverPolicy, nil)
	require.NoError(t, err)
	assert.Equal(t, models.RecipientForwarded, sender.Status)
	assert.True(t, hop.IsFinalApprover)
	ledger = append(ledger, hop)

	// user 3 approves with comments "ok"
	entry, err := applyDecision(doc, ledger, "u3", models.RecipientApproved, "ok", time.Now().UTC(), nil)
	require.NoError(t, err)
	assert.Equal(t, models.RecipientApproved, entry.Status)
	assert.False(t, entry.IsActive)

	assert.Equal(t, models.DocStatusApproved, doc.Status)
	assert.Zero(t, countActive(ledger))

	// monotonic, gap-free sequences from 1
	for i := range ledger {
		assert.Equal(t, i+1, ledger[i].Sequence)
	}
}
