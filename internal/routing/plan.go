package routing

import (
	"github.com/veyra-io/docflowgo/internal/models"
)

// Plan is the resolved routing plan for one send: either a broadcast recipient
// set (for_info) or a first hop plus the ordered through-users ending at the
// designated final recipient. It is computed once at send time and persisted
// on the document so finality checks never depend on client-supplied flags.
type Plan struct {
	DocumentType string
	BroadcastIDs []string // for_info only
	InitialID    string   // chain types only
	ThroughIDs   []string // chain types only, in hop order
}

// Broadcast reports whether the plan fans out to parallel recipients
func (p *Plan) Broadcast() bool {
	return p.DocumentType == models.DocTypeForInfo
}

// FinalRecipientID is the planned last hop: the final through-user, or the
// initial recipient when there are no through-users. Empty for broadcasts.
func (p *Plan) FinalRecipientID() string {
	if p.Broadcast() {
		return ""
	}
	if n := len(p.ThroughIDs); n > 0 {
		return p.ThroughIDs[n-1]
	}
	return p.InitialID
}

// BuildPlan validates the shape of a send request and normalizes it into a
// Plan. User existence is checked separately, against the database, by the
// engine; this function only knows about shape.
func BuildPlan(docType string, recipientIDs []string, initialID string, throughIDs []string) (*Plan, error) {
	if !models.ValidDocType(docType) {
		return nil, validationf("unknown document type: " + docType)
	}

	if docType == models.DocTypeForInfo {
		ids := dedupe(recipientIDs)
		if len(ids) == 0 {
			return nil, ErrNoRecipients
		}
		return &Plan{DocumentType: docType, BroadcastIDs: ids}, nil
	}

	if initialID == "" {
		return nil, ErrNoPrimaryRecipient
	}
	through := make([]string, 0, len(throughIDs))
	for _, id := range throughIDs {
		if id == "" || id == initialID {
			continue
		}
		through = append(through, id)
	}
	return &Plan{
		DocumentType: docType,
		InitialID:    initialID,
		ThroughIDs:   dedupe(through),
	}, nil
}

// UserIDs returns every user id the plan references, for existence validation
func (p *Plan) UserIDs() []string {
	if p.Broadcast() {
		return p.BroadcastIDs
	}
	ids := make([]string, 0, len(p.ThroughIDs)+1)
	ids = append(ids, p.InitialID)
	ids = append(ids, p.ThroughIDs...)
	return ids
}

// SeedEntries builds the initial ledger rows for the plan, starting at
// startSeq. Broadcasts get one parallel active row per recipient; chain types
// get a single active row for the initial recipient, with through-users
// realized lazily by forwarding as each predecessor responds.
func (p *Plan) SeedEntries(docID string, startSeq int) []models.DocumentRecipient {
	if p.Broadcast() {
		entries := make([]models.DocumentRecipient, 0, len(p.BroadcastIDs))
		for i, id := range p.BroadcastIDs {
			entries = append(entries, models.DocumentRecipient{
				DocumentID: docID,
				UserID:     id,
				Status:     models.RecipientPending,
				Sequence:   startSeq + i,
				IsActive:   true,
			})
		}
		return entries
	}

	return []models.DocumentRecipient{{
		DocumentID:      docID,
		UserID:          p.InitialID,
		Status:          models.RecipientPending,
		Sequence:        startSeq,
		IsActive:        true,
		IsFinalApprover: len(p.ThroughIDs) == 0,
	}}
}

// NextThrough returns the first planned through-user that has never appeared
// in the ledger, or "" when the plan is exhausted. Used to suggest the next
// hop to a forwarding holder; the holder is free to pick someone else.
func (p *Plan) NextThrough(ledger []models.DocumentRecipient) string {
	seen := make(map[string]bool, len(ledger))
	for _, e := range ledger {
		seen[e.UserID] = true
	}
	for _, id := range p.ThroughIDs {
		if !seen[id] {
			return id
		}
	}
	return ""
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
