package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Document types
const (
	DocTypeSpecialOrder = "special_order"
	DocTypeOrder        = "order"
	DocTypeMemorandum   = "memorandum"
	DocTypeForInfo      = "for_info" // informational broadcast, no approval chain
)

// Document statuses
const (
	DocStatusDraft     = "draft"
	DocStatusPending   = "pending"
	DocStatusInReview  = "in_review"
	DocStatusApproved  = "approved"
	DocStatusRejected  = "rejected"
	DocStatusReturned  = "returned"
	DocStatusCancelled = "cancelled"
)

// ValidDocType reports whether t is one of the known document types
func ValidDocType(t string) bool {
	switch t {
	case DocTypeSpecialOrder, DocTypeOrder, DocTypeMemorandum, DocTypeForInfo:
		return true
	}
	return false
}

// TerminalDocStatus reports whether a document can no longer move through the chain
func TerminalDocStatus(s string) bool {
	return s == DocStatusApproved || s == DocStatusRejected || s == DocStatusCancelled
}

// Document represents a routed document: immutable identity plus a status
// that is derived from its recipient ledger after every mutation
type Document struct {
	ID           string `gorm:"column:document_id;primaryKey;type:uuid;default:gen_random_uuid()" json:"documentId"`
	OwnerID      string `gorm:"column:owner_id;type:uuid;not null;index" json:"ownerId"`
	Owner        *UserAuth `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Subject      string `gorm:"not null" json:"subject"`
	Type         string `gorm:"not null;index" json:"type"`
	Status       string `gorm:"default:'draft';index" json:"status"`
	TrackingCode string `gorm:"unique;not null" json:"trackingCode"`
	IsPublic     bool   `gorm:"default:false" json:"isPublic"`

	// Routing plan captured at send time: ordered through-user ids plus the
	// designated final recipient. Authoritative for final-approver checks.
	PlannedRoute     datatypes.JSON `gorm:"type:jsonb" json:"plannedRoute,omitempty"`
	FinalRecipientID *string        `gorm:"type:uuid" json:"finalRecipientId,omitempty"`

	// RoutingRound counts sends. A returned document that is re-edited and
	// re-sent starts a new round; status aggregation only looks at rows of
	// the current round, while the ledger itself stays append-only.
	RoutingRound int        `gorm:"default:0" json:"routingRound"`
	SentAt       *time.Time `json:"sentAt,omitempty"`

	Recipients []DocumentRecipient `gorm:"foreignKey:DocumentID" json:"recipients,omitempty"`
	Files      []DocumentFile      `gorm:"foreignKey:DocumentID" json:"files,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name
func (Document) TableName() string {
	return "documents"
}
