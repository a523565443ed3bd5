package models

import (
	"time"

	"gorm.io/gorm"
)

// Recipient statuses (one ledger row transitions pending -> terminal exactly once)
const (
	RecipientPending   = "pending"
	RecipientApproved  = "approved"
	RecipientRejected  = "rejected"
	RecipientReturned  = "returned"
	RecipientForwarded = "forwarded"
)

// DocumentRecipient is one row of a document's recipient ledger: a person who
// holds or has held the document. Rows are append-only; each row is mutated
// exactly once, when its holder responds or forwards.
type DocumentRecipient struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	DocumentID string `gorm:"column:document_id;type:uuid;not null;index" json:"documentId"`
	UserID     string `gorm:"column:user_id;type:uuid;not null;index" json:"userId"`
	User       *UserAuth `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Status   string `gorm:"default:'pending';index" json:"status"`
	Sequence int    `gorm:"not null" json:"sequence"` // chain order, strictly increasing per document
	Round    int    `gorm:"default:1" json:"round"`   // which send of the document this row belongs to

	ForwardedBy *string `gorm:"column:forwarded_by;type:uuid" json:"forwardedBy,omitempty"`

	IsActive        bool `gorm:"column:is_active;default:false;index" json:"isActive"`
	IsFinalApprover bool `gorm:"column:is_final_approver;default:false" json:"isFinalApprover"`

	Comments    string     `json:"comments,omitempty"`
	RespondedAt *time.Time `json:"respondedAt,omitempty"`

	// Optional evidence attached with the response
	ResponseFileID *uint         `json:"responseFileId,omitempty"`
	ResponseFile   *DocumentFile `gorm:"foreignKey:ResponseFileID" json:"responseFile,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name
func (DocumentRecipient) TableName() string {
	return "document_recipients"
}

// Responded reports whether the row has left the pending state
func (r *DocumentRecipient) Responded() bool {
	return r.Status != RecipientPending
}
