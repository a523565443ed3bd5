package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notification event types emitted by the routing engine
const (
	EventRecipientResponded = "recipient_responded"
	EventHolderChanged      = "holder_changed"
	EventDocumentStatus     = "document_status"
)

// Notification is one delivered routing event. Rows are written after the
// ledger mutation commits, then pushed to the recipient over the websocket
// hub if they are connected.
type Notification struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserID     string         `gorm:"column:user_id;type:uuid;not null;index" json:"userId"`
	DocumentID string         `gorm:"column:document_id;type:uuid;not null;index" json:"documentId"`
	Event      string         `gorm:"not null" json:"event"`
	Payload    datatypes.JSON `gorm:"type:jsonb" json:"payload,omitempty"`
	IsRead     bool           `gorm:"default:false;index" json:"isRead"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name
func (Notification) TableName() string {
	return "notifications"
}
