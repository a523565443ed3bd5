package models

import (
	"time"

	"gorm.io/gorm"
)

// File kinds
const (
	FileKindOriginal = "original" // uploaded by the owner at creation time
	FileKindResponse = "response" // evidence attached by a responder
)

// DocumentFile records an uploaded attachment. Only metadata lives here;
// bytes sit on disk under the configured upload directory.
type DocumentFile struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	DocumentID  string `gorm:"column:document_id;type:uuid;not null;index" json:"documentId"`
	UploaderID  string `gorm:"column:uploader_id;type:uuid;not null" json:"uploaderId"`
	Kind        string `gorm:"not null;default:'original'" json:"kind"`
	FileName    string `gorm:"not null" json:"fileName"`
	StoragePath string `gorm:"not null" json:"-"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name
func (DocumentFile) TableName() string {
	return "document_files"
}
