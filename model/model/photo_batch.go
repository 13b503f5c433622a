package model

import (
	"time"
)

// PhotoBatch is an interface for photo_batches table. Batches are created
// by the mobile app against one scanned reference document id and are the
// unit of erp synchronization. Capture and editing of batches is owned by
// the app's persistence layer; this service consumes them read-only.
type PhotoBatch struct {
	ID          string    `gorm:"primary_key:true" json:"id"`
	CompanyID   string    `gorm:"not null" json:"company_id"`
	UserID      string    `gorm:"default:null" json:"user_id,omitempty"`
	ReferenceID string    `gorm:"not null" json:"reference_id"`
	Name        string    `json:"name,omitempty"`
	PhotoCount  int       `gorm:"not null;default:0" json:"photo_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Photo is an interface for photos table.
type Photo struct {
	ID          string    `gorm:"primary_key:true" json:"id"`
	BatchID     string    `gorm:"not null" json:"batch_id"`
	CompanyID   string    `gorm:"not null" json:"company_id"`
	FileName    string    `gorm:"not null" json:"file_name"`
	StoragePath string    `gorm:"not null" json:"storage_path"`
	PublicURL   string    `json:"public_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
