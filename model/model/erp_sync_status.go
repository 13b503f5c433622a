package model

import (
	"time"
)

// ErpSyncStatus is an interface for erp_sync_statuses table. One row per
// (batch, erp system) recording the latest sync outcome.
type ErpSyncStatus struct {
	BatchID         string     `gorm:"primary_key:true;auto_increment:false" json:"batch_id"`
	System          string     `gorm:"primary_key:true;auto_increment:false" json:"system"`
	CompanyID       string     `gorm:"not null" json:"company_id"`
	Status          string     `gorm:"not null;default:'pending'" json:"status"`
	SyncedAt        *time.Time `json:"synced_at,omitempty"`
	ErrorMessage    string     `gorm:"default:null" json:"error_message,omitempty"`
	AttachmentID    string     `gorm:"default:null" json:"attachment_id,omitempty"`
	RecordID        string     `gorm:"default:null" json:"record_id,omitempty"`
	RetryCount      int        `gorm:"not null;default:0" json:"retry_count"`
	LastSyncAttempt *time.Time `json:"last_sync_attempt,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Pending rows are seeded by the batch capture service when a batch is
// queued for sync; this service only moves them forward, through syncing
// into synced or failed.
const (
	ErpSyncStatusPending = "pending"
	ErpSyncStatusSyncing = "syncing"
	ErpSyncStatusSynced  = "synced"
	ErpSyncStatusFailed  = "failed"

	ErpSystemSalesforce = "salesforce"
)

// ErpSyncStatusUpdate carries the optional fields of a status upsert.
// IncrementRetry bumps the stored counter atomically on the row.
type ErpSyncStatusUpdate struct {
	ErrorMessage   string
	AttachmentID   string
	RecordID       string
	IncrementRetry bool
}

// IsUploaded reports whether the batch has already reached the erp system.
// The uploaded flag is derived from status, there is no separate boolean.
func (s *ErpSyncStatus) IsUploaded() bool {
	return s.Status == ErpSyncStatusSynced
}

// NeedsAttention reports whether the batch should show up on the pending
// sync list.
func (s *ErpSyncStatus) NeedsAttention() bool {
	return s.Status == ErpSyncStatusPending || s.Status == ErpSyncStatusFailed
}
