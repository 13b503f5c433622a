package model

import (
	"encoding/json"
	"time"

	"github.com/jinzhu/gorm/dialects/postgres"
)

// IntegrationError is an interface for integration_errors table.
// Append-only log of integration failures, durable mirror of the
// in-process error queue.
type IntegrationError struct {
	ID        string          `gorm:"primary_key:true" json:"id"`
	CompanyID string          `gorm:"not null" json:"company_id"`
	Type      string          `gorm:"not null" json:"type"`
	Component string          `json:"component,omitempty"`
	Message   string          `gorm:"not null" json:"message"`
	Details   *postgres.Jsonb `json:"details,omitempty"`
	BatchID   string          `gorm:"default:null" json:"batch_id,omitempty"`
	UserID    string          `gorm:"default:null" json:"user_id,omitempty"`
	Timestamp time.Time       `gorm:"not null" json:"timestamp"`
	CreatedAt time.Time       `json:"created_at"`
}

// EncodeErrorDetails builds the details blob from an arbitrary payload.
// A payload that cannot be marshalled is dropped, not fatal.
func EncodeErrorDetails(details map[string]interface{}) *postgres.Jsonb {
	if details == nil {
		return nil
	}

	enDetails, err := json.Marshal(details)
	if err != nil {
		return nil
	}

	return &postgres.Jsonb{RawMessage: json.RawMessage(enDetails)}
}
