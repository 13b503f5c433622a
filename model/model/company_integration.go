package model

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/jinzhu/gorm/dialects/postgres"
)

// CompanyIntegration is an interface for company_integrations table.
// One row per (company, integration type).
type CompanyIntegration struct {
	CompanyID    string          `gorm:"primary_key:true;auto_increment:false" json:"company_id"`
	Type         string          `gorm:"primary_key:true;auto_increment:false" json:"type"`
	Status       string          `gorm:"not null;default:'pending'" json:"status"`
	Config       *postgres.Jsonb `json:"config,omitempty"`
	LastTestAt   *time.Time      `json:"last_test_at,omitempty"`
	LastSyncAt   *time.Time      `json:"last_sync_at,omitempty"`
	ErrorMessage string          `gorm:"default:null" json:"error_message,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

const (
	IntegrationStatusActive   = "active"
	IntegrationStatusInactive = "inactive"
	IntegrationStatusError    = "error"
	IntegrationStatusPending  = "pending"

	IntegrationTypeSalesforce = "salesforce"
)

// SalesforceIntegrationConfig is the shape of the config blob for
// salesforce integrations. Token expiry is a unix timestamp; a zero
// value means the instance never reported one.
type SalesforceIntegrationConfig struct {
	AccessToken    string `json:"access_token,omitempty"`
	RefreshToken   string `json:"refresh_token,omitempty"`
	InstanceURL    string `json:"instance_url,omitempty"`
	TokenIssuedAt  int64  `json:"token_issued_at,omitempty"`
	TokenExpiresAt int64  `json:"token_expires_at,omitempty"`
}

// GetSalesforceConfig decodes the integration config blob.
func (ci *CompanyIntegration) GetSalesforceConfig() (*SalesforceIntegrationConfig, error) {
	if ci.Config == nil {
		return nil, errors.New("empty integration config")
	}

	var config SalesforceIntegrationConfig
	if err := json.Unmarshal(ci.Config.RawMessage, &config); err != nil {
		return nil, err
	}

	return &config, nil
}

// EncodeSalesforceConfig builds the jsonb config blob from config values.
func EncodeSalesforceConfig(config *SalesforceIntegrationConfig) (*postgres.Jsonb, error) {
	enConfig, err := json.Marshal(config)
	if err != nil {
		return nil, err
	}

	return &postgres.Jsonb{RawMessage: json.RawMessage(enConfig)}, nil
}

// CompanyIntegrationPermission is an interface for the legacy
// company_integration_permissions table. Kept only as the fallback token
// location for companies authorized before config blobs carried tokens.
type CompanyIntegrationPermission struct {
	ID          string    `gorm:"primary_key:true" json:"id"`
	CompanyID   string    `gorm:"not null" json:"company_id"`
	Type        string    `gorm:"not null" json:"type"`
	AccessToken string    `json:"access_token"`
	InstanceURL string    `json:"instance_url"`
	IssuedAt    time.Time `json:"issued_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// Legacy permission tokens carry no expiry field. Treat them as valid for
// a fixed window from issuance.
const LegacyTokenMaxAge = 2 * time.Hour

// IsExpired reports whether the legacy token is outside its age window.
func (p *CompanyIntegrationPermission) IsExpired(at time.Time) bool {
	return p.AccessToken == "" || at.Sub(p.IssuedAt) > LegacyTokenMaxAge
}
