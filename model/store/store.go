package store

import (
	"time"

	"fieldsync/model/model"
)

// Store is the persistence contract for the integration layer. Methods
// return an http status code alongside values: StatusFound/StatusCreated/
// StatusAccepted on success, StatusNotFound when a lookup misses and
// StatusInternalServerError on store failures.
type Store interface {
	// company integrations
	GetCompanyIntegration(companyID, integrationType string) (*model.CompanyIntegration, int)
	UpsertCompanyIntegration(integration *model.CompanyIntegration) int
	UpdateCompanyIntegrationConfig(companyID, integrationType string, config *model.SalesforceIntegrationConfig) int
	MarkCompanyIntegrationTested(companyID, integrationType, status, errorMessage string) int
	StampCompanyIntegrationSync(companyID, integrationType string) int
	DeleteCompanyIntegration(companyID, integrationType string) int
	GetCompanyIntegrationPermission(companyID, integrationType string) (*model.CompanyIntegrationPermission, int)

	// object mappings
	GetObjectMappings(companyID string) ([]model.ObjectMapping, int)
	GetActiveObjectMappings(companyID string) ([]model.ObjectMapping, int)
	UpsertObjectMapping(mapping *model.ObjectMapping) int
	DeleteObjectMapping(companyID, prefix string) int
	SeedDefaultObjectMappings(companyID string) int

	// erp sync statuses
	GetErpSyncStatus(batchID, system string) (*model.ErpSyncStatus, int)
	UpdateErpSyncStatus(batchID, system, companyID, status string, update *model.ErpSyncStatusUpdate) int
	GetPendingSyncBatches(companyID, system string) ([]model.ErpSyncStatus, int)

	// photo batches
	GetPhotoBatch(batchID string) (*model.PhotoBatch, int)
	GetPhotosByBatch(batchID string) ([]model.Photo, int)

	// integration errors
	CreateIntegrationErrors(integrationErrors []model.IntegrationError) int
	GetIntegrationErrorsSince(companyID string, since time.Time) ([]model.IntegrationError, int)
}
