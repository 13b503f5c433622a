package salesforce

import (
	"net/http"
	"time"

	"fieldsync/model/model"
	"fieldsync/model/store"
)

// fakeStore is an in-memory store.Store for tests. Unimplemented methods
// panic via the embedded nil interface.
type fakeStore struct {
	store.Store

	integrations map[string]*model.CompanyIntegration
	permissions  map[string]*model.CompanyIntegrationPermission
	mappings     map[string][]model.ObjectMapping
	batches      map[string]*model.PhotoBatch
	statuses     map[string]*model.ErpSyncStatus

	mappingQueries   int
	reportedErrors   []model.IntegrationError
	failCreateErrors bool
	syncStamps       int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		integrations: make(map[string]*model.CompanyIntegration),
		permissions:  make(map[string]*model.CompanyIntegrationPermission),
		mappings:     make(map[string][]model.ObjectMapping),
		batches:      make(map[string]*model.PhotoBatch),
		statuses:     make(map[string]*model.ErpSyncStatus),
	}
}

func statusKey(batchID, system string) string {
	return batchID + "|" + system
}

func (f *fakeStore) GetCompanyIntegration(companyID, integrationType string) (*model.CompanyIntegration, int) {
	integration, exists := f.integrations[companyID+"|"+integrationType]
	if !exists {
		return nil, http.StatusNotFound
	}
	return integration, http.StatusFound
}

func (f *fakeStore) UpdateCompanyIntegrationConfig(companyID, integrationType string,
	config *model.SalesforceIntegrationConfig) int {

	integration, exists := f.integrations[companyID+"|"+integrationType]
	if !exists {
		return http.StatusNotFound
	}

	enConfig, err := model.EncodeSalesforceConfig(config)
	if err != nil {
		return http.StatusInternalServerError
	}
	integration.Config = enConfig
	return http.StatusAccepted
}

func (f *fakeStore) MarkCompanyIntegrationTested(companyID, integrationType,
	status, errorMessage string) int {

	integration, exists := f.integrations[companyID+"|"+integrationType]
	if !exists {
		return http.StatusNotFound
	}
	integration.Status = status
	integration.ErrorMessage = errorMessage
	return http.StatusAccepted
}

func (f *fakeStore) StampCompanyIntegrationSync(companyID, integrationType string) int {
	f.syncStamps++
	return http.StatusAccepted
}

func (f *fakeStore) GetCompanyIntegrationPermission(companyID,
	integrationType string) (*model.CompanyIntegrationPermission, int) {

	permission, exists := f.permissions[companyID+"|"+integrationType]
	if !exists {
		return nil, http.StatusNotFound
	}
	return permission, http.StatusFound
}

func (f *fakeStore) GetActiveObjectMappings(companyID string) ([]model.ObjectMapping, int) {
	f.mappingQueries++

	active := make([]model.ObjectMapping, 0)
	for _, mapping := range f.mappings[companyID] {
		if mapping.Active == nil || *mapping.Active {
			active = append(active, mapping)
		}
	}
	return active, http.StatusFound
}

func (f *fakeStore) GetPhotoBatch(batchID string) (*model.PhotoBatch, int) {
	batch, exists := f.batches[batchID]
	if !exists {
		return nil, http.StatusNotFound
	}
	return batch, http.StatusFound
}

func (f *fakeStore) GetErpSyncStatus(batchID, system string) (*model.ErpSyncStatus, int) {
	syncStatus, exists := f.statuses[statusKey(batchID, system)]
	if !exists {
		return nil, http.StatusNotFound
	}
	return syncStatus, http.StatusFound
}

func (f *fakeStore) UpdateErpSyncStatus(batchID, system, companyID,
	status string, update *model.ErpSyncStatusUpdate) int {

	if update == nil {
		update = &model.ErpSyncStatusUpdate{}
	}

	key := statusKey(batchID, system)
	syncStatus, exists := f.statuses[key]
	if !exists {
		syncStatus = &model.ErpSyncStatus{BatchID: batchID, System: system}
		f.statuses[key] = syncStatus
	}

	currentTime := time.Now()
	syncStatus.CompanyID = companyID
	syncStatus.Status = status
	syncStatus.ErrorMessage = update.ErrorMessage
	syncStatus.AttachmentID = update.AttachmentID
	syncStatus.RecordID = update.RecordID
	syncStatus.LastSyncAttempt = &currentTime
	if status == model.ErpSyncStatusSynced {
		syncStatus.SyncedAt = &currentTime
	}
	if update.IncrementRetry {
		syncStatus.RetryCount++
	}

	return http.StatusAccepted
}

func (f *fakeStore) GetPendingSyncBatches(companyID, system string) ([]model.ErpSyncStatus, int) {
	pending := make([]model.ErpSyncStatus, 0)
	for _, syncStatus := range f.statuses {
		if syncStatus.CompanyID == companyID && syncStatus.System == system &&
			syncStatus.NeedsAttention() {
			pending = append(pending, *syncStatus)
		}
	}
	return pending, http.StatusFound
}

func (f *fakeStore) CreateIntegrationErrors(integrationErrors []model.IntegrationError) int {
	if f.failCreateErrors {
		return http.StatusInternalServerError
	}
	f.reportedErrors = append(f.reportedErrors, integrationErrors...)
	return http.StatusCreated
}

func (f *fakeStore) addSalesforceIntegration(companyID string,
	config *model.SalesforceIntegrationConfig) {

	enConfig, _ := model.EncodeSalesforceConfig(config)
	f.integrations[companyID+"|"+model.IntegrationTypeSalesforce] = &model.CompanyIntegration{
		CompanyID: companyID,
		Type:      model.IntegrationTypeSalesforce,
		Status:    model.IntegrationStatusActive,
		Config:    enConfig,
	}
}
