package salesforce

import (
	"encoding/base64"
	"errors"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/jinzhu/gorm/dialects/postgres"
	log "github.com/sirupsen/logrus"

	"fieldsync/filestore"
	"fieldsync/model/model"
	"fieldsync/model/store"
	"fieldsync/services/errorcollector"
)

// Syncer drives photo batches into salesforce: resolve the batch's
// scanned reference id, locate the target record, upload the batch pdf
// and track per-batch sync status.
type Syncer struct {
	store       store.Store
	resolver    *Resolver
	credentials *CredentialProvider
	fileManager filestore.FileManager
	collector   *errorcollector.Collector
}

func NewSyncer(s store.Store, resolver *Resolver, credentials *CredentialProvider,
	fileManager filestore.FileManager, collector *errorcollector.Collector) *Syncer {

	return &Syncer{
		store:       s,
		resolver:    resolver,
		credentials: credentials,
		fileManager: fileManager,
		collector:   collector,
	}
}

// SyncResult is the per-batch outcome of a sync attempt. Failures are
// reported here, never propagated as errors.
type SyncResult struct {
	BatchID      string `json:"batch_id"`
	Success      bool   `json:"success"`
	Skipped      bool   `json:"skipped,omitempty"`
	Message      string `json:"message,omitempty"`
	RecordID     string `json:"record_id,omitempty"`
	AttachmentID string `json:"attachment_id,omitempty"`
}

// BulkSyncResult aggregates a bulk sync run.
type BulkSyncResult struct {
	Total        int          `json:"total"`
	SuccessCount int          `json:"success_count"`
	FailedCount  int          `json:"failed_count"`
	Results      []SyncResult `json:"results"`
	DurationMs   int64        `json:"duration_ms"`
}

// SyncBatch syncs a single batch to salesforce. A batch whose status is
// already synced short-circuits to success without touching the uploader.
func (syncer *Syncer) SyncBatch(companyID, batchID string) SyncResult {
	logCtx := log.WithFields(log.Fields{"company_id": companyID, "batch_id": batchID})

	syncStatus, errCode := syncer.store.GetErpSyncStatus(batchID, model.ErpSystemSalesforce)
	if errCode == http.StatusInternalServerError {
		return syncer.failBatch(companyID, batchID, "status_tracker",
			errors.New("failed to get erp sync status"))
	}
	if errCode == http.StatusFound && syncStatus.IsUploaded() {
		logCtx.Info("Batch already uploaded, skipping sync.")
		return SyncResult{
			BatchID:      batchID,
			Success:      true,
			Skipped:      true,
			RecordID:     syncStatus.RecordID,
			AttachmentID: syncStatus.AttachmentID,
		}
	}

	batch, errCode := syncer.store.GetPhotoBatch(batchID)
	if errCode != http.StatusFound {
		return syncer.failBatch(companyID, batchID, "sync", errors.New("photo batch not found"))
	}
	if batch.CompanyID != companyID {
		return syncer.failBatch(companyID, batchID, "sync",
			errors.New("photo batch does not belong to company"))
	}

	errCode = syncer.store.UpdateErpSyncStatus(batchID, model.ErpSystemSalesforce,
		companyID, model.ErpSyncStatusSyncing, nil)
	if errCode != http.StatusAccepted {
		return syncer.failBatch(companyID, batchID, "status_tracker",
			errors.New("failed to mark batch as syncing"))
	}

	resolved, err := syncer.resolver.Resolve(companyID, batch.ReferenceID)
	if err != nil {
		return syncer.failBatch(companyID, batchID, "object_mapping", err)
	}
	if resolved == nil {
		return syncer.failBatch(companyID, batchID, "object_mapping",
			errors.New("no active object mapping for prefix"))
	}

	creds, err := syncer.credentials.GetCredentials(companyID)
	if err != nil {
		return syncer.failBatch(companyID, batchID, "credentials", err)
	}
	if creds == nil {
		return syncer.failBatch(companyID, batchID, "credentials", model.ErrAuthRequired)
	}

	record, err := FindRecordByName(creds, resolved.ObjectName,
		resolved.NameField, resolved.RecordName)
	if err != nil {
		return syncer.failBatch(companyID, batchID, "record_locator", err)
	}
	if record == nil {
		return syncer.failBatch(companyID, batchID, "record_locator",
			errors.New("no matching record on salesforce"))
	}

	documentBase64, fileName, err := syncer.loadBatchPDF(companyID, batch.ReferenceID)
	if err != nil {
		return syncer.failBatch(companyID, batchID, "pdf", err)
	}

	uploadResult, err := UploadDocument(creds, record.ID, documentBase64, fileName)
	if err != nil {
		return syncer.failBatch(companyID, batchID, "upload", err)
	}

	errCode = syncer.store.UpdateErpSyncStatus(batchID, model.ErpSystemSalesforce,
		companyID, model.ErpSyncStatusSynced, &model.ErpSyncStatusUpdate{
			AttachmentID: uploadResult.DocumentID,
			RecordID:     record.ID,
		})
	if errCode != http.StatusAccepted {
		// Uploaded but not recorded. The next attempt re-uploads; flag it
		// loudly instead of failing the user's sync.
		logCtx.WithField("document_id", uploadResult.DocumentID).Error(
			"Batch uploaded but failed to mark as synced.")
	}

	syncer.store.StampCompanyIntegrationSync(companyID, model.IntegrationTypeSalesforce)

	logCtx.WithFields(log.Fields{
		"record_id":   record.ID,
		"document_id": uploadResult.DocumentID,
	}).Info("Batch synced to salesforce.")

	return SyncResult{
		BatchID:      batchID,
		Success:      true,
		RecordID:     record.ID,
		AttachmentID: uploadResult.DocumentID,
	}
}

// BulkSync drives SyncBatch over the batch ids, strictly sequentially.
// One batch's failure does not stop the loop.
func (syncer *Syncer) BulkSync(companyID string, batchIDs []string) BulkSyncResult {
	startTime := time.Now()

	result := BulkSyncResult{
		Total:   len(batchIDs),
		Results: make([]SyncResult, 0, len(batchIDs)),
	}

	for _, batchID := range batchIDs {
		syncResult := syncer.SyncBatch(companyID, batchID)
		if syncResult.Success {
			result.SuccessCount++
		} else {
			result.FailedCount++
		}
		result.Results = append(result.Results, syncResult)
	}

	result.DurationMs = time.Since(startTime).Milliseconds()

	log.WithFields(log.Fields{
		"company_id":    companyID,
		"total":         result.Total,
		"success_count": result.SuccessCount,
		"failed_count":  result.FailedCount,
		"duration_ms":   result.DurationMs,
	}).Info("Bulk sync completed.")

	return result
}

// loadBatchPDF reads the batch's generated pdf from object storage and
// base64 encodes it for the content api. PDF generation itself happens
// upstream, before sync is triggered.
func (syncer *Syncer) loadBatchPDF(companyID, referenceID string) (string, string, error) {
	dir, fileName := filestore.GetBatchPDFPathAndName(companyID, referenceID)

	reader, err := syncer.fileManager.Get(dir, fileName)
	if err != nil {
		return "", "", errors.New("batch pdf not found on storage")
	}
	defer reader.Close()

	pdfBytes, err := ioutil.ReadAll(reader)
	if err != nil {
		return "", "", err
	}

	return base64.StdEncoding.EncodeToString(pdfBytes), fileName, nil
}

// failBatch marks the attempt failed with an incremented retry count and
// mirrors the error to the integration error log. Typed external errors
// carry their step and status in the details blob.
func (syncer *Syncer) failBatch(companyID, batchID, component string, err error) SyncResult {
	log.WithFields(log.Fields{
		"company_id": companyID,
		"batch_id":   batchID,
		"component":  component,
	}).WithError(err).Error("Failed to sync batch to salesforce.")

	syncer.store.UpdateErpSyncStatus(batchID, model.ErpSystemSalesforce, companyID,
		model.ErpSyncStatusFailed, &model.ErpSyncStatusUpdate{
			ErrorMessage:   err.Error(),
			IncrementRetry: true,
		})

	var details *postgres.Jsonb
	switch externalErr := err.(type) {
	case *QueryError:
		details = model.EncodeErrorDetails(map[string]interface{}{
			"status_code": externalErr.StatusCode,
		})
	case *UploadStepError:
		details = model.EncodeErrorDetails(map[string]interface{}{
			"step":        externalErr.Step,
			"status_code": externalErr.StatusCode,
		})
	}

	if syncer.collector != nil {
		syncer.collector.Report(model.IntegrationError{
			CompanyID: companyID,
			Type:      model.IntegrationTypeSalesforce,
			Component: component,
			Message:   err.Error(),
			Details:   details,
			BatchID:   batchID,
		})
	}

	return SyncResult{BatchID: batchID, Success: false, Message: err.Error()}
}
