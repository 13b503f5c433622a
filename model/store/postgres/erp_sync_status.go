package postgres

import (
	"net/http"
	"time"

	"github.com/jinzhu/gorm"
	log "github.com/sirupsen/logrus"

	"fieldsync/model/model"
)

// GetErpSyncStatus returns the status row for (batch, system).
func (store *Postgres) GetErpSyncStatus(batchID, system string) (*model.ErpSyncStatus, int) {
	logCtx := log.WithFields(log.Fields{"batch_id": batchID, "system": system})

	if batchID == "" || system == "" {
		logCtx.Error("Invalid batch_id or system on get erp sync status.")
		return nil, http.StatusBadRequest
	}

	var syncStatus model.ErpSyncStatus
	if err := store.db.Limit(1).Where("batch_id = ? AND system = ?",
		batchID, system).Find(&syncStatus).Error; err != nil {

		if gorm.IsRecordNotFoundError(err) {
			return nil, http.StatusNotFound
		}

		logCtx.WithError(err).Error("Failed to get erp sync status.")
		return nil, http.StatusInternalServerError
	}

	return &syncStatus, http.StatusFound
}

// UpdateErpSyncStatus upserts the status row for (batch, system). The
// retry counter is bumped on the row itself so concurrent writers cannot
// under-count.
func (store *Postgres) UpdateErpSyncStatus(batchID, system, companyID,
	status string, update *model.ErpSyncStatusUpdate) int {

	logCtx := log.WithFields(log.Fields{
		"batch_id": batchID, "system": system, "status": status})

	if batchID == "" || system == "" || companyID == "" || status == "" {
		logCtx.Error("Invalid fields on update erp sync status.")
		return http.StatusBadRequest
	}

	if update == nil {
		update = &model.ErpSyncStatusUpdate{}
	}

	retryDelta := 0
	if update.IncrementRetry {
		retryDelta = 1
	}

	var syncedAt *time.Time
	currentTime := time.Now()
	if status == model.ErpSyncStatusSynced {
		syncedAt = &currentTime
	}

	upsertStmnt := "INSERT INTO erp_sync_statuses (batch_id, system, company_id, status, error_message," +
		" attachment_id, record_id, synced_at, retry_count, last_sync_attempt, created_at, updated_at)" +
		" VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)" +
		" ON CONFLICT (batch_id, system) DO UPDATE SET status = excluded.status," +
		" company_id = excluded.company_id, error_message = excluded.error_message," +
		" attachment_id = excluded.attachment_id, record_id = excluded.record_id," +
		" synced_at = excluded.synced_at," +
		" retry_count = erp_sync_statuses.retry_count + ?," +
		" last_sync_attempt = excluded.last_sync_attempt, updated_at = excluded.updated_at"

	if err := store.db.Exec(upsertStmnt, batchID, system, companyID, status,
		update.ErrorMessage, update.AttachmentID, update.RecordID, syncedAt,
		retryDelta, currentTime, currentTime, currentTime, retryDelta).Error; err != nil {

		logCtx.WithError(err).Error("Failed to update erp sync status.")
		return http.StatusInternalServerError
	}

	return http.StatusAccepted
}

// GetPendingSyncBatches returns status rows needing attention, i.e. whose
// latest status is pending or failed, oldest attempt first.
func (store *Postgres) GetPendingSyncBatches(companyID, system string) ([]model.ErpSyncStatus, int) {
	logCtx := log.WithFields(log.Fields{"company_id": companyID, "system": system})

	if companyID == "" || system == "" {
		logCtx.Error("Invalid company_id or system on get pending sync batches.")
		return nil, http.StatusBadRequest
	}

	var statuses []model.ErpSyncStatus
	if err := store.db.Order("last_sync_attempt ASC").Where(
		"company_id = ? AND system = ? AND status IN (?)",
		companyID, system, []string{model.ErpSyncStatusPending, model.ErpSyncStatusFailed}).Find(
		&statuses).Error; err != nil {

		logCtx.WithError(err).Error("Failed to get pending sync batches.")
		return nil, http.StatusInternalServerError
	}

	return statuses, http.StatusFound
}
