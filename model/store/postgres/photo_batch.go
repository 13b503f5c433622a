package postgres

import (
	"net/http"

	"github.com/jinzhu/gorm"
	log "github.com/sirupsen/logrus"

	"fieldsync/model/model"
)

// GetPhotoBatch returns the batch row by id.
func (store *Postgres) GetPhotoBatch(batchID string) (*model.PhotoBatch, int) {
	logCtx := log.WithField("batch_id", batchID)

	if batchID == "" {
		logCtx.Error("Invalid batch_id on get photo batch.")
		return nil, http.StatusBadRequest
	}

	var batch model.PhotoBatch
	if err := store.db.Limit(1).Where("id = ?", batchID).Find(&batch).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, http.StatusNotFound
		}

		logCtx.WithError(err).Error("Failed to get photo batch.")
		return nil, http.StatusInternalServerError
	}

	return &batch, http.StatusFound
}

// GetPhotosByBatch returns the batch's photos in capture order.
func (store *Postgres) GetPhotosByBatch(batchID string) ([]model.Photo, int) {
	logCtx := log.WithField("batch_id", batchID)

	if batchID == "" {
		logCtx.Error("Invalid batch_id on get photos by batch.")
		return nil, http.StatusBadRequest
	}

	var photos []model.Photo
	if err := store.db.Order("created_at ASC").Where("batch_id = ?",
		batchID).Find(&photos).Error; err != nil {

		logCtx.WithError(err).Error("Failed to get photos by batch.")
		return nil, http.StatusInternalServerError
	}

	return photos, http.StatusFound
}
