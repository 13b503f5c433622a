package postgres

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"fieldsync/model/model"
)

// CreateIntegrationErrors appends error rows to the durable log. Rows
// without an id get one assigned.
func (store *Postgres) CreateIntegrationErrors(integrationErrors []model.IntegrationError) int {
	if len(integrationErrors) == 0 {
		return http.StatusBadRequest
	}

	for i := range integrationErrors {
		if integrationErrors[i].CompanyID == "" || integrationErrors[i].Message == "" {
			log.Error("Invalid integration error row on create.")
			return http.StatusBadRequest
		}

		if integrationErrors[i].ID == "" {
			integrationErrors[i].ID = uuid.New().String()
		}
		if integrationErrors[i].Timestamp.IsZero() {
			integrationErrors[i].Timestamp = time.Now()
		}

		if err := store.db.Create(&integrationErrors[i]).Error; err != nil {
			log.WithError(err).WithField("company_id",
				integrationErrors[i].CompanyID).Error("Failed to create integration error.")
			return http.StatusInternalServerError
		}
	}

	return http.StatusCreated
}

// GetIntegrationErrorsSince returns the company's error rows at or after
// the given time, newest first.
func (store *Postgres) GetIntegrationErrorsSince(companyID string,
	since time.Time) ([]model.IntegrationError, int) {

	logCtx := log.WithField("company_id", companyID)

	if companyID == "" {
		logCtx.Error("Invalid company_id on get integration errors.")
		return nil, http.StatusBadRequest
	}

	var integrationErrors []model.IntegrationError
	if err := store.db.Order("timestamp DESC").Where(
		"company_id = ? AND timestamp >= ?", companyID, since).Find(
		&integrationErrors).Error; err != nil {

		logCtx.WithError(err).Error("Failed to get integration errors.")
		return nil, http.StatusInternalServerError
	}

	return integrationErrors, http.StatusFound
}
