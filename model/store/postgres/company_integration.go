package postgres

import (
	"net/http"
	"time"

	"github.com/jinzhu/gorm"
	log "github.com/sirupsen/logrus"

	"fieldsync/model/model"
)

// GetCompanyIntegration returns the integration row for (company, type).
func (store *Postgres) GetCompanyIntegration(companyID, integrationType string) (*model.CompanyIntegration, int) {
	logCtx := log.WithFields(log.Fields{"company_id": companyID, "type": integrationType})

	if companyID == "" || integrationType == "" {
		logCtx.Error("Invalid company_id or type on get company integration.")
		return nil, http.StatusBadRequest
	}

	var integration model.CompanyIntegration
	if err := store.db.Limit(1).Where("company_id = ? AND type = ?",
		companyID, integrationType).Find(&integration).Error; err != nil {

		if gorm.IsRecordNotFoundError(err) {
			return nil, http.StatusNotFound
		}

		logCtx.WithError(err).Error("Failed to get company integration.")
		return nil, http.StatusInternalServerError
	}

	return &integration, http.StatusFound
}

// UpsertCompanyIntegration creates or overwrites the integration row for
// (company, type). Last write wins.
func (store *Postgres) UpsertCompanyIntegration(integration *model.CompanyIntegration) int {
	logCtx := log.WithFields(log.Fields{
		"company_id": integration.CompanyID, "type": integration.Type})

	if integration.CompanyID == "" || integration.Type == "" {
		logCtx.Error("Invalid company integration on upsert.")
		return http.StatusBadRequest
	}

	if integration.Status == "" {
		integration.Status = model.IntegrationStatusPending
	}

	existing, errCode := store.GetCompanyIntegration(integration.CompanyID, integration.Type)
	if errCode == http.StatusInternalServerError {
		return errCode
	}

	if errCode == http.StatusNotFound {
		if err := store.db.Create(integration).Error; err != nil {
			logCtx.WithError(err).Error("Failed to create company integration.")
			return http.StatusInternalServerError
		}

		return http.StatusCreated
	}

	updateFields := map[string]interface{}{
		"status":        integration.Status,
		"error_message": integration.ErrorMessage,
	}
	if integration.Config != nil {
		updateFields["config"] = integration.Config
	}

	if err := store.db.Model(&model.CompanyIntegration{}).Where(
		"company_id = ? AND type = ?", existing.CompanyID, existing.Type).Updates(
		updateFields).Error; err != nil {

		logCtx.WithError(err).Error("Failed to update company integration.")
		return http.StatusInternalServerError
	}

	return http.StatusAccepted
}

// UpdateCompanyIntegrationConfig replaces the config blob for the
// integration, leaving status untouched.
func (store *Postgres) UpdateCompanyIntegrationConfig(companyID, integrationType string,
	config *model.SalesforceIntegrationConfig) int {

	logCtx := log.WithFields(log.Fields{"company_id": companyID, "type": integrationType})

	if companyID == "" || integrationType == "" || config == nil {
		logCtx.Error("Invalid fields on update company integration config.")
		return http.StatusBadRequest
	}

	enConfig, err := model.EncodeSalesforceConfig(config)
	if err != nil {
		logCtx.WithError(err).Error("Failed to encode integration config.")
		return http.StatusInternalServerError
	}

	db := store.db.Model(&model.CompanyIntegration{}).Where(
		"company_id = ? AND type = ?", companyID, integrationType).Update("config", enConfig)
	if db.Error != nil {
		logCtx.WithError(db.Error).Error("Failed to update company integration config.")
		return http.StatusInternalServerError
	}
	if db.RowsAffected == 0 {
		return http.StatusNotFound
	}

	return http.StatusAccepted
}

// MarkCompanyIntegrationTested records the outcome of a connection test.
func (store *Postgres) MarkCompanyIntegrationTested(companyID, integrationType,
	status, errorMessage string) int {

	logCtx := log.WithFields(log.Fields{"company_id": companyID, "type": integrationType})

	if companyID == "" || integrationType == "" || status == "" {
		logCtx.Error("Invalid fields on mark company integration tested.")
		return http.StatusBadRequest
	}

	db := store.db.Model(&model.CompanyIntegration{}).Where(
		"company_id = ? AND type = ?", companyID, integrationType).Updates(
		map[string]interface{}{
			"status":        status,
			"error_message": errorMessage,
			"last_test_at":  time.Now(),
		})
	if db.Error != nil {
		logCtx.WithError(db.Error).Error("Failed to mark company integration tested.")
		return http.StatusInternalServerError
	}
	if db.RowsAffected == 0 {
		return http.StatusNotFound
	}

	return http.StatusAccepted
}

// StampCompanyIntegrationSync updates last_sync_at after a sync attempt.
func (store *Postgres) StampCompanyIntegrationSync(companyID, integrationType string) int {
	logCtx := log.WithFields(log.Fields{"company_id": companyID, "type": integrationType})

	if companyID == "" || integrationType == "" {
		return http.StatusBadRequest
	}

	if err := store.db.Model(&model.CompanyIntegration{}).Where(
		"company_id = ? AND type = ?", companyID, integrationType).Update(
		"last_sync_at", time.Now()).Error; err != nil {

		logCtx.WithError(err).Error("Failed to stamp company integration sync.")
		return http.StatusInternalServerError
	}

	return http.StatusAccepted
}

// DeleteCompanyIntegration removes the integration row. Explicit admin
// action only.
func (store *Postgres) DeleteCompanyIntegration(companyID, integrationType string) int {
	logCtx := log.WithFields(log.Fields{"company_id": companyID, "type": integrationType})

	if companyID == "" || integrationType == "" {
		return http.StatusBadRequest
	}

	db := store.db.Where("company_id = ? AND type = ?",
		companyID, integrationType).Delete(&model.CompanyIntegration{})
	if db.Error != nil {
		logCtx.WithError(db.Error).Error("Failed to delete company integration.")
		return http.StatusInternalServerError
	}
	if db.RowsAffected == 0 {
		return http.StatusNotFound
	}

	return http.StatusAccepted
}

// GetCompanyIntegrationPermission returns the newest legacy permission row
// for (company, type).
func (store *Postgres) GetCompanyIntegrationPermission(companyID,
	integrationType string) (*model.CompanyIntegrationPermission, int) {

	logCtx := log.WithFields(log.Fields{"company_id": companyID, "type": integrationType})

	if companyID == "" || integrationType == "" {
		return nil, http.StatusBadRequest
	}

	var permission model.CompanyIntegrationPermission
	if err := store.db.Order("issued_at DESC").Limit(1).Where(
		"company_id = ? AND type = ?", companyID, integrationType).Find(
		&permission).Error; err != nil {

		if gorm.IsRecordNotFoundError(err) {
			return nil, http.StatusNotFound
		}

		logCtx.WithError(err).Error("Failed to get company integration permission.")
		return nil, http.StatusInternalServerError
	}

	return &permission, http.StatusFound
}
