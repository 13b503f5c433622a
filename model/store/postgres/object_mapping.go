package postgres

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"fieldsync/model/model"
)

// GetObjectMappings returns every mapping row for the company, active or
// not, ordered by prefix for stable admin listings.
func (store *Postgres) GetObjectMappings(companyID string) ([]model.ObjectMapping, int) {
	logCtx := log.WithField("company_id", companyID)

	if companyID == "" {
		logCtx.Error("Invalid company_id on get object mappings.")
		return nil, http.StatusBadRequest
	}

	var mappings []model.ObjectMapping
	if err := store.db.Order("prefix ASC").Where("company_id = ?",
		companyID).Find(&mappings).Error; err != nil {

		logCtx.WithError(err).Error("Failed to get object mappings.")
		return nil, http.StatusInternalServerError
	}

	return mappings, http.StatusFound
}

// GetActiveObjectMappings returns only the active mapping rows.
func (store *Postgres) GetActiveObjectMappings(companyID string) ([]model.ObjectMapping, int) {
	logCtx := log.WithField("company_id", companyID)

	if companyID == "" {
		logCtx.Error("Invalid company_id on get active object mappings.")
		return nil, http.StatusBadRequest
	}

	var mappings []model.ObjectMapping
	if err := store.db.Order("prefix ASC").Where("company_id = ? AND active = ?",
		companyID, true).Find(&mappings).Error; err != nil {

		logCtx.WithError(err).Error("Failed to get active object mappings.")
		return nil, http.StatusInternalServerError
	}

	return mappings, http.StatusFound
}

// UpsertObjectMapping writes a mapping row. Prefix is unique per company,
// enforced by upsert on conflict.
func (store *Postgres) UpsertObjectMapping(mapping *model.ObjectMapping) int {
	logCtx := log.WithFields(log.Fields{
		"company_id": mapping.CompanyID, "prefix": mapping.Prefix})

	if mapping.CompanyID == "" || mapping.Prefix == "" ||
		mapping.ObjectName == "" || mapping.NameField == "" {
		logCtx.Error("Invalid object mapping on upsert.")
		return http.StatusBadRequest
	}

	active := true
	if mapping.Active != nil {
		active = *mapping.Active
	}

	upsertStmnt := "INSERT INTO object_mappings (company_id, prefix, object_name, name_field, active, created_at, updated_at)" +
		" VALUES (?, ?, ?, ?, ?, ?, ?)" +
		" ON CONFLICT (company_id, prefix) DO UPDATE SET object_name = excluded.object_name," +
		" name_field = excluded.name_field, active = excluded.active, updated_at = excluded.updated_at"

	currentTime := time.Now()
	if err := store.db.Exec(upsertStmnt, mapping.CompanyID, mapping.Prefix,
		mapping.ObjectName, mapping.NameField, active, currentTime, currentTime).Error; err != nil {

		logCtx.WithError(err).Error("Failed to upsert object mapping.")
		return http.StatusInternalServerError
	}

	return http.StatusAccepted
}

// DeleteObjectMapping removes the mapping row for (company, prefix).
func (store *Postgres) DeleteObjectMapping(companyID, prefix string) int {
	logCtx := log.WithFields(log.Fields{"company_id": companyID, "prefix": prefix})

	if companyID == "" || prefix == "" {
		return http.StatusBadRequest
	}

	db := store.db.Where("company_id = ? AND prefix = ?",
		companyID, prefix).Delete(&model.ObjectMapping{})
	if db.Error != nil {
		logCtx.WithError(db.Error).Error("Failed to delete object mapping.")
		return http.StatusInternalServerError
	}
	if db.RowsAffected == 0 {
		return http.StatusNotFound
	}

	return http.StatusAccepted
}

// SeedDefaultObjectMappings inserts the default mapping set for a company.
// Existing rows for the same prefix are left untouched.
func (store *Postgres) SeedDefaultObjectMappings(companyID string) int {
	logCtx := log.WithField("company_id", companyID)

	if companyID == "" {
		logCtx.Error("Invalid company_id on seed default object mappings.")
		return http.StatusBadRequest
	}

	insertStmnt := "INSERT INTO object_mappings (company_id, prefix, object_name, name_field, active, created_at, updated_at)" +
		" VALUES (?, ?, ?, ?, ?, ?, ?) ON CONFLICT (company_id, prefix) DO NOTHING"

	currentTime := time.Now()
	for i := range model.DefaultObjectMappings {
		mapping := model.DefaultObjectMappings[i]
		if err := store.db.Exec(insertStmnt, companyID, mapping.Prefix,
			mapping.ObjectName, mapping.NameField, true, currentTime, currentTime).Error; err != nil {

			logCtx.WithError(err).WithField("prefix", mapping.Prefix).Error(
				"Failed to seed default object mapping.")
			return http.StatusInternalServerError
		}
	}

	return http.StatusCreated
}
