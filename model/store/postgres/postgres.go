package postgres

import (
	"github.com/jinzhu/gorm"

	"fieldsync/model/model"
)

// Postgres implements store.Store on a gorm connection. One instance is
// constructed per process and passed by reference.
type Postgres struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Postgres {
	return &Postgres{db: db}
}

// AutoMigrate creates or updates the integration tables. Run from the app
// on development environments; production schemas are managed separately.
func (pg *Postgres) AutoMigrate() error {
	return pg.db.AutoMigrate(
		&model.CompanyIntegration{},
		&model.CompanyIntegrationPermission{},
		&model.ObjectMapping{},
		&model.ErpSyncStatus{},
		&model.IntegrationError{},
	).Error
}
