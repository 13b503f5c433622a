package handler

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"fieldsync/config"
	"fieldsync/filestore"
	SF "fieldsync/integration/salesforce"
	"fieldsync/model/store"
	"fieldsync/services/errorcollector"
)

// API bundles the dependency-injected services the handlers need.
type API struct {
	cfg         *config.Configuration
	store       store.Store
	resolver    *SF.Resolver
	syncer      *SF.Syncer
	credentials *SF.CredentialProvider
	collector   *errorcollector.Collector
	fileManager filestore.FileManager

	nonceLock   sync.Mutex
	oauthNonces map[string]time.Time
}

func NewAPI(cfg *config.Configuration, s store.Store, resolver *SF.Resolver,
	syncer *SF.Syncer, credentials *SF.CredentialProvider,
	collector *errorcollector.Collector, fileManager filestore.FileManager) *API {

	return &API{
		cfg:         cfg,
		store:       s,
		resolver:    resolver,
		syncer:      syncer,
		credentials: credentials,
		collector:   collector,
		fileManager: fileManager,
		oauthNonces: make(map[string]time.Time),
	}
}

// InitAppRoutes registers the admin and sync routes.
func (api *API) InitAppRoutes(r *gin.Engine) {
	companies := r.Group("/companies/:company_id")

	companies.GET("/integrations/:type", api.GetIntegrationHandler)
	companies.PUT("/integrations/:type", api.UpsertIntegrationHandler)
	companies.DELETE("/integrations/:type", api.DeleteIntegrationHandler)
	companies.POST("/integrations/:type/test", api.TestIntegrationHandler)
	companies.GET("/integrations/:type/errors", api.GetIntegrationErrorsHandler)

	companies.GET("/mappings", api.GetMappingsHandler)
	companies.PUT("/mappings", api.UpsertMappingHandler)
	companies.DELETE("/mappings/:prefix", api.DeleteMappingHandler)
	companies.POST("/mappings/seed", api.SeedMappingsHandler)

	companies.GET("/batches/:batch_id/photos", api.GetBatchPhotosHandler)

	companies.POST("/sync/batches", api.BulkSyncHandler)
	companies.GET("/sync/pending", api.PendingSyncHandler)

	r.GET("/salesforce/auth/redirect", api.SalesforceAuthRedirect)
	r.GET("/salesforce/auth/callback", api.SalesforceCallbackHandler)
}
