package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/now"
	log "github.com/sirupsen/logrus"

	"fieldsync/integration/salesforce"
	"fieldsync/model/model"
)

// GetIntegrationHandler returns the company's integration row.
func (api *API) GetIntegrationHandler(c *gin.Context) {
	companyID := c.Param("company_id")
	integrationType := c.Param("type")

	integration, errCode := api.store.GetCompanyIntegration(companyID, integrationType)
	if errCode == http.StatusNotFound {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "integration not configured"})
		return
	}
	if errCode != http.StatusFound {
		c.JSON(errCode, gin.H{"success": false, "message": "failed to get integration"})
		return
	}

	c.JSON(http.StatusOK, integration)
}

type upsertIntegrationRequest struct {
	Status string                             `json:"status"`
	Config *model.SalesforceIntegrationConfig `json:"config"`
}

// UpsertIntegrationHandler creates or updates the integration from an
// admin configuration action. Seeds default object mappings on first
// create.
func (api *API) UpsertIntegrationHandler(c *gin.Context) {
	companyID := c.Param("company_id")
	integrationType := c.Param("type")
	logCtx := log.WithFields(log.Fields{"company_id": companyID, "type": integrationType})

	var request upsertIntegrationRequest
	if err := c.BindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request payload"})
		return
	}

	integration := &model.CompanyIntegration{
		CompanyID: companyID,
		Type:      integrationType,
		Status:    request.Status,
	}

	if request.Config != nil {
		enConfig, err := model.EncodeSalesforceConfig(request.Config)
		if err != nil {
			logCtx.WithError(err).Error("Failed to encode integration config.")
			c.JSON(http.StatusInternalServerError,
				gin.H{"success": false, "message": "failed to encode config"})
			return
		}
		integration.Config = enConfig
	}

	errCode := api.store.UpsertCompanyIntegration(integration)
	if errCode != http.StatusCreated && errCode != http.StatusAccepted {
		c.JSON(errCode, gin.H{"success": false, "message": "failed to save integration"})
		return
	}

	if errCode == http.StatusCreated && integrationType == model.IntegrationTypeSalesforce {
		if seedCode := api.store.SeedDefaultObjectMappings(companyID); seedCode != http.StatusCreated {
			logCtx.Error("Failed to seed default object mappings.")
		}
		api.resolver.Invalidate(companyID)
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteIntegrationHandler removes the integration. Explicit admin action.
func (api *API) DeleteIntegrationHandler(c *gin.Context) {
	companyID := c.Param("company_id")
	integrationType := c.Param("type")

	errCode := api.store.DeleteCompanyIntegration(companyID, integrationType)
	if errCode == http.StatusNotFound {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "integration not configured"})
		return
	}
	if errCode != http.StatusAccepted {
		c.JSON(errCode, gin.H{"success": false, "message": "failed to delete integration"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// TestIntegrationHandler probes the external system and records the
// outcome on the integration row.
func (api *API) TestIntegrationHandler(c *gin.Context) {
	companyID := c.Param("company_id")
	integrationType := c.Param("type")

	if integrationType != model.IntegrationTypeSalesforce {
		c.JSON(http.StatusBadRequest,
			gin.H{"success": false, "message": "unsupported integration type"})
		return
	}

	ok, message := salesforce.TestConnection(api.store, api.credentials, companyID)
	c.JSON(http.StatusOK, gin.H{"success": ok, "message": message})
}

// GetIntegrationErrorsHandler lists today's integration errors for the
// company. Flushes the in-memory queue first so recent failures show up.
func (api *API) GetIntegrationErrorsHandler(c *gin.Context) {
	companyID := c.Param("company_id")

	api.collector.Flush()

	since := now.New(time.Now()).BeginningOfDay()
	integrationErrors, errCode := api.store.GetIntegrationErrorsSince(companyID, since)
	if errCode != http.StatusFound {
		c.JSON(errCode, gin.H{"success": false, "message": "failed to get integration errors"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"errors": integrationErrors})
}
