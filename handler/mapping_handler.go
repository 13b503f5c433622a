package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"fieldsync/model/model"
)

// GetMappingsHandler lists the company's object mappings, active or not.
func (api *API) GetMappingsHandler(c *gin.Context) {
	companyID := c.Param("company_id")

	mappings, errCode := api.store.GetObjectMappings(companyID)
	if errCode != http.StatusFound {
		c.JSON(errCode, gin.H{"success": false, "message": "failed to get object mappings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"mappings": mappings})
}

// UpsertMappingHandler writes a mapping row and invalidates the company's
// resolver cache.
func (api *API) UpsertMappingHandler(c *gin.Context) {
	companyID := c.Param("company_id")

	var mapping model.ObjectMapping
	if err := c.BindJSON(&mapping); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request payload"})
		return
	}

	mapping.CompanyID = companyID
	mapping.Prefix = strings.ToUpper(strings.TrimSpace(mapping.Prefix))

	errCode := api.store.UpsertObjectMapping(&mapping)
	if errCode != http.StatusAccepted {
		c.JSON(errCode, gin.H{"success": false, "message": "failed to save object mapping"})
		return
	}

	api.resolver.Invalidate(companyID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteMappingHandler removes a mapping row and invalidates the cache.
func (api *API) DeleteMappingHandler(c *gin.Context) {
	companyID := c.Param("company_id")
	prefix := strings.ToUpper(c.Param("prefix"))

	errCode := api.store.DeleteObjectMapping(companyID, prefix)
	if errCode == http.StatusNotFound {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "mapping not found"})
		return
	}
	if errCode != http.StatusAccepted {
		c.JSON(errCode, gin.H{"success": false, "message": "failed to delete object mapping"})
		return
	}

	api.resolver.Invalidate(companyID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SeedMappingsHandler inserts the default mapping set for the company,
// leaving existing prefixes untouched.
func (api *API) SeedMappingsHandler(c *gin.Context) {
	companyID := c.Param("company_id")

	errCode := api.store.SeedDefaultObjectMappings(companyID)
	if errCode != http.StatusCreated {
		c.JSON(errCode, gin.H{"success": false, "message": "failed to seed object mappings"})
		return
	}

	api.resolver.Invalidate(companyID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
