package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"fieldsync/model/model"
)

type bulkSyncRequest struct {
	BatchIDs []string `json:"batch_ids"`
	System   string   `json:"system"`
}

// BulkSyncHandler syncs the listed batches to the erp system, strictly
// sequentially, and returns the aggregated result.
func (api *API) BulkSyncHandler(c *gin.Context) {
	companyID := c.Param("company_id")
	logCtx := log.WithField("company_id", companyID)

	var request bulkSyncRequest
	if err := c.BindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request payload"})
		return
	}

	if len(request.BatchIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "no batch ids"})
		return
	}

	if request.System != "" && request.System != model.ErpSystemSalesforce {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "unsupported erp system"})
		return
	}

	logCtx.WithField("batch_count", len(request.BatchIDs)).Info("Bulk sync requested.")
	result := api.syncer.BulkSync(companyID, request.BatchIDs)
	c.JSON(http.StatusOK, result)
}

// PendingSyncHandler lists batches whose latest status is pending or
// failed.
func (api *API) PendingSyncHandler(c *gin.Context) {
	companyID := c.Param("company_id")

	system := c.Query("system")
	if system == "" {
		system = model.ErpSystemSalesforce
	}

	statuses, errCode := api.store.GetPendingSyncBatches(companyID, system)
	if errCode != http.StatusFound {
		c.JSON(errCode, gin.H{"success": false, "message": "failed to get pending batches"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"pending": statuses})
}
