package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldsync/filestore"
)

// GetBatchPhotosHandler lists the batch's photos in capture order with
// resolved public urls.
func (api *API) GetBatchPhotosHandler(c *gin.Context) {
	companyID := c.Param("company_id")
	batchID := c.Param("batch_id")

	batch, errCode := api.store.GetPhotoBatch(batchID)
	if errCode == http.StatusNotFound {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "batch not found"})
		return
	}
	if errCode != http.StatusFound {
		c.JSON(errCode, gin.H{"success": false, "message": "failed to get batch"})
		return
	}
	if batch.CompanyID != companyID {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "batch not found"})
		return
	}

	photos, errCode := api.store.GetPhotosByBatch(batchID)
	if errCode != http.StatusFound {
		c.JSON(errCode, gin.H{"success": false, "message": "failed to get photos"})
		return
	}

	for i := range photos {
		if photos[i].PublicURL != "" || api.fileManager == nil {
			continue
		}
		dir, fileName := filestore.GetPhotoPathAndName(
			companyID, batch.ReferenceID, photos[i].FileName)
		photos[i].PublicURL = api.fileManager.GetPublicURL(dir, fileName)
	}

	c.JSON(http.StatusOK, gin.H{"batch": batch, "photos": photos})
}
