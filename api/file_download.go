package api

import (
	"bitwise74/fileshare-api/chain"
	"bitwise74/fileshare-api/model"
	"bitwise74/fileshare-api/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (a *API) FileDownload(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	id := fileID(c, requestID)
	if id == 0 {
		return
	}

	if !a.checkAccess(c, requestID, userID, id, model.PermDownload) {
		return
	}

	file, data, ok := a.fetchBlob(c, requestID, id)
	if !ok {
		return
	}

	key, err := a.Keys.Unwrap(file.WrappedKey)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to unwrap file key", zap.Error(err))
		return
	}

	if err := service.Adjust(a.DB, file.UserID, service.Delta{Downloads: 1}); err != nil {
		zap.L().Error("Failed to bump download counter", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{
		"file": file,
		"data": data,
		"key":  key,
	})
}

// fetchBlob loads the file row and its ciphertext from the chain store,
// recording the retrieval in the audit log. It answers the request itself
// on failure
func (a *API) fetchBlob(c *gin.Context, requestID string, id uint) (*model.File, []byte, bool) {
	var file model.File

	err := a.DB.First(&file, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "File not found",
				"requestID": requestID,
			})
			return nil, nil, false
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch file from db", zap.Error(err))
		return nil, nil, false
	}

	data, err := a.Chain.Get(c.Request.Context(), file.Cid)
	if err != nil {
		if errors.Is(err, chain.ErrNotFound) {
			recordTx(a.DB, model.TxRetrieve, model.TxFailed, file.Cid, &file.ID, "blob missing")

			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "File data is gone from storage",
				"requestID": requestID,
			})
			return nil, nil, false
		}

		recordTx(a.DB, model.TxRetrieve, model.TxFailed, file.Cid, &file.ID, err.Error())

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Storage backend unavailable",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch blob", zap.Error(err))
		return nil, nil, false
	}

	recordTx(a.DB, model.TxRetrieve, model.TxConfirmed, file.Cid, &file.ID, file.Name)

	return &file, data, true
}
