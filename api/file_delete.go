package api

import (
	"bitwise74/fileshare-api/model"
	"bitwise74/fileshare-api/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FileDelete removes a file together with its grants and links. The audit
// log keeps its rows, those references are allowed to dangle. Blobs stay on
// the chain store, it's content addressed and append only
func (a *API) FileDelete(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	id := fileID(c, requestID)
	if id == 0 {
		return
	}

	var file model.File

	err := a.DB.
		Where("user_id = ? AND id = ?", userID, id).
		First(&file).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "File not found. It either doesn't exist or you don't own it",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to check if file exists", zap.Error(err))
		return
	}

	err = a.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("file_id = ?", id).Delete(model.FileShare{}).Error; err != nil {
			return err
		}

		if err := tx.Where("file_id = ?", id).Delete(model.ShareLink{}).Error; err != nil {
			return err
		}

		return tx.Delete(model.File{}, id).Error
	})
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete file", zap.Error(err))
		return
	}

	err = service.Adjust(a.DB, userID, service.Delta{
		UploadedFiles: -1,
		StorageUsed:   -file.Size,
	})
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to decrement user's used storage", zap.Error(err))
		return
	}

	c.Status(http.StatusOK)
}
