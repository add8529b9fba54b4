package api

import (
	"bitwise74/fileshare-api/model"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Only images and PDFs can be rendered inline by the frontend
func previewable(format string) bool {
	return strings.HasPrefix(format, "image/") || format == "application/pdf"
}

// FilePreview hands out the same payload as a download, but only for
// previewable types and without counting as a download
func (a *API) FilePreview(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	id := fileID(c, requestID)
	if id == 0 {
		return
	}

	if !a.checkAccess(c, requestID, userID, id, model.PermView) {
		return
	}

	// Reject before touching the chain store, the blob fetch is the
	// expensive part
	var format string
	err := a.DB.
		Model(model.File{}).
		Select("format").
		Where("id = ?", id).
		Find(&format).
		Error
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch file format", zap.Error(err))
		return
	}

	if !previewable(format) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "This file type can't be previewed",
			"requestID": requestID,
		})
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

	c.JSON(http.StatusOK, gin.H{
		"file": file,
		"data": data,
		"key":  key,
	})
}
