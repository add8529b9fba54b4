package api

import (
	"bitwise74/fileshare-api/model"
	"bitwise74/fileshare-api/service"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fileID parses the :id route param. A zero return means the request was
// already answered
func fileID(c *gin.Context, requestID string) uint {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid file ID",
			"requestID": requestID,
		})
		return 0
	}

	return uint(id)
}

// checkAccess runs the owner-or-shared policy and answers the request
// itself when access is missing. Inaccessible and nonexistent files are
// both a 404, the response must not leak which one it was
func (a *API) checkAccess(c *gin.Context, requestID, userID string, id uint, need string) bool {
	ok, err := service.HasAccess(a.DB, id, userID, need)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to check file access", zap.Error(err))
		return false
	}

	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error":     "File not found",
			"requestID": requestID,
		})
		return false
	}

	return true
}

func (a *API) FileFetch(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	id := fileID(c, requestID)
	if id == 0 {
		return
	}

	if !a.checkAccess(c, requestID, userID, id, model.PermView) {
		return
	}

	var file model.File

	err := a.DB.First(&file, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "File not found",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch file from db", zap.Error(err))
		return
	}

	// The owner's display name is resolved here at the boundary, the file
	// row itself doesn't carry it
	var owner string
	err = a.DB.
		Model(model.User{}).
		Select("username").
		Where("id = ?", file.UserID).
		Find(&owner).
		Error
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to resolve file owner", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"file":  file,
		"owner": owner,
	})
}
