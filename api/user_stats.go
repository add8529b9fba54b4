package api

import (
	"bitwise74/fileshare-api/service"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) UserStats(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	stats, err := service.GetStats(a.DB, userID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to load user stats", zap.String("userID", userID), zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":        stats,
		"storageHuman": humanize.Bytes(uint64(stats.StorageUsed)),
	})
}
