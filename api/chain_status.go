package api

import (
	"bitwise74/fileshare-api/model"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) ChainStatus(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	status, err := a.Chain.Status(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Storage backend unavailable",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch chain status", zap.Error(err))
		return
	}

	var txCount int64
	if err := a.DB.Model(model.Transaction{}).Count(&txCount).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to count transactions", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"network":      status,
		"transactions": txCount,
	})
}
