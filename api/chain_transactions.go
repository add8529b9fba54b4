package api

import (
	"bitwise74/fileshare-api/model"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChainTransactions returns the audit log, newest first. Rows survive the
// files they reference, so the log can be filtered by cid to follow a blob
// even after its file is gone
func (a *API) ChainTransactions(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	pageStr := c.DefaultQuery("page", "0")
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Page is not a valid positive integer",
			"requestID": requestID,
		})
		return
	}

	limitStr := c.DefaultQuery("limit", "20")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 || limit > 100 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Limit must be between 1 and 100",
			"requestID": requestID,
		})
		return
	}

	q := a.DB.
		Model(model.Transaction{}).
		Order("created_at desc").
		Offset(page * limit).
		Limit(limit)

	if cid := c.Query("cid"); cid != "" {
		q = q.Where("cid = ?", cid)
	}

	var entries []model.Transaction

	if err := q.Find(&entries).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch transactions", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, entries)
}
