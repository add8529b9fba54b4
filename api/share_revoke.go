package api

import (
	"bitwise74/fileshare-api/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) ShareRevoke(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	id := fileID(c, requestID)
	if id == 0 {
		return
	}

	recipientID := c.Param("userID")
	if recipientID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "No recipient user ID provided",
			"requestID": requestID,
		})
		return
	}

	err := service.RevokeGrant(a.DB, id, userID, recipientID)
	if err != nil {
		code := http.StatusInternalServerError

		switch {
		case errors.Is(err, service.ErrFileNotFound), errors.Is(err, service.ErrGrantNotFound):
			code = http.StatusNotFound
		case errors.Is(err, service.ErrNotOwner):
			code = http.StatusForbidden
		default:
			zap.L().Error("Failed to revoke grant", zap.Error(err))
			err = errors.New("internal server error")
		}

		c.AbortWithStatusJSON(code, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	c.Status(http.StatusOK)
}
