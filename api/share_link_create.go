package api

import (
	"bitwise74/fileshare-api/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type shareLinkBody struct {
	FileID           uint   `json:"file_id"`
	RequiresPassword bool   `json:"requires_password"`
	Password         string `json:"password"`
}

func (a *API) ShareLinkCreate(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data shareLinkBody
	if err := c.ShouldBind(&data); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	link, err := service.IssueLink(a.DB, a.Argon, data.FileID, userID, data.RequiresPassword, data.Password)
	if err != nil {
		code := http.StatusInternalServerError

		switch {
		case errors.Is(err, service.ErrFileNotFound):
			code = http.StatusNotFound
		case errors.Is(err, service.ErrNotOwner):
			code = http.StatusForbidden
		case errors.Is(err, service.ErrPasswordRequired):
			code = http.StatusBadRequest
		default:
			zap.L().Error("Failed to issue share link", zap.Error(err))
			err = errors.New("internal server error")
		}

		c.AbortWithStatusJSON(code, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	c.JSON(http.StatusOK, link)
}
