package api

import (
	"bitwise74/fileshare-api/model"
	"bitwise74/fileshare-api/service"
	"bitwise74/fileshare-api/validators"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type shareBody struct {
	FileID     uint   `json:"file_id"`
	Email      string `json:"email"`
	UserID     string `json:"user_id"`
	Permission string `json:"permission"`
}

// shareErrStatus maps grant service errors onto the HTTP taxonomy
func shareErrStatus(err error) (int, bool) {
	switch {
	case errors.Is(err, service.ErrFileNotFound), errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, service.ErrNotOwner):
		return http.StatusForbidden, true
	case errors.Is(err, service.ErrSelfShare), errors.Is(err, service.ErrBadPermission):
		return http.StatusBadRequest, true
	default:
		return http.StatusInternalServerError, false
	}
}

// ShareCreate grants another user access to a file, recipient resolved by
// their unique email
func (a *API) ShareCreate(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data shareBody
	if err := c.ShouldBind(&data); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	if err := validators.EmailValidator(data.Email); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	recipientID, err := service.UserIDByEmail(a.DB, data.Email)
	if err != nil {
		code, known := shareErrStatus(err)
		if !known {
			zap.L().Error("Failed to resolve share recipient", zap.Error(err))
			err = errors.New("internal server error")
		}

		c.AbortWithStatusJSON(code, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	a.createGrant(c, requestID, userID, recipientID, data)
}

// createGrant is the shared tail of both share endpoints, they only differ
// in how the recipient is resolved
func (a *API) createGrant(c *gin.Context, requestID, granterID, recipientID string, data shareBody) {
	permission := data.Permission
	if permission == "" {
		permission = model.PermView
	}

	share, err := service.CreateGrant(a.DB, data.FileID, granterID, recipientID, permission)
	if err != nil {
		code, known := shareErrStatus(err)
		if !known {
			zap.L().Error("Failed to create grant", zap.Error(err))
			err = errors.New("internal server error")
		}

		c.AbortWithStatusJSON(code, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	c.JSON(http.StatusOK, share)
}
