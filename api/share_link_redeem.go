package api

import (
	"bitwise74/fileshare-api/model"
	"bitwise74/fileshare-api/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type redeemBody struct {
	Password string `json:"password"`
}

// ShareLinkRedeem trades a bearer token for the file it points at. No
// account needed, the token is the whole credential. Links can be redeemed
// any number of times until they expire
func (a *API) ShareLinkRedeem(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	token := c.Param("token")
	if token == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "No token provided",
			"requestID": requestID,
		})
		return
	}

	// The body is optional, links without a password are redeemed bare
	var data redeemBody
	c.ShouldBind(&data)

	file, err := service.RedeemLink(a.DB, a.Argon, token, data.Password)
	if err != nil {
		code := http.StatusInternalServerError

		switch {
		case errors.Is(err, service.ErrLinkNotFound), errors.Is(err, service.ErrFileNotFound):
			code = http.StatusNotFound
		case errors.Is(err, service.ErrLinkExpired):
			code = http.StatusGone
		case errors.Is(err, service.ErrLinkPassword):
			code = http.StatusForbidden
		default:
			zap.L().Error("Failed to redeem share link", zap.Error(err))
			err = errors.New("internal server error")
		}

		c.AbortWithStatusJSON(code, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	blob, err := a.Chain.Get(c.Request.Context(), file.Cid)
	if err != nil {
		recordTx(a.DB, model.TxRetrieve, model.TxFailed, file.Cid, &file.ID, err.Error())

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Storage backend unavailable",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch blob", zap.Error(err))
		return
	}

	recordTx(a.DB, model.TxRetrieve, model.TxConfirmed, file.Cid, &file.ID, file.Name)

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
		"data": blob,
		"key":  key,
	})
}
