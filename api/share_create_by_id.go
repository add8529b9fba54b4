package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ShareCreateByID grants another user access to a file, recipient resolved
// by their user ID instead of email
func (a *API) ShareCreateByID(c *gin.Context) {
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

	if data.UserID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "No recipient user ID provided",
			"requestID": requestID,
		})
		return
	}

	a.createGrant(c, requestID, userID, data.UserID, data)
}
