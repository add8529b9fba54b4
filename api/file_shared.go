package api

import (
	"bitwise74/fileshare-api/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type sharedEntry struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Format     string `json:"format"`
	Size       int64  `json:"size"`
	Owner      string `json:"owner"`
	Permission string `json:"permission"`
	CreatedAt  int64  `json:"created_at"`
}

// FileSharedList returns every file other users granted to the caller
func (a *API) FileSharedList(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	shared, err := service.ListSharedWith(a.DB, userID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to list shared files", zap.Error(err))
		return
	}

	entries := lo.Map(shared, func(s service.SharedFile, _ int) sharedEntry {
		return sharedEntry{
			ID:         s.ID,
			Name:       s.Name,
			Format:     s.Format,
			Size:       s.Size,
			Owner:      s.Owner,
			Permission: s.Permission,
			CreatedAt:  s.CreatedAt,
		}
	})

	c.JSON(http.StatusOK, entries)
}
