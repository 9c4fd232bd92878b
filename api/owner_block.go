package api

import (
	"errors"
	"net/http"

	"secureshare/file-api/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ownerBlockBody struct {
	AttemptID string `json:"attempt_id"`
	Action    string `json:"action"`
}

// OwnerBlock deactivates the share link behind an access attempt.
// Blocking is idempotent.
func (a *API) OwnerBlock(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data ownerBlockBody
	if err := c.ShouldBind(&data); err != nil || data.AttemptID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	if data.Action != "block" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Unknown action",
			"requestID": requestID,
		})
		return
	}

	err := a.Audit.Block(userID, data.AttemptID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "Attempt not found",
				"requestID": requestID,
			})
			return
		}

		if errors.Is(err, service.ErrForbidden) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":     "Not authorized",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to block link", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Link blocked successfully",
	})
}
