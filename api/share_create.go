package api

import (
	"errors"
	"net/http"

	"secureshare/file-api/service"
	"secureshare/file-api/validators"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type shareCreateBody struct {
	FileID        string `json:"file_id"`
	Password      string `json:"password"`
	ExpiryHours   int    `json:"expiry_hours"`
	DownloadLimit int    `json:"download_limit"`
}

func (a *API) ShareCreate(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data shareCreateBody
	if err := c.ShouldBind(&data); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	if data.FileID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "No file ID provided",
			"requestID": requestID,
		})
		return
	}

	if err := validators.LinkPasswordValidator(data.Password); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	link, err := a.Links.Create(data.FileID, userID, data.Password, data.ExpiryHours, data.DownloadLimit)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "File not found",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create share link", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"link_token":     link.Token,
		"share_url":      viper.GetString("host.frontend_url") + "/access/" + link.Token,
		"expiry_date":    link.ExpiresAt,
		"download_limit": link.DownloadLimit,
	})
}
