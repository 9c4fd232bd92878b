package api

import (
	"encoding/base64"
	"errors"
	"net/http"

	"secureshare/file-api/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FileDownload lets the owner pull their own real file. No gates here,
// ownership is the whole check.
func (a *API) FileDownload(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)
	fileID := c.Param("fileID")

	var file model.File
	err := a.DB.
		Where("id = ? AND user_id = ?", fileID, userID).
		First(&file).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
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

		zap.L().Error("Failed to fetch file", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	key, err := base64.StdEncoding.DecodeString(file.EncryptionKey)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Bad file key", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	content, err := a.Vault.Get(c.Request.Context(), file.RealKey, key)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to read file from vault", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+file.RealName+`"`)
	c.Data(http.StatusOK, "application/octet-stream", content)
}
