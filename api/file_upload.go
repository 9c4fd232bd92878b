package api

import (
	"encoding/base64"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"secureshare/file-api/model"
	"secureshare/file-api/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FileUpload stores a real file plus its decoy. Both variants are
// sealed into the vault under one per-file key before the row is
// written, so a failed upload never leaves readable bytes behind.
func (a *API) FileUpload(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	realFH, err := c.FormFile("real_file")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "No real_file provided",
			"requestID": requestID,
		})
		return
	}

	decoyFH, err := c.FormFile("decoy_file")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "No decoy_file provided",
			"requestID": requestID,
		})
		return
	}

	realContent, err := readFormFile(realFH)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to read real file", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	decoyContent, err := readFormFile(decoyFH)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to read decoy file", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	key, err := storage.GenerateKey()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to generate file key", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	fileID := uuid.NewString()
	realKey := fileID + "_real"
	decoyKey := fileID + "_decoy"

	if err := a.Vault.Put(realKey, realContent, key); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to store real file", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := a.Vault.Put(decoyKey, decoyContent, key); err != nil {
		a.Vault.Delete(realKey)

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to store decoy file", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	file := &model.File{
		ID:            fileID,
		UserID:        userID,
		RealName:      realFH.Filename,
		DecoyName:     decoyFH.Filename,
		RealKey:       realKey,
		DecoyKey:      decoyKey,
		EncryptionKey: base64.StdEncoding.EncodeToString(key),
		Size:          int64(len(realContent)),
		CreatedAt:     time.Now(),
	}

	if err := a.DB.Create(file).Error; err != nil {
		a.Vault.Delete(realKey)
		a.Vault.Delete(decoyKey)

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create file record", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"file_id":  fileID,
		"filename": realFH.Filename,
		"message":  "Files uploaded successfully",
	})
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}
