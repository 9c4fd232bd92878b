package api

import (
	"net/http"

	"secureshare/file-api/model"
	"secureshare/file-api/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type forgotPasswordBody struct {
	Email string `json:"email"`
}

// ForgotPassword mails a reset code. The response is the same whether
// the address exists or not, so the endpoint can't be used to probe
// for accounts.
func (a *API) ForgotPassword(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data forgotPasswordBody
	if err := c.ShouldBind(&data); err != nil || data.Email == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	genericReply := gin.H{
		"message": "If the email exists, a reset code has been sent",
	}

	var user model.User
	if err := a.DB.Where("email = ?", data.Email).First(&user).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			zap.L().Error("Failed to look up user", zap.Error(err), zap.String("requestID", requestID))
		}

		c.JSON(http.StatusOK, genericReply)
		return
	}

	code, err := a.Codes.Issue(service.PurposePasswordReset, user.Email)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to issue reset code", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	subject, body := service.ResetCodeMail(code.Code)
	if !a.Mailer.Send(user.Email, subject, body) {
		zap.L().Warn("Failed to deliver reset code", zap.String("userID", user.ID))
	}

	c.JSON(http.StatusOK, genericReply)
}
