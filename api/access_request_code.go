package api

import (
	"errors"
	"net/http"

	"secureshare/file-api/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type requestCodeBody struct {
	LinkToken string `json:"link_token"`
}

// AccessRequestCode asks the owner to authorize an attempt. The owner
// receives the code by mail; the requester only learns a masked hint
// of the destination address.
func (a *API) AccessRequestCode(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data requestCodeBody
	if err := c.ShouldBind(&data); err != nil || data.LinkToken == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	reply, err := a.Access.RequestCode(data.LinkToken)
	if err != nil {
		a.abortAccessError(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":          "Code sent to file owner",
		"owner_email_hint": reply.MaskedOwner,
		"expires_in":       reply.ExpiresIn,
	})
}

// abortAccessError maps engine errors onto HTTP. Unknown tokens get
// the same flat 404 everywhere so the public endpoints can't be used
// to enumerate links.
func (a *API) abortAccessError(c *gin.Context, requestID string, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error":     "Invalid link",
			"requestID": requestID,
		})
	case errors.Is(err, service.ErrLinkExpired),
		errors.Is(err, service.ErrLinkExhausted),
		errors.Is(err, service.ErrLinkDisabled):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
	case errors.Is(err, service.ErrCodeInvalid),
		errors.Is(err, service.ErrCodeExpired):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Access attempt failed", zap.Error(err), zap.String("requestID", requestID))
	}
}
