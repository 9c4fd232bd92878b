package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type accessVerifyBody struct {
	LinkToken string `json:"link_token"`
	Code      string `json:"otp"`
	Password  string `json:"password"`
}

// AccessVerify presents a one-time code plus the link password and
// receives a file. Wrong passwords are answered with the decoy under
// its own filename, with the exact response shape of a real release;
// the requester cannot tell the difference from here.
func (a *API) AccessVerify(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data accessVerifyBody
	if err := c.ShouldBind(&data); err != nil || data.LinkToken == "" || data.Code == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	result, err := a.Access.VerifyAndAccess(
		c.Request.Context(),
		data.LinkToken,
		data.Code,
		data.Password,
		c.ClientIP(),
	)
	if err != nil {
		a.abortAccessError(c, requestID, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, "application/octet-stream", result.Content)
}
