package httperr

import (
	"github.com/gin-gonic/gin"
)

// Response is the flat error payload API callers receive. Never carries a
// stack trace or configuration detail.
type Response struct {
	Status int    `json:"-"`
	Error  string `json:"error"`
}

// AbortWithError responds with a generic message and preserves the original
// error on the gin context for logging.
func AbortWithError(c *gin.Context, status int, err error, msg string) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := Response{Status: status, Error: msg}

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}
