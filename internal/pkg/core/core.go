package core

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/morgatz/gitseer/pkg/errorx"
	"github.com/morgatz/gitseer/pkg/logger"
)

// ErrResponse is the error body returned for failed requests.
type ErrResponse struct {
	// Code is the business error code.
	Code int `json:"code"`
	// Message is the user-facing error description.
	Message string `json:"message"`
	// Reference is an optional document reference for resolving the error.
	Reference string `json:"reference,omitempty"`
}

// WriteResponse writes err or data to the response. When err carries a
// registered errorx code, the mapped HTTP status and message are used.
func WriteResponse(c *gin.Context, err error, data interface{}) {
	if err != nil {
		coder := errorx.ParseCoder(err)
		logger.Warn("request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(coder.HTTPStatus(), ErrResponse{
			Code:      coder.Code(),
			Message:   coder.String(),
			Reference: coder.Reference(),
		})
		return
	}

	c.JSON(http.StatusOK, data)
}
