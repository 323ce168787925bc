package v1

import (
	"net/http"

	"github.com/morgatz/gitseer/pkg/errorx"
)

// Gitseerd handler error codes.
// Code format: 1XXYYZ
//   - 1:  module prefix (gitseerd handler)
//   - XX: resource group (00=common, 01=chat, 02=mcp)
//   - YY: sequential error number
//   - Z:  reserved (0)

const (
	// Common request errors (100xxx).
	ErrBind       = 100001
	ErrValidation = 100002

	// Chat errors (1001xx).
	ErrMessagesEmpty = 100101
	ErrBadRole       = 100102
	ErrStreamRecv    = 100103

	// MCP errors (1002xx).
	ErrMCPReconnect = 100201
)

func init() {
	// Common.
	errorx.MustRegister(newCoder(ErrBind, http.StatusBadRequest, "Request body binding failed"))
	errorx.MustRegister(newCoder(ErrValidation, http.StatusBadRequest, "Request validation failed"))

	// Chat.
	errorx.MustRegister(newCoder(ErrMessagesEmpty, http.StatusBadRequest, "Messages array is required and must not be empty"))
	errorx.MustRegister(newCoder(ErrBadRole, http.StatusBadRequest, "Message role must be system, user or assistant"))
	errorx.MustRegister(newCoder(ErrStreamRecv, http.StatusInternalServerError, "Stream receive error"))

	// MCP.
	errorx.MustRegister(newCoder(ErrMCPReconnect, http.StatusInternalServerError, "MCP server reconnect failed"))
}

type coder struct {
	code int
	http int
	msg  string
}

func newCoder(code, httpStatus int, msg string) *coder {
	return &coder{code: code, http: httpStatus, msg: msg}
}

func (c *coder) Code() int         { return c.code }
func (c *coder) HTTPStatus() int   { return c.http }
func (c *coder) String() string    { return c.msg }
func (c *coder) Reference() string { return "" }
