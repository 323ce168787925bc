package errorx

import (
	"fmt"
	"net/http"
	"sync"
)

// Coder describes an error code: the business code, the HTTP status it maps
// to, and a user-facing message. Handlers register their codes in an init
// block and wrap errors with WithCode/WrapC.
type Coder interface {
	// Code returns the business error code.
	Code() int
	// HTTPStatus returns the associated HTTP status.
	HTTPStatus() int
	// String returns the user-facing message.
	String() string
	// Reference returns an optional document reference.
	Reference() string
}

var (
	codeMu sync.RWMutex
	codes  = map[int]Coder{}
)

// unknownCoder is returned by ParseCoder for unregistered codes.
type unknownCoder struct{}

func (unknownCoder) Code() int         { return 1 }
func (unknownCoder) HTTPStatus() int   { return http.StatusInternalServerError }
func (unknownCoder) String() string    { return "An internal server error occurred" }
func (unknownCoder) Reference() string { return "" }

// Register registers a Coder, returning an error on duplicate codes.
func Register(coder Coder) error {
	codeMu.Lock()
	defer codeMu.Unlock()

	if _, ok := codes[coder.Code()]; ok {
		return fmt.Errorf("code %d already registered", coder.Code())
	}
	codes[coder.Code()] = coder
	return nil
}

// MustRegister registers a Coder and panics on duplicate codes.
func MustRegister(coder Coder) {
	if err := Register(coder); err != nil {
		panic(err)
	}
}

// withCode is an error carrying a registered code and an optional cause.
type withCode struct {
	code  int
	msg   string
	cause error
}

func (w *withCode) Error() string {
	if w.cause != nil {
		return fmt.Sprintf("%s: %v", w.msg, w.cause)
	}
	return w.msg
}

func (w *withCode) Unwrap() error { return w.cause }

// WithCode creates a coded error with a printf-style message.
func WithCode(code int, format string, args ...interface{}) error {
	return &withCode{code: code, msg: fmt.Sprintf(format, args...)}
}

// WrapC wraps err with a code and a printf-style message.
func WrapC(err error, code int, format string, args ...interface{}) error {
	return &withCode{code: code, msg: fmt.Sprintf(format, args...), cause: err}
}

// ParseCoder extracts the Coder for err. Errors without a registered code
// resolve to the unknown coder (code 1, HTTP 500).
func ParseCoder(err error) Coder {
	if err == nil {
		return nil
	}
	if wc, ok := err.(*withCode); ok {
		codeMu.RLock()
		coder, found := codes[wc.code]
		codeMu.RUnlock()
		if found {
			return coder
		}
	}
	return unknownCoder{}
}

// IsCode reports whether err carries the given business code.
func IsCode(err error, code int) bool {
	wc, ok := err.(*withCode)
	return ok && wc.code == code
}
