package misc

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ErrorCode string

const (
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodePermissionDenied ErrorCode = "PERMISSION_DENIED"
	CodeInvalidState     ErrorCode = "INVALID_STATE"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeInvalidInput     ErrorCode = "INVALID_INPUT"
	CodeUnauthenticated  ErrorCode = "UNAUTHENTICATED"
	CodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// Error is the failure type every store operation returns; the code is what
// the boundary maps to an HTTP status.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *Error) Error() string { return e.Message }

func NotFound(msg string) *Error         { return &Error{CodeNotFound, msg} }
func PermissionDenied(msg string) *Error { return &Error{CodePermissionDenied, msg} }
func InvalidState(msg string) *Error     { return &Error{CodeInvalidState, msg} }
func Conflict(msg string) *Error         { return &Error{CodeConflict, msg} }
func InvalidInput(msg string) *Error     { return &Error{CodeInvalidInput, msg} }
func Unauthenticated(msg string) *Error  { return &Error{CodeUnauthenticated, msg} }

func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodePermissionDenied:
		return http.StatusForbidden
	case CodeInvalidState, CodeConflict:
		return http.StatusConflict
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

type Meta struct {
	Total int `json:"total"`
}

func StatusOK(data interface{}) gin.H {
	return gin.H{"success": true, "data": data}
}

func StatusOKMeta(data interface{}, meta *Meta) gin.H {
	return gin.H{"success": true, "data": data, "meta": meta}
}

func StatusErr(e *Error) gin.H {
	return gin.H{"success": false, "error": e}
}

// AbortWithErr writes the error envelope. Unexpected error types degrade to a
// generic 500 so internals never leak; sandbox mode keeps the real message.
func AbortWithErr(c *gin.Context, err error, sandbox bool) {
	if e, ok := err.(*Error); ok {
		c.AbortWithStatusJSON(e.HTTPStatus(), StatusErr(e))
		return
	}
	log.Println("internal error:", err)
	msg := "internal server error"
	if sandbox && err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, StatusErr(&Error{CodeInternal, msg}))
}
