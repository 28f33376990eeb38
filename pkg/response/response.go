package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes carried in ErrorInfo.Code.
const (
	CodeBadRequest   = "BAD_REQUEST"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeRateLimited  = "RATE_LIMITED"
	CodeInternal     = "INTERNAL_ERROR"
)

// Response is the envelope of every JSON body the API writes.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// Created writes 201 with a Location header pointing at the new resource.
// An empty location omits the header.
func Created(c *gin.Context, location string, data interface{}) {
	if location != "" {
		c.Header("Location", location)
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

// NoContent writes 204 for deletes and idempotent removals.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// SeeOther sends the viewer to the read view of a resource they may not change.
func SeeOther(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}

// Error writes an error envelope.
func Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, errorBody(code, message))
}

// AbortWithError writes an error envelope and stops the middleware chain.
func AbortWithError(c *gin.Context, statusCode int, code, message string) {
	c.AbortWithStatusJSON(statusCode, errorBody(code, message))
}

func errorBody(code, message string) Response {
	return Response{Error: &ErrorInfo{Code: code, Message: message}}
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, CodeBadRequest, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, CodeUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, CodeForbidden, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, CodeNotFound, message)
}

func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, CodeConflict, message)
}

// TooManyRequests aborts with 429 and a Retry-After hint in seconds.
func TooManyRequests(c *gin.Context, retryAfter string) {
	if retryAfter != "" {
		c.Header("Retry-After", retryAfter)
	}
	AbortWithError(c, http.StatusTooManyRequests, CodeRateLimited, "too many requests")
}

// InternalError hides err details from clients; callers log them.
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, CodeInternal, message)
}
