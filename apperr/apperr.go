// Package apperr is the API error taxonomy. Every failure a handler can
// surface maps to a machine-readable kind plus an HTTP status; anything
// else is reduced to a generic internal error at the boundary so internals
// never leak to clients.
package apperr

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	KindValidation       = "validation_error"
	KindAuth             = "auth_error"
	KindNotFound         = "not_found"
	KindConflict         = "conflict"
	KindRateLimited      = "rate_limited"
	KindExternal         = "external_service_error"
	KindInvalidSignature = "invalid_signature"
	KindOutOfStock       = "out_of_stock"
	KindInvalidStatus    = "invalid_status"
	KindInternal         = "internal_error"
)

type Error struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (e *Error) Error() string { return e.Kind + ": " + e.Message }

func New(kind string, status int, message string) *Error {
	return &Error{Kind: kind, Message: message, Status: status}
}

func Validation(message string) *Error {
	return New(KindValidation, http.StatusBadRequest, message)
}

func Auth(message string) *Error {
	return New(KindAuth, http.StatusUnauthorized, message)
}

func Forbidden(message string) *Error {
	return New(KindAuth, http.StatusForbidden, message)
}

func NotFound(message string) *Error {
	return New(KindNotFound, http.StatusNotFound, message)
}

func Conflict(message string) *Error {
	return New(KindConflict, http.StatusConflict, message)
}

func RateLimited(message string) *Error {
	return New(KindRateLimited, http.StatusTooManyRequests, message)
}

func External(message string) *Error {
	return New(KindExternal, http.StatusBadGateway, message)
}

func InvalidSignature(message string) *Error {
	return New(KindInvalidSignature, http.StatusBadRequest, message)
}

func OutOfStock(message string) *Error {
	return New(KindOutOfStock, http.StatusConflict, message)
}

func InvalidStatus(message string) *Error {
	return New(KindInvalidStatus, http.StatusBadRequest, message)
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind string) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}

// Respond writes the structured error body. Unrecognized errors become a
// generic internal_error and are logged server-side only.
func Respond(c *gin.Context, err error) {
	var ae *Error
	if errors.As(err, &ae) {
		c.JSON(ae.Status, gin.H{"error": gin.H{"kind": ae.Kind, "message": ae.Message}})
		return
	}
	log.Printf("❌ internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": gin.H{"kind": KindInternal, "message": "internal server error"},
	})
}

// Recovery turns panics into the same generic internal_error response.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Printf("❌ panic on %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{"kind": KindInternal, "message": "internal server error"},
		})
	})
}
