package api

import (
	"errors"
	"net/http"
	"strconv"

	"bitwise74/formdrop-api/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var serviceErrors = []struct {
	err  error
	code int
	msg  string
}{
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password"},
	{service.ErrForbidden, http.StatusForbidden, "You don't have access to this resource"},
	{service.ErrFormNotFound, http.StatusNotFound, "Form not found"},
	{service.ErrNotFound, http.StatusNotFound, "Not found"},
	{service.ErrGone, http.StatusGone, "File content is no longer available"},
	{service.ErrDuplicateEmail, http.StatusBadRequest, "Email already exists"},
	{service.ErrDuplicateSlug, http.StatusConflict, "Slug already taken"},
}

// abortWithError answers with the status that belongs to err. Anything not
// known is a 500 and gets logged as "Failed to <action>".
func abortWithError(c *gin.Context, err error, action string) {
	requestID := c.MustGet("requestID").(string)

	for _, e := range serviceErrors {
		if errors.Is(err, e.err) {
			c.AbortWithStatusJSON(e.code, gin.H{
				"error":     e.msg,
				"requestID": requestID,
			})
			return
		}
	}

	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
			"error":     "Request body size exceeds limit",
			"requestID": requestID,
		})
		return
	}

	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error":     "Internal server error",
		"requestID": requestID,
	})

	zap.L().Error("Failed to "+action, zap.Error(err), zap.String("requestID", requestID))
}

func abortBadRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error":     msg,
		"requestID": c.MustGet("requestID").(string),
	})
}

// idParam reads a numeric path parameter. Non-numeric IDs answer 400.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		abortBadRequest(c, "Invalid "+name)
		return 0, false
	}

	return uint(id), true
}
