package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AuthDelete removes the caller's account. Their files and forms are kept
// without an owner.
func (a *API) AuthDelete(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	if err := a.Users.Delete(c.Request.Context(), userID); err != nil {
		abortWithError(c, err, "delete user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
