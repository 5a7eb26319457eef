package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// FormDelete removes a form with its submissions. Attachments are left to
// the orphan cleanup.
func (a *API) FormDelete(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := a.Forms.DeleteForm(c.Request.Context(), id, userID); err != nil {
		abortWithError(c, err, "delete form")
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
