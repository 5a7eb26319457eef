package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (a *API) FileDelete(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := a.Files.Delete(c.Request.Context(), id, userID); err != nil {
		abortWithError(c, err, "delete file")
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
