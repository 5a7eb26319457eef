package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (a *API) FileList(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	files, err := a.Files.List(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, err, "list files")
		return
	}

	c.JSON(http.StatusOK, files)
}
