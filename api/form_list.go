package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (a *API) FormList(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	forms, err := a.Forms.ListForms(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, err, "list forms")
		return
	}

	c.JSON(http.StatusOK, forms)
}
