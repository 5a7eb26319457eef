package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (a *API) FormSubmissions(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	subs, err := a.Forms.ListSubmissions(c.Request.Context(), id, userID)
	if err != nil {
		abortWithError(c, err, "list submissions")
		return
	}

	c.JSON(http.StatusOK, subs)
}
