package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"bitwise74/formdrop-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type formBody struct {
	Name   string          `json:"name"`
	Slug   string          `json:"slug"`
	Schema json.RawMessage `json:"schema"`
}

func (a *API) FormCreate(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data formBody
	if err := c.ShouldBindJSON(&data); err != nil {
		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		abortBadRequest(c, "Invalid request body")
		return
	}

	if err := validators.FormNameValidator(data.Name); err != nil {
		abortBadRequest(c, err.Error())
		return
	}

	if err := validators.SlugValidator(data.Slug); err != nil {
		abortBadRequest(c, err.Error())
		return
	}

	if err := validators.SchemaValidator(data.Schema); err != nil {
		abortBadRequest(c, err.Error())
		return
	}

	form, err := a.Forms.CreateForm(c.Request.Context(), userID, strings.TrimSpace(data.Name), data.Slug, data.Schema)
	if err != nil {
		abortWithError(c, err, "create form")
		return
	}

	c.JSON(http.StatusOK, form)
}
