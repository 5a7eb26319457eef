package api

import (
	"net/http"

	"bitwise74/formdrop-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type registerBody struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     *string `json:"name"`
}

func (a *API) AuthRegister(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data registerBody
	if err := c.ShouldBindJSON(&data); err != nil {
		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		abortBadRequest(c, "Invalid request body")
		return
	}

	if err := validators.EmailValidator(data.Email); err != nil {
		abortBadRequest(c, err.Error())
		return
	}

	if err := validators.PasswordValidator(data.Password); err != nil {
		abortBadRequest(c, err.Error())
		return
	}

	user, err := a.Users.Register(c.Request.Context(), data.Email, data.Password, data.Name)
	if err != nil {
		abortWithError(c, err, "register user")
		return
	}

	token, err := a.Tokens.Issue(user.ID, user.Email)
	if err != nil {
		abortWithError(c, err, "issue token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  user,
		"token": token,
	})
}
