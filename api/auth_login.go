package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *API) AuthLogin(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data loginBody
	if err := c.ShouldBindJSON(&data); err != nil {
		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		abortBadRequest(c, "Invalid request body")
		return
	}

	if strings.TrimSpace(data.Email) == "" || data.Password == "" {
		abortBadRequest(c, "Email and password are required")
		return
	}

	user, err := a.Users.Authenticate(c.Request.Context(), data.Email, data.Password)
	if err != nil {
		abortWithError(c, err, "authenticate user")
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
