package api

import (
	"errors"
	"net/http"

	"bitwise74/formdrop-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) FileUpload(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	fh, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			abortBadRequest(c, validators.ErrNoFile.Error())
			return
		}

		abortWithError(c, err, "parse multipart form")
		return
	}

	code, f, mime, err := validators.FileValidator(fh, a.Config.MaxUploadBytes())
	if err != nil {
		msg := err.Error()
		if code == http.StatusInternalServerError {
			zap.L().Error("Failed to validate file", zap.Error(err), zap.String("requestID", requestID))

			// Details stay in the log
			msg = "Internal server error"
		}

		c.AbortWithStatusJSON(code, gin.H{
			"error":     msg,
			"requestID": requestID,
		})
		return
	}
	defer f.Close()

	file, err := a.Files.Upload(c.Request.Context(), &userID, f, fh.Filename, mime)
	if err != nil {
		abortWithError(c, err, "upload file")
		return
	}

	c.JSON(http.StatusOK, file)
}
