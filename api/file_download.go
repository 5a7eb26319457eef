package api

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (a *API) FileDownload(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	file, rc, err := a.Files.Open(c.Request.Context(), id, userID)
	if err != nil {
		abortWithError(c, err, "open file")
		return
	}
	defer rc.Close()

	contentType := file.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// FormatMediaType quotes and, for non-ASCII names, encodes the filename
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": file.OriginalName})
	if disposition == "" {
		disposition = "attachment"
	}

	c.DataFromReader(http.StatusOK, file.SizeBytes, contentType, rc, map[string]string{
		"Content-Disposition": disposition,
	})
}
