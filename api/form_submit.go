package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"bitwise74/formdrop-api/service"
	"bitwise74/formdrop-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	errInvalidJSON     = errors.New("invalid JSON body")
	errInvalidDataJSON = errors.New("invalid JSON in data field")
)

// FormSubmit takes a submission from anyone. Multipart and urlencoded bodies
// are accepted as well as any JSON value. A "data" field holding a JSON string
// replaces the rest of the body as the submission data, "email" is recorded
// as the submitter's address.
func (a *API) FormSubmit(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	slug := c.Param("slug")

	// Unknown forms are turned away before the body is even read
	if _, err := a.Forms.GetBySlug(c.Request.Context(), slug); err != nil {
		abortWithError(c, err, "look up form")
		return
	}

	var (
		in  service.SubmissionInput
		err error
	)

	switch c.ContentType() {
	case gin.MIMEMultipartPOSTForm:
		var form *multipart.Form
		form, err = c.MultipartForm()
		if err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				abortWithError(c, err, "parse multipart form")
				return
			}

			abortBadRequest(c, "Invalid multipart form")
			return
		}

		in, err = valuesInput(form.Value)
		if err == nil {
			in.Attachments, err = a.attachments(c, form.File)
			if err != nil {
				// attachments already answered
				return
			}
		}
	case gin.MIMEPOSTForm:
		if err = c.Request.ParseForm(); err != nil {
			abortBadRequest(c, "Invalid form body")
			return
		}

		in, err = valuesInput(c.Request.PostForm)
	default:
		var body []byte
		body, err = io.ReadAll(c.Request.Body)
		if err != nil {
			abortWithError(c, err, "read request body")
			return
		}

		in, err = jsonInput(body)
	}

	if err != nil {
		zap.L().Debug("Rejected submission body", zap.Error(err), zap.String("requestID", requestID))
		abortBadRequest(c, err.Error())
		return
	}

	sub, err := a.Forms.Submit(c.Request.Context(), slug, in)
	if err != nil {
		abortWithError(c, err, "save submission")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"submission": sub,
	})
}

// attachments turns the uploaded files into submission attachments, ordered
// by field name. Each one is checked like a regular upload.
func (a *API) attachments(c *gin.Context, files map[string][]*multipart.FileHeader) ([]service.Attachment, error) {
	requestID := c.MustGet("requestID").(string)

	fields := make([]string, 0, len(files))
	for field := range files {
		fields = append(fields, field)
	}
	slices.Sort(fields)

	var out []service.Attachment

	for _, field := range fields {
		for _, fh := range files[field] {
			code, f, mime, err := validators.FileValidator(fh, a.Config.MaxUploadBytes())
			if err != nil {
				msg := err.Error()
				if code == http.StatusInternalServerError {
					zap.L().Error("Failed to validate attachment", zap.Error(err), zap.String("requestID", requestID))
					msg = "Internal server error"
				}

				c.AbortWithStatusJSON(code, gin.H{
					"error":     msg,
					"requestID": requestID,
				})
				return nil, err
			}
			f.Close()

			out = append(out, service.Attachment{
				FieldName: field,
				Filename:  fh.Filename,
				MimeType:  mime,
				Open: func() (io.ReadCloser, error) {
					return fh.Open()
				},
			})
		}
	}

	return out, nil
}

// valuesInput builds the submission from plain form fields. Repeated fields
// become arrays.
func valuesInput(values url.Values) (service.SubmissionInput, error) {
	var in service.SubmissionInput

	if raw := values.Get("data"); raw != "" {
		if !json.Valid([]byte(raw)) {
			return in, errInvalidDataJSON
		}

		in.Data = json.RawMessage(raw)
	} else {
		obj := make(map[string]any, len(values))
		for k, vs := range values {
			if len(vs) == 1 {
				obj[k] = vs[0]
			} else {
				obj[k] = vs
			}
		}

		data, err := json.Marshal(obj)
		if err != nil {
			return in, err
		}

		in.Data = data
	}

	in.SubmitterEmail = submitterEmail(values.Get("email"))
	return in, nil
}

func jsonInput(body []byte) (service.SubmissionInput, error) {
	var in service.SubmissionInput

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return in, nil
	}

	if !json.Valid(body) {
		return in, errInvalidJSON
	}

	in.Data = body

	// Only an object can carry the data and email fields, anything else is
	// stored as it is
	var fields map[string]json.RawMessage
	if json.Unmarshal(body, &fields) != nil {
		return in, nil
	}

	if raw, ok := fields["data"]; ok {
		var s string
		if json.Unmarshal(raw, &s) == nil {
			if !json.Valid([]byte(s)) {
				return in, errInvalidDataJSON
			}

			in.Data = json.RawMessage(s)
		}
	}

	if raw, ok := fields["email"]; ok {
		var s string
		if json.Unmarshal(raw, &s) == nil {
			in.SubmitterEmail = submitterEmail(s)
		}
	}

	return in, nil
}

func submitterEmail(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	return &s
}
