package validators

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var (
	ErrFormNameEmpty   = errors.New("no form name provided")
	ErrFormNameTooLong = errors.New("form name is too long")
	ErrSlugEmpty       = errors.New("no slug provided")
	ErrSlugInvalid     = errors.New("slug may only contain lowercase letters, digits and single dashes")
	ErrSlugTooLong     = errors.New("slug is too long")
	ErrSchemaEmpty     = errors.New("no schema provided")
	ErrSchemaInvalid   = errors.New("schema must be a JSON object")
)

const (
	maxFormNameLength = 255
	maxSlugLength     = 64
)

var slugRe = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

func FormNameValidator(n string) error {
	n = strings.TrimSpace(n)
	if n == "" {
		return ErrFormNameEmpty
	}

	if len(n) > maxFormNameLength {
		return ErrFormNameTooLong
	}

	return nil
}

// SlugValidator keeps slugs usable as a single URL path segment
func SlugValidator(s string) error {
	if s == "" {
		return ErrSlugEmpty
	}

	if len(s) > maxSlugLength {
		return ErrSlugTooLong
	}

	if !slugRe.MatchString(s) {
		return ErrSlugInvalid
	}

	return nil
}

// SchemaValidator only checks the shape. Submissions are never validated
// against it.
func SchemaValidator(raw json.RawMessage) error {
	if len(raw) == 0 || string(raw) == "null" {
		return ErrSchemaEmpty
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ErrSchemaInvalid
	}

	return nil
}
