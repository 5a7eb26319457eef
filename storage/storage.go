// Package storage keeps the binary content of uploaded files. Blobs live under
// generated names that never depend on what the uploader called the file.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	TypeLocal = "local"
	TypeS3    = "s3"

	nameCharset    = "abcdefghijklmnopqrstuvwxyz0123456789"
	nameSuffixSize = 12
)

// ErrMissing is returned when a blob that should exist is not there anymore
var ErrMissing = errors.New("blob missing")

var safeExt = regexp.MustCompile(`^\.[a-z0-9]{1,16}$`)

// Blobs is implemented by every storage backend
type Blobs interface {
	// Store writes r under a newly generated name and returns that name
	// together with the amount of bytes written
	Store(ctx context.Context, r io.Reader, originalName string) (string, int64, error)
	// Retrieve opens a stored blob. Returns ErrMissing if it doesn't exist
	Retrieve(ctx context.Context, storedName string) (io.ReadCloser, error)
	Delete(ctx context.Context, storedName string) error
}

// GenerateName builds a stored name out of the current time and a random
// suffix, keeping the extension of the original name if it looks sane
func GenerateName(originalName string) (string, error) {
	suffix, err := gonanoid.Generate(nameCharset, nameSuffixSize)
	if err != nil {
		return "", fmt.Errorf("failed to generate blob name, %w", err)
	}

	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	if !safeExt.MatchString(ext) {
		ext = ""
	}

	return strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + suffix + ext, nil
}

// validName rejects anything that could escape the flat blob namespace
func validName(name string) bool {
	return name != "" &&
		name != "." &&
		name != ".." &&
		!strings.ContainsAny(name, `/\`) &&
		!strings.Contains(name, "..")
}
