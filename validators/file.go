package validators

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrFileTooLarge    = errors.New("file too large")
	ErrFileNameTooLong = errors.New("file name is too long")
	ErrFileNameEmpty   = errors.New("file has no name")
	ErrNoFile          = errors.New("no file provided")
)

const maxFileNameSize = 255

// FileValidator checks an uploaded multipart file against maxSize (bytes) and
// sniffs its MIME type from the content. On success the returned file is
// rewound to the start and has to be closed by the caller.
func FileValidator(fh *multipart.FileHeader, maxSize int64) (int, multipart.File, string, error) {
	if fh == nil {
		return http.StatusBadRequest, nil, "", ErrNoFile
	}

	if fh.Filename == "" {
		return http.StatusBadRequest, nil, "", ErrFileNameEmpty
	}

	if len(fh.Filename) > maxFileNameSize {
		return http.StatusBadRequest, nil, "", ErrFileNameTooLong
	}

	if maxSize > 0 && fh.Size > maxSize {
		return http.StatusRequestEntityTooLarge, nil, "", ErrFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return http.StatusInternalServerError, nil, "", fmt.Errorf("failed to open uploaded file, %w", err)
	}

	// The header is client supplied, the content decides
	mime, err := mimetype.DetectReader(f)
	if err != nil {
		f.Close()
		return http.StatusInternalServerError, nil, "", fmt.Errorf("failed to detect file type, %w", err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return http.StatusInternalServerError, nil, "", fmt.Errorf("failed to rewind uploaded file, %w", err)
	}

	return 0, f, mime.String(), nil
}
