package service_test

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"

	"bitwise74/formdrop-api/db"
	"bitwise74/formdrop-api/model"
	"bitwise74/formdrop-api/security"
	"bitwise74/formdrop-api/service"
	"bitwise74/formdrop-api/storage"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db      *gorm.DB
	blobDir string
	blobs   *storage.Local
	users   *service.Users
	files   *service.Files
	forms   *service.Forms
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()

	gdb, err := db.New(db.DriverSQLite, filepath.Join(dir, "test.db"))
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	blobDir := filepath.Join(dir, "blobs")
	blobs, err := storage.NewLocal(blobDir)
	require.NoError(t, err)

	users, err := service.NewUsers(gdb, &security.ArgonHash{
		Memory:      1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	require.NoError(t, err)

	files := service.NewFiles(gdb, blobs)

	return &testEnv{
		db:      gdb,
		blobDir: blobDir,
		blobs:   blobs,
		users:   users,
		files:   files,
		forms:   service.NewForms(gdb, files),
	}
}

func (e *testEnv) register(t *testing.T, email string) *model.User {
	t.Helper()

	u, err := e.users.Register(context.Background(), email, "p", nil)
	require.NoError(t, err)
	return u
}

func (e *testEnv) upload(t *testing.T, owner *model.User, name string, content []byte) *model.File {
	t.Helper()

	var ownerID *string
	if owner != nil {
		ownerID = &owner.ID
	}

	f, err := e.files.Upload(context.Background(), ownerID, bytes.NewReader(content), name, "application/octet-stream")
	require.NoError(t, err)
	return f
}

func attachment(field, name string, content []byte) service.Attachment {
	return service.Attachment{
		FieldName: field,
		Filename:  name,
		MimeType:  "text/plain",
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(content)), nil
		},
	}
}

func strPtr(s string) *string {
	return &s
}
