package service_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"bitwise74/formdrop-api/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiles_UploadAndOpen(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	u := e.register(t, "a@x.com")
	f := e.upload(t, u, "ten.txt", []byte("0123456789"))

	assert.Equal(t, int64(10), f.SizeBytes)
	assert.Equal(t, "ten.txt", f.OriginalName)
	assert.NotEqual(t, "ten.txt", f.StoredName)
	require.NotNil(t, f.OwnerID)
	assert.Equal(t, u.ID, *f.OwnerID)

	got, rc, err := e.files.Open(ctx, f.ID, u.ID)
	require.NoError(t, err)
	defer rc.Close()

	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(content))
	assert.Equal(t, f.ID, got.ID)
}

func TestFiles_ListNewestFirstAndOnlyOwn(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	a := e.register(t, "a@x.com")
	b := e.register(t, "b@x.com")

	first := e.upload(t, a, "1.txt", []byte("1"))
	second := e.upload(t, a, "2.txt", []byte("2"))
	e.upload(t, b, "b.txt", []byte("b"))
	e.upload(t, nil, "anon.txt", []byte("x"))

	files, err := e.files.List(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, second.ID, files[0].ID)
	assert.Equal(t, first.ID, files[1].ID)

	none, err := e.files.List(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestFiles_AccessOrdering(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	a := e.register(t, "a@x.com")
	b := e.register(t, "b@x.com")
	f := e.upload(t, a, "a.txt", []byte("a"))
	anon := e.upload(t, nil, "anon.txt", []byte("x"))

	_, _, err := e.files.Open(ctx, 9999, b.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, _, err = e.files.Open(ctx, f.ID, b.ID)
	assert.ErrorIs(t, err, service.ErrForbidden)

	assert.ErrorIs(t, e.files.Delete(ctx, 9999, b.ID), service.ErrNotFound)
	assert.ErrorIs(t, e.files.Delete(ctx, f.ID, b.ID), service.ErrForbidden)

	// Nobody owns anonymous uploads
	_, _, err = e.files.Open(ctx, anon.ID, a.ID)
	assert.ErrorIs(t, err, service.ErrForbidden)
	assert.ErrorIs(t, e.files.Delete(ctx, anon.ID, a.ID), service.ErrForbidden)

	// Denied access left the file untouched
	_, err = os.Stat(filepath.Join(e.blobDir, f.StoredName))
	assert.NoError(t, err)
}

func TestFiles_OpenMissingBlobIsGone(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	u := e.register(t, "a@x.com")
	f := e.upload(t, u, "a.txt", []byte("a"))

	require.NoError(t, os.Remove(filepath.Join(e.blobDir, f.StoredName)))

	_, _, err := e.files.Open(ctx, f.ID, u.ID)
	assert.ErrorIs(t, err, service.ErrGone)
}

func TestFiles_DeleteRemovesRecordAndBlob(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	u := e.register(t, "a@x.com")
	f := e.upload(t, u, "a.txt", []byte("a"))

	require.NoError(t, e.files.Delete(ctx, f.ID, u.ID))

	_, err := e.files.Get(ctx, f.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = os.Stat(filepath.Join(e.blobDir, f.StoredName))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFiles_DeleteSucceedsWithoutBlob(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	u := e.register(t, "a@x.com")
	f := e.upload(t, u, "a.txt", []byte("a"))

	require.NoError(t, os.Remove(filepath.Join(e.blobDir, f.StoredName)))

	require.NoError(t, e.files.Delete(ctx, f.ID, u.ID))

	_, err := e.files.Get(ctx, f.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}
