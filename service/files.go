package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"bitwise74/formdrop-api/model"
	"bitwise74/formdrop-api/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Files is the registry of uploaded file metadata. The bytes themselves are
// kept by the blob store under File.StoredName.
type Files struct {
	db    *gorm.DB
	blobs storage.Blobs
}

func NewFiles(db *gorm.DB, blobs storage.Blobs) *Files {
	return &Files{db: db, blobs: blobs}
}

func (f *Files) Create(ctx context.Context, ownerID *string, originalName, storedName, mime string, size int64) (*model.File, error) {
	file := &model.File{
		OriginalName: originalName,
		StoredName:   storedName,
		MimeType:     mime,
		SizeBytes:    size,
		OwnerID:      ownerID,
		Anonymous:    ownerID == nil,
	}

	if err := f.db.WithContext(ctx).Create(file).Error; err != nil {
		return nil, fmt.Errorf("failed to save file record, %w", err)
	}

	return file, nil
}

// Upload writes r to the blob store and records it. A nil ownerID makes an
// anonymous file.
func (f *Files) Upload(ctx context.Context, ownerID *string, r io.Reader, originalName, mime string) (*model.File, error) {
	storedName, size, err := f.blobs.Store(ctx, r, originalName)
	if err != nil {
		return nil, fmt.Errorf("failed to store blob, %w", err)
	}

	file, err := f.Create(ctx, ownerID, originalName, storedName, mime, size)
	if err != nil {
		f.deleteBlob(storedName)
		return nil, err
	}

	return file, nil
}

// List returns the files owned by ownerID, newest first
func (f *Files) List(ctx context.Context, ownerID string) ([]model.File, error) {
	files := []model.File{}

	err := f.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at desc, id desc").
		Find(&files).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to list files, %w", err)
	}

	return files, nil
}

func (f *Files) Get(ctx context.Context, id uint) (*model.File, error) {
	var file model.File

	if err := f.db.WithContext(ctx).Where("id = ?", id).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to look up file, %w", err)
	}

	return &file, nil
}

// getOwned looks the file up first and checks ownership only once it is
// known to exist
func (f *Files) getOwned(ctx context.Context, id uint, requester string) (*model.File, error) {
	file, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !file.OwnedBy(requester) {
		return nil, ErrForbidden
	}

	return file, nil
}

// Open returns the file record and a reader for its content. The caller has
// to close the reader.
func (f *Files) Open(ctx context.Context, id uint, requester string) (*model.File, io.ReadCloser, error) {
	file, err := f.getOwned(ctx, id, requester)
	if err != nil {
		return nil, nil, err
	}

	rc, err := f.blobs.Retrieve(ctx, file.StoredName)
	if err != nil {
		if errors.Is(err, storage.ErrMissing) {
			return nil, nil, ErrGone
		}

		return nil, nil, fmt.Errorf("failed to open blob, %w", err)
	}

	return file, rc, nil
}

// Delete removes the file record. The blob goes afterwards and failing to
// remove it doesn't fail the delete.
func (f *Files) Delete(ctx context.Context, id uint, requester string) error {
	file, err := f.getOwned(ctx, id, requester)
	if err != nil {
		return err
	}

	if err := f.db.WithContext(ctx).Delete(&model.File{}, file.ID).Error; err != nil {
		return fmt.Errorf("failed to delete file record, %w", err)
	}

	f.deleteBlob(file.StoredName)
	return nil
}

// deleteBlob runs detached from the request so a client hanging up doesn't
// leave the blob behind
func (f *Files) deleteBlob(storedName string) {
	err := f.blobs.Delete(context.Background(), storedName)
	if errors.Is(err, storage.ErrMissing) {
		zap.L().Warn("Blob was already gone", zap.String("stored_name", storedName))
		return
	}

	if err != nil {
		zap.L().Error("Failed to delete blob", zap.String("stored_name", storedName), zap.Error(err))
		return
	}

	zap.L().Debug("Deleted blob", zap.String("stored_name", storedName))
}
