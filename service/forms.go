package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"bitwise74/formdrop-api/model"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Attachment is a file sent along with a submission
type Attachment struct {
	FieldName string
	Filename  string
	MimeType  string
	Open      func() (io.ReadCloser, error)
}

type SubmissionInput struct {
	SubmitterEmail *string
	// Arbitrary JSON. Not checked against the form's schema
	Data        json.RawMessage
	Attachments []Attachment
}

// Forms stores form templates and the submissions made to them
type Forms struct {
	db    *gorm.DB
	files *Files
}

func NewForms(db *gorm.DB, files *Files) *Forms {
	return &Forms{db: db, files: files}
}

func (f *Forms) CreateForm(ctx context.Context, ownerID, name, slug string, schema json.RawMessage) (*model.Form, error) {
	form := &model.Form{
		OwnerID: &ownerID,
		Name:    name,
		Slug:    slug,
		Schema:  datatypes.JSON(schema),
	}

	if err := f.db.WithContext(ctx).Create(form).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateSlug
		}

		return nil, fmt.Errorf("failed to create form, %w", err)
	}

	return form, nil
}

// ListForms returns the forms owned by ownerID, newest first
func (f *Forms) ListForms(ctx context.Context, ownerID string) ([]model.Form, error) {
	forms := []model.Form{}

	err := f.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at desc, id desc").
		Find(&forms).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to list forms, %w", err)
	}

	return forms, nil
}

func (f *Forms) Get(ctx context.Context, id uint) (*model.Form, error) {
	return f.findForm(ctx, "id = ?", id)
}

func (f *Forms) GetBySlug(ctx context.Context, slug string) (*model.Form, error) {
	return f.findForm(ctx, "slug = ?", slug)
}

func (f *Forms) findForm(ctx context.Context, query string, arg any) (*model.Form, error) {
	var form model.Form

	if err := f.db.WithContext(ctx).Where(query, arg).First(&form).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFormNotFound
		}

		return nil, fmt.Errorf("failed to look up form, %w", err)
	}

	return &form, nil
}

func (f *Forms) getOwned(ctx context.Context, id uint, requester string) (*model.Form, error) {
	form, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !form.OwnedBy(requester) {
		return nil, ErrForbidden
	}

	return form, nil
}

// Submit records a submission to the form behind slug. Anyone may submit.
// Attachments are stored as ownerless files before the submission row is
// written; the two steps are not atomic.
func (f *Forms) Submit(ctx context.Context, slug string, in SubmissionInput) (*model.Submission, error) {
	form, err := f.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	refs := model.FileRefs{}
	var created []*model.File

	for _, a := range in.Attachments {
		file, err := f.storeAttachment(ctx, a)
		if err != nil {
			f.discard(created)
			return nil, err
		}

		created = append(created, file)
		refs = append(refs, model.FileRef{FileID: file.ID, FieldName: a.FieldName})
	}

	data := in.Data
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}

	sub := &model.Submission{
		FormID:         form.ID,
		SubmitterEmail: in.SubmitterEmail,
		Data:           datatypes.JSON(data),
		Files:          refs,
	}

	if err := f.db.WithContext(ctx).Create(sub).Error; err != nil {
		f.discard(created)
		return nil, fmt.Errorf("failed to save submission, %w", err)
	}

	return sub, nil
}

func (f *Forms) storeAttachment(ctx context.Context, a Attachment) (*model.File, error) {
	rc, err := a.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open attachment %q, %w", a.FieldName, err)
	}
	defer rc.Close()

	file, err := f.files.Upload(ctx, nil, rc, a.Filename, a.MimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to store attachment %q, %w", a.FieldName, err)
	}

	return file, nil
}

// discard undoes the files of a submission that failed halfway. Whatever is
// left over is picked up by the orphan cleanup.
func (f *Forms) discard(files []*model.File) {
	for _, file := range files {
		if err := f.db.Delete(&model.File{}, file.ID).Error; err != nil {
			zap.L().Error("Failed to discard attachment record", zap.Uint("file_id", file.ID), zap.Error(err))
			continue
		}

		f.files.deleteBlob(file.StoredName)
	}
}

// ListSubmissions returns the submissions of a form owned by requester,
// newest first
func (f *Forms) ListSubmissions(ctx context.Context, formID uint, requester string) ([]model.Submission, error) {
	form, err := f.getOwned(ctx, formID, requester)
	if err != nil {
		return nil, err
	}

	subs := []model.Submission{}

	err = f.db.WithContext(ctx).
		Where("form_id = ?", form.ID).
		Order("created_at desc, id desc").
		Find(&subs).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions, %w", err)
	}

	return subs, nil
}

// DeleteForm removes a form together with all of its submissions
func (f *Forms) DeleteForm(ctx context.Context, formID uint, requester string) error {
	form, err := f.getOwned(ctx, formID, requester)
	if err != nil {
		return err
	}

	if err := f.db.WithContext(ctx).Delete(&model.Form{}, form.ID).Error; err != nil {
		return fmt.Errorf("failed to delete form, %w", err)
	}

	return nil
}
