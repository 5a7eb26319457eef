//go:build integration

package db

import (
	"context"
	"testing"

	"bitwise74/formdrop-api/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"
)

func newPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := pgcontainer.Run(ctx,
		"postgres:17-alpine",
		pgcontainer.WithDatabase("formdrop"),
		pgcontainer.WithUsername("formdrop"),
		pgcontainer.WithPassword("formdrop"),
		pgcontainer.BasicWaitStrategies(),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	d, err := New(DriverPostgres, dsn)
	require.NoError(t, err)

	return d
}

func TestPostgres_ForeignKeyRules(t *testing.T) {
	d := newPostgres(t)

	owner := "user-a"
	require.NoError(t, d.Create(&model.User{ID: owner, Email: "a@x.com", PasswordHash: "x"}).Error)

	file := &model.File{OriginalName: "a.txt", StoredName: "1-abc.txt", OwnerID: &owner}
	require.NoError(t, d.Create(file).Error)

	form := &model.Form{OwnerID: &owner, Name: "Contact", Slug: "contact", Schema: []byte(`{}`)}
	require.NoError(t, d.Create(form).Error)
	require.NoError(t, d.Create(&model.Submission{FormID: form.ID, Data: []byte(`{}`)}).Error)

	// Deleting the owner keeps the file and the form
	require.NoError(t, d.Delete(&model.User{}, "id = ?", owner).Error)

	var kept model.File
	require.NoError(t, d.First(&kept, file.ID).Error)
	assert.Nil(t, kept.OwnerID)

	var keptForm model.Form
	require.NoError(t, d.First(&keptForm, form.ID).Error)
	assert.Nil(t, keptForm.OwnerID)

	// Deleting the form takes its submissions along
	require.NoError(t, d.Delete(&model.Form{}, form.ID).Error)

	var count int64
	require.NoError(t, d.Model(&model.Submission{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPostgres_DuplicateSlugTranslated(t *testing.T) {
	d := newPostgres(t)

	require.NoError(t, d.Create(&model.Form{Name: "A", Slug: "same", Schema: []byte(`{}`)}).Error)

	err := d.Create(&model.Form{Name: "B", Slug: "same", Schema: []byte(`{}`)}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
