package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bitwise74/formdrop-api/model"
	"bitwise74/formdrop-api/security"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"
)

const idCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Users is the credential store
type Users struct {
	db    *gorm.DB
	argon *security.ArgonHash
	// Verified against when the email is unknown so both failure paths cost
	// the same amount of hashing
	dummyHash string
}

func NewUsers(db *gorm.DB, argon *security.ArgonHash) (*Users, error) {
	dummy, err := argon.Hash("dummy-password")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash, %w", err)
	}

	return &Users{db: db, argon: argon, dummyHash: dummy}, nil
}

// Register creates a new user. Uniqueness of the email is left to the
// database index, a pre-check would race with concurrent registrations.
func (u *Users) Register(ctx context.Context, email, password string, name *string) (*model.User, error) {
	hash, err := u.argon.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password, %w", err)
	}

	id, err := gonanoid.Generate(idCharset, 16)
	if err != nil {
		return nil, fmt.Errorf("failed to generate user ID, %w", err)
	}

	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			name = nil
		} else {
			name = &trimmed
		}
	}

	user := &model.User{
		ID:           id,
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
		Name:         name,
	}

	if err := u.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmail
		}

		return nil, fmt.Errorf("failed to create user, %w", err)
	}

	return user, nil
}

// Authenticate returns ErrInvalidCredentials both for unknown emails and
// wrong passwords
func (u *Users) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	var user model.User

	err := u.db.WithContext(ctx).
		Where("email = ?", strings.TrimSpace(email)).
		First(&user).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_, _ = u.argon.Verify(password, u.dummyHash)
			return nil, ErrInvalidCredentials
		}

		return nil, fmt.Errorf("failed to look up user, %w", err)
	}

	ok, err := u.argon.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password, %w", err)
	}

	if !ok {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

func (u *Users) Get(ctx context.Context, id string) (*model.User, error) {
	var user model.User

	if err := u.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to look up user, %w", err)
	}

	return &user, nil
}

// Delete removes a user. Their files and forms stay behind without an owner.
func (u *Users) Delete(ctx context.Context, id string) error {
	res := u.db.WithContext(ctx).Where("id = ?", id).Delete(&model.User{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete user, %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
