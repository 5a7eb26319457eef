package model

import (
	"time"

	"gorm.io/datatypes"
)

type Form struct {
	ID      uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID *string `gorm:"index" json:"owner_id"`
	Name    string  `gorm:"not null" json:"name"`
	// Public key of the submission endpoint, can't change once created
	Slug string `gorm:"uniqueIndex;not null" json:"slug"`
	// Stored as given. Submissions are not validated against it
	Schema    datatypes.JSON `gorm:"not null" json:"schema"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`

	Submissions []Submission `gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE" json:"-"`
}

func (f *Form) OwnedBy(userID string) bool {
	return f.OwnerID != nil && *f.OwnerID == userID
}
