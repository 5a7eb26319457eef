// Package model defines database models
package model

import "time"

type User struct {
	ID           string    `gorm:"primaryKey;size:16" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Name         *string   `json:"name"`
	CreatedAt    time.Time `json:"created_at"`

	// Owned resources outlive their owner, the foreign key is nulled instead
	Files []File `gorm:"foreignKey:OwnerID;constraint:OnDelete:SET NULL" json:"-"`
	Forms []Form `gorm:"foreignKey:OwnerID;constraint:OnDelete:SET NULL" json:"-"`
}
