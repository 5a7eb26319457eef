package model

import "time"

type File struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`
	// Name the user uploaded the file with. Only used when serving it back
	OriginalName string `gorm:"not null" json:"original_name"`
	// Generated name of the blob on disk/in the bucket. Never derived from user input
	StoredName string `gorm:"uniqueIndex;not null" json:"stored_name"`
	MimeType   string `json:"mime_type"`
	SizeBytes  int64  `json:"size_bytes"`
	// Null for files uploaded anonymously through a form submission
	OwnerID *string `gorm:"index" json:"owner_id"`
	// Set for submission attachments. Lets the orphan cleanup tell them apart
	// from files whose owner deleted their account
	Anonymous bool      `gorm:"not null;default:false" json:"-"`
	CreatedAt time.Time `gorm:"index" json:"uploaded_at"`
}

// OwnedBy reports whether userID is the owner of the file. Ownerless files
// belong to nobody.
func (f *File) OwnedBy(userID string) bool {
	return f.OwnerID != nil && *f.OwnerID == userID
}
