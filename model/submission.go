package model

import (
	"time"

	"gorm.io/datatypes"
)

type Submission struct {
	ID             uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	FormID         uint           `gorm:"index;not null" json:"form_id"`
	SubmitterEmail *string        `json:"submitter_email"`
	Data           datatypes.JSON `json:"data"`
	Files          FileRefs       `json:"files"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
}

func (Submission) TableName() string {
	return "form_submissions"
}
