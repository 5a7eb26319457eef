package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// FileRef points at a File created while handling a submission and the
// multipart field it was sent under
type FileRef struct {
	FileID    uint   `json:"file_id"`
	FieldName string `json:"field_name"`
}

// FileRefs is stored as a JSON array in a single text column
type FileRefs []FileRef

// Value implements the driver.Valuer interface.
func (r FileRefs) Value() (driver.Value, error) {
	if r == nil {
		return "[]", nil
	}

	b, err := json.Marshal([]FileRef(r))
	if err != nil {
		return nil, fmt.Errorf("failed to encode file refs, %w", err)
	}

	return string(b), nil
}

// Scan implements the sql.Scanner interface.
func (r *FileRefs) Scan(value any) error {
	var raw []byte

	switch v := value.(type) {
	case nil:
		*r = FileRefs{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("failed to scan FileRefs, %v", value)
	}

	if len(raw) == 0 {
		*r = FileRefs{}
		return nil
	}

	var refs []FileRef
	if err := json.Unmarshal(raw, &refs); err != nil {
		return fmt.Errorf("failed to decode file refs, %w", err)
	}

	*r = refs
	return nil
}

// IDs returns the referenced file IDs in order
func (r FileRefs) IDs() []uint {
	ids := make([]uint, len(r))
	for i, ref := range r {
		ids[i] = ref.FileID
	}

	return ids
}

// MarshalJSON keeps an empty list from being rendered as null
func (r FileRefs) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("[]"), nil
	}

	return json.Marshal([]FileRef(r))
}

// GormDataType keeps the column a plain text column on every driver
func (FileRefs) GormDataType() string {
	return "text"
}
