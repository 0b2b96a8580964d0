package domain

import "time"

// BlobEntry stores one serialized snapshot for the SQL blob store.
type BlobEntry struct {
	Key       string    `gorm:"primaryKey;size:191" json:"key"`
	Value     []byte    `gorm:"not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (BlobEntry) TableName() string {
	return "blob_entry"
}
