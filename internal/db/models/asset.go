package models

import "time"

// Asset is a stored artifact that exists both as bytes in the object store
// and as this row. While both copies exist they refer to the same StorageKey;
// the deletion protocol in the services layer defines the only legal state
// transitions between them.
type Asset struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null;index"`
	StorageKey  string    `json:"storage_key" gorm:"not null;uniqueIndex"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type,omitempty"`
	Metadata    JSONMap   `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time `json:"updated_at"`
}
