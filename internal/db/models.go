package db

import "time"

// StoredUpload maps pdfdesk.stored_uploads, one row per file kept under the
// upload directory. A re-upload with the same stored name replaces the row.
type StoredUpload struct {
	UploadID     int64     `gorm:"column:upload_id;primaryKey;autoIncrement"`
	UploadUUID   string    `gorm:"column:upload_uuid;type:uuid;not null;unique"`
	StoredName   string    `gorm:"column:stored_name;type:text;not null;uniqueIndex"`
	OriginalName string    `gorm:"column:original_name;type:text;not null"`
	StoredPath   string    `gorm:"column:stored_path;type:text;not null"`
	SizeBytes    int64     `gorm:"column:size_bytes;type:bigint;not null"`
	SHA256       string    `gorm:"column:sha256;type:text;not null"`
	ContentType  *string   `gorm:"column:content_type;type:text"`
	CreatedAt    time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt    time.Time `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (StoredUpload) TableName() string { return "pdfdesk.stored_uploads" }

func autoMigrateModels() []any {
	return []any{
		&StoredUpload{},
	}
}
