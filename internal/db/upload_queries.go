package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NewUpload is the ledger input for one stored file.
type NewUpload struct {
	StoredName   string
	OriginalName string
	StoredPath   string
	SizeBytes    int64
	SHA256       string
	ContentType  string
}

// Ledger records stored uploads. The sweeper uses ForgetUploads to drop rows
// for files it removed from disk.
type Ledger interface {
	RecordUpload(ctx context.Context, upload NewUpload) (string, error)
	ForgetUploads(ctx context.Context, storedNames []string) (int64, error)
	ExpiredUploadNames(ctx context.Context, cutoff time.Time, limit int) ([]string, error)
}

// NopLedger is used when no database is configured.
type NopLedger struct{}

func (NopLedger) RecordUpload(context.Context, NewUpload) (string, error) {
	return "", nil
}

func (NopLedger) ForgetUploads(context.Context, []string) (int64, error) {
	return 0, nil
}

func (NopLedger) ExpiredUploadNames(context.Context, time.Time, int) ([]string, error) {
	return nil, nil
}

// RecordUpload upserts the row for upload.StoredName and returns its UUID.
func (p *Pool) RecordUpload(ctx context.Context, upload NewUpload) (string, error) {
	storedName := strings.TrimSpace(upload.StoredName)
	if storedName == "" {
		return "", fmt.Errorf("stored name is required")
	}

	var contentType *string
	if trimmed := strings.TrimSpace(upload.ContentType); trimmed != "" {
		contentType = &trimmed
	}

	const q = `
INSERT INTO pdfdesk.stored_uploads (
	upload_uuid,
	stored_name,
	original_name,
	stored_path,
	size_bytes,
	sha256,
	content_type,
	created_at,
	updated_at
)
VALUES (?::uuid, ?, ?, ?, ?, ?, ?, now(), now())
ON CONFLICT (stored_name) DO UPDATE
SET
	original_name = EXCLUDED.original_name,
	stored_path = EXCLUDED.stored_path,
	size_bytes = EXCLUDED.size_bytes,
	sha256 = EXCLUDED.sha256,
	content_type = EXCLUDED.content_type,
	updated_at = now()
RETURNING upload_uuid::text
`
	tx, err := p.session(ctx)
	if err != nil {
		return "", err
	}
	var uploadUUID string
	err = tx.Raw(q,
		uuid.NewString(),
		storedName,
		upload.OriginalName,
		upload.StoredPath,
		upload.SizeBytes,
		upload.SHA256,
		contentType,
	).Row().Scan(&uploadUUID)
	if err != nil {
		return "", fmt.Errorf("record upload %s: %w", storedName, err)
	}
	return uploadUUID, nil
}

// ListExpiredUploads returns rows last written before cutoff, oldest first.
func (p *Pool) ListExpiredUploads(ctx context.Context, cutoff time.Time, limit int) ([]StoredUpload, error) {
	if limit <= 0 {
		limit = 500
	}

	tx, err := p.session(ctx)
	if err != nil {
		return nil, err
	}
	var rows []StoredUpload
	err = tx.
		Where("updated_at < ?", cutoff.UTC()).
		Order("updated_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list expired uploads: %w", err)
	}
	return rows, nil
}

// DeleteUploads removes the rows for storedNames in one transaction.
func (p *Pool) DeleteUploads(ctx context.Context, storedNames []string) (int64, error) {
	names := make([]string, 0, len(storedNames))
	for _, name := range storedNames {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	if len(names) == 0 {
		return 0, nil
	}

	session, err := p.session(ctx)
	if err != nil {
		return 0, err
	}

	var deleted int64
	err = session.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("stored_name IN ?", names).Delete(&StoredUpload{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete uploads: %w", err)
	}
	return deleted, nil
}

// ForgetUploads satisfies Ledger.
func (p *Pool) ForgetUploads(ctx context.Context, storedNames []string) (int64, error) {
	return p.DeleteUploads(ctx, storedNames)
}

// ExpiredUploadNames satisfies Ledger.
func (p *Pool) ExpiredUploadNames(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	rows, err := p.ListExpiredUploads(ctx, cutoff, limit)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(rows))
	for i, row := range rows {
		names[i] = row.StoredName
	}
	return names, nil
}
