package services

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"ireporter/internal/config"
	"ireporter/internal/models"
	"ireporter/internal/observability"
	"ireporter/internal/storage"
	contextutils "ireporter/internal/utils"

	"go.opentelemetry.io/otel/attribute"
)

// defaultAllowedExtensions is the media allow-list used when config does not
// override it. Checked before anything is written to storage.
var defaultAllowedExtensions = []string{
	".jpg", ".jpeg", ".png", ".gif", ".webp",
	".mp4", ".mov", ".webm",
	".pdf",
}

// StagedFile is a file already written to durable storage but not yet
// recorded in the database.
type StagedFile struct {
	StoredName   string
	OriginalName string
	SizeBytes    int64
}

// AttachmentService keeps the (file store, attachment relation) pair
// consistent under partial failure.
type AttachmentService struct {
	store        storage.FileStore
	logger       *observability.Logger
	allowedExts  map[string]bool
	maxFileBytes int64
}

// NewAttachmentService creates an AttachmentService over the given file store.
func NewAttachmentService(store storage.FileStore, cfg *config.Config, logger *observability.Logger) *AttachmentService {
	exts := cfg.Uploads.AllowedExtensions
	if len(exts) == 0 {
		exts = defaultAllowedExtensions
	}
	allowed := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" && !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		allowed[e] = true
	}

	maxMB := cfg.Uploads.MaxFileSizeMB
	if maxMB <= 0 {
		maxMB = config.DefaultMaxFileSizeMB
	}

	return &AttachmentService{
		store:        store,
		logger:       logger,
		allowedExts:  allowed,
		maxFileBytes: maxMB * 1024 * 1024,
	}
}

// ValidateFiles rejects any disallowed or oversized file before a single
// byte reaches storage.
func (s *AttachmentService) ValidateFiles(media []models.UploadFile) error {
	for _, f := range media {
		ext := strings.ToLower(filepath.Ext(f.OriginalName))
		if ext == "" || !s.allowedExts[ext] {
			return contextutils.WrapErrorf(contextutils.ErrUnsupportedMediaType,
				"file type %q is not allowed for %q", ext, f.OriginalName)
		}
		if int64(len(f.Data)) > s.maxFileBytes {
			return contextutils.NewValidationError("file",
				fmt.Sprintf("%q exceeds the maximum size of %d bytes", f.OriginalName, s.maxFileBytes))
		}
	}
	return nil
}

// StageFiles writes a batch of validated files to storage. If any write
// fails mid-batch, files already written for this batch are removed before
// the error is returned.
func (s *AttachmentService) StageFiles(ctx context.Context, media []models.UploadFile) (result0 []StagedFile, err error) {
	ctx, span := observability.TraceAttachmentFunction(ctx, "stage_files",
		attribute.Int("media.count", len(media)))
	defer observability.FinishSpan(span, &err)

	if err := s.ValidateFiles(media); err != nil {
		return nil, err
	}

	staged := make([]StagedFile, 0, len(media))
	for _, f := range media {
		storedName, writeErr := s.store.WriteFile(f.Data, f.OriginalName)
		if writeErr != nil {
			s.CleanupStaged(ctx, staged)
			return nil, contextutils.WrapErrorf(contextutils.ErrStorageFailure,
				"failed to store %q: %w", f.OriginalName, writeErr)
		}
		staged = append(staged, StagedFile{
			StoredName:   storedName,
			OriginalName: f.OriginalName,
			SizeBytes:    int64(len(f.Data)),
		})
	}
	return staged, nil
}

// CleanupStaged removes staged files after a failed operation so no orphan
// survives. Cleanup failures are logged, never returned over the original
// error.
func (s *AttachmentService) CleanupStaged(ctx context.Context, staged []StagedFile) {
	for _, f := range staged {
		if err := s.store.DeleteFile(f.StoredName); err != nil {
			s.logger.Error(ctx, "Failed to clean up staged attachment file", err, map[string]interface{}{
				"stored_name": f.StoredName,
			})
		}
	}
}

// InsertStaged records staged files as attachment rows of the given report
// inside the caller's transaction.
func (s *AttachmentService) InsertStaged(ctx context.Context, tx DBTX, reportID int, staged []StagedFile) (result0 []models.Attachment, err error) {
	ctx, span := observability.TraceAttachmentFunction(ctx, "insert_staged",
		observability.AttributeReportID(reportID),
		attribute.Int("media.count", len(staged)))
	defer observability.FinishSpan(span, &err)

	attachments := make([]models.Attachment, 0, len(staged))
	now := time.Now()
	for _, f := range staged {
		var id int
		err = tx.QueryRowContext(ctx,
			`INSERT INTO attachments (report_id, stored_name, original_name, size_bytes, created_at)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			reportID, f.StoredName, f.OriginalName, f.SizeBytes, now,
		).Scan(&id)
		if err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery,
				"failed to insert attachment row: %w", err)
		}
		attachments = append(attachments, models.Attachment{
			ID:           id,
			ReportID:     reportID,
			StoredName:   f.StoredName,
			OriginalName: f.OriginalName,
			SizeBytes:    f.SizeBytes,
			CreatedAt:    now,
		})
	}
	return attachments, nil
}

// RemoveRows deletes the given attachment rows inside the caller's
// transaction after verifying each belongs to the target report. It returns
// the stored names whose files must be deleted once the transaction commits.
func (s *AttachmentService) RemoveRows(ctx context.Context, tx DBTX, reportID int, attachmentIDs []int) (result0 []string, err error) {
	ctx, span := observability.TraceAttachmentFunction(ctx, "remove_rows",
		observability.AttributeReportID(reportID),
		attribute.Int("media.count", len(attachmentIDs)))
	defer observability.FinishSpan(span, &err)

	storedNames := make([]string, 0, len(attachmentIDs))
	for _, id := range attachmentIDs {
		var storedName string
		var ownerReportID int
		err = tx.QueryRowContext(ctx,
			`SELECT report_id, stored_name FROM attachments WHERE id = $1`, id,
		).Scan(&ownerReportID, &storedName)
		if err == sql.ErrNoRows {
			return nil, contextutils.WrapErrorf(contextutils.ErrRecordNotFound,
				"attachment %d not found", id)
		}
		if err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery,
				"failed to look up attachment %d: %w", id, err)
		}
		if ownerReportID != reportID {
			return nil, contextutils.NewForbiddenError(
				fmt.Sprintf("attachment %d does not belong to report %d", id, reportID))
		}

		if _, err = tx.ExecContext(ctx, `DELETE FROM attachments WHERE id = $1`, id); err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery,
				"failed to delete attachment %d: %w", id, err)
		}
		storedNames = append(storedNames, storedName)
	}
	return storedNames, nil
}

// CollectStoredNames returns the stored names of every attachment of a report,
// used before a cascade delete.
func (s *AttachmentService) CollectStoredNames(ctx context.Context, tx DBTX, reportID int) (result0 []string, err error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT stored_name FROM attachments WHERE report_id = $1`, reportID)
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery,
			"failed to list attachment files for report %d: %w", reportID, err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Warn(ctx, "Failed to close attachment rows", map[string]interface{}{"error": closeErr.Error()})
		}
	}()

	var names []string
	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to scan stored name: %w", err)
		}
		names = append(names, name)
	}
	if err = rows.Err(); err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to iterate stored names: %w", err)
	}
	return names, nil
}

// DeleteFiles removes committed attachment files from storage. A failed
// delete is logged and tolerated; the leaked file is recoverable later and
// never blocks the database from making progress.
func (s *AttachmentService) DeleteFiles(ctx context.Context, storedNames []string) {
	for _, name := range storedNames {
		if err := s.store.DeleteFile(name); err != nil {
			s.logger.Error(ctx, "Failed to delete attachment file, leaking it", err, map[string]interface{}{
				"stored_name": name,
			})
		}
	}
}

// FetchForReport returns a report's attachments in creation order.
func (s *AttachmentService) FetchForReport(ctx context.Context, q DBTX, reportID int) (result0 []models.Attachment, err error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, report_id, stored_name, original_name, size_bytes, created_at
		 FROM attachments WHERE report_id = $1 ORDER BY created_at ASC, id ASC`, reportID)
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery,
			"failed to fetch attachments for report %d: %w", reportID, err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Warn(ctx, "Failed to close attachment rows", map[string]interface{}{"error": closeErr.Error()})
		}
	}()

	attachments := []models.Attachment{}
	for rows.Next() {
		var a models.Attachment
		if err = rows.Scan(&a.ID, &a.ReportID, &a.StoredName, &a.OriginalName, &a.SizeBytes, &a.CreatedAt); err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to scan attachment: %w", err)
		}
		attachments = append(attachments, a)
	}
	if err = rows.Err(); err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to iterate attachments: %w", err)
	}
	return attachments, nil
}
