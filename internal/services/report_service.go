package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"ireporter/internal/models"
	"ireporter/internal/observability"
	"ireporter/internal/serviceinterfaces"
	contextutils "ireporter/internal/utils"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"
)

// ReportService sequences validation, authorization and mutation for the
// report lifecycle. Every mutation runs inside one transaction so the
// attachment consistency invariant holds under concurrent failure.
type ReportService struct {
	db          *sql.DB
	attachments *AttachmentService
	email       serviceinterfaces.EmailService
	logger      *observability.Logger
}

// NewReportService creates a ReportService. email may be nil when status
// notifications are not wanted (tests, CLI).
func NewReportService(db *sql.DB, attachments *AttachmentService, email serviceinterfaces.EmailService, logger *observability.Logger) *ReportService {
	return &ReportService{
		db:          db,
		attachments: attachments,
		email:       email,
		logger:      logger,
	}
}

// execTx runs fn inside a transaction, rolling back on error.
func (s *ReportService) execTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return contextutils.WrapErrorf(contextutils.ErrDatabaseTransaction, "failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			s.logger.Error(ctx, "Failed to roll back transaction", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return contextutils.WrapErrorf(contextutils.ErrDatabaseTransaction, "failed to commit transaction: %w", err)
	}
	return nil
}

func scanReport(row interface{ Scan(...interface{}) error }) (*models.Report, error) {
	var r models.Report
	err := row.Scan(&r.ID, &r.Type, &r.Title, &r.Description, &r.Location,
		&r.Status, &r.CreatedBy, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// getReportForUpdate loads a report row with a row lock inside tx so
// concurrent mutations of the same report serialize.
func (s *ReportService) getReportForUpdate(ctx context.Context, tx *sql.Tx, id int) (*models.Report, error) {
	row := tx.QueryRowContext(ctx,
		"SELECT "+reportSelectFields+" FROM reports WHERE id = $1 FOR UPDATE", id)
	report, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, contextutils.WrapErrorf(contextutils.ErrRecordNotFound, "report %d not found", id)
	}
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to load report %d: %w", id, err)
	}
	return report, nil
}

func validateCreateRequest(req models.CreateReportRequest) error {
	if strings.TrimSpace(req.Type) == "" {
		return contextutils.NewValidationError("type", "must not be empty")
	}
	if strings.TrimSpace(req.Title) == "" {
		return contextutils.NewValidationError("title", "must not be empty")
	}
	if strings.TrimSpace(req.Description) == "" {
		return contextutils.NewValidationError("description", "must not be empty")
	}
	return nil
}

func validatePatch(patch models.ReportPatch) error {
	if patch.Type != nil && strings.TrimSpace(*patch.Type) == "" {
		return contextutils.NewValidationError("type", "must not be empty")
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return contextutils.NewValidationError("title", "must not be empty")
	}
	if patch.Description != nil && strings.TrimSpace(*patch.Description) == "" {
		return contextutils.NewValidationError("description", "must not be empty")
	}
	return nil
}

// CreateReport files a new pending report owned by principalID. Media files
// are written to storage and recorded in the same transaction as the report
// row; on any failure the written files are removed before returning.
func (s *ReportService) CreateReport(ctx context.Context, principalID int, req models.CreateReportRequest, media []models.UploadFile) (result0 *models.Report, err error) {
	ctx, span := observability.TraceReportFunction(ctx, "create_report",
		observability.AttributeUserID(principalID),
		attribute.Int("media.count", len(media)))
	defer observability.FinishSpan(span, &err)

	if err = validateCreateRequest(req); err != nil {
		return nil, err
	}
	if err = s.attachments.ValidateFiles(media); err != nil {
		return nil, err
	}

	var report *models.Report
	var staged []StagedFile
	err = s.execTx(ctx, func(tx *sql.Tx) error {
		now := time.Now()
		location := sql.NullString{String: strings.TrimSpace(req.Location), Valid: strings.TrimSpace(req.Location) != ""}

		row := tx.QueryRowContext(ctx,
			`INSERT INTO reports (type, title, description, location, status, created_by, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
			 RETURNING `+reportSelectFields,
			strings.TrimSpace(req.Type), strings.TrimSpace(req.Title), strings.TrimSpace(req.Description),
			location, string(models.ReportStatusPending), principalID, now)
		var txErr error
		report, txErr = scanReport(row)
		if txErr != nil {
			return contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to insert report: %w", txErr)
		}

		staged, txErr = s.attachments.StageFiles(ctx, media)
		if txErr != nil {
			return txErr
		}
		report.Attachments, txErr = s.attachments.InsertStaged(ctx, tx, report.ID, staged)
		return txErr
	})
	if err != nil {
		s.attachments.CleanupStaged(ctx, staged)
		return nil, err
	}

	s.logger.Info(ctx, "Report created", map[string]interface{}{
		"report_id":  report.ID,
		"created_by": principalID,
		"type":       report.Type,
	})
	return report, nil
}

// GetReport fetches one report with its attachments. Reads are public.
func (s *ReportService) GetReport(ctx context.Context, id int) (result0 *models.Report, err error) {
	ctx, span := observability.TraceReportFunction(ctx, "get_report",
		observability.AttributeReportID(id))
	defer observability.FinishSpan(span, &err)

	row := s.db.QueryRowContext(ctx,
		"SELECT "+reportSelectFields+" FROM reports WHERE id = $1", id)
	report, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, contextutils.WrapErrorf(contextutils.ErrRecordNotFound, "report %d not found", id)
	}
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to load report %d: %w", id, err)
	}

	report.Attachments, err = s.attachments.FetchForReport(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	return report, nil
}

// UpdateReport applies a field patch plus attachment changes in one
// transaction. Only the owner may update, and only while the report is
// pending. Removed files are deleted from storage after commit; added files
// are cleaned up if the transaction fails.
func (s *ReportService) UpdateReport(ctx context.Context, principalID, id int, patch models.ReportPatch, addMedia []models.UploadFile, removeMediaIDs []int) (result0 *models.Report, err error) {
	ctx, span := observability.TraceReportFunction(ctx, "update_report",
		observability.AttributeReportID(id),
		observability.AttributeUserID(principalID),
		attribute.Int("media.add_count", len(addMedia)),
		attribute.Int("media.remove_count", len(removeMediaIDs)))
	defer observability.FinishSpan(span, &err)

	if err = validatePatch(patch); err != nil {
		return nil, err
	}
	if err = s.attachments.ValidateFiles(addMedia); err != nil {
		return nil, err
	}

	var staged []StagedFile
	var removedNames []string
	err = s.execTx(ctx, func(tx *sql.Tx) error {
		report, txErr := s.getReportForUpdate(ctx, tx, id)
		if txErr != nil {
			return txErr
		}

		if d := Decide(principalID, report, ActionUpdate); !d.Allowed {
			return contextutils.NewForbiddenError(string(d.Reason))
		}

		if txErr = s.applyPatch(ctx, tx, report, patch); txErr != nil {
			return txErr
		}

		if len(removeMediaIDs) > 0 {
			removedNames, txErr = s.attachments.RemoveRows(ctx, tx, id, removeMediaIDs)
			if txErr != nil {
				return txErr
			}
		}
		if len(addMedia) > 0 {
			staged, txErr = s.attachments.StageFiles(ctx, addMedia)
			if txErr != nil {
				return txErr
			}
			if _, txErr = s.attachments.InsertStaged(ctx, tx, id, staged); txErr != nil {
				return txErr
			}
		}
		return nil
	})
	if err != nil {
		s.attachments.CleanupStaged(ctx, staged)
		return nil, err
	}

	// Rows are committed; the file delete leak direction is tolerated.
	s.attachments.DeleteFiles(ctx, removedNames)

	return s.GetReport(ctx, id)
}

// applyPatch updates whitelisted fields and bumps updated_at. A nil pointer
// leaves a field unchanged; an explicit empty location clears it.
func (s *ReportService) applyPatch(ctx context.Context, tx *sql.Tx, report *models.Report, patch models.ReportPatch) error {
	newType := report.Type
	if patch.Type != nil {
		newType = strings.TrimSpace(*patch.Type)
	}
	newTitle := report.Title
	if patch.Title != nil {
		newTitle = strings.TrimSpace(*patch.Title)
	}
	newDescription := report.Description
	if patch.Description != nil {
		newDescription = strings.TrimSpace(*patch.Description)
	}
	newLocation := report.Location
	if patch.Location != nil {
		trimmed := strings.TrimSpace(*patch.Location)
		newLocation = sql.NullString{String: trimmed, Valid: trimmed != ""}
	}

	_, err := tx.ExecContext(ctx,
		`UPDATE reports SET type = $1, title = $2, description = $3, location = $4, updated_at = $5 WHERE id = $6`,
		newType, newTitle, newDescription, newLocation, time.Now(), report.ID)
	if err != nil {
		return contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to update report %d: %w", report.ID, err)
	}
	return nil
}

// DeleteReport removes a report, its attachment rows and their files. File
// deletion happens after commit and is tolerated to fail (logged leak);
// the database is never blocked by a missing file.
func (s *ReportService) DeleteReport(ctx context.Context, principalID, id int) (err error) {
	ctx, span := observability.TraceReportFunction(ctx, "delete_report",
		observability.AttributeReportID(id),
		observability.AttributeUserID(principalID))
	defer observability.FinishSpan(span, &err)

	var storedNames []string
	err = s.execTx(ctx, func(tx *sql.Tx) error {
		report, txErr := s.getReportForUpdate(ctx, tx, id)
		if txErr != nil {
			return txErr
		}

		if d := Decide(principalID, report, ActionDelete); !d.Allowed {
			return contextutils.NewForbiddenError(string(d.Reason))
		}

		storedNames, txErr = s.attachments.CollectStoredNames(ctx, tx, id)
		if txErr != nil {
			return txErr
		}

		// attachment rows go via ON DELETE CASCADE
		if _, txErr = tx.ExecContext(ctx, `DELETE FROM reports WHERE id = $1`, id); txErr != nil {
			return contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to delete report %d: %w", id, txErr)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.attachments.DeleteFiles(ctx, storedNames)

	s.logger.Info(ctx, "Report deleted", map[string]interface{}{
		"report_id": id,
		"files":     len(storedNames),
	})
	return nil
}

// SetReportStatus advances the state machine. The moderator role check is
// the caller's responsibility; the transition itself is re-validated here.
// Once a report leaves pending it never returns.
func (s *ReportService) SetReportStatus(ctx context.Context, principalID, id int, newStatus models.ReportStatus) (result0 *models.Report, err error) {
	ctx, span := observability.TraceReportFunction(ctx, "set_report_status",
		observability.AttributeReportID(id),
		observability.AttributeUserID(principalID),
		observability.AttributeStatus(string(newStatus)))
	defer observability.FinishSpan(span, &err)

	if !newStatus.Valid() {
		return nil, contextutils.NewValidationError("status", fmt.Sprintf("unknown status %q", newStatus))
	}

	err = s.execTx(ctx, func(tx *sql.Tx) error {
		report, txErr := s.getReportForUpdate(ctx, tx, id)
		if txErr != nil {
			return txErr
		}

		if !report.Status.CanTransitionTo(newStatus) {
			return contextutils.WrapErrorf(contextutils.ErrInvalidStatusTransition,
				"cannot transition report %d from %s to %s", id, report.Status, newStatus)
		}

		_, txErr = tx.ExecContext(ctx,
			`UPDATE reports SET status = $1, updated_at = $2 WHERE id = $3`,
			string(newStatus), time.Now(), id)
		if txErr != nil {
			return contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to update report status: %w", txErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	report, err := s.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}

	s.notifyOwner(ctx, report)

	s.logger.Info(ctx, "Report status changed", map[string]interface{}{
		"report_id": id,
		"status":    string(newStatus),
		"set_by":    principalID,
	})
	return report, nil
}

// notifyOwner emails the report owner about a status change, best effort.
func (s *ReportService) notifyOwner(ctx context.Context, report *models.Report) {
	if s.email == nil || !s.email.IsEnabled() {
		return
	}

	owner := &models.User{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, email, is_moderator, created_at, updated_at FROM users WHERE id = $1`,
		report.CreatedBy,
	).Scan(&owner.ID, &owner.Username, &owner.Email, &owner.IsModerator, &owner.CreatedAt, &owner.UpdatedAt)
	if err != nil {
		s.logger.Warn(ctx, "Could not load report owner for notification", map[string]interface{}{
			"report_id": report.ID,
			"error":     err.Error(),
		})
		return
	}

	if err := s.email.SendStatusNotification(ctx, owner, report); err != nil {
		s.logger.Warn(ctx, "Failed to send status notification", map[string]interface{}{
			"report_id": report.ID,
			"user_id":   owner.ID,
			"error":     err.Error(),
		})
	}
}

// ListReports returns one stable page of the filtered feed. A page beyond
// the last returns empty items with correct totals, never an error.
func (s *ReportService) ListReports(ctx context.Context, filter models.ReportFilter, page, pageSize int) (result0 *models.ReportPage, err error) {
	ctx, span := observability.TraceReportFunction(ctx, "list_reports",
		observability.AttributePage(page),
		observability.AttributePageSize(pageSize),
		attribute.String("filter.status", string(filter.Status)),
		attribute.String("filter.type", filter.Type))
	defer observability.FinishSpan(span, &err)

	q, err := buildListQuery(filter, page, pageSize)
	if err != nil {
		return nil, err
	}

	var totalItems int
	countArgs := q.Args[:len(q.Args)-2]
	if err = s.db.QueryRowContext(ctx, q.CountSQL, countArgs...).Scan(&totalItems); err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to count reports: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, q.SelectSQL, q.Args...)
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to list reports: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Warn(ctx, "Failed to close report rows", map[string]interface{}{"error": closeErr.Error()})
		}
	}()

	items := []models.Report{}
	for rows.Next() {
		report, scanErr := scanReport(rows)
		if scanErr != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to scan report: %w", scanErr)
		}
		items = append(items, *report)
	}
	if err = rows.Err(); err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to iterate reports: %w", err)
	}

	if err = s.attachListAttachments(ctx, items); err != nil {
		return nil, err
	}

	return &models.ReportPage{
		Items:      items,
		Page:       page,
		TotalPages: totalPages(totalItems, pageSize),
		TotalItems: totalItems,
	}, nil
}

// attachListAttachments loads attachments for a page of reports in one query.
func (s *ReportService) attachListAttachments(ctx context.Context, items []models.Report) error {
	if len(items) == 0 {
		return nil
	}

	ids := make([]int64, len(items))
	index := make(map[int]int, len(items))
	for i := range items {
		ids[i] = int64(items[i].ID)
		index[items[i].ID] = i
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, report_id, stored_name, original_name, size_bytes, created_at
		 FROM attachments WHERE report_id = ANY($1) ORDER BY created_at ASC, id ASC`,
		pq.Array(ids))
	if err != nil {
		return contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to load page attachments: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Warn(ctx, "Failed to close attachment rows", map[string]interface{}{"error": closeErr.Error()})
		}
	}()

	for rows.Next() {
		var a models.Attachment
		if err := rows.Scan(&a.ID, &a.ReportID, &a.StoredName, &a.OriginalName, &a.SizeBytes, &a.CreatedAt); err != nil {
			return contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to scan attachment: %w", err)
		}
		if i, ok := index[a.ReportID]; ok {
			items[i].Attachments = append(items[i].Attachments, a)
		}
	}
	return rows.Err()
}
