//go:build integration

package services

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"ireporter/internal/models"
	contextutils "ireporter/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportService_CreateReport_Integration(t *testing.T) {
	db := SharedTestDBSetup(t)
	defer db.Close()
	svc, _, _ := newIntegrationReportService(t, db)
	owner := createTestUser(t, db, "owner", false)

	report, err := svc.CreateReport(context.Background(), owner, models.CreateReportRequest{
		Type:        "infrastructure",
		Title:       "Flooded road",
		Description: "Bridge underpass flooded after rain",
	}, nil)
	require.NoError(t, err)

	assert.Greater(t, report.ID, 0)
	assert.Equal(t, models.ReportStatusPending, report.Status)
	assert.Equal(t, owner, report.CreatedBy)
	assert.Empty(t, report.Attachments)
	assert.False(t, report.Location.Valid)
}

func TestReportService_CreateReport_Validation_Integration(t *testing.T) {
	db := SharedTestDBSetup(t)
	defer db.Close()
	svc, _, _ := newIntegrationReportService(t, db)
	owner := createTestUser(t, db, "owner", false)

	_, err := svc.CreateReport(context.Background(), owner, models.CreateReportRequest{
		Type: "corruption", Title: "  ", Description: "something",
	}, nil)
	require.Error(t, err)
	assert.Equal(t, contextutils.ErrorCodeValidationFailed, contextutils.GetErrorCode(err))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM reports").Scan(&count))
	assert.Zero(t, count)
}

func TestReportService_OwnerUpdateWhilePending_Integration(t *testing.T) {
	db := SharedTestDBSetup(t)
	defer db.Close()
	svc, _, _ := newIntegrationReportService(t, db)
	owner := createTestUser(t, db, "owner", false)

	report, err := svc.CreateReport(context.Background(), owner, models.CreateReportRequest{
		Type: "corruption", Title: "Bribe at permit office", Description: "details",
	}, nil)
	require.NoError(t, err)

	before := report.UpdatedAt
	time.Sleep(10 * time.Millisecond)

	newTitle := "Bribe demanded at permit office"
	updated, err := svc.UpdateReport(context.Background(), owner, report.ID, models.ReportPatch{Title: &newTitle}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, newTitle, updated.Title)
	assert.True(t, updated.UpdatedAt.After(before))
	// untouched fields survive
	assert.Equal(t, "details", updated.Description)
}

func TestReportService_NonOwnerUpdateForbidden_Integration(t *testing.T) {
	db := SharedTestDBSetup(t)
	defer db.Close()
	svc, _, _ := newIntegrationReportService(t, db)
	owner := createTestUser(t, db, "owner", false)
	other := createTestUser(t, db, "other", false)

	report, err := svc.CreateReport(context.Background(), owner, models.CreateReportRequest{
		Type: "corruption", Title: "Original", Description: "details",
	}, nil)
	require.NoError(t, err)

	newTitle := "Hijacked"
	_, err = svc.UpdateReport(context.Background(), other, report.ID, models.ReportPatch{Title: &newTitle}, nil, nil)
	require.Error(t, err)
	assert.Equal(t, contextutils.ErrorCodeForbidden, contextutils.GetErrorCode(err))

	got, err := svc.GetReport(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original", got.Title)
}

func TestReportService_PendingGateAfterModeration_Integration(t *testing.T) {
	db := SharedTestDBSetup(t)
	defer db.Close()
	svc, _, _ := newIntegrationReportService(t, db)
	owner := createTestUser(t, db, "owner", false)
	moderator := createTestUser(t, db, "moderator", true)

	report, err := svc.CreateReport(context.Background(), owner, models.CreateReportRequest{
		Type: "corruption", Title: "Resolved case", Description: "details",
	}, nil)
	require.NoError(t, err)

	resolved, err := svc.SetReportStatus(context.Background(), moderator, report.ID, models.ReportStatusResolved)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusResolved, resolved.Status)

	// even the owner can no longer edit
	newTitle := "Too late"
	_, err = svc.UpdateReport(context.Background(), owner, report.ID, models.ReportPatch{Title: &newTitle}, nil, nil)
	require.Error(t, err)
	assert.Equal(t, contextutils.ErrorCodeForbidden, contextutils.GetErrorCode(err))

	// and the report can never go back to pending
	_, err = svc.SetReportStatus(context.Background(), moderator, report.ID, models.ReportStatusPending)
	require.Error(t, err)
	assert.True(t, errors.Is(err, contextutils.ErrInvalidStatusTransition))

	_, err = svc.SetReportStatus(context.Background(), moderator, report.ID, models.ReportStatusRejected)
	require.Error(t, err)
	assert.True(t, errors.Is(err, contextutils.ErrInvalidStatusTransition))
}

func TestReportService_CreateWithDisallowedAttachment_Integration(t *testing.T) {
	db := SharedTestDBSetup(t)
	defer db.Close()
	svc, _, store := newIntegrationReportService(t, db)
	owner := createTestUser(t, db, "owner", false)

	_, err := svc.CreateReport(context.Background(), owner, models.CreateReportRequest{
		Type: "corruption", Title: "With bad file", Description: "details",
	}, []models.UploadFile{{OriginalName: "evidence.exe", Data: []byte("MZ")}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, contextutils.ErrUnsupportedMediaType))

	// nothing persisted anywhere
	var reports, attachments int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM reports").Scan(&reports))
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM attachments").Scan(&attachments))
	assert.Zero(t, reports)
	assert.Zero(t, attachments)
	assertUploadsEmpty(t, store.Dir())
}

func TestReportService_CreateWithAttachments_Integration(t *testing.T) {
	db := SharedTestDBSetup(t)
	defer db.Close()
	svc, _, store := newIntegrationReportService(t, db)
	owner := createTestUser(t, db, "owner", false)

	report, err := svc.CreateReport(context.Background(), owner, models.CreateReportRequest{
		Type: "corruption", Title: "With photos", Description: "details",
	}, []models.UploadFile{
		{OriginalName: "one.png", Data: []byte("111")},
		{OriginalName: "two.jpg", Data: []byte("22")},
	})
	require.NoError(t, err)
	require.Len(t, report.Attachments, 2)

	for _, a := range report.Attachments {
		assert.Equal(t, report.ID, a.ReportID)
		assert.True(t, store.FileExists(a.StoredName), "file %s must exist", a.StoredName)
		assert.NotEqual(t, a.OriginalName, a.StoredName)
	}
	assert.Equal(t, "one.png", report.Attachments[0].OriginalName)
	assert.Equal(t, int64(3), report.Attachments[0].SizeBytes)
}

func TestReportService_DBFailureCleansUpFiles_Integration(t *testing.T) {
	db := SharedTestDBSetup(t)
	defer db.Close()
	svc, _, store := newIntegrationReportService(t, db)
	owner := createTestUser(t, db, "owner", false)

	// original_name is varchar(255); an oversized name makes the attachment
	// insert fail after the file is already on disk
	longName := strings.Repeat("a", 300) + ".png"
	_, err := svc.CreateReport(context.Background(), owner, models.CreateReportRequest{
		Type: "corruption", Title: "Doomed", Description: "details",
	}, []models.UploadFile{{OriginalName: longName, Data: []byte("x")}})
	require.Error(t, err)

	var reports, attachments int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM reports").Scan(&reports))
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM attachments").Scan(&attachments))
	assert.Zero(t, reports)
	assert.Zero(t, attachments)
	assertUploadsEmpty(t, store.Dir())
}

func TestReportService_UpdateAddAndRemoveMedia_Integration(t *testing.T) {
	db := SharedTestDBSetup(t)
	defer db.Close()
	svc, _, store := newIntegrationReportService(t, db)
	owner := createTestUser(t, db, "owner", false)

	report, err := svc.CreateReport(context.Background(), owner, models.CreateReportRequest{
		Type: "corruption", Title: "Evolving", Description: "details",
	}, []models.UploadFile{{OriginalName: "old.png", Data: []byte("old")}})
	require.NoError(t, err)
	require.Len(t, report.Attachments, 1)
	oldStored := report.Attachments[0].StoredName

	updated, err := svc.UpdateReport(context.Background(), owner, report.ID, models.ReportPatch{},
		[]models.UploadFile{{OriginalName: "new.jpg", Data: []byte("new!")}},
		[]int{report.Attachments[0].ID})
	require.NoError(t, err)
	require.Len(t, updated.Attachments, 1)
	assert.Equal(t, "new.jpg", updated.Attachments[0].OriginalName)

	assert.False(t, store.FileExists(oldStored))
	assert.True(t, store.FileExists(updated.Attachments[0].StoredName))
}

func TestReportService_RemoveForeignAttachmentForbidden_Integration(t *testing.T) {
	db := SharedTestDBSetup(t)
	defer db.Close()
	svc, _, store := newIntegrationReportService(t, db)
	owner := createTestUser(t, db, "owner", false)

	first, err := svc.CreateReport(context.Background(), owner, models.CreateReportRequest{
		Type: "corruption", Title: "First", Description: "details",
	}, []models.UploadFile{{OriginalName: "mine.png", Data: []byte("x")}})
	require.NoError(t, err)

	second, err := svc.CreateReport(context.Background(), owner, models.CreateReportRequest{
		Type: "corruption", Title: "Second", Description: "details",
	}, nil)
	require.NoError(t, err)

	// removing an attachment through the wrong report is refused
	_, err = svc.UpdateReport(context.Background(), owner, second.ID, models.ReportPatch{}, nil,
		[]int{first.Attachments[0].ID})
	require.Error(t, err)
	assert.Equal(t, contextutils.ErrorCodeForbidden, contextutils.GetErrorCode(err))
	assert.True(t, store.FileExists(first.Attachments[0].StoredName))
}

func TestReportService_DeleteCascades_Integration(t *testing.T) {
	db := SharedTestDBSetup(t)
	defer db.Close()
	svc, _, store := newIntegrationReportService(t, db)
	owner := createTestUser(t, db, "owner", false)

	report, err := svc.CreateReport(context.Background(), owner, models.CreateReportRequest{
		Type: "corruption", Title: "Doomed", Description: "details",
	}, []models.UploadFile{
		{OriginalName: "a.png", Data: []byte("a")},
		{OriginalName: "b.png", Data: []byte("b")},
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteReport(context.Background(), owner, report.ID))

	_, err = svc.GetReport(context.Background(), report.ID)
	require.Error(t, err)
	assert.Equal(t, contextutils.ErrorCodeRecordNotFound, contextutils.GetErrorCode(err))

	var attachments int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM attachments").Scan(&attachments))
	assert.Zero(t, attachments)
	assertUploadsEmpty(t, store.Dir())
}

func TestReportService_ListFilterAndPagination_Integration(t *testing.T) {
	db := SharedTestDBSetup(t)
	defer db.Close()
	svc, _, _ := newIntegrationReportService(t, db)
	owner := createTestUser(t, db, "owner", false)
	moderator := createTestUser(t, db, "moderator", true)

	ids := make([]int, 0, 5)
	for _, title := range []string{"Pothole on Main", "Flooded underpass", "Bribe at office", "Broken lamp", "Flooded market"} {
		r, err := svc.CreateReport(context.Background(), owner, models.CreateReportRequest{
			Type: "infrastructure", Title: title, Description: "details",
		}, nil)
		require.NoError(t, err)
		ids = append(ids, r.ID)
	}
	_, err := svc.SetReportStatus(context.Background(), moderator, ids[1], models.ReportStatusResolved)
	require.NoError(t, err)

	// status filter
	page, err := svc.ListReports(context.Background(), models.ReportFilter{Status: models.ReportStatusResolved}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalItems)
	require.Len(t, page.Items, 1)
	assert.Equal(t, ids[1], page.Items[0].ID)

	// case-insensitive search
	page, err = svc.ListReports(context.Background(), models.ReportFilter{Search: "flooded"}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalItems)

	// pagination: walking all pages reproduces the full set exactly once
	seen := map[int]bool{}
	full, err := svc.ListReports(context.Background(), models.ReportFilter{}, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, full.TotalItems)
	assert.Equal(t, 3, full.TotalPages)
	for p := 1; p <= full.TotalPages; p++ {
		pg, err := svc.ListReports(context.Background(), models.ReportFilter{}, p, 2)
		require.NoError(t, err)
		for _, item := range pg.Items {
			assert.False(t, seen[item.ID], "report %d repeated across pages", item.ID)
			seen[item.ID] = true
		}
	}
	assert.Len(t, seen, 5)

	// page beyond range is empty with correct totals, never an error
	beyond, err := svc.ListReports(context.Background(), models.ReportFilter{}, 99, 2)
	require.NoError(t, err)
	assert.Empty(t, beyond.Items)
	assert.Equal(t, 5, beyond.TotalItems)
	assert.Equal(t, 3, beyond.TotalPages)
}

func TestReportService_ListOrderIsNewestFirst_Integration(t *testing.T) {
	db := SharedTestDBSetup(t)
	defer db.Close()
	svc, _, _ := newIntegrationReportService(t, db)
	owner := createTestUser(t, db, "owner", false)

	// force equal timestamps so the id tiebreak is what keeps order stable
	now := time.Now()
	for i := 0; i < 3; i++ {
		_, err := db.Exec(
			`INSERT INTO reports (type, title, description, status, created_by, created_at, updated_at)
			 VALUES ('corruption', 'same instant', 'details', 'pending', $1, $2, $2)`, owner, now)
		require.NoError(t, err)
	}

	page, err := svc.ListReports(context.Background(), models.ReportFilter{}, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Greater(t, page.Items[0].ID, page.Items[1].ID)
	assert.Greater(t, page.Items[1].ID, page.Items[2].ID)
}

func assertUploadsEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "uploads directory should be empty")
}
