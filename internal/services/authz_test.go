package services

import (
	"testing"

	"ireporter/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestDecide_OwnerMutationsWhilePending(t *testing.T) {
	report := &models.Report{ID: 1, CreatedBy: 42, Status: models.ReportStatusPending}

	for _, action := range []ReportAction{ActionUpdate, ActionDelete, ActionAddMedia, ActionRemoveMedia} {
		d := Decide(42, report, action)
		assert.True(t, d.Allowed, "owner should be allowed to %s a pending report", action)
	}
}

func TestDecide_NonOwnerDenied(t *testing.T) {
	report := &models.Report{ID: 1, CreatedBy: 42, Status: models.ReportStatusPending}

	for _, action := range []ReportAction{ActionUpdate, ActionDelete, ActionAddMedia, ActionRemoveMedia} {
		d := Decide(7, report, action)
		assert.False(t, d.Allowed)
		assert.Equal(t, DenyNotOwner, d.Reason)
	}
}

func TestDecide_OwnerDeniedOncePendingLeft(t *testing.T) {
	for _, status := range []models.ReportStatus{
		models.ReportStatusUnderInvestigation,
		models.ReportStatusResolved,
		models.ReportStatusRejected,
	} {
		report := &models.Report{ID: 1, CreatedBy: 42, Status: status}
		d := Decide(42, report, ActionUpdate)
		assert.False(t, d.Allowed, "status %s", status)
		assert.Equal(t, DenyNotPending, d.Reason)
	}
}

func TestDecide_NonOwnerSeesNotOwnerEvenWhenNotPending(t *testing.T) {
	// Ownership check comes first so the reason never leaks lifecycle state
	// to a non-owner.
	report := &models.Report{ID: 1, CreatedBy: 42, Status: models.ReportStatusResolved}
	d := Decide(7, report, ActionDelete)
	assert.False(t, d.Allowed)
	assert.Equal(t, DenyNotOwner, d.Reason)
}

func TestDecide_ReadAlwaysAllowed(t *testing.T) {
	report := &models.Report{ID: 1, CreatedBy: 42, Status: models.ReportStatusRejected}
	assert.True(t, Decide(7, report, ActionRead).Allowed)
	assert.True(t, Decide(42, report, ActionRead).Allowed)
}

func TestDecide_SetStatusDelegatesRoleCheck(t *testing.T) {
	report := &models.Report{ID: 1, CreatedBy: 42, Status: models.ReportStatusPending}
	assert.True(t, Decide(7, report, ActionSetStatus).Allowed)
}
