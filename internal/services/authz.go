package services

import (
	"ireporter/internal/models"
)

// ReportAction is an operation a principal may attempt on a report
type ReportAction string

const (
	// ActionRead is any public fetch of a report
	ActionRead ReportAction = "read"
	// ActionUpdate is an owner edit of report fields
	ActionUpdate ReportAction = "update"
	// ActionDelete withdraws a report
	ActionDelete ReportAction = "delete"
	// ActionAddMedia attaches files to a report
	ActionAddMedia ReportAction = "add_media"
	// ActionRemoveMedia detaches files from a report
	ActionRemoveMedia ReportAction = "remove_media"
	// ActionSetStatus advances the moderation state machine
	ActionSetStatus ReportAction = "set_status"
)

// DenyReason says why an authorization decision was Deny
type DenyReason string

const (
	// DenyNotOwner means the principal does not own the report
	DenyNotOwner DenyReason = "not report owner"
	// DenyNotPending means the report has left the pending state
	DenyNotPending DenyReason = "report is not pending"
)

// Decision is the outcome of an authorization check
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

// Allow is the positive decision
var Allow = Decision{Allowed: true}

// Deny builds a negative decision with the given reason
func Deny(reason DenyReason) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Decide is the pure authorization rule for report operations. Ownership is
// checked before the pending gate so a non-owner always sees the same reason.
// The moderator role check for ActionSetStatus is the caller's responsibility;
// here it is treated the same as a read.
func Decide(principalID int, report *models.Report, action ReportAction) Decision {
	switch action {
	case ActionUpdate, ActionDelete, ActionAddMedia, ActionRemoveMedia:
		if principalID != report.CreatedBy {
			return Deny(DenyNotOwner)
		}
		if report.Status != models.ReportStatusPending {
			return Deny(DenyNotPending)
		}
		return Allow
	default:
		return Allow
	}
}
