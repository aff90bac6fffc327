// Package models defines data structures used throughout the reporting backend.
package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

// User represents a registered account in the system
type User struct {
	ID           int            `json:"id" yaml:"id"`
	Username     string         `json:"username" yaml:"username"`
	Email        sql.NullString `json:"email" yaml:"email"`
	PasswordHash sql.NullString `json:"-" yaml:"-"` // Omit from JSON responses
	IsModerator  bool           `json:"is_moderator" yaml:"is_moderator"`
	CreatedAt    time.Time      `json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" yaml:"updated_at"`
}

// MarshalJSON customizes JSON marshaling for User to handle sql.NullString properly
func (u User) MarshalJSON() (result0 []byte, err error) {
	return json.Marshal(&struct {
		ID          int       `json:"id"`
		Username    string    `json:"username"`
		Email       *string   `json:"email"`
		IsModerator bool      `json:"is_moderator"`
		CreatedAt   time.Time `json:"created_at"`
		UpdatedAt   time.Time `json:"updated_at"`
	}{
		ID:          u.ID,
		Username:    u.Username,
		Email:       nullStringToPointer(u.Email),
		IsModerator: u.IsModerator,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	})
}

func nullStringToPointer(ns sql.NullString) *string {
	if ns.Valid {
		return &ns.String
	}
	return nil
}

// ReportStatus represents the moderation state of a report
type ReportStatus string

const (
	// ReportStatusPending is the initial state; the only state in which the owner may edit
	ReportStatusPending ReportStatus = "pending"
	// ReportStatusUnderInvestigation marks a report picked up by a moderator
	ReportStatusUnderInvestigation ReportStatus = "under-investigation"
	// ReportStatusResolved marks a report closed as acted upon
	ReportStatusResolved ReportStatus = "resolved"
	// ReportStatusRejected marks a report closed without action
	ReportStatusRejected ReportStatus = "rejected"
)

// Valid reports whether s is one of the four enumerated statuses
func (s ReportStatus) Valid() bool {
	switch s {
	case ReportStatusPending, ReportStatusUnderInvestigation, ReportStatusResolved, ReportStatusRejected:
		return true
	}
	return false
}

// CanTransitionTo reports whether the state machine permits moving from s to next.
// Only pending has outgoing edges; every exit from pending is one-way.
func (s ReportStatus) CanTransitionTo(next ReportStatus) bool {
	if !next.Valid() {
		return false
	}
	return s == ReportStatusPending && next != ReportStatusPending
}

// Report represents a citizen-submitted incident record
type Report struct {
	ID          int            `json:"id" yaml:"id"`
	Type        string         `json:"type" yaml:"type"`
	Title       string         `json:"title" yaml:"title"`
	Description string         `json:"description" yaml:"description"`
	Location    sql.NullString `json:"location" yaml:"location"`
	Status      ReportStatus   `json:"status" yaml:"status"`
	CreatedBy   int            `json:"created_by" yaml:"created_by"`
	CreatedAt   time.Time      `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" yaml:"updated_at"`
	Attachments []Attachment   `json:"attachments" yaml:"attachments,omitempty"`
}

// MarshalJSON customizes JSON marshaling for Report so nullable columns render as null
func (r Report) MarshalJSON() (result0 []byte, err error) {
	attachments := r.Attachments
	if attachments == nil {
		attachments = []Attachment{}
	}
	return json.Marshal(&struct {
		ID          int          `json:"id"`
		Type        string       `json:"type"`
		Title       string       `json:"title"`
		Description string       `json:"description"`
		Location    *string      `json:"location"`
		Status      ReportStatus `json:"status"`
		CreatedBy   int          `json:"created_by"`
		CreatedAt   time.Time    `json:"created_at"`
		UpdatedAt   time.Time    `json:"updated_at"`
		Attachments []Attachment `json:"attachments"`
	}{
		ID:          r.ID,
		Type:        r.Type,
		Title:       r.Title,
		Description: r.Description,
		Location:    nullStringToPointer(r.Location),
		Status:      r.Status,
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		Attachments: attachments,
	})
}

// Attachment represents a media file associated with exactly one report
type Attachment struct {
	ID           int       `json:"id" yaml:"id"`
	ReportID     int       `json:"report_id" yaml:"report_id"`
	StoredName   string    `json:"stored_name" yaml:"stored_name"`
	OriginalName string    `json:"original_name" yaml:"original_name"`
	SizeBytes    int64     `json:"size_bytes" yaml:"size_bytes"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
}

// URL returns the public path at which the attachment bytes are served
func (a Attachment) URL() string {
	return "/v1/media/" + a.StoredName
}

// MarshalJSON includes the public media URL alongside the stored columns
func (a Attachment) MarshalJSON() (result0 []byte, err error) {
	return json.Marshal(&struct {
		ID           int       `json:"id"`
		ReportID     int       `json:"report_id"`
		StoredName   string    `json:"stored_name"`
		OriginalName string    `json:"original_name"`
		SizeBytes    int64     `json:"size_bytes"`
		URL          string    `json:"url"`
		CreatedAt    time.Time `json:"created_at"`
	}{
		ID:           a.ID,
		ReportID:     a.ReportID,
		StoredName:   a.StoredName,
		OriginalName: a.OriginalName,
		SizeBytes:    a.SizeBytes,
		URL:          a.URL(),
		CreatedAt:    a.CreatedAt,
	})
}

// CreateReportRequest carries the fields of a new report through the service layer
type CreateReportRequest struct {
	Type        string `json:"type" binding:"required,notblank"`
	Title       string `json:"title" binding:"required,notblank"`
	Description string `json:"description" binding:"required,notblank"`
	Location    string `json:"location"`
}

// ReportPatch describes a partial update to a report. Pointer fields
// distinguish "absent" (nil, leave unchanged) from an explicit value.
type ReportPatch struct {
	Type        *string `json:"type"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
}

// Empty reports whether the patch carries no field changes
func (p ReportPatch) Empty() bool {
	return p.Type == nil && p.Title == nil && p.Description == nil && p.Location == nil
}

// ReportFilter narrows a report listing. Zero values mean "no filter".
type ReportFilter struct {
	Status ReportStatus `json:"status"`
	Type   string       `json:"type"`
	Search string       `json:"search"`
}

// ReportPage is one page of a filtered report listing
type ReportPage struct {
	Items      []Report `json:"items"`
	Page       int      `json:"page"`
	TotalPages int      `json:"total_pages"`
	TotalItems int      `json:"total_items"`
}

// UploadFile carries an inbound media file through the service layer
type UploadFile struct {
	OriginalName string
	Data         []byte
}
