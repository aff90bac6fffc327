package models

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportStatus_Valid(t *testing.T) {
	valid := []ReportStatus{
		ReportStatusPending,
		ReportStatusUnderInvestigation,
		ReportStatusResolved,
		ReportStatusRejected,
	}
	for _, s := range valid {
		assert.True(t, s.Valid(), "expected %q to be valid", s)
	}

	assert.False(t, ReportStatus("").Valid())
	assert.False(t, ReportStatus("archived").Valid())
	assert.False(t, ReportStatus("Pending").Valid())
}

func TestReportStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		name string
		from ReportStatus
		to   ReportStatus
		want bool
	}{
		{"pending to under-investigation", ReportStatusPending, ReportStatusUnderInvestigation, true},
		{"pending to resolved", ReportStatusPending, ReportStatusResolved, true},
		{"pending to rejected", ReportStatusPending, ReportStatusRejected, true},
		{"pending to pending", ReportStatusPending, ReportStatusPending, false},
		{"resolved back to pending", ReportStatusResolved, ReportStatusPending, false},
		{"rejected to resolved", ReportStatusRejected, ReportStatusResolved, false},
		{"under-investigation to resolved", ReportStatusUnderInvestigation, ReportStatusResolved, false},
		{"pending to unknown", ReportStatusPending, ReportStatus("archived"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.from.CanTransitionTo(tc.to))
		})
	}
}

func TestReport_MarshalJSON(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r := Report{
		ID:          7,
		Type:        "infrastructure",
		Title:       "Flooded road",
		Description: "Bridge underpass flooded after rain",
		Status:      ReportStatusPending,
		CreatedBy:   3,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))

	assert.Nil(t, out["location"])
	assert.Equal(t, "pending", out["status"])
	// nil attachments render as an empty list, not null
	assert.Equal(t, []interface{}{}, out["attachments"])

	r.Location = sql.NullString{String: "4th Street", Valid: true}
	data, err = json.Marshal(r)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "4th Street", out["location"])
}

func TestUser_MarshalJSON_OmitsPasswordHash(t *testing.T) {
	u := User{
		ID:           1,
		Username:     "amara",
		PasswordHash: sql.NullString{String: "$2a$10$abc", Valid: true},
	}

	data, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "$2a$10$abc")
	assert.NotContains(t, string(data), "password")

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Nil(t, out["email"])
}

func TestAttachment_URL(t *testing.T) {
	a := Attachment{StoredName: "a1b2c3.png"}
	assert.Equal(t, "/v1/media/a1b2c3.png", a.URL())
}

func TestAttachment_MarshalJSON_IncludesURL(t *testing.T) {
	a := Attachment{
		ID:           5,
		ReportID:     7,
		StoredName:   "a1b2c3.png",
		OriginalName: "pothole.png",
		SizeBytes:    1234,
	}

	data, err := json.Marshal(a)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "/v1/media/a1b2c3.png", out["url"])
	assert.Equal(t, "a1b2c3.png", out["stored_name"])
	assert.Equal(t, "pothole.png", out["original_name"])
}

func TestReportPatch_Empty(t *testing.T) {
	assert.True(t, ReportPatch{}.Empty())

	title := "new title"
	assert.False(t, ReportPatch{Title: &title}.Empty())

	empty := ""
	assert.False(t, ReportPatch{Location: &empty}.Empty())
}
