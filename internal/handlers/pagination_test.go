package handlers

import (
	"net/http/httptest"
	"testing"

	"ireporter/internal/config"
	"ireporter/internal/models"
	contextutils "ireporter/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ginContextWithQuery(t *testing.T, rawQuery string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/v1/reports?"+rawQuery, nil)
	return c
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		wantPage     int
		wantPageSize int
		wantErr      bool
	}{
		{name: "defaults", query: "", wantPage: 1, wantPageSize: config.DefaultPageSize},
		{name: "explicit", query: "page=3&page_size=25", wantPage: 3, wantPageSize: 25},
		{name: "oversized page_size capped", query: "page_size=500", wantPage: 1, wantPageSize: config.MaxPageSize},
		{name: "zero page", query: "page=0", wantErr: true},
		{name: "negative page_size", query: "page_size=-5", wantErr: true},
		{name: "non numeric page", query: "page=abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, pageSize, err := ParsePagination(ginContextWithQuery(t, tt.query))
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, contextutils.ErrorCodeValidationFailed, contextutils.GetErrorCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantPageSize, pageSize)
		})
	}
}

func TestParseReportFilter(t *testing.T) {
	c := ginContextWithQuery(t, "status=resolved&type=infrastructure&search=%20flood%20")
	filter, err := ParseReportFilter(c)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusResolved, filter.Status)
	assert.Equal(t, "infrastructure", filter.Type)
	assert.Equal(t, "flood", filter.Search)
}

func TestParseReportFilter_Empty(t *testing.T) {
	filter, err := ParseReportFilter(ginContextWithQuery(t, ""))
	require.NoError(t, err)
	assert.Equal(t, models.ReportFilter{}, filter)
}

func TestParseReportFilter_UnknownStatus(t *testing.T) {
	_, err := ParseReportFilter(ginContextWithQuery(t, "status=archived"))
	require.Error(t, err)
	assert.Equal(t, contextutils.ErrorCodeValidationFailed, contextutils.GetErrorCode(err))
}
