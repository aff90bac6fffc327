package services

import (
	"fmt"
	"strings"

	"ireporter/internal/models"
	contextutils "ireporter/internal/utils"
)

const reportSelectFields = `id, type, title, description, location, status, created_by, created_at, updated_at`

// listQuery is a fully-built report listing query with its count twin
type listQuery struct {
	SelectSQL string
	CountSQL  string
	Args      []interface{}
}

// buildListQuery turns a filter plus page window into SQL. Placeholders are
// numbered so the same args slice serves both the page query and the count
// query (the count query ignores the trailing limit/offset args).
func buildListQuery(filter models.ReportFilter, page, pageSize int) (result0 listQuery, err error) {
	if pageSize <= 0 {
		return listQuery{}, contextutils.NewValidationError("pageSize", "must be a positive integer")
	}
	if page <= 0 {
		return listQuery{}, contextutils.NewValidationError("page", "must be a positive integer")
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return listQuery{}, contextutils.NewValidationError("status", fmt.Sprintf("unknown status %q", filter.Status))
	}

	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(`(title ILIKE $%d ESCAPE '\' OR description ILIKE $%d ESCAPE '\')`, n, n))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	countSQL := "SELECT COUNT(*) FROM reports" + where

	// created_at DESC with id DESC tiebreak keeps pages stable under equal timestamps
	args = append(args, pageSize, (page-1)*pageSize)
	selectSQL := fmt.Sprintf(
		"SELECT %s FROM reports%s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d",
		reportSelectFields, where, len(args)-1, len(args),
	)

	return listQuery{SelectSQL: selectSQL, CountSQL: countSQL, Args: args}, nil
}

// escapeLike escapes LIKE metacharacters so user search text matches literally
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// totalPages computes ceil(totalItems/pageSize) with a floor of 1
func totalPages(totalItems, pageSize int) int {
	if totalItems <= 0 {
		return 1
	}
	pages := (totalItems + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}
