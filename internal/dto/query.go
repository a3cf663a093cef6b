package dto

import (
	"math"
	"strconv"
	"strings"

	"github.com/prohmpiriya/postboard-api/internal/domain"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListQuery holds the raw list query parameters shared by list endpoints
type ListQuery struct {
	Page   string `form:"page"`
	Limit  string `form:"limit"`
	Search string `form:"search"`
	Sort   string `form:"sort"`
	Filter string `form:"filter"`
}

// PageParams returns page and limit, applying defaults and the limit cap.
// Pages whose offset would overflow are rejected.
func (q *ListQuery) PageParams() (page, limit int, err error) {
	page, err = parsePositive("page", q.Page, DefaultPage)
	if err != nil {
		return 0, 0, err
	}
	limit, err = parsePositive("limit", q.Limit, DefaultLimit)
	if err != nil {
		return 0, 0, err
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	// (page-1)*limit must fit in an int
	if page > math.MaxInt/limit {
		return 0, 0, domain.NewValidationError("page", "page is out of range")
	}
	return page, limit, nil
}

// SearchTerm returns the trimmed search text
func (q *ListQuery) SearchTerm() string {
	return strings.TrimSpace(q.Search)
}

func parsePositive(field, raw string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, domain.NewValidationError(field, field+" must be a positive integer")
	}
	return n, nil
}
