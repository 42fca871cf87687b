package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage  = 1
	DefaultLimit = 50
	MaxLimit     = 100
)

// Query holds parsed pagination parameters.
type Query struct {
	Page  int
	Limit int
}

// Meta is the pagination metadata returned with list responses.
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// FromContext extracts and validates page/limit params from the request.
func FromContext(c *gin.Context) Query {
	page := parseIntOr(c.DefaultQuery("page", "1"), DefaultPage)
	limit := parseIntOr(c.DefaultQuery("limit", "50"), DefaultLimit)

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Query{Page: page, Limit: limit}
}

// Offset returns the row offset for the current page.
func (q Query) Offset() int { return (q.Page - 1) * q.Limit }

// MetaFor builds the response metadata for a total row count.
func (q Query) MetaFor(total int64) Meta {
	totalPages := int((total + int64(q.Limit) - 1) / int64(q.Limit))
	return Meta{
		Page:       q.Page,
		Limit:      q.Limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

func parseIntOr(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
