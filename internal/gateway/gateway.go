// Package gateway is the only boundary between the timetable model and the
// system of record. Two implementations exist: ERPClient talks to the ERP
// over HTTP, StoreGateway keeps timetables in PostgreSQL.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/5sursyncIT/edusync-sub001/internal/timetable"
)

// ── Gateway errors ──

var (
	ErrNotFound  = errors.New("timetable not found")
	ErrTransport = errors.New("timetable backend unreachable")
)

// ValidationFailedError carries the backend's reasons for refusing a write.
type ValidationFailedError struct {
	Errors []string
}

func (e *ValidationFailedError) Error() string {
	if len(e.Errors) == 0 {
		return "timetable rejected by backend"
	}
	return "timetable rejected by backend: " + strings.Join(e.Errors, "; ")
}

// IsValidationFailed reports whether err carries backend validation errors.
func IsValidationFailed(err error) bool {
	var v *ValidationFailedError
	return errors.As(err, &v)
}

// ── Queries ──

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListQuery selects one page of timetables. Filters are passed through to
// the backend as extra query parameters.
type ListQuery struct {
	Page     int
	PageSize int
	Search   string
	Filters  map[string]string
}

// Normalize clamps paging to sane bounds.
func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	q.Search = strings.TrimSpace(q.Search)
	return q
}

// Pagination mirrors the backend's paging block.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// NewPagination computes the page count, never less than one.
func NewPagination(page, limit int, total int64) Pagination {
	pages := 1
	if limit > 0 && total > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// Page is one page of timetables.
type Page struct {
	Timetables []*timetable.Timetable `json:"timetables"`
	Pagination Pagination             `json:"pagination"`
}

// Gateway reads and writes timetables. Writes are whole-resource: the slot
// list sent replaces the stored one.
type Gateway interface {
	List(ctx context.Context, q ListQuery) (*Page, error)
	Get(ctx context.Context, id timetable.TimetableID) (*timetable.Timetable, error)
	Create(ctx context.Context, t *timetable.Timetable) (*timetable.Timetable, error)
	Update(ctx context.Context, id timetable.TimetableID, t *timetable.Timetable) (*timetable.Timetable, error)
	Delete(ctx context.Context, id timetable.TimetableID) error
}

// refuseSynthetic pre-empts writes on derived timetables before any I/O.
func refuseSynthetic(op string, id timetable.TimetableID) error {
	if id.IsSynthetic() {
		return fmt.Errorf("%s %s: %w", op, id, timetable.ErrSyntheticReadOnly)
	}
	return nil
}

// persistedKey extracts the integer key of a persisted id.
func persistedKey(op string, id timetable.TimetableID) (int64, error) {
	if err := refuseSynthetic(op, id); err != nil {
		return 0, err
	}
	n, ok := id.Persisted()
	if !ok {
		return 0, fmt.Errorf("%s: %w", op, timetable.ErrInvalidID)
	}
	return n, nil
}
