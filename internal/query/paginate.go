package query

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Page is a 1-based page request. Build it with ParsePage or NewPage so that
// Number >= 1 and 1 <= Size <= MaxPerPage.
type Page struct {
	Number int
	Size   int
}

// NewPage coerces number to at least 1 and clamps size into [1, MaxPerPage].
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = 1
	}
	if size > MaxPerPage {
		size = MaxPerPage
	}
	return Page{Number: number, Size: size}
}

// ParsePage reads page and per_page. Absent or unparsable values fall back
// to 1 and DefaultPerPage.
func ParsePage(v url.Values) Page {
	return NewPage(intParam(v, ParamPage, 1), intParam(v, ParamPerPage, DefaultPerPage))
}

func intParam(v url.Values, name string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(v.Get(name)))
	if err != nil {
		return def
	}
	return n
}

func (p Page) Offset() uint64 {
	skipped := uint64(p.Number - 1)
	if skipped > math.MaxInt64/uint64(p.Size) {
		return math.MaxInt64
	}
	return skipped * uint64(p.Size)
}

// Meta describes a page of results.
type Meta struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
}

// NewMeta reports at least one page, even for an empty collection.
func NewMeta(p Page, total int64) Meta {
	pages := int((total + int64(p.Size) - 1) / int64(p.Size))
	if pages < 1 {
		pages = 1
	}
	return Meta{Page: p.Number, PerPage: p.Size, Total: total, Pages: pages}
}

// Querier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Paginate runs count for the total and list, limited to page, for the
// items. count must select a single integer and carry no ORDER BY; list must
// already be ordered.
func Paginate[T any](ctx context.Context, db Querier, list, count sq.SelectBuilder, page Page, scan pgx.RowToFunc[T]) ([]T, Meta, error) {
	countSQL, countArgs, err := count.ToSql()
	if err != nil {
		return nil, Meta{}, fmt.Errorf("build count: %w", err)
	}
	var total int64
	if err := db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, Meta{}, fmt.Errorf("count: %w", err)
	}
	meta := NewMeta(page, total)

	items := []T{}
	if page.Offset() >= uint64(total) {
		return items, meta, nil
	}

	listSQL, listArgs, err := list.Limit(uint64(page.Size)).Offset(page.Offset()).ToSql()
	if err != nil {
		return nil, Meta{}, fmt.Errorf("build list: %w", err)
	}
	rows, err := db.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("list: %w", err)
	}
	collected, err := pgx.CollectRows(rows, scan)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("scan: %w", err)
	}
	if collected != nil {
		items = collected
	}
	return items, meta, nil
}
