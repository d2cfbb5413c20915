package query

import (
	"fmt"
	"strings"

	"taskhub/internal/domain"
)

type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}

// SortField is one key of a sort expression.
type SortField struct {
	Field string
	Dir   Direction
}

// Column is the SQL expression a sortable field orders by.
type Column struct {
	Expr string
	// NullsLast keeps NULLs at the end in both directions.
	NullsLast bool
}

// Sorter is the closed table of sortable fields for one resource. The same
// table drives parsing (which tokens are accepted) and ordering (what SQL a
// field becomes).
type Sorter struct {
	Columns map[string]Column
	// Default is the expression used when a request carries none.
	Default string
	// Fallback is ordered descending when nothing usable was parsed.
	Fallback string
	// TieBreaker is appended descending to every ordering.
	TieBreaker string
}

// Parse reads a comma-separated expression such as "due_date,-priority".
// A leading "-" means descending. Unknown and repeated fields are dropped.
func (s Sorter) Parse(expr string) []SortField {
	if strings.TrimSpace(expr) == "" {
		expr = s.Default
	}
	var out []SortField
	seen := make(map[string]bool)
	for _, tok := range strings.Split(expr, ",") {
		tok = strings.TrimSpace(tok)
		dir := Asc
		if strings.HasPrefix(tok, "-") {
			dir = Desc
			tok = strings.TrimSpace(tok[1:])
		}
		if _, ok := s.Columns[tok]; !ok || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, SortField{Field: tok, Dir: dir})
	}
	return out
}

// OrderBy renders fields as ORDER BY terms, falling back to Fallback DESC
// when fields is empty and always ending with the tie-breaker.
func (s Sorter) OrderBy(fields []SortField) []string {
	if len(fields) == 0 {
		fields = []SortField{{Field: s.Fallback, Dir: Desc}}
	}
	out := make([]string, 0, len(fields)+1)
	for _, f := range fields {
		col, ok := s.Columns[f.Field]
		if !ok {
			continue
		}
		term := col.Expr + " " + f.Dir.String()
		if col.NullsLast {
			term += " NULLS LAST"
		}
		out = append(out, term)
	}
	return append(out, s.TieBreaker+" DESC")
}

// DefaultTaskSort is used when TASK_DEFAULT_SORT is not configured.
const DefaultTaskSort = "-created_at"

var taskColumns = map[string]Column{
	"id":         {Expr: "t.id"},
	"title":      {Expr: "t.title"},
	"status":     {Expr: rankExpr("t.status", domain.Statuses)},
	"priority":   {Expr: rankExpr("t.priority", domain.Priorities)},
	"due_date":   {Expr: "t.due_date", NullsLast: true},
	"created_at": {Expr: "t.created_at"},
	"project_id": {Expr: "t.project_id"},
}

// NewTaskSorter returns the task sorter; an empty defaultExpr means
// DefaultTaskSort.
func NewTaskSorter(defaultExpr string) Sorter {
	if strings.TrimSpace(defaultExpr) == "" {
		defaultExpr = DefaultTaskSort
	}
	return Sorter{
		Columns:    taskColumns,
		Default:    defaultExpr,
		Fallback:   "created_at",
		TieBreaker: "t.id",
	}
}

var ProjectSorter = Sorter{
	Columns: map[string]Column{
		"id":         {Expr: "p.id"},
		"title":      {Expr: "p.title"},
		"created_at": {Expr: "p.created_at"},
	},
	Default:    "-created_at",
	Fallback:   "created_at",
	TieBreaker: "p.id",
}

// rankExpr orders an enum column by its declared order instead of
// alphabetically.
func rankExpr[T ~string](col string, values []T) string {
	var b strings.Builder
	b.WriteString("CASE ")
	b.WriteString(col)
	for i, v := range values {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", v, i)
	}
	b.WriteString(" END")
	return b.String()
}
