package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSorter_Parse(t *testing.T) {
	s := NewTaskSorter("")
	tests := []struct {
		name string
		expr string
		want []SortField
	}{
		{"empty uses default", "", []SortField{{"created_at", Desc}}},
		{"blank uses default", "   ", []SortField{{"created_at", Desc}}},
		{"single ascending", "due_date", []SortField{{"due_date", Asc}}},
		{"mixed directions keep order", "due_date,-priority", []SortField{{"due_date", Asc}, {"priority", Desc}}},
		{"whitespace and empty tokens", " title , , -id ", []SortField{{"title", Asc}, {"id", Desc}}},
		{"unknown fields dropped", "bogus,-title,password_hash", []SortField{{"title", Desc}}},
		{"repeated field keeps first", "status,-status", []SortField{{"status", Asc}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Parse(tt.expr))
		})
	}
}

func TestSorter_ParseOnlyUnknownYieldsNothing(t *testing.T) {
	assert.Empty(t, NewTaskSorter("").Parse("nope,-nada"))
}

func TestNewTaskSorter_ConfiguredDefault(t *testing.T) {
	s := NewTaskSorter("priority,-due_date")
	assert.Equal(t, []SortField{{"priority", Asc}, {"due_date", Desc}}, s.Parse(""))
}

func TestSorter_OrderBy(t *testing.T) {
	s := NewTaskSorter("")

	t.Run("fallback and tie-breaker", func(t *testing.T) {
		assert.Equal(t, []string{"t.created_at DESC", "t.id DESC"}, s.OrderBy(nil))
	})

	t.Run("due date nulls last in both directions", func(t *testing.T) {
		assert.Equal(t, []string{"t.due_date ASC NULLS LAST", "t.id DESC"},
			s.OrderBy([]SortField{{"due_date", Asc}}))
		assert.Equal(t, []string{"t.due_date DESC NULLS LAST", "t.id DESC"},
			s.OrderBy([]SortField{{"due_date", Desc}}))
	})

	t.Run("enum fields order by rank", func(t *testing.T) {
		got := s.OrderBy([]SortField{{"priority", Desc}, {"status", Asc}})
		require.Len(t, got, 3)
		assert.Equal(t, "CASE t.priority WHEN 'low' THEN 0 WHEN 'normal' THEN 1 WHEN 'high' THEN 2 END DESC", got[0])
		assert.Equal(t, "CASE t.status WHEN 'todo' THEN 0 WHEN 'in_progress' THEN 1 WHEN 'done' THEN 2 END ASC", got[1])
		assert.Equal(t, "t.id DESC", got[2])
	})

	t.Run("fields outside the table have no effect", func(t *testing.T) {
		assert.Equal(t, []string{"t.title ASC", "t.id DESC"},
			s.OrderBy([]SortField{{"title", Asc}, {"owner_id", Desc}}))
	})
}

func TestTaskList_OrderByInSQL(t *testing.T) {
	l, err := ParseTaskList(url.Values{"sort": {"due_date,-title"}}, NewTaskSorter(""))
	require.NoError(t, err)

	sql, _, err := PSQL.Select("t.id").From("tasks t").OrderBy(l.OrderBy()...).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT t.id FROM tasks t ORDER BY t.due_date ASC NULLS LAST, t.title DESC, t.id DESC", sql)
}

func TestTaskList_OrderByUsesParsingSorter(t *testing.T) {
	s := Sorter{
		Columns:    map[string]Column{"rank": {Expr: "t.rank"}},
		Fallback:   "rank",
		TieBreaker: "t.id",
	}
	l, err := ParseTaskList(url.Values{"sort": {"-rank,title"}}, s)
	require.NoError(t, err)
	assert.Equal(t, []string{"t.rank DESC", "t.id DESC"}, l.OrderBy())

	hand := TaskList{Sort: []SortField{{Field: "title", Dir: Asc}}}
	assert.Equal(t, []string{"t.title ASC", "t.id DESC"}, hand.OrderBy())
}

func TestProjectList_OrderBy(t *testing.T) {
	l, err := ParseProjectList(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, []string{"p.created_at DESC", "p.id DESC"}, l.OrderBy())

	l, err = ParseProjectList(url.Values{"sort": {"title,due_date"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"p.title ASC", "p.id DESC"}, l.OrderBy())
}
