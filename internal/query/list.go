package query

import "net/url"

// TaskList is a fully validated GET /tasks request.
type TaskList struct {
	Filter TaskFilter
	Sort   []SortField
	Page   Page

	// sorter parsed Sort; OrderBy renders with the same column table.
	sorter Sorter
}

// ParseTaskList validates every parameter before anything is read from the
// store.
func ParseTaskList(v url.Values, sorter Sorter) (TaskList, error) {
	f, err := ParseTaskFilter(v)
	if err != nil {
		return TaskList{}, err
	}
	return TaskList{
		Filter: f,
		Sort:   sorter.Parse(v.Get(ParamSort)),
		Page:   ParsePage(v),
		sorter: sorter,
	}, nil
}

type ProjectList struct {
	Filter ProjectFilter
	Sort   []SortField
	Page   Page
}

func ParseProjectList(v url.Values) (ProjectList, error) {
	f, err := ParseProjectFilter(v)
	if err != nil {
		return ProjectList{}, err
	}
	return ProjectList{
		Filter: f,
		Sort:   ProjectSorter.Parse(v.Get(ParamSort)),
		Page:   ParsePage(v),
	}, nil
}

// OrderBy renders the task sort, including fallback and tie-breaker. A
// TaskList built by hand orders by the default task sorter.
func (l TaskList) OrderBy() []string {
	s := l.sorter
	if s.Columns == nil {
		s = NewTaskSorter("")
	}
	return s.OrderBy(l.Sort)
}

func (l ProjectList) OrderBy() []string {
	return ProjectSorter.OrderBy(l.Sort)
}
