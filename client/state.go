package client

import (
	"fmt"

	"tasktracker/models"
)

type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

func ParseFilter(s string) (Filter, error) {
	switch f := Filter(s); f {
	case FilterAll, FilterActive, FilterCompleted:
		return f, nil
	case "":
		return FilterAll, nil
	}
	return "", fmt.Errorf("unknown filter %q", s)
}

// Matches reports whether a task with the given completion passes the filter.
func (f Filter) Matches(t models.Task) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// Next cycles all -> active -> completed -> all.
func (f Filter) Next() Filter {
	switch f {
	case FilterAll:
		return FilterActive
	case FilterActive:
		return FilterCompleted
	default:
		return FilterAll
	}
}

// EditBuffer holds the single task being edited and its draft title.
type EditBuffer struct {
	TaskID string
	Draft  string
}

type Toast struct {
	Message string
	IsError bool
}

// State is everything the controller holds between intents.
type State struct {
	Tasks       []models.Task
	Filter      Filter
	Search      string
	Edit        *EditBuffer
	Undo        *models.Task
	Loading     bool
	Toast       *Toast
	Celebrating bool
}

func (s State) clone() State {
	out := s
	out.Tasks = append([]models.Task(nil), s.Tasks...)
	if s.Edit != nil {
		edit := *s.Edit
		out.Edit = &edit
	}
	if s.Undo != nil {
		undo := *s.Undo
		out.Undo = &undo
	}
	if s.Toast != nil {
		toast := *s.Toast
		out.Toast = &toast
	}
	return out
}

// View is a copy of State plus its derived projections.
type View struct {
	State

	Visible   []models.Task
	Total     int
	Completed int
	Active    int
	Progress  float64
}

func newView(s State) View {
	s = s.clone()
	return View{
		State:     s,
		Visible:   FilterTasks(s.Tasks, s.Filter, s.Search),
		Total:     TotalCount(s.Tasks),
		Completed: CompletedCount(s.Tasks),
		Active:    ActiveCount(s.Tasks),
		Progress:  ProgressPercentage(s.Tasks),
	}
}
