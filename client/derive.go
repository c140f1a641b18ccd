package client

import (
	"fmt"
	"strings"
	"time"

	"tasktracker/models"
)

func TotalCount(tasks []models.Task) int {
	return len(tasks)
}

func CompletedCount(tasks []models.Task) int {
	n := 0
	for _, t := range tasks {
		if t.Completed {
			n++
		}
	}
	return n
}

func ActiveCount(tasks []models.Task) int {
	return TotalCount(tasks) - CompletedCount(tasks)
}

// ProgressPercentage is the completed share of tasks in [0, 100]; 0 for an
// empty list.
func ProgressPercentage(tasks []models.Task) float64 {
	total := TotalCount(tasks)
	if total == 0 {
		return 0
	}
	return float64(CompletedCount(tasks)) / float64(total) * 100
}

// AllCompleted reports whether tasks is non-empty and every task is done.
func AllCompleted(tasks []models.Task) bool {
	return len(tasks) > 0 && CompletedCount(tasks) == len(tasks)
}

// FilterTasks keeps tasks matching filter whose title contains query,
// ignoring case. Order is preserved.
func FilterTasks(tasks []models.Task, filter Filter, query string) []models.Task {
	query = strings.ToLower(query)
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if !filter.Matches(t) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(t.Title), query) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// RelativeAge renders the time elapsed between ts and now as "just now",
// "Nm ago", "Nh ago" or "Nd ago", flooring at each boundary.
func RelativeAge(ts, now time.Time) string {
	if ts.IsZero() {
		return ""
	}

	elapsed := now.Sub(ts)
	if elapsed < 0 {
		elapsed = 0
	}

	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		return fmt.Sprintf("%dm ago", int(elapsed/time.Minute))
	case elapsed < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(elapsed/time.Hour))
	default:
		return fmt.Sprintf("%dd ago", int(elapsed/(24*time.Hour)))
	}
}
