package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Priority ranks how demanding a task is.
type Priority string

const (
	LowPriority    Priority = "low"
	MediumPriority Priority = "medium"
	HighPriority   Priority = "high"
)

// DefaultPriority is applied when a task is created without one.
const DefaultPriority = MediumPriority

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case LowPriority, MediumPriority, HighPriority:
		return true
	}
	return false
}

// ParsePriority accepts a priority name in any letter case.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown priority %q", s)
	}
	return p, nil
}

type Task struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Completed bool      `gorm:"not null;default:false" json:"completed"`
	Priority  Priority  `gorm:"type:varchar(16);not null;default:'medium'" json:"priority"`
	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

// BeforeCreate assigns the identifier in Go so the schema does not depend on
// database-side uuid generation.
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Priority == "" {
		t.Priority = DefaultPriority
	}
	return nil
}

// TaskInput carries the fields accepted when creating a task.
type TaskInput struct {
	Title     string     `json:"title"`
	Priority  Priority   `json:"priority,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// TaskUpdate carries a partial update. Nil fields are left untouched.
type TaskUpdate struct {
	Title    *string   `json:"title,omitempty"`
	Priority *Priority `json:"priority,omitempty"`
}

// IsEmpty reports whether the update would change nothing.
func (u TaskUpdate) IsEmpty() bool {
	return u.Title == nil && u.Priority == nil
}
