package testutils

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"tasktracker/models"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

// MockEventRows creates mock SQL rows for events testing
func MockEventRows(events []models.Event) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "event", "version", "entity", "operation",
		"timestamp", "data", "status", "dispatched", "dispatched_at",
	})

	for _, event := range events {
		if event.ID == uuid.Nil {
			event.ID = uuid.New()
		}
		if event.Timestamp.IsZero() {
			event.Timestamp = time.Now()
		}
		if event.Data == nil {
			event.Data = json.RawMessage(`{}`)
		}
		if event.Status == "" {
			event.Status = models.EventStatusPending
		}

		var dispatchedAt driver.Value
		if event.DispatchedAt != nil {
			dispatchedAt = *event.DispatchedAt
		}

		rows.AddRow(
			event.ID.String(),
			event.Event,
			event.Version,
			event.Entity,
			event.Operation,
			event.Timestamp,
			[]byte(event.Data),
			event.Status,
			event.Dispatched,
			dispatchedAt,
		)
	}

	return rows
}

// MockTaskRows creates mock SQL rows for tasks testing
func MockTaskRows(tasks []models.Task) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "title", "completed", "priority", "created_at", "updated_at",
	})

	for _, task := range tasks {
		if task.ID == uuid.Nil {
			task.ID = uuid.New()
		}
		if task.Priority == "" {
			task.Priority = models.DefaultPriority
		}
		if task.CreatedAt.IsZero() {
			task.CreatedAt = time.Now()
		}
		if task.UpdatedAt.IsZero() {
			task.UpdatedAt = task.CreatedAt
		}

		rows.AddRow(
			task.ID.String(),
			task.Title,
			task.Completed,
			string(task.Priority),
			task.CreatedAt,
			task.UpdatedAt,
		)
	}

	return rows
}

func NewResult(lastInsertID, rowsAffected int64) driver.Result {
	return sqlmock.NewResult(lastInsertID, rowsAffected)
}
