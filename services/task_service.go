package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"tasktracker/broker"
	"tasktracker/database"
	"tasktracker/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskServiceInterface interface {
	CreateTask(db *database.Database, input models.TaskInput) (models.Task, error)
	ListTasks(db *database.Database) ([]models.Task, error)
	GetTaskById(db *database.Database, id string) (models.Task, error)
	UpdateTask(db *database.Database, id string, update models.TaskUpdate) (models.Task, error)
	ToggleTask(db *database.Database, id string) (models.Task, error)
	DeleteTask(db *database.Database, id string) error
}

type TaskService struct{}

func (s *TaskService) CreateTask(db *database.Database, input models.TaskInput) (models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return models.Task{}, ErrTitleRequired
	}

	priority := input.Priority
	if priority == "" {
		priority = models.DefaultPriority
	}
	if !priority.Valid() {
		return models.Task{}, ErrInvalidPriority
	}

	now := time.Now().UTC()
	createdAt := now
	if input.CreatedAt != nil && !input.CreatedAt.IsZero() {
		createdAt = input.CreatedAt.UTC()
	}

	task := models.Task{
		ID:        uuid.New(),
		Title:     title,
		Completed: false,
		Priority:  priority,
		CreatedAt: createdAt,
		UpdatedAt: now,
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&task).Error; err != nil {
			return err
		}
		return recordTaskEvent(tx, broker.TaskCreated, "create", task)
	})
	if err != nil {
		return models.Task{}, storeError(err)
	}

	return task, nil
}

func (s *TaskService) ListTasks(db *database.Database) ([]models.Task, error) {
	tasks := make([]models.Task, 0)
	if err := db.DB.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, storeError(err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

func (s *TaskService) GetTaskById(db *database.Database, id string) (models.Task, error) {
	taskID, err := uuid.Parse(id)
	if err != nil {
		return models.Task{}, ErrTaskNotFound
	}

	var task models.Task
	if err := db.DB.First(&task, "id = ?", taskID).Error; err != nil {
		return models.Task{}, storeError(err)
	}
	return task, nil
}

func (s *TaskService) UpdateTask(db *database.Database, id string, update models.TaskUpdate) (models.Task, error) {
	changes := make(map[string]interface{})

	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return models.Task{}, ErrTitleRequired
		}
		changes["title"] = title
	}
	if update.Priority != nil {
		if !update.Priority.Valid() {
			return models.Task{}, ErrInvalidPriority
		}
		changes["priority"] = string(*update.Priority)
	}

	taskID, err := uuid.Parse(id)
	if err != nil {
		return models.Task{}, ErrTaskNotFound
	}

	var task models.Task
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, "id = ?", taskID).Error; err != nil {
			return err
		}
		if len(changes) == 0 {
			return nil
		}

		now := time.Now().UTC()
		changes["updated_at"] = now
		if err := tx.Model(&task).Updates(changes).Error; err != nil {
			return err
		}

		if title, ok := changes["title"].(string); ok {
			task.Title = title
		}
		if update.Priority != nil {
			task.Priority = *update.Priority
		}
		task.UpdatedAt = now

		return recordTaskEvent(tx, broker.TaskUpdated, "update", task)
	})
	if err != nil {
		return models.Task{}, storeError(err)
	}

	return task, nil
}

func (s *TaskService) ToggleTask(db *database.Database, id string) (models.Task, error) {
	taskID, err := uuid.Parse(id)
	if err != nil {
		return models.Task{}, ErrTaskNotFound
	}

	var task models.Task
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, "id = ?", taskID).Error; err != nil {
			return err
		}

		task.Completed = !task.Completed
		task.UpdatedAt = time.Now().UTC()
		if err := tx.Model(&task).Updates(map[string]interface{}{
			"completed":  task.Completed,
			"updated_at": task.UpdatedAt,
		}).Error; err != nil {
			return err
		}

		return recordTaskEvent(tx, broker.TaskToggled, "toggle", task)
	})
	if err != nil {
		return models.Task{}, storeError(err)
	}

	return task, nil
}

// DeleteTask removes the task for good. Deleting an unknown id succeeds.
func (s *TaskService) DeleteTask(db *database.Database, id string) error {
	taskID, err := uuid.Parse(id)
	if err != nil {
		return nil
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, "id = ?", taskID).Error; err != nil {
			return err
		}

		if err := tx.Delete(&task).Error; err != nil {
			return err
		}

		return recordTaskEvent(tx, broker.TaskDeleted, "delete", task)
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return storeError(err)
	}
	return nil
}

func recordTaskEvent(tx *gorm.DB, eventType broker.EventType, operation string, task models.Task) error {
	event, err := models.NewEvent(
		string(eventType),
		"task",
		operation,
		map[string]interface{}{
			"task_id":   task.ID.String(),
			"title":     task.Title,
			"completed": task.Completed,
			"priority":  string(task.Priority),
		},
	)
	if err != nil {
		return err
	}
	return tx.Create(event).Error
}

func storeError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrTaskNotFound
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

var TaskServiceInstance TaskServiceInterface = &TaskService{}
