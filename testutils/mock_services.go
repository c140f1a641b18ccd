package testutils

import (
	"tasktracker/database"
	"tasktracker/models"

	"github.com/stretchr/testify/mock"
)

// MockTaskService mocks the TaskServiceInterface for testing
type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) CreateTask(db *database.Database, input models.TaskInput) (models.Task, error) {
	args := m.Called(db, input)
	return args.Get(0).(models.Task), args.Error(1)
}

func (m *MockTaskService) ListTasks(db *database.Database) ([]models.Task, error) {
	args := m.Called(db)
	tasks, _ := args.Get(0).([]models.Task)
	return tasks, args.Error(1)
}

func (m *MockTaskService) GetTaskById(db *database.Database, id string) (models.Task, error) {
	args := m.Called(db, id)
	return args.Get(0).(models.Task), args.Error(1)
}

func (m *MockTaskService) UpdateTask(db *database.Database, id string, update models.TaskUpdate) (models.Task, error) {
	args := m.Called(db, id, update)
	return args.Get(0).(models.Task), args.Error(1)
}

func (m *MockTaskService) ToggleTask(db *database.Database, id string) (models.Task, error) {
	args := m.Called(db, id)
	return args.Get(0).(models.Task), args.Error(1)
}

func (m *MockTaskService) DeleteTask(db *database.Database, id string) error {
	args := m.Called(db, id)
	return args.Error(0)
}
