package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriority(t *testing.T) {
	testCases := []struct {
		input   string
		want    Priority
		wantErr bool
	}{
		{input: "low", want: LowPriority},
		{input: "Medium", want: MediumPriority},
		{input: " HIGH ", want: HighPriority},
		{input: "urgent", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParsePriority(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTaskBeforeCreateAssignsDefaults(t *testing.T) {
	task := Task{Title: "Water plants"}
	require.NoError(t, task.BeforeCreate(nil))

	assert.NotEqual(t, uuid.Nil, task.ID)
	assert.Equal(t, MediumPriority, task.Priority)

	id := task.ID
	require.NoError(t, task.BeforeCreate(nil))
	assert.Equal(t, id, task.ID, "existing id must be kept")
}

func TestTaskJSONUsesCamelCaseTimestamps(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	task := Task{
		ID:        uuid.MustParse("123e4567-e89b-12d3-a456-426614174000"),
		Title:     "Write report",
		Priority:  HighPriority,
		CreatedAt: created,
		UpdatedAt: created,
	}

	data, err := json.Marshal(task)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "Write report", raw["title"])
	assert.Equal(t, "high", raw["priority"])
	assert.Equal(t, false, raw["completed"])
	assert.Contains(t, raw, "createdAt")
	assert.Contains(t, raw, "updatedAt")
}

func TestTaskUpdateIsEmpty(t *testing.T) {
	assert.True(t, TaskUpdate{}.IsEmpty())

	title := "New title"
	assert.False(t, TaskUpdate{Title: &title}.IsEmpty())
}
