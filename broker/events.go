package broker

type EventType string

const (
	// Event types follow the <resource>.<action> format
	TaskCreated EventType = "task.created"
	TaskUpdated EventType = "task.updated"
	TaskToggled EventType = "task.toggled"
	TaskDeleted EventType = "task.deleted"
)
