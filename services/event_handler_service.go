package services

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"tasktracker/broker"
	"tasktracker/database"
	"tasktracker/metrics"
	"tasktracker/models"
)

const eventBatchSize = 100

type EventHandlerServiceInterface interface {
	Start()
	Stop()
	ProcessPendingEvents() int
}

// EventHandlerService publishes undispatched outbox events to the broker.
type EventHandlerService struct {
	db       *database.Database
	producer broker.Producer
	metrics  *metrics.Metrics
	interval time.Duration

	mu        sync.Mutex
	isRunning bool
	stopChan  chan struct{}
	doneChan  chan struct{}
}

func NewEventHandlerService(db *database.Database, producer broker.Producer, interval time.Duration, m *metrics.Metrics) *EventHandlerService {
	if interval <= 0 {
		interval = time.Second
	}
	return &EventHandlerService{
		db:       db,
		producer: producer,
		metrics:  m,
		interval: interval,
	}
}

func (s *EventHandlerService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.doneChan = make(chan struct{})
	go s.run(s.stopChan, s.doneChan)
}

// Stop halts the polling loop and waits for the current pass to finish.
func (s *EventHandlerService) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	close(s.stopChan)
	done := s.doneChan
	s.mu.Unlock()

	<-done
}

func (s *EventHandlerService) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.ProcessPendingEvents()
		}
	}
}

// ProcessPendingEvents dispatches one batch and returns how many were published.
func (s *EventHandlerService) ProcessPendingEvents() int {
	var events []models.Event
	if err := s.db.DB.
		Where("dispatched = ?", false).
		Order("timestamp ASC").
		Limit(eventBatchSize).
		Find(&events).Error; err != nil {
		log.Printf("Error fetching events: %v", err)
		return 0
	}

	if len(events) > 0 {
		log.Printf("Found %d pending events to process", len(events))
	}

	dispatched := 0
	for _, event := range events {
		if err := s.dispatchEvent(event); err != nil {
			log.Printf("Error dispatching event %s: %v", event.ID, err)
			s.metrics.EventDispatchFailed()
			continue
		}
		dispatched++
		s.metrics.EventDispatched(event.Event)
	}
	return dispatched
}

func (s *EventHandlerService) dispatchEvent(event models.Event) error {
	data, err := EventMessage(event)
	if err != nil {
		return err
	}

	if err := s.producer.Publish(broker.TaskEventsSubject, data); err != nil {
		return err
	}

	now := time.Now().UTC()
	return s.db.DB.Model(&models.Event{}).Where("id = ?", event.ID).Updates(map[string]interface{}{
		"dispatched":    true,
		"dispatched_at": now,
		"status":        models.EventStatusCompleted,
	}).Error
}

// EventMessage builds the wire form of an outbox event:
// {"type": "task.created", "payload": {...}}.
func EventMessage(event models.Event) ([]byte, error) {
	var dataMap map[string]interface{}
	if err := json.Unmarshal(event.Data, &dataMap); err != nil {
		log.Printf("Warning: Could not unmarshal event data: %v", err)
		dataMap = make(map[string]interface{})
	}

	payload := map[string]interface{}{
		"event_id":  event.ID.String(),
		"timestamp": event.Timestamp,
		"entity":    event.Entity,
		"operation": event.Operation,
		"data":      dataMap,
	}
	if taskID, ok := dataMap["task_id"]; ok {
		payload["task_id"] = taskID
	}

	return json.Marshal(map[string]interface{}{
		"type":    event.Event,
		"payload": payload,
	})
}
