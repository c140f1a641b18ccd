package broker

const (
	// TaskEventsSubject carries every task lifecycle event.
	TaskEventsSubject = "tasks.events"
)

// Message is a payload received from, or published to, a subject.
type Message struct {
	Subject string
	Data    []byte
}
