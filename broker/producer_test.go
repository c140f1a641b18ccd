package broker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type MockProducer struct {
	messages []Message
}

func (m *MockProducer) Publish(subject string, data []byte) error {
	m.messages = append(m.messages, Message{Subject: subject, Data: data})
	return nil
}

func (m *MockProducer) Close() {}

func TestMockProducerSatisfiesProducer(t *testing.T) {
	var p Producer = &MockProducer{}

	assert.NoError(t, p.Publish(TaskEventsSubject, []byte("value")))

	msgs := p.(*MockProducer).messages
	if assert.Len(t, msgs, 1) {
		assert.Equal(t, TaskEventsSubject, msgs[0].Subject)
		assert.Equal(t, "value", string(msgs[0].Data))
	}
}

func TestNatsProducerWithoutConnection(t *testing.T) {
	p := NewNatsProducer(nil)

	assert.Error(t, p.Publish(TaskEventsSubject, []byte("value")))
	assert.NotPanics(t, p.Close)
}

func TestLocalBrokerIsProducer(t *testing.T) {
	var _ Producer = NewLocalBroker()
	var _ Producer = &NatsProducer{}
	var _ Consumer = &NatsConsumer{}
}
