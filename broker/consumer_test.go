package broker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, c Consumer) Message {
	t.Helper()
	select {
	case msg, ok := <-c.Messages():
		require.True(t, ok, "consumer channel closed")
		return msg
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for message")
	}
	return Message{}
}

func TestLocalBrokerDeliversToEverySubscriber(t *testing.T) {
	b := NewLocalBroker()
	defer b.Close()

	first := b.Subscribe(TaskEventsSubject)
	second := b.Subscribe(TaskEventsSubject)
	other := b.Subscribe("other.subject")

	require.NoError(t, b.Publish(TaskEventsSubject, []byte(`{"type":"task.created"}`)))

	for _, c := range []Consumer{first, second} {
		msg := receive(t, c)
		assert.Equal(t, TaskEventsSubject, msg.Subject)
		assert.Equal(t, `{"type":"task.created"}`, string(msg.Data))
	}

	select {
	case msg := <-other.Messages():
		t.Fatalf("unexpected message on other subject: %+v", msg)
	default:
	}
}

func TestLocalConsumerCloseStopsDelivery(t *testing.T) {
	b := NewLocalBroker()
	defer b.Close()

	c := b.Subscribe(TaskEventsSubject)
	c.Close()

	_, ok := <-c.Messages()
	assert.False(t, ok)

	assert.NoError(t, b.Publish(TaskEventsSubject, []byte("ignored")))
	assert.NotPanics(t, c.Close)
}

func TestLocalBrokerCloseClosesSubscribers(t *testing.T) {
	b := NewLocalBroker()
	c := b.Subscribe(TaskEventsSubject)

	b.Close()

	_, ok := <-c.Messages()
	assert.False(t, ok)
	assert.NoError(t, b.Publish(TaskEventsSubject, []byte("after close")))

	late := b.Subscribe(TaskEventsSubject)
	_, ok = <-late.Messages()
	assert.False(t, ok)
}
