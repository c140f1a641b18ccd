package broker

import (
	"log"
	"sync"
)

// LocalBroker is an in-process Producer used when NATS is unavailable.
// Every subscriber receives every message published on its subject.
type LocalBroker struct {
	mu          sync.RWMutex
	subscribers map[string][]*localConsumer
	closed      bool
}

func NewLocalBroker() *LocalBroker {
	return &LocalBroker{subscribers: make(map[string][]*localConsumer)}
}

func (b *LocalBroker) Publish(subject string, data []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil
	}
	for _, c := range b.subscribers[subject] {
		select {
		case c.messages <- Message{Subject: subject, Data: data}:
		default:
			log.Printf("Local consumer on %s is full, dropping message", subject)
		}
	}
	return nil
}

// Subscribe returns a Consumer for subject.
func (b *LocalBroker) Subscribe(subject string) Consumer {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := &localConsumer{broker: b, subject: subject, messages: make(chan Message, 256)}
	if b.closed {
		close(c.messages)
		c.closed = true
		return c
	}
	b.subscribers[subject] = append(b.subscribers[subject], c)
	return c
}

// Close closes every subscriber channel.
func (b *LocalBroker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for _, subs := range b.subscribers {
		for _, c := range subs {
			c.closeLocked()
		}
	}
	b.subscribers = make(map[string][]*localConsumer)
}

func (b *LocalBroker) remove(c *localConsumer) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[c.subject]
	for i, s := range subs {
		if s == c {
			b.subscribers[c.subject] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	c.closeLocked()
}

type localConsumer struct {
	broker   *LocalBroker
	subject  string
	messages chan Message
	closed   bool
}

func (c *localConsumer) Messages() <-chan Message {
	return c.messages
}

func (c *localConsumer) Close() {
	c.broker.remove(c)
}

// closeLocked must be called with the broker lock held.
func (c *localConsumer) closeLocked() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.messages)
}
