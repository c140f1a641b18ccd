package broker

import (
	"log"

	"github.com/nats-io/nats.go"
)

// Consumer delivers messages from a subscription until closed.
type Consumer interface {
	Messages() <-chan Message
	Close()
}

// NatsConsumer bridges a NATS channel subscription onto a Message channel.
type NatsConsumer struct {
	sub      *nats.Subscription
	raw      chan *nats.Msg
	messages chan Message
	done     chan struct{}
}

func NewNatsConsumer(conn *nats.Conn, subject string) (*NatsConsumer, error) {
	raw := make(chan *nats.Msg, 256)
	sub, err := conn.ChanSubscribe(subject, raw)
	if err != nil {
		return nil, err
	}

	c := &NatsConsumer{
		sub:      sub,
		raw:      raw,
		messages: make(chan Message, 256),
		done:     make(chan struct{}),
	}
	go c.forward()

	log.Printf("NATS consumer started, listening to subject: %s", subject)
	return c, nil
}

func (c *NatsConsumer) forward() {
	defer close(c.messages)
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.raw:
			select {
			case c.messages <- Message{Subject: msg.Subject, Data: msg.Data}:
			case <-c.done:
				return
			}
		}
	}
}

func (c *NatsConsumer) Messages() <-chan Message {
	return c.messages
}

func (c *NatsConsumer) Close() {
	select {
	case <-c.done:
		return
	default:
	}
	if err := c.sub.Unsubscribe(); err != nil {
		log.Printf("Failed to unsubscribe NATS consumer: %v", err)
	}
	close(c.done)
}
