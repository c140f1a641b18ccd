package broker

import (
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

// Producer publishes messages to a subject.
type Producer interface {
	Publish(subject string, data []byte) error
	Close()
}

// NatsProducer publishes over a NATS connection.
type NatsProducer struct {
	conn *nats.Conn
}

// Connect opens a NATS connection with reconnects enabled.
func Connect(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name("tasktracker"),
		nats.Timeout(2*time.Second),
		nats.MaxReconnects(10),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("NATS disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Printf("NATS reconnected to %s", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	return conn, nil
}

func NewNatsProducer(conn *nats.Conn) *NatsProducer {
	return &NatsProducer{conn: conn}
}

func (p *NatsProducer) Publish(subject string, data []byte) error {
	if p.conn == nil {
		return fmt.Errorf("NATS producer is not initialized")
	}
	if err := p.conn.Publish(subject, data); err != nil {
		log.Printf("Failed to publish message to %s: %v", subject, err)
		return err
	}
	log.Printf("Published message to subject %s (%d bytes)", subject, len(data))
	return nil
}

// Close flushes pending messages. The connection itself is owned by the caller.
func (p *NatsProducer) Close() {
	if p.conn == nil || p.conn.IsClosed() {
		return
	}
	if err := p.conn.Flush(); err != nil {
		log.Printf("Failed to flush NATS producer: %v", err)
	}
}
