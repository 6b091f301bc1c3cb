package events

import (
	"strconv"
	"sync"

	kafkax "github.com/ariefcatur/go-heritage-shop.git/internal/kafka"
	"github.com/go-faster/errors"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher is the write side of the event bus; *kafka.Producer implements it.
type Publisher interface {
	Publish(topic string, key, value []byte, headers ...kafkago.Header)
}

// Emit publishes env on the topic of its event type, keyed by partitionKey.
func Emit(p Publisher, env Envelope, partitionKey string) error {
	topic := TopicFor(env.EventType)
	if topic == "" {
		return errors.Errorf("no topic for event type %q", env.EventType)
	}
	p.Publish(topic, PartitionKey(partitionKey), kafkax.MustMarshal(env),
		kafkago.Header{Key: "x-event-type", Value: []byte(env.EventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte(strconv.Itoa(env.EventVersion))},
	)
	return nil
}

// Message is one published record.
type Message struct {
	Topic   string
	Key     []byte
	Value   []byte
	Headers []kafkago.Header
}

// Envelope decodes the message value.
func (m Message) Envelope() (Envelope, error) {
	var env Envelope
	err := kafkax.UnmarshalEnvelope(m.Value, &env)
	return env, err
}

// Memory keeps published messages in process. Used in tests and when no
// brokers are configured.
type Memory struct {
	mu   sync.Mutex
	msgs []Message
}

func (m *Memory) Publish(topic string, key, value []byte, headers ...kafkago.Header) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, Message{Topic: topic, Key: key, Value: value, Headers: headers})
}

func (m *Memory) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.msgs...)
}

// OnTopic returns the messages published on topic, oldest first.
func (m *Memory) OnTopic(topic string) []Message {
	var out []Message
	for _, msg := range m.Messages() {
		if msg.Topic == topic {
			out = append(out, msg)
		}
	}
	return out
}
