package broker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"

	"storefront/internal/infrastructure/websocket"
	"storefront/pkg/logger"
)

// Envelope is the record written to the notifications topic.
type Envelope struct {
	Instance string          `json:"instance"`
	Room     string          `json:"room"`
	Event    string          `json:"event"`
	Message  json.RawMessage `json:"message"`
}

// Broadcaster delivers encoded frames to local room members.
type Broadcaster interface {
	Broadcast(ctx context.Context, room, event string, message []byte)
}

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Relay fans notifications out to peer instances. Every publish is delivered
// to the local hub and copied to Kafka; records read back from Kafka are
// delivered locally unless this instance wrote them.
type Relay struct {
	hub        Broadcaster
	writer     MessageWriter
	reader     MessageReader
	instanceID string
}

func NewRelay(hub Broadcaster, writer MessageWriter, reader MessageReader, instanceID string) *Relay {
	return &Relay{
		hub:        hub,
		writer:     writer,
		reader:     reader,
		instanceID: instanceID,
	}
}

// NewKafkaRelay consumes with a group unique to the instance so each
// instance sees every record.
func NewKafkaRelay(hub Broadcaster, brokers []string, topic, instanceID string) *Relay {
	return NewRelay(
		hub,
		NewKafkaWriter(brokers, topic),
		NewKafkaReader(brokers, topic, "storefront-relay-"+instanceID),
		instanceID,
	)
}

func (r *Relay) Publish(ctx context.Context, room, event string, payload interface{}) {
	message, err := websocket.Encode(event, payload)
	if err != nil {
		logger.Error("Relay: failed to encode %s for room %s: %v", event, room, err)
		return
	}

	r.hub.Broadcast(ctx, room, event, message)

	value, err := json.Marshal(Envelope{
		Instance: r.instanceID,
		Room:     room,
		Event:    event,
		Message:  message,
	})
	if err != nil {
		logger.Error("Relay: failed to encode envelope: %v", err)
		return
	}

	err = r.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(room),
		Value: value,
		Time:  time.Now(),
	})
	if err != nil {
		logger.LogNotificationDrop(room, event, "relay write failed: "+err.Error())
	}
}

// Run delivers records from peers until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	logger.Info("Relay: consuming notifications as instance %s", r.instanceID)
	for {
		msg, err := r.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			logger.Warn("Relay: read error: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		r.handle(ctx, msg)
	}
}

func (r *Relay) handle(ctx context.Context, msg kafka.Message) {
	var env Envelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		logger.Warn("Relay: skipping malformed record at offset %d: %v", msg.Offset, err)
		return
	}
	if env.Instance == r.instanceID {
		return
	}
	r.hub.Broadcast(ctx, env.Room, env.Event, env.Message)
}

func (r *Relay) Close() error {
	return errors.Join(r.writer.Close(), r.reader.Close())
}
