package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vibin_chat/models"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"
)

// MessagePublisher announces persisted messages to downstream consumers (push notifications, analytics)
type MessagePublisher interface {
	PublishMessage(message models.Message) error
}

// MessageSubjectPrefix is the subject hierarchy: chat.messages.<conversationId>
const MessageSubjectPrefix = "chat.messages"

// NatsPublisher publishes message events to a JetStream stream without waiting for acks
type NatsPublisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	logger *zap.Logger
}

// NewNatsPublisher connects to NATS and makes sure the stream exists
func NewNatsPublisher(url, streamName string, logger *zap.Logger) (*NatsPublisher, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create jetstream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := js.Stream(ctx, streamName); err != nil {
		logger.Info("🛠️ stream not found, creating", zap.String("stream", streamName))
		_, err = js.CreateStream(ctx, jetstream.StreamConfig{
			Name:        streamName,
			Description: "Persisted chat messages",
			Subjects:    []string{MessageSubjectPrefix + ".*"},
			MaxAge:      24 * time.Hour,
			Storage:     jetstream.FileStorage,
		})
		if err != nil {
			nc.Close()
			return nil, fmt.Errorf("failed to create stream '%s': %w", streamName, err)
		}
	}

	return &NatsPublisher{nc: nc, js: js, logger: logger}, nil
}

func (p *NatsPublisher) PublishMessage(message models.Message) error {
	data, err := json.Marshal(message.View())
	if err != nil {
		return fmt.Errorf("failed to marshal message event: %w", err)
	}

	subject := MessageSubject(message.ConversationID)
	if _, err := p.js.PublishAsync(subject, data); err != nil {
		return fmt.Errorf("failed to publish to '%s': %w", subject, err)
	}
	return nil
}

// MessageSubject returns the subject a conversation's events are published on
func MessageSubject(conversationID string) string {
	return MessageSubjectPrefix + "." + conversationID
}

func (p *NatsPublisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}
