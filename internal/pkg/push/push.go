// Package push wraps the Firebase Cloud Messaging client.
package push

import (
	"context"

	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MaxBatchSize is the FCM limit on tokens per multicast request.
const MaxBatchSize = 500

// Messenger is satisfied by *messaging.Client.
type Messenger interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// Notification is a title/body pair plus a string data payload.
type Notification struct {
	Title string
	Body  string
	Data  map[string]string
}

// Message addresses n to a single device token.
func (n Notification) Message(token string) *messaging.Message {
	return &messaging.Message{
		Token:        token,
		Notification: &messaging.Notification{Title: n.Title, Body: n.Body},
		Data:         n.Data,
	}
}

// Multicast addresses n to a set of device tokens.
func (n Notification) Multicast(tokens []string) *messaging.MulticastMessage {
	return &messaging.MulticastMessage{
		Tokens:       tokens,
		Notification: &messaging.Notification{Title: n.Title, Body: n.Body},
		Data:         n.Data,
	}
}

// Chunk splits tokens into consecutive batches of at most size entries.
func Chunk(tokens []string, size int) [][]string {
	if size <= 0 || size > MaxBatchSize {
		size = MaxBatchSize
	}
	var batches [][]string
	for start := 0; start < len(tokens); start += size {
		end := start + size
		if end > len(tokens) {
			end = len(tokens)
		}
		batches = append(batches, tokens[start:end])
	}
	return batches
}

// NoopMessenger logs messages instead of delivering them. Used when FCM is disabled.
type NoopMessenger struct {
	logger zerolog.Logger
}

// NewNoopMessenger creates a NoopMessenger
func NewNoopMessenger(logger zerolog.Logger) *NoopMessenger {
	return &NoopMessenger{logger: logger}
}

// Send pretends to deliver a single message.
func (m *NoopMessenger) Send(_ context.Context, message *messaging.Message) (string, error) {
	id := "noop-" + uuid.NewString()
	m.logger.Debug().Str("messageId", id).Interface("data", message.Data).Msg("Push disabled, message not sent")
	return id, nil
}

// SendEachForMulticast reports every token as delivered.
func (m *NoopMessenger) SendEachForMulticast(_ context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
	resp := &messaging.BatchResponse{SuccessCount: len(message.Tokens)}
	for range message.Tokens {
		resp.Responses = append(resp.Responses, &messaging.SendResponse{Success: true, MessageID: "noop-" + uuid.NewString()})
	}
	m.logger.Debug().Int("tokens", len(message.Tokens)).Msg("Push disabled, multicast not sent")
	return resp, nil
}
