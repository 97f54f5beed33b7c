package notify

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/ridershield/ridershield/internal/domain/model"
	"github.com/ridershield/ridershield/pkg/logger"
)

// DefaultTopic is the FCM topic family members subscribe to.
const DefaultTopic = "ridershield-alerts"

// MessageSender is the part of the FCM client the announcer needs.
type MessageSender interface {
	Send(ctx context.Context, m *messaging.Message) (string, error)
}

// PushAnnouncer publishes the alert to an FCM topic.
type PushAnnouncer struct {
	client MessageSender
	topic  string
	log    logger.Logger
}

// NewPushAnnouncer wraps an existing sender.
func NewPushAnnouncer(client MessageSender, topic string, l logger.Logger) *PushAnnouncer {
	if topic == "" {
		topic = DefaultTopic
	}
	if l == nil {
		l = logger.Nop()
	}
	return &PushAnnouncer{client: client, topic: topic, log: l}
}

// NewFirebaseAnnouncer builds an FCM client from a service account file.
func NewFirebaseAnnouncer(ctx context.Context, credentialsFile, topic string, l logger.Logger) (*PushAnnouncer, error) {
	if credentialsFile == "" {
		return nil, ErrNoCredentials
	}
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase messaging: %w", err)
	}
	return NewPushAnnouncer(client, topic, l), nil
}

// Announce sends the alert message as a high priority notification.
func (a *PushAnnouncer) Announce(ctx context.Context, p model.AlertPayload) error {
	msg := &messaging.Message{
		Topic: a.topic,
		Notification: &messaging.Notification{
			Title: "RiderShield emergency: " + p.RiderName,
			Body:  p.Message,
		},
		Data: map[string]string{
			"episode":   p.Episode,
			"severity":  string(p.Severity),
			"latitude":  fmt.Sprintf("%f", p.Latitude),
			"longitude": fmt.Sprintf("%f", p.Longitude),
			"nearby":    p.Nearby,
		},
		Android: &messaging.AndroidConfig{Priority: "high"},
	}

	id, err := a.client.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("fcm send: %w", err)
	}
	a.log.Info(ctx, "push announcement sent", logger.String("topic", a.topic), logger.String("message_id", id))
	return nil
}
