// Package notify dispatches user notifications. Delivery is fire-and-forget:
// failures are logged by callers, never propagated into engine decisions.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Dispatcher sends one notification to one user.
type Dispatcher interface {
	Notify(ctx context.Context, userID, kind string, payload map[string]any) error
}

// Notification kinds produced by the engine.
const (
	KindOfferReceived = "offer_received"
	KindTaskAssigned  = "task_assigned"
	KindEmergencyTask = "emergency_task_assigned"
)

// NATSDispatcher publishes notifications as JSON messages on a subject
// derived from the notification kind.
type NATSDispatcher struct {
	conn   *nats.Conn
	prefix string
	logger *zap.Logger
}

type message struct {
	UserID  string         `json:"user_id"`
	Kind    string         `json:"kind"`
	Payload map[string]any `json:"payload,omitempty"`
	SentAt  time.Time      `json:"sent_at"`
}

// NewNATSDispatcher builds a dispatcher publishing on "<prefix>.<kind>".
func NewNATSDispatcher(conn *nats.Conn, prefix string, logger *zap.Logger) *NATSDispatcher {
	if prefix == "" {
		prefix = "zerohunger.notify"
	}
	return &NATSDispatcher{conn: conn, prefix: prefix, logger: logger}
}

func (d *NATSDispatcher) Notify(_ context.Context, userID, kind string, payload map[string]any) error {
	data, err := json.Marshal(message{
		UserID:  userID,
		Kind:    kind,
		Payload: payload,
		SentAt:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	subject := fmt.Sprintf("%s.%s", d.prefix, kind)
	if err := d.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	d.logger.Debug("notification published",
		zap.String("subject", subject),
		zap.String("user_id", userID),
	)

	return nil
}

// LogDispatcher records notifications in the log only; used when no message
// broker is configured and in tests.
type LogDispatcher struct {
	logger *zap.Logger
}

// NewLogDispatcher builds a log-only dispatcher.
func NewLogDispatcher(logger *zap.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) Notify(_ context.Context, userID, kind string, payload map[string]any) error {
	d.logger.Info("notification",
		zap.String("user_id", userID),
		zap.String("kind", kind),
		zap.Any("payload", payload),
	)
	return nil
}
