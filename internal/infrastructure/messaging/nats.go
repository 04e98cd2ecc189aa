package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-agent/errors"
	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
)

// DefaultSummarySubject is the subject summary events are published on
const DefaultSummarySubject = "meeting.summary.processed"

type conn interface {
	Publish(subject string, data []byte) error
	Close()
}

// Publisher publishes meeting summary events to NATS
type Publisher struct {
	conn    conn
	subject string
	logger  *zap.Logger
}

// NewPublisher connects to NATS. The connection keeps retrying in the
// background so a broker outage at startup does not block the service.
func NewPublisher(url, subject string, logger *zap.Logger) (*Publisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []nats.Option{
		nats.Name("meeting-agent"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("⚠️ NATS disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("🔌 NATS reconnected")
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return newPublisher(nc, subject, logger), nil
}

func newPublisher(c conn, subject string, logger *zap.Logger) *Publisher {
	if subject == "" {
		subject = DefaultSummarySubject
	}
	return &Publisher{conn: c, subject: subject, logger: logger.With(zap.String("component", "messaging"))}
}

// PublishSummary publishes one summary notification
func (p *Publisher) PublishSummary(ctx context.Context, n entities.SummaryNotification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	if err := p.conn.Publish(p.subject, payload); err != nil {
		return apperrors.ErrMessagingFailed(p.subject, err)
	}
	p.logger.Info("📣 Summary published",
		zap.String("subject", p.subject),
		zap.String("priority", n.Priority),
		zap.String("trace_id", n.TraceID),
	)
	return nil
}

// Close closes the connection
func (p *Publisher) Close() {
	p.conn.Close()
}
