package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
	"greencoin.backend/pkg/logger"
)

type natsPublisher interface {
	Publish(subject string, data []byte) error
}

// NATSNotifier publishes every topic as a NATS subject of the same name,
// optionally prefixed.
type NATSNotifier struct {
	conn   natsPublisher
	prefix string
	close  func()
}

// ConnectNATS dials url and returns a notifier that keeps reconnecting
func ConnectNATS(url, clientName, subjectPrefix string) (*NATSNotifier, error) {
	conn, err := nats.Connect(url,
		nats.Name(clientName),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn(context.Background(), "NATS disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info(context.Background(), "NATS reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats at %s: %w", url, err)
	}

	n := NewNATSNotifier(conn, subjectPrefix)
	n.close = func() {
		if err := conn.Drain(); err != nil {
			conn.Close()
		}
	}
	return n, nil
}

// NewNATSNotifier wraps an existing connection
func NewNATSNotifier(conn natsPublisher, subjectPrefix string) *NATSNotifier {
	return &NATSNotifier{conn: conn, prefix: subjectPrefix}
}

// Publish sends payload as a JSON envelope
func (n *NATSNotifier) Publish(_ context.Context, topic string, payload interface{}) error {
	data, err := encode(topic, payload)
	if err != nil {
		return err
	}
	if err := n.conn.Publish(n.prefix+topic, data); err != nil {
		return fmt.Errorf("nats publish %s: %w", topic, err)
	}
	return nil
}

// Close drains the connection when it was opened by ConnectNATS
func (n *NATSNotifier) Close() {
	if n.close != nil {
		n.close()
	}
}
