package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/dataloft-systems/dataloft-backend/internal/models"
)

// Forwarder publishes signed auth events to NATS so downstream consumers
// (SIEM shippers, alerting) can react without polling the database.
type Forwarder struct {
	conn    *nats.Conn
	subject string
}

// ForwarderConfig holds NATS connection settings for the forwarder.
type ForwarderConfig struct {
	URL     string
	Subject string
	Name    string
}

func NewForwarder(cfg ForwarderConfig) (*Forwarder, error) {
	if cfg.Name == "" {
		cfg.Name = "dataloft-authd"
	}

	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.Timeout(5 * time.Second),
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &Forwarder{conn: conn, subject: cfg.Subject}, nil
}

func (f *Forwarder) Forward(event *models.AuthEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal auth event: %w", err)
	}
	if err := f.conn.Publish(f.subject, data); err != nil {
		return fmt.Errorf("failed to publish auth event: %w", err)
	}
	return nil
}

func (f *Forwarder) Close() {
	if f.conn != nil {
		f.conn.Drain()
	}
}
