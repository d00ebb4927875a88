// Package events publishes run-completion notifications.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// RunEvent is the message published after each pipeline run.
type RunEvent struct {
	RunID      string            `json:"run_id"`
	Outcome    string            `json:"outcome"`
	Mode       string            `json:"mode"`
	Output     string            `json:"output,omitempty"`
	Revision   string            `json:"revision,omitempty"`
	Targets    []string          `json:"targets"`
	Stages     map[string]string `json:"stages"`
	Error      string            `json:"error,omitempty"`
	StartedAt  time.Time         `json:"started_at"`
	DurationMS int64             `json:"duration_ms"`
}

// Encode renders e as JSON.
func (e RunEvent) Encode() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal run event: %w", err)
	}
	return data, nil
}

// Publisher delivers run events.
type Publisher interface {
	Publish(ctx context.Context, ev RunEvent) error
	Close()
}

// NoopPublisher drops every event (no broker configured).
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, RunEvent) error { return nil }
func (NoopPublisher) Close() {}

// conn is the subset of *nats.Conn the publisher uses.
type conn interface {
	Publish(subj string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// NATSPublisher publishes run events to a NATS subject.
type NATSPublisher struct {
	conn    conn
	subject string
}

// flushTimeout bounds the wait for the server to acknowledge a publish when
// the caller's context has no deadline.
const flushTimeout = 5 * time.Second

// NewNATSPublisher connects to url and returns a publisher for subject.
func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	if subject == "" {
		return nil, fmt.Errorf("events subject is required")
	}
	nc, err := nats.Connect(url,
		nats.Name("distbuilder"),
		nats.Timeout(flushTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	slog.Debug("NATS publisher connected", "url", url, "subject", subject)
	return &NATSPublisher{conn: nc, subject: subject}, nil
}

// Publish sends ev and waits for the server to process it.
func (p *NATSPublisher) Publish(ctx context.Context, ev RunEvent) error {
	data, err := ev.Encode()
	if err != nil {
		return err
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", p.subject, err)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flushTimeout)
		defer cancel()
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush NATS connection: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (p *NATSPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
