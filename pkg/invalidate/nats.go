package invalidate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes JSON-encoded signals to a NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSPublisher connects to url with automatic reconnection. Extra
// nats.Option values are appended to the defaults.
func NewNATSPublisher(url, subject string, opts ...nats.Option) (*NATSPublisher, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("invalidate: nats url is required")
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = DefaultChannel
	}

	defaults := []nats.Option{
		nats.Name("activityform"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	}
	nc, err := nats.Connect(url, append(defaults, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("invalidate: connecting to NATS at %s: %w", url, err)
	}
	return &NATSPublisher{conn: nc, subject: subject}, nil
}

// Publish implements Publisher. It flushes so a dead connection surfaces as
// an error; ctx bounds the flush when it carries a deadline.
func (p *NATSPublisher) Publish(ctx context.Context, signal Signal) error {
	data, err := json.Marshal(signal)
	if err != nil {
		return fmt.Errorf("invalidate: encode signal: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("invalidate: nats publish: %w", err)
	}
	flush := p.conn.Flush
	if _, ok := ctx.Deadline(); ok {
		flush = func() error { return p.conn.FlushWithContext(ctx) }
	}
	if err := flush(); err != nil {
		return fmt.Errorf("invalidate: nats flush: %w", err)
	}
	return nil
}

// Close implements Publisher.
func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}
