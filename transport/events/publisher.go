package events

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/mcp-training/blockfall/game/engine"
	"github.com/wricardo/mcp-training/blockfall/game/service"
)

// DefaultSubjectPrefix is the first token of every published subject
const DefaultSubjectPrefix = "blockfall"

// Conn is the part of a NATS connection the publisher needs
type Conn interface {
	Publish(subject string, data []byte) error
}

// Config holds the NATS connection settings
type Config struct {
	URL           string
	SubjectPrefix string
	MaxReconnects int
	ReconnectWait time.Duration
}

// Envelope is the JSON payload of a published game event
type Envelope struct {
	SessionID string        `json:"session_id"`
	Type      string        `json:"type"`
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
	Score     int           `json:"score"`
	Level     int           `json:"level"`
	Lines     int           `json:"lines"`
	Status    engine.Status `json:"status"`
}

// Publisher forwards game events to NATS subjects of the form
// <prefix>.<session>.<event type>
type Publisher struct {
	conn   Conn
	nc     *nats.Conn
	prefix string
}

var _ service.Notifier = (*Publisher)(nil)

// NewPublisher wraps an existing connection
func NewPublisher(conn Conn, prefix string) *Publisher {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &Publisher{conn: conn, prefix: prefix}
}

// Connect dials NATS and returns a publisher that owns the connection
func Connect(cfg Config) (*Publisher, error) {
	opts := []nats.Option{
		nats.Name("blockfall"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn().Err(err).Msg("disconnected from NATS")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("reconnected to NATS")
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info().Msg("NATS connection closed")
		}),
		nats.Timeout(10 * time.Second),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", cfg.URL, err)
	}

	p := NewPublisher(nc, cfg.SubjectPrefix)
	p.nc = nc
	return p, nil
}

// Subject returns the subject for one event of a session
func (p *Publisher) Subject(sessionID, eventType string) string {
	return p.prefix + "." + token(sessionID) + "." + token(eventType)
}

// Notify publishes every event; state-only notifications publish nothing
func (p *Publisher) Notify(sessionID string, state *engine.GameState, events []service.GameEvent) {
	for _, event := range events {
		env := Envelope{
			SessionID: sessionID,
			Type:      event.Type,
			Message:   event.Message,
			Timestamp: event.Timestamp,
		}
		if state != nil {
			env.Score = state.Score
			env.Level = state.Level
			env.Lines = state.Lines
			env.Status = state.Status
		}

		data, err := json.Marshal(env)
		if err != nil {
			log.Error().Err(err).Str("session", sessionID).Msg("failed to marshal event")
			continue
		}

		subject := p.Subject(sessionID, event.Type)
		if err := p.conn.Publish(subject, data); err != nil {
			log.Warn().Err(err).Str("subject", subject).Msg("failed to publish event")
			continue
		}
		log.Trace().Str("subject", subject).Msg("published event")
	}
}

// Close drains the connection opened by Connect
func (p *Publisher) Close() error {
	if p.nc == nil {
		return nil
	}
	return p.nc.Drain()
}

// token makes s safe to use as a single subject token
func token(s string) string {
	s = strings.ToLower(s)
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\r', '\n':
			return '_'
		}
		return r
	}, s)
}
