package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/NadavMozeson/typescript-discord-bot/internal/config"
	"github.com/NadavMozeson/typescript-discord-bot/internal/domain"
	"github.com/NadavMozeson/typescript-discord-bot/internal/logger"
)

// Type of lifecycle event
type Type string

const (
	TypeOpened Type = "opened"
	TypeClosed Type = "closed"
)

// Event is the payload published when an investment opens or closes
type Event struct {
	Type         Type           `json:"type"`
	InvestmentID string         `json:"investment_id"`
	Name         string         `json:"name"`
	Card         string         `json:"card"`
	VIP          bool           `json:"vip"`
	Outcome      domain.Outcome `json:"outcome,omitempty"`
	OccurredAt   time.Time      `json:"occurred_at"`
}

// NewEvent builds an event for inv
func NewEvent(t Type, inv *domain.Investment, outcome domain.Outcome, at time.Time) Event {
	return Event{
		Type:         t,
		InvestmentID: inv.ID,
		Name:         inv.Name,
		Card:         inv.Card,
		VIP:          inv.VIP,
		Outcome:      outcome,
		OccurredAt:   at,
	}
}

// Publisher emits lifecycle events. Publishing is best effort.
//
//go:generate mockgen -source=events.go -destination=../mocks/events.go -package=mocks -mock_names=Publisher=MockPublisher,Conn=MockConn
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close()
}

// Conn is the part of a NATS connection the publisher uses
type Conn interface {
	Publish(subject string, data []byte) error
	Close()
}

type natsPublisher struct {
	conn   Conn
	prefix string
}

// NewNATSPublisher connects to the NATS server in cfg
func NewNATSPublisher(cfg config.NATSConfig) (Publisher, error) {
	opts := []nats.Option{
		nats.Name(cfg.ConnectionName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Error(err, zap.String("message", "Disconnected from NATS"))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return NewPublisher(nc, cfg.SubjectPrefix), nil
}

// NewPublisher publishes on conn under prefix
func NewPublisher(conn Conn, prefix string) Publisher {
	if prefix == "" {
		prefix = "investments"
	}
	return &natsPublisher{conn: conn, prefix: prefix}
}

func (p *natsPublisher) Publish(ctx context.Context, event Event) error {
	logger.DebugCtx(ctx, "Publishing investment event",
		zap.String("type", string(event.Type)),
		zap.String("investment_id", event.InvestmentID))

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.conn.Publish(p.Subject(event.Type), data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Subject is e.g. investments.opened
func (p *natsPublisher) Subject(t Type) string {
	return p.prefix + "." + string(t)
}

func (p *natsPublisher) Close() {
	if p.conn == nil {
		return
	}
	p.conn.Close()
}

// Nop discards every event
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close()                               {}
