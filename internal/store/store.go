package store

import (
	"context"

	"github.com/NadavMozeson/typescript-discord-bot/internal/domain"
)

// InvestmentStore persists open investments. Lookups that find nothing return nil, nil.
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=InvestmentStore=MockInvestmentStore,TrackerStore=MockTrackerStore
type InvestmentStore interface {
	// CreateInvestment assigns an id and CreatedAt, then inserts inv
	CreateInvestment(ctx context.Context, inv *domain.Investment) (*domain.Investment, error)
	GetInvestment(ctx context.Context, id string) (*domain.Investment, error)
	ListInvestments(ctx context.Context) ([]*domain.Investment, error)
	// DeleteInvestment removes the investment and every subscription to it
	DeleteInvestment(ctx context.Context, id string) error
}

// TrackerStore persists tracker subscriptions
type TrackerStore interface {
	SubscriptionExists(ctx context.Context, userID, investmentID string) (bool, error)
	CreateSubscription(ctx context.Context, userID, investmentID string) error
	DeleteSubscription(ctx context.Context, userID, investmentID string) error
	SubscriptionsFor(ctx context.Context, investmentID string) ([]domain.Subscription, error)
	DeleteSubscriptionsFor(ctx context.Context, investmentID string) error
}
