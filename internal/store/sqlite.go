package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/NadavMozeson/typescript-discord-bot/internal/adapter"
	"github.com/NadavMozeson/typescript-discord-bot/internal/domain"
)

const (
	lockRetries   = 5
	lockRetryWait = 100 * time.Millisecond
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS investments (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		nation TEXT NOT NULL DEFAULT '',
		rating TEXT NOT NULL DEFAULT '',
		card TEXT NOT NULL DEFAULT '',
		link TEXT NOT NULL DEFAULT '',
		risk TEXT NOT NULL DEFAULT '',
		channel_id TEXT NOT NULL,
		message_id TEXT NOT NULL,
		publisher_id TEXT NOT NULL DEFAULT '',
		console_price TEXT NOT NULL,
		pc_price TEXT NOT NULL,
		vip BOOLEAN NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_investments_message ON investments (channel_id, message_id)`,
	`CREATE TABLE IF NOT EXISTS trackers (
		user_id TEXT NOT NULL,
		investment_id TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (user_id, investment_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_trackers_investment ON trackers (investment_id)`,
	`CREATE TABLE IF NOT EXISTS tickets (channel_id TEXT PRIMARY KEY, user_id TEXT NOT NULL UNIQUE, reason TEXT NOT NULL, created_at INTEGER NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS private_rooms (user_id TEXT PRIMARY KEY, channel_id TEXT NOT NULL, vip BOOLEAN NOT NULL DEFAULT 1, created_at INTEGER NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS faqs (id TEXT PRIMARY KEY, question TEXT NOT NULL, answer TEXT NOT NULL, created_at INTEGER NOT NULL)`,
}

// SQLiteStore is the default Store, backed by a single sqlite file
type SQLiteStore struct {
	db    *sql.DB
	clock adapter.Clock
}

// NewSQLiteStore opens path and makes sure the schema exists. Use ":memory:" in tests.
func NewSQLiteStore(path string, clock adapter.Clock) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// one connection keeps writers serialised and an in-memory database alive
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return &SQLiteStore{db: db, clock: clock}, nil
}

// Ping checks the database is reachable
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the database handle
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateInvestment inserts inv under a new ULID
func (s *SQLiteStore) CreateInvestment(ctx context.Context, inv *domain.Investment) (*domain.Investment, error) {
	if inv == nil {
		return nil, fmt.Errorf("nil investment")
	}

	created := *inv
	created.CreatedAt = s.clock.Now().UTC()
	created.ID = ulid.MustNewDefault(created.CreatedAt).String()

	err := s.exec(ctx, `INSERT INTO investments
		(id, name, nation, rating, card, link, risk, channel_id, message_id, publisher_id, console_price, pc_price, vip, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		created.ID, created.Name, created.Nation, created.Rating, created.Card, created.Link, created.Risk,
		created.ChannelID, created.MessageID, created.PublisherID,
		created.ConsolePrice.String(), created.PCPrice.String(), boolToInt(created.VIP), created.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create investment: %w", err)
	}
	return &created, nil
}

const investmentColumns = `id, name, nation, rating, card, link, risk, channel_id, message_id, publisher_id, console_price, pc_price, vip, created_at`

// GetInvestment returns nil, nil when id is unknown
func (s *SQLiteStore) GetInvestment(ctx context.Context, id string) (*domain.Investment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+investmentColumns+` FROM investments WHERE id = ?`, id)
	inv, err := scanInvestment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get investment: %w", err)
	}
	return inv, nil
}

// ListInvestments returns every open investment, oldest first
func (s *SQLiteStore) ListInvestments(ctx context.Context) ([]*domain.Investment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+investmentColumns+` FROM investments ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list investments: %w", err)
	}
	defer rows.Close()

	var out []*domain.Investment
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan investment: %w", err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// DeleteInvestment removes the investment and its subscriptions in one transaction
func (s *SQLiteStore) DeleteInvestment(ctx context.Context, id string) error {
	err := withLockRetry(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `DELETE FROM trackers WHERE investment_id = ?`, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM investments WHERE id = ?`, id); err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return fmt.Errorf("failed to delete investment: %w", err)
	}
	return nil
}

// SubscriptionExists reports whether userID tracks investmentID
func (s *SQLiteStore) SubscriptionExists(ctx context.Context, userID, investmentID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM trackers WHERE user_id = ? AND investment_id = ?`, userID, investmentID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check subscription: %w", err)
	}
	return n > 0, nil
}

// CreateSubscription returns domain.ErrAlreadyTracking on a duplicate
func (s *SQLiteStore) CreateSubscription(ctx context.Context, userID, investmentID string) error {
	err := s.exec(ctx, `INSERT INTO trackers (user_id, investment_id, created_at) VALUES (?, ?, ?)`,
		userID, investmentID, s.clock.Now().UTC().UnixMilli())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return domain.ErrAlreadyTracking
		}
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

// DeleteSubscription returns domain.ErrNotTracking when nothing was removed
func (s *SQLiteStore) DeleteSubscription(ctx context.Context, userID, investmentID string) error {
	var affected int64
	err := withLockRetry(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM trackers WHERE user_id = ? AND investment_id = ?`, userID, investmentID)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotTracking
	}
	return nil
}

// SubscriptionsFor lists every subscriber of investmentID
func (s *SQLiteStore) SubscriptionsFor(ctx context.Context, investmentID string) ([]domain.Subscription, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, investment_id, created_at FROM trackers WHERE investment_id = ? ORDER BY created_at, user_id`, investmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	var out []domain.Subscription
	for rows.Next() {
		var sub domain.Subscription
		var created int64
		if err := rows.Scan(&sub.UserID, &sub.InvestmentID, &created); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		sub.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, sub)
	}
	return out, rows.Err()
}

// DeleteSubscriptionsFor removes every subscription of investmentID
func (s *SQLiteStore) DeleteSubscriptionsFor(ctx context.Context, investmentID string) error {
	if err := s.exec(ctx, `DELETE FROM trackers WHERE investment_id = ?`, investmentID); err != nil {
		return fmt.Errorf("failed to delete subscriptions: %w", err)
	}
	return nil
}

// CreateTicket returns domain.ErrTicketExists when the user already has one open
func (s *SQLiteStore) CreateTicket(ctx context.Context, t domain.Ticket) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.clock.Now().UTC()
	}
	err := s.exec(ctx, `INSERT INTO tickets (channel_id, user_id, reason, created_at) VALUES (?, ?, ?, ?)`,
		t.ChannelID, t.UserID, string(t.Reason), t.CreatedAt.UnixMilli())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return domain.ErrTicketExists
		}
		return fmt.Errorf("failed to create ticket: %w", err)
	}
	return nil
}

// TicketByUser returns nil, nil when the user has no open ticket
func (s *SQLiteStore) TicketByUser(ctx context.Context, userID string) (*domain.Ticket, error) {
	return s.ticketWhere(ctx, "user_id", userID)
}

// TicketByChannel returns nil, nil when the channel is not a ticket
func (s *SQLiteStore) TicketByChannel(ctx context.Context, channelID string) (*domain.Ticket, error) {
	return s.ticketWhere(ctx, "channel_id", channelID)
}

func (s *SQLiteStore) ticketWhere(ctx context.Context, column, value string) (*domain.Ticket, error) {
	var t domain.Ticket
	var reason string
	var created int64
	err := s.db.QueryRowContext(ctx,
		`SELECT channel_id, user_id, reason, created_at FROM tickets WHERE `+column+` = ?`, value,
	).Scan(&t.ChannelID, &t.UserID, &reason, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	t.Reason = domain.TicketReason(reason)
	t.CreatedAt = time.UnixMilli(created).UTC()
	return &t, nil
}

// DeleteTicket removes the ticket bound to channelID
func (s *SQLiteStore) DeleteTicket(ctx context.Context, channelID string) error {
	if err := s.exec(ctx, `DELETE FROM tickets WHERE channel_id = ?`, channelID); err != nil {
		return fmt.Errorf("failed to delete ticket: %w", err)
	}
	return nil
}

// SaveRoom inserts or replaces the user's room
func (s *SQLiteStore) SaveRoom(ctx context.Context, r domain.Room) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.clock.Now().UTC()
	}
	err := s.exec(ctx, `INSERT OR REPLACE INTO private_rooms (user_id, channel_id, vip, created_at) VALUES (?, ?, ?, ?)`,
		r.UserID, r.ChannelID, boolToInt(r.VIP), r.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to save room: %w", err)
	}
	return nil
}

// RoomByUser returns nil, nil when the user has no room
func (s *SQLiteStore) RoomByUser(ctx context.Context, userID string) (*domain.Room, error) {
	var r domain.Room
	var vip int
	var created int64
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, channel_id, vip, created_at FROM private_rooms WHERE user_id = ?`, userID,
	).Scan(&r.UserID, &r.ChannelID, &vip, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	r.VIP = vip != 0
	r.CreatedAt = time.UnixMilli(created).UTC()
	return &r, nil
}

// DeleteRoom removes the user's room record
func (s *SQLiteStore) DeleteRoom(ctx context.Context, userID string) error {
	if err := s.exec(ctx, `DELETE FROM private_rooms WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	return nil
}

// ListRooms returns every room record
func (s *SQLiteStore) ListRooms(ctx context.Context) ([]domain.Room, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user_id, channel_id, vip, created_at FROM private_rooms ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer rows.Close()

	var out []domain.Room
	for rows.Next() {
		var r domain.Room
		var vip int
		var created int64
		if err := rows.Scan(&r.UserID, &r.ChannelID, &vip, &created); err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		r.VIP = vip != 0
		r.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// CreateFAQ stores a question under a new ULID
func (s *SQLiteStore) CreateFAQ(ctx context.Context, question, answer string) (*domain.FAQ, error) {
	now := s.clock.Now().UTC()
	faq := &domain.FAQ{
		ID:        ulid.MustNewDefault(now).String(),
		Question:  question,
		Answer:    answer,
		CreatedAt: now,
	}
	err := s.exec(ctx, `INSERT INTO faqs (id, question, answer, created_at) VALUES (?, ?, ?, ?)`,
		faq.ID, faq.Question, faq.Answer, now.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to create faq: %w", err)
	}
	return faq, nil
}

// GetFAQ returns nil, nil when id is unknown
func (s *SQLiteStore) GetFAQ(ctx context.Context, id string) (*domain.FAQ, error) {
	var f domain.FAQ
	var created int64
	err := s.db.QueryRowContext(ctx, `SELECT id, question, answer, created_at FROM faqs WHERE id = ?`, id).
		Scan(&f.ID, &f.Question, &f.Answer, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get faq: %w", err)
	}
	f.CreatedAt = time.UnixMilli(created).UTC()
	return &f, nil
}

// ListFAQs returns every entry, oldest first
func (s *SQLiteStore) ListFAQs(ctx context.Context) ([]domain.FAQ, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, question, answer, created_at FROM faqs ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list faqs: %w", err)
	}
	defer rows.Close()

	var out []domain.FAQ
	for rows.Next() {
		var f domain.FAQ
		var created int64
		if err := rows.Scan(&f.ID, &f.Question, &f.Answer, &created); err != nil {
			return nil, fmt.Errorf("failed to scan faq: %w", err)
		}
		f.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, f)
	}
	return out, rows.Err()
}

// exec runs a single write statement, retrying while the database is locked
func (s *SQLiteStore) exec(ctx context.Context, query string, args ...any) error {
	return withLockRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

func withLockRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for i := 0; i < lockRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockRetryWait):
		}
	}
	return lastErr
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInvestment(row scanner) (*domain.Investment, error) {
	var inv domain.Investment
	var consolePrice, pcPrice string
	var vip int
	var created int64
	err := row.Scan(&inv.ID, &inv.Name, &inv.Nation, &inv.Rating, &inv.Card, &inv.Link, &inv.Risk,
		&inv.ChannelID, &inv.MessageID, &inv.PublisherID, &consolePrice, &pcPrice, &vip, &created)
	if err != nil {
		return nil, err
	}
	if inv.ConsolePrice, err = decimal.NewFromString(consolePrice); err != nil {
		return nil, fmt.Errorf("invalid console price %q: %w", consolePrice, err)
	}
	if inv.PCPrice, err = decimal.NewFromString(pcPrice); err != nil {
		return nil, fmt.Errorf("invalid pc price %q: %w", pcPrice, err)
	}
	inv.VIP = vip != 0
	inv.CreatedAt = time.UnixMilli(created).UTC()
	return &inv, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
