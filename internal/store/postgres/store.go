package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/NadavMozeson/typescript-discord-bot/internal/adapter"
	"github.com/NadavMozeson/typescript-discord-bot/internal/config"
	"github.com/NadavMozeson/typescript-discord-bot/internal/domain"
	"github.com/NadavMozeson/typescript-discord-bot/internal/store"
)

// Open connects to postgres, configures the pool and migrates the schema
func Open(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	logLevel := gormlogger.Silent
	if debug {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(pgdriver.Open(cfg.DSN()), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every table
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

type pgStore struct {
	db    *gorm.DB
	clock adapter.Clock
}

// New creates a postgres backed store.Store
func New(db *gorm.DB, clock adapter.Clock) store.Store {
	return &pgStore{db: db, clock: clock}
}

func (s *pgStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *pgStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *pgStore) now() time.Time {
	return s.clock.Now().UTC()
}

func (s *pgStore) CreateInvestment(ctx context.Context, inv *domain.Investment) (*domain.Investment, error) {
	if inv == nil {
		return nil, fmt.Errorf("nil investment")
	}
	created := *inv
	created.CreatedAt = s.now()
	created.ID = ulid.MustNewDefault(created.CreatedAt).String()

	row := fromDomain(&created)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to create investment: %w", err)
	}
	return &created, nil
}

func (s *pgStore) GetInvestment(ctx context.Context, id string) (*domain.Investment, error) {
	var row Investment
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get investment: %w", err)
	}
	return row.toDomain(), nil
}

func (s *pgStore) ListInvestments(ctx context.Context) ([]*domain.Investment, error) {
	var rows []Investment
	if err := s.db.WithContext(ctx).Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list investments: %w", err)
	}
	out := make([]*domain.Investment, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

func (s *pgStore) DeleteInvestment(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("investment_id = ?", id).Delete(&Tracker{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&Investment{}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete investment: %w", err)
	}
	return nil
}

func (s *pgStore) SubscriptionExists(ctx context.Context, userID, investmentID string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Tracker{}).
		Where("user_id = ? AND investment_id = ?", userID, investmentID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("failed to check subscription: %w", err)
	}
	return n > 0, nil
}

func (s *pgStore) CreateSubscription(ctx context.Context, userID, investmentID string) error {
	row := Tracker{UserID: userID, InvestmentID: investmentID, CreatedAt: s.now()}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrAlreadyTracking
		}
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

func (s *pgStore) DeleteSubscription(ctx context.Context, userID, investmentID string) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND investment_id = ?", userID, investmentID).
		Delete(&Tracker{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete subscription: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotTracking
	}
	return nil
}

func (s *pgStore) SubscriptionsFor(ctx context.Context, investmentID string) ([]domain.Subscription, error) {
	var rows []Tracker
	err := s.db.WithContext(ctx).Where("investment_id = ?", investmentID).
		Order("created_at, user_id").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	out := make([]domain.Subscription, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Subscription{UserID: r.UserID, InvestmentID: r.InvestmentID, CreatedAt: r.CreatedAt})
	}
	return out, nil
}

func (s *pgStore) DeleteSubscriptionsFor(ctx context.Context, investmentID string) error {
	if err := s.db.WithContext(ctx).Where("investment_id = ?", investmentID).Delete(&Tracker{}).Error; err != nil {
		return fmt.Errorf("failed to delete subscriptions: %w", err)
	}
	return nil
}

func (s *pgStore) CreateTicket(ctx context.Context, t domain.Ticket) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now()
	}
	row := Ticket{ChannelID: t.ChannelID, UserID: t.UserID, Reason: string(t.Reason), CreatedAt: t.CreatedAt}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrTicketExists
		}
		return fmt.Errorf("failed to create ticket: %w", err)
	}
	return nil
}

func (s *pgStore) TicketByUser(ctx context.Context, userID string) (*domain.Ticket, error) {
	return s.ticketWhere(ctx, "user_id = ?", userID)
}

func (s *pgStore) TicketByChannel(ctx context.Context, channelID string) (*domain.Ticket, error) {
	return s.ticketWhere(ctx, "channel_id = ?", channelID)
}

func (s *pgStore) ticketWhere(ctx context.Context, query string, arg string) (*domain.Ticket, error) {
	var row Ticket
	err := s.db.WithContext(ctx).Where(query, arg).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return &domain.Ticket{
		UserID:    row.UserID,
		ChannelID: row.ChannelID,
		Reason:    domain.TicketReason(row.Reason),
		CreatedAt: row.CreatedAt,
	}, nil
}

func (s *pgStore) DeleteTicket(ctx context.Context, channelID string) error {
	if err := s.db.WithContext(ctx).Where("channel_id = ?", channelID).Delete(&Ticket{}).Error; err != nil {
		return fmt.Errorf("failed to delete ticket: %w", err)
	}
	return nil
}

func (s *pgStore) SaveRoom(ctx context.Context, r domain.Room) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}
	row := PrivateRoom{UserID: r.UserID, ChannelID: r.ChannelID, VIP: r.VIP, CreatedAt: r.CreatedAt}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"channel_id", "vip", "created_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save room: %w", err)
	}
	return nil
}

func (s *pgStore) RoomByUser(ctx context.Context, userID string) (*domain.Room, error) {
	var row PrivateRoom
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return &domain.Room{UserID: row.UserID, ChannelID: row.ChannelID, VIP: row.VIP, CreatedAt: row.CreatedAt}, nil
}

func (s *pgStore) DeleteRoom(ctx context.Context, userID string) error {
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&PrivateRoom{}).Error; err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	return nil
}

func (s *pgStore) ListRooms(ctx context.Context) ([]domain.Room, error) {
	var rows []PrivateRoom
	if err := s.db.WithContext(ctx).Order("created_at").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	out := make([]domain.Room, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Room{UserID: r.UserID, ChannelID: r.ChannelID, VIP: r.VIP, CreatedAt: r.CreatedAt})
	}
	return out, nil
}

func (s *pgStore) CreateFAQ(ctx context.Context, question, answer string) (*domain.FAQ, error) {
	now := s.now()
	row := FAQ{ID: ulid.MustNewDefault(now).String(), Question: question, Answer: answer, CreatedAt: now}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to create faq: %w", err)
	}
	return &domain.FAQ{ID: row.ID, Question: row.Question, Answer: row.Answer, CreatedAt: row.CreatedAt}, nil
}

func (s *pgStore) GetFAQ(ctx context.Context, id string) (*domain.FAQ, error) {
	var row FAQ
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get faq: %w", err)
	}
	return &domain.FAQ{ID: row.ID, Question: row.Question, Answer: row.Answer, CreatedAt: row.CreatedAt}, nil
}

func (s *pgStore) ListFAQs(ctx context.Context) ([]domain.FAQ, error) {
	var rows []FAQ
	if err := s.db.WithContext(ctx).Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list faqs: %w", err)
	}
	out := make([]domain.FAQ, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.FAQ{ID: r.ID, Question: r.Question, Answer: r.Answer, CreatedAt: r.CreatedAt})
	}
	return out, nil
}

func fromDomain(inv *domain.Investment) Investment {
	return Investment{
		ID:           inv.ID,
		Name:         inv.Name,
		Nation:       inv.Nation,
		Rating:       inv.Rating,
		Card:         inv.Card,
		Link:         inv.Link,
		Risk:         inv.Risk,
		ChannelID:    inv.ChannelID,
		MessageID:    inv.MessageID,
		PublisherID:  inv.PublisherID,
		ConsolePrice: inv.ConsolePrice,
		PCPrice:      inv.PCPrice,
		VIP:          inv.VIP,
		CreatedAt:    inv.CreatedAt,
	}
}

func (r *Investment) toDomain() *domain.Investment {
	return &domain.Investment{
		ID:           r.ID,
		Name:         r.Name,
		Nation:       r.Nation,
		Rating:       r.Rating,
		Card:         r.Card,
		Link:         r.Link,
		Risk:         r.Risk,
		ChannelID:    r.ChannelID,
		MessageID:    r.MessageID,
		PublisherID:  r.PublisherID,
		ConsolePrice: r.ConsolePrice,
		PCPrice:      r.PCPrice,
		VIP:          r.VIP,
		CreatedAt:    r.CreatedAt.UTC(),
	}
}
