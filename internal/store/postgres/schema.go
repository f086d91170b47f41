package postgres

import (
	"time"

	"github.com/shopspring/decimal"
)

// Investment table
type Investment struct {
	ID           string          `gorm:"type:varchar(26);primaryKey"`
	Name         string          `gorm:"type:text;not null"`
	Nation       string          `gorm:"type:text;not null;default:''"`
	Rating       string          `gorm:"type:varchar(8);not null;default:''"`
	Card         string          `gorm:"type:text;not null;default:''"`
	Link         string          `gorm:"type:text;not null;default:''"`
	Risk         string          `gorm:"type:varchar(32);not null;default:''"`
	ChannelID    string          `gorm:"type:varchar(32);not null;uniqueIndex:idx_investments_message"`
	MessageID    string          `gorm:"type:varchar(32);not null;uniqueIndex:idx_investments_message"`
	PublisherID  string          `gorm:"type:varchar(32);not null;default:''"`
	ConsolePrice decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	PCPrice      decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	VIP          bool            `gorm:"not null;default:false"`
	CreatedAt    time.Time       `gorm:"not null"`
}

func (Investment) TableName() string {
	return "investments"
}

// Tracker table, one row per subscription
type Tracker struct {
	UserID       string    `gorm:"type:varchar(32);primaryKey"`
	InvestmentID string    `gorm:"type:varchar(26);primaryKey;index:idx_trackers_investment"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (Tracker) TableName() string {
	return "trackers"
}

// Ticket table
type Ticket struct {
	ChannelID string    `gorm:"type:varchar(32);primaryKey"`
	UserID    string    `gorm:"type:varchar(32);not null;uniqueIndex"`
	Reason    string    `gorm:"type:varchar(16);not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (Ticket) TableName() string {
	return "tickets"
}

// PrivateRoom table
type PrivateRoom struct {
	UserID    string    `gorm:"type:varchar(32);primaryKey"`
	ChannelID string    `gorm:"type:varchar(32);not null"`
	VIP       bool      `gorm:"not null;default:true"`
	CreatedAt time.Time `gorm:"not null"`
}

func (PrivateRoom) TableName() string {
	return "private_rooms"
}

// FAQ table
type FAQ struct {
	ID        string    `gorm:"type:varchar(26);primaryKey"`
	Question  string    `gorm:"type:text;not null"`
	Answer    string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (FAQ) TableName() string {
	return "faqs"
}

// Models lists every table for AutoMigrate
func Models() []any {
	return []any{&Investment{}, &Tracker{}, &Ticket{}, &PrivateRoom{}, &FAQ{}}
}
