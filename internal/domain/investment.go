package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// FoderCard is the card label of rating based listings
	FoderCard = "Foder"
	// NationGoldFoder and NationTOTW stand in for a nation on rating based listings
	NationGoldFoder = "Gold Foder"
	NationTOTW      = "TOTW Inform"
	// CheapestLink is the link stored for rating based listings
	CheapestLink = "https://www.futbin.com/stc/cheapest"
)

// Investment is one open speculative position on a tradeable in-game item
type Investment struct {
	ID          string
	Name        string
	Nation      string
	Rating      string
	Card        string
	Link        string
	Risk        string
	ChannelID   string
	MessageID   string
	PublisherID string
	// ConsolePrice and PCPrice are the offer prices computed when the listing opened
	ConsolePrice decimal.Decimal
	PCPrice      decimal.Decimal
	VIP          bool
	CreatedAt    time.Time
}

// Label is the short form shown in pickers, e.g. "Mbappe(91) - TOTW"
func (i *Investment) Label() string {
	return fmt.Sprintf("%s(%s) - %s", i.Name, i.Rating, i.Card)
}

// MessageURL links to the original listing
func (i *Investment) MessageURL(guildID string) string {
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guildID, i.ChannelID, i.MessageID)
}

// IsRatingListing reports whether the investment was opened from a rating/version query
func (i *Investment) IsRatingListing() bool {
	return i.Card == FoderCard
}

// Subscription is one user's opt-in to an investment's outcome
type Subscription struct {
	UserID       string
	InvestmentID string
	CreatedAt    time.Time
}

// Outcome is a terminal transition that announces a result
type Outcome string

const (
	OutcomeProfit    Outcome = "profit"
	OutcomeFirstExit Outcome = "first-exit"
	OutcomeEarlyExit Outcome = "early-exit"
)

// Valid reports whether o is a known outcome
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeProfit, OutcomeFirstExit, OutcomeEarlyExit:
		return true
	}
	return false
}

// VersionKind selects the rating based listing flavour
type VersionKind string

const (
	VersionGold VersionKind = "gold"
	VersionTOTW VersionKind = "totw"
)

// RiskLevel is one of the risk choices of the investment commands. Label is
// what the listing shows.
type RiskLevel struct {
	Name  string
	Label string
}

var RiskLevels = []RiskLevel{
	{Name: "low", Label: "🟢 low 🟢"},
	{Name: "medium", Label: "🟠 medium 🟠"},
	{Name: "high", Label: "🔴 high 🔴"},
	{Name: "very risky", Label: "⛔ very risky ⛔"},
}
