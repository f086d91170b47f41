package selection

import "github.com/NadavMozeson/typescript-discord-bot/internal/domain"

// Payload is the pending choice a token stands for. The set of shapes is closed.
type Payload interface {
	selectionPayload()
}

// InvestmentDraft remembers a creation request while the user picks the product
type InvestmentDraft struct {
	Risk      string
	Discount  int64
	GuildID   string
	ChannelID string
	UserID    string
	// Results holds the search result URLs the picker offered, indexed by option value
	Results []string
}

// Action is what a list pick will do with the chosen investment
type Action string

const (
	ActionProfit    Action = "profit"
	ActionFirstExit Action = "first-exit"
	ActionEarlyExit Action = "early-exit"
	ActionDelete    Action = "delete"
)

// Outcome maps a closing action to its lifecycle outcome
func (a Action) Outcome() (domain.Outcome, bool) {
	switch a {
	case ActionProfit:
		return domain.OutcomeProfit, true
	case ActionFirstExit:
		return domain.OutcomeFirstExit, true
	case ActionEarlyExit:
		return domain.OutcomeEarlyExit, true
	}
	return "", false
}

// ListPick remembers a close or delete request while the user picks the investment
type ListPick struct {
	Action     Action
	Annotation string
	GuildID    string
	ChannelID  string
	UserID     string
}

func (InvestmentDraft) selectionPayload() {}
func (ListPick) selectionPayload()        {}
