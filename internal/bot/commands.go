package bot

import (
	"strconv"

	"github.com/bwmarrin/discordgo"

	"github.com/NadavMozeson/typescript-discord-bot/internal/domain"
)

// Command names
const (
	CmdInvestment       = "investment"
	CmdFoder            = "foder"
	CmdTOTW             = "totw"
	CmdProfit           = "profit"
	CmdFirstExit        = "first-exit"
	CmdExit             = "exit"
	CmdDeleteInvestment = "delete-investment"
	CmdOpenDM           = "open-dm"
	CmdFAQAdd           = "faq-add"
	CmdVIPSyncAll       = "vip-sync-all"
	CmdVIPUpdate        = "vip-update"
	CmdVIPHelp          = "vip-help"
)

// Option names
const (
	optPlayer   = "player"
	optRisk     = "risk"
	optDiscount = "discount"
	optRating   = "rating"
	optMessage  = "message"
	optUser     = "user"
	optAction   = "action"
	optQuestion = "question"
	optAnswer   = "answer"
)

const (
	minRating = 81
	maxRating = 91
)

// ownerOnly lists commands only guild owners may run
var ownerOnly = map[string]bool{
	CmdInvestment:       true,
	CmdFoder:            true,
	CmdTOTW:             true,
	CmdProfit:           true,
	CmdFirstExit:        true,
	CmdExit:             true,
	CmdDeleteInvestment: true,
	CmdOpenDM:           true,
	CmdFAQAdd:           true,
	CmdVIPSyncAll:       true,
	CmdVIPUpdate:        true,
	CmdVIPHelp:          true,
}

func riskChoices() []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(domain.RiskLevels))
	for _, r := range domain.RiskLevels {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: r.Name, Value: r.Label})
	}
	return choices
}

func ratingChoices() []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, maxRating-minRating+1)
	for r := minRating; r <= maxRating; r++ {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: strconv.Itoa(r), Value: r})
	}
	return choices
}

func riskOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        optRisk,
		Description: "Risk level",
		Required:    true,
		Choices:     riskChoices(),
	}
}

func discountOption() *discordgo.ApplicationCommandOption {
	zero := 0.0
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        optDiscount,
		Description: "How many coins below the current price to buy",
		Required:    true,
		MinValue:    &zero,
	}
}

func ratingCommand(name, description string) *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        name,
		Description: description,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        optRating,
				Description: "Rating",
				Required:    true,
				Choices:     ratingChoices(),
			},
			riskOption(),
			discountOption(),
		},
	}
}

func annotatedCommand(name, description string) *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        name,
		Description: description,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        optMessage,
				Description: "Text sent along with the announcement",
				Required:    true,
			},
		},
	}
}

// Commands returns every application command the bot registers per guild
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        CmdInvestment,
			Description: "Post a new investment in this channel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        optPlayer,
					Description: "Player name to search for",
					Required:    true,
				},
				riskOption(),
				discountOption(),
			},
		},
		ratingCommand(CmdFoder, "Post a new rated fodder investment in this channel"),
		ratingCommand(CmdTOTW, "Post a new TOTW fodder investment in this channel"),
		annotatedCommand(CmdProfit, "Announce the profit of an investment"),
		annotatedCommand(CmdFirstExit, "Announce a first exit of an investment"),
		annotatedCommand(CmdExit, "Announce an exit without profit"),
		{
			Name:        CmdDeleteInvestment,
			Description: "Delete an investment without announcing anything",
		},
		{
			Name:        CmdOpenDM,
			Description: "Open or close a private chat with a user",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        optUser,
					Description: "The user the private chat belongs to",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        optAction,
					Description: "Open or close the chat",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "open chat", Value: "open"},
						{Name: "close chat", Value: "close"},
					},
				},
			},
		},
		{
			Name:        CmdFAQAdd,
			Description: "Add a question to the FAQ",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: optQuestion, Description: "Question", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: optAnswer, Description: "Answer", Required: true},
			},
		},
		{
			Name:        CmdVIPSyncAll,
			Description: "Sync the premium role of every member now",
		},
		{
			Name:        CmdVIPUpdate,
			Description: "Sync the premium role of one user",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: optUser, Description: "User to sync", Required: true},
			},
		},
		{
			Name:        CmdVIPHelp,
			Description: "Post the premium role guide in this channel",
		},
	}
}

type optionMap = map[string]*discordgo.ApplicationCommandInteractionDataOption

// options indexes the options of a command by name
func options(data discordgo.ApplicationCommandInteractionData) optionMap {
	m := make(optionMap, len(data.Options))
	for _, opt := range data.Options {
		m[opt.Name] = opt
	}
	return m
}

func stringOption(opts optionMap, name string) string {
	if opt, ok := opts[name]; ok {
		if s, ok := opt.Value.(string); ok {
			return s
		}
	}
	return ""
}

// intOption reads an integer option. Gateway JSON delivers numbers as float64.
func intOption(opts optionMap, name string) int64 {
	opt, ok := opts[name]
	if !ok {
		return 0
	}
	switch v := opt.Value.(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

// userOption reads a user option as an id
func userOption(opts optionMap, name string) string {
	return stringOption(opts, name)
}
