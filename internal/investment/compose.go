package investment

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"github.com/NadavMozeson/typescript-discord-bot/internal/config"
	"github.com/NadavMozeson/typescript-discord-bot/internal/domain"
	"github.com/NadavMozeson/typescript-discord-bot/internal/fetcher"
)

// Component id prefixes owned by the investment flows
const (
	SearchPickerPrefix  = "new_investment_pick_player_"
	ListPickerPrefix    = "investment_pick_"
	ConfirmDeletePrefix = "confirm_delete_inv_"
)

const (
	// MaxMenus is the number of select menus one message can hold
	MaxMenus = 5
	// MaxOptions per select menu
	MaxOptions = 20

	everyone = "**||@everyone||**"
)

type composer struct {
	emoji      config.EmojiConfig
	premiumURL string
}

func title(flag, name, rating string) string {
	parts := []string{flag, strings.ToUpper(name)}
	if rating != "" {
		parts = append(parts, rating)
	}
	parts = append(parts, flag)
	return strings.Join(parts, " ")
}

func (c composer) priceLines(console, pc string) string {
	return fmt.Sprintf("%s%s **:** %s %s\n%s **:** %s %s\n",
		c.emoji.XBox, c.emoji.PS, console, c.emoji.Coins,
		c.emoji.PC, pc, c.emoji.Coins)
}

// opening is the listing announcement
func (c composer) opening(inv *domain.Investment, flag, console, pc string) string {
	var b strings.Builder
	b.WriteString("## " + title(flag, inv.Name, inv.Rating) + "\n\n")
	b.WriteString(c.priceLines(console, pc))
	b.WriteString(inv.Risk + "\n")
	fmt.Fprintf(&b, "||<@%s> **investment publisher** ||\n", inv.PublisherID)
	b.WriteString(everyone)
	return b.String()
}

// profit announces a closed position with a gain per platform
func (c composer) profit(inv *domain.Investment, flag, console, pc, annotation string) string {
	var b strings.Builder
	b.WriteString("## " + title(flag, inv.Name, inv.Rating) + "\n\n")
	b.WriteString(c.priceLines(console, pc))
	b.WriteString(annotation + "\n")
	if inv.VIP {
		b.WriteString("\n**:money_with_wings: This investment was posted for premium members only :money_with_wings:**\n")
		b.WriteString("How can you join?\n")
		b.WriteString("All the details here :point_down:\n")
		if c.premiumURL != "" {
			b.WriteString(c.premiumURL + "\n")
		}
	}
	b.WriteString("\n" + everyone)
	return b.String()
}

// exit announces a first or early exit
func (c composer) exit(outcome domain.Outcome, inv *domain.Investment, flag, annotation string) string {
	heading := "## time to sell"
	if outcome == domain.OutcomeFirstExit {
		heading = "## ✅ first exit ✅"
	}
	return heading + "\n### " + title(flag, inv.Name, inv.Rating) + "\n" + annotation + "\n" + everyone
}

func confirmDeleteButtons(investmentID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.Button{CustomID: ConfirmDeletePrefix + investmentID, Label: "Confirm delete", Style: discordgo.DangerButton},
	}}}
}

// SearchPickers renders search results as select menus. Option values index into the results.
func SearchPickers(token string, results []fetcher.SearchResult) []discordgo.MessageComponent {
	options := make([]discordgo.SelectMenuOption, 0, len(results))
	for i, r := range results {
		options = append(options, discordgo.SelectMenuOption{Label: r.Label(), Value: strconv.Itoa(i)})
	}
	return pickers(SearchPickerPrefix+token, "Search results", options)
}

// ListPickers renders open investments as select menus. Option values are investment ids.
func ListPickers(token string, invs []*domain.Investment) []discordgo.MessageComponent {
	options := make([]discordgo.SelectMenuOption, 0, len(invs))
	for _, inv := range invs {
		options = append(options, discordgo.SelectMenuOption{Label: truncate(inv.Label(), fetcher.MaxLabelLength), Value: inv.ID})
	}
	return pickers(ListPickerPrefix+token, "Open investments", options)
}

func pickers(idPrefix, placeholder string, options []discordgo.SelectMenuOption) []discordgo.MessageComponent {
	var rows []discordgo.MessageComponent
	for i := 0; i < len(options) && len(rows) < MaxMenus; i += MaxOptions {
		end := min(i+MaxOptions, len(options))
		menu := discordgo.SelectMenu{
			MenuType:    discordgo.StringSelectMenu,
			CustomID:    fmt.Sprintf("%s_%d", idPrefix, len(rows)),
			Placeholder: fmt.Sprintf("%s %d", placeholder, len(rows)+1),
			Options:     options[i:end],
		}
		rows = append(rows, discordgo.ActionsRow{Components: []discordgo.MessageComponent{menu}})
	}
	return rows
}

// ParsePicker returns the selection token of a picker custom id built with prefix
func ParsePicker(customID, prefix string) (string, bool) {
	rest, ok := strings.CutPrefix(customID, prefix)
	if !ok {
		return "", false
	}
	idx := strings.LastIndexByte(rest, '_')
	if idx <= 0 {
		return "", false
	}
	if _, err := strconv.Atoi(rest[idx+1:]); err != nil {
		return "", false
	}
	return rest[:idx], true
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit-3]) + "..."
}
