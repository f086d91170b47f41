package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/NadavMozeson/typescript-discord-bot/internal/community"
	"github.com/NadavMozeson/typescript-discord-bot/internal/domain"
	"github.com/NadavMozeson/typescript-discord-bot/internal/investment"
	"github.com/NadavMozeson/typescript-discord-bot/internal/logger"
	"github.com/NadavMozeson/typescript-discord-bot/internal/selection"
	"github.com/NadavMozeson/typescript-discord-bot/internal/tracker"
)

// Replies shown to users
const (
	msgNotAuthorized  = "You are not authorized to use this command."
	msgNoResults      = "No players matched this search."
	msgPickPlayer     = "Pick the player for the new investment:"
	msgPickInvestment = "Pick the investment:"
	msgNoInvestments  = "There are no open investments."
	msgPosted         = "✅ The investment was posted."
	msgClosed         = "✅ The announcement was posted."
	msgDeleted        = "🗑️ The investment was deleted."
	msgIncomplete     = "Could not load complete data for this player. Please try again."
	msgExpired        = "This selection expired. Please run the command again."
	msgNotYours       = "This selection belongs to someone else."
	msgNotMember      = "Trackers are for premium members only."
	msgNotOpen        = "This investment is no longer open."
	msgRoleGranted    = "✅ Your premium role was granted."
	msgRoleMissing    = "We could not find an active membership linked to your account."
	msgUnknownFAQ     = "This question was removed."
)

// OnInteraction routes slash commands and component presses
func (b *Bot) OnInteraction(ctx context.Context, e *discordgo.InteractionCreate) error {
	i := e.Interaction
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		return b.onCommand(ctx, i)
	case discordgo.InteractionMessageComponent:
		return b.onComponent(ctx, i)
	}
	return nil
}

func (b *Bot) onCommand(ctx context.Context, i *discordgo.Interaction) error {
	data := i.ApplicationCommandData()
	user := interactionUser(i)
	if ownerOnly[data.Name] && !b.isOwner(user) {
		return b.reply(ctx, i, msgNotAuthorized)
	}
	opts := options(data)

	switch data.Name {
	case CmdInvestment:
		return b.startSearch(ctx, i, user, opts)
	case CmdFoder:
		return b.openRating(ctx, i, user, opts, domain.VersionGold)
	case CmdTOTW:
		return b.openRating(ctx, i, user, opts, domain.VersionTOTW)
	case CmdProfit:
		return b.startListPick(ctx, i, user, selection.ActionProfit, stringOption(opts, optMessage))
	case CmdFirstExit:
		return b.startListPick(ctx, i, user, selection.ActionFirstExit, stringOption(opts, optMessage))
	case CmdExit:
		return b.startListPick(ctx, i, user, selection.ActionEarlyExit, stringOption(opts, optMessage))
	case CmdDeleteInvestment:
		return b.startListPick(ctx, i, user, selection.ActionDelete, "")
	case CmdOpenDM:
		return b.openDM(ctx, i, opts)
	case CmdFAQAdd:
		return b.addFAQ(ctx, i, opts)
	case CmdVIPSyncAll:
		return b.syncAll(ctx, i)
	case CmdVIPUpdate:
		return b.updateUser(ctx, i, opts)
	case CmdVIPHelp:
		if _, err := b.chat.Send(ctx, i.ChannelID, community.HelpMessage()); err != nil {
			return err
		}
		return b.reply(ctx, i, "Posted.")
	}
	return nil
}

func (b *Bot) onComponent(ctx context.Context, i *discordgo.Interaction) error {
	data := i.MessageComponentData()
	id := data.CustomID
	user := interactionUser(i)

	if add, investmentID, ok := tracker.ParseButton(id); ok {
		return b.track(ctx, i, user, add, investmentID)
	}
	if token, ok := investment.ParsePicker(id, investment.SearchPickerPrefix); ok {
		return b.pickPlayer(ctx, i, user, token, data.Values)
	}
	if token, ok := investment.ParsePicker(id, investment.ListPickerPrefix); ok {
		return b.pickInvestment(ctx, i, user, token, data.Values)
	}

	switch {
	case strings.HasPrefix(id, investment.ConfirmDeletePrefix):
		if !b.isOwner(user) {
			return b.reply(ctx, i, msgNotAuthorized)
		}
		if err := b.deferReply(ctx, i); err != nil {
			return err
		}
		if err := b.investments.Delete(ctx, strings.TrimPrefix(id, investment.ConfirmDeletePrefix)); err != nil {
			return b.editFailure(ctx, i, err)
		}
		return b.edit(ctx, i, msgDeleted)

	case id == community.RequestRoleButton:
		granted, err := b.community.RequestRole(ctx, i.GuildID, user)
		if err != nil {
			return err
		}
		if granted {
			return b.reply(ctx, i, msgRoleGranted)
		}
		return b.reply(ctx, i, msgRoleMissing)

	case strings.HasPrefix(id, community.TicketCreatePrefix):
		reason, _ := community.ParseTicketReason(id)
		res, err := b.community.CreateTicket(ctx, user, reason)
		if err != nil {
			return err
		}
		if res.Existing {
			return b.reply(ctx, i, fmt.Sprintf("||<@%s>||\n**You already have an open ticket:**\n<#%s>", user, res.ChannelID))
		}
		return b.reply(ctx, i, fmt.Sprintf("||<@%s>||\n**Your ticket was opened:**\n<#%s>", user, res.ChannelID))

	case strings.HasPrefix(id, community.TicketClosePrefix):
		msg := community.ConfirmCloseMessage(strings.TrimPrefix(id, community.TicketClosePrefix))
		return b.reply(ctx, i, msg.Content, msg.Components...)

	case strings.HasPrefix(id, community.TicketConfirmPrefix):
		// the channel disappears with the ticket, so acknowledge first
		if err := b.deferReply(ctx, i); err != nil {
			return err
		}
		return b.community.CloseTicket(ctx, strings.TrimPrefix(id, community.TicketConfirmPrefix), user)

	case strings.HasPrefix(id, community.FAQClickPrefix):
		answer, err := b.community.Answer(ctx, id)
		if errors.Is(err, community.ErrUnknownFAQ) {
			return b.reply(ctx, i, msgUnknownFAQ)
		}
		if err != nil {
			return err
		}
		return b.reply(ctx, i, answer)
	}

	logger.DebugCtx(ctx, "Unhandled component", zap.String("custom_id", id))
	return nil
}

// startSearch looks the player up and offers the results as pickers
func (b *Bot) startSearch(ctx context.Context, i *discordgo.Interaction, user string, opts optionMap) error {
	if err := b.deferReply(ctx, i); err != nil {
		return err
	}
	results, err := b.investments.Search(ctx, stringOption(opts, optPlayer))
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return b.edit(ctx, i, msgNoResults)
	}

	urls := make([]string, len(results))
	for n, r := range results {
		urls[n] = r.URL
	}
	token, err := b.selections.Put(selection.InvestmentDraft{
		Risk:      stringOption(opts, optRisk),
		Discount:  intOption(opts, optDiscount),
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		UserID:    user,
		Results:   urls,
	})
	if err != nil {
		return err
	}
	return b.edit(ctx, i, msgPickPlayer, investment.SearchPickers(token, results)...)
}

// pickPlayer consumes the draft behind token and opens the chosen player
func (b *Bot) pickPlayer(ctx context.Context, i *discordgo.Interaction, user, token string, values []string) error {
	payload, ok := b.selections.TakeOnce(token)
	draft, isDraft := payload.(selection.InvestmentDraft)
	if !ok || !isDraft {
		return b.reply(ctx, i, msgExpired)
	}
	if draft.UserID != user {
		return b.reply(ctx, i, msgNotYours)
	}
	if len(values) == 0 {
		return b.reply(ctx, i, msgExpired)
	}
	index, err := strconv.Atoi(values[0])
	if err != nil || index < 0 || index >= len(draft.Results) {
		return b.reply(ctx, i, msgExpired)
	}

	if err := b.deferReply(ctx, i); err != nil {
		return err
	}
	_, err = b.investments.Open(ctx, investment.OpenRequest{
		Source:    investment.Source{URL: draft.Results[index]},
		Risk:      draft.Risk,
		Discount:  decimal.NewFromInt(draft.Discount),
		GuildID:   draft.GuildID,
		ChannelID: draft.ChannelID,
		UserID:    draft.UserID,
	})
	if err != nil {
		return b.editFailure(ctx, i, err)
	}
	return b.edit(ctx, i, msgPosted)
}

// openRating posts a cheapest-by-rating investment straight away
func (b *Bot) openRating(ctx context.Context, i *discordgo.Interaction, user string, opts optionMap, kind domain.VersionKind) error {
	if err := b.deferReply(ctx, i); err != nil {
		return err
	}
	_, err := b.investments.Open(ctx, investment.OpenRequest{
		Source:    investment.Source{Rating: int(intOption(opts, optRating)), Kind: kind},
		Risk:      stringOption(opts, optRisk),
		Discount:  decimal.NewFromInt(intOption(opts, optDiscount)),
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		UserID:    user,
	})
	if err != nil {
		return b.editFailure(ctx, i, err)
	}
	return b.edit(ctx, i, msgPosted)
}

// startListPick offers the open investments for a close or delete action
func (b *Bot) startListPick(ctx context.Context, i *discordgo.Interaction, user string, action selection.Action, annotation string) error {
	invs, err := b.investments.List(ctx)
	if err != nil {
		return err
	}
	if len(invs) == 0 {
		return b.reply(ctx, i, msgNoInvestments)
	}
	token, err := b.selections.Put(selection.ListPick{
		Action:     action,
		Annotation: annotation,
		GuildID:    i.GuildID,
		ChannelID:  i.ChannelID,
		UserID:     user,
	})
	if err != nil {
		return err
	}
	return b.reply(ctx, i, msgPickInvestment, investment.ListPickers(token, invs)...)
}

// pickInvestment consumes the pick behind token and runs its action
func (b *Bot) pickInvestment(ctx context.Context, i *discordgo.Interaction, user, token string, values []string) error {
	payload, ok := b.selections.TakeOnce(token)
	pick, isPick := payload.(selection.ListPick)
	if !ok || !isPick || len(values) == 0 {
		return b.reply(ctx, i, msgExpired)
	}
	if pick.UserID != user {
		return b.reply(ctx, i, msgNotYours)
	}
	investmentID := values[0]

	if pick.Action == selection.ActionDelete {
		msg, err := b.investments.ConfirmDelete(ctx, investmentID)
		if errors.Is(err, domain.ErrInvestmentNotFound) {
			return b.reply(ctx, i, msgNotOpen)
		}
		if err != nil {
			return err
		}
		return b.reply(ctx, i, msg.Content, msg.Components...)
	}

	outcome, ok := pick.Action.Outcome()
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownAction, pick.Action)
	}
	if err := b.deferReply(ctx, i); err != nil {
		return err
	}
	err := b.investments.Close(ctx, investment.CloseRequest{
		InvestmentID: investmentID,
		Outcome:      outcome,
		Annotation:   pick.Annotation,
	})
	if err != nil {
		return b.editFailure(ctx, i, err)
	}
	return b.edit(ctx, i, msgClosed)
}

func (b *Bot) track(ctx context.Context, i *discordgo.Interaction, user string, add bool, investmentID string) error {
	req := investment.TrackRequest{GuildID: i.GuildID, UserID: user, InvestmentID: investmentID}
	var (
		res investment.TrackResult
		err error
	)
	if add {
		res, err = b.investments.Track(ctx, req)
	} else {
		res, err = b.investments.Untrack(ctx, req)
	}
	switch {
	case errors.Is(err, domain.ErrNotMember):
		return b.reply(ctx, i, msgNotMember)
	case errors.Is(err, domain.ErrInvestmentNotFound):
		return b.reply(ctx, i, msgNotOpen)
	case err != nil:
		return err
	}
	return b.reply(ctx, i, res.Message())
}

// editFailure turns expected lifecycle errors into a reply and hands the rest to the boundary
func (b *Bot) editFailure(ctx context.Context, i *discordgo.Interaction, err error) error {
	switch {
	case errors.Is(err, domain.ErrIncompleteSnapshot):
		return b.edit(ctx, i, msgIncomplete)
	case errors.Is(err, domain.ErrInvestmentNotFound):
		return b.edit(ctx, i, msgNotOpen)
	}
	return err
}

func (b *Bot) openDM(ctx context.Context, i *discordgo.Interaction, opts optionMap) error {
	target := userOption(opts, optUser)
	if err := b.deferReply(ctx, i); err != nil {
		return err
	}
	if stringOption(opts, optAction) == "close" {
		closed, err := b.community.CloseRoom(ctx, target)
		if err != nil {
			return err
		}
		if !closed {
			return b.edit(ctx, i, fmt.Sprintf("<@%s> has no private chat.", target))
		}
		return b.edit(ctx, i, fmt.Sprintf("Closed the private chat of <@%s>.", target))
	}
	channelID, err := b.community.OpenRoom(ctx, target, false)
	if err != nil {
		return err
	}
	return b.edit(ctx, i, fmt.Sprintf("Private chat of <@%s>: <#%s>", target, channelID))
}

func (b *Bot) addFAQ(ctx context.Context, i *discordgo.Interaction, opts optionMap) error {
	if err := b.deferReply(ctx, i); err != nil {
		return err
	}
	if _, err := b.community.AddFAQ(ctx, stringOption(opts, optQuestion), stringOption(opts, optAnswer)); err != nil {
		return err
	}
	return b.edit(ctx, i, "The question was added to the FAQ.")
}

func (b *Bot) syncAll(ctx context.Context, i *discordgo.Interaction) error {
	if err := b.deferReply(ctx, i); err != nil {
		return err
	}
	report, err := b.community.SyncAll(ctx)
	if err != nil {
		return err
	}
	return b.edit(ctx, i, fmt.Sprintf("Synced %d members: %d roles granted, %d removed.", report.Members, report.Granted, report.Revoked))
}

func (b *Bot) updateUser(ctx context.Context, i *discordgo.Interaction, opts optionMap) error {
	target := userOption(opts, optUser)
	if err := b.deferReply(ctx, i); err != nil {
		return err
	}
	member, err := b.community.UpdateUser(ctx, target)
	if err != nil {
		return err
	}
	if member {
		return b.edit(ctx, i, fmt.Sprintf("<@%s> is a premium member, roles granted.", target))
	}
	return b.edit(ctx, i, fmt.Sprintf("<@%s> has no active membership, roles removed.", target))
}
