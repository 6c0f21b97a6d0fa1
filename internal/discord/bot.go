package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"

	"tablepoker-server/pkg/room"
)

// subcommands of /poker
const (
	cmdJoin  = "join"
	cmdLeave = "leave"
	cmdStart = "start"
	cmdEnd   = "end"
	cmdState = "state"
)

// Commands are the application commands the bot registers
var Commands = []*discordgo.ApplicationCommand{
	{
		Name:        "poker",
		Description: "Play Texas Hold'em",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: cmdJoin, Description: "Join the table in this channel, or open one"},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: cmdLeave, Description: "Leave the table after the current hand"},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: cmdStart, Description: "Start the game"},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: cmdEnd, Description: "End the game and settle every stack"},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: cmdState, Description: "Show the table"},
		},
	},
}

// Bot turns Discord interactions into table operations
type Bot struct {
	messenger *Messenger
	pitBoss   *room.PitBoss
}

// NewBot returns a bot that answers through the messenger's session
func NewBot(m *Messenger, pitBoss *room.PitBoss) *Bot {
	return &Bot{
		messenger: m,
		pitBoss:   pitBoss,
	}
}

// RegisterCommands replaces the bot's application commands
// An empty guildID registers them globally.
func (b *Bot) RegisterCommands(appID, guildID string) error {
	_, err := b.messenger.session.ApplicationCommandBulkOverwrite(appID, guildID, Commands)
	return err
}

// HandleInteraction is added to the session with AddHandler
func (b *Bot) HandleInteraction(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	b.handle(context.Background(), i.Interaction)
}

func (b *Bot) handle(ctx context.Context, i *discordgo.Interaction) {
	user := interactionUser(i)
	if user == nil {
		return
	}

	channelID := b.messenger.tableChannel(i.ChannelID)
	log := logrus.WithFields(logrus.Fields{"channelID": channelID, "playerID": user.ID})

	var msg string
	var err error

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		msg, err = b.command(ctx, i, channelID, user)
	case discordgo.InteractionMessageComponent:
		msg, err = b.component(ctx, i, channelID, user)
	default:
		return
	}

	if err != nil {
		if room.IsUserError(err) {
			msg = err.Error()
		} else {
			log.WithError(err).Error("could not handle interaction")
			msg = "Something went wrong. Try again in a moment."
		}
	}

	b.respond(i, msg)
}

func (b *Bot) command(ctx context.Context, i *discordgo.Interaction, channelID string, user *discordgo.User) (string, error) {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return "", fmt.Errorf("missing subcommand for /%s", data.Name)
	}

	switch sub := data.Options[0].Name; sub {
	case cmdJoin:
		return b.pitBoss.Join(ctx, channelID, user.ID, displayName(i, user))
	case cmdLeave:
		return b.pitBoss.Leave(ctx, channelID, user.ID)
	case cmdStart:
		return b.pitBoss.Start(ctx, channelID, user.ID)
	case cmdEnd:
		return b.pitBoss.End(ctx, channelID, user.ID)
	case cmdState:
		state, err := b.pitBoss.State(ctx, channelID)
		if err != nil {
			return "", err
		}

		return formatState(state), nil
	default:
		return "", fmt.Errorf("unknown subcommand: %s", sub)
	}
}

func (b *Bot) component(ctx context.Context, i *discordgo.Interaction, channelID string, user *discordgo.User) (string, error) {
	action, amount, err := parseCustomID(i.MessageComponentData().CustomID)
	if err != nil {
		return "", err
	}

	return b.pitBoss.Act(ctx, channelID, user.ID, action, amount)
}

// respond answers only the player who interacted
func (b *Bot) respond(i *discordgo.Interaction, msg string) {
	if err := b.messenger.session.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: msg,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}); err != nil {
		logrus.WithError(err).WithField("channelID", i.ChannelID).Error("could not respond to interaction")
	}
}

func interactionUser(i *discordgo.Interaction) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}

	return i.User
}

func displayName(i *discordgo.Interaction, user *discordgo.User) string {
	if i.Member != nil && i.Member.Nick != "" {
		return i.Member.Nick
	}

	return user.Username
}

func formatState(s *room.TableState) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**Table** (%s, %d hands played)\n", s.Status, s.HandCount)
	for _, p := range s.Players {
		fmt.Fprintf(&sb, "%d. %s - $%d", p.Seat+1, p.Name, p.Stack)
		if p.ID == s.Dealer {
			sb.WriteString(" (dealer)")
		}

		if p.Leaving {
			sb.WriteString(" (leaving)")
		}

		sb.WriteString("\n")
	}

	for _, p := range s.Waitlist {
		fmt.Fprintf(&sb, "Waiting: %s - $%d\n", p.Name, p.Stack)
	}

	if h := s.Hand; h != nil && h.Result == nil {
		board := "-"
		if len(h.Community) > 0 {
			board = h.Community.String()
		}

		fmt.Fprintf(&sb, "Hand #%d, %s. Pot: $%d. Board: %s", h.Number, h.Phase, h.Pot, board)
		if h.Actor != "" {
			fmt.Fprintf(&sb, ". Waiting on <@%s>", h.Actor)
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}
