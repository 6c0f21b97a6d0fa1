package discord

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"

	"tablepoker-server/pkg/holdem"
	"tablepoker-server/pkg/room"
)

// threadArchiveMinutes is how long an idle game thread stays open
const threadArchiveMinutes = 60

// session is the part of *discordgo.Session the bot uses
type session interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEdit(channelID, messageID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ThreadStart(channelID, name string, typ discordgo.ChannelType, archiveDuration int, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	ApplicationCommandBulkOverwrite(appID, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// Messenger delivers table output to Discord
type Messenger struct {
	session session

	mu sync.RWMutex
	// threads maps a game thread back to the channel the table lives in
	threads map[string]string
}

// NewMessenger returns a messenger that talks through the session
func NewMessenger(s session) *Messenger {
	return &Messenger{
		session: s,
		threads: make(map[string]string),
	}
}

// Post sends a message to the channel
func (m *Messenger) Post(ctx context.Context, channelID, text string) (string, error) {
	msg, err := m.session.ChannelMessageSend(channelID, text, discordgo.WithContext(ctx))
	if err != nil {
		return "", errors.Wrap(err, "could not send message")
	}

	return msg.ID, nil
}

// Edit replaces the text of a message
func (m *Messenger) Edit(ctx context.Context, channelID, messageID, text string) error {
	_, err := m.session.ChannelMessageEdit(channelID, messageID, text, discordgo.WithContext(ctx))
	return errors.Wrap(err, "could not edit message")
}

// DirectMessage opens a DM channel with the player and sends the message there
func (m *Messenger) DirectMessage(ctx context.Context, playerID, text string) error {
	ch, err := m.session.UserChannelCreate(playerID, discordgo.WithContext(ctx))
	if err != nil {
		return errors.Wrap(err, "could not open DM channel")
	}

	_, err = m.session.ChannelMessageSend(ch.ID, text, discordgo.WithContext(ctx))
	return errors.Wrap(err, "could not send DM")
}

// CreateThread starts a public thread in the channel
func (m *Messenger) CreateThread(ctx context.Context, channelID, name string) (string, error) {
	ch, err := m.session.ThreadStart(channelID, name, discordgo.ChannelTypeGuildPublicThread, threadArchiveMinutes, discordgo.WithContext(ctx))
	if err != nil {
		return "", errors.Wrap(err, "could not start thread")
	}

	m.mu.Lock()
	m.threads[ch.ID] = channelID
	m.mu.Unlock()

	return ch.ID, nil
}

// tableChannel returns the channel a table is keyed by when an interaction comes from its thread
func (m *Messenger) tableChannel(channelID string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if parent, ok := m.threads[channelID]; ok {
		return parent
	}

	return channelID
}

// PromptAction posts the prompt with a button for every action the player can take
func (m *Messenger) PromptAction(ctx context.Context, channelID string, prompt room.TurnPrompt) error {
	_, err := m.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:    fmt.Sprintf("<@%s> %s", prompt.PlayerID, prompt),
		Components: actionComponents(prompt),
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Users: []string{prompt.PlayerID},
		},
	}, discordgo.WithContext(ctx))

	return errors.Wrap(err, "could not send prompt")
}

func actionComponents(prompt room.TurnPrompt) []discordgo.MessageComponent {
	actions := discordgo.ActionsRow{}
	raises := discordgo.ActionsRow{}

	for _, action := range prompt.Actions() {
		switch action {
		case holdem.Fold:
			actions.Components = append(actions.Components, button("Fold", discordgo.DangerButton, customID(holdem.Fold, 0)))
		case holdem.Check:
			actions.Components = append(actions.Components, button("Check", discordgo.SecondaryButton, customID(holdem.Check, 0)))
		case holdem.Call:
			actions.Components = append(actions.Components, button(fmt.Sprintf("Call $%d", prompt.ToCall), discordgo.PrimaryButton, customID(holdem.Call, 0)))
		case holdem.AllIn:
			actions.Components = append(actions.Components, button(fmt.Sprintf("All-in $%d", prompt.Stack), discordgo.DangerButton, customID(holdem.AllIn, 0)))
		case holdem.Raise:
			for _, amount := range prompt.Raises {
				raises.Components = append(raises.Components, button(fmt.Sprintf("Raise $%d", amount), discordgo.SuccessButton, customID(holdem.Raise, amount)))
			}
		}
	}

	components := []discordgo.MessageComponent{actions}
	if len(raises.Components) > 0 {
		components = append(components, raises)
	}

	return components
}

func button(label string, style discordgo.ButtonStyle, id string) discordgo.Button {
	return discordgo.Button{Label: label, Style: style, CustomID: id}
}

const customIDPrefix = "poker:"

func customID(action holdem.Action, amount int) string {
	if action == holdem.Raise {
		return fmt.Sprintf("%s%s:%d", customIDPrefix, action, amount)
	}

	return customIDPrefix + string(action)
}

// parseCustomID returns the action a button stands for
func parseCustomID(id string) (holdem.Action, int, error) {
	if !strings.HasPrefix(id, customIDPrefix) {
		return "", 0, fmt.Errorf("unknown component: %s", id)
	}

	parts := strings.Split(strings.TrimPrefix(id, customIDPrefix), ":")
	action, err := holdem.ActionFromString(parts[0])
	if err != nil {
		return "", 0, err
	}

	amount := 0
	if action == holdem.Raise {
		if len(parts) != 2 {
			return "", 0, fmt.Errorf("raise is missing an amount: %s", id)
		}

		if amount, err = strconv.Atoi(parts[1]); err != nil {
			return "", 0, errors.Wrapf(err, "invalid raise amount: %s", parts[1])
		}
	}

	return action, amount, nil
}
