package room

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"tablepoker-server/pkg/holdem"
)

// Messenger delivers table output to the chat
// Failures are logged by the table and never change game state.
type Messenger interface {
	// Post sends a message to a channel or thread and returns the message ID
	Post(ctx context.Context, channelID, text string) (string, error)
	// Edit replaces the text of a previously posted message
	Edit(ctx context.Context, channelID, messageID, text string) error
	// DirectMessage sends a message only the player can see
	DirectMessage(ctx context.Context, playerID, text string) error
	// CreateThread opens a discussion thread under the channel and returns its ID
	CreateThread(ctx context.Context, channelID, name string) (string, error)
}

// ActionPrompter is implemented by messengers that can render action controls
// Messengers without it receive the prompt's text through Post.
type ActionPrompter interface {
	PromptAction(ctx context.Context, channelID string, prompt TurnPrompt) error
}

// raiseMultiples are the raise sizes offered, as multiples of the minimum raise
var raiseMultiples = []int{1, 2, 4}

// TurnPrompt asks a player to act
type TurnPrompt struct {
	holdem.Prompt
	Name       string        `json:"name"`
	HandNumber int           `json:"handNumber"`
	Timeout    time.Duration `json:"timeout"`
	// Raises are the raise increments the player can afford, smallest first
	Raises []int `json:"raises"`
}

func newTurnPrompt(p holdem.Prompt, name string, handNumber int, timeout time.Duration) TurnPrompt {
	prompt := TurnPrompt{
		Prompt:     p,
		Name:       name,
		HandNumber: handNumber,
		Timeout:    timeout,
		Raises:     make([]int, 0, len(raiseMultiples)),
	}

	if p.CanRaise {
		for _, m := range raiseMultiples {
			if raise := p.MinRaise * m; p.ToCall+raise <= p.Stack {
				prompt.Raises = append(prompt.Raises, raise)
			}
		}
	}

	return prompt
}

// Actions returns the actions available to the player
func (t TurnPrompt) Actions() []holdem.Action {
	actions := []holdem.Action{holdem.Fold}
	if t.ToCall == 0 {
		actions = append(actions, holdem.Check)
	} else if t.Stack > t.ToCall {
		actions = append(actions, holdem.Call)
	}

	if len(t.Raises) > 0 {
		actions = append(actions, holdem.Raise)
	}

	return append(actions, holdem.AllIn)
}

func (t TurnPrompt) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s, it's your turn (%s)\n", t.Name, t.Timeout)
	fmt.Fprintf(&sb, "Pot: $%d | To call: $%d | Your stack: $%d", t.Pot, t.ToCall, t.Stack)
	if len(t.Raises) > 0 {
		raises := make([]string, len(t.Raises))
		for i, r := range t.Raises {
			raises[i] = fmt.Sprintf("$%d", r)
		}

		fmt.Fprintf(&sb, "\nRaise by: %s", strings.Join(raises, ", "))
	}

	return sb.String()
}

// LogMessenger writes every message to the log
// It is used when no chat transport is configured.
type LogMessenger struct{}

// Post logs the message
func (LogMessenger) Post(_ context.Context, channelID, text string) (string, error) {
	id := uuid.New().String()
	logrus.WithFields(logrus.Fields{"channelID": channelID, "messageID": id}).Info(text)
	return id, nil
}

// Edit logs the new text
func (LogMessenger) Edit(_ context.Context, channelID, messageID, text string) error {
	logrus.WithFields(logrus.Fields{"channelID": channelID, "messageID": messageID}).Info(text)
	return nil
}

// DirectMessage logs the message at debug level so hole cards stay out of normal logs
func (LogMessenger) DirectMessage(_ context.Context, playerID, text string) error {
	logrus.WithField("playerID", playerID).Debug(text)
	return nil
}

// CreateThread returns a made up thread ID
func (LogMessenger) CreateThread(_ context.Context, channelID, name string) (string, error) {
	id := uuid.New().String()
	logrus.WithFields(logrus.Fields{"channelID": channelID, "threadID": id}).Infof("created thread %s", name)
	return id, nil
}
