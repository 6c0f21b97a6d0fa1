package mux

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"tablepoker-server/pkg/room"
)

// feed event types
const (
	EventSubscribed = "subscribed"
	EventPost       = "post"
	EventEdit       = "edit"
	EventDirect     = "direct"
	EventPrompt     = "prompt"
	EventError      = "error"
)

// FeedEvent is sent to websocket subscribers
type FeedEvent struct {
	Type      string           `json:"type"`
	ChannelID string           `json:"channelId"`
	MessageID string           `json:"messageId,omitempty"`
	Text      string           `json:"text,omitempty"`
	Prompt    *room.TurnPrompt `json:"prompt,omitempty"`
}

type subscriber struct {
	channelID string
	playerID  string
	send      chan *FeedEvent
}

// Feed is a room.Messenger that copies table output to websocket subscribers
// Every message is passed on to the wrapped messenger.
type Feed struct {
	room.Messenger

	mu sync.RWMutex
	// threads maps a game thread back to the channel it was opened in
	threads     map[string]string
	subscribers map[*subscriber]bool
}

// NewFeed wraps the messenger
func NewFeed(m room.Messenger) *Feed {
	return &Feed{
		Messenger:   m,
		threads:     make(map[string]string),
		subscribers: make(map[*subscriber]bool),
	}
}

func (f *Feed) subscribe(channelID, playerID string) *subscriber {
	s := &subscriber{
		channelID: channelID,
		playerID:  playerID,
		send:      make(chan *FeedEvent, 64),
	}

	f.mu.Lock()
	f.subscribers[s] = true
	f.mu.Unlock()

	return s
}

func (f *Feed) unsubscribe(s *subscriber) {
	f.mu.Lock()
	delete(f.subscribers, s)
	f.mu.Unlock()
}

// tableChannel resolves a thread to its channel
func (f *Feed) tableChannel(channelID string) string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if parent, ok := f.threads[channelID]; ok {
		return parent
	}

	return channelID
}

// publish sends the event to every subscriber matching filter
// A subscriber that has fallen behind misses the event.
func (f *Feed) publish(event *FeedEvent, filter func(s *subscriber) bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for s := range f.subscribers {
		if !filter(s) {
			continue
		}

		select {
		case s.send <- event:
		default:
			logrus.WithFields(logrus.Fields{"channelID": s.channelID, "playerID": s.playerID}).Warn("dropped feed event")
		}
	}
}

func (f *Feed) publishChannel(event *FeedEvent) {
	f.publish(event, func(s *subscriber) bool {
		return s.channelID == event.ChannelID
	})
}

// Post passes the message on and publishes it to the table's subscribers
func (f *Feed) Post(ctx context.Context, channelID, text string) (string, error) {
	id, err := f.Messenger.Post(ctx, channelID, text)
	if err != nil {
		return "", err
	}

	f.publishChannel(&FeedEvent{Type: EventPost, ChannelID: f.tableChannel(channelID), MessageID: id, Text: text})
	return id, nil
}

// Edit passes the edit on and publishes it to the table's subscribers
func (f *Feed) Edit(ctx context.Context, channelID, messageID, text string) error {
	if err := f.Messenger.Edit(ctx, channelID, messageID, text); err != nil {
		return err
	}

	f.publishChannel(&FeedEvent{Type: EventEdit, ChannelID: f.tableChannel(channelID), MessageID: messageID, Text: text})
	return nil
}

// DirectMessage passes the message on and publishes it only to the player's own connections
func (f *Feed) DirectMessage(ctx context.Context, playerID, text string) error {
	if err := f.Messenger.DirectMessage(ctx, playerID, text); err != nil {
		return err
	}

	f.publish(&FeedEvent{Type: EventDirect, Text: text}, func(s *subscriber) bool {
		return s.playerID == playerID
	})

	return nil
}

// CreateThread opens the thread and remembers which table it belongs to
func (f *Feed) CreateThread(ctx context.Context, channelID, name string) (string, error) {
	threadID, err := f.Messenger.CreateThread(ctx, channelID, name)
	if err != nil {
		return "", err
	}

	f.mu.Lock()
	f.threads[threadID] = channelID
	f.mu.Unlock()

	return threadID, nil
}

// PromptAction publishes the prompt, then uses the wrapped messenger's controls or posts the prompt's text
func (f *Feed) PromptAction(ctx context.Context, channelID string, prompt room.TurnPrompt) error {
	f.publishChannel(&FeedEvent{Type: EventPrompt, ChannelID: f.tableChannel(channelID), Prompt: &prompt})

	if prompter, ok := f.Messenger.(room.ActionPrompter); ok {
		return prompter.PromptAction(ctx, channelID, prompt)
	}

	_, err := f.Messenger.Post(ctx, channelID, prompt.String())
	return err
}
