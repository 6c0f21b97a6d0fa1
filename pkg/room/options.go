package room

import (
	"errors"
	"time"

	"tablepoker-server/pkg/holdem"
)

// Options are the table rules shared by every table
type Options struct {
	holdem.Options `yaml:",inline"`

	MinPlayers int `json:"minPlayers" yaml:"minPlayers" envconfig:"min_players"`
	MaxPlayers int `json:"maxPlayers" yaml:"maxPlayers" envconfig:"max_players"`
	// MinBuyInMultiple is how many big blinds a player needs to sit down
	MinBuyInMultiple int `json:"minBuyInMultiple" yaml:"minBuyInMultiple" envconfig:"min_buy_in_multiple"`

	ActionTimeout time.Duration `json:"actionTimeout" yaml:"actionTimeout" envconfig:"action_timeout"`
	StartDelay    time.Duration `json:"startDelay" yaml:"startDelay" envconfig:"start_delay"`
	NextHandDelay time.Duration `json:"nextHandDelay" yaml:"nextHandDelay" envconfig:"next_hand_delay"`

	// AdminIDs may end any table
	AdminIDs []string `json:"-" yaml:"adminIds" envconfig:"admin_ids"`
}

// DefaultOptions returns the standard 50/100 table
func DefaultOptions() Options {
	return Options{
		Options:          holdem.DefaultOptions(),
		MinPlayers:       2,
		MaxPlayers:       8,
		MinBuyInMultiple: 10,
		ActionTimeout:    30 * time.Second,
		StartDelay:       3 * time.Second,
		NextHandDelay:    5 * time.Second,
	}
}

// Validate returns an error if a table cannot run with the options
func (o Options) Validate() error {
	if err := o.Options.Validate(); err != nil {
		return err
	}

	if o.MinPlayers < 2 {
		return errors.New("min players must be at least 2")
	}

	if o.MaxPlayers < o.MinPlayers {
		return errors.New("max players must be >= min players")
	}

	// two hole cards each plus five on the board
	if o.MaxPlayers*2+5 > 52 {
		return errors.New("max players cannot be dealt from a single deck")
	}

	if o.MinBuyInMultiple < 1 {
		return errors.New("min buy-in multiple must be at least 1")
	}

	if o.ActionTimeout <= 0 {
		return errors.New("action timeout must be > 0")
	}

	return nil
}

// MinBuyIn is the smallest balance that can sit down
func (o Options) MinBuyIn() int {
	return o.BigBlind * o.MinBuyInMultiple
}

// IsAdmin returns true if the player may end any table
func (o Options) IsAdmin(playerID string) bool {
	for _, id := range o.AdminIDs {
		if id == playerID {
			return true
		}
	}

	return false
}
