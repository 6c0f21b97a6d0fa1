package room

// Player is someone seated at a table
// The whole ledger balance is bought in when the player sits down.
type Player struct {
	id    string
	Name  string
	stack int
	// BuyIn is the stack the player sat down with
	BuyIn int
}

func newPlayer(id, name string, buyIn int) *Player {
	return &Player{
		id:    id,
		Name:  name,
		stack: buyIn,
		BuyIn: buyIn,
	}
}

// ID returns the chat identity of the player
func (p *Player) ID() string {
	return p.id
}

// Stack returns the chips in front of the player
func (p *Player) Stack() int {
	return p.stack
}

// AdjustStack moves chips to (positive) or from (negative) the player
func (p *Player) AdjustStack(amount int) {
	p.stack += amount
}

// Net is what the player has won or lost at the table
func (p *Player) Net() int {
	return p.stack - p.BuyIn
}

// PlayerState is the public view of a player
type PlayerState struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Stack   int    `json:"stack"`
	BuyIn   int    `json:"buyIn"`
	Seat    int    `json:"seat"`
	Leaving bool   `json:"leaving,omitempty"`
}
