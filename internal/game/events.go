package game

import "time"

// EventType identifies a game event
type EventType string

const (
	EventTypeRoundStart    EventType = "round_start"
	EventTypePlayerAction  EventType = "player_action"
	EventTypeForcedFold    EventType = "forced_fold"
	EventTypeShowdown      EventType = "showdown"
	EventTypeRoundResolved EventType = "round_resolved"
	EventTypeSwaraStart    EventType = "swara_start"
)

// Event represents anything that happens during a game that outside
// observers may care about. Events are published after a state
// transition commits; delivery is fire-and-forget and never awaited.
type Event interface {
	EventType() EventType
	Timestamp() time.Time
}

// PlayerInfo is a public snapshot of a player carried in events. Hands
// are only included once revealed.
type PlayerInfo struct {
	Seat         int
	ID           string
	Name         string
	Chips        int
	Folded       bool
	Blind        bool
	CommittedBet int
	Hand         []string // revealed cards only
}

// RoundStartEvent is published when cards have been dealt and betting
// is about to begin.
type RoundStartEvent struct {
	RoundID    string
	DealerSeat int
	BaseBet    int
	Swara      bool
	Players    []PlayerInfo
	timestamp  time.Time
}

func (e RoundStartEvent) EventType() EventType { return EventTypeRoundStart }
func (e RoundStartEvent) Timestamp() time.Time { return e.timestamp }

// PlayerActionEvent is published after a player's action is applied.
type PlayerActionEvent struct {
	RoundID   string
	Seat      int
	Name      string
	Action    ActionType
	Paid      int // chips actually moved by this action
	Pot       int // pot after the action
	Bet       int // table bet after the action
	timestamp time.Time
}

func (e PlayerActionEvent) EventType() EventType { return EventTypePlayerAction }
func (e PlayerActionEvent) Timestamp() time.Time { return e.timestamp }

// ForcedFoldEvent is published when a player is folded because a
// required payment exceeded their chips.
type ForcedFoldEvent struct {
	RoundID   string
	Seat      int
	Name      string
	Required  int
	Chips     int
	timestamp time.Time
}

func (e ForcedFoldEvent) EventType() EventType { return EventTypeForcedFold }
func (e ForcedFoldEvent) Timestamp() time.Time { return e.timestamp }

// ShowdownEvent is published after a forced two-way comparison.
type ShowdownEvent struct {
	RoundID        string
	ChallengerSeat int
	OpponentSeat   int
	ChallengerWon  bool // ties count against the challenger
	Scores         map[int]int
	timestamp      time.Time
}

func (e ShowdownEvent) EventType() EventType { return EventTypeShowdown }
func (e ShowdownEvent) Timestamp() time.Time { return e.timestamp }

// RoundResolvedEvent is published when a round ends with the pot
// disposed of, either to a single winner or split between tied
// winners.
type RoundResolvedEvent struct {
	RoundID     string
	WinnerSeats []int
	Pot         int
	Split       bool
	Scores      map[int]int
	timestamp   time.Time
}

func (e RoundResolvedEvent) EventType() EventType { return EventTypeRoundResolved }
func (e RoundResolvedEvent) Timestamp() time.Time { return e.timestamp }

// SwaraStartEvent is published when a scoring tie opens a swara join
// window.
type SwaraStartEvent struct {
	RoundID   string
	TiedSeats []int
	BuyIn     int // half the pot, payable by previously dropped players
	Pot       int
	timestamp time.Time
}

func (e SwaraStartEvent) EventType() EventType { return EventTypeSwaraStart }
func (e SwaraStartEvent) Timestamp() time.Time { return e.timestamp }

// Sink receives published events. The engine does not depend on
// delivery succeeding; sinks must not block.
type Sink interface {
	Publish(event Event)
}

// Bus fans events out to subscribers in registration order.
type Bus struct {
	sinks []Sink
}

// NewBus creates an empty event bus
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe adds a sink to receive future events
func (b *Bus) Subscribe(sink Sink) {
	b.sinks = append(b.sinks, sink)
}

// Publish sends an event to all subscribers
func (b *Bus) Publish(event Event) {
	for _, sink := range b.sinks {
		sink.Publish(event)
	}
}
