package game

// Phase represents the round lifecycle stage
type Phase int

const (
	PhaseWaiting Phase = iota
	PhaseDealing
	PhaseBetting
	PhaseSwaraJoin // join window before a swara re-deal
	PhaseResolved
)

func (p Phase) String() string {
	return [...]string{"waiting", "dealing", "betting", "swara_join", "resolved"}[p]
}

// ActionType represents a player action
type ActionType int

const (
	Fold ActionType = iota
	See
	Call
	Raise
	Blind
	Showdown
	SplitPot
	JoinSwara
)

func (a ActionType) String() string {
	return [...]string{"fold", "see", "call", "raise", "blind", "showdown", "split_pot", "join_swara"}[a]
}

// Action is a player's submitted move. Amount is only meaningful for
// Raise, where it is the requested new table bet.
type Action struct {
	Type   ActionType
	Amount int
}

// CostPolicy parameterises the asymmetric-risk betting costs around
// blind play. The source rules are inconsistent between halving and
// doubling across versions, so the multipliers are configuration
// rather than constants. Defaults follow the majority convention: a
// blind player pays half the nominal difference, a sighted player
// facing a live blind bettor pays double.
type CostPolicy struct {
	BlindCallDivisor     int // blind caller pays diff / divisor
	SightedVsBlindFactor int // sighted caller vs blind bettor pays diff * factor
}

// DefaultCostPolicy returns the majority-convention cost policy.
func DefaultCostPolicy() CostPolicy {
	return CostPolicy{
		BlindCallDivisor:     2,
		SightedVsBlindFactor: 2,
	}
}

// callCost computes what the actor must pay to bring their committed
// bet level with the table bet, applying the blind-play asymmetry.
func (cp CostPolicy) callCost(nominal int, actorBlind, opponentBlindLive bool) int {
	switch {
	case nominal <= 0:
		return 0
	case actorBlind:
		div := cp.BlindCallDivisor
		if div <= 0 {
			div = 1
		}
		return nominal / div
	case opponentBlindLive:
		factor := cp.SightedVsBlindFactor
		if factor <= 0 {
			factor = 1
		}
		return nominal * factor
	default:
		return nominal
	}
}
