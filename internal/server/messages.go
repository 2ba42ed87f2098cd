package server

import (
	"encoding/json"
	"fmt"

	"github.com/lox/svara/internal/game"
)

// Message types on the wire. The relay speaks JSON: serialization is a
// transport concern, the engine never sees it.
const (
	// Client -> server
	TypeConnect = "connect"
	TypeAction  = "action"

	// Server -> client
	TypeWelcome = "welcome"
	TypeView    = "view"
	TypeEvent   = "event"
	TypeError   = "error"
)

// Envelope carries every message with its type tag
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ConnectPayload is the first message a client sends
type ConnectPayload struct {
	Name  string `json:"name"`
	Table string `json:"table"`
}

// ActionPayload submits a player action
type ActionPayload struct {
	Action string `json:"action"`
	Amount int    `json:"amount,omitempty"`
}

// WelcomePayload confirms a seat at a table. Seat numbers are not
// assigned until the game starts, so only the identity is echoed.
type WelcomePayload struct {
	PlayerID string `json:"player_id"`
	Table    string `json:"table"`
	Chips    int    `json:"chips"`
}

// ErrorPayload reports a rejected action or protocol problem. The
// round state is unchanged and the client may retry.
type ErrorPayload struct {
	Message string `json:"message"`
}

// EventPayload relays an engine event
type EventPayload struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Encode wraps a payload in an envelope and marshals it
func Encode(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}

// parseActionType maps wire action names onto engine action types
func parseActionType(s string) (game.ActionType, error) {
	switch s {
	case "fold":
		return game.Fold, nil
	case "see":
		return game.See, nil
	case "call":
		return game.Call, nil
	case "raise":
		return game.Raise, nil
	case "blind":
		return game.Blind, nil
	case "showdown":
		return game.Showdown, nil
	case "split_pot":
		return game.SplitPot, nil
	case "join_swara":
		return game.JoinSwara, nil
	default:
		return 0, fmt.Errorf("unknown action %q", s)
	}
}

// eventData flattens an engine event into a JSON-friendly shape.
func eventData(e game.Event) EventPayload {
	payload := EventPayload{Event: string(e.EventType())}

	switch ev := e.(type) {
	case game.RoundStartEvent:
		payload.Data = map[string]any{
			"round_id": ev.RoundID,
			"dealer":   ev.DealerSeat,
			"base_bet": ev.BaseBet,
			"swara":    ev.Swara,
			"players":  ev.Players,
		}
	case game.PlayerActionEvent:
		payload.Data = map[string]any{
			"round_id": ev.RoundID,
			"seat":     ev.Seat,
			"name":     ev.Name,
			"action":   ev.Action.String(),
			"paid":     ev.Paid,
			"pot":      ev.Pot,
			"bet":      ev.Bet,
		}
	case game.ForcedFoldEvent:
		payload.Data = map[string]any{
			"round_id": ev.RoundID,
			"seat":     ev.Seat,
			"name":     ev.Name,
			"required": ev.Required,
			"chips":    ev.Chips,
		}
	case game.ShowdownEvent:
		payload.Data = map[string]any{
			"round_id":       ev.RoundID,
			"challenger":     ev.ChallengerSeat,
			"opponent":       ev.OpponentSeat,
			"challenger_won": ev.ChallengerWon,
			"scores":         ev.Scores,
		}
	case game.RoundResolvedEvent:
		payload.Data = map[string]any{
			"round_id": ev.RoundID,
			"winners":  ev.WinnerSeats,
			"pot":      ev.Pot,
			"split":    ev.Split,
			"scores":   ev.Scores,
		}
	case game.SwaraStartEvent:
		payload.Data = map[string]any{
			"round_id":   ev.RoundID,
			"tied_seats": ev.TiedSeats,
			"buy_in":     ev.BuyIn,
			"pot":        ev.Pot,
		}
	}
	return payload
}
