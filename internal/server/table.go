package server

import (
	"fmt"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/svara/internal/bot"
	"github.com/lox/svara/internal/game"
)

// Sender delivers a marshalled message to a client. Delivery is
// fire-and-forget: the table never blocks on a slow client.
type Sender interface {
	Send(data []byte)
}

// Table hosts one game: it seats humans and bots, relays engine events
// to clients, and drives the outer round loop the engine signals
// through RoundUpdate. All game access is serialised through mu, so
// the engine itself stays single-threaded.
type Table struct {
	name   string
	cfg    TableConfig
	logger *log.Logger
	clock  quartz.Clock
	rng    *rand.Rand

	mu      sync.Mutex
	game    *game.Game
	bots    map[string]*bot.Bot
	conns   map[string]Sender
	humans  []game.PlayerSeed
	started bool
	stopped bool
}

// NewTable creates a table from config. The clock is injected so tests
// can drive bot pacing deterministically.
func NewTable(cfg TableConfig, logger *log.Logger, clock quartz.Clock, rng *rand.Rand) *Table {
	applyTableDefaults(&cfg)
	return &Table{
		name:   cfg.Name,
		cfg:    cfg,
		logger: logger.WithPrefix("table").With("table", cfg.Name),
		clock:  clock,
		rng:    rng,
		bots:   make(map[string]*bot.Bot),
		conns:  make(map[string]Sender),
	}
}

// Name returns the table name
func (t *Table) Name() string { return t.name }

// Join seats a human player. Seats are fixed once the game starts;
// there is no mid-game entry.
func (t *Table) Join(name string, conn Sender) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return "", fmt.Errorf("table %s already playing", t.name)
	}
	if len(t.humans)+t.cfg.Bots >= t.cfg.MaxPlayers {
		return "", fmt.Errorf("table %s is full", t.name)
	}

	id := fmt.Sprintf("p%d-%s", len(t.humans)+1, name)
	t.humans = append(t.humans, game.PlayerSeed{ID: id, Name: name, Chips: t.cfg.StartingChips})
	t.conns[id] = conn
	t.logger.Info("player joined", "player", name, "id", id)
	return id, nil
}

// Leave drops a connection. A running game folds the departed player
// whenever their turn comes up; if it is their turn right now the
// fold timer is armed here, since scheduleBotTurn only fires when the
// turn advances.
func (t *Table) Leave(playerID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.conns, playerID)

	if t.game == nil || t.stopped {
		return
	}
	if t.game.ActivePlayerID() == playerID {
		t.clock.AfterFunc(t.pace(), func() { t.forceFold(playerID) })
	}
}

// Start seats the configured bots alongside the joined humans and
// deals the first round.
func (t *Table) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return fmt.Errorf("table %s already started", t.name)
	}

	seeds := append([]game.PlayerSeed(nil), t.humans...)
	for i := 0; i < t.cfg.Bots; i++ {
		id := fmt.Sprintf("bot-%d", i+1)
		seeds = append(seeds, game.PlayerSeed{
			ID:    id,
			Name:  fmt.Sprintf("Bot %d", i+1),
			Chips: t.cfg.StartingChips,
		})
		t.bots[id] = bot.New(t.rng, t.logger)
	}
	if len(seeds) < 2 {
		return fmt.Errorf("table %s needs at least 2 players", t.name)
	}

	cfg := game.Config{BaseBet: t.cfg.BaseBet, MaxBet: t.cfg.MaxBet}
	g, err := game.New(cfg, seeds, t.rng, t.logger)
	if err != nil {
		return err
	}
	g.Bus().Subscribe(sinkFunc(t.relay))
	t.game = g
	t.started = true

	update, err := g.StartRound()
	if err != nil {
		return err
	}
	t.handleUpdate(update)
	return nil
}

// HandleAction applies a human player's action. Rejections go back to
// the submitting client only; the round is unchanged and the turn is
// retried.
func (t *Table) HandleAction(playerID string, payload ActionPayload) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.game == nil || t.stopped {
		t.sendError(playerID, "no game in progress")
		return
	}

	actionType, err := parseActionType(payload.Action)
	if err != nil {
		t.sendError(playerID, err.Error())
		return
	}

	update, err := t.game.SubmitAction(playerID, game.Action{Type: actionType, Amount: payload.Amount})
	if err != nil {
		t.sendError(playerID, err.Error())
		return
	}
	t.handleUpdate(update)
}

// handleUpdate consumes the engine's round signal and schedules the
// next step: bot turns, the swara join window, or the next deal. The
// caller holds mu.
func (t *Table) handleUpdate(update *game.RoundUpdate) {
	t.pushViews()

	switch {
	case update.Resolved:
		if t.gameOver() {
			t.logger.Info("game over", "round", update.RoundID)
			t.stopped = true
			return
		}
		t.clock.AfterFunc(t.pace(), t.nextRound)

	case update.SwaraPending:
		t.scheduleSwaraBots()
		roundID := update.RoundID
		t.clock.AfterFunc(t.swaraWindow(), func() { t.closeSwaraWindow(roundID) })

	default:
		t.scheduleBotTurn()
	}
}

// scheduleBotTurn arms the pacing timer when the active player is a
// bot. The delay is presentation only; correctness never depends on it.
func (t *Table) scheduleBotTurn() {
	active := t.game.ActivePlayerID()
	if active == "" {
		return
	}
	if _, isBot := t.bots[active]; !isBot {
		if _, connected := t.conns[active]; !connected {
			// Disconnected human: fold them when their turn comes up.
			t.clock.AfterFunc(t.pace(), func() { t.forceFold(active) })
		}
		return
	}
	t.clock.AfterFunc(t.pace(), func() { t.botTurn(active) })
}

func (t *Table) botTurn(playerID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped || t.game == nil || t.game.ActivePlayerID() != playerID {
		return
	}
	b := t.bots[playerID]

	// Seeing cards does not consume the turn, so a blind bot may peek
	// and then act on what it found.
	for attempts := 0; attempts < 2; attempts++ {
		view, err := t.game.View(playerID)
		if err != nil {
			return
		}
		action, ok := b.Decide(view, t.game.ValidActions(playerID))
		if !ok {
			return
		}
		update, err := t.game.SubmitAction(playerID, action)
		if err != nil {
			t.logger.Warn("bot action rejected", "bot", playerID, "action", action.Type, "err", err)
			update, err = t.game.SubmitAction(playerID, game.Action{Type: game.Fold})
			if err != nil {
				return
			}
		}
		if action.Type != game.See {
			t.handleUpdate(update)
			return
		}
	}

	// Still our turn after peeking twice: bail out with a fold.
	if update, err := t.game.SubmitAction(playerID, game.Action{Type: game.Fold}); err == nil {
		t.handleUpdate(update)
	}
}

func (t *Table) forceFold(playerID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || t.game == nil || t.game.ActivePlayerID() != playerID {
		return
	}
	if update, err := t.game.SubmitAction(playerID, game.Action{Type: game.Fold}); err == nil {
		t.handleUpdate(update)
	}
}

// scheduleSwaraBots lets dropped bots buy back in as soon as the join
// window opens. Split decisions wait for closeSwaraWindow so a tied
// bot cannot slam the window shut while humans are still deciding.
// The caller holds mu.
func (t *Table) scheduleSwaraBots() {
	for id, b := range t.bots {
		var joins []game.ValidAction
		for _, va := range t.game.ValidActions(id) {
			if va.Type == game.JoinSwara {
				joins = append(joins, va)
			}
		}
		if len(joins) == 0 {
			continue
		}
		view, err := t.game.View(id)
		if err != nil {
			continue
		}
		action, ok := b.Decide(view, joins)
		if !ok {
			continue
		}
		if _, err := t.game.SubmitAction(id, action); err != nil {
			t.logger.Debug("swara join rejected", "bot", id, "err", err)
		}
	}
}

func (t *Table) closeSwaraWindow(roundID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped || t.game == nil {
		return
	}
	r := t.game.Round()
	if r == nil || r.ID != roundID || r.Phase != game.PhaseSwaraJoin {
		return
	}

	// Nobody bought in: tied bots take their share rather than replay
	// for the same pot.
	if len(r.Joiners) == 0 {
		for id, b := range t.bots {
			var splits []game.ValidAction
			for _, va := range t.game.ValidActions(id) {
				if va.Type == game.SplitPot {
					splits = append(splits, va)
				}
			}
			if len(splits) == 0 {
				continue
			}
			view, err := t.game.View(id)
			if err != nil {
				continue
			}
			action, ok := b.Decide(view, splits)
			if !ok {
				continue
			}
			if update, err := t.game.SubmitAction(id, action); err == nil && update.Resolved {
				t.handleUpdate(update)
				return
			}
		}
	}

	update, err := t.game.BeginSwara()
	if err != nil {
		t.logger.Error("failed to begin swara", "err", err)
		return
	}
	t.handleUpdate(update)
}

func (t *Table) nextRound() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped || t.game == nil {
		return
	}
	update, err := t.game.StartRound()
	if err != nil {
		t.logger.Error("failed to start round", "err", err)
		return
	}
	t.handleUpdate(update)
}

// gameOver reports whether fewer than two players can still post an
// ante. The caller holds mu.
func (t *Table) gameOver() bool {
	solvent := 0
	for _, p := range t.game.Players() {
		if p.Chips >= t.cfg.BaseBet {
			solvent++
		}
	}
	return solvent < 2
}

// relay forwards an engine event to every connected client.
func (t *Table) relay(e game.Event) {
	data, err := Encode(TypeEvent, eventData(e))
	if err != nil {
		t.logger.Error("failed to encode event", "err", err)
		return
	}
	for _, conn := range t.conns {
		conn.Send(data)
	}
}

// pushViews sends each connected human their private projection. The
// caller holds mu.
func (t *Table) pushViews() {
	for id, conn := range t.conns {
		view, err := t.game.View(id)
		if err != nil {
			continue
		}
		data, err := Encode(TypeView, view)
		if err != nil {
			continue
		}
		conn.Send(data)
	}
}

func (t *Table) sendError(playerID string, msg string) {
	conn, ok := t.conns[playerID]
	if !ok {
		return
	}
	if data, err := Encode(TypeError, ErrorPayload{Message: msg}); err == nil {
		conn.Send(data)
	}
}

func (t *Table) pace() time.Duration {
	return time.Duration(t.cfg.BotDelayMs) * time.Millisecond
}

func (t *Table) swaraWindow() time.Duration {
	return time.Duration(t.cfg.SwaraWindowMs) * time.Millisecond
}

// sinkFunc adapts a function to the game.Sink interface
type sinkFunc func(game.Event)

func (f sinkFunc) Publish(e game.Event) { f(e) }
