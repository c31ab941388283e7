// Package engine runs one match end to end: it owns the game state,
// serializes events through the transition lock, drives phase deadlines
// on an injected clock, fills AI seats from their agents when a deadline
// forces a phase closed, and fans notifications out to subscribers with
// audience filtering.
package engine

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/wolfpit/wolfpit/internal/agent"
	"github.com/wolfpit/wolfpit/internal/game"
	"github.com/wolfpit/wolfpit/internal/sched"
)

// Sink receives notifications addressed to one subscriber.
type Sink func(game.Notification)

// Config assembles one match.
type Config struct {
	MatchID string
	Players []game.Player
	Seeds   game.Seeds
	Match   game.MatchConfig
	Clock   quartz.Clock
	Logger  *log.Logger
}

type subscriber struct {
	player game.PlayerID // empty subscribes as an observer seeing everything
	sink   Sink
}

// Engine orchestrates a single match. All state access is serialized
// through the transition lock; timer callbacks and client events contend
// on it in arrival order.
type Engine struct {
	matchID string
	logger  *log.Logger
	clock   quartz.Clock

	lock    *sched.TransitionLock
	timer   *sched.PhaseTimer
	machine *game.Machine
	state   *game.GameState

	agents      map[game.PlayerID]agent.Agent
	subscribers []subscriber

	// Seat knowledge accumulated for agent views.
	allies    map[game.PlayerID][]game.PlayerID
	divined   map[game.PlayerID]map[game.PlayerID]game.Judgment
	readings  map[game.PlayerID]map[game.PlayerID]game.Judgment
	lastGuard map[game.PlayerID]game.PlayerID

	// afterDawn routes the untimed end-of-cycle check: a check reached
	// from dawn opens the next day, one reached from the day opens night.
	afterDawn bool

	// armedPhase/armedDay identify the deadline currently scheduled, so
	// events that do not change phase leave the running budget alone.
	armedPhase game.Phase
	armedDay   int
}

// New creates an engine for one match. Start begins play.
func New(cfg Config) *Engine {
	logger := cfg.Logger.WithPrefix("engine").With("match", cfg.MatchID)
	return &Engine{
		matchID:   cfg.MatchID,
		logger:    logger,
		clock:     cfg.Clock,
		lock:      sched.NewTransitionLock(),
		timer:     sched.NewPhaseTimer(cfg.Clock, logger),
		machine:   game.NewMachine(logger),
		state:     game.NewGameState(cfg.Players, cfg.Seeds, cfg.Match),
		agents:    make(map[game.PlayerID]agent.Agent),
		allies:    make(map[game.PlayerID][]game.PlayerID),
		divined:   make(map[game.PlayerID]map[game.PlayerID]game.Judgment),
		readings:  make(map[game.PlayerID]map[game.PlayerID]game.Judgment),
		lastGuard: make(map[game.PlayerID]game.PlayerID),
	}
}

// RegisterAgent binds an AI seat. Seats without an agent are presumed
// human; their missing votes fall to the seeded fallback.
func (e *Engine) RegisterAgent(id game.PlayerID, a agent.Agent) {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.agents[id] = a
}

// Subscribe registers a sink for one player's view of the match:
// broadcasts plus anything privately addressed to them. An empty player
// ID subscribes an observer that receives everything.
func (e *Engine) Subscribe(player game.PlayerID, sink Sink) {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.subscribers = append(e.subscribers, subscriber{player: player, sink: sink})
}

// Phase returns the current phase.
func (e *Engine) Phase() game.Phase {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.state.Phase
}

// Winner returns the result once the match is over.
func (e *Engine) Winner() (game.Faction, string, bool) {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.state.Winner, e.state.WinReason, e.state.HasWinner
}

// Start begins the match: roster validation, pack selection, role
// assignment and the first day, in one serialized sequence.
func (e *Engine) Start() error {
	e.lock.Lock()
	defer e.lock.Unlock()

	if err := e.applyLocked(game.StartEvent{}); err != nil {
		return err
	}
	if err := e.applyLocked(game.RolesAssignedEvent{}); err != nil {
		return err
	}
	return e.applyLocked(game.StartDayEvent{})
}

// Apply feeds an external event (vote, chat line, night action) into
// the match.
func (e *Engine) Apply(ev game.Event) error {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.applyLocked(ev)
}

// applyLocked runs one event through the machine, dispatches the
// resulting notifications and drives any untimed follow-up phases.
// Callers hold the transition lock.
func (e *Engine) applyLocked(ev game.Event) error {
	notifs, err := e.machine.Apply(e.state, ev)
	if err != nil {
		return err
	}
	for _, n := range notifs {
		e.absorb(n)
		e.dispatch(n)
	}
	return e.settle()
}

// settle advances through phases that take no wall-clock time and arms
// the deadline for the phase the match comes to rest in.
func (e *Engine) settle() error {
	for {
		switch e.state.Phase {
		case game.PhaseCheckEnd:
			if err := e.applyCheck(); err != nil {
				return err
			}
		case game.PhaseGameOver:
			e.timer.Cancel()
			if err := e.archive(); err != nil {
				e.logger.Error("failed to archive match record", "error", err)
			}
			return nil
		default:
			e.armDeadline()
			return nil
		}
	}
}

func (e *Engine) applyCheck() error {
	notifs, err := e.machine.Apply(e.state, game.CheckVictoryEvent{})
	if err != nil {
		return err
	}
	for _, n := range notifs {
		e.dispatch(n)
	}
	if e.state.Phase != game.PhaseCheckEnd {
		return nil
	}
	var next game.Event = game.StartNightEvent{}
	if e.afterDawn {
		next = game.StartDayEvent{}
	}
	e.afterDawn = false
	notifs, err = e.machine.Apply(e.state, next)
	if err != nil {
		return err
	}
	for _, n := range notifs {
		e.dispatch(n)
	}
	return nil
}

// armDeadline schedules the forced close of the current phase. Untimed
// phases disarm the timer.
func (e *Engine) armDeadline() {
	phase, day := e.state.Phase, e.state.Day
	if phase == e.armedPhase && day == e.armedDay {
		return
	}
	e.armedPhase, e.armedDay = phase, day

	d := e.state.Config.Durations.For(phase)
	if d <= 0 {
		e.timer.Cancel()
		return
	}
	e.timer.Start(d,
		func(remaining time.Duration) {
			e.logger.Debug("phase closing soon", "phase", phase, "remaining", remaining)
		},
		func() { e.deadline(phase, day) },
	)
}

// deadline force-completes a phase whose budget lapsed. The (phase, day)
// pair guards against firing after the match has already moved on.
func (e *Engine) deadline(phase game.Phase, day int) {
	e.lock.Lock()
	defer e.lock.Unlock()
	if e.state.Phase != phase || e.state.Day != day {
		return
	}
	e.logger.Info("phase deadline lapsed", "phase", phase, "day", day)

	var err error
	switch phase {
	case game.PhaseDayFreeTalk, game.PhaseDayRevoteTalk:
		err = e.applyLocked(game.StartVoteEvent{})
	case game.PhaseDayVote, game.PhaseDayRevote:
		e.fillVotes()
		err = e.applyLocked(game.VoteCompleteEvent{})
	case game.PhaseLastWill:
		err = e.applyLocked(game.LastWillCompleteEvent{})
	case game.PhaseNightWolfChat:
		err = e.applyLocked(game.StartNightActionsEvent{})
	case game.PhaseNightActions:
		e.fillNightChoices()
		err = e.applyLocked(game.ResolveNightEvent{})
	case game.PhaseDawn:
		e.afterDawn = true
		err = e.applyLocked(game.DawnCompleteEvent{})
	default:
		return
	}
	if err != nil {
		e.logger.Error("deadline transition failed", "phase", phase, "error", err)
	}
}

// fillVotes submits agent votes for AI seats that have not voted. Human
// seats stay absent and fall to the seeded fallback at finalization.
func (e *Engine) fillVotes() {
	for _, id := range e.state.AliveIDs() {
		a, ok := e.agents[id]
		if !ok {
			continue
		}
		if _, voted := e.state.Votes[id]; voted {
			continue
		}
		target := a.VoteTarget(e.viewFor(id))
		if target == "" {
			continue
		}
		if err := e.applyEventQuiet(game.VoteEvent{Voter: id, Target: target}); err != nil {
			e.logger.Warn("agent vote rejected", "player", id, "target", target, "error", err)
		}
	}
}

// fillNightChoices submits agent night actions and attacks for AI seats
// that have not acted.
func (e *Engine) fillNightChoices() {
	for _, id := range e.state.AliveIDs() {
		a, ok := e.agents[id]
		if !ok {
			continue
		}
		choice := a.NightChoice(e.viewFor(id))
		if choice.Action != nil {
			if _, acted := e.state.NightActions[id]; !acted {
				ev := game.NightActionEvent{Actor: id, Action: choice.Action.Kind, Target: choice.Action.Target}
				if err := e.applyEventQuiet(ev); err != nil {
					e.logger.Warn("agent night action rejected", "player", id, "error", err)
				} else if choice.Action.Kind == game.ActionGuard {
					e.lastGuard[id] = choice.Action.Target
				}
			}
		}
		if choice.Attack != "" {
			if _, attacked := e.state.Attacks[id]; !attacked {
				ev := game.FactionAttackEvent{Attacker: id, Target: choice.Attack}
				if err := e.applyEventQuiet(ev); err != nil {
					e.logger.Warn("agent attack rejected", "player", id, "error", err)
				}
			}
		}
	}
}

// applyEventQuiet runs a submission event without the settle step; it is
// only used for fills inside a deadline, where the phase cannot move.
func (e *Engine) applyEventQuiet(ev game.Event) error {
	notifs, err := e.machine.Apply(e.state, ev)
	if err != nil {
		return err
	}
	for _, n := range notifs {
		e.dispatch(n)
	}
	return nil
}

// viewFor assembles the knowledge view for one seat.
func (e *Engine) viewFor(id game.PlayerID) agent.View {
	return agent.View{
		Self:           id,
		Role:           e.state.RoleOf(id),
		Day:            e.state.Day,
		Alive:          e.state.AliveIDs(),
		Allies:         e.allies[id],
		Divined:        e.divined[id],
		MediumReadings: e.readings[id],
		LastGuard:      e.lastGuard[id],
		Seed:           e.state.Seeds.TurnFallback,
	}
}

// absorb folds private results into the seat knowledge used for agent
// views on later turns.
func (e *Engine) absorb(n game.Notification) {
	switch v := n.(type) {
	case game.RoleAssignedNotification:
		if len(v.Allies) > 0 {
			e.allies[v.Player] = v.Allies
		}
	case game.DivinationNotification:
		if e.divined[v.Seer] == nil {
			e.divined[v.Seer] = make(map[game.PlayerID]game.Judgment)
		}
		e.divined[v.Seer][v.Target] = v.Judgment
	case game.MediumResultNotification:
		if e.readings[v.Medium] == nil {
			e.readings[v.Medium] = make(map[game.PlayerID]game.Judgment)
		}
		e.readings[v.Medium][v.Target] = v.Judgment
	}
}

// dispatch delivers a notification to every subscriber its audience
// covers. Observers (empty player ID) see everything.
func (e *Engine) dispatch(n game.Notification) {
	aud := n.Audience()
	for _, sub := range e.subscribers {
		if sub.player == "" || aud.Includes(sub.player) {
			sub.sink(n)
		}
	}
}

// String identifies the engine in logs.
func (e *Engine) String() string {
	return fmt.Sprintf("engine(%s)", e.matchID)
}
