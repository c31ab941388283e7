// Package simulator runs seeded matches to completion without timers or
// transport: agents decide every seat and the state machine is driven
// directly, so a seed fully determines each match. Matches fan out
// across workers for throughput.
package simulator

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/wolfpit/wolfpit/internal/agent"
	"github.com/wolfpit/wolfpit/internal/game"
	"github.com/wolfpit/wolfpit/internal/randutil"
	"github.com/wolfpit/wolfpit/internal/statistics"
)

// maxSimulatedDays caps a single match; a match that runs this long
// indicates a progress bug, not a slow game.
const maxSimulatedDays = 60

// Config holds configuration for running simulations.
type Config struct {
	Matches int
	Seed    int64
	Workers int
	Match   game.MatchConfig
	Logger  *log.Logger
}

// Simulator runs match simulations.
type Simulator struct {
	config Config
}

// New creates a simulator with the given configuration.
func New(config Config) *Simulator {
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	return &Simulator{config: config}
}

// Run executes the simulation and returns aggregated results. Results
// are accumulated in match order regardless of worker scheduling, so a
// seed yields one report.
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	results := make([]statistics.MatchResult, s.config.Matches)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)

	var mu sync.Mutex
	done := 0
	for i := 0; i < s.config.Matches; i++ {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			res, err := s.playMatch(i)
			if err != nil {
				return fmt.Errorf("match %d: %w", i, err)
			}
			mu.Lock()
			results[i] = res
			done++
			if done%100 == 0 {
				s.config.Logger.Info("simulation progress", "done", done, "total", s.config.Matches)
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := statistics.New()
	for _, r := range results {
		stats.Add(r)
	}
	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}
	return stats, nil
}

// playMatch runs one match with seeds derived from the base seed and
// the match index.
func (s *Simulator) playMatch(index int) (statistics.MatchResult, error) {
	idx := int64(index)
	seeds := game.Seeds{
		Roster:        randutil.Derive(s.config.Seed, idx, 1).Int64(),
		Roles:         randutil.Derive(s.config.Seed, idx, 2).Int64(),
		PackSelection: randutil.Derive(s.config.Seed, idx, 3).Int64(),
		TurnFallback:  randutil.Derive(s.config.Seed, idx, 4).Int64(),
		NightLeader:   randutil.Derive(s.config.Seed, idx, 5).Int64(),
	}

	players := make([]game.Player, game.RosterSize)
	for i := range players {
		players[i] = game.Player{
			ID:   game.PlayerID(fmt.Sprintf("sim-%d", i+1)),
			Name: fmt.Sprintf("sim-%d", i+1),
		}
	}

	run := newMatchRun(players, seeds, s.config.Match, s.config.Logger)
	if err := run.play(); err != nil {
		return statistics.MatchResult{}, err
	}
	return run.result(seeds.Roster), nil
}

// matchRun drives one match through the state machine with agent seats.
type matchRun struct {
	machine *game.Machine
	state   *game.GameState
	agents  map[game.PlayerID]agent.Agent

	allies    map[game.PlayerID][]game.PlayerID
	divined   map[game.PlayerID]map[game.PlayerID]game.Judgment
	lastGuard map[game.PlayerID]game.PlayerID
}

func newMatchRun(players []game.Player, seeds game.Seeds, cfg game.MatchConfig, logger *log.Logger) *matchRun {
	return &matchRun{
		machine:   game.NewMachine(logger),
		state:     game.NewGameState(players, seeds, cfg),
		agents:    make(map[game.PlayerID]agent.Agent),
		allies:    make(map[game.PlayerID][]game.PlayerID),
		divined:   make(map[game.PlayerID]map[game.PlayerID]game.Judgment),
		lastGuard: make(map[game.PlayerID]game.PlayerID),
	}
}

func (r *matchRun) apply(ev game.Event) error {
	notifs, err := r.machine.Apply(r.state, ev)
	if err != nil {
		return err
	}
	for _, n := range notifs {
		switch v := n.(type) {
		case game.RoleAssignedNotification:
			if len(v.Allies) > 0 {
				r.allies[v.Player] = v.Allies
			}
		case game.DivinationNotification:
			if r.divined[v.Seer] == nil {
				r.divined[v.Seer] = make(map[game.PlayerID]game.Judgment)
			}
			r.divined[v.Seer][v.Target] = v.Judgment
		}
	}
	return nil
}

func (r *matchRun) viewFor(id game.PlayerID) agent.View {
	return agent.View{
		Self:      id,
		Role:      r.state.RoleOf(id),
		Day:       r.state.Day,
		Alive:     r.state.AliveIDs(),
		Allies:    r.allies[id],
		Divined:   r.divined[id],
		LastGuard: r.lastGuard[id],
		Seed:      r.state.Seeds.TurnFallback,
	}
}

func (r *matchRun) agentFor(id game.PlayerID) agent.Agent {
	a, ok := r.agents[id]
	if !ok {
		a = agent.ForRole(r.state.RoleOf(id))
		r.agents[id] = a
	}
	return a
}

// play runs the match to game over.
func (r *matchRun) play() error {
	if err := r.apply(game.StartEvent{}); err != nil {
		return err
	}
	if err := r.apply(game.RolesAssignedEvent{}); err != nil {
		return err
	}
	if err := r.apply(game.StartDayEvent{}); err != nil {
		return err
	}

	for r.state.Phase != game.PhaseGameOver {
		if r.state.Day > maxSimulatedDays {
			return fmt.Errorf("match exceeded %d days without a winner", maxSimulatedDays)
		}
		if err := r.playDay(); err != nil {
			return err
		}
		if r.state.Phase == game.PhaseGameOver {
			return nil
		}
		if err := r.playNight(); err != nil {
			return err
		}
	}
	return nil
}

// playDay runs free talk, voting (with a possible revote) and the
// victory check.
func (r *matchRun) playDay() error {
	if err := r.apply(game.StartVoteEvent{}); err != nil {
		return err
	}
	if err := r.voteRound(); err != nil {
		return err
	}
	if r.state.Phase == game.PhaseDayRevoteTalk {
		if err := r.apply(game.StartVoteEvent{}); err != nil {
			return err
		}
		if err := r.voteRound(); err != nil {
			return err
		}
	}
	if r.state.Phase == game.PhaseLastWill {
		if err := r.apply(game.LastWillCompleteEvent{}); err != nil {
			return err
		}
	}
	return r.apply(game.CheckVictoryEvent{})
}

func (r *matchRun) voteRound() error {
	for _, id := range r.state.AliveIDs() {
		target := r.agentFor(id).VoteTarget(r.viewFor(id))
		if target == "" {
			continue
		}
		if err := r.apply(game.VoteEvent{Voter: id, Target: target}); err != nil {
			return err
		}
	}
	return r.apply(game.VoteCompleteEvent{})
}

// playNight runs wolf chat, action submission, resolution and the dawn
// victory check, then opens the next day if the match goes on.
func (r *matchRun) playNight() error {
	if err := r.apply(game.StartNightEvent{}); err != nil {
		return err
	}
	if err := r.apply(game.StartNightActionsEvent{}); err != nil {
		return err
	}
	for _, id := range r.state.AliveIDs() {
		choice := r.agentFor(id).NightChoice(r.viewFor(id))
		if choice.Action != nil {
			ev := game.NightActionEvent{Actor: id, Action: choice.Action.Kind, Target: choice.Action.Target}
			if err := r.apply(ev); err != nil {
				return err
			}
			if choice.Action.Kind == game.ActionGuard {
				r.lastGuard[id] = choice.Action.Target
			}
		}
		if choice.Attack != "" {
			if err := r.apply(game.FactionAttackEvent{Attacker: id, Target: choice.Attack}); err != nil {
				return err
			}
		}
	}
	if err := r.apply(game.ResolveNightEvent{}); err != nil {
		return err
	}
	if err := r.apply(game.DawnCompleteEvent{}); err != nil {
		return err
	}
	if err := r.apply(game.CheckVictoryEvent{}); err != nil {
		return err
	}
	if r.state.Phase == game.PhaseGameOver {
		return nil
	}
	return r.apply(game.StartDayEvent{})
}

// result snapshots the finished match.
func (r *matchRun) result(seed int64) statistics.MatchResult {
	s := r.state
	res := statistics.MatchResult{
		Seed:      seed,
		Winner:    s.Winner,
		WinReason: s.WinReason,
		Days:      s.Day,
		Deaths:    len(s.Deaths),
		Survivors: len(s.AliveIDs()),
		FellBack:  s.PackFellBack,
		Roles:     make(map[game.PlayerID]game.Role, len(s.Roles)),
		Alive:     make(map[game.PlayerID]bool),
	}
	for _, p := range s.SelectedPacks {
		res.Packs = append(res.Packs, p.Name)
	}
	for id, role := range s.Roles {
		res.Roles[id] = role
		res.Alive[id] = s.IsAlive(id)
	}
	return res
}
