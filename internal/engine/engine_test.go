package engine

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfpit/wolfpit/internal/agent"
	"github.com/wolfpit/wolfpit/internal/game"
)

type recorder struct {
	mu     sync.Mutex
	notifs []game.Notification
}

func (r *recorder) sink(n game.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifs = append(r.notifs, n)
}

func (r *recorder) all() []game.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]game.Notification(nil), r.notifs...)
}

func (r *recorder) roles() map[game.PlayerID]game.Role {
	out := map[game.PlayerID]game.Role{}
	for _, n := range r.all() {
		if ra, ok := n.(game.RoleAssignedNotification); ok {
			out[ra.Player] = ra.Role
		}
	}
	return out
}

func testPlayers() []game.Player {
	players := make([]game.Player, game.RosterSize)
	for i := range players {
		id := game.PlayerID(rune('a' + i))
		players[i] = game.Player{ID: "seat-" + id, Name: string(id)}
	}
	return players
}

func shortDurations() game.PhaseDurations {
	return game.PhaseDurations{
		FreeTalk:     10 * time.Second,
		Vote:         10 * time.Second,
		LastWill:     10 * time.Second,
		WolfChat:     10 * time.Second,
		NightActions: 10 * time.Second,
		Dawn:         10 * time.Second,
	}
}

func newTestEngine(t *testing.T, mock *quartz.Mock, cfg game.MatchConfig) (*Engine, *recorder) {
	t.Helper()
	e := New(Config{
		MatchID: "test-match",
		Players: testPlayers(),
		Seeds:   game.Seeds{Roster: 1, Roles: 2, PackSelection: 3, TurnFallback: 4, NightLeader: 5},
		Match:   cfg,
		Clock:   mock,
		Logger:  log.New(io.Discard),
	})
	obs := &recorder{}
	e.Subscribe("", obs.sink)
	return e, obs
}

// registerAgents binds the built-in policy to every seat using the
// roles the observer saw assigned.
func registerAgents(e *Engine, obs *recorder) {
	for id, role := range obs.roles() {
		e.RegisterAgent(id, agent.ForRole(role))
	}
}

// runToCompletion advances the mock clock until game over.
func runToCompletion(t *testing.T, e *Engine, mock *quartz.Mock) {
	t.Helper()
	for i := 0; i < 2000; i++ {
		if e.Phase() == game.PhaseGameOver {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		mock.Advance(10 * time.Second).MustWait(ctx)
		cancel()
	}
	t.Fatal("match did not finish")
}

func TestEngineRunsFullMatchOnDeadlines(t *testing.T) {
	mock := quartz.NewMock(t)
	e, obs := newTestEngine(t, mock, game.MatchConfig{Durations: shortDurations()})

	require.NoError(t, e.Start())
	assert.Equal(t, game.PhaseDayFreeTalk, e.Phase())
	require.Len(t, obs.roles(), game.RosterSize)

	registerAgents(e, obs)
	runToCompletion(t, e, mock)

	winner, reason, done := e.Winner()
	require.True(t, done)
	assert.NotEmpty(t, reason)
	assert.Contains(t, []game.Faction{game.FactionVillage, game.FactionWolves, game.FactionThirdParty}, winner)

	var over *game.GameOverNotification
	for _, n := range obs.all() {
		if g, ok := n.(game.GameOverNotification); ok {
			over = &g
		}
	}
	require.NotNil(t, over)
	assert.Len(t, over.Roles, game.RosterSize)
}

func TestEngineArchivesMatchRecord(t *testing.T) {
	mock := quartz.NewMock(t)
	dir := t.TempDir()
	e, obs := newTestEngine(t, mock, game.MatchConfig{Durations: shortDurations(), ArchiveDir: dir})

	require.NoError(t, e.Start())
	registerAgents(e, obs)
	runToCompletion(t, e, mock)

	data, err := os.ReadFile(filepath.Join(dir, "test-match.json"))
	require.NoError(t, err)

	var rec MatchRecord
	require.NoError(t, json.Unmarshal(data, &rec))
	assert.Equal(t, "test-match", rec.MatchID)
	assert.Len(t, rec.Players, game.RosterSize)
	assert.NotEmpty(t, rec.Deaths)
	assert.NotEmpty(t, rec.Winner)
	assert.Positive(t, rec.Days)
}

func TestEnginePrivateAddressing(t *testing.T) {
	mock := quartz.NewMock(t)
	e, obs := newTestEngine(t, mock, game.MatchConfig{Durations: shortDurations()})

	require.NoError(t, e.Start())
	roles := obs.roles()

	var seer, plain game.PlayerID
	for id, role := range roles {
		switch role {
		case game.RoleSeer:
			seer = id
		case game.RoleVillager:
			plain = id
		}
	}
	require.NotEmpty(t, seer)
	require.NotEmpty(t, plain)

	seerRec := &recorder{}
	plainRec := &recorder{}
	e.Subscribe(seer, seerRec.sink)
	e.Subscribe(plain, plainRec.sink)

	registerAgents(e, obs)
	runToCompletion(t, e, mock)

	countDivinations := func(r *recorder) int {
		n := 0
		for _, notif := range r.all() {
			if _, ok := notif.(game.DivinationNotification); ok {
				n++
			}
		}
		return n
	}
	assert.Positive(t, countDivinations(seerRec), "seer must receive its results")
	assert.Zero(t, countDivinations(plainRec), "divinations are private")

	// Both saw the broadcast phase changes.
	phaseCount := func(r *recorder) int {
		n := 0
		for _, notif := range r.all() {
			if _, ok := notif.(game.PhaseChangedNotification); ok {
				n++
			}
		}
		return n
	}
	assert.Positive(t, phaseCount(seerRec))
	assert.Positive(t, phaseCount(plainRec))
}

func TestEngineExternalVoteAccepted(t *testing.T) {
	mock := quartz.NewMock(t)
	e, obs := newTestEngine(t, mock, game.MatchConfig{Durations: shortDurations()})

	require.NoError(t, e.Start())
	roles := obs.roles()
	registerAgents(e, obs)

	// Free talk closes on its deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	mock.Advance(10 * time.Second).MustWait(ctx)
	cancel()
	require.Equal(t, game.PhaseDayVote, e.Phase())

	// A specific external vote lands before the deadline fill.
	var voter, target game.PlayerID
	for id := range roles {
		if voter == "" {
			voter = id
		} else if target == "" {
			target = id
		}
	}
	require.NoError(t, e.Apply(game.VoteEvent{Voter: voter, Target: target}))

	// An illegal event is rejected without advancing anything.
	err := e.Apply(game.StartEvent{})
	require.ErrorIs(t, err, game.ErrIllegalTransition)
	assert.Equal(t, game.PhaseDayVote, e.Phase())
}

func TestEngineRejectsShortRoster(t *testing.T) {
	mock := quartz.NewMock(t)
	e := New(Config{
		MatchID: "bad",
		Players: testPlayers()[:3],
		Seeds:   game.Seeds{},
		Match:   game.MatchConfig{Durations: game.DefaultPhaseDurations()},
		Clock:   mock,
		Logger:  log.New(io.Discard),
	})
	err := e.Start()
	require.ErrorIs(t, err, game.ErrValidation)
}
