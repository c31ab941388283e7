package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lobbyState() *GameState {
	return NewGameState(elevenPlayers(), testSeeds(), MatchConfig{Durations: DefaultPhaseDurations()})
}

func TestMachineRejectsUnknownTransition(t *testing.T) {
	m := NewMachine(testLogger())
	s := lobbyState()

	_, err := m.Apply(s, VoteEvent{Voter: "p1", Target: "p2"})
	require.ErrorIs(t, err, ErrIllegalTransition)
	assert.Equal(t, PhaseLobby, s.Phase, "rejected events leave state untouched")
}

func TestMachineRejectsWrongRosterSize(t *testing.T) {
	m := NewMachine(testLogger())
	s := NewGameState(elevenPlayers()[:7], testSeeds(), MatchConfig{Durations: DefaultPhaseDurations()})

	_, err := m.Apply(s, StartEvent{})
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, PhaseLobby, s.Phase)
}

func TestMachineRejectsDuplicatePlayerIDs(t *testing.T) {
	m := NewMachine(testLogger())
	players := elevenPlayers()
	players[10].ID = players[0].ID
	s := NewGameState(players, testSeeds(), MatchConfig{Durations: DefaultPhaseDurations()})

	_, err := m.Apply(s, StartEvent{})
	require.ErrorIs(t, err, ErrValidation)
}

func TestMachineAssignsRolesOnce(t *testing.T) {
	m := NewMachine(testLogger())
	s := lobbyState()

	_, err := m.Apply(s, StartEvent{})
	require.NoError(t, err)
	notifs, err := m.Apply(s, RolesAssignedEvent{})
	require.NoError(t, err)
	assert.Equal(t, PhaseAssignRoles, s.Phase)
	require.Len(t, s.Roles, RosterSize)

	// Each player got exactly one private role notification, and every
	// wolf learned its allies.
	roleNotifs := 0
	for _, n := range notifs {
		ra, ok := n.(RoleAssignedNotification)
		if !ok {
			continue
		}
		roleNotifs++
		assert.False(t, ra.Audience().Everyone)
		assert.True(t, ra.Audience().Includes(ra.Player))
		if ra.Role.ChatsWithWolves() {
			assert.Len(t, ra.Allies, len(s.AliveWolves())-1)
			assert.NotContains(t, ra.Allies, ra.Player)
		}
	}
	assert.Equal(t, RosterSize, roleNotifs)

	// A second assignment attempt is rejected.
	s.Phase = PhaseInit
	_, err = m.Apply(s, RolesAssignedEvent{})
	require.ErrorIs(t, err, ErrValidation)
}

func TestMachineRejectsUnknownPackName(t *testing.T) {
	m := NewMachine(testLogger())
	s := lobbyState()
	s.Config.PackNames = []string{"nonesuch"}
	s.Phase = PhaseInit

	_, err := m.Apply(s, RolesAssignedEvent{})
	require.ErrorIs(t, err, ErrValidation)
}

func TestMachineVoteValidation(t *testing.T) {
	m := NewMachine(testLogger())
	s := newTestState(RoleWerewolf, RoleVillager, RoleVillager)
	s.Phase = PhaseDayVote

	_, err := m.Apply(s, VoteEvent{Voter: "p1", Target: "p1"})
	require.ErrorIs(t, err, ErrConstraint, "self vote")

	s.Kill("p3", CauseAttack)
	_, err = m.Apply(s, VoteEvent{Voter: "p3", Target: "p1"})
	require.ErrorIs(t, err, ErrConstraint, "dead voter")
	_, err = m.Apply(s, VoteEvent{Voter: "p1", Target: "p3"})
	require.ErrorIs(t, err, ErrConstraint, "dead target")

	_, err = m.Apply(s, VoteEvent{Voter: "p1", Target: "p2"})
	require.NoError(t, err)
	assert.Equal(t, PlayerID("p2"), s.Votes["p1"])
	assert.Equal(t, PlayerID("p2"), s.Suspicions["p1"], "votes double as suspicions")
}

func TestMachineFreeTalkRecordsSuspicionOnly(t *testing.T) {
	m := NewMachine(testLogger())
	s := newTestState(RoleWerewolf, RoleVillager, RoleVillager)
	s.Phase = PhaseDayFreeTalk

	_, err := m.Apply(s, VoteEvent{Voter: "p2", Target: "p1"})
	require.NoError(t, err)
	assert.Equal(t, PlayerID("p1"), s.Suspicions["p2"])
	assert.Empty(t, s.Votes)
}

func TestMachineTieRoutesToRevoteThenNoExecution(t *testing.T) {
	m := NewMachine(testLogger())
	s := newTestState(RoleWerewolf, RoleVillager, RoleVillager, RoleVillager)
	s.Phase = PhaseDayVote

	// A perfect two-way split.
	tie := map[PlayerID]PlayerID{"p1": "p2", "p2": "p1", "p3": "p4", "p4": "p3"}
	for voter, target := range tie {
		_, err := m.Apply(s, VoteEvent{Voter: voter, Target: target})
		require.NoError(t, err)
	}

	notifs, err := m.Apply(s, VoteCompleteEvent{})
	require.NoError(t, err)
	assert.Equal(t, PhaseDayRevoteTalk, s.Phase)
	assert.True(t, s.RevoteUsed)
	assert.Equal(t, []PlayerID{"p1", "p2", "p3", "p4"}, s.TiedCandidates)
	vr := notifs[0].(VoteResultNotification)
	assert.Empty(t, vr.Executed)
	assert.Len(t, vr.Tied, 4)

	// Revote with the same split: nobody is executed today.
	_, err = m.Apply(s, StartVoteEvent{})
	require.NoError(t, err)
	assert.Equal(t, PhaseDayRevote, s.Phase)
	for voter, target := range tie {
		_, err := m.Apply(s, VoteEvent{Voter: voter, Target: target})
		require.NoError(t, err)
	}
	notifs, err = m.Apply(s, VoteCompleteEvent{})
	require.NoError(t, err)
	assert.Equal(t, PhaseCheckEnd, s.Phase)
	vr = notifs[0].(VoteResultNotification)
	assert.True(t, vr.NoExecution)
	assert.Len(t, s.AliveIDs(), 4, "a twice-tied day executes nobody")
}

func TestMachineStartVoteRoutesOnRevoteFlag(t *testing.T) {
	m := NewMachine(testLogger())
	s := newTestState(RoleWerewolf, RoleVillager, RoleVillager, RoleVillager)

	s.Phase = PhaseDayFreeTalk
	_, err := m.Apply(s, StartVoteEvent{})
	require.NoError(t, err)
	assert.Equal(t, PhaseDayVote, s.Phase, "fresh day opens a first vote")

	s.Phase = PhaseDayRevoteTalk
	s.RevoteUsed = true
	_, err = m.Apply(s, StartVoteEvent{})
	require.NoError(t, err)
	assert.Equal(t, PhaseDayRevote, s.Phase, "a spent revote opens the second vote")

	// The next day clears the flag and votes start fresh again.
	s.Phase = PhaseCheckEnd
	_, err = m.Apply(s, StartDayEvent{})
	require.NoError(t, err)
	assert.False(t, s.RevoteUsed)
	_, err = m.Apply(s, StartVoteEvent{})
	require.NoError(t, err)
	assert.Equal(t, PhaseDayVote, s.Phase)
}

func TestMachineClearMajorityExecutes(t *testing.T) {
	m := NewMachine(testLogger())
	s := newTestState(RoleWerewolf, RoleVillager, RoleVillager, RoleVillager)
	s.Phase = PhaseDayVote

	for _, voter := range []PlayerID{"p2", "p3", "p4"} {
		_, err := m.Apply(s, VoteEvent{Voter: voter, Target: "p1"})
		require.NoError(t, err)
	}
	_, err := m.Apply(s, VoteEvent{Voter: "p1", Target: "p2"})
	require.NoError(t, err)

	notifs, err := m.Apply(s, VoteCompleteEvent{})
	require.NoError(t, err)
	assert.Equal(t, PhaseLastWill, s.Phase)
	assert.False(t, s.IsAlive("p1"))
	assert.Equal(t, PlayerID("p1"), s.LastExecuted)
	vr := notifs[0].(VoteResultNotification)
	assert.Equal(t, PlayerID("p1"), vr.Executed)
	assert.Equal(t, 3, vr.Counts["p1"])
}

func TestMachineLastWillRelayed(t *testing.T) {
	m := NewMachine(testLogger())
	s := newTestState(RoleVillager, RoleWerewolf, RoleVillager)
	s.Phase = PhaseLastWill
	s.LastExecuted = "p1"
	s.Kill("p1", CauseExecution)

	notifs, err := m.Apply(s, LastWillCompleteEvent{Author: "p1", Text: "it was p2"})
	require.NoError(t, err)
	assert.Equal(t, PhaseCheckEnd, s.Phase)
	lw := notifs[0].(LastWillNotification)
	assert.Equal(t, PlayerID("p1"), lw.Player)
	assert.Equal(t, "it was p2", lw.Text)
}

func TestMachineLastWillRejectsWrongAuthor(t *testing.T) {
	m := NewMachine(testLogger())
	s := newTestState(RoleVillager, RoleWerewolf, RoleVillager)
	s.Phase = PhaseLastWill
	s.LastExecuted = "p1"
	s.Kill("p1", CauseExecution)

	// Only the executed player may speak their last will.
	_, err := m.Apply(s, LastWillCompleteEvent{Author: "p2", Text: "forged"})
	require.ErrorIs(t, err, ErrConstraint)
	assert.Equal(t, PhaseLastWill, s.Phase, "a rejected event leaves the phase alone")

	// An empty author is the timer closing the phase without a statement.
	notifs, err := m.Apply(s, LastWillCompleteEvent{})
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, PhaseCheckEnd, s.Phase)
}

func TestMachineEmptyLastWillEmitsNothing(t *testing.T) {
	m := NewMachine(testLogger())
	s := newTestState(RoleVillager, RoleWerewolf)
	s.Phase = PhaseLastWill
	s.LastExecuted = "p1"
	s.Kill("p1", CauseExecution)

	notifs, err := m.Apply(s, LastWillCompleteEvent{})
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.IsType(t, PhaseChangedNotification{}, notifs[0])
}

func TestMachineCheckVictoryLoopsWhenUndecided(t *testing.T) {
	m := NewMachine(testLogger())
	s := newTestState(RoleWerewolf, RoleVillager, RoleVillager, RoleSeer)
	s.Phase = PhaseCheckEnd

	notifs, err := m.Apply(s, CheckVictoryEvent{})
	require.NoError(t, err)
	assert.Empty(t, notifs)
	assert.Equal(t, PhaseCheckEnd, s.Phase)

	_, err = m.Apply(s, StartNightEvent{})
	require.NoError(t, err)
	assert.Equal(t, PhaseNightWolfChat, s.Phase)
}

func TestMachineGameOverRevealsRoles(t *testing.T) {
	m := NewMachine(testLogger())
	s := newTestState(RoleWerewolf, RoleVillager)
	s.Phase = PhaseCheckEnd

	notifs, err := m.Apply(s, CheckVictoryEvent{})
	require.NoError(t, err)
	assert.Equal(t, PhaseGameOver, s.Phase)
	assert.True(t, s.HasWinner)
	assert.Equal(t, FactionWolves, s.Winner)

	var over GameOverNotification
	found := false
	for _, n := range notifs {
		if g, ok := n.(GameOverNotification); ok {
			over, found = g, true
		}
	}
	require.True(t, found)
	assert.Equal(t, FactionWolves, over.Winner)
	assert.Len(t, over.Roles, 2)
}

func TestMachineWolfChatMembership(t *testing.T) {
	m := NewMachine(testLogger())
	s := newTestState(RoleWerewolf, RoleCursedWolf, RoleMadman, RoleVillager)
	s.Phase = PhaseNightWolfChat

	notifs, err := m.Apply(s, WolfChatMessageEvent{From: "p1", Text: "p4 tonight"})
	require.NoError(t, err)
	wc := notifs[0].(WolfChatNotification)
	assert.Equal(t, []PlayerID{"p1", "p2"}, wc.Wolves)
	assert.False(t, wc.Audience().Everyone)
	assert.False(t, wc.Audience().Includes("p3"))

	// The madman sides with the wolves but never joins the chat.
	_, err = m.Apply(s, WolfChatMessageEvent{From: "p3", Text: "hello"})
	require.ErrorIs(t, err, ErrConstraint)
	_, err = m.Apply(s, WolfChatMessageEvent{From: "p4", Text: "hello"})
	require.ErrorIs(t, err, ErrConstraint)
}

func TestMachineNightActionRoleChecks(t *testing.T) {
	m := NewMachine(testLogger())
	s := newTestState(RoleSeer, RoleGuardian, RoleVillager, RoleWerewolf)
	s.Phase = PhaseNightActions
	s.NightActions = make(map[PlayerID]NightAction)
	s.Attacks = make(map[PlayerID]PlayerID)

	_, err := m.Apply(s, NightActionEvent{Actor: "p3", Action: ActionDivine, Target: "p4"})
	require.ErrorIs(t, err, ErrConstraint, "only the seer divines")
	_, err = m.Apply(s, NightActionEvent{Actor: "p1", Action: ActionGuard, Target: "p2"})
	require.ErrorIs(t, err, ErrConstraint, "only the guardian guards")
	_, err = m.Apply(s, NightActionEvent{Actor: "p1", Action: ActionDivine, Target: "p1"})
	require.ErrorIs(t, err, ErrConstraint, "no self targeting")

	_, err = m.Apply(s, NightActionEvent{Actor: "p1", Action: ActionDivine, Target: "p4"})
	require.NoError(t, err)
	_, err = m.Apply(s, NightActionEvent{Actor: "p2", Action: ActionGuard, Target: "p1"})
	require.NoError(t, err)
	assert.Len(t, s.NightActions, 2)
}

func TestMachineFactionAttackChecks(t *testing.T) {
	m := NewMachine(testLogger())
	s := newTestState(RoleWerewolf, RoleCursedWolf, RoleVillager, RoleMadman)
	s.Phase = PhaseNightActions
	s.Attacks = make(map[PlayerID]PlayerID)

	_, err := m.Apply(s, FactionAttackEvent{Attacker: "p3", Target: "p1"})
	require.ErrorIs(t, err, ErrConstraint, "humans cannot attack")
	_, err = m.Apply(s, FactionAttackEvent{Attacker: "p4", Target: "p3"})
	require.ErrorIs(t, err, ErrConstraint, "the madman is human-species")
	_, err = m.Apply(s, FactionAttackEvent{Attacker: "p1", Target: "p2"})
	require.ErrorIs(t, err, ErrConstraint, "wolves never attack wolves")

	_, err = m.Apply(s, FactionAttackEvent{Attacker: "p1", Target: "p3"})
	require.NoError(t, err)
	assert.Equal(t, PlayerID("p3"), s.Attacks["p1"])
}

func TestMachineResolveNightAppliesDeaths(t *testing.T) {
	m := NewMachine(testLogger())
	s := newTestState(RoleWerewolf, RoleSeer, RoleGuardian, RoleVillager, RoleVillager)
	s.Phase = PhaseNightActions
	s.NightActions = map[PlayerID]NightAction{
		"p2": {Kind: ActionDivine, Target: "p1"},
		"p3": {Kind: ActionGuard, Target: "p2"},
	}
	s.Attacks = map[PlayerID]PlayerID{"p1": "p4"}

	notifs, err := m.Apply(s, ResolveNightEvent{})
	require.NoError(t, err)
	assert.Equal(t, PhaseDawn, s.Phase)
	assert.False(t, s.IsAlive("p4"))

	var divined, guarded bool
	for _, n := range notifs {
		switch v := n.(type) {
		case DivinationNotification:
			divined = true
			assert.Equal(t, JudgmentWerewolf, v.Judgment)
			assert.False(t, v.Audience().Everyone)
		case GuardResultNotification:
			guarded = true
			assert.False(t, v.Success)
		}
	}
	assert.True(t, divined)
	assert.True(t, guarded)

	_, err = m.Apply(s, DawnCompleteEvent{})
	require.NoError(t, err)
	assert.Equal(t, PhaseCheckEnd, s.Phase)
}

// matchTrace drives a full match to completion with a fixed scripted
// policy: no votes are submitted (the seeded fallback decides) and every
// living wolf attacks the first living non-wolf. It returns a compact
// trace of the run.
func matchTrace(t *testing.T, seeds Seeds) []string {
	t.Helper()
	m := NewMachine(testLogger())
	s := NewGameState(elevenPlayers(), seeds, MatchConfig{Durations: DefaultPhaseDurations()})

	apply := func(ev Event) {
		_, err := m.Apply(s, ev)
		require.NoError(t, err)
	}

	var trace []string
	nightDone := false
	for step := 0; step < 500; step++ {
		trace = append(trace, fmt.Sprintf("day=%d phase=%s alive=%d", s.Day, s.Phase, len(s.AliveIDs())))
		switch s.Phase {
		case PhaseLobby:
			apply(StartEvent{})
		case PhaseInit:
			apply(RolesAssignedEvent{})
		case PhaseAssignRoles:
			apply(StartDayEvent{})
		case PhaseDayFreeTalk, PhaseDayRevoteTalk:
			apply(StartVoteEvent{})
		case PhaseDayVote, PhaseDayRevote:
			apply(VoteCompleteEvent{})
		case PhaseLastWill:
			apply(LastWillCompleteEvent{})
		case PhaseCheckEnd:
			apply(CheckVictoryEvent{})
			if s.Phase != PhaseCheckEnd {
				break
			}
			if nightDone {
				nightDone = false
				apply(StartDayEvent{})
			} else {
				apply(StartNightEvent{})
			}
		case PhaseNightWolfChat:
			apply(StartNightActionsEvent{})
		case PhaseNightActions:
			for _, w := range s.AliveWolves() {
				for _, id := range s.AliveIDs() {
					if s.Roles[id].Species() != SpeciesWolf {
						apply(FactionAttackEvent{Attacker: w, Target: id})
						break
					}
				}
			}
			apply(ResolveNightEvent{})
		case PhaseDawn:
			nightDone = true
			apply(DawnCompleteEvent{})
		case PhaseGameOver:
			trace = append(trace, fmt.Sprintf("winner=%s reason=%q", s.Winner, s.WinReason))
			for _, d := range s.Deaths {
				trace = append(trace, fmt.Sprintf("death player=%s cause=%s day=%d", d.Player, d.Cause, d.Day))
			}
			return trace
		}
	}
	t.Fatal("match did not terminate")
	return nil
}

func TestMachineFullMatchIsSeedDeterministic(t *testing.T) {
	first := matchTrace(t, testSeeds())
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, matchTrace(t, testSeeds()))
	}
}

func TestMachineFullMatchTerminatesAcrossSeeds(t *testing.T) {
	for seed := int64(1); seed <= 25; seed++ {
		trace := matchTrace(t, Seeds{
			Roster:        seed,
			Roles:         seed * 7,
			PackSelection: seed * 11,
			TurnFallback:  seed * 13,
			NightLeader:   seed * 17,
		})
		require.NotEmpty(t, trace)
	}
}
