package game

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// testLogger returns a silent logger for machine construction in tests.
func testLogger() *log.Logger {
	return log.New(io.Discard)
}

// testSeeds returns a fixed seed set for deterministic tests.
func testSeeds() Seeds {
	return Seeds{
		Roster:        101,
		Roles:         202,
		PackSelection: 303,
		TurnFallback:  404,
		NightLeader:   505,
	}
}

// newTestState builds a state with one player per given role, already
// past role assignment. Player ids are p1, p2, ... in seating order.
func newTestState(roles ...Role) *GameState {
	players := make([]Player, len(roles))
	for i := range roles {
		players[i] = Player{ID: PlayerID(fmt.Sprintf("p%d", i+1)), Name: fmt.Sprintf("player-%d", i+1)}
	}
	s := NewGameState(players, testSeeds(), MatchConfig{Durations: DefaultPhaseDurations()})
	s.Roles = make(map[PlayerID]Role, len(roles))
	for i, r := range roles {
		s.Roles[players[i].ID] = r
	}
	s.Day = 1
	return s
}

// elevenPlayers builds a fixed lobby roster of RosterSize players.
func elevenPlayers() []Player {
	players := make([]Player, RosterSize)
	for i := range players {
		players[i] = Player{ID: PlayerID(fmt.Sprintf("p%d", i+1)), Name: fmt.Sprintf("player-%d", i+1)}
	}
	return players
}
