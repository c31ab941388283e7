package game

import (
	"fmt"

	"github.com/wolfpit/wolfpit/internal/randutil"
)

// AssignRoles shuffles the role multiset with the given seed and deals it
// onto the players in seating order. The same (players, roles, seed)
// triple always yields the same mapping; replays and seed-stability tests
// depend on that.
func AssignRoles(players []Player, roles []Role, seed int64) (map[PlayerID]Role, error) {
	if len(players) != len(roles) {
		return nil, newValidationError(fmt.Sprintf("%d players but %d roles", len(players), len(roles)))
	}

	shuffled := make([]Role, len(roles))
	copy(shuffled, roles)
	randutil.Shuffle(randutil.New(seed), shuffled)

	assigned := make(map[PlayerID]Role, len(players))
	for i, p := range players {
		assigned[p.ID] = shuffled[i]
	}
	return assigned, nil
}
