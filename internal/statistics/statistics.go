// Package statistics aggregates simulated match outcomes into
// per-faction and per-role summaries.
package statistics

import (
	"fmt"
	"sort"

	"github.com/wolfpit/wolfpit/internal/game"
)

// MatchResult is the outcome of one simulated match.
type MatchResult struct {
	Seed      int64
	Winner    game.Faction
	WinReason string
	Days      int
	Deaths    int
	Survivors int
	Packs     []string
	FellBack  bool
	Roles     map[game.PlayerID]game.Role
	Alive     map[game.PlayerID]bool
}

// RoleStats tracks one role across matches.
type RoleStats struct {
	Appearances int
	Survived    int
	OnWinner    int
}

// Statistics accumulates match results.
type Statistics struct {
	Matches  int
	Wins     map[game.Faction]int
	SumDays  int
	MaxDays  int
	FellBack int
	PackUse  map[string]int
	Roles    map[game.Role]*RoleStats
}

// New returns empty statistics.
func New() *Statistics {
	return &Statistics{
		Wins:    make(map[game.Faction]int),
		PackUse: make(map[string]int),
		Roles:   make(map[game.Role]*RoleStats),
	}
}

// Add folds one match result in.
func (s *Statistics) Add(r MatchResult) {
	s.Matches++
	s.Wins[r.Winner]++
	s.SumDays += r.Days
	if r.Days > s.MaxDays {
		s.MaxDays = r.Days
	}
	if r.FellBack {
		s.FellBack++
	}
	for _, p := range r.Packs {
		s.PackUse[p]++
	}
	for id, role := range r.Roles {
		rs := s.Roles[role]
		if rs == nil {
			rs = &RoleStats{}
			s.Roles[role] = rs
		}
		rs.Appearances++
		if r.Alive[id] {
			rs.Survived++
		}
		if role.Faction() == r.Winner {
			rs.OnWinner++
		}
	}
}

// WinRate returns the fraction of matches a faction won.
func (s *Statistics) WinRate(f game.Faction) float64 {
	if s.Matches == 0 {
		return 0
	}
	return float64(s.Wins[f]) / float64(s.Matches)
}

// MeanDays returns the average match length in days.
func (s *Statistics) MeanDays() float64 {
	if s.Matches == 0 {
		return 0
	}
	return float64(s.SumDays) / float64(s.Matches)
}

// SurvivalRate returns how often a role survived to game over.
func (s *Statistics) SurvivalRate(role game.Role) float64 {
	rs := s.Roles[role]
	if rs == nil || rs.Appearances == 0 {
		return 0
	}
	return float64(rs.Survived) / float64(rs.Appearances)
}

// Validate checks internal consistency.
func (s *Statistics) Validate() error {
	total := 0
	for _, n := range s.Wins {
		total += n
	}
	if total != s.Matches {
		return fmt.Errorf("win counts (%d) do not sum to match count (%d)", total, s.Matches)
	}
	for role, rs := range s.Roles {
		if rs.Survived > rs.Appearances {
			return fmt.Errorf("role %s survived more often than it appeared", role)
		}
	}
	return nil
}

// Summary renders a human-readable report.
func (s *Statistics) Summary() string {
	out := fmt.Sprintf("matches: %d\n", s.Matches)
	out += fmt.Sprintf("mean days: %.2f (max %d)\n", s.MeanDays(), s.MaxDays)
	for _, f := range []game.Faction{game.FactionVillage, game.FactionWolves, game.FactionThirdParty} {
		out += fmt.Sprintf("%-12s %5d wins (%.1f%%)\n", f.String(), s.Wins[f], s.WinRate(f)*100)
	}
	if s.FellBack > 0 {
		out += fmt.Sprintf("pack selection fell back to base game in %d matches\n", s.FellBack)
	}

	roles := make([]game.Role, 0, len(s.Roles))
	for role := range s.Roles {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	for _, role := range roles {
		rs := s.Roles[role]
		out += fmt.Sprintf("role %-12s seen %4d, survived %.1f%%, on winning side %.1f%%\n",
			role.String(), rs.Appearances,
			float64(rs.Survived)/float64(rs.Appearances)*100,
			float64(rs.OnWinner)/float64(rs.Appearances)*100)
	}
	return out
}
