package agent

import "github.com/wolfpit/wolfpit/internal/game"

// Scripted replays a fixed sequence of choices, for tests that need a
// seat to do something specific. When a queue runs out it falls back to
// the role's built-in policy.
type Scripted struct {
	Role   game.Role
	Votes  []game.PlayerID
	Nights []NightChoice

	voteIdx  int
	nightIdx int
}

// VoteTarget implements Agent.
func (s *Scripted) VoteTarget(v View) game.PlayerID {
	if s.voteIdx < len(s.Votes) {
		t := s.Votes[s.voteIdx]
		s.voteIdx++
		return t
	}
	return ForRole(s.Role).VoteTarget(v)
}

// NightChoice implements Agent.
func (s *Scripted) NightChoice(v View) NightChoice {
	if s.nightIdx < len(s.Nights) {
		c := s.Nights[s.nightIdx]
		s.nightIdx++
		return c
	}
	return ForRole(s.Role).NightChoice(v)
}
