package game

import "github.com/wolfpit/wolfpit/internal/randutil"

// Seed stream tags for vote finalization. Each tag isolates one kind of
// draw so draws never share a stream across purposes.
const (
	streamVoteFallback int64 = iota + 1
	streamTieBreak
)

// FinalizeInput is everything vote finalization needs. Alive must be in
// seating order; it is the deterministic iteration order for fallback
// synthesis and tie-breaking.
type FinalizeInput struct {
	Votes      map[PlayerID]PlayerID
	Suspicions map[PlayerID]PlayerID
	Alive      []PlayerID
	Seed       int64
	Day        int
	// ResolveTies makes a maximum-count tie resolve to a seeded random
	// choice among the tied candidates. When false the outcome reports
	// the tie and leaves Executed empty, letting the state machine route
	// to a revote instead.
	ResolveTies bool
}

// VoteOutcome is the result of closing a voting round. Every living
// player has exactly one entry in PerVoter, submitted or synthesized.
type VoteOutcome struct {
	Executed    PlayerID
	PerVoter    map[PlayerID]PlayerID
	Counts      map[PlayerID]int
	Tied        []PlayerID
	TieResolved bool
}

// FinalizeVotes fills abstentions, tallies and selects the execution
// target. Abstaining voters get their most recent stated suspicion if it
// is a living player other than themselves, otherwise a seeded random
// living target excluding self.
func FinalizeVotes(in FinalizeInput) VoteOutcome {
	alive := make(map[PlayerID]bool, len(in.Alive))
	for _, id := range in.Alive {
		alive[id] = true
	}

	perVoter := make(map[PlayerID]PlayerID, len(in.Alive))
	for seat, voter := range in.Alive {
		if target, ok := in.Votes[voter]; ok && alive[target] && target != voter {
			perVoter[voter] = target
			continue
		}
		if suspect, ok := in.Suspicions[voter]; ok && alive[suspect] && suspect != voter {
			perVoter[voter] = suspect
			continue
		}
		candidates := make([]PlayerID, 0, len(in.Alive)-1)
		for _, id := range in.Alive {
			if id != voter {
				candidates = append(candidates, id)
			}
		}
		rng := randutil.Derive(in.Seed, int64(in.Day), streamVoteFallback, int64(seat))
		perVoter[voter] = randutil.Choice(rng, candidates)
	}

	counts := make(map[PlayerID]int)
	for _, target := range perVoter {
		counts[target]++
	}

	max := 0
	for _, c := range counts {
		if c > max {
			max = c
		}
	}
	var tied []PlayerID
	for _, id := range in.Alive { // seating order keeps the tie set stable
		if counts[id] == max {
			tied = append(tied, id)
		}
	}

	out := VoteOutcome{PerVoter: perVoter, Counts: counts}
	switch {
	case len(tied) == 1:
		out.Executed = tied[0]
	case in.ResolveTies:
		rng := randutil.Derive(in.Seed, int64(in.Day), streamTieBreak)
		out.Executed = randutil.Choice(rng, tied)
		out.TieResolved = true
	default:
		out.Tied = tied
	}
	return out
}
