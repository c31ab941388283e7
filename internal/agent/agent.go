// Package agent defines the decision interface for match participants
// and ships deterministic built-in policies for AI seats. Agents receive
// immutable views of what their seat is allowed to know and return
// choices; they never touch game state.
package agent

import (
	"github.com/wolfpit/wolfpit/internal/game"
	"github.com/wolfpit/wolfpit/internal/randutil"
)

// View is the read-only knowledge available to one seat when deciding.
// Alive is in seating order; private fields are populated only with
// what this seat has legitimately learned.
type View struct {
	Self  game.PlayerID
	Role  game.Role
	Day   int
	Alive []game.PlayerID

	// Allies holds the other wolf-chat members, wolves only.
	Allies []game.PlayerID
	// Divined holds the seer's accumulated results, seer only.
	Divined map[game.PlayerID]game.Judgment
	// MediumReadings holds the medium's accumulated results, medium only.
	MediumReadings map[game.PlayerID]game.Judgment
	// LastGuard is the guardian's previous target, guardian only.
	LastGuard game.PlayerID

	// Seed drives every choice; identical views produce identical
	// decisions.
	Seed int64
}

// NightChoice is a seat's night submission. Action is nil for seats
// with no night ability; Attack is empty for non-wolves.
type NightChoice struct {
	Action *game.NightAction
	Attack game.PlayerID
}

// Agent decides for one seat. Implementations must be deterministic
// functions of the view.
type Agent interface {
	// VoteTarget picks who to vote for during a voting round, and
	// doubles as the stated suspicion during free talk.
	VoteTarget(v View) game.PlayerID

	// NightChoice picks the seat's night submission.
	NightChoice(v View) NightChoice
}

// Seed stream tags, per decision kind so a seat's vote draw never
// collides with its night draw.
const (
	streamVote int64 = iota + 100
	streamNight
)

// ForRole returns the built-in policy for a role.
func ForRole(role game.Role) Agent {
	switch {
	case role.Species() == game.SpeciesWolf:
		return WolfPolicy{}
	case role == game.RoleSeer:
		return SeerPolicy{}
	case role == game.RoleGuardian:
		return GuardianPolicy{}
	default:
		return VillagerPolicy{}
	}
}

// candidates returns living players excluding self and the given set.
func candidates(v View, exclude ...game.PlayerID) []game.PlayerID {
	skip := map[game.PlayerID]bool{v.Self: true}
	for _, id := range exclude {
		skip[id] = true
	}
	var out []game.PlayerID
	for _, id := range v.Alive {
		if !skip[id] {
			out = append(out, id)
		}
	}
	return out
}

func pick(v View, stream int64, pool []game.PlayerID) game.PlayerID {
	if len(pool) == 0 {
		return ""
	}
	rng := randutil.Derive(v.Seed, int64(v.Day), stream, seatOffset(v))
	return randutil.Choice(rng, pool)
}

// seatOffset folds the seat identity into the derivation so two seats
// sharing a seed do not mirror each other's choices.
func seatOffset(v View) int64 {
	var h int64
	for _, c := range []byte(v.Self) {
		h = h*31 + int64(c)
	}
	return h
}

// VillagerPolicy votes for a seeded living player and has no night
// ability. It also serves the madman, hunter, avenger, fox and
// immoralist seats, whose abilities are passive.
type VillagerPolicy struct{}

// VoteTarget implements Agent.
func (VillagerPolicy) VoteTarget(v View) game.PlayerID {
	return pick(v, streamVote, candidates(v))
}

// NightChoice implements Agent.
func (VillagerPolicy) NightChoice(View) NightChoice { return NightChoice{} }

// WolfPolicy votes for a non-ally and attacks a non-ally at night.
type WolfPolicy struct{}

// VoteTarget implements Agent.
func (WolfPolicy) VoteTarget(v View) game.PlayerID {
	pool := candidates(v, v.Allies...)
	if len(pool) == 0 {
		pool = candidates(v)
	}
	return pick(v, streamVote, pool)
}

// NightChoice implements Agent.
func (WolfPolicy) NightChoice(v View) NightChoice {
	pool := candidates(v, v.Allies...)
	return NightChoice{Attack: pick(v, streamNight, pool)}
}

// SeerPolicy divines an unexamined player each night and votes for a
// confirmed wolf when it knows one.
type SeerPolicy struct{}

// VoteTarget implements Agent.
func (SeerPolicy) VoteTarget(v View) game.PlayerID {
	for _, id := range v.Alive {
		if id != v.Self && v.Divined[id] == game.JudgmentWerewolf {
			return id
		}
	}
	return pick(v, streamVote, candidates(v))
}

// NightChoice implements Agent.
func (SeerPolicy) NightChoice(v View) NightChoice {
	var unexamined []game.PlayerID
	for _, id := range v.Alive {
		if id == v.Self {
			continue
		}
		if _, done := v.Divined[id]; !done {
			unexamined = append(unexamined, id)
		}
	}
	target := pick(v, streamNight, unexamined)
	if target == "" {
		target = pick(v, streamNight, candidates(v))
	}
	if target == "" {
		return NightChoice{}
	}
	return NightChoice{Action: &game.NightAction{Kind: game.ActionDivine, Target: target}}
}

// GuardianPolicy guards a seeded living player, avoiding its previous
// target when another candidate exists.
type GuardianPolicy struct{}

// VoteTarget implements Agent.
func (GuardianPolicy) VoteTarget(v View) game.PlayerID {
	return pick(v, streamVote, candidates(v))
}

// NightChoice implements Agent.
func (GuardianPolicy) NightChoice(v View) NightChoice {
	pool := candidates(v, v.LastGuard)
	if len(pool) == 0 {
		pool = candidates(v)
	}
	target := pick(v, streamNight, pool)
	if target == "" {
		return NightChoice{}
	}
	return NightChoice{Action: &game.NightAction{Kind: game.ActionGuard, Target: target}}
}
