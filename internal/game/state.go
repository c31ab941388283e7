package game

import (
	"time"
)

// PlayerID uniquely identifies a participant within a match.
type PlayerID string

// Player is one seat in the roster. Seating order is insertion order and
// is stable for the life of the match; it doubles as the deterministic
// iteration order everywhere randomness or tie-break fallbacks need one.
type Player struct {
	ID    PlayerID
	Name  string
	Human bool
}

// Seeds is the fixed set of independent seeds established at match
// creation. Every random decision in the match derives from one of these
// plus a deterministic offset, so an identical seed set replays an
// identical match.
type Seeds struct {
	Roster        int64
	Roles         int64
	PackSelection int64
	TurnFallback  int64
	NightLeader   int64
}

// PhaseDurations holds the wall-clock budget for each timed phase.
type PhaseDurations struct {
	FreeTalk     time.Duration
	Vote         time.Duration
	LastWill     time.Duration
	WolfChat     time.Duration
	NightActions time.Duration
	Dawn         time.Duration
}

// DefaultPhaseDurations returns the standard phase budgets.
func DefaultPhaseDurations() PhaseDurations {
	return PhaseDurations{
		FreeTalk:     3 * time.Minute,
		Vote:         time.Minute,
		LastWill:     30 * time.Second,
		WolfChat:     90 * time.Second,
		NightActions: time.Minute,
		Dawn:         20 * time.Second,
	}
}

// For returns the budget for a phase, or zero for untimed phases.
func (d PhaseDurations) For(p Phase) time.Duration {
	switch p {
	case PhaseDayFreeTalk, PhaseDayRevoteTalk:
		return d.FreeTalk
	case PhaseDayVote, PhaseDayRevote:
		return d.Vote
	case PhaseLastWill:
		return d.LastWill
	case PhaseNightWolfChat:
		return d.WolfChat
	case PhaseNightActions:
		return d.NightActions
	case PhaseDawn:
		return d.Dawn
	default:
		return 0
	}
}

// MatchConfig is the immutable configuration of one match.
type MatchConfig struct {
	// PackNames selects packs explicitly, in application order.
	// Ignored when RandomPackSelection is set.
	PackNames []string
	// RandomPackSelection picks packs from the catalog using the
	// PackSelection seed.
	RandomPackSelection bool
	Durations           PhaseDurations
	// ArchiveDir receives the final match record; empty disables archiving.
	ArchiveDir string
}

// NightActionKind distinguishes the submittable night actions. The
// faction attack travels as its own event, not a NightAction.
type NightActionKind int

const (
	ActionDivine NightActionKind = iota
	ActionGuard
)

// String returns the action name.
func (k NightActionKind) String() string {
	if k == ActionGuard {
		return "guard"
	}
	return "divine"
}

// NightAction is one submitted night action, last submission wins.
type NightAction struct {
	Kind   NightActionKind
	Target PlayerID
}

// DeathCause records why a player died.
type DeathCause int

const (
	CauseExecution DeathCause = iota
	CauseAttack
	CauseCurse
	CauseRetaliation
	CauseCascade
	CauseChainKill
)

// String returns the cause name.
func (c DeathCause) String() string {
	switch c {
	case CauseExecution:
		return "execution"
	case CauseAttack:
		return "attack"
	case CauseCurse:
		return "curse"
	case CauseRetaliation:
		return "retaliation"
	case CauseCascade:
		return "cascade"
	case CauseChainKill:
		return "chain_kill"
	default:
		return "unknown"
	}
}

// DeathRecord is one entry in the append-only death log.
type DeathRecord struct {
	Player PlayerID
	Cause  DeathCause
	Day    int
}

// GameState is the single mutable aggregate for one match. It is owned
// exclusively by the state machine: every mutation flows through
// Machine.Apply under the match's transition lock.
type GameState struct {
	Phase   Phase
	Day     int
	Players []Player
	Alive   map[PlayerID]bool
	Roles   map[PlayerID]Role

	// Per-round scratch, cleared at the top of each round of its kind.
	Votes        map[PlayerID]PlayerID
	Suspicions   map[PlayerID]PlayerID
	NightActions map[PlayerID]NightAction
	Attacks      map[PlayerID]PlayerID

	Deaths []DeathRecord

	Seeds  Seeds
	Config MatchConfig

	SelectedPacks []Pack
	PackFellBack  bool
	PackWarnings  []string

	// Transient cross-phase fields.
	TiedCandidates []PlayerID
	RevoteUsed     bool
	LastExecuted   PlayerID

	Winner    Faction
	HasWinner bool
	WinReason string
}

// NewGameState creates a lobby-phase state for the given roster.
func NewGameState(players []Player, seeds Seeds, config MatchConfig) *GameState {
	alive := make(map[PlayerID]bool, len(players))
	for _, p := range players {
		alive[p.ID] = true
	}
	return &GameState{
		Phase:        PhaseLobby,
		Players:      players,
		Alive:        alive,
		Votes:        make(map[PlayerID]PlayerID),
		Suspicions:   make(map[PlayerID]PlayerID),
		NightActions: make(map[PlayerID]NightAction),
		Attacks:      make(map[PlayerID]PlayerID),
		Seeds:        seeds,
		Config:       config,
	}
}

// IsAlive reports whether the player is currently alive.
func (s *GameState) IsAlive(id PlayerID) bool {
	return s.Alive[id]
}

// AliveIDs returns the living players in seating order.
func (s *GameState) AliveIDs() []PlayerID {
	ids := make([]PlayerID, 0, len(s.Players))
	for _, p := range s.Players {
		if s.Alive[p.ID] {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// AliveWolves returns living wolf-species players in seating order.
func (s *GameState) AliveWolves() []PlayerID {
	var ids []PlayerID
	for _, p := range s.Players {
		if s.Alive[p.ID] && s.Roles[p.ID].Species() == SpeciesWolf {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// SeatIndex returns the seating position of a player, or -1.
func (s *GameState) SeatIndex(id PlayerID) int {
	for i, p := range s.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// PlayerByID looks up a roster entry.
func (s *GameState) PlayerByID(id PlayerID) (Player, bool) {
	for _, p := range s.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// Kill removes a player from the living set and appends to the death
// log. A player removed from the living set is never re-added. Killing
// an already-dead player is a no-op.
func (s *GameState) Kill(id PlayerID, cause DeathCause) {
	if !s.Alive[id] {
		return
	}
	delete(s.Alive, id)
	s.Deaths = append(s.Deaths, DeathRecord{Player: id, Cause: cause, Day: s.Day})
}

// RoleOf returns the assigned role for a player. Dead players keep their
// role for reveal and medium purposes.
func (s *GameState) RoleOf(id PlayerID) Role {
	return s.Roles[id]
}
