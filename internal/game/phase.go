package game

// Phase is a state of the match state machine. PhaseLobby is initial and
// PhaseGameOver is terminal.
type Phase int

const (
	PhaseLobby Phase = iota
	PhaseInit
	PhaseAssignRoles
	PhaseDayFreeTalk
	PhaseDayVote
	PhaseDayRevoteTalk
	PhaseDayRevote
	PhaseLastWill
	PhaseNightWolfChat
	PhaseNightActions
	PhaseDawn
	PhaseCheckEnd
	PhaseGameOver
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhaseInit:
		return "init"
	case PhaseAssignRoles:
		return "assign_roles"
	case PhaseDayFreeTalk:
		return "day_free_talk"
	case PhaseDayVote:
		return "day_vote"
	case PhaseDayRevoteTalk:
		return "day_revote_talk"
	case PhaseDayRevote:
		return "day_revote"
	case PhaseLastWill:
		return "last_will"
	case PhaseNightWolfChat:
		return "night_wolf_chat"
	case PhaseNightActions:
		return "night_actions"
	case PhaseDawn:
		return "dawn"
	case PhaseCheckEnd:
		return "check_end"
	case PhaseGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// Terminal reports whether the phase accepts no further events.
func (p Phase) Terminal() bool {
	return p == PhaseGameOver
}
