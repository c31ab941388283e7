package game

// EventKind discriminates inbound events. The transition table is keyed
// on (phase, kind); pairs without an entry are illegal.
type EventKind int

const (
	EventStart EventKind = iota
	EventRolesAssigned
	EventStartDay
	EventStartVote
	EventVote
	EventVoteComplete
	EventLastWillComplete
	EventCheckVictory
	EventStartNight
	EventWolfChatMessage
	EventStartNightActions
	EventNightAction
	EventFactionAttack
	EventResolveNight
	EventDawnComplete
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventRolesAssigned:
		return "roles_assigned"
	case EventStartDay:
		return "start_day"
	case EventStartVote:
		return "start_vote"
	case EventVote:
		return "vote"
	case EventVoteComplete:
		return "vote_complete"
	case EventLastWillComplete:
		return "last_will_complete"
	case EventCheckVictory:
		return "check_victory"
	case EventStartNight:
		return "start_night"
	case EventWolfChatMessage:
		return "wolf_chat_message"
	case EventStartNightActions:
		return "start_night_actions"
	case EventNightAction:
		return "night_action"
	case EventFactionAttack:
		return "faction_attack"
	case EventResolveNight:
		return "resolve_night"
	case EventDawnComplete:
		return "dawn_complete"
	default:
		return "unknown"
	}
}

// Event is an inbound occurrence the state machine may consume: a player
// action or a phase-advancing signal (typically timer-driven).
type Event interface {
	Kind() EventKind
}

// StartEvent begins the match from the lobby.
type StartEvent struct{}

// Kind implements Event.
func (StartEvent) Kind() EventKind { return EventStart }

// RolesAssignedEvent requests pack selection and role assignment.
type RolesAssignedEvent struct{}

// Kind implements Event.
func (RolesAssignedEvent) Kind() EventKind { return EventRolesAssigned }

// StartDayEvent opens the next day's free talk.
type StartDayEvent struct{}

// Kind implements Event.
func (StartDayEvent) Kind() EventKind { return EventStartDay }

// StartVoteEvent opens a voting round.
type StartVoteEvent struct{}

// Kind implements Event.
func (StartVoteEvent) Kind() EventKind { return EventStartVote }

// VoteEvent records a vote during a voting phase, or a stated suspicion
// during free talk. Later submissions by the same voter overwrite
// earlier ones.
type VoteEvent struct {
	Voter  PlayerID
	Target PlayerID
}

// Kind implements Event.
func (VoteEvent) Kind() EventKind { return EventVote }

// VoteCompleteEvent closes the voting round and finalizes the tally.
type VoteCompleteEvent struct{}

// Kind implements Event.
func (VoteCompleteEvent) Kind() EventKind { return EventVoteComplete }

// LastWillCompleteEvent carries the executed player's final statement.
// Author must be the executed player; an empty Author marks the
// timer-forced close, which carries no statement of its own.
type LastWillCompleteEvent struct {
	Author PlayerID
	Text   string
}

// Kind implements Event.
func (LastWillCompleteEvent) Kind() EventKind { return EventLastWillComplete }

// CheckVictoryEvent asks the machine to evaluate win conditions.
type CheckVictoryEvent struct{}

// Kind implements Event.
func (CheckVictoryEvent) Kind() EventKind { return EventCheckVictory }

// StartNightEvent moves from the end-of-day check into wolf chat.
type StartNightEvent struct{}

// Kind implements Event.
func (StartNightEvent) Kind() EventKind { return EventStartNight }

// WolfChatMessageEvent is a night chat line between wolves. It affects
// no state beyond phase bookkeeping; the machine relays it privately.
type WolfChatMessageEvent struct {
	From PlayerID
	Text string
}

// Kind implements Event.
func (WolfChatMessageEvent) Kind() EventKind { return EventWolfChatMessage }

// StartNightActionsEvent closes wolf chat and opens action submission.
type StartNightActionsEvent struct{}

// Kind implements Event.
func (StartNightActionsEvent) Kind() EventKind { return EventStartNightActions }

// NightActionEvent submits a divination or guard action.
type NightActionEvent struct {
	Actor  PlayerID
	Action NightActionKind
	Target PlayerID
}

// Kind implements Event.
func (NightActionEvent) Kind() EventKind { return EventNightAction }

// FactionAttackEvent submits a wolf's attack preference.
type FactionAttackEvent struct {
	Attacker PlayerID
	Target   PlayerID
}

// Kind implements Event.
func (FactionAttackEvent) Kind() EventKind { return EventFactionAttack }

// ResolveNightEvent closes action submission and runs the night resolver.
type ResolveNightEvent struct{}

// Kind implements Event.
func (ResolveNightEvent) Kind() EventKind { return EventResolveNight }

// DawnCompleteEvent closes the dawn announcement.
type DawnCompleteEvent struct{}

// Kind implements Event.
func (DawnCompleteEvent) Kind() EventKind { return EventDawnComplete }
