package game

import "time"

// NotificationType discriminates outbound notifications.
type NotificationType string

const (
	NotifPhaseChanged  NotificationType = "phase_changed"
	NotifPackSelection NotificationType = "pack_selection"
	NotifRoleAssigned  NotificationType = "role_assigned"
	NotifVoteRecorded  NotificationType = "vote_recorded"
	NotifVoteResult    NotificationType = "vote_result"
	NotifLastWill      NotificationType = "last_will"
	NotifWolfChat      NotificationType = "wolf_chat"
	NotifNightResult   NotificationType = "night_result"
	NotifDivination    NotificationType = "divination"
	NotifMediumResult  NotificationType = "medium_result"
	NotifGuardResult   NotificationType = "guard_result"
	NotifGameOver      NotificationType = "game_over"
)

// Audience says who may see a notification. Zero value means nobody;
// use Broadcast or To.
type Audience struct {
	Everyone bool
	Players  []PlayerID
}

// Broadcast addresses every participant.
func Broadcast() Audience { return Audience{Everyone: true} }

// To addresses specific players only.
func To(ids ...PlayerID) Audience { return Audience{Players: ids} }

// Includes reports whether the audience covers the given player.
func (a Audience) Includes(id PlayerID) bool {
	if a.Everyone {
		return true
	}
	for _, p := range a.Players {
		if p == id {
			return true
		}
	}
	return false
}

// Notification is an outbound event emitted by a transition. The machine
// produces them; the engine routes them to subscribers respecting the
// audience.
type Notification interface {
	Type() NotificationType
	Audience() Audience
}

// PhaseChangedNotification announces the new phase. Duration is the
// phase budget; the engine turns it into an absolute deadline because
// handlers hold no clock.
type PhaseChangedNotification struct {
	Phase    Phase
	Day      int
	Duration time.Duration
}

// Type implements Notification.
func (PhaseChangedNotification) Type() NotificationType { return NotifPhaseChanged }

// Audience implements Notification.
func (PhaseChangedNotification) Audience() Audience { return Broadcast() }

// PackSelectionNotification announces the packs in play. FellBack marks
// the exhausted-random-selection degradation to the base game.
type PackSelectionNotification struct {
	Packs    []string
	Warnings []string
	FellBack bool
}

// Type implements Notification.
func (PackSelectionNotification) Type() NotificationType { return NotifPackSelection }

// Audience implements Notification.
func (PackSelectionNotification) Audience() Audience { return Broadcast() }

// RoleAssignedNotification privately tells a player their role. Wolves
// additionally learn their packmates.
type RoleAssignedNotification struct {
	Player PlayerID
	Role   Role
	Allies []PlayerID
}

// Type implements Notification.
func (RoleAssignedNotification) Type() NotificationType { return NotifRoleAssigned }

// Audience implements Notification.
func (n RoleAssignedNotification) Audience() Audience { return To(n.Player) }

// VoteRecordedNotification acknowledges a recorded vote or suspicion.
type VoteRecordedNotification struct {
	Voter  PlayerID
	Target PlayerID
}

// Type implements Notification.
func (VoteRecordedNotification) Type() NotificationType { return NotifVoteRecorded }

// Audience implements Notification.
func (VoteRecordedNotification) Audience() Audience { return Broadcast() }

// VoteResultNotification announces the finalized tally. Exactly one of
// Executed, Tied (revote pending) or NoExecution describes the outcome.
type VoteResultNotification struct {
	Executed     PlayerID
	Counts       map[PlayerID]int
	PerVoter     map[PlayerID]PlayerID
	Tied         []PlayerID
	TieResolved  bool
	NoExecution  bool
	ChainVictims []PlayerID
}

// Type implements Notification.
func (VoteResultNotification) Type() NotificationType { return NotifVoteResult }

// Audience implements Notification.
func (VoteResultNotification) Audience() Audience { return Broadcast() }

// LastWillNotification broadcasts the executed player's final statement.
type LastWillNotification struct {
	Player PlayerID
	Text   string
}

// Type implements Notification.
func (LastWillNotification) Type() NotificationType { return NotifLastWill }

// Audience implements Notification.
func (LastWillNotification) Audience() Audience { return Broadcast() }

// WolfChatNotification relays a night chat line to living wolves only.
type WolfChatNotification struct {
	From   PlayerID
	Text   string
	Wolves []PlayerID
}

// Type implements Notification.
func (WolfChatNotification) Type() NotificationType { return NotifWolfChat }

// Audience implements Notification.
func (n WolfChatNotification) Audience() Audience { return To(n.Wolves...) }

// NightResultNotification announces who died overnight. Roles are not
// revealed; only the death log entries for this night.
type NightResultNotification struct {
	Deaths []DeathRecord
}

// Type implements Notification.
func (NightResultNotification) Type() NotificationType { return NotifNightResult }

// Audience implements Notification.
func (NightResultNotification) Audience() Audience { return Broadcast() }

// DivinationNotification privately delivers a seer's result.
type DivinationNotification struct {
	Seer     PlayerID
	Target   PlayerID
	Judgment Judgment
}

// Type implements Notification.
func (DivinationNotification) Type() NotificationType { return NotifDivination }

// Audience implements Notification.
func (n DivinationNotification) Audience() Audience { return To(n.Seer) }

// MediumResultNotification privately delivers a medium's reading of the
// executed player.
type MediumResultNotification struct {
	Medium   PlayerID
	Target   PlayerID
	Judgment Judgment
}

// Type implements Notification.
func (MediumResultNotification) Type() NotificationType { return NotifMediumResult }

// Audience implements Notification.
func (n MediumResultNotification) Audience() Audience { return To(n.Medium) }

// GuardResultNotification privately tells a guardian whether their guard
// mattered against the actual attack.
type GuardResultNotification struct {
	Guardian PlayerID
	Target   PlayerID
	Success  bool
}

// Type implements Notification.
func (GuardResultNotification) Type() NotificationType { return NotifGuardResult }

// Audience implements Notification.
func (n GuardResultNotification) Audience() Audience { return To(n.Guardian) }

// GameOverNotification carries the winner and the full role reveal.
type GameOverNotification struct {
	Winner Faction
	Reason string
	Roles  map[PlayerID]Role
}

// Type implements Notification.
func (GameOverNotification) Type() NotificationType { return NotifGameOver }

// Audience implements Notification.
func (GameOverNotification) Audience() Audience { return Broadcast() }
