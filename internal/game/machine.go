package game

import (
	"github.com/charmbracelet/log"
)

type transitionKey struct {
	phase Phase
	event EventKind
}

type handlerFunc func(m *Machine, s *GameState, ev Event) ([]Notification, error)

// Machine validates and executes phase transitions. The transition table
// is explicit: a (phase, event) pair without an entry is rejected with
// ErrIllegalTransition and the state is left untouched. Handlers perform
// no I/O; all randomness flows through the seeds carried by the state.
type Machine struct {
	logger *log.Logger
	table  map[transitionKey]handlerFunc
}

// NewMachine builds a machine with the full transition table.
func NewMachine(logger *log.Logger) *Machine {
	m := &Machine{logger: logger.WithPrefix("machine")}
	m.table = map[transitionKey]handlerFunc{
		{PhaseLobby, EventStart}:          (*Machine).handleStart,
		{PhaseInit, EventRolesAssigned}:   (*Machine).handleRolesAssigned,
		{PhaseAssignRoles, EventStartDay}: (*Machine).handleStartDay,

		{PhaseDayFreeTalk, EventVote}:      (*Machine).handleSuspicion,
		{PhaseDayFreeTalk, EventStartVote}: (*Machine).handleStartVote,

		{PhaseDayVote, EventVote}:         (*Machine).handleVote,
		{PhaseDayVote, EventVoteComplete}: (*Machine).handleVoteComplete,

		{PhaseDayRevoteTalk, EventVote}:      (*Machine).handleSuspicion,
		{PhaseDayRevoteTalk, EventStartVote}: (*Machine).handleStartVote,

		{PhaseDayRevote, EventVote}:         (*Machine).handleVote,
		{PhaseDayRevote, EventVoteComplete}: (*Machine).handleRevoteComplete,

		{PhaseLastWill, EventLastWillComplete}: (*Machine).handleLastWillComplete,

		{PhaseCheckEnd, EventCheckVictory}: (*Machine).handleCheckVictory,
		{PhaseCheckEnd, EventStartNight}:   (*Machine).handleStartNight,
		{PhaseCheckEnd, EventStartDay}:     (*Machine).handleStartDay,

		{PhaseNightWolfChat, EventWolfChatMessage}:   (*Machine).handleWolfChat,
		{PhaseNightWolfChat, EventStartNightActions}: (*Machine).handleStartNightActions,

		{PhaseNightActions, EventNightAction}:   (*Machine).handleNightAction,
		{PhaseNightActions, EventFactionAttack}: (*Machine).handleFactionAttack,
		{PhaseNightActions, EventResolveNight}:  (*Machine).handleResolveNight,

		{PhaseDawn, EventDawnComplete}: (*Machine).handleDawnComplete,
	}
	return m
}

// Apply runs the transition for (state.Phase, event). On error the state
// is unchanged; handlers validate before mutating.
func (m *Machine) Apply(s *GameState, ev Event) ([]Notification, error) {
	h, ok := m.table[transitionKey{s.Phase, ev.Kind()}]
	if !ok {
		return nil, newIllegalTransition(s.Phase, ev.Kind())
	}

	from := s.Phase
	notifs, err := h(m, s, ev)
	if err != nil {
		return nil, err
	}
	if s.Phase != from {
		m.logger.Debug("phase transition", "from", from, "to", s.Phase, "event", ev.Kind(), "day", s.Day)
	}
	return notifs, nil
}

func phaseChanged(s *GameState) Notification {
	return PhaseChangedNotification{Phase: s.Phase, Day: s.Day, Duration: s.Config.Durations.For(s.Phase)}
}

func (m *Machine) handleStart(s *GameState, _ Event) ([]Notification, error) {
	if len(s.Players) != RosterSize {
		return nil, newValidationError("roster has the wrong player count")
	}
	seen := map[PlayerID]bool{}
	for _, p := range s.Players {
		if seen[p.ID] {
			return nil, newValidationError("duplicate player id in roster")
		}
		seen[p.ID] = true
	}
	s.Phase = PhaseInit
	return []Notification{phaseChanged(s)}, nil
}

func (m *Machine) handleRolesAssigned(s *GameState, _ Event) ([]Notification, error) {
	if s.Roles != nil {
		return nil, newValidationError("roles already assigned")
	}

	var sel PackSelection
	if s.Config.RandomPackSelection {
		sel = RandomPacks(s.Seeds.PackSelection, Catalog(), m.logger)
	} else {
		for _, name := range s.Config.PackNames {
			p, ok := PackByName(name)
			if !ok {
				return nil, newValidationError("unknown pack " + name)
			}
			sel.Packs = append(sel.Packs, p)
		}
	}

	roles, warnings, err := BuildRoles(sel.Packs)
	if err != nil {
		return nil, err
	}
	assigned, err := AssignRoles(s.Players, roles, s.Seeds.Roles)
	if err != nil {
		return nil, err
	}

	s.SelectedPacks = sel.Packs
	s.PackFellBack = sel.FellBack
	s.PackWarnings = warnings
	s.Roles = assigned
	s.Phase = PhaseAssignRoles

	packNames := make([]string, len(sel.Packs))
	for i, p := range sel.Packs {
		packNames[i] = p.Name
	}
	notifs := []Notification{
		phaseChanged(s),
		PackSelectionNotification{Packs: packNames, Warnings: warnings, FellBack: sel.FellBack},
	}
	wolves := s.AliveWolves()
	for _, p := range s.Players {
		n := RoleAssignedNotification{Player: p.ID, Role: assigned[p.ID]}
		if assigned[p.ID].ChatsWithWolves() {
			for _, w := range wolves {
				if w != p.ID {
					n.Allies = append(n.Allies, w)
				}
			}
		}
		notifs = append(notifs, n)
	}
	return notifs, nil
}

func (m *Machine) handleStartDay(s *GameState, _ Event) ([]Notification, error) {
	s.Day++
	s.Votes = make(map[PlayerID]PlayerID)
	s.TiedCandidates = nil
	s.RevoteUsed = false
	s.LastExecuted = ""
	s.Phase = PhaseDayFreeTalk
	return []Notification{phaseChanged(s)}, nil
}

func (m *Machine) handleSuspicion(s *GameState, ev Event) ([]Notification, error) {
	v := ev.(VoteEvent)
	if err := m.checkVote(s, v); err != nil {
		return nil, err
	}
	s.Suspicions[v.Voter] = v.Target
	return []Notification{VoteRecordedNotification{Voter: v.Voter, Target: v.Target}}, nil
}

func (m *Machine) handleStartVote(s *GameState, _ Event) ([]Notification, error) {
	s.Votes = make(map[PlayerID]PlayerID)
	if s.RevoteUsed {
		s.Phase = PhaseDayRevote
	} else {
		s.Phase = PhaseDayVote
	}
	return []Notification{phaseChanged(s)}, nil
}

func (m *Machine) handleVote(s *GameState, ev Event) ([]Notification, error) {
	v := ev.(VoteEvent)
	if err := m.checkVote(s, v); err != nil {
		return nil, err
	}
	s.Votes[v.Voter] = v.Target
	s.Suspicions[v.Voter] = v.Target
	return []Notification{VoteRecordedNotification{Voter: v.Voter, Target: v.Target}}, nil
}

func (m *Machine) checkVote(s *GameState, v VoteEvent) error {
	if !s.IsAlive(v.Voter) {
		return newConstraintError("voter %s is not alive", v.Voter)
	}
	if !s.IsAlive(v.Target) {
		return newConstraintError("vote target %s is not alive", v.Target)
	}
	if v.Voter == v.Target {
		return newConstraintError("player %s cannot vote for themselves", v.Voter)
	}
	return nil
}

func (m *Machine) finalize(s *GameState) VoteOutcome {
	return FinalizeVotes(FinalizeInput{
		Votes:      s.Votes,
		Suspicions: s.Suspicions,
		Alive:      s.AliveIDs(),
		Seed:       s.Seeds.TurnFallback,
		Day:        s.Day,
	})
}

func (m *Machine) handleVoteComplete(s *GameState, _ Event) ([]Notification, error) {
	out := m.finalize(s)
	if out.Executed == "" {
		// First tie of the day routes to a revote.
		s.TiedCandidates = out.Tied
		s.RevoteUsed = true
		s.Phase = PhaseDayRevoteTalk
		return []Notification{
			VoteResultNotification{Counts: out.Counts, PerVoter: out.PerVoter, Tied: out.Tied},
			phaseChanged(s),
		}, nil
	}
	return m.applyExecution(s, out), nil
}

func (m *Machine) handleRevoteComplete(s *GameState, _ Event) ([]Notification, error) {
	out := m.finalize(s)
	if out.Executed == "" {
		// Still tied after the revote: nobody is executed today.
		s.Votes = make(map[PlayerID]PlayerID)
		s.TiedCandidates = nil
		s.LastExecuted = ""
		s.Phase = PhaseCheckEnd
		return []Notification{
			VoteResultNotification{Counts: out.Counts, PerVoter: out.PerVoter, Tied: out.Tied, NoExecution: true},
			phaseChanged(s),
		}, nil
	}
	return m.applyExecution(s, out), nil
}

func (m *Machine) applyExecution(s *GameState, out VoteOutcome) []Notification {
	exec := ResolveExecution(s, out.Executed, s.Day, s.Seeds.TurnFallback)
	for _, d := range exec.Deaths {
		s.Kill(d.Player, d.Cause)
	}
	s.LastExecuted = out.Executed
	s.TiedCandidates = nil
	s.Phase = PhaseLastWill
	return []Notification{
		VoteResultNotification{
			Executed:     out.Executed,
			Counts:       out.Counts,
			PerVoter:     out.PerVoter,
			TieResolved:  out.TieResolved,
			ChainVictims: exec.ChainVictims,
		},
		phaseChanged(s),
	}
}

func (m *Machine) handleLastWillComplete(s *GameState, ev Event) ([]Notification, error) {
	will := ev.(LastWillCompleteEvent)
	if will.Author != "" && will.Author != s.LastExecuted {
		return nil, newConstraintError("player %s is not the executed player", will.Author)
	}
	notifs := []Notification{}
	if s.LastExecuted != "" && will.Text != "" {
		notifs = append(notifs, LastWillNotification{Player: s.LastExecuted, Text: will.Text})
	}
	s.Phase = PhaseCheckEnd
	return append(notifs, phaseChanged(s)), nil
}

func (m *Machine) handleCheckVictory(s *GameState, _ Event) ([]Notification, error) {
	res := CheckVictory(s)
	if !res.HasWinner {
		return nil, nil
	}
	s.HasWinner = true
	s.Winner = res.Winner
	s.WinReason = res.Reason
	s.Phase = PhaseGameOver

	reveal := make(map[PlayerID]Role, len(s.Roles))
	for id, r := range s.Roles {
		reveal[id] = r
	}
	return []Notification{
		phaseChanged(s),
		GameOverNotification{Winner: res.Winner, Reason: res.Reason, Roles: reveal},
	}, nil
}

func (m *Machine) handleStartNight(s *GameState, _ Event) ([]Notification, error) {
	s.Phase = PhaseNightWolfChat
	return []Notification{phaseChanged(s)}, nil
}

func (m *Machine) handleWolfChat(s *GameState, ev Event) ([]Notification, error) {
	msg := ev.(WolfChatMessageEvent)
	if !s.IsAlive(msg.From) {
		return nil, newConstraintError("chat sender %s is not alive", msg.From)
	}
	if !s.Roles[msg.From].ChatsWithWolves() {
		return nil, newConstraintError("player %s is not in the wolf chat", msg.From)
	}
	return []Notification{WolfChatNotification{From: msg.From, Text: msg.Text, Wolves: s.AliveWolves()}}, nil
}

func (m *Machine) handleStartNightActions(s *GameState, _ Event) ([]Notification, error) {
	s.NightActions = make(map[PlayerID]NightAction)
	s.Attacks = make(map[PlayerID]PlayerID)
	s.Phase = PhaseNightActions
	return []Notification{phaseChanged(s)}, nil
}

func (m *Machine) handleNightAction(s *GameState, ev Event) ([]Notification, error) {
	act := ev.(NightActionEvent)
	if !s.IsAlive(act.Actor) {
		return nil, newConstraintError("actor %s is not alive", act.Actor)
	}
	if !s.IsAlive(act.Target) {
		return nil, newConstraintError("action target %s is not alive", act.Target)
	}
	if act.Actor == act.Target {
		return nil, newConstraintError("player %s cannot target themselves", act.Actor)
	}
	role := s.Roles[act.Actor]
	switch act.Action {
	case ActionDivine:
		if role != RoleSeer {
			return nil, newConstraintError("player %s is not the seer", act.Actor)
		}
	case ActionGuard:
		if role != RoleGuardian {
			return nil, newConstraintError("player %s is not the guardian", act.Actor)
		}
	default:
		return nil, newConstraintError("unknown night action")
	}
	s.NightActions[act.Actor] = NightAction{Kind: act.Action, Target: act.Target}
	return nil, nil
}

func (m *Machine) handleFactionAttack(s *GameState, ev Event) ([]Notification, error) {
	atk := ev.(FactionAttackEvent)
	if !s.IsAlive(atk.Attacker) {
		return nil, newConstraintError("attacker %s is not alive", atk.Attacker)
	}
	if s.Roles[atk.Attacker].Species() != SpeciesWolf {
		return nil, newConstraintError("player %s cannot attack", atk.Attacker)
	}
	if !s.IsAlive(atk.Target) {
		return nil, newConstraintError("attack target %s is not alive", atk.Target)
	}
	if s.Roles[atk.Target].Species() == SpeciesWolf {
		return nil, newConstraintError("wolves cannot attack each other")
	}
	s.Attacks[atk.Attacker] = atk.Target
	return nil, nil
}

func (m *Machine) handleResolveNight(s *GameState, _ Event) ([]Notification, error) {
	res := ResolveNight(s, NightInput{
		Actions:      s.NightActions,
		Attacks:      s.Attacks,
		Executed:     s.LastExecuted,
		Day:          s.Day,
		FallbackSeed: s.Seeds.TurnFallback,
		LeaderSeed:   s.Seeds.NightLeader,
	})
	for _, d := range res.Deaths {
		s.Kill(d.Player, d.Cause)
	}
	s.Phase = PhaseDawn

	notifs := []Notification{
		phaseChanged(s),
		NightResultNotification{Deaths: res.Deaths},
	}
	for _, d := range res.Divinations {
		notifs = append(notifs, DivinationNotification{Seer: d.Seer, Target: d.Target, Judgment: d.Judgment})
	}
	for _, p := range res.Protections {
		notifs = append(notifs, GuardResultNotification{Guardian: p.Guardian, Target: p.Target, Success: p.Success})
	}
	for _, mr := range res.MediumResults {
		notifs = append(notifs, MediumResultNotification{Medium: mr.Medium, Target: mr.Target, Judgment: mr.Judgment})
	}
	return notifs, nil
}

func (m *Machine) handleDawnComplete(s *GameState, _ Event) ([]Notification, error) {
	s.Phase = PhaseCheckEnd
	return []Notification{phaseChanged(s)}, nil
}
