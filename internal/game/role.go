package game

// Faction is the allegiance a role fights for. Victory counting uses
// species (wolf vs human headcount), not allegiance: a Madman belongs to
// the wolves but counts as a human when checking parity.
type Faction int

const (
	FactionVillage Faction = iota
	FactionWolves
	FactionThirdParty
)

// String returns the faction name.
func (f Faction) String() string {
	switch f {
	case FactionVillage:
		return "village"
	case FactionWolves:
		return "wolves"
	case FactionThirdParty:
		return "third_party"
	default:
		return "unknown"
	}
}

// Species is what a role truly is underneath its allegiance. Wolf parity
// and the attack rules care about species, never about allegiance.
type Species int

const (
	SpeciesHuman Species = iota
	SpeciesWolf
)

// Judgment is what an oracle (seer or medium) is told about a role.
// Judgment-inverted roles deliberately report the opposite of their
// species.
type Judgment int

const (
	JudgmentHuman Judgment = iota
	JudgmentWerewolf
)

// String returns the judgment name.
func (j Judgment) String() string {
	if j == JudgmentWerewolf {
		return "werewolf"
	}
	return "human"
}

// Role identifies a player's assigned role.
type Role int

const (
	RoleVillager Role = iota
	RoleWerewolf
	RoleSeer
	RoleMedium
	RoleGuardian
	RoleMadman
	RoleFox
	RoleImmoralist
	RoleHunter
	RoleAvenger
	RoleCursedWolf
	RoleFanatic
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleVillager:
		return "villager"
	case RoleWerewolf:
		return "werewolf"
	case RoleSeer:
		return "seer"
	case RoleMedium:
		return "medium"
	case RoleGuardian:
		return "guardian"
	case RoleMadman:
		return "madman"
	case RoleFox:
		return "fox"
	case RoleImmoralist:
		return "immoralist"
	case RoleHunter:
		return "hunter"
	case RoleAvenger:
		return "avenger"
	case RoleCursedWolf:
		return "cursed_wolf"
	case RoleFanatic:
		return "fanatic"
	default:
		return "unknown"
	}
}

// Faction returns the role's allegiance, used for role reveal, wolf chat
// membership and win attribution.
func (r Role) Faction() Faction {
	switch r {
	case RoleWerewolf, RoleCursedWolf, RoleMadman, RoleFanatic:
		return FactionWolves
	case RoleFox, RoleImmoralist:
		return FactionThirdParty
	default:
		return FactionVillage
	}
}

// Species returns the role's true species. Only real wolves are
// SpeciesWolf; the Madman is a human who sides with them.
func (r Role) Species() Species {
	switch r {
	case RoleWerewolf, RoleCursedWolf:
		return SpeciesWolf
	default:
		return SpeciesHuman
	}
}

// Judge returns the oracle mapping shared by the seer's night divination
// and the medium's post-execution reading. The CursedWolf divines human
// despite being a wolf, and the Fanatic variant of the Madman divines
// werewolf despite being human. Both inversions are intentional game
// design, not bugs.
func (r Role) Judge() Judgment {
	switch r {
	case RoleWerewolf, RoleFanatic:
		return JudgmentWerewolf
	default:
		return JudgmentHuman
	}
}

// ChatsWithWolves reports whether the role participates in night wolf
// chat. Sympathizers do not know who the wolves are.
func (r Role) ChatsWithWolves() bool {
	return r.Species() == SpeciesWolf
}
