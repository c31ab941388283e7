package game

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/wolfpit/wolfpit/internal/randutil"
)

// RosterSize is the fixed number of players (and roles) in a match.
const RosterSize = 11

// ConstraintKind tags a pack with a combination rule checked when packs
// are selected together.
type ConstraintKind int

const (
	// ConstraintThirdPartyExclusive allows at most one such pack per match.
	ConstraintThirdPartyExclusive ConstraintKind = iota
	// ConstraintJudgmentExclusive allows at most one such pack per match.
	ConstraintJudgmentExclusive
	// ConstraintWeightReduction is a soft tag: two such packs together
	// produce a warning, never an error.
	ConstraintWeightReduction
)

// String returns the constraint name.
func (c ConstraintKind) String() string {
	switch c {
	case ConstraintThirdPartyExclusive:
		return "third_party_exclusive"
	case ConstraintJudgmentExclusive:
		return "judgment_exclusive"
	case ConstraintWeightReduction:
		return "weight_reduction"
	default:
		return "unknown"
	}
}

// Pack is an optional named bundle of role substitutions applied to the
// base role multiset. Replaces and Introduces are parallel: each replaced
// occurrence is swapped for one introduced role, keeping the total at
// RosterSize throughout.
type Pack struct {
	Name        string
	Replaces    []Role
	Introduces  []Role
	Constraints []ConstraintKind
}

func (p Pack) hasConstraint(kind ConstraintKind) bool {
	for _, c := range p.Constraints {
		if c == kind {
			return true
		}
	}
	return false
}

// Catalog returns the packs a match may select from.
func Catalog() []Pack {
	return []Pack{
		{
			Name:        "fox",
			Replaces:    []Role{RoleVillager},
			Introduces:  []Role{RoleFox},
			Constraints: []ConstraintKind{ConstraintThirdPartyExclusive},
		},
		{
			Name:        "immoralist",
			Replaces:    []Role{RoleVillager},
			Introduces:  []Role{RoleImmoralist},
			Constraints: []ConstraintKind{ConstraintWeightReduction},
		},
		{
			Name:        "hunter",
			Replaces:    []Role{RoleVillager},
			Introduces:  []Role{RoleHunter},
			Constraints: []ConstraintKind{ConstraintWeightReduction},
		},
		{
			Name:       "avenger",
			Replaces:   []Role{RoleVillager},
			Introduces: []Role{RoleAvenger},
		},
		{
			Name:        "cursedwolf",
			Replaces:    []Role{RoleWerewolf},
			Introduces:  []Role{RoleCursedWolf},
			Constraints: []ConstraintKind{ConstraintJudgmentExclusive},
		},
		{
			Name:        "fanatic",
			Replaces:    []Role{RoleMadman},
			Introduces:  []Role{RoleFanatic},
			Constraints: []ConstraintKind{ConstraintJudgmentExclusive},
		},
	}
}

// PackByName looks up a catalog pack by name.
func PackByName(name string) (Pack, bool) {
	for _, p := range Catalog() {
		if p.Name == name {
			return p, true
		}
	}
	return Pack{}, false
}

// BaseRoles returns the fixed 11-role base distribution: two wolves, one
// seer, one medium, one guardian, one madman and five villagers.
func BaseRoles() []Role {
	return []Role{
		RoleWerewolf, RoleWerewolf,
		RoleSeer, RoleMedium, RoleGuardian, RoleMadman,
		RoleVillager, RoleVillager, RoleVillager, RoleVillager, RoleVillager,
	}
}

// ValidatePacks checks the combination constraints for a pack selection.
// It returns soft warnings (weight-reduction pairs) and a ValidationError
// for hard violations: the same pack twice, or more than one pack with an
// exclusive constraint.
func ValidatePacks(packs []Pack) ([]string, error) {
	seen := map[string]bool{}
	var thirdParty, judgment, weight int
	for _, p := range packs {
		if seen[p.Name] {
			return nil, newValidationError(fmt.Sprintf("pack %q selected twice", p.Name))
		}
		seen[p.Name] = true
		if p.hasConstraint(ConstraintThirdPartyExclusive) {
			thirdParty++
		}
		if p.hasConstraint(ConstraintJudgmentExclusive) {
			judgment++
		}
		if p.hasConstraint(ConstraintWeightReduction) {
			weight++
		}
	}
	if thirdParty > 1 {
		return nil, newValidationError("more than one third-party exclusive pack selected")
	}
	if judgment > 1 {
		return nil, newValidationError("more than one judgment exclusive pack selected")
	}

	var warnings []string
	if weight > 1 {
		warnings = append(warnings, fmt.Sprintf("%d weight-reduction packs selected together", weight))
	}
	return warnings, nil
}

// BuildRoles composes the final role multiset from the base distribution
// plus the selected packs, applied in order. Each pack replaces exactly
// the base-role occurrences it declares; a declared role that is absent
// from the current multiset is a ValidationError. The result always has
// exactly RosterSize entries.
func BuildRoles(packs []Pack) ([]Role, []string, error) {
	warnings, err := ValidatePacks(packs)
	if err != nil {
		return nil, nil, err
	}

	roles := BaseRoles()
	for _, p := range packs {
		if len(p.Replaces) != len(p.Introduces) {
			return nil, nil, newValidationError(fmt.Sprintf("pack %q replaces %d roles but introduces %d", p.Name, len(p.Replaces), len(p.Introduces)))
		}
		for i, victim := range p.Replaces {
			idx := indexOfRole(roles, victim)
			if idx < 0 {
				return nil, nil, newValidationError(fmt.Sprintf("pack %q replaces %s, which is not in the current multiset", p.Name, victim))
			}
			roles[idx] = p.Introduces[i]
		}
	}

	if len(roles) != RosterSize {
		return nil, nil, newValidationError(fmt.Sprintf("role multiset has %d entries, want %d", len(roles), RosterSize))
	}
	return roles, warnings, nil
}

// PackSelection is the outcome of random pack selection. FellBack is set
// when the attempt budget was exhausted and the match degraded to the
// base game; callers must surface it rather than treat it as a normal
// empty selection.
type PackSelection struct {
	Packs    []Pack
	Attempts int
	FellBack bool
}

// maxSelectionAttempts caps how many candidate pack sets are sampled
// before degrading to the base game.
const maxSelectionAttempts = 100

// RandomPacks picks a pack count in [0,3] and then samples candidate pack
// sets from the catalog, advancing the derived seed per attempt, until a
// set passes validation. On exhaustion it falls back to the empty
// selection and logs a warning.
func RandomPacks(seed int64, catalog []Pack, logger *log.Logger) PackSelection {
	count := randutil.IntRange(randutil.Derive(seed, 0), 0, 3)
	if count == 0 {
		return PackSelection{}
	}
	if count > len(catalog) {
		count = len(catalog)
	}

	for attempt := 1; attempt <= maxSelectionAttempts; attempt++ {
		candidate := randutil.Sample(randutil.Derive(seed, int64(attempt)), catalog, count)
		if _, err := ValidatePacks(candidate); err != nil {
			continue
		}
		if _, _, err := BuildRoles(candidate); err != nil {
			continue
		}
		return PackSelection{Packs: candidate, Attempts: attempt}
	}

	if logger != nil {
		logger.Warn("random pack selection exhausted, falling back to base game",
			"attempts", maxSelectionAttempts, "count", count)
	}
	return PackSelection{Attempts: maxSelectionAttempts, FellBack: true}
}

func indexOfRole(roles []Role, r Role) int {
	for i, have := range roles {
		if have == r {
			return i
		}
	}
	return -1
}
