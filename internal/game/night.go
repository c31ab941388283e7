package game

import "github.com/wolfpit/wolfpit/internal/randutil"

// Seed stream tags for night and execution resolution. Numbered apart
// from the vote streams so no two draws in a day share a stream.
const (
	streamNightLeader int64 = iota + 10
	streamRetaliation
	streamChainKill
	streamExecutionChain
)

// NightInput carries the submitted actions into one resolution pass.
type NightInput struct {
	Actions map[PlayerID]NightAction
	Attacks map[PlayerID]PlayerID
	// Executed is the player executed earlier this day cycle, consumed by
	// the medium step. The resolver never derives it internally.
	Executed     PlayerID
	Day          int
	FallbackSeed int64
	LeaderSeed   int64
}

// DivinationOutcome is one seer's private result.
type DivinationOutcome struct {
	Seer     PlayerID
	Target   PlayerID
	Judgment Judgment
}

// MediumOutcome is one medium's private reading of the executed player.
type MediumOutcome struct {
	Medium   PlayerID
	Target   PlayerID
	Judgment Judgment
}

// ProtectionOutcome is one guardian's private result against the actual
// attack target.
type ProtectionOutcome struct {
	Guardian PlayerID
	Target   PlayerID
	Success  bool
}

// NightResult is the output of one night resolution pass. Deaths are in
// resolution order; the state machine applies them to the death log.
type NightResult struct {
	Deaths        []DeathRecord
	ChainVictims  []PlayerID
	Divinations   []DivinationOutcome
	MediumResults []MediumOutcome
	Protections   []ProtectionOutcome
	// AttackTarget is empty when no attack was submitted; a missing
	// attack is "no attack", never an error.
	AttackTarget PlayerID
}

// ResolveNight applies all submitted night actions in one deterministic
// pass without mutating state. The fixed order is: divination (with the
// fox curse), protection, attack, retaliation, the fox-linked cascade,
// chain kills, and finally the medium reading. All draws derive from the
// fallback seed, the day number and a step tag.
func ResolveNight(s *GameState, in NightInput) NightResult {
	var res NightResult
	dead := map[PlayerID]bool{}

	aliveNow := func(id PlayerID) bool { return s.Alive[id] && !dead[id] }
	kill := func(id PlayerID, cause DeathCause) {
		dead[id] = true
		res.Deaths = append(res.Deaths, DeathRecord{Player: id, Cause: cause, Day: in.Day})
	}

	// 1. Divination. Results never kill, with one exception baked into
	// the game rules: a divined fox dies of the curse.
	for _, p := range s.Players {
		act, ok := in.Actions[p.ID]
		if !ok || act.Kind != ActionDivine || !s.Alive[p.ID] {
			continue
		}
		res.Divinations = append(res.Divinations, DivinationOutcome{
			Seer:     p.ID,
			Target:   act.Target,
			Judgment: s.Roles[act.Target].Judge(),
		})
		if s.Roles[act.Target] == RoleFox && aliveNow(act.Target) {
			kill(act.Target, CauseCurse)
		}
	}

	// 2. Protection.
	protected := map[PlayerID]bool{}
	for _, p := range s.Players {
		if act, ok := in.Actions[p.ID]; ok && act.Kind == ActionGuard && s.Alive[p.ID] {
			protected[act.Target] = true
		}
	}

	// 3. Attack. When several wolves submitted, a seeded leader's target
	// counts; the curse ignores protection, the attack does not.
	var attackers []PlayerID
	for _, p := range s.Players {
		if _, ok := in.Attacks[p.ID]; ok {
			attackers = append(attackers, p.ID)
		}
	}
	if len(attackers) > 0 {
		leader := attackers[0]
		if len(attackers) > 1 {
			rng := randutil.Derive(in.LeaderSeed, int64(in.Day), streamNightLeader)
			leader = randutil.Choice(rng, attackers)
		}
		res.AttackTarget = in.Attacks[leader]
	}
	attackKilled := false
	if res.AttackTarget != "" && aliveNow(res.AttackTarget) && !protected[res.AttackTarget] {
		kill(res.AttackTarget, CauseAttack)
		attackKilled = true
	}
	for _, p := range s.Players {
		if act, ok := in.Actions[p.ID]; ok && act.Kind == ActionGuard && s.Alive[p.ID] {
			res.Protections = append(res.Protections, ProtectionOutcome{
				Guardian: p.ID,
				Target:   act.Target,
				Success:  res.AttackTarget != "" && act.Target == res.AttackTarget,
			})
		}
	}

	// 4. Retaliation by an attacked-and-killed counter-attacker.
	if attackKilled && s.Roles[res.AttackTarget] == RoleAvenger {
		candidates := livingExcept(s, dead, res.AttackTarget)
		if len(candidates) > 0 {
			rng := randutil.Derive(in.FallbackSeed, int64(in.Day), streamRetaliation)
			kill(randutil.Choice(rng, candidates), CauseRetaliation)
		}
	}

	// 5. Fox-linked cascade: any fox death this cycle takes every living
	// immoralist with it.
	if deathsInclude(res.Deaths, s, RoleFox) {
		for _, p := range s.Players {
			if s.Roles[p.ID] == RoleImmoralist && aliveNow(p.ID) {
				kill(p.ID, CauseCascade)
			}
		}
	}

	// 6. Chain kills, in the order the triggering deaths occurred. Chain
	// victims never trigger further chains.
	triggers := make([]PlayerID, 0, len(res.Deaths))
	for _, d := range res.Deaths {
		if d.Cause != CauseCurse && s.Roles[d.Player] == RoleHunter {
			triggers = append(triggers, d.Player)
		}
	}
	for seq, hunter := range triggers {
		candidates := livingExcept(s, dead, hunter)
		if len(candidates) == 0 {
			continue
		}
		rng := randutil.Derive(in.FallbackSeed, int64(in.Day), streamChainKill, int64(seq))
		victim := randutil.Choice(rng, candidates)
		kill(victim, CauseChainKill)
		res.ChainVictims = append(res.ChainVictims, victim)
	}

	// 7. Medium reading of the day's executed player.
	if in.Executed != "" {
		for _, p := range s.Players {
			if s.Roles[p.ID] == RoleMedium && aliveNow(p.ID) {
				res.MediumResults = append(res.MediumResults, MediumOutcome{
					Medium:   p.ID,
					Target:   in.Executed,
					Judgment: s.Roles[in.Executed].Judge(),
				})
			}
		}
	}

	return res
}

// ExecutionResult is the outcome of applying a day execution, including
// death effects that fire immediately on execution.
type ExecutionResult struct {
	Deaths       []DeathRecord
	ChainVictims []PlayerID
}

// ResolveExecution kills the executed player and applies the execution-
// triggered death effects: the fox-linked cascade and the hunter's
// chain kill (one seeded victim among the remaining living players).
func ResolveExecution(s *GameState, executed PlayerID, day int, seed int64) ExecutionResult {
	var res ExecutionResult
	dead := map[PlayerID]bool{executed: true}
	res.Deaths = append(res.Deaths, DeathRecord{Player: executed, Cause: CauseExecution, Day: day})

	if s.Roles[executed] == RoleFox {
		for _, p := range s.Players {
			if s.Roles[p.ID] == RoleImmoralist && s.Alive[p.ID] && !dead[p.ID] {
				dead[p.ID] = true
				res.Deaths = append(res.Deaths, DeathRecord{Player: p.ID, Cause: CauseCascade, Day: day})
			}
		}
	}

	if s.Roles[executed] == RoleHunter {
		candidates := livingExcept(s, dead, executed)
		if len(candidates) > 0 {
			rng := randutil.Derive(seed, int64(day), streamExecutionChain)
			victim := randutil.Choice(rng, candidates)
			res.Deaths = append(res.Deaths, DeathRecord{Player: victim, Cause: CauseChainKill, Day: day})
			res.ChainVictims = append(res.ChainVictims, victim)
		}
	}

	return res
}

// livingExcept returns players alive in state, not in dead, and not the
// excluded player, in seating order.
func livingExcept(s *GameState, dead map[PlayerID]bool, except PlayerID) []PlayerID {
	var out []PlayerID
	for _, p := range s.Players {
		if p.ID != except && s.Alive[p.ID] && !dead[p.ID] {
			out = append(out, p.ID)
		}
	}
	return out
}

func deathsInclude(deaths []DeathRecord, s *GameState, role Role) bool {
	for _, d := range deaths {
		if s.Roles[d.Player] == role {
			return true
		}
	}
	return false
}
