package game

// VictoryResult is the outcome of evaluating win conditions.
type VictoryResult struct {
	HasWinner bool
	Winner    Faction
	Reason    string
}

// CheckVictory counts living players by species and evaluates the win
// conditions. Wolves win when wolf-species players number at least all
// others combined; the village wins when no wolf-species player lives.
// A living third-party (fox) overrides whichever side would otherwise
// win: its condition is simply being alive when the game ends.
func CheckVictory(s *GameState) VictoryResult {
	var wolves, others int
	thirdAlive := false
	for _, p := range s.Players {
		if !s.Alive[p.ID] {
			continue
		}
		if s.Roles[p.ID].Species() == SpeciesWolf {
			wolves++
		} else {
			others++
		}
		if s.Roles[p.ID] == RoleFox {
			thirdAlive = true
		}
	}

	switch {
	case wolves == 0:
		if thirdAlive {
			return VictoryResult{HasWinner: true, Winner: FactionThirdParty, Reason: "fox alive when the wolves were eliminated"}
		}
		return VictoryResult{HasWinner: true, Winner: FactionVillage, Reason: "all wolves eliminated"}
	case wolves >= others:
		if thirdAlive {
			return VictoryResult{HasWinner: true, Winner: FactionThirdParty, Reason: "fox alive when the wolves reached parity"}
		}
		return VictoryResult{HasWinner: true, Winner: FactionWolves, Reason: "wolves reached parity with the rest"}
	default:
		return VictoryResult{}
	}
}
