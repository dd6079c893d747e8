// Package snake computes turn order for snake drafts: round 1 runs through
// the teams in draft order, round 2 runs in reverse, round 3 forward again,
// so no team is permanently stuck picking last.
package snake

// Round returns the 1-based round a pick number falls in.
func Round(pickNumber, teamCount int) int {
	return (pickNumber-1)/teamCount + 1
}

// TeamIndexForPick maps an overall pick number to a 0-based index into the
// team list ordered by draft order number. Total for teamCount >= 1 and
// pickNumber >= 1.
func TeamIndexForPick(pickNumber, teamCount int) int {
	offset := (pickNumber - 1) % teamCount
	if Round(pickNumber, teamCount)%2 == 1 {
		return offset
	}
	return teamCount - 1 - offset
}

// TotalPicks returns the size of a full draft.
func TotalPicks(teamCount, rounds int) int {
	return teamCount * rounds
}
