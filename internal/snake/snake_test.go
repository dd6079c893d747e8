package snake

import "testing"

func TestTeamIndexForPickAlternatesDirection(t *testing.T) {
	// 4 teams: picks 1-4 forward, 5-8 reversed, 9-12 forward again.
	want := []int{0, 1, 2, 3, 3, 2, 1, 0, 0, 1, 2, 3}
	for i, expected := range want {
		pickNumber := i + 1
		got := TeamIndexForPick(pickNumber, 4)
		if got != expected {
			t.Fatalf("pick %d: expected index %d, got %d", pickNumber, expected, got)
		}
	}
}

func TestTeamIndexForPickSingleTeam(t *testing.T) {
	for pickNumber := 1; pickNumber <= 10; pickNumber++ {
		if got := TeamIndexForPick(pickNumber, 1); got != 0 {
			t.Fatalf("pick %d with one team: expected index 0, got %d", pickNumber, got)
		}
	}
}

func TestTeamIndexForPickCoversEveryTeamEachRound(t *testing.T) {
	const teams = 5
	const rounds = 8
	for round := 1; round <= rounds; round++ {
		seen := make(map[int]bool)
		for slot := 0; slot < teams; slot++ {
			pickNumber := (round-1)*teams + slot + 1
			seen[TeamIndexForPick(pickNumber, teams)] = true
		}
		if len(seen) != teams {
			t.Fatalf("round %d: expected %d distinct teams, got %d", round, teams, len(seen))
		}
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		pickNumber int
		teamCount  int
		want       int
	}{
		{1, 4, 1},
		{4, 4, 1},
		{5, 4, 2},
		{8, 4, 2},
		{9, 4, 3},
		{40, 4, 10},
		{1, 1, 1},
		{7, 1, 7},
	}
	for _, tt := range tests {
		if got := Round(tt.pickNumber, tt.teamCount); got != tt.want {
			t.Fatalf("Round(%d, %d): expected %d, got %d", tt.pickNumber, tt.teamCount, tt.want, got)
		}
	}
}

func TestTotalPicks(t *testing.T) {
	if got := TotalPicks(4, 10); got != 40 {
		t.Fatalf("expected 40 total picks, got %d", got)
	}
}
