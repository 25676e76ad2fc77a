package sim

import (
	"math"
	"testing"
)

// TestStatsScoreFromAbsorb verifies the scoring formula mass*speed/rarity
// scaled by the streak multiplier
func TestStatsScoreFromAbsorb(t *testing.T) {
	s := NewStats()

	ev := Event{Type: EventAbsorbed, Player: true, Mass: 100, Speed: 50, Class: ClassAsteroid}
	s = s.Reduce([]Event{ev}, 0.01, RunInProgress)

	// First absorb: streak 1, multiplier 1.1.
	want := 100.0 * 50.0 / 1.0 * 1.1
	if math.Abs(s.Score-want) > 1e-9 {
		t.Errorf("score %g, want %g", s.Score, want)
	}
	if s.Absorbed != 1 || s.Streak != 1 {
		t.Errorf("absorbed=%d streak=%d, want 1/1", s.Absorbed, s.Streak)
	}
}

// TestStatsRarityDampensScore verifies rarer classes score less per unit of
// mass and speed
func TestStatsRarityDampensScore(t *testing.T) {
	asteroid := NewStats().Reduce([]Event{
		{Type: EventAbsorbed, Player: true, Mass: 100, Speed: 10, Class: ClassAsteroid},
	}, 0, RunInProgress)
	star := NewStats().Reduce([]Event{
		{Type: EventAbsorbed, Player: true, Mass: 100, Speed: 10, Class: ClassStar},
	}, 0, RunInProgress)

	if math.Abs(star.Score*25-asteroid.Score) > 1e-9 {
		t.Errorf("star score %g should be asteroid score %g / 25", star.Score, asteroid.Score)
	}
}

// TestStatsStreakGrowthAndCap verifies the multiplier grows per streak
// absorb and saturates
func TestStatsStreakGrowthAndCap(t *testing.T) {
	s := NewStats()
	ev := Event{Type: EventAbsorbed, Player: true, Mass: 1, Speed: 1, Class: ClassAsteroid}

	for i := 0; i < 3; i++ {
		s = s.Reduce([]Event{ev}, 0, RunInProgress)
	}
	if math.Abs(s.Multiplier-1.3) > 1e-9 {
		t.Errorf("multiplier after 3 absorbs: %g, want 1.3", s.Multiplier)
	}

	for i := 0; i < 100; i++ {
		s = s.Reduce([]Event{ev}, 0, RunInProgress)
	}
	if s.Multiplier != 5.0 {
		t.Errorf("multiplier not capped: %g", s.Multiplier)
	}
}

// TestStatsCollisionResetsStreak verifies player damage resets the streak
// but keeps score and best streak
func TestStatsCollisionResetsStreak(t *testing.T) {
	s := NewStats()
	ev := Event{Type: EventAbsorbed, Player: true, Mass: 10, Speed: 10, Class: ClassAsteroid}
	s = s.Reduce([]Event{ev, ev, ev}, 0, RunInProgress)

	scoreBefore := s.Score
	s = s.Reduce([]Event{{Type: EventCollided, Player: true}}, 0, RunInProgress)

	if s.Streak != 0 || s.Multiplier != 1.0 {
		t.Errorf("streak/multiplier not reset: %d / %g", s.Streak, s.Multiplier)
	}
	if s.Score != scoreBefore {
		t.Error("score changed on collision")
	}
	if s.BestStreak != 3 {
		t.Errorf("best streak %d, want 3", s.BestStreak)
	}
}

// TestStatsNonPlayerEventsIgnored verifies bystander merges and deaths do
// not touch the aggregate
func TestStatsNonPlayerEventsIgnored(t *testing.T) {
	s := NewStats()
	s = s.Reduce([]Event{
		{Type: EventAbsorbed, Player: false, Mass: 100, Speed: 50, Class: ClassAsteroid},
		{Type: EventCollided, Player: false},
		{Type: EventDied, Player: false},
	}, 0, RunInProgress)

	if s.Score != 0 || s.Streak != 0 || s.Absorbed != 0 {
		t.Errorf("non-player events changed stats: %+v", s)
	}
}

// TestStatsSurvivalTime verifies survival accrues only while in progress
func TestStatsSurvivalTime(t *testing.T) {
	s := NewStats()
	s = s.Reduce(nil, 0.5, RunInProgress)
	s = s.Reduce(nil, 0.5, RunInProgress)
	s = s.Reduce(nil, 0.5, RunLost)

	if s.SurvivalTime != 1.0 {
		t.Errorf("survival time %g, want 1.0", s.SurvivalTime)
	}
}
