package services

import (
	"testing"

	"pickem-pool-system/models"

	"github.com/stretchr/testify/assert"
)

func fptr(f float64) *float64 { return &f }

func pickWithPoints(points *float64) models.Pick {
	return models.Pick{Points: points}
}

func resultRow(userID string, totalPoints float64, numPicks, winningPicks int) *models.WeeklyResult {
	return &models.WeeklyResult{
		UserID:       userID,
		TotalPoints:  totalPoints,
		NumPicks:     numPicks,
		WinningPicks: winningPicks,
		IsEligible:   numPicks >= MinPicksForEligibility,
	}
}

func TestBuildWeekResult_SumsAndCounts(t *testing.T) {
	picks := []models.Pick{
		pickWithPoints(fptr(7)),
		pickWithPoints(fptr(-3)),
		pickWithPoints(fptr(2.5)),
		pickWithPoints(fptr(0)),
	}
	r := buildWeekResult("u1", "w1", picks)

	assert.Equal(t, 6.5, r.TotalPoints)
	assert.Equal(t, 4, r.NumPicks)
	assert.Equal(t, 2, r.WinningPicks, "zero-point push does not count as a win")
	assert.True(t, r.IsEligible)
}

func TestBuildWeekResult_NilPointsContributeNothing(t *testing.T) {
	// Two games still live: their picks count toward NumPicks but neither
	// the total nor the winning-pick count.
	picks := []models.Pick{
		pickWithPoints(fptr(5)),
		pickWithPoints(nil),
		pickWithPoints(nil),
	}
	r := buildWeekResult("u1", "w1", picks)

	assert.Equal(t, 5.0, r.TotalPoints)
	assert.Equal(t, 3, r.NumPicks)
	assert.Equal(t, 1, r.WinningPicks)
}

func TestBuildWeekResult_EligibilityThreshold(t *testing.T) {
	three := []models.Pick{pickWithPoints(fptr(1)), pickWithPoints(fptr(1)), pickWithPoints(fptr(1))}
	assert.False(t, buildWeekResult("u1", "w1", three).IsEligible)

	four := append(three, pickWithPoints(fptr(1)))
	assert.True(t, buildWeekResult("u1", "w1", four).IsEligible)
}

func TestAssignWeeklyWinShares_SoleWinner(t *testing.T) {
	results := []*models.WeeklyResult{
		resultRow("alice", 12, 5, 4),
		resultRow("bob", 8, 5, 3),
	}
	assignWeeklyWinShares(results)

	assert.Equal(t, 1.0, results[0].WeeklyWinShare)
	assert.Equal(t, 0.0, results[1].WeeklyWinShare)
}

func TestAssignWeeklyWinShares_TieBrokenByWinningPicks(t *testing.T) {
	results := []*models.WeeklyResult{
		resultRow("alice", 10, 5, 3),
		resultRow("bob", 10, 5, 4),
	}
	assignWeeklyWinShares(results)

	assert.Equal(t, 0.0, shareFor(results, "alice"))
	assert.Equal(t, 1.0, shareFor(results, "bob"))
}

func TestAssignWeeklyWinShares_SplitAfterFullTie(t *testing.T) {
	// Bob and Craig tie on points and winning picks; Larry matches the point
	// total but with fewer winning picks. The win splits between Bob and
	// Craig only.
	results := []*models.WeeklyResult{
		resultRow("bob", 10, 5, 4),
		resultRow("craig", 10, 5, 4),
		resultRow("larry", 10, 5, 3),
	}
	assignWeeklyWinShares(results)

	assert.Equal(t, 0.5, shareFor(results, "bob"))
	assert.Equal(t, 0.5, shareFor(results, "craig"))
	assert.Equal(t, 0.0, shareFor(results, "larry"))
}

func TestAssignWeeklyWinShares_IneligibleCannotWin(t *testing.T) {
	// The highest score of the week came from a 3-pick entry; the win goes
	// to the best eligible row instead.
	results := []*models.WeeklyResult{
		resultRow("shorty", 20, 3, 3),
		resultRow("alice", 8, 4, 2),
	}
	assignWeeklyWinShares(results)

	assert.Equal(t, 0.0, shareFor(results, "shorty"))
	assert.Equal(t, 1.0, shareFor(results, "alice"))
}

func TestAssignWeeklyWinShares_NoEligibleRows(t *testing.T) {
	results := []*models.WeeklyResult{
		resultRow("a", 5, 2, 1),
		resultRow("b", 3, 1, 1),
	}
	assignWeeklyWinShares(results)

	for _, r := range results {
		assert.Equal(t, 0.0, r.WeeklyWinShare)
	}
}

func TestAssignWeeklyWinShares_NegativeTotalsStillProduceWinner(t *testing.T) {
	// A bad week for everyone still has a weekly winner.
	results := []*models.WeeklyResult{
		resultRow("alice", -2, 4, 1),
		resultRow("bob", -9, 4, 0),
	}
	assignWeeklyWinShares(results)

	assert.Equal(t, 1.0, shareFor(results, "alice"))
	assert.Equal(t, 0.0, shareFor(results, "bob"))
}

func shareFor(results []*models.WeeklyResult, userID string) float64 {
	for _, r := range results {
		if r.UserID == userID {
			return r.WeeklyWinShare
		}
	}
	return -1
}
