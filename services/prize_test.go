package services

import (
	"testing"

	"pickem-pool-system/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prizeStanding(userID string, totalWins float64, winningPicks int, winWeeks ...int) *WeeklyPrizeStanding {
	return &WeeklyPrizeStanding{
		User:                   models.User{ID: userID, DisplayName: userID},
		TotalWins:              totalWins,
		WinningPicksInWinWeeks: winningPicks,
		WinWeeks:               winWeeks,
	}
}

func winnerIDs(winners []*WeeklyPrizeStanding) []string {
	ids := make([]string, 0, len(winners))
	for _, w := range winners {
		ids = append(ids, w.User.ID)
	}
	return ids
}

func TestResolveWeeklyPrize_MostWinsTakesIt(t *testing.T) {
	standings := []*WeeklyPrizeStanding{
		prizeStanding("alice", 3, 12, 2, 5, 9),
		prizeStanding("bob", 2, 10, 3, 7),
	}
	sortWeeklyPrizeStandings(standings)

	winners := resolveWeeklyPrize(standings, 10)
	assert.Equal(t, []string{"alice"}, winnerIDs(winners))
}

func TestResolveWeeklyPrize_TieBrokenByWinningPicks(t *testing.T) {
	standings := []*WeeklyPrizeStanding{
		prizeStanding("alice", 2, 8, 2, 5),
		prizeStanding("bob", 2, 11, 3, 7),
	}
	sortWeeklyPrizeStandings(standings)

	winners := resolveWeeklyPrize(standings, 10)
	assert.Equal(t, []string{"bob"}, winnerIDs(winners))
}

func TestResolveWeeklyPrize_LatestDistinguishingWeek(t *testing.T) {
	// Fully tied on wins and winning picks; alice won weeks 1 and 3, bob won
	// weeks 1 and 5. Week 5 is the latest week they differ on, so bob wins.
	standings := []*WeeklyPrizeStanding{
		prizeStanding("alice", 2, 9, 1, 3),
		prizeStanding("bob", 2, 9, 1, 5),
	}
	sortWeeklyPrizeStandings(standings)

	winners := resolveWeeklyPrize(standings, 8)
	assert.Equal(t, []string{"bob"}, winnerIDs(winners))
}

func TestResolveWeeklyPrize_IdenticalWinWeeksSplit(t *testing.T) {
	standings := []*WeeklyPrizeStanding{
		prizeStanding("alice", 1, 6, 4),
		prizeStanding("bob", 1, 6, 4),
	}
	sortWeeklyPrizeStandings(standings)

	winners := resolveWeeklyPrize(standings, 8)
	assert.ElementsMatch(t, []string{"alice", "bob"}, winnerIDs(winners))
}

func TestResolveWeeklyPrize_ThreeWayPartialOverlap(t *testing.T) {
	// All tied on the pair. Week 9 splits craig off; alice and bob both won
	// it, so they advance together — no deeper cascade inside the subgroup.
	standings := []*WeeklyPrizeStanding{
		prizeStanding("alice", 2, 7, 2, 9),
		prizeStanding("bob", 2, 7, 4, 9),
		prizeStanding("craig", 2, 7, 6, 8),
	}
	sortWeeklyPrizeStandings(standings)

	winners := resolveWeeklyPrize(standings, 10)
	assert.ElementsMatch(t, []string{"alice", "bob"}, winnerIDs(winners))
}

func TestResolveWeeklyPrize_NoWinsNoWinner(t *testing.T) {
	standings := []*WeeklyPrizeStanding{
		prizeStanding("alice", 0, 0),
	}
	winners := resolveWeeklyPrize(standings, 5)
	assert.Empty(t, winners)

	assert.Empty(t, resolveWeeklyPrize(nil, 5))
}

// --- Prize pool split ---

func paidEntries(n int) []models.SeasonEntry {
	entries := make([]models.SeasonEntry, n)
	for i := range entries {
		entries[i] = models.SeasonEntry{HasPaid: true}
	}
	return entries
}

func yearlyWinner(userID string) *YearlyStanding {
	return &YearlyStanding{User: models.User{ID: userID, DisplayName: userID}, IsQualified: true}
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(decimal.RequireFromString(want)), "want %s, got %s", want, got)
}

func TestBuildPrizeBreakdown_DistinctWinners(t *testing.T) {
	// $30 entry, 8 paid entries: $240 pool. Two refund slots leave $180;
	// the yearly winner collects $30 + $120 = $150, the weekly winner
	// $30 + $60 = $90. Together they drain the pool.
	b := buildPrizeBreakdown(30, paidEntries(8),
		[]*YearlyStanding{yearlyWinner("alice")},
		[]*WeeklyPrizeStanding{prizeStanding("bob", 3, 10, 1, 4, 7)})

	assertMoney(t, "240", b.TotalPool)
	assertMoney(t, "180", b.RemainingAfterRefunds)
	assertMoney(t, "120", b.YearlyTotal)
	assertMoney(t, "60", b.WeeklyTotal)
	assertMoney(t, "60", b.TotalRefunds)

	require.Len(t, b.YearlyWinners, 1)
	require.Len(t, b.WeeklyWinners, 1)
	assertMoney(t, "150", b.YearlyWinners[0].PrizeAmount)
	assertMoney(t, "90", b.WeeklyWinners[0].PrizeAmount)
	assert.False(t, b.YearlyWinners[0].IsAlsoWeeklyWinner)
}

func TestBuildPrizeBreakdown_SameWinnerBothPrizes(t *testing.T) {
	// Same player sweeps both prizes but is only refunded once:
	// $30 + $120 + $60 = $210.
	b := buildPrizeBreakdown(30, paidEntries(8),
		[]*YearlyStanding{yearlyWinner("alice")},
		[]*WeeklyPrizeStanding{prizeStanding("alice", 3, 10, 1, 4, 7)})

	require.Len(t, b.YearlyWinners, 1)
	assert.Empty(t, b.WeeklyWinners, "dual winner is listed once, under yearly")
	assert.True(t, b.YearlyWinners[0].IsAlsoWeeklyWinner)
	assertMoney(t, "210", b.YearlyWinners[0].PrizeAmount)
	assertMoney(t, "30", b.TotalRefunds)
}

func TestBuildPrizeBreakdown_SplitYearlyPrize(t *testing.T) {
	b := buildPrizeBreakdown(30, paidEntries(8),
		[]*YearlyStanding{yearlyWinner("alice"), yearlyWinner("bob")},
		[]*WeeklyPrizeStanding{prizeStanding("craig", 3, 10, 1, 4, 7)})

	require.Len(t, b.YearlyWinners, 2)
	assertMoney(t, "60", b.YearlyPerWinner)
	assertMoney(t, "90", b.YearlyWinners[0].PrizeAmount)
	assertMoney(t, "90", b.YearlyWinners[1].PrizeAmount)
}

func TestBuildPrizeBreakdown_OnlyOneCategoryHasWinner(t *testing.T) {
	// No weekly winner resolved: one refund slot, the full remainder still
	// splits 2/3-1/3 and the weekly third sits unclaimed.
	b := buildPrizeBreakdown(30, paidEntries(8),
		[]*YearlyStanding{yearlyWinner("alice")},
		nil)

	assertMoney(t, "210", b.RemainingAfterRefunds)
	assertMoney(t, "140", b.YearlyTotal)
	assertMoney(t, "70", b.WeeklyTotal)
	require.Len(t, b.YearlyWinners, 1)
	assertMoney(t, "170", b.YearlyWinners[0].PrizeAmount)
	assert.Empty(t, b.WeeklyWinners)
}

func TestBuildPrizeBreakdown_ExplicitAmountsOverrideFee(t *testing.T) {
	half := 15.0
	entries := paidEntries(2)
	entries[1].AmountPaid = &half

	b := buildPrizeBreakdown(30, entries, nil, nil)
	assertMoney(t, "45", b.TotalPool)
}

func TestBuildPrizeBreakdown_NoEntries(t *testing.T) {
	b := buildPrizeBreakdown(30, nil, nil, nil)

	assert.Equal(t, 0, b.NumEntries)
	assert.True(t, b.TotalPool.IsZero())
	assert.Empty(t, b.YearlyWinners)
	assert.Empty(t, b.WeeklyWinners)
}

func TestBuildPrizeBreakdown_PoolSmallerThanRefunds(t *testing.T) {
	// One paid entry cannot cover two refund slots; the remainder clamps to
	// zero instead of going negative.
	b := buildPrizeBreakdown(30, paidEntries(1),
		[]*YearlyStanding{yearlyWinner("alice")},
		[]*WeeklyPrizeStanding{prizeStanding("bob", 1, 4, 2)})

	assert.True(t, b.RemainingAfterRefunds.IsZero())
	assert.True(t, b.YearlyTotal.IsZero())
	assert.True(t, b.WeeklyTotal.IsZero())
}

func TestSortWeeklyPrizeStandings(t *testing.T) {
	standings := []*WeeklyPrizeStanding{
		prizeStanding("c", 1, 4, 2),
		prizeStanding("a", 3, 9, 1, 5, 8),
		prizeStanding("b", 3, 12, 2, 6, 9),
	}
	sortWeeklyPrizeStandings(standings)

	assert.Equal(t, []string{"b", "a", "c"}, winnerIDs(standings))
}
