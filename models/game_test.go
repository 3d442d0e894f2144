package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(f float64) *float64 { return &f }
func iptr(i int) *int         { return &i }

func finalGame(homeTeam, awayTeam string, spread float64, favorite string, homeScore, awayScore int) *Game {
	return &Game{
		HomeTeam:  homeTeam,
		AwayTeam:  awayTeam,
		Spread:    fptr(spread),
		Favorite:  favorite,
		HomeScore: iptr(homeScore),
		AwayScore: iptr(awayScore),
		IsFinal:   true,
	}
}

func TestCalculatePoints_FavoriteCoversByLess(t *testing.T) {
	// MIA favored by 10 at home, wins by only 7. Picking MIA loses 3 against
	// the spread; picking NYJ gains 3.
	g := finalGame("MIA", "NYJ", 10, FavoriteHome, 27, 20)

	pts := g.CalculatePoints("MIA")
	require.NotNil(t, pts)
	assert.Equal(t, -3.0, *pts)

	pts = g.CalculatePoints("NYJ")
	require.NotNil(t, pts)
	assert.Equal(t, 3.0, *pts)
}

func TestCalculatePoints_FavoriteCoversByMore(t *testing.T) {
	// MIA -10 wins by 17: MIA picks gain 7, NYJ picks lose 7.
	g := finalGame("MIA", "NYJ", 10, FavoriteHome, 30, 13)

	pts := g.CalculatePoints("MIA")
	require.NotNil(t, pts)
	assert.Equal(t, 7.0, *pts)

	pts = g.CalculatePoints("NYJ")
	require.NotNil(t, pts)
	assert.Equal(t, -7.0, *pts)
}

func TestCalculatePoints_ClampsAtFifteen(t *testing.T) {
	// A 40-point blowout against a 10-point spread is worth 30 raw, clamped.
	g := finalGame("MIA", "NYJ", 10, FavoriteHome, 40, 0)

	pts := g.CalculatePoints("MIA")
	require.NotNil(t, pts)
	assert.Equal(t, MaxPickPoints, *pts)

	pts = g.CalculatePoints("NYJ")
	require.NotNil(t, pts)
	assert.Equal(t, -MaxPickPoints, *pts)
}

func TestCalculatePoints_ExactlyFifteenNotClamped(t *testing.T) {
	// Margin 25 against a 10 spread lands exactly on the cap.
	g := finalGame("MIA", "NYJ", 10, FavoriteHome, 25, 0)

	pts := g.CalculatePoints("MIA")
	require.NotNil(t, pts)
	assert.Equal(t, 15.0, *pts)
}

func TestCalculatePoints_AwayFavorite(t *testing.T) {
	// Away favorite by 3 wins by 10 on the road: away picks gain 7.
	g := finalGame("BUF", "KC", 3, FavoriteAway, 14, 24)

	pts := g.CalculatePoints("KC")
	require.NotNil(t, pts)
	assert.Equal(t, 7.0, *pts)

	pts = g.CalculatePoints("BUF")
	require.NotNil(t, pts)
	assert.Equal(t, -7.0, *pts)
}

func TestCalculatePoints_UpsetFlipsSign(t *testing.T) {
	// The underdog winning outright pays margin plus the spread.
	g := finalGame("MIA", "NYJ", 10, FavoriteHome, 17, 21)

	pts := g.CalculatePoints("NYJ")
	require.NotNil(t, pts)
	assert.Equal(t, 14.0, *pts)

	pts = g.CalculatePoints("MIA")
	require.NotNil(t, pts)
	assert.Equal(t, -14.0, *pts)
}

func TestCalculatePoints_PushIsZero(t *testing.T) {
	// Winning by exactly the spread scores zero either way.
	g := finalGame("MIA", "NYJ", 10, FavoriteHome, 30, 20)

	for _, team := range []string{"MIA", "NYJ"} {
		pts := g.CalculatePoints(team)
		require.NotNil(t, pts)
		assert.Equal(t, 0.0, *pts, "pick on %s", team)
	}
}

func TestCalculatePoints_SymmetricAcrossSides(t *testing.T) {
	g := finalGame("MIA", "NYJ", 6.5, FavoriteHome, 28, 17)

	home := g.CalculatePoints("MIA")
	away := g.CalculatePoints("NYJ")
	require.NotNil(t, home)
	require.NotNil(t, away)
	assert.Equal(t, *home, -*away)
}

func TestCalculatePoints_MissingDataReturnsNil(t *testing.T) {
	g := finalGame("MIA", "NYJ", 10, FavoriteHome, 27, 20)

	g.HomeScore = nil
	assert.Nil(t, g.CalculatePoints("MIA"))

	g.HomeScore = iptr(27)
	g.AwayScore = nil
	assert.Nil(t, g.CalculatePoints("MIA"))

	g.AwayScore = iptr(20)
	g.Spread = nil
	assert.Nil(t, g.CalculatePoints("MIA"))
}

func TestCalculatePoints_NegativeSpreadStoredAsMagnitude(t *testing.T) {
	// Spread is a magnitude; a stray negative value must behave like its
	// absolute value.
	g := finalGame("MIA", "NYJ", -10, FavoriteHome, 27, 20)

	pts := g.CalculatePoints("MIA")
	require.NotNil(t, pts)
	assert.Equal(t, -3.0, *pts)
}

func TestIsWinningPick(t *testing.T) {
	p := Pick{}
	assert.False(t, p.IsWinningPick(), "nil points is not a win")

	p.Points = fptr(0)
	assert.False(t, p.IsWinningPick(), "a push is not a win")

	p.Points = fptr(0.5)
	assert.True(t, p.IsWinningPick())

	p.Points = fptr(-3)
	assert.False(t, p.IsWinningPick())
}

func TestFavoredTeamAndUnderdog(t *testing.T) {
	g := &Game{HomeTeam: "MIA", AwayTeam: "NYJ", Favorite: FavoriteHome}
	assert.Equal(t, "MIA", g.FavoredTeam())
	assert.Equal(t, "NYJ", g.Underdog())

	g.Favorite = FavoriteAway
	assert.Equal(t, "NYJ", g.FavoredTeam())
	assert.Equal(t, "MIA", g.Underdog())

	g.Favorite = ""
	assert.Equal(t, "", g.FavoredTeam())
	assert.Equal(t, "", g.Underdog())
}

func TestHasStarted(t *testing.T) {
	g := &Game{}
	assert.False(t, g.HasStarted(), "no scheduled time means not started")

	past := time.Now().Add(-time.Hour)
	g.GameTime = &past
	assert.True(t, g.HasStarted())

	future := time.Now().Add(time.Hour)
	g.GameTime = &future
	assert.False(t, g.HasStarted())
}

func TestSpreadDisplay(t *testing.T) {
	g := &Game{HomeTeam: "MIA", AwayTeam: "NYJ", Spread: fptr(10), Favorite: FavoriteHome}
	assert.Equal(t, "MIA -10", g.SpreadDisplay())

	g.Favorite = FavoriteAway
	g.Spread = fptr(3.5)
	assert.Equal(t, "NYJ -3.5", g.SpreadDisplay())

	g.Spread = nil
	assert.Equal(t, "N/A", g.SpreadDisplay())
}
