package models

import (
	"fmt"
	"math"
	"time"
)

const (
	FavoriteHome = "home"
	FavoriteAway = "away"

	// MaxPickPoints clamps a single pick's value no matter how far the
	// final margin lands from the spread.
	MaxPickPoints = 15.0
)

// Game is one matchup inside a week. Spread is a non-negative magnitude;
// Favorite says which side it applies to. Scores stay nil until the game
// goes final (or an admin corrects them afterwards).
type Game struct {
	ID        string     `json:"id" gorm:"primaryKey"`
	WeekID    string     `json:"week_id" gorm:"not null;index"`
	HomeTeam  string     `json:"home_team" gorm:"not null"`
	AwayTeam  string     `json:"away_team" gorm:"not null"`
	Spread    *float64   `json:"spread,omitempty"`
	Favorite  string     `json:"favorite,omitempty"`
	HomeScore *int       `json:"home_score,omitempty"`
	AwayScore *int       `json:"away_score,omitempty"`
	GameTime  *time.Time `json:"game_time,omitempty"`
	IsFinal   bool       `json:"is_final" gorm:"default:false"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`

	Picks []Pick `json:"picks,omitempty" gorm:"foreignKey:GameID"`
}

// FavoredTeam returns the team the spread favors, or "" for a pick'em game.
func (g *Game) FavoredTeam() string {
	switch g.Favorite {
	case FavoriteHome:
		return g.HomeTeam
	case FavoriteAway:
		return g.AwayTeam
	default:
		return ""
	}
}

// Underdog returns the team getting the points, or "" for a pick'em game.
func (g *Game) Underdog() string {
	switch g.Favorite {
	case FavoriteHome:
		return g.AwayTeam
	case FavoriteAway:
		return g.HomeTeam
	default:
		return ""
	}
}

// HasStarted reports whether kickoff has passed. Games without a scheduled
// time are treated as not started so picks stay open.
func (g *Game) HasStarted() bool {
	return g.GameTime != nil && !time.Now().UTC().Before(g.GameTime.UTC())
}

// SpreadDisplay renders the line the way books print it, e.g. "MIA -10".
func (g *Game) SpreadDisplay() string {
	if g.Spread == nil {
		return "N/A"
	}
	sv := math.Abs(*g.Spread)
	if g.Favorite == FavoriteHome {
		return fmt.Sprintf("%s -%g", g.HomeTeam, sv)
	}
	return fmt.Sprintf("%s -%g", g.AwayTeam, sv)
}

// CalculatePoints converts the final score into a point value for a pick on
// pickedTeam: how much better the picked side did against the spread,
// clamped to [-MaxPickPoints, +MaxPickPoints]. Returns nil when scores or
// spread are missing — callers must skip the pick, never substitute a value.
func (g *Game) CalculatePoints(pickedTeam string) *float64 {
	if g.HomeScore == nil || g.AwayScore == nil || g.Spread == nil {
		return nil
	}
	spread := math.Abs(*g.Spread)
	var margin float64
	if g.Favorite == FavoriteHome {
		margin = float64(*g.HomeScore - *g.AwayScore)
	} else {
		margin = float64(*g.AwayScore - *g.HomeScore)
	}
	favoredPoints := margin - spread
	points := favoredPoints
	if pickedTeam != g.FavoredTeam() {
		points = -favoredPoints
	}
	if points > MaxPickPoints {
		points = MaxPickPoints
	}
	if points < -MaxPickPoints {
		points = -MaxPickPoints
	}
	return &points
}
