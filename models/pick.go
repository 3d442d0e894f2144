package models

import (
	"time"
)

// Pick is one player's call on one game. Points stays nil until the game is
// final; it is re-derived whenever the game's score is entered or corrected.
type Pick struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	UserID      string    `json:"user_id" gorm:"not null;index;uniqueIndex:uq_user_game"`
	GameID      string    `json:"game_id" gorm:"not null;index;uniqueIndex:uq_user_game"`
	PickedTeam  string    `json:"picked_team" gorm:"not null"`
	Points      *float64  `json:"points,omitempty"`
	SubmittedAt time.Time `json:"submitted_at" gorm:"autoCreateTime"`

	Game Game `json:"game,omitempty" gorm:"foreignKey:GameID"`
}

// IsWinningPick reports a strictly positive point value. A push (exactly 0)
// is not a winning pick.
func (p *Pick) IsWinningPick() bool {
	return p.Points != nil && *p.Points > 0
}

// PickViewLog records the first time a player viewed the rest of the pool's
// picks for a week. Viewing is gated on having submitted your own picks.
type PickViewLog struct {
	ID       string    `json:"id" gorm:"primaryKey"`
	UserID   string    `json:"user_id" gorm:"not null;index;uniqueIndex:uq_user_week_view"`
	WeekID   string    `json:"week_id" gorm:"not null;index;uniqueIndex:uq_user_week_view"`
	ViewedAt time.Time `json:"viewed_at" gorm:"autoCreateTime"`
}
