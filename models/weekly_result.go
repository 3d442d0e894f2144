package models

// WeeklyResult is the derived scoring row, one per (user, week). The scoring
// service replaces a week's entire row set on every recompute — nothing
// updates these in place, so a row is only ever as stale as the last
// recompute, never internally inconsistent.
type WeeklyResult struct {
	ID             string  `json:"id" gorm:"primaryKey"`
	UserID         string  `json:"user_id" gorm:"not null;index;uniqueIndex:uq_user_week_result"`
	WeekID         string  `json:"week_id" gorm:"not null;index;uniqueIndex:uq_user_week_result"`
	TotalPoints    float64 `json:"total_points" gorm:"default:0"`
	NumPicks       int     `json:"num_picks" gorm:"default:0"`
	WinningPicks   int     `json:"winning_picks" gorm:"default:0"`
	WeeklyWinShare float64 `json:"weekly_win_share" gorm:"default:0"`
	IsEligible     bool    `json:"is_eligible" gorm:"default:true"`

	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Week Week `json:"week,omitempty" gorm:"foreignKey:WeekID"`
}
