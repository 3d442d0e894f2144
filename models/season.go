package models

import (
	"time"
)

// Season is one football season of the pool. The entry fee feeds the prize
// pool; the last two week numbers are the "critical weeks" a player must
// play (4+ picks each) to stay qualified for the yearly prize.
type Season struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	Year       int       `json:"year" gorm:"uniqueIndex;not null"`
	IsActive   bool      `json:"is_active" gorm:"default:true"`
	TotalWeeks int       `json:"total_weeks" gorm:"default:18"`
	EntryFee   float64   `json:"entry_fee" gorm:"default:0"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`

	Weeks []Week `json:"weeks,omitempty" gorm:"foreignKey:SeasonID"`
}

// CriticalWeekNumbers returns the last two week numbers of the season.
func (s *Season) CriticalWeekNumbers() [2]int {
	return [2]int{s.TotalWeeks, s.TotalWeeks - 1}
}

// Week is one scoring period inside a season.
type Week struct {
	ID             string     `json:"id" gorm:"primaryKey"`
	SeasonID       string     `json:"season_id" gorm:"not null;index;uniqueIndex:uq_season_week"`
	WeekNumber     int        `json:"week_number" gorm:"not null;uniqueIndex:uq_season_week"`
	IsOpenForPicks bool       `json:"is_open_for_picks" gorm:"default:false"`
	IsCompleted    bool       `json:"is_completed" gorm:"default:false"`
	PicksDeadline  *time.Time `json:"picks_deadline,omitempty"`
	CreatedAt      time.Time  `json:"created_at" gorm:"autoCreateTime"`

	Games []Game `json:"games,omitempty" gorm:"foreignKey:WeekID"`
}

// SeasonEntry tracks a player's buy-in for a season. AmountPaid may differ
// from the season's entry fee (late joiners, comped entries); nil means the
// fee itself once HasPaid is set.
type SeasonEntry struct {
	ID         string     `json:"id" gorm:"primaryKey"`
	SeasonID   string     `json:"season_id" gorm:"not null;index;uniqueIndex:uq_season_user_entry"`
	UserID     string     `json:"user_id" gorm:"not null;index;uniqueIndex:uq_season_user_entry"`
	HasPaid    bool       `json:"has_paid" gorm:"default:false"`
	AmountPaid *float64   `json:"amount_paid,omitempty"`
	PaidAt     *time.Time `json:"paid_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at" gorm:"autoCreateTime"`

	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
