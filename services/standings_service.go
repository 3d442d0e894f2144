// services/standings_service.go
package services

import (
	"log"
	"sort"

	"pickem-pool-system/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// YearlyStanding is one player's season aggregate across completed weeks.
// WeeklyWins and WinningPicksInWinWeeks mirror the weekly-prize standings so
// both boards break ties the same way.
type YearlyStanding struct {
	User                   models.User `json:"user"`
	TotalPoints            float64     `json:"total_points"`
	TotalWinningPicks      int         `json:"total_winning_picks"`
	TotalPicks             int         `json:"total_picks"`
	WeeklyWins             float64     `json:"weekly_wins"`
	WinningPicksInWinWeeks int         `json:"winning_picks_in_win_weeks"`
	WinWeeks               []int       `json:"win_weeks"`
	IsQualified            bool        `json:"is_qualified"`
}

type StandingsService struct {
	DB *gorm.DB
}

func NewStandingsService(db *gorm.DB) *StandingsService {
	return &StandingsService{DB: db}
}

// CalculateYearlyStandings aggregates every completed week's results into
// the season leaderboard, applying critical-week qualification.
func (s *StandingsService) CalculateYearlyStandings(season *models.Season) ([]*YearlyStanding, error) {
	var weeks []models.Week
	if err := s.DB.Where("season_id = ? AND is_completed = ?", season.ID, true).
		Order("week_number").Find(&weeks).Error; err != nil {
		return nil, err
	}

	resultsByWeek := make(map[string][]models.WeeklyResult, len(weeks))
	for _, w := range weeks {
		var rows []models.WeeklyResult
		if err := s.DB.Preload("User").Where("week_id = ?", w.ID).Find(&rows).Error; err != nil {
			return nil, err
		}
		resultsByWeek[w.ID] = rows
	}

	return computeYearlyStandings(season, weeks, resultsByWeek), nil
}

// computeYearlyStandings folds per-week result rows into standings.
// Qualification: a player is disqualified from the yearly prize if any
// completed critical week has no result row for them, or has fewer than the
// minimum pick count. Players with zero picks all season are dropped
// entirely rather than shown as disqualified.
func computeYearlyStandings(season *models.Season, weeks []models.Week, resultsByWeek map[string][]models.WeeklyResult) []*YearlyStanding {
	critical := season.CriticalWeekNumbers()
	criticalCompleted := make(map[string]bool)
	for _, w := range weeks {
		if w.WeekNumber == critical[0] || w.WeekNumber == critical[1] {
			criticalCompleted[w.ID] = true
		}
	}

	byUser := make(map[string]*YearlyStanding)
	for _, w := range weeks {
		for _, r := range resultsByWeek[w.ID] {
			// Deactivated players keep their historical rows but drop out of
			// the yearly competition.
			if !r.User.IsActivePlayer {
				continue
			}
			st, ok := byUser[r.UserID]
			if !ok {
				st = &YearlyStanding{User: r.User, IsQualified: true}
				byUser[r.UserID] = st
			}
			st.TotalPoints += r.TotalPoints
			st.TotalWinningPicks += r.WinningPicks
			st.TotalPicks += r.NumPicks
			if r.WeeklyWinShare > 0 {
				st.WeeklyWins += r.WeeklyWinShare
				st.WinningPicksInWinWeeks += r.WinningPicks
				st.WinWeeks = append(st.WinWeeks, w.WeekNumber)
			}
			if criticalCompleted[w.ID] && r.NumPicks < MinPicksForEligibility {
				st.IsQualified = false
			}
		}
	}

	// A player who sat out a completed critical week has no row there at all.
	for wid := range criticalCompleted {
		present := make(map[string]bool)
		for _, r := range resultsByWeek[wid] {
			present[r.UserID] = true
		}
		for uid, st := range byUser {
			if !present[uid] {
				st.IsQualified = false
			}
		}
	}

	standings := make([]*YearlyStanding, 0, len(byUser))
	for _, st := range byUser {
		if st.TotalPicks == 0 {
			continue
		}
		standings = append(standings, st)
	}
	sortYearlyStandings(standings)
	return standings
}

// sortYearlyStandings ranks qualified players first, then by total points,
// weekly wins, and winning picks inside winning weeks.
func sortYearlyStandings(standings []*YearlyStanding) {
	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.IsQualified != b.IsQualified {
			return a.IsQualified
		}
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		if a.WeeklyWins != b.WeeklyWins {
			return a.WeeklyWins > b.WeeklyWins
		}
		return a.WinningPicksInWinWeeks > b.WinningPicksInWinWeeks
	})
}

// GetYearlyWinners returns the qualified players tied on the full ranking
// triple with the leader. An unqualified leader never wins; with no
// qualified players there is no yearly winner.
func (s *StandingsService) GetYearlyWinners(season *models.Season) ([]*YearlyStanding, error) {
	standings, err := s.CalculateYearlyStandings(season)
	if err != nil {
		return nil, err
	}
	return yearlyWinnersFrom(standings), nil
}

func yearlyWinnersFrom(standings []*YearlyStanding) []*YearlyStanding {
	winners := []*YearlyStanding{}
	if len(standings) == 0 || !standings[0].IsQualified {
		return winners
	}
	best := standings[0]
	for _, st := range standings {
		if !st.IsQualified {
			break
		}
		if st.TotalPoints == best.TotalPoints &&
			st.WeeklyWins == best.WeeklyWins &&
			st.WinningPicksInWinWeeks == best.WinningPicksInWinWeeks {
			winners = append(winners, st)
		}
	}
	return winners
}

// --- HTTP handlers ---

// GetStandings returns the full yearly leaderboard for a season.
func (s *StandingsService) GetStandings(c *fiber.Ctx) error {
	season, err := findSeason(s.DB, c.Params("id"))
	if err != nil {
		return seasonLookupError(c, err)
	}
	standings, err := s.CalculateYearlyStandings(season)
	if err != nil {
		log.Printf("DB Error calculating standings for season %s: %v", season.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to calculate standings"})
	}
	return c.JSON(standings)
}

// GetYearlyPrize returns the resolved yearly winner set.
func (s *StandingsService) GetYearlyPrize(c *fiber.Ctx) error {
	season, err := findSeason(s.DB, c.Params("id"))
	if err != nil {
		return seasonLookupError(c, err)
	}
	winners, err := s.GetYearlyWinners(season)
	if err != nil {
		log.Printf("DB Error resolving yearly prize for season %s: %v", season.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to resolve yearly prize"})
	}
	return c.JSON(fiber.Map{"winners": winners})
}
