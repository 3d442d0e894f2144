// services/scoring_service.go
package services

import (
	"errors"
	"log"
	"sort"
	"time"

	"pickem-pool-system/models"
	"pickem-pool-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MinPicksForEligibility is the pick count a player needs in a week to
// compete for the weekly win, and in each critical week to stay qualified
// for the yearly prize.
const MinPicksForEligibility = 4

type ScoringService struct {
	DB        *gorm.DB
	weekLocks *utils.KeyedMutex
}

func NewScoringService(db *gorm.DB) *ScoringService {
	return &ScoringService{DB: db, weekLocks: utils.NewKeyedMutex()}
}

// CalculateWeekResults re-derives pick points for every final game in the
// week and replaces the week's WeeklyResult rows. The whole replace runs in
// a single transaction so a reader never observes a half-recomputed week;
// the per-week lock keeps two recomputations of the same week from
// interleaving while other weeks proceed in parallel.
func (s *ScoringService) CalculateWeekResults(week *models.Week) error {
	s.weekLocks.Lock(week.ID)
	defer s.weekLocks.Unlock(week.ID)

	return s.DB.Transaction(func(tx *gorm.DB) error {
		var games []models.Game
		if err := tx.Where("week_id = ?", week.ID).Find(&games).Error; err != nil {
			return err
		}
		if len(games) == 0 {
			return nil
		}
		gameIDs := make([]string, 0, len(games))
		for _, g := range games {
			gameIDs = append(gameIDs, g.ID)
		}

		// Re-derive points on final games only. Picks on games that have
		// not gone final keep whatever they already have (nil until the
		// score lands).
		for i := range games {
			g := &games[i]
			if !g.IsFinal {
				continue
			}
			var picks []models.Pick
			if err := tx.Where("game_id = ?", g.ID).Find(&picks).Error; err != nil {
				return err
			}
			for j := range picks {
				pts := g.CalculatePoints(picks[j].PickedTeam)
				if err := tx.Model(&picks[j]).Update("points", pts).Error; err != nil {
					return err
				}
			}
		}

		// Full replace, not incremental: drop the week's derived rows and
		// rebuild from picks.
		if err := tx.Where("week_id = ?", week.ID).Delete(&models.WeeklyResult{}).Error; err != nil {
			return err
		}

		var users []models.User
		if err := tx.Where("is_active_player = ?", true).Find(&users).Error; err != nil {
			return err
		}

		var results []*models.WeeklyResult
		for _, u := range users {
			var picks []models.Pick
			if err := tx.Where("user_id = ? AND game_id IN ?", u.ID, gameIDs).Find(&picks).Error; err != nil {
				return err
			}
			if len(picks) == 0 {
				// No picks this week means no row at all, not a zero row.
				continue
			}
			results = append(results, buildWeekResult(u.ID, week.ID, picks))
		}

		assignWeeklyWinShares(results)

		for _, r := range results {
			if err := tx.Create(r).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// buildWeekResult folds one player's picks into a WeeklyResult row. Picks
// with nil points (game not final) contribute nothing to the total and
// never count as winning.
func buildWeekResult(userID, weekID string, picks []models.Pick) *models.WeeklyResult {
	r := &models.WeeklyResult{
		ID:       uuid.NewString(),
		UserID:   userID,
		WeekID:   weekID,
		NumPicks: len(picks),
	}
	for _, p := range picks {
		if p.Points == nil {
			continue
		}
		r.TotalPoints += *p.Points
		if *p.Points > 0 {
			r.WinningPicks++
		}
	}
	r.IsEligible = r.NumPicks >= MinPicksForEligibility
	return r
}

// assignWeeklyWinShares marks the weekly winner(s) on a freshly built result
// set. Only eligible rows (4+ picks) compete. Rows tied at the top point
// total fall back to winning-pick count; rows still tied after that split
// the single win evenly. Everyone else keeps share 0.
func assignWeeklyWinShares(results []*models.WeeklyResult) {
	var eligible []*models.WeeklyResult
	for _, r := range results {
		if r.IsEligible {
			eligible = append(eligible, r)
		}
	}
	if len(eligible) == 0 {
		return
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].TotalPoints > eligible[j].TotalPoints
	})
	best := eligible[0].TotalPoints
	var tied []*models.WeeklyResult
	for _, r := range eligible {
		if r.TotalPoints == best {
			tied = append(tied, r)
		}
	}
	if len(tied) == 1 {
		tied[0].WeeklyWinShare = 1.0
		return
	}
	maxWinning := tied[0].WinningPicks
	for _, r := range tied[1:] {
		if r.WinningPicks > maxWinning {
			maxWinning = r.WinningPicks
		}
	}
	var winners []*models.WeeklyResult
	for _, r := range tied {
		if r.WinningPicks == maxWinning {
			winners = append(winners, r)
		}
	}
	share := 1.0 / float64(len(winners))
	for _, r := range winners {
		r.WeeklyWinShare = share
	}
}

// --- Week & game admin handlers ---

// AddGame creates a game inside a week.
func (s *ScoringService) AddGame(c *fiber.Ctx) error {
	type Req struct {
		HomeTeam string   `json:"home_team" validate:"required"`
		AwayTeam string   `json:"away_team" validate:"required"`
		Spread   *float64 `json:"spread"`
		Favorite string   `json:"favorite"`
		GameTime string   `json:"game_time"` // RFC3339
	}
	weekID := c.Params("id")
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if req.HomeTeam == "" || req.AwayTeam == "" {
		return c.Status(400).JSON(fiber.Map{"error": "home_team and away_team are required"})
	}
	if req.Favorite != "" && req.Favorite != models.FavoriteHome && req.Favorite != models.FavoriteAway {
		return c.Status(400).JSON(fiber.Map{"error": "favorite must be 'home' or 'away'"})
	}
	if req.Spread != nil && *req.Spread < 0 {
		return c.Status(400).JSON(fiber.Map{"error": "spread must be a non-negative magnitude"})
	}
	if err := s.DB.First(&models.Week{}, "id = ?", weekID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "week not found"})
	}
	var gameTime *time.Time
	if req.GameTime != "" {
		t, err := time.Parse(time.RFC3339, req.GameTime)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid game_time (use RFC3339)"})
		}
		gameTime = &t
	}
	game := &models.Game{
		ID:       uuid.NewString(),
		WeekID:   weekID,
		HomeTeam: req.HomeTeam,
		AwayTeam: req.AwayTeam,
		Spread:   req.Spread,
		Favorite: req.Favorite,
		GameTime: gameTime,
	}
	if err := s.DB.Create(game).Error; err != nil {
		log.Printf("DB Error creating game: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to create game"})
	}
	return c.Status(201).JSON(game)
}

// UpdateGame edits line and score fields. When the game is final with both
// scores present, points on its picks are re-derived in the same
// transaction so a score correction can never leave stale pick points
// behind.
func (s *ScoringService) UpdateGame(c *fiber.Ctx) error {
	type Req struct {
		Spread    *float64 `json:"spread"`
		Favorite  *string  `json:"favorite"`
		HomeScore *int     `json:"home_score"`
		AwayScore *int     `json:"away_score"`
		IsFinal   *bool    `json:"is_final"`
		GameTime  *string  `json:"game_time"` // RFC3339
	}
	id := c.Params("id")
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	var game models.Game
	if err := s.DB.First(&game, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "game not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}
	if req.Spread != nil {
		if *req.Spread < 0 {
			return c.Status(400).JSON(fiber.Map{"error": "spread must be a non-negative magnitude"})
		}
		game.Spread = req.Spread
	}
	if req.Favorite != nil {
		if *req.Favorite != "" && *req.Favorite != models.FavoriteHome && *req.Favorite != models.FavoriteAway {
			return c.Status(400).JSON(fiber.Map{"error": "favorite must be 'home' or 'away'"})
		}
		game.Favorite = *req.Favorite
	}
	if req.GameTime != nil && *req.GameTime != "" {
		t, err := time.Parse(time.RFC3339, *req.GameTime)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid game_time (use RFC3339)"})
		}
		game.GameTime = &t
	}
	if req.HomeScore != nil {
		game.HomeScore = req.HomeScore
	}
	if req.AwayScore != nil {
		game.AwayScore = req.AwayScore
	}
	if req.IsFinal != nil {
		game.IsFinal = *req.IsFinal
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&game).Error; err != nil {
			return err
		}
		if game.IsFinal && game.HomeScore != nil && game.AwayScore != nil {
			var picks []models.Pick
			if err := tx.Where("game_id = ?", game.ID).Find(&picks).Error; err != nil {
				return err
			}
			for i := range picks {
				pts := game.CalculatePoints(picks[i].PickedTeam)
				if err := tx.Model(&picks[i]).Update("points", pts).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("DB Error updating game %s: %v", id, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to update game"})
	}
	return c.JSON(game)
}

// DeleteGame removes a game and its picks.
func (s *ScoringService) DeleteGame(c *fiber.Ctx) error {
	id := c.Params("id")
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("game_id = ?", id).Delete(&models.Pick{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Game{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fiber.NewError(404, "game not found")
		}
		return nil
	})
	if err != nil {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
		}
		log.Printf("DB Error deleting game %s: %v", id, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to delete game"})
	}
	return c.JSON(fiber.Map{"message": "game deleted"})
}

// ToggleWeekOpen flips whether the week accepts picks.
func (s *ScoringService) ToggleWeekOpen(c *fiber.Ctx) error {
	id := c.Params("id")
	var week models.Week
	if err := s.DB.First(&week, "id = ?", id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "week not found"})
	}
	week.IsOpenForPicks = !week.IsOpenForPicks
	if err := s.DB.Save(&week).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "update failed"})
	}
	return c.JSON(week)
}

// UpdateWeek edits a week's pick deadline and open flag. The deadline feeds
// the scheduler, which closes the week once it passes.
func (s *ScoringService) UpdateWeek(c *fiber.Ctx) error {
	type Req struct {
		PicksDeadline  *string `json:"picks_deadline"` // RFC3339, "" clears
		IsOpenForPicks *bool   `json:"is_open_for_picks"`
	}
	id := c.Params("id")
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	var week models.Week
	if err := s.DB.First(&week, "id = ?", id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "week not found"})
	}
	if req.PicksDeadline != nil {
		if *req.PicksDeadline == "" {
			week.PicksDeadline = nil
		} else {
			t, err := time.Parse(time.RFC3339, *req.PicksDeadline)
			if err != nil {
				return c.Status(400).JSON(fiber.Map{"error": "invalid picks_deadline (use RFC3339)"})
			}
			week.PicksDeadline = &t
		}
	}
	if req.IsOpenForPicks != nil {
		week.IsOpenForPicks = *req.IsOpenForPicks
	}
	if err := s.DB.Save(&week).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "update failed"})
	}
	return c.JSON(week)
}

// CalculateResults recomputes the week's derived rows on demand.
func (s *ScoringService) CalculateResults(c *fiber.Ctx) error {
	id := c.Params("id")
	var week models.Week
	if err := s.DB.First(&week, "id = ?", id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "week not found"})
	}
	if err := s.CalculateWeekResults(&week); err != nil {
		log.Printf("Failed to calculate results for week %s: %v", id, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to calculate results"})
	}
	return c.JSON(fiber.Map{"message": "results calculated"})
}

// CompleteWeek recomputes results and marks the week completed. Refused
// while any game is still live — a completed week feeds the season-long
// resolvers and must never move again.
func (s *ScoringService) CompleteWeek(c *fiber.Ctx) error {
	id := c.Params("id")
	var week models.Week
	if err := s.DB.First(&week, "id = ?", id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "week not found"})
	}
	var pending int64
	if err := s.DB.Model(&models.Game{}).
		Where("week_id = ? AND is_final = ?", id, false).
		Count(&pending).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}
	if pending > 0 {
		return c.Status(400).JSON(fiber.Map{"error": "not all games are final"})
	}
	if err := s.CalculateWeekResults(&week); err != nil {
		log.Printf("Failed to calculate results for week %s: %v", id, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to calculate results"})
	}
	week.IsCompleted = true
	week.IsOpenForPicks = false
	if err := s.DB.Save(&week).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to complete week"})
	}
	return c.JSON(week)
}

// GetWeekResults lists the week's derived rows, best total first.
func (s *ScoringService) GetWeekResults(c *fiber.Ctx) error {
	id := c.Params("id")
	var results []models.WeeklyResult
	if err := s.DB.Preload("User").
		Where("week_id = ?", id).
		Order("total_points DESC").
		Find(&results).Error; err != nil {
		log.Printf("DB Error fetching week results: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch results"})
	}
	return c.JSON(results)
}
