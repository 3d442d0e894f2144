// services/pick_service.go
package services

import (
	"errors"
	"fmt"
	"log"

	"pickem-pool-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PickService struct {
	DB *gorm.DB
}

func NewPickService(db *gorm.DB) *PickService {
	return &PickService{DB: db}
}

type pickSubmission struct {
	GameID     string `json:"game_id"`
	PickedTeam string `json:"picked_team"`
}

// SubmitPicks replaces the caller's picks for a week. The week must be open,
// every picked team must belong to its game, and no picked game may have
// kicked off. Resubmitting is allowed any time before kickoff: existing picks
// on non-started games are dropped and replaced, picks on started games are
// locked in place.
func (s *PickService) SubmitPicks(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "user context required"})
	}

	var week models.Week
	if err := s.DB.Preload("Games").First(&week, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "week not found"})
		}
		log.Printf("DB Error fetching week %s: %v", c.Params("id"), err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch week"})
	}
	if !week.IsOpenForPicks {
		return c.Status(409).JSON(fiber.Map{"error": "week is not open for picks"})
	}

	var body struct {
		Picks []pickSubmission `json:"picks"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if len(body.Picks) == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "picks are required"})
	}

	gamesByID := make(map[string]*models.Game, len(week.Games))
	for i := range week.Games {
		gamesByID[week.Games[i].ID] = &week.Games[i]
	}

	newPicks := make([]models.Pick, 0, len(body.Picks))
	seen := make(map[string]bool, len(body.Picks))
	for _, p := range body.Picks {
		game, ok := gamesByID[p.GameID]
		if !ok {
			return c.Status(400).JSON(fiber.Map{
				"error": fmt.Sprintf("game %s is not part of this week", p.GameID),
			})
		}
		if seen[p.GameID] {
			return c.Status(400).JSON(fiber.Map{
				"error": fmt.Sprintf("duplicate pick for game %s", p.GameID),
			})
		}
		seen[p.GameID] = true
		if game.HasStarted() {
			return c.Status(409).JSON(fiber.Map{
				"error": fmt.Sprintf("%s @ %s has already started", game.AwayTeam, game.HomeTeam),
			})
		}
		if p.PickedTeam != game.HomeTeam && p.PickedTeam != game.AwayTeam {
			return c.Status(400).JSON(fiber.Map{
				"error": fmt.Sprintf("%s is not playing in %s @ %s", p.PickedTeam, game.AwayTeam, game.HomeTeam),
			})
		}
		newPicks = append(newPicks, models.Pick{
			ID:         uuid.NewString(),
			UserID:     userID,
			GameID:     p.GameID,
			PickedTeam: p.PickedTeam,
		})
	}

	// Replace only picks on games that have not kicked off; started games
	// keep whatever was submitted before.
	openGameIDs := make([]string, 0, len(week.Games))
	for i := range week.Games {
		if !week.Games[i].HasStarted() {
			openGameIDs = append(openGameIDs, week.Games[i].ID)
		}
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if len(openGameIDs) > 0 {
			if err := tx.Where("user_id = ? AND game_id IN ?", userID, openGameIDs).
				Delete(&models.Pick{}).Error; err != nil {
				return err
			}
		}
		return tx.Create(&newPicks).Error
	})
	if err != nil {
		log.Printf("DB Error saving picks for user %s week %s: %v", userID, week.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to save picks"})
	}
	return c.Status(201).JSON(fiber.Map{"submitted": len(newPicks)})
}

// GetMyWeekPicks returns the caller's picks for a week, games attached.
func (s *PickService) GetMyWeekPicks(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "user context required"})
	}
	picks, err := s.weekPicks(c.Params("id"), userID)
	if err != nil {
		log.Printf("DB Error fetching picks for user %s: %v", userID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch picks"})
	}
	return c.JSON(picks)
}

// GetOthersPicks reveals the whole pool's picks for a week — but only once
// the caller has submitted their own, so nobody window-shops before
// committing. First access is recorded in the view log.
func (s *PickService) GetOthersPicks(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "user context required"})
	}
	weekID := c.Params("id")

	own, err := s.weekPicks(weekID, userID)
	if err != nil {
		log.Printf("DB Error fetching picks for user %s: %v", userID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch picks"})
	}
	if len(own) == 0 {
		return c.Status(403).JSON(fiber.Map{"error": "submit your own picks before viewing others"})
	}

	viewLog := models.PickViewLog{ID: uuid.NewString(), UserID: userID, WeekID: weekID}
	if err := s.DB.Where("user_id = ? AND week_id = ?", userID, weekID).
		FirstOrCreate(&viewLog).Error; err != nil {
		log.Printf("DB Error recording pick view for user %s: %v", userID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to record view"})
	}

	var picks []models.Pick
	if err := s.DB.Preload("Game").
		Joins("JOIN games ON games.id = picks.game_id").
		Where("games.week_id = ?", weekID).
		Find(&picks).Error; err != nil {
		log.Printf("DB Error fetching week picks for week %s: %v", weekID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch picks"})
	}
	return c.JSON(picks)
}

// GetPickHistory returns the caller's picks for a whole season grouped by
// week, with live point values on final games.
func (s *PickService) GetPickHistory(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "user context required"})
	}
	season, err := findSeason(s.DB, c.Params("id"))
	if err != nil {
		return seasonLookupError(c, err)
	}

	var weeks []models.Week
	if err := s.DB.Where("season_id = ?", season.ID).
		Order("week_number").Find(&weeks).Error; err != nil {
		log.Printf("DB Error fetching weeks for season %s: %v", season.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch weeks"})
	}

	type weekHistory struct {
		WeekNumber int           `json:"week_number"`
		Picks      []models.Pick `json:"picks"`
	}
	history := make([]weekHistory, 0, len(weeks))
	for _, w := range weeks {
		picks, err := s.weekPicks(w.ID, userID)
		if err != nil {
			log.Printf("DB Error fetching picks for user %s week %s: %v", userID, w.ID, err)
			return c.Status(500).JSON(fiber.Map{"error": "failed to fetch picks"})
		}
		if len(picks) == 0 {
			continue
		}
		for i := range picks {
			if picks[i].Game.IsFinal {
				picks[i].Points = picks[i].Game.CalculatePoints(picks[i].PickedTeam)
			}
		}
		history = append(history, weekHistory{WeekNumber: w.WeekNumber, Picks: picks})
	}
	return c.JSON(history)
}

func (s *PickService) weekPicks(weekID, userID string) ([]models.Pick, error) {
	var picks []models.Pick
	err := s.DB.Preload("Game").
		Joins("JOIN games ON games.id = picks.game_id").
		Where("games.week_id = ? AND picks.user_id = ?", weekID, userID).
		Find(&picks).Error
	return picks, err
}
