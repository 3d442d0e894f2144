// services/season_service.go
package services

import (
	"errors"
	"log"
	"time"

	"pickem-pool-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SeasonService struct {
	DB *gorm.DB
}

func NewSeasonService(db *gorm.DB) *SeasonService {
	return &SeasonService{DB: db}
}

// findSeason loads a season by ID, or the active season when id is "active".
func findSeason(db *gorm.DB, id string) (*models.Season, error) {
	var season models.Season
	q := db
	if id == "active" {
		q = q.Where("is_active = ?", true)
	} else {
		q = q.Where("id = ?", id)
	}
	if err := q.First(&season).Error; err != nil {
		return nil, err
	}
	return &season, nil
}

func seasonLookupError(c *fiber.Ctx, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "season not found"})
	}
	log.Printf("DB Error fetching season: %v", err)
	return c.Status(500).JSON(fiber.Map{"error": "failed to fetch season"})
}

// CreateSeason creates a season plus its full week schedule in one
// transaction and makes it the active season.
func (s *SeasonService) CreateSeason(c *fiber.Ctx) error {
	var body struct {
		Year       int     `json:"year"`
		TotalWeeks int     `json:"total_weeks"`
		EntryFee   float64 `json:"entry_fee"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.Year < 1970 {
		return c.Status(400).JSON(fiber.Map{"error": "year is required"})
	}
	if body.TotalWeeks <= 0 {
		body.TotalWeeks = 18
	}
	if body.EntryFee < 0 {
		return c.Status(400).JSON(fiber.Map{"error": "entry_fee cannot be negative"})
	}

	season := models.Season{
		ID:         uuid.NewString(),
		Year:       body.Year,
		IsActive:   true,
		TotalWeeks: body.TotalWeeks,
		EntryFee:   body.EntryFee,
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Season{}).Where("is_active = ?", true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		if err := tx.Create(&season).Error; err != nil {
			return err
		}
		weeks := make([]models.Week, 0, season.TotalWeeks)
		for n := 1; n <= season.TotalWeeks; n++ {
			weeks = append(weeks, models.Week{
				ID:         uuid.NewString(),
				SeasonID:   season.ID,
				WeekNumber: n,
			})
		}
		return tx.Create(&weeks).Error
	})
	if err != nil {
		log.Printf("DB Error creating season %d: %v", body.Year, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to create season"})
	}
	return c.Status(201).JSON(season)
}

// GetSeasons lists all seasons, newest first.
func (s *SeasonService) GetSeasons(c *fiber.Ctx) error {
	var seasons []models.Season
	if err := s.DB.Order("year DESC").Find(&seasons).Error; err != nil {
		log.Printf("DB Error fetching seasons: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch seasons"})
	}
	return c.JSON(seasons)
}

// GetSeasonByID returns one season with its weeks.
func (s *SeasonService) GetSeasonByID(c *fiber.Ctx) error {
	var season models.Season
	q := s.DB.Preload("Weeks", func(db *gorm.DB) *gorm.DB {
		return db.Order("week_number")
	})
	id := c.Params("id")
	if id == "active" {
		q = q.Where("is_active = ?", true)
	} else {
		q = q.Where("id = ?", id)
	}
	if err := q.First(&season).Error; err != nil {
		return seasonLookupError(c, err)
	}
	return c.JSON(season)
}

// UpsertSeasonEntry records (or updates) a player's buy-in for a season.
func (s *SeasonService) UpsertSeasonEntry(c *fiber.Ctx) error {
	season, err := findSeason(s.DB, c.Params("id"))
	if err != nil {
		return seasonLookupError(c, err)
	}
	var body struct {
		UserID     string   `json:"user_id"`
		HasPaid    bool     `json:"has_paid"`
		AmountPaid *float64 `json:"amount_paid"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.UserID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "user_id is required"})
	}
	var user models.User
	if err := s.DB.First(&user, "id = ?", body.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "user not found"})
		}
		log.Printf("DB Error fetching user %s: %v", body.UserID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch user"})
	}

	var entry models.SeasonEntry
	err = s.DB.Where("season_id = ? AND user_id = ?", season.ID, body.UserID).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		entry = models.SeasonEntry{
			ID:       uuid.NewString(),
			SeasonID: season.ID,
			UserID:   body.UserID,
		}
		err = nil
	}
	if err != nil {
		log.Printf("DB Error fetching entry for user %s: %v", body.UserID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch entry"})
	}

	entry.HasPaid = body.HasPaid
	entry.AmountPaid = body.AmountPaid
	if body.HasPaid && entry.PaidAt == nil {
		now := time.Now()
		entry.PaidAt = &now
	}
	if !body.HasPaid {
		entry.PaidAt = nil
	}
	if err := s.DB.Save(&entry).Error; err != nil {
		log.Printf("DB Error saving entry for user %s: %v", body.UserID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to save entry"})
	}
	return c.JSON(entry)
}

// GetSeasonEntries lists a season's buy-ins with the players attached.
func (s *SeasonService) GetSeasonEntries(c *fiber.Ctx) error {
	season, err := findSeason(s.DB, c.Params("id"))
	if err != nil {
		return seasonLookupError(c, err)
	}
	var entries []models.SeasonEntry
	if err := s.DB.Preload("User").Where("season_id = ?", season.ID).
		Find(&entries).Error; err != nil {
		log.Printf("DB Error fetching entries for season %s: %v", season.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch entries"})
	}
	return c.JSON(entries)
}
