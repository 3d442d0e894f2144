// services/user_service.go
package services

import (
	"errors"
	"log"

	"pickem-pool-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

// CreateUser registers a pool member. Usernames are unique; display name
// falls back to the username.
func (s *UserService) CreateUser(c *fiber.Ctx) error {
	var body struct {
		Username    string `json:"username"`
		Email       string `json:"email"`
		DisplayName string `json:"display_name"`
		IsAdmin     bool   `json:"is_admin"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.Username == "" {
		return c.Status(400).JSON(fiber.Map{"error": "username is required"})
	}
	if body.DisplayName == "" {
		body.DisplayName = body.Username
	}

	var existing models.User
	err := s.DB.Where("username = ?", body.Username).First(&existing).Error
	if err == nil {
		return c.Status(409).JSON(fiber.Map{"error": "username already taken"})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("DB Error checking username %s: %v", body.Username, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to create user"})
	}

	user := models.User{
		ID:             uuid.NewString(),
		Username:       body.Username,
		Email:          body.Email,
		DisplayName:    body.DisplayName,
		IsAdmin:        body.IsAdmin,
		IsActivePlayer: true,
	}
	if err := s.DB.Create(&user).Error; err != nil {
		log.Printf("DB Error creating user %s: %v", body.Username, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to create user"})
	}
	return c.Status(201).JSON(user)
}

// ListUsers returns all pool members.
func (s *UserService) ListUsers(c *fiber.Ctx) error {
	var users []models.User
	if err := s.DB.Order("username").Find(&users).Error; err != nil {
		log.Printf("DB Error fetching users: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch users"})
	}
	return c.JSON(users)
}

// ToggleActive flips whether a member is counted as an active player.
// Inactive members keep their history but drop out of future recomputes.
func (s *UserService) ToggleActive(c *fiber.Ctx) error {
	var user models.User
	if err := s.DB.First(&user, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "user not found"})
		}
		log.Printf("DB Error fetching user %s: %v", c.Params("id"), err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch user"})
	}
	user.IsActivePlayer = !user.IsActivePlayer
	if err := s.DB.Model(&user).Update("is_active_player", user.IsActivePlayer).Error; err != nil {
		log.Printf("DB Error updating user %s: %v", user.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to update user"})
	}
	return c.JSON(user)
}
