package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"pickem-pool-system/models"
	"pickem-pool-system/services"

	"gorm.io/gorm"
)

// ScoreSyncClient pulls final scores from the external score feed and keeps
// the games table current.
type ScoreSyncClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	DB         *gorm.DB
	Scoring    *services.ScoringService
}

func NewScoreSyncClient(db *gorm.DB, scoring *services.ScoringService) *ScoreSyncClient {
	baseURL := os.Getenv("SCORE_FEED_URL")
	if baseURL == "" {
		log.Fatal("SCORE_FEED_URL environment variable is required")
	}
	token := os.Getenv("POOL_SERVICE_TOKEN")
	if token == "" {
		log.Fatal("POOL_SERVICE_TOKEN environment variable is required for score sync")
	}

	return &ScoreSyncClient{
		BaseURL: baseURL,
		Token:   token,
		DB:      db,
		Scoring: scoring,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ScoreUpdate is one game's state on the feed, keyed by our game ID.
type ScoreUpdate struct {
	GameID    string `json:"game_id"`
	HomeScore *int   `json:"home_score"`
	AwayScore *int   `json:"away_score"`
	IsFinal   bool   `json:"is_final"`
}

func (c *ScoreSyncClient) GetChangedScores(ctx context.Context, since time.Time) ([]ScoreUpdate, error) {
	since = since.UTC()

	u, err := url.Parse(fmt.Sprintf("%s/api/v1/public/scores", c.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("since", since.Format(time.RFC3339))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call score feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("score feed returned status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Scores []ScoreUpdate `json:"scores"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode score feed response: %w", err)
	}

	return response.Scores, nil
}

// PollScores applies feed updates to games and recomputes every week a
// newly-final game belongs to.
func PollScores(ctx context.Context, client *ScoreSyncClient, pollInterval time.Duration) {
	log.Println("Starting score polling...")
	lastSyncTime := time.Now().UTC().Add(-24 * time.Hour)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Score polling stopped.")
			return
		case <-ticker.C:
			logTime := time.Now().UTC()

			scores, err := client.GetChangedScores(ctx, lastSyncTime)
			if err != nil {
				log.Printf("❌ Error polling scores: %v", err)
				continue
			}
			if len(scores) == 0 {
				continue
			}
			log.Printf("📥 Received %d score update(s) from feed.", len(scores))

			touchedWeeks := make(map[string]bool)
			failed := false
			for _, u := range scores {
				var game models.Game
				if err := client.DB.First(&game, "id = ?", u.GameID).Error; err != nil {
					if err == gorm.ErrRecordNotFound {
						continue
					}
					log.Printf("❌ Failed to load game %s: %v", u.GameID, err)
					failed = true
					continue
				}
				err := client.DB.Model(&game).Updates(map[string]interface{}{
					"home_score": u.HomeScore,
					"away_score": u.AwayScore,
					"is_final":   u.IsFinal,
				}).Error
				if err != nil {
					log.Printf("❌ Failed to update game %s: %v", game.ID, err)
					failed = true
					continue
				}
				if u.IsFinal {
					touchedWeeks[game.WeekID] = true
				}
			}

			for weekID := range touchedWeeks {
				var week models.Week
				if err := client.DB.First(&week, "id = ?", weekID).Error; err != nil {
					log.Printf("❌ Failed to load week %s: %v", weekID, err)
					failed = true
					continue
				}
				if err := client.Scoring.CalculateWeekResults(&week); err != nil {
					log.Printf("❌ Failed to recompute week %d: %v", week.WeekNumber, err)
					failed = true
					continue
				}
				log.Printf("✅ Recomputed results for week %d.", week.WeekNumber)
			}

			// Do NOT advance lastSyncTime on failure — retry same window next tick
			if !failed {
				lastSyncTime = logTime
			}
		}
	}
}
