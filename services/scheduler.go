// services/scheduler.go
package services

import (
	"log"
	"time"

	"pickem-pool-system/models"

	"github.com/go-co-op/gocron/v2"
)

// StartDeadlineScheduler closes weeks whose pick deadline has passed.
func (s *ScoringService) StartDeadlineScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every minute: close expired weeks
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			var weeks []models.Week
			now := time.Now()
			err := s.DB.Where("is_open_for_picks = ? AND picks_deadline IS NOT NULL AND picks_deadline <= ?", true, now).
				Find(&weeks).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}

			for _, w := range weeks {
				if err := s.DB.Model(&w).Update("is_open_for_picks", false).Error; err != nil {
					log.Printf("[Scheduler] Failed to close week %s: %v", w.ID, err)
				} else {
					log.Printf("✅ Auto-closed week %d for picks", w.WeekNumber)
				}
			}
		}),
	)
}
