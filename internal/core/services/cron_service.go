package services

import (
	"context"
	"log"
	"time"

	"plafondhub/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// CronService runs scheduled maintenance jobs
type CronService struct {
	resetTokenRepo repositories.ResetTokenRepository
	scheduler      *cron.Cron
}

// NewCronService creates a new cron service
func NewCronService(resetTokenRepo repositories.ResetTokenRepository) *CronService {
	return &CronService{
		resetTokenRepo: resetTokenRepo,
		scheduler:      cron.New(),
	}
}

// Start registers and launches the scheduled jobs
func (s *CronService) Start() {
	// Purge expired reset tokens nightly at 02:00
	if _, err := s.scheduler.AddFunc("0 2 * * *", s.purgeExpiredResetTokens); err != nil {
		log.Printf("❌ Failed to register reset-token purge job: %v", err)
		return
	}

	s.scheduler.Start()
	log.Println("🚀 CronService started")
}

// Stop waits for running jobs and stops the scheduler
func (s *CronService) Stop() {
	ctx := s.scheduler.Stop()
	<-ctx.Done()
	log.Println("🛑 CronService stopped")
}

func (s *CronService) purgeExpiredResetTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := s.resetTokenRepo.DeleteExpired(ctx)
	if err != nil {
		log.Printf("❌ Reset-token purge failed: %v", err)
		return
	}
	if count > 0 {
		log.Printf("✅ Purged %d expired reset tokens", count)
	}
}
