package processor

import (
	"context"
	"fmt"

	"orderservice/internal/app/shop/repository"
	"orderservice/internal/app/shop/service"
	"orderservice/pkg/logger"

	"github.com/robfig/cron/v3"
)

// CronScheduler запускает периодические фоновые задачи:
// синхронизацию прайс-листов по URL и очистку просроченных токенов
type CronScheduler struct {
	cron     *cron.Cron
	catalog  repository.CatalogRepository
	importer service.ImportService
	auth     service.AuthService
}

// NewCronScheduler создает планировщик фоновых задач
func NewCronScheduler(catalog repository.CatalogRepository, importer service.ImportService, auth service.AuthService) *CronScheduler {
	return &CronScheduler{
		cron:     cron.New(),
		catalog:  catalog,
		importer: importer,
		auth:     auth,
	}
}

// Start регистрирует задачи и запускает планировщик
func (s *CronScheduler) Start(priceSyncSchedule, tokenCleanupSchedule string) error {
	if _, err := s.cron.AddFunc(priceSyncSchedule, s.syncPriceLists); err != nil {
		return fmt.Errorf("failed to schedule price sync: %w", err)
	}

	if _, err := s.cron.AddFunc(tokenCleanupSchedule, s.cleanupTokens); err != nil {
		return fmt.Errorf("failed to schedule token cleanup: %w", err)
	}

	s.cron.Start()
	logger.Info().
		Str("price_sync", priceSyncSchedule).
		Str("token_cleanup", tokenCleanupSchedule).
		Msg("cron scheduler started")

	return nil
}

// Stop останавливает планировщик, дожидаясь текущих задач
func (s *CronScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()

	logger.Info().Msg("cron scheduler stopped")
}

// syncPriceLists пересинхронизирует каталоги всех магазинов с URL
// Ошибка одного магазина не мешает остальным
func (s *CronScheduler) syncPriceLists() {
	ctx := context.Background()

	shops, err := s.catalog.GetShopsWithURL(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to list shops for price sync")
		return
	}

	for i := range shops {
		shop := &shops[i]

		stats, err := s.importer.SyncShop(ctx, shop)
		if err != nil {
			logger.Error().Err(err).Str("shop", shop.Name).Msg("price sync failed")
			continue
		}

		logger.Info().
			Str("shop", shop.Name).
			Int("created", stats.Created).
			Int("errors", stats.Errors).
			Msg("price list re-synced")
	}
}

// cleanupTokens удаляет просроченные токены подтверждения почты
func (s *CronScheduler) cleanupTokens() {
	if _, err := s.auth.CleanupExpiredTokens(context.Background()); err != nil {
		logger.Error().Err(err).Msg("token cleanup failed")
	}
}
