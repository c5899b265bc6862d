package handlers

import (
	bookingRepo "bengkelbot/database/repository/booking"
	settingsRepo "bengkelbot/database/repository/settings"
	"bengkelbot/services/bot"
	"bengkelbot/services/catalog"
	"bengkelbot/services/schedule"

	"go.uber.org/zap"
)

// HandlerBundle aggregates the handlers and their dependencies for route
// registration.
type HandlerBundle struct {
	Orchestrator *bot.Orchestrator
	BookingRepo  bookingRepo.BookingRepository
	Engine       schedule.SchedulingEngine
	Catalog      catalog.CatalogService
	SettingsRepo settingsRepo.SettingsRepository
	Logger       *zap.Logger
}
