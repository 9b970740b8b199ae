package api

import (
	"github.com/gin-gonic/gin"

	"github.com/Mrcarnj/MajorPools-sub000/internal/api/handlers"
	"github.com/Mrcarnj/MajorPools-sub000/internal/api/middleware"
	"github.com/Mrcarnj/MajorPools-sub000/internal/services"
	"github.com/Mrcarnj/MajorPools-sub000/pkg/config"
)

// Services bundles everything the routes consume.
type Services struct {
	Tournaments *services.TournamentService
	Entries     *services.EntryService
	Leaderboard *services.LeaderboardService
	Sync        *services.SyncService
	Completion  *services.CompletionService
}

// SetupRoutes configures all API routes on the given router group.
func SetupRoutes(group *gin.RouterGroup, svc *Services, cfg *config.Config) {
	tournamentHandler := handlers.NewTournamentHandler(svc.Tournaments)
	entryHandler := handlers.NewEntryHandler(svc.Entries, svc.Tournaments)
	leaderboardHandler := handlers.NewLeaderboardHandler(svc.Leaderboard)
	adminHandler := handlers.NewAdminHandler(svc.Sync, svc.Tournaments, svc.Completion)

	// Public routes
	group.GET("/tournaments/current", tournamentHandler.GetCurrent)
	group.GET("/leaderboard", leaderboardHandler.Get)
	group.POST("/entries", entryHandler.Submit)
	group.GET("/entries", entryHandler.List)

	// Admin routes
	admin := group.Group("/admin")
	admin.Use(middleware.AuthRequired(cfg.JWTSecret))
	{
		admin.POST("/sync", adminHandler.TriggerSync)
		admin.GET("/sync/status", adminHandler.GetSyncStatus)
		admin.POST("/tournaments/activate", adminHandler.ActivateTournament)
		admin.POST("/tournaments/:id/complete", adminHandler.CompleteTournament)
	}
}
