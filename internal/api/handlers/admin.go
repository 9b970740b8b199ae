package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Mrcarnj/MajorPools-sub000/internal/services"
	"github.com/Mrcarnj/MajorPools-sub000/pkg/utils"
)

type AdminHandler struct {
	sync        *services.SyncService
	tournaments *services.TournamentService
	completion  *services.CompletionService
}

func NewAdminHandler(sync *services.SyncService, tournaments *services.TournamentService, completion *services.CompletionService) *AdminHandler {
	return &AdminHandler{
		sync:        sync,
		tournaments: tournaments,
		completion:  completion,
	}
}

// TriggerSync runs one synchronization cycle immediately.
func (h *AdminHandler) TriggerSync(c *gin.Context) {
	if err := h.sync.Run(c.Request.Context()); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SendSuccess(c, h.sync.Status())
}

// GetSyncStatus reports the last run's outcome.
func (h *AdminHandler) GetSyncStatus(c *gin.Context) {
	utils.SendSuccess(c, h.sync.Status())
}

// ActivateTournament finds the tournament in play on the feed schedule and
// makes it the single active pool.
func (h *AdminHandler) ActivateTournament(c *gin.Context) {
	tournament, err := h.tournaments.Activate(c.Request.Context(), time.Now().UTC())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SendSuccess(c, tournament)
}

// CompleteTournament finalizes standings and payouts for a tournament.
func (h *AdminHandler) CompleteTournament(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendValidationError(c, "Invalid tournament id", err.Error())
		return
	}

	summary, err := h.completion.Complete(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SendSuccess(c, summary)
}
