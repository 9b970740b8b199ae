package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Mrcarnj/MajorPools-sub000/internal/services"
	"github.com/Mrcarnj/MajorPools-sub000/pkg/utils"
)

type EntryHandler struct {
	entries     *services.EntryService
	tournaments *services.TournamentService
}

func NewEntryHandler(entries *services.EntryService, tournaments *services.TournamentService) *EntryHandler {
	return &EntryHandler{
		entries:     entries,
		tournaments: tournaments,
	}
}

// Submit creates or replaces a participant's entry for the active
// tournament.
func (h *EntryHandler) Submit(c *gin.Context) {
	var req services.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid entry submission", err.Error())
		return
	}

	entry, err := h.entries.Submit(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SendSuccess(c, entry)
}

// List returns the entries for a tournament. Without a tournament_id query
// parameter it defaults to the active tournament.
func (h *EntryHandler) List(c *gin.Context) {
	var tournamentID uuid.UUID
	if raw := c.Query("tournament_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			utils.SendValidationError(c, "Invalid tournament_id", err.Error())
			return
		}
		tournamentID = parsed
	} else {
		tournament, err := h.tournaments.Current(c.Request.Context())
		if err != nil {
			respondServiceError(c, err)
			return
		}
		tournamentID = tournament.ID
	}

	entries, err := h.entries.List(c.Request.Context(), tournamentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SendSuccessWithMeta(c, entries, &utils.Meta{
		Total:        len(entries),
		TournamentID: tournamentID.String(),
	})
}
