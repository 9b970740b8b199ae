package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Mrcarnj/MajorPools-sub000/internal/services"
	"github.com/Mrcarnj/MajorPools-sub000/pkg/utils"
)

type TournamentHandler struct {
	tournaments *services.TournamentService
}

func NewTournamentHandler(tournaments *services.TournamentService) *TournamentHandler {
	return &TournamentHandler{
		tournaments: tournaments,
	}
}

// GetCurrent returns the active tournament header.
func (h *TournamentHandler) GetCurrent(c *gin.Context) {
	tournament, err := h.tournaments.Current(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SendSuccess(c, tournament)
}
