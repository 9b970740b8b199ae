package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Mrcarnj/MajorPools-sub000/internal/services"
	"github.com/Mrcarnj/MajorPools-sub000/pkg/utils"
)

type LeaderboardHandler struct {
	leaderboard *services.LeaderboardService
}

func NewLeaderboardHandler(leaderboard *services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboard: leaderboard,
	}
}

// Get returns the ranked standings and live payout schedule for the active
// tournament.
func (h *LeaderboardHandler) Get(c *gin.Context) {
	snapshot, err := h.leaderboard.Snapshot(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SendSuccess(c, snapshot)
}
