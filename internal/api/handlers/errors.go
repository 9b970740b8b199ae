package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Mrcarnj/MajorPools-sub000/pkg/utils"
)

// respondServiceError maps the service error taxonomy onto HTTP responses.
// The submission path in particular must distinguish "fix your input" from
// "try again later".
func respondServiceError(c *gin.Context, err error) {
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		status := http.StatusBadRequest
		switch appErr.Code {
		case utils.ErrCodeNotFound:
			status = http.StatusNotFound
		case utils.ErrCodeUnauthorized:
			status = http.StatusUnauthorized
		case utils.ErrCodeForbidden:
			status = http.StatusForbidden
		case utils.ErrCodeConflict:
			status = http.StatusConflict
		case utils.ErrCodeInternal:
			status = http.StatusInternalServerError
		}
		utils.SendError(c, status, appErr)
		return
	}

	switch {
	case errors.Is(err, utils.ErrNoActiveTournament):
		utils.SendNotFound(c, "No active tournament")
	case errors.Is(err, utils.ErrAmbiguousActiveTournament):
		utils.SendError(c, http.StatusConflict, utils.NewAppError(utils.ErrCodeConflict,
			"Multiple tournaments are flagged active", "deactivate all but one and retry"))
	case errors.Is(err, utils.ErrDuplicateEntryName):
		utils.SendError(c, http.StatusConflict, utils.NewAppError(utils.ErrCodeConflict,
			"Entry name already taken under a different email",
			"use the email that created the entry, or pick a different entry name"))
	case errors.Is(err, utils.ErrFeedUnavailable):
		utils.SendError(c, http.StatusBadGateway, utils.NewAppError(utils.ErrCodeInternal,
			"Leaderboard feed is unavailable", "transient failure, retry shortly"))
	default:
		utils.SendInternalError(c, "Something went wrong")
	}
}
