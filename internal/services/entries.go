package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Mrcarnj/MajorPools-sub000/internal/models"
	"github.com/Mrcarnj/MajorPools-sub000/pkg/utils"
)

// EntryService handles participant submissions and entry lookups.
type EntryService struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewEntryService(db *gorm.DB, logger *logrus.Logger) *EntryService {
	return &EntryService{
		db:     db,
		logger: logger,
	}
}

// SubmitRequest is one participant submission: two picks each from tiers 1-3,
// one each from tiers 4 and 5.
type SubmitRequest struct {
	EntryName    string `json:"entry_name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Tier1Golfer1 string `json:"tier1_golfer1" binding:"required"`
	Tier1Golfer2 string `json:"tier1_golfer2" binding:"required"`
	Tier2Golfer1 string `json:"tier2_golfer1" binding:"required"`
	Tier2Golfer2 string `json:"tier2_golfer2" binding:"required"`
	Tier3Golfer1 string `json:"tier3_golfer1" binding:"required"`
	Tier3Golfer2 string `json:"tier3_golfer2" binding:"required"`
	Tier4Golfer1 string `json:"tier4_golfer1" binding:"required"`
	Tier5Golfer1 string `json:"tier5_golfer1" binding:"required"`
}

func (r *SubmitRequest) golferIDs() []string {
	return []string{
		r.Tier1Golfer1, r.Tier1Golfer2,
		r.Tier2Golfer1, r.Tier2Golfer2,
		r.Tier3Golfer1, r.Tier3Golfer2,
		r.Tier4Golfer1,
		r.Tier5Golfer1,
	}
}

// Submit upserts an entry for the active tournament. Resubmitting under the
// same normalized name and email replaces the picks; the same name under a
// different email is rejected with ErrDuplicateEntryName so nobody can
// silently overwrite someone else's entry.
func (s *EntryService) Submit(ctx context.Context, req *SubmitRequest) (*models.Entry, error) {
	tournament, err := ActiveTournament(ctx, s.db)
	if err != nil {
		return nil, err
	}

	if err := validatePicks(req); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	nameKey := models.NormalizeEntryName(req.EntryName)
	if nameKey == "" {
		return nil, utils.NewAppError(utils.ErrCodeValidation, "entry name must not be blank")
	}

	var existing models.Entry
	err = s.db.WithContext(ctx).
		Where("tournament_id = ? AND name_key = ?", tournament.ID, nameKey).
		First(&existing).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up entry: %w", err)
	}

	if err == nil {
		if existing.Email != email {
			return nil, utils.ErrDuplicateEntryName
		}
		applyPicks(&existing, req)
		if err := s.db.WithContext(ctx).Save(&existing).Error; err != nil {
			return nil, fmt.Errorf("failed to update entry: %w", err)
		}
		s.logger.WithFields(logrus.Fields{
			"entry":      existing.EntryName,
			"tournament": tournament.Name,
		}).Info("Updated existing entry")
		return &existing, nil
	}

	entry := models.Entry{
		TournamentID: tournament.ID,
		EntryName:    strings.TrimSpace(req.EntryName),
		Email:        email,
	}
	applyPicks(&entry, req)
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"entry":      entry.EntryName,
		"tournament": tournament.Name,
	}).Info("Created entry")
	return &entry, nil
}

// List returns the entries for a tournament ordered by calculated score.
func (s *EntryService) List(ctx context.Context, tournamentID uuid.UUID) ([]models.Entry, error) {
	var entries []models.Entry
	err := s.db.WithContext(ctx).
		Where("tournament_id = ?", tournamentID).
		Order("calculated_score ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return entries, nil
}

func validatePicks(req *SubmitRequest) error {
	seen := make(map[string]bool, 8)
	for _, id := range req.golferIDs() {
		if strings.TrimSpace(id) == "" {
			return utils.NewAppError(utils.ErrCodeValidation, "all eight golfer slots must be filled")
		}
		if seen[id] {
			return utils.NewAppError(utils.ErrCodeValidation, "each golfer may only be picked once", fmt.Sprintf("golfer %s appears twice", id))
		}
		seen[id] = true
	}
	return nil
}

func applyPicks(entry *models.Entry, req *SubmitRequest) {
	entry.Tier1Golfer1 = req.Tier1Golfer1
	entry.Tier1Golfer2 = req.Tier1Golfer2
	entry.Tier2Golfer1 = req.Tier2Golfer1
	entry.Tier2Golfer2 = req.Tier2Golfer2
	entry.Tier3Golfer1 = req.Tier3Golfer1
	entry.Tier3Golfer2 = req.Tier3Golfer2
	entry.Tier4Golfer1 = req.Tier4Golfer1
	entry.Tier5Golfer1 = req.Tier5Golfer1
}
