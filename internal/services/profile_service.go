package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/teamup-campus/teamup/internal/models"
	pgrepo "github.com/teamup-campus/teamup/internal/repositories/postgres"
	"github.com/teamup-campus/teamup/internal/utils"
)

const (
	MinYear = 1
	MaxYear = 8
)

// ProfilePatch carries optional profile fields; nil means unchanged.
type ProfilePatch struct {
	Name       *string `json:"name,omitempty"`
	Email      *string `json:"email,omitempty"`
	Department *string `json:"department,omitempty"`
	Year       *int    `json:"year,omitempty"`
}

type ProfileService interface {
	Get(ctx context.Context, userID string) (*models.Profile, error)
	Update(ctx context.Context, userID string, patch ProfilePatch) (*models.Profile, error)
}

type profileService struct {
	profiles pgrepo.ProfileRepository
	now      func() time.Time
}

func NewProfileService(profiles pgrepo.ProfileRepository) ProfileService {
	return &profileService{profiles: profiles, now: func() time.Time { return time.Now().UTC() }}
}

func (s *profileService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	const op = "ProfileService.Get"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}

	p, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, utils.FromStore(op, "profile", "failed to get profile", err)
	}
	return p, nil
}

func (s *profileService) Update(ctx context.Context, userID string, patch ProfilePatch) (*models.Profile, error) {
	const op = "ProfileService.Update"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	if patch.Year != nil && (*patch.Year < MinYear || *patch.Year > MaxYear) {
		return nil, utils.E(utils.CodeInvalidArgument, op, "year must be between 1 and 8", nil)
	}
	if patch.Email != nil && strings.TrimSpace(*patch.Email) != "" {
		if _, err := mail.ParseAddress(strings.TrimSpace(*patch.Email)); err != nil {
			return nil, utils.E(utils.CodeInvalidArgument, op, "invalid email", err)
		}
	}

	now := s.now()
	existing, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeInternal, op, "failed to load profile", err)
		}
		existing = &models.Profile{ID: userID, CreatedAt: now}
	}

	if patch.Name != nil {
		existing.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Email != nil {
		existing.Email = strings.TrimSpace(*patch.Email)
	}
	if patch.Department != nil {
		d := strings.TrimSpace(*patch.Department)
		if d == "" {
			existing.Department = nil
		} else {
			existing.Department = &d
		}
	}
	if patch.Year != nil {
		y := *patch.Year
		existing.Year = &y
	}
	existing.UpdatedAt = now

	if err := s.profiles.Upsert(ctx, existing); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to upsert profile", err)
	}
	return existing, nil
}
