package services

import (
	"context"

	"github.com/teamup-campus/teamup/internal/models"
	pgrepo "github.com/teamup-campus/teamup/internal/repositories/postgres"
	"github.com/teamup-campus/teamup/internal/utils"
)

type UserService interface {
	Onboarding(ctx context.Context, userID string) (*models.Onboarding, error)
}

type userService struct {
	users pgrepo.UserRepository
}

func NewUserService(users pgrepo.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) Onboarding(ctx context.Context, userID string) (*models.Onboarding, error) {
	const op = "UserService.Onboarding"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}

	hasProfile, err := s.users.HasProfile(ctx, userID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to check profile existence", err)
	}
	hasPost, err := s.users.HasPost(ctx, userID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to check post existence", err)
	}
	return &models.Onboarding{UserID: userID, HasProfile: hasProfile, HasPost: hasPost}, nil
}
