package usecase

import (
	"context"
	"strings"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/pkg/errors"
)

type UserUseCase struct {
	userRepo repository.UserRepository
}

func NewUserUseCase(userRepo repository.UserRepository) *UserUseCase {
	return &UserUseCase{
		userRepo: userRepo,
	}
}

func (uc *UserUseCase) GetUserProfile(ctx context.Context, userID string) (*entity.User, error) {
	return uc.userRepo.GetByID(ctx, userID)
}

// RoleOf reports the role stored for userID. Principals with no user record
// are ordinary users.
func (uc *UserUseCase) RoleOf(ctx context.Context, userID string) (string, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, "NOT_FOUND") {
			return entity.RoleUser, nil
		}
		return "", err
	}
	if user.Role == "" {
		return entity.RoleUser, nil
	}
	return user.Role, nil
}

type UpsertUserInput struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Role      string
}

// UpsertUser creates or replaces a user record; used by the development token endpoint.
func (uc *UserUseCase) UpsertUser(ctx context.Context, input UpsertUserInput) (*entity.User, error) {
	if strings.TrimSpace(input.ID) == "" {
		return nil, errors.Validation("User ID is required")
	}
	role := input.Role
	if role == "" {
		role = entity.RoleUser
	}
	if role != entity.RoleUser && role != entity.RoleAdmin {
		return nil, errors.Validation("Role must be user or admin")
	}

	user, err := uc.userRepo.GetByID(ctx, input.ID)
	if err != nil {
		if !errors.Is(err, "NOT_FOUND") {
			return nil, err
		}
		user = &entity.User{ID: input.ID}
	}

	user.Email = input.Email
	user.FirstName = input.FirstName
	user.LastName = input.LastName
	user.Role = role

	if err := uc.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
