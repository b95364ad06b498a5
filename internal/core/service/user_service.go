package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/projectlink/projectlink-api/internal/core/domain"
	"github.com/projectlink/projectlink-api/internal/core/ports"
)

type UserService struct {
	users ports.UserRepository
}

func NewUserService(users ports.UserRepository) *UserService {
	return &UserService{users: users}
}

// Profile returns the user with followers and following resolved, preserving
// list order and dropping ids that no longer resolve.
func (s *UserService) Profile(ctx context.Context, id string) (*ports.UserProfile, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	dir, err := loadDirectory(ctx, s.users, append(append([]string{}, u.Followers...), u.Following...)...)
	if err != nil {
		return nil, err
	}

	return &ports.UserProfile{
		User:      u,
		Followers: resolve(dir, u.Followers),
		Following: resolve(dir, u.Following),
	}, nil
}

func (s *UserService) UpdateMe(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.User, error) {
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, fmt.Errorf("update profile: %w", domain.ErrValidation)
		}
		update.Name = &name
	}
	return s.users.UpdateProfile(ctx, id, update)
}

func resolve(dir ports.Directory, ids []string) []domain.PublicUser {
	out := make([]domain.PublicUser, 0, len(ids))
	for _, id := range ids {
		if u, ok := dir.Lookup(id); ok {
			out = append(out, u)
		}
	}
	return out
}
