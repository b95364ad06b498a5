package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/projectlink/projectlink-api/internal/core/domain"
	"github.com/projectlink/projectlink-api/internal/core/ports"
)

type AdminService struct {
	users    ports.UserRepository
	projects ports.ProjectRepository
	logger   zerolog.Logger
}

func NewAdminService(users ports.UserRepository, projects ports.ProjectRepository, logger zerolog.Logger) *AdminService {
	return &AdminService{users: users, projects: projects, logger: logger}
}

func (s *AdminService) Stats(ctx context.Context) (*domain.PlatformStats, error) {
	var (
		users    []*domain.User
		projects []*domain.Project
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = s.users.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		projects, err = s.projects.List(gctx, ports.ProjectFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("admin stats: %w", err)
	}

	stats := &domain.PlatformStats{TotalUsers: len(users), TotalProjects: len(projects)}
	for _, u := range users {
		if u.Banned {
			stats.BannedUsers++
		}
	}
	authors := make(map[string]struct{})
	for _, p := range projects {
		stats.TotalLikes += len(p.Likes)
		stats.TotalComments += len(p.Comments)
		authors[p.AuthorID] = struct{}{}
	}
	stats.ActiveUsers = len(authors)
	return stats, nil
}

func (s *AdminService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}

func (s *AdminService) ListProjects(ctx context.Context) (*ports.ProjectList, error) {
	projects, err := s.projects.List(ctx, ports.ProjectFilter{})
	if err != nil {
		return nil, fmt.Errorf("admin list projects: %w", err)
	}
	var ids []string
	for _, p := range projects {
		ids = append(ids, projectUserIDs(p)...)
	}
	dir, err := loadDirectory(ctx, s.users, ids...)
	if err != nil {
		return nil, err
	}
	return &ports.ProjectList{Projects: projects, Users: dir}, nil
}

func (s *AdminService) SetRole(ctx context.Context, id string, isAdmin bool) (*domain.User, error) {
	u, err := s.users.SetAdmin(ctx, id, isAdmin)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", id).Bool("is_admin", isAdmin).Msg("user role updated")
	return u, nil
}

func (s *AdminService) SetBanned(ctx context.Context, id string, banned bool) (*domain.User, error) {
	u, err := s.users.SetBanned(ctx, id, banned)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", id).Bool("banned", banned).Msg("user ban status updated")
	return u, nil
}

// DeleteUser removes the user, their projects, and every reference other
// documents hold to them.
func (s *AdminService) DeleteUser(ctx context.Context, id string) error {
	if _, err := s.users.FindByID(ctx, id); err != nil {
		return err
	}

	deleted, err := s.projects.DeleteByAuthor(ctx, id)
	if err != nil {
		return fmt.Errorf("delete user projects: %w", err)
	}
	if err := s.projects.DetachUser(ctx, id); err != nil {
		return fmt.Errorf("detach user from projects: %w", err)
	}
	if err := s.users.DetachFromGraph(ctx, id); err != nil {
		return fmt.Errorf("detach user from graph: %w", err)
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.logger.Info().Str("user_id", id).Int64("projects_deleted", deleted).Msg("user deleted")
	return nil
}
