package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/projectlink/projectlink-api/internal/core/domain"
	"github.com/projectlink/projectlink-api/internal/core/ports"
	"github.com/projectlink/projectlink-api/internal/pkg/metrics"
)

type ProjectService struct {
	projects ports.ProjectRepository
	users    ports.UserRepository
	views    ports.ViewDeduper
	logger   zerolog.Logger
	now      func() time.Time
}

func NewProjectService(projects ports.ProjectRepository, users ports.UserRepository, views ports.ViewDeduper, logger zerolog.Logger) *ProjectService {
	return &ProjectService{
		projects: projects,
		users:    users,
		views:    views,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *ProjectService) Create(ctx context.Context, in ports.CreateProjectInput) (*ports.ProjectDetail, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || strings.TrimSpace(in.Description) == "" {
		return nil, fmt.Errorf("create project: %w", domain.ErrValidation)
	}
	if in.Progress < 0 || in.Progress > 100 {
		return nil, domain.ErrInvalidProgress
	}

	now := s.now()
	p := &domain.Project{
		Title:           title,
		Description:     in.Description,
		LongDescription: in.LongDescription,
		Tags:            domain.NormalizeTags(in.Tags),
		GithubURL:       in.GithubURL,
		DemoURL:         in.DemoURL,
		Images:          nonNil(in.Images),
		AuthorID:        in.AuthorID,
		Progress:        in.Progress,
		Status:          domain.StatusForProgress(in.Progress),
		Collaborators:   []string{},
		Bookmarks:       []string{},
		Likes:           []string{},
		LikedAt:         map[string]time.Time{},
		Comments:        []domain.Comment{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	created, err := s.projects.Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	metrics.ProjectsCreatedTotal.Inc()
	s.logger.Info().Str("project_id", created.ID).Str("author_id", created.AuthorID).Msg("project created")

	return s.detail(ctx, created)
}

func (s *ProjectService) Get(ctx context.Context, id string) (*ports.ProjectDetail, error) {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, p)
}

// List returns projects newest first, with every referenced user resolved in
// a single lookup.
func (s *ProjectService) List(ctx context.Context, filter ports.ProjectFilter) (*ports.ProjectList, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	filter.AuthorID = strings.TrimSpace(filter.AuthorID)
	filter.Tags = domain.NormalizeTags(filter.Tags)

	projects, err := s.projects.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
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

func (s *ProjectService) Update(ctx context.Context, actorID, id string, update domain.ProjectUpdate) (*ports.ProjectDetail, error) {
	if update.Progress != nil && (*update.Progress < 0 || *update.Progress > 100) {
		return nil, domain.ErrInvalidProgress
	}
	if update.Status != nil && !update.Status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	if update.Title != nil && strings.TrimSpace(*update.Title) == "" {
		return nil, fmt.Errorf("update project: %w", domain.ErrValidation)
	}

	p, err := s.ownedProject(ctx, actorID, id)
	if err != nil {
		return nil, err
	}

	update.Apply(p)
	p.UpdatedAt = s.now()
	if err := s.projects.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return s.detail(ctx, p)
}

func (s *ProjectService) UpdateStatus(ctx context.Context, actorID, id string, status domain.ProjectStatus) (*ports.ProjectDetail, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	return s.Update(ctx, actorID, id, domain.ProjectUpdate{Status: &status})
}

func (s *ProjectService) Delete(ctx context.Context, actorID, id string) error {
	if _, err := s.ownedProject(ctx, actorID, id); err != nil {
		return err
	}
	if err := s.projects.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	s.logger.Info().Str("project_id", id).Str("actor_id", actorID).Msg("project deleted")
	return nil
}

// RecordView counts a view unless viewerKey already viewed the project within
// the cooldown window. When the dedup store fails the view is counted anyway.
func (s *ProjectService) RecordView(ctx context.Context, viewerKey, id string) (int64, error) {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return 0, err
	}

	admitted, err := s.views.Admit(ctx, viewerKey, id)
	if err != nil {
		metrics.ViewDedupTotal.WithLabelValues("error").Inc()
		s.logger.Warn().Err(err).Str("project_id", id).Msg("view dedup failed, counting anyway")
	} else if admitted {
		metrics.ViewDedupTotal.WithLabelValues("miss").Inc()
	} else {
		metrics.ViewDedupTotal.WithLabelValues("hit").Inc()
		return p.Views, nil
	}

	views, err := s.projects.IncrementViews(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("record view: %w", err)
	}
	return views, nil
}

func (s *ProjectService) ownedProject(ctx context.Context, actorID, id string) (*domain.Project, error) {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.AuthorID != actorID {
		return nil, domain.ErrForbidden
	}
	return p, nil
}

func (s *ProjectService) detail(ctx context.Context, p *domain.Project) (*ports.ProjectDetail, error) {
	dir, err := loadDirectory(ctx, s.users, projectUserIDs(p)...)
	if err != nil {
		return nil, err
	}
	return &ports.ProjectDetail{Project: p, Users: dir}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
