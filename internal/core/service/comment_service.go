package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/projectlink/projectlink-api/internal/core/domain"
	"github.com/projectlink/projectlink-api/internal/core/ports"
	"github.com/projectlink/projectlink-api/internal/pkg/metrics"
	"github.com/projectlink/projectlink-api/internal/pkg/sanitize"
)

type CommentService struct {
	projects ports.ProjectRepository
	users    ports.UserRepository
	logger   zerolog.Logger
	now      func() time.Time
	newID    func() string
}

func NewCommentService(projects ports.ProjectRepository, users ports.UserRepository, logger zerolog.Logger) *CommentService {
	return &CommentService{
		projects: projects,
		users:    users,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    newObjectIDHex,
	}
}

// Add appends a sanitized comment. Text that is empty once markup and
// surrounding whitespace are removed is rejected.
func (s *CommentService) Add(ctx context.Context, actorID, projectID, text string) (view *ports.CommentView, err error) {
	defer func() { metrics.SocialActionsTotal.WithLabelValues("comment", resultLabel(err)).Inc() }()

	clean := sanitize.PlainText(text)
	if clean == "" {
		return nil, domain.ErrEmptyComment
	}

	if _, err = s.projects.FindByID(ctx, projectID); err != nil {
		return nil, err
	}
	commenter, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	c := domain.Comment{
		ID:        s.newID(),
		UserID:    actorID,
		Text:      clean,
		CreatedAt: s.now(),
	}
	if err = s.projects.PushComment(ctx, projectID, c); err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}

	return &ports.CommentView{Comment: c, User: commenter.Public()}, nil
}

// Delete removes a comment. Only its author or the project's author may do so.
func (s *CommentService) Delete(ctx context.Context, actorID, projectID, commentID string) (err error) {
	defer func() { metrics.SocialActionsTotal.WithLabelValues("uncomment", resultLabel(err)).Inc() }()

	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return err
	}
	c := p.FindComment(commentID)
	if c == nil {
		return domain.ErrCommentNotFound
	}
	if !p.CanDeleteComment(c, actorID) {
		return domain.ErrForbidden
	}

	if err = s.projects.PullComment(ctx, projectID, commentID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	s.logger.Info().Str("project_id", projectID).Str("comment_id", commentID).Str("actor_id", actorID).Msg("comment deleted")
	return nil
}

// List returns comments in insertion order. Commenters that no longer exist
// are rendered with the unknown user name.
func (s *CommentService) List(ctx context.Context, projectID string) ([]ports.CommentView, error) {
	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(p.Comments))
	for i, c := range p.Comments {
		ids[i] = c.UserID
	}
	dir, err := loadDirectory(ctx, s.users, ids...)
	if err != nil {
		return nil, err
	}

	out := make([]ports.CommentView, len(p.Comments))
	for i, c := range p.Comments {
		u, ok := dir.Lookup(c.UserID)
		if !ok {
			u = domain.PublicUser{ID: c.UserID, Name: domain.UnknownUserName}
		}
		out[i] = ports.CommentView{Comment: c, User: u}
	}
	return out, nil
}

// newObjectIDHex returns a 24 character hex id compatible with the ids the
// store generates.
func newObjectIDHex() string {
	id := uuid.New()
	return fmt.Sprintf("%x", id[:12])
}
