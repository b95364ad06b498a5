package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/projectlink/projectlink-api/internal/core/domain"
	"github.com/projectlink/projectlink-api/internal/core/ports"
)

// loadDirectory resolves the distinct non-empty ids into public profiles.
func loadDirectory(ctx context.Context, users ports.UserRepository, ids ...string) (ports.Directory, error) {
	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	dir := make(ports.Directory, len(unique))
	if len(unique) == 0 {
		return dir, nil
	}

	found, err := users.FindByIDs(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	for _, u := range found {
		dir[u.ID] = u.Public()
	}
	return dir, nil
}

// projectUserIDs lists every user id a project references.
func projectUserIDs(p *domain.Project) []string {
	ids := make([]string, 0, 1+len(p.Likes)+len(p.Comments)+len(p.Collaborators))
	ids = append(ids, p.AuthorID)
	ids = append(ids, p.Likes...)
	ids = append(ids, p.Collaborators...)
	for _, c := range p.Comments {
		ids = append(ids, c.UserID)
	}
	return ids
}

// resultLabel turns a mutation error into a metrics label.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrAlreadyFollowing):
		return "already_following"
	case errors.Is(err, domain.ErrAlreadyLiked):
		return "already_liked"
	case errors.Is(err, domain.ErrSelfFollow):
		return "self"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrProjectNotFound),
		errors.Is(err, domain.ErrCommentNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrEmptyComment),
		errors.Is(err, domain.ErrInvalidAction),
		errors.Is(err, domain.ErrInvalidCollaborator):
		return "invalid"
	}
	return "error"
}
