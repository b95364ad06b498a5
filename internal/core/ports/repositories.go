package ports

import (
	"context"
	"time"

	"github.com/projectlink/projectlink-api/internal/core/domain"
)

// ProjectFilter carries the optional query parameters for listing projects.
type ProjectFilter struct {
	Search   string   // case-insensitive match on title, description or longDescription
	Tags     []string // any-of match, lowercased by the service
	AuthorID string
}

// UserRepository defines persistence operations for users and the follow graph.
// Each follow-graph method touches a single document.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByIDs returns the users that exist among ids, in no particular order.
	FindByIDs(ctx context.Context, ids []string) ([]*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	UpdateProfile(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.User, error)
	SetAdmin(ctx context.Context, id string, isAdmin bool) (*domain.User, error)
	SetBanned(ctx context.Context, id string, banned bool) (*domain.User, error)
	Delete(ctx context.Context, id string) error

	AddFollowing(ctx context.Context, userID, targetID string) error
	RemoveFollowing(ctx context.Context, userID, targetID string) error
	AddFollower(ctx context.Context, userID, followerID string, at time.Time) error
	RemoveFollower(ctx context.Context, userID, followerID string) error
	// DetachFromGraph strips id from every other user's followers and following.
	DetachFromGraph(ctx context.Context, id string) error
}

// ProjectRepository defines persistence operations for projects and their
// embedded social state.
type ProjectRepository interface {
	Create(ctx context.Context, p *domain.Project) (*domain.Project, error)
	FindByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context, filter ProjectFilter) ([]*domain.Project, error)
	// Update persists the author-editable fields, progress and status.
	Update(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, id string) error

	AddLike(ctx context.Context, projectID, userID string, at time.Time) (int, error)
	RemoveLike(ctx context.Context, projectID, userID string) (int, error)
	AddBookmark(ctx context.Context, projectID, userID string) error
	RemoveBookmark(ctx context.Context, projectID, userID string) error
	AddCollaborator(ctx context.Context, projectID, userID string) ([]string, error)
	RemoveCollaborator(ctx context.Context, projectID, userID string) ([]string, error)
	PushComment(ctx context.Context, projectID string, c domain.Comment) error
	PullComment(ctx context.Context, projectID, commentID string) error
	IncrementViews(ctx context.Context, projectID string) (int64, error)

	DeleteByAuthor(ctx context.Context, authorID string) (int64, error)
	// DetachUser removes userID from likes, comments, bookmarks and
	// collaborators of every project.
	DetachUser(ctx context.Context, userID string) error
}

// TxRunner runs fn so that every repository call made with the supplied
// context commits or aborts together. Implementations without transaction
// support simply call fn and report Atomic() == false.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	Atomic() bool
}
