package ports

import (
	"context"

	"github.com/projectlink/projectlink-api/internal/core/domain"
)

// Directory maps user ids to their public projection. Ids that no longer
// resolve are absent.
type Directory map[string]domain.PublicUser

// Lookup returns the public user for id and whether it was found.
func (d Directory) Lookup(id string) (domain.PublicUser, bool) {
	u, ok := d[id]
	return u, ok
}

// RegisterInput carries the fields accepted on sign-up.
type RegisterInput struct {
	Name        string
	Email       string
	Password    string
	Institution string
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token string
	User  *domain.User
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
}

// CreateProjectInput carries the fields accepted when publishing a project.
type CreateProjectInput struct {
	AuthorID        string
	Title           string
	Description     string
	LongDescription string
	Tags            []string
	GithubURL       string
	DemoURL         string
	Images          []string
	Progress        int
}

// ProjectDetail is a project together with the users it references.
type ProjectDetail struct {
	Project *domain.Project
	Users   Directory
}

// ProjectList is a page of projects together with the users they reference.
type ProjectList struct {
	Projects []*domain.Project
	Users    Directory
}

type ProjectService interface {
	Create(ctx context.Context, in CreateProjectInput) (*ProjectDetail, error)
	Get(ctx context.Context, id string) (*ProjectDetail, error)
	List(ctx context.Context, filter ProjectFilter) (*ProjectList, error)
	Update(ctx context.Context, actorID, id string, update domain.ProjectUpdate) (*ProjectDetail, error)
	UpdateStatus(ctx context.Context, actorID, id string, status domain.ProjectStatus) (*ProjectDetail, error)
	Delete(ctx context.Context, actorID, id string) error
	RecordView(ctx context.Context, viewerKey, id string) (int64, error)
}

// FollowResult reports the actor's counts after a follow-graph mutation.
type FollowResult struct {
	Followers int
	Following int
}

// CollaboratorAction is either "add" or "remove".
type CollaboratorAction string

const (
	CollaboratorAdd    CollaboratorAction = "add"
	CollaboratorRemove CollaboratorAction = "remove"
)

type SocialService interface {
	Follow(ctx context.Context, actorID, targetID string) (*FollowResult, error)
	Unfollow(ctx context.Context, actorID, targetID string) (*FollowResult, error)
	Like(ctx context.Context, actorID, projectID string) (int, error)
	Unlike(ctx context.Context, actorID, projectID string) (int, error)
	ToggleBookmark(ctx context.Context, actorID, projectID string) (bool, error)
	SetCollaborator(ctx context.Context, actorID, projectID, targetID string, action CollaboratorAction) ([]string, error)
}

// CommentView is a comment with its author's public profile.
type CommentView struct {
	Comment domain.Comment
	User    domain.PublicUser
}

type CommentService interface {
	Add(ctx context.Context, actorID, projectID, text string) (*CommentView, error)
	Delete(ctx context.Context, actorID, projectID, commentID string) error
	List(ctx context.Context, projectID string) ([]CommentView, error)
}

// Feed is the merged activity stream for a user.
type Feed struct {
	Activities []domain.Activity
	Stats      domain.FeedStats
}

// NotificationPage is the window of most recent notifications.
type NotificationPage struct {
	Notifications []domain.Notification
	UnreadCount   int
}

type FeedService interface {
	BuildFeed(ctx context.Context, userID string) (*Feed, error)
	ListNotifications(ctx context.Context, userID string) (*NotificationPage, error)
	MarkRead(ctx context.Context, userID string, ids []string) error
	MarkAllRead(ctx context.Context, userID string) error
}

// UserProfile is a user with populated follow lists.
type UserProfile struct {
	User      *domain.User
	Followers []domain.PublicUser
	Following []domain.PublicUser
}

type UserService interface {
	Profile(ctx context.Context, id string) (*UserProfile, error)
	UpdateMe(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.User, error)
}

type AdminService interface {
	Stats(ctx context.Context) (*domain.PlatformStats, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	ListProjects(ctx context.Context) (*ProjectList, error)
	SetRole(ctx context.Context, id string, isAdmin bool) (*domain.User, error)
	SetBanned(ctx context.Context, id string, banned bool) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
}
