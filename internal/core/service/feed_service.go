package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/projectlink/projectlink-api/internal/core/domain"
	"github.com/projectlink/projectlink-api/internal/core/ports"
	"github.com/projectlink/projectlink-api/internal/pkg/metrics"
)

const (
	defaultNotificationWindow = 5
	maxNotificationWindow     = 100
)

// FeedService derives activities and notifications on read from the likes,
// comments and followers already stored on projects and users. Nothing is
// written when a social action happens; only read state is persisted.
type FeedService struct {
	users    ports.UserRepository
	projects ports.ProjectRepository
	reads    ports.ReadStateStore
	window   int
	logger   zerolog.Logger
}

func NewFeedService(
	users ports.UserRepository,
	projects ports.ProjectRepository,
	reads ports.ReadStateStore,
	window int,
	logger zerolog.Logger,
) *FeedService {
	if window <= 0 {
		window = defaultNotificationWindow
	}
	if window > maxNotificationWindow {
		window = maxNotificationWindow
	}
	return &FeedService{users: users, projects: projects, reads: reads, window: window, logger: logger}
}

// BuildFeed returns the user's activities newest first along with totals over
// the user's projects.
func (s *FeedService) BuildFeed(ctx context.Context, userID string) (*ports.Feed, error) {
	start := time.Now()
	defer func() { metrics.FeedBuildDuration.Observe(time.Since(start).Seconds()) }()

	var (
		user     *domain.User
		projects []*domain.Project
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = s.users.FindByID(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		projects, err = s.projects.List(gctx, ports.ProjectFilter{AuthorID: userID})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build feed: %w", err)
	}

	actorIDs := append([]string{}, user.Followers...)
	for _, p := range projects {
		actorIDs = append(actorIDs, p.Likes...)
		for _, c := range p.Comments {
			actorIDs = append(actorIDs, c.UserID)
		}
	}
	dir, err := loadDirectory(ctx, s.users, actorIDs...)
	if err != nil {
		return nil, fmt.Errorf("build feed: %w", err)
	}

	return &ports.Feed{
		Activities: deriveActivities(user, projects, dir),
		Stats:      feedStats(user, projects),
	}, nil
}

// deriveActivities builds one activity per like, comment and follower,
// skipping the user's own actions, then collapses duplicates keeping the first
// occurrence and orders the result newest first. Ties keep derivation order.
func deriveActivities(user *domain.User, projects []*domain.Project, dir ports.Directory) []domain.Activity {
	var raw []domain.Activity

	for _, p := range projects {
		for _, likerID := range p.Likes {
			if likerID == user.ID {
				continue
			}
			a := newActivity(domain.ActivityLike, likerID, dir)
			a.ID = domain.LikeActivityID(p.ID, likerID)
			a.ProjectID, a.ProjectTitle = p.ID, p.Title
			a.Timestamp = firstNonZero(p.LikedAt[likerID], p.UpdatedAt, p.CreatedAt)
			raw = append(raw, a)
		}
		for _, c := range p.Comments {
			if c.UserID == user.ID {
				continue
			}
			a := newActivity(domain.ActivityComment, c.UserID, dir)
			a.ID = domain.CommentActivityID(p.ID, c.ID)
			a.ProjectID, a.ProjectTitle = p.ID, p.Title
			a.CommentText = c.Text
			a.Timestamp = firstNonZero(c.CreatedAt, p.UpdatedAt, p.CreatedAt)
			raw = append(raw, a)
		}
	}
	for _, followerID := range user.Followers {
		if followerID == user.ID {
			continue
		}
		a := newActivity(domain.ActivityFollow, followerID, dir)
		a.ID = domain.FollowActivityID(followerID)
		a.Timestamp = firstNonZero(user.FollowedAt[followerID], user.UpdatedAt, user.CreatedAt)
		raw = append(raw, a)
	}

	seen := make(map[string]struct{}, len(raw))
	out := make([]domain.Activity, 0, len(raw))
	for _, a := range raw {
		key := a.DedupKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

func newActivity(t domain.ActivityType, actorID string, dir ports.Directory) domain.Activity {
	a := domain.Activity{Type: t, ActorID: actorID, ActorName: domain.UnknownUserName}
	if u, ok := dir.Lookup(actorID); ok {
		if u.Name != "" {
			a.ActorName = u.Name
		}
		a.ActorAvatar = u.Avatar
	}
	return a
}

func feedStats(user *domain.User, projects []*domain.Project) domain.FeedStats {
	stats := domain.FeedStats{
		TotalProjects:  len(projects),
		TotalFollowers: len(user.Followers),
	}
	for _, p := range projects {
		stats.TotalLikes += len(p.Likes)
		stats.TotalComments += len(p.Comments)
	}
	return stats
}

func firstNonZero(ts ...time.Time) time.Time {
	for _, t := range ts {
		if !t.IsZero() {
			return t
		}
	}
	return time.Time{}
}

// ListNotifications returns the most recent window of activities rendered as
// notifications. UnreadCount covers the whole feed, not just the window.
func (s *FeedService) ListNotifications(ctx context.Context, userID string) (*ports.NotificationPage, error) {
	feed, err := s.BuildFeed(ctx, userID)
	if err != nil {
		return nil, err
	}

	read, err := s.reads.ReadIDs(ctx, userID)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("read state unavailable, treating all as unread")
		read = map[string]struct{}{}
	}

	page := &ports.NotificationPage{Notifications: make([]domain.Notification, 0, s.window)}
	for i, a := range feed.Activities {
		_, isRead := read[a.ID]
		if !isRead {
			page.UnreadCount++
		}
		if i >= s.window {
			continue
		}
		page.Notifications = append(page.Notifications, domain.Notification{
			ID:        a.ID,
			UserID:    userID,
			Type:      a.Type,
			Message:   a.Message(),
			ProjectID: a.ProjectID,
			ActorID:   a.ActorID,
			Read:      isRead,
			CreatedAt: a.Timestamp,
		})
	}
	return page, nil
}

func (s *FeedService) MarkRead(ctx context.Context, userID string, ids []string) error {
	clean := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			clean = append(clean, id)
		}
	}
	if len(clean) == 0 {
		return fmt.Errorf("mark read: %w", domain.ErrValidation)
	}
	if err := s.reads.MarkRead(ctx, userID, clean...); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

// MarkAllRead marks every activity currently in the user's feed as read.
func (s *FeedService) MarkAllRead(ctx context.Context, userID string) error {
	feed, err := s.BuildFeed(ctx, userID)
	if err != nil {
		return err
	}
	if len(feed.Activities) == 0 {
		return nil
	}

	ids := make([]string, len(feed.Activities))
	for i, a := range feed.Activities {
		ids[i] = a.ID
	}
	if err := s.reads.MarkRead(ctx, userID, ids...); err != nil {
		return fmt.Errorf("mark all read: %w", err)
	}
	return nil
}
