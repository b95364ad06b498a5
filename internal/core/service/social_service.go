package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/projectlink/projectlink-api/internal/core/domain"
	"github.com/projectlink/projectlink-api/internal/core/ports"
	"github.com/projectlink/projectlink-api/internal/pkg/metrics"
)

// errMirrorWrite marks a failure of the second, non-authoritative write of a
// follow pair.
var errMirrorWrite = errors.New("followers write failed")

// SocialService mutates the follow graph and project likes, bookmarks and
// collaborators.
//
// A follow edge is written to the actor's following list first and then
// mirrored into the target's followers list. following is authoritative: when
// the mirror write fails outside a transaction the request still succeeds and
// a repair job is queued.
type SocialService struct {
	users    ports.UserRepository
	projects ports.ProjectRepository
	tx       ports.TxRunner
	repairs  ports.RepairQueue
	logger   zerolog.Logger
	now      func() time.Time
}

func NewSocialService(
	users ports.UserRepository,
	projects ports.ProjectRepository,
	tx ports.TxRunner,
	repairs ports.RepairQueue,
	logger zerolog.Logger,
) *SocialService {
	return &SocialService{
		users:    users,
		projects: projects,
		tx:       tx,
		repairs:  repairs,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *SocialService) Follow(ctx context.Context, actorID, targetID string) (res *ports.FollowResult, err error) {
	defer func() { metrics.SocialActionsTotal.WithLabelValues("follow", resultLabel(err)).Inc() }()

	actor, target, err := s.followPair(ctx, actorID, targetID)
	if err != nil {
		return nil, err
	}
	if actor.IsFollowing(targetID) {
		return nil, domain.ErrAlreadyFollowing
	}

	at := s.now()
	err = s.pairedWrite(ctx, actorID, targetID,
		func(ctx context.Context) error { return s.users.AddFollowing(ctx, actorID, targetID) },
		func(ctx context.Context) error { return s.users.AddFollower(ctx, targetID, actorID, at) },
	)
	if err != nil {
		return nil, fmt.Errorf("follow: %w", err)
	}

	followers := len(target.Followers)
	if !target.HasFollower(actorID) {
		followers++
	}
	s.logger.Info().Str("actor_id", actorID).Str("target_id", targetID).Msg("user followed")
	return &ports.FollowResult{Followers: followers, Following: len(actor.Following) + 1}, nil
}

// Unfollow removes the edge from both sides. Unfollowing a user that is not
// followed succeeds without changes.
func (s *SocialService) Unfollow(ctx context.Context, actorID, targetID string) (res *ports.FollowResult, err error) {
	defer func() { metrics.SocialActionsTotal.WithLabelValues("unfollow", resultLabel(err)).Inc() }()

	actor, target, err := s.followPair(ctx, actorID, targetID)
	if err != nil {
		return nil, err
	}

	err = s.pairedWrite(ctx, actorID, targetID,
		func(ctx context.Context) error { return s.users.RemoveFollowing(ctx, actorID, targetID) },
		func(ctx context.Context) error { return s.users.RemoveFollower(ctx, targetID, actorID) },
	)
	if err != nil {
		return nil, fmt.Errorf("unfollow: %w", err)
	}

	following := len(actor.Following)
	if actor.IsFollowing(targetID) {
		following--
	}
	followers := len(target.Followers)
	if target.HasFollower(actorID) {
		followers--
	}
	return &ports.FollowResult{Followers: followers, Following: following}, nil
}

func (s *SocialService) followPair(ctx context.Context, actorID, targetID string) (*domain.User, *domain.User, error) {
	if actorID == targetID {
		return nil, nil, domain.ErrSelfFollow
	}
	target, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return nil, nil, err
	}
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	return actor, target, nil
}

// pairedWrite runs the authoritative write then its mirror. Outside a
// transaction a failed mirror is handed to the repair queue and swallowed.
func (s *SocialService) pairedWrite(ctx context.Context, actorID, targetID string, primary, mirror func(context.Context) error) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := primary(ctx); err != nil {
			return err
		}
		if err := mirror(ctx); err != nil {
			return fmt.Errorf("%w: %w", errMirrorWrite, err)
		}
		return nil
	})
	if err == nil || !errors.Is(err, errMirrorWrite) || s.tx.Atomic() {
		return err
	}

	job := ports.FollowRepair{ID: uuid.NewString(), FollowerID: actorID, FolloweeID: targetID}
	queued := s.repairs != nil && s.repairs.Enqueue(job)
	s.logger.Warn().Err(err).
		Str("follower_id", actorID).
		Str("followee_id", targetID).
		Str("repair_id", job.ID).
		Bool("queued", queued).
		Msg("follow graph out of sync, repair scheduled")
	return nil
}

func (s *SocialService) Like(ctx context.Context, actorID, projectID string) (likes int, err error) {
	defer func() { metrics.SocialActionsTotal.WithLabelValues("like", resultLabel(err)).Inc() }()

	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return 0, err
	}
	if p.IsLikedBy(actorID) {
		return 0, domain.ErrAlreadyLiked
	}
	return s.projects.AddLike(ctx, projectID, actorID, s.now())
}

// Unlike removes the actor's like, if any, and returns the resulting count.
func (s *SocialService) Unlike(ctx context.Context, actorID, projectID string) (likes int, err error) {
	defer func() { metrics.SocialActionsTotal.WithLabelValues("unlike", resultLabel(err)).Inc() }()

	if _, err = s.projects.FindByID(ctx, projectID); err != nil {
		return 0, err
	}
	return s.projects.RemoveLike(ctx, projectID, actorID)
}

// ToggleBookmark flips the actor's bookmark and reports whether the project is
// now bookmarked.
func (s *SocialService) ToggleBookmark(ctx context.Context, actorID, projectID string) (bookmarked bool, err error) {
	defer func() { metrics.SocialActionsTotal.WithLabelValues("bookmark", resultLabel(err)).Inc() }()

	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return false, err
	}
	if p.IsBookmarkedBy(actorID) {
		return false, s.projects.RemoveBookmark(ctx, projectID, actorID)
	}
	return true, s.projects.AddBookmark(ctx, projectID, actorID)
}

func (s *SocialService) SetCollaborator(ctx context.Context, actorID, projectID, targetID string, action ports.CollaboratorAction) (ids []string, err error) {
	defer func() { metrics.SocialActionsTotal.WithLabelValues("collaborator", resultLabel(err)).Inc() }()

	if action != ports.CollaboratorAdd && action != ports.CollaboratorRemove {
		return nil, domain.ErrInvalidAction
	}

	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.AuthorID != actorID {
		return nil, domain.ErrForbidden
	}

	if action == ports.CollaboratorRemove {
		return s.projects.RemoveCollaborator(ctx, projectID, targetID)
	}

	if targetID == p.AuthorID {
		return nil, domain.ErrInvalidCollaborator
	}
	if _, err = s.users.FindByID(ctx, targetID); err != nil {
		return nil, err
	}
	return s.projects.AddCollaborator(ctx, projectID, targetID)
}
