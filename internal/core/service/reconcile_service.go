package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/projectlink/projectlink-api/internal/core/domain"
	"github.com/projectlink/projectlink-api/internal/core/ports"
	"github.com/projectlink/projectlink-api/internal/pkg/metrics"
)

// Reconciler makes every followers list agree with the following lists it
// mirrors. following is never modified.
type Reconciler struct {
	users  ports.UserRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewReconciler(users ports.UserRepository, logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		users:  users,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// RepairEdge re-derives a single followers entry from the follower's
// following list.
func (r *Reconciler) RepairEdge(ctx context.Context, job ports.FollowRepair) (err error) {
	result := "noop"
	defer func() {
		if err != nil {
			result = "error"
		}
		metrics.GraphRepairsTotal.WithLabelValues("queue", result).Inc()
	}()

	follower, err := r.users.FindByID(ctx, job.FollowerID)
	if err != nil {
		return fmt.Errorf("repair edge: %w", err)
	}
	followee, err := r.users.FindByID(ctx, job.FolloweeID)
	if err != nil {
		return fmt.Errorf("repair edge: %w", err)
	}

	want, have := follower.IsFollowing(followee.ID), followee.HasFollower(follower.ID)
	switch {
	case want && !have:
		result = "added"
		return r.users.AddFollower(ctx, followee.ID, follower.ID, r.now())
	case !want && have:
		result = "removed"
		return r.users.RemoveFollower(ctx, followee.ID, follower.ID)
	}
	return nil
}

// ReconcileAll scans every user once and fixes each followers list.
func (r *Reconciler) ReconcileAll(ctx context.Context) (*ports.ReconcileResult, error) {
	users, err := r.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("reconcile: %w", err)
	}

	byID := make(map[string]*domain.User, len(users))
	expected := make(map[string]map[string]struct{}, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for _, u := range users {
		for _, followee := range u.Following {
			if _, ok := byID[followee]; !ok || followee == u.ID {
				continue
			}
			if expected[followee] == nil {
				expected[followee] = make(map[string]struct{})
			}
			expected[followee][u.ID] = struct{}{}
		}
	}

	res := &ports.ReconcileResult{UsersScanned: len(users)}
	now := r.now()
	for _, u := range users {
		want := expected[u.ID]
		for followerID := range want {
			if u.HasFollower(followerID) {
				continue
			}
			if err := r.users.AddFollower(ctx, u.ID, followerID, now); err != nil {
				metrics.GraphRepairsTotal.WithLabelValues("scan", "error").Inc()
				return res, fmt.Errorf("reconcile %s: %w", u.ID, err)
			}
			metrics.GraphRepairsTotal.WithLabelValues("scan", "added").Inc()
			res.FollowersAdded++
		}
		for _, followerID := range u.Followers {
			if _, ok := want[followerID]; ok {
				continue
			}
			if err := r.users.RemoveFollower(ctx, u.ID, followerID); err != nil {
				metrics.GraphRepairsTotal.WithLabelValues("scan", "error").Inc()
				return res, fmt.Errorf("reconcile %s: %w", u.ID, err)
			}
			metrics.GraphRepairsTotal.WithLabelValues("scan", "removed").Inc()
			res.FollowersRemoved++
		}
	}

	if res.FollowersAdded+res.FollowersRemoved > 0 {
		r.logger.Warn().
			Int("added", res.FollowersAdded).
			Int("removed", res.FollowersRemoved).
			Msg("follow graph reconciled")
	}
	return res, nil
}

// Run reconciles every interval until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.ReconcileAll(ctx); err != nil {
				r.logger.Error().Err(err).Msg("graph reconciliation failed")
			}
		}
	}
}
