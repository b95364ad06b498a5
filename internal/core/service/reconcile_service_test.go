package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/projectlink/projectlink-api/internal/core/domain"
	"github.com/projectlink/projectlink-api/internal/core/ports"
)

func TestReconciler_RepairEdge(t *testing.T) {
	users := newStubUserRepo()
	r := NewReconciler(users, zerolog.Nop())
	ctx := context.Background()

	bob := seedUser(users, "bob")
	alice := users.seed(&domain.User{Name: "alice", Following: []string{bob}})

	if err := r.RepairEdge(ctx, ports.FollowRepair{FollowerID: alice, FolloweeID: bob}); err != nil {
		t.Fatalf("repair add: %v", err)
	}
	if !users.get(bob).HasFollower(alice) {
		t.Fatalf("missing follower not added")
	}

	// alice stops following; the stale followers entry must go.
	if err := users.RemoveFollowing(ctx, alice, bob); err != nil {
		t.Fatalf("remove following: %v", err)
	}
	if err := r.RepairEdge(ctx, ports.FollowRepair{FollowerID: alice, FolloweeID: bob}); err != nil {
		t.Fatalf("repair remove: %v", err)
	}
	if users.get(bob).HasFollower(alice) {
		t.Fatalf("stale follower not removed")
	}

	// Nothing to do the second time.
	if err := r.RepairEdge(ctx, ports.FollowRepair{FollowerID: alice, FolloweeID: bob}); err != nil {
		t.Fatalf("repair noop: %v", err)
	}
}

func TestReconciler_ReconcileAll(t *testing.T) {
	users := newStubUserRepo()
	r := NewReconciler(users, zerolog.Nop())

	users.seed(&domain.User{ID: "a", Following: []string{"b", "c"}})
	users.seed(&domain.User{ID: "b", Followers: []string{"a", "c"}})
	users.seed(&domain.User{ID: "c", Following: []string{"ghost"}})

	res, err := r.ReconcileAll(context.Background())
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if res.UsersScanned != 3 || res.FollowersAdded != 1 || res.FollowersRemoved != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if b := users.get("b"); len(b.Followers) != 1 || b.Followers[0] != "a" {
		t.Fatalf("b followers: %v", b.Followers)
	}
	if c := users.get("c"); len(c.Followers) != 1 || c.Followers[0] != "a" {
		t.Fatalf("c followers: %v", c.Followers)
	}

	again, err := r.ReconcileAll(context.Background())
	if err != nil {
		t.Fatalf("second reconcile: %v", err)
	}
	if again.FollowersAdded+again.FollowersRemoved != 0 {
		t.Fatalf("expected converged graph, got %+v", again)
	}
}
