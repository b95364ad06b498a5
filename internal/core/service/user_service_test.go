package service

import (
	"context"
	"errors"
	"testing"

	"github.com/projectlink/projectlink-api/internal/core/domain"
)

func TestUserService_Profile(t *testing.T) {
	users := newStubUserRepo()
	svc := NewUserService(users)

	a, b := seedUser(users, "a"), seedUser(users, "b")
	me := users.seed(&domain.User{Name: "me", Followers: []string{a, "gone"}, Following: []string{b, a}})

	p, err := svc.Profile(context.Background(), me)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if len(p.Followers) != 1 || p.Followers[0].ID != a {
		t.Fatalf("followers: %+v", p.Followers)
	}
	if len(p.Following) != 2 || p.Following[0].ID != b || p.Following[1].ID != a {
		t.Fatalf("following order not preserved: %+v", p.Following)
	}
}

func TestUserService_UpdateMe(t *testing.T) {
	users := newStubUserRepo()
	svc := NewUserService(users)
	id := seedUser(users, "old")

	blank := "   "
	if _, err := svc.UpdateMe(context.Background(), id, domain.ProfileUpdate{Name: &blank}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	name, bio := " New ", "hello"
	u, err := svc.UpdateMe(context.Background(), id, domain.ProfileUpdate{Name: &name, Bio: &bio, Skills: []string{"go"}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if u.Name != "New" || u.Bio != "hello" || len(u.Skills) != 1 {
		t.Fatalf("unexpected user: %+v", u)
	}
}
