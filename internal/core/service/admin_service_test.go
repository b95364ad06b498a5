package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/projectlink/projectlink-api/internal/core/domain"
)

func TestAdminService_Stats(t *testing.T) {
	users, projects := newStubUserRepo(), newStubProjectRepo()
	svc := NewAdminService(users, projects, zerolog.Nop())

	a, b := seedUser(users, "a"), seedUser(users, "b")
	users.seed(&domain.User{Name: "c", Banned: true})
	projects.seed(&domain.Project{AuthorID: a, Likes: []string{b}, Comments: []domain.Comment{{ID: "1", UserID: b}}})
	projects.seed(&domain.Project{AuthorID: a, Likes: []string{b, a}})

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	want := domain.PlatformStats{TotalUsers: 3, TotalProjects: 2, TotalLikes: 3, TotalComments: 1, ActiveUsers: 1, BannedUsers: 1}
	if *stats != want {
		t.Fatalf("expected %+v, got %+v", want, *stats)
	}
}

func TestAdminService_DeleteUser_Cascades(t *testing.T) {
	users, projects := newStubUserRepo(), newStubProjectRepo()
	svc := NewAdminService(users, projects, zerolog.Nop())
	ctx := context.Background()

	doomed := seedUser(users, "doomed")
	other := users.seed(&domain.User{Name: "other", Followers: []string{doomed}, Following: []string{doomed}})
	own := projects.seed(&domain.Project{AuthorID: doomed})
	theirs := projects.seed(&domain.Project{
		AuthorID:      other,
		Likes:         []string{doomed, other},
		Bookmarks:     []string{doomed},
		Collaborators: []string{doomed},
		Comments:      []domain.Comment{{ID: "c1", UserID: doomed}, {ID: "c2", UserID: other}},
	})

	if err := svc.DeleteUser(ctx, doomed); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	if projects.get(own) != nil {
		t.Fatalf("authored project not deleted")
	}
	p := projects.get(theirs)
	if len(p.Likes) != 1 || len(p.Bookmarks) != 0 || len(p.Collaborators) != 0 || len(p.Comments) != 1 {
		t.Fatalf("references not stripped: %+v", p)
	}
	o := users.get(other)
	if len(o.Followers) != 0 || len(o.Following) != 0 {
		t.Fatalf("follow edges not stripped: %+v", o)
	}
	if _, err := users.FindByID(ctx, doomed); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("user still present")
	}
	if err := svc.DeleteUser(ctx, doomed); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAdminService_RoleAndBan(t *testing.T) {
	users := newStubUserRepo()
	svc := NewAdminService(users, newStubProjectRepo(), zerolog.Nop())
	id := seedUser(users, "x")

	u, err := svc.SetRole(context.Background(), id, true)
	if err != nil || !u.IsAdmin {
		t.Fatalf("set role: %+v %v", u, err)
	}
	u, err = svc.SetBanned(context.Background(), id, true)
	if err != nil || !u.Banned {
		t.Fatalf("ban: %+v %v", u, err)
	}
	if _, err := svc.SetBanned(context.Background(), "ghost", true); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
