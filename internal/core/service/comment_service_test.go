package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/projectlink/projectlink-api/internal/core/domain"
)

func newCommentFixture() (*CommentService, *stubUserRepo, *stubProjectRepo) {
	users, projects := newStubUserRepo(), newStubProjectRepo()
	return NewCommentService(projects, users, zerolog.Nop()), users, projects
}

func TestCommentService_Add(t *testing.T) {
	svc, users, projects := newCommentFixture()
	owner, fan := seedUser(users, "owner"), seedUser(users, "fan")
	pid := projects.seed(&domain.Project{AuthorID: owner})

	view, err := svc.Add(context.Background(), fan, pid, "  <b>love</b> it<script>steal()</script> ")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if view.Comment.Text != "love it" {
		t.Fatalf("expected sanitized text, got %q", view.Comment.Text)
	}
	if view.User.Name != "fan" {
		t.Fatalf("expected commenter profile, got %+v", view.User)
	}
	if len(view.Comment.ID) != 24 {
		t.Fatalf("expected 24 char id, got %q", view.Comment.ID)
	}
	if got := projects.get(pid).Comments; len(got) != 1 || got[0].UserID != fan {
		t.Fatalf("comment not stored: %+v", got)
	}
}

func TestCommentService_Add_Empty(t *testing.T) {
	svc, users, projects := newCommentFixture()
	owner := seedUser(users, "owner")
	pid := projects.seed(&domain.Project{AuthorID: owner})

	for _, text := range []string{"", "   ", "<script>x()</script>"} {
		if _, err := svc.Add(context.Background(), owner, pid, text); !errors.Is(err, domain.ErrEmptyComment) {
			t.Fatalf("text %q: expected ErrEmptyComment, got %v", text, err)
		}
	}
	if len(projects.get(pid).Comments) != 0 {
		t.Fatalf("empty comment stored")
	}
}

func TestCommentService_Delete_Authorization(t *testing.T) {
	svc, users, projects := newCommentFixture()
	owner, commenter, stranger := seedUser(users, "owner"), seedUser(users, "commenter"), seedUser(users, "stranger")
	pid := projects.seed(&domain.Project{
		AuthorID: owner,
		Comments: []domain.Comment{
			{ID: "c1", UserID: commenter, Text: "first"},
			{ID: "c2", UserID: commenter, Text: "second"},
		},
	})
	ctx := context.Background()

	if err := svc.Delete(ctx, stranger, pid, "c1"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := svc.Delete(ctx, commenter, pid, "c1"); err != nil {
		t.Fatalf("commenter delete: %v", err)
	}
	if err := svc.Delete(ctx, owner, pid, "c2"); err != nil {
		t.Fatalf("project author delete: %v", err)
	}
	if err := svc.Delete(ctx, owner, pid, "c2"); !errors.Is(err, domain.ErrCommentNotFound) {
		t.Fatalf("expected ErrCommentNotFound, got %v", err)
	}
	if n := len(projects.get(pid).Comments); n != 0 {
		t.Fatalf("expected no comments left, got %d", n)
	}
}

func TestCommentService_List(t *testing.T) {
	svc, users, projects := newCommentFixture()
	owner, fan := seedUser(users, "owner"), seedUser(users, "fan")
	pid := projects.seed(&domain.Project{
		AuthorID: owner,
		Comments: []domain.Comment{
			{ID: "c1", UserID: fan, Text: "one"},
			{ID: "c2", UserID: "deleted", Text: "two"},
			{ID: "c3", UserID: owner, Text: "three"},
		},
	})

	got, err := svc.List(context.Background(), pid)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 comments, got %d", len(got))
	}
	for i, want := range []string{"one", "two", "three"} {
		if got[i].Comment.Text != want {
			t.Fatalf("comment %d: expected %q, got %q", i, want, got[i].Comment.Text)
		}
	}
	if got[1].User.Name != domain.UnknownUserName {
		t.Fatalf("expected unknown user, got %+v", got[1].User)
	}
	if got[2].User.Name != "owner" {
		t.Fatalf("expected owner profile, got %+v", got[2].User)
	}
}
