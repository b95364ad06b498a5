package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/projectlink/projectlink-api/internal/core/domain"
	"github.com/projectlink/projectlink-api/internal/core/ports"
)

func newProjectFixture(views *stubViews) (*ProjectService, *stubUserRepo, *stubProjectRepo) {
	users, projects := newStubUserRepo(), newStubProjectRepo()
	return NewProjectService(projects, users, views, zerolog.Nop()), users, projects
}

func intPtr(v int) *int { return &v }

func TestProjectService_Create(t *testing.T) {
	svc, users, _ := newProjectFixture(&stubViews{})
	author := seedUser(users, "author")

	detail, err := svc.Create(context.Background(), ports.CreateProjectInput{
		AuthorID:    author,
		Title:       "Solar car",
		Description: "A car",
		Tags:        []string{" Energy", "CARS", ""},
		Progress:    100,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	p := detail.Project
	if p.Status != domain.StatusCompleted {
		t.Fatalf("expected completed, got %s", p.Status)
	}
	if len(p.Tags) != 2 || p.Tags[0] != "energy" || p.Tags[1] != "cars" {
		t.Fatalf("unexpected tags: %v", p.Tags)
	}
	if u, ok := detail.Users.Lookup(author); !ok || u.Name != "author" {
		t.Fatalf("author not resolved: %+v", detail.Users)
	}
}

func TestProjectService_Create_Validation(t *testing.T) {
	svc, users, _ := newProjectFixture(&stubViews{})
	author := seedUser(users, "author")

	if _, err := svc.Create(context.Background(), ports.CreateProjectInput{AuthorID: author, Description: "x"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := svc.Create(context.Background(), ports.CreateProjectInput{AuthorID: author, Title: "t", Description: "d", Progress: 101}); !errors.Is(err, domain.ErrInvalidProgress) {
		t.Fatalf("expected ErrInvalidProgress, got %v", err)
	}
}

func TestProjectService_Update_StatusDerivation(t *testing.T) {
	svc, users, projects := newProjectFixture(&stubViews{})
	author := seedUser(users, "author")
	pid := projects.seed(&domain.Project{AuthorID: author, Title: "t", Status: domain.StatusActive})
	ctx := context.Background()

	tests := []struct {
		progress int
		want     domain.ProjectStatus
	}{
		{progress: 100, want: domain.StatusCompleted},
		{progress: 99, want: domain.StatusActive},
		{progress: 0, want: domain.StatusActive},
	}
	for _, tc := range tests {
		detail, err := svc.Update(ctx, author, pid, domain.ProjectUpdate{Progress: intPtr(tc.progress)})
		if err != nil {
			t.Fatalf("progress %d: %v", tc.progress, err)
		}
		if detail.Project.Status != tc.want {
			t.Fatalf("progress %d: expected %s, got %s", tc.progress, tc.want, detail.Project.Status)
		}
	}

	// on-hold is only reachable through an explicit status change.
	detail, err := svc.UpdateStatus(ctx, author, pid, domain.StatusOnHold)
	if err != nil || detail.Project.Status != domain.StatusOnHold {
		t.Fatalf("explicit status: %v %v", detail, err)
	}
	if _, err := svc.UpdateStatus(ctx, author, pid, "archived"); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestProjectService_Update_OnlyAuthor(t *testing.T) {
	svc, users, projects := newProjectFixture(&stubViews{})
	author, other := seedUser(users, "author"), seedUser(users, "other")
	pid := projects.seed(&domain.Project{AuthorID: author, Title: "t"})
	title := "hijacked"

	if _, err := svc.Update(context.Background(), other, pid, domain.ProjectUpdate{Title: &title}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := svc.Delete(context.Background(), other, pid); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden on delete, got %v", err)
	}
	if err := svc.Delete(context.Background(), author, pid); err != nil {
		t.Fatalf("author delete: %v", err)
	}
	if projects.get(pid) != nil {
		t.Fatalf("project not deleted")
	}
}

func TestProjectService_RecordView(t *testing.T) {
	views := &stubViews{admit: true}
	svc, users, projects := newProjectFixture(views)
	author := seedUser(users, "author")
	pid := projects.seed(&domain.Project{AuthorID: author, Views: 4})
	ctx := context.Background()

	n, err := svc.RecordView(ctx, "ip:1.2.3.4", pid)
	if err != nil || n != 5 {
		t.Fatalf("admitted view: n=%d err=%v", n, err)
	}

	views.admit = false
	n, err = svc.RecordView(ctx, "ip:1.2.3.4", pid)
	if err != nil || n != 5 {
		t.Fatalf("deduplicated view: n=%d err=%v", n, err)
	}

	views.err = errStore
	n, err = svc.RecordView(ctx, "ip:1.2.3.4", pid)
	if err != nil || n != 6 {
		t.Fatalf("store failure should count: n=%d err=%v", n, err)
	}

	if _, err := svc.RecordView(ctx, "ip:1.2.3.4", "missing"); !errors.Is(err, domain.ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
}
