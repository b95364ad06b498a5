package handler

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/projectlink/projectlink-api/internal/api/middleware"
	"github.com/projectlink/projectlink-api/internal/core/domain"
	"github.com/projectlink/projectlink-api/internal/core/ports"
)

// newContext builds an echo context for a JSON request. userID, when set,
// stands in for the Auth middleware.
func newContext(method, target, body, userID string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != "" {
		c.Set(middleware.ContextUserID, userID)
	}
	return c, rec
}

func withParams(c echo.Context, kv ...string) echo.Context {
	var names, values []string
	for i := 0; i+1 < len(kv); i += 2 {
		names = append(names, kv[i])
		values = append(values, kv[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c
}

func requireHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected echo.HTTPError %d, got %v", code, err)
	}
	if he.Code != code {
		t.Fatalf("expected status %d, got %d (%v)", code, he.Code, he.Message)
	}
}

func requireNoCall(t *testing.T) {
	t.Helper()
	t.Fatalf("service should not be called")
}

// --- service stubs ---

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error)
	loginFn    func(ctx context.Context, email, password string) (*ports.AuthResult, error)
	meFn       func(ctx context.Context, userID string) (*domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.meFn(ctx, userID)
}

type stubProjectService struct {
	createFn       func(ctx context.Context, in ports.CreateProjectInput) (*ports.ProjectDetail, error)
	getFn          func(ctx context.Context, id string) (*ports.ProjectDetail, error)
	listFn         func(ctx context.Context, filter ports.ProjectFilter) (*ports.ProjectList, error)
	updateFn       func(ctx context.Context, actorID, id string, update domain.ProjectUpdate) (*ports.ProjectDetail, error)
	updateStatusFn func(ctx context.Context, actorID, id string, status domain.ProjectStatus) (*ports.ProjectDetail, error)
	deleteFn       func(ctx context.Context, actorID, id string) error
	recordViewFn   func(ctx context.Context, viewerKey, id string) (int64, error)
}

func (s *stubProjectService) Create(ctx context.Context, in ports.CreateProjectInput) (*ports.ProjectDetail, error) {
	return s.createFn(ctx, in)
}

func (s *stubProjectService) Get(ctx context.Context, id string) (*ports.ProjectDetail, error) {
	return s.getFn(ctx, id)
}

func (s *stubProjectService) List(ctx context.Context, filter ports.ProjectFilter) (*ports.ProjectList, error) {
	return s.listFn(ctx, filter)
}

func (s *stubProjectService) Update(ctx context.Context, actorID, id string, update domain.ProjectUpdate) (*ports.ProjectDetail, error) {
	return s.updateFn(ctx, actorID, id, update)
}

func (s *stubProjectService) UpdateStatus(ctx context.Context, actorID, id string, status domain.ProjectStatus) (*ports.ProjectDetail, error) {
	return s.updateStatusFn(ctx, actorID, id, status)
}

func (s *stubProjectService) Delete(ctx context.Context, actorID, id string) error {
	return s.deleteFn(ctx, actorID, id)
}

func (s *stubProjectService) RecordView(ctx context.Context, viewerKey, id string) (int64, error) {
	return s.recordViewFn(ctx, viewerKey, id)
}

type stubSocialService struct {
	followFn       func(ctx context.Context, actorID, targetID string) (*ports.FollowResult, error)
	unfollowFn     func(ctx context.Context, actorID, targetID string) (*ports.FollowResult, error)
	likeFn         func(ctx context.Context, actorID, projectID string) (int, error)
	unlikeFn       func(ctx context.Context, actorID, projectID string) (int, error)
	bookmarkFn     func(ctx context.Context, actorID, projectID string) (bool, error)
	collaboratorFn func(ctx context.Context, actorID, projectID, targetID string, action ports.CollaboratorAction) ([]string, error)
}

func (s *stubSocialService) Follow(ctx context.Context, actorID, targetID string) (*ports.FollowResult, error) {
	return s.followFn(ctx, actorID, targetID)
}

func (s *stubSocialService) Unfollow(ctx context.Context, actorID, targetID string) (*ports.FollowResult, error) {
	return s.unfollowFn(ctx, actorID, targetID)
}

func (s *stubSocialService) Like(ctx context.Context, actorID, projectID string) (int, error) {
	return s.likeFn(ctx, actorID, projectID)
}

func (s *stubSocialService) Unlike(ctx context.Context, actorID, projectID string) (int, error) {
	return s.unlikeFn(ctx, actorID, projectID)
}

func (s *stubSocialService) ToggleBookmark(ctx context.Context, actorID, projectID string) (bool, error) {
	return s.bookmarkFn(ctx, actorID, projectID)
}

func (s *stubSocialService) SetCollaborator(ctx context.Context, actorID, projectID, targetID string, action ports.CollaboratorAction) ([]string, error) {
	return s.collaboratorFn(ctx, actorID, projectID, targetID, action)
}

type stubCommentService struct {
	addFn    func(ctx context.Context, actorID, projectID, text string) (*ports.CommentView, error)
	deleteFn func(ctx context.Context, actorID, projectID, commentID string) error
	listFn   func(ctx context.Context, projectID string) ([]ports.CommentView, error)
}

func (s *stubCommentService) Add(ctx context.Context, actorID, projectID, text string) (*ports.CommentView, error) {
	return s.addFn(ctx, actorID, projectID, text)
}

func (s *stubCommentService) Delete(ctx context.Context, actorID, projectID, commentID string) error {
	return s.deleteFn(ctx, actorID, projectID, commentID)
}

func (s *stubCommentService) List(ctx context.Context, projectID string) ([]ports.CommentView, error) {
	return s.listFn(ctx, projectID)
}

type stubFeedService struct {
	buildFeedFn   func(ctx context.Context, userID string) (*ports.Feed, error)
	listFn        func(ctx context.Context, userID string) (*ports.NotificationPage, error)
	markReadFn    func(ctx context.Context, userID string, ids []string) error
	markAllReadFn func(ctx context.Context, userID string) error
}

func (s *stubFeedService) BuildFeed(ctx context.Context, userID string) (*ports.Feed, error) {
	return s.buildFeedFn(ctx, userID)
}

func (s *stubFeedService) ListNotifications(ctx context.Context, userID string) (*ports.NotificationPage, error) {
	return s.listFn(ctx, userID)
}

func (s *stubFeedService) MarkRead(ctx context.Context, userID string, ids []string) error {
	return s.markReadFn(ctx, userID, ids)
}

func (s *stubFeedService) MarkAllRead(ctx context.Context, userID string) error {
	return s.markAllReadFn(ctx, userID)
}

type stubUserService struct {
	profileFn  func(ctx context.Context, id string) (*ports.UserProfile, error)
	updateMeFn func(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.User, error)
}

func (s *stubUserService) Profile(ctx context.Context, id string) (*ports.UserProfile, error) {
	return s.profileFn(ctx, id)
}

func (s *stubUserService) UpdateMe(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.User, error) {
	return s.updateMeFn(ctx, id, update)
}

type stubAdminService struct {
	statsFn        func(ctx context.Context) (*domain.PlatformStats, error)
	listUsersFn    func(ctx context.Context) ([]*domain.User, error)
	listProjectsFn func(ctx context.Context) (*ports.ProjectList, error)
	setRoleFn      func(ctx context.Context, id string, isAdmin bool) (*domain.User, error)
	setBannedFn    func(ctx context.Context, id string, banned bool) (*domain.User, error)
	deleteUserFn   func(ctx context.Context, id string) error
}

func (s *stubAdminService) Stats(ctx context.Context) (*domain.PlatformStats, error) {
	return s.statsFn(ctx)
}

func (s *stubAdminService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.listUsersFn(ctx)
}

func (s *stubAdminService) ListProjects(ctx context.Context) (*ports.ProjectList, error) {
	return s.listProjectsFn(ctx)
}

func (s *stubAdminService) SetRole(ctx context.Context, id string, isAdmin bool) (*domain.User, error) {
	return s.setRoleFn(ctx, id, isAdmin)
}

func (s *stubAdminService) SetBanned(ctx context.Context, id string, banned bool) (*domain.User, error) {
	return s.setBannedFn(ctx, id, banned)
}

func (s *stubAdminService) DeleteUser(ctx context.Context, id string) error {
	return s.deleteUserFn(ctx, id)
}

type stubReconciler struct {
	result *ports.ReconcileResult
}

func (s *stubReconciler) RepairEdge(context.Context, ports.FollowRepair) error { return nil }

func (s *stubReconciler) ReconcileAll(context.Context) (*ports.ReconcileResult, error) {
	return s.result, nil
}
