package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/projectlink/projectlink-api/internal/core/domain"
	"github.com/projectlink/projectlink-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu     sync.Mutex
	users  map[string]*domain.User
	nextID int

	// addFollowerErr, when set, fails every AddFollower call.
	addFollowerErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	c.Followers = append([]string{}, u.Followers...)
	c.Following = append([]string{}, u.Following...)
	c.Skills = append([]string{}, u.Skills...)
	c.FollowedAt = make(map[string]time.Time, len(u.FollowedAt))
	for k, v := range u.FollowedAt {
		c.FollowedAt[k] = v
	}
	return &c
}

// seed stores u as-is and returns its id.
func (r *stubUserRepo) seed(u *domain.User) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == "" {
		r.nextID++
		u.ID = "u" + strconv.Itoa(r.nextID)
	}
	r.users[u.ID] = cloneUser(u)
	return u.ID
}

func (r *stubUserRepo) get(id string) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneUser(r.users[id])
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	c := cloneUser(user)
	r.nextID++
	c.ID = "u" + strconv.Itoa(r.nextID)
	r.users[c.ID] = c
	return cloneUser(c), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByIDs(_ context.Context, ids []string) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubUserRepo) mutate(id string, fn func(u *domain.User)) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	fn(u)
	return cloneUser(u), nil
}

func (r *stubUserRepo) UpdateProfile(_ context.Context, id string, up domain.ProfileUpdate) (*domain.User, error) {
	return r.mutate(id, func(u *domain.User) {
		if up.Name != nil {
			u.Name = *up.Name
		}
		if up.Institution != nil {
			u.Institution = *up.Institution
		}
		if up.Bio != nil {
			u.Bio = *up.Bio
		}
		if up.Avatar != nil {
			u.Avatar = *up.Avatar
		}
		if up.Skills != nil {
			u.Skills = up.Skills
		}
	})
}

func (r *stubUserRepo) SetAdmin(_ context.Context, id string, v bool) (*domain.User, error) {
	return r.mutate(id, func(u *domain.User) { u.IsAdmin = v })
}

func (r *stubUserRepo) SetBanned(_ context.Context, id string, v bool) (*domain.User, error) {
	return r.mutate(id, func(u *domain.User) { u.Banned = v })
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) AddFollowing(_ context.Context, userID, targetID string) error {
	_, err := r.mutate(userID, func(u *domain.User) { u.Following = addToSet(u.Following, targetID) })
	return err
}

func (r *stubUserRepo) RemoveFollowing(_ context.Context, userID, targetID string) error {
	_, err := r.mutate(userID, func(u *domain.User) { u.Following = pull(u.Following, targetID) })
	return err
}

func (r *stubUserRepo) AddFollower(_ context.Context, userID, followerID string, at time.Time) error {
	if r.addFollowerErr != nil {
		return r.addFollowerErr
	}
	_, err := r.mutate(userID, func(u *domain.User) {
		u.Followers = addToSet(u.Followers, followerID)
		if u.FollowedAt == nil {
			u.FollowedAt = map[string]time.Time{}
		}
		u.FollowedAt[followerID] = at
	})
	return err
}

func (r *stubUserRepo) RemoveFollower(_ context.Context, userID, followerID string) error {
	_, err := r.mutate(userID, func(u *domain.User) {
		u.Followers = pull(u.Followers, followerID)
		delete(u.FollowedAt, followerID)
	})
	return err
}

func (r *stubUserRepo) DetachFromGraph(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		u.Followers = pull(u.Followers, id)
		u.Following = pull(u.Following, id)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Projects
// ---------------------------------------------------------------------------

type stubProjectRepo struct {
	mu       sync.Mutex
	projects map[string]*domain.Project
	nextID   int
}

func newStubProjectRepo() *stubProjectRepo {
	return &stubProjectRepo{projects: make(map[string]*domain.Project)}
}

func cloneProject(p *domain.Project) *domain.Project {
	if p == nil {
		return nil
	}
	c := *p
	c.Tags = append([]string{}, p.Tags...)
	c.Likes = append([]string{}, p.Likes...)
	c.Bookmarks = append([]string{}, p.Bookmarks...)
	c.Collaborators = append([]string{}, p.Collaborators...)
	c.Comments = append([]domain.Comment{}, p.Comments...)
	c.LikedAt = make(map[string]time.Time, len(p.LikedAt))
	for k, v := range p.LikedAt {
		c.LikedAt[k] = v
	}
	return &c
}

func (r *stubProjectRepo) seed(p *domain.Project) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == "" {
		r.nextID++
		p.ID = "p" + strconv.Itoa(r.nextID)
	}
	r.projects[p.ID] = cloneProject(p)
	return p.ID
}

func (r *stubProjectRepo) get(id string) *domain.Project {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneProject(r.projects[id])
}

func (r *stubProjectRepo) Create(_ context.Context, p *domain.Project) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := cloneProject(p)
	r.nextID++
	c.ID = "p" + strconv.Itoa(r.nextID)
	r.projects[c.ID] = c
	return cloneProject(c), nil
}

func (r *stubProjectRepo) FindByID(_ context.Context, id string) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	return cloneProject(p), nil
}

func (r *stubProjectRepo) List(_ context.Context, f ports.ProjectFilter) ([]*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Project
	for _, p := range r.projects {
		if f.AuthorID != "" && p.AuthorID != f.AuthorID {
			continue
		}
		out = append(out, cloneProject(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubProjectRepo) mutate(id string, fn func(p *domain.Project)) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	fn(p)
	return cloneProject(p), nil
}

func (r *stubProjectRepo) Update(_ context.Context, p *domain.Project) error {
	_, err := r.mutate(p.ID, func(stored *domain.Project) { *stored = *cloneProject(p) })
	return err
}

func (r *stubProjectRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.projects, id)
	return nil
}

func (r *stubProjectRepo) AddLike(_ context.Context, projectID, userID string, at time.Time) (int, error) {
	p, err := r.mutate(projectID, func(p *domain.Project) {
		p.Likes = addToSet(p.Likes, userID)
		if p.LikedAt == nil {
			p.LikedAt = map[string]time.Time{}
		}
		p.LikedAt[userID] = at
	})
	if err != nil {
		return 0, err
	}
	return len(p.Likes), nil
}

func (r *stubProjectRepo) RemoveLike(_ context.Context, projectID, userID string) (int, error) {
	p, err := r.mutate(projectID, func(p *domain.Project) {
		p.Likes = pull(p.Likes, userID)
		delete(p.LikedAt, userID)
	})
	if err != nil {
		return 0, err
	}
	return len(p.Likes), nil
}

func (r *stubProjectRepo) AddBookmark(_ context.Context, projectID, userID string) error {
	_, err := r.mutate(projectID, func(p *domain.Project) { p.Bookmarks = addToSet(p.Bookmarks, userID) })
	return err
}

func (r *stubProjectRepo) RemoveBookmark(_ context.Context, projectID, userID string) error {
	_, err := r.mutate(projectID, func(p *domain.Project) { p.Bookmarks = pull(p.Bookmarks, userID) })
	return err
}

func (r *stubProjectRepo) AddCollaborator(_ context.Context, projectID, userID string) ([]string, error) {
	p, err := r.mutate(projectID, func(p *domain.Project) { p.Collaborators = addToSet(p.Collaborators, userID) })
	if err != nil {
		return nil, err
	}
	return p.Collaborators, nil
}

func (r *stubProjectRepo) RemoveCollaborator(_ context.Context, projectID, userID string) ([]string, error) {
	p, err := r.mutate(projectID, func(p *domain.Project) { p.Collaborators = pull(p.Collaborators, userID) })
	if err != nil {
		return nil, err
	}
	return p.Collaborators, nil
}

func (r *stubProjectRepo) PushComment(_ context.Context, projectID string, c domain.Comment) error {
	_, err := r.mutate(projectID, func(p *domain.Project) { p.Comments = append(p.Comments, c) })
	return err
}

func (r *stubProjectRepo) PullComment(_ context.Context, projectID, commentID string) error {
	_, err := r.mutate(projectID, func(p *domain.Project) {
		kept := p.Comments[:0]
		for _, c := range p.Comments {
			if c.ID != commentID {
				kept = append(kept, c)
			}
		}
		p.Comments = kept
	})
	return err
}

func (r *stubProjectRepo) IncrementViews(_ context.Context, projectID string) (int64, error) {
	p, err := r.mutate(projectID, func(p *domain.Project) { p.Views++ })
	if err != nil {
		return 0, err
	}
	return p.Views, nil
}

func (r *stubProjectRepo) DeleteByAuthor(_ context.Context, authorID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, p := range r.projects {
		if p.AuthorID == authorID {
			delete(r.projects, id)
			n++
		}
	}
	return n, nil
}

func (r *stubProjectRepo) DetachUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.projects {
		p.Likes = pull(p.Likes, userID)
		p.Bookmarks = pull(p.Bookmarks, userID)
		p.Collaborators = pull(p.Collaborators, userID)
		kept := p.Comments[:0]
		for _, c := range p.Comments {
			if c.UserID != userID {
				kept = append(kept, c)
			}
		}
		p.Comments = kept
	}
	return nil
}

// ---------------------------------------------------------------------------
// Collaborators of the services
// ---------------------------------------------------------------------------

type stubTx struct {
	atomic bool
	calls  int
}

func (t *stubTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

func (t *stubTx) Atomic() bool { return t.atomic }

type stubRepairQueue struct {
	jobs []ports.FollowRepair
}

func (q *stubRepairQueue) Enqueue(job ports.FollowRepair) bool {
	q.jobs = append(q.jobs, job)
	return true
}

type stubViews struct {
	admit bool
	err   error
	calls int
}

func (v *stubViews) Admit(_ context.Context, _, _ string) (bool, error) {
	v.calls++
	return v.admit, v.err
}

type stubReadState struct {
	read map[string]map[string]struct{}
	err  error
}

func newStubReadState() *stubReadState {
	return &stubReadState{read: make(map[string]map[string]struct{})}
}

func (s *stubReadState) ReadIDs(_ context.Context, userID string) (map[string]struct{}, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make(map[string]struct{}, len(s.read[userID]))
	for id := range s.read[userID] {
		out[id] = struct{}{}
	}
	return out, nil
}

func (s *stubReadState) MarkRead(_ context.Context, userID string, ids ...string) error {
	if s.err != nil {
		return s.err
	}
	if s.read[userID] == nil {
		s.read[userID] = make(map[string]struct{})
	}
	for _, id := range ids {
		s.read[userID][id] = struct{}{}
	}
	return nil
}

var errStore = errors.New("store unavailable")

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func addToSet(ids []string, id string) []string {
	for _, v := range ids {
		if v == id {
			return ids
		}
	}
	return append(ids, id)
}

func pull(ids []string, id string) []string {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func seedUser(repo *stubUserRepo, name string) string {
	return repo.seed(&domain.User{Name: name, Email: name + "@uni.edu", Followers: []string{}, Following: []string{}})
}
