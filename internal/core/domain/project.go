package domain

import (
	"strings"
	"time"
)

// ProjectStatus represents the lifecycle state of a project.
type ProjectStatus string

const (
	StatusActive    ProjectStatus = "active"
	StatusCompleted ProjectStatus = "completed"
	StatusOnHold    ProjectStatus = "on-hold"
)

// Valid reports whether s is one of the known statuses.
func (s ProjectStatus) Valid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusOnHold:
		return true
	}
	return false
}

// StatusForProgress derives the status a project takes when its progress changes.
func StatusForProgress(progress int) ProjectStatus {
	if progress >= 100 {
		return StatusCompleted
	}
	return StatusActive
}

// Comment is embedded in a Project.
type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Project is the core aggregate root.
type Project struct {
	ID              string               `json:"id"`
	Title           string               `json:"title"`
	Description     string               `json:"description"`
	LongDescription string               `json:"longDescription"`
	Tags            []string             `json:"tags"`
	GithubURL       string               `json:"githubUrl"`
	DemoURL         string               `json:"demoUrl"`
	Images          []string             `json:"images"`
	AuthorID        string               `json:"author"`
	Progress        int                  `json:"progress"`
	Status          ProjectStatus        `json:"status"`
	Views           int64                `json:"views"`
	Collaborators   []string             `json:"collaborators"`
	Bookmarks       []string             `json:"bookmarks"`
	Likes           []string             `json:"likes"`
	LikedAt         map[string]time.Time `json:"-"`
	Comments        []Comment            `json:"comments"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

func (p *Project) IsLikedBy(userID string) bool      { return contains(p.Likes, userID) }
func (p *Project) IsBookmarkedBy(userID string) bool { return contains(p.Bookmarks, userID) }

// FindComment returns the comment with the given id, or nil.
func (p *Project) FindComment(id string) *Comment {
	for i := range p.Comments {
		if p.Comments[i].ID == id {
			return &p.Comments[i]
		}
	}
	return nil
}

// CanDeleteComment reports whether userID may remove c from p: only the
// commenter or the project author can.
func (p *Project) CanDeleteComment(c *Comment, userID string) bool {
	return c.UserID == userID || p.AuthorID == userID
}

// NormalizeTags lowercases and trims tags, dropping empties.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ProjectUpdate holds the author-editable fields. Nil fields are left untouched.
type ProjectUpdate struct {
	Title           *string
	Description     *string
	LongDescription *string
	Tags            []string
	GithubURL       *string
	DemoURL         *string
	Images          []string
	Progress        *int
	Status          *ProjectStatus
}

// Apply mutates p with the non-nil fields of u. When progress changes the
// status is re-derived from it.
func (u ProjectUpdate) Apply(p *Project) {
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.LongDescription != nil {
		p.LongDescription = *u.LongDescription
	}
	if u.Tags != nil {
		p.Tags = NormalizeTags(u.Tags)
	}
	if u.GithubURL != nil {
		p.GithubURL = *u.GithubURL
	}
	if u.DemoURL != nil {
		p.DemoURL = *u.DemoURL
	}
	if u.Images != nil {
		p.Images = u.Images
	}
	if u.Progress != nil {
		p.Progress = *u.Progress
		p.Status = StatusForProgress(*u.Progress)
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
}
