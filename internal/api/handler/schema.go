package handler

import (
	"time"

	"github.com/projectlink/projectlink-api/internal/core/domain"
)

// errorResponse documents the error envelope rendered by the central error handler.
type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type registerRequest struct {
	Name        string `json:"name"        validate:"required"`
	Email       string `json:"email"       validate:"required,email"`
	Password    string `json:"password"    validate:"required,min=6"`
	Institution string `json:"institution"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authUserResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Institution string `json:"institution"`
	Avatar      string `json:"avatar"`
	IsAdmin     bool   `json:"isAdmin"`
}

type authResponse struct {
	Token string           `json:"token"`
	User  authUserResponse `json:"user"`
}

// --- Projects ---

type createProjectRequest struct {
	Title           string   `json:"title"           validate:"required,max=200"`
	Description     string   `json:"description"     validate:"required"`
	LongDescription string   `json:"longDescription"`
	Tags            []string `json:"tags"`
	GithubURL       string   `json:"githubUrl"       validate:"omitempty,url"`
	DemoURL         string   `json:"demoUrl"         validate:"omitempty,url"`
	Images          []string `json:"images"`
	Progress        int      `json:"progress"        validate:"gte=0,lte=100"`
}

type updateProjectRequest struct {
	Title           *string  `json:"title"           validate:"omitempty,max=200"`
	Description     *string  `json:"description"`
	LongDescription *string  `json:"longDescription"`
	Tags            []string `json:"tags"`
	GithubURL       *string  `json:"githubUrl"`
	DemoURL         *string  `json:"demoUrl"`
	Images          []string `json:"images"`
	Progress        *int     `json:"progress"`
	Status          *string  `json:"status"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type commentResponse struct {
	ID        string            `json:"id"`
	User      domain.PublicUser `json:"user"`
	Text      string            `json:"text"`
	CreatedAt time.Time         `json:"createdAt"`
}

type projectResponse struct {
	ID              string              `json:"id"`
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	LongDescription string              `json:"longDescription"`
	Tags            []string            `json:"tags"`
	GithubURL       string              `json:"githubUrl"`
	DemoURL         string              `json:"demoUrl"`
	Images          []string            `json:"images"`
	Author          domain.PublicUser   `json:"author"`
	Progress        int                 `json:"progress"`
	Status          string              `json:"status"`
	Views           int64               `json:"views"`
	Collaborators   []domain.PublicUser `json:"collaborators"`
	Bookmarks       []string            `json:"bookmarks"`
	Likes           []string            `json:"likes"`
	Comments        []commentResponse   `json:"comments"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

type likesResponse struct {
	Likes int `json:"likes"`
}

type viewsResponse struct {
	Views int64 `json:"views"`
}

type bookmarkResponse struct {
	Bookmarked bool `json:"bookmarked"`
}

type collaboratorRequest struct {
	UserID string `json:"userId" validate:"required"`
	Action string `json:"action" validate:"required"`
}

type collaboratorsResponse struct {
	Collaborators []string `json:"collaborators"`
}

type addCommentRequest struct {
	Text string `json:"text"`
}

// --- Users ---

type followResponse struct {
	Message   string `json:"message"`
	Followers int    `json:"followers"`
	Following int    `json:"following"`
}

type updateMeRequest struct {
	Name        *string  `json:"name"        validate:"omitempty,max=100"`
	Institution *string  `json:"institution"`
	Bio         *string  `json:"bio"         validate:"omitempty,max=500"`
	Avatar      *string  `json:"avatar"`
	Skills      []string `json:"skills"`
}

type userProfileResponse struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Email       string              `json:"email"`
	Institution string              `json:"institution"`
	Avatar      string              `json:"avatar"`
	Bio         string              `json:"bio"`
	Skills      []string            `json:"skills"`
	Followers   []domain.PublicUser `json:"followers"`
	Following   []domain.PublicUser `json:"following"`
	IsAdmin     bool                `json:"isAdmin"`
	CreatedAt   time.Time           `json:"createdAt"`
}

// --- Notifications ---

type notificationsResponse struct {
	Notifications []domain.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unreadCount"`
}

type markReadRequest struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

type activityResponse struct {
	Activities []activityItem    `json:"activities"`
	Stats      domain.FeedStats `json:"stats"`
}

type activityItem struct {
	domain.Activity
	Message string `json:"message"`
}

// --- Admin ---

type roleRequest struct {
	IsAdmin *bool `json:"isAdmin" validate:"required"`
}

type banRequest struct {
	Banned *bool `json:"banned" validate:"required"`
}

type adminUserResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}
