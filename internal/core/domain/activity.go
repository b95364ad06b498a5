package domain

import (
	"fmt"
	"time"
)

// ActivityType identifies the kind of social event an Activity represents.
type ActivityType string

const (
	ActivityLike    ActivityType = "like"
	ActivityComment ActivityType = "comment"
	ActivityFollow  ActivityType = "follow"
)

// UnknownUserName is rendered when an activity's actor no longer resolves.
const UnknownUserName = "Unknown User"

// Activity is a normalized like, comment or follow event derived from
// project and user documents.
type Activity struct {
	ID           string       `json:"id"`
	Type         ActivityType `json:"type"`
	ActorID      string       `json:"actorId"`
	ActorName    string       `json:"actorName"`
	ActorAvatar  string       `json:"actorAvatar,omitempty"`
	ProjectID    string       `json:"projectId,omitempty"`
	ProjectTitle string       `json:"projectTitle,omitempty"`
	CommentText  string       `json:"commentText,omitempty"`
	Timestamp    time.Time    `json:"timestamp"`
}

// LikeActivityID, CommentActivityID and FollowActivityID build the stable ids
// that identify an activity across feed rebuilds.
func LikeActivityID(projectID, actorID string) string {
	return projectID + "-like-" + actorID
}

func CommentActivityID(projectID, commentID string) string {
	return projectID + "-comment-" + commentID
}

func FollowActivityID(actorID string) string {
	return "follow-" + actorID
}

// DedupKey is the identity used to collapse repeated activities.
func (a Activity) DedupKey() string {
	if a.Type == ActivityComment {
		return fmt.Sprintf("%s|%s|%s|%s", a.Type, a.ProjectID, a.ActorID, a.CommentText)
	}
	return fmt.Sprintf("%s|%s|%s", a.Type, a.ProjectID, a.ActorID)
}

// Message renders the human readable notification text.
func (a Activity) Message() string {
	name := a.ActorName
	if name == "" {
		name = UnknownUserName
	}
	switch a.Type {
	case ActivityLike:
		return fmt.Sprintf("%s liked your project \"%s\"", name, a.ProjectTitle)
	case ActivityComment:
		return fmt.Sprintf("%s commented on your project \"%s\": \"%s\"", name, a.ProjectTitle, a.CommentText)
	case ActivityFollow:
		return name + " started following you"
	}
	return ""
}

// Notification is an Activity addressed to a recipient, with its read flag.
type Notification struct {
	ID        string       `json:"id"`
	UserID    string       `json:"user"`
	Type      ActivityType `json:"type"`
	Message   string       `json:"message"`
	ProjectID string       `json:"projectId,omitempty"`
	ActorID   string       `json:"actorId"`
	Read      bool         `json:"read"`
	CreatedAt time.Time    `json:"createdAt"`
}

// FeedStats summarises a user's projects and audience.
type FeedStats struct {
	TotalProjects  int `json:"totalProjects"`
	TotalLikes     int `json:"totalLikes"`
	TotalComments  int `json:"totalComments"`
	TotalFollowers int `json:"totalFollowers"`
}

// PlatformStats is the admin dashboard summary. ActiveUsers counts distinct
// project authors.
type PlatformStats struct {
	TotalUsers    int `json:"totalUsers"`
	TotalProjects int `json:"totalProjects"`
	TotalLikes    int `json:"totalLikes"`
	TotalComments int `json:"totalComments"`
	ActiveUsers   int `json:"activeUsers"`
	BannedUsers   int `json:"bannedUsers"`
}
