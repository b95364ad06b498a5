package handler

import (
	"github.com/projectlink/projectlink-api/internal/core/domain"
	"github.com/projectlink/projectlink-api/internal/core/ports"
)

// publicOrStub resolves id through dir. Users that no longer exist keep their
// id so clients can still render a placeholder.
func publicOrStub(dir ports.Directory, id string) domain.PublicUser {
	if u, ok := dir.Lookup(id); ok {
		return u
	}
	return domain.PublicUser{ID: id, Name: domain.UnknownUserName}
}

func toCommentResponse(c domain.Comment, dir ports.Directory) commentResponse {
	return commentResponse{
		ID:        c.ID,
		User:      publicOrStub(dir, c.UserID),
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
	}
}

func toProjectResponse(p *domain.Project, dir ports.Directory) projectResponse {
	collaborators := make([]domain.PublicUser, 0, len(p.Collaborators))
	for _, id := range p.Collaborators {
		if u, ok := dir.Lookup(id); ok {
			collaborators = append(collaborators, u)
		}
	}

	comments := make([]commentResponse, 0, len(p.Comments))
	for _, c := range p.Comments {
		comments = append(comments, toCommentResponse(c, dir))
	}

	return projectResponse{
		ID:              p.ID,
		Title:           p.Title,
		Description:     p.Description,
		LongDescription: p.LongDescription,
		Tags:            orEmpty(p.Tags),
		GithubURL:       p.GithubURL,
		DemoURL:         p.DemoURL,
		Images:          orEmpty(p.Images),
		Author:          publicOrStub(dir, p.AuthorID),
		Progress:        p.Progress,
		Status:          string(p.Status),
		Views:           p.Views,
		Collaborators:   collaborators,
		Bookmarks:       orEmpty(p.Bookmarks),
		Likes:           orEmpty(p.Likes),
		Comments:        comments,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func toProjectList(list *ports.ProjectList) []projectResponse {
	out := make([]projectResponse, 0, len(list.Projects))
	for _, p := range list.Projects {
		out = append(out, toProjectResponse(p, list.Users))
	}
	return out
}

func toCommentViews(views []ports.CommentView) []commentResponse {
	out := make([]commentResponse, 0, len(views))
	for _, v := range views {
		out = append(out, commentResponse{
			ID:        v.Comment.ID,
			User:      v.User,
			Text:      v.Comment.Text,
			CreatedAt: v.Comment.CreatedAt,
		})
	}
	return out
}

func toAuthResponse(res *ports.AuthResult) authResponse {
	return authResponse{
		Token: res.Token,
		User: authUserResponse{
			ID:          res.User.ID,
			Name:        res.User.Name,
			Email:       res.User.Email,
			Institution: res.User.Institution,
			Avatar:      res.User.Avatar,
			IsAdmin:     res.User.IsAdmin,
		},
	}
}

func toUserProfile(p *ports.UserProfile) userProfileResponse {
	u := p.User
	return userProfileResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Institution: u.Institution,
		Avatar:      u.Avatar,
		Bio:         u.Bio,
		Skills:      orEmpty(u.Skills),
		Followers:   orEmptyUsers(p.Followers),
		Following:   orEmptyUsers(p.Following),
		IsAdmin:     u.IsAdmin,
		CreatedAt:   u.CreatedAt,
	}
}

func toActivityResponse(feed *ports.Feed) activityResponse {
	items := make([]activityItem, 0, len(feed.Activities))
	for _, a := range feed.Activities {
		items = append(items, activityItem{Activity: a, Message: a.Message()})
	}
	return activityResponse{Activities: items, Stats: feed.Stats}
}

func toProjectUpdate(req updateProjectRequest) domain.ProjectUpdate {
	update := domain.ProjectUpdate{
		Title:           req.Title,
		Description:     req.Description,
		LongDescription: req.LongDescription,
		Tags:            req.Tags,
		GithubURL:       req.GithubURL,
		DemoURL:         req.DemoURL,
		Images:          req.Images,
		Progress:        req.Progress,
	}
	if req.Status != nil {
		status := domain.ProjectStatus(*req.Status)
		update.Status = &status
	}
	return update
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func orEmptyUsers(s []domain.PublicUser) []domain.PublicUser {
	if s == nil {
		return []domain.PublicUser{}
	}
	return s
}
