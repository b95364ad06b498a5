package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/projectlink/projectlink-api/internal/core/ports"
)

// SocialHandler exposes follow, like, bookmark and collaborator mutations.
type SocialHandler struct {
	service ports.SocialService
}

func NewSocialHandler(service ports.SocialService) *SocialHandler {
	return &SocialHandler{service: service}
}

// Follow handles POST /api/users/:id/follow.
//
// @Summary      Follow a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User to follow"
// @Success      200  {object}  followResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/{id}/follow [post]
func (h *SocialHandler) Follow(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	res, err := h.service.Follow(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, followResponse{
		Message:   "Successfully followed user",
		Followers: res.Followers,
		Following: res.Following,
	})
}

// Unfollow handles POST /api/users/:id/unfollow.
//
// @Summary      Unfollow a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User to unfollow"
// @Success      200  {object}  followResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/{id}/unfollow [post]
func (h *SocialHandler) Unfollow(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	res, err := h.service.Unfollow(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, followResponse{
		Message:   "Successfully unfollowed user",
		Followers: res.Followers,
		Following: res.Following,
	})
}

// Like handles POST /api/projects/:id/like.
//
// @Summary      Like a project
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Project id"
// @Success      200  {object}  likesResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /projects/{id}/like [post]
func (h *SocialHandler) Like(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	likes, err := h.service.Like(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, likesResponse{Likes: likes})
}

// Unlike handles POST /api/projects/:id/unlike.
//
// @Summary      Remove a like
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Project id"
// @Success      200  {object}  likesResponse
// @Failure      404  {object}  errorResponse
// @Router       /projects/{id}/unlike [post]
func (h *SocialHandler) Unlike(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	likes, err := h.service.Unlike(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, likesResponse{Likes: likes})
}

// Bookmark handles POST /api/projects/:id/bookmark.
//
// @Summary      Toggle a bookmark
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Project id"
// @Success      200  {object}  bookmarkResponse
// @Failure      404  {object}  errorResponse
// @Router       /projects/{id}/bookmark [post]
func (h *SocialHandler) Bookmark(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	bookmarked, err := h.service.ToggleBookmark(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bookmarkResponse{Bookmarked: bookmarked})
}

// Collaborators handles POST /api/projects/:id/collaborators.
//
// @Summary      Add or remove a collaborator
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Project id"
// @Param        body  body      collaboratorRequest  true  "action is add or remove"
// @Success      200   {object}  collaboratorsResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /projects/{id}/collaborators [post]
func (h *SocialHandler) Collaborators(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req collaboratorRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ids, err := h.service.SetCollaborator(c.Request().Context(), userID, c.Param("id"), req.UserID, ports.CollaboratorAction(req.Action))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, collaboratorsResponse{Collaborators: orEmpty(ids)})
}
