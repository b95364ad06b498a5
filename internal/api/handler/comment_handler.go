package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/projectlink/projectlink-api/internal/core/ports"
)

type CommentHandler struct {
	service ports.CommentService
}

func NewCommentHandler(service ports.CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

// List handles GET /api/projects/:id/comments.
//
// @Summary      List comments
// @Tags         comments
// @Produce      json
// @Param        id   path      string  true  "Project id"
// @Success      200  {array}   commentResponse
// @Failure      404  {object}  errorResponse
// @Router       /projects/{id}/comments [get]
func (h *CommentHandler) List(c echo.Context) error {
	views, err := h.service.List(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCommentViews(views))
}

// Add handles POST /api/projects/:id/comments. Markup is stripped from the
// text before it is stored.
//
// @Summary      Comment on a project
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Project id"
// @Param        body  body      addCommentRequest  true  "Comment"
// @Success      201   {object}  commentResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /projects/{id}/comments [post]
func (h *CommentHandler) Add(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req addCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	view, err := h.service.Add(c.Request().Context(), userID, c.Param("id"), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toCommentViews([]ports.CommentView{*view})[0])
}

// Delete handles DELETE /api/projects/:id/comments/:commentId.
//
// @Summary      Delete a comment
// @Description  Allowed for the comment author and the project author.
// @Tags         comments
// @Produce      json
// @Security     BearerAuth
// @Param        id         path      string  true  "Project id"
// @Param        commentId  path      string  true  "Comment id"
// @Success      200        {object}  messageResponse
// @Failure      403        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Router       /projects/{id}/comments/{commentId} [delete]
func (h *CommentHandler) Delete(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), userID, c.Param("id"), c.Param("commentId")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Comment deleted successfully"})
}
