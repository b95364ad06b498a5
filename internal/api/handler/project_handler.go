package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/projectlink/projectlink-api/internal/core/domain"
	"github.com/projectlink/projectlink-api/internal/core/ports"
)

// ProjectHandler handles project CRUD and view counting.
type ProjectHandler struct {
	service ports.ProjectService
}

func NewProjectHandler(service ports.ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

// List handles GET /api/projects.
//
// @Summary      List projects
// @Description  Newest first. tags is a comma separated list; a project matches when it carries any of them.
// @Tags         projects
// @Produce      json
// @Param        search  query     string  false  "Case-insensitive match on title, description, long description or tags"
// @Param        tags    query     string  false  "Comma separated tags"
// @Param        author  query     string  false  "Author user id"
// @Success      200     {array}   projectResponse
// @Failure      400     {object}  errorResponse
// @Failure      500     {object}  errorResponse
// @Router       /projects [get]
func (h *ProjectHandler) List(c echo.Context) error {
	filter := ports.ProjectFilter{
		Search:   c.QueryParam("search"),
		AuthorID: c.QueryParam("author"),
	}
	if raw := c.QueryParam("tags"); raw != "" {
		filter.Tags = strings.Split(raw, ",")
	}

	list, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProjectList(list))
}

// Create handles POST /api/projects.
//
// @Summary      Publish a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createProjectRequest  true  "Project details"
// @Success      201   {object}  projectResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /projects [post]
func (h *ProjectHandler) Create(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req createProjectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	detail, err := h.service.Create(c.Request().Context(), ports.CreateProjectInput{
		AuthorID:        userID,
		Title:           req.Title,
		Description:     req.Description,
		LongDescription: req.LongDescription,
		Tags:            req.Tags,
		GithubURL:       req.GithubURL,
		DemoURL:         req.DemoURL,
		Images:          req.Images,
		Progress:        req.Progress,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toProjectResponse(detail.Project, detail.Users))
}

// Get handles GET /api/projects/:id.
//
// @Summary      Get a project
// @Tags         projects
// @Produce      json
// @Param        id   path      string  true  "Project id"
// @Success      200  {object}  projectResponse
// @Failure      404  {object}  errorResponse
// @Router       /projects/{id} [get]
func (h *ProjectHandler) Get(c echo.Context) error {
	detail, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProjectResponse(detail.Project, detail.Users))
}

// Update handles PUT /api/projects/:id. Only the author may edit.
//
// @Summary      Update a project
// @Description  Absent fields are left untouched. Setting progress re-derives the status unless status is also sent.
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Project id"
// @Param        body  body      updateProjectRequest  true  "Fields to change"
// @Success      200   {object}  projectResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /projects/{id} [put]
func (h *ProjectHandler) Update(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req updateProjectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	detail, err := h.service.Update(c.Request().Context(), userID, c.Param("id"), toProjectUpdate(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProjectResponse(detail.Project, detail.Users))
}

// UpdateStatus handles PATCH /api/projects/:id/status.
//
// @Summary      Set project status
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Project id"
// @Param        body  body      updateStatusRequest  true  "active, completed or on-hold"
// @Success      200   {object}  projectResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /projects/{id}/status [patch]
func (h *ProjectHandler) UpdateStatus(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req updateStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	detail, err := h.service.UpdateStatus(c.Request().Context(), userID, c.Param("id"), domain.ProjectStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProjectResponse(detail.Project, detail.Users))
}

// Delete handles DELETE /api/projects/:id.
//
// @Summary      Delete a project
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Project id"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /projects/{id} [delete]
func (h *ProjectHandler) Delete(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), userID, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Project deleted"})
}

// View handles POST /api/projects/:id/view. A bearer token is optional; it
// only changes how the viewer is identified.
//
// @Summary      Record a project view
// @Description  Counted at most once per viewer per cooldown window.
// @Tags         projects
// @Produce      json
// @Param        id   path      string  true  "Project id"
// @Success      200  {object}  viewsResponse
// @Failure      404  {object}  errorResponse
// @Router       /projects/{id}/view [post]
func (h *ProjectHandler) View(c echo.Context) error {
	views, err := h.service.RecordView(c.Request().Context(), viewerKey(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, viewsResponse{Views: views})
}
