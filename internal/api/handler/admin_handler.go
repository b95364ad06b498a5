package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/projectlink/projectlink-api/internal/core/ports"
)

// AdminHandler serves the /api/admin routes. Every route sits behind
// RequireAdmin.
type AdminHandler struct {
	service    ports.AdminService
	reconciler ports.GraphReconciler
}

func NewAdminHandler(service ports.AdminService, reconciler ports.GraphReconciler) *AdminHandler {
	return &AdminHandler{service: service, reconciler: reconciler}
}

// Stats handles GET /api/admin/stats.
//
// @Summary      Platform statistics
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.PlatformStats
// @Failure      403  {object}  errorResponse
// @Router       /admin/stats [get]
func (h *AdminHandler) Stats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// Users handles GET /api/admin/users.
//
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.User
// @Failure      403  {object}  errorResponse
// @Router       /admin/users [get]
func (h *AdminHandler) Users(c echo.Context) error {
	users, err := h.service.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Projects handles GET /api/admin/projects.
//
// @Summary      List projects
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   projectResponse
// @Failure      403  {object}  errorResponse
// @Router       /admin/projects [get]
func (h *AdminHandler) Projects(c echo.Context) error {
	list, err := h.service.ListProjects(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProjectList(list))
}

// SetRole handles PATCH /api/admin/users/:id/role.
//
// @Summary      Grant or revoke admin
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string       true  "User id"
// @Param        body  body      roleRequest  true  "isAdmin flag"
// @Success      200   {object}  adminUserResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /admin/users/{id}/role [patch]
func (h *AdminHandler) SetRole(c echo.Context) error {
	var req roleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.service.SetRole(c.Request().Context(), c.Param("id"), *req.IsAdmin)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, adminUserResponse{Message: "User role updated", User: user})
}

// SetBanned handles PATCH /api/admin/users/:id/ban.
//
// @Summary      Ban or unban a user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string      true  "User id"
// @Param        body  body      banRequest  true  "banned flag"
// @Success      200   {object}  adminUserResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /admin/users/{id}/ban [patch]
func (h *AdminHandler) SetBanned(c echo.Context) error {
	var req banRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.service.SetBanned(c.Request().Context(), c.Param("id"), *req.Banned)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, adminUserResponse{Message: "User ban status updated", User: user})
}

// DeleteUser handles DELETE /api/admin/users/:id. The user's projects are
// deleted and every reference to the user is stripped.
//
// @Summary      Delete a user and their data
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  errorResponse
// @Router       /admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	if err := h.service.DeleteUser(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "User and associated data deleted successfully"})
}

// Reconcile handles POST /api/admin/reconcile.
//
// @Summary      Repair the follow graph
// @Description  Rebuilds every followers list from the authoritative following lists.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.ReconcileResult
// @Failure      403  {object}  errorResponse
// @Router       /admin/reconcile [post]
func (h *AdminHandler) Reconcile(c echo.Context) error {
	res, err := h.reconciler.ReconcileAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}
