package handler

import (
	"context"
	"net/http"
	"time"

	"casedesk/internal/casework"
	"casedesk/internal/dialog"
	"casedesk/internal/listview"
	"casedesk/internal/recordstore"
	"casedesk/pkg/logger"
	"casedesk/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ListUsers lists the users of the caller's tenant, or of every tenant for super admins
func (a *API) ListUsers(c echo.Context) error {
	prometheus.RecordOperation(recordstore.KeyUsers, "list")
	defer prometheus.TrackStoreOperation("query")(time.Now())

	users := a.Service.Users
	q := listview.ParseQuery(c.QueryParams(), casework.Categories(users.View))
	page, err := users.List(c.Request().Context(), sessionOf(c).scope(), q)
	if err != nil {
		return fail(c, "Failed to list users", err)
	}
	page.Items = casework.PublicUsers(page.Items)
	return c.JSON(http.StatusOK, page)
}

func (a *API) GetUser(c echo.Context) error {
	prometheus.RecordOperation(recordstore.KeyUsers, "get")
	u, err := a.Service.Users.Get(c.Request().Context(), sessionOf(c).scope(), c.Param("id"))
	if err != nil {
		return fail(c, "User not found", err)
	}
	return c.JSON(http.StatusOK, u.Public())
}

// CreateUser creates a staff account. Mismatched passwords and used emails are rejected.
func (a *API) CreateUser(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation(recordstore.KeyUsers, "create")
	defer prometheus.TrackStoreOperation("insert")(time.Now())

	var in casework.UserInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, err)
	}
	u, err := a.Service.CreateUser(c.Request().Context(), sessionOf(c).scope(), in, a.notifier(c))
	if err != nil {
		return fail(c, "Failed to create user", err)
	}
	log.Info("User created", zap.String("id", u.ID), zap.String("role", u.Role), zap.String("tenant_id", u.TenantID))
	return c.JSON(http.StatusCreated, u)
}

func (a *API) UpdateUser(c echo.Context) error {
	prometheus.RecordOperation(recordstore.KeyUsers, "update")
	defer prometheus.TrackStoreOperation("update")(time.Now())

	var in casework.UserInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, err)
	}
	u, err := a.Service.UpdateUser(c.Request().Context(), sessionOf(c).scope(), c.Param("id"), in, a.notifier(c))
	if err != nil {
		return fail(c, "Failed to update user", err)
	}
	return c.JSON(http.StatusOK, u)
}

// DeleteUser opens a confirmation dialog. Users cannot delete themselves.
func (a *API) DeleteUser(c echo.Context) error {
	sess := sessionOf(c)
	id := c.Param("id")
	if id == sess.UserID {
		return c.JSON(http.StatusConflict, echo.Map{"error": "you cannot delete your own account"})
	}
	scope := sess.scope()
	u, err := a.Service.Users.Get(c.Request().Context(), scope, id)
	if err != nil {
		return fail(c, "User not found", err)
	}
	if !casework.CanManage(scope, u) {
		logger.FromContext(c).Warn("Super admin deletion refused", zap.String("user_id", sess.UserID), zap.String("target_id", id))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only super admins can delete super admin accounts"})
	}
	n := a.notifier(c)
	return a.openDialog(c, dialog.Dialog{
		Title:    "Delete user",
		Message:  "Are you sure you want to delete " + u.Name + "? This cannot be undone.",
		Resource: "users",
		RecordID: id,
	}, func(ctx context.Context) error {
		prometheus.RecordOperation(recordstore.KeyUsers, "delete")
		_, err := a.Service.DeleteUser(ctx, scope, id, n)
		return err
	})
}
