package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"casedesk/internal/casework"
	"casedesk/internal/dialog"
	"casedesk/internal/listview"
	"casedesk/internal/middleware"
	"casedesk/internal/model"
	"casedesk/internal/notify"
	"casedesk/pkg/logger"
	"casedesk/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// crud serves list, get, create, update and delete for one resource.
// create and remove override the plain resource operations when set.
type crud[T model.Entity[T]] struct {
	api      *API
	res      *casework.Resource[T]
	resource string
	create   func(ctx context.Context, scope casework.Scope, in T, n notify.Notifier) (any, error)
	remove   func(ctx context.Context, scope casework.Scope, id string, n notify.Notifier) error
}

// mount registers the routes. Reads are open to every session, writes need a
// selected tenant plus the given middleware.
func (h *crud[T]) mount(g *echo.Group, write ...echo.MiddlewareFunc) {
	write = append([]echo.MiddlewareFunc{middleware.RequireTenantContext}, write...)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.POST("", h.post, write...)
	g.PUT("/:id", h.put, write...)
	g.DELETE("/:id", h.delete, write...)
}

func (h *crud[T]) list(c echo.Context) error {
	log := logger.FromContext(c)
	sess := sessionOf(c)
	prometheus.RecordOperation(h.res.Key(), "list")
	defer prometheus.TrackStoreOperation("query")(time.Now())

	q := listview.ParseQuery(c.QueryParams(), casework.Categories(h.res.View))
	page, err := h.res.List(c.Request().Context(), sess.scope(), q)
	if err != nil {
		return fail(c, "Failed to list "+h.resource, err)
	}
	if q.Search == "" && len(q.Filters) == 0 {
		prometheus.UpdateRecordsPerCollection(h.res.Key(), sess.TenantID, page.Pagination.Total)
	}

	log.Info("Records listed",
		zap.String("collection", h.res.Key()),
		zap.Int("count", len(page.Items)),
		zap.Int("total", page.Pagination.Total))
	return c.JSON(http.StatusOK, page)
}

func (h *crud[T]) get(c echo.Context) error {
	prometheus.RecordOperation(h.res.Key(), "get")
	defer prometheus.TrackStoreOperation("query")(time.Now())

	rec, err := h.res.Get(c.Request().Context(), sessionOf(c).scope(), c.Param("id"))
	if err != nil {
		return fail(c, h.res.Label+" not found", err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *crud[T]) post(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation(h.res.Key(), "create")
	defer prometheus.TrackStoreOperation("insert")(time.Now())

	var in T
	if err := c.Bind(&in); err != nil {
		return badRequest(c, err)
	}

	sess := sessionOf(c)
	n := h.api.notifier(c)
	var out any
	var err error
	if h.create != nil {
		out, err = h.create(c.Request().Context(), sess.scope(), in, n)
	} else {
		out, err = h.res.Create(c.Request().Context(), sess.scope(), in, n)
	}
	if err != nil {
		return fail(c, "Failed to create "+strings.ToLower(h.res.Label), err)
	}
	log.Info("Record created", zap.String("collection", h.res.Key()))
	return c.JSON(http.StatusCreated, out)
}

func (h *crud[T]) put(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation(h.res.Key(), "update")
	defer prometheus.TrackStoreOperation("update")(time.Now())

	var in T
	if err := c.Bind(&in); err != nil {
		return badRequest(c, err)
	}
	id := c.Param("id")
	out, err := h.res.Update(c.Request().Context(), sessionOf(c).scope(), id, in, h.api.notifier(c))
	if err != nil {
		return fail(c, "Failed to update "+strings.ToLower(h.res.Label), err)
	}
	log.Info("Record updated", zap.String("collection", h.res.Key()), zap.String("id", id))
	return c.JSON(http.StatusOK, out)
}

// delete opens a confirmation dialog. The record is removed when the dialog is confirmed.
func (h *crud[T]) delete(c echo.Context) error {
	sess := sessionOf(c)
	scope := sess.scope()
	id := c.Param("id")
	rec, err := h.res.Get(c.Request().Context(), scope, id)
	if err != nil {
		return fail(c, h.res.Label+" not found", err)
	}

	n := h.api.notifier(c)
	log := logger.FromContext(c)
	action := func(ctx context.Context) error {
		prometheus.RecordOperation(h.res.Key(), "delete")
		defer prometheus.TrackStoreOperation("delete")(time.Now())
		var err error
		if h.remove != nil {
			err = h.remove(ctx, scope, id, n)
		} else {
			_, err = h.res.Delete(ctx, scope, id, n)
		}
		if err == nil {
			log.Info("Record deleted", zap.String("collection", h.res.Key()), zap.String("id", id))
		}
		return err
	}
	return h.api.openDialog(c, dialog.Dialog{
		Title:    "Delete " + strings.ToLower(h.res.Label),
		Message:  fmt.Sprintf("Are you sure you want to delete %s? This cannot be undone.", model.DisplayNameOf(rec, "this "+strings.ToLower(h.res.Label))),
		Resource: h.resource,
		RecordID: id,
	}, action)
}
