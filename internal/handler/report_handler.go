package handler

import (
	"net/http"

	"casedesk/internal/model"
	"casedesk/pkg/logger"
	"casedesk/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Dashboard returns the dashboard for the caller's role
func (a *API) Dashboard(c echo.Context) error {
	sess := sessionOf(c)
	ctx := c.Request().Context()
	d, err := a.Service.Dashboard(ctx, sess.scope(), sess.Role, sess.UserID)
	if err != nil {
		return fail(c, "Failed to build dashboard", err)
	}
	if sess.Role == model.RoleSuperAdmin {
		active := 0
		orgs := a.Orgs.List(ctx, a.notifier(c))
		for _, o := range orgs {
			if o.Active() {
				active++
			}
		}
		d.Counts["organizations"] = len(orgs)
		d.Counts["activeOrganizations"] = active
	}
	return c.JSON(http.StatusOK, d)
}

// Export writes a snapshot of the caller's collections to blob storage
func (a *API) Export(c echo.Context) error {
	log := logger.FromContext(c)
	var req struct {
		Collections []string `json:"collections"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}

	res, err := a.Service.Export(c.Request().Context(), sessionOf(c).scope(), a.Blob, req.Collections, a.Config.Blob.URLExpiry)
	if err != nil {
		return fail(c, "Failed to export", err)
	}
	prometheus.ExportsCounter.WithLabelValues(res.Driver).Inc()
	log.Info("Export created", zap.String("key", res.Key), zap.Int64("bytes", res.Size))
	return c.JSON(http.StatusCreated, res)
}
