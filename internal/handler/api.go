// Package handler exposes the case services over HTTP.
package handler

import (
	"context"
	"errors"
	"net/http"

	"casedesk/internal/blob"
	"casedesk/internal/casework"
	"casedesk/internal/dialog"
	"casedesk/internal/middleware"
	"casedesk/internal/model"
	"casedesk/internal/notify"
	"casedesk/internal/organization"
	"casedesk/pkg/config"
	"casedesk/pkg/jwtutil"
	"casedesk/pkg/logger"
	"casedesk/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// API holds the dependencies of every handler
type API struct {
	Config  *config.Config
	Service *casework.Service
	Hub     *notify.Hub
	Dialogs *dialog.Registry
	Orgs    *organization.Directory
	Blob    blob.Store
}

// Register mounts every route on e
func (a *API) Register(e *echo.Echo) {
	e.GET("/health", HealthCheck)
	e.GET("/metrics", echo.WrapHandler(prometheus.Handler()))
	e.POST("/auth/login", a.Login)
	e.POST("/auth/switch-tenant", a.SwitchTenant, middleware.AuthMiddleware, middleware.RequireRole(model.RoleSuperAdmin))

	api := e.Group("/api", middleware.AuthMiddleware)
	api.GET("/me", a.Me)
	api.GET("/notifications", a.ListNotifications)
	api.POST("/dialogs/:id/confirm", a.ConfirmDialog)
	api.POST("/dialogs/:id/cancel", a.CancelDialog)
	api.GET("/dialogs/:id", a.GetDialog)

	managers := middleware.RequireRole(model.RoleAdmin, model.RoleSuperAdmin)
	api.GET("/reports/dashboard", a.Dashboard)
	api.POST("/reports/export", a.Export, managers)

	s := a.Service
	clients := &crud[model.Client]{api: a, res: s.Clients, resource: "clients",
		create: func(ctx context.Context, scope casework.Scope, in model.Client, n notify.Notifier) (any, error) {
			intake, err := s.CreateClient(ctx, scope, in, n)
			if err != nil && intake.Client.ID == "" {
				return nil, err
			}
			if err != nil {
				logger.FromStdContext(ctx).Warn("Client registered without assessment", zap.Error(err))
			}
			return intake, nil
		},
		remove: func(ctx context.Context, scope casework.Scope, id string, n notify.Notifier) error {
			_, err := s.DeleteClient(ctx, scope, id, n)
			return err
		},
	}
	cg := api.Group("/clients")
	clients.mount(cg)
	cg.GET("/:id/timeline", a.Timeline)
	cg.POST("/:id/timeline", a.AddNote, middleware.RequireTenantContext)
	cg.GET("/:id/interactions", a.Interactions)
	cg.POST("/:id/interactions", a.LogInteraction, middleware.RequireTenantContext)
	cg.GET("/:id/journey-progress", a.Progress)
	cg.POST("/:id/journey-progress", a.RecordProgress, middleware.RequireTenantContext)
	cg.GET("/:id/assessment-results", a.Results)
	cg.POST("/:id/assessment-results", a.SubmitResult, middleware.RequireTenantContext)

	(&crud[model.Event]{api: a, res: s.Events, resource: "events"}).mount(api.Group("/events"))
	(&crud[model.Assessment]{api: a, res: s.Assessments, resource: "assessments"}).mount(api.Group("/assessments"))
	(&crud[model.Task]{api: a, res: s.Tasks, resource: "tasks"}).mount(api.Group("/tasks"))
	(&crud[model.AssessmentPack]{api: a, res: s.Packs, resource: "assessment-packs"}).mount(api.Group("/assessment-packs"), managers)
	(&crud[model.JourneyType]{api: a, res: s.JourneyTypes, resource: "journey-types"}).mount(api.Group("/journey-types"), managers)

	templates := api.Group("/assessment-templates")
	(&crud[model.AssessmentTemplate]{api: a, res: s.Templates, resource: "assessment-templates",
		create: func(ctx context.Context, scope casework.Scope, in model.AssessmentTemplate, n notify.Notifier) (any, error) {
			return s.CreateTemplate(ctx, scope, in, n)
		},
	}).mount(templates, managers)
	a.mountTemplateEditing(templates, middleware.RequireTenantContext, managers)

	users := api.Group("/users", managers)
	users.GET("", a.ListUsers)
	users.GET("/:id", a.GetUser)
	users.POST("", a.CreateUser)
	users.PUT("/:id", a.UpdateUser)
	users.DELETE("/:id", a.DeleteUser)

	orgs := api.Group("/organizations", middleware.RequireRole(model.RoleSuperAdmin))
	orgs.GET("", a.ListOrganizations)
	orgs.GET("/:id", a.GetOrganization)
	orgs.POST("", a.CreateOrganization)
	orgs.PUT("/:id", a.UpdateOrganization)
	orgs.POST("/:id/archive", a.ArchiveOrganization)
	orgs.POST("/:id/restore", a.RestoreOrganization)
}

// HealthCheck reports that the service is up
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// session is the identity carried by the request token
type session struct {
	UserID   string
	Email    string
	Role     string
	TenantID string
}

func sessionOf(c echo.Context) session {
	s := session{}
	s.UserID, _ = c.Get("user_id").(string)
	s.Email, _ = c.Get("email").(string)
	s.Role, _ = c.Get("role").(string)
	s.TenantID, _ = c.Get("tenant_id").(string)
	return s
}

// scope lets super admins without a selected tenant read across tenants
func (s session) scope() casework.Scope {
	if s.Role != model.RoleSuperAdmin {
		return casework.TenantScope(s.TenantID)
	}
	if s.TenantID == "" {
		return casework.Scope{All: true}
	}
	return casework.Scope{TenantID: s.TenantID, Super: true}
}

// meteredNotifier counts notifications before handing them to the session sink
type meteredNotifier struct {
	sink *notify.Sink
}

func (m meteredNotifier) Notify(n notify.Notification) notify.Notification {
	n = m.sink.Notify(n)
	prometheus.RecordNotification(string(n.Type))
	return n
}

func (a *API) notifier(c echo.Context) notify.Notifier {
	return meteredNotifier{sink: a.Hub.For(sessionOf(c).UserID)}
}

// statusOf maps service errors to HTTP status codes
func statusOf(err error) int {
	switch {
	case errors.Is(err, casework.ErrNotFound),
		errors.Is(err, organization.ErrNotFound),
		errors.Is(err, dialog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, casework.ErrValidation),
		errors.Is(err, organization.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, casework.ErrDuplicate),
		errors.Is(err, organization.ErrDuplicate),
		errors.Is(err, dialog.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, casework.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, casework.ErrRefused):
		return http.StatusUnprocessableEntity
	case errors.Is(err, casework.ErrInvalidCredentials):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// fail writes err as a JSON error response. Server errors are logged.
func fail(c echo.Context, msg string, err error) error {
	status := statusOf(err)
	log := logger.FromContext(c)
	if status >= http.StatusInternalServerError {
		log.Error(msg, zap.Error(err))
		return c.JSON(status, echo.Map{"error": msg})
	}
	log.Warn(msg, zap.Int("status", status), zap.Error(err))
	return c.JSON(status, echo.Map{"error": err.Error()})
}

func claimsOf(c echo.Context) *jwtutil.TenantClaims {
	claims, _ := c.Get("claims").(*jwtutil.TenantClaims)
	return claims
}
