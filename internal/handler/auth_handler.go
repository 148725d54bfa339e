package handler

import (
	"errors"
	"net/http"

	"casedesk/internal/casework"
	"casedesk/internal/model"
	"casedesk/internal/notify"
	"casedesk/pkg/jwtutil"
	"casedesk/pkg/logger"
	"casedesk/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Login checks the credentials and issues a token carrying the user's tenant and role
func (a *API) Login(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	user, err := a.Service.Login(c.Request().Context(), req.Email, req.Password)
	if errors.Is(err, casework.ErrInvalidCredentials) {
		log.Warn("Invalid credentials", zap.String("email", req.Email))
		prometheus.RecordAuthError("invalid_credentials")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if err != nil {
		return fail(c, "Login failed", err)
	}

	claims := jwtutil.TenantClaims{
		Email:    user.Email,
		UserID:   user.ID,
		Name:     user.Name,
		TenantID: user.TenantID,
		Role:     user.Role,
	}
	if user.TenantID != "" {
		org, err := a.Orgs.Get(c.Request().Context(), user.TenantID, notify.Discard)
		if err == nil && !org.Active() {
			log.Warn("Login to archived organization", zap.String("email", user.Email), zap.String("tenant_id", user.TenantID))
			prometheus.RecordAuthError("tenant_archived")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "organization is archived"})
		}
		if err == nil {
			claims.TenantName = org.Name
		}
	}

	token, err := jwtutil.GenerateToken(claims)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}
	prometheus.AuthSuccessCounter.Inc()

	log.Info("User logged in",
		zap.String("email", user.Email),
		zap.String("role", user.Role),
		zap.String("tenant_id", claims.TenantID))
	return c.JSON(http.StatusOK, loginResponse(token, user, claims))
}

func loginResponse(token string, user model.User, claims jwtutil.TenantClaims) echo.Map {
	resp := echo.Map{"token": token, "user": user.Public()}
	if claims.TenantID != "" {
		resp["tenant"] = echo.Map{"id": claims.TenantID, "name": claims.TenantName, "role": claims.Role}
	}
	return resp
}

// SwitchTenant issues a super admin token for another organization. An empty
// tenant_id returns to the cross-tenant view.
func (a *API) SwitchTenant(c echo.Context) error {
	log := logger.FromContext(c)
	current := claimsOf(c)
	if current == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req struct {
		TenantID string `json:"tenant_id"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse tenant switch request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	claims := jwtutil.TenantClaims{
		Email:  current.Email,
		UserID: current.UserID,
		Name:   current.Name,
		Role:   current.Role,
	}
	if req.TenantID != "" {
		org, err := a.Orgs.Get(c.Request().Context(), req.TenantID, a.notifier(c))
		if err != nil {
			log.Warn("Tenant not found", zap.String("tenant_id", req.TenantID))
			prometheus.RecordAuthError("tenant_not_found")
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
		}
		claims.TenantID = org.ID
		claims.TenantName = org.Name
	}

	token, err := jwtutil.GenerateToken(claims)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("User switched tenant", zap.String("user_id", claims.UserID), zap.String("tenant_id", claims.TenantID))
	resp := echo.Map{"token": token}
	if claims.TenantID != "" {
		resp["tenant"] = echo.Map{"id": claims.TenantID, "name": claims.TenantName, "role": claims.Role}
	}
	return c.JSON(http.StatusOK, resp)
}

// Me returns the identity of the current session
func (a *API) Me(c echo.Context) error {
	claims := claimsOf(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user_id":     claims.UserID,
		"email":       claims.Email,
		"name":        claims.Name,
		"role":        claims.Role,
		"tenant_id":   claims.TenantID,
		"tenant_name": claims.TenantName,
	})
}

// ListNotifications returns the caller's notifications, oldest first.
// ?visible=true returns the newest few and ?active=true the toasts still showing, newest first.
func (a *API) ListNotifications(c echo.Context) error {
	sink := a.Hub.For(sessionOf(c).UserID)
	var items []notify.Notification
	switch {
	case c.QueryParam("active") == "true":
		items = sink.Active()
	case c.QueryParam("visible") == "true":
		items = sink.Visible()
	default:
		items = sink.All()
	}
	return c.JSON(http.StatusOK, echo.Map{"notifications": items, "total": sink.Len()})
}
