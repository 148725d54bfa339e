package middleware

import (
	"net/http"
	"slices"
	"strings"

	"casedesk/pkg/jwtutil"
	"casedesk/pkg/logger"
	"casedesk/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthMiddleware verifies the JWT token and stores the session identity in the context
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)
		prometheus.AuthAttemptsCounter.Inc()

		tokenString := c.Request().Header.Get("Authorization")
		if tokenString == "" {
			log.Warn("Missing authorization token")
			prometheus.RecordAuthError("missing_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}

		// Remove "Bearer " prefix if present
		if len(tokenString) > 7 && strings.ToUpper(tokenString[0:7]) == "BEARER " {
			tokenString = tokenString[7:]
		}

		claims, err := jwtutil.ValidateToken(tokenString)
		if err != nil {
			log.Warn("Invalid token", zap.Error(err))
			prometheus.RecordAuthError("invalid_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
		}
		prometheus.AuthSuccessCounter.Inc()

		c.Set("claims", claims)
		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("role", claims.Role)
		log = log.With(
			zap.String("user_id", claims.UserID),
			zap.String("role", claims.Role),
		)

		if claims.TenantID != "" {
			c.Set("tenant_id", claims.TenantID)
			c.Set("tenant_name", claims.TenantName)
			log = log.With(
				zap.String("tenant_id", claims.TenantID),
				zap.String("tenant_name", claims.TenantName),
			)
		}
		c.Set("logger", log)

		return next(c)
	}
}

// RequireTenantContext ensures the request has tenant context in the JWT
func RequireTenantContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tenantID, ok := c.Get("tenant_id").(string)
		if !ok || tenantID == "" {
			logger.FromContext(c).Warn("Missing tenant context")
			prometheus.TenantContextMissingCounter.Inc()
			return c.JSON(http.StatusForbidden, echo.Map{
				"error":   "tenant context required",
				"message": "Please select an organization before accessing this resource",
			})
		}
		return next(c)
	}
}

// RequireRole allows the request through only when the session role is one of roles
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			if !slices.Contains(roles, role) {
				logger.FromContext(c).Warn("Role not permitted",
					zap.String("role", role),
					zap.Strings("allowed", roles))
				prometheus.RecordAuthError("forbidden_role")
				return c.JSON(http.StatusForbidden, echo.Map{"error": "insufficient permissions"})
			}
			return next(c)
		}
	}
}
