package middleware

import (
	"strings"

	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/apperr"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/pkg/jwtutil"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ClaimsKey is where validated token claims are stored on the echo context.
const ClaimsKey = "user"

// JWTAuthMiddleware requires a valid bearer token on every route except the
// public ones, matched against the registered route path.
func JWTAuthMiddleware(jwtUtil *jwtutil.JWTUtil, public ...string) echo.MiddlewareFunc {
	skip := make(map[string]bool, len(public))
	for _, p := range public {
		skip[p] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skip[c.Path()] {
				return next(c)
			}
			log := logger.FromContext(c)

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				log.Warn("Missing authorization header")
				return apperr.Unauthorized("Missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				log.Warn("Invalid authorization header format")
				return apperr.Unauthorized("Invalid authorization header format")
			}

			claims, err := jwtUtil.ValidateToken(parts[1])
			if err != nil {
				log.Warn("Invalid or expired token", zap.Error(err))
				return apperr.Unauthorized("Invalid or expired token")
			}

			c.Set(ClaimsKey, claims)
			c.Set("logger", log.With(zap.Uint("employee_id", claims.EmployeeID)))
			return next(c)
		}
	}
}

// Claims returns the claims stored by JWTAuthMiddleware, if any.
func Claims(c echo.Context) (*jwtutil.EmployeeClaims, bool) {
	claims, ok := c.Get(ClaimsKey).(*jwtutil.EmployeeClaims)
	return claims, ok
}
