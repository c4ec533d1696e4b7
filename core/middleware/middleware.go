package middleware

import (
	"date-booker/core/cache"
	"date-booker/core/constants"
	"date-booker/core/controller"
	"date-booker/core/errors"
	"date-booker/core/logger"
	"date-booker/core/utils"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

type Middleware struct {
	jwtSecret string
	cache     cache.Cache
}

func NewMiddleware(jwtSecret string, cache cache.Cache) *Middleware {
	return &Middleware{jwtSecret: jwtSecret, cache: cache}
}

// AuthMiddleware accepts a participant token.
func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return m.requireScope(constants.ScopeTokenParticipant)
}

// AdminMiddleware accepts an instance admin token.
func (m *Middleware) AdminMiddleware() echo.MiddlewareFunc {
	return m.requireScope(constants.ScopeTokenAdmin)
}

func (m *Middleware) requireScope(scope string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return controller.NewErrorResponse(http.StatusUnauthorized, errors.ErrMissingAuthorizationHeader, "Missing authorization header")
			}

			token := utils.GetTokenFromHeader(header)
			if token == "" {
				return controller.NewErrorResponse(http.StatusUnauthorized, errors.ErrInvalidTokenFormat, "Invalid token format")
			}

			claims, err := utils.ValidateAndParseToken(m.jwtSecret, token)
			if err != nil {
				if stderrors.Is(err, utils.ErrTokenExpired) {
					return controller.NewErrorResponse(http.StatusUnauthorized, errors.ErrTokenExpired, "Token expired")
				}
				return controller.NewErrorResponse(http.StatusUnauthorized, errors.ErrUnauthorized, "Invalid token")
			}

			if claims.Scope != scope {
				return controller.NewErrorResponse(http.StatusForbidden, errors.ErrForbidden, "Token scope not allowed")
			}

			if m.cache != nil {
				blacklisted, err := m.cache.IsTokenBlacklisted(c.Request().Context(), claims.ID)
				if err != nil {
					logger.Error("Middleware:Auth:IsTokenBlacklisted:Error", "error", err)
					return controller.NewErrorResponse(http.StatusInternalServerError, errors.ErrInternalServer, "Failed to verify token")
				}
				if blacklisted {
					return controller.NewErrorResponse(http.StatusUnauthorized, errors.ErrUnauthorized, "Token revoked")
				}
			}

			c.Set(constants.ContextTokenData, claims)
			return next(c)
		}
	}
}

// TokenClaims returns the claims stored by the auth middleware.
func TokenClaims(c echo.Context) (*utils.TokenClaims, bool) {
	claims, ok := c.Get(constants.ContextTokenData).(*utils.TokenClaims)
	return claims, ok && claims != nil
}

// RequestLogger writes one structured line per request.
func RequestLogger() echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			args := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", float64(v.Latency) / float64(time.Millisecond),
				"remote_ip", v.RemoteIP,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				args = append(args, "error", v.Error.Error())
				logger.Warn("HTTP:Request", args...)
				return nil
			}
			logger.Info("HTTP:Request", args...)
			return nil
		},
	})
}
