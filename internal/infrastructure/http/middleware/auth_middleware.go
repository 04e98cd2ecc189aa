package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-agent/errors"
	"github.com/johnquangdev/meeting-agent/pkg/jwt"
	"github.com/johnquangdev/meeting-agent/pkg/requestctx"
)

// CallerContextKey is the echo context key holding the *requestctx.Caller
const CallerContextKey = "caller"

// TokenVerifier validates a bearer token
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*jwt.Claims, error)
}

// EchoAuth returns an Echo middleware that validates the bearer token and
// stores the caller both in the echo context and the request context.
// Failures are returned as AppErrors for the HTTP error handler to render.
func EchoAuth(verifier TokenVerifier, logger *zap.Logger) echo.MiddlewareFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractBearer(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" {
				return apperrors.ErrUnauthenticated()
			}

			ctx := c.Request().Context()
			claims, err := verifier.Verify(ctx, token)
			if err != nil {
				logger.Warn("🔒 Token rejected",
					zap.String("trace_id", requestctx.GetTraceID(ctx)),
					zap.String("path", c.Path()),
					zap.Error(err),
				)
				return err
			}

			caller := &requestctx.Caller{
				Subject:  claims.Subject,
				AppID:    claims.ClientAppID(),
				TenantID: claims.TenantID,
				Scopes:   claims.Scopes(),
				Roles:    claims.Roles,
			}
			c.Set(CallerContextKey, caller)
			c.SetRequest(c.Request().WithContext(requestctx.WithCaller(ctx, caller)))

			return next(c)
		}
	}
}

// extractBearer expects "Bearer <token>"
func extractBearer(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
