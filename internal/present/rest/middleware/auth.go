package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/dropanchorapp/anchorpds/internal/domain"
	"github.com/dropanchorapp/anchorpds/internal/service"
)

var tracer = otel.Tracer("auth")

type AuthMiddleware struct {
	identity *service.IdentityService
}

func NewAuthMiddleware(identity *service.IdentityService) *AuthMiddleware {
	return &AuthMiddleware{
		identity: identity,
	}
}

// IdentifyRequester resolves the bearer token, when one is present, and
// stores the requester in the request context. It never rejects on its own;
// handlers that need authentication check the context.
func (s *AuthMiddleware) IdentifyRequester(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Auth.Middleware.IdentifyRequester")
		defer span.End()

		authHeader := c.Request().Header.Get("authorization")

		if authHeader != "" {
			split := strings.Split(authHeader, " ")
			if len(split) != 2 {
				span.RecordError(fmt.Errorf("invalid authentication header"))
				goto skipCheckAuthorization
			}

			authType, token := split[0], split[1]
			if authType != "Bearer" {
				span.RecordError(fmt.Errorf("only Bearer is acceptable"))
				goto skipCheckAuthorization
			}

			identity, err := s.identity.Resolve(ctx, token)
			if err != nil {
				span.RecordError(errors.Wrap(err, "AuthMiddleware.IdentifyRequester: token resolution failed"))
				goto skipCheckAuthorization
			}

			ctx = context.WithValue(ctx, domain.RequesterDidCtxKey, identity.DID)
			if identity.Handle != nil {
				ctx = context.WithValue(ctx, domain.RequesterHandleCtxKey, *identity.Handle)
			}
			span.SetAttributes(attribute.String("RequesterDid", identity.DID))
		}

	skipCheckAuthorization:
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}
