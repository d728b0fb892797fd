package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/memodb-io/sitestore/internal/config"
	"github.com/memodb-io/sitestore/internal/modules/model"
	"github.com/memodb-io/sitestore/internal/modules/serializer"
)

// PrincipalKey is the gin context key holding the caller's model.Principal.
const PrincipalKey = "principal"

// GatewayAuth returns a middleware that accepts only requests relayed by the
// identity gateway, which presents the root bearer token. The opaque caller
// principal is taken from the configured header and may be empty for
// anonymous readers.
// It also sets the principal attribute on the current span for telemetry filtering.
func GatewayAuth(cfg *config.Config) gin.HandlerFunc {
	want := []byte(cfg.Root.ApiBearerToken)
	header := cfg.Root.PrincipalHeader

	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
			return
		}
		raw := []byte(strings.TrimPrefix(auth, "Bearer "))
		if len(want) == 0 || subtle.ConstantTimeCompare(raw, want) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
			return
		}

		who := model.Principal(strings.TrimSpace(c.GetHeader(header)))

		span := trace.SpanFromContext(c.Request.Context())
		if span.SpanContext().IsValid() && who != "" {
			span.SetAttributes(attribute.String("principal", string(who)))
		}

		c.Set(PrincipalKey, who)
		c.Next()
	}
}

// PrincipalFrom returns the principal set by GatewayAuth, or "" when absent.
func PrincipalFrom(c *gin.Context) model.Principal {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return ""
	}
	who, _ := v.(model.Principal)
	return who
}

// BodyLimit caps the request body at n bytes.
func BodyLimit(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > n {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, serializer.Err(http.StatusRequestEntityTooLarge, "request body too large", nil))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
