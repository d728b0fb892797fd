package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/memodb-io/sitestore/internal/middleware"
	"github.com/memodb-io/sitestore/internal/modules/model"
	"github.com/memodb-io/sitestore/internal/modules/serializer"
	"github.com/memodb-io/sitestore/internal/pkg/apperr"
)

func principal(c *gin.Context) model.Principal {
	return middleware.PrincipalFrom(c)
}

// uuidParam parses a path parameter, answering 400 when it is malformed.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		writeErr(c, apperr.Wrap(apperr.KindInvalidInput, "parse "+name, err))
		return uuid.Nil, false
	}
	return id, true
}

// writeErr answers with the status of err's kind. Server side failures carry
// the trace id when tracing is on.
func writeErr(c *gin.Context, err error) {
	status, res := serializer.FromError(err)
	if traceID := c.Writer.Header().Get("X-Trace-Id"); traceID != "" && status >= http.StatusInternalServerError {
		c.JSON(status, serializer.TrackedErrorResponse{Response: res, TraceID: traceID})
		return
	}
	c.JSON(status, res)
}
