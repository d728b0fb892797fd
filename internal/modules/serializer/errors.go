package serializer

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/memodb-io/sitestore/internal/pkg/apperr"
	"go.uber.org/zap"
)

var log = zap.NewNop()

// SetLogger sets the logger used to report server side failures.
func SetLogger(l *zap.Logger) {
	if l != nil {
		log = l
	}
}

// StatusOf maps an error kind onto its HTTP status.
func StatusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindUnauthorized:
		return http.StatusForbidden
	case apperr.KindInvalidInput:
		return http.StatusBadRequest
	case apperr.KindIncomplete:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// KindOfStatus is the inverse of StatusOf for clients of the API.
func KindOfStatus(status int) apperr.Kind {
	switch {
	case status == http.StatusNotFound:
		return apperr.KindNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperr.KindUnauthorized
	case status == http.StatusBadRequest || status == http.StatusRequestEntityTooLarge:
		return apperr.KindInvalidInput
	case status == http.StatusConflict:
		return apperr.KindIncomplete
	default:
		return apperr.KindTransport
	}
}

// FromError builds the response for a service error. The kind travels in
// the Error field so that clients can recover it without parsing Msg.
// In release mode server side failures hide their detail.
func FromError(err error) (int, Response) {
	kind := apperr.KindOf(err)
	status := StatusOf(kind)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		log.Sugar().Errorw("request failed", "kind", kind, "err", err)
		if gin.Mode() == gin.ReleaseMode {
			msg = http.StatusText(status)
		}
	}
	return status, Response{
		Code:  status,
		Msg:   msg,
		Error: string(kind),
	}
}
