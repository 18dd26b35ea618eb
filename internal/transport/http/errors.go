package http

import (
	"errors"
	"log/slog"
	nethttp "net/http"

	"github.com/gin-gonic/gin"

	"interviewdesk/internal/availability"
	"interviewdesk/internal/idalloc"
	"interviewdesk/internal/service/booking"
	"interviewdesk/internal/store"
)

func errorBody(msg string) gin.H {
	return gin.H{"success": false, "error": msg}
}

// statusFor maps a service error to its HTTP status and the message safe to
// show the caller.
func statusFor(err error) (int, string) {
	var bookingErr *booking.ValidationError
	var slotsErr *availability.ValidationError
	switch {
	case errors.As(err, &bookingErr), errors.As(err, &slotsErr):
		return nethttp.StatusBadRequest, err.Error()
	case errors.Is(err, store.ErrNotFound):
		return nethttp.StatusNotFound, err.Error()
	case errors.Is(err, store.ErrConflict):
		return nethttp.StatusConflict, "already exists"
	case errors.Is(err, idalloc.ErrSequenceSourceUnavailable),
		errors.Is(err, booking.ErrRecordPersistFailed),
		errors.Is(err, booking.ErrUpstreamUnavailable),
		errors.Is(err, availability.ErrUpstreamUnavailable):
		return nethttp.StatusBadGateway, "upstream service unavailable"
	default:
		return nethttp.StatusInternalServerError, "internal error"
	}
}

func (s *Server) writeError(c *gin.Context, err error) {
	code, msg := statusFor(err)
	if code >= nethttp.StatusInternalServerError {
		s.log.Error("request failed", slog.Any("err", err), slog.String("path", c.FullPath()))
	}
	c.AbortWithStatusJSON(code, errorBody(msg))
}
