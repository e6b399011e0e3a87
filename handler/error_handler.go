package handler

import (
	"errors"
	"net/http"

	"dishguru-api/common"
	"dishguru-api/service"
)

func ErrorHandlingMiddleware(next func(http.ResponseWriter, *http.Request) *common.AppError) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := next(w, r); err != nil {
			err.Send(w)
		}
	}
}

// serviceError maps a service failure to its HTTP form. fallback is the
// message used when err carries no client-facing text.
func serviceError(err error, fallback string) *common.AppError {
	msg := fallback
	var se *service.Error
	if errors.As(err, &se) {
		msg = se.Message
	}

	switch {
	case errors.Is(err, service.ErrUnauthorized):
		return common.NewAppError(http.StatusUnauthorized, msg, err)
	case errors.Is(err, service.ErrNotFound):
		return common.NewAppError(http.StatusNotFound, msg, err)
	case errors.Is(err, service.ErrConflict):
		return common.NewAppError(http.StatusConflict, msg, err)
	case errors.Is(err, service.ErrInvalidArgument):
		return common.NewAppError(http.StatusBadRequest, msg, err)
	default:
		return common.NewAppError(http.StatusInternalServerError, msg, err)
	}
}
