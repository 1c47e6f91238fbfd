package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/eslsoft/vocengage/internal/entity"
)

// toStatus classifies a usecase error.
func toStatus(err error) *status.Status {
	switch {
	case err == nil:
		return status.New(codes.OK, "")
	case entity.IsValidation(err):
		return status.New(codes.InvalidArgument, err.Error())
	case errors.Is(err, entity.ErrSessionNotFound), errors.Is(err, entity.ErrItemProgressNotFound),
		errors.Is(err, entity.ErrUnknownAchievement):
		return status.New(codes.NotFound, err.Error())
	case errors.Is(err, entity.ErrSessionAlreadyCompleted):
		return status.New(codes.FailedPrecondition, err.Error())
	case errors.Is(err, entity.ErrDuplicateItemProgress), errors.Is(err, entity.ErrAchievementAlreadyUnlocked):
		return status.New(codes.AlreadyExists, err.Error())
	case errors.Is(err, entity.ErrStatsConflict):
		return status.New(codes.Aborted, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.New(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.New(codes.Canceled, err.Error())
	case errors.Is(err, entity.ErrPersistence):
		return status.New(codes.Unavailable, "storage unavailable")
	default:
		return status.New(codes.Internal, "internal error")
	}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	st := toStatus(err)
	code := runtime.HTTPStatusFromCode(st.Code())
	if code >= http.StatusInternalServerError {
		h.logger.WithError(err).WithField("path", r.URL.Path).Error("request failed")
	}
	writeJSON(w, code, errorBody{Code: st.Code().String(), Message: st.Message()})
}

func writeStatus(w http.ResponseWriter, c codes.Code, msg string) {
	writeJSON(w, runtime.HTTPStatusFromCode(c), errorBody{Code: c.String(), Message: msg})
}
