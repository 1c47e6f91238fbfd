// Package rest exposes the engagement engine over HTTP/JSON.
package rest

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"

	"github.com/eslsoft/vocengage/internal/entity"
	"github.com/eslsoft/vocengage/internal/repository"
	"github.com/eslsoft/vocengage/internal/usecase"
)

// Handler serves the learner-facing API and the admin recompute endpoints.
type Handler struct {
	progress     usecase.ItemProgressUsecase
	sessions     usecase.SessionUsecase
	engagement   usecase.EngagementUsecase
	achievements usecase.AchievementUsecase
	auth         *Authenticator
	logger       logrus.FieldLogger
}

// NewHandler wires the usecases into a Handler.
func NewHandler(
	progress usecase.ItemProgressUsecase,
	sessions usecase.SessionUsecase,
	engagement usecase.EngagementUsecase,
	achievements usecase.AchievementUsecase,
	auth *Authenticator,
	logger logrus.FieldLogger,
) *Handler {
	return &Handler{
		progress:     progress,
		sessions:     sessions,
		engagement:   engagement,
		achievements: achievements,
		auth:         auth,
		logger:       logger,
	}
}

// Register mounts every route on r.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(h.auth.Middleware)

	api.HandleFunc("/attempts", h.RecordAttempt).Methods(http.MethodPost)
	api.HandleFunc("/progress", h.ListItemProgress).Methods(http.MethodGet)
	api.HandleFunc("/progress/due", h.DueForReview).Methods(http.MethodGet)

	api.HandleFunc("/sessions", h.StartSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions", h.ListSessions).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", h.GetSession).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", h.UpdateSession).Methods(http.MethodPatch)
	api.HandleFunc("/sessions/{id}/complete", h.CompleteSession).Methods(http.MethodPost)

	api.HandleFunc("/stats", h.GetStats).Methods(http.MethodGet)
	api.HandleFunc("/achievements", h.ListUnlocked).Methods(http.MethodGet)
	api.HandleFunc("/achievements/registry", h.Registry).Methods(http.MethodGet)
	api.HandleFunc("/achievements/check", h.CheckAchievements).Methods(http.MethodPost)

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(RequireAdmin)
	admin.HandleFunc("/recompute", h.RecomputeAll).Methods(http.MethodPost)
	admin.HandleFunc("/users/{user_id:[0-9]+}/recompute", h.RecomputeUser).Methods(http.MethodPost)
}

func currentUser(r *http.Request) entity.User {
	user, _ := entity.UserFromContext(r.Context())
	return user
}

func (h *Handler) RecordAttempt(w http.ResponseWriter, r *http.Request) {
	var req attemptRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeStatus(w, codes.InvalidArgument, err.Error())
		return
	}
	progress, err := h.progress.RecordAttempt(r.Context(), currentUser(r).ID, req.toInput())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemProgressResponse(*progress))
}

func (h *Handler) ListItemProgress(w http.ResponseWriter, r *http.Request) {
	page, err := convertPagination(r)
	if err != nil {
		writeStatus(w, codes.InvalidArgument, err.Error())
		return
	}
	query := &repository.ListItemProgressQuery{
		Pagination:  page,
		FilterOrder: convertFilterOrder(r),
		UserID:      currentUser(r).ID,
	}
	items, total, err := h.progress.ListItemProgress(r.Context(), query)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pageResponse[itemProgressResponse]{
		Items:    lo.Map(items, func(p entity.ItemProgress, _ int) itemProgressResponse { return toItemProgressResponse(p) }),
		Total:    total,
		PageNo:   page.PageNo,
		PageSize: page.PageSize,
	})
}

func (h *Handler) DueForReview(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r.URL.Query().Get("limit"), 0)
	if err != nil {
		writeStatus(w, codes.InvalidArgument, "limit: "+err.Error())
		return
	}
	language := entity.ParseLanguage(r.URL.Query().Get("language"))
	items, err := h.progress.DueForReview(r.Context(), currentUser(r).ID, language, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": lo.Map(items, func(p entity.ItemProgress, _ int) itemProgressResponse { return toItemProgressResponse(p) }),
	})
}

func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeStatus(w, codes.InvalidArgument, err.Error())
		return
	}
	session, err := h.sessions.StartSession(r.Context(), currentUser(r).ID, usecase.StartSessionInput{
		Language: entity.ParseLanguage(req.Language),
		Type:     req.SessionType,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionResponse(*session))
}

func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	page, err := convertPagination(r)
	if err != nil {
		writeStatus(w, codes.InvalidArgument, err.Error())
		return
	}
	query := &repository.ListSessionQuery{
		Pagination:  page,
		FilterOrder: convertFilterOrder(r),
		UserID:      currentUser(r).ID,
	}
	items, total, err := h.sessions.ListSessions(r.Context(), query)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pageResponse[sessionResponse]{
		Items:    lo.Map(items, func(s entity.Session, _ int) sessionResponse { return toSessionResponse(s) }),
		Total:    total,
		PageNo:   page.PageNo,
		PageSize: page.PageSize,
	})
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.GetSession(r.Context(), currentUser(r).ID, mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(*session))
}

func (h *Handler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeStatus(w, codes.InvalidArgument, err.Error())
		return
	}
	session, err := h.sessions.UpdateSession(r.Context(), currentUser(r).ID, mux.Vars(r)["id"], req.toUpdate())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(*session))
}

func (h *Handler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	var req sessionUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeStatus(w, codes.InvalidArgument, err.Error())
		return
	}
	res, err := h.engagement.OnSessionCompleted(r.Context(), currentUser(r).ID, mux.Vars(r)["id"], req.toUpdate())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCompletionResponse(res))
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.engagement.GetStats(r.Context(), currentUser(r).ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatsResponse(stats))
}

func (h *Handler) ListUnlocked(w http.ResponseWriter, r *http.Request) {
	unlocks, err := h.achievements.Unlocked(r.Context(), currentUser(r).ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	byID := lo.KeyBy(h.achievements.Registry(), func(a entity.Achievement) string { return a.ID })
	items := make([]unlockedResponse, 0, len(unlocks))
	for _, u := range unlocks {
		a, ok := byID[u.AchievementID]
		if !ok {
			// rule removed from the registry since it was earned
			a = entity.Achievement{ID: u.AchievementID, Title: u.AchievementID}
		}
		items = append(items, unlockedResponse{Achievement: a, UnlockedAt: u.UnlockedAt.UTC()})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) Registry(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"items": h.achievements.Registry()})
}

func (h *Handler) CheckAchievements(w http.ResponseWriter, r *http.Request) {
	unlocked, err := h.achievements.Check(r.Context(), currentUser(r).ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"unlocked_achievements": lo.Ternary(unlocked == nil, []entity.Achievement{}, unlocked),
	})
}

func (h *Handler) RecomputeAll(w http.ResponseWriter, r *http.Request) {
	summary, err := h.engagement.RecomputeAll(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) RecomputeUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(mux.Vars(r)["user_id"], 10, 64)
	if err != nil {
		writeStatus(w, codes.InvalidArgument, "invalid user id")
		return
	}
	stats, err := h.engagement.RecomputeAllFromHistory(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatsResponse(stats))
}
