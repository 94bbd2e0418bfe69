package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Houmeecl/pilotonotary-backend/internal/usecase"
	"github.com/Houmeecl/pilotonotary-backend/pkg/middleware"
	"github.com/Houmeecl/pilotonotary-backend/pkg/response"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func (h *Handler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context(), middleware.PrincipalFrom(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, users)
}

func (h *Handler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req usecase.CreateUserRequest
	if !decode(w, r, &req) {
		return
	}
	user, err := h.users.Create(r.Context(), middleware.PrincipalFrom(r.Context()), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, user)
}

func (h *Handler) HandleToggleUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Toggle(r.Context(), middleware.PrincipalFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, user)
}

func (h *Handler) HandleUserStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.users.Stats(r.Context(), middleware.PrincipalFrom(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, stats)
}

// HandleHealth reports liveness and whether the database answers.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	body := map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"database":  "up",
	}
	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("health check: database unreachable", zap.Error(err))
		body["status"] = "degraded"
		body["database"] = "down"
		response.JSON(w, http.StatusServiceUnavailable, body)
		return
	}
	response.JSON(w, http.StatusOK, body)
}
