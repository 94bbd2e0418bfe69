package handler

import (
	"net/http"

	"github.com/Houmeecl/pilotonotary-backend/pkg/middleware"
	"github.com/Houmeecl/pilotonotary-backend/pkg/response"
)

func (h *Handler) HandleListNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := h.notifications.List(r.Context(), middleware.PrincipalFrom(r.Context()),
		queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, list)
}

func (h *Handler) HandleListUnreadNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := h.notifications.ListUnread(r.Context(), middleware.PrincipalFrom(r.Context()),
		queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, list)
}

func (h *Handler) HandleCountUnread(w http.ResponseWriter, r *http.Request) {
	n, err := h.notifications.CountUnread(r.Context(), middleware.PrincipalFrom(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]int{"count": n})
}

func (h *Handler) HandleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	if err := h.notifications.MarkAsRead(r.Context(), middleware.PrincipalFrom(r.Context()), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
