package handler

import (
	"net/http"

	"github.com/Houmeecl/pilotonotary-backend/pkg/middleware"
	"github.com/Houmeecl/pilotonotary-backend/pkg/response"
)

func (h *Handler) HandleListCommissions(w http.ResponseWriter, r *http.Request) {
	list, err := h.commissions.ListForUser(r.Context(), middleware.PrincipalFrom(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, list)
}

func (h *Handler) HandleListUnpaidCommissions(w http.ResponseWriter, r *http.Request) {
	list, err := h.commissions.ListUnpaid(r.Context(), middleware.PrincipalFrom(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, list)
}

func (h *Handler) HandlePayCommission(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	c, err := h.commissions.MarkPaid(r.Context(), middleware.PrincipalFrom(r.Context()), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Message(w, http.StatusOK, "Commission marked as paid", c)
}

func (h *Handler) HandleDocumentAnalytics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analytics.Documents(r.Context(), middleware.PrincipalFrom(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, stats)
}

func (h *Handler) HandleCommissionAnalytics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analytics.Commissions(r.Context(), middleware.PrincipalFrom(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, stats)
}
