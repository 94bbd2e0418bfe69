package handler

import (
	"net/http"

	"github.com/Houmeecl/pilotonotary-backend/internal/usecase"
	"github.com/Houmeecl/pilotonotary-backend/pkg/middleware"
	"github.com/Houmeecl/pilotonotary-backend/pkg/response"
)

func (h *Handler) HandleCreatePOSLocation(w http.ResponseWriter, r *http.Request) {
	var req usecase.CreatePOSLocationRequest
	if !decode(w, r, &req) {
		return
	}
	loc, err := h.pos.Create(r.Context(), middleware.PrincipalFrom(r.Context()), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, loc)
}

func (h *Handler) HandleListPOSLocations(w http.ResponseWriter, r *http.Request) {
	locs, err := h.pos.List(r.Context(), middleware.PrincipalFrom(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, locs)
}

func (h *Handler) HandleTogglePOSLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	loc, err := h.pos.Toggle(r.Context(), middleware.PrincipalFrom(r.Context()), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, loc)
}
