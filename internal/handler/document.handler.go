package handler

import (
	"net/http"

	"github.com/Houmeecl/pilotonotary-backend/internal/usecase"
	"github.com/Houmeecl/pilotonotary-backend/pkg/middleware"
	"github.com/Houmeecl/pilotonotary-backend/pkg/response"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) HandleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var req usecase.CreateDocumentRequest
	if !decode(w, r, &req) {
		return
	}
	doc, err := h.certification.CreateDocument(r.Context(), middleware.PrincipalFrom(r.Context()), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, doc)
}

func (h *Handler) HandleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.certification.ListDocuments(r.Context(), middleware.PrincipalFrom(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, docs)
}

func (h *Handler) HandleListPending(w http.ResponseWriter, r *http.Request) {
	docs, err := h.certification.ListPending(r.Context(), middleware.PrincipalFrom(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, docs)
}

func (h *Handler) HandleGetDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	doc, err := h.certification.GetDocument(r.Context(), middleware.PrincipalFrom(r.Context()), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, doc)
}

func (h *Handler) HandleSubmitDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	doc, err := h.certification.SubmitDocument(r.Context(), middleware.PrincipalFrom(r.Context()), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, doc)
}

func (h *Handler) HandleCancelDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	doc, err := h.certification.CancelDocument(r.Context(), middleware.PrincipalFrom(r.Context()), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, doc)
}

// HandleReview serves PATCH /documents/{id}/certify for both actions.
func (h *Handler) HandleReview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	var req usecase.ReviewRequest
	if !decode(w, r, &req) {
		return
	}
	req.DocumentID = id

	res, err := h.certification.Review(r.Context(), middleware.PrincipalFrom(r.Context()), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	msg := "Document certified"
	if req.Action == usecase.ActionReject {
		msg = "Document rejected"
	}
	response.Message(w, http.StatusOK, msg, res)
}

func (h *Handler) HandleVerifyIdentity(w http.ResponseWriter, r *http.Request) {
	var req usecase.VerifyIdentityRequest
	if !decode(w, r, &req) {
		return
	}
	doc, err := h.certification.VerifyIdentity(r.Context(), middleware.PrincipalFrom(r.Context()), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Message(w, http.StatusOK, "Identity verified", doc)
}

// HandleValidateQR is public: anyone holding a printed code may check it.
func (h *Handler) HandleValidateQR(w http.ResponseWriter, r *http.Request) {
	doc, err := h.certification.ValidateQRCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, doc)
}
