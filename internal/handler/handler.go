package handler

import (
	"net/http"
	"strconv"

	"github.com/Houmeecl/pilotonotary-backend/internal/repository"
	"github.com/Houmeecl/pilotonotary-backend/internal/usecase"
	"github.com/Houmeecl/pilotonotary-backend/pkg/response"
	"github.com/Houmeecl/pilotonotary-backend/pkg/xerrors"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

type Handler struct {
	certification *usecase.CertificationUsecase
	auth          *usecase.AuthUsecase
	users         *usecase.UserUsecase
	pos           *usecase.POSUsecase
	commissions   *usecase.CommissionUsecase
	notifications *usecase.NotificationUsecase
	analytics     *usecase.AnalyticsUsecase
	store         repository.Store
	logger        *zap.Logger
}

type Usecases struct {
	Certification *usecase.CertificationUsecase
	Auth          *usecase.AuthUsecase
	Users         *usecase.UserUsecase
	POS           *usecase.POSUsecase
	Commissions   *usecase.CommissionUsecase
	Notifications *usecase.NotificationUsecase
	Analytics     *usecase.AnalyticsUsecase
}

func NewHandler(uc Usecases, store repository.Store, logger *zap.Logger) *Handler {
	return &Handler{
		certification: uc.Certification,
		auth:          uc.Auth,
		users:         uc.Users,
		pos:           uc.POS,
		commissions:   uc.Commissions,
		notifications: uc.Notifications,
		analytics:     uc.Analytics,
		store:         store,
		logger:        logger,
	}
}

// decode reads a JSON body into dst. It answers 400 itself and reports false on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := render.DecodeJSON(r.Body, dst); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func pathInt64(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || v <= 0 {
		response.Error(w, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return v, true
}

func queryInt(r *http.Request, name string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return v
}

// fail maps usecase errors to the response envelope. Anything that is not a
// client error is logged and answered with a generic message.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := xerrors.HTTPStatus(err)
	if xerrors.Public(err) {
		response.Error(w, status, err.Error())
		return
	}

	h.logger.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	if status == http.StatusServiceUnavailable {
		response.Error(w, status, "service temporarily unavailable")
		return
	}
	response.Error(w, http.StatusInternalServerError, "unexpected error occurred")
}
