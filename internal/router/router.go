package router

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Houmeecl/pilotonotary-backend/internal/domain"
	"github.com/Houmeecl/pilotonotary-backend/internal/handler"
	"github.com/Houmeecl/pilotonotary-backend/internal/metrics"
	"github.com/Houmeecl/pilotonotary-backend/pkg/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

type RateLimits struct {
	Global      int
	Login       int
	Window      time.Duration
	Block       time.Duration
	LoginWindow time.Duration
}

func SetupRoutes(
	r chi.Router,
	h *handler.Handler,
	wsHandler *handler.WSHandler,
	auth *middleware.AuthMiddleware,
	rdb redis.UniversalClient,
	limits RateLimits,
	allowedOrigins []string,
) chi.Router {
	onLimited := func(scope string) { metrics.RateLimited.WithLabelValues(scope).Inc() }

	// ---- Global Middleware ----
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(instrument)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimiter(rdb, limits.Global, limits.Window, limits.Block, "global", onLimited))

		// ---------------- Public ----------------
		r.Get("/health", h.HandleHealth)
		r.Get("/validate/{code}", h.HandleValidateQR)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimiter(rdb, limits.Login, limits.LoginWindow, limits.Block, "auth", onLimited))
			r.Post("/auth/login", h.HandleLogin)
			r.Post("/admin/login", h.HandleAdminLogin)
		})

		// ---------------- Authenticated ----------------
		r.Group(func(pr chi.Router) {
			pr.Use(auth.Handle)

			pr.Post("/auth/logout", h.HandleLogout)
			pr.Get("/auth/me", h.HandleMe)

			pr.Route("/documents", func(dr chi.Router) {
				dr.Post("/", h.HandleCreateDocument)
				dr.Get("/", h.HandleListDocuments)
				dr.With(middleware.RequireRoles(domain.RoleCertificador)).Get("/pending", h.HandleListPending)
				dr.Get("/{id}", h.HandleGetDocument)
				dr.Post("/{id}/submit", h.HandleSubmitDocument)
				dr.Post("/{id}/cancel", h.HandleCancelDocument)
				dr.With(middleware.RequireRoles(domain.RoleCertificador)).Patch("/{id}/certify", h.HandleReview)
			})
			pr.Post("/verify-identity", h.HandleVerifyIdentity)

			pr.Post("/pos-locations", h.HandleCreatePOSLocation)
			pr.Get("/pos-locations", h.HandleListPOSLocations)
			pr.Post("/pos-locations/{id}/toggle", h.HandleTogglePOSLocation)

			pr.Get("/commissions", h.HandleListCommissions)

			pr.Route("/notifications", func(nr chi.Router) {
				nr.Get("/", h.HandleListNotifications)
				nr.Get("/unread", h.HandleListUnreadNotifications)
				nr.Get("/unread/count", h.HandleCountUnread)
				nr.Patch("/{id}/read", h.HandleMarkNotificationRead)
				nr.Get("/ws", wsHandler.HandleWS)
			})

			// ---------------- Superadmin ----------------
			pr.Group(func(ar chi.Router) {
				ar.Use(middleware.RequireRoles(domain.RoleSuperadmin))

				ar.Get("/analytics/documents", h.HandleDocumentAnalytics)
				ar.Get("/analytics/commissions", h.HandleCommissionAnalytics)

				ar.Get("/admin/users", h.HandleListUsers)
				ar.Post("/admin/users", h.HandleCreateUser)
				ar.Get("/admin/users/stats", h.HandleUserStats)
				ar.Post("/admin/users/{id}/toggle", h.HandleToggleUser)

				ar.Get("/admin/commissions/unpaid", h.HandleListUnpaidCommissions)
				ar.Patch("/admin/commissions/{id}/pay", h.HandlePayCommission)
			})
		})
	})

	return r
}

// instrument records request counts and latency by chi route pattern.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
