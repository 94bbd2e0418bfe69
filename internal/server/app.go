package server

import (
	"net/http"

	"github.com/Houmeecl/pilotonotary-backend/internal/config"
	"github.com/Houmeecl/pilotonotary-backend/internal/events"
	"github.com/Houmeecl/pilotonotary-backend/internal/handler"
	"github.com/Houmeecl/pilotonotary-backend/internal/jobs"
	"github.com/Houmeecl/pilotonotary-backend/internal/repository"
	"github.com/Houmeecl/pilotonotary-backend/internal/router"
	"github.com/Houmeecl/pilotonotary-backend/internal/usecase"
	"github.com/Houmeecl/pilotonotary-backend/pkg/cache"
	"github.com/Houmeecl/pilotonotary-backend/pkg/id"
	"github.com/Houmeecl/pilotonotary-backend/pkg/jwtutil"
	"github.com/Houmeecl/pilotonotary-backend/pkg/middleware"
	"github.com/Houmeecl/pilotonotary-backend/pkg/notifier"
	"github.com/Houmeecl/pilotonotary-backend/pkg/notifier/ws"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Deps are the outside resources the application is assembled from.
type Deps struct {
	Config    config.AppConfig
	Store     repository.Store
	Redis     redis.UniversalClient // nil disables rate limiting and the session cache
	Publisher events.Publisher
	Tokens    *jwtutil.Generator
	Verifier  *jwtutil.Verifier
	Logger    *zap.Logger
}

// App is the wired HTTP surface plus the background pieces that share its state.
type App struct {
	Handler   http.Handler
	WS        *ws.Manager
	Scheduler *jobs.Scheduler
}

func Build(d Deps) (*App, error) {
	logger := d.Logger
	cfg := d.Config

	sf, err := id.NewSnowflake(cfg.SnowflakeNode)
	if err != nil {
		return nil, err
	}
	ulids := id.NewULIDSource()

	var sessionCache usecase.SessionCache
	if d.Redis != nil {
		sessionCache = cache.FromClient(d.Redis)
	}

	wsManager := ws.NewManager(logger)
	dispatch := notifier.NewNotifier(d.Store.Notifications(), wsManager, logger)

	authUC := usecase.NewAuthUsecase(d.Store, d.Tokens, sessionCache, ulids, logger)
	commissionUC := usecase.NewCommissionUsecase(d.Store, dispatch, d.Publisher, logger)

	h := handler.NewHandler(handler.Usecases{
		Certification: usecase.NewCertificationUsecase(d.Store, dispatch, d.Publisher, usecase.NewRUTVerifier(), ulids, logger),
		Auth:          authUC,
		Users:         usecase.NewUserUsecase(d.Store, sf, logger),
		POS:           usecase.NewPOSUsecase(d.Store, logger),
		Commissions:   commissionUC,
		Notifications: usecase.NewNotificationUsecase(d.Store.Notifications()),
		Analytics:     usecase.NewAnalyticsUsecase(d.Store),
	}, d.Store, logger)

	r := router.SetupRoutes(
		chi.NewRouter(),
		h,
		handler.NewWSHandler(wsManager, cfg.AllowedOrigins, logger),
		middleware.NewAuthMiddleware(d.Verifier, authUC, logger),
		d.Redis,
		router.RateLimits{
			Global:      cfg.RateLimitGlobal,
			Login:       cfg.RateLimitLogin,
			Window:      cfg.RateLimitWindow,
			Block:       cfg.RateLimitBlock,
			LoginWindow: cfg.LoginWindow,
		},
		cfg.AllowedOrigins,
	)

	sched := jobs.NewScheduler(authUC, commissionUC, logger)
	if err := sched.Register(jobs.Specs{SessionPurge: cfg.SessionPurgeSpec, UnpaidGauge: cfg.UnpaidGaugeSpec}); err != nil {
		return nil, err
	}

	return &App{Handler: r, WS: wsManager, Scheduler: sched}, nil
}
