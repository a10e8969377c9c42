// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	authnfeature "github.com/dalemusser/sidequest/internal/app/features/authn"
	errorsfeature "github.com/dalemusser/sidequest/internal/app/features/errors"
	feedbackfeature "github.com/dalemusser/sidequest/internal/app/features/feedback"
	healthfeature "github.com/dalemusser/sidequest/internal/app/features/health"
	onboardingfeature "github.com/dalemusser/sidequest/internal/app/features/onboarding"
	profilefeature "github.com/dalemusser/sidequest/internal/app/features/profile"
	questsfeature "github.com/dalemusser/sidequest/internal/app/features/quests"
	recommendationsfeature "github.com/dalemusser/sidequest/internal/app/features/recommendations"
	scaffoldfeature "github.com/dalemusser/sidequest/internal/app/features/scaffold"
	onboardingstore "github.com/dalemusser/sidequest/internal/app/store/onboarding"
	scaffoldstore "github.com/dalemusser/sidequest/internal/app/store/scaffoldusers"
	userstore "github.com/dalemusser/sidequest/internal/app/store/users"
	"github.com/dalemusser/sidequest/internal/app/system/auth"
	"github.com/dalemusser/sidequest/internal/app/system/metrics"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// BuildHandler constructs the root router.
//
// WAFFLE calls this after config, store connection, schema setup and
// Startup. Every feature shares one session manager and error logger;
// /health, /metrics, /auth and /api/users are public, everything else
// requires a session.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	errLog := errorsfeature.NewErrorLogger(logger)
	svc := deps.Services
	users := userstore.New(deps.Backend)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if len(appCfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   appCfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	healthHandler := healthfeature.NewHandler(deps.Backend, appCfg.StoreBackend, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Method(http.MethodGet, "/metrics", metrics.Handler(svc.Registry))

	authHandler := authnfeature.NewHandler(users, sessionMgr, errLog, logger)
	r.Mount("/auth", authnfeature.Routes(authHandler))

	profileHandler := profilefeature.NewHandler(users, errLog, logger)
	r.Mount("/me", profilefeature.Routes(profileHandler, sessionMgr))

	questsHandler := questsfeature.NewHandler(svc.Catalog, svc.Lifecycle, svc.Matching, deps.Backend.Hub(), errLog, logger)
	if appCfg.TeammateLimit > 0 {
		questsHandler.TeammateLimit = appCfg.TeammateLimit
	}
	questsHandler.Origins = appCfg.CORSOrigins
	r.Mount("/quests", questsfeature.Routes(questsHandler, sessionMgr))

	recHandler := recommendationsfeature.NewHandler(svc.Matching, appCfg.RecommendTopN, errLog, logger)
	r.Mount("/recommendations", recommendationsfeature.Routes(recHandler, sessionMgr))

	onboardingHandler := onboardingfeature.NewHandler(onboardingstore.New(deps.Backend), users, errLog, logger)
	r.Mount("/onboarding", onboardingfeature.Routes(onboardingHandler, sessionMgr))

	feedbackHandler := feedbackfeature.NewHandler(deps.Backend, errLog, logger)
	r.Mount("/api/feedback", feedbackfeature.Routes(feedbackHandler, sessionMgr))

	scaffoldHandler := scaffoldfeature.NewHandler(scaffoldstore.New(deps.Backend), errLog, logger)
	r.Mount("/api/users", scaffoldfeature.Routes(scaffoldHandler))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errorsfeature.Write(w, http.StatusNotFound, errorsfeature.CodeNotFound, "no such endpoint")
	})
	return r, nil
}
