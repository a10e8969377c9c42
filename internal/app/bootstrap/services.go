// internal/app/bootstrap/services.go
package bootstrap

import (
	"github.com/dalemusser/sidequest/internal/app/catalog"
	"github.com/dalemusser/sidequest/internal/app/lifecycle"
	"github.com/dalemusser/sidequest/internal/app/matching"
	"github.com/dalemusser/sidequest/internal/app/store/docstore"
	"github.com/dalemusser/sidequest/internal/app/system/metrics"
	"github.com/dalemusser/sidequest/internal/app/system/tasks"
	"github.com/dalemusser/sidequest/internal/app/system/workers"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Services is the quest domain wired over one backend. The HTTP server and
// sidequestctl both build it with NewServices.
type Services struct {
	Registry  *prometheus.Registry
	Metrics   metrics.Observer
	Catalog   *catalog.Service
	Lifecycle *lifecycle.Service
	Matching  *matching.Engine
	// Runner owns the expiry sweep and stale cleanup jobs.
	Runner *workers.Runner
}

// NewServices builds the catalog, lifecycle, matching and background jobs.
func NewServices(appCfg AppConfig, b docstore.Backend, logger *zap.Logger) (*Services, error) {
	reg := metrics.NewRegistry()
	obs, err := metrics.NewPrometheus("sidequest", reg)
	if err != nil {
		return nil, err
	}

	cat := catalog.New(b, logger.Named("catalog"), appCfg.StaleGrace)
	lc := lifecycle.New(b, logger.Named("lifecycle"), obs, lifecycle.Options{
		Policy:      appCfg.CompletionPolicy,
		ExpiryGrace: appCfg.ExpiryGrace,
	})
	engine := matching.New(cat, b, logger.Named("matching"), obs)

	jobsLog := logger.Named("jobs")
	runner := workers.NewRunner(jobsLog,
		tasks.QuestExpirySweepJob(lc, obs, jobsLog, appCfg.ExpirySweepInterval),
		tasks.StaleQuestCleanupJob(cat, obs, jobsLog, appCfg.StaleCleanupInterval),
	)

	return &Services{
		Registry:  reg,
		Metrics:   obs,
		Catalog:   cat,
		Lifecycle: lc,
		Matching:  engine,
		Runner:    runner,
	}, nil
}
