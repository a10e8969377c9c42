// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown stops the background jobs, then closes the store. Closing the
// store also closes its event hub, which ends open watch sockets.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.Services != nil {
		deps.Services.Runner.Stop()
	}
	if deps.Backend != nil {
		logger.Info("closing document store", zap.String("backend", appCfg.StoreBackend))
		if err := deps.Backend.Close(ctx); err != nil {
			logger.Error("document store close failed", zap.Error(err))
			return err
		}
	}
	return nil
}
