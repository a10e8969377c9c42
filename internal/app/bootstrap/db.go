// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/sidequest/internal/app/catalog"
	"github.com/dalemusser/sidequest/internal/app/store/docstore"
	onboardingstore "github.com/dalemusser/sidequest/internal/app/store/onboarding"
	"github.com/dalemusser/sidequest/internal/app/system/indexes"
	"github.com/dalemusser/sidequest/internal/app/system/timeouts"
	"github.com/dalemusser/sidequest/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ConnectDB opens the configured document store and builds the services
// over it.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	b, m, err := OpenBackend(ctx, appCfg, logger)
	if err != nil {
		return DBDeps{}, err
	}
	svc, err := NewServices(appCfg, b, logger)
	if err != nil {
		_ = b.Close(ctx)
		return DBDeps{}, err
	}
	return DBDeps{Backend: b, Mongo: m, Services: svc}, nil
}

// OpenBackend connects to the store named by appCfg.StoreBackend. The
// returned *docstore.Mongo is nil for other backends.
func OpenBackend(ctx context.Context, appCfg AppConfig, logger *zap.Logger) (docstore.Backend, *docstore.Mongo, error) {
	storeLog := logger.Named("docstore")
	switch appCfg.StoreBackend {
	case BackendMongo:
		m, err := connectMongo(ctx, appCfg, storeLog)
		if err != nil {
			return nil, nil, err
		}
		return m, m, nil
	case BackendSQLite:
		s, err := docstore.OpenSQLite(ctx, appCfg.SQLitePath, storeLog)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite %s: %w", appCfg.SQLitePath, err)
		}
		logger.Info("connected to SQLite", zap.String("path", appCfg.SQLitePath))
		return s, nil, nil
	case BackendMemory:
		return docstore.NewMemory(storeLog), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown store_backend %q", appCfg.StoreBackend)
	}
}

func connectMongo(ctx context.Context, appCfg AppConfig, logger *zap.Logger) (*docstore.Mongo, error) {
	connectCtx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()

	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetServerSelectionTimeout(timeouts.Medium()).
		SetConnectTimeout(10 * time.Second)
	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	m := docstore.NewMongo(client, appCfg.MongoDatabase, logger)

	pingCtx, cancelPing := context.WithTimeout(ctx, timeouts.Ping())
	defer cancelPing()
	if err := m.Ping(pingCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))
	return m, nil
}

// EnsureSchema attaches MongoDB validators and indexes, seeds the
// onboarding question bank and, when enabled, the demo quest catalog.
// Every step is idempotent.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.Mongo != nil {
		db := deps.Mongo.Database()
		if err := validators.EnsureAll(ctx, db, logger); err != nil {
			logger.Warn("schema validators incomplete", zap.Error(err))
		}
		if err := indexes.EnsureAll(ctx, db, logger); err != nil {
			return fmt.Errorf("ensure indexes: %w", err)
		}
	}
	return Seed(ctx, appCfg.SeedCatalog, deps, logger)
}

// Seed loads the onboarding bank and, if withCatalog, the demo quests.
func Seed(ctx context.Context, withCatalog bool, deps DBDeps, logger *zap.Logger) error {
	bank, err := onboardingstore.Bank()
	if err != nil {
		return err
	}
	n, err := onboardingstore.New(deps.Backend).Seed(ctx, bank)
	if err != nil {
		return fmt.Errorf("seed onboarding questions: %w", err)
	}
	if n > 0 {
		logger.Info("seeded onboarding questions", zap.Int("added", n))
	}

	if !withCatalog {
		return nil
	}
	quests, err := catalog.DefaultSeed(time.Now().UTC())
	if err != nil {
		return err
	}
	if _, err := deps.Services.Catalog.Seed(ctx, quests); err != nil {
		return err
	}
	return nil
}
