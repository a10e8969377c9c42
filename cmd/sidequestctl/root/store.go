package root

import (
	"context"
	"os"
	"time"

	"github.com/dalemusser/sidequest/internal/app/bootstrap"
	"github.com/dalemusser/sidequest/internal/app/catalog"
	"github.com/dalemusser/sidequest/internal/app/lifecycle"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// storeOptions mirrors the server's SIDEQUEST_* store keys as flags.
type storeOptions struct {
	backend       string
	mongoURI      string
	mongoDatabase string
	sqlitePath    string
	policy        string
	expiryGrace   time.Duration
	staleGrace    time.Duration
	verbose       bool
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return def
}

func (o *storeOptions) bind(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&o.backend, "store-backend", envOr("SIDEQUEST_STORE_BACKEND", bootstrap.BackendMongo), "Document store: mongo, sqlite or memory")
	f.StringVar(&o.mongoURI, "mongo-uri", envOr("SIDEQUEST_MONGO_URI", "mongodb://localhost:27017"), "MongoDB connection URI")
	f.StringVar(&o.mongoDatabase, "mongo-database", envOr("SIDEQUEST_MONGO_DATABASE", "sidequest"), "MongoDB database name")
	f.StringVar(&o.sqlitePath, "sqlite-path", envOr("SIDEQUEST_SQLITE_PATH", "sidequest.db"), "SQLite database file")
	f.StringVar(&o.policy, "completion-policy", envOr("SIDEQUEST_COMPLETION_POLICY", string(lifecycle.QuestWide)), "quest_wide or members_only")
	f.DurationVar(&o.expiryGrace, "expiry-grace", envDuration("SIDEQUEST_EXPIRY_GRACE", lifecycle.DefaultExpiryGrace), "Keep ended quests this long before removing them")
	f.DurationVar(&o.staleGrace, "stale-grace", envDuration("SIDEQUEST_STALE_GRACE", catalog.DefaultStaleGrace), "Keep empty started quests this long before expiring them")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "Log to stderr")
}

func (o *storeOptions) appConfig() (bootstrap.AppConfig, error) {
	policy, err := lifecycle.ParseCompletionPolicy(o.policy)
	if err != nil {
		return bootstrap.AppConfig{}, err
	}
	return bootstrap.AppConfig{
		StoreBackend:     o.backend,
		MongoURI:         o.mongoURI,
		MongoDatabase:    o.mongoDatabase,
		SQLitePath:       o.sqlitePath,
		CompletionPolicy: policy,
		ExpiryGrace:      o.expiryGrace,
		StaleGrace:       o.staleGrace,
	}, nil
}

func (o *storeOptions) logger() *zap.Logger {
	if !o.verbose {
		return zap.NewNop()
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// open connects to the store and builds the services. The cleanup closes
// the store.
func (o *storeOptions) open(ctx context.Context) (bootstrap.AppConfig, bootstrap.DBDeps, *zap.Logger, func(), error) {
	cfg, err := o.appConfig()
	if err != nil {
		return cfg, bootstrap.DBDeps{}, nil, nil, err
	}
	logger := o.logger()
	deps, err := bootstrap.ConnectDB(ctx, nil, cfg, logger)
	if err != nil {
		return cfg, bootstrap.DBDeps{}, nil, nil, err
	}
	cleanup := func() {
		_ = deps.Backend.Close(context.Background())
		_ = logger.Sync()
	}
	return cfg, deps, logger, cleanup, nil
}
