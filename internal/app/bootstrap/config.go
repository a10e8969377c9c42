// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/sidequest/internal/app/catalog"
	"github.com/dalemusser/sidequest/internal/app/lifecycle"
	"github.com/dalemusser/sidequest/internal/app/matching"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

const devSessionKey = "dev-only-change-me-please-0123456789ABCDEF"

// appConfigKeys defines the configuration keys for SideQuest.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: store_backend, mongo_uri, etc.
//   - Environment variables: SIDEQUEST_STORE_BACKEND, SIDEQUEST_MONGO_URI, etc.
//   - Command-line flags: --store_backend, --mongo_uri, etc.
var appConfigKeys = []config.AppKey{
	{Name: "store_backend", Default: BackendMongo, Desc: "Document store: 'mongo', 'sqlite' or 'memory'"},
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "sidequest", Desc: "MongoDB database name"},
	{Name: "sqlite_path", Default: "sidequest.db", Desc: "SQLite database file (sqlite backend)"},

	{Name: "session_key", Default: devSessionKey, Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "sidequest-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "720h", Desc: "Session lifetime (e.g., 24h, 720h)"},

	{Name: "cors_origins", Default: "", Desc: "Comma-separated origins allowed for CORS and quest watch sockets"},

	{Name: "completion_policy", Default: string(lifecycle.QuestWide), Desc: "Who may complete a quest: 'quest_wide' or 'members_only'"},
	{Name: "expiry_grace", Default: "24h", Desc: "How long after its end a quest is kept before the expiry sweep removes it"},
	{Name: "stale_grace", Default: "2h", Desc: "How long after its start an empty quest is kept before it is marked expired"},
	{Name: "expiry_sweep_interval", Default: "1m", Desc: "Quest expiry sweep interval (0 disables)"},
	{Name: "stale_cleanup_interval", Default: "5m", Desc: "Stale quest cleanup interval (0 disables)"},

	{Name: "seed_catalog", Default: false, Desc: "Insert the demo quest catalog at startup"},

	{Name: "recommend_top_n", Default: matching.DefaultTopN, Desc: "Default number of quest recommendations"},
	{Name: "teammate_limit", Default: matching.DefaultTeammateLimit, Desc: "Default number of teammate suggestions"},
}

// appValues is the subset of WAFFLE's loaded app values that SideQuest reads.
type appValues interface {
	String(name string) string
	Int(name string) int
	Bool(name string) bool
	Duration(name string, def time.Duration) time.Duration
}

// LoadConfig loads WAFFLE core config and SideQuest's app config.
//
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// SIDEQUEST_* environment variables and flags (flags > env > files >
// defaults).
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, values, err := config.LoadWithAppConfig(logger, "SIDEQUEST", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}
	appCfg, err := buildAppConfig(values)
	if err != nil {
		return nil, AppConfig{}, err
	}
	return coreCfg, appCfg, nil
}

func buildAppConfig(v appValues) (AppConfig, error) {
	policy, err := lifecycle.ParseCompletionPolicy(v.String("completion_policy"))
	if err != nil {
		return AppConfig{}, err
	}
	return AppConfig{
		StoreBackend:  strings.ToLower(strings.TrimSpace(v.String("store_backend"))),
		MongoURI:      v.String("mongo_uri"),
		MongoDatabase: v.String("mongo_database"),
		SQLitePath:    v.String("sqlite_path"),

		SessionKey:    v.String("session_key"),
		SessionName:   v.String("session_name"),
		SessionDomain: v.String("session_domain"),
		SessionMaxAge: v.Duration("session_max_age", 30*24*time.Hour),

		CORSOrigins: splitOrigins(v.String("cors_origins")),

		CompletionPolicy: policy,
		ExpiryGrace:      v.Duration("expiry_grace", lifecycle.DefaultExpiryGrace),
		StaleGrace:       v.Duration("stale_grace", catalog.DefaultStaleGrace),

		ExpirySweepInterval:  v.Duration("expiry_sweep_interval", time.Minute),
		StaleCleanupInterval: v.Duration("stale_cleanup_interval", 5*time.Minute),

		SeedCatalog: v.Bool("seed_catalog"),

		RecommendTopN: v.Int("recommend_top_n"),
		TeammateLimit: v.Int("teammate_limit"),
	}, nil
}

// splitOrigins parses a comma-separated origin list, dropping blanks and
// trailing slashes.
func splitOrigins(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		o := strings.TrimRight(strings.TrimSpace(part), "/")
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}

// ValidateConfig rejects configurations that cannot start.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	switch appCfg.StoreBackend {
	case BackendMongo:
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
		if appCfg.MongoDatabase == "" {
			return fmt.Errorf("mongo_database is required for the mongo backend")
		}
	case BackendSQLite:
		if appCfg.SQLitePath == "" {
			return fmt.Errorf("sqlite_path is required for the sqlite backend")
		}
	case BackendMemory:
		logger.Warn("using the in-memory store; data is lost on restart")
	default:
		return fmt.Errorf("unknown store_backend %q (want mongo, sqlite or memory)", appCfg.StoreBackend)
	}

	if len(appCfg.SessionKey) < 32 {
		return fmt.Errorf("session_key must be at least 32 characters")
	}
	if coreCfg != nil && coreCfg.Env == "prod" && appCfg.SessionKey == devSessionKey {
		return fmt.Errorf("session_key must be changed from the development default in prod")
	}
	if appCfg.ExpiryGrace < 0 || appCfg.StaleGrace < 0 {
		return fmt.Errorf("expiry_grace and stale_grace cannot be negative")
	}
	if appCfg.RecommendTopN < 0 || appCfg.TeammateLimit < 0 {
		return fmt.Errorf("recommend_top_n and teammate_limit cannot be negative")
	}
	return nil
}
