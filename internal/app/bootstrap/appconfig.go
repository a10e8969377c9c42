// internal/app/bootstrap/appconfig.go
package bootstrap

import (
	"time"

	"github.com/dalemusser/sidequest/internal/app/lifecycle"
)

// Store backends.
const (
	BackendMongo  = "mongo"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// AppConfig holds SideQuest configuration.
//
// Values come from SIDEQUEST_* environment variables, config files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers
// ports, TLS, logging and request limits; everything specific to quest
// matching lives here.
type AppConfig struct {
	// Document store
	StoreBackend  string // mongo, sqlite or memory
	MongoURI      string
	MongoDatabase string
	SQLitePath    string

	// Session management
	SessionKey    string // signs session cookies; must be strong in production
	SessionName   string
	SessionDomain string // blank means current host
	SessionMaxAge time.Duration

	// Origins allowed for CORS and watch sockets. Empty means same origin.
	CORSOrigins []string

	// Quest lifecycle
	CompletionPolicy lifecycle.CompletionPolicy
	ExpiryGrace      time.Duration
	StaleGrace       time.Duration

	// Background jobs. Non-positive disables the job.
	ExpirySweepInterval  time.Duration
	StaleCleanupInterval time.Duration

	// Load the demo quest catalog at startup.
	SeedCatalog bool

	// Matching defaults
	RecommendTopN int
	TeammateLimit int
}
