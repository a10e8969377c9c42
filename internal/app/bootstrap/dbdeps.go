// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/sidequest/internal/app/store/docstore"
)

// DBDeps holds the document store and the services built over it.
// Services is a pointer so Startup and Shutdown share one Runner.
type DBDeps struct {
	Backend docstore.Backend
	// Mongo is set only for the mongo backend, for schema management.
	Mongo *docstore.Mongo

	Services *Services
}
