// internal/domain/models/scaffolduser.go
package models

// ScaffoldUser is a free-form record served by the /api/users CRUD surface.
// Seq is the sequential id clients see; Key is its decimal string form and
// addresses the document in the store.
type ScaffoldUser struct {
	Key     string         `bson:"_id" json:"-"`
	Seq     int64          `bson:"seq" json:"id"`
	Fields  map[string]any `bson:"fields" json:"fields"`
	Version int64          `bson:"version" json:"-"`
}
