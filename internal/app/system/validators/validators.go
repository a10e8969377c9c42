// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/sidequest/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip.
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll, logger); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema, logger); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				logger.Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("users", usersSchema())
	ensure("quests", questsSchema())
	ensure("feedback", feedbackSchema())
	ensure("onboardingQuestions", onboardingSchema())

	// Free-form by design; the collections still need to exist for transactions.
	ensure("scaffold_users", nil)
	ensure("counters", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// ensureCollection idempotently makes sure name exists.
// Returns created==true only if it was actually created.
func ensureCollection(ctx context.Context, db *mongo.Database, name string, logger *zap.Logger) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		logger.Debug("collection exists", zap.String("collection", name))
		return false, nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExistsErr(err) {
			return false, nil
		}
		logger.Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	logger.Info("created collection", zap.String("collection", name))
	return true, nil
}

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M, logger *zap.Logger) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	if err := db.RunCommand(ctx, cmd).Err(); err != nil {
		return err
	}
	logger.Debug("validator ensured", zap.String("collection", name))
	return nil
}

func commandErrorMatches(err error, code int32, phrases ...string) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == code {
		return true
	}
	s := strings.ToLower(err.Error())
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func isNamespaceExistsErr(err error) bool {
	return commandErrorMatches(err, 48, "already exists", "namespace exists")
}

func isNoSuchCommand(err error) bool {
	return commandErrorMatches(err, 59, "no such command")
}

func isNotImplemented(err error) bool {
	return commandErrorMatches(err, 115, "not implemented", "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func statusEnum() bson.A {
	return bson.A{
		string(models.QuestOpen),
		string(models.QuestForming),
		string(models.QuestActive),
		string(models.QuestCompleted),
		string(models.QuestExpired),
	}
}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"display_name", "email", "preferences", "version"},
			"properties": bson.M{
				"display_name": nonBlank,
				"email":        nonBlank,
				"preferences": bson.M{
					"bsonType": "object",
					"properties": bson.M{
						"skill_level":         bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1, "maximum": 5},
						"preferred_team_size": bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1},
					},
				},
				"active_quest_id": bson.M{"bsonType": bson.A{"string", "null"}},
				"version":         bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1},
			},
		},
	}
}

func questsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"title", "status", "min_team_size", "max_team_size", "start_time", "team_members", "version"},
			"properties": bson.M{
				"title":         nonBlank,
				"status":        bson.M{"enum": statusEnum()},
				"min_team_size": bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1},
				"max_team_size": bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1},
				"start_time":    bson.M{"bsonType": "date"},
				"team_members": bson.M{
					"bsonType": "array",
					"items": bson.M{
						"bsonType": "object",
						"required": bson.A{"user_id", "status"},
						"properties": bson.M{
							"user_id": nonBlank,
							"status":  bson.M{"enum": bson.A{models.MemberJoined, models.MemberSolo}},
						},
					},
				},
				"version": bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1},
			},
		},
	}
}

func feedbackSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user_id", "enjoyment", "difficulty", "social_fit"},
			"properties": bson.M{
				"user_id":    nonBlank,
				"enjoyment":  bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1, "maximum": 5},
				"social_fit": bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1, "maximum": 5},
				"difficulty": bson.M{"enum": bson.A{models.DifficultyTooEasy, models.DifficultyJustRight, models.DifficultyTooHard}},
			},
		},
	}
}

func onboardingSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"order", "question", "answers"},
			"properties": bson.M{
				"order":    bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1},
				"question": nonBlank,
				"answers":  bson.M{"bsonType": "object"},
			},
		},
	}
}
