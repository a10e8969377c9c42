// internal/app/store/docstore/mongo.go
package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/sidequest/internal/app/system/txn"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Mongo is the MongoDB Backend. One collection per document collection,
// string _id, version-guarded replaces.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
	hub    *Hub
	log    *zap.Logger
}

type mongoTxKey struct{}

// NewMongo wraps a connected client. The caller keeps ownership of the
// connection string; Close disconnects the client.
func NewMongo(client *mongo.Client, dbName string, logger *zap.Logger) *Mongo {
	return &Mongo{
		client: client,
		db:     client.Database(dbName),
		hub:    NewHub(logger, 0),
		log:    logger,
	}
}

// Database exposes the underlying database for index management.
func (m *Mongo) Database() *mongo.Database { return m.db }

func (m *Mongo) Hub() *Hub { return m.hub }

func (m *Mongo) Ping(ctx context.Context) error {
	return mapMongoErr(m.client.Ping(ctx, readpref.Primary()))
}

func (m *Mongo) Close(ctx context.Context) error {
	m.hub.Close()
	return m.client.Disconnect(ctx)
}

func (m *Mongo) Get(ctx context.Context, coll, id string) (Raw, error) {
	data, err := m.db.Collection(coll).FindOne(ctx, bson.M{"_id": id}).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Raw{}, ErrNotFound
	}
	if err != nil {
		return Raw{}, mapMongoErr(err)
	}
	return newRaw(id, data), nil
}

func (m *Mongo) Create(ctx context.Context, coll, id string, doc any) error {
	data, _, err := encode(doc)
	if err != nil {
		return err
	}
	if _, err := m.db.Collection(coll).InsertOne(ctx, data); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrExists
		}
		return mapMongoErr(err)
	}
	emit(ctx, m.hub, Event{Type: EventCreated, Collection: coll, ID: id, Data: data})
	return nil
}

func (m *Mongo) Replace(ctx context.Context, coll, id string, doc any, expectVersion int64) error {
	data, next, err := encode(doc)
	if err != nil {
		return err
	}
	if err := checkAdvance(coll, id, next, expectVersion); err != nil {
		return err
	}
	c := m.db.Collection(coll)
	res, err := c.ReplaceOne(ctx, bson.M{"_id": id, "version": expectVersion}, data)
	if err != nil {
		return mapMongoErr(err)
	}
	if res.MatchedCount == 0 {
		n, err := c.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return mapMongoErr(err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return ErrConflict
	}
	emit(ctx, m.hub, Event{Type: EventUpdated, Collection: coll, ID: id, Data: data})
	return nil
}

func (m *Mongo) Delete(ctx context.Context, coll, id string) error {
	res, err := m.db.Collection(coll).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapMongoErr(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	emit(ctx, m.hub, Event{Type: EventDeleted, Collection: coll, ID: id})
	return nil
}

func (m *Mongo) Find(ctx context.Context, coll string, q Query) ([]Raw, error) {
	filter, err := mongoFilter(q.Where)
	if err != nil {
		return nil, err
	}
	opts := options.Find()
	if q.OrderBy != "" {
		dir := 1
		if q.Desc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: q.OrderBy, Value: dir}})
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cur, err := m.db.Collection(coll).Find(ctx, filter, opts)
	if err != nil {
		return nil, mapMongoErr(err)
	}
	defer cur.Close(ctx)

	out := make([]Raw, 0)
	for cur.Next(ctx) {
		data := make(bson.Raw, len(cur.Current))
		copy(data, cur.Current)
		id, _ := data.Lookup("_id").StringValueOK()
		out = append(out, newRaw(id, data))
	}
	if err := cur.Err(); err != nil {
		return nil, mapMongoErr(err)
	}
	return out, nil
}

// WithTx uses a multi-document transaction when the deployment has one.
// Events are only published once the transaction commits.
func (m *Mongo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(mongoTxKey{}) != nil {
		return fn(ctx)
	}
	txCtx, events := withPending(context.WithValue(ctx, mongoTxKey{}, true))
	err := txn.Run(txCtx, m.client, m.log, func(ctx context.Context) error {
		events.reset()
		return fn(ctx)
	})
	if err != nil {
		return mapMongoErr(err)
	}
	events.flush(m.hub)
	return nil
}

var mongoOps = map[Op]string{
	Ne:    "$ne",
	Lt:    "$lt",
	Lte:   "$lte",
	Gt:    "$gt",
	Gte:   "$gte",
	In:    "$in",
	NotIn: "$nin",
}

func mongoFilter(conds []Cond) (bson.D, error) {
	filter := bson.D{}
	for _, c := range conds {
		if c.Op == Eq {
			filter = append(filter, bson.E{Key: c.Field, Value: c.Value})
			continue
		}
		op, ok := mongoOps[c.Op]
		if !ok {
			return nil, fmt.Errorf("unsupported operator %q", c.Op)
		}
		filter = append(filter, bson.E{Key: c.Field, Value: bson.M{op: c.Value}})
	}
	return filter, nil
}

func mapMongoErr(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || errors.Is(err, mongo.ErrClientDisconnected) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}
