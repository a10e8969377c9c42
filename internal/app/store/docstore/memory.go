// internal/app/store/docstore/memory.go
package docstore

import (
	"context"
	"slices"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// Memory is an in-process Backend. Documents are kept bson-encoded so they
// round-trip exactly as they would through MongoDB.
type Memory struct {
	mu    sync.RWMutex
	colls map[string]*memColl

	// txMu serialises units of work.
	txMu sync.Mutex
	hub  *Hub
}

type memColl struct {
	docs  map[string]bson.Raw
	order []string
}

type memTxKey struct{}

// memUndo is the pre-image of one document write. prev is nil when the
// document did not exist; pos is its place in insertion order.
type memUndo struct {
	coll string
	id   string
	prev bson.Raw
	pos  int
}

// memTx is the undo log of a unit of work. Only the documents it wrote are
// restored on rollback, so writes committed outside it survive.
type memTx struct {
	undo []memUndo
}

// NewMemory creates an empty in-memory backend.
func NewMemory(logger *zap.Logger) *Memory {
	return &Memory{
		colls: make(map[string]*memColl),
		hub:   NewHub(logger, 0),
	}
}

func (m *Memory) Hub() *Hub { return m.hub }

func (m *Memory) Ping(ctx context.Context) error { return ctx.Err() }

func (m *Memory) Close(ctx context.Context) error {
	m.hub.Close()
	return nil
}

// coll returns the collection, creating it. Caller holds m.mu for writing.
func (m *Memory) coll(name string) *memColl {
	c, ok := m.colls[name]
	if !ok {
		c = &memColl{docs: make(map[string]bson.Raw)}
		m.colls[name] = c
	}
	return c
}

// record logs the pre-image of coll/id before a write. Caller holds m.mu
// for writing.
func (m *Memory) record(ctx context.Context, c *memColl, coll, id string) {
	tx, ok := ctx.Value(memTxKey{}).(*memTx)
	if !ok {
		return
	}
	u := memUndo{coll: coll, id: id, prev: c.docs[id], pos: slices.Index(c.order, id)}
	tx.undo = append(tx.undo, u)
}

// rollback applies tx's undo log in reverse.
func (m *Memory) rollback(tx *memTx) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(tx.undo) - 1; i >= 0; i-- {
		u := tx.undo[i]
		c := m.coll(u.coll)
		if u.prev == nil {
			delete(c.docs, u.id)
			c.order = slices.DeleteFunc(c.order, func(s string) bool { return s == u.id })
			continue
		}
		if _, exists := c.docs[u.id]; !exists {
			pos := min(max(u.pos, 0), len(c.order))
			c.order = slices.Insert(c.order, pos, u.id)
		}
		c.docs[u.id] = u.prev
	}
}

func (m *Memory) Get(ctx context.Context, coll, id string) (Raw, error) {
	if err := ctx.Err(); err != nil {
		return Raw{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.colls[coll]
	if !ok {
		return Raw{}, ErrNotFound
	}
	data, ok := c.docs[id]
	if !ok {
		return Raw{}, ErrNotFound
	}
	return newRaw(id, data), nil
}

func (m *Memory) Create(ctx context.Context, coll, id string, doc any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, _, err := encode(doc)
	if err != nil {
		return err
	}
	m.mu.Lock()
	c := m.coll(coll)
	if _, exists := c.docs[id]; exists {
		m.mu.Unlock()
		return ErrExists
	}
	m.record(ctx, c, coll, id)
	c.docs[id] = data
	c.order = append(c.order, id)
	m.mu.Unlock()

	emit(ctx, m.hub, Event{Type: EventCreated, Collection: coll, ID: id, Data: data})
	return nil
}

func (m *Memory) Replace(ctx context.Context, coll, id string, doc any, expectVersion int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, next, err := encode(doc)
	if err != nil {
		return err
	}
	if err := checkAdvance(coll, id, next, expectVersion); err != nil {
		return err
	}
	m.mu.Lock()
	c := m.coll(coll)
	cur, exists := c.docs[id]
	if !exists {
		m.mu.Unlock()
		return ErrNotFound
	}
	if versionOf(cur) != expectVersion {
		m.mu.Unlock()
		return ErrConflict
	}
	m.record(ctx, c, coll, id)
	c.docs[id] = data
	m.mu.Unlock()

	emit(ctx, m.hub, Event{Type: EventUpdated, Collection: coll, ID: id, Data: data})
	return nil
}

func (m *Memory) Delete(ctx context.Context, coll, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	c := m.coll(coll)
	if _, exists := c.docs[id]; !exists {
		m.mu.Unlock()
		return ErrNotFound
	}
	m.record(ctx, c, coll, id)
	delete(c.docs, id)
	c.order = slices.DeleteFunc(c.order, func(s string) bool { return s == id })
	m.mu.Unlock()

	emit(ctx, m.hub, Event{Type: EventDeleted, Collection: coll, ID: id})
	return nil
}

func (m *Memory) Find(ctx context.Context, coll string, q Query) ([]Raw, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	c, ok := m.colls[coll]
	if !ok {
		m.mu.RUnlock()
		return []Raw{}, nil
	}
	raws := make([]Raw, 0, len(c.order))
	for _, id := range c.order {
		raws = append(raws, newRaw(id, c.docs[id]))
	}
	m.mu.RUnlock()
	return q.apply(raws)
}

// WithTx runs fn exclusively against other units of work and undoes the
// writes fn made if it fails.
func (m *Memory) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, inTx := ctx.Value(memTxKey{}).(*memTx); inTx {
		return fn(ctx)
	}
	m.txMu.Lock()
	defer m.txMu.Unlock()

	tx := &memTx{}
	txCtx, events := withPending(context.WithValue(ctx, memTxKey{}, tx))

	if err := fn(txCtx); err != nil {
		m.rollback(tx)
		return err
	}
	events.flush(m.hub)
	return nil
}

// Len returns the number of documents in coll. Used by tests.
func (m *Memory) Len(coll string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.colls[coll]; ok {
		return len(c.docs)
	}
	return 0
}
