// Package events maintains the client-side copy of the event collection
// and orchestrates optimistic mutations against the remote gateway.
//
// Consistency decisions, chosen once and tested:
//
//   - Optimistic mutations (visibility, sort order) roll back to the
//     previous value when the gateway call fails.
//   - Mutations on the same event id are serialized with a per-record
//     lock; mutations on different ids proceed independently.
//   - A full reload that completes after a newer reload is discarded.
package events

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/ventureops/eventadmin/internal/apperror"
	"github.com/ventureops/eventadmin/internal/models"
)

// Gateway is the remote API surface the controller depends on.
// Implemented by the gateway client.
type Gateway interface {
	List(ctx context.Context) ([]models.Event, error)
	SetShow(ctx context.Context, id int64, visible bool) error
	Delete(ctx context.Context, id int64) error
	SetSort(ctx context.Context, id int64, sort int) error
	Info(ctx context.Context, id int64) (models.Event, error)
	AddVotes(ctx context.Context, id int64, votes int) error
}

// Controller owns the in-memory event collection, keyed by id. Display
// order is fetch order; the client does not re-sort locally.
type Controller struct {
	gw  Gateway
	log *zap.Logger

	mu      sync.Mutex
	records map[int64]*models.Event
	order   []int64
	loaded  uint64 // generation of the last applied reload

	issueMu sync.Mutex
	issued  uint64 // generation of the last issued reload

	lockMu sync.Mutex
	locks  map[int64]*sync.Mutex
}

// New constructs a Controller over the given gateway. log may be nil.
func New(gw Gateway, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		gw:      gw,
		log:     log,
		records: make(map[int64]*models.Event),
		locks:   make(map[int64]*sync.Mutex),
	}
}

// recordLock returns the mutation lock for id, creating it on first use.
func (c *Controller) recordLock(id int64) *sync.Mutex {
	c.lockMu.Lock()
	defer c.lockMu.Unlock()
	m, ok := c.locks[id]
	if !ok {
		m = &sync.Mutex{}
		c.locks[id] = m
	}
	return m
}

// Load fetches the full list and replaces the collection. On failure the
// prior collection is kept. A response that lands after a newer reload has
// already been applied is discarded, so a stale fetch can never overwrite
// fresher data.
func (c *Controller) Load(ctx context.Context) ([]models.Event, error) {
	c.issueMu.Lock()
	c.issued++
	gen := c.issued
	c.issueMu.Unlock()

	list, err := c.gw.List(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen <= c.loaded {
		c.log.Debug("discarding stale event list", zap.Uint64("generation", gen))
		return c.snapshotLocked(), nil
	}
	c.loaded = gen

	c.records = make(map[int64]*models.Event, len(list))
	c.order = c.order[:0]
	for i := range list {
		ev := list[i]
		if _, dup := c.records[ev.ID]; !dup {
			c.order = append(c.order, ev.ID)
		}
		c.records[ev.ID] = &ev
	}
	return c.snapshotLocked(), nil
}

// Snapshot returns a copy of the collection in display order.
func (c *Controller) Snapshot() []models.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() []models.Event {
	out := make([]models.Event, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.records[id])
	}
	return out
}

// Get returns a copy of the record and whether it exists.
func (c *Controller) Get(id int64) (models.Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.records[id]
	if !ok {
		return models.Event{}, false
	}
	return *rec, true
}

// Len reports the number of records in the collection.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// ToggleVisibility flips the record's visibility optimistically, then
// issues the gateway call with the new value. On failure the flip is
// rolled back, unless a reload has replaced the record in the meantime.
func (c *Controller) ToggleVisibility(ctx context.Context, id int64) error {
	lock := c.recordLock(id)
	lock.Lock()
	defer lock.Unlock()

	c.mu.Lock()
	rec, ok := c.records[id]
	if !ok {
		c.mu.Unlock()
		return apperror.NotFound(id)
	}
	prev := rec.Visible()
	next := !prev
	rec.SetVisible(next)
	gen := c.loaded
	c.mu.Unlock()

	if err := c.gw.SetShow(ctx, id, next); err != nil {
		c.rollbackVisible(id, gen, next, prev)
		return err
	}
	return nil
}

func (c *Controller) rollbackVisible(id int64, gen uint64, applied, prev bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// A reload applied since the optimistic flip already carries server
	// truth; rolling back on top of it would reintroduce stale state.
	if c.loaded != gen {
		return
	}
	if rec, ok := c.records[id]; ok && rec.Visible() == applied {
		rec.SetVisible(prev)
		c.log.Warn("rolled back visibility", zap.Int64("id", id))
	}
}

// Reorder sets the record's sort order optimistically and issues the
// gateway call, rolling back on failure. Negative targets are clamped to
// zero before anything reaches the gateway.
func (c *Controller) Reorder(ctx context.Context, id int64, sort int) error {
	if sort < 0 {
		sort = 0
	}

	lock := c.recordLock(id)
	lock.Lock()
	defer lock.Unlock()

	c.mu.Lock()
	rec, ok := c.records[id]
	if !ok {
		c.mu.Unlock()
		return apperror.NotFound(id)
	}
	prev := rec.SortOrder
	rec.SortOrder = sort
	gen := c.loaded
	c.mu.Unlock()

	if err := c.gw.SetSort(ctx, id, sort); err != nil {
		c.mu.Lock()
		if c.loaded == gen {
			if rec, ok := c.records[id]; ok && rec.SortOrder == sort {
				rec.SortOrder = prev
				c.log.Warn("rolled back sort order", zap.Int64("id", id))
			}
		}
		c.mu.Unlock()
		return err
	}
	return nil
}

// Remove deletes the record server-side first; only on acknowledgment is
// it dropped from the collection. Removal is deliberately not optimistic.
func (c *Controller) Remove(ctx context.Context, id int64) error {
	lock := c.recordLock(id)
	lock.Lock()
	defer lock.Unlock()

	c.mu.Lock()
	if _, ok := c.records[id]; !ok {
		c.mu.Unlock()
		return apperror.NotFound(id)
	}
	c.mu.Unlock()

	if err := c.gw.Delete(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.records, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// AddVotes sends the record's new absolute vote total (current + delta).
// delta must be positive. The local count is deliberately not updated;
// the displayed total changes on the next Load.
func (c *Controller) AddVotes(ctx context.Context, id int64, delta int) error {
	if delta <= 0 {
		return apperror.ValidationFailed("votes", "vote increment must be a positive integer")
	}

	lock := c.recordLock(id)
	lock.Lock()
	defer lock.Unlock()

	c.mu.Lock()
	rec, ok := c.records[id]
	if !ok {
		c.mu.Unlock()
		return apperror.NotFound(id)
	}
	total := rec.Votes + delta
	c.mu.Unlock()

	return c.gw.AddVotes(ctx, id, total)
}

// FetchDetail fetches the full detail of a single event. The result is
// returned to the caller as-is and never merged into the collection, so a
// detail view shows either complete data or an error.
func (c *Controller) FetchDetail(ctx context.Context, id int64) (models.Event, error) {
	return c.gw.Info(ctx, id)
}
