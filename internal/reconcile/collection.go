// Package reconcile keeps a local collection of entities consistent with a
// remote store using optimistic mutations.
//
// Every create, update and delete is applied to the collection before the
// remote call is issued and reconciled after it resolves: success replaces
// the provisional entity with the confirmed one, failure rolls it back.
// Entities carrying a non-settled Status are provisional.
package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/conorfennell/studydeck/internal/domain"
)

// TempIDPrefix marks identifiers assigned locally to entities whose create
// has not been confirmed. Store identifiers never carry it.
const TempIDPrefix = "tmp-"

// ErrDetached is returned for mutations issued after Detach.
var ErrDetached = errors.New("reconcile: collection detached")

// IsTempID reports whether id was assigned by the reconciler.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}

// Status tags an entity whose mutation is in flight.
type Status string

const (
	Settled  Status = ""
	Syncing  Status = "syncing"
	Deleting Status = "deleting"
)

// Entity is implemented by values the collection can hold.
type Entity[T any] interface {
	EntityID() string
	WithEntityID(id string) T
}

// Item is an entity together with its in-flight status.
type Item[T any] struct {
	Value  T
	Status Status
}

// Provisional reports whether the item must not be treated as authoritative.
func (it Item[T]) Provisional() bool { return it.Status != Settled }

// Option configures a Collection.
type Option func(*settings)

type settings struct {
	timeout time.Duration
	logger  *slog.Logger
	tempID  func() string
}

// WithTimeout bounds every remote call. A call that does not resolve in time
// is rolled back with a KindTimeout error and its late result is discarded.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) { s.timeout = d }
}

// WithLogger sets the logger used for rollbacks.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithTempIDs overrides the temporary id generator.
func WithTempIDs(gen func() string) Option {
	return func(s *settings) { s.tempID = gen }
}

// Collection is an ordered set of entities mutated only through Create,
// Update and Delete. At most one mutation per entity may be in flight; an
// overlapping mutation is rejected with KindConflict. It is safe for
// concurrent use.
type Collection[T Entity[T]] struct {
	mu       sync.Mutex
	items    []Item[T]
	inflight map[string]struct{}
	version  uint64
	detached bool
	keep     func(T) bool

	settings
}

// New returns a collection holding items, all settled.
func New[T Entity[T]](items []T, opts ...Option) *Collection[T] {
	c := &Collection[T]{
		inflight: make(map[string]struct{}),
		settings: settings{
			logger: slog.Default(),
			tempID: func() string { return TempIDPrefix + uuid.NewString() },
		},
	}
	for _, opt := range opts {
		opt(&c.settings)
	}
	c.items = settle(items)
	return c
}

// Keep sets a membership filter. A confirmed entity the filter rejects, such
// as a card moved to another project, leaves the collection.
func (c *Collection[T]) Keep(filter func(T) bool) *Collection[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keep = filter
	return c
}

// Reset replaces the contents with freshly fetched items. Mutations still in
// flight reconcile against the new contents.
func (c *Collection[T]) Reset(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = settle(items)
	c.version++
}

// Detach marks the owning view as gone. Mutations resolving afterwards
// leave the collection untouched and new mutations fail with ErrDetached.
func (c *Collection[T]) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detached = true
}

// Items returns a copy of the collection in display order.
func (c *Collection[T]) Items() []Item[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Item[T], len(c.items))
	copy(out, c.items)
	return out
}

// Values returns the entities without their status tags.
func (c *Collection[T]) Values() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	for i, it := range c.items {
		out[i] = it.Value
	}
	return out
}

// Get returns the item with the given id.
func (c *Collection[T]) Get(id string) (Item[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.index(id); i >= 0 {
		return c.items[i], true
	}
	return Item[T]{}, false
}

// Len returns the number of items, provisional ones included.
func (c *Collection[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// InFlight reports whether a mutation for id has not resolved yet.
func (c *Collection[T]) InFlight(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inflight[id]
	return ok
}

// Create inserts v under a temporary id at the head of the collection,
// tagged Syncing, then calls create. On success the provisional entity is
// replaced by the confirmed one; on failure it is removed.
func (c *Collection[T]) Create(ctx context.Context, v T, create func(context.Context, T) (T, error)) (T, error) {
	var zero T
	tempID := c.tempID()

	c.mu.Lock()
	if c.detached {
		c.mu.Unlock()
		return zero, ErrDetached
	}
	provisional := v.WithEntityID(tempID)
	c.items = append([]Item[T]{{Value: provisional, Status: Syncing}}, c.items...)
	c.inflight[tempID] = struct{}{}
	c.version++
	c.mu.Unlock()

	confirmed, err := c.invoke(ctx, func(ctx context.Context) (T, error) {
		return create(ctx, v)
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, tempID)
	if err != nil {
		err = asError(err)
		if !c.detached {
			if i := c.index(tempID); i >= 0 {
				c.removeAt(i)
				c.version++
			}
			c.logger.Warn("Rolled back optimistic create", "temp_id", tempID, "error", err)
		}
		return zero, err
	}
	if !c.detached {
		if i := c.index(tempID); i >= 0 {
			c.settleAt(i, confirmed)
			c.version++
		}
	}
	return confirmed, nil
}

// Update applies apply to the entity immediately, tagged Syncing, then calls
// update with the changed entity. On success the confirmed entity replaces
// it. On failure the collection is restored to its prior snapshot, or only
// the entity when other mutations have resolved in the meantime.
func (c *Collection[T]) Update(ctx context.Context, id string, apply func(T) T, update func(context.Context, T) (T, error)) (T, error) {
	var zero T

	c.mu.Lock()
	if err := c.claim(id); err != nil {
		c.mu.Unlock()
		return zero, err
	}
	i := c.index(id)
	snapshot := make([]Item[T], len(c.items))
	copy(snapshot, c.items)
	prior := c.items[i]
	changed := apply(prior.Value)
	c.items[i] = Item[T]{Value: changed, Status: Syncing}
	c.version++
	applied := c.version
	c.mu.Unlock()

	confirmed, err := c.invoke(ctx, func(ctx context.Context) (T, error) {
		return update(ctx, changed)
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, id)
	if err != nil {
		err = asError(err)
		if !c.detached {
			if c.version == applied {
				c.items = snapshot
			} else if j := c.index(id); j >= 0 {
				c.items[j] = prior
			}
			c.version++
			c.logger.Warn("Rolled back optimistic update", "id", id, "error", err)
		}
		return zero, err
	}
	if !c.detached {
		if j := c.index(id); j >= 0 {
			c.settleAt(j, confirmed)
			c.version++
		}
	}
	return confirmed, nil
}

// Delete tags the entity Deleting, leaving it visible, then calls remove.
// On success the entity leaves the collection; on failure it is restored
// untagged.
func (c *Collection[T]) Delete(ctx context.Context, id string, remove func(context.Context, string) error) error {
	c.mu.Lock()
	if err := c.claim(id); err != nil {
		c.mu.Unlock()
		return err
	}
	i := c.index(id)
	prior := c.items[i]
	c.items[i].Status = Deleting
	c.version++
	c.mu.Unlock()

	_, err := c.invoke(ctx, func(ctx context.Context) (T, error) {
		var zero T
		return zero, remove(ctx, id)
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, id)
	if c.detached {
		return asError(err)
	}
	j := c.index(id)
	if err != nil {
		err = asError(err)
		if j >= 0 {
			c.items[j] = prior
			c.version++
		}
		c.logger.Warn("Rolled back optimistic delete", "id", id, "error", err)
		return err
	}
	if j >= 0 {
		c.removeAt(j)
		c.version++
	}
	return nil
}

// claim marks id in flight. The caller holds c.mu.
func (c *Collection[T]) claim(id string) error {
	if c.detached {
		return ErrDetached
	}
	if _, busy := c.inflight[id]; busy {
		return domain.Errorf(domain.KindConflict, "a change to %s is still in flight", id)
	}
	if c.index(id) < 0 {
		return domain.NotFound("entity", id)
	}
	c.inflight[id] = struct{}{}
	return nil
}

func (c *Collection[T]) invoke(ctx context.Context, call func(context.Context) (T, error)) (T, error) {
	if c.timeout <= 0 {
		return call(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	type outcome struct {
		v   T
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := call(ctx)
		done <- outcome{v, err}
	}()

	select {
	case o := <-done:
		return o.v, o.err
	case <-ctx.Done():
		var zero T
		kind := domain.KindTransient
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			kind = domain.KindTimeout
		}
		return zero, &domain.Error{Kind: kind, Message: "request did not complete", Err: ctx.Err()}
	}
}

func (c *Collection[T]) index(id string) int {
	for i, it := range c.items {
		if it.Value.EntityID() == id {
			return i
		}
	}
	return -1
}

func (c *Collection[T]) removeAt(i int) {
	c.items = append(c.items[:i:i], c.items[i+1:]...)
}

func (c *Collection[T]) settleAt(i int, v T) {
	if c.keep != nil && !c.keep(v) {
		c.removeAt(i)
		return
	}
	c.items[i] = Item[T]{Value: v}
}

func settle[T any](values []T) []Item[T] {
	items := make([]Item[T], len(values))
	for i, v := range values {
		items[i] = Item[T]{Value: v}
	}
	return items
}

// asError converts err into a *domain.Error so callers can always branch
// on its kind.
func asError(err error) error {
	if err == nil {
		return nil
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	return &domain.Error{Kind: domain.KindOf(err), Message: "request failed", Err: err}
}
