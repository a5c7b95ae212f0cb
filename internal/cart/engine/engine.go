// Package engine keeps the in-memory cart, the durable local slot, and
// the backend cart in agreement.
//
// Mutations apply locally first and persist to the slot before any
// network traffic, so the panel stays responsive and a crash never
// loses the cart. The matching remote write runs in the background;
// when it confirms, the server's view of the cart replaces the local
// one. Responses from writes that were superseded by a newer mutation
// are discarded, so a slow early response can never roll the cart back.
package engine

import (
	"context"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/panelkit/dealerpanel/internal/cart"
	"github.com/panelkit/dealerpanel/internal/cart/storage"
	apperrors "github.com/panelkit/dealerpanel/internal/platform/errors"
)

// RemoteCart is the backend cart resource. Every call returns the
// server's resulting cart so the engine can adopt it on success.
type RemoteCart interface {
	Fetch(ctx context.Context) (cart.ServerState, error)
	AddItem(ctx context.Context, item cart.Item) (cart.ServerState, error)
	UpdateQuantity(ctx context.Context, stockNo string, quantity int) (cart.ServerState, error)
	RemoveItem(ctx context.Context, stockNo string) (cart.ServerState, error)
	Clear(ctx context.Context) (cart.ServerState, error)
	Sync(ctx context.Context, items []cart.Item) (cart.ServerState, error)
}

// CredentialSource tells the engine who owns the cart right now. An
// empty token means guest mode: mutations stay local and nothing is
// sent to the backend.
type CredentialSource interface {
	Token() string
	Username() string
}

// Snapshot is an immutable view of the cart handed to listeners and
// readers. Items is a fresh slice on every snapshot.
type Snapshot struct {
	Items         []cart.Item
	ItemCount     int
	TotalQuantity int
	TotalPrice    float64
	LastSyncedAt  *time.Time
	Loading       bool
	Syncing       bool
}

// Engine owns the cart state for the lifetime of the process.
type Engine struct {
	store  storage.SlotStore
	remote RemoteCart
	creds  CredentialSource
	tracer trace.Tracer

	mu           sync.Mutex
	items        []cart.Item
	lastSyncedAt *time.Time
	loading      bool
	syncing      bool

	// seq orders mutations; appliedSeq is the newest mutation whose
	// server response has been adopted. Only the response for the latest
	// mutation is adopted; anything older was superseded and is dropped.
	seq        uint64
	appliedSeq uint64

	listeners  map[int]func(Snapshot)
	listenerID int

	// saveMu serializes durable slot writes. Each write snapshots the
	// state at write time, so a slow earlier write can never land a
	// stale item list over a newer one.
	saveMu sync.Mutex

	pending sync.WaitGroup
}

// New creates an engine over the given slot store, backend gateway,
// and credential source. Call LoadLocal before serving reads.
func New(store storage.SlotStore, remote RemoteCart, creds CredentialSource) *Engine {
	return &Engine{
		store:     store,
		remote:    remote,
		creds:     creds,
		tracer:    otel.Tracer("dealerpanel/cart"),
		items:     []cart.Item{},
		loading:   true,
		listeners: map[int]func(Snapshot){},
	}
}

// LoadLocal hydrates the cart from the current user's slot. A missing
// slot hydrates the empty cart. Storage failures are reported but leave
// the engine usable with an empty cart.
func (e *Engine) LoadLocal(ctx context.Context) error {
	username := e.creds.Username()
	slot, ok, err := e.store.LoadSlot(ctx, username)

	e.mu.Lock()
	e.loading = false
	if ok {
		e.items = cart.Normalize(slot.Items)
		e.lastSyncedAt = slot.LastSyncedAt
	} else {
		e.items = []cart.Item{}
		e.lastSyncedAt = nil
	}
	e.mu.Unlock()
	e.notify()

	if err != nil {
		return apperrors.Wrap(apperrors.CodeCartStorageFailed, "load cart slot", err)
	}
	return nil
}

// AddItem merges one line into the cart. The merged cart is visible and
// persisted before the remote write is attempted.
func (e *Engine) AddItem(ctx context.Context, item cart.Item) error {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	if err := item.Validate(); err != nil {
		return apperrors.Wrap(apperrors.CodeCartItemInvalid, "add to cart", err)
	}
	e.mutate(ctx,
		func(items []cart.Item) []cart.Item { return cart.Merge(items, item) },
		func(ctx context.Context) (cart.ServerState, error) { return e.remote.AddItem(ctx, item) },
	)
	return nil
}

// UpdateQuantity replaces one line's quantity. Zero or negative removes
// the line; the backend is told to remove it as well.
func (e *Engine) UpdateQuantity(ctx context.Context, stockNo string, quantity int) error {
	if quantity <= 0 {
		return e.RemoveItem(ctx, stockNo)
	}
	e.mutate(ctx,
		func(items []cart.Item) []cart.Item { return cart.SetQuantity(items, stockNo, quantity) },
		func(ctx context.Context) (cart.ServerState, error) {
			return e.remote.UpdateQuantity(ctx, stockNo, quantity)
		},
	)
	return nil
}

// RemoveItem drops one line. Removing a missing line is a no-op locally
// and still confirmed remotely so both sides converge.
func (e *Engine) RemoveItem(ctx context.Context, stockNo string) error {
	e.mutate(ctx,
		func(items []cart.Item) []cart.Item { return cart.Remove(items, stockNo) },
		func(ctx context.Context) (cart.ServerState, error) { return e.remote.RemoveItem(ctx, stockNo) },
	)
	return nil
}

// Clear empties the cart on both sides.
func (e *Engine) Clear(ctx context.Context) error {
	e.mutate(ctx,
		func([]cart.Item) []cart.Item { return []cart.Item{} },
		func(ctx context.Context) (cart.ServerState, error) { return e.remote.Clear(ctx) },
	)
	return nil
}

// mutate applies a local transition, persists it, and schedules the
// matching remote write when a token is present.
func (e *Engine) mutate(ctx context.Context, apply func([]cart.Item) []cart.Item, push func(context.Context) (cart.ServerState, error)) {
	username := e.creds.Username()
	authenticated := e.creds.Token() != ""

	e.mu.Lock()
	e.items = apply(e.items)
	e.seq++
	seq := e.seq
	e.mu.Unlock()
	e.notify()

	e.persist(ctx, username)
	if !authenticated {
		return
	}

	// The remote write outlives the caller's request scope on purpose:
	// an optimistic UI must not cancel a confirmation mid-flight.
	bg := context.WithoutCancel(ctx)
	e.pending.Add(1)
	go func() {
		defer e.pending.Done()
		e.confirm(bg, username, seq, push)
	}()
}

// confirm runs one remote write and adopts its response unless a newer
// mutation has been confirmed in the meantime.
func (e *Engine) confirm(ctx context.Context, username string, seq uint64, push func(context.Context) (cart.ServerState, error)) {
	ctx, span := e.tracer.Start(ctx, "cart.remote_write",
		trace.WithAttributes(attribute.Int64("cart.seq", int64(seq))))
	defer span.End()

	state, err := push(ctx)
	if err != nil {
		// Local state stands; the next sync pass reconciles.
		log.Printf("[CART] remote write (seq %d): %v", seq, err)
		return
	}

	e.mu.Lock()
	if seq != e.seq || seq <= e.appliedSeq {
		e.mu.Unlock()
		log.Printf("[CART] remote write (seq %d): stale response discarded", seq)
		return
	}
	e.appliedSeq = seq
	e.adoptLocked(state)
	e.mu.Unlock()
	e.notify()

	e.persist(ctx, username)
}

// SyncWithServer reconciles the local cart with the backend. It runs on
// login and whenever connectivity returns.
//
// A non-empty server cart wins outright. When the server cart is empty
// and local lines exist, the local lines are pushed for a server-side
// merge and the merged result is adopted. On any remote failure the
// engine falls back to the durable slot and keeps working locally.
func (e *Engine) SyncWithServer(ctx context.Context) error {
	if e.creds.Token() == "" {
		return e.LoadLocal(ctx)
	}

	ctx, span := e.tracer.Start(ctx, "cart.sync")
	defer span.End()

	username := e.creds.Username()

	// Hydrate from the current user's durable slot before deciding
	// anything: after a sign-in the in-memory cart still belongs to the
	// previous namespace, and the push decision below must see the
	// user's own offline cart.
	if err := e.LoadLocal(ctx); err != nil {
		log.Printf("[CART] load slot before sync for %q: %v", storage.SlotKey(username), err)
	}

	e.mu.Lock()
	e.syncing = true
	local := cart.Clone(e.items)
	e.mu.Unlock()
	e.notify()

	state, err := e.remote.Fetch(ctx)
	if err == nil && len(state.Items) == 0 && len(local) > 0 {
		state, err = e.remote.Sync(ctx, local)
	}

	if err != nil {
		log.Printf("[CART] sync with server for %q: %v", storage.SlotKey(username), err)
		e.mu.Lock()
		e.syncing = false
		e.mu.Unlock()
		if loadErr := e.LoadLocal(ctx); loadErr != nil {
			return loadErr
		}
		return apperrors.Wrap(apperrors.CodeAPIRequestFailed, "sync cart with server", err)
	}

	e.mu.Lock()
	e.seq++
	e.appliedSeq = e.seq
	e.adoptLocked(state)
	e.syncing = false
	e.mu.Unlock()
	e.notify()

	e.persist(ctx, username)
	return nil
}

// HandleConnectivityChange is called when the network state flips.
// Coming back online triggers a reconciliation pass; going offline is
// silent because mutations already degrade to local-only.
func (e *Engine) HandleConnectivityChange(ctx context.Context, online bool) error {
	if !online {
		log.Printf("[CART] offline; mutations stay local")
		return nil
	}
	return e.SyncWithServer(ctx)
}

// HandleLogout empties the in-memory cart and rehydrates from the now
// current (guest) slot. The departing user's slot is left untouched so
// the cart is waiting for them at the next sign-in.
func (e *Engine) HandleLogout(ctx context.Context) error {
	e.pending.Wait()

	e.mu.Lock()
	e.items = []cart.Item{}
	e.lastSyncedAt = nil
	e.seq++
	e.appliedSeq = e.seq
	e.mu.Unlock()
	e.notify()

	return e.LoadLocal(ctx)
}

// Subscribe registers a listener invoked with a fresh snapshot after
// every state change. The returned function removes the listener.
func (e *Engine) Subscribe(fn func(Snapshot)) func() {
	e.mu.Lock()
	e.listenerID++
	id := e.listenerID
	e.listeners[id] = fn
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.listeners, id)
		e.mu.Unlock()
	}
}

// Snapshot returns the current cart view.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Wait blocks until every in-flight background remote write has
// finished. The CLI calls this before exiting.
func (e *Engine) Wait() {
	e.pending.Wait()
}

// adoptLocked replaces the cart with the server's view. The timestamp
// is stored exactly as the server reported it; a missing one stays nil
// rather than being invented locally.
func (e *Engine) adoptLocked(state cart.ServerState) {
	e.items = cart.Normalize(state.Items)
	e.lastSyncedAt = state.LastSyncedAt
}

// persist writes the current state to the user's durable slot. Writes
// are serialized and snapshot the state under the lock at write time,
// so the slot always converges on the newest in-memory state. Failures
// are logged only; persistence must never interrupt a mutation.
func (e *Engine) persist(ctx context.Context, username string) {
	e.saveMu.Lock()
	defer e.saveMu.Unlock()

	e.mu.Lock()
	slot := e.slotLocked(username)
	e.mu.Unlock()

	if err := e.store.SaveSlot(ctx, username, slot); err != nil {
		log.Printf("[CART] save slot for %q: %v", storage.SlotKey(username), err)
	}
}

func (e *Engine) slotLocked(username string) storage.Slot {
	return storage.Slot{
		Items:        cart.Clone(e.items),
		UserID:       username,
		LastSyncedAt: e.lastSyncedAt,
	}
}

func (e *Engine) snapshotLocked() Snapshot {
	return Snapshot{
		Items:         cart.Clone(e.items),
		ItemCount:     len(e.items),
		TotalQuantity: cart.TotalQuantity(e.items),
		TotalPrice:    cart.TotalPrice(e.items),
		LastSyncedAt:  e.lastSyncedAt,
		Loading:       e.loading,
		Syncing:       e.syncing,
	}
}

func (e *Engine) notify() {
	e.mu.Lock()
	snapshot := e.snapshotLocked()
	fns := make([]func(Snapshot), 0, len(e.listeners))
	for _, fn := range e.listeners {
		fns = append(fns, fn)
	}
	e.mu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}
