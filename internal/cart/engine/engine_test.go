package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/panelkit/dealerpanel/internal/cart"
	"github.com/panelkit/dealerpanel/internal/cart/storage"
	apperrors "github.com/panelkit/dealerpanel/internal/platform/errors"
)

type memStore struct {
	mu      sync.Mutex
	slots   map[string]storage.Slot
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{slots: map[string]storage.Slot{}}
}

func (m *memStore) LoadSlot(_ context.Context, userID string) (storage.Slot, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	slot, ok := m.slots[storage.SlotKey(userID)]
	return slot, ok, nil
}

func (m *memStore) SaveSlot(_ context.Context, userID string, slot storage.Slot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.slots[storage.SlotKey(userID)] = slot
	return nil
}

func (m *memStore) Close() error { return nil }

func (m *memStore) slot(t *testing.T, username string) storage.Slot {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	slot, ok := m.slots[storage.SlotKey(username)]
	if !ok {
		t.Fatalf("no slot for %q", username)
	}
	return slot
}

// fakeRemote answers each call with the configured function, or an
// error when the test did not expect that call.
type fakeRemote struct {
	mu    sync.Mutex
	calls []string

	fetch          func(context.Context) (cart.ServerState, error)
	addItem        func(context.Context, cart.Item) (cart.ServerState, error)
	updateQuantity func(context.Context, string, int) (cart.ServerState, error)
	removeItem     func(context.Context, string) (cart.ServerState, error)
	clear          func(context.Context) (cart.ServerState, error)
	sync           func(context.Context, []cart.Item) (cart.ServerState, error)
}

func (f *fakeRemote) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeRemote) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeRemote) Fetch(ctx context.Context) (cart.ServerState, error) {
	f.record("fetch")
	if f.fetch == nil {
		return cart.ServerState{}, errors.New("unexpected fetch")
	}
	return f.fetch(ctx)
}

func (f *fakeRemote) AddItem(ctx context.Context, item cart.Item) (cart.ServerState, error) {
	f.record("add")
	if f.addItem == nil {
		return cart.ServerState{}, errors.New("unexpected add")
	}
	return f.addItem(ctx, item)
}

func (f *fakeRemote) UpdateQuantity(ctx context.Context, stockNo string, quantity int) (cart.ServerState, error) {
	f.record("update")
	if f.updateQuantity == nil {
		return cart.ServerState{}, errors.New("unexpected update")
	}
	return f.updateQuantity(ctx, stockNo, quantity)
}

func (f *fakeRemote) RemoveItem(ctx context.Context, stockNo string) (cart.ServerState, error) {
	f.record("remove")
	if f.removeItem == nil {
		return cart.ServerState{}, errors.New("unexpected remove")
	}
	return f.removeItem(ctx, stockNo)
}

func (f *fakeRemote) Clear(ctx context.Context) (cart.ServerState, error) {
	f.record("clear")
	if f.clear == nil {
		return cart.ServerState{}, errors.New("unexpected clear")
	}
	return f.clear(ctx)
}

func (f *fakeRemote) Sync(ctx context.Context, items []cart.Item) (cart.ServerState, error) {
	f.record("sync")
	if f.sync == nil {
		return cart.ServerState{}, errors.New("unexpected sync")
	}
	return f.sync(ctx, items)
}

type fakeCreds struct {
	mu       sync.Mutex
	token    string
	username string
}

func (f *fakeCreds) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeCreds) Username() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.username
}

func (f *fakeCreds) set(token, username string) {
	f.mu.Lock()
	f.token = token
	f.username = username
	f.mu.Unlock()
}

func item(stockNo string, quantity int) cart.Item {
	return cart.Item{StockNo: stockNo, Name: "Ürün " + stockNo, Price: 10, Quantity: quantity}
}

func stockNos(items []cart.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.StockNo
	}
	return out
}

func TestMutationIsOptimisticAndDurable(t *testing.T) {
	store := newMemStore()
	remote := &fakeRemote{
		addItem: func(context.Context, cart.Item) (cart.ServerState, error) {
			return cart.ServerState{}, errors.New("backend down")
		},
	}
	creds := &fakeCreds{token: "tok", username: "bayi1"}
	eng := New(store, remote, creds)

	if err := eng.AddItem(context.Background(), item("1001", 2)); err != nil {
		t.Fatalf("add item: %v", err)
	}

	// The line is visible before any remote confirmation.
	snap := eng.Snapshot()
	if snap.TotalQuantity != 2 || snap.ItemCount != 1 {
		t.Fatalf("snapshot = %+v, want one line with quantity 2", snap)
	}

	eng.Wait()

	// The remote write failed; the optimistic state stands.
	snap = eng.Snapshot()
	if snap.TotalQuantity != 2 {
		t.Fatalf("quantity after failed remote write = %d, want 2", snap.TotalQuantity)
	}
	if snap.TotalPrice != 20 {
		t.Fatalf("total after failed remote write = %.2f, want 20.00", snap.TotalPrice)
	}

	slot := store.slot(t, "bayi1")
	if len(slot.Items) != 1 || slot.Items[0].StockNo != "1001" {
		t.Fatalf("slot items = %v, want [1001]", stockNos(slot.Items))
	}
}

func TestRemoteConfirmationAdopted(t *testing.T) {
	syncedAt := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	store := newMemStore()
	remote := &fakeRemote{
		addItem: func(_ context.Context, it cart.Item) (cart.ServerState, error) {
			// The server merges with a line the panel has not seen yet.
			return cart.ServerState{
				Items:        []cart.Item{item(it.StockNo, it.Quantity), item("2002", 1)},
				LastSyncedAt: &syncedAt,
			}, nil
		},
	}
	creds := &fakeCreds{token: "tok", username: "bayi1"}
	eng := New(store, remote, creds)

	if err := eng.AddItem(context.Background(), item("1001", 2)); err != nil {
		t.Fatalf("add item: %v", err)
	}
	eng.Wait()

	snap := eng.Snapshot()
	if snap.ItemCount != 2 {
		t.Fatalf("items = %v, want server's merged pair", stockNos(snap.Items))
	}
	if snap.LastSyncedAt == nil || !snap.LastSyncedAt.Equal(syncedAt) {
		t.Fatalf("lastSyncedAt = %v, want %v", snap.LastSyncedAt, syncedAt)
	}

	slot := store.slot(t, "bayi1")
	if len(slot.Items) != 2 {
		t.Fatalf("slot items = %v, want server's merged pair", stockNos(slot.Items))
	}
}

func TestSupersededResponseDiscarded(t *testing.T) {
	release := make(chan struct{})
	store := newMemStore()
	remote := &fakeRemote{
		addItem: func(_ context.Context, it cart.Item) (cart.ServerState, error) {
			if it.StockNo == "1001" {
				<-release
				// A slow, outdated view of the cart.
				return cart.ServerState{Items: []cart.Item{item("1001", 99)}}, nil
			}
			return cart.ServerState{}, errors.New("backend down")
		},
	}
	creds := &fakeCreds{token: "tok", username: "bayi1"}
	eng := New(store, remote, creds)

	ctx := context.Background()
	if err := eng.AddItem(ctx, item("1001", 1)); err != nil {
		t.Fatalf("add first item: %v", err)
	}
	if err := eng.AddItem(ctx, item("2002", 1)); err != nil {
		t.Fatalf("add second item: %v", err)
	}
	close(release)
	eng.Wait()

	// The first write's response arrived after a newer mutation and must
	// not roll the cart back to a single line.
	snap := eng.Snapshot()
	if snap.ItemCount != 2 || snap.TotalQuantity != 2 {
		t.Fatalf("items = %v (total %d), want both optimistic lines", stockNos(snap.Items), snap.TotalQuantity)
	}
}

// hookedStore lets a test intercept slot writes.
type hookedStore struct {
	*memStore
	beforeSave func(slot storage.Slot)
}

func (h *hookedStore) SaveSlot(ctx context.Context, userID string, slot storage.Slot) error {
	if h.beforeSave != nil {
		h.beforeSave(slot)
	}
	return h.memStore.SaveSlot(ctx, userID, slot)
}

func TestSlowConfirmationCannotRegressSlot(t *testing.T) {
	blocked := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	store := &hookedStore{memStore: newMemStore()}
	store.beforeSave = func(slot storage.Slot) {
		// Stall the write of the first confirmed state while a newer
		// mutation races it.
		if len(slot.Items) == 1 && slot.Items[0].Name == "confirmed" {
			once.Do(func() {
				close(blocked)
				<-release
			})
		}
	}
	remote := &fakeRemote{
		addItem: func(_ context.Context, it cart.Item) (cart.ServerState, error) {
			if it.StockNo == "1001" {
				return cart.ServerState{Items: []cart.Item{{StockNo: "1001", Name: "confirmed", Quantity: 1}}}, nil
			}
			return cart.ServerState{}, errors.New("backend down")
		},
	}
	creds := &fakeCreds{token: "tok", username: "bayi1"}
	eng := New(store, remote, creds)

	ctx := context.Background()
	if err := eng.AddItem(ctx, item("1001", 1)); err != nil {
		t.Fatalf("add first item: %v", err)
	}
	<-blocked

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := eng.AddItem(ctx, item("2002", 1)); err != nil {
			t.Errorf("add second item: %v", err)
		}
	}()
	close(release)
	<-done
	eng.Wait()

	// The durable slot must end on the newest state, never on the
	// stalled earlier write.
	snap := eng.Snapshot()
	slot := store.slot(t, "bayi1")
	if len(slot.Items) != snap.ItemCount {
		t.Fatalf("slot items = %v, memory = %v", stockNos(slot.Items), stockNos(snap.Items))
	}
	found := false
	for _, it := range slot.Items {
		if it.StockNo == "2002" {
			found = true
		}
	}
	if !found {
		t.Fatalf("slot items = %v, newest line 2002 lost to a stale write", stockNos(slot.Items))
	}
}

func TestAdoptionKeepsServerTimestampAsReported(t *testing.T) {
	store := newMemStore()
	remote := &fakeRemote{
		fetch: func(context.Context) (cart.ServerState, error) {
			// Server omits the timestamp; nothing may be invented.
			return cart.ServerState{Items: []cart.Item{item("9001", 1)}}, nil
		},
	}
	creds := &fakeCreds{token: "tok", username: "bayi1"}
	eng := New(store, remote, creds)

	if err := eng.SyncWithServer(context.Background()); err != nil {
		t.Fatalf("sync: %v", err)
	}
	snap := eng.Snapshot()
	if snap.LastSyncedAt != nil {
		t.Fatalf("lastSyncedAt = %v, want nil when the server reports none", snap.LastSyncedAt)
	}
	slot := store.slot(t, "bayi1")
	if slot.LastSyncedAt != nil {
		t.Fatalf("persisted lastSyncedAt = %v, want nil", slot.LastSyncedAt)
	}
}

func TestSyncServerCartWins(t *testing.T) {
	syncedAt := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	store := newMemStore()
	remote := &fakeRemote{
		fetch: func(context.Context) (cart.ServerState, error) {
			return cart.ServerState{Items: []cart.Item{item("9001", 3)}, LastSyncedAt: &syncedAt}, nil
		},
		addItem: func(_ context.Context, it cart.Item) (cart.ServerState, error) {
			return cart.ServerState{Items: []cart.Item{it}}, nil
		},
	}
	creds := &fakeCreds{token: "tok", username: "bayi1"}
	eng := New(store, remote, creds)

	ctx := context.Background()
	if err := eng.AddItem(ctx, item("1001", 1)); err != nil {
		t.Fatalf("add item: %v", err)
	}
	eng.Wait()

	if err := eng.SyncWithServer(ctx); err != nil {
		t.Fatalf("sync: %v", err)
	}

	snap := eng.Snapshot()
	if snap.ItemCount != 1 || snap.Items[0].StockNo != "9001" {
		t.Fatalf("items = %v, want server cart [9001]", stockNos(snap.Items))
	}
	if snap.Syncing {
		t.Fatal("syncing flag still set after sync")
	}

	slot := store.slot(t, "bayi1")
	if len(slot.Items) != 1 || slot.Items[0].StockNo != "9001" {
		t.Fatalf("slot items = %v, want server cart", stockNos(slot.Items))
	}
}

func TestSyncPushesLocalWhenServerEmpty(t *testing.T) {
	syncedAt := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	store := newMemStore()
	var pushed []cart.Item
	remote := &fakeRemote{
		fetch: func(context.Context) (cart.ServerState, error) {
			return cart.ServerState{Items: []cart.Item{}}, nil
		},
		sync: func(_ context.Context, items []cart.Item) (cart.ServerState, error) {
			pushed = cart.Clone(items)
			return cart.ServerState{Items: items, LastSyncedAt: &syncedAt}, nil
		},
		addItem: func(_ context.Context, it cart.Item) (cart.ServerState, error) {
			return cart.ServerState{Items: []cart.Item{it}}, nil
		},
	}
	creds := &fakeCreds{token: "tok", username: "bayi1"}
	eng := New(store, remote, creds)

	ctx := context.Background()
	if err := eng.AddItem(ctx, item("1001", 2)); err != nil {
		t.Fatalf("add item: %v", err)
	}
	eng.Wait()

	if err := eng.SyncWithServer(ctx); err != nil {
		t.Fatalf("sync: %v", err)
	}

	if len(pushed) != 1 || pushed[0].StockNo != "1001" {
		t.Fatalf("pushed items = %v, want local cart [1001]", stockNos(pushed))
	}
	snap := eng.Snapshot()
	if snap.ItemCount != 1 || snap.Items[0].StockNo != "1001" {
		t.Fatalf("items = %v, want merged cart", stockNos(snap.Items))
	}
	if snap.LastSyncedAt == nil || !snap.LastSyncedAt.Equal(syncedAt) {
		t.Fatalf("lastSyncedAt = %v, want server's %v", snap.LastSyncedAt, syncedAt)
	}
}

func TestSyncLoadsUserSlotAfterSignIn(t *testing.T) {
	store := newMemStore()
	store.slots[storage.SlotKey("bayi1")] = storage.Slot{
		Items:  []cart.Item{item("7007", 4)},
		UserID: "bayi1",
	}
	var pushed []cart.Item
	remote := &fakeRemote{
		fetch: func(context.Context) (cart.ServerState, error) {
			return cart.ServerState{Items: []cart.Item{}}, nil
		},
		sync: func(_ context.Context, items []cart.Item) (cart.ServerState, error) {
			pushed = cart.Clone(items)
			return cart.ServerState{Items: items}, nil
		},
	}
	creds := &fakeCreds{} // guest until sign-in
	eng := New(store, remote, creds)

	ctx := context.Background()
	if err := eng.LoadLocal(ctx); err != nil {
		t.Fatalf("load guest slot: %v", err)
	}
	if snap := eng.Snapshot(); snap.ItemCount != 0 {
		t.Fatalf("guest cart = %v, want empty", stockNos(snap.Items))
	}

	// Signing in switches the slot namespace; the sync pass must
	// reconcile the user's own offline cart, not the guest leftovers.
	creds.set("tok", "bayi1")
	if err := eng.SyncWithServer(ctx); err != nil {
		t.Fatalf("sync: %v", err)
	}

	if len(pushed) != 1 || pushed[0].StockNo != "7007" {
		t.Fatalf("pushed items = %v, want the user's offline cart [7007]", stockNos(pushed))
	}
	snap := eng.Snapshot()
	if snap.ItemCount != 1 || snap.Items[0].StockNo != "7007" {
		t.Fatalf("items = %v, want [7007]", stockNos(snap.Items))
	}
	slot := store.slot(t, "bayi1")
	if len(slot.Items) != 1 || slot.Items[0].StockNo != "7007" {
		t.Fatalf("slot items = %v, offline cart was overwritten", stockNos(slot.Items))
	}
}

func TestSyncFallsBackToSlotOnFailure(t *testing.T) {
	store := newMemStore()
	store.slots[storage.SlotKey("bayi1")] = storage.Slot{
		Items:  []cart.Item{item("7007", 4)},
		UserID: "bayi1",
	}
	remote := &fakeRemote{
		fetch: func(context.Context) (cart.ServerState, error) {
			return cart.ServerState{}, errors.New("backend down")
		},
	}
	creds := &fakeCreds{token: "tok", username: "bayi1"}
	eng := New(store, remote, creds)

	err := eng.SyncWithServer(context.Background())
	if err == nil {
		t.Fatal("sync succeeded against a down backend")
	}
	if apperrors.CodeOf(err) != apperrors.CodeAPIRequestFailed {
		t.Fatalf("error code = %v, want %v", apperrors.CodeOf(err), apperrors.CodeAPIRequestFailed)
	}

	snap := eng.Snapshot()
	if snap.ItemCount != 1 || snap.Items[0].StockNo != "7007" {
		t.Fatalf("items = %v, want slot contents [7007]", stockNos(snap.Items))
	}
	if snap.Syncing {
		t.Fatal("syncing flag still set after failed sync")
	}
}

func TestGuestMutationsStayLocal(t *testing.T) {
	store := newMemStore()
	remote := &fakeRemote{}
	creds := &fakeCreds{} // no token, no user
	eng := New(store, remote, creds)

	ctx := context.Background()
	if err := eng.AddItem(ctx, item("1001", 1)); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if err := eng.SyncWithServer(ctx); err != nil {
		t.Fatalf("guest sync: %v", err)
	}
	eng.Wait()

	if n := remote.callCount(); n != 0 {
		t.Fatalf("remote calls = %d, want none for a guest", n)
	}
	slot := store.slot(t, "")
	if len(slot.Items) != 1 {
		t.Fatalf("guest slot items = %v, want [1001]", stockNos(slot.Items))
	}
}

func TestLogoutKeepsUserSlot(t *testing.T) {
	store := newMemStore()
	remote := &fakeRemote{
		addItem: func(_ context.Context, it cart.Item) (cart.ServerState, error) {
			return cart.ServerState{Items: []cart.Item{it}}, nil
		},
	}
	creds := &fakeCreds{token: "tok", username: "bayi1"}
	eng := New(store, remote, creds)

	ctx := context.Background()
	if err := eng.AddItem(ctx, item("1001", 2)); err != nil {
		t.Fatalf("add item: %v", err)
	}
	eng.Wait()

	creds.set("", "")
	if err := eng.HandleLogout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if snap := eng.Snapshot(); snap.ItemCount != 0 {
		t.Fatalf("items after logout = %v, want empty guest cart", stockNos(snap.Items))
	}

	// Signing back in restores the untouched slot.
	creds.set("tok", "bayi1")
	if err := eng.LoadLocal(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	snap := eng.Snapshot()
	if snap.ItemCount != 1 || snap.Items[0].StockNo != "1001" {
		t.Fatalf("items after reload = %v, want [1001]", stockNos(snap.Items))
	}
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	store := newMemStore()
	remote := &fakeRemote{
		addItem: func(_ context.Context, it cart.Item) (cart.ServerState, error) {
			return cart.ServerState{Items: []cart.Item{it}}, nil
		},
		removeItem: func(context.Context, string) (cart.ServerState, error) {
			return cart.ServerState{Items: []cart.Item{}}, nil
		},
	}
	creds := &fakeCreds{token: "tok", username: "bayi1"}
	eng := New(store, remote, creds)

	ctx := context.Background()
	if err := eng.AddItem(ctx, item("1001", 2)); err != nil {
		t.Fatalf("add item: %v", err)
	}
	eng.Wait()

	if err := eng.UpdateQuantity(ctx, "1001", 0); err != nil {
		t.Fatalf("update quantity: %v", err)
	}
	eng.Wait()

	if snap := eng.Snapshot(); snap.ItemCount != 0 {
		t.Fatalf("items = %v, want empty cart", stockNos(snap.Items))
	}
	remote.mu.Lock()
	calls := append([]string(nil), remote.calls...)
	remote.mu.Unlock()
	want := []string{"add", "remove"}
	if len(calls) != len(want) || calls[0] != want[0] || calls[1] != want[1] {
		t.Fatalf("remote calls = %v, want %v", calls, want)
	}
}

func TestClearEmptiesBothSides(t *testing.T) {
	store := newMemStore()
	cleared := false
	remote := &fakeRemote{
		addItem: func(_ context.Context, it cart.Item) (cart.ServerState, error) {
			return cart.ServerState{Items: []cart.Item{it}}, nil
		},
		clear: func(context.Context) (cart.ServerState, error) {
			cleared = true
			return cart.ServerState{Items: []cart.Item{}}, nil
		},
	}
	creds := &fakeCreds{token: "tok", username: "bayi1"}
	eng := New(store, remote, creds)

	ctx := context.Background()
	if err := eng.AddItem(ctx, item("1001", 2)); err != nil {
		t.Fatalf("add item: %v", err)
	}
	eng.Wait()
	if err := eng.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	eng.Wait()

	if !cleared {
		t.Fatal("remote clear never called")
	}
	if snap := eng.Snapshot(); snap.ItemCount != 0 {
		t.Fatalf("items = %v, want empty cart", stockNos(snap.Items))
	}
	if slot := store.slot(t, "bayi1"); len(slot.Items) != 0 {
		t.Fatalf("slot items = %v, want empty", stockNos(slot.Items))
	}
}

func TestAddItemRejectsInvalid(t *testing.T) {
	eng := New(newMemStore(), &fakeRemote{}, &fakeCreds{})
	err := eng.AddItem(context.Background(), cart.Item{StockNo: "   "})
	if err == nil {
		t.Fatal("blank stock number accepted")
	}
	if apperrors.CodeOf(err) != apperrors.CodeCartItemInvalid {
		t.Fatalf("error code = %v, want %v", apperrors.CodeOf(err), apperrors.CodeCartItemInvalid)
	}
}

func TestLoadLocalMissingSlotIsEmpty(t *testing.T) {
	eng := New(newMemStore(), &fakeRemote{}, &fakeCreds{token: "tok", username: "bayi1"})

	if err := eng.LoadLocal(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	snap := eng.Snapshot()
	if snap.ItemCount != 0 {
		t.Fatalf("items = %v, want empty cart", stockNos(snap.Items))
	}
	if snap.Loading {
		t.Fatal("loading flag still set after hydration")
	}
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	store := newMemStore()
	creds := &fakeCreds{} // guest keeps the flow synchronous
	eng := New(store, &fakeRemote{}, creds)

	var got []Snapshot
	unsubscribe := eng.Subscribe(func(s Snapshot) { got = append(got, s) })

	ctx := context.Background()
	if err := eng.AddItem(ctx, item("1001", 1)); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("listener never notified")
	}
	last := got[len(got)-1]
	if last.TotalQuantity != 1 {
		t.Fatalf("notified quantity = %d, want 1", last.TotalQuantity)
	}

	unsubscribe()
	seen := len(got)
	if err := eng.AddItem(ctx, item("2002", 1)); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if len(got) != seen {
		t.Fatal("listener notified after unsubscribe")
	}
}

func TestConnectivityReturnTriggersSync(t *testing.T) {
	store := newMemStore()
	remote := &fakeRemote{
		fetch: func(context.Context) (cart.ServerState, error) {
			return cart.ServerState{Items: []cart.Item{item("9001", 1)}}, nil
		},
	}
	creds := &fakeCreds{token: "tok", username: "bayi1"}
	eng := New(store, remote, creds)

	ctx := context.Background()
	if err := eng.HandleConnectivityChange(ctx, false); err != nil {
		t.Fatalf("going offline: %v", err)
	}
	if n := remote.callCount(); n != 0 {
		t.Fatalf("remote calls while offline = %d, want 0", n)
	}

	if err := eng.HandleConnectivityChange(ctx, true); err != nil {
		t.Fatalf("coming online: %v", err)
	}
	snap := eng.Snapshot()
	if snap.ItemCount != 1 || snap.Items[0].StockNo != "9001" {
		t.Fatalf("items = %v, want server cart after reconnect", stockNos(snap.Items))
	}
}
