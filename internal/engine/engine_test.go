package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/topupbot/internal/session"
	"github.com/m3rciful/topupbot/internal/store"
)

type fakeStore struct {
	mu sync.Mutex

	users    map[int64]store.User
	products map[int64]store.Product
	orders   map[int64]store.Order

	nextProductID int64
	nextOrderID   int64
	seeded        bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[int64]store.User),
		products: make(map[int64]store.Product),
		orders:   make(map[int64]store.Order),
	}
}

func (f *fakeStore) addProduct(name string, price float64) store.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextProductID++
	p := store.Product{ID: f.nextProductID, Name: name, Price: price}
	f.products[p.ID] = p
	return p
}

func (f *fakeStore) EnsureUser(_ context.Context, u store.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.UserID] = u
	return nil
}

func (f *fakeStore) Products(_ context.Context) ([]store.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]store.Product, 0, len(f.products))
	for id := int64(1); id <= f.nextProductID; id++ {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) ProductByID(_ context.Context, id int64) (store.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return store.Product{}, store.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) CreateProduct(_ context.Context, name string, price float64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextProductID++
	f.products[f.nextProductID] = store.Product{ID: f.nextProductID, Name: name, Price: price}
	return f.nextProductID, nil
}

func (f *fakeStore) UpdatePrice(_ context.Context, id int64, price float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return store.ErrNotFound
	}
	p.Price = price
	f.products[id] = p
	return nil
}

func (f *fakeStore) DeleteProduct(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.products, id)
	return nil
}

func (f *fakeStore) SeedDemo(_ context.Context) error {
	f.mu.Lock()
	f.seeded = true
	f.mu.Unlock()
	f.addProduct("UC PUBG", 0.99)
	f.addProduct("Diamonds Free Fire", 0.79)
	f.addProduct("CP Call of Duty", 1.49)
	f.addProduct("Robux", 0.50)
	return nil
}

func (f *fakeStore) CreateOrder(_ context.Context, userID, productID int64, qty int) (store.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[productID]
	if !ok {
		return store.Order{}, store.ErrNotFound
	}
	f.nextOrderID++
	o := store.Order{
		ID:          f.nextOrderID,
		UserID:      userID,
		ProductID:   productID,
		ProductName: p.Name,
		Qty:         qty,
		Total:       p.Price * float64(qty),
		Status:      store.StatusPending,
	}
	f.orders[o.ID] = o
	return o, nil
}

func (f *fakeStore) OrderByID(_ context.Context, id int64) (store.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return store.Order{}, store.ErrNotFound
	}
	// Mirror the live-catalog join: name comes from the current row.
	o.ProductName = f.products[o.ProductID].Name
	return o, nil
}

func (f *fakeStore) PendingOrderIDs(_ context.Context) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []int64
	for id := f.nextOrderID; id >= 1; id-- {
		if o, ok := f.orders[id]; ok && o.Status == store.StatusPending {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *fakeStore) SetStatus(_ context.Context, orderID int64, status string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok {
		return 0, store.ErrNotFound
	}
	o.Status = status
	f.orders[orderID] = o
	return o.UserID, nil
}

func (f *fakeStore) AttachEvidence(_ context.Context, orderID int64, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok {
		return store.ErrNotFound
	}
	o.EvidenceRef.String = ref
	o.EvidenceRef.Valid = true
	f.orders[orderID] = o
	return nil
}

func (f *fakeStore) Stats(_ context.Context) (store.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := store.Stats{Products: len(f.products), Orders: len(f.orders)}
	for _, o := range f.orders {
		switch o.Status {
		case store.StatusPending:
			st.OrdersPending++
		case store.StatusAccepted:
			st.OrdersAccepted++
		case store.StatusRejected:
			st.OrdersRejected++
		}
	}
	return st, nil
}

type notice struct {
	userID int64
	text   string
}

type fakeNotifier struct {
	mu     sync.Mutex
	admin  []string
	direct []notice
}

func (f *fakeNotifier) NotifyAdmins(_ context.Context, text string, _ [][]Button) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.admin = append(f.admin, text)
}

func (f *fakeNotifier) NotifyUser(_ context.Context, userID int64, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.direct = append(f.direct, notice{userID: userID, text: text})
}

func (f *fakeNotifier) adminCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.admin)
}

const (
	adminID = int64(1000)
	buyerID = int64(2000)
	otherID = int64(3000)
)

func newTestEngine(t *testing.T) (*Engine, *fakeStore, *fakeNotifier) {
	t.Helper()
	st := newFakeStore()
	n := &fakeNotifier{}
	eng := New(st, n, session.NewRegistry(), func(id int64) bool { return id == adminID })
	return eng, st, n
}

func buyer() Actor {
	return Actor{ID: buyerID, Username: "buyer", FirstName: "Buyer"}
}

func admin() Actor {
	return Actor{ID: adminID, Username: "op", FirstName: "Op"}
}

func placeOrder(t *testing.T, eng *Engine, actor Actor, productID int64, qty string) Reply {
	t.Helper()
	ctx := context.Background()

	_, err := eng.HandleAction(ctx, actor, Action{Kind: ActionNewOrder})
	require.NoError(t, err)
	_, err = eng.HandleAction(ctx, actor, Action{Kind: ActionSelectProduct, ID: productID})
	require.NoError(t, err)
	_, err = eng.HandleText(ctx, actor, qty)
	require.NoError(t, err)
	reply, err := eng.HandleAction(ctx, actor, Action{Kind: ActionConfirmOrder})
	require.NoError(t, err)
	return reply
}

func TestOrderFlowCreatesPendingOrder(t *testing.T) {
	eng, st, n := newTestEngine(t)
	p := st.addProduct("UC PUBG", 0.99)

	reply := placeOrder(t, eng, buyer(), p.ID, "5")
	assert.Contains(t, reply.Text, "#1")

	o, err := st.OrderByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, buyerID, o.UserID)
	assert.Equal(t, 5, o.Qty)
	assert.InDelta(t, 4.95, o.Total, 1e-9)
	assert.Equal(t, store.StatusPending, o.Status)

	assert.Equal(t, 1, n.adminCount())
	assert.False(t, eng.InProgress(buyerID))
}

func TestDuplicateConfirmCreatesSingleOrder(t *testing.T) {
	eng, st, _ := newTestEngine(t)
	p := st.addProduct("Robux", 0.50)

	placeOrder(t, eng, buyer(), p.ID, "2")

	reply, err := eng.HandleAction(context.Background(), buyer(), Action{Kind: ActionConfirmOrder})
	require.NoError(t, err)
	assert.Equal(t, textStaleConfirm, reply.Alert)
	assert.Len(t, st.orders, 1)
}

func TestStaleProductButtonRejected(t *testing.T) {
	eng, st, _ := newTestEngine(t)
	p := st.addProduct("Robux", 0.50)
	ctx := context.Background()

	reply, err := eng.HandleAction(ctx, buyer(), Action{Kind: ActionSelectProduct, ID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, textStalePick, reply.Alert)
	assert.False(t, eng.InProgress(buyerID))

	// A leftover product button must not derail an evidence upload.
	placeOrder(t, eng, buyer(), p.ID, "1")
	_, err = eng.HandleAction(ctx, buyer(), Action{Kind: ActionSendProof})
	require.NoError(t, err)
	_, err = eng.HandleText(ctx, buyer(), "1")
	require.NoError(t, err)

	reply, err = eng.HandleAction(ctx, buyer(), Action{Kind: ActionSelectProduct, ID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, textStalePick, reply.Alert)

	reply, err = eng.HandleMedia(ctx, buyer(), "file-1")
	require.NoError(t, err)
	assert.Equal(t, textProofAttached, reply.Text)
}

func TestQtyValidationKeepsState(t *testing.T) {
	eng, st, _ := newTestEngine(t)
	p := st.addProduct("Diamonds Free Fire", 0.79)
	ctx := context.Background()

	_, err := eng.HandleAction(ctx, buyer(), Action{Kind: ActionNewOrder})
	require.NoError(t, err)
	_, err = eng.HandleAction(ctx, buyer(), Action{Kind: ActionSelectProduct, ID: p.ID})
	require.NoError(t, err)

	for _, input := range []string{"0", "10001", "abc", "-5", "1.5", ""} {
		reply, err := eng.HandleText(ctx, buyer(), input)
		require.NoError(t, err)
		assert.Equal(t, textBadQty, reply.Text, "input %q", input)
	}
	assert.True(t, eng.InProgress(buyerID))
	assert.Empty(t, st.orders)
}

func TestConfirmAfterProductRemoved(t *testing.T) {
	eng, st, _ := newTestEngine(t)
	p := st.addProduct("CP Call of Duty", 1.49)
	ctx := context.Background()

	_, err := eng.HandleAction(ctx, buyer(), Action{Kind: ActionNewOrder})
	require.NoError(t, err)
	_, err = eng.HandleAction(ctx, buyer(), Action{Kind: ActionSelectProduct, ID: p.ID})
	require.NoError(t, err)
	_, err = eng.HandleText(ctx, buyer(), "3")
	require.NoError(t, err)

	require.NoError(t, st.DeleteProduct(ctx, p.ID))

	reply, err := eng.HandleAction(ctx, buyer(), Action{Kind: ActionConfirmOrder})
	require.NoError(t, err)
	assert.Equal(t, textProductGone, reply.Text)
	assert.Empty(t, st.orders)
	assert.False(t, eng.InProgress(buyerID))
}

func TestDecideOrderNotifiesOwner(t *testing.T) {
	eng, st, n := newTestEngine(t)
	p := st.addProduct("UC PUBG", 0.99)
	placeOrder(t, eng, buyer(), p.ID, "2")
	ctx := context.Background()

	reply, err := eng.HandleAction(ctx, admin(), Action{Kind: ActionAcceptOrder, ID: 1})
	require.NoError(t, err)
	assert.Equal(t, textOrderAccepted, reply.Alert)

	o, err := st.OrderByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, store.StatusAccepted, o.Status)
	assert.InDelta(t, 1.98, o.Total, 1e-9)

	require.Len(t, n.direct, 1)
	assert.Equal(t, buyerID, n.direct[0].userID)

	// Re-deciding a terminal order re-applies the status and re-notifies.
	reply, err = eng.HandleAction(ctx, admin(), Action{Kind: ActionRejectOrder, ID: 1})
	require.NoError(t, err)
	assert.Equal(t, textOrderRejected, reply.Alert)

	o, err = st.OrderByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, store.StatusRejected, o.Status)
	assert.Len(t, n.direct, 2)
}

func TestTrackOrderHidesForeignOrders(t *testing.T) {
	eng, st, _ := newTestEngine(t)
	p := st.addProduct("Robux", 0.50)
	placeOrder(t, eng, buyer(), p.ID, "1")
	ctx := context.Background()

	other := Actor{ID: otherID, Username: "other"}
	_, err := eng.HandleAction(ctx, other, Action{Kind: ActionTrackOrder})
	require.NoError(t, err)
	reply, err := eng.HandleText(ctx, other, "1")
	require.NoError(t, err)
	assert.Equal(t, textOrderNotFound, reply.Text)

	// The owner sees it.
	_, err = eng.HandleAction(ctx, buyer(), Action{Kind: ActionTrackOrder})
	require.NoError(t, err)
	reply, err = eng.HandleText(ctx, buyer(), "1")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "#1")
	assert.Contains(t, reply.Text, store.StatusPending)
}

func TestEvidenceFlow(t *testing.T) {
	eng, st, n := newTestEngine(t)
	p := st.addProduct("UC PUBG", 0.99)
	placeOrder(t, eng, buyer(), p.ID, "1")
	ctx := context.Background()

	_, err := eng.HandleAction(ctx, buyer(), Action{Kind: ActionSendProof})
	require.NoError(t, err)
	reply, err := eng.HandleText(ctx, buyer(), "1")
	require.NoError(t, err)
	assert.Equal(t, textAskProofMedia, reply.Text)

	// Text while media is expected does not advance the flow.
	reply, err = eng.HandleText(ctx, buyer(), "here you go")
	require.NoError(t, err)
	assert.Equal(t, textProofTextOnly, reply.Text)

	reply, err = eng.HandleMedia(ctx, buyer(), "file-abc")
	require.NoError(t, err)
	assert.Equal(t, textProofAttached, reply.Text)
	assert.False(t, eng.InProgress(buyerID))

	o, err := st.OrderByID(ctx, 1)
	require.NoError(t, err)
	require.True(t, o.HasEvidence())
	assert.Equal(t, "file-abc", o.EvidenceRef.String)

	// Order creation plus proof upload.
	assert.Equal(t, 2, n.adminCount())

	review, err := eng.HandleAction(ctx, admin(), Action{Kind: ActionReviewOrder, ID: 1})
	require.NoError(t, err)
	assert.Equal(t, "file-abc", review.Evidence)
}

func TestMediaOutsideProofFlowIsSilent(t *testing.T) {
	eng, st, n := newTestEngine(t)
	st.addProduct("UC PUBG", 0.99)

	reply, err := eng.HandleMedia(context.Background(), buyer(), "file-xyz")
	require.NoError(t, err)
	assert.Equal(t, Reply{}, reply)
	assert.Empty(t, st.orders)
	assert.Equal(t, 0, n.adminCount())
}

func TestAdminActionsForbiddenForUsers(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	ctx := context.Background()

	for _, kind := range []ActionKind{
		ActionAdminPanel, ActionAddProduct, ActionManageProducts,
		ActionListPending, ActionAcceptOrder, ActionRejectOrder,
	} {
		reply, err := eng.HandleAction(ctx, buyer(), Action{Kind: kind, ID: 1})
		require.NoError(t, err)
		assert.Equal(t, textForbidden, reply.Alert, "kind %d", kind)
	}
}

func TestProductLifecycle(t *testing.T) {
	eng, st, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := eng.HandleAction(ctx, admin(), Action{Kind: ActionAddProduct})
	require.NoError(t, err)
	_, err = eng.HandleText(ctx, admin(), "Gems Clash")
	require.NoError(t, err)
	reply, err := eng.HandleText(ctx, admin(), "0,50")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "Gems Clash")

	p, err := st.ProductByID(ctx, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.50, p.Price, 1e-9)

	reply, err = eng.HandleAction(ctx, admin(), Action{Kind: ActionProductDetail, ID: p.ID})
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "<b>#1 Gems Clash</b>")

	_, err = eng.HandleAction(ctx, admin(), Action{Kind: ActionEditPrice, ID: p.ID})
	require.NoError(t, err)
	reply, err = eng.HandleText(ctx, admin(), "1.25")
	require.NoError(t, err)
	assert.Equal(t, textPriceUpdated, reply.Text)

	p, err = st.ProductByID(ctx, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.25, p.Price, 1e-9)

	reply, err = eng.HandleAction(ctx, admin(), Action{Kind: ActionDeleteProduct, ID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, textProductDeleted, reply.Alert)

	_, err = st.ProductByID(ctx, 1)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStatsAndSeedCommands(t *testing.T) {
	eng, st, _ := newTestEngine(t)
	ctx := context.Background()

	reply, err := eng.HandleCommand(ctx, buyer(), "stats")
	require.NoError(t, err)
	assert.Equal(t, textForbidden, reply.Text)

	reply, err = eng.HandleCommand(ctx, admin(), "adddemo")
	require.NoError(t, err)
	assert.Equal(t, textDemoSeeded, reply.Text)
	assert.True(t, st.seeded)

	p := st.products[1]
	placeOrder(t, eng, buyer(), p.ID, "1")

	reply, err = eng.HandleCommand(ctx, admin(), "stats")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "4")
	assert.Contains(t, reply.Text, "1")
}

func TestStartResetsConversation(t *testing.T) {
	eng, st, _ := newTestEngine(t)
	p := st.addProduct("UC PUBG", 0.99)
	ctx := context.Background()

	_, err := eng.HandleAction(ctx, buyer(), Action{Kind: ActionNewOrder})
	require.NoError(t, err)
	_, err = eng.HandleAction(ctx, buyer(), Action{Kind: ActionSelectProduct, ID: p.ID})
	require.NoError(t, err)
	require.True(t, eng.InProgress(buyerID))

	reply, err := eng.HandleCommand(ctx, buyer(), "start")
	require.NoError(t, err)
	assert.Equal(t, textWelcome, reply.Text)
	assert.False(t, eng.InProgress(buyerID))
	assert.Contains(t, st.users, buyerID)
}
