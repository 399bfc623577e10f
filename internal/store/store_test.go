package store

import (
	"context"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDB connects to the database named by TOPUPBOT_TEST_DSN. Tests are
// skipped when the variable is unset so the suite stays runnable without a
// local Postgres. The schema from migrations/ must already be applied.
func testDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("TOPUPBOT_TEST_DSN")
	if dsn == "" {
		t.Skip("TOPUPBOT_TEST_DSN not set")
	}
	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = db.Exec(`TRUNCATE orders, products, users RESTART IDENTITY CASCADE`)
		_ = db.Close()
	})
	_, err = db.Exec(`TRUNCATE orders, products, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return db
}

func TestEnsureUserUpserts(t *testing.T) {
	s := New(testDB(t))
	ctx := context.Background()

	require.NoError(t, s.EnsureUser(ctx, User{UserID: 1, Username: "old", FirstName: "Old"}))
	require.NoError(t, s.EnsureUser(ctx, User{UserID: 1, Username: "new", FirstName: "New"}))

	u, err := s.UserByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "new", u.Username)
	assert.Equal(t, "New", u.FirstName)
}

func TestProductCRUD(t *testing.T) {
	s := New(testDB(t))
	ctx := context.Background()

	id, err := s.CreateProduct(ctx, "UC PUBG", 0.99)
	require.NoError(t, err)

	p, err := s.ProductByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "UC PUBG", p.Name)
	assert.InDelta(t, 0.99, p.Price, 1e-9)

	require.NoError(t, s.UpdatePrice(ctx, id, 1.25))
	p, err = s.ProductByID(ctx, id)
	require.NoError(t, err)
	assert.InDelta(t, 1.25, p.Price, 1e-9)

	require.NoError(t, s.DeleteProduct(ctx, id))
	_, err = s.ProductByID(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.UpdatePrice(ctx, id, 2), ErrNotFound)
	assert.ErrorIs(t, s.DeleteProduct(ctx, id), ErrNotFound)
}

func TestOrderLifecycle(t *testing.T) {
	s := New(testDB(t))
	ctx := context.Background()

	require.NoError(t, s.EnsureUser(ctx, User{UserID: 10, Username: "buyer"}))
	productID, err := s.CreateProduct(ctx, "Robux", 0.50)
	require.NoError(t, err)

	o, err := s.CreateOrder(ctx, 10, productID, 4)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, "Robux", o.ProductName)
	assert.InDelta(t, 2.00, o.Total, 1e-9)
	assert.False(t, o.HasEvidence())

	ids, err := s.PendingOrderIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{o.ID}, ids)

	require.NoError(t, s.AttachEvidence(ctx, o.ID, "file-ref"))
	got, err := s.OrderByID(ctx, o.ID)
	require.NoError(t, err)
	require.True(t, got.HasEvidence())
	assert.Equal(t, "file-ref", got.EvidenceRef.String)

	ownerID, err := s.SetStatus(ctx, o.ID, StatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, int64(10), ownerID)

	got, err = s.OrderByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, got.Status)
	assert.InDelta(t, 2.00, got.Total, 1e-9)

	ids, err = s.PendingOrderIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	// Total snapshots the price at creation time.
	require.NoError(t, s.UpdatePrice(ctx, productID, 9.99))
	got, err = s.OrderByID(ctx, o.ID)
	require.NoError(t, err)
	assert.InDelta(t, 2.00, got.Total, 1e-9)
}

func TestCreateOrderMissingProduct(t *testing.T) {
	s := New(testDB(t))
	ctx := context.Background()

	require.NoError(t, s.EnsureUser(ctx, User{UserID: 10}))
	_, err := s.CreateOrder(ctx, 10, 12345, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStatsCounts(t *testing.T) {
	s := New(testDB(t))
	ctx := context.Background()

	require.NoError(t, s.EnsureUser(ctx, User{UserID: 10}))
	require.NoError(t, s.SeedDemo(ctx))

	products, err := s.Products(ctx)
	require.NoError(t, err)
	require.Len(t, products, 4)

	o1, err := s.CreateOrder(ctx, 10, products[0].ID, 1)
	require.NoError(t, err)
	_, err = s.CreateOrder(ctx, 10, products[1].ID, 2)
	require.NoError(t, err)
	_, err = s.SetStatus(ctx, o1.ID, StatusRejected)
	require.NoError(t, err)

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, st.Products)
	assert.Equal(t, 2, st.Orders)
	assert.Equal(t, 1, st.OrdersPending)
	assert.Equal(t, 0, st.OrdersAccepted)
	assert.Equal(t, 1, st.OrdersRejected)
}
