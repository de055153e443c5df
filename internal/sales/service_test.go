package sales

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func strPtr(s string) *string { return &s }
func intPtr(n int64) *int64 { return &n }

func penInput(price, amount, total int64) Input {
	return Input{
		ProductName:  strPtr("Pen"),
		ProductPrice: intPtr(price),
		Amount:       intPtr(amount),
		TotalPrice:   intPtr(total),
	}
}

// TestNewService checks that the service is wired with its dependencies.
func TestNewService(t *testing.T) {
	svc := NewService(NewLocalStorage(), zaptest.NewLogger(t))

	if svc == nil {
		t.Fatal("NewService returned nil")
	}
	if svc.storage == nil {
		t.Error("Service storage was not initialized")
	}
	if svc.logger == nil {
		t.Error("Service logger was not initialized")
	}

	assert.NotNil(t, NewService(NewLocalStorage(), nil).logger, "nil logger should be replaced")
}

func TestCreateSale_MissingField(t *testing.T) {
	tests := []struct {
		name  string
		in    Input
		field string
	}{
		{"empty", Input{}, "productName"},
		{"no price", Input{ProductName: strPtr("Pen"), Amount: intPtr(5), TotalPrice: intPtr(50)}, "productPrice"},
		{"no amount", Input{ProductName: strPtr("Pen"), ProductPrice: intPtr(10), TotalPrice: intPtr(50)}, "amount"},
		{"no total", Input{ProductName: strPtr("Pen"), ProductPrice: intPtr(10), Amount: intPtr(5)}, "totalPrice"},
		{"amount and total", Input{ProductName: strPtr("Pen"), ProductPrice: intPtr(10)}, "amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := NewLocalStorage()
			svc := NewService(storage, zaptest.NewLogger(t))

			sale, err := svc.CreateSale(context.Background(), tt.in)
			assert.Nil(t, sale)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, "missing required field: "+tt.field, err.Error())

			all, err := storage.List(context.Background())
			require.NoError(t, err)
			assert.Empty(t, all, "no row may be inserted on validation failure")
		})
	}
}

func TestCreateSale_ZeroValuesArePresent(t *testing.T) {
	svc := NewService(NewLocalStorage(), zaptest.NewLogger(t))

	sale, err := svc.CreateSale(context.Background(), Input{
		ProductName:  strPtr(""),
		ProductPrice: intPtr(0),
		Amount:       intPtr(0),
		TotalPrice:   intPtr(0),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), sale.ID)
}

func TestCreateSale_ReturnsServiceClock(t *testing.T) {
	storage := NewLocalStorage()
	storedAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	storage.now = func() time.Time { return storedAt }

	svc := NewService(storage, zaptest.NewLogger(t))
	respondedAt := storedAt.Add(3 * time.Millisecond)
	svc.now = func() time.Time { return respondedAt }

	created, err := svc.CreateSale(context.Background(), penInput(10, 5, 50))
	require.NoError(t, err)
	assert.Equal(t, respondedAt, created.CreatedAt)

	stored, err := svc.GetSale(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, storedAt, stored.CreatedAt)
	assert.Equal(t, created.Details, stored.Details)
}

func TestUpdateSale(t *testing.T) {
	storage := NewLocalStorage()
	svc := NewService(storage, zaptest.NewLogger(t))
	ctx := context.Background()

	created, err := svc.CreateSale(ctx, penInput(10, 5, 50))
	require.NoError(t, err)
	before, err := svc.GetSale(ctx, created.ID)
	require.NoError(t, err)

	updated, err := svc.UpdateSale(ctx, created.ID, penInput(12, 5, 60))
	require.NoError(t, err)
	assert.Equal(t, &UpdatedSale{ID: created.ID, Details: Details{"Pen", 12, 5, 60}}, updated)

	after, err := svc.GetSale(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, before.CreatedAt, after.CreatedAt, "createdAt must not change on update")
	assert.Equal(t, int64(60), after.TotalPrice)
}

func TestUpdateSale_NotFound(t *testing.T) {
	storage := NewLocalStorage()
	svc := NewService(storage, zaptest.NewLogger(t))
	ctx := context.Background()

	_, err := svc.CreateSale(ctx, penInput(10, 5, 50))
	require.NoError(t, err)

	_, err = svc.UpdateSale(ctx, 42, penInput(1, 1, 1))
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := svc.ListSales(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, int64(50), all[0].TotalPrice)
}

func TestUpdateSale_ValidatesBeforeLookup(t *testing.T) {
	svc := NewService(NewLocalStorage(), zaptest.NewLogger(t))

	_, err := svc.UpdateSale(context.Background(), 42, Input{ProductName: strPtr("Pen")})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "productPrice", verr.Field)
}

func TestDeleteSale(t *testing.T) {
	svc := NewService(NewLocalStorage(), zaptest.NewLogger(t))
	ctx := context.Background()

	a, err := svc.CreateSale(ctx, penInput(10, 5, 50))
	require.NoError(t, err)
	b, err := svc.CreateSale(ctx, penInput(10, 1, 10))
	require.NoError(t, err)

	msg, err := svc.DeleteSale(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sale with ID 1 deleted successfully", msg)

	_, err = svc.GetSale(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.DeleteSale(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := svc.ListSales(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, b.ID, all[0].ID)
}

func TestTotalSales(t *testing.T) {
	svc := NewService(NewLocalStorage(), zaptest.NewLogger(t))
	ctx := context.Background()

	total, err := svc.TotalSales(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	_, err = svc.CreateSale(ctx, penInput(10, 10, 100))
	require.NoError(t, err)
	_, err = svc.CreateSale(ctx, penInput(50, 5, 250))
	require.NoError(t, err)

	total, err = svc.TotalSales(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(350), total)
}

func TestListSales_NewestFirst(t *testing.T) {
	storage := NewLocalStorage()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	stamps := []time.Time{base, base.Add(time.Second), base.Add(time.Second), base.Add(2 * time.Second)}
	i := 0
	storage.now = func() time.Time {
		ts := stamps[i]
		i++
		return ts
	}
	svc := NewService(storage, zaptest.NewLogger(t))
	ctx := context.Background()

	empty, err := svc.ListSales(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for range stamps {
		_, err := svc.CreateSale(ctx, penInput(1, 1, 1))
		require.NoError(t, err)
	}

	all, err := svc.ListSales(ctx)
	require.NoError(t, err)

	ids := make([]int64, 0, len(all))
	for _, s := range all {
		ids = append(ids, s.ID)
	}
	// 2 and 3 share a timestamp and keep insertion order.
	assert.Equal(t, []int64{4, 2, 3, 1}, ids)
}

type failingStorage struct {
	LocalStorage
	err error
}

func (f *failingStorage) List(context.Context) ([]*Sale, error) { return nil, f.err }
func (f *failingStorage) Total(context.Context) (int64, error) { return 0, f.err }

func TestService_PropagatesStorageErrors(t *testing.T) {
	connErr := &ConnectionError{Err: errors.New("dial tcp 127.0.0.1:3306: connect: connection refused")}
	svc := NewService(&failingStorage{err: connErr}, zaptest.NewLogger(t))

	_, err := svc.ListSales(context.Background())
	var got *ConnectionError
	require.ErrorAs(t, err, &got)
	assert.Contains(t, err.Error(), "connection refused")

	_, err = svc.TotalSales(context.Background())
	assert.ErrorAs(t, err, &got)
}

func TestLocalStorage_ConcurrentCreates(t *testing.T) {
	storage := NewLocalStorage()
	svc := NewService(storage, zaptest.NewLogger(t))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateSale(context.Background(), penInput(1, 1, 2))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	all, err := svc.ListSales(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 50)

	seen := map[int64]bool{}
	for _, s := range all {
		assert.False(t, seen[s.ID], "duplicate id %d", s.ID)
		seen[s.ID] = true
	}

	total, err := svc.TotalSales(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(100), total)
}
