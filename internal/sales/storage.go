package sales

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// ErrNotFound is returned when a sale with the given ID is not found.
var ErrNotFound = errors.New("sale not found")

// ConnectionError is returned when a storage connection cannot be acquired.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("database connection failed: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Storage is the main interface for our sales storage layer.
type Storage interface {
	List(ctx context.Context) ([]*Sale, error)
	Read(ctx context.Context, id int64) (*Sale, error)
	Create(ctx context.Context, d Details) (int64, error)
	Update(ctx context.Context, id int64, d Details) error
	Delete(ctx context.Context, id int64) error
	Total(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

// LocalStorage provides an in-memory implementation for storing sales.
type LocalStorage struct {
	mu     sync.RWMutex
	m      map[int64]*Sale
	order  []int64
	nextID int64
	now    func() time.Time
}

// NewLocalStorage instantiates a new LocalStorage for sales with an empty map.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{
		m:      map[int64]*Sale{},
		nextID: 1,
		now:    time.Now,
	}
}

// List returns every sale, newest first. Sales created at the same instant
// keep insertion order.
func (l *LocalStorage) List(_ context.Context) ([]*Sale, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	sales := make([]*Sale, 0, len(l.order))
	for _, id := range l.order {
		s := *l.m[id]
		sales = append(sales, &s)
	}
	sort.SliceStable(sales, func(i, j int) bool {
		return sales[i].CreatedAt.After(sales[j].CreatedAt)
	})
	return sales, nil
}

// Read retrieves a sale from the local storage by ID.
// Returns ErrNotFound if the sale is not found.
func (l *LocalStorage) Read(_ context.Context, id int64) (*Sale, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s, ok := l.m[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (l *LocalStorage) Create(_ context.Context, d Details) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextID
	l.nextID++
	l.m[id] = &Sale{ID: id, Details: d, CreatedAt: l.now()}
	l.order = append(l.order, id)
	return id, nil
}

// Update replaces the business fields of a sale.
// Returns ErrNotFound if the sale is not found.
func (l *LocalStorage) Update(_ context.Context, id int64, d Details) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.m[id]
	if !ok {
		return ErrNotFound
	}
	s.Details = d
	return nil
}

// Delete removes a sale.
// Returns ErrNotFound if the sale is not found.
func (l *LocalStorage) Delete(_ context.Context, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.m[id]; !ok {
		return ErrNotFound
	}
	delete(l.m, id)
	for i, v := range l.order {
		if v == id {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	return nil
}

func (l *LocalStorage) Total(_ context.Context) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var total int64
	for _, s := range l.m {
		total += s.TotalPrice
	}
	return total, nil
}

func (l *LocalStorage) Ping(_ context.Context) error { return nil }
