package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ValidationError is returned when a required field is missing from a request.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return "missing required field: " + e.Field
}

// Service provides high-level sales management operations on a Storage backend.
type Service struct {
	storage Storage
	logger  *zap.Logger
	now     func() time.Time
}

// NewService creates a new Service.
func NewService(storage Storage, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
}

// ListSales returns all sales, newest first.
func (s *Service) ListSales(ctx context.Context) ([]*Sale, error) {
	sales, err := s.storage.List(ctx)
	if err != nil {
		s.logger.Error("failed to list sales", zap.Error(err))
		return nil, err
	}
	if sales == nil {
		sales = []*Sale{}
	}
	return sales, nil
}

// GetSale returns the sale with the given id or ErrNotFound.
func (s *Service) GetSale(ctx context.Context, id int64) (*Sale, error) {
	sale, err := s.storage.Read(ctx, id)
	if err != nil {
		s.logFailure("failed to read sale", id, err)
		return nil, err
	}
	return sale, nil
}

// CreateSale validates the input and stores a new sale. The returned creation
// time is taken from the service clock, not read back from storage.
func (s *Service) CreateSale(ctx context.Context, in Input) (*Sale, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	d := in.Details()

	id, err := s.storage.Create(ctx, d)
	if err != nil {
		s.logger.Error("failed to save sale", zap.String("product_name", d.ProductName), zap.Error(err))
		return nil, err
	}

	sale := &Sale{ID: id, Details: d, CreatedAt: s.now()}
	s.logger.Info("sale created", zap.Int64("sale_id", id), zap.Any("sale", sale))
	return sale, nil
}

// UpdateSale replaces all business fields of an existing sale.
func (s *Service) UpdateSale(ctx context.Context, id int64, in Input) (*UpdatedSale, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	d := in.Details()

	if err := s.storage.Update(ctx, id, d); err != nil {
		s.logFailure("failed to update sale", id, err)
		return nil, err
	}

	s.logger.Info("sale updated", zap.Int64("sale_id", id))
	return &UpdatedSale{ID: id, Details: d}, nil
}

// DeleteSale removes a sale and returns the confirmation message.
func (s *Service) DeleteSale(ctx context.Context, id int64) (string, error) {
	if err := s.storage.Delete(ctx, id); err != nil {
		s.logFailure("failed to delete sale", id, err)
		return "", err
	}

	s.logger.Info("sale deleted", zap.Int64("sale_id", id))
	return fmt.Sprintf("Sale with ID %d deleted successfully", id), nil
}

// TotalSales sums totalPrice over all sales. An empty store yields 0.
func (s *Service) TotalSales(ctx context.Context) (int64, error) {
	total, err := s.storage.Total(ctx)
	if err != nil {
		s.logger.Error("failed to sum sales", zap.Error(err))
		return 0, err
	}
	return total, nil
}

// Ping reports whether the storage backend is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.storage.Ping(ctx)
}

func (s *Service) logFailure(msg string, id int64, err error) {
	if errors.Is(err, ErrNotFound) {
		s.logger.Debug(msg, zap.Int64("sale_id", id), zap.Error(err))
		return
	}
	s.logger.Error(msg, zap.Int64("sale_id", id), zap.Error(err))
}
