package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/tillpoint/tillpoint/internal/shared"
)

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates catalog operations.
type Service struct {
	repo  Repository
	audit AuditPort
}

// NewService builds Service.
func NewService(repo Repository, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Product, int, error) {
	return s.repo.List(ctx, filters)
}

// LowStock lists products whose stock sits below the threshold.
func (s *Service) LowStock(ctx context.Context, threshold int) ([]Product, error) {
	if threshold <= 0 {
		return nil, nil
	}
	products, _, err := s.repo.List(ctx, ListFilters{MaxStock: &threshold, SortBy: "stock"})
	return products, err
}

func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	if id == "" {
		return Product{}, errors.New("catalog: product id required")
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, product Product) (Product, error) {
	if err := s.validate(product); err != nil {
		return Product{}, err
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return Product{}, err
	}
	s.record(ctx, "catalog:create", created.ID, map[string]any{"name": created.Name, "stock": created.Stock})
	return created, nil
}

func (s *Service) Update(ctx context.Context, id string, product Product) error {
	if id == "" {
		return errors.New("catalog: product id required")
	}
	if err := s.validate(product); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, product); err != nil {
		return err
	}
	s.record(ctx, "catalog:update", id, map[string]any{"name": product.Name})
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("catalog: product id required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, "catalog:delete", id, nil)
	return nil
}

// SetStock applies a direct stock correction from product management.
func (s *Service) SetStock(ctx context.Context, id string, stock int) error {
	if id == "" {
		return errors.New("catalog: product id required")
	}
	if stock < 0 {
		return fmt.Errorf("catalog: stock must be >= 0, got %d", stock)
	}
	if err := s.repo.SetStock(ctx, id, stock); err != nil {
		return err
	}
	s.record(ctx, "catalog:set_stock", id, map[string]any{"stock": stock})
	return nil
}

func (s *Service) record(ctx context.Context, action, entityID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Action:   action,
		Entity:   "product",
		EntityID: entityID,
		Meta:     meta,
	})
}
