package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/inventory/internal/logging"
	"github.com/Skotchmaster/inventory/internal/models"
	"github.com/Skotchmaster/inventory/internal/repo"
)

// Indexer mirrors products into a search backend.
type Indexer interface {
	IndexProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, owner uuid.UUID, q string, from, size int) (int64, []models.Product, error)
}

// ProductService is the ownership boundary for product records. Identifiers
// arrive raw and are parsed here before they reach the repository.
type ProductService struct {
	Repo   *repo.GormRepo
	Index  Indexer
	Events Publisher

	// StrictDelete requires a caller on delete. Without it a delete that
	// names no caller removes any record by id.
	StrictDelete bool
}

type ProductInput struct {
	Name     string
	Category string
	Cost     float64
	Price    float64
	Stock    float64
	Status   string
}

// ProductPatch holds the fields an update may touch; nil means unchanged.
// There is no owner field.
type ProductPatch struct {
	Name     *string
	Category *string
	Cost     *float64
	Price    *float64
	Stock    *float64
	Status   *string
}

type SearchResult struct {
	Total    int64            `json:"total"`
	Products []models.Product `json:"products"`
}

// ParseID accepts only canonical UUIDs. Placeholders such as "undefined" and
// "null" fail like any other malformed value.
func ParseID(raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) != 36 {
		return uuid.Nil, fmt.Errorf("%w: malformed identifier", ErrValidation)
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: malformed identifier", ErrValidation)
	}
	return id, nil
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func stockOf(v float64) int64 {
	v = finite(v)
	// float64(MaxInt64) rounds up to 2^63, which int64 cannot hold
	if v >= math.MaxInt64 || v < math.MinInt64 {
		return 0
	}
	return int64(math.Trunc(v))
}

func statusOr(s string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return models.DefaultProductStatus
}

func (s *ProductService) List(ctx context.Context, rawOwner string) ([]models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "products.list")

	owner, err := ParseID(rawOwner)
	if err != nil {
		l.Debug("list_products_empty", "reason", "malformed owner id")
		return []models.Product{}, nil
	}

	items, err := s.Repo.ListByOwner(ctx, owner)
	if err != nil {
		l.Error("list_products_error", "status", 500, "reason", "cannot list products", "error", err)
		return nil, err
	}
	return items, nil
}

func (s *ProductService) Create(ctx context.Context, rawOwner string, in ProductInput) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "products.create")

	owner, err := ParseID(rawOwner)
	if err != nil {
		l.Warn("create_product_error", "status", 400, "reason", "invalid owner id")
		return nil, fmt.Errorf("%w: invalid owner id", ErrValidation)
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		l.Warn("create_product_error", "status", 400, "reason", "name is required")
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}

	prod := models.Product{
		OwnerID:  owner,
		Name:     name,
		Category: strings.TrimSpace(in.Category),
		Cost:     finite(in.Cost),
		Price:    finite(in.Price),
		Stock:    stockOf(in.Stock),
		Status:   statusOr(in.Status),
	}
	if err := s.Repo.CreateProduct(ctx, &prod); err != nil {
		l.Error("create_product_error", "status", 500, "reason", "cannot add product to db", "error", err)
		return nil, err
	}

	s.index(ctx, prod)
	publish(ctx, s.Events, TopicProductEvents, owner.String(), map[string]any{
		"type":      "product_created",
		"productID": prod.ID,
		"ownerID":   prod.OwnerID,
		"name":      prod.Name,
	})

	l.Info("create_product_success", "product_id", prod.ID)
	return &prod, nil
}

// resolveCaller parses an optional caller id; an empty value yields uuid.Nil.
func resolveCaller(raw string) (uuid.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return uuid.Nil, nil
	}
	id, err := ParseID(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid caller id", ErrValidation)
	}
	return id, nil
}

// authorize loads the product and checks it belongs to caller. A nil caller
// skips the ownership check.
func (s *ProductService) authorize(ctx context.Context, id, caller uuid.UUID) (*models.Product, error) {
	prod, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if caller != uuid.Nil && prod.OwnerID != caller {
		return nil, ErrForbidden
	}
	return prod, nil
}

func (p ProductPatch) changes() (map[string]any, error) {
	changes := map[string]any{}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", ErrValidation)
		}
		changes["name"] = name
	}
	if p.Category != nil {
		changes["category"] = strings.TrimSpace(*p.Category)
	}
	if p.Cost != nil {
		changes["cost"] = finite(*p.Cost)
	}
	if p.Price != nil {
		changes["price"] = finite(*p.Price)
	}
	if p.Stock != nil {
		changes["stock"] = stockOf(*p.Stock)
	}
	if p.Status != nil {
		changes["status"] = statusOr(*p.Status)
	}
	return changes, nil
}

func (s *ProductService) Update(ctx context.Context, rawCaller, rawID string, patch ProductPatch) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "products.update")

	id, err := ParseID(rawID)
	if err != nil {
		l.Warn("update_product_error", "status", 400, "reason", "invalid product id")
		return nil, fmt.Errorf("%w: invalid product id", ErrValidation)
	}
	caller, err := resolveCaller(rawCaller)
	if err != nil {
		l.Warn("update_product_error", "status", 400, "reason", "invalid caller id")
		return nil, err
	}
	changes, err := patch.changes()
	if err != nil {
		l.Warn("update_product_error", "status", 400, "reason", "invalid body", "error", err)
		return nil, err
	}

	if _, err := s.authorize(ctx, id, caller); err != nil {
		s.logDenied(l, "update_product_error", err)
		return nil, err
	}

	prod, err := s.Repo.UpdateProduct(ctx, id, changes)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("update_product_error", "status", 404, "reason", "product not found")
			return nil, ErrNotFound
		}
		l.Error("update_product_error", "status", 500, "reason", "cannot update product", "error", err)
		return nil, err
	}

	s.index(ctx, *prod)
	publish(ctx, s.Events, TopicProductEvents, prod.OwnerID.String(), map[string]any{
		"type":      "product_updated",
		"productID": prod.ID,
		"ownerID":   prod.OwnerID,
		"name":      prod.Name,
	})

	l.Info("update_product_success", "product_id", prod.ID)
	return prod, nil
}

func (s *ProductService) Delete(ctx context.Context, rawCaller, rawID string) error {
	l := logging.FromContext(ctx).With("svc", "products.delete")

	id, err := ParseID(rawID)
	if err != nil {
		l.Warn("delete_product_error", "status", 400, "reason", "invalid product id")
		return fmt.Errorf("%w: invalid product id", ErrValidation)
	}
	caller, err := resolveCaller(rawCaller)
	if err != nil {
		l.Warn("delete_product_error", "status", 400, "reason", "invalid caller id")
		return err
	}
	if caller == uuid.Nil && s.StrictDelete {
		l.Warn("delete_product_error", "status", 400, "reason", "caller id required")
		return fmt.Errorf("%w: caller id is required to delete", ErrValidation)
	}

	owner := caller
	if caller != uuid.Nil {
		prod, err := s.authorize(ctx, id, caller)
		if err != nil {
			s.logDenied(l, "delete_product_error", err)
			return err
		}
		owner = prod.OwnerID
	}

	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("delete_product_error", "status", 404, "reason", "product not found")
			return ErrNotFound
		}
		l.Error("delete_product_error", "status", 500, "reason", "cannot delete product from db", "error", err)
		return err
	}

	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			l.Warn("index_delete_failed", "product_id", id, "error", err)
		}
	}
	event := map[string]any{
		"type":      "product_deleted",
		"productID": id,
	}
	key := id.String()
	if owner != uuid.Nil {
		event["ownerID"] = owner
		key = owner.String()
	}
	publish(ctx, s.Events, TopicProductEvents, key, event)

	l.Info("delete_product_success", "product_id", id)
	return nil
}

// Search is owner scoped like List: a malformed owner yields no results. The
// index is preferred; when it is absent or failing the database is queried.
func (s *ProductService) Search(ctx context.Context, rawOwner, q string, from, size int) (*SearchResult, error) {
	l := logging.FromContext(ctx).With("svc", "products.search")

	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("%w: query is required", ErrValidation)
	}

	owner, err := ParseID(rawOwner)
	if err != nil {
		return &SearchResult{Products: []models.Product{}}, nil
	}

	if s.Index != nil {
		total, items, err := s.Index.Search(ctx, owner, q, from, size)
		if err == nil {
			return &SearchResult{Total: total, Products: nonNil(items)}, nil
		}
		l.Warn("index_search_failed", "reason", "falling back to database", "error", err)
	}

	total, items, err := s.Repo.SearchProducts(ctx, owner, q, from, size)
	if err != nil {
		l.Error("search_products_error", "status", 500, "reason", "cannot search products", "error", err)
		return nil, err
	}
	return &SearchResult{Total: total, Products: nonNil(items)}, nil
}

func (s *ProductService) index(ctx context.Context, p models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("index_product_failed", "product_id", p.ID, "error", err)
	}
}

func (s *ProductService) logDenied(l *slog.Logger, event string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		l.Warn(event, "status", 404, "reason", "product not found")
	case errors.Is(err, ErrForbidden):
		l.Warn(event, "status", 403, "reason", "caller does not own the product")
	default:
		l.Error(event, "status", 500, "reason", "cannot load product", "error", err)
	}
}

func nonNil(items []models.Product) []models.Product {
	if items == nil {
		return []models.Product{}
	}
	return items
}
