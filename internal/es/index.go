package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"
	"github.com/google/uuid"

	"github.com/Skotchmaster/inventory/internal/models"
)

// ProductIndex keeps one document per product, keyed by product id. The owner
// field is a keyword so searches can filter on it exactly.
type ProductIndex struct {
	Client *elasticsearch.Client
	Index  string
}

var productMapping = map[string]any{
	"mappings": map[string]any{
		"properties": map[string]any{
			"id":         map[string]any{"type": "keyword"},
			"owner":      map[string]any{"type": "keyword"},
			"name":       map[string]any{"type": "text"},
			"category":   map[string]any{"type": "text"},
			"status":     map[string]any{"type": "keyword"},
			"cost":       map[string]any{"type": "double"},
			"price":      map[string]any{"type": "double"},
			"stock":      map[string]any{"type": "long"},
			"created_at": map[string]any{"type": "date"},
			"updated_at": map[string]any{"type": "date"},
		},
	},
}

func encode(v any) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return &buf, nil
}

func responseError(op string, res *esapi.Response) error {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
	return fmt.Errorf("es: %s: %s: %s", op, res.Status(), strings.TrimSpace(string(body)))
}

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (ix *ProductIndex) EnsureIndex(ctx context.Context) error {
	res, err := ix.Client.Indices.Exists([]string{ix.Index}, ix.Client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("es: index exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("es: index exists: %s", res.Status())
	}

	body, err := encode(productMapping)
	if err != nil {
		return err
	}
	res, err = ix.Client.Indices.Create(ix.Index,
		ix.Client.Indices.Create.WithContext(ctx),
		ix.Client.Indices.Create.WithBody(body),
	)
	if err != nil {
		return fmt.Errorf("es: create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("create index", res)
	}
	return nil
}

func (ix *ProductIndex) IndexProduct(ctx context.Context, p models.Product) error {
	body, err := encode(p)
	if err != nil {
		return err
	}

	res, err := ix.Client.Index(ix.Index, body,
		ix.Client.Index.WithContext(ctx),
		ix.Client.Index.WithDocumentID(p.ID.String()),
	)
	if err != nil {
		return fmt.Errorf("es: index product: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index product", res)
	}
	return nil
}

// DeleteProduct treats a missing document as already deleted.
func (ix *ProductIndex) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res, err := ix.Client.Delete(ix.Index, id.String(), ix.Client.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("es: delete product: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("delete product", res)
	}
	return nil
}

func (ix *ProductIndex) Search(ctx context.Context, owner uuid.UUID, q string, from, size int) (int64, []models.Product, error) {
	body, err := encode(map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []any{
					map[string]any{"term": map[string]any{"owner": owner.String()}},
				},
				"must": []any{
					map[string]any{"multi_match": map[string]any{
						"query":     q,
						"fields":    []string{"name^2", "category"},
						"fuzziness": "AUTO",
					}},
				},
			},
		},
		"from": from,
		"size": size,
	})
	if err != nil {
		return 0, nil, err
	}

	res, err := ix.Client.Search(
		ix.Client.Search.WithContext(ctx),
		ix.Client.Search.WithIndex(ix.Index),
		ix.Client.Search.WithBody(body),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("es: search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, responseError("search", res)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("es: decode search: %w", err)
	}

	prods := make([]models.Product, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		// drop foreign hits
		if hit.Source.OwnerID == owner {
			prods = append(prods, hit.Source)
		}
	}
	return r.Hits.Total.Value, prods, nil
}
