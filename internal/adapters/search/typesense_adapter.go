package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/nagoyameshi/backend/internal/domain/entities"
	"github.com/nagoyameshi/backend/internal/domain/repositories"
	tsclient "github.com/nagoyameshi/backend/internal/infrastructure/clients/typesense"
)

// CollectionName is the Typesense collection holding restaurant documents
const CollectionName = "restaurants"

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// TypesenseAdapter implements restaurant search using Typesense
type TypesenseAdapter struct {
	client *tsclient.Client
}

var _ repositories.RestaurantSearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// InitSchema ensures the collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	if _, err := a.client.Client().Collection(CollectionName).Retrieve(ctx); err == nil {
		return nil
	}

	schema := &api.CollectionSchema{
		Name: CollectionName,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "name", Type: "string", Infix: pointer.True()},
			{Name: "category_name", Type: "string", Facet: pointer.True()},
			{Name: "city", Type: "string", Facet: pointer.True()},
			{Name: "floor_price", Type: "int32"},
			{Name: "maximum_price", Type: "int32"},
			{Name: "created_at", Type: "int64"},
		},
		DefaultSortingField: pointer.String("created_at"),
	}

	if _, err := a.client.Client().Collections().Create(ctx, schema); err != nil {
		return fmt.Errorf("failed to create typesense collection: %w", err)
	}
	return nil
}

// DropCollection deletes the collection, ignoring a missing one
func (a *TypesenseAdapter) DropCollection(ctx context.Context) error {
	if _, err := a.client.Client().Collection(CollectionName).Retrieve(ctx); err != nil {
		return nil
	}
	if _, err := a.client.Client().Collection(CollectionName).Delete(ctx); err != nil {
		return fmt.Errorf("failed to drop typesense collection: %w", err)
	}
	return nil
}

// Index upserts a restaurant document
func (a *TypesenseAdapter) Index(ctx context.Context, restaurant *entities.Restaurant) error {
	if _, err := a.client.Client().Collection(CollectionName).Documents().Upsert(ctx, documentFor(restaurant)); err != nil {
		return fmt.Errorf("failed to index restaurant %s: %w", restaurant.ID, err)
	}
	return nil
}

// Delete removes a restaurant from the index
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	if _, err := a.client.Client().Collection(CollectionName).Document(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete restaurant from index: %w", err)
	}
	return nil
}

// Search returns matching restaurant ids in rank order
func (a *TypesenseAdapter) Search(ctx context.Context, filter repositories.RestaurantFilter) ([]string, error) {
	params := buildSearchParams(filter)

	result, err := a.client.Client().Collection(CollectionName).Documents().Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to search restaurants: %w", err)
	}
	if result.Hits == nil {
		return []string{}, nil
	}

	ids := make([]string, 0, len(*result.Hits))
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		if id, ok := (*hit.Document)["id"].(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func documentFor(r *entities.Restaurant) map[string]interface{} {
	return map[string]interface{}{
		"id":            r.ID,
		"name":          r.Name,
		"category_name": r.CategoryName,
		"city":          r.City,
		"floor_price":   r.FloorPrice,
		"maximum_price": r.MaximumPrice,
		"created_at":    r.CreatedAt.Unix(),
	}
}

func buildSearchParams(filter repositories.RestaurantFilter) *api.SearchCollectionParams {
	perPage := filter.Limit
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	q := strings.Join(strings.Fields(filter.Keyword), " ")
	if q == "" {
		q = "*"
	}

	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	// Keywords match as substrings of the name, like the database ILIKE path.
	params := &api.SearchCollectionParams{
		Q:        pointer.String(q),
		QueryBy:  pointer.String("name"),
		SortBy:   pointer.String("_text_match:desc,created_at:desc"),
		Offset:   pointer.Int(offset),
		Limit:    pointer.Int(perPage),
		NumTypos: pointer.String("0"),
		Infix:    pointer.String("always"),
		// every word has to match
		DropTokensThreshold: pointer.Int(0),
	}
	if by := buildFilterBy(filter); by != "" {
		params.FilterBy = pointer.String(by)
	}
	return params
}

func buildFilterBy(filter repositories.RestaurantFilter) string {
	var clauses []string
	if c := strings.TrimSpace(filter.Category); c != "" {
		clauses = append(clauses, fmt.Sprintf("category_name:=`%s`", strings.ReplaceAll(c, "`", "")))
	}
	if filter.FloorPrice != nil {
		clauses = append(clauses, fmt.Sprintf("floor_price:>=%d", *filter.FloorPrice))
	}
	if filter.MaximumPrice != nil {
		clauses = append(clauses, fmt.Sprintf("maximum_price:<=%d", *filter.MaximumPrice))
	}
	return strings.Join(clauses, " && ")
}
