package elasticsearch

import (
	"context"
	"strconv"
	"time"
)

// ListingIndex is the index holding searchable listing documents
const ListingIndex = "titanmarket-listings"

// ListingDocument is the indexed projection of a listing
type ListingDocument struct {
	ID          uint64    `json:"id"`
	SellerID    uint64    `json:"seller_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Condition   string    `json:"condition"`
	Status      string    `json:"status"`
	Location    string    `json:"location,omitempty"`
	Price       float64   `json:"price"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListingQuery holds the keyword plus the structured filters applied alongside it
type ListingQuery struct {
	Keyword   string
	Category  string
	Condition string
	Status    string
	SellerID  *uint64
	MinPrice  *float64
	MaxPrice  *float64
	From      int
	Size      int
}

// ListingIndexMapping is the mapping used by EnsureListingIndex
var ListingIndexMapping = map[string]interface{}{
	"mappings": map[string]interface{}{
		"properties": map[string]interface{}{
			"id":          map[string]interface{}{"type": "long"},
			"seller_id":   map[string]interface{}{"type": "long"},
			"title":       map[string]interface{}{"type": "text"},
			"description": map[string]interface{}{"type": "text"},
			"category":    map[string]interface{}{"type": "keyword"},
			"condition":   map[string]interface{}{"type": "keyword"},
			"status":      map[string]interface{}{"type": "keyword"},
			"location":    map[string]interface{}{"type": "text"},
			"price":       map[string]interface{}{"type": "double"},
			"created_at":  map[string]interface{}{"type": "date"},
		},
	},
}

// EnsureListingIndex creates the listing index if missing
func (c *Client) EnsureListingIndex(ctx context.Context) error {
	return c.CreateIndex(ctx, ListingIndex, ListingIndexMapping)
}

// IndexListing upserts a listing document
func (c *Client) IndexListing(ctx context.Context, doc *ListingDocument) error {
	return c.IndexDocument(ctx, ListingIndex, strconv.FormatUint(doc.ID, 10), doc)
}

// SearchListings returns matching listing IDs, newest first, and the total count
func (c *Client) SearchListings(ctx context.Context, q ListingQuery) ([]uint64, int64, error) {
	hits, total, err := c.Search(ctx, ListingIndex, BuildListingQuery(q), q.From, q.Size)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uint64, 0, len(hits))
	for _, h := range hits {
		id, err := strconv.ParseUint(h.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, total, nil
}

// BuildListingQuery builds a bool query: multi_match on the keyword, term/range filters for the rest
func BuildListingQuery(q ListingQuery) map[string]interface{} {
	filters := []interface{}{}
	term := func(field, value string) {
		if value != "" {
			filters = append(filters, map[string]interface{}{"term": map[string]interface{}{field: value}})
		}
	}
	term("category", q.Category)
	term("condition", q.Condition)
	term("status", q.Status)
	if q.SellerID != nil {
		filters = append(filters, map[string]interface{}{"term": map[string]interface{}{"seller_id": *q.SellerID}})
	}

	priceRange := map[string]interface{}{}
	if q.MinPrice != nil {
		priceRange["gte"] = *q.MinPrice
	}
	if q.MaxPrice != nil {
		priceRange["lte"] = *q.MaxPrice
	}
	if len(priceRange) > 0 {
		filters = append(filters, map[string]interface{}{"range": map[string]interface{}{"price": priceRange}})
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []interface{}{
					map[string]interface{}{
						"multi_match": map[string]interface{}{
							"query":  q.Keyword,
							"fields": []string{"title^3", "description", "location"},
						},
					},
				},
				"filter": filters,
			},
		},
		// newest first, matching the database browse order; relevance breaks ties
		"sort": []interface{}{
			map[string]interface{}{"created_at": "desc"},
			map[string]interface{}{"_score": "desc"},
		},
		"_source": false,
	}
}
