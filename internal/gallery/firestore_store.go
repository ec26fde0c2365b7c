package gallery

import (
	"context"
	"time"

	"ukm-ponja/internal/docstore"
)

const DefaultCollection = "gallery"

// scanPage is the number of documents List reads per request.
const scanPage = 100

type FirestoreStore struct {
	client     *docstore.Client
	collection string
}

func NewFirestoreStore(client *docstore.Client, collection string) *FirestoreStore {
	if collection == "" {
		collection = DefaultCollection
	}
	return &FirestoreStore{client: client, collection: collection}
}

func (s *FirestoreStore) Add(ctx context.Context, r Record) (Record, error) {
	r = prepare(r, time.Now())
	err := s.client.Create(ctx, s.collection, r.ID, docstore.Fields{
		"name":      r.Name,
		"url":       r.URL,
		"category":  r.Category,
		"createdAt": r.CreatedAt,
	})
	if err != nil {
		return Record{}, err
	}
	return r, nil
}

// List pages through the collection newest first until limit records of the
// category are found. The category is matched here so that no composite index
// is needed.
func (s *FirestoreStore) List(ctx context.Context, category string, limit int) ([]Record, error) {
	out := []Record{}
	err := s.client.Scan(ctx, s.collection, "createdAt desc", scanPage, func(d docstore.Document) bool {
		r := Record{
			ID:        d.ID,
			Name:      d.Fields["name"].String(),
			URL:       d.Fields["url"].String(),
			Category:  d.Fields["category"].String(),
			CreatedAt: d.Fields["createdAt"].Time(),
		}
		if category == "" || r.Category == category {
			out = append(out, r)
		}
		return limit <= 0 || len(out) < limit
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
