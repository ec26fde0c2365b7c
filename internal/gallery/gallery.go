package gallery

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Record is one gallery entry.
type Record struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store persists gallery records. List returns newest first; an empty
// category matches everything.
type Store interface {
	Add(ctx context.Context, r Record) (Record, error)
	List(ctx context.Context, category string, limit int) ([]Record, error)
}

// prepare fills the id and timestamp of a new record.
func prepare(r Record, now time.Time) Record {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now.UTC()
	}
	return r
}
