package settings

import (
	"context"
	"errors"
	"sort"

	"ukm-ponja/internal/docstore"
)

const DefaultDocument = "settings/chart"

// FirestoreStore keeps the document in Firestore, by default at settings/chart.
type FirestoreStore struct {
	client  *docstore.Client
	docPath string
}

func NewFirestoreStore(client *docstore.Client, docPath string) *FirestoreStore {
	if docPath == "" {
		docPath = DefaultDocument
	}
	return &FirestoreStore{client: client, docPath: docPath}
}

func (s *FirestoreStore) Load(ctx context.Context) (*Config, error) {
	doc, err := s.client.Get(ctx, s.docPath)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &Config{
		TargetData:     doc.Fields["targetData"].String(),
		ProgramService: doc.Fields["programService"].String(),
		PersonInCharge: doc.Fields["personInCharge"].String(),
		Period:         doc.Fields["period"].String(),
	}, nil
}

// Save writes only the patch fields through the update mask.
func (s *FirestoreStore) Save(ctx context.Context, p Patch) error {
	if p.IsEmpty() {
		return ErrEmptyPatch
	}
	vals := p.values()
	fields := make(docstore.Fields, len(vals))
	mask := make([]string, 0, len(vals))
	for k, v := range vals {
		fields[k] = v
		mask = append(mask, k)
	}
	sort.Strings(mask)
	return s.client.Merge(ctx, s.docPath, fields, mask)
}
