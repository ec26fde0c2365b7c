package gallery

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ukm-ponja/internal/docstore/docstoretest"
)

func storeContract(t *testing.T, s Store) {
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	r1, err := s.Add(ctx, Record{Name: "Grafik Januari", URL: "https://img/1.png", Category: "Grafik", CreatedAt: base})
	require.NoError(t, err)
	assert.NotEmpty(t, r1.ID)

	_, err = s.Add(ctx, Record{Name: "Posyandu", URL: "https://img/2.png", Category: "Kegiatan", CreatedAt: base.Add(time.Hour)})
	require.NoError(t, err)
	_, err = s.Add(ctx, Record{Name: "Grafik Februari", URL: "https://img/3.png", Category: "Grafik", CreatedAt: base.Add(2 * time.Hour)})
	require.NoError(t, err)

	all, err := s.List(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Grafik Februari", all[0].Name, "newest first")

	charts, err := s.List(ctx, "Grafik", 0)
	require.NoError(t, err)
	require.Len(t, charts, 2)
	assert.Equal(t, "https://img/1.png", charts[1].URL)

	one, err := s.List(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)
}

func TestFileStore_Contract(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "gallery.jsonl"))
	require.NoError(t, err)
	storeContract(t, s)
}

func TestFirestoreStore_Contract(t *testing.T) {
	srv := docstoretest.NewServer(t)
	storeContract(t, NewFirestoreStore(srv.Client(t), ""))
}

func TestFirestoreStore_CategoryBeyondNewestWindow(t *testing.T) {
	srv := docstoretest.NewServer(t)
	s := NewFirestoreStore(srv.Client(t), "")
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := s.Add(ctx, Record{Name: "Grafik lama", URL: "https://img/old.png", Category: "Grafik", CreatedAt: base})
	require.NoError(t, err)
	for i := 1; i <= 250; i++ {
		_, err := s.Add(ctx, Record{Name: "Kegiatan", URL: "https://img/k.png", Category: "Kegiatan", CreatedAt: base.Add(time.Duration(i) * time.Minute)})
		require.NoError(t, err)
	}

	charts, err := s.List(ctx, "Grafik", 10)
	require.NoError(t, err)
	require.Len(t, charts, 1)
	assert.Equal(t, "Grafik lama", charts[0].Name)

	recent, err := s.List(ctx, "Kegiatan", 5)
	require.NoError(t, err)
	require.Len(t, recent, 5)
	assert.True(t, recent[0].CreatedAt.Equal(base.Add(250*time.Minute)))

	all, err := s.List(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 251)
}

func TestPrepare(t *testing.T) {
	now := time.Date(2025, 5, 5, 5, 5, 5, 0, time.FixedZone("WIB", 7*3600))
	r := prepare(Record{Name: "x"}, now)
	assert.Len(t, r.ID, 36)
	assert.Equal(t, time.UTC, r.CreatedAt.Location())

	kept := prepare(Record{ID: "abc"}, now)
	assert.Equal(t, "abc", kept.ID)
}
