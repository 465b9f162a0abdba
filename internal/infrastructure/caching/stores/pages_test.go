package stores

import (
	"testing"
	"time"

	"github.com/AtRiskMedia/pagegrid-go/internal/domain/entities/layout"
	"github.com/AtRiskMedia/pagegrid-go/internal/domain/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(key string, variant repositories.Variant) *repositories.PageRecord {
	return &repositories.PageRecord{
		Variant: variant,
		Document: &layout.PageDocument{
			Key: key, Name: key, Route: "/" + key,
			Layout: layout.LayoutDocument{Rows: []layout.RowDocument{
				{ID: "r1", Cells: []layout.CellDocument{{ID: "c1", ColSpan: 1}}},
			}},
			Components: []layout.ContentItem{},
		},
	}
}

func TestPageStoreReturnsDetachedCopies(t *testing.T) {
	ps := NewPageStore(time.Hour)
	ps.SetPage("home", record("home", repositories.VariantDraft))

	got, ok := ps.GetPage("home", repositories.VariantDraft)
	require.True(t, ok)
	got.Document.Name = "changed"

	again, ok := ps.GetPage("home", repositories.VariantDraft)
	require.True(t, ok)
	assert.Equal(t, "home", again.Document.Name)

	_, ok = ps.GetPage("home", repositories.VariantPublished)
	assert.False(t, ok)

	stats := ps.Stats()
	assert.Equal(t, 1, stats.Pages)
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestPageStoreExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ps := NewPageStore(time.Minute)
	ps.now = func() time.Time { return now }

	ps.SetPage("home", record("home", repositories.VariantDraft))
	ps.SetPageKeys(repositories.VariantDraft, []string{"home"})

	now = now.Add(2 * time.Minute)
	_, ok := ps.GetPage("home", repositories.VariantDraft)
	assert.False(t, ok)
	_, ok = ps.GetPageKeys(repositories.VariantDraft)
	assert.False(t, ok)

	assert.Equal(t, 2, ps.PurgeExpired())
	assert.Equal(t, 0, ps.Stats().Pages)
}

func TestPageStoreKeyListing(t *testing.T) {
	ps := NewPageStore(0)
	ps.SetPageKeys(repositories.VariantDraft, []string{"home"})

	ps.SetPage("home", record("home", repositories.VariantDraft))
	keys, ok := ps.GetPageKeys(repositories.VariantDraft)
	require.True(t, ok)
	assert.Equal(t, []string{"home"}, keys)

	ps.SetPage("about", record("about", repositories.VariantDraft))
	_, ok = ps.GetPageKeys(repositories.VariantDraft)
	assert.False(t, ok, "a new key invalidates the listing")
}

func TestPageStoreInvalidate(t *testing.T) {
	ps := NewPageStore(time.Hour)
	ps.SetPage("home", record("home", repositories.VariantDraft))
	ps.SetPage("home", record("home", repositories.VariantPublished))
	ps.SetPage("about", record("about", repositories.VariantDraft))

	ps.InvalidatePage("home")
	_, ok := ps.GetPage("home", repositories.VariantPublished)
	assert.False(t, ok)
	_, ok = ps.GetPage("about", repositories.VariantDraft)
	assert.True(t, ok)

	ps.InvalidateAll()
	assert.Equal(t, 0, ps.Stats().Pages)
}
