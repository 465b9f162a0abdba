package pages

import (
	"testing"
	"time"

	"github.com/AtRiskMedia/pagegrid-go/internal/domain/entities/contenttypes"
	"github.com/AtRiskMedia/pagegrid-go/internal/domain/entities/layout"
	"github.com/AtRiskMedia/pagegrid-go/internal/domain/repositories"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/caching/stores"
	schema "github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/database"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/persistence/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.NewConnectionWithLogger(database.Options{
		Driver:       database.DriverSQLite,
		Path:         ":memory:",
		MaxOpenConns: 1,
	}, logging.NewDiscardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, schema.NewTableCreator().CreateSchema(db.DB))
	return db
}

func homeDocument(name string) *layout.PageDocument {
	key := "hero"
	return &layout.PageDocument{
		Key: "home", Name: name, Route: "/",
		Layout: layout.LayoutDocument{Rows: []layout.RowDocument{
			{ID: "r1", Cells: []layout.CellDocument{{ID: "c1", ContentItemKey: &key, ColSpan: 12}}},
		}},
		Components: []layout.ContentItem{{
			Key: "hero", Type: "heading", Name: "Hero",
			Properties: map[string]any{"text": "Welcome"},
		}},
	}
}

func TestPageRepositoryStoreAndFind(t *testing.T) {
	db := openTestDB(t)
	cache := stores.NewPageStore(time.Hour)
	repo := NewPageRepository(db.DB, cache, logging.NewDiscardLogger())

	missing, err := repo.FindByKey("home", repositories.VariantDraft)
	require.NoError(t, err)
	assert.Nil(t, missing)

	stored, err := repo.Store(repositories.VariantDraft, homeDocument("Home"))
	require.NoError(t, err)
	assert.Equal(t, repositories.VariantDraft, stored.Variant)
	assert.False(t, stored.Created.IsZero())

	cache.InvalidateAll()
	found, err := repo.FindByKey("home", repositories.VariantDraft)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, homeDocument("Home"), found.Document)

	published, err := repo.FindByKey("home", repositories.VariantPublished)
	require.NoError(t, err)
	assert.Nil(t, published)
}

func TestPageRepositoryLastWriteWins(t *testing.T) {
	db := openTestDB(t)
	repo := NewPageRepository(db.DB, stores.NewPageStore(time.Hour), logging.NewDiscardLogger())

	first, err := repo.Store(repositories.VariantDraft, homeDocument("First"))
	require.NoError(t, err)
	repo.now = func() time.Time { return first.Created.Add(time.Minute) }
	second, err := repo.Store(repositories.VariantDraft, homeDocument("Second"))
	require.NoError(t, err)

	assert.Equal(t, "Second", second.Document.Name)
	assert.Equal(t, first.Created, second.Created)
	assert.True(t, second.Changed.After(first.Changed))
}

func TestPageRepositoryKeysAndDelete(t *testing.T) {
	db := openTestDB(t)
	repo := NewPageRepository(db.DB, stores.NewPageStore(time.Hour), logging.NewDiscardLogger())

	keys, err := repo.FindAllKeys(repositories.VariantDraft)
	require.NoError(t, err)
	assert.Empty(t, keys)

	about := homeDocument("About")
	about.Key, about.Route = "about", "/about"
	_, err = repo.Store(repositories.VariantDraft, homeDocument("Home"))
	require.NoError(t, err)
	_, err = repo.Store(repositories.VariantDraft, about)
	require.NoError(t, err)
	_, err = repo.Store(repositories.VariantPublished, homeDocument("Home"))
	require.NoError(t, err)

	keys, err = repo.FindAllKeys(repositories.VariantDraft)
	require.NoError(t, err)
	assert.Equal(t, []string{"about", "home"}, keys)

	require.NoError(t, repo.Delete("home"))
	for _, v := range []repositories.Variant{repositories.VariantDraft, repositories.VariantPublished} {
		rec, err := repo.FindByKey("home", v)
		require.NoError(t, err)
		assert.Nil(t, rec)
	}
	keys, err = repo.FindAllKeys(repositories.VariantDraft)
	require.NoError(t, err)
	assert.Equal(t, []string{"about"}, keys)
}

func TestContentTypeRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewContentTypeRepository(db.DB)
	for _, ct := range contenttypes.Defaults() {
		require.NoError(t, repo.Store(&ct))
	}

	all, err := repo.FindAll()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "heading", all[0].Type)

	heading, err := repo.FindByType("heading")
	require.NoError(t, err)
	require.NotNil(t, heading)
	assert.Equal(t, contenttypes.Defaults()[2], *heading)

	heading.Properties = append(heading.Properties, contenttypes.PropertySchema{Name: "anchor", Kind: contenttypes.KindString})
	require.NoError(t, repo.Store(heading))
	updated, err := repo.FindByType("heading")
	require.NoError(t, err)
	assert.Len(t, updated.Properties, 3)

	none, err := repo.FindByType("video")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestContentTypeRepositoryReseedReplacesSchema(t *testing.T) {
	db := openTestDB(t)
	for _, ct := range contenttypes.Defaults() {
		require.NoError(t, NewContentTypeRepository(db.DB).Store(&ct))
	}

	// A later start with an edited seed file.
	edited := contenttypes.Defaults()
	edited[0].Properties[0].Required = true
	edited[0].Name = "Body Copy"
	restarted := NewContentTypeRepository(db.DB)
	for _, ct := range edited {
		require.NoError(t, restarted.Store(&ct))
	}

	richText, err := restarted.FindByType("richText")
	require.NoError(t, err)
	require.NotNil(t, richText)
	assert.Equal(t, "Body Copy", richText.Name)
	assert.True(t, richText.Properties[0].Required)

	all, err := restarted.FindAll()
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
