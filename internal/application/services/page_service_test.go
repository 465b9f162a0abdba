package services

import (
	"testing"

	"github.com/AtRiskMedia/pagegrid-go/internal/domain/entities/layout"
	"github.com/AtRiskMedia/pagegrid-go/internal/domain/repositories"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/observability/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPageService(t *testing.T) (*PageService, *memoryPages, *recordingPublisher) {
	t.Helper()
	repo := newMemoryPages()
	pub := &recordingPublisher{}
	return NewPageService(repo, layout.NewSequentialIDs(), pub, logging.NewDiscardLogger()), repo, pub
}

func TestPageServiceCreateAndGet(t *testing.T) {
	svc, _, pub := newPageService(t)

	rec, err := svc.Create("home", "Home", "/")
	require.NoError(t, err)
	assert.Equal(t, repositories.VariantDraft, rec.Variant)
	require.Len(t, rec.Document.Layout.Rows, 1)
	assert.Equal(t, "r1", rec.Document.Layout.Rows[0].ID)

	_, err = svc.Create("home", "Again", "/again")
	assert.ErrorIs(t, err, layout.ErrConflict)

	_, err = svc.Create("", "Nameless", "/")
	assert.ErrorIs(t, err, layout.ErrInvalidArgument)

	got, err := svc.Get("home", repositories.VariantDraft)
	require.NoError(t, err)
	assert.Equal(t, rec.Document, got.Document)

	_, err = svc.Get("home", repositories.VariantPublished)
	assert.ErrorIs(t, err, layout.ErrNotFound)
	_, err = svc.Get("home", "staging")
	assert.ErrorIs(t, err, layout.ErrInvalidArgument)

	assert.Equal(t, []string{"create"}, pub.operations())
}

func TestPageServiceSaveValidates(t *testing.T) {
	svc, repo, _ := newPageService(t)
	_, err := svc.Create("home", "Home", "/")
	require.NoError(t, err)

	ghost := "ghost"
	doc := &layout.PageDocument{
		Key: "home", Name: "Home", Route: "/",
		Layout: layout.LayoutDocument{Rows: []layout.RowDocument{
			{ID: "r1", Cells: []layout.CellDocument{{ID: "c1", ContentItemKey: &ghost, ColSpan: 1}}},
		}},
	}
	stores := repo.stores
	_, err = svc.Save("home", doc)
	assert.ErrorIs(t, err, layout.ErrValidation)
	assert.True(t, layout.IsDanglingReference(err))
	assert.Equal(t, stores, repo.stores, "a rejected document is not stored")

	_, err = svc.Save("about", &layout.PageDocument{Key: "home"})
	assert.ErrorIs(t, err, layout.ErrInvalidArgument)

	doc.Layout.Rows[0].Cells[0].ContentItemKey = nil
	doc.Layout.Rows[0].Cells[0].ColSpan = 0
	rec, err := svc.Save("home", doc)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Document.Layout.Rows[0].Cells[0].ColSpan, "saved documents are canonical")
}

func TestPageServicePublishAndList(t *testing.T) {
	svc, _, pub := newPageService(t)
	_, err := svc.Create("home", "Home", "/")
	require.NoError(t, err)
	_, err = svc.Create("about", "About", "/about")
	require.NoError(t, err)

	_, err = svc.Publish("missing")
	assert.ErrorIs(t, err, layout.ErrNotFound)

	published, err := svc.Publish("home")
	require.NoError(t, err)
	assert.Equal(t, repositories.VariantPublished, published.Variant)

	drafts, err := svc.ListKeys(repositories.VariantDraft)
	require.NoError(t, err)
	assert.Equal(t, []string{"about", "home"}, drafts)

	live, err := svc.ListKeys(repositories.VariantPublished)
	require.NoError(t, err)
	assert.Equal(t, []string{"home"}, live)

	assert.Equal(t, []string{"create", "create", "publish"}, pub.operations())
}

func TestPageServiceDelete(t *testing.T) {
	svc, _, _ := newPageService(t)
	_, err := svc.Create("home", "Home", "/")
	require.NoError(t, err)
	_, err = svc.Publish("home")
	require.NoError(t, err)

	require.NoError(t, svc.Delete("home"))
	_, err = svc.Get("home", repositories.VariantPublished)
	assert.ErrorIs(t, err, layout.ErrNotFound)

	assert.ErrorIs(t, svc.Delete("home"), layout.ErrNotFound)
}

func TestPageServiceRepair(t *testing.T) {
	svc, repo, _ := newPageService(t)
	ghost, hero := "ghost", "hero"
	repo.put(repositories.VariantDraft, &layout.PageDocument{
		Key: "home", Name: "Home", Route: "/",
		Layout: layout.LayoutDocument{Rows: []layout.RowDocument{
			{ID: "r1", Cells: []layout.CellDocument{
				{ID: "c1", ContentItemKey: &ghost, ColSpan: 6},
				{ID: "c2", ContentItemKey: &hero, ColSpan: 6},
			}},
		}},
		Components: []layout.ContentItem{{Key: "hero", Type: "heading"}},
	})

	_, err := svc.Publish("home")
	assert.True(t, layout.IsDanglingReference(err))

	result, err := svc.Repair("home")
	require.NoError(t, err)
	assert.Equal(t, []layout.CellRef{{RowID: "r1", CellID: "c1"}}, result.Cleared)
	cells := result.Page.Document.Layout.Rows[0].Cells
	assert.Nil(t, cells[0].ContentItemKey)
	assert.Equal(t, "hero", *cells[1].ContentItemKey)

	again, err := svc.Repair("home")
	require.NoError(t, err)
	assert.Empty(t, again.Cleared)

	_, err = svc.Publish("home")
	assert.NoError(t, err)
}

func TestPageServiceStoreFailure(t *testing.T) {
	svc, repo, pub := newPageService(t)
	repo.failOn = "home"

	_, err := svc.Create("home", "Home", "/")
	assert.Error(t, err)
	assert.Empty(t, layout.KindOf(err))
	assert.Empty(t, pub.operations())
}
