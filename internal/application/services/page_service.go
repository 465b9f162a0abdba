// Package services provides application-level services that orchestrate
// business logic and coordinate between repositories and domain entities.
package services

import (
	"fmt"

	"github.com/AtRiskMedia/pagegrid-go/internal/domain/entities/layout"
	"github.com/AtRiskMedia/pagegrid-go/internal/domain/repositories"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/observability/logging"
)

// PageService orchestrates whole-page operations over the page repository.
// Writes to one page key are serialised with the layout service through a
// shared per-key lock.
type PageService struct {
	pageRepo  repositories.PageRepository
	ids       layout.IDGenerator
	publisher messaging.Publisher
	logger    *logging.ChanneledLogger
	locks     *keyedMutex
}

// NewPageService creates a new page application service
func NewPageService(pageRepo repositories.PageRepository, ids layout.IDGenerator, publisher messaging.Publisher, logger *logging.ChanneledLogger) *PageService {
	if ids == nil {
		ids = layout.ULIDGenerator{}
	}
	if publisher == nil {
		publisher = messaging.NopPublisher{}
	}
	return &PageService{
		pageRepo:  pageRepo,
		ids:       ids,
		publisher: publisher,
		logger:    logger,
		locks:     newKeyedMutex(),
	}
}

// RepairResult reports what Repair cleared.
type RepairResult struct {
	Page    *repositories.PageRecord `json:"page"`
	Cleared []layout.CellRef         `json:"cleared"`
}

// Create stores a new one-row, one-cell draft.
func (s *PageService) Create(key, name, route string) (*repositories.PageRecord, error) {
	unlock := s.locks.Lock(key)
	defer unlock()

	m, err := layout.NewModel(key, name, route, layout.WithIDGenerator(s.ids))
	if err != nil {
		return nil, err
	}

	existing, err := s.pageRepo.FindByKey(key, repositories.VariantDraft)
	if err != nil {
		return nil, fmt.Errorf("failed to check page %s: %w", key, err)
	}
	if existing != nil {
		return nil, layout.NewError(layout.KindConflict, "create", "page %q already exists", key)
	}

	rec, err := s.store(repositories.VariantDraft, m.Serialize(), "create")
	if err != nil {
		return nil, err
	}
	s.logger.Content().Info("Page created", "pageKey", key, "route", route)
	return rec, nil
}

// Get returns the stored variant of key.
func (s *PageService) Get(key string, variant repositories.Variant) (*repositories.PageRecord, error) {
	if !variant.Valid() {
		return nil, layout.NewError(layout.KindInvalidArgument, "get", "unknown variant %q", variant)
	}
	rec, err := s.pageRepo.FindByKey(key, variant)
	if err != nil {
		return nil, fmt.Errorf("failed to get page %s: %w", key, err)
	}
	if rec == nil {
		return nil, layout.NewError(layout.KindNotFound, "get", "page %q has no %s version", key, variant)
	}
	return rec, nil
}

// ListKeys returns every page key stored as variant, sorted.
func (s *PageService) ListKeys(variant repositories.Variant) ([]string, error) {
	if !variant.Valid() {
		return nil, layout.NewError(layout.KindInvalidArgument, "list", "unknown variant %q", variant)
	}
	keys, err := s.pageRepo.FindAllKeys(variant)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	return keys, nil
}

// Save validates doc and stores its canonical form as the draft of key.
func (s *PageService) Save(key string, doc *layout.PageDocument) (*repositories.PageRecord, error) {
	if doc != nil && doc.Key != key {
		return nil, layout.NewError(layout.KindInvalidArgument, "save", "document key %q does not match page %q", doc.Key, key)
	}
	m, err := layout.Deserialize(doc)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(key)
	defer unlock()
	return s.store(repositories.VariantDraft, m.Serialize(), "save")
}

// Delete removes every variant of key.
func (s *PageService) Delete(key string) error {
	unlock := s.locks.Lock(key)
	defer unlock()

	found := false
	for _, v := range []repositories.Variant{repositories.VariantDraft, repositories.VariantPublished} {
		rec, err := s.pageRepo.FindByKey(key, v)
		if err != nil {
			return fmt.Errorf("failed to check page %s: %w", key, err)
		}
		found = found || rec != nil
	}
	if !found {
		return layout.NewError(layout.KindNotFound, "delete", "page %q not found", key)
	}

	if err := s.pageRepo.Delete(key); err != nil {
		return fmt.Errorf("failed to delete page %s: %w", key, err)
	}
	s.publisher.Publish(messaging.PageEvent{PageKey: key, Operation: "delete"})
	s.logger.Content().Info("Page deleted", "pageKey", key)
	return nil
}

// Publish copies the current draft to the published variant after
// validating it.
func (s *PageService) Publish(key string) (*repositories.PageRecord, error) {
	unlock := s.locks.Lock(key)
	defer unlock()

	draft, err := s.Get(key, repositories.VariantDraft)
	if err != nil {
		return nil, err
	}
	m, err := layout.Deserialize(draft.Document)
	if err != nil {
		return nil, fmt.Errorf("failed to publish page %s: %w", key, err)
	}
	return s.store(repositories.VariantPublished, m.Serialize(), "publish")
}

// Repair clears orphaned cell references in the draft of key and stores the
// result. A draft with nothing to clear is returned unchanged.
func (s *PageService) Repair(key string) (*RepairResult, error) {
	unlock := s.locks.Lock(key)
	defer unlock()

	draft, err := s.Get(key, repositories.VariantDraft)
	if err != nil {
		return nil, err
	}

	doc := draft.Document
	cleared := RepairDocument(doc)
	if len(cleared) == 0 {
		return &RepairResult{Page: draft, Cleared: []layout.CellRef{}}, nil
	}
	m, err := layout.Deserialize(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to repair page %s: %w", key, err)
	}
	rec, err := s.store(repositories.VariantDraft, m.Serialize(), "repair")
	if err != nil {
		return nil, err
	}
	s.logger.Content().Warn("Page repaired", "pageKey", key, "cleared", len(cleared))
	return &RepairResult{Page: rec, Cleared: cleared}, nil
}

// RepairDocument empties every cell of doc that references a key missing
// from doc.Components and returns those cells.
func RepairDocument(doc *layout.PageDocument) []layout.CellRef {
	orphans := layout.OrphanedReferences(doc)
	if len(orphans) == 0 {
		return nil
	}
	orphaned := make(map[string]bool, len(orphans))
	for _, ref := range orphans {
		orphaned[ref.RowID+"/"+ref.CellID] = true
	}
	for ri := range doc.Layout.Rows {
		row := &doc.Layout.Rows[ri]
		for ci := range row.Cells {
			if orphaned[row.ID+"/"+row.Cells[ci].ID] {
				row.Cells[ci].ContentItemKey = nil
			}
		}
	}
	return orphans
}

// loadDraft returns the draft of key as a model. Callers hold the key lock.
func (s *PageService) loadDraft(op, key string) (*layout.Model, error) {
	rec, err := s.pageRepo.FindByKey(key, repositories.VariantDraft)
	if err != nil {
		return nil, fmt.Errorf("failed to load page %s: %w", key, err)
	}
	if rec == nil {
		return nil, layout.NewError(layout.KindNotFound, op, "page %q not found", key)
	}
	m, err := layout.Deserialize(rec.Document, layout.WithIDGenerator(s.ids))
	if err != nil {
		return nil, fmt.Errorf("failed to load page %s: %w", key, err)
	}
	return m, nil
}

// store writes doc and notifies editors. Callers hold the key lock.
func (s *PageService) store(variant repositories.Variant, doc *layout.PageDocument, op string) (*repositories.PageRecord, error) {
	rec, err := s.pageRepo.Store(variant, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to store page %s: %w", doc.Key, err)
	}
	s.publisher.Publish(messaging.PageEvent{
		PageKey:   doc.Key,
		Variant:   string(variant),
		Operation: op,
		Changed:   rec.Changed,
	})
	return rec, nil
}
