package services

import (
	"github.com/AtRiskMedia/pagegrid-go/internal/domain/entities/layout"
	"github.com/AtRiskMedia/pagegrid-go/internal/domain/repositories"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/observability/logging"
)

// LayoutService applies single grid edits to a page draft. Each call loads
// the draft, applies one model operation, and stores the canonical result
// while holding the page's key lock.
type LayoutService struct {
	pages        *PageService
	contentTypes *ContentTypeService
	logger       *logging.ChanneledLogger
}

// NewLayoutService creates a new layout service. contentTypes may be nil, in
// which case item properties are not checked.
func NewLayoutService(pages *PageService, contentTypes *ContentTypeService, logger *logging.ChanneledLogger) *LayoutService {
	return &LayoutService{pages: pages, contentTypes: contentTypes, logger: logger}
}

// MutationResult is the stored page after an edit plus any id the edit
// minted.
type MutationResult struct {
	Page   *repositories.PageRecord `json:"page"`
	RowID  string                   `json:"rowId,omitempty"`
	CellID string                   `json:"cellId,omitempty"`
}

// PageInfo carries optional metadata edits; empty fields are left alone.
type PageInfo struct {
	Name  string `json:"name"`
	Route string `json:"route"`
}

func (s *LayoutService) mutate(key, op string, apply func(m *layout.Model) error) (*repositories.PageRecord, error) {
	unlock := s.pages.locks.Lock(key)
	defer unlock()

	log := s.logger.WithPage(logging.ChannelContent, key, op)
	m, err := s.pages.loadDraft(op, key)
	if err != nil {
		return nil, err
	}
	if err := apply(m); err != nil {
		log.Debug("Layout operation rejected", "kind", layout.KindOf(err), "error", err)
		return nil, err
	}
	rec, err := s.pages.store(repositories.VariantDraft, m.Serialize(), op)
	if err != nil {
		return nil, err
	}
	log.Debug("Layout operation applied")
	return rec, nil
}

func (s *LayoutService) checkItem(item layout.ContentItem) error {
	if s.contentTypes == nil {
		return nil
	}
	return s.contentTypes.ValidateItem(item)
}

func (s *LayoutService) AddRow(key, afterRowID string) (*MutationResult, error) {
	var rowID, cellID string
	rec, err := s.mutate(key, "addRow", func(m *layout.Model) error {
		id, err := m.AddRow(afterRowID)
		if err != nil {
			return err
		}
		rowID = id
		row, _ := m.Row(id)
		cellID = row.Cells[0].ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &MutationResult{Page: rec, RowID: rowID, CellID: cellID}, nil
}

func (s *LayoutService) RemoveRow(key, rowID string) (*MutationResult, error) {
	rec, err := s.mutate(key, "removeRow", func(m *layout.Model) error {
		return m.RemoveRow(rowID)
	})
	if err != nil {
		return nil, err
	}
	return &MutationResult{Page: rec}, nil
}

func (s *LayoutService) AddCell(key, rowID, afterCellID string, colSpan int) (*MutationResult, error) {
	var cellID string
	rec, err := s.mutate(key, "addCell", func(m *layout.Model) error {
		id, err := m.AddCell(rowID, afterCellID, colSpan)
		cellID = id
		return err
	})
	if err != nil {
		return nil, err
	}
	return &MutationResult{Page: rec, RowID: rowID, CellID: cellID}, nil
}

func (s *LayoutService) RemoveCell(key, rowID, cellID string) (*MutationResult, error) {
	rec, err := s.mutate(key, "removeCell", func(m *layout.Model) error {
		return m.RemoveCell(rowID, cellID)
	})
	if err != nil {
		return nil, err
	}
	return &MutationResult{Page: rec}, nil
}

func (s *LayoutService) ResizeCell(key, rowID, cellID string, colSpan int) (*MutationResult, error) {
	rec, err := s.mutate(key, "resizeCell", func(m *layout.Model) error {
		return m.ResizeCell(rowID, cellID, colSpan)
	})
	if err != nil {
		return nil, err
	}
	return &MutationResult{Page: rec}, nil
}

// PlaceContentItem validates item against its content type, then places it.
func (s *LayoutService) PlaceContentItem(key, cellID string, item layout.ContentItem) (*MutationResult, error) {
	if err := s.checkItem(item); err != nil {
		return nil, err
	}
	rec, err := s.mutate(key, "placeContentItem", func(m *layout.Model) error {
		return m.PlaceContentItem(cellID, item)
	})
	if err != nil {
		return nil, err
	}
	return &MutationResult{Page: rec, CellID: cellID}, nil
}

func (s *LayoutService) ClearCell(key, cellID string) (*MutationResult, error) {
	rec, err := s.mutate(key, "clearCell", func(m *layout.Model) error {
		return m.ClearCell(cellID)
	})
	if err != nil {
		return nil, err
	}
	return &MutationResult{Page: rec, CellID: cellID}, nil
}

func (s *LayoutService) MoveContentItem(key string, params layout.MoveParams) (*MutationResult, error) {
	rec, err := s.mutate(key, "moveContentItem", func(m *layout.Model) error {
		return m.MoveContentItem(params)
	})
	if err != nil {
		return nil, err
	}
	return &MutationResult{Page: rec, RowID: params.TargetRowID, CellID: params.TargetCellID}, nil
}

// UpdateContentItem validates item against its content type, then replaces
// the stored item's name and properties.
func (s *LayoutService) UpdateContentItem(key string, item layout.ContentItem) (*MutationResult, error) {
	if err := s.checkItem(item); err != nil {
		return nil, err
	}
	rec, err := s.mutate(key, "updateContentItem", func(m *layout.Model) error {
		return m.UpdateContentItem(item)
	})
	if err != nil {
		return nil, err
	}
	return &MutationResult{Page: rec}, nil
}

func (s *LayoutService) DeleteContentItem(key, itemKey string) (*MutationResult, error) {
	rec, err := s.mutate(key, "deleteContentItem", func(m *layout.Model) error {
		m.DeleteContentItem(itemKey)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &MutationResult{Page: rec}, nil
}

// UpdatePageInfo renames the page and/or changes its route. A failed edit
// stores nothing.
func (s *LayoutService) UpdatePageInfo(key string, info PageInfo) (*MutationResult, error) {
	rec, err := s.mutate(key, "updatePageInfo", func(m *layout.Model) error {
		if info.Name != "" {
			if err := m.Rename(info.Name); err != nil {
				return err
			}
		}
		if info.Route != "" {
			return m.SetRoute(info.Route)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &MutationResult{Page: rec}, nil
}
