package layout

import (
	"errors"
	"strings"
)

// PageDocument is the persisted shape of a page exchanged with the store.
type PageDocument struct {
	Key        string         `json:"key"`
	Name       string         `json:"name"`
	Route      string         `json:"route"`
	Layout     LayoutDocument `json:"layout"`
	Components []ContentItem  `json:"components"`
}

type LayoutDocument struct {
	Rows []RowDocument `json:"rows"`
}

type RowDocument struct {
	ID    string         `json:"id"`
	Cells []CellDocument `json:"cells"`
}

// CellDocument carries a nullable content item key so empty cells encode as
// "contentItemKey": null.
type CellDocument struct {
	ID             string  `json:"id"`
	ContentItemKey *string `json:"contentItemKey"`
	ColSpan        int     `json:"colSpan"`
}

// Serialize returns a document that shares no memory with the model.
func (m *Model) Serialize() *PageDocument {
	doc := &PageDocument{
		Key:        m.key,
		Name:       m.name,
		Route:      m.route,
		Layout:     LayoutDocument{Rows: make([]RowDocument, 0, len(m.rows))},
		Components: m.ContentItems(),
	}
	for _, r := range m.rows {
		row := RowDocument{ID: r.ID, Cells: make([]CellDocument, 0, len(r.Cells))}
		for _, c := range r.Cells {
			cell := CellDocument{ID: c.ID, ColSpan: c.ColSpan}
			if !c.IsEmpty() {
				key := c.ContentItemKey
				cell.ContentItemKey = &key
			}
			row.Cells = append(row.Cells, cell)
		}
		doc.Layout.Rows = append(doc.Layout.Rows, row)
	}
	return doc
}

// Deserialize builds a model from a persisted document. Structural problems
// are Validation errors; a cell naming a key absent from components is a
// Validation error that also matches ErrInvariantViolation.
func Deserialize(doc *PageDocument, opts ...Option) (*Model, error) {
	if doc == nil {
		return nil, validation("document is nil")
	}
	if strings.TrimSpace(doc.Key) == "" {
		return nil, validation("page key cannot be empty")
	}
	if doc.Route != "" && !strings.HasPrefix(doc.Route, "/") {
		return nil, validation("route %q must start with /", doc.Route)
	}

	m := newModel(opts)
	m.key = doc.Key
	m.name = doc.Name
	m.route = doc.Route

	for i, item := range doc.Components {
		if strings.TrimSpace(item.Key) == "" {
			return nil, validation("component %d has an empty key", i)
		}
		if strings.TrimSpace(item.Type) == "" {
			return nil, validation("component %q has no type", item.Key)
		}
		if _, dup := m.components[item.Key]; dup {
			return nil, validation("component key %q appears more than once", item.Key)
		}
		m.components[item.Key] = item.Clone()
		m.componentOrder = append(m.componentOrder, item.Key)
	}

	rowIDs := make(map[string]struct{}, len(doc.Layout.Rows))
	cellIDs := make(map[string]struct{})
	placed := make(map[string]struct{})
	m.rows = make([]GridRow, 0, len(doc.Layout.Rows))
	for _, rd := range doc.Layout.Rows {
		if rd.ID == "" {
			return nil, validation("row with an empty id")
		}
		if _, dup := rowIDs[rd.ID]; dup {
			return nil, validation("row id %q appears more than once", rd.ID)
		}
		rowIDs[rd.ID] = struct{}{}

		row := GridRow{ID: rd.ID, Cells: make([]GridCell, 0, len(rd.Cells))}
		for _, cd := range rd.Cells {
			if cd.ID == "" {
				return nil, validation("row %q has a cell with an empty id", rd.ID)
			}
			if _, dup := cellIDs[cd.ID]; dup {
				return nil, validation("cell id %q appears more than once", cd.ID)
			}
			cellIDs[cd.ID] = struct{}{}

			span := cd.ColSpan
			switch {
			case span == 0:
				span = 1
			case span < 0:
				return nil, validation("cell %q has colSpan %d", cd.ID, cd.ColSpan)
			}

			cell := GridCell{ID: cd.ID, ColSpan: span}
			if cd.ContentItemKey != nil && *cd.ContentItemKey != "" {
				key := *cd.ContentItemKey
				if _, ok := m.components[key]; !ok {
					return nil, &Error{
						Kind: KindValidation,
						Op:   "deserialize",
						Msg:  "cell " + quote(cd.ID) + " references missing content item " + quote(key),
						Err:  ErrInvariantViolation,
					}
				}
				if _, dup := placed[key]; dup {
					return nil, validation("content item %q is placed in more than one cell", key)
				}
				placed[key] = struct{}{}
				cell.ContentItemKey = key
			}
			row.Cells = append(row.Cells, cell)
		}
		m.rows = append(m.rows, row)
	}

	if r, ok := m.ids.(idReserver); ok {
		for _, row := range m.rows {
			r.ReserveRowID(row.ID)
			for _, cell := range row.Cells {
				r.ReserveCellID(cell.ID)
			}
		}
	}
	return m, nil
}

// OrphanedReferences lists cells in doc whose content item key has no entry
// in components.
func OrphanedReferences(doc *PageDocument) []CellRef {
	if doc == nil {
		return nil
	}
	known := make(map[string]struct{}, len(doc.Components))
	for _, item := range doc.Components {
		known[item.Key] = struct{}{}
	}
	var refs []CellRef
	for _, r := range doc.Layout.Rows {
		for _, c := range r.Cells {
			if c.ContentItemKey == nil || *c.ContentItemKey == "" {
				continue
			}
			if _, ok := known[*c.ContentItemKey]; !ok {
				refs = append(refs, CellRef{RowID: r.ID, CellID: c.ID})
			}
		}
	}
	return refs
}

// IsDanglingReference reports whether err came from a document whose cells
// reference missing content items.
func IsDanglingReference(err error) bool {
	return errors.Is(err, ErrValidation) && errors.Is(err, ErrInvariantViolation)
}

func quote(s string) string { return `"` + s + `"` }
