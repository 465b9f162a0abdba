// Package layout models a page as a grid of rows and cells with content items
// placed into cells by key. A Model is single-writer and performs no locking;
// callers serialise access.
package layout

// BaselineColumns is the column basis a row renders against unless its cells
// need more.
const BaselineColumns = 12

// GridCell is one slot in a row. An empty ContentItemKey means the cell holds
// nothing.
type GridCell struct {
	ID             string `json:"id"`
	ContentItemKey string `json:"contentItemKey,omitempty"`
	ColSpan        int    `json:"colSpan"`
}

// IsEmpty reports whether no content item is placed in the cell.
func (c GridCell) IsEmpty() bool { return c.ContentItemKey == "" }

// GridRow is an ordered, left-to-right run of cells.
type GridRow struct {
	ID    string     `json:"id"`
	Cells []GridCell `json:"cells"`
}

// TotalColumns is the sum of colSpan across the row's cells.
func (r GridRow) TotalColumns() int {
	total := 0
	for _, c := range r.Cells {
		total += c.ColSpan
	}
	return total
}

// GridColumns is the column basis used when rendering the row.
func (r GridRow) GridColumns() int {
	return max(r.TotalColumns(), BaselineColumns)
}

func (r GridRow) clone() GridRow {
	cells := make([]GridCell, len(r.Cells))
	copy(cells, r.Cells)
	return GridRow{ID: r.ID, Cells: cells}
}

// ContentItem is a placed component. Properties are free-form; schema checks
// happen before an item reaches the model.
type ContentItem struct {
	Key        string         `json:"key"`
	Type       string         `json:"type"`
	Name       string         `json:"name"`
	Properties map[string]any `json:"properties"`
}

// Clone returns a deep copy of the item, normalising nil properties to an
// empty map.
func (ci ContentItem) Clone() ContentItem {
	out := ci
	out.Properties = cloneProperties(ci.Properties)
	return out
}

func cloneProperties(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneProperties(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
