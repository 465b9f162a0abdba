package layout

import (
	"slices"
	"sort"
	"strings"
)

// maxIDAttempts bounds retries when a generator hands back an id that is
// already in use.
const maxIDAttempts = 64

// Model owns the row/cell/item graph of one page. Rows own their cells by
// value and cells reference items only by key.
type Model struct {
	key   string
	name  string
	route string

	rows []GridRow

	components     map[string]ContentItem
	componentOrder []string

	ids IDGenerator
}

// Option configures a Model.
type Option func(*Model)

// WithIDGenerator overrides the default ULID generator.
func WithIDGenerator(ids IDGenerator) Option {
	return func(m *Model) {
		if ids != nil {
			m.ids = ids
		}
	}
}

// MoveParams identifies a content item and the cells it moves between.
type MoveParams struct {
	SourceRowID    string `json:"sourceRowId"`
	SourceCellID   string `json:"sourceCellId"`
	TargetRowID    string `json:"targetRowId"`
	TargetCellID   string `json:"targetCellId"`
	ContentItemKey string `json:"contentItemKey"`
}

// CellRef locates a cell inside the layout.
type CellRef struct {
	RowID  string `json:"rowId"`
	CellID string `json:"cellId"`
}

func newModel(opts []Option) *Model {
	m := &Model{
		components: make(map[string]ContentItem),
		ids:        ULIDGenerator{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewModel creates a page with a single row holding one empty cell.
func NewModel(key, name, route string, opts ...Option) (*Model, error) {
	const op = "new"
	if strings.TrimSpace(key) == "" {
		return nil, invalidArgument(op, "page key cannot be empty")
	}
	if err := checkRoute(op, route); err != nil {
		return nil, err
	}

	m := newModel(opts)
	m.key = key
	m.name = name
	m.route = route

	rowID, err := m.nextRowID(op)
	if err != nil {
		return nil, err
	}
	cellID, err := m.nextCellID(op)
	if err != nil {
		return nil, err
	}
	m.rows = []GridRow{{ID: rowID, Cells: []GridCell{{ID: cellID, ColSpan: 1}}}}
	return m, nil
}

func (m *Model) Key() string   { return m.key }
func (m *Model) Name() string  { return m.name }
func (m *Model) Route() string { return m.route }

// Rows returns a copy of the layout in render order.
func (m *Model) Rows() []GridRow {
	out := make([]GridRow, len(m.rows))
	for i, r := range m.rows {
		out[i] = r.clone()
	}
	return out
}

// Row returns a copy of the row with the given id.
func (m *Model) Row(rowID string) (GridRow, bool) {
	ri := m.rowIndex(rowID)
	if ri < 0 {
		return GridRow{}, false
	}
	return m.rows[ri].clone(), true
}

// Cell returns the owning row id and a copy of the cell with the given id.
func (m *Model) Cell(cellID string) (string, GridCell, bool) {
	ri, ci, ok := m.locateCell(cellID)
	if !ok {
		return "", GridCell{}, false
	}
	return m.rows[ri].ID, m.rows[ri].Cells[ci], true
}

// ContentItem returns a copy of the item stored under key.
func (m *Model) ContentItem(key string) (ContentItem, bool) {
	item, ok := m.components[key]
	if !ok {
		return ContentItem{}, false
	}
	return item.Clone(), true
}

// ContentItems returns every item in document order.
func (m *Model) ContentItems() []ContentItem {
	out := make([]ContentItem, 0, len(m.componentOrder))
	for _, key := range m.componentOrder {
		out = append(out, m.components[key].Clone())
	}
	return out
}

// UnplacedContentItems returns items no cell references, sorted by key.
func (m *Model) UnplacedContentItems() []ContentItem {
	placed := make(map[string]struct{})
	for _, r := range m.rows {
		for _, c := range r.Cells {
			if !c.IsEmpty() {
				placed[c.ContentItemKey] = struct{}{}
			}
		}
	}

	var out []ContentItem
	for _, key := range m.componentOrder {
		if _, ok := placed[key]; !ok {
			out = append(out, m.components[key].Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Placements lists every cell currently referencing key.
func (m *Model) Placements(key string) []CellRef {
	var refs []CellRef
	if key == "" {
		return refs
	}
	for _, r := range m.rows {
		for _, c := range r.Cells {
			if c.ContentItemKey == key {
				refs = append(refs, CellRef{RowID: r.ID, CellID: c.ID})
			}
		}
	}
	return refs
}

// Rename sets the display name.
func (m *Model) Rename(name string) error {
	if strings.TrimSpace(name) == "" {
		return invalidArgument("rename", "page name cannot be empty")
	}
	m.name = name
	return nil
}

// SetRoute sets the published URL path.
func (m *Model) SetRoute(route string) error {
	if err := checkRoute("setRoute", route); err != nil {
		return err
	}
	m.route = route
	return nil
}

// AddRow inserts a row holding one empty cell immediately after afterRowID,
// or at the end when afterRowID is empty.
func (m *Model) AddRow(afterRowID string) (string, error) {
	const op = "addRow"
	at := len(m.rows)
	if afterRowID != "" {
		ri := m.rowIndex(afterRowID)
		if ri < 0 {
			return "", notFound(op, "row %q not found", afterRowID)
		}
		at = ri + 1
	}

	rowID, err := m.nextRowID(op)
	if err != nil {
		return "", err
	}
	cellID, err := m.nextCellID(op)
	if err != nil {
		return "", err
	}

	row := GridRow{ID: rowID, Cells: []GridCell{{ID: cellID, ColSpan: 1}}}
	m.rows = slices.Insert(m.rows, at, row)
	return rowID, nil
}

// RemoveRow deletes the row and its cells. Items placed in those cells stay
// in the page's components as unplaced items.
func (m *Model) RemoveRow(rowID string) error {
	ri := m.rowIndex(rowID)
	if ri < 0 {
		return notFound("removeRow", "row %q not found", rowID)
	}
	m.rows = slices.Delete(m.rows, ri, ri+1)
	return nil
}

// AddCell inserts an empty cell after afterCellID, or at the end of the row
// when afterCellID is empty.
func (m *Model) AddCell(rowID, afterCellID string, colSpan int) (string, error) {
	const op = "addCell"
	if colSpan <= 0 {
		return "", invalidArgument(op, "colSpan must be positive, got %d", colSpan)
	}
	ri := m.rowIndex(rowID)
	if ri < 0 {
		return "", notFound(op, "row %q not found", rowID)
	}
	at := len(m.rows[ri].Cells)
	if afterCellID != "" {
		ci := m.cellIndex(ri, afterCellID)
		if ci < 0 {
			return "", notFound(op, "cell %q not found in row %q", afterCellID, rowID)
		}
		at = ci + 1
	}

	cellID, err := m.nextCellID(op)
	if err != nil {
		return "", err
	}
	m.rows[ri].Cells = slices.Insert(m.rows[ri].Cells, at, GridCell{ID: cellID, ColSpan: colSpan})
	return cellID, nil
}

// RemoveCell deletes the cell. A placed item becomes unplaced.
func (m *Model) RemoveCell(rowID, cellID string) error {
	ri, ci, err := m.resolve("removeCell", rowID, cellID)
	if err != nil {
		return err
	}
	m.rows[ri].Cells = slices.Delete(m.rows[ri].Cells, ci, ci+1)
	return nil
}

// ResizeCell sets the cell's colSpan.
func (m *Model) ResizeCell(rowID, cellID string, colSpan int) error {
	const op = "resizeCell"
	if colSpan < 1 {
		return invalidArgument(op, "colSpan must be at least 1, got %d", colSpan)
	}
	ri, ci, err := m.resolve(op, rowID, cellID)
	if err != nil {
		return err
	}
	m.rows[ri].Cells[ci].ColSpan = colSpan
	return nil
}

// PlaceContentItem assigns item to an empty cell and records it in the
// page's components when its key is new. Placing the item already held by
// the cell is a no-op.
func (m *Model) PlaceContentItem(cellID string, item ContentItem) error {
	const op = "placeContentItem"
	if err := checkItem(op, item); err != nil {
		return err
	}
	ri, ci, ok := m.locateCell(cellID)
	if !ok {
		return notFound(op, "cell %q not found", cellID)
	}

	cell := &m.rows[ri].Cells[ci]
	if cell.ContentItemKey == item.Key {
		return nil
	}
	if !cell.IsEmpty() {
		return conflict(op, "cell %q already holds %q; clear it first", cellID, cell.ContentItemKey)
	}
	if refs := m.Placements(item.Key); len(refs) > 0 {
		return conflict(op, "content item %q is already placed in cell %q; move it instead", item.Key, refs[0].CellID)
	}

	if _, exists := m.components[item.Key]; !exists {
		m.components[item.Key] = item.Clone()
		m.componentOrder = append(m.componentOrder, item.Key)
	}
	cell.ContentItemKey = item.Key
	return nil
}

// ClearCell empties the cell, leaving its item in components.
func (m *Model) ClearCell(cellID string) error {
	ri, ci, ok := m.locateCell(cellID)
	if !ok {
		return notFound("clearCell", "cell %q not found", cellID)
	}
	m.rows[ri].Cells[ci].ContentItemKey = ""
	return nil
}

// MoveContentItem clears the source cell and places the item in the target
// cell as a single step. The key must match what the source cell holds, which
// catches moves issued against a stale view of the page.
func (m *Model) MoveContentItem(p MoveParams) error {
	const op = "moveContentItem"
	if p.ContentItemKey == "" {
		return invalidArgument(op, "contentItemKey cannot be empty")
	}
	sri, sci, err := m.resolve(op, p.SourceRowID, p.SourceCellID)
	if err != nil {
		return err
	}
	tri, tci, err := m.resolve(op, p.TargetRowID, p.TargetCellID)
	if err != nil {
		return err
	}

	src := &m.rows[sri].Cells[sci]
	if src.ContentItemKey != p.ContentItemKey {
		held := "nothing"
		if !src.IsEmpty() {
			held = `"` + src.ContentItemKey + `"`
		}
		return invariantViolation(op, "cell %q holds %s, not %q", p.SourceCellID, held, p.ContentItemKey)
	}
	if sri == tri && sci == tci {
		return nil
	}

	tgt := &m.rows[tri].Cells[tci]
	if !tgt.IsEmpty() {
		return conflict(op, "target cell %q already holds %q", p.TargetCellID, tgt.ContentItemKey)
	}

	tgt.ContentItemKey = p.ContentItemKey
	src.ContentItemKey = ""
	return nil
}

// UpdateContentItem replaces the name and properties of an existing item.
func (m *Model) UpdateContentItem(item ContentItem) error {
	const op = "updateContentItem"
	if err := checkItem(op, item); err != nil {
		return err
	}
	existing, ok := m.components[item.Key]
	if !ok {
		return notFound(op, "content item %q not found", item.Key)
	}
	if existing.Type != item.Type {
		return invalidArgument(op, "content item %q is a %q, cannot change type to %q", item.Key, existing.Type, item.Type)
	}
	m.components[item.Key] = item.Clone()
	return nil
}

// DeleteContentItem removes the item and clears every cell referencing it.
// Deleting an absent key does nothing.
func (m *Model) DeleteContentItem(key string) {
	if key == "" {
		return
	}
	for ri := range m.rows {
		for ci := range m.rows[ri].Cells {
			if m.rows[ri].Cells[ci].ContentItemKey == key {
				m.rows[ri].Cells[ci].ContentItemKey = ""
			}
		}
	}
	if _, ok := m.components[key]; !ok {
		return
	}
	delete(m.components, key)
	if i := slices.Index(m.componentOrder, key); i >= 0 {
		m.componentOrder = slices.Delete(m.componentOrder, i, i+1)
	}
}

func (m *Model) rowIndex(rowID string) int {
	if rowID == "" {
		return -1
	}
	return slices.IndexFunc(m.rows, func(r GridRow) bool { return r.ID == rowID })
}

func (m *Model) cellIndex(ri int, cellID string) int {
	if cellID == "" {
		return -1
	}
	return slices.IndexFunc(m.rows[ri].Cells, func(c GridCell) bool { return c.ID == cellID })
}

func (m *Model) locateCell(cellID string) (int, int, bool) {
	for ri := range m.rows {
		if ci := m.cellIndex(ri, cellID); ci >= 0 {
			return ri, ci, true
		}
	}
	return -1, -1, false
}

func (m *Model) resolve(op, rowID, cellID string) (int, int, error) {
	ri := m.rowIndex(rowID)
	if ri < 0 {
		return -1, -1, notFound(op, "row %q not found", rowID)
	}
	ci := m.cellIndex(ri, cellID)
	if ci < 0 {
		return -1, -1, notFound(op, "cell %q not found in row %q", cellID, rowID)
	}
	return ri, ci, nil
}

func (m *Model) nextRowID(op string) (string, error) {
	for range maxIDAttempts {
		id := m.ids.NewRowID()
		if id != "" && m.rowIndex(id) < 0 {
			return id, nil
		}
	}
	return "", invariantViolation(op, "id generator keeps returning row ids already in use")
}

func (m *Model) nextCellID(op string) (string, error) {
	for range maxIDAttempts {
		id := m.ids.NewCellID()
		if _, _, taken := m.locateCell(id); id != "" && !taken {
			return id, nil
		}
	}
	return "", invariantViolation(op, "id generator keeps returning cell ids already in use")
}

func checkItem(op string, item ContentItem) error {
	if strings.TrimSpace(item.Key) == "" {
		return invalidArgument(op, "content item key cannot be empty")
	}
	if strings.TrimSpace(item.Type) == "" {
		return invalidArgument(op, "content item %q has no type", item.Key)
	}
	return nil
}

func checkRoute(op, route string) error {
	if route != "" && !strings.HasPrefix(route, "/") {
		return invalidArgument(op, "route %q must start with /", route)
	}
	return nil
}
