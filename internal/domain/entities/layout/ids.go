package layout

import (
	"strconv"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
)

// IDGenerator mints row and cell ids for new grid elements.
type IDGenerator interface {
	NewRowID() string
	NewCellID() string
}

// idReserver is implemented by generators that keep state and must skip ids
// already present in a loaded document.
type idReserver interface {
	ReserveRowID(id string)
	ReserveCellID(id string)
}

// ULIDGenerator is the default generator. Ids are lexically sortable by
// creation time.
type ULIDGenerator struct{}

func (ULIDGenerator) NewRowID() string  { return ulid.Make().String() }
func (ULIDGenerator) NewCellID() string { return ulid.Make().String() }

// SequentialIDs yields r1, r2, ... and c1, c2, ... and is meant for fixtures
// and reproducible imports.
type SequentialIDs struct {
	mu    sync.Mutex
	rows  int
	cells int
}

// NewSequentialIDs returns a generator starting at r1 / c1.
func NewSequentialIDs() *SequentialIDs {
	return &SequentialIDs{}
}

func (s *SequentialIDs) NewRowID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows++
	return "r" + strconv.Itoa(s.rows)
}

func (s *SequentialIDs) NewCellID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cells++
	return "c" + strconv.Itoa(s.cells)
}

// ReserveRowID moves the row counter past id when id has the r<n> form.
func (s *SequentialIDs) ReserveRowID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = max(s.rows, sequence(id, "r"))
}

// ReserveCellID moves the cell counter past id when id has the c<n> form.
func (s *SequentialIDs) ReserveCellID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cells = max(s.cells, sequence(id, "c"))
}

func sequence(id, prefix string) int {
	digits, ok := strings.CutPrefix(id, prefix)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
