package pages

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/AtRiskMedia/pagegrid-go/internal/domain/entities/contenttypes"
)

// ContentTypeRepository keeps the whole registry in memory after the first
// read; the table is small and changes rarely.
type ContentTypeRepository struct {
	db *sql.DB

	mu     sync.RWMutex
	loaded bool
	byType map[string]*contenttypes.ContentType
	order  []string
}

func NewContentTypeRepository(db *sql.DB) *ContentTypeRepository {
	return &ContentTypeRepository{db: db, byType: make(map[string]*contenttypes.ContentType)}
}

func (r *ContentTypeRepository) FindByType(typeName string) (*contenttypes.ContentType, error) {
	if err := r.ensureLoaded(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ct, ok := r.byType[typeName]
	if !ok {
		return nil, nil
	}
	return cloneType(ct), nil
}

func (r *ContentTypeRepository) FindAll() ([]*contenttypes.ContentType, error) {
	if err := r.ensureLoaded(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*contenttypes.ContentType, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, cloneType(r.byType[t]))
	}
	return out, nil
}

// Store upserts ct.
func (r *ContentTypeRepository) Store(ct *contenttypes.ContentType) error {
	schema, err := json.Marshal(ct)
	if err != nil {
		return fmt.Errorf("failed to marshal content type %s: %w", ct.Type, err)
	}
	query := `INSERT INTO content_types (type, name, schema) VALUES (?, ?, ?)
              ON CONFLICT(type) DO UPDATE SET name = excluded.name, schema = excluded.schema`
	if _, err := r.db.Exec(query, ct.Type, ct.Name, string(schema)); err != nil {
		return fmt.Errorf("failed to store content type %s: %w", ct.Type, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaded = false
	return nil
}

func (r *ContentTypeRepository) ensureLoaded() error {
	r.mu.RLock()
	loaded := r.loaded
	r.mu.RUnlock()
	if loaded {
		return nil
	}

	rows, err := r.db.Query(`SELECT type, schema FROM content_types ORDER BY type`)
	if err != nil {
		return fmt.Errorf("failed to query content types: %w", err)
	}
	defer rows.Close()

	byType := make(map[string]*contenttypes.ContentType)
	var order []string
	for rows.Next() {
		var typeName, schema string
		if err := rows.Scan(&typeName, &schema); err != nil {
			return fmt.Errorf("failed to scan content type: %w", err)
		}
		var ct contenttypes.ContentType
		if err := json.Unmarshal([]byte(schema), &ct); err != nil {
			return fmt.Errorf("failed to parse content type %s: %w", typeName, err)
		}
		ct.Type = typeName
		byType[typeName] = &ct
		order = append(order, typeName)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("row iteration error: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byType = byType
	r.order = order
	r.loaded = true
	return nil
}

func cloneType(ct *contenttypes.ContentType) *contenttypes.ContentType {
	cp := *ct
	cp.Properties = slices.Clone(ct.Properties)
	return &cp
}
