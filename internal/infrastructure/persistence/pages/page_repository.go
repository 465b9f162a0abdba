// Package pages provides the SQL-backed page and content-type repositories.
package pages

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AtRiskMedia/pagegrid-go/internal/domain/entities/layout"
	"github.com/AtRiskMedia/pagegrid-go/internal/domain/repositories"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/caching/interfaces"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/persistence/database"
)

const timeLayout = time.RFC3339Nano

type PageRepository struct {
	db     *sql.DB
	cache  interfaces.PageCache
	logger *logging.ChanneledLogger
	now    func() time.Time
}

func NewPageRepository(db *sql.DB, cache interfaces.PageCache, logger *logging.ChanneledLogger) *PageRepository {
	return &PageRepository{
		db:     db,
		cache:  cache,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (r *PageRepository) FindByKey(key string, variant repositories.Variant) (*repositories.PageRecord, error) {
	if rec, found := r.cache.GetPage(key, variant); found {
		r.logger.LogCacheOperation("get_page", key, true)
		return rec, nil
	}
	r.logger.LogCacheOperation("get_page", key, false)

	rec, err := r.loadFromDB(key, variant)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}

	r.cache.SetPage(key, rec)
	return rec, nil
}

func (r *PageRepository) FindAllKeys(variant repositories.Variant) ([]string, error) {
	if keys, found := r.cache.GetPageKeys(variant); found {
		return keys, nil
	}

	start := time.Now()
	query := `SELECT page_key FROM pages WHERE variant = ? ORDER BY page_key`
	rows, err := r.db.Query(query, string(variant))
	if err != nil {
		return nil, fmt.Errorf("failed to query page keys: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan page key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))

	r.cache.SetPageKeys(variant, keys)
	return keys, nil
}

// Store upserts doc as variant. The created column keeps its first value.
func (r *PageRepository) Store(variant repositories.Variant, doc *layout.PageDocument) (*repositories.PageRecord, error) {
	if doc == nil {
		return nil, fmt.Errorf("failed to store page: nil document")
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal page %s: %w", doc.Key, err)
	}

	start := time.Now()
	now := r.now().Format(timeLayout)
	query := `INSERT INTO pages (page_key, variant, name, route, document, created, changed)
              VALUES (?, ?, ?, ?, ?, ?, ?)
              ON CONFLICT(page_key, variant) DO UPDATE SET
              name = excluded.name, route = excluded.route, document = excluded.document, changed = excluded.changed`
	if _, err := r.db.Exec(query, doc.Key, string(variant), doc.Name, doc.Route, string(payload), now, now); err != nil {
		return nil, fmt.Errorf("failed to store page %s: %w", doc.Key, err)
	}
	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))

	rec, err := r.loadFromDB(doc.Key, variant)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("failed to read back page %s", doc.Key)
	}
	r.cache.SetPage(doc.Key, rec)
	return rec, nil
}

// Delete removes every variant of key.
func (r *PageRepository) Delete(key string) error {
	query := `DELETE FROM pages WHERE page_key = ?`
	if _, err := r.db.Exec(query, key); err != nil {
		return fmt.Errorf("failed to delete page %s: %w", key, err)
	}
	r.cache.InvalidatePage(key)
	return nil
}

func (r *PageRepository) loadFromDB(key string, variant repositories.Variant) (*repositories.PageRecord, error) {
	start := time.Now()
	query := `SELECT document, created, changed FROM pages WHERE page_key = ? AND variant = ?`

	var payload, created, changed string
	err := r.db.QueryRow(query, key, string(variant)).Scan(&payload, &created, &changed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load page %s: %w", key, err)
	}
	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start))

	var doc layout.PageDocument
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse stored page %s: %w", key, err)
	}

	return &repositories.PageRecord{
		Variant:  variant,
		Document: &doc,
		Created:  parseTime(created),
		Changed:  parseTime(changed),
	}, nil
}

// parseTime accepts our own RFC3339 values and SQLite's CURRENT_TIMESTAMP form.
func parseTime(s string) time.Time {
	for _, l := range []string{timeLayout, "2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(l, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
