// Package repositories defines the persistence interfaces for pages and the
// content-type registry. Implementations live under infrastructure/persistence.
package repositories

import (
	"time"

	"github.com/AtRiskMedia/pagegrid-go/internal/domain/entities/contenttypes"
	"github.com/AtRiskMedia/pagegrid-go/internal/domain/entities/layout"
)

// Variant selects the draft or published copy of a page.
type Variant string

const (
	VariantDraft     Variant = "draft"
	VariantPublished Variant = "published"
)

// Valid reports whether v is a known variant.
func (v Variant) Valid() bool {
	return v == VariantDraft || v == VariantPublished
}

// PageRecord is a stored page document plus its bookkeeping columns.
type PageRecord struct {
	Variant  Variant              `json:"variant"`
	Document *layout.PageDocument `json:"document"`
	Created  time.Time            `json:"created"`
	Changed  time.Time            `json:"changed"`
}

// PageRepository stores whole-page documents. Store is an upsert and the last
// write wins. FindByKey returns nil, nil when nothing is stored.
type PageRepository interface {
	FindByKey(key string, variant Variant) (*PageRecord, error)
	FindAllKeys(variant Variant) ([]string, error)
	Store(variant Variant, doc *layout.PageDocument) (*PageRecord, error)
	Delete(key string) error
}

// ContentTypeRepository is the content-type registry.
type ContentTypeRepository interface {
	FindByType(typeName string) (*contenttypes.ContentType, error)
	FindAll() ([]*contenttypes.ContentType, error)
	Store(ct *contenttypes.ContentType) error
}
