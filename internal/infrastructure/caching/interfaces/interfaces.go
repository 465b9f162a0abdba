// Package interfaces defines cache operation contracts for page documents.
package interfaces

import (
	"github.com/AtRiskMedia/pagegrid-go/internal/domain/repositories"
)

// PageCache holds page records per (key, variant) plus the key listing per
// variant. Returned records are detached copies.
type PageCache interface {
	GetPage(key string, variant repositories.Variant) (*repositories.PageRecord, bool)
	SetPage(key string, record *repositories.PageRecord)
	GetPageKeys(variant repositories.Variant) ([]string, bool)
	SetPageKeys(variant repositories.Variant, keys []string)
	InvalidatePage(key string)
	InvalidateAll()
}

// ExpiringCache is implemented by stores the cleanup worker can sweep.
type ExpiringCache interface {
	PurgeExpired() int
}
