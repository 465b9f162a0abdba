package services

import (
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/AtRiskMedia/pagegrid-go/internal/domain/entities/contenttypes"
	"github.com/AtRiskMedia/pagegrid-go/internal/domain/entities/layout"
	"github.com/AtRiskMedia/pagegrid-go/internal/domain/repositories"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/messaging"
)

type pageKey struct {
	key     string
	variant repositories.Variant
}

// memoryPages is a PageRepository that hands out copies, like the cached
// SQL repository does.
type memoryPages struct {
	mu      sync.Mutex
	records map[pageKey][]byte
	stores  int
	failOn  string
}

func newMemoryPages() *memoryPages {
	return &memoryPages{records: make(map[pageKey][]byte)}
}

func (r *memoryPages) FindByKey(key string, variant repositories.Variant) (*repositories.PageRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	raw, ok := r.records[pageKey{key, variant}]
	if !ok {
		return nil, nil
	}
	var rec repositories.PageRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *memoryPages) FindAllKeys(variant repositories.Variant) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := []string{}
	for k := range r.records {
		if k.variant == variant {
			keys = append(keys, k.key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (r *memoryPages) Store(variant repositories.Variant, doc *layout.PageDocument) (*repositories.PageRecord, error) {
	if r.failOn != "" && doc.Key == r.failOn {
		return nil, errors.New("disk full")
	}
	rec := &repositories.PageRecord{Variant: variant, Document: doc, Changed: time.Now().UTC()}
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.records[pageKey{doc.Key, variant}] = raw
	r.stores++
	r.mu.Unlock()
	return r.FindByKey(doc.Key, variant)
}

func (r *memoryPages) Delete(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.records {
		if k.key == key {
			delete(r.records, k)
		}
	}
	return nil
}

// put stores doc without validation, for seeding broken drafts.
func (r *memoryPages) put(variant repositories.Variant, doc *layout.PageDocument) {
	raw, _ := json.Marshal(&repositories.PageRecord{Variant: variant, Document: doc})
	r.mu.Lock()
	r.records[pageKey{doc.Key, variant}] = raw
	r.mu.Unlock()
}

type memoryContentTypes struct {
	types map[string]contenttypes.ContentType
}

func newMemoryContentTypes(types ...contenttypes.ContentType) *memoryContentTypes {
	r := &memoryContentTypes{types: make(map[string]contenttypes.ContentType)}
	for _, ct := range types {
		r.types[ct.Type] = ct
	}
	return r
}

func (r *memoryContentTypes) FindByType(typeName string) (*contenttypes.ContentType, error) {
	ct, ok := r.types[typeName]
	if !ok {
		return nil, nil
	}
	return &ct, nil
}

func (r *memoryContentTypes) FindAll() ([]*contenttypes.ContentType, error) {
	var out []*contenttypes.ContentType
	for _, ct := range r.types {
		ct := ct
		out = append(out, &ct)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out, nil
}

func (r *memoryContentTypes) Store(ct *contenttypes.ContentType) error {
	r.types[ct.Type] = *ct
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []messaging.PageEvent
}

func (p *recordingPublisher) Publish(e messaging.PageEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) operations() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	ops := make([]string, len(p.events))
	for i, e := range p.events {
		ops[i] = e.Operation
	}
	return ops
}
