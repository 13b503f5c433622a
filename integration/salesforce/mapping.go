package salesforce

import (
	"errors"
	"net/http"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"fieldsync/model/model"
	"fieldsync/model/store"
)

// Mapping rows change rarely; cache them per company and re-read at most
// every five minutes.
const mappingCacheTTL = 5 * time.Minute

// ResolvedMapping is the outcome of resolving a scanned id against the
// company's mapping table.
type ResolvedMapping struct {
	ObjectName string `json:"object_name"`
	NameField  string `json:"name_field"`
	RecordName string `json:"record_name"`
	Prefix     string `json:"prefix"`
}

type mappingCacheEntry struct {
	mappings   []model.ObjectMapping
	insertedAt time.Time
}

// Resolver parses scanned document ids and resolves their prefix to a
// salesforce object and name field via the company's mapping table.
type Resolver struct {
	store store.Store

	cacheLock sync.RWMutex
	cache     map[string]mappingCacheEntry
}

func NewResolver(s store.Store) *Resolver {
	return &Resolver{
		store: s,
		cache: make(map[string]mappingCacheEntry),
	}
}

// Resolve parses the scanned id and maps its prefix. Returns nil without
// error when no active mapping exists for the prefix: callers treat that
// as unconfigured, not as a fault.
func (r *Resolver) Resolve(companyID, scannedID string) (*ResolvedMapping, error) {
	if companyID == "" {
		return nil, errors.New("invalid company id on resolve")
	}

	parsedID, err := model.ParseDocumentID(scannedID)
	if err != nil {
		return nil, err
	}

	mappings, err := r.getMappings(companyID)
	if err != nil {
		return nil, err
	}

	mapping := model.GetMappingByPrefix(mappings, parsedID.Prefix)
	if mapping == nil {
		return nil, nil
	}

	return &ResolvedMapping{
		ObjectName: mapping.ObjectName,
		NameField:  mapping.NameField,
		RecordName: parsedID.FullID,
		Prefix:     parsedID.Prefix,
	}, nil
}

// getMappings returns the company's active mappings, served from cache
// when the entry is fresh. Expiry is lazy, checked on read.
func (r *Resolver) getMappings(companyID string) ([]model.ObjectMapping, error) {
	r.cacheLock.RLock()
	entry, exists := r.cache[companyID]
	r.cacheLock.RUnlock()

	if exists && time.Since(entry.insertedAt) < mappingCacheTTL {
		return entry.mappings, nil
	}

	mappings, errCode := r.store.GetActiveObjectMappings(companyID)
	if errCode != http.StatusFound {
		log.WithField("company_id", companyID).Error(
			"Failed to get active object mappings on resolve.")
		return nil, errors.New("failed to get object mappings")
	}

	r.cacheLock.Lock()
	r.cache[companyID] = mappingCacheEntry{mappings: mappings, insertedAt: time.Now()}
	r.cacheLock.Unlock()

	return mappings, nil
}

// Invalidate drops the company's cache entry. Called on any mapping
// write.
func (r *Resolver) Invalidate(companyID string) {
	r.cacheLock.Lock()
	delete(r.cache, companyID)
	r.cacheLock.Unlock()
}
