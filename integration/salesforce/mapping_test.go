package salesforce

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fieldsync/model/model"
)

func TestResolverResolve(t *testing.T) {
	fs := newFakeStore()
	fs.mappings["c1"] = []model.ObjectMapping{
		{CompanyID: "c1", Prefix: "INV", ObjectName: "Invoice__c", NameField: "Name"},
		{CompanyID: "c1", Prefix: "WO", ObjectName: "WorkOrder", NameField: "WorkOrderNumber"},
	}
	resolver := NewResolver(fs)

	resolved, err := resolver.Resolve("c1", "inv-420")
	assert.Nil(t, err)
	assert.NotNil(t, resolved)
	assert.Equal(t, "Invoice__c", resolved.ObjectName)
	assert.Equal(t, "Name", resolved.NameField)
	assert.Equal(t, "INV-420", resolved.RecordName)
	assert.Equal(t, "INV", resolved.Prefix)

	// Prefix without an active mapping resolves to nil, not an error.
	resolved, err = resolver.Resolve("c1", "PO-99")
	assert.Nil(t, err)
	assert.Nil(t, resolved)

	// Malformed id is an error.
	resolved, err = resolver.Resolve("c1", "420")
	assert.NotNil(t, err)
	assert.Nil(t, resolved)
	malformedErr, isMalformed := err.(*model.MalformedIDError)
	assert.True(t, isMalformed)
	assert.Equal(t, "420", malformedErr.ScannedID)

	_, err = resolver.Resolve("", "INV-420")
	assert.NotNil(t, err)
}

func TestResolverCachesMappings(t *testing.T) {
	fs := newFakeStore()
	fs.mappings["c1"] = []model.ObjectMapping{
		{CompanyID: "c1", Prefix: "INV", ObjectName: "Invoice__c", NameField: "Name"},
	}
	resolver := NewResolver(fs)

	for i := 0; i < 5; i++ {
		resolved, err := resolver.Resolve("c1", "INV-1")
		assert.Nil(t, err)
		assert.NotNil(t, resolved)
	}
	assert.Equal(t, 1, fs.mappingQueries)

	// Each company gets its own cache entry.
	fs.mappings["c2"] = []model.ObjectMapping{
		{CompanyID: "c2", Prefix: "INV", ObjectName: "Invoice__c", NameField: "Name"},
	}
	_, err := resolver.Resolve("c2", "INV-1")
	assert.Nil(t, err)
	assert.Equal(t, 2, fs.mappingQueries)
}

func TestResolverCacheExpiry(t *testing.T) {
	fs := newFakeStore()
	fs.mappings["c1"] = []model.ObjectMapping{
		{CompanyID: "c1", Prefix: "INV", ObjectName: "Invoice__c", NameField: "Name"},
	}
	resolver := NewResolver(fs)

	_, err := resolver.Resolve("c1", "INV-1")
	assert.Nil(t, err)
	assert.Equal(t, 1, fs.mappingQueries)

	// Age the cache entry past the ttl; the next resolve re-reads.
	resolver.cacheLock.Lock()
	entry := resolver.cache["c1"]
	entry.insertedAt = time.Now().Add(-mappingCacheTTL - time.Second)
	resolver.cache["c1"] = entry
	resolver.cacheLock.Unlock()

	_, err = resolver.Resolve("c1", "INV-1")
	assert.Nil(t, err)
	assert.Equal(t, 2, fs.mappingQueries)
}

func TestResolverInvalidate(t *testing.T) {
	fs := newFakeStore()
	fs.mappings["c1"] = []model.ObjectMapping{
		{CompanyID: "c1", Prefix: "INV", ObjectName: "Invoice__c", NameField: "Name"},
	}
	resolver := NewResolver(fs)

	_, err := resolver.Resolve("c1", "INV-1")
	assert.Nil(t, err)
	assert.Equal(t, 1, fs.mappingQueries)

	// Mapping writes invalidate; the stale object name must not be served.
	fs.mappings["c1"] = []model.ObjectMapping{
		{CompanyID: "c1", Prefix: "INV", ObjectName: "Custom_Invoice__c", NameField: "Name"},
	}
	resolver.Invalidate("c1")

	resolved, err := resolver.Resolve("c1", "INV-1")
	assert.Nil(t, err)
	assert.Equal(t, 2, fs.mappingQueries)
	assert.Equal(t, "Custom_Invoice__c", resolved.ObjectName)
}

func TestResolverSkipsInactiveMapping(t *testing.T) {
	inactive := false
	fs := newFakeStore()
	fs.mappings["c1"] = []model.ObjectMapping{
		{CompanyID: "c1", Prefix: "INV", ObjectName: "Invoice__c",
			NameField: "Name", Active: &inactive},
	}
	resolver := NewResolver(fs)

	resolved, err := resolver.Resolve("c1", "INV-1")
	assert.Nil(t, err)
	assert.Nil(t, resolved)
}
