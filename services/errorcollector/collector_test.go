package errorcollector

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"fieldsync/model/model"
	"fieldsync/model/store"
)

type fakeErrorStore struct {
	store.Store

	failing bool
	created []model.IntegrationError
	calls   int
}

func (f *fakeErrorStore) CreateIntegrationErrors(integrationErrors []model.IntegrationError) int {
	f.calls++
	if f.failing {
		return http.StatusInternalServerError
	}
	f.created = append(f.created, integrationErrors...)
	return http.StatusCreated
}

func TestCollectorReportFlushesImmediately(t *testing.T) {
	fs := &fakeErrorStore{}
	collector := New(fs)

	collector.Report(model.IntegrationError{
		CompanyID: "c1",
		Type:      model.IntegrationTypeSalesforce,
		Component: "record_locator",
		Message:   "no matching record on salesforce",
		BatchID:   "b1",
	})

	assert.Equal(t, 0, collector.QueueLen())
	assert.Len(t, fs.created, 1)
	assert.Equal(t, "c1", fs.created[0].CompanyID)
	assert.False(t, fs.created[0].Timestamp.IsZero())
}

func TestCollectorRequeuesOnStoreFailure(t *testing.T) {
	fs := &fakeErrorStore{failing: true}
	collector := New(fs)

	collector.Report(model.IntegrationError{CompanyID: "c1", Message: "first"})
	collector.Report(model.IntegrationError{CompanyID: "c1", Message: "second"})

	// Nothing persisted, everything waiting in order.
	assert.Equal(t, 2, collector.QueueLen())
	assert.Empty(t, fs.created)

	// Store recovers; the next flush drains the backlog in report order.
	fs.failing = false
	collector.Flush()

	assert.Equal(t, 0, collector.QueueLen())
	assert.Len(t, fs.created, 2)
	assert.Equal(t, "first", fs.created[0].Message)
	assert.Equal(t, "second", fs.created[1].Message)
}

func TestCollectorFlushEmptyQueue(t *testing.T) {
	fs := &fakeErrorStore{}
	collector := New(fs)

	collector.Flush()
	assert.Equal(t, 0, fs.calls)
}
