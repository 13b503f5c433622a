package salesforce

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fieldsync/model/model"
)

func TestTestConnection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			assert.True(t, r.URL.Path == DataServiceRoute+APIVersion+"/limits")
			fmt.Fprint(w, `{"DailyApiRequests":{"Max":15000,"Remaining":14998}}`)
		}))
	defer server.Close()

	fs := newFakeStore()
	fs.addSalesforceIntegration("c1", &model.SalesforceIntegrationConfig{
		AccessToken:    "test_token",
		InstanceURL:    server.URL,
		TokenExpiresAt: time.Now().Add(time.Hour).Unix(),
	})
	provider := NewCredentialProvider(fs, "client_id", "client_secret")

	ok, message := TestConnection(fs, provider, "c1")
	assert.True(t, ok)
	assert.Equal(t, "connection ok", message)

	integration, _ := fs.GetCompanyIntegration("c1", model.IntegrationTypeSalesforce)
	assert.Equal(t, model.IntegrationStatusActive, integration.Status)
	assert.Empty(t, integration.ErrorMessage)
}

func TestTestConnectionRejectedToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `[{"message":"Session expired","errorCode":"INVALID_SESSION_ID"}]`)
		}))
	defer server.Close()

	fs := newFakeStore()
	fs.addSalesforceIntegration("c1", &model.SalesforceIntegrationConfig{
		AccessToken:    "stale_token",
		InstanceURL:    server.URL,
		TokenExpiresAt: time.Now().Add(time.Hour).Unix(),
	})
	provider := NewCredentialProvider(fs, "client_id", "client_secret")

	ok, message := TestConnection(fs, provider, "c1")
	assert.False(t, ok)
	assert.Contains(t, message, "INVALID_SESSION_ID")

	integration, _ := fs.GetCompanyIntegration("c1", model.IntegrationTypeSalesforce)
	assert.Equal(t, model.IntegrationStatusError, integration.Status)
}

func TestTestConnectionWithoutCredentials(t *testing.T) {
	fs := newFakeStore()
	fs.addSalesforceIntegration("c1", &model.SalesforceIntegrationConfig{})
	provider := NewCredentialProvider(fs, "client_id", "client_secret")

	ok, message := TestConnection(fs, provider, "c1")
	assert.False(t, ok)
	assert.Equal(t, "authentication required", message)
}
