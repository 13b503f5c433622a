package salesforce

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fieldsync/model/model"
)

func TestGetCredentialsFromIntegrationConfig(t *testing.T) {
	fs := newFakeStore()
	fs.addSalesforceIntegration("c1", &model.SalesforceIntegrationConfig{
		AccessToken:    "config_token",
		InstanceURL:    "https://acme.my.salesforce.com",
		TokenExpiresAt: time.Now().Add(time.Hour).Unix(),
	})
	provider := NewCredentialProvider(fs, "client_id", "client_secret")

	creds, err := provider.GetCredentials("c1")
	assert.Nil(t, err)
	assert.NotNil(t, creds)
	assert.Equal(t, "config_token", creds.AccessToken)
	assert.Equal(t, "https://acme.my.salesforce.com", creds.InstanceURL)
}

func TestGetCredentialsZeroExpiryIsValid(t *testing.T) {
	fs := newFakeStore()
	fs.addSalesforceIntegration("c1", &model.SalesforceIntegrationConfig{
		AccessToken: "config_token",
		InstanceURL: "https://acme.my.salesforce.com",
	})
	provider := NewCredentialProvider(fs, "client_id", "client_secret")

	creds, err := provider.GetCredentials("c1")
	assert.Nil(t, err)
	assert.NotNil(t, creds)
}

func TestGetCredentialsFallsBackToLegacyPermission(t *testing.T) {
	fs := newFakeStore()
	fs.addSalesforceIntegration("c1", &model.SalesforceIntegrationConfig{
		AccessToken:    "stale_token",
		InstanceURL:    "https://acme.my.salesforce.com",
		TokenExpiresAt: time.Now().Add(-time.Minute).Unix(),
	})
	fs.permissions["c1|"+model.IntegrationTypeSalesforce] = &model.CompanyIntegrationPermission{
		ID:          "p1",
		CompanyID:   "c1",
		Type:        model.IntegrationTypeSalesforce,
		AccessToken: "legacy_token",
		InstanceURL: "https://legacy.my.salesforce.com",
		IssuedAt:    time.Now().Add(-time.Hour),
	}
	provider := NewCredentialProvider(fs, "client_id", "client_secret")

	creds, err := provider.GetCredentials("c1")
	assert.Nil(t, err)
	assert.NotNil(t, creds)
	assert.Equal(t, "legacy_token", creds.AccessToken)
	assert.Equal(t, "https://legacy.my.salesforce.com", creds.InstanceURL)
}

func TestGetCredentialsRefreshesExpiredToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			r.ParseForm()
			assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
			fmt.Fprint(w, `{"access_token":"fresh_token",
				"instance_url":"https://acme.my.salesforce.com","token_type":"Bearer"}`)
		}))
	defer server.Close()

	originalEndpoint := tokenEndpoint
	tokenEndpoint = server.URL
	defer func() { tokenEndpoint = originalEndpoint }()

	fs := newFakeStore()
	fs.addSalesforceIntegration("c1", &model.SalesforceIntegrationConfig{
		AccessToken:    "stale_token",
		RefreshToken:   "refresh_token_value",
		InstanceURL:    "https://acme.my.salesforce.com",
		TokenExpiresAt: time.Now().Add(-time.Minute).Unix(),
	})
	provider := NewCredentialProvider(fs, "client_id", "client_secret")

	// An expired primary token with a refresh token on file rotates
	// transparently, without hitting the legacy fallback.
	creds, err := provider.GetCredentials("c1")
	assert.Nil(t, err)
	assert.NotNil(t, creds)
	assert.Equal(t, "fresh_token", creds.AccessToken)

	integration, _ := fs.GetCompanyIntegration("c1", model.IntegrationTypeSalesforce)
	config, err := integration.GetSalesforceConfig()
	assert.Nil(t, err)
	assert.Equal(t, "fresh_token", config.AccessToken)
	assert.True(t, config.TokenExpiresAt > time.Now().Unix())
}

func TestGetCredentialsRefreshFailureFallsThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":"invalid_grant","error_description":"expired access/refresh token"}`)
		}))
	defer server.Close()

	originalEndpoint := tokenEndpoint
	tokenEndpoint = server.URL
	defer func() { tokenEndpoint = originalEndpoint }()

	fs := newFakeStore()
	fs.addSalesforceIntegration("c1", &model.SalesforceIntegrationConfig{
		AccessToken:    "stale_token",
		RefreshToken:   "revoked_token",
		InstanceURL:    "https://acme.my.salesforce.com",
		TokenExpiresAt: time.Now().Add(-time.Minute).Unix(),
	})
	fs.permissions["c1|"+model.IntegrationTypeSalesforce] = &model.CompanyIntegrationPermission{
		ID:          "p1",
		CompanyID:   "c1",
		Type:        model.IntegrationTypeSalesforce,
		AccessToken: "legacy_token",
		InstanceURL: "https://legacy.my.salesforce.com",
		IssuedAt:    time.Now().Add(-time.Hour),
	}
	provider := NewCredentialProvider(fs, "client_id", "client_secret")

	// A rejected refresh still falls back to the legacy row.
	creds, err := provider.GetCredentials("c1")
	assert.Nil(t, err)
	assert.NotNil(t, creds)
	assert.Equal(t, "legacy_token", creds.AccessToken)
}

func TestGetCredentialsNoneAvailable(t *testing.T) {
	provider := NewCredentialProvider(newFakeStore(), "client_id", "client_secret")

	// No token anywhere is a nil credential, not an error.
	creds, err := provider.GetCredentials("c1")
	assert.Nil(t, err)
	assert.Nil(t, creds)

	// Legacy token past its age window is the same.
	fs := newFakeStore()
	fs.permissions["c1|"+model.IntegrationTypeSalesforce] = &model.CompanyIntegrationPermission{
		ID:          "p1",
		CompanyID:   "c1",
		Type:        model.IntegrationTypeSalesforce,
		AccessToken: "legacy_token",
		InstanceURL: "https://legacy.my.salesforce.com",
		IssuedAt:    time.Now().Add(-model.LegacyTokenMaxAge - time.Minute),
	}
	provider = NewCredentialProvider(fs, "client_id", "client_secret")

	creds, err = provider.GetCredentials("c1")
	assert.Nil(t, err)
	assert.Nil(t, creds)

	_, err = provider.GetCredentials("")
	assert.NotNil(t, err)
}

func TestRefreshAccessToken(t *testing.T) {
	var form map[string][]string
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			r.ParseForm()
			form = r.PostForm
			fmt.Fprint(w, `{"access_token":"fresh_token",
				"instance_url":"https://acme.my.salesforce.com","token_type":"Bearer"}`)
		}))
	defer server.Close()

	originalEndpoint := tokenEndpoint
	tokenEndpoint = server.URL
	defer func() { tokenEndpoint = originalEndpoint }()

	fs := newFakeStore()
	fs.addSalesforceIntegration("c1", &model.SalesforceIntegrationConfig{
		AccessToken:    "stale_token",
		RefreshToken:   "refresh_token_value",
		InstanceURL:    "https://acme.my.salesforce.com",
		TokenExpiresAt: time.Now().Add(-time.Minute).Unix(),
	})
	provider := NewCredentialProvider(fs, "client_id", "client_secret")

	creds, err := provider.RefreshAccessToken("c1")
	assert.Nil(t, err)
	assert.NotNil(t, creds)
	assert.Equal(t, "fresh_token", creds.AccessToken)

	assert.Equal(t, []string{"refresh_token"}, form["grant_type"])
	assert.Equal(t, []string{"refresh_token_value"}, form["refresh_token"])
	assert.Equal(t, []string{"client_id"}, form["client_id"])

	// The rotated token must be persisted with a fresh expiry.
	integration, errCode := fs.GetCompanyIntegration("c1", model.IntegrationTypeSalesforce)
	assert.Equal(t, http.StatusFound, errCode)
	config, err := integration.GetSalesforceConfig()
	assert.Nil(t, err)
	assert.Equal(t, "fresh_token", config.AccessToken)
	assert.Equal(t, "refresh_token_value", config.RefreshToken)
	assert.True(t, config.TokenExpiresAt > time.Now().Unix())
}

func TestRefreshAccessTokenFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":"invalid_grant","error_description":"expired access/refresh token"}`)
		}))
	defer server.Close()

	originalEndpoint := tokenEndpoint
	tokenEndpoint = server.URL
	defer func() { tokenEndpoint = originalEndpoint }()

	fs := newFakeStore()
	fs.addSalesforceIntegration("c1", &model.SalesforceIntegrationConfig{
		RefreshToken: "revoked_token",
		InstanceURL:  "https://acme.my.salesforce.com",
	})
	provider := NewCredentialProvider(fs, "client_id", "client_secret")

	creds, err := provider.RefreshAccessToken("c1")
	assert.Nil(t, creds)
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "invalid_grant")
}

func TestRefreshAccessTokenWithoutRefreshToken(t *testing.T) {
	fs := newFakeStore()
	fs.addSalesforceIntegration("c1", &model.SalesforceIntegrationConfig{
		AccessToken: "only_access",
		InstanceURL: "https://acme.my.salesforce.com",
	})
	provider := NewCredentialProvider(fs, "client_id", "client_secret")

	creds, err := provider.RefreshAccessToken("c1")
	assert.Nil(t, creds)
	assert.Equal(t, model.ErrAuthRequired, err)
}

func TestGetAuthorizationURL(t *testing.T) {
	authURL := GetAuthorizationURL("client_id", "https://api.example.com/callback", "state123")
	assert.True(t, strings.HasPrefix(authURL, AuthorizationURL+"?"))
	assert.Contains(t, authURL, "response_type=code")
	assert.Contains(t, authURL, "client_id=client_id")
	assert.Contains(t, authURL, "state=state123")
}
