package salesforce

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"fieldsync/model/model"
	"fieldsync/model/store"
)

// Salesforce does not report an expiry for refreshed tokens; assume the
// org default session timeout.
const accessTokenTTL = 2 * time.Hour

// Credentials is a usable access token bound to an instance.
type Credentials struct {
	AccessToken string
	InstanceURL string
}

// CredentialProvider resolves per-company salesforce credentials. The
// persisted integration config is the primary location; the legacy
// permissions table is consulted as fallback for companies authorized
// before tokens moved into config blobs.
type CredentialProvider struct {
	store        store.Store
	clientID     string
	clientSecret string
}

func NewCredentialProvider(s store.Store, clientID, clientSecret string) *CredentialProvider {
	return &CredentialProvider{store: s, clientID: clientID, clientSecret: clientSecret}
}

// GetCredentials returns a valid, non-expired credential for the company
// or nil when neither token location holds one. A nil result means the
// user must re-authenticate, it is not an error.
func (p *CredentialProvider) GetCredentials(companyID string) (*Credentials, error) {
	logCtx := log.WithField("company_id", companyID)

	if companyID == "" {
		return nil, errors.New("invalid company id on get credentials")
	}

	integration, errCode := p.store.GetCompanyIntegration(companyID, model.IntegrationTypeSalesforce)
	if errCode == http.StatusInternalServerError {
		return nil, errors.New("failed to get company integration")
	}

	if errCode == http.StatusFound {
		config, err := integration.GetSalesforceConfig()
		if err != nil {
			logCtx.WithError(err).Error("Failed to decode integration config.")
		} else {
			if config.AccessToken != "" && config.InstanceURL != "" &&
				(config.TokenExpiresAt == 0 || time.Now().Unix() < config.TokenExpiresAt) {
				return &Credentials{
					AccessToken: config.AccessToken,
					InstanceURL: config.InstanceURL,
				}, nil
			}

			// Expired or missing access token with a refresh token on
			// file: rotate it instead of forcing re-authentication.
			if config.RefreshToken != "" {
				creds, err := p.RefreshAccessToken(companyID)
				if err == nil {
					return creds, nil
				}
				logCtx.WithError(err).Error("Failed to refresh expired salesforce token.")
			}
		}
	}

	permission, errCode := p.store.GetCompanyIntegrationPermission(
		companyID, model.IntegrationTypeSalesforce)
	if errCode == http.StatusInternalServerError {
		return nil, errors.New("failed to get company integration permission")
	}
	if errCode != http.StatusFound {
		return nil, nil
	}

	if permission.IsExpired(time.Now()) {
		logCtx.Debug("Legacy salesforce token expired.")
		return nil, nil
	}

	return &Credentials{
		AccessToken: permission.AccessToken,
		InstanceURL: permission.InstanceURL,
	}, nil
}

type tokenError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// RefreshAccessToken gets a new access token using the stored refresh
// token and persists it back into the integration config.
func (p *CredentialProvider) RefreshAccessToken(companyID string) (*Credentials, error) {
	logCtx := log.WithField("company_id", companyID)

	integration, errCode := p.store.GetCompanyIntegration(companyID, model.IntegrationTypeSalesforce)
	if errCode != http.StatusFound {
		return nil, errors.New("salesforce integration not configured")
	}

	config, err := integration.GetSalesforceConfig()
	if err != nil {
		return nil, err
	}
	if config.RefreshToken == "" {
		return nil, model.ErrAuthRequired
	}

	tokenResponse, err := requestToken(url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {config.RefreshToken},
		"client_id":     {p.clientID},
		"client_secret": {p.clientSecret},
	})
	if err != nil {
		logCtx.WithError(err).Error("Failed to refresh salesforce access token.")
		return nil, err
	}

	accessToken, _ := tokenResponse["access_token"].(string)
	if accessToken == "" {
		return nil, errors.New("failed to get access token by refresh token")
	}

	if instanceURL, exists := tokenResponse["instance_url"].(string); exists && instanceURL != "" {
		config.InstanceURL = instanceURL
	}

	currentTime := time.Now()
	config.AccessToken = accessToken
	config.TokenIssuedAt = currentTime.Unix()
	config.TokenExpiresAt = currentTime.Add(accessTokenTTL).Unix()

	errCode = p.store.UpdateCompanyIntegrationConfig(companyID,
		model.IntegrationTypeSalesforce, config)
	if errCode != http.StatusAccepted {
		logCtx.Error("Failed to persist refreshed salesforce token.")
	}

	return &Credentials{AccessToken: accessToken, InstanceURL: config.InstanceURL}, nil
}

// ExchangeAccessCode trades an oauth access code for tokens. Used by the
// auth callback handler.
func ExchangeAccessCode(clientID, clientSecret, redirectURL, accessCode string) (map[string]interface{}, error) {
	return requestToken(url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {accessCode},
		"client_id":     {clientID},
		"client_secret": {clientSecret},
		"redirect_uri":  {redirectURL},
	})
}

func requestToken(params url.Values) (map[string]interface{}, error) {
	resp, err := httpClient.Post(tokenEndpoint, "application/x-www-form-urlencoded",
		strings.NewReader(params.Encode()))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errBody tokenError
		json.NewDecoder(resp.Body).Decode(&errBody)
		return nil, fmt.Errorf("salesforce token request failed %s : %s",
			errBody.Error, errBody.ErrorDescription)
	}

	var tokenResponse map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		return nil, errors.New("failed to decode salesforce token response")
	}

	return tokenResponse, nil
}

// tokenEndpoint is a var so tests can point token requests at a fake
// server.
var tokenEndpoint = TokenURL

// GetAuthorizationURL builds the oauth authorization redirect url.
func GetAuthorizationURL(clientID, redirectURL, state string) string {
	params := url.Values{
		"response_type": {"code"},
		"client_id":     {clientID},
		"redirect_uri":  {redirectURL},
		"state":         {state},
	}

	return fmt.Sprintf("%s?%s", AuthorizationURL, params.Encode())
}
