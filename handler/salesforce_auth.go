package handler

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	SF "fieldsync/integration/salesforce"
	"fieldsync/model/model"
	U "fieldsync/util"
)

const (
	salesforceCallbackRoute  = "/salesforce/auth/callback"
	salesforceAppSettingsURL = "/#/settings/integrations/salesforce"

	oauthNonceTTL = 10 * time.Minute
)

// issueOAuthNonce mints a single-use state nonce for the oauth redirect.
func (api *API) issueOAuthNonce() string {
	nonce := U.RandomLowerAphaNumString(16)

	api.nonceLock.Lock()
	api.oauthNonces[nonce] = time.Now().Add(oauthNonceTTL)
	api.nonceLock.Unlock()

	return nonce
}

// consumeOAuthNonce burns the nonce carried back in the callback state.
// Unknown or expired nonces reject the callback as forged.
func (api *API) consumeOAuthNonce(nonce string) bool {
	if nonce == "" {
		return false
	}

	api.nonceLock.Lock()
	defer api.nonceLock.Unlock()

	expiry, exists := api.oauthNonces[nonce]
	if !exists {
		return false
	}
	delete(api.oauthNonces, nonce)

	return time.Now().Before(expiry)
}

type oauthState struct {
	CompanyID string  `json:"cid"`
	UserID    *string `json:"uid"`
	Nonce     string  `json:"n"`
}

func (api *API) getSalesforceRedirectURL() string {
	return api.cfg.GetProtocol() + api.cfg.APIDomain + salesforceCallbackRoute
}

// SalesforceAuthRedirect redirects the admin to the salesforce oauth
// consent page with the company carried in state.
func (api *API) SalesforceAuthRedirect(c *gin.Context) {
	companyID := c.Query("cid")
	if companyID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest,
			gin.H{"error": "Invalid company id."})
		return
	}

	userID := c.Query("uid")
	state := &oauthState{
		CompanyID: companyID,
		UserID:    &userID,
		Nonce:     api.issueOAuthNonce(),
	}
	enState, err := json.Marshal(state)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	redirectURL := SF.GetAuthorizationURL(api.cfg.SalesforceAppID,
		api.getSalesforceRedirectURL(), url.QueryEscape(string(enState)))
	c.Redirect(http.StatusTemporaryRedirect, redirectURL)
}

// SalesforceCallbackHandler handles the oauth redirect back from
// salesforce, trades the access code for tokens and stores them on the
// company's integration config.
func (api *API) SalesforceCallbackHandler(c *gin.Context) {
	accessCode := c.Query("code")
	state, _ := url.QueryUnescape(c.Query("state"))

	var authState oauthState
	err := json.Unmarshal([]byte(state), &authState)
	if err != nil || authState.CompanyID == "" || accessCode == "" {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	logCtx := log.WithField("company_id", authState.CompanyID)

	if !api.consumeOAuthNonce(authState.Nonce) {
		logCtx.Error("Unknown or expired state nonce on salesforce callback.")
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	tokenResponse, err := SF.ExchangeAccessCode(api.cfg.SalesforceAppID,
		api.cfg.SalesforceAppSecret, api.getSalesforceRedirectURL(), accessCode)
	if err != nil {
		logCtx.WithError(err).Error("Failed to exchange salesforce access code.")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	accessToken, _ := tokenResponse["access_token"].(string)
	refreshToken, _ := tokenResponse["refresh_token"].(string)
	instanceURL, _ := tokenResponse["instance_url"].(string)
	if refreshToken == "" || instanceURL == "" {
		logCtx.Error("Missing refresh token or instance url on token response.")
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	currentTime := time.Now()
	enConfig, err := model.EncodeSalesforceConfig(&model.SalesforceIntegrationConfig{
		AccessToken:    accessToken,
		RefreshToken:   refreshToken,
		InstanceURL:    instanceURL,
		TokenIssuedAt:  currentTime.Unix(),
		TokenExpiresAt: currentTime.Add(2 * time.Hour).Unix(),
	})
	if err != nil {
		logCtx.WithError(err).Error("Failed to encode salesforce config.")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	errCode := api.store.UpsertCompanyIntegration(&model.CompanyIntegration{
		CompanyID: authState.CompanyID,
		Type:      model.IntegrationTypeSalesforce,
		Status:    model.IntegrationStatusActive,
		Config:    enConfig,
	})
	if errCode != http.StatusCreated && errCode != http.StatusAccepted {
		logCtx.Error("Failed to store salesforce integration config.")
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			gin.H{"error": "failed storing salesforce integration"})
		return
	}

	if errCode == http.StatusCreated {
		if seedCode := api.store.SeedDefaultObjectMappings(authState.CompanyID); seedCode != http.StatusCreated {
			logCtx.Error("Failed to seed default object mappings.")
		}
		api.resolver.Invalidate(authState.CompanyID)
	}

	redirectURL := api.cfg.GetProtocol() + api.cfg.APPDomain + salesforceAppSettingsURL
	c.Redirect(http.StatusPermanentRedirect, redirectURL)
}
