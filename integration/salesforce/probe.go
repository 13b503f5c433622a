package salesforce

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"fieldsync/model/model"
	"fieldsync/model/store"
)

// TestConnection probes the instance's limits endpoint with the company's
// credential and records the outcome on the integration row. Returns
// whether the connection is usable and a human readable message.
func TestConnection(s store.Store, credentials *CredentialProvider, companyID string) (bool, string) {
	logCtx := log.WithField("company_id", companyID)

	creds, err := credentials.GetCredentials(companyID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to get credentials on connection test.")
		s.MarkCompanyIntegrationTested(companyID, model.IntegrationTypeSalesforce,
			model.IntegrationStatusError, err.Error())
		return false, err.Error()
	}
	if creds == nil {
		message := "authentication required"
		s.MarkCompanyIntegrationTested(companyID, model.IntegrationTypeSalesforce,
			model.IntegrationStatusError, message)
		return false, message
	}

	resp, err := getRequest(dataServiceURL(creds.InstanceURL, "/limits"), creds.AccessToken)
	if err != nil {
		logCtx.WithError(err).Error("Failed to reach salesforce limits endpoint.")
		s.MarkCompanyIntegrationTested(companyID, model.IntegrationTypeSalesforce,
			model.IntegrationStatusError, err.Error())
		return false, err.Error()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body := readResponseBody(resp)
		logCtx.WithField("status_code", resp.StatusCode).Error(
			"Salesforce connection test failed.")
		s.MarkCompanyIntegrationTested(companyID, model.IntegrationTypeSalesforce,
			model.IntegrationStatusError, body)
		return false, body
	}

	s.MarkCompanyIntegrationTested(companyID, model.IntegrationTypeSalesforce,
		model.IntegrationStatusActive, "")
	return true, "connection ok"
}
