package salesforce

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	log "github.com/sirupsen/logrus"

	"fieldsync/model/model"
)

const (
	uploadStepCreateVersion   = "create_content_version"
	uploadStepResolveDocument = "resolve_content_document"
	uploadStepCreateLink      = "create_document_link"
)

// UploadResult holds the ids created by the upload sequence.
type UploadResult struct {
	DocumentID string `json:"document_id"`
	VersionID  string `json:"version_id"`
	LinkID     string `json:"link_id"`
}

// UploadDocument attaches a base64 encoded pdf to the target record via
// the three step content api sequence: create a ContentVersion, query its
// parent ContentDocument id (the creation response does not include it),
// then link the document to the record with viewer sharing. Steps run in
// order and there is no rollback: a step 2 or 3 failure leaves the content
// version orphaned on the instance.
func UploadDocument(creds *Credentials, recordID, documentBase64, fileName string) (*UploadResult, error) {
	if creds == nil || creds.AccessToken == "" {
		return nil, model.ErrAuthRequired
	}
	if recordID == "" || documentBase64 == "" || fileName == "" {
		return nil, errors.New("missing required fields on upload document")
	}

	logCtx := log.WithFields(log.Fields{"record_id": recordID, "file_name": fileName})

	versionID, err := createContentVersion(creds, documentBase64, fileName)
	if err != nil {
		logCtx.WithError(err).Error("Failed to create salesforce content version.")
		return nil, err
	}

	documentID, err := resolveContentDocumentID(creds, versionID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to resolve salesforce content document.")
		return nil, err
	}

	linkID, err := createDocumentLink(creds, documentID, recordID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to create salesforce document link.")
		return nil, err
	}

	return &UploadResult{DocumentID: documentID, VersionID: versionID, LinkID: linkID}, nil
}

func createContentVersion(creds *Credentials, documentBase64, fileName string) (string, error) {
	payload := map[string]interface{}{
		"Title":        fileName,
		"PathOnClient": fileName,
		"VersionData":  documentBase64,
	}

	resp, err := postJSON(dataServiceURL(creds.InstanceURL, "/sobjects/ContentVersion"),
		creds.AccessToken, payload)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", &UploadStepError{Step: uploadStepCreateVersion,
			StatusCode: resp.StatusCode, Body: readResponseBody(resp)}
	}

	var created createResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil || created.ID == "" {
		return "", &UploadStepError{Step: uploadStepCreateVersion,
			StatusCode: resp.StatusCode, Body: "missing id on create response"}
	}

	return created.ID, nil
}

// resolveContentDocumentID is a second round trip, required because the
// ContentVersion creation response does not carry the parent document id.
func resolveContentDocumentID(creds *Credentials, versionID string) (string, error) {
	soql := fmt.Sprintf("SELECT ContentDocumentId FROM ContentVersion WHERE Id = '%s'",
		quoteSOQLString(versionID))
	queryURL := dataServiceURL(creds.InstanceURL, "/query?q=") + url.QueryEscape(soql)

	resp, err := getRequest(queryURL, creds.AccessToken)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &UploadStepError{Step: uploadStepResolveDocument,
			StatusCode: resp.StatusCode, Body: readResponseBody(resp)}
	}

	var queryResponse QueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&queryResponse); err != nil {
		return "", &UploadStepError{Step: uploadStepResolveDocument,
			StatusCode: resp.StatusCode, Body: "failed to decode query response"}
	}

	if len(queryResponse.Records) == 0 {
		return "", &UploadStepError{Step: uploadStepResolveDocument,
			StatusCode: resp.StatusCode, Body: "content version not found"}
	}

	documentID, _ := queryResponse.Records[0]["ContentDocumentId"].(string)
	if documentID == "" {
		return "", &UploadStepError{Step: uploadStepResolveDocument,
			StatusCode: resp.StatusCode, Body: "missing content document id"}
	}

	return documentID, nil
}

func createDocumentLink(creds *Credentials, documentID, recordID string) (string, error) {
	payload := map[string]interface{}{
		"ContentDocumentId": documentID,
		"LinkedEntityId":    recordID,
		"ShareType":         "V",
		"Visibility":        "AllUsers",
	}

	resp, err := postJSON(dataServiceURL(creds.InstanceURL, "/sobjects/ContentDocumentLink"),
		creds.AccessToken, payload)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", &UploadStepError{Step: uploadStepCreateLink,
			StatusCode: resp.StatusCode, Body: readResponseBody(resp)}
	}

	var created createResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil || created.ID == "" {
		return "", &UploadStepError{Step: uploadStepCreateLink,
			StatusCode: resp.StatusCode, Body: "missing id on create response"}
	}

	return created.ID, nil
}
