package salesforce

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"

	"fieldsync/model/model"
)

// RecordRef identifies a matched salesforce record.
type RecordRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// quoteSOQLString escapes a value for use inside a SOQL single-quoted
// string literal.
func quoteSOQLString(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `'`, `\'`)
	return value
}

// FindRecordByName queries the object for the first record whose name
// field equals recordName. Zero matches is a valid nil outcome.
func FindRecordByName(creds *Credentials, objectName, nameField, recordName string) (*RecordRef, error) {
	if creds == nil || creds.AccessToken == "" {
		return nil, model.ErrAuthRequired
	}
	if objectName == "" || nameField == "" || recordName == "" {
		return nil, errors.New("missing required fields on find record by name")
	}

	logCtx := log.WithFields(log.Fields{
		"object_name": objectName, "record_name": recordName})

	soql := fmt.Sprintf("SELECT Id, %s FROM %s WHERE %s = '%s' LIMIT 1",
		nameField, objectName, nameField, quoteSOQLString(recordName))
	queryURL := dataServiceURL(creds.InstanceURL, "/query?q=") + url.QueryEscape(soql)

	resp, err := getRequest(queryURL, creds.AccessToken)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &QueryError{StatusCode: resp.StatusCode, Body: readResponseBody(resp)}
	}

	var queryResponse QueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&queryResponse); err != nil {
		logCtx.WithError(err).Error("Failed to decode salesforce query response.")
		return nil, errors.New("failed to decode query response")
	}

	if len(queryResponse.Records) == 0 {
		return nil, nil
	}

	record := queryResponse.Records[0]
	id, _ := record["Id"].(string)
	if id == "" {
		return nil, errors.New("record without id on query response")
	}

	name, _ := record[nameField].(string)
	return &RecordRef{ID: id, Name: name}, nil
}
