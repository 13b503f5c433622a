package salesforce

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"time"
)

const (
	TokenURL         = "https://login.salesforce.com/services/oauth2/token"
	AuthorizationURL = "https://login.salesforce.com/services/oauth2/authorize"

	DataServiceRoute = "/services/data/"
	APIVersion       = "v53.0"
)

// Record is a map of salesforce fields and their values.
type Record map[string]interface{}

type QueryResponse struct {
	TotalSize      int      `json:"totalSize"`
	Done           bool     `json:"done"`
	Records        []Record `json:"records"`
	NextRecordsUrl string   `json:"nextRecordsUrl"`
}

type DataServiceError struct {
	Message   string `json:"message"`
	ErrorCode string `json:"errorCode"`
}

type createResponse struct {
	ID      string        `json:"id"`
	Success bool          `json:"success"`
	Errors  []interface{} `json:"errors"`
}

// QueryError is a non-2xx response from the salesforce query endpoint.
type QueryError struct {
	StatusCode int
	Body       string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("salesforce query failed with status %d: %s", e.StatusCode, e.Body)
}

// UploadStepError names the failed step of the create-and-link sequence
// along with the external status and body.
type UploadStepError struct {
	Step       string
	StatusCode int
	Body       string
}

func (e *UploadStepError) Error() string {
	return fmt.Sprintf("salesforce upload step %s failed with status %d: %s",
		e.Step, e.StatusCode, e.Body)
}

var httpClient = &http.Client{
	Timeout: 1 * time.Minute,
}

func buildGETRequest(url, accessToken string) (*http.Request, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer"+" "+accessToken)
	return req, nil
}

// getRequest performs a GET request on the provided url with access token.
func getRequest(url, accessToken string) (*http.Response, error) {
	req, err := buildGETRequest(url, accessToken)
	if err != nil {
		return nil, err
	}

	return httpClient.Do(req)
}

// postJSON performs a POST request with a json payload and access token.
func postJSON(url, accessToken string, payload interface{}) (*http.Response, error) {
	enPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", url, bytes.NewReader(enPayload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer"+" "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	return httpClient.Do(req)
}

// readResponseBody drains the body for error reporting.
func readResponseBody(resp *http.Response) string {
	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return ""
	}
	return string(body)
}

func dataServiceURL(instanceURL, route string) string {
	return instanceURL + DataServiceRoute + APIVersion + route
}
