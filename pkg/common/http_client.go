package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Outbound gateway calls are bounded; failures surface to the caller, who may
// retry manually. There is no retry queue.
var httpClient = &http.Client{Timeout: 10 * time.Second}

// HTTPError is returned for non-2xx upstream responses so callers can
// distinguish gateway rejections from transport failures.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, e.Body)
}

// Post sends a POST request with a JSON payload and returns the decoded
// response body, usually a map[string]interface{}.
func Post(url string, payload interface{}, headers map[string]string) (interface{}, error) {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return doRequest(req)
}

// Get sends a GET request and returns the decoded response body.
func Get(url string, headers map[string]string) (interface{}, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return doRequest(req)
}

func doRequest(req *http.Request) (interface{}, error) {
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result interface{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &result); err != nil {
			return string(body), nil
		}
	}

	return result, nil
}
