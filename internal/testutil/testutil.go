package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// TestServer drives an http.Handler in-process
type TestServer struct {
	Handler http.Handler
}

// NewTestServer wraps handler for request helpers
func NewTestServer(t *testing.T, handler http.Handler) *TestServer {
	t.Helper()
	return &TestServer{Handler: handler}
}

// Request represents a test HTTP request
type Request struct {
	Method      string
	Path        string
	Body        interface{}
	Headers     map[string]string
	QueryParams map[string]string
}

// Response represents a test HTTP response
type Response struct {
	*httptest.ResponseRecorder
	Body map[string]interface{}
	// Raw holds the undecoded body for array responses
	Raw []byte
}

// MakeRequest creates and executes a test HTTP request
func (ts *TestServer) MakeRequest(t *testing.T, req Request) *Response {
	t.Helper()

	var body *bytes.Reader
	if req.Body != nil {
		bodyBytes, err := json.Marshal(req.Body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		body = bytes.NewReader(bodyBytes)
	} else {
		body = bytes.NewReader(nil)
	}

	httpReq := httptest.NewRequest(req.Method, req.Path, body)
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	if req.QueryParams != nil {
		q := httpReq.URL.Query()
		for key, value := range req.QueryParams {
			q.Add(key, value)
		}
		httpReq.URL.RawQuery = q.Encode()
	}
	if req.Body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	recorder := httptest.NewRecorder()
	ts.Handler.ServeHTTP(recorder, httpReq)

	raw := recorder.Body.Bytes()
	var responseBody map[string]interface{}
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &responseBody); err != nil {
			t.Logf("Failed to decode response body: %v", err)
		}
	}

	return &Response{
		ResponseRecorder: recorder,
		Body:             responseBody,
		Raw:              raw,
	}
}

// AuthenticatedRequest creates a request with a bearer token
func (ts *TestServer) AuthenticatedRequest(t *testing.T, req Request, token string) *Response {
	t.Helper()
	if req.Headers == nil {
		req.Headers = make(map[string]string)
	}
	req.Headers["Authorization"] = "Bearer " + token
	return ts.MakeRequest(t, req)
}

// ErrorCode returns error.code from an error envelope, or "".
func (r *Response) ErrorCode() string {
	e, ok := r.Body["error"].(map[string]interface{})
	if !ok {
		return ""
	}
	code, _ := e["code"].(string)
	return code
}

// ErrorMessage returns error.message from an error envelope, or "".
func (r *Response) ErrorMessage() string {
	e, ok := r.Body["error"].(map[string]interface{})
	if !ok {
		return ""
	}
	msg, _ := e["message"].(string)
	return msg
}

// DecodeInto unmarshals the raw body into v
func (r *Response) DecodeInto(t *testing.T, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(r.Raw, v); err != nil {
		t.Fatalf("Failed to decode response body %q: %v", r.Raw, err)
	}
}

// FakePinger is a readiness check whose result tests can flip
type FakePinger struct {
	mu  sync.Mutex
	err error
}

func (p *FakePinger) Ping(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *FakePinger) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// TimeNow returns a consistent time for testing
func TimeNow() time.Time {
	return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

// AssertJSON checks if the response body contains expected JSON fields
func AssertJSON(t *testing.T, resp *Response, field string, expected interface{}) {
	t.Helper()
	if resp.Body[field] != expected {
		t.Errorf("Expected %s to be %v, got %v", field, expected, resp.Body[field])
	}
}

// AssertJSONExists checks if a JSON field exists in the response
func AssertJSONExists(t *testing.T, resp *Response, field string) {
	t.Helper()
	if _, exists := resp.Body[field]; !exists {
		t.Errorf("Expected field %s to exist in response", field)
	}
}
