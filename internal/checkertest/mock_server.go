package checkertest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// CompletionsPath is the path the checker client posts to.
const CompletionsPath = "/chat/completions"

// MockServer is a mock chat completions server for testing the checker
// client. Responses are configured per path; a sequence is served in order
// and its last entry repeats.
type MockServer struct {
	server    *httptest.Server
	responses map[string][]MockResponse
	requests  []RecordedRequest
	mu        sync.Mutex
}

// MockResponse defines a mock response configuration.
type MockResponse struct {
	StatusCode int
	Body       any
	Delay      time.Duration
	Headers    map[string]string
}

// RecordedRequest is a request received by the server.
type RecordedRequest struct {
	Path          string
	Authorization string
	Model         string
	MaxTokens     int
	System        string
	User          string
}

// NewMockServer creates and starts a mock server.
func NewMockServer() *MockServer {
	ms := &MockServer{responses: make(map[string][]MockResponse)}
	ms.server = httptest.NewServer(http.HandlerFunc(ms.handler))
	return ms
}

// URL returns the base URL to configure the client with.
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// Close closes the mock server.
func (ms *MockServer) Close() {
	ms.server.Close()
}

// SetResponse sets the response for a path.
func (ms *MockServer) SetResponse(path string, response MockResponse) {
	ms.SetSequence(path, response)
}

// SetSequence serves responses in order for a path, repeating the last one.
func (ms *MockServer) SetSequence(path string, responses ...MockResponse) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.responses[path] = responses
}

// RequestCount returns the number of requests received.
func (ms *MockServer) RequestCount() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	return len(ms.requests)
}

// Requests returns a copy of the received requests.
func (ms *MockServer) Requests() []RecordedRequest {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	return append([]RecordedRequest(nil), ms.requests...)
}

func (ms *MockServer) handler(w http.ResponseWriter, r *http.Request) {
	rec := RecordedRequest{Path: r.URL.Path, Authorization: r.Header.Get("Authorization")}
	var body struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
		Messages  []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
		rec.Model = body.Model
		rec.MaxTokens = body.MaxTokens
		for _, m := range body.Messages {
			switch m.Role {
			case "system":
				rec.System = m.Content
			case "user":
				rec.User = m.Content
			}
		}
	}

	ms.mu.Lock()
	ms.requests = append(ms.requests, rec)
	seq := ms.responses[r.URL.Path]
	var response MockResponse
	ok := len(seq) > 0
	if ok {
		response = seq[0]
		if len(seq) > 1 {
			ms.responses[r.URL.Path] = seq[1:]
		}
	}
	ms.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	if response.Delay > 0 {
		select {
		case <-time.After(response.Delay):
		case <-r.Context().Done():
			return
		}
	}

	for key, value := range response.Headers {
		w.Header().Set(key, value)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(response.StatusCode)

	switch v := response.Body.(type) {
	case nil:
	case string:
		_, _ = w.Write([]byte(v))
	case []byte:
		_, _ = w.Write(v)
	default:
		_ = json.NewEncoder(w).Encode(v)
	}
}

// ChatResponse creates a successful chat completion body.
func ChatResponse(content, model string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-123",
		"object":  "chat.completion",
		"created": time.Now().Unix(),
		"model":   model,
		"choices": []map[string]any{
			{
				"index": 0,
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]any{
			"prompt_tokens":     10,
			"completion_tokens": 20,
			"total_tokens":      30,
		},
	}
}

// OK wraps ChatResponse in a 200 response.
func OK(content string) MockResponse {
	return MockResponse{StatusCode: http.StatusOK, Body: ChatResponse(content, "test-model")}
}

// ErrorResponse creates an OpenAI-style error response.
func ErrorResponse(statusCode int, message string) MockResponse {
	return MockResponse{
		StatusCode: statusCode,
		Body: map[string]any{
			"error": map[string]any{
				"message": message,
				"type":    "invalid_request_error",
				"code":    statusCode,
			},
		},
	}
}

// AuthError creates a 401 response.
func AuthError() MockResponse {
	return ErrorResponse(http.StatusUnauthorized, "Invalid API key")
}

// RateLimitError creates a 429 response with a Retry-After header.
func RateLimitError(retryAfter int) MockResponse {
	response := ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded")
	response.Headers = map[string]string{"Retry-After": fmt.Sprintf("%d", retryAfter)}
	return response
}

// ServerError creates a 500 response.
func ServerError() MockResponse {
	return ErrorResponse(http.StatusInternalServerError, "Internal server error")
}

// Slow creates a successful response delivered after delay.
func Slow(content string, delay time.Duration) MockResponse {
	response := OK(content)
	response.Delay = delay
	return response
}
