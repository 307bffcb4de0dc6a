package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
)

// MockRobloxServer creates a test server that mocks Roblox web API responses
type MockRobloxServer struct {
	*httptest.Server
	Handlers map[string]http.HandlerFunc
}

// NewMockRobloxServer creates a new mock Roblox API server
func NewMockRobloxServer(t *testing.T) *MockRobloxServer {
	t.Helper()
	m := &MockRobloxServer{
		Handlers: make(map[string]http.HandlerFunc),
	}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Path
		if handler, ok := m.Handlers[key]; ok {
			handler(w, r)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(m.Close)
	return m
}

// HTTPClient returns a client whose requests are all rewritten to the mock
// server regardless of the host the production code dials.
func (m *MockRobloxServer) HTTPClient() *http.Client {
	return &http.Client{
		Transport: &rewriteTransport{
			Transport: http.DefaultTransport,
			host:      m.URL,
		},
	}
}

// MockUsernameResponse adds a handler for the username resolution endpoint
func (m *MockRobloxServer) MockUsernameResponse(userID int64, name string) {
	m.Handlers["/v1/usernames/users"] = func(w http.ResponseWriter, r *http.Request) {
		response := map[string]interface{}{
			"data": []map[string]interface{}{
				{"id": userID, "name": name},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response) //nolint:errcheck // test mock response
	}
}

// MockGamesResponse adds a handler for the user games endpoint
func (m *MockRobloxServer) MockGamesResponse(userID int64, games []map[string]interface{}) {
	m.Handlers["/v2/users/"+strconv.FormatInt(userID, 10)+"/games"] = func(w http.ResponseWriter, r *http.Request) {
		response := map[string]interface{}{"data": games}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response) //nolint:errcheck // test mock response
	}
}

// MockGamePassesResponse adds a handler for the game's gamepass listing
func (m *MockRobloxServer) MockGamePassesResponse(gameID int64, passes []map[string]interface{}) {
	m.Handlers["/v1/games/"+strconv.FormatInt(gameID, 10)+"/game-passes"] = func(w http.ResponseWriter, r *http.Request) {
		response := map[string]interface{}{"data": passes}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response) //nolint:errcheck // test mock response
	}
}

// MockGamePassProductResponse adds a handler for the gamepass product info endpoint
func (m *MockRobloxServer) MockGamePassProductResponse(passID, productID int64) {
	m.Handlers["/v1/game-pass/"+strconv.FormatInt(passID, 10)+"/game-pass-product-info"] = func(w http.ResponseWriter, r *http.Request) {
		response := map[string]interface{}{"ProductId": productID}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response) //nolint:errcheck // test mock response
	}
}

// MockCSRFResponse adds a handler for the login endpoint that issues a CSRF token
func (m *MockRobloxServer) MockCSRFResponse(token string) {
	m.Handlers["/v2/login"] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CSRF-Token", token)
		w.WriteHeader(http.StatusForbidden)
	}
}

// MockRevokeResponse adds a handler for the ownership revoke endpoint
func (m *MockRobloxServer) MockRevokeResponse(passID int64, status int) {
	m.Handlers["/game-passes/v1/game-passes/"+strconv.FormatInt(passID, 10)+":revokeownership"] = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}
}

// MockPurchaseResponse adds a handler for the product purchase endpoint
func (m *MockRobloxServer) MockPurchaseResponse(productID int64, purchased bool) {
	m.Handlers["/game-passes/v1/game-passes/"+strconv.FormatInt(productID, 10)+"/purchase"] = func(w http.ResponseWriter, r *http.Request) {
		response := map[string]interface{}{"purchased": purchased}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response) //nolint:errcheck // test mock response
	}
}

// rewriteTransport rewrites all requests to use the test server
type rewriteTransport struct {
	Transport http.RoundTripper
	host      string
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = "http"
	if t.host != "" {
		host := t.host
		host = strings.TrimPrefix(host, "http://")
		host = strings.TrimPrefix(host, "https://")
		req.URL.Host = host
	}
	return t.Transport.RoundTrip(req)
}

