package roblox

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClient_ResolveUsername(t *testing.T) {
	tests := []struct {
		response    interface{}
		name        string
		username    string
		wantUserID  int64
		errContains string
		statusCode  int
		wantErr     bool
	}{
		{
			name:     "successful lookup",
			username: "builderman",
			response: map[string]interface{}{
				"data": []map[string]interface{}{
					{"id": 156, "name": "builderman"},
				},
			},
			statusCode: http.StatusOK,
			wantUserID: 156,
		},
		{
			name:     "user not found",
			username: "nosuchuser",
			response: map[string]interface{}{
				"data": []map[string]interface{}{},
			},
			statusCode:  http.StatusOK,
			wantErr:     true,
			errContains: "user not found",
		},
		{
			name:        "empty username",
			username:    "",
			wantErr:     true,
			errContains: "username empty",
		},
		{
			name:        "server error",
			username:    "builderman",
			statusCode:  http.StatusInternalServerError,
			wantErr:     true,
			errContains: "users lookup failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/v1/usernames/users" {
					t.Errorf("path = %s, want /v1/usernames/users", r.URL.Path)
				}
				if r.Method != http.MethodPost {
					t.Errorf("method = %s, want POST", r.Method)
				}
				var body struct {
					Usernames          []string `json:"usernames"`
					ExcludeBannedUsers bool     `json:"excludeBannedUsers"`
				}
				if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
					t.Errorf("decode request: %v", err)
				}
				if len(body.Usernames) != 1 || body.Usernames[0] != tt.username {
					t.Errorf("usernames = %v, want [%s]", body.Usernames, tt.username)
				}
				if !body.ExcludeBannedUsers {
					t.Error("excludeBannedUsers not set")
				}
				w.WriteHeader(tt.statusCode)
				if tt.response != nil {
					json.NewEncoder(w).Encode(tt.response)
				}
			}))
			defer server.Close()

			client := newTestClient(server.URL)
			userID, err := client.ResolveUsername(context.Background(), tt.username)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("ResolveUsername() error = nil, want error containing %q", tt.errContains)
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Fatalf("ResolveUsername() error = %v, want error containing %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveUsername() unexpected error = %v", err)
			}
			if userID != tt.wantUserID {
				t.Errorf("ResolveUsername() = %d, want %d", userID, tt.wantUserID)
			}
		})
	}
}

func TestClient_ListGames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/users/156/games" {
			t.Errorf("path = %s, want /v2/users/156/games", r.URL.Path)
		}
		if got := r.URL.Query().Get("limit"); got != "50" {
			t.Errorf("limit = %s, want 50", got)
		}
		if got := r.URL.Query().Get("sortOrder"); got != "Asc" {
			t.Errorf("sortOrder = %s, want Asc", got)
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{"id": 11, "name": "Obby One"},
				{"id": 12, "name": "Obby Two"},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	games, err := client.ListGames(context.Background(), 156)
	if err != nil {
		t.Fatalf("ListGames() error = %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("ListGames() returned %d games, want 2", len(games))
	}
	if games[0].ID != 11 || games[0].Name != "Obby One" {
		t.Errorf("games[0] = %+v", games[0])
	}
}

func TestClient_ListGamePasses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/games/11/game-passes" {
			t.Errorf("path = %s, want /v1/games/11/game-passes", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{"id": 101, "name": "VIP", "price": 5},
				{"id": 102, "name": "", "price": nil},
				{"id": 103, "name": "Mega", "price": 250},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	passes, err := client.ListGamePasses(context.Background(), 11)
	if err != nil {
		t.Fatalf("ListGamePasses() error = %v", err)
	}
	if len(passes) != 3 {
		t.Fatalf("ListGamePasses() returned %d passes, want 3", len(passes))
	}
	if passes[0].Price == nil || *passes[0].Price != 5 {
		t.Errorf("passes[0].Price = %v, want 5", passes[0].Price)
	}
	if passes[1].Price != nil {
		t.Errorf("off-sale pass price = %v, want nil", passes[1].Price)
	}
	if passes[1].Name != "Unnamed Pass" {
		t.Errorf("unnamed pass name = %q, want Unnamed Pass", passes[1].Name)
	}
}

func TestClient_GetGamePassProduct(t *testing.T) {
	tests := []struct {
		response    interface{}
		name        string
		wantProduct int64
		errContains string
		wantErr     bool
	}{
		{
			name:        "resolves product id",
			response:    map[string]interface{}{"ProductId": 987654},
			wantProduct: 987654,
		},
		{
			name:        "missing product id",
			response:    map[string]interface{}{"TargetId": 101},
			wantErr:     true,
			errContains: "no product id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/v1/game-pass/101/game-pass-product-info" {
					t.Errorf("path = %s", r.URL.Path)
				}
				w.WriteHeader(http.StatusOK)
				json.NewEncoder(w).Encode(tt.response)
			}))
			defer server.Close()

			client := newTestClient(server.URL)
			productID, err := client.GetGamePassProduct(context.Background(), 101)

			if tt.wantErr {
				if err == nil || !strings.Contains(err.Error(), tt.errContains) {
					t.Fatalf("GetGamePassProduct() error = %v, want error containing %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetGamePassProduct() unexpected error = %v", err)
			}
			if productID != tt.wantProduct {
				t.Errorf("GetGamePassProduct() = %d, want %d", productID, tt.wantProduct)
			}
		})
	}
}

// newTestClient returns a Client whose requests are rewritten to the test server.
func newTestClient(serverURL string) *Client {
	return &Client{
		Cookie: "test-cookie",
		HTTPClient: &http.Client{
			Transport: &rewriteTransport{
				Transport: http.DefaultTransport,
				host:      serverURL,
			},
		},
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
