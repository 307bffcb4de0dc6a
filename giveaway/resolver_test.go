package giveaway_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/onnwee/giveaway-tender/giveaway"
	"github.com/onnwee/giveaway-tender/roblox"
	"github.com/onnwee/giveaway-tender/testutil"
)

func TestCatalogResolver_Resolve(t *testing.T) {
	mock := testutil.NewMockRobloxServer(t)
	mock.MockUsernameResponse(156, "Builderman")
	mock.MockGamesResponse(156, []map[string]interface{}{
		{"id": 11, "name": "Obby One"},
		{"id": 12, "name": "Obby Two"},
	})
	mock.MockGamePassesResponse(11, []map[string]interface{}{
		{"id": 101, "name": "VIP", "price": 5},
		{"id": 102, "name": "Off Sale", "price": nil},
	})
	mock.MockGamePassesResponse(12, []map[string]interface{}{
		{"id": 201, "name": "Mega", "price": 9},
		{"id": 202, "name": "Too Rich", "price": 500},
	})
	mock.MockGamePassProductResponse(201, 987654)

	resolver := &giveaway.CatalogResolver{
		Client:   &roblox.Client{Cookie: "test", HTTPClient: mock.HTTPClient()},
		MaxPrice: 10,
	}
	p, err := resolver.Resolve(context.Background(), "Builderman")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if p.UserID != 156 {
		t.Errorf("UserID = %d, want 156", p.UserID)
	}
	// The 9-Robux pass beats the 5-Robux one; 500 is over the cap, off-sale skipped.
	if p.Reward.PassID != 201 || p.Reward.Price != 9 || p.Reward.ProductID != 987654 {
		t.Errorf("Reward = %+v", p.Reward)
	}
}

func TestCatalogResolver_NoEligiblePass(t *testing.T) {
	mock := testutil.NewMockRobloxServer(t)
	mock.MockUsernameResponse(156, "Builderman")
	mock.MockGamesResponse(156, []map[string]interface{}{
		{"id": 11, "name": "Obby One"},
	})
	mock.MockGamePassesResponse(11, []map[string]interface{}{
		{"id": 101, "name": "Too Rich", "price": 500},
		{"id": 102, "name": "Off Sale", "price": nil},
	})

	resolver := &giveaway.CatalogResolver{
		Client:   &roblox.Client{HTTPClient: mock.HTTPClient()},
		MaxPrice: 10,
	}
	_, err := resolver.Resolve(context.Background(), "Builderman")
	if !errors.Is(err, giveaway.ErrNotEligible) {
		t.Fatalf("Resolve() error = %v, want ErrNotEligible", err)
	}
}

func TestCatalogResolver_UnknownUser(t *testing.T) {
	mock := testutil.NewMockRobloxServer(t)
	mock.Handlers["/v1/usernames/users"] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[]}`))
	}

	resolver := &giveaway.CatalogResolver{
		Client:   &roblox.Client{HTTPClient: mock.HTTPClient()},
		MaxPrice: 10,
	}
	_, err := resolver.Resolve(context.Background(), "NoSuchUser")
	if !errors.Is(err, giveaway.ErrNotEligible) {
		t.Fatalf("Resolve() error = %v, want ErrNotEligible", err)
	}
}

func TestCatalogResolver_BrokenGameSkipped(t *testing.T) {
	mock := testutil.NewMockRobloxServer(t)
	mock.MockUsernameResponse(156, "Builderman")
	mock.MockGamesResponse(156, []map[string]interface{}{
		{"id": 11, "name": "Broken"},
		{"id": 12, "name": "Working"},
	})
	mock.Handlers["/v1/games/11/game-passes"] = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}
	mock.MockGamePassesResponse(12, []map[string]interface{}{
		{"id": 201, "name": "VIP", "price": 3},
	})
	mock.MockGamePassProductResponse(201, 42)

	resolver := &giveaway.CatalogResolver{
		Client:   &roblox.Client{HTTPClient: mock.HTTPClient()},
		MaxPrice: 10,
	}
	p, err := resolver.Resolve(context.Background(), "Builderman")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if p.Reward.PassID != 201 {
		t.Errorf("Reward.PassID = %d, want 201", p.Reward.PassID)
	}
}
