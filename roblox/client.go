// Package roblox contains minimal helpers to interact with the Roblox web APIs
// for username resolution, gamepass catalog listing, and gamepass commerce.
// Catalog reads go through the roproxy mirrors (same JSON shapes as the
// first-party hosts); commerce calls go to apis.roblox.com and require the
// .ROBLOSECURITY cookie plus a CSRF token.
package roblox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

const (
	usersBaseURL   = "https://users.roproxy.com"
	gamesBaseURL   = "https://games.roproxy.com"
	economyBaseURL = "https://economy.roproxy.com"
)

// Client provides the catalog and commerce methods needed for giveaways.
// Cookie is the raw .ROBLOSECURITY value; it is only required for the
// commerce calls (RevokeOwnership, Purchase).
type Client struct {
	Cookie     string
	HTTPClient *http.Client
}

func (c *Client) http() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// Game is one entry from a user's created-games listing.
type Game struct {
	ID   int64
	Name string
}

// GamePass is one gamepass offering of a game. Price is nil when the pass
// is off-sale (no defined price).
type GamePass struct {
	ID    int64
	Name  string
	Price *int64
}

// ResolveUsername resolves a display username to its numeric user id.
// Banned users are excluded, matching the upstream lookup semantics.
func (c *Client) ResolveUsername(ctx context.Context, username string) (int64, error) {
	if username == "" {
		return 0, fmt.Errorf("username empty")
	}
	payload, err := json.Marshal(map[string]any{
		"usernames":         []string{username},
		"excludeBannedUsers": true,
	})
	if err != nil {
		return 0, err
	}
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, usersBaseURL+"/v1/usernames/users", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http().Do(req)
	if err != nil {
		return 0, err
	}
	defer closeBody(resp)
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("users lookup failed: %s", resp.Status)
	}
	var body struct {
		Data []struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, err
	}
	if len(body.Data) == 0 {
		return 0, fmt.Errorf("user not found")
	}
	return body.Data[0].ID, nil
}

// ListGames lists games created by the given user, oldest first.
func (c *Client) ListGames(ctx context.Context, userID int64) ([]Game, error) {
	if userID == 0 {
		return nil, fmt.Errorf("userID empty")
	}
	url := fmt.Sprintf("%s/v2/users/%d/games?limit=50&sortOrder=Asc", gamesBaseURL, userID)
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	resp, err := c.http().Do(req)
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("games listing failed: %s", resp.Status)
	}
	var body struct {
		Data []struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	out := make([]Game, 0, len(body.Data))
	for _, g := range body.Data {
		out = append(out, Game{ID: g.ID, Name: g.Name})
	}
	return out, nil
}

// ListGamePasses lists the gamepass offerings of a game, oldest first.
// Off-sale passes are returned with a nil Price; callers filter by band.
func (c *Client) ListGamePasses(ctx context.Context, gameID int64) ([]GamePass, error) {
	if gameID == 0 {
		return nil, fmt.Errorf("gameID empty")
	}
	url := fmt.Sprintf("%s/v1/games/%d/game-passes?limit=100&sortOrder=Asc", gamesBaseURL, gameID)
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	resp, err := c.http().Do(req)
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gamepass listing failed: %s", resp.Status)
	}
	var body struct {
		Data []struct {
			ID    int64  `json:"id"`
			Name  string `json:"name"`
			Price *int64 `json:"price"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	out := make([]GamePass, 0, len(body.Data))
	for _, gp := range body.Data {
		name := gp.Name
		if name == "" {
			name = "Unnamed Pass"
		}
		out = append(out, GamePass{ID: gp.ID, Name: name, Price: gp.Price})
	}
	return out, nil
}

// GetGamePassProduct resolves the transactable product id of a gamepass.
// This is a separate lookup because the catalog listing does not carry it.
func (c *Client) GetGamePassProduct(ctx context.Context, passID int64) (int64, error) {
	if passID == 0 {
		return 0, fmt.Errorf("passID empty")
	}
	url := fmt.Sprintf("%s/v1/game-pass/%d/game-pass-product-info", economyBaseURL, passID)
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	resp, err := c.http().Do(req)
	if err != nil {
		return 0, err
	}
	defer closeBody(resp)
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("product info failed: %s", resp.Status)
	}
	var body struct {
		ProductID int64 `json:"ProductId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, err
	}
	if body.ProductID == 0 {
		return 0, fmt.Errorf("no product id for gamepass %d", passID)
	}
	return body.ProductID, nil
}

func closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		slog.Warn("failed to close response body", slog.Any("err", err))
	}
}
