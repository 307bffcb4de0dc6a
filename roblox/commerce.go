package roblox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	commerceBaseURL = "https://apis.roblox.com"
	authBaseURL     = "https://auth.roblox.com"
	webOrigin       = "https://www.roblox.com"
)

// PurchaseResult is the decoded outcome of a gamepass purchase attempt.
// Raw keeps the full response body for diagnostics when Purchased is false.
type PurchaseResult struct {
	Purchased bool
	Raw       json.RawMessage
}

// csrfToken fetches a fresh CSRF token. Roblox hands the token back in the
// X-CSRF-Token header of an (otherwise failing) login POST.
func (c *Client) csrfToken(ctx context.Context) (string, error) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, authBaseURL+"/v2/login", nil)
	c.attachCookie(req)
	resp, err := c.http().Do(req)
	if err != nil {
		return "", err
	}
	defer closeBody(resp)
	tok := resp.Header.Get("X-CSRF-Token")
	if tok == "" {
		return "", fmt.Errorf("no csrf token in response (status %s)", resp.Status)
	}
	return tok, nil
}

// RevokeOwnership removes the seller account's existing ownership of the
// gamepass so a fresh purchase can transfer funds to the winner again.
func (c *Client) RevokeOwnership(ctx context.Context, passID int64, passName string) error {
	if passID == 0 {
		return fmt.Errorf("passID empty")
	}
	tok, err := c.csrfToken(ctx)
	if err != nil {
		return fmt.Errorf("csrf: %w", err)
	}
	url := fmt.Sprintf("%s/game-passes/v1/game-passes/%d:revokeownership", commerceBaseURL, passID)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	req.Header.Set("Origin", webOrigin)
	req.Header.Set("Referer", fmt.Sprintf("%s/game-pass/%d/%s", webOrigin, passID, strings.TrimSpace(passName)))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	req.Header.Set("x-csrf-token", tok)
	c.attachCookie(req)
	resp, err := c.http().Do(req)
	if err != nil {
		return err
	}
	defer closeBody(resp)
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("revoke failed: %s: %s", resp.Status, string(b))
	}
	return nil
}

// Purchase buys the gamepass product at the expected currency/price/seller
// triple. A decode failure or a missing "purchased" acknowledgement is not an
// error at this level; the caller inspects PurchaseResult.
func (c *Client) Purchase(ctx context.Context, productID, expectedPrice, sellerID int64) (PurchaseResult, error) {
	if productID == 0 {
		return PurchaseResult{}, fmt.Errorf("productID empty")
	}
	payload, err := json.Marshal(map[string]int64{
		"expectedCurrency": 1,
		"expectedPrice":    expectedPrice,
		"expectedSellerId": sellerID,
	})
	if err != nil {
		return PurchaseResult{}, err
	}
	tok, err := c.csrfToken(ctx)
	if err != nil {
		return PurchaseResult{}, fmt.Errorf("csrf: %w", err)
	}
	url := fmt.Sprintf("%s/game-passes/v1/game-passes/%d/purchase", commerceBaseURL, productID)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	req.Header.Set("Origin", webOrigin)
	req.Header.Set("Referer", webOrigin+"/")
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("x-csrf-token", tok)
	c.attachCookie(req)
	resp, err := c.http().Do(req)
	if err != nil {
		return PurchaseResult{}, err
	}
	defer closeBody(resp)
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return PurchaseResult{}, err
	}
	var body struct {
		Purchased bool `json:"purchased"`
	}
	// Non-JSON bodies (HTML error pages etc.) decode as not-purchased; the
	// raw payload is preserved either way.
	_ = json.Unmarshal(raw, &body)
	return PurchaseResult{Purchased: body.Purchased, Raw: raw}, nil
}

func (c *Client) attachCookie(req *http.Request) {
	if c.Cookie != "" {
		req.AddCookie(&http.Cookie{Name: ".ROBLOSECURITY", Value: c.Cookie})
	}
}
