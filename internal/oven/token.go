package oven

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"anova_oven/internal/metrics"
	"anova_oven/internal/models"
)

type tokenResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	Error        json.RawMessage `json:"error"`
}

// RenewToken exchanges the refresh token for a new pair and notifies every
// listener's OnNewToken. Any failure is returned wrapped in ErrInvalidAuth.
func (c *Client) RenewToken(ctx context.Context) error {
	pair, err := c.requestToken(ctx, c.Credentials().RefreshToken)
	if err != nil {
		return c.renewFailed(err)
	}

	c.mu.Lock()
	c.creds = pair
	listeners := c.listenersLocked()
	c.mu.Unlock()

	fields := []interface{}{}
	if exp, ok := TokenExpiry(pair.AccessToken); ok {
		fields = append(fields, "expires_at", exp.Format(time.RFC3339))
	}
	c.log.Infow("token_refreshed", fields...)

	for _, l := range listeners {
		if err := l.OnNewToken(ctx, pair); err != nil {
			return c.renewFailed(fmt.Errorf("token listener: %w", err))
		}
	}
	metrics.TokenRenewalsTotal.WithLabelValues("ok").Inc()
	return nil
}

func (c *Client) renewFailed(err error) error {
	metrics.TokenRenewalsTotal.WithLabelValues("failed").Inc()
	c.log.Errorw("token_refresh_failed", "error", err)
	return fmt.Errorf("%w: %w", ErrInvalidAuth, err)
}

func (c *Client) requestToken(ctx context.Context, refreshToken string) (models.Credentials, error) {
	endpoint, err := c.cfg.tokenURL()
	if err != nil {
		return models.Credentials{}, err
	}
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return models.Credentials{}, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return models.Credentials{}, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return models.Credentials{}, fmt.Errorf("read token response: %w", err)
	}
	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return models.Credentials{}, fmt.Errorf("decode token response (status %d): %w", resp.StatusCode, err)
	}
	if len(tr.Error) > 0 && string(tr.Error) != "null" {
		return models.Credentials{}, fmt.Errorf("token endpoint error: %s", tr.Error)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.Credentials{}, fmt.Errorf("token endpoint status %d", resp.StatusCode)
	}
	if tr.AccessToken == "" {
		return models.Credentials{}, fmt.Errorf("token response without access_token")
	}
	if tr.RefreshToken == "" {
		tr.RefreshToken = refreshToken
	}
	return models.Credentials{AccessToken: tr.AccessToken, RefreshToken: tr.RefreshToken}, nil
}

// TokenExpiry reads the exp claim of an access token without verifying it.
func TokenExpiry(accessToken string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
