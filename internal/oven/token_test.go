package oven

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"anova_oven/internal/models"
)

func TestRenewTokenKeepsRefreshWhenOmitted(t *testing.T) {
	ts := newTokenServer(t, http.StatusOK, `{"access_token":"access-2"}`)
	c := NewClient(testConfig(ts.URL), testCreds, WithDialer(newFakeDialer()), WithHTTPClient(ts.Client()))
	if err := c.RenewToken(context.Background()); err != nil {
		t.Fatalf("RenewToken: %v", err)
	}
	want := models.Credentials{AccessToken: "access-2", RefreshToken: "refresh-1"}
	if got := c.Credentials(); got != want {
		t.Fatalf("credentials = %+v, want %+v", got, want)
	}
}

func TestRenewTokenFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{}`},
		{"error field", http.StatusOK, `{"error":"TOKEN_EXPIRED"}`},
		{"no access token", http.StatusOK, `{"refresh_token":"r"}`},
		{"not json", http.StatusOK, `<html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTokenServer(t, tt.status, tt.body)
			c := NewClient(testConfig(ts.URL), testCreds, WithDialer(newFakeDialer()))
			if err := c.RenewToken(context.Background()); !errors.Is(err, ErrInvalidAuth) {
				t.Fatalf("error = %v, want ErrInvalidAuth", err)
			}
			if c.Credentials() != testCreds {
				t.Fatal("credentials replaced after failure")
			}
		})
	}
}

type failingTokenSink struct{ NopListener }

func (failingTokenSink) OnNewToken(context.Context, models.Credentials) error {
	return errors.New("disk full")
}

func TestRenewTokenListenerFailure(t *testing.T) {
	ts := newTokenServer(t, http.StatusOK, okTokenBody)
	c := NewClient(testConfig(ts.URL), testCreds, WithDialer(newFakeDialer()))
	c.AddListener(failingTokenSink{})
	if err := c.RenewToken(context.Background()); !errors.Is(err, ErrInvalidAuth) {
		t.Fatalf("error = %v, want ErrInvalidAuth", err)
	}
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": exp.Unix(),
		"sub": "user",
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	got, ok := TokenExpiry(signed)
	if !ok || !got.Equal(exp) {
		t.Fatalf("TokenExpiry = %v, %v", got, ok)
	}
	if _, ok := TokenExpiry("opaque"); ok {
		t.Fatal("opaque token reported an expiry")
	}
}
