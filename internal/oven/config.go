package oven

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds the gateway endpoints and timing knobs of a Client.
type Config struct {
	AppKey               string
	GatewayURL           string
	TokenURL             string
	Platform             string
	SupportedAccessories string
	Subprotocol          string

	CommandTimeout    time.Duration
	DiscoveryTimeout  time.Duration
	DiscoveryPoll     time.Duration
	ReconnectCooldown time.Duration
	HandshakeTimeout  time.Duration
}

const (
	defaultGatewayURL        = "wss://devices.anovaculinary.io/"
	defaultTokenURL          = "https://securetoken.googleapis.com/v1/token"
	defaultPlatform          = "android"
	defaultAccessories       = "APO"
	defaultSubprotocol       = "ANOVA_V2"
	defaultCommandTimeout    = 10 * time.Second
	defaultDiscoveryTimeout  = 5500 * time.Millisecond
	defaultDiscoveryPoll     = 1 * time.Second
	defaultReconnectCooldown = 1 * time.Second
	defaultHandshakeTimeout  = 10 * time.Second
)

// DefaultConfig returns the production endpoints and timings. AppKey is left empty.
func DefaultConfig() Config {
	return Config{
		GatewayURL:           defaultGatewayURL,
		TokenURL:             defaultTokenURL,
		Platform:             defaultPlatform,
		SupportedAccessories: defaultAccessories,
		Subprotocol:          defaultSubprotocol,
		CommandTimeout:       defaultCommandTimeout,
		DiscoveryTimeout:     defaultDiscoveryTimeout,
		DiscoveryPoll:        defaultDiscoveryPoll,
		ReconnectCooldown:    defaultReconnectCooldown,
		HandshakeTimeout:     defaultHandshakeTimeout,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.GatewayURL == "" {
		c.GatewayURL = d.GatewayURL
	}
	if c.TokenURL == "" {
		c.TokenURL = d.TokenURL
	}
	if c.Platform == "" {
		c.Platform = d.Platform
	}
	if c.SupportedAccessories == "" {
		c.SupportedAccessories = d.SupportedAccessories
	}
	if c.Subprotocol == "" {
		c.Subprotocol = d.Subprotocol
	}
	if c.CommandTimeout <= 0 {
		c.CommandTimeout = d.CommandTimeout
	}
	if c.DiscoveryTimeout <= 0 {
		c.DiscoveryTimeout = d.DiscoveryTimeout
	}
	if c.DiscoveryPoll <= 0 {
		c.DiscoveryPoll = d.DiscoveryPoll
	}
	if c.ReconnectCooldown <= 0 {
		c.ReconnectCooldown = d.ReconnectCooldown
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = d.HandshakeTimeout
	}
	return c
}

// gatewayURL builds the connection URL for an access token.
func (c Config) gatewayURL(accessToken string) (string, error) {
	u, err := url.Parse(c.GatewayURL)
	if err != nil {
		return "", fmt.Errorf("parse gateway url %q: %w", c.GatewayURL, err)
	}
	q := u.Query()
	q.Set("token", accessToken)
	q.Set("supportedAccessories", c.SupportedAccessories)
	q.Set("platform", c.Platform)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// tokenURL builds the identity endpoint URL for the configured app key.
func (c Config) tokenURL() (string, error) {
	u, err := url.Parse(c.TokenURL)
	if err != nil {
		return "", fmt.Errorf("parse token url %q: %w", c.TokenURL, err)
	}
	q := u.Query()
	q.Set("key", c.AppKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
