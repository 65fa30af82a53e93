package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"anova_oven/internal/models"
	"anova_oven/internal/oven"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// appConfig is the resolved process configuration.
type appConfig struct {
	Port     string
	LogLevel string
	DBPath   string

	Oven         oven.Config
	AccessToken  string
	RefreshToken string
	Unit         models.TemperatureUnit

	SigningKey string
	TokenTTL   time.Duration

	MQTTBroker    string
	MQTTClientID  string
	MQTTTopicRoot string
}

const envPrefix = "ANOVA"

func setDefaults(v *viper.Viper) {
	d := oven.DefaultConfig()
	v.SetDefault("port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("db.path", "anova.db")
	v.SetDefault("anova.gateway_url", d.GatewayURL)
	v.SetDefault("anova.token_url", d.TokenURL)
	v.SetDefault("anova.platform", d.Platform)
	v.SetDefault("anova.supported_accessories", d.SupportedAccessories)
	v.SetDefault("anova.temperature_unit", string(models.UnitCelsius))
	v.SetDefault("anova.command_timeout", d.CommandTimeout)
	v.SetDefault("anova.discovery_timeout", d.DiscoveryTimeout)
	v.SetDefault("anova.reconnect_cooldown", d.ReconnectCooldown)
	v.SetDefault("anova.handshake_timeout", d.HandshakeTimeout)
	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("mqtt.client_id", "anova-oven")
	v.SetDefault("mqtt.topic_root", "anova/oven")
}

// bindFlags registers the command line overrides.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	fs.String("port", "", "HTTP listen port")
	fs.String("log-level", "", "log level (debug, info, warn, error)")
	fs.String("db", "", "SQLite database path")
	for flag, key := range map[string]string{
		"port":      "port",
		"log-level": "log.level",
		"db":        "db.path",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}
	return nil
}

// loadConfig reads path (or configs/config.yml when empty) and applies
// ANOVA_* environment overrides, e.g. ANOVA_ANOVA_REFRESH_TOKEN.
func loadConfig(v *viper.Viper, path string) (appConfig, error) {
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("configs") // configs/config.yml
		v.SetConfigName("config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return appConfig{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := appConfig{
		Port:     v.GetString("port"),
		LogLevel: v.GetString("log.level"),
		DBPath:   v.GetString("db.path"),
		Oven: oven.Config{
			AppKey:               v.GetString("anova.app_key"),
			GatewayURL:           v.GetString("anova.gateway_url"),
			TokenURL:             v.GetString("anova.token_url"),
			Platform:             v.GetString("anova.platform"),
			SupportedAccessories: v.GetString("anova.supported_accessories"),
			CommandTimeout:       v.GetDuration("anova.command_timeout"),
			DiscoveryTimeout:     v.GetDuration("anova.discovery_timeout"),
			ReconnectCooldown:    v.GetDuration("anova.reconnect_cooldown"),
			HandshakeTimeout:     v.GetDuration("anova.handshake_timeout"),
		},
		AccessToken:   v.GetString("anova.access_token"),
		RefreshToken:  v.GetString("anova.refresh_token"),
		Unit:          models.TemperatureUnit(strings.ToUpper(v.GetString("anova.temperature_unit"))),
		SigningKey:    v.GetString("auth.signing_key"),
		TokenTTL:      v.GetDuration("auth.token_ttl"),
		MQTTBroker:    v.GetString("mqtt.broker"),
		MQTTClientID:  v.GetString("mqtt.client_id"),
		MQTTTopicRoot: v.GetString("mqtt.topic_root"),
	}
	return cfg, cfg.validate()
}

func (c appConfig) validate() error {
	if c.Oven.AppKey == "" {
		return errors.New("anova.app_key is required")
	}
	if c.SigningKey == "" {
		return errors.New("auth.signing_key is required")
	}
	if c.Unit != models.UnitCelsius && c.Unit != models.UnitFahrenheit {
		return fmt.Errorf("anova.temperature_unit must be C or F, got %q", c.Unit)
	}
	return nil
}
