package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "anova_oven/docs"
	"anova_oven/internal/handlers"
	"anova_oven/internal/logger"
	"anova_oven/internal/models"
	"anova_oven/internal/mqtt"
	"anova_oven/internal/oven"
	"anova_oven/internal/repository"
	"anova_oven/internal/repository/db"
	"anova_oven/internal/server"
	"anova_oven/internal/service"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	v := viper.New()
	var configPath string

	cmd := &cobra.Command{
		Use:           "anova-oven",
		Short:         "Anova Precision Oven gateway bridge",
		Long:          "Keeps a session with the Anova cloud gateway open, persists device state and events, and serves them over HTTP, WebSocket and MQTT.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v, configPath)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return err
			}
			log := logger.Get(cfg.LogLevel)
			if err := run(cmd.Context(), cfg, log); err != nil {
				log.Errorw("anova_oven_exited", "err", err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file (default configs/config.yml)")
	if err := bindFlags(v, cmd.Flags()); err != nil {
		panic(err)
	}
	return cmd
}

// run wires the layers and blocks until ctx is done or the gateway session
// fails for good.
func run(ctx context.Context, cfg appConfig, log *logger.Logger) error {
	database, err := db.InitDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("init sqlite: %w", err)
	}
	defer func() {
		if cerr := database.Close(); cerr != nil {
			log.Errorw("sqlite_close_failed", "err", cerr)
		}
	}()
	repos := repository.NewRepository(database)

	creds, err := resolveCredentials(ctx, repos, cfg)
	if err != nil {
		return err
	}
	known, err := repos.DeviceRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("load known devices: %w", err)
	}

	pub, err := newPublisher(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = pub.Close() }()

	client := oven.NewClient(cfg.Oven, creds,
		oven.WithLogger(log.Named("oven")),
		oven.WithDevices(known...),
	)
	services := service.NewService(repos, client, service.Options{
		Platform:    cfg.Oven.Platform,
		DefaultUnit: cfg.Unit,
		SigningKey:  cfg.SigningKey,
		TokenTTL:    cfg.TokenTTL,
		Publisher:   pub,
		Logger:      log,
	})
	client.AddListener(services.Coordinator)

	api := handlers.NewHandler(services, log.Named("http"))
	srv := &server.Server{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := client.Run(gctx); err != nil {
			return fmt.Errorf("gateway session: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logDiscovery(gctx, client, log)
		return nil
	})
	g.Go(func() error {
		log.Infow("http_listening", "port", cfg.Port)
		return srv.Start(gctx, cfg.Port, api.InitRoutes())
	})

	err = g.Wait()
	log.Infow("shutdown_complete")
	return err
}

// logDiscovery reports the devices known shortly after the session opened.
func logDiscovery(ctx context.Context, client *oven.Client, log *logger.Logger) {
	devices, err := client.GetDevices(ctx)
	if err != nil {
		if errors.Is(err, oven.ErrNoDevicesFound) {
			log.Warnw("no_devices_found", "timeout", client.Config().DiscoveryTimeout)
		}
		return
	}
	ids := make([]string, 0, len(devices))
	for _, d := range devices {
		ids = append(ids, d.CookerID)
	}
	log.Infow("devices_available", "count", len(devices), "cooker_ids", ids)
}

// resolveCredentials prefers the pair persisted by the last renewal over the
// seed pair in config, since the gateway rotates refresh tokens.
func resolveCredentials(ctx context.Context, repos *repository.Repository, cfg appConfig) (models.Credentials, error) {
	stored, ok, err := repos.CredentialRepo.Load(ctx)
	if err != nil {
		return models.Credentials{}, fmt.Errorf("load credentials: %w", err)
	}
	if ok {
		return stored, nil
	}
	if cfg.RefreshToken == "" {
		return models.Credentials{}, errors.New("no stored credentials and anova.refresh_token is empty")
	}
	return models.Credentials{AccessToken: cfg.AccessToken, RefreshToken: cfg.RefreshToken}, nil
}

func newPublisher(cfg appConfig, log *logger.Logger) (mqtt.Publisher, error) {
	if cfg.MQTTBroker == "" {
		log.Infow("mqtt_disabled")
		return mqtt.NopPublisher{}, nil
	}
	pub, err := mqtt.NewRealPublisher(cfg.MQTTBroker, cfg.MQTTClientID, cfg.MQTTTopicRoot)
	if err != nil {
		return nil, fmt.Errorf("connect mqtt: %w", err)
	}
	log.Infow("mqtt_connected", "broker", cfg.MQTTBroker, "topic_root", cfg.MQTTTopicRoot)
	return pub, nil
}
