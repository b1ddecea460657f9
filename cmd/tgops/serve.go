package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"

	"github.com/sergei-li-tech/tgops/internal/bot"
	"github.com/sergei-li-tech/tgops/internal/config"
	"github.com/sergei-li-tech/tgops/internal/kube"
	"github.com/sergei-li-tech/tgops/internal/logging"
	"github.com/sergei-li-tech/tgops/internal/metrics"
	"github.com/sergei-li-tech/tgops/pkg/apps"
	"github.com/sergei-li-tech/tgops/pkg/flux"
)

var serveConfigPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the bot and the metrics endpoint",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to a YAML config file (optional)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(serveConfigPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	log := logging.WithComponent("serve")

	allowedUsers, err := cfg.AllowedUsers()
	if err != nil {
		return err
	}
	logLinks, err := cfg.LogLinks()
	if err != nil {
		return err
	}
	log.Info().Int("users", len(allowedUsers)).Int("log_links", len(logLinks)).Msg("configuration loaded")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Metrics endpoint.
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	metricsSrv := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}
	go func() {
		log.Info().Str("addr", cfg.Metrics.Addr).Msg("metrics server started")
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		metricsSrv.Shutdown(shutdownCtx)
	}()

	// Cluster access.
	restCfg, err := kube.RestConfig(cfg.Kube.Kubeconfig)
	if err != nil {
		return fmt.Errorf("configure kubernetes: %w", err)
	}
	dynClient, err := dynamic.NewForConfig(restCfg)
	if err != nil {
		return fmt.Errorf("create dynamic client: %w", err)
	}
	clientset, err := kubernetes.NewForConfig(restCfg)
	if err != nil {
		return fmt.Errorf("create clientset: %w", err)
	}

	releases := flux.NewService(flux.NewDynamicCluster(dynClient))
	reporter := apps.NewReporter(clientset, cfg.Apps.Selector, cfg.Apps.Prefix)

	// Telegram transport.
	client, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("connect to telegram: %w", err)
	}

	b := bot.New(client, releases, reporter, bot.Options{
		AllowedUsers: allowedUsers,
		LogLinks:     logLinks,
		PollTimeout:  cfg.Telegram.Timeout,
	})

	if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info().Msg("shutting down")
	return nil
}
