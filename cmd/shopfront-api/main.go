package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"shopfront/internal/bootstrap"
	"shopfront/internal/catalog"
	"shopfront/internal/config"
	httpserver "shopfront/internal/http-server"
	"shopfront/internal/logger"
	"shopfront/internal/notify"
	"shopfront/internal/supervisor"
)

func main() {
	var (
		configPath = flag.String("config", "./config/config.yaml", "path to config.yaml")
		host       = flag.String("host", "", "override host")
		port       = flag.Int("port", 0, "override port")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		AddSource: cfg.Log.AddSource,
		Env:       cfg.Env,
	})
	slog.SetDefault(log)

	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, log)
	stop()
	if err != nil {
		log.Error("api stopped with error", "err", err)
		os.Exit(1)
	}
	log.Info("server stopped gracefully")
}

// run serves until ctx is done. Every resource it opens is released before
// it returns.
func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	transport, err := bootstrap.BuildTransport(cfg, log)
	if err != nil {
		return fmt.Errorf("build transport: %w", err)
	}
	shopSvc := bootstrap.BuildShop(cfg, transport, log)

	viewed, closeViewed, err := bootstrap.BuildViewedStore(cfg, log)
	if err != nil {
		return fmt.Errorf("open viewed store: %w", err)
	}
	defer func() {
		if err := closeViewed(); err != nil {
			log.Error("close viewed store failed", "err", err)
		}
	}()

	bus := notify.NewBroadcaster()
	poller := notify.NewPoller(shopSvc, viewed, notify.Options{
		Admin:    cfg.Notify.Admin,
		Interval: time.Duration(cfg.Notify.IntervalSeconds) * time.Second,
		Logger:   log,
	})
	msgPoller := notify.NewMessagePoller(shopSvc, bus,
		time.Duration(cfg.Notify.MessagesIntervalSeconds)*time.Second, log)

	sessions := catalog.NewSessionStore(shopSvc,
		catalog.Options{RefineSearch: cfg.Catalog.RefineSearch},
		time.Duration(cfg.Catalog.SessionTTLSeconds)*time.Second, log)

	api := httpserver.New(log, httpserver.Options{
		CORSOrigins:     cfg.CORS.AllowedOrigins,
		RateLimit:       cfg.RateLimit.Requests,
		RateLimitWindow: time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
	})
	api.RegisterRoutes(httpserver.Deps{
		Sessions:     sessions,
		Shop:         shopSvc,
		Poller:       poller,
		Messages:     msgPoller,
		Bus:          bus,
		DisplayLimit: cfg.Notify.DisplayLimit,
		Timeout:      time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second,
		SecureCookie: cfg.Env == "prod",
	})

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	tree := supervisor.NewTree(log, supervisor.DefaultTreeConfig())
	tree.AddBackground(sessions)
	if cfg.Notify.Admin {
		tree.AddBackground(poller)
		tree.AddBackground(msgPoller)
	} else {
		log.Warn("admin notifications OFF")
	}
	tree.AddAPI(&supervisor.HTTPService{Server: srv, ShutdownTimeout: 10 * time.Second, Log: log})

	log.Info("api starting", "addr", addr, "env", cfg.Env)
	if err := tree.Serve(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("supervisor: %w", err)
	}
	return nil
}
