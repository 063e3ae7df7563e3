package bootstrap

import (
	"log/slog"
	"time"

	"shopfront/internal/client"
	"shopfront/internal/config"
)

func BuildTransport(profile *config.Config, log *slog.Logger) (client.Transport, error) {
	log.Info("profile",
		"env", profile.Env,
		"shop_base_url", profile.Shop.BaseURL,
		"http_timeout_s", profile.HTTP.TimeoutSeconds,
		"http_retries", profile.HTTP.Retries,
		"http_concurrency", profile.HTTP.Concurrency,
		"http_rate_per_second", profile.HTTP.RatePerSecond,
	)

	return client.Build(client.Options{
		Timeout:       time.Duration(profile.HTTP.TimeoutSeconds) * time.Second,
		Retries:       profile.HTTP.Retries,
		Concurrency:   profile.HTTP.Concurrency,
		RatePerSecond: profile.HTTP.RatePerSecond,
		Burst:         profile.HTTP.Burst,
		Logger:        log,
	})
}
