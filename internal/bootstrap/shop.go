package bootstrap

import (
	"log/slog"
	"time"

	"shopfront/internal/apis/shop"
	"shopfront/internal/client"
	"shopfront/internal/config"
)

// BuildShop wires the upstream service, wrapped in a circuit breaker when
// the profile enables one.
func BuildShop(profile *config.Config, t client.Transport, log *slog.Logger) shop.Service {
	svc := shop.New(t, shop.Options{
		BaseURL:   profile.Shop.BaseURL,
		PageLimit: profile.Shop.PageLimit,
		Logger:    log,
	})
	if !profile.Breaker.Enabled {
		log.Warn("circuit breaker OFF")
		return svc
	}

	log.Info("circuit breaker ON",
		"min_requests", profile.Breaker.MinRequests,
		"failure_ratio", profile.Breaker.FailureRatio,
		"open_s", profile.Breaker.OpenSeconds,
	)
	return shop.NewBreaker(svc, shop.BreakerOptions{
		Name:         "shop-api",
		MinRequests:  profile.Breaker.MinRequests,
		FailureRatio: profile.Breaker.FailureRatio,
		Interval:     time.Duration(profile.Breaker.IntervalSeconds) * time.Second,
		OpenTimeout:  time.Duration(profile.Breaker.OpenSeconds) * time.Second,
		Logger:       log,
	})
}
