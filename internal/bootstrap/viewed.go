package bootstrap

import (
	"fmt"
	"log/slog"

	"shopfront/internal/config"
	"shopfront/internal/notify"
	badgerstore "shopfront/internal/repository/badger"
	jsonfile "shopfront/internal/repository/json"
)

// BuildViewedStore returns the configured viewed-notification backend and a
// func that releases it.
func BuildViewedStore(profile *config.Config, log *slog.Logger) (notify.ViewedStore, func() error, error) {
	noop := func() error { return nil }

	switch profile.Viewed.Backend {
	case "", "memory":
		log.Info("viewed store", "backend", "memory")
		return notify.NewMemoryStore(), noop, nil
	case "file":
		log.Info("viewed store", "backend", "file", "path", profile.Viewed.Path)
		return jsonfile.New(profile.Viewed.Path, log), noop, nil
	case "badger":
		log.Info("viewed store", "backend", "badger", "path", profile.Viewed.Path)
		s, err := badgerstore.Open(profile.Viewed.Path, log)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown viewed backend %q", profile.Viewed.Backend)
	}
}
