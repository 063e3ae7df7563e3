package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Root struct {
	Env   string `yaml:"env"`
	Local Config `yaml:"local"`
	Dev   Config `yaml:"dev"`
	Prod  Config `yaml:"prod"`
}

type Config struct {
	Env string `yaml:"-"`

	Log struct {
		Level     string `yaml:"level" env:"LOG_LEVEL" validate:"omitempty,oneof=debug info warn warning error"`
		Format    string `yaml:"format" env:"LOG_FORMAT" validate:"oneof=text json"`
		AddSource bool   `yaml:"add_source" env:"LOG_ADD_SOURCE"`
	} `yaml:"log"`

	Server struct {
		Host string `yaml:"host" env:"HOST"`
		Port int    `yaml:"port" env:"PORT" validate:"min=1,max=65535"`
	} `yaml:"server"`

	Shop struct {
		BaseURL   string `yaml:"base_url" env:"SHOP_BASE_URL" validate:"required,url"`
		PageLimit int    `yaml:"page_limit" env:"SHOP_PAGE_LIMIT" validate:"min=1,max=1000"`
	} `yaml:"shop"`

	HTTP struct {
		TimeoutSeconds int     `yaml:"timeout_seconds" env:"HTTP_TIMEOUT_SECONDS" validate:"min=1"`
		Retries        int     `yaml:"retries" env:"HTTP_RETRIES" validate:"min=0,max=10"`
		Concurrency    int     `yaml:"concurrency" env:"HTTP_CONCURRENCY" validate:"min=0"`
		RatePerSecond  float64 `yaml:"rate_per_second" env:"HTTP_RATE_PER_SECOND" validate:"min=0"`
		Burst          int     `yaml:"burst" env:"HTTP_BURST" validate:"min=0"`
	} `yaml:"http"`

	Breaker struct {
		Enabled         bool    `yaml:"enabled" env:"BREAKER_ENABLED"`
		MinRequests     uint32  `yaml:"min_requests" env:"BREAKER_MIN_REQUESTS"`
		FailureRatio    float64 `yaml:"failure_ratio" env:"BREAKER_FAILURE_RATIO" validate:"min=0,max=1"`
		OpenSeconds     int     `yaml:"open_seconds" env:"BREAKER_OPEN_SECONDS" validate:"min=0"`
		IntervalSeconds int     `yaml:"interval_seconds" env:"BREAKER_INTERVAL_SECONDS" validate:"min=0"`
	} `yaml:"breaker"`

	Catalog struct {
		RefineSearch      bool `yaml:"refine_search" env:"CATALOG_REFINE_SEARCH"`
		SessionTTLSeconds int  `yaml:"session_ttl_seconds" env:"CATALOG_SESSION_TTL_SECONDS" validate:"min=1"`
	} `yaml:"catalog"`

	Notify struct {
		Admin                   bool `yaml:"admin" env:"NOTIFY_ADMIN"`
		IntervalSeconds         int  `yaml:"interval_seconds" env:"NOTIFY_INTERVAL_SECONDS" validate:"min=1"`
		MessagesIntervalSeconds int  `yaml:"messages_interval_seconds" env:"NOTIFY_MESSAGES_INTERVAL_SECONDS" validate:"min=1"`
		DisplayLimit            int  `yaml:"display_limit" env:"NOTIFY_DISPLAY_LIMIT" validate:"min=1"`
	} `yaml:"notify"`

	Viewed struct {
		Backend string `yaml:"backend" env:"VIEWED_BACKEND" validate:"oneof=memory file badger"`
		Path    string `yaml:"path" env:"VIEWED_PATH" validate:"required_unless=Backend memory"`
	} `yaml:"viewed"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	} `yaml:"cors"`

	RateLimit struct {
		Requests      int `yaml:"requests" env:"RATE_LIMIT_REQUESTS" validate:"min=0"`
		WindowSeconds int `yaml:"window_seconds" env:"RATE_LIMIT_WINDOW_SECONDS" validate:"min=1"`
	} `yaml:"rate_limit"`

	CLI struct {
		OutputFile string `yaml:"output_file" env:"CLI_OUTPUT_FILE"`
	} `yaml:"cli"`
}

// EnvPrefix namespaces every environment override.
const EnvPrefix = "SHOPFRONT_"

// Load reads the profile file, applies .env and SHOPFRONT_* overrides, fills
// defaults and validates the result.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(b)
}

func parse(b []byte) (*Config, error) {
	var root Root
	if err := yaml.Unmarshal(b, &root); err != nil {
		return nil, err
	}
	var seen presenceRoot
	if err := yaml.Unmarshal(b, &seen); err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	envName := root.Env
	if v := os.Getenv(EnvPrefix + "ENV"); v != "" {
		envName = v
	}
	envName = strings.TrimSpace(strings.ToLower(envName))
	if envName == "" {
		envName = "local"
	}

	var (
		p   Config
		has presence
	)
	switch envName {
	case "local":
		p, has = root.Local, seen.Local
	case "dev":
		p, has = root.Dev, seen.Dev
	case "prod":
		p, has = root.Prod, seen.Prod
	default:
		return nil, fmt.Errorf("unknown env=%q (expected local|dev|prod)", envName)
	}
	p.Env = envName
	if has.Catalog.RefineSearch == nil {
		p.Catalog.RefineSearch = true
	}

	applyDefaults(&p)

	if err := env.ParseWithOptions(&p, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validate(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func validate(p *Config) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// presence records keys whose zero value is a legal setting, so an absent
// key can still default to true.
type presence struct {
	Catalog struct {
		RefineSearch *bool `yaml:"refine_search"`
	} `yaml:"catalog"`
}

type presenceRoot struct {
	Local presence `yaml:"local"`
	Dev   presence `yaml:"dev"`
	Prod  presence `yaml:"prod"`
}

func applyDefaults(p *Config) {
	if p.Shop.BaseURL == "" {
		p.Shop.BaseURL = "http://localhost:5000"
	}
	p.Shop.BaseURL = strings.TrimRight(p.Shop.BaseURL, "/")
	if p.Shop.PageLimit <= 0 {
		p.Shop.PageLimit = 100
	}

	if p.Server.Host == "" {
		p.Server.Host = "0.0.0.0"
	}
	if p.Server.Port == 0 {
		p.Server.Port = 7891
	}

	if p.HTTP.TimeoutSeconds <= 0 {
		p.HTTP.TimeoutSeconds = 30
	}
	if p.HTTP.Retries < 0 {
		p.HTTP.Retries = 0
	}
	if p.HTTP.Concurrency <= 0 {
		p.HTTP.Concurrency = 10
	}
	if p.HTTP.RatePerSecond > 0 && p.HTTP.Burst <= 0 {
		p.HTTP.Burst = 1
	}

	if p.Breaker.MinRequests == 0 {
		p.Breaker.MinRequests = 10
	}
	if p.Breaker.FailureRatio <= 0 {
		p.Breaker.FailureRatio = 0.6
	}
	if p.Breaker.OpenSeconds <= 0 {
		p.Breaker.OpenSeconds = 30
	}
	if p.Breaker.IntervalSeconds <= 0 {
		p.Breaker.IntervalSeconds = 60
	}

	if p.Catalog.SessionTTLSeconds <= 0 {
		p.Catalog.SessionTTLSeconds = 1800
	}

	if p.Notify.IntervalSeconds <= 0 {
		p.Notify.IntervalSeconds = 5
	}
	if p.Notify.MessagesIntervalSeconds <= 0 {
		p.Notify.MessagesIntervalSeconds = 30
	}
	if p.Notify.DisplayLimit <= 0 {
		p.Notify.DisplayLimit = 3
	}

	p.Viewed.Backend = strings.ToLower(strings.TrimSpace(p.Viewed.Backend))
	if p.Viewed.Backend == "" {
		p.Viewed.Backend = "memory"
	}

	if p.RateLimit.Requests <= 0 {
		p.RateLimit.Requests = 300
	}
	if p.RateLimit.WindowSeconds <= 0 {
		p.RateLimit.WindowSeconds = 60
	}

	if p.Log.Level == "" {
		if p.Env == "prod" {
			p.Log.Level = "info"
		} else {
			p.Log.Level = "debug"
		}
	}
	if p.Log.Format == "" {
		if p.Env == "prod" {
			p.Log.Format = "json"
		} else {
			p.Log.Format = "text"
		}
	}

	if len(p.CORS.AllowedOrigins) > 0 {
		clean := make([]string, 0, len(p.CORS.AllowedOrigins))
		for _, s := range p.CORS.AllowedOrigins {
			s = strings.TrimSpace(s)
			if s != "" {
				clean = append(clean, s)
			}
		}
		p.CORS.AllowedOrigins = clean
	}
}
