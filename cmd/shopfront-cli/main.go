package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"shopfront/internal/apis/shop/usecases"
	"shopfront/internal/bootstrap"
	"shopfront/internal/catalog"
	"shopfront/internal/config"
	"shopfront/internal/logger"
	jsonfile "shopfront/internal/repository/json"
)

func main() {
	var (
		configPath = flag.String("config", "./config/config.yaml", "path to config.yaml")
		category   = flag.String("category", "", "category to browse (default all)")
		search     = flag.String("q", "", "search term; takes precedence over -category")
		price      = flag.String("price", "", "price filter id: all|under-100|100-200|200-plus")
		duration   = flag.String("duration", "", "duration filter id: all|up-to-30|30-60|60-plus")
		sortBy     = flag.String("sort", "", "sort id: recommended|price-asc|price-desc|duration-asc|duration-desc")
		outputFile = flag.String("out", "", "override output file (optional)")
		noRefine   = flag.Bool("no-refine", false, "keep server search results as returned")
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

	if *outputFile != "" {
		cfg.CLI.OutputFile = *outputFile
	}
	if *noRefine {
		cfg.Catalog.RefineSearch = false
	}
	if cfg.CLI.OutputFile == "" {
		log.Error("output_file must not be empty (set in config.yaml or via -out)")
		os.Exit(1)
	}

	transport, err := bootstrap.BuildTransport(cfg, log)
	if err != nil {
		log.Error("build transport failed", "err", err)
		os.Exit(1)
	}
	shopSvc := bootstrap.BuildShop(cfg, transport, log)

	usecase := usecases.NewCatalogQueryService(
		shopSvc,
		cfg.Shop.BaseURL,
		log,
		catalog.Options{RefineSearch: cfg.Catalog.RefineSearch},
	)

	repo := jsonfile.New(cfg.CLI.OutputFile, log)

	// one deadline for the whole run
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.TimeoutSeconds)*time.Second)
	defer cancel()

	res, err := usecase.Run(ctx, usecases.CatalogQuery{
		Category: *category,
		Search:   *search,
		Price:    *price,
		Duration: *duration,
		Sort:     *sortBy,
	})
	if err != nil {
		log.Error("catalog query failed", "err", err)
		os.Exit(1)
	}

	if err := repo.Save(ctx, res); err != nil {
		log.Error("save failed", "err", err)
		os.Exit(1)
	}

	log.Info("done",
		"count", res.Count,
		"empty", res.Empty,
		"active_filters", res.ActiveFilters,
		"out", cfg.CLI.OutputFile,
	)
}
