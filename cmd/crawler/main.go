package main

import (
	"context"
	"flag"
	"os"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/ymakhloufi/bolan-calc/internal/app/crawler"
	"github.com/ymakhloufi/bolan-calc/internal/pkg/config"
	"github.com/ymakhloufi/bolan-calc/internal/pkg/store"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path of a YAML config file")
	flag.Parse()

	os.Exit(run(*configPath))
}

func run(configPath string) int {
	cfg, err := config.Load(configPath)
	noErr(err)
	if cfg.DatabaseURL == "" {
		panic("failed to initialize something important: BOLAN_DATABASE_URL is not set")
	}

	logger, err := cfg.Logger()
	noErr(err)
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), cfg.CrawlTimeout)
	defer cancel()

	pool, err := pgxpool.Connect(ctx, cfg.DatabaseURL)
	noErr(err)
	defer pool.Close()

	pgStore := store.NewPostgres(pool, logger.Named("PG Store"))
	noErr(pgStore.EnsureSchema(ctx))

	crawlers := []crawler.SiteCrawler{
		crawler.NewDanskeBankCrawler(logger.Named("DanskeBankCrawler")),
	}
	svc := crawler.NewService(pgStore, crawlers, logger.Named("Crawler Svc"))

	stored, err := svc.Crawl(ctx)
	if err != nil {
		logger.Error("crawl finished with errors", zap.Int("stored", stored), zap.Error(err))
		return 1
	}
	logger.Info("crawl finished", zap.Int("stored", stored))
	return 0
}

func noErr(err error) {
	if err != nil {
		panic("failed to initialize something important: " + err.Error())
	}
}
