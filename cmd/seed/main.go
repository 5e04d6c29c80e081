package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"library-catalog/internal/domains/catalog/model"
	"library-catalog/internal/domains/catalog/service"
	"library-catalog/pkg/container"
	"library-catalog/pkg/logger"
)

type seedBook struct {
	Author string
	Book   string
}

var seedRows = []seedBook{
	{Author: "金庸", Book: "天龙八部"},
	{Author: "金庸", Book: "射雕英雄传"},
	{Author: "古龙", Book: "小李飞刀"},
	{Author: "鲁迅", Book: "药"},
	{Author: "鲁迅", Book: "阿Q正传"},
}

func main() {
	_ = godotenv.Load()
	logger.Init(getEnv("APP_ENV", "development"), getEnv("LOG_LEVEL", "info"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := container.NewContainer(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize container")
	}
	defer c.Cleanup()

	created, skipped, err := Seed(ctx, c.CatalogService)
	if err != nil {
		log.Error().Err(err).Msg("seed failed")
		c.Cleanup()
		os.Exit(1)
	}

	log.Info().Int("created", created).Int("skipped", skipped).Msg("seed complete")
}

// Seed inserts the fixture rows through the catalog service. Rows whose
// book already exists are skipped, so running it twice changes nothing.
func Seed(ctx context.Context, svc service.ServiceInterface) (created, skipped int, err error) {
	for _, row := range seedRows {
		_, err := svc.CreateAuthorAndBook(ctx, row.Author, row.Book)
		switch {
		case err == nil:
			created++
		case errors.Is(err, model.ErrDuplicateBook):
			skipped++
		default:
			return created, skipped, err
		}
	}
	return created, skipped, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
