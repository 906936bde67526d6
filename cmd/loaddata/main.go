package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/Spok95/foodgram/internal/config"
	"github.com/Spok95/foodgram/internal/domain/ingredients"
	"github.com/Spok95/foodgram/internal/domain/tags"
	"github.com/Spok95/foodgram/internal/importer"
	"github.com/Spok95/foodgram/internal/infra/db"
	"github.com/Spok95/foodgram/internal/infra/logger"
)

func main() {
	cfgPath := pflag.StringP("config", "c", "config/example.yaml", "path to config file")
	ingPath := pflag.String("ingredients", "data/ingredients.json", "ingredients file (.json or .xlsx), empty to skip")
	tagPath := pflag.String("tags", "data/tags.json", "tags file (.json), empty to skip")
	pflag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg.App.Env)

	if err := run(context.Background(), cfg, log, *ingPath, *tagPath); err != nil {
		log.Error("load data failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger, ingPath, tagPath string) error {
	if err := db.Migrate(cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	im := importer.New(ingredients.NewRepo(pool), tags.NewRepo(pool), log)

	if ingPath != "" {
		recs, err := readIngredients(ingPath)
		if err != nil {
			return err
		}
		if _, err := im.Ingredients(ctx, recs); err != nil {
			return err
		}
	}

	if tagPath != "" {
		f, err := os.Open(tagPath)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		recs, err := importer.ReadTagsJSON(f)
		if err != nil {
			return err
		}
		if _, err := im.Tags(ctx, recs); err != nil {
			return err
		}
	}
	return nil
}

func readIngredients(path string) ([]importer.IngredientRecord, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return importer.ReadIngredientsXLSX(data)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return importer.ReadIngredientsJSON(f)
}
