// Package importer загружает справочники ингредиентов и тегов из JSON или Excel.
package importer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/goccy/go-json"
	"github.com/xuri/excelize/v2"

	"github.com/Spok95/foodgram/internal/domain/ingredients"
	"github.com/Spok95/foodgram/internal/domain/tags"
	"github.com/Spok95/foodgram/internal/validation"
)

type IngredientRecord struct {
	Name            string `json:"name" validate:"required,max=128"`
	MeasurementUnit string `json:"measurement_unit" validate:"required,max=64"`
}

type TagRecord struct {
	Name string `json:"name" validate:"required,max=32"`
	Slug string `json:"slug" validate:"required,max=32,slug"`
}

type IngredientWriter interface {
	GetOrCreate(ctx context.Context, name, unit string) (*ingredients.Ingredient, bool, error)
}

type TagWriter interface {
	GetOrCreate(ctx context.Context, name, slug string) (*tags.Tag, bool, error)
}

// Report — сколько записей прочитано и сколько из них новых.
type Report struct {
	Total   int
	Created int
}

func ReadIngredientsJSON(r io.Reader) ([]IngredientRecord, error) {
	var out []IngredientRecord
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("ingredients json: %w", err)
	}
	return out, nil
}

func ReadTagsJSON(r io.Reader) ([]TagRecord, error) {
	var out []TagRecord
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("tags json: %w", err)
	}
	return out, nil
}

// ReadIngredientsXLSX читает активный лист: первая строка — заголовок,
// дальше A — название, B — единица измерения. Пустые строки пропускаются.
func ReadIngredientsXLSX(data []byte) ([]IngredientRecord, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(f.GetActiveSheetIndex()))
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	var out []IngredientRecord
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) < 2 {
			continue
		}
		name, unit := strings.TrimSpace(row[0]), strings.TrimSpace(row[1])
		if name == "" && unit == "" {
			continue
		}
		out = append(out, IngredientRecord{Name: name, MeasurementUnit: unit})
	}
	return out, nil
}

type Importer struct {
	ings IngredientWriter
	tags TagWriter
	log  *slog.Logger
}

func New(ings IngredientWriter, tags TagWriter, log *slog.Logger) *Importer {
	return &Importer{ings: ings, tags: tags, log: log}
}

// Ingredients — get-or-create по паре (название, единица). Первая невалидная запись прерывает импорт.
func (im *Importer) Ingredients(ctx context.Context, recs []IngredientRecord) (Report, error) {
	var rep Report
	for i, rec := range recs {
		if err := validation.Struct(rec); err != nil {
			return rep, fmt.Errorf("ingredient #%d: %w", i+1, err)
		}
		_, created, err := im.ings.GetOrCreate(ctx, rec.Name, rec.MeasurementUnit)
		if err != nil {
			return rep, fmt.Errorf("ingredient %q: %w", rec.Name, err)
		}
		rep.Total++
		if created {
			rep.Created++
		}
	}
	im.log.Info("ingredients imported", "total", rep.Total, "created", rep.Created)
	return rep, nil
}

func (im *Importer) Tags(ctx context.Context, recs []TagRecord) (Report, error) {
	var rep Report
	for i, rec := range recs {
		if err := validation.Struct(rec); err != nil {
			return rep, fmt.Errorf("tag #%d: %w", i+1, err)
		}
		_, created, err := im.tags.GetOrCreate(ctx, rec.Name, rec.Slug)
		if err != nil {
			return rep, fmt.Errorf("tag %q: %w", rec.Slug, err)
		}
		rep.Total++
		if created {
			rep.Created++
		}
	}
	im.log.Info("tags imported", "total", rep.Total, "created", rep.Created)
	return rep, nil
}
