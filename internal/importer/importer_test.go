package importer

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Spok95/foodgram/internal/domain/ingredients"
	"github.com/Spok95/foodgram/internal/domain/tags"
	"github.com/Spok95/foodgram/internal/validation"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type memIngredients struct{ seen map[[2]string]int64 }

func (m *memIngredients) GetOrCreate(_ context.Context, name, unit string) (*ingredients.Ingredient, bool, error) {
	k := [2]string{name, unit}
	if id, ok := m.seen[k]; ok {
		return &ingredients.Ingredient{ID: id, Name: name, MeasurementUnit: unit}, false, nil
	}
	id := int64(len(m.seen) + 1)
	m.seen[k] = id
	return &ingredients.Ingredient{ID: id, Name: name, MeasurementUnit: unit}, true, nil
}

type memTags struct{ seen map[string]bool }

func (m *memTags) GetOrCreate(_ context.Context, name, slug string) (*tags.Tag, bool, error) {
	if m.seen[slug] {
		return &tags.Tag{Name: name, Slug: slug}, false, nil
	}
	m.seen[slug] = true
	return &tags.Tag{Name: name, Slug: slug}, true, nil
}

func newImporter() *Importer {
	return New(&memIngredients{seen: map[[2]string]int64{}}, &memTags{seen: map[string]bool{}}, discard)
}

func TestIngredientsJSON(t *testing.T) {
	recs, err := ReadIngredientsJSON(strings.NewReader(`[
		{"name": "абрикосовое варенье", "measurement_unit": "г"},
		{"name": "молоко", "measurement_unit": "мл"},
		{"name": "молоко", "measurement_unit": "мл"}
	]`))
	require.NoError(t, err)
	require.Len(t, recs, 3)

	rep, err := newImporter().Ingredients(context.Background(), recs)
	require.NoError(t, err)
	assert.Equal(t, Report{Total: 3, Created: 2}, rep)
}

func TestIngredientsJSONBroken(t *testing.T) {
	_, err := ReadIngredientsJSON(strings.NewReader(`{"name":`))
	assert.Error(t, err)
}

func TestTagsJSON(t *testing.T) {
	recs, err := ReadTagsJSON(strings.NewReader(`[
		{"name": "Завтрак", "slug": "breakfast"},
		{"name": "Обед", "slug": "lunch"}
	]`))
	require.NoError(t, err)

	im := newImporter()
	rep, err := im.Tags(context.Background(), recs)
	require.NoError(t, err)
	assert.Equal(t, Report{Total: 2, Created: 2}, rep)

	rep, err = im.Tags(context.Background(), recs)
	require.NoError(t, err)
	assert.Equal(t, Report{Total: 2, Created: 0}, rep)
}

func TestInvalidRecordStopsImport(t *testing.T) {
	_, err := newImporter().Tags(context.Background(), []TagRecord{
		{Name: "Ужин", Slug: "dinner"},
		{Name: "Плохой", Slug: "не слаг"},
	})
	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "slug")
	assert.Contains(t, err.Error(), "tag #2")

	_, err = newImporter().Ingredients(context.Background(), []IngredientRecord{{Name: "соль"}})
	assert.Error(t, err)
}

func TestIngredientsXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows := [][]interface{}{
		{"name", "measurement_unit"},
		{"мука", "г"},
		{" сахар ", "г"},
		{"", ""},
		{"яйца", "шт."},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	recs, err := ReadIngredientsXLSX(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []IngredientRecord{
		{Name: "мука", MeasurementUnit: "г"},
		{Name: "сахар", MeasurementUnit: "г"},
		{Name: "яйца", MeasurementUnit: "шт."},
	}, recs)

	_, err = ReadIngredientsXLSX([]byte("not a zip"))
	assert.Error(t, err)
}
