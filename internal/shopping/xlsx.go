package shopping

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Список покупок"

// XLSX выгружает тот же список покупок в Excel: одна строка на пару
// ингредиент/единица.
func XLSX(recipes []CartRecipe) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	var entries []Entry
	if len(recipes) > 0 {
		entries = Aggregate(collect(recipes))
	}

	switch {
	case len(recipes) == 0:
		if err := f.SetCellStr(sheetName, "A1", NoRecipes); err != nil {
			return nil, err
		}
	case len(entries) == 0:
		if err := f.SetCellStr(sheetName, "A1", NoIngredients); err != nil {
			return nil, err
		}
	default:
		header := []interface{}{"Ингредиент", "Единица", "Количество"}
		if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
			return nil, fmt.Errorf("header: %w", err)
		}
		row := 2
		for _, e := range entries {
			for _, u := range e.Units {
				cell, err := excelize.CoordinatesToCellName(1, row)
				if err != nil {
					return nil, err
				}
				values := []interface{}{e.Name, u.Unit, u.Amount}
				if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
					return nil, fmt.Errorf("row %d: %w", row, err)
				}
				row++
			}
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
