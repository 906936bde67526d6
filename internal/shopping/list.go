package shopping

import (
	"sort"
	"strconv"
	"strings"
)

const (
	Title          = "Список покупок."
	NoRecipes      = "Нет рецептов в списке покупок."
	NoIngredients  = "Нет ингредиентов для покупки."
	unitFactor     = 1000.0
	unitLineIndent = "  "
)

// Line — одна строка ингредиента рецепта из корзины.
type Line struct {
	Ingredient string
	Unit       string
	Amount     float64
}

// CartRecipe — рецепт из корзины вместе с его ингредиентами.
type CartRecipe struct {
	ID    int64
	Name  string
	Lines []Line
}

type UnitAmount struct {
	Unit   string
	Amount float64
}

// Entry — итоговая позиция списка покупок.
type Entry struct {
	Name  string
	Units []UnitAmount
}

// pair описывает пересчёт: 1 big = 1000 small.
type pair struct {
	small, big string
}

var pairs = []pair{
	{small: "г", big: "кг"},
	{small: "мл", big: "л"},
	{small: "g", big: "kg"},
	{small: "ml", big: "l"},
}

// counterpart возвращает парную единицу и множитель для перевода в неё.
func counterpart(unit string) (string, float64, bool) {
	for _, p := range pairs {
		switch unit {
		case p.small:
			return p.big, 1 / unitFactor, true
		case p.big:
			return p.small, unitFactor, true
		}
	}
	return "", 0, false
}

// Aggregate суммирует количества по ингредиентам. Совместимые единицы
// сводятся к той, что встретилась первой.
func Aggregate(lines []Line) []Entry {
	index := make(map[string]int)
	var out []Entry

	for _, ln := range lines {
		if ln.Ingredient == "" || ln.Amount <= 0 {
			continue
		}
		i, ok := index[ln.Ingredient]
		if !ok {
			index[ln.Ingredient] = len(out)
			out = append(out, Entry{
				Name:  ln.Ingredient,
				Units: []UnitAmount{{Unit: ln.Unit, Amount: ln.Amount}},
			})
			continue
		}
		out[i].add(ln.Unit, ln.Amount)
	}

	sort.SliceStable(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out
}

func (e *Entry) add(unit string, amount float64) {
	if j := e.find(unit); j >= 0 {
		e.Units[j].Amount += amount
		return
	}
	if other, k, ok := counterpart(unit); ok {
		if j := e.find(other); j >= 0 {
			e.Units[j].Amount += amount * k
			return
		}
	}
	e.Units = append(e.Units, UnitAmount{Unit: unit, Amount: amount})
}

func (e *Entry) find(unit string) int {
	for j, u := range e.Units {
		if u.Unit == unit {
			return j
		}
	}
	return -1
}

func collect(recipes []CartRecipe) []Line {
	var lines []Line
	for _, r := range recipes {
		lines = append(lines, r.Lines...)
	}
	return lines
}

// Text формирует текстовый файл списка покупок.
func Text(recipes []CartRecipe) string {
	if len(recipes) == 0 {
		return NoRecipes
	}
	entries := Aggregate(collect(recipes))
	if len(entries) == 0 {
		return NoIngredients
	}

	var b strings.Builder
	b.WriteString(Title)
	b.WriteString("\n\n")
	for _, e := range entries {
		if len(e.Units) == 1 {
			u := e.Units[0]
			b.WriteString(e.Name + " (" + u.Unit + ") — " + FormatAmount(u.Amount) + "\n")
			continue
		}
		b.WriteString(e.Name + ":\n")
		for _, u := range e.Units {
			b.WriteString(unitLineIndent + u.Unit + " — " + FormatAmount(u.Amount) + "\n")
		}
	}
	return b.String()
}

// FormatAmount печатает количество без лишних нулей: 1500, 0.5, 1.25.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
