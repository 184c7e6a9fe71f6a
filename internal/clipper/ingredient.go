package clipper

import (
	"math"
	"strconv"
	"strings"
)

var units = map[string]string{
	"g": "g", "gram": "g", "grams": "g",
	"kg": "kg", "kilogram": "kg", "kilograms": "kg",
	"ml": "ml", "l": "l", "liter": "l", "liters": "l", "litre": "l", "litres": "l",
	"oz": "oz", "ounce": "oz", "ounces": "oz",
	"lb": "lb", "lbs": "lb", "pound": "lb", "pounds": "lb",
	"cup": "cup", "cups": "cups",
	"tbsp": "tbsp", "tablespoon": "tbsp", "tablespoons": "tbsp",
	"tsp": "tsp", "teaspoon": "tsp", "teaspoons": "tsp",
	"pinch": "pinch", "clove": "clove", "cloves": "cloves",
	"can": "can", "cans": "cans", "slice": "slice", "slices": "slices",
}

var vulgarFractions = map[rune]float64{
	'½': 0.5, '⅓': 1.0 / 3, '⅔': 2.0 / 3, '¼': 0.25, '¾': 0.75, '⅛': 0.125,
}

// SplitIngredient turns a free-text line like "1 1/2 cups flour, sifted" into
// the "quantity,unit,description" form used by uploads. Commas inside the
// description become semicolons.
func SplitIngredient(line string) string {
	tokens := strings.Fields(line)
	qty := 0.0
	i := 0
	for i < len(tokens) {
		v, ok := parseAmount(tokens[i])
		if !ok {
			break
		}
		qty += v
		i++
	}

	unit := ""
	if i < len(tokens) {
		if u, ok := units[strings.ToLower(strings.TrimSuffix(tokens[i], "."))]; ok {
			unit = u
			i++
		}
	}

	desc := strings.ReplaceAll(strings.Join(tokens[i:], " "), ",", ";")
	q := ""
	if qty > 0 {
		q = strconv.FormatFloat(qty, 'f', -1, 64)
	}
	if desc == "" {
		desc = strings.ReplaceAll(line, ",", ";")
		q, unit = "", ""
	}
	return q + "," + unit + "," + desc
}

// parseAmount reads "2", "0.5", "1/2", "½" or "1½".
func parseAmount(tok string) (float64, bool) {
	if v, err := strconv.ParseFloat(tok, 64); err == nil && v > 0 && !math.IsInf(v, 0) {
		return v, true
	}
	if num, den, ok := strings.Cut(tok, "/"); ok {
		n, errN := strconv.ParseFloat(num, 64)
		d, errD := strconv.ParseFloat(den, 64)
		if errN == nil && errD == nil && d != 0 && n > 0 {
			return n / d, true
		}
		return 0, false
	}
	runes := []rune(tok)
	if len(runes) == 0 {
		return 0, false
	}
	frac, ok := vulgarFractions[runes[len(runes)-1]]
	if !ok {
		return 0, false
	}
	if len(runes) == 1 {
		return frac, true
	}
	whole, err := strconv.Atoi(string(runes[:len(runes)-1]))
	if err != nil {
		return 0, false
	}
	return float64(whole) + frac, true
}
