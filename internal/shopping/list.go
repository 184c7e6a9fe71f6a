// Package shopping keeps a checklist of ingredients to buy.
package shopping

import (
	"math"

	"recipe-book/internal/recipe"

	"github.com/google/uuid"
)

// Item is one line of the shopping list.
type Item struct {
	ID          string   `json:"id"`
	Quantity    *float64 `json:"quantity"`
	Unit        string   `json:"unit"`
	Description string   `json:"description"`
	Checked     bool     `json:"checked"`
}

// List is the ordered shopping list.
type List []Item

// AddIngredients appends one unchecked item per ingredient and returns the new items.
func (l *List) AddIngredients(ingredients []recipe.Ingredient) []Item {
	added := make([]Item, 0, len(ingredients))
	for _, ing := range ingredients {
		item := Item{
			ID:          uuid.NewString(),
			Unit:        ing.Unit,
			Description: ing.Description,
		}
		if ing.Quantity != nil {
			q := *ing.Quantity
			item.Quantity = &q
		}
		added = append(added, item)
	}
	*l = append(*l, added...)
	return added
}

// Delete removes an item. Unknown ids are ignored.
func (l *List) Delete(id string) bool {
	i := l.index(id)
	if i < 0 {
		return false
	}
	*l = append((*l)[:i], (*l)[i+1:]...)
	return true
}

// UpdateQuantity sets the quantity of an unchecked item. Checked items,
// unknown ids and negative or non-finite quantities are ignored.
func (l *List) UpdateQuantity(id string, quantity float64) bool {
	i := l.index(id)
	if i < 0 || (*l)[i].Checked || quantity < 0 || math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		return false
	}
	q := quantity
	(*l)[i].Quantity = &q
	return true
}

// Toggle flips the checked flag of an item.
func (l *List) Toggle(id string) bool {
	i := l.index(id)
	if i < 0 {
		return false
	}
	(*l)[i].Checked = !(*l)[i].Checked
	return true
}

// Clear removes every item.
func (l *List) Clear() {
	*l = List{}
}

// Clone returns a deep copy of l.
func (l List) Clone() List {
	out := make(List, len(l))
	for i, item := range l {
		out[i] = item
		if item.Quantity != nil {
			q := *item.Quantity
			out[i].Quantity = &q
		}
	}
	return out
}

func (l List) index(id string) int {
	for i, item := range l {
		if item.ID == id {
			return i
		}
	}
	return -1
}
