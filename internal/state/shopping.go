package state

import (
	"context"

	"recipe-book/internal/recipe"
	"recipe-book/internal/shopping"
)

// updateShopping applies fn and persists the list if fn reports a change.
func (s *Store) updateShopping(ctx context.Context, fn func(l *shopping.List) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !fn(&s.state.ShoppingList) {
		return nil
	}
	return s.save(ctx, KeyShopping, s.state.ShoppingList)
}

// AddIngredientsToShoppingList appends one item per ingredient.
func (s *Store) AddIngredientsToShoppingList(ctx context.Context, ingredients []recipe.Ingredient) error {
	return s.updateShopping(ctx, func(l *shopping.List) bool {
		return len(l.AddIngredients(ingredients)) > 0
	})
}

// AddCurrentRecipeToShoppingList appends the loaded recipe's ingredients at
// their current, possibly rescaled, quantities.
func (s *Store) AddCurrentRecipeToShoppingList(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Recipe == nil {
		return ErrNoRecipe
	}
	if len(s.state.ShoppingList.AddIngredients(s.state.Recipe.Ingredients)) == 0 {
		return nil
	}
	return s.save(ctx, KeyShopping, s.state.ShoppingList)
}

// AddMealPlanToShoppingList appends the ingredients of every filled slot and
// returns the number of items added. A recipe planned twice is added twice.
func (s *Store) AddMealPlanToShoppingList(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, r := range s.state.MealPlan.AssignedRecipes() {
		added += len(s.state.ShoppingList.AddIngredients(r.Ingredients))
	}
	if added == 0 {
		return 0, nil
	}
	return added, s.save(ctx, KeyShopping, s.state.ShoppingList)
}

// DeleteShoppingItem removes an item. Unknown ids are ignored.
func (s *Store) DeleteShoppingItem(ctx context.Context, id string) error {
	return s.updateShopping(ctx, func(l *shopping.List) bool {
		return l.Delete(id)
	})
}

// UpdateShoppingItemQuantity changes the quantity of an unchecked item.
func (s *Store) UpdateShoppingItemQuantity(ctx context.Context, id string, quantity float64) error {
	return s.updateShopping(ctx, func(l *shopping.List) bool {
		return l.UpdateQuantity(id, quantity)
	})
}

// ToggleShoppingItem flips an item between checked and unchecked.
func (s *Store) ToggleShoppingItem(ctx context.Context, id string) error {
	return s.updateShopping(ctx, func(l *shopping.List) bool {
		return l.Toggle(id)
	})
}

// ClearShoppingList removes every item.
func (s *Store) ClearShoppingList(ctx context.Context) error {
	return s.updateShopping(ctx, func(l *shopping.List) bool {
		l.Clear()
		return true
	})
}

// ShoppingList returns a copy of the shopping list.
func (s *Store) ShoppingList() shopping.List {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ShoppingList.Clone()
}
