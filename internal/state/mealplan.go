package state

import (
	"context"

	"recipe-book/internal/planner"
	"recipe-book/internal/recipe"
)

// updateMealPlan applies fn and persists the plan if fn reports a change.
func (s *Store) updateMealPlan(ctx context.Context, fn func(p *planner.MealPlan) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !fn(&s.state.MealPlan) {
		return nil
	}
	return s.save(ctx, KeyMealPlan, s.state.MealPlan)
}

// AddRecipeToMealPlan pools r. A recipe whose id is already pooled is ignored.
func (s *Store) AddRecipeToMealPlan(ctx context.Context, r recipe.Recipe) error {
	return s.updateMealPlan(ctx, func(p *planner.MealPlan) bool {
		return p.AddRecipe(r)
	})
}

// RemoveRecipeFromMealPlan drops a recipe from the pool together with every
// slot that references it. Unknown ids are ignored.
func (s *Store) RemoveRecipeFromMealPlan(ctx context.Context, id string) error {
	return s.updateMealPlan(ctx, func(p *planner.MealPlan) bool {
		return p.RemoveRecipe(id)
	})
}

// AssignRecipeToMeal puts a pooled recipe in a day/meal slot. Day and meal
// names come from the UI and are matched leniently; anything unrecognised,
// like an id outside the pool, is ignored.
func (s *Store) AssignRecipeToMeal(ctx context.Context, id, day, meal string) error {
	d, okDay := planner.ParseDay(day)
	m, okMeal := planner.ParseMealType(meal)
	if !okDay || !okMeal {
		return nil
	}
	return s.updateMealPlan(ctx, func(p *planner.MealPlan) bool {
		return p.Assign(id, d, m)
	})
}

// ClearMealFromSlot empties a slot. Unrecognised names are ignored.
func (s *Store) ClearMealFromSlot(ctx context.Context, day, meal string) error {
	d, okDay := planner.ParseDay(day)
	m, okMeal := planner.ParseMealType(meal)
	if !okDay || !okMeal {
		return nil
	}
	return s.updateMealPlan(ctx, func(p *planner.MealPlan) bool {
		return p.ClearSlot(d, m)
	})
}

// ClearAllMealPlan empties the pool and the whole week.
func (s *Store) ClearAllMealPlan(ctx context.Context) error {
	return s.updateMealPlan(ctx, func(p *planner.MealPlan) bool {
		p.Clear()
		return true
	})
}

// SetMealPlanActive records whether the planner is open in the UI.
func (s *Store) SetMealPlanActive(ctx context.Context, active bool) error {
	return s.updateMealPlan(ctx, func(p *planner.MealPlan) bool {
		p.IsActive = active
		return true
	})
}

// MealPlan returns a copy of the meal plan.
func (s *Store) MealPlan() planner.MealPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.MealPlan.Clone()
}
