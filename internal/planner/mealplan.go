// Package planner implements the weekly meal plan: a pool of candidate
// recipes and a 7x3 grid of day/meal slots that reference pool entries.
//
// Every filled slot holds the id of a recipe present in the pool. Removing a
// recipe from the pool clears its slots in the same call.
package planner

import (
	"encoding/json"
	"fmt"

	"recipe-book/internal/recipe"
)

// WeekPlan maps day and meal type to a pool recipe id. "" is an empty slot.
type WeekPlan [numDays][numMeals]string

// MealPlan is the recipe pool, the week grid and the UI visibility flag.
type MealPlan struct {
	SelectedRecipes []recipe.Recipe
	WeekPlan        WeekPlan
	IsActive        bool
}

// New returns an empty plan.
func New() MealPlan {
	return MealPlan{SelectedRecipes: []recipe.Recipe{}}
}

// AddRecipe appends r to the pool unless a recipe with the same id is
// already there. It reports whether the pool changed.
func (p *MealPlan) AddRecipe(r recipe.Recipe) bool {
	if r.ID == "" || p.index(r.ID) >= 0 {
		return false
	}
	p.SelectedRecipes = append(p.SelectedRecipes, r.Clone())
	return true
}

// RemoveRecipe drops the recipe from the pool and clears every slot that
// referenced it. It reports whether the recipe was found.
func (p *MealPlan) RemoveRecipe(id string) bool {
	i := p.index(id)
	if i < 0 {
		return false
	}
	p.SelectedRecipes = append(p.SelectedRecipes[:i], p.SelectedRecipes[i+1:]...)
	for d := range p.WeekPlan {
		for m := range p.WeekPlan[d] {
			if p.WeekPlan[d][m] == id {
				p.WeekPlan[d][m] = ""
			}
		}
	}
	return true
}

// Assign puts a pooled recipe into a slot, replacing any prior occupant.
// Unknown ids and out of range days or meals leave the plan untouched.
func (p *MealPlan) Assign(id string, day Day, meal MealType) bool {
	if !day.Valid() || !meal.Valid() || p.index(id) < 0 {
		return false
	}
	p.WeekPlan[day][meal] = id
	return true
}

// ClearSlot empties one slot. It reports whether day and meal were valid.
func (p *MealPlan) ClearSlot(day Day, meal MealType) bool {
	if !day.Valid() || !meal.Valid() {
		return false
	}
	p.WeekPlan[day][meal] = ""
	return true
}

// Clear empties the pool and every slot. IsActive is kept.
func (p *MealPlan) Clear() {
	p.SelectedRecipes = []recipe.Recipe{}
	p.WeekPlan = WeekPlan{}
}

// Slot returns the recipe assigned to a slot.
func (p *MealPlan) Slot(day Day, meal MealType) (recipe.Recipe, bool) {
	if !day.Valid() || !meal.Valid() || p.WeekPlan[day][meal] == "" {
		return recipe.Recipe{}, false
	}
	return p.Find(p.WeekPlan[day][meal])
}

// Find returns the pooled recipe with the given id.
func (p *MealPlan) Find(id string) (recipe.Recipe, bool) {
	i := p.index(id)
	if i < 0 {
		return recipe.Recipe{}, false
	}
	return p.SelectedRecipes[i], true
}

// AssignedRecipes returns the recipe of every filled slot in calendar order.
// A recipe used in several slots appears once per slot.
func (p *MealPlan) AssignedRecipes() []recipe.Recipe {
	var out []recipe.Recipe
	for _, d := range Days() {
		for _, m := range MealTypes() {
			if r, ok := p.Slot(d, m); ok {
				out = append(out, r)
			}
		}
	}
	return out
}

// Clone returns a deep copy of p.
func (p MealPlan) Clone() MealPlan {
	c := p
	c.SelectedRecipes = make([]recipe.Recipe, len(p.SelectedRecipes))
	for i, r := range p.SelectedRecipes {
		c.SelectedRecipes[i] = r.Clone()
	}
	return c
}

func (p *MealPlan) index(id string) int {
	for i, r := range p.SelectedRecipes {
		if r.ID == id {
			return i
		}
	}
	return -1
}

type mealPlanJSON struct {
	SelectedRecipes []recipe.Recipe                       `json:"selectedRecipes"`
	WeekPlan        map[string]map[string]json.RawMessage `json:"weekPlan"`
	IsActive        bool                                  `json:"isActive"`
}

// MarshalJSON writes every day and meal key; filled slots carry the full
// pooled recipe and empty slots are null.
func (p MealPlan) MarshalJSON() ([]byte, error) {
	out := struct {
		SelectedRecipes []recipe.Recipe                       `json:"selectedRecipes"`
		WeekPlan        map[string]map[string]*recipe.Recipe `json:"weekPlan"`
		IsActive        bool                                  `json:"isActive"`
	}{
		SelectedRecipes: p.SelectedRecipes,
		WeekPlan:        make(map[string]map[string]*recipe.Recipe, numDays),
		IsActive:        p.IsActive,
	}
	if out.SelectedRecipes == nil {
		out.SelectedRecipes = []recipe.Recipe{}
	}

	for _, d := range Days() {
		meals := make(map[string]*recipe.Recipe, numMeals)
		for _, m := range MealTypes() {
			meals[m.String()] = nil
			if r, ok := p.Slot(d, m); ok {
				meals[m.String()] = &r
			}
		}
		out.WeekPlan[d.String()] = meals
	}
	return json.Marshal(out)
}

// UnmarshalJSON tolerates stored data written by older or hand-edited
// clients: duplicate pool entries are dropped, unknown day and meal keys are
// ignored and slots naming a recipe outside the pool stay empty.
func (p *MealPlan) UnmarshalJSON(data []byte) error {
	var in mealPlanJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("failed to unmarshal meal plan: %w", err)
	}

	plan := New()
	plan.IsActive = in.IsActive
	for _, r := range in.SelectedRecipes {
		plan.AddRecipe(r)
	}

	for dayName, meals := range in.WeekPlan {
		day, ok := ParseDay(dayName)
		if !ok {
			continue
		}
		for mealName, raw := range meals {
			meal, ok := ParseMealType(mealName)
			if !ok {
				continue
			}
			var ref *struct {
				ID string `json:"id"`
			}
			if err := json.Unmarshal(raw, &ref); err != nil || ref == nil {
				continue
			}
			plan.Assign(ref.ID, day, meal)
		}
	}

	*p = plan
	return nil
}
