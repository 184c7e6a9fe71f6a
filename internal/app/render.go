package app

import (
	"fmt"
	"strings"

	"recipe-book/internal/bookmark"
	"recipe-book/internal/metrics"
	"recipe-book/internal/planner"
	"recipe-book/internal/recipe"
	"recipe-book/internal/search"
	"recipe-book/internal/shopping"

	"github.com/dustin/go-humanize"
)

func formatQuantity(q *float64, unit, description string) string {
	parts := make([]string, 0, 3)
	if q != nil {
		parts = append(parts, humanize.FtoaWithDigits(*q, 2))
	}
	if unit != "" {
		parts = append(parts, unit)
	}
	parts = append(parts, description)
	return strings.Join(parts, " ")
}

func renderRecipe(r recipe.Recipe) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s [%s]", r.Title, r.ID)
	if r.Bookmarked {
		sb.WriteString(" (bookmarked)")
	}
	if r.Key != "" {
		sb.WriteString(" (yours)")
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "By %s, %d min, %d servings\n", r.Publisher, r.CookingTime, r.Servings)

	sb.WriteString("\nIngredients:\n")
	for _, ing := range r.Ingredients {
		fmt.Fprintf(&sb, "- %s\n", formatQuantity(ing.Quantity, ing.Unit, ing.Description))
	}
	if r.SourceURL != "" {
		fmt.Fprintf(&sb, "\nDirections: %s\n", r.SourceURL)
	}
	return sb.String()
}

func renderResults(s search.Session, page []recipe.Summary) string {
	if len(s.Results) == 0 {
		if s.Query == "" {
			return "No search yet. Try /search <query>."
		}
		return fmt.Sprintf("No recipes found for %q.", s.Query)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Results for %q, page %d of %d (%s recipes):\n", s.Query, s.Page, s.NumPages(), humanize.Comma(int64(len(s.Results))))
	if len(page) == 0 {
		sb.WriteString("No results on this page.\n")
	}
	for _, r := range page {
		fmt.Fprintf(&sb, "- %s (%s) [%s]\n", r.Title, r.Publisher, r.ID)
	}
	if s.Page > 1 {
		fmt.Fprintf(&sb, "Previous: /page %d\n", s.Page-1)
	}
	if s.Page < s.NumPages() {
		fmt.Fprintf(&sb, "Next: /page %d\n", s.Page+1)
	}
	return sb.String()
}

func renderBookmarks(b bookmark.Set) string {
	if len(b) == 0 {
		return "No bookmarks yet. Find a nice recipe and /bookmark it."
	}
	var sb strings.Builder
	sb.WriteString("Bookmarks:\n")
	for _, r := range b {
		fmt.Fprintf(&sb, "- %s (%s) [%s]\n", r.Title, r.Publisher, r.ID)
	}
	return sb.String()
}

func renderMealPlan(p planner.MealPlan) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Meal plan, %d recipes in the pool:\n", len(p.SelectedRecipes))
	for _, r := range p.SelectedRecipes {
		fmt.Fprintf(&sb, "- %s [%s]\n", r.Title, r.ID)
	}

	sb.WriteString("\nWeek:\n")
	for _, d := range planner.Days() {
		slots := make([]string, 0, 3)
		for _, m := range planner.MealTypes() {
			title := "-"
			if r, ok := p.Slot(d, m); ok {
				title = r.Title
			}
			slots = append(slots, fmt.Sprintf("%s: %s", m, title))
		}
		fmt.Fprintf(&sb, "%-9s %s\n", d, strings.Join(slots, " | "))
	}
	return sb.String()
}

func renderShoppingList(l shopping.List) string {
	if len(l) == 0 {
		return "Shopping list is empty."
	}
	var sb strings.Builder
	sb.WriteString("Shopping list:\n")
	for i, item := range l {
		mark := " "
		if item.Checked {
			mark = "x"
		}
		fmt.Fprintf(&sb, "%d. [%s] %s\n", i+1, mark, formatQuantity(item.Quantity, item.Unit, item.Description))
	}
	return sb.String()
}

func renderStats(usage []metrics.DailyUsage, metricsEnabled bool, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("Usage & Health Report\n\n")

	sb.WriteString("Recent API activity:\n")
	switch {
	case !metricsEnabled:
		sb.WriteString("metrics disabled\n")
	case len(usage) == 0:
		sb.WriteString("no data yet\n")
	}
	for _, d := range usage {
		fmt.Fprintf(&sb, "- %s: %s calls, %d failed, avg %d ms\n", d.Date, humanize.Comma(int64(d.Calls)), d.Failures, d.AvgLatencyMS)
	}

	sb.WriteString("\nSystem health:\n")
	fmt.Fprintf(&sb, "- RAM: %s (alloc) / %s (sys)\n", health.Alloc, health.Sys)
	fmt.Fprintf(&sb, "- GC runs: %d\n", health.NumGC)
	fmt.Fprintf(&sb, "- Goroutines: %d\n", health.Goroutines)
	fmt.Fprintf(&sb, "- Stored data: %s\n", health.DataSize)
	return sb.String()
}
