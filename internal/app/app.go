// Package app interprets the text commands shared by the CLI and the
// Telegram bot and renders the resulting state as plain text.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"recipe-book/internal/clipper"
	"recipe-book/internal/metrics"
	"recipe-book/internal/recipe"
	"recipe-book/internal/state"
)

// ErrUsage marks a command that was called with missing or malformed arguments.
var ErrUsage = errors.New("usage")

// App holds the application's dependencies.
type App struct {
	store        *state.Store
	clipper      *clipper.Clipper
	metricsStore *metrics.Store
	dataPath     string
}

// NewApp creates a new App. metricsStore may be nil, in which case /stats
// only reports system health.
func NewApp(store *state.Store, recipeClipper *clipper.Clipper, metricsStore *metrics.Store, dataPath string) *App {
	return &App{
		store:        store,
		clipper:      recipeClipper,
		metricsStore: metricsStore,
		dataPath:     dataPath,
	}
}

type handler func(a *App, ctx context.Context, args []string, body []string) (string, error)

type command struct {
	usage string
	help  string
	run   handler
}

var commands map[string]command

// commandOrder fixes the /help listing.
var commandOrder = []string{
	"/search", "/page", "/recipe", "/servings", "/bookmark", "/bookmarks", "/upload", "/import",
	"/plan", "/planadd", "/planremove", "/assign", "/unassign", "/planclear", "/planclose",
	"/shop", "/shopadd", "/shopweek", "/shopdel", "/shopqty", "/shoptoggle", "/shopclear",
	"/stats", "/help",
}

func init() {
	commands = map[string]command{
		"/search":     {"/search <query>", "search recipes", (*App).search},
		"/page":       {"/page <n>", "show a page of search results", (*App).page},
		"/recipe":     {"/recipe <id>", "load a recipe", (*App).loadRecipe},
		"/servings":   {"/servings <n>", "rescale the current recipe", (*App).servings},
		"/bookmark":   {"/bookmark", "bookmark or unbookmark the current recipe", (*App).toggleBookmark},
		"/bookmarks":  {"/bookmarks", "list bookmarks", (*App).bookmarks},
		"/upload":     {"/upload followed by key: value lines", "upload your own recipe", (*App).upload},
		"/import":     {"/import <url>", "clip a recipe page and upload it", (*App).importURL},
		"/plan":       {"/plan", "open the meal planner", (*App).plan},
		"/planadd":    {"/planadd [id]", "add the current recipe, or any known id, to the planner", (*App).planAdd},
		"/planremove": {"/planremove <id>", "remove a recipe from the planner", (*App).planRemove},
		"/assign":     {"/assign <id> <day> <meal>", "put a planned recipe in a slot", (*App).assign},
		"/unassign":   {"/unassign <day> <meal>", "empty a slot", (*App).unassign},
		"/planclear":  {"/planclear", "empty the planner", (*App).planClear},
		"/planclose":  {"/planclose", "close the meal planner", (*App).planClose},
		"/shop":       {"/shop", "show the shopping list", (*App).shop},
		"/shopadd":    {"/shopadd", "add the current recipe's ingredients", (*App).shopAdd},
		"/shopweek":   {"/shopweek", "add every planned meal's ingredients", (*App).shopWeek},
		"/shopdel":    {"/shopdel <item>", "delete an item", (*App).shopDelete},
		"/shopqty":    {"/shopqty <item> <quantity>", "change an item's quantity", (*App).shopQuantity},
		"/shoptoggle": {"/shoptoggle <item>", "check or uncheck an item", (*App).shopToggle},
		"/shopclear":  {"/shopclear", "clear the shopping list", (*App).shopClear},
		"/stats":      {"/stats", "show API usage and system health", (*App).stats},
		"/help":       {"/help", "list commands", (*App).help},
	}
}

// Execute runs one command. The first line holds the command and its
// arguments; further lines are passed to commands that take a body.
// A command overtaken by a newer one of the same kind returns "" and no error.
func (a *App) Execute(ctx context.Context, input string) (string, error) {
	lines := strings.Split(strings.TrimSpace(input), "\n")
	fields := strings.Fields(lines[0])
	if len(fields) == 0 {
		return a.help(ctx, nil, nil)
	}

	name := strings.ToLower(fields[0])
	// Telegram appends the bot name in groups: /search@my_bot
	name, _, _ = strings.Cut(name, "@")
	cmd, ok := commands[name]
	if !ok {
		return "", fmt.Errorf("unknown command %q, try /help", fields[0])
	}

	out, err := cmd.run(a, ctx, fields[1:], lines[1:])
	if errors.Is(err, ErrUsage) {
		return "", fmt.Errorf("%w: %s", ErrUsage, cmd.usage)
	}
	if errors.Is(err, state.ErrSuperseded) {
		log.Printf("Command %s dropped: %v", name, err)
		return "", nil
	}
	if err != nil {
		log.Printf("Command %s failed: %v", name, err)
	}
	return out, err
}

func (a *App) search(ctx context.Context, args, _ []string) (string, error) {
	if len(args) == 0 {
		return "", ErrUsage
	}
	if err := a.store.LoadSearchResults(ctx, strings.Join(args, " ")); err != nil {
		return "", err
	}
	return renderResults(a.store.Search(), a.store.CurrentResultsPage()), nil
}

func (a *App) page(_ context.Context, args, _ []string) (string, error) {
	n, err := intArg(args)
	if err != nil {
		return "", err
	}
	results := a.store.GetResultsPage(n)
	return renderResults(a.store.Search(), results), nil
}

func (a *App) loadRecipe(ctx context.Context, args, _ []string) (string, error) {
	if len(args) != 1 {
		return "", ErrUsage
	}
	if err := a.store.LoadRecipe(ctx, args[0]); err != nil {
		return "", err
	}
	r, _ := a.store.CurrentRecipe()
	return renderRecipe(r), nil
}

func (a *App) servings(_ context.Context, args, _ []string) (string, error) {
	n, err := intArg(args)
	if err != nil {
		return "", err
	}
	if err := a.store.UpdateServings(n); err != nil {
		return "", err
	}
	r, _ := a.store.CurrentRecipe()
	return renderRecipe(r), nil
}

func (a *App) toggleBookmark(ctx context.Context, _, _ []string) (string, error) {
	on, err := a.store.ToggleBookmark(ctx)
	if err != nil {
		return "", err
	}
	r, _ := a.store.CurrentRecipe()
	if on {
		return fmt.Sprintf("Bookmarked %s.", r.Title), nil
	}
	return fmt.Sprintf("Removed bookmark for %s.", r.Title), nil
}

func (a *App) bookmarks(_ context.Context, _, _ []string) (string, error) {
	return renderBookmarks(a.store.Bookmarks()), nil
}

func (a *App) upload(ctx context.Context, _, body []string) (string, error) {
	fields := parseForm(body)
	if len(fields) == 0 {
		return "", ErrUsage
	}
	return a.uploadFields(ctx, fields)
}

func (a *App) importURL(ctx context.Context, args, _ []string) (string, error) {
	if len(args) != 1 {
		return "", ErrUsage
	}
	fields, err := a.clipper.ClipURL(ctx, args[0])
	if err != nil {
		return "", err
	}
	return a.uploadFields(ctx, fields)
}

func (a *App) uploadFields(ctx context.Context, fields map[string]string) (string, error) {
	r, err := a.store.UploadRecipe(ctx, fields)
	if err != nil {
		return "", err
	}
	return "Recipe uploaded.\n\n" + renderRecipe(r), nil
}

// parseForm reads "key: value" lines. Lines without a colon are skipped.
func parseForm(lines []string) map[string]string {
	fields := map[string]string{}
	for _, line := range lines {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		fields[key] = strings.TrimSpace(value)
	}
	return fields
}

func (a *App) plan(ctx context.Context, _, _ []string) (string, error) {
	if err := a.store.SetMealPlanActive(ctx, true); err != nil {
		return "", err
	}
	return renderMealPlan(a.store.MealPlan()), nil
}

func (a *App) planAdd(ctx context.Context, args, _ []string) (string, error) {
	if len(args) > 1 {
		return "", ErrUsage
	}
	r, err := a.resolveRecipe(args)
	if err != nil {
		return "", err
	}
	if err := a.store.AddRecipeToMealPlan(ctx, r); err != nil {
		return "", err
	}
	return renderMealPlan(a.store.MealPlan()), nil
}

// resolveRecipe finds a recipe by id in the current recipe, the bookmarks
// and the search results, in that order. Without an id it returns the
// current recipe.
func (a *App) resolveRecipe(args []string) (recipe.Recipe, error) {
	cur, ok := a.store.CurrentRecipe()
	if len(args) == 0 {
		if !ok {
			return recipe.Recipe{}, state.ErrNoRecipe
		}
		return cur, nil
	}
	id := args[0]
	if ok && cur.ID == id {
		return cur, nil
	}
	for _, b := range a.store.Bookmarks() {
		if b.ID == id {
			return b, nil
		}
	}
	sess := a.store.Search()
	if hit, ok := sess.Find(id); ok {
		return hit.Recipe(), nil
	}
	return recipe.Recipe{}, fmt.Errorf("recipe %s is not loaded, bookmarked or in the search results", id)
}

func (a *App) planRemove(ctx context.Context, args, _ []string) (string, error) {
	if len(args) != 1 {
		return "", ErrUsage
	}
	if err := a.store.RemoveRecipeFromMealPlan(ctx, args[0]); err != nil {
		return "", err
	}
	return renderMealPlan(a.store.MealPlan()), nil
}

func (a *App) assign(ctx context.Context, args, _ []string) (string, error) {
	if len(args) != 3 {
		return "", ErrUsage
	}
	if err := a.store.AssignRecipeToMeal(ctx, args[0], args[1], args[2]); err != nil {
		return "", err
	}
	return renderMealPlan(a.store.MealPlan()), nil
}

func (a *App) unassign(ctx context.Context, args, _ []string) (string, error) {
	if len(args) != 2 {
		return "", ErrUsage
	}
	if err := a.store.ClearMealFromSlot(ctx, args[0], args[1]); err != nil {
		return "", err
	}
	return renderMealPlan(a.store.MealPlan()), nil
}

func (a *App) planClear(ctx context.Context, _, _ []string) (string, error) {
	if err := a.store.ClearAllMealPlan(ctx); err != nil {
		return "", err
	}
	return renderMealPlan(a.store.MealPlan()), nil
}

func (a *App) planClose(ctx context.Context, _, _ []string) (string, error) {
	if err := a.store.SetMealPlanActive(ctx, false); err != nil {
		return "", err
	}
	return "Meal planner closed.", nil
}

func (a *App) shop(_ context.Context, _, _ []string) (string, error) {
	return renderShoppingList(a.store.ShoppingList()), nil
}

func (a *App) shopAdd(ctx context.Context, _, _ []string) (string, error) {
	if err := a.store.AddCurrentRecipeToShoppingList(ctx); err != nil {
		return "", err
	}
	return renderShoppingList(a.store.ShoppingList()), nil
}

func (a *App) shopWeek(ctx context.Context, _, _ []string) (string, error) {
	n, err := a.store.AddMealPlanToShoppingList(ctx)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "No planned meals to shop for.", nil
	}
	return renderShoppingList(a.store.ShoppingList()), nil
}

// itemID accepts either an item id or its 1-based position in the list.
func (a *App) itemID(arg string) (string, error) {
	list := a.store.ShoppingList()
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(list) {
			return "", fmt.Errorf("no shopping item number %d", n)
		}
		return list[n-1].ID, nil
	}
	return arg, nil
}

func (a *App) shopDelete(ctx context.Context, args, _ []string) (string, error) {
	if len(args) != 1 {
		return "", ErrUsage
	}
	id, err := a.itemID(args[0])
	if err != nil {
		return "", err
	}
	if err := a.store.DeleteShoppingItem(ctx, id); err != nil {
		return "", err
	}
	return renderShoppingList(a.store.ShoppingList()), nil
}

func (a *App) shopQuantity(ctx context.Context, args, _ []string) (string, error) {
	if len(args) != 2 {
		return "", ErrUsage
	}
	id, err := a.itemID(args[0])
	if err != nil {
		return "", err
	}
	q, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return "", ErrUsage
	}
	if err := a.store.UpdateShoppingItemQuantity(ctx, id, q); err != nil {
		return "", err
	}
	return renderShoppingList(a.store.ShoppingList()), nil
}

func (a *App) shopToggle(ctx context.Context, args, _ []string) (string, error) {
	if len(args) != 1 {
		return "", ErrUsage
	}
	id, err := a.itemID(args[0])
	if err != nil {
		return "", err
	}
	if err := a.store.ToggleShoppingItem(ctx, id); err != nil {
		return "", err
	}
	return renderShoppingList(a.store.ShoppingList()), nil
}

func (a *App) shopClear(ctx context.Context, _, _ []string) (string, error) {
	if err := a.store.ClearShoppingList(ctx); err != nil {
		return "", err
	}
	return renderShoppingList(a.store.ShoppingList()), nil
}

func (a *App) stats(ctx context.Context, _, _ []string) (string, error) {
	var usage []metrics.DailyUsage
	if a.metricsStore != nil {
		var err error
		usage, err = a.metricsStore.GetDailyUsage(ctx, 7)
		if err != nil {
			return "", fmt.Errorf("failed to fetch metrics: %w", err)
		}
	}
	return renderStats(usage, a.metricsStore != nil, metrics.GetSysHealth(a.dataPath)), nil
}

func (a *App) help(_ context.Context, _, _ []string) (string, error) {
	var sb strings.Builder
	sb.WriteString("Commands:\n")
	for _, name := range commandOrder {
		cmd := commands[name]
		fmt.Fprintf(&sb, "  %-34s %s\n", cmd.usage, cmd.help)
	}
	return sb.String(), nil
}

func intArg(args []string) (int, error) {
	if len(args) != 1 {
		return 0, ErrUsage
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, ErrUsage
	}
	return n, nil
}
