package clipper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultServings is used when a page does not state a yield.
const DefaultServings = 4

// ErrNoRecipe is returned when a page carries neither recipe markup nor a title.
var ErrNoRecipe = errors.New("no recipe found on page")

// Clipper handles fetching recipe pages and turning them into upload forms.
type Clipper struct {
	httpClient *http.Client
}

// NewClipper creates a new Clipper. A nil client gets a 15 second timeout.
func NewClipper(httpClient *http.Client) *Clipper {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Clipper{httpClient: httpClient}
}

// ClipURL fetches a recipe page and returns upload form fields for it.
//
// The first schema.org Recipe found in the page's JSON-LD blocks wins. Pages
// without one fall back to their Open Graph title and image, with no
// ingredients.
func (c *Clipper) ClipURL(ctx context.Context, pageURL string) (map[string]string, error) {
	doc, err := c.fetchDocument(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content: %w", err)
	}

	fields := map[string]string{
		"sourceUrl":   pageURL,
		"servings":    strconv.Itoa(DefaultServings),
		"cookingTime": "0",
		"publisher":   siteName(doc, pageURL),
	}

	if ld, ok := findRecipeLD(doc); ok {
		fillFromLD(fields, ld)
	}
	if fields["title"] == "" {
		fields["title"] = metaContent(doc, "og:title")
	}
	if fields["title"] == "" {
		fields["title"] = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if fields["image"] == "" {
		fields["image"] = metaContent(doc, "og:image")
	}
	if fields["title"] == "" {
		return nil, fmt.Errorf("%s: %w", pageURL, ErrNoRecipe)
	}
	return fields, nil
}

func (c *Clipper) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

func metaContent(doc *goquery.Document, property string) string {
	sel := doc.Find(fmt.Sprintf(`meta[property=%q], meta[name=%q]`, property, property)).First()
	v, _ := sel.Attr("content")
	return strings.TrimSpace(v)
}

func siteName(doc *goquery.Document, pageURL string) string {
	if name := metaContent(doc, "og:site_name"); name != "" {
		return name
	}
	if u, err := url.Parse(pageURL); err == nil {
		return strings.TrimPrefix(u.Hostname(), "www.")
	}
	return ""
}

// findRecipeLD scans JSON-LD blocks for a node typed Recipe, descending into
// arrays and @graph containers. Unparseable blocks are skipped.
func findRecipeLD(doc *goquery.Document) (map[string]any, bool) {
	var found map[string]any
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var v any
		if err := json.Unmarshal([]byte(s.Text()), &v); err != nil {
			return true
		}
		if node, ok := searchRecipe(v); ok {
			found = node
			return false
		}
		return true
	})
	return found, found != nil
}

func searchRecipe(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if node, ok := searchRecipe(item); ok {
				return node, true
			}
		}
	case map[string]any:
		if isRecipe(t["@type"]) {
			return t, true
		}
		if graph, ok := t["@graph"]; ok {
			return searchRecipe(graph)
		}
	}
	return nil, false
}

func isRecipe(typ any) bool {
	switch t := typ.(type) {
	case string:
		return t == "Recipe"
	case []any:
		for _, v := range t {
			if s, ok := v.(string); ok && s == "Recipe" {
				return true
			}
		}
	}
	return false
}

func fillFromLD(fields map[string]string, ld map[string]any) {
	fields["title"] = strings.TrimSpace(text(ld["name"]))
	fields["image"] = imageURL(ld["image"])
	if author := personName(ld["author"]); author != "" {
		fields["publisher"] = author
	}
	if n, ok := servingsFromYield(ld["recipeYield"]); ok {
		fields["servings"] = strconv.Itoa(n)
	}
	if m, ok := minutes(ld["totalTime"]); ok {
		fields["cookingTime"] = strconv.Itoa(m)
	} else {
		prep, _ := minutes(ld["prepTime"])
		cook, _ := minutes(ld["cookTime"])
		fields["cookingTime"] = strconv.Itoa(prep + cook)
	}

	lines, _ := ld["recipeIngredient"].([]any)
	n := 0
	for _, l := range lines {
		line := strings.TrimSpace(text(l))
		if line == "" {
			continue
		}
		n++
		fields[fmt.Sprintf("ingredient-%d", n)] = SplitIngredient(line)
	}
}

func text(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

// imageURL accepts a URL string, an ImageObject or a list of either.
func imageURL(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		return text(t["url"])
	case []any:
		if len(t) > 0 {
			return imageURL(t[0])
		}
	}
	return ""
}

func personName(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		return text(t["name"])
	case []any:
		if len(t) > 0 {
			return personName(t[0])
		}
	}
	return ""
}

var leadingInt = regexp.MustCompile(`\d+`)

func servingsFromYield(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		if t >= 1 {
			return int(t), true
		}
	case string:
		if m := leadingInt.FindString(t); m != "" {
			n, err := strconv.Atoi(m)
			if err == nil && n > 0 {
				return n, true
			}
		}
	case []any:
		for _, item := range t {
			if n, ok := servingsFromYield(item); ok {
				return n, true
			}
		}
	}
	return 0, false
}

var isoDuration = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:\d+(?:\.\d+)?S)?)?$`)

// minutes converts an ISO 8601 duration such as "PT1H30M" to whole minutes.
func minutes(v any) (int, bool) {
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	m := isoDuration.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(s)))
	if m == nil {
		return 0, false
	}
	total := 0
	for i, mult := range []int{24 * 60, 60, 1} {
		if m[i+1] == "" {
			continue
		}
		n, _ := strconv.Atoi(m[i+1])
		total += n * mult
	}
	return total, true
}
