package forkify

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"recipe-book/internal/config"
	"recipe-book/internal/recipe"

	"github.com/golang-jwt/jwt/v5"
)

// Client is the remote recipe gateway.
type Client interface {
	FetchRecipe(ctx context.Context, id string) (recipe.WireRecipe, error)
	SearchRecipes(ctx context.Context, query string) ([]recipe.WireRecipe, error)
	SubmitRecipe(ctx context.Context, payload recipe.WireRecipe) (recipe.WireRecipe, error)
}

// Observer is told about every completed API call.
type Observer func(op string, latency time.Duration, err error)

// Option customises the client.
type Option func(*forkifyClient)

// WithObserver registers a callback invoked after each call.
func WithObserver(o Observer) Option {
	return func(c *forkifyClient) { c.observe = o }
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *forkifyClient) { c.httpClient = hc }
}

type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Recipe  *recipe.WireRecipe  `json:"recipe"`
		Recipes []recipe.WireRecipe `json:"recipes"`
	} `json:"data"`
}

// forkifyClient is the concrete implementation of the recipe API client.
type forkifyClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	adminKey   string
	observe    Observer
}

// NewClient creates a new recipe API client.
func NewClient(cfg *config.Config, opts ...Option) Client {
	base := cfg.ForkifyAPIURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	c := &forkifyClient{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:    base,
		apiKey:     cfg.ForkifyAPIKey,
		adminKey:   cfg.ForkifyAdminKey,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// FetchRecipe fetches one full recipe by id.
func (c *forkifyClient) FetchRecipe(ctx context.Context, id string) (recipe.WireRecipe, error) {
	endpoint := c.baseURL + url.PathEscape(id)

	var env envelope
	if err := c.do(ctx, "fetch recipe", http.MethodGet, endpoint, url.Values{}, nil, &env); err != nil {
		return recipe.WireRecipe{}, err
	}
	if env.Data.Recipe == nil {
		return recipe.WireRecipe{}, &FetchError{Op: "fetch recipe", URL: endpoint, Err: errors.New("response has no recipe")}
	}
	return *env.Data.Recipe, nil
}

// SearchRecipes returns every hit for a free text query.
func (c *forkifyClient) SearchRecipes(ctx context.Context, query string) ([]recipe.WireRecipe, error) {
	params := url.Values{}
	params.Set("search", query)

	var env envelope
	if err := c.do(ctx, "search recipes", http.MethodGet, c.baseURL, params, nil, &env); err != nil {
		return nil, err
	}
	return env.Data.Recipes, nil
}

// SubmitRecipe stores a new recipe and returns the record with its assigned id.
func (c *forkifyClient) SubmitRecipe(ctx context.Context, payload recipe.WireRecipe) (recipe.WireRecipe, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return recipe.WireRecipe{}, &FetchError{Op: "submit recipe", URL: c.baseURL, Err: fmt.Errorf("failed to marshal payload: %w", err)}
	}

	var env envelope
	if err := c.do(ctx, "submit recipe", http.MethodPost, c.baseURL, url.Values{}, body, &env); err != nil {
		return recipe.WireRecipe{}, err
	}
	if env.Data.Recipe == nil {
		return recipe.WireRecipe{}, &FetchError{Op: "submit recipe", URL: c.baseURL, Err: errors.New("no recipe returned from api")}
	}
	return *env.Data.Recipe, nil
}

func (c *forkifyClient) do(ctx context.Context, op, method, endpoint string, params url.Values, body []byte, out *envelope) (err error) {
	start := time.Now()
	defer func() {
		if c.observe != nil {
			c.observe(op, time.Since(start), err)
		}
	}()

	params.Set("key", c.apiKey)
	fullURL := endpoint + "?" + params.Encode()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return &FetchError{Op: op, URL: endpoint, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		if c.adminKey != "" {
			token, err := c.createAdminToken()
			if err != nil {
				return &FetchError{Op: op, URL: endpoint, Err: fmt.Errorf("failed to create admin token: %w", err)}
			}
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &FetchError{Op: op, URL: endpoint, Err: fmt.Errorf("failed to execute request: %w", err)}
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &FetchError{Op: op, URL: endpoint, StatusCode: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
		}
		return &FetchError{Op: op, URL: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || out.Status == "fail" || out.Status == "error" {
		msg := out.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &FetchError{Op: op, URL: endpoint, StatusCode: resp.StatusCode, Err: errors.New(msg)}
	}
	return nil
}

// createAdminToken generates a short-lived JWT for write requests.
func (c *forkifyClient) createAdminToken() (string, error) {
	id, secretHex, ok := strings.Cut(c.adminKey, ":")
	if !ok {
		return "", fmt.Errorf("invalid admin key format: expected id:secret")
	}

	secret, err := hex.DecodeString(secretHex)
	if err != nil {
		return "", fmt.Errorf("failed to decode secret hex: %w", err)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(5 * time.Minute).Unix(),
		"aud": "/recipes/",
	})
	token.Header["kid"] = id

	return token.SignedString(secret)
}
