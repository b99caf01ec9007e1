package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/samber/lo"

	apihttp "github.com/justchokingaround/cicidraci/internal/api/http"
	"github.com/justchokingaround/cicidraci/internal/config"
	"github.com/justchokingaround/cicidraci/pkg/types"
)

// Client talks to the drama catalog API
type Client struct {
	baseURL    string
	httpClient *apihttp.Client
	episodes   *EpisodeCache
	logger     *slog.Logger
}

// NewClient creates a new API client. A nil cfg uses config.Default().
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := apihttp.NewClient(apihttp.ClientConfig{
		Timeout:    cfg.API.Timeout,
		MaxRetries: cfg.API.MaxRetries,
		RateLimit:  cfg.API.RateLimit,
		UserAgent:  cfg.API.UserAgent,
		Debug:      cfg.Advanced.Debug,
		Logger:     logger,
	})

	return &Client{
		baseURL:    strings.TrimRight(cfg.API.BaseURL, "/"),
		httpClient: httpClient,
		episodes:   NewEpisodeCache(),
		logger:     logger.With("component", "api"),
	}
}

// Feed fetches one page of a category feed. A page <= 0 omits the page parameter.
func (c *Client) Feed(ctx context.Context, category types.Category, page int) (types.FeedPage, error) {
	if category == types.CategoryAll || !category.Valid() {
		return types.FeedPage{}, fmt.Errorf("unknown feed category %q", category)
	}

	params := map[string]string{}
	if page > 0 {
		params["page"] = strconv.Itoa(page)
	}

	body, err := c.get(ctx, "/"+category.String(), params)
	if err != nil {
		return types.FeedPage{}, fmt.Errorf("fetch %s feed: %w", category, err)
	}

	return c.decodePage(body)
}

// Search fetches titles matching query
func (c *Client) Search(ctx context.Context, query string) ([]types.Title, error) {
	body, err := c.get(ctx, "/search", map[string]string{"query": query})
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	return c.decodeTitles(body)
}

// Suggestions fetches search suggestions for a partial query
func (c *Client) Suggestions(ctx context.Context, query string) ([]string, error) {
	body, err := c.get(ctx, "/searchsuggestion", map[string]string{"query": query})
	if err != nil {
		return nil, fmt.Errorf("fetch suggestions: %w", err)
	}
	terms, err := decodeTerms(body)
	if err != nil {
		return nil, fmt.Errorf("fetch suggestions: %w", err)
	}
	return lo.Uniq(terms), nil
}

// PopularSearches fetches the popular search terms
func (c *Client) PopularSearches(ctx context.Context) ([]string, error) {
	body, err := c.get(ctx, "/"+types.CategoryPopularSearch.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch popular searches: %w", err)
	}
	terms, err := decodeTerms(body)
	if err != nil {
		return nil, fmt.Errorf("fetch popular searches: %w", err)
	}
	return lo.Uniq(terms), nil
}

// Episodes fetches every episode of a title, ordered by index. Lists are
// cached for the lifetime of the client.
func (c *Client) Episodes(ctx context.Context, titleID string) ([]types.Episode, error) {
	if titleID == "" {
		return nil, errors.New("title id is required")
	}
	if episodes, ok := c.episodes.Get(titleID); ok {
		c.logger.Debug("episodes from cache", "title", titleID, "count", len(episodes))
		return episodes, nil
	}

	body, err := c.get(ctx, "/allepisode", map[string]string{"bookId": titleID})
	if err != nil {
		return nil, fmt.Errorf("fetch episodes of %s: %w", titleID, err)
	}

	chapters, err := decodeList[Chapter](body)
	if err != nil {
		return nil, fmt.Errorf("fetch episodes of %s: %w", titleID, err)
	}

	episodes := ChaptersToEpisodes(chapters)
	c.episodes.Put(titleID, episodes)
	return episodes, nil
}

func (c *Client) decodeTitles(body []byte) ([]types.Title, error) {
	page, err := c.decodePage(body)
	return page.Titles, err
}

func (c *Client) decodePage(body []byte) (types.FeedPage, error) {
	raw, err := decodeItems(body)
	if err != nil {
		return types.FeedPage{}, err
	}
	titles := DramasToTitles(decodeEach[Drama](raw))
	return types.FeedPage{Titles: titles, Received: len(raw)}, nil
}

// get performs a GET request against the API and returns the body
func (c *Client) get(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	fullURL := c.baseURL + endpoint

	resp, err := c.httpClient.Get(ctx, fullURL, params)
	if err != nil {
		if resp != nil {
			var errorResp ErrorResponse
			if jsonErr := json.Unmarshal(resp.Body(), &errorResp); jsonErr == nil {
				if msg := lo.CoalesceOrEmpty(errorResp.Error, errorResp.Message); msg != "" {
					return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode(), msg)
				}
			}
			return nil, fmt.Errorf("API error: HTTP %d", resp.StatusCode())
		}
		return nil, err
	}

	c.logger.Debug("api response", "endpoint", endpoint, "bytes", len(resp.Body()))
	return resp.Body(), nil
}
