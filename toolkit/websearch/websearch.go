// Package websearch wraps the Tavily search API as tools via
// github.com/diverged/tavily-go. Requires a TAVILY_API_KEY.
package websearch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	tavilygo "github.com/diverged/tavily-go"
	tavilyclient "github.com/diverged/tavily-go/client"
	tavilymodels "github.com/diverged/tavily-go/models"
	"github.com/hupe1980/agentacademy/core"
	"github.com/hupe1980/agentacademy/internal/util"
	"github.com/hupe1980/agentacademy/tool"
)

const (
	// DefaultMaxResults is used when a caller does not specify max_results.
	DefaultMaxResults = 5
	// MaxResultsCap bounds max_results regardless of what the caller asks for.
	MaxResultsCap = 20
	// newsWindowDays restricts news searches to the most recent week.
	newsWindowDays = 7
)

// Options configure the web search client.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Client performs web and news searches against Tavily.
type Client struct {
	tavily *tavilyclient.TavilyClient
	apiKey string
}

// newsSearchRequest carries the windowing field the Tavily API accepts but
// the client library's request struct does not model, so news searches post
// the extended payload directly.
type newsSearchRequest struct {
	tavilymodels.SearchRequest
	APIKey string `json:"api_key"`
	Days   int    `json:"days"`
}

// NewClient constructs a search client.
func NewClient(apiKey string, optFns ...func(o *Options)) *Client {
	opts := Options{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	tc := tavilygo.NewClient(apiKey)
	if opts.BaseURL != "" {
		tc.BaseURL = opts.BaseURL
	}
	if opts.HTTPClient != nil {
		tc.HTTPClient = opts.HTTPClient
	}

	return &Client{tavily: tc, apiKey: apiKey}
}

// Tools returns the search operations as tool values.
func (c *Client) Tools() []tool.Tool {
	searchParams := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{"type": "string", "description": "Search query string"},
			"max_results": map[string]any{
				"type":        "integer",
				"description": "Maximum number of results to return (default: 5)",
				"default":     DefaultMaxResults,
			},
		},
		"required": []string{"query"},
	}

	return []tool.Tool{
		tool.NewFunctionTool("search", "Search the web using the Tavily API.", searchParams,
			func(_ *core.ToolContext, args map[string]any) (any, error) {
				return c.Search(args["query"].(string), maxResultsArg(args))
			}),
		tool.NewFunctionTool("search_news", "Search for recent news articles using the Tavily API.", searchParams,
			func(_ *core.ToolContext, args map[string]any) (any, error) {
				return c.SearchNews(args["query"].(string), maxResultsArg(args))
			}),
	}
}

// Search performs a basic-depth web search and prefixes the aggregated
// answer when Tavily provides one.
func (c *Client) Search(query string, maxResults int) (string, error) {
	resp, err := c.doSearch(query, maxResults, false)
	if err != nil {
		return "", err
	}

	if len(resp.Results) == 0 {
		return "No search results found.", nil
	}

	formatted := formatResults(resp.Results)
	if resp.Answer != "" {
		return fmt.Sprintf("Answer: %s\n\nSearch Results:\n%s", resp.Answer, formatted), nil
	}

	return "Search Results:\n" + formatted, nil
}

// SearchNews performs a news search over the last 7 days.
func (c *Client) SearchNews(query string, maxResults int) (string, error) {
	resp, err := c.doSearch(query, maxResults, true)
	if err != nil {
		return "", err
	}

	if len(resp.Results) == 0 {
		return "No news results found.", nil
	}

	formatted := formatResults(resp.Results)
	if resp.Answer != "" {
		return fmt.Sprintf("News Summary: %s\n\nNews Results:\n%s", resp.Answer, formatted), nil
	}

	return "News Results:\n" + formatted, nil
}

func (c *Client) doSearch(query string, maxResults int, news bool) (*tavilymodels.SearchResponse, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query must not be empty")
	}

	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if maxResults > MaxResultsCap {
		maxResults = MaxResultsCap
	}

	req := tavilymodels.SearchRequest{
		Query:         query,
		SearchDepth:   "basic",
		IncludeAnswer: true,
		MaxResults:    maxResults,
	}
	if news {
		req.Topic = "news"
		return c.postNewsSearch(req)
	}

	resp, err := tavilygo.Search(c.tavily, req)
	if err != nil {
		return nil, tool.NewUpstreamError("websearch", err)
	}

	return resp, nil
}

func (c *Client) postNewsSearch(req tavilymodels.SearchRequest) (*tavilymodels.SearchResponse, error) {
	body, err := json.Marshal(newsSearchRequest{
		SearchRequest: req,
		APIKey:        c.apiKey,
		Days:          newsWindowDays,
	})
	if err != nil {
		return nil, tool.NewUpstreamError("websearch", err)
	}

	httpReq, err := http.NewRequest(http.MethodPost,
		strings.TrimRight(c.tavily.BaseURL, "/")+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, tool.NewUpstreamError("websearch", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.tavily.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, tool.NewUpstreamError("websearch", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, tool.NewUpstreamError("websearch",
			fmt.Errorf("unexpected status %d from news search", httpResp.StatusCode))
	}

	var resp tavilymodels.SearchResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, tool.NewUpstreamError("websearch", err)
	}

	return &resp, nil
}

func formatResults(results []tavilymodels.SearchResult) string {
	blocks := make([]string, 0, len(results))
	for _, r := range results {
		blocks = append(blocks, fmt.Sprintf(`
Title: %s
URL: %s
Content: %s
Score: %v
`, orDefault(r.Title, "No title"), orDefault(r.URL, "No URL"), orDefault(r.Content, "No content available"), r.Score))
	}
	return util.JoinBlocks(blocks)
}

func maxResultsArg(args map[string]any) int {
	if v, ok := args["max_results"].(float64); ok {
		return int(v)
	}
	return DefaultMaxResults
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
