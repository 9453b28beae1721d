// Package wiki wraps the public Wikipedia APIs (action API for search and
// random pages, REST v1 for summaries and sections) as tools. No key is
// required.
package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hupe1980/agentacademy/core"
	"github.com/hupe1980/agentacademy/internal/util"
	"github.com/hupe1980/agentacademy/tool"
)

const (
	// DefaultRestBaseURL is the REST v1 API root of English Wikipedia.
	DefaultRestBaseURL = "https://en.wikipedia.org/api/rest_v1"
	// DefaultActionBaseURL is the classic action API endpoint.
	DefaultActionBaseURL = "https://en.wikipedia.org/w/api.php"

	userAgent = "AgentAcademy Wikipedia Toolkit/1.0"

	// DefaultSearchLimit is used when a caller does not specify a limit.
	DefaultSearchLimit = 5
)

// Options configure the Wikipedia client.
type Options struct {
	RestBaseURL   string
	ActionBaseURL string
	HTTPClient    *http.Client
}

// Client talks to the Wikipedia APIs.
type Client struct {
	restBaseURL   string
	actionBaseURL string
	httpClient    *http.Client
}

// NewClient constructs a Wikipedia client.
func NewClient(optFns ...func(o *Options)) *Client {
	opts := Options{
		RestBaseURL:   DefaultRestBaseURL,
		ActionBaseURL: DefaultActionBaseURL,
		HTTPClient:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Client{
		restBaseURL:   opts.RestBaseURL,
		actionBaseURL: opts.ActionBaseURL,
		httpClient:    opts.HTTPClient,
	}
}

// Tools returns the encyclopedia operations as tool values.
func (c *Client) Tools() []tool.Tool {
	return []tool.Tool{
		tool.NewFunctionTool("search_wikipedia", "Search Wikipedia articles.",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{"type": "string", "description": "Search query string"},
					"limit": map[string]any{
						"type":        "integer",
						"description": "Maximum number of results to return (default: 5)",
						"default":     DefaultSearchLimit,
					},
				},
				"required": []string{"query"},
			},
			func(tc *core.ToolContext, args map[string]any) (any, error) {
				limit := DefaultSearchLimit
				if v, ok := args["limit"].(float64); ok {
					limit = int(v)
				}
				return c.Search(tc.Context(), args["query"].(string), limit)
			}),
		tool.NewFunctionTool("get_wikipedia_summary", "Get a summary of a Wikipedia article.",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title": map[string]any{"type": "string", "description": "Title of the Wikipedia article"},
				},
				"required": []string{"title"},
			},
			func(tc *core.ToolContext, args map[string]any) (any, error) {
				return c.GetSummary(tc.Context(), args["title"].(string))
			}),
		tool.NewFunctionTool("get_wikipedia_content", "Get the content of a Wikipedia article or a specific section.",
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":   map[string]any{"type": "string", "description": "Title of the Wikipedia article"},
					"section": map[string]any{"type": "string", "description": "Optional section number or title"},
				},
				"required": []string{"title"},
			},
			func(tc *core.ToolContext, args map[string]any) (any, error) {
				section, _ := args["section"].(string)
				return c.GetContent(tc.Context(), args["title"].(string), section)
			}),
		tool.NewFunctionTool("get_random_wikipedia", "Get a random Wikipedia article summary.",
			map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
			func(tc *core.ToolContext, _ map[string]any) (any, error) {
				return c.GetRandom(tc.Context())
			}),
	}
}

// Search queries the action API full-text search.
func (c *Client) Search(ctx context.Context, query string, limit int) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("query must not be empty")
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("srlimit", strconv.Itoa(limit))
	params.Set("srprop", "snippet|titlesnippet|size|timestamp")

	var data struct {
		Query struct {
			Search []struct {
				Title   string `json:"title"`
				Snippet string `json:"snippet"`
				Size    int    `json:"size"`
			} `json:"search"`
		} `json:"query"`
	}
	if err := c.get(ctx, c.actionBaseURL+"?"+params.Encode(), &data); err != nil {
		return "", err
	}

	if len(data.Query.Search) == 0 {
		return "No Wikipedia articles found for: " + query, nil
	}

	blocks := make([]string, 0, len(data.Query.Search))
	for _, r := range data.Query.Search {
		blocks = append(blocks, fmt.Sprintf(`
Title: %s
Snippet: %s
Size: %d bytes
URL: https://en.wikipedia.org/wiki/%s
`, r.Title, util.CollapseWhitespace(stripTags(r.Snippet)), r.Size, strings.ReplaceAll(r.Title, " ", "_")))
	}

	return util.JoinBlocks(blocks), nil
}

// summaryResponse mirrors the REST v1 page summary payload.
type summaryResponse struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Extract     string `json:"extract"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
	Thumbnail *struct {
		Source string `json:"source"`
	} `json:"thumbnail"`
}

// GetSummary fetches the REST summary of an article. Disambiguation pages
// are reported, not followed.
func (c *Client) GetSummary(ctx context.Context, title string) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", fmt.Errorf("title must not be empty")
	}

	encodedTitle := strings.ReplaceAll(title, " ", "_")

	var data summaryResponse
	if err := c.get(ctx, c.restBaseURL+"/page/summary/"+url.PathEscape(encodedTitle), &data); err != nil {
		return "", err
	}

	if data.Type == "disambiguation" {
		return fmt.Sprintf("'%s' is a disambiguation page. Please be more specific with your search.", title), nil
	}

	if data.Extract == "" {
		return "No summary available for: " + title, nil
	}

	pageURL := data.ContentURLs.Desktop.Page
	if pageURL == "" {
		pageURL = "https://en.wikipedia.org/wiki/" + encodedTitle
	}

	resultTitle := data.Title
	if resultTitle == "" {
		resultTitle = title
	}

	result := fmt.Sprintf(`
Title: %s
Summary: %s
URL: %s
`, resultTitle, util.CollapseWhitespace(data.Extract), pageURL)

	if data.Thumbnail != nil && data.Thumbnail.Source != "" {
		result += "\nThumbnail: " + data.Thumbnail.Source
	}

	return result, nil
}

// GetContent returns a specific article section, or falls back to the
// summary when no section is requested (full page HTML would be too large
// for a tool result).
func (c *Client) GetContent(ctx context.Context, title, section string) (string, error) {
	if section == "" {
		return c.GetSummary(ctx, title)
	}

	if strings.TrimSpace(title) == "" {
		return "", fmt.Errorf("title must not be empty")
	}

	encodedTitle := strings.ReplaceAll(title, " ", "_")

	var data struct {
		Sections []struct {
			Line string `json:"line"`
			Text string `json:"text"`
		} `json:"sections"`
	}
	if err := c.get(ctx, c.restBaseURL+"/page/mobile-sections/"+url.PathEscape(encodedTitle), &data); err != nil {
		return "", err
	}

	if len(data.Sections) == 0 {
		return "No sections found for: " + title, nil
	}

	if num, err := strconv.Atoi(section); err == nil {
		if num < 0 || num >= len(data.Sections) {
			return fmt.Sprintf("Section %s not found. Article has %d sections.", section, len(data.Sections)), nil
		}
		sect := data.Sections[num]
		return fmt.Sprintf("Section %d: %s\n\n%s", num, orDefault(sect.Line, "Unknown"),
			util.CollapseWhitespace(stripTags(orDefault(sect.Text, "No content")))), nil
	}

	for _, sect := range data.Sections {
		if strings.Contains(strings.ToLower(sect.Line), strings.ToLower(section)) {
			return fmt.Sprintf("Section: %s\n\n%s", orDefault(sect.Line, "Unknown"),
				util.CollapseWhitespace(stripTags(orDefault(sect.Text, "No content")))), nil
		}
	}

	return fmt.Sprintf("Section '%s' not found.", section), nil
}

// GetRandom picks a random main-namespace article and returns its summary.
func (c *Client) GetRandom(ctx context.Context) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("list", "random")
	params.Set("rnnamespace", "0")
	params.Set("rnlimit", "1")

	var data struct {
		Query struct {
			Random []struct {
				Title string `json:"title"`
			} `json:"random"`
		} `json:"query"`
	}
	if err := c.get(ctx, c.actionBaseURL+"?"+params.Encode(), &data); err != nil {
		return "", err
	}

	if len(data.Query.Random) == 0 {
		return "Unable to fetch random article.", nil
	}

	return c.GetSummary(ctx, data.Query.Random[0].Title)
}

func (c *Client) get(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return tool.NewUpstreamError("wikipedia", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return tool.NewUpstreamError("wikipedia", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return tool.NewUpstreamError("wikipedia", fmt.Errorf("wikipedia returned %d for %s", resp.StatusCode, rawURL))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return tool.NewUpstreamError("wikipedia", fmt.Errorf("decode response: %w", err))
	}

	return nil
}

// stripTags removes the HTML markup Wikipedia embeds in snippets and section
// text. A simple state machine is enough for the tag soup the API returns.
func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
