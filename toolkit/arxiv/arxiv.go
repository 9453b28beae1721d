// Package arxiv wraps the arXiv Atom query API as tools. The arXiv API is
// open; no key is required.
package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hupe1980/agentacademy/core"
	"github.com/hupe1980/agentacademy/internal/util"
	"github.com/hupe1980/agentacademy/tool"
)

// DefaultBaseURL is the arXiv export query endpoint.
const DefaultBaseURL = "http://export.arxiv.org/api/query"

// DefaultMaxResults is used when a caller does not specify max_results.
const DefaultMaxResults = 5

const summaryLimit = 500

// Options configure the arXiv client.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Client queries the arXiv Atom API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs an arXiv client.
func NewClient(optFns ...func(o *Options)) *Client {
	opts := Options{
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Client{baseURL: opts.BaseURL, httpClient: opts.HTTPClient}
}

// Tools returns the paper search operations as tool values.
func (c *Client) Tools() []tool.Tool {
	params := func(field, desc string) map[string]any {
		return map[string]any{
			"type": "object",
			"properties": map[string]any{
				field: map[string]any{"type": "string", "description": desc},
				"max_results": map[string]any{
					"type":        "integer",
					"description": "Maximum number of results to return (default: 5)",
					"default":     DefaultMaxResults,
				},
			},
			"required": []string{field},
		}
	}

	return []tool.Tool{
		tool.NewFunctionTool("search_papers", "Search for research papers on arXiv.",
			params("query", "Search query string"),
			func(tc *core.ToolContext, args map[string]any) (any, error) {
				return c.SearchPapers(tc.Context(), args["query"].(string), maxResultsArg(args))
			}),
		tool.NewFunctionTool("search_by_author", "Search for papers by a specific author.",
			params("author", "Author name to search for"),
			func(tc *core.ToolContext, args map[string]any) (any, error) {
				return c.SearchByAuthor(tc.Context(), args["author"].(string), maxResultsArg(args))
			}),
		tool.NewFunctionTool("search_by_category", "Search for papers in a specific arXiv category.",
			params("category", "arXiv category (e.g. cs.AI, math.CO, physics.gen-ph)"),
			func(tc *core.ToolContext, args map[string]any) (any, error) {
				return c.SearchByCategory(tc.Context(), args["category"].(string), maxResultsArg(args))
			}),
	}
}

// SearchPapers performs a free-text search sorted by relevance.
func (c *Client) SearchPapers(ctx context.Context, query string, maxResults int) (string, error) {
	papers, err := c.query(ctx, "all", query, "relevance", maxResults)
	if err != nil {
		return "", err
	}

	if len(papers) == 0 {
		return "No papers found.", nil
	}

	return util.JoinBlocks(formatPapers(papers)), nil
}

// SearchByAuthor returns an author's most recently submitted papers.
func (c *Client) SearchByAuthor(ctx context.Context, author string, maxResults int) (string, error) {
	papers, err := c.query(ctx, "au", author, "submittedDate", maxResults)
	if err != nil {
		return "", err
	}

	if len(papers) == 0 {
		return "No papers found for author: " + author, nil
	}

	return fmt.Sprintf("Papers by %s:\n\n%s", author, util.JoinBlocks(formatPapers(papers))), nil
}

// SearchByCategory returns the most recently submitted papers in a category.
func (c *Client) SearchByCategory(ctx context.Context, category string, maxResults int) (string, error) {
	papers, err := c.query(ctx, "cat", category, "submittedDate", maxResults)
	if err != nil {
		return "", err
	}

	if len(papers) == 0 {
		return "No papers found in category: " + category, nil
	}

	return fmt.Sprintf("Recent papers in %s:\n\n%s", category, util.JoinBlocks(formatPapers(papers))), nil
}

// Paper holds the fields extracted from an Atom entry.
type Paper struct {
	Title      string
	Authors    string
	Summary    string
	Published  string
	URL        string
	ArxivID    string
	Categories string
}

// atomFeed mirrors the subset of the Atom schema returned by the query API.
type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title     string `xml:"title"`
	Summary   string `xml:"summary"`
	Published string `xml:"published"`
	ID        string `xml:"id"`
	Authors   []struct {
		Name string `xml:"name"`
	} `xml:"author"`
	Categories []struct {
		Term string `xml:"term,attr"`
	} `xml:"category"`
}

func (c *Client) query(ctx context.Context, prefix, term, sortBy string, maxResults int) ([]Paper, error) {
	if strings.TrimSpace(term) == "" {
		return nil, fmt.Errorf("search term must not be empty")
	}

	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	params := url.Values{}
	params.Set("search_query", prefix+":"+term)
	params.Set("start", "0")
	params.Set("max_results", strconv.Itoa(maxResults))
	params.Set("sortBy", sortBy)
	params.Set("sortOrder", "descending")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, tool.NewUpstreamError("arxiv", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, tool.NewUpstreamError("arxiv", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, tool.NewUpstreamError("arxiv", fmt.Errorf("arxiv returned %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, tool.NewUpstreamError("arxiv", err)
	}

	return parseFeed(body)
}

func parseFeed(data []byte) ([]Paper, error) {
	var feed atomFeed
	if err := xml.Unmarshal(data, &feed); err != nil {
		return nil, tool.NewUpstreamError("arxiv", fmt.Errorf("failed to parse feed: %w", err))
	}

	papers := make([]Paper, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		var names []string
		for _, a := range e.Authors {
			if a.Name != "" {
				names = append(names, a.Name)
			}
		}

		var cats []string
		for _, cat := range e.Categories {
			if cat.Term != "" {
				cats = append(cats, cat.Term)
			}
		}

		papers = append(papers, Paper{
			Title:      orDefault(strings.TrimSpace(e.Title), "No title"),
			Authors:    orDefault(strings.Join(names, ", "), "No authors"),
			Summary:    orDefault(strings.TrimSpace(e.Summary), "No summary"),
			Published:  formatPublished(e.Published),
			URL:        orDefault(e.ID, "No URL"),
			ArxivID:    idFromURL(e.ID),
			Categories: orDefault(strings.Join(cats, ", "), "No categories"),
		})
	}

	return papers, nil
}

func formatPapers(papers []Paper) []string {
	blocks := make([]string, 0, len(papers))
	for _, p := range papers {
		blocks = append(blocks, fmt.Sprintf(`
Title: %s
Authors: %s
ArXiv ID: %s
Published: %s
Categories: %s
URL: %s
Summary: %s
`, p.Title, p.Authors, p.ArxivID, p.Published, p.Categories, p.URL, util.Truncate(p.Summary, summaryLimit)))
	}
	return blocks
}

func formatPublished(published string) string {
	if published == "" {
		return "Unknown"
	}
	if ts, err := time.Parse(time.RFC3339, published); err == nil {
		return ts.Format("2006-01-02")
	}
	return published
}

func idFromURL(id string) string {
	if id == "" {
		return "Unknown"
	}
	parts := strings.Split(id, "/")
	return parts[len(parts)-1]
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func maxResultsArg(args map[string]any) int {
	if v, ok := args["max_results"].(float64); ok {
		return int(v)
	}
	return DefaultMaxResults
}
