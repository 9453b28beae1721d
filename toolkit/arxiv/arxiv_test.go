package arxiv

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedPayload = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2301.00001v1</id>
    <title>  Attention Is Not All You Need  </title>
    <summary>` + "A long summary. " + `</summary>
    <published>2023-01-02T10:00:00Z</published>
    <author><name>Ada Lovelace</name></author>
    <author><name>Alan Turing</name></author>
    <category term="cs.AI"/>
    <category term="cs.LG"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2301.00002v2</id>
    <title>Second Paper</title>
    <summary>Short.</summary>
    <published>2023-01-03T10:00:00Z</published>
    <author><name>Grace Hopper</name></author>
    <category term="math.CO"/>
  </entry>
</feed>`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(func(o *Options) {
		o.BaseURL = srv.URL
		o.HTTPClient = srv.Client()
	})
}

func TestSearchPapers(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "all:transformers", q.Get("search_query"))
		assert.Equal(t, "relevance", q.Get("sortBy"))
		assert.Equal(t, "descending", q.Get("sortOrder"))
		assert.Equal(t, "2", q.Get("max_results"))
		w.Write([]byte(feedPayload))
	})

	out, err := client.SearchPapers(context.Background(), "transformers", 2)
	require.NoError(t, err)

	assert.Contains(t, out, "Title: Attention Is Not All You Need")
	assert.Contains(t, out, "Authors: Ada Lovelace, Alan Turing")
	assert.Contains(t, out, "ArXiv ID: 2301.00001v1")
	assert.Contains(t, out, "Published: 2023-01-02")
	assert.Contains(t, out, "Categories: cs.AI, cs.LG")
	assert.Contains(t, out, "\n---\n")
	assert.Contains(t, out, "Title: Second Paper")
}

func TestSearchByAuthor(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "au:Hopper", q.Get("search_query"))
		assert.Equal(t, "submittedDate", q.Get("sortBy"))
		w.Write([]byte(feedPayload))
	})

	out, err := client.SearchByAuthor(context.Background(), "Hopper", 5)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Papers by Hopper:"))
}

func TestSearchByCategory(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "cat:cs.AI", q.Get("search_query"))
		assert.Equal(t, "submittedDate", q.Get("sortBy"))
		w.Write([]byte(feedPayload))
	})

	out, err := client.SearchByCategory(context.Background(), "cs.AI", 5)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Recent papers in cs.AI:"))
}

func TestSummaryTruncation(t *testing.T) {
	long := strings.Repeat("x", 600)
	payload := `<?xml version="1.0"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/1</id>
    <title>T</title>
    <summary>` + long + `</summary>
  </entry>
</feed>`

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	})

	out, err := client.SearchPapers(context.Background(), "q", 1)
	require.NoError(t, err)
	assert.Contains(t, out, strings.Repeat("x", 500)+"...")
	assert.NotContains(t, out, strings.Repeat("x", 501))
	assert.Contains(t, out, "Published: Unknown")
}

func TestEmptyFeed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<?xml version="1.0"?><feed xmlns="http://www.w3.org/2005/Atom"></feed>`))
	})

	out, err := client.SearchPapers(context.Background(), "nothing", 5)
	require.NoError(t, err)
	assert.Equal(t, "No papers found.", out)

	out, err = client.SearchByAuthor(context.Background(), "Nobody", 5)
	require.NoError(t, err)
	assert.Equal(t, "No papers found for author: Nobody", out)
}

func TestEmptyTermRejected(t *testing.T) {
	client := NewClient()

	_, err := client.SearchPapers(context.Background(), "  ", 5)
	require.Error(t, err)
}

func TestMalformedFeed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not xml"))
	})

	_, err := client.SearchPapers(context.Background(), "q", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UPSTREAM_ERROR")
}

func TestTools(t *testing.T) {
	client := NewClient()
	tools := client.Tools()
	require.Len(t, tools, 3)
	assert.Equal(t, "search_papers", tools[0].Name())
	assert.Equal(t, "search_by_author", tools[1].Name())
	assert.Equal(t, "search_by_category", tools[2].Name())
}
