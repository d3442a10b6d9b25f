package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, html string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(html))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestExtractPrefersArticle(t *testing.T) {
	srv := serve(t, `<html><head><title>Our Bakery Blog</title></head><body>
		<nav>Home About Contact</nav>
		<article><h1>Sourdough week</h1><p>Every loaf this week is sourdough.</p></article>
		<footer>copyright</footer>
	</body></html>`)

	a, err := New().Extract(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Our Bakery Blog", a.Title)
	assert.Contains(t, a.Text, "Every loaf this week is sourdough.")
	assert.NotContains(t, a.Text, "Home About Contact")
	assert.NotContains(t, a.Text, "copyright")
}

func TestExtractStripsScriptsAndStyles(t *testing.T) {
	srv := serve(t, `<html><body>
		<script>var tracking = true;</script>
		<style>p { color: red }</style>
		<p>Visible paragraph.</p>
	</body></html>`)

	a, err := New().Extract(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, a.Text, "Visible paragraph.")
	assert.NotContains(t, a.Text, "tracking")
	assert.NotContains(t, a.Text, "color: red")
}

func TestExtractOpenGraphTitleWins(t *testing.T) {
	srv := serve(t, `<html><head>
		<title>site | page | seo junk</title>
		<meta property="og:title" content="Clean Page Title">
	</head><body><p>body text</p></body></html>`)

	a, err := New().Extract(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Clean Page Title", a.Title)
}

func TestExtractHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := New().Extract(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestExtractEmptyPage(t *testing.T) {
	srv := serve(t, `<html><body><script>only scripts</script></body></html>`)

	_, err := New().Extract(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestExtractTruncatesLongPages(t *testing.T) {
	srv := serve(t, "<html><body><p>"+strings.Repeat("words and more words. ", 2000)+"</p></body></html>")

	a, err := New().Extract(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(a.Text), maxTextLen)
}

func TestExtractTruncatesAtRuneBoundary(t *testing.T) {
	// Three-byte runes guarantee the byte cap lands mid-rune.
	srv := serve(t, "<html><body><p>"+strings.Repeat("☕", 4000)+"</p></body></html>")

	a, err := New().Extract(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(a.Text), maxTextLen)
	assert.True(t, utf8.ValidString(a.Text))
}

func TestCollapseWhitespace(t *testing.T) {
	got := collapseWhitespace("  first   line \n\n\n  second\tline  \n")
	assert.Equal(t, "first line\nsecond line", got)
}
