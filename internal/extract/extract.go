// Package extract pulls readable article text out of a web page, so a URL
// can be dropped into a canvas as auxiliary source material.
package extract

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// maxTextLen bounds extracted text; model context is small and anything
// beyond this is noise for prompt building.
const maxTextLen = 8000

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko)"

// Article is the readable content of a fetched page.
type Article struct {
	URL   string
	Title string
	Text  string
}

// Extractor fetches pages and strips them down to readable text.
type Extractor struct {
	client *http.Client
}

func New() *Extractor {
	return &Extractor{
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Extract fetches rawURL and returns its title and main text content.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch page: HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	doc.Find("script, style, noscript, nav, header, footer, aside, form, iframe").Remove()

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && og != "" {
		title = strings.TrimSpace(og)
	}

	text := collapseWhitespace(contentRoot(doc).Text())
	if text == "" {
		return nil, fmt.Errorf("no readable text at %s", rawURL)
	}
	if len(text) > maxTextLen {
		cut := maxTextLen
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}

	return &Article{URL: rawURL, Title: title, Text: text}, nil
}

// contentRoot picks the most article-like container on the page.
func contentRoot(doc *goquery.Document) *goquery.Selection {
	for _, sel := range []string{"article", "main", `[role="main"]`, "#content", ".post-content"} {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return s
		}
	}
	return doc.Find("body")
}

// collapseWhitespace flattens runs of whitespace, keeping paragraph breaks.
func collapseWhitespace(s string) string {
	var b strings.Builder
	for _, line := range strings.Split(s, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(line)
	}
	return b.String()
}
