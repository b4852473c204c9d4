package analyzer

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/montanaflynn/stats"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"webPageProbeGO/internal/models"
)

// securityHeaders are the response headers counted by SecurityHeaderCount
var securityHeaders = []string{
	"X-Frame-Options",
	"X-Content-Type-Options",
	"X-XSS-Protection",
	"Strict-Transport-Security",
	"Content-Security-Policy",
	"Referrer-Policy",
}

// cacheHeaders are the response headers counted by CacheHeaderCount
var cacheHeaders = []string{"Cache-Control", "Expires", "ETag", "Last-Modified"}

const semanticSelector = "nav, main, article, section, aside, header, footer"

// ParseDocument decodes the body to UTF-8 using the declared charset and parses it
func ParseDocument(resp *Response) (*html.Node, error) {
	reader, err := charset.NewReader(bytes.NewReader(resp.Body), resp.Header.Get("Content-Type"))
	if err != nil {
		reader = bytes.NewReader(resp.Body)
	}

	root, err := html.Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return root, nil
}

// Extract computes the page-level metrics of a fetched document.
// Timing, status and repetition fields are left for the caller.
func Extract(root *html.Node, resp *Response) models.SampleResult {
	doc := goquery.NewDocumentFromNode(root)
	textLength := utf8.RuneCountInString(doc.Text())

	title := "Untitled"
	if sel := doc.Find("title").First(); sel.Length() > 0 {
		title = sel.Text()
	}

	return models.SampleResult{
		CharCount:            textLength,
		NumTags:              countSourceTags(resp.Body),
		Title:                title,
		PerformanceMetrics:   performanceMetrics(doc, resp, textLength),
		SEOMetrics:           seoMetrics(doc),
		SecurityMetrics:      securityMetrics(resp),
		AccessibilityMetrics: accessibilityMetrics(doc),
		ServerMetadata:       serverMetadata(resp.Header),
	}
}

func performanceMetrics(doc *goquery.Document, resp *Response, textLength int) models.PerformanceMetrics {
	images := doc.Find("img")
	scripts := doc.Find("script")

	external := 0
	countExternal := func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok && (strings.HasPrefix(src, "http") || strings.HasPrefix(src, "//")) {
			external++
		}
	}
	images.Each(countExternal)
	scripts.Each(countExternal)

	inlineScripts := 0
	scripts.Each(func(_ int, s *goquery.Selection) {
		if src, _ := s.Attr("src"); src == "" {
			inlineScripts++
		}
	})

	var ratio float64
	if len(resp.Body) > 0 {
		ratio = round(float64(textLength)/float64(len(resp.Body))*100, 2)
	}

	return models.PerformanceMetrics{
		CompressionRatio:  ratio,
		ImageCount:        images.Length(),
		ScriptCount:       scripts.Length(),
		CSSCount:          doc.Find(`link[rel~="stylesheet"]`).Length(),
		ExternalResources: external,
		InlineStyles:      doc.Find("style").Length(),
		InlineScripts:     inlineScripts,
		GzipEnabled:       strings.Contains(strings.ToLower(resp.Header.Get("Content-Encoding")), "gzip"),
		RedirectCount:     resp.RedirectCount,
	}
}

func seoMetrics(doc *goquery.Document) models.SEOMetrics {
	return models.SEOMetrics{
		MetaDescription:  optionalAttr(doc.Find(`meta[name="description"]`), "content"),
		MetaKeywords:     optionalAttr(doc.Find(`meta[name="keywords"]`), "content"),
		CanonicalURL:     optionalAttr(doc.Find(`link[rel~="canonical"]`), "href"),
		RobotsMeta:       optionalAttr(doc.Find(`meta[name="robots"]`), "content"),
		H1Count:          doc.Find("h1").Length(),
		H2Count:          doc.Find("h2").Length(),
		H3Count:          doc.Find("h3").Length(),
		OGTagCount:       doc.Find(`meta[property^="og:"]`).Length(),
		TwitterCardCount: doc.Find(`meta[name^="twitter:"]`).Length(),
	}
}

func securityMetrics(resp *Response) models.SecurityMetrics {
	present := 0
	for _, h := range securityHeaders {
		if hasHeader(resp.Header, h) {
			present++
		}
	}

	https := resp.FinalURL != nil && resp.FinalURL.Scheme == "https"
	grade := models.SSLGradeF
	if https {
		grade = models.SSLGradeA
	}

	return models.SecurityMetrics{
		HTTPSEnabled:                 https,
		SecurityHeaderCount:          present,
		SSLGrade:                     grade,
		XSSProtection:                hasHeader(resp.Header, "X-XSS-Protection"),
		ContentSecurityPolicyPresent: hasHeader(resp.Header, "Content-Security-Policy"),
	}
}

func accessibilityMetrics(doc *goquery.Document) models.AccessibilityMetrics {
	images := doc.Find("img")
	total := images.Length()
	withAlt := images.FilterFunction(func(_ int, s *goquery.Selection) bool {
		alt, _ := s.Attr("alt")
		return alt != ""
	}).Length()

	var ratio float64
	summary := "0/0 (0%)"
	if total > 0 {
		ratio = float64(withAlt) / float64(total)
		pct := strconv.FormatFloat(round(ratio*100, 1), 'f', 1, 64)
		summary = fmt.Sprintf("%d/%d (%s%%)", withAlt, total, pct)
	}

	colorStyles := doc.Find("[style]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		style, _ := s.Attr("style")
		return strings.Contains(style, "color:")
	}).Length()

	return models.AccessibilityMetrics{
		ImagesWithAltRatio:    round(ratio, 4),
		AltTextImages:         summary,
		FormLabelCount:        doc.Find("label").Length(),
		AriaLabelCount:        doc.Find("[aria-label]").Length(),
		SemanticElementCount:  doc.Find(semanticSelector).Length(),
		InlineColorStyleCount: colorStyles,
	}
}

func serverMetadata(h http.Header) models.ServerMetadata {
	cached := 0
	for _, name := range cacheHeaders {
		if h.Get(name) != "" {
			cached++
		}
	}

	return models.ServerMetadata{
		ServerHeader:     headerOr(h, "Server", "Unknown"),
		ContentType:      headerOr(h, "Content-Type", "Unknown"),
		CacheHeaderCount: cached,
		LastModified:     optionalHeader(h, "Last-Modified"),
		ETag:             optionalHeader(h, "ETag"),
	}
}

// countSourceTags counts the start tags written in the page source, so the
// html, head and body elements the parser adds on its own are not included
func countSourceTags(body []byte) int {
	z := html.NewTokenizer(bytes.NewReader(body))
	count := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return count
		case html.StartTagToken, html.SelfClosingTagToken:
			count++
		}
	}
}

// HTMLSourceSize re-renders the parse tree and reports its line and character counts
func HTMLSourceSize(root *html.Node) (lines, chars int) {
	var buf bytes.Buffer
	if err := html.Render(&buf, root); err != nil {
		return 0, 0
	}
	source := buf.String()
	return strings.Count(source, "\n") + 1, utf8.RuneCountInString(source)
}

// optionalAttr returns the attribute of the first match, or nil if there is no match or no attribute
func optionalAttr(sel *goquery.Selection, attr string) *string {
	if sel.Length() == 0 {
		return nil
	}
	v, ok := sel.First().Attr(attr)
	if !ok {
		return nil
	}
	return &v
}

func hasHeader(h http.Header, key string) bool {
	return len(h.Values(key)) > 0
}

func headerOr(h http.Header, key, fallback string) string {
	if !hasHeader(h, key) {
		return fallback
	}
	return h.Get(key)
}

func optionalHeader(h http.Header, key string) *string {
	if !hasHeader(h, key) {
		return nil
	}
	v := h.Get(key)
	return &v
}

func round(v float64, places int) float64 {
	r, err := stats.Round(v, places)
	if err != nil {
		return 0
	}
	return r
}
