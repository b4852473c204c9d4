package analyzer

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"webPageProbeGO/internal/models"
)

const fullPage = `<!DOCTYPE html>
<html>
<head>
	<title>Probe Page</title>
	<meta name="description" content="A test page">
	<meta name="robots" content="index, follow">
	<meta property="og:title" content="OG title">
	<meta property="og:image" content="/og.png">
	<meta name="twitter:card" content="summary">
	<link rel="canonical" href="https://example.com/">
	<link rel="stylesheet" href="/a.css">
	<link rel="stylesheet" href="https://cdn.example.com/b.css">
	<style>body { margin: 0 }</style>
</head>
<body>
	<header><nav aria-label="main">Menu</nav></header>
	<main>
		<article>
			<section>
				<h1>One</h1>
				<h2>Two</h2>
				<h2>Two again</h2>
				<h3>Three</h3>
			</section>
		</article>
	</main>
	<img src="/local.png" alt="Local image">
	<img src="https://cdn.example.com/x.png" alt="">
	<img src="//cdn.example.com/y.png">
	<script src="https://cdn.example.com/app.js"></script>
	<script>var a = 1;</script>
	<script src="/local.js"></script>
	<form>
		<label for="q">Search</label>
		<input id="q" aria-label="query">
	</form>
	<p style="color: red">red</p>
	<p style="background-color:#fff">white</p>
	<p style="margin:0">plain</p>
	<footer>Footer</footer>
</body>
</html>`

func testResponse(t *testing.T, rawURL, body string, header http.Header) *Response {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	if header == nil {
		header = http.Header{}
	}
	return &Response{StatusCode: http.StatusOK, Header: header, FinalURL: u, Body: []byte(body)}
}

func extract(t *testing.T, resp *Response) (models.SampleResult, *html.Node) {
	t.Helper()
	root, err := ParseDocument(resp)
	require.NoError(t, err)
	return Extract(root, resp), root
}

func TestExtractFullPage(t *testing.T) {
	header := http.Header{}
	header.Set("X-Frame-Options", "DENY")
	header.Set("X-Content-Type-Options", "nosniff")
	header.Set("X-XSS-Protection", "1; mode=block")
	header.Set("Strict-Transport-Security", "max-age=31536000")
	header.Set("Content-Security-Policy", "default-src 'self'")
	header.Set("Referrer-Policy", "no-referrer")
	header.Set("Content-Encoding", "GZIP")
	header.Set("Server", "nginx")
	header.Set("Content-Type", "text/html; charset=utf-8")
	header.Set("Cache-Control", "max-age=60")
	header.Set("ETag", `"abc"`)

	resp := testResponse(t, "https://example.com/", fullPage, header)
	resp.RedirectCount = 2
	m, _ := extract(t, resp)

	assert.Equal(t, "Probe Page", m.Title)
	assert.Positive(t, m.NumTags)
	assert.Positive(t, m.CharCount)

	t.Run("Performance", func(t *testing.T) {
		assert.Equal(t, 3, m.ImageCount)
		assert.Equal(t, 3, m.ScriptCount)
		assert.Equal(t, 2, m.CSSCount)
		assert.Equal(t, 3, m.ExternalResources)
		assert.Equal(t, 1, m.InlineStyles)
		assert.Equal(t, 1, m.InlineScripts)
		assert.True(t, m.GzipEnabled)
		assert.Equal(t, 2, m.RedirectCount)
		assert.Greater(t, m.CompressionRatio, 0.0)
		assert.Less(t, m.CompressionRatio, 100.0)
	})

	t.Run("SEO", func(t *testing.T) {
		require.NotNil(t, m.MetaDescription)
		assert.Equal(t, "A test page", *m.MetaDescription)
		assert.Nil(t, m.MetaKeywords)
		require.NotNil(t, m.CanonicalURL)
		assert.Equal(t, "https://example.com/", *m.CanonicalURL)
		require.NotNil(t, m.RobotsMeta)
		assert.Equal(t, "index, follow", *m.RobotsMeta)
		assert.Equal(t, 1, m.H1Count)
		assert.Equal(t, 2, m.H2Count)
		assert.Equal(t, 1, m.H3Count)
		assert.Equal(t, 2, m.OGTagCount)
		assert.Equal(t, 1, m.TwitterCardCount)
	})

	t.Run("Security", func(t *testing.T) {
		assert.True(t, m.HTTPSEnabled)
		assert.Equal(t, 6, m.SecurityHeaderCount)
		assert.Equal(t, models.SSLGradeA, m.SSLGrade)
		assert.True(t, m.XSSProtection)
		assert.True(t, m.ContentSecurityPolicyPresent)
	})

	t.Run("Accessibility", func(t *testing.T) {
		assert.InDelta(t, 0.3333, m.ImagesWithAltRatio, 0.0001)
		assert.Equal(t, "1/3 (33.3%)", m.AltTextImages)
		assert.Equal(t, 1, m.FormLabelCount)
		assert.Equal(t, 2, m.AriaLabelCount)
		assert.Equal(t, 6, m.SemanticElementCount)
		assert.Equal(t, 2, m.InlineColorStyleCount)
	})

	t.Run("Server", func(t *testing.T) {
		assert.Equal(t, "nginx", m.ServerHeader)
		assert.Equal(t, "text/html; charset=utf-8", m.ContentType)
		assert.Equal(t, 2, m.CacheHeaderCount)
		require.NotNil(t, m.ETag)
		assert.Equal(t, `"abc"`, *m.ETag)
		assert.Nil(t, m.LastModified)
	})
}

func TestExtractBarePage(t *testing.T) {
	m, _ := extract(t, testResponse(t, "http://example.com/", "", nil))

	assert.Equal(t, "Untitled", m.Title)
	assert.Zero(t, m.NumTags)
	assert.Zero(t, m.CompressionRatio)
	assert.Zero(t, m.SecurityHeaderCount)
	assert.False(t, m.HTTPSEnabled)
	assert.Equal(t, models.SSLGradeF, m.SSLGrade)
	assert.False(t, m.GzipEnabled)
	assert.Equal(t, "Unknown", m.ServerHeader)
	assert.Equal(t, "Unknown", m.ContentType)
	assert.Zero(t, m.CacheHeaderCount)
	assert.Zero(t, m.ImagesWithAltRatio)
	assert.Equal(t, "0/0 (0%)", m.AltTextImages)
	assert.Nil(t, m.MetaDescription)
	assert.Nil(t, m.CanonicalURL)
}

func TestExtractDecodesDeclaredCharset(t *testing.T) {
	header := http.Header{}
	header.Set("Content-Type", "text/html; charset=iso-8859-1")
	body := "<html><head><title>caf\xe9</title></head><body></body></html>"

	m, _ := extract(t, testResponse(t, "http://example.com/", body, header))
	assert.Equal(t, "café", m.Title)
}

func TestHTMLSourceSize(t *testing.T) {
	const page = "<html><head></head><body><p>a</p>\n<p>b</p></body></html>"
	_, root := extract(t, testResponse(t, "http://example.com/", page, nil))

	lines, chars := HTMLSourceSize(root)
	assert.Equal(t, 2, lines)
	assert.Equal(t, len(page), chars)
}

func TestNumTagsCountsSourceTagsOnly(t *testing.T) {
	const fragment = `<p>one<br>two</p><img src="/a.png"/><script>var s = "<b>not a tag</b>";</script>`
	m, _ := extract(t, testResponse(t, "http://example.com/", fragment, nil))
	assert.Equal(t, 4, m.NumTags)

	m, _ = extract(t, testResponse(t, "http://example.com/", "<html><head></head><body><p>x</p></body></html>", nil))
	assert.Equal(t, 4, m.NumTags)
}
