package models

// SpeedRating is the qualitative tier assigned to a sample's elapsed time
type SpeedRating string

const (
	SpeedExcellent SpeedRating = "EXCELLENT"
	SpeedGood      SpeedRating = "GOOD"
	SpeedFair      SpeedRating = "FAIR"
	SpeedSlow      SpeedRating = "SLOW"
	SpeedVerySlow  SpeedRating = "VERY_SLOW"
	SpeedError     SpeedRating = "ERROR"
)

// SSLGrade is a coarse scheme-based grade, not a certificate evaluation
type SSLGrade string

const (
	SSLGradeA SSLGrade = "A"
	SSLGradeF SSLGrade = "F"
)

// SampleResult is the uniform record produced by one fetch-and-analyze attempt.
// The metric groups are embedded so the JSON form stays a flat object.
type SampleResult struct {
	StatusCode  int         `json:"status_code"`
	Error       *string     `json:"error"`
	SpeedRating SpeedRating `json:"speed_rating"`
	Repetition  int         `json:"repetition"`

	ResponseTimeS float64 `json:"response_time_s"`
	LoadTimeMS    float64 `json:"load_time_ms"`
	SizeBytes     int64   `json:"size_bytes"`
	SizeKB        float64 `json:"size_kb"`
	CharCount     int     `json:"char_count"`
	NumTags       int     `json:"num_tags"`
	Title         string  `json:"title"`

	PerformanceMetrics
	SEOMetrics
	SecurityMetrics
	AccessibilityMetrics
	ServerMetadata

	// Populated only for the first repetition of a URL
	HTMLLineCount int `json:"html_line_count"`
	HTMLCharCount int `json:"html_char_count"`
}

// PerformanceMetrics describes resource usage of a page
type PerformanceMetrics struct {
	CompressionRatio  float64 `json:"compression_ratio"`
	ImageCount        int     `json:"image_count"`
	ScriptCount       int     `json:"script_count"`
	CSSCount          int     `json:"css_count"`
	ExternalResources int     `json:"external_resources"`
	InlineStyles      int     `json:"inline_styles"`
	InlineScripts     int     `json:"inline_scripts"`
	GzipEnabled       bool    `json:"gzip_enabled"`
	RedirectCount     int     `json:"redirect_count"`
}

// SEOMetrics represents SEO-related information
type SEOMetrics struct {
	MetaDescription  *string `json:"meta_description"`
	MetaKeywords     *string `json:"meta_keywords"`
	H1Count          int     `json:"h1_count"`
	H2Count          int     `json:"h2_count"`
	H3Count          int     `json:"h3_count"`
	CanonicalURL     *string `json:"canonical_url"`
	RobotsMeta       *string `json:"robots_meta"`
	OGTagCount       int     `json:"og_tag_count"`
	TwitterCardCount int     `json:"twitter_card_count"`
}

// SecurityMetrics represents security-related information
type SecurityMetrics struct {
	HTTPSEnabled                 bool     `json:"https_enabled"`
	SecurityHeaderCount          int      `json:"security_header_count"`
	SSLGrade                     SSLGrade `json:"ssl_grade"`
	XSSProtection                bool     `json:"xss_protection"`
	ContentSecurityPolicyPresent bool     `json:"content_security_policy_present"`
}

// AccessibilityMetrics represents accessibility-related information
type AccessibilityMetrics struct {
	ImagesWithAltRatio    float64 `json:"images_with_alt_ratio"`
	AltTextImages         string  `json:"alt_text_images"`
	FormLabelCount        int     `json:"form_label_count"`
	AriaLabelCount        int     `json:"aria_label_count"`
	SemanticElementCount  int     `json:"semantic_element_count"`
	InlineColorStyleCount int     `json:"inline_color_style_count"`
}

// ServerMetadata holds server identification and cache headers
type ServerMetadata struct {
	ServerHeader     string  `json:"server_header"`
	ContentType      string  `json:"content_type"`
	CacheHeaderCount int     `json:"cache_header_count"`
	LastModified     *string `json:"last_modified"`
	ETag             *string `json:"etag"`
}

// ResultMap maps each probed URL to its samples in completion order
type ResultMap map[string][]SampleResult

// Clone returns a copy whose slices can be read while the original keeps growing
func (m ResultMap) Clone() ResultMap {
	out := make(ResultMap, len(m))
	for url, samples := range m {
		out[url] = append([]SampleResult(nil), samples...)
	}
	return out
}
