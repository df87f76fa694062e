package services

import (
	"regexp"
	"strings"
)

// maxURLLength guards against pathological inputs
const maxURLLength = 500

var (
	protocolURLPattern = regexp.MustCompile(`https?://[^\s]+`)
	bareURLPattern     = regexp.MustCompile(`(?:^|\s)([a-zA-Z0-9-]+\.[a-zA-Z]{2,}(?:/[^\s]*)?)`)

	// Pseudo-schemes are never network URLs and must not reach the classifier.
	denyPrefixes = []string{"javascript:", "data:", "vbscript:", "file://"}
)

// URLExtractor finds candidate URLs in free text
type URLExtractor struct{}

// NewURLExtractor creates a new URL extractor
func NewURLExtractor() *URLExtractor {
	return &URLExtractor{}
}

// Extract returns the unique URLs found in text, in first-seen order.
func (e *URLExtractor) Extract(text string) []string {
	var candidates []string

	candidates = append(candidates, protocolURLPattern.FindAllString(text, -1)...)

	for _, m := range bareURLPattern.FindAllStringSubmatch(text, -1) {
		candidates = append(candidates, m[1])
	}

	seen := make(map[string]bool)
	var urls []string
	for _, c := range candidates {
		c = strings.TrimRight(c, ".,;:!?)]}")
		if c == "" || !strings.Contains(c, ".") {
			continue
		}
		if len(c) > maxURLLength {
			continue
		}
		if hasDeniedPrefix(c) {
			continue
		}
		if !seen[c] {
			seen[c] = true
			urls = append(urls, c)
		}
	}

	return urls
}

func hasDeniedPrefix(url string) bool {
	lower := strings.ToLower(url)
	for _, p := range denyPrefixes {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
