package services

import (
	"strings"
	"testing"

	"tanabbah/internal/domain/models"
	"tanabbah/pkg/logger"
)

func newTestLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: "json"})
}

func TestExtractProducesAllFeatures(t *testing.T) {
	fe := NewFeatureExtractor(newTestLogger())

	inputs := []string{
		"http://sub.example.com/path?q=1#frag",
		"https://absher.sa",
		"bit.ly/abc",
		"",
		"not a url at all",
		"http://192.168.1.1:8080/admin",
		strings.Repeat("a", 600),
	}

	for _, in := range inputs {
		features := fe.Extract(in)
		if len(features) != len(models.FeatureNames) {
			t.Errorf("Extract(%q): got %d features, want %d", in, len(features), len(models.FeatureNames))
		}
		for _, name := range models.FeatureNames {
			if _, ok := features[name]; !ok {
				t.Errorf("Extract(%q): missing feature %q", in, name)
			}
		}
		if got := len(features.Vector()); got != len(models.FeatureNames) {
			t.Errorf("Extract(%q): vector length %d, want %d", in, got, len(models.FeatureNames))
		}
	}
}

func TestExtractKnownValues(t *testing.T) {
	fe := NewFeatureExtractor(newTestLogger())
	features := fe.Extract("http://sub.example.com/path?q=1#frag")

	want := map[string]float64{
		"url_length":                    36,
		"number_of_dots_in_url":         2,
		"number_of_slash_in_url":        3,
		"number_of_questionmark_in_url": 1,
		"number_of_equal_in_url":        1,
		"number_of_hashtag_in_url":      1,
		"domain_length":                 15,
		"number_of_dots_in_domain":      2,
		"number_of_subdomains":          1,
		"average_subdomain_length":      3,
		"having_path":                   1,
		"path_length":                   5,
		"having_query":                  1,
		"having_fragment":               1,
		"having_anchor":                 1,
	}
	for name, value := range want {
		if got := features[name]; got != value {
			t.Errorf("%s = %v, want %v", name, got, value)
		}
	}
}

func TestExtractCountsUseOriginalString(t *testing.T) {
	fe := NewFeatureExtractor(newTestLogger())

	// The implicit http:// prefix added for parsing must not leak into counts.
	features := fe.Extract("example.com")
	if got := features["url_length"]; got != 11 {
		t.Errorf("url_length = %v, want 11", got)
	}
	if got := features["number_of_slash_in_url"]; got != 0 {
		t.Errorf("number_of_slash_in_url = %v, want 0", got)
	}
}

func TestExtractNoSubdomains(t *testing.T) {
	fe := NewFeatureExtractor(newTestLogger())
	features := fe.Extract("http://example.com")

	if got := features["number_of_subdomains"]; got != 0 {
		t.Errorf("number_of_subdomains = %v, want 0", got)
	}
	if got := features["average_subdomain_length"]; got != 0 {
		t.Errorf("average_subdomain_length = %v, want 0", got)
	}
}

func TestSubdomainDotColumnsAlwaysZero(t *testing.T) {
	fe := NewFeatureExtractor(newTestLogger())

	for _, in := range []string{"http://a.b.c.example.com", "http://login.bank.com/x", "example.com"} {
		features := fe.Extract(in)
		if features["having_dot_in_subdomain"] != 0 {
			t.Errorf("having_dot_in_subdomain nonzero for %q", in)
		}
		if features["average_number_of_dots_in_subdomain"] != 0 {
			t.Errorf("average_number_of_dots_in_subdomain nonzero for %q", in)
		}
	}
}

func TestHasRepeatedDigits(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"abc", false},
		{"a1b2c3", false},
		{"promo11.example.com", true},
		{"192.168.1.1", false},
		{"x222y", true},
		{"1.1", false},
		{"12 21", false},
	}
	for _, tt := range tests {
		if got := hasRepeatedDigits(tt.in); got != tt.want {
			t.Errorf("hasRepeatedDigits(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestExtractCountsCodePoints(t *testing.T) {
	fe := NewFeatureExtractor(newTestLogger())

	// Arabic hosts must be measured in code points, not UTF-8 bytes.
	features := fe.Extract("https://مثال.com")
	if got := features["url_length"]; got != 16 {
		t.Errorf("url_length = %v, want 16", got)
	}
	if got := features["domain_length"]; got != 8 {
		t.Errorf("domain_length = %v, want 8", got)
	}
}

func TestCountDigitsUnicode(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"abc123", 3},
		{"عرض٣", 1},
		{"٠١٢", 3},
		{"no digits", 0},
	}
	for _, tt := range tests {
		if got := countDigits(tt.in); got != tt.want {
			t.Errorf("countDigits(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestHasRepeatedDigitsUnicode(t *testing.T) {
	if !hasRepeatedDigits("عرض٣٣") {
		t.Error("hasRepeatedDigits should detect consecutive Arabic-Indic digits")
	}
	if hasRepeatedDigits("عرض٣١") {
		t.Error("hasRepeatedDigits fired on distinct Arabic-Indic digits")
	}
}

func TestShannonEntropy(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"aaaa", 0},
		{"ab", 1},
		{"abcd", 2},
		{"abcdefgh", 3},
	}
	for _, tt := range tests {
		if got := shannonEntropy(tt.in); got != tt.want {
			t.Errorf("shannonEntropy(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestShannonEntropyRounding(t *testing.T) {
	// "aab": p(a)=2/3, p(b)=1/3; entropy = 0.9182958... rounds to 4 decimals
	if got := shannonEntropy("aab"); got != 0.9183 {
		t.Errorf("shannonEntropy(\"aab\") = %v, want 0.9183", got)
	}
}

func TestExtractDeterministic(t *testing.T) {
	fe := NewFeatureExtractor(newTestLogger())
	const in = "http://secure-login.example-bank.com/verify?id=42"

	first := fe.Extract(in)
	for i := 0; i < 5; i++ {
		again := fe.Extract(in)
		for _, name := range models.FeatureNames {
			if first[name] != again[name] {
				t.Fatalf("feature %q not deterministic: %v vs %v", name, first[name], again[name])
			}
		}
	}
}
