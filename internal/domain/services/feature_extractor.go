package services

import (
	"math"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"tanabbah/internal/domain/models"
	"tanabbah/pkg/logger"
)

// Character classes used by the lexical features. The domain-level set
// deliberately excludes '.' and '-' since those get their own counters.
const (
	urlSpecialChars    = "!@#$%^&*()_+-=[]{}|;:,.<>?/~`"
	domainSpecialChars = "!@#$%^&*()_+=[]{}|;:,<>?/~`"
)

// FeatureExtractor maps a URL string to the fixed 41-value lexical
// feature set. Extraction is total: malformed input degrades to empty
// structural components instead of failing.
type FeatureExtractor struct {
	logger *logger.Logger
}

// NewFeatureExtractor creates a new feature extractor
func NewFeatureExtractor(log *logger.Logger) *FeatureExtractor {
	return &FeatureExtractor{
		logger: log.WithComponent("feature-extractor"),
	}
}

// Extract computes all features for one URL. Counts operate on the
// original string; only structural parsing sees the protocol prefix.
func (fe *FeatureExtractor) Extract(rawURL string) models.URLFeatures {
	withProtocol := rawURL
	if !strings.HasPrefix(rawURL, "http") {
		withProtocol = "http://" + rawURL
	}

	domain, path, query, fragment := parseComponents(withProtocol, rawURL)

	features := make(models.URLFeatures, len(models.FeatureNames))

	// URL-level. Lengths and digit counts operate on code points so
	// internationalized URLs score the same regardless of encoding.
	features["url_length"] = float64(utf8.RuneCountInString(rawURL))
	features["number_of_dots_in_url"] = float64(strings.Count(rawURL, "."))
	features["having_repeated_digits_in_url"] = boolToFloat(hasRepeatedDigits(rawURL))
	features["number_of_digits_in_url"] = float64(countDigits(rawURL))
	features["number_of_special_char_in_url"] = float64(countAny(rawURL, urlSpecialChars))
	features["number_of_hyphens_in_url"] = float64(strings.Count(rawURL, "-"))
	features["number_of_underline_in_url"] = float64(strings.Count(rawURL, "_"))
	features["number_of_slash_in_url"] = float64(strings.Count(rawURL, "/"))
	features["number_of_questionmark_in_url"] = float64(strings.Count(rawURL, "?"))
	features["number_of_equal_in_url"] = float64(strings.Count(rawURL, "="))
	features["number_of_at_in_url"] = float64(strings.Count(rawURL, "@"))
	features["number_of_dollar_in_url"] = float64(strings.Count(rawURL, "$"))
	features["number_of_exclamation_in_url"] = float64(strings.Count(rawURL, "!"))
	features["number_of_hashtag_in_url"] = float64(strings.Count(rawURL, "#"))
	features["number_of_percent_in_url"] = float64(strings.Count(rawURL, "%"))

	// Domain-level
	features["domain_length"] = float64(utf8.RuneCountInString(domain))
	features["number_of_dots_in_domain"] = float64(strings.Count(domain, "."))
	features["number_of_hyphens_in_domain"] = float64(strings.Count(domain, "-"))
	specialInDomain := countAny(domain, domainSpecialChars)
	features["having_special_characters_in_domain"] = boolToFloat(specialInDomain > 0)
	features["number_of_special_characters_in_domain"] = float64(specialInDomain)
	digitsInDomain := countDigits(domain)
	features["having_digits_in_domain"] = boolToFloat(digitsInDomain > 0)
	features["number_of_digits_in_domain"] = float64(digitsInDomain)
	features["having_repeated_digits_in_domain"] = boolToFloat(hasRepeatedDigits(domain))

	// Subdomain-level
	fe.subdomainFeatures(domain, features)

	// Path, query, fragment
	features["having_path"] = boolToFloat(path != "" && path != "/")
	features["path_length"] = float64(utf8.RuneCountInString(path))
	features["having_query"] = boolToFloat(query != "")
	features["having_fragment"] = boolToFloat(fragment != "")
	// Anchor duplicates fragment. The trained model expects both columns.
	features["having_anchor"] = boolToFloat(fragment != "")

	// Entropy
	features["entropy_of_url"] = shannonEntropy(rawURL)
	features["entropy_of_domain"] = shannonEntropy(domain)

	return features
}

// subdomainFeatures fills the ten subdomain statistics. Labels are the
// host parts before the registrable domain and TLD; with fewer than
// three labels every value is zero.
func (fe *FeatureExtractor) subdomainFeatures(domain string, features models.URLFeatures) {
	parts := strings.Split(domain, ".")

	numSubdomains := len(parts) - 2
	if numSubdomains < 0 {
		numSubdomains = 0
	}
	features["number_of_subdomains"] = float64(numSubdomains)

	var subdomains []string
	if len(parts) > 2 {
		subdomains = parts[:len(parts)-2]
	}

	if len(subdomains) == 0 {
		for _, name := range []string{
			"having_dot_in_subdomain", "having_hyphen_in_subdomain",
			"average_subdomain_length", "average_number_of_dots_in_subdomain",
			"average_number_of_hyphens_in_subdomain", "having_special_characters_in_subdomain",
			"number_of_special_characters_in_subdomain", "having_digits_in_subdomain",
			"number_of_digits_in_subdomain", "having_repeated_digits_in_subdomain",
		} {
			features[name] = 0.0
		}
		return
	}

	totalLen := 0
	totalHyphens := 0
	totalSpecial := 0
	totalDigits := 0
	anyRepeated := false
	for _, sub := range subdomains {
		totalLen += utf8.RuneCountInString(sub)
		totalHyphens += strings.Count(sub, "-")
		totalSpecial += countAny(sub, domainSpecialChars)
		totalDigits += countDigits(sub)
		if hasRepeatedDigits(sub) {
			anyRepeated = true
		}
	}

	n := float64(len(subdomains))
	// Labels come from splitting on dots, so per-label dot counts are
	// structurally zero. Kept as columns for model compatibility.
	features["having_dot_in_subdomain"] = 0.0
	features["average_number_of_dots_in_subdomain"] = 0.0
	features["having_hyphen_in_subdomain"] = boolToFloat(totalHyphens > 0)
	features["average_subdomain_length"] = float64(totalLen) / n
	features["average_number_of_hyphens_in_subdomain"] = float64(totalHyphens) / n
	features["having_special_characters_in_subdomain"] = boolToFloat(totalSpecial > 0)
	features["number_of_special_characters_in_subdomain"] = float64(totalSpecial)
	features["having_digits_in_subdomain"] = boolToFloat(totalDigits > 0)
	features["number_of_digits_in_subdomain"] = float64(totalDigits)
	features["having_repeated_digits_in_subdomain"] = boolToFloat(anyRepeated)
}

// parseComponents extracts host, path, query and fragment. On parse
// failure the domain falls back to the text before the first slash and
// the rest stay empty.
func parseComponents(withProtocol, original string) (domain, path, query, fragment string) {
	parsed, err := url.Parse(withProtocol)
	if err != nil || parsed.Host == "" {
		if idx := strings.Index(original, "/"); idx != -1 {
			return original[:idx], "", "", ""
		}
		return original, "", "", ""
	}
	return parsed.Host, parsed.Path, parsed.RawQuery, parsed.Fragment
}

// hasRepeatedDigits reports whether the string contains two or more
// identical consecutive digits (e.g. "11", "222"). Unicode digits such
// as the Arabic-Indic set count like ASCII ones.
func hasRepeatedDigits(s string) bool {
	var prev rune
	for _, c := range s {
		if unicode.IsDigit(c) && c == prev {
			return true
		}
		if unicode.IsDigit(c) {
			prev = c
		} else {
			prev = 0
		}
	}
	return false
}

func countDigits(s string) int {
	count := 0
	for _, c := range s {
		if unicode.IsDigit(c) {
			count++
		}
	}
	return count
}

func countAny(s, chars string) int {
	count := 0
	for _, c := range s {
		if strings.ContainsRune(chars, c) {
			count++
		}
	}
	return count
}

// shannonEntropy calculates the base-2 Shannon entropy of a string,
// rounded to 4 decimals. Empty input has entropy 0.
func shannonEntropy(s string) float64 {
	if len(s) == 0 {
		return 0.0
	}

	freq := make(map[rune]int)
	total := 0
	for _, c := range s {
		freq[c]++
		total++
	}

	length := float64(total)
	entropy := 0.0
	for _, count := range freq {
		p := float64(count) / length
		entropy -= p * math.Log2(p)
	}

	return math.Round(entropy*10000) / 10000
}

func boolToFloat(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}
