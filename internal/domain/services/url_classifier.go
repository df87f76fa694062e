package services

import (
	"math"
	"regexp"
	"strings"

	"tanabbah/internal/domain/models"
	"tanabbah/internal/ml"
	"tanabbah/pkg/logger"
)

// heuristicBaseScore is the starting suspicion for any URL the model
// cannot score; phishingLabelCutoff turns a score into a binary label.
const (
	heuristicBaseScore  = 0.3
	phishingLabelCutoff = 0.6
)

var urlShorteners = map[string]bool{
	"bit.ly":      true,
	"tinyurl.com": true,
	"tinyurl":     true,
	"goo.gl":      true,
	"ow.ly":       true,
	"t.co":        true,
	"is.gd":       true,
	"buff.ly":     true,
	"cutt.ly":     true,
	"rb.gy":       true,
}

var riskyTLDs = []string{".tk", ".ml", ".ga", ".cf", ".gq", ".xyz", ".top", ".click", ".link", ".work"}

// RiskyTLDs returns a copy of the suspicious TLD list for clients that
// want to prefilter locally.
func RiskyTLDs() []string {
	out := make([]string, len(riskyTLDs))
	copy(out, riskyTLDs)
	return out
}

var sensitiveDomainKeywords = []string{"login", "verify", "account", "update", "secure", "banking", "bank"}

var suspiciousPorts = map[string]bool{
	"8080": true, "8000": true, "8888": true,
	"3000": true, "1337": true, "4444": true,
}

var (
	ipv4Pattern       = regexp.MustCompile(`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`)
	encodedSeqPattern = regexp.MustCompile(`%[0-9a-fA-F]{2}`)
)

// urlRule is one independently testable heuristic signal
type urlRule struct {
	Name   string
	Weight float64
	Match  func(url, host string) bool
}

// heuristicRules is the full signal table. Each rule fires at most once
// and the weights sum before clamping to [0,1].
var heuristicRules = []urlRule{
	{
		Name:   "url_shortener",
		Weight: 0.35,
		Match: func(url, host string) bool {
			for s := range urlShorteners {
				if strings.Contains(url, s) {
					return true
				}
			}
			return false
		},
	},
	{
		Name:   "ip_address_host",
		Weight: 0.30,
		Match: func(url, host string) bool {
			return ipv4Pattern.MatchString(host)
		},
	},
	{
		Name:   "excessive_dots",
		Weight: 0.15,
		Match: func(url, host string) bool {
			return strings.Count(url, ".") > 3
		},
	},
	{
		Name:   "suspicious_port",
		Weight: 0.25,
		Match: func(url, host string) bool {
			idx := strings.LastIndex(host, ":")
			if idx == -1 {
				return false
			}
			return suspiciousPorts[host[idx+1:]]
		},
	},
	{
		Name:   "encoded_sequences",
		Weight: 0.20,
		Match: func(url, host string) bool {
			return encodedSeqPattern.MatchString(url)
		},
	},
	{
		Name:   "sensitive_keyword",
		Weight: 0.20,
		Match: func(url, host string) bool {
			for _, kw := range sensitiveDomainKeywords {
				if strings.Contains(url, kw) {
					return true
				}
			}
			return false
		},
	},
	{
		Name:   "risky_tld",
		Weight: 0.25,
		Match: func(url, host string) bool {
			for _, tld := range riskyTLDs {
				if strings.Contains(url, tld) {
					return true
				}
			}
			return false
		},
	},
	{
		Name:   "excessive_length",
		Weight: 0.15,
		Match: func(url, host string) bool {
			return len(url) > 75
		},
	},
	{
		Name:   "special_chars_in_domain",
		Weight: 0.20,
		Match: func(url, host string) bool {
			return strings.ContainsAny(host, "@$%")
		},
	},
	{
		Name:   "homograph_substitution",
		Weight: 0.20,
		Match: func(url, host string) bool {
			return hasHomographSubstitution(host)
		},
	},
	{
		Name:   "brand_in_subdomain",
		Weight: 0.20,
		Match: func(url, host string) bool {
			return hasBrandSubdomain(host)
		},
	},
}

// URLClassifier scores a single URL. It prefers the trained forest and
// degrades to the heuristic rule table when no model is available.
type URLClassifier struct {
	extractor *FeatureExtractor
	model     *ml.Forest
	logger    *logger.Logger
}

// NewURLClassifier creates a classifier. A nil model selects the
// heuristic path.
func NewURLClassifier(extractor *FeatureExtractor, model *ml.Forest, log *logger.Logger) *URLClassifier {
	return &URLClassifier{
		extractor: extractor,
		model:     model,
		logger:    log.WithComponent("url-classifier"),
	}
}

// ModelLoaded reports whether a trained model backs this classifier
func (c *URLClassifier) ModelLoaded() bool {
	return c.model != nil
}

// Classify produces a verdict for one URL. It never propagates an
// error: any classification failure yields a neutral 0.5 verdict so one
// malformed URL cannot abort the whole analysis.
func (c *URLClassifier) Classify(rawURL string) (verdict models.URLVerdict) {
	features := c.extractor.Extract(rawURL)

	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn().Str("url", rawURL).Interface("panic", r).Msg("classification failed, returning neutral verdict")
			verdict = models.URLVerdict{
				URL:         rawURL,
				Prediction:  0,
				Probability: 0.5,
				Features:    features,
			}
		}
	}()

	if c.model != nil {
		vec := features.Vector()
		prediction := c.model.Predict(vec)
		probability := round4(c.model.PredictProba(vec))
		return models.URLVerdict{
			URL:         rawURL,
			Prediction:  prediction,
			Probability: probability,
			Features:    features,
		}
	}

	score := c.heuristicScore(rawURL)
	prediction := 0
	if score > phishingLabelCutoff {
		prediction = 1
	}

	return models.URLVerdict{
		URL:         rawURL,
		Prediction:  prediction,
		Probability: round4(score),
		Features:    features,
	}
}

// heuristicScore sums the rule table over the URL and clamps to [0,1]
func (c *URLClassifier) heuristicScore(rawURL string) float64 {
	lower := strings.ToLower(rawURL)
	host := hostOf(lower)

	score := heuristicBaseScore
	for _, rule := range heuristicRules {
		if rule.Match(lower, host) {
			score += rule.Weight
		}
	}

	return math.Min(1.0, score)
}

// hostOf extracts the host portion from a lowercased URL string
func hostOf(lower string) string {
	rest := lower
	if idx := strings.Index(rest, "://"); idx != -1 {
		rest = rest[idx+3:]
	}
	if idx := strings.Index(rest, "/"); idx != -1 {
		rest = rest[:idx]
	}
	return rest
}

// hasHomographSubstitution detects letter/digit swaps attackers use to
// imitate brands: a 0 or 1 embedded between letters, or "rn" posing
// as "m".
func hasHomographSubstitution(host string) bool {
	for i := 1; i < len(host)-1; i++ {
		if (host[i] == '0' || host[i] == '1') && isLetter(host[i-1]) && isLetter(host[i+1]) {
			return true
		}
	}
	return strings.Contains(host, "rn")
}

// hasBrandSubdomain detects a subdomain label repeating the registrable
// label, e.g. paypal.paypal.com.
func hasBrandSubdomain(host string) bool {
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}
	parts := strings.Split(host, ".")
	if len(parts) < 3 {
		return false
	}
	registrable := parts[len(parts)-2]
	for _, sub := range parts[:len(parts)-2] {
		if sub == registrable {
			return true
		}
	}
	return false
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}
