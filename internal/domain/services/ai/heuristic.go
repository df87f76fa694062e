package ai

import (
	"strings"

	"tanabbah/internal/domain/models"
)

// heuristicBase is the starting context score before any indicator fires
const heuristicBase = 20

// Keyword groups cover both supported languages. Matching is substring
// based over the lowercased message, same as the rest of the pipeline.
var (
	SensitiveKeywords = []string{
		"password", "pin", "otp", "cvv", "card number",
		"كلمة المرور", "كلمة السر", "رمز التحقق", "بطاقة",
	}

	ThreatKeywords = []string{
		"suspended", "terminated", "locked", "blocked", "deleted",
		"تم إيقاف", "تم حظر", "سيتم حذف", "معلق",
	}

	UrgencyKeywords = []string{
		"urgent", "immediately", "now", "today",
		"عاجل", "فوراً", "حالاً",
	}

	PrizeKeywords = []string{
		"won", "winner", "prize", "lottery", "reward",
		"جائزة", "ربحت", "مكافأة",
	}

	GovServiceKeywords = []string{
		"أبشر", "absher", "ناجز", "najiz", "وزارة", "ministry",
	}

	ContextShorteners = []string{"bit.ly", "tinyurl", "goo.gl", "ow.ly", "t.co", "is.gd"}
)

// TrustChecker is the registry view the analyzer needs
type TrustChecker interface {
	IsTrusted(url string) bool
	AllTrusted(urls []string) bool
	Domains() []string
}

// contextRule is one weighted message-level indicator
type contextRule struct {
	Flag   string
	Weight int
	Match  func(in ruleInput) bool
}

// ruleInput bundles the pre-lowered message and URL context every rule
// sees, so each rule stays a pure predicate.
type ruleInput struct {
	message    string // lowercased
	urls       []string
	allTrusted bool
}

var contextRules = []contextRule{
	{
		Flag:   "suspicious shortened URLs",
		Weight: 35,
		Match: func(in ruleInput) bool {
			return hasShortener(in.urls)
		},
	},
	{
		Flag:   "requests sensitive data",
		Weight: 40,
		Match: func(in ruleInput) bool {
			return containsAnyKeyword(in.message, SensitiveKeywords)
		},
	},
	{
		Flag:   "threatening language",
		Weight: 25,
		Match: func(in ruleInput) bool {
			return containsAnyKeyword(in.message, ThreatKeywords)
		},
	},
	{
		Flag:   "urgency tactics",
		Weight: 15,
		Match: func(in ruleInput) bool {
			return containsAnyKeyword(in.message, UrgencyKeywords)
		},
	},
	{
		Flag:   "prize or lottery claims",
		Weight: 30,
		Match: func(in ruleInput) bool {
			return containsAnyKeyword(in.message, PrizeKeywords)
		},
	},
	{
		Flag:   "potential government impersonation",
		Weight: 35,
		Match: func(in ruleInput) bool {
			return containsAnyKeyword(in.message, GovServiceKeywords) &&
				len(in.urls) > 0 && !in.allTrusted
		},
	},
	{
		Flag:   "insecure links",
		Weight: 20,
		Match: func(in ruleInput) bool {
			for _, u := range in.urls {
				if strings.HasPrefix(strings.ToLower(u), "http://") {
					return true
				}
			}
			return false
		},
	},
}

// ContextHeuristic is the deterministic message-level analyzer used
// whenever the external model is absent or fails.
type ContextHeuristic struct {
	trust     TrustChecker
	threshold int
}

// NewContextHeuristic creates the heuristic analyzer. The threshold is
// the context score above which a message counts as phishing.
func NewContextHeuristic(trust TrustChecker, threshold int) *ContextHeuristic {
	if threshold <= 0 {
		threshold = 55
	}
	return &ContextHeuristic{trust: trust, threshold: threshold}
}

// Analyze scores the message against the rule table and returns a
// complete context verdict.
func (h *ContextHeuristic) Analyze(message string, urls []string) *models.ContextVerdict {
	in := ruleInput{
		message:    strings.ToLower(message),
		urls:       urls,
		allTrusted: h.trust.AllTrusted(urls),
	}

	// A message linking only to official domains, with no shorteners
	// and no request for credentials, is treated as legitimate.
	if len(urls) > 0 && in.allTrusted &&
		!hasShortener(urls) && !containsAnyKeyword(in.message, SensitiveKeywords) {
		return &models.ContextVerdict{
			IsPhishing:        false,
			Confidence:        25.0,
			Reasoning:         "رسالة رسمية من جهة حكومية موثوقة",
			RedFlags:          []string{},
			RedFlagsLocalized: []string{noFlagsArabic},
			ContextScore:      20,
			ModelUsed:         "heuristic_with_trust",
			TrustedSource:     true,
		}
	}

	score := heuristicBase
	var flags []string
	lookalike := h.lookalikeFlag(urls)
	for _, rule := range contextRules {
		if rule.Match(in) {
			score += rule.Weight
			flags = append(flags, rule.Flag)
		}
	}
	if lookalike {
		score += 25
		flags = append(flags, "lookalike domain")
	}

	// Independent weak signals compound.
	if len(flags) > 1 {
		score += 10 * (len(flags) - 1)
	}
	if score > 100 {
		score = 100
	}

	isPhishing := score > h.threshold
	confidence := float64(score)
	reasoning := "لم يتم اكتشاف مؤشرات خطر واضحة"
	if isPhishing {
		reasoning = "تحليل قائم على مؤشرات معروفة"
	} else {
		confidence = float64(100 - score)
	}

	displayFlags := flags
	if len(displayFlags) == 0 {
		displayFlags = []string{"no significant red flags"}
	}

	return &models.ContextVerdict{
		IsPhishing:        isPhishing,
		Confidence:        confidence,
		Reasoning:         reasoning,
		RedFlags:          displayFlags,
		RedFlagsLocalized: translateRedFlags(flags),
		ContextScore:      score,
		ModelUsed:         "heuristic_with_trust",
		TrustedSource:     in.allTrusted,
	}
}

// lookalikeFlag reports whether any URL's host sits one edit away from
// a trusted domain without actually being trusted.
func (h *ContextHeuristic) lookalikeFlag(urls []string) bool {
	for _, u := range urls {
		if h.trust.IsTrusted(u) {
			continue
		}
		host := hostPart(strings.ToLower(u))
		for _, d := range h.trust.Domains() {
			d = strings.TrimPrefix(d, ".")
			if host != d && withinOneEdit(host, d) {
				return true
			}
		}
	}
	return false
}

func hasShortener(urls []string) bool {
	for _, u := range urls {
		lower := strings.ToLower(u)
		for _, s := range ContextShorteners {
			if strings.Contains(lower, s) {
				return true
			}
		}
	}
	return false
}

func containsAnyKeyword(message string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(message, kw) {
			return true
		}
	}
	return false
}

func hostPart(lower string) string {
	if idx := strings.Index(lower, "://"); idx != -1 {
		lower = lower[idx+3:]
	}
	if idx := strings.Index(lower, "/"); idx != -1 {
		lower = lower[:idx]
	}
	return lower
}

// withinOneEdit reports whether two strings differ by at most one
// substitution, insertion or deletion.
func withinOneEdit(a, b string) bool {
	la, lb := len(a), len(b)
	if la > lb {
		a, b, la, lb = b, a, lb, la
	}
	if lb-la > 1 {
		return false
	}

	i, j, edits := 0, 0, 0
	for i < la && j < lb {
		if a[i] == b[j] {
			i++
			j++
			continue
		}
		edits++
		if edits > 1 {
			return false
		}
		if la == lb {
			i++
		}
		j++
	}
	if j < lb || i < la {
		edits++
	}
	return edits <= 1
}
