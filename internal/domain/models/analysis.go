package models

// Language identifies the localization target for user-facing text
type Language string

const (
	LanguageArabic  Language = "ar"
	LanguageEnglish Language = "en"
)

// Classification is the four-tier risk verdict for a message
type Classification string

const (
	ClassificationSafe       Classification = "SAFE"
	ClassificationLowRisk    Classification = "LOW_RISK"
	ClassificationSuspicious Classification = "SUSPICIOUS"
	ClassificationHighRisk   Classification = "HIGH_RISK"
)

// URLFeatures is the named lexical feature set computed for one URL.
// Exactly the fields listed in FeatureNames are present for every URL,
// including malformed ones.
type URLFeatures map[string]float64

// FeatureNames is the canonical feature order. Classifiers consume the
// vector in this order; never rely on map iteration.
var FeatureNames = []string{
	"url_length", "number_of_dots_in_url", "having_repeated_digits_in_url",
	"number_of_digits_in_url", "number_of_special_char_in_url", "number_of_hyphens_in_url",
	"number_of_underline_in_url", "number_of_slash_in_url", "number_of_questionmark_in_url",
	"number_of_equal_in_url", "number_of_at_in_url", "number_of_dollar_in_url",
	"number_of_exclamation_in_url", "number_of_hashtag_in_url", "number_of_percent_in_url",
	"domain_length", "number_of_dots_in_domain", "number_of_hyphens_in_domain",
	"having_special_characters_in_domain", "number_of_special_characters_in_domain",
	"having_digits_in_domain", "number_of_digits_in_domain", "having_repeated_digits_in_domain",
	"number_of_subdomains", "having_dot_in_subdomain", "having_hyphen_in_subdomain",
	"average_subdomain_length", "average_number_of_dots_in_subdomain",
	"average_number_of_hyphens_in_subdomain", "having_special_characters_in_subdomain",
	"number_of_special_characters_in_subdomain", "having_digits_in_subdomain",
	"number_of_digits_in_subdomain", "having_repeated_digits_in_subdomain",
	"having_path", "path_length", "having_query", "having_fragment",
	"having_anchor", "entropy_of_url", "entropy_of_domain",
}

// Vector returns the features as a slice in canonical order
func (f URLFeatures) Vector() []float64 {
	vec := make([]float64, len(FeatureNames))
	for i, name := range FeatureNames {
		vec[i] = f[name]
	}
	return vec
}

// URLVerdict is the per-URL classification outcome
type URLVerdict struct {
	URL         string      `json:"url"`
	Prediction  int         `json:"prediction"` // 1 = phishing, 0 = benign
	Probability float64     `json:"probability"`
	Features    URLFeatures `json:"features"`
}

// ContextVerdict is the message-level phishing judgment.
//
// Confidence is NOT a phishing probability: when IsPhishing is true it
// mirrors the internal risk score, when false it expresses how strongly
// the benign verdict is held (100 - score). Fusion code must interpret
// it together with IsPhishing, never on its own.
type ContextVerdict struct {
	IsPhishing        bool     `json:"is_phishing"`
	Confidence        float64  `json:"confidence"`
	Reasoning         string   `json:"reasoning"`
	RedFlags          []string `json:"red_flags"`
	RedFlagsLocalized []string `json:"red_flags_localized"`
	ContextScore      int      `json:"context_score"`
	ModelUsed         string   `json:"model_used"`
	TrustedSource     bool     `json:"trusted_source"`
}

// AnalysisResult is the externally visible outcome of one analysis.
// It is fully deterministic for a fixed input and fixed analyzer state.
type AnalysisResult struct {
	Message                 string          `json:"message"`
	Language                Language        `json:"language"`
	URLsFound               int             `json:"urls_found"`
	URLVerdicts             []URLVerdict    `json:"url_verdicts"`
	URLRiskScore            float64         `json:"url_risk_score"`
	ContextVerdict          *ContextVerdict `json:"context_verdict,omitempty"`
	CombinedRiskScore       float64         `json:"combined_risk_score"`
	Classification          Classification  `json:"classification"`
	ClassificationLocalized string          `json:"classification_localized"`
	Explanation             string          `json:"explanation"`
	ActionGuidance          string          `json:"action_guidance"`
	RedFlags                []string        `json:"red_flags"`
	Status                  string          `json:"status"`
}
