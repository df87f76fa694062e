package services

import (
	"fmt"
	"math"
	"strings"

	"tanabbah/internal/config"
	"tanabbah/internal/domain/models"
	"tanabbah/internal/domain/services/ai"
	"tanabbah/pkg/logger"
)

// Confidence bounds applied before combining with the URL score. A
// non-phishing verdict must not feed a high combined score, and a
// phishing verdict must not be diluted below the floor.
const (
	nonPhishingConfidenceCap = 35.0
	phishingConfidenceFloor  = 30.0

	urlWeight     = 0.4
	contextWeight = 0.6

	trustOverrideScore = 15.0
	abuseOverrideScore = 85.0
)

// criticalFlagTokens mark context red flags that void the trust
// override even when every URL is registered.
var criticalFlagTokens = []string{"shortener", "password", "sensitive", "otp", "pin"}

// FusionOutcome is what the fusion step contributes to the final result
type FusionOutcome struct {
	RiskScore               float64
	Classification          models.Classification
	ClassificationLocalized string
	Explanation             string
	ActionGuidance          string
	RedFlags                []string
}

// FusionEngine merges the URL risk aggregate with the context verdict
// into a final score and four-tier classification.
type FusionEngine struct {
	trust  *TrustRegistry
	cfg    config.AnalysisConfig
	logger *logger.Logger
}

// NewFusionEngine creates a fusion engine with the configured tier cutoffs
func NewFusionEngine(trust *TrustRegistry, cfg config.AnalysisConfig, log *logger.Logger) *FusionEngine {
	return &FusionEngine{
		trust:  trust,
		cfg:    cfg,
		logger: log.WithComponent("risk-fusion"),
	}
}

// URLRiskScore aggregates per-URL probabilities into one score. Mean
// probability times 100, rounded to 2 decimals, 0 when no URLs exist.
func URLRiskScore(verdicts []models.URLVerdict) float64 {
	if len(verdicts) == 0 {
		return 0.0
	}
	var total float64
	for _, v := range verdicts {
		total += v.Probability
	}
	return math.Round(total/float64(len(verdicts))*100*100) / 100
}

// Fuse computes the combined risk score and classification.
func (e *FusionEngine) Fuse(message string, urlRisk float64, cv *models.ContextVerdict, verdicts []models.URLVerdict, lang models.Language) FusionOutcome {
	urls := make([]string, len(verdicts))
	for i, v := range verdicts {
		urls[i] = v.URL
	}

	if len(urls) > 0 && e.trust.AllTrusted(urls) {
		suspicious := e.hasCriticalFlags(cv) || messageHasSuspiciousContent(message)
		if !suspicious {
			return e.trustedOutcome(lang)
		}
		// Trusted domains combined with credential requests or other
		// concrete abuse signals are the harvesting pattern, not a
		// reason to relax.
		e.logger.Warn().Msg("trusted domains co-occur with critical signals")
		return e.tieredOutcome(abuseOverrideScore, cv, verdicts, lang)
	}

	combined := urlRisk
	if cv != nil {
		contextRisk := cv.Confidence
		if cv.IsPhishing {
			if contextRisk < phishingConfidenceFloor {
				contextRisk = phishingConfidenceFloor
			}
		} else if contextRisk > nonPhishingConfidenceCap {
			contextRisk = nonPhishingConfidenceCap
		}
		combined = urlWeight*urlRisk + contextWeight*contextRisk
	}
	combined = math.Round(combined*10) / 10

	return e.tieredOutcome(combined, cv, verdicts, lang)
}

// hasCriticalFlags scans the context verdict's flag text for tokens
// that must never be suppressed by the trust override.
func (e *FusionEngine) hasCriticalFlags(cv *models.ContextVerdict) bool {
	if cv == nil || len(cv.RedFlags) == 0 {
		return false
	}
	joined := strings.ToLower(strings.Join(cv.RedFlags, " "))
	for _, tok := range criticalFlagTokens {
		if strings.Contains(joined, tok) {
			return true
		}
	}
	return false
}

// messageHasSuspiciousContent checks the raw message independently of
// the context verdict, in case the analyzer missed a signal.
func messageHasSuspiciousContent(message string) bool {
	lower := strings.ToLower(message)
	for _, group := range [][]string{ai.SensitiveKeywords, ai.ThreatKeywords, ai.PrizeKeywords} {
		for _, kw := range group {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}

func (e *FusionEngine) trustedOutcome(lang models.Language) FusionOutcome {
	explanation := "الرسالة تبدو رسمية وصادرة من جهة موثوقة. لا توجد مؤشرات خطر واضحة."
	action := "لا يلزم اتخاذ أي إجراء."
	localized := "آمنة - رسالة رسمية"
	if lang == models.LanguageEnglish {
		explanation = "The message appears official and comes from a trusted source. No clear risk indicators."
		action = "No action needed."
		localized = "Safe - official message"
	}
	return FusionOutcome{
		RiskScore:               trustOverrideScore,
		Classification:          models.ClassificationSafe,
		ClassificationLocalized: localized,
		Explanation:             explanation,
		ActionGuidance:          action,
		RedFlags:                []string{},
	}
}

func (e *FusionEngine) tieredOutcome(score float64, cv *models.ContextVerdict, verdicts []models.URLVerdict, lang models.Language) FusionOutcome {
	classification := e.classify(score)
	explanation, action, localized := tierText(classification, score, lang)

	return FusionOutcome{
		RiskScore:               score,
		Classification:          classification,
		ClassificationLocalized: localized,
		Explanation:             explanation,
		ActionGuidance:          action,
		RedFlags:                e.collectRedFlags(score, cv, verdicts, lang),
	}
}

// classify maps a combined score onto the four tiers. Band boundaries
// are inclusive on the low side.
func (e *FusionEngine) classify(score float64) models.Classification {
	switch {
	case score <= e.cfg.SafeCutoff:
		return models.ClassificationSafe
	case score <= e.cfg.LowRiskCutoff:
		return models.ClassificationLowRisk
	case score <= e.cfg.SuspiciousCutoff:
		return models.ClassificationSuspicious
	default:
		return models.ClassificationHighRisk
	}
}

func tierText(c models.Classification, score float64, lang models.Language) (explanation, action, localized string) {
	if lang == models.LanguageEnglish {
		switch c {
		case models.ClassificationSafe:
			return fmt.Sprintf("The message looks generally safe (risk %.1f%%). No clear risk indicators.", score),
				"No action needed.", "Safe"
		case models.ClassificationLowRisk:
			return fmt.Sprintf("The message contains some signs that warrant moderate caution (risk %.1f%%).", score),
				"Verify the sender before responding.", "Low risk"
		case models.ClassificationSuspicious:
			return fmt.Sprintf("The message contains several suspicious indicators (risk %.1f%%). Exercise extreme caution.", score),
				"Do not click any links or share any information.", "Suspicious"
		default:
			return fmt.Sprintf("The message contains strong fraud indicators (risk %.1f%%). Do not interact with it.", score),
				"Delete the message and report it to the authorities.", "High risk"
		}
	}

	switch c {
	case models.ClassificationSafe:
		return fmt.Sprintf("الرسالة تبدو آمنة بشكل عام (نسبة الخطورة %.1f%%). لا توجد مؤشرات خطر واضحة.", score),
			"لا يلزم اتخاذ أي إجراء.", "آمنة"
	case models.ClassificationLowRisk:
		return fmt.Sprintf("الرسالة تحتوي على بعض العلامات التي تستدعي الحذر المعتدل (نسبة الخطورة %.1f%%).", score),
			"تحقق من هوية المرسل قبل الرد.", "منخفضة الخطورة"
	case models.ClassificationSuspicious:
		return fmt.Sprintf("الرسالة تحتوي على عدة مؤشرات مشبوهة (نسبة الخطورة %.1f%%). توخَّ الحذر الشديد.", score),
			"لا تضغط على أي روابط ولا تشارك أي معلومات.", "مشبوهة"
	default:
		return fmt.Sprintf("الرسالة تحتوي على مؤشرات احتيال قوية (نسبة الخطورة %.1f%%). لا تتفاعل معها.", score),
			"احذف الرسالة وأبلغ الجهات المختصة عنها.", "عالية الخطورة"
	}
}

// collectRedFlags unions per-URL probability callouts with the context
// verdict's flags. The catch-all placeholder is dropped whenever the
// score rises above the safe band.
func (e *FusionEngine) collectRedFlags(score float64, cv *models.ContextVerdict, verdicts []models.URLVerdict, lang models.Language) []string {
	var flags []string

	for _, v := range verdicts {
		switch {
		case v.Probability >= 0.7:
			if lang == models.LanguageEnglish {
				flags = append(flags, fmt.Sprintf("high risk URL: %s", v.URL))
			} else {
				flags = append(flags, fmt.Sprintf("رابط عالي الخطورة: %s", v.URL))
			}
		case v.Probability >= 0.5:
			if lang == models.LanguageEnglish {
				flags = append(flags, fmt.Sprintf("suspicious URL: %s", v.URL))
			} else {
				flags = append(flags, fmt.Sprintf("رابط مشبوه: %s", v.URL))
			}
		}
	}

	if cv != nil {
		source := cv.RedFlags
		if lang == models.LanguageArabic {
			source = cv.RedFlagsLocalized
		}
		for _, f := range source {
			if score > e.cfg.SafeCutoff && isPlaceholderFlag(f) {
				continue
			}
			flags = append(flags, f)
		}
	}

	if flags == nil {
		flags = []string{}
	}
	return flags
}

func isPlaceholderFlag(flag string) bool {
	return flag == "no significant red flags" ||
		flag == "لم يتم اكتشاف مؤشرات احتيال واضحة"
}
