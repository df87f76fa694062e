package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"tanabbah/internal/domain/models"
	"tanabbah/internal/domain/services/ai"
	"tanabbah/pkg/logger"
)

const (
	maxMessageLength = 10000

	// URL classification fan-out per request
	maxConcurrentClassifications = 8
)

// scriptMarkers are rejected outright. The service never renders the
// message, but stored payloads travel to clients over the event stream.
var scriptMarkers = []string{"<script", "javascript:", "onerror=", "onload=", "eval("}

// ValidationError marks a rejected request payload
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid message: %s", e.Reason)
}

// ValidateMessage trims and bounds-checks an inbound message.
func ValidateMessage(message string) (string, error) {
	trimmed := strings.TrimSpace(message)
	if len(trimmed) == 0 {
		return "", &ValidationError{Reason: "message cannot be empty"}
	}
	if len(trimmed) > maxMessageLength {
		return "", &ValidationError{Reason: "message too long"}
	}
	lower := strings.ToLower(trimmed)
	for _, marker := range scriptMarkers {
		if strings.Contains(lower, marker) {
			return "", &ValidationError{Reason: "message contains disallowed content"}
		}
	}
	return trimmed, nil
}

// AnalyzeRequest carries one message through the pipeline
type AnalyzeRequest struct {
	Message       string
	EnableContext bool
	Language      models.Language
}

// Analyzer runs the full pipeline: URL extraction, per-URL
// classification, context analysis and risk fusion.
type Analyzer struct {
	extractor  *URLExtractor
	classifier *URLClassifier
	context    *ai.ContextAnalyzer
	fusion     *FusionEngine
	logger     *logger.Logger
}

// NewAnalyzer wires the pipeline stages together
func NewAnalyzer(extractor *URLExtractor, classifier *URLClassifier, contextAnalyzer *ai.ContextAnalyzer, fusion *FusionEngine, log *logger.Logger) *Analyzer {
	return &Analyzer{
		extractor:  extractor,
		classifier: classifier,
		context:    contextAnalyzer,
		fusion:     fusion,
		logger:     log.WithComponent("analyzer"),
	}
}

// Analyze produces a complete result for one message. The result is
// deterministic for a fixed input when the context analyzer runs in
// heuristic mode.
func (a *Analyzer) Analyze(ctx context.Context, req AnalyzeRequest) (*models.AnalysisResult, error) {
	message, err := ValidateMessage(req.Message)
	if err != nil {
		return nil, err
	}

	lang := req.Language
	if lang != models.LanguageEnglish {
		lang = models.LanguageArabic
	}

	urls := a.extractor.Extract(message)
	a.logger.Debug().Int("urls", len(urls)).Msg("extracted URLs")

	// The context analyzer is the only network-bound stage, so it runs
	// alongside URL classification rather than after it.
	var cv *models.ContextVerdict
	cvDone := make(chan struct{})
	if req.EnableContext {
		go func() {
			defer close(cvDone)
			cv = a.context.Analyze(ctx, message, urls)
		}()
	} else {
		close(cvDone)
	}

	verdicts := a.classifyAll(urls)
	urlRisk := URLRiskScore(verdicts)
	<-cvDone

	outcome := a.fusion.Fuse(message, urlRisk, cv, verdicts, lang)

	a.logger.Info().
		Float64("url_risk", urlRisk).
		Float64("combined", outcome.RiskScore).
		Str("classification", string(outcome.Classification)).
		Msg("analysis completed")

	return &models.AnalysisResult{
		Message:                 message,
		Language:                lang,
		URLsFound:               len(urls),
		URLVerdicts:             verdicts,
		URLRiskScore:            urlRisk,
		ContextVerdict:          cv,
		CombinedRiskScore:       outcome.RiskScore,
		Classification:          outcome.Classification,
		ClassificationLocalized: outcome.ClassificationLocalized,
		Explanation:             outcome.Explanation,
		ActionGuidance:          outcome.ActionGuidance,
		RedFlags:                outcome.RedFlags,
		Status:                  "success",
	}, nil
}

// classifyAll fans out per-URL classification. Output order matches
// the input order regardless of completion order.
func (a *Analyzer) classifyAll(urls []string) []models.URLVerdict {
	if len(urls) == 0 {
		return []models.URLVerdict{}
	}

	verdicts := make([]models.URLVerdict, len(urls))
	sem := make(chan struct{}, maxConcurrentClassifications)
	var wg sync.WaitGroup

	for i, u := range urls {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, url string) {
			defer wg.Done()
			defer func() { <-sem }()
			verdicts[idx] = a.classifier.Classify(url)
		}(i, u)
	}
	wg.Wait()

	return verdicts
}
