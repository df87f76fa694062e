package ai

import (
	"context"
	"testing"

	"tanabbah/pkg/logger"
)

func newTestAnalyzer() *ContextAnalyzer {
	trust := &fakeTrust{domains: []string{"absher.sa", ".gov.sa"}}
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	return NewContextAnalyzer(nil, NewContextHeuristic(trust, 55), trust, log)
}

func TestAnalyzerTrustOverride(t *testing.T) {
	a := newTestAnalyzer()

	cv := a.Analyze(context.Background(), "موعدك غداً، التفاصيل في https://absher.sa", []string{"https://absher.sa"})

	if cv.IsPhishing {
		t.Error("IsPhishing = true for trusted-only message")
	}
	if cv.Confidence != 20.0 {
		t.Errorf("Confidence = %v, want 20.0", cv.Confidence)
	}
	if cv.ContextScore != 15 {
		t.Errorf("ContextScore = %d, want 15", cv.ContextScore)
	}
	if cv.ModelUsed != "trust_override" {
		t.Errorf("ModelUsed = %q, want trust_override", cv.ModelUsed)
	}
}

func TestAnalyzerTrustOverrideSkippedForShortener(t *testing.T) {
	a := newTestAnalyzer()

	// Trusted by substring yet redirecting through a shortener.
	cv := a.Analyze(context.Background(), "التفاصيل هنا", []string{"https://absher.sa/r?u=bit.ly/x"})

	if cv.ModelUsed == "trust_override" {
		t.Error("trust override applied despite a shortened URL in the list")
	}
}

func TestAnalyzerTrustOverrideSkippedForCredentialRequest(t *testing.T) {
	a := newTestAnalyzer()

	cv := a.Analyze(context.Background(), "أدخل كلمة المرور عبر https://absher.sa", []string{"https://absher.sa"})

	if cv.ModelUsed == "trust_override" {
		t.Error("trust override applied despite credential request")
	}
}

func TestAnalyzerFallsBackToHeuristicWithoutLLM(t *testing.T) {
	a := newTestAnalyzer()

	cv := a.Analyze(context.Background(), "you won a prize! claim now at http://evil.xyz", []string{"http://evil.xyz"})

	if cv.ModelUsed != "heuristic_with_trust" {
		t.Errorf("ModelUsed = %q, want heuristic path", cv.ModelUsed)
	}
	if !cv.IsPhishing {
		t.Errorf("IsPhishing = false, score %d", cv.ContextScore)
	}
}
