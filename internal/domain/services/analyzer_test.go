package services

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"tanabbah/internal/config"
	"tanabbah/internal/domain/models"
	"tanabbah/internal/domain/services/ai"
)

func newTestPipeline() *Analyzer {
	log := newTestLogger()
	trust := NewTrustRegistry(nil)
	extractor := NewURLExtractor()
	classifier := NewURLClassifier(NewFeatureExtractor(log), nil, log)
	heuristic := ai.NewContextHeuristic(trust, 55)
	contextAnalyzer := ai.NewContextAnalyzer(nil, heuristic, trust, log)
	fusion := NewFusionEngine(trust, config.AnalysisConfig{
		PhishingThreshold: 55,
		SafeCutoff:        30,
		LowRiskCutoff:     55,
		SuspiciousCutoff:  75,
	}, log)
	return NewAnalyzer(extractor, classifier, contextAnalyzer, fusion, log)
}

func TestValidateMessage(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"trims whitespace", "  hello  ", "hello", false},
		{"empty", "", "", true},
		{"whitespace only", "   \n\t ", "", true},
		{"too long", strings.Repeat("a", 10001), "", true},
		{"at limit", strings.Repeat("a", 10000), strings.Repeat("a", 10000), false},
		{"script tag", "click <script>alert(1)</script>", "", true},
		{"javascript scheme", "open javascript:void(0)", "", true},
		{"event handler", `<img onerror=alert(1)>`, "", true},
		{"eval call", "run eval(payload)", "", true},
		{"arabic passes", "مرحباً بك", "مرحباً بك", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateMessage(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateMessage() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ValidateMessage() = %q, want %q", got, tt.want)
			}
			if tt.wantErr {
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Errorf("error type = %T, want *ValidationError", err)
				}
			}
		})
	}
}

func TestAnalyzePhishingMessage(t *testing.T) {
	a := newTestPipeline()

	result, err := a.Analyze(context.Background(), AnalyzeRequest{
		Message:       "urgent! your account is suspended, verify at http://bit.ly/secure-login",
		EnableContext: true,
		Language:      models.LanguageEnglish,
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if result.URLsFound != 1 {
		t.Fatalf("URLsFound = %d, want 1", result.URLsFound)
	}
	if result.Classification != models.ClassificationHighRisk && result.Classification != models.ClassificationSuspicious {
		t.Errorf("Classification = %v, want elevated tier (score %v)", result.Classification, result.CombinedRiskScore)
	}
	if result.ContextVerdict == nil || !result.ContextVerdict.IsPhishing {
		t.Error("context verdict should mark the message as phishing")
	}
	if result.Status != "success" {
		t.Errorf("Status = %q", result.Status)
	}
}

func TestAnalyzeBenignMessage(t *testing.T) {
	a := newTestPipeline()

	result, err := a.Analyze(context.Background(), AnalyzeRequest{
		Message:       "نلتقي غداً الساعة الخامسة في المكتب",
		EnableContext: true,
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if result.Language != models.LanguageArabic {
		t.Errorf("Language = %v, want default Arabic", result.Language)
	}
	if result.URLsFound != 0 {
		t.Errorf("URLsFound = %d, want 0", result.URLsFound)
	}
	if result.Classification != models.ClassificationSafe {
		t.Errorf("Classification = %v, want SAFE (score %v)", result.Classification, result.CombinedRiskScore)
	}
}

func TestAnalyzeTrustedGovernmentMessage(t *testing.T) {
	a := newTestPipeline()

	result, err := a.Analyze(context.Background(), AnalyzeRequest{
		Message:       "تم إصدار الوثيقة، راجع https://absher.sa للتفاصيل",
		EnableContext: true,
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if result.Classification != models.ClassificationSafe {
		t.Errorf("Classification = %v, want SAFE", result.Classification)
	}
	if result.CombinedRiskScore != 15.0 {
		t.Errorf("CombinedRiskScore = %v, want 15.0", result.CombinedRiskScore)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	a := newTestPipeline()
	req := AnalyzeRequest{
		Message:       "عاجل: ربحت جائزة، اضغط http://bit.ly/win و http://evil.xyz/claim",
		EnableContext: true,
	}

	first, err := a.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	for i := 0; i < 3; i++ {
		again, err := a.Analyze(context.Background(), req)
		if err != nil {
			t.Fatalf("Analyze() error = %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("results differ between runs:\n%+v\n%+v", first, again)
		}
	}
}

func TestAnalyzeURLOrderPreserved(t *testing.T) {
	a := newTestPipeline()

	result, err := a.Analyze(context.Background(), AnalyzeRequest{
		Message:       "links: https://one.example.com https://two.example.com https://three.example.com",
		EnableContext: false,
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	want := []string{"https://one.example.com", "https://two.example.com", "https://three.example.com"}
	if len(result.URLVerdicts) != len(want) {
		t.Fatalf("URLVerdicts = %d entries, want %d", len(result.URLVerdicts), len(want))
	}
	for i, w := range want {
		if result.URLVerdicts[i].URL != w {
			t.Errorf("URLVerdicts[%d].URL = %q, want %q", i, result.URLVerdicts[i].URL, w)
		}
	}
}

func TestAnalyzeWithoutContext(t *testing.T) {
	a := newTestPipeline()

	result, err := a.Analyze(context.Background(), AnalyzeRequest{
		Message:       "check https://example.com",
		EnableContext: false,
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if result.ContextVerdict != nil {
		t.Error("ContextVerdict should be nil when context analysis is disabled")
	}
	if result.CombinedRiskScore != result.URLRiskScore {
		t.Errorf("CombinedRiskScore = %v, want url risk passthrough %v", result.CombinedRiskScore, result.URLRiskScore)
	}
}
