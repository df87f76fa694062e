package ai

import (
	"strings"
	"testing"
)

// fakeTrust is a minimal TrustChecker with substring matching, mirroring
// the real registry's semantics.
type fakeTrust struct {
	domains []string
}

func (f *fakeTrust) IsTrusted(url string) bool {
	lower := strings.ToLower(url)
	for _, d := range f.domains {
		if strings.Contains(lower, d) {
			return true
		}
	}
	return false
}

func (f *fakeTrust) AllTrusted(urls []string) bool {
	if len(urls) == 0 {
		return false
	}
	for _, u := range urls {
		if !f.IsTrusted(u) {
			return false
		}
	}
	return true
}

func (f *fakeTrust) Domains() []string { return f.domains }

func newTestHeuristic() *ContextHeuristic {
	return NewContextHeuristic(&fakeTrust{domains: []string{"absher.sa", ".gov.sa"}}, 55)
}

func TestAnalyzeTrustedOfficialMessage(t *testing.T) {
	h := newTestHeuristic()

	cv := h.Analyze("تم إصدار رخصة القيادة، راجع https://absher.sa", []string{"https://absher.sa"})

	if cv.IsPhishing {
		t.Error("IsPhishing = true for official message")
	}
	if cv.Confidence != 25.0 {
		t.Errorf("Confidence = %v, want 25.0", cv.Confidence)
	}
	if cv.ContextScore != 20 {
		t.Errorf("ContextScore = %d, want 20", cv.ContextScore)
	}
	if cv.ModelUsed != "heuristic_with_trust" {
		t.Errorf("ModelUsed = %q", cv.ModelUsed)
	}
	if !cv.TrustedSource {
		t.Error("TrustedSource = false")
	}
	if len(cv.RedFlags) != 0 {
		t.Errorf("RedFlags = %v, want empty", cv.RedFlags)
	}
}

func TestAnalyzeTrustedURLButCredentialRequest(t *testing.T) {
	h := newTestHeuristic()

	// A credential request voids the trusted-source shortcut even
	// when every URL is official.
	cv := h.Analyze("enter your password at https://absher.sa", []string{"https://absher.sa"})

	if cv.Confidence == 25.0 && cv.ContextScore == 20 {
		t.Error("trusted shortcut applied despite credential request")
	}
	hasFlag := false
	for _, f := range cv.RedFlags {
		if f == "requests sensitive data" {
			hasFlag = true
		}
	}
	if !hasFlag {
		t.Errorf("RedFlags = %v, want sensitive-data flag", cv.RedFlags)
	}
}

func TestAnalyzePhishingIndicatorsCompound(t *testing.T) {
	h := newTestHeuristic()

	cv := h.Analyze("urgent: renew via https://bit.ly/x", []string{"https://bit.ly/x"})

	if !cv.IsPhishing {
		t.Errorf("IsPhishing = false, score %d", cv.ContextScore)
	}
	// base 20 + shortener 35 + urgency 15 + compounding 10
	want := 20 + 35 + 15 + 10
	if cv.ContextScore != want {
		t.Errorf("ContextScore = %d, want %d", cv.ContextScore, want)
	}
	if cv.Confidence != float64(want) {
		t.Errorf("Confidence = %v, want %v", cv.Confidence, float64(want))
	}
}

func TestAnalyzeBenignConfidenceIsInverted(t *testing.T) {
	h := newTestHeuristic()

	cv := h.Analyze("نلتقي غداً في المكتب", nil)

	if cv.IsPhishing {
		t.Error("IsPhishing = true for plain message")
	}
	if cv.ContextScore != 20 {
		t.Errorf("ContextScore = %d, want base 20", cv.ContextScore)
	}
	if cv.Confidence != 80.0 {
		t.Errorf("Confidence = %v, want 80.0 (100 - score)", cv.Confidence)
	}
	if len(cv.RedFlags) != 1 || cv.RedFlags[0] != "no significant red flags" {
		t.Errorf("RedFlags = %v, want placeholder", cv.RedFlags)
	}
}

func TestAnalyzeScoreClampedAtHundred(t *testing.T) {
	h := newTestHeuristic()

	msg := "urgent! you won a prize, your account is suspended, " +
		"confirm your password and otp now at أبشر http://bit.ly/x"
	cv := h.Analyze(msg, []string{"http://bit.ly/x"})

	if cv.ContextScore != 100 {
		t.Errorf("ContextScore = %d, want clamp at 100", cv.ContextScore)
	}
	if !cv.IsPhishing {
		t.Error("IsPhishing = false at max score")
	}
}

func TestAnalyzeLookalikeDomain(t *testing.T) {
	h := newTestHeuristic()

	cv := h.Analyze("راجع الرابط", []string{"https://absher.so/login"})

	found := false
	for _, f := range cv.RedFlags {
		if f == "lookalike domain" {
			found = true
		}
	}
	if !found {
		t.Errorf("RedFlags = %v, want lookalike flag for absher.so", cv.RedFlags)
	}
}

func TestWithinOneEdit(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"absher.sa", "absher.sa", true},
		{"absher.so", "absher.sa", true},  // substitution
		{"absherr.sa", "absher.sa", true}, // insertion
		{"abshe.sa", "absher.sa", true},   // deletion
		{"abshir.so", "absher.sa", false}, // two edits
		{"najiz.sa", "absher.sa", false},
	}
	for _, tt := range tests {
		if got := withinOneEdit(tt.a, tt.b); got != tt.want {
			t.Errorf("withinOneEdit(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestTranslateRedFlags(t *testing.T) {
	got := translateRedFlags([]string{"urgency tactics", "lookalike domain", "something novel"})

	want := []string{"أسلوب الاستعجال والضغط", "نطاق مشابه لجهة رسمية", "something novel"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("translateRedFlags[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if empty := translateRedFlags(nil); len(empty) != 1 || empty[0] != noFlagsArabic {
		t.Errorf("translateRedFlags(nil) = %v, want placeholder", empty)
	}
}
