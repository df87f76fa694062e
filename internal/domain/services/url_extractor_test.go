package services

import (
	"strings"
	"testing"
)

func TestExtractURLs(t *testing.T) {
	e := NewURLExtractor()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "protocol url",
			text: "visit https://example.com today",
			want: []string{"https://example.com"},
		},
		{
			name: "bare domain",
			text: "go to example.com now",
			want: []string{"example.com"},
		},
		{
			name: "trailing punctuation stripped",
			text: "click https://evil.com/login.",
			want: []string{"https://evil.com/login"},
		},
		{
			name: "duplicates removed",
			text: "https://a.com and again https://a.com",
			want: []string{"https://a.com"},
		},
		{
			name: "multiple urls keep order",
			text: "first https://a.com then https://b.com",
			want: []string{"https://a.com", "https://b.com"},
		},
		{
			name: "javascript payload dropped",
			text: "open https://evil.com/?r=javascript:alert(1) now",
			want: nil,
		},
		{
			name: "no urls",
			text: "مرحبا كيف حالك",
			want: nil,
		},
		{
			name: "arabic text with url",
			text: "اضغط هنا bit.ly/win للفوز بالجائزة",
			want: []string{"bit.ly/win"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Extract(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("Extract(%q) = %v, want %v", tt.text, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Extract(%q)[%d] = %q, want %q", tt.text, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestExtractOverlongURLDropped(t *testing.T) {
	e := NewURLExtractor()
	long := "https://example.com/" + strings.Repeat("a", 600)
	if got := e.Extract("see " + long); len(got) != 0 {
		t.Errorf("expected overlong URL to be dropped, got %v", got)
	}
}
