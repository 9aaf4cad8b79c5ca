package predictor

import "testing"

func TestParseCandidates(t *testing.T) {
	tests := []struct {
		name    string
		content string
		max     int
		want    []string
	}{
		{
			name:    "clean json",
			content: `[{"query": "weather tomorrow", "confidence": 0.9}, {"query": "air quality delhi", "confidence": 0.7}]`,
			max:     3,
			want:    []string{"weather tomorrow", "air quality delhi"},
		},
		{
			name:    "wrapped in prose",
			content: "Sure! Here are my predictions:\n[{\"query\": \"news today\", \"confidence\": 0.8}]\nLet me know if you need more.",
			max:     3,
			want:    []string{"news today"},
		},
		{
			name:    "single quotes",
			content: `[{'query': 'cricket score', 'confidence': 0.95}]`,
			max:     3,
			want:    []string{"cricket score"},
		},
		{
			name:    "capped at max",
			content: `[{"query": "a"}, {"query": "b"}, {"query": "c"}, {"query": "d"}]`,
			max:     3,
			want:    []string{"a", "b", "c"},
		},
		{
			name:    "skips empty and missing query",
			content: `[{"query": ""}, {"confidence": 0.9}, {"query": "kept"}]`,
			max:     3,
			want:    []string{"kept"},
		},
		{
			name:    "no array",
			content: "I cannot predict anything from that history.",
			max:     3,
			want:    nil,
		},
		{
			name:    "malformed array",
			content: `[{"query": "unterminated`,
			max:     3,
			want:    nil,
		},
		{
			name:    "non-object elements skipped",
			content: `["just a string", 42, {"query": "real one"}]`,
			max:     3,
			want:    []string{"real one"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCandidates(tt.content, tt.max)
			if got == nil {
				t.Fatal("ParseCandidates() returned nil, want non-nil slice")
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ParseCandidates() returned %d candidates, want %d: %v", len(got), len(tt.want), got)
			}
			for i, w := range tt.want {
				if got[i].Query != w {
					t.Errorf("candidate[%d].Query = %q, want %q", i, got[i].Query, w)
				}
			}
		})
	}
}

func TestParseCandidatesDefaultConfidence(t *testing.T) {
	got := ParseCandidates(`[{"query": "no confidence given"}]`, 3)
	if len(got) != 1 {
		t.Fatalf("ParseCandidates() returned %d candidates, want 1", len(got))
	}
	if got[0].Confidence != 1.0 {
		t.Errorf("default confidence = %v, want 1.0", got[0].Confidence)
	}
}

func TestParseCandidatesMalformedAfterArrayEnd(t *testing.T) {
	// The non-greedy span stops at the first closing bracket; what follows
	// must not break parsing.
	got := ParseCandidates(`[{"query": "x", "confidence": 0.5}] and more brackets ]]`, 3)
	if len(got) != 1 || got[0].Query != "x" {
		t.Errorf("ParseCandidates() = %v, want single candidate x", got)
	}
}
