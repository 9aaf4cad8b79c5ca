package querycache

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Weather in Delhi", "weather in delhi"},
		{"  news today  ", "news today"},
		{"\tALREADY lower\n", "already lower"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "weather in delhi", "weather in delhi", 1.0},
		{"both empty", "", "", 1.0},
		{"one empty", "abc", "", 0.0},
		{"disjoint", "abc", "xyz", 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Similarity(tt.a, tt.b); got != tt.want {
				t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSimilarityTypo(t *testing.T) {
	// A single dropped letter should stay comfortably above the fuzzy
	// match threshold.
	got := Similarity("weathr in delhi", "weather in delhi")
	if got < SimilarityThreshold {
		t.Errorf("Similarity(typo) = %v, want >= %v", got, SimilarityThreshold)
	}
	if got >= 1.0 {
		t.Errorf("Similarity(typo) = %v, want < 1.0", got)
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	a, b := "news today", "news for today"
	if x, y := Similarity(a, b), Similarity(b, a); x != y {
		t.Errorf("Similarity not symmetric: %v vs %v", x, y)
	}
}
