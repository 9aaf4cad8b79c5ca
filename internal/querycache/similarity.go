package querycache

// SimilarityThreshold is the minimum similarity ratio for a fuzzy cache
// hit. It is a hard contract of the lookup path, not tunable per call.
const SimilarityThreshold = 0.85

// Similarity returns a Ratcliff/Obershelp ratio in [0,1]: twice the number
// of matching characters divided by the total length of both strings,
// where matches are counted recursively around the longest common
// substring. Symmetric and 1.0 for identical inputs.
func Similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	return 2.0 * float64(matchCount(ra, rb)) / float64(total)
}

func matchCount(a, b []rune) int {
	ai, bi, n := longestCommonSubstring(a, b)
	if n == 0 {
		return 0
	}
	return n + matchCount(a[:ai], b[:bi]) + matchCount(a[ai+n:], b[bi+n:])
}

// longestCommonSubstring returns the start offsets and length of the
// longest run of equal runes shared by a and b.
func longestCommonSubstring(a, b []rune) (ai, bi, n int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > n {
					n = cur[j]
					ai = i - n
					bi = j - n
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return ai, bi, n
}
