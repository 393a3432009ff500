package search

// Partial-ratio fuzzy scoring: the shorter string is slid across the longer
// one and the best window similarity wins, so a query like "bohemian" scores
// high against "queen a night at the opera bohemian rhapsody".

// PartialRatio scores the similarity of s1 and s2 on a 0-100 scale using the
// best Levenshtein ratio between the shorter string and every equal-length
// window of the longer one.
func PartialRatio(s1, s2 string) int {
	shorter := []rune(s1)
	longer := []rune(s2)
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}

	if len(shorter) == 0 {
		if len(longer) == 0 {
			return 100
		}
		return 0
	}

	best := 0
	for i := 0; i+len(shorter) <= len(longer); i++ {
		score := ratio(shorter, longer[i:i+len(shorter)])
		if score > best {
			best = score
			if best == 100 {
				break
			}
		}
	}
	return best
}

// ratio converts the Levenshtein distance between a and b into a 0-100
// similarity score.
func ratio(a, b []rune) int {
	if len(a) == 0 && len(b) == 0 {
		return 100
	}

	dist := levenshteinDistance(a, b)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}

	return int(100*(float64(maxLen)-float64(dist))/float64(maxLen) + 0.5)
}

// levenshteinDistance computes the edit distance between two rune slices
// using the two-row dynamic programming form.
func levenshteinDistance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i

		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}

			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}

		prev, curr = curr, prev
	}

	return prev[len(b)]
}
