package stagekit

import (
	"strings"
)

// DefaultFuzzyThreshold is the default distance bound for the `~` search
// operator. A row matches when its distance is strictly below the threshold.
const DefaultFuzzyThreshold = 4

// DamerauLevenshtein computes the Damerau-Levenshtein distance (edits plus
// adjacent transpositions) between source and target, bounded by threshold.
// It returns the distance and true, or 0 and false as soon as the distance
// provably exceeds the threshold: a length difference beyond the threshold
// exits before allocating, and a matrix row whose minimum exceeds the
// threshold exits mid-computation.
//
// The computation is rune-based and uses three rotating rows over the
// shorter input, so memory is O(min(len(source), len(target))).
func DamerauLevenshtein(source, target string, threshold int) (int, bool) {
	src := []rune(source)
	tgt := []rune(target)

	if abs(len(src)-len(tgt)) > threshold {
		return 0, false
	}

	// Keep the rows sized by the shorter string.
	if len(src) > len(tgt) {
		src, tgt = tgt, src
	}

	maxi := len(src)
	maxj := len(tgt)

	// An empty shorter string degenerates to the longer length, which the
	// length-difference exit above has already bounded by the threshold.
	if maxi == 0 {
		return maxj, true
	}

	dCurrent := make([]int, maxi+1)
	dMinus1 := make([]int, maxi+1)
	dMinus2 := make([]int, maxi+1)

	for i := 0; i <= maxi; i++ {
		dCurrent[i] = i
	}

	jm1 := 0
	for j := 1; j <= maxj; j++ {
		dCurrent, dMinus1, dMinus2 = dMinus2, dCurrent, dMinus1

		minDistance := int(^uint(0) >> 1)
		dCurrent[0] = j

		im1 := 0
		im2 := -1
		for i := 1; i <= maxi; i++ {
			cost := 1
			if src[im1] == tgt[jm1] {
				cost = 0
			}

			del := dCurrent[im1] + 1
			ins := dMinus1[i] + 1
			sub := dMinus1[im1] + cost

			min := del
			if ins < min {
				min = ins
			}
			if sub < min {
				min = sub
			}

			// Adjacent transposition
			if i > 1 && j > 1 && src[im2] == tgt[jm1] && src[im1] == tgt[j-2] {
				if trans := dMinus2[im2] + cost; trans < min {
					min = trans
				}
			}

			dCurrent[i] = min
			if min < minDistance {
				minDistance = min
			}
			im1++
			im2++
		}
		jm1++

		// Every path through this row already exceeds the threshold.
		if minDistance > threshold {
			return 0, false
		}
	}

	if dCurrent[maxi] > threshold {
		return 0, false
	}
	return dCurrent[maxi], true
}

// WithinDistance reports whether source is a fuzzy match for target:
// case-insensitive, non-empty source, distance strictly below threshold.
func WithinDistance(source, target string, threshold int) bool {
	if source == "" {
		return false
	}
	distance, ok := DamerauLevenshtein(strings.ToLower(source), strings.ToLower(target), threshold)
	return ok && distance < threshold
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
