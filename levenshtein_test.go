package stagekit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDamerauLevenshteinDistances validates basic edit distances
func TestDamerauLevenshteinDistances(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		target   string
		distance int
	}{
		{"identical", "venue", "venue", 0},
		{"single substitution", "venue", "venua", 1},
		{"single insertion", "venue", "venues", 1},
		{"single deletion", "venue", "venu", 1},
		{"adjacent transposition", "venue", "vneue", 1},
		{"substitution at the head", "kitten", "sitten", 1},
		{"kitten sitting", "kitten", "sitting", 3},
		{"both empty", "", "", 0},
		{"empty source", "", "abc", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			distance, ok := DamerauLevenshtein(tt.source, tt.target, 10)
			assert.True(t, ok)
			assert.Equal(t, tt.distance, distance)
		})
	}
}

// TestDamerauLevenshteinTransposition validates that an adjacent swap costs
// one edit instead of the two a plain Levenshtein would charge
func TestDamerauLevenshteinTransposition(t *testing.T) {
	distance, ok := DamerauLevenshtein("abcd", "abdc", 10)
	assert.True(t, ok)
	assert.Equal(t, 1, distance)

	// Non-adjacent swaps are not a single transposition
	distance, ok = DamerauLevenshtein("abcd", "dbca", 10)
	assert.True(t, ok)
	assert.Equal(t, 2, distance)
}

// TestDamerauLevenshteinThreshold validates the bounded early exits
func TestDamerauLevenshteinThreshold(t *testing.T) {
	t.Run("Length difference exceeds threshold", func(t *testing.T) {
		_, ok := DamerauLevenshtein("ab", "abcdefgh", 3)
		assert.False(t, ok)
	})

	t.Run("Distance above threshold", func(t *testing.T) {
		_, ok := DamerauLevenshtein("aaaa", "bbbb", 3)
		assert.False(t, ok)
	})

	t.Run("Distance equal to threshold is reported", func(t *testing.T) {
		distance, ok := DamerauLevenshtein("aaa", "bbb", 3)
		assert.True(t, ok)
		assert.Equal(t, 3, distance)
	})

	t.Run("Empty source inside the threshold", func(t *testing.T) {
		distance, ok := DamerauLevenshtein("", "abc", 3)
		assert.True(t, ok)
		assert.Equal(t, 3, distance)

		_, ok = DamerauLevenshtein("", "abc", 2)
		assert.False(t, ok)
	})

	t.Run("Unicode runes count as single edits", func(t *testing.T) {
		distance, ok := DamerauLevenshtein("caña", "cana", 2)
		assert.True(t, ok)
		assert.Equal(t, 1, distance)
	})
}

// TestWithinDistance validates the fuzzy match predicate: case-insensitive
// and strictly below the threshold
func TestWithinDistance(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		target    string
		threshold int
		match     bool
	}{
		{"identical", "Tribute", "tribute", 4, true},
		{"distance below threshold", "festival", "festivals", 4, true},
		{"distance equal to threshold rejected", "aaa", "bbb", 3, false},
		{"distance just below threshold", "aaa", "bba", 3, true},
		{"empty source never matches", "", "anything", 4, false},
		{"case insensitive", "VENUE", "venua", 4, true},
		{"far apart", "stadium", "amphitheatre", 4, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.match, WithinDistance(tt.source, tt.target, tt.threshold))
		})
	}
}

// BenchmarkDamerauLevenshtein measures the bounded distance computation
func BenchmarkDamerauLevenshtein(b *testing.B) {
	for i := 0; i < b.N; i++ {
		DamerauLevenshtein("international music festival", "internatinoal musci festival", DefaultFuzzyThreshold)
	}
}

// BenchmarkDamerauLevenshteinEarlyExit measures the length-difference exit
func BenchmarkDamerauLevenshteinEarlyExit(b *testing.B) {
	for i := 0; i < b.N; i++ {
		DamerauLevenshtein("abc", "a very long string that cannot possibly match", DefaultFuzzyThreshold)
	}
}
