package stagekit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseSearchSingleTerm validates parsing of each operator
func TestParseSearchSingleTerm(t *testing.T) {
	tests := []struct {
		name  string
		query string
		field string
		op    Operator
		value string
	}{
		{"equals", "name=Madison", "name", OpEquals, "Madison"},
		{"not equals", "status!void", "status", OpNotEquals, "void"},
		{"contains", "name^fest", "name", OpContains, "fest"},
		{"starts with", "name>The", "name", OpStartsWith, "The"},
		{"ends with", "name<Hall", "name", OpEndsWith, "Hall"},
		{"fuzzy", "name~tribute", "name", OpFuzzy, "tribute"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			search, err := ParseSearch(tt.query)
			require.NoError(t, err)
			require.Len(t, search.Terms, 1)
			assert.Equal(t, tt.field, search.Terms[0].Field)
			assert.Equal(t, tt.op, search.Terms[0].Op)
			assert.Equal(t, tt.value, search.Terms[0].Value)
		})
	}
}

// TestParseSearchMultipleTerms validates colon-separated conjunction
func TestParseSearchMultipleTerms(t *testing.T) {
	search, err := ParseSearch("name^fest:description~tribute:status!void")
	require.NoError(t, err)
	require.Len(t, search.Terms, 3)

	assert.Equal(t, "name", search.Terms[0].Field)
	assert.Equal(t, OpContains, search.Terms[0].Op)
	assert.Equal(t, "description", search.Terms[1].Field)
	assert.Equal(t, OpFuzzy, search.Terms[1].Op)
	assert.Equal(t, "status", search.Terms[2].Field)
	assert.Equal(t, OpNotEquals, search.Terms[2].Op)

	assert.True(t, search.HasFuzzy())
	assert.Equal(t, "name^fest:description~tribute:status!void", search.String())
}

// TestParseSearchMalformed validates that one bad term rejects the whole query
func TestParseSearchMalformed(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"empty query", ""},
		{"whitespace query", "   "},
		{"no operator", "name"},
		{"missing value", "name="},
		{"missing field", "=value"},
		{"blank field", "  =value"},
		{"blank value", "name=  "},
		{"two operators", "name=^value"},
		{"operator in value", "name=a=b"},
		{"good term then bad term", "name^fest:description"},
		{"empty middle term", "name^fest::status!void"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSearch(tt.query)
			assert.Error(t, err)
			assert.True(t, IsValidation(err))
			assert.False(t, IsValidSearch(tt.query))
		})
	}
}

// TestBindSearchUnknownField validates field resolution against the registry
func TestBindSearchUnknownField(t *testing.T) {
	registry := DefaultRegistry()
	desc := registry.Entity("Venue")
	require.NotNil(t, desc)

	search, err := ParseSearch("name^fest")
	require.NoError(t, err)
	bound, err := desc.bindSearch(search)
	require.NoError(t, err)
	require.Len(t, bound, 1)
	assert.Equal(t, "name", bound[0].field.Name())

	// Field names resolve case-insensitively
	search, err = ParseSearch("NAME^fest")
	require.NoError(t, err)
	_, err = desc.bindSearch(search)
	assert.NoError(t, err)

	// Undeclared fields are rejected, never silently dropped
	search, err = ParseSearch("capacity>100")
	require.NoError(t, err)
	_, err = desc.bindSearch(search)
	assert.Error(t, err)
	assert.True(t, IsUnknownField(err))
}

// TestSplitFuzzy validates the pushdown/fuzzy partition
func TestSplitFuzzy(t *testing.T) {
	registry := DefaultRegistry()
	desc := registry.Entity("Venue")

	search, err := ParseSearch("name^fest:description~tribute:email=a@b.c")
	require.NoError(t, err)
	bound, err := desc.bindSearch(search)
	require.NoError(t, err)

	pushdown, fuzzy := splitFuzzy(bound)
	assert.Len(t, pushdown, 2)
	assert.Len(t, fuzzy, 1)
	assert.Equal(t, OpFuzzy, fuzzy[0].term.Op)
}

// TestMatchesFuzzy validates the in-memory fuzzy filter over entity values
func TestMatchesFuzzy(t *testing.T) {
	registry := DefaultRegistry()
	desc := registry.Entity("Venue")

	search, err := ParseSearch("name~Madison")
	require.NoError(t, err)
	bound, err := desc.bindSearch(search)
	require.NoError(t, err)
	_, fuzzy := splitFuzzy(bound)

	near := &Venue{Base: Base{Name: "Madisen"}}
	far := &Venue{Base: Base{Name: "Carnegie"}}
	empty := &Venue{}

	assert.True(t, matchesFuzzy(near, fuzzy, DefaultFuzzyThreshold))
	assert.False(t, matchesFuzzy(far, fuzzy, DefaultFuzzyThreshold))
	assert.False(t, matchesFuzzy(empty, fuzzy, DefaultFuzzyThreshold))
}

// TestEscapeLike validates LIKE wildcard escaping
func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c\\d`, escapeLike(`c\d`))
	assert.Equal(t, "plain", escapeLike("plain"))
}
