package stagekit

import (
	"fmt"
	"strings"

	"github.com/uptrace/bun"
)

// Operator is a search term operator.
type Operator byte

const (
	OpEquals     Operator = '='
	OpNotEquals  Operator = '!'
	OpContains   Operator = '^'
	OpStartsWith Operator = '>'
	OpEndsWith   Operator = '<'
	OpFuzzy      Operator = '~'
)

const operatorChars = "=!^><~"

// Term is one parsed search condition: field, operator, value.
type Term struct {
	Field string
	Op    Operator
	Value string
}

// String renders the term back in DSL form.
func (t Term) String() string {
	return t.Field + string(t.Op) + t.Value
}

// Search is a parsed search query. All terms combine with AND.
type Search struct {
	Terms []Term
}

// String renders the query back in DSL form.
func (s *Search) String() string {
	parts := make([]string, 0, len(s.Terms))
	for _, t := range s.Terms {
		parts = append(parts, t.String())
	}
	return strings.Join(parts, ":")
}

// HasFuzzy reports whether any term uses the fuzzy operator.
func (s *Search) HasFuzzy() bool {
	for _, t := range s.Terms {
		if t.Op == OpFuzzy {
			return true
		}
	}
	return false
}

// ParseSearch parses a search query: colon-separated terms, each
// <field><operator><value>. A term is well-formed only when splitting it on
// the operator set yields exactly two non-blank parts; one malformed term
// rejects the whole query.
//
// Example:
//
//	search, err := stagekit.ParseSearch("name^fest:description~tribute")
func ParseSearch(query string) (*Search, error) {
	if strings.TrimSpace(query) == "" {
		return nil, NewError(ErrValidation, "empty search query")
	}

	parts := strings.Split(query, ":")
	terms := make([]Term, 0, len(parts))
	for _, part := range parts {
		term, err := parseTerm(part)
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}
	return &Search{Terms: terms}, nil
}

// IsValidSearch reports whether a query parses.
func IsValidSearch(query string) bool {
	_, err := ParseSearch(query)
	return err == nil
}

func parseTerm(raw string) (Term, error) {
	first := strings.IndexAny(raw, operatorChars)
	if first < 0 {
		return Term{}, NewError(ErrValidation, fmt.Sprintf("search term %q has no operator", raw))
	}

	field := raw[:first]
	value := raw[first+1:]
	if strings.TrimSpace(field) == "" || strings.TrimSpace(value) == "" {
		return Term{}, NewError(ErrValidation, fmt.Sprintf("search term %q is malformed", raw))
	}
	// A second operator anywhere makes the split ambiguous.
	if strings.ContainsAny(value, operatorChars) {
		return Term{}, NewError(ErrValidation, fmt.Sprintf("search term %q is malformed", raw))
	}

	return Term{
		Field: field,
		Op:    Operator(raw[first]),
		Value: value,
	}, nil
}

// boundTerm is a term resolved against a declared search field.
type boundTerm struct {
	field *SearchFieldDef
	term  Term
}

// bindSearch resolves every term's field name (case-insensitively) against
// the entity's declared search fields.
func (d *EntityDescriptor) bindSearch(s *Search) ([]boundTerm, error) {
	bound := make([]boundTerm, 0, len(s.Terms))
	for _, t := range s.Terms {
		field := d.Field(t.Field)
		if field == nil {
			return nil, NewError(ErrUnknownField, fmt.Sprintf("entity %q has no search field %q", d.name, t.Field)).
				WithEntity(d.name).
				WithField(t.Field)
		}
		bound = append(bound, boundTerm{field: field, term: t})
	}
	return bound, nil
}

// splitFuzzy partitions bound terms into store predicates and fuzzy terms.
func splitFuzzy(terms []boundTerm) (pushdown, fuzzy []boundTerm) {
	for _, bt := range terms {
		if bt.term.Op == OpFuzzy {
			fuzzy = append(fuzzy, bt)
		} else {
			pushdown = append(pushdown, bt)
		}
	}
	return pushdown, fuzzy
}

// applySearchTerms adds the non-fuzzy predicates to a select query.
func applySearchTerms(q *bun.SelectQuery, terms []boundTerm) *bun.SelectQuery {
	for _, bt := range terms {
		col := bun.Ident(bt.field.column)
		switch bt.term.Op {
		case OpEquals:
			q = q.Where("?TableAlias.? = ?", col, bt.term.Value)
		case OpNotEquals:
			q = q.Where("?TableAlias.? <> ?", col, bt.term.Value)
		case OpContains:
			q = q.Where("?TableAlias.? ILIKE ?", col, "%"+escapeLike(bt.term.Value)+"%")
		case OpStartsWith:
			q = q.Where("?TableAlias.? ILIKE ?", col, escapeLike(bt.term.Value)+"%")
		case OpEndsWith:
			q = q.Where("?TableAlias.? ILIKE ?", col, "%"+escapeLike(bt.term.Value))
		}
	}
	return q
}

// matchesFuzzy reports whether an entity satisfies every fuzzy term.
func matchesFuzzy(entity any, terms []boundTerm, threshold int) bool {
	for _, bt := range terms {
		if !WithinDistance(bt.field.Value(entity), bt.term.Value, threshold) {
			return false
		}
	}
	return true
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}
