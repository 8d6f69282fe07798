package stagekit

import (
	"strings"

	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// ParseIncludes splits a comma-separated include list into trimmed,
// non-empty paths ("venue, organizers" -> ["venue", "organizers"]).
// Validation happens later, against the entity's declared navigations.
func ParseIncludes(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	includes := make([]string, 0, len(parts))
	for _, part := range parts {
		if p := strings.TrimSpace(part); p != "" {
			includes = append(includes, p)
		}
	}
	return includes
}

// validIncludes resolves include paths against the entity's declared
// navigations, case-insensitively, segment by segment. Invalid paths are
// dropped with a logged warning, never an error; valid ones come back in
// canonical casing, ready for eager loading.
func validIncludes(desc *EntityDescriptor, includes []string, log *zap.Logger) []string {
	if len(includes) == 0 {
		return nil
	}
	valid := make([]string, 0, len(includes))
	for _, include := range includes {
		canonical, err := desc.ResolveIncludePath(include)
		if err != nil {
			log.Warn("dropping invalid include path",
				zap.String("entity", desc.Name()),
				zap.String("include", include),
				zap.Error(err))
			continue
		}
		valid = append(valid, canonical)
	}
	return valid
}

// applyIncludes adds eager-load clauses for already-validated paths.
func applyIncludes(q *bun.SelectQuery, includes []string) *bun.SelectQuery {
	for _, include := range includes {
		q = q.Relation(include)
	}
	return q
}
