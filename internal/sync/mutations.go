package sync

import (
	"fmt"
	"sort"
	"strings"
)

// buildSetClause turns a partial field map into a deterministic Cypher SET
// clause and its parameters. Only supplied fields appear, so partial-update
// events never clobber unspecified attributes. Keys are sorted so the same
// event always produces the same statement.
func buildSetClause(alias string, fields map[string]any) (string, map[string]any) {
	if len(fields) == 0 {
		return "", map[string]any{}
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	clauses := make([]string, 0, len(keys))
	params := make(map[string]any, len(keys))
	for _, k := range keys {
		clauses = append(clauses, fmt.Sprintf("%s.%s = $%s", alias, k, k))
		params[k] = fields[k]
	}
	return strings.Join(clauses, ", "), params
}

// mergeEntityCypher builds a merge-by-external-id upsert for an entity label.
// Merge semantics make re-delivery of the same event a no-op.
func mergeEntityCypher(label string, fields map[string]any) (string, map[string]any) {
	setClause, params := buildSetClause("n", fields)
	cypher := fmt.Sprintf("MERGE (n:%s {extId: $id})", label)
	if setClause != "" {
		cypher += " SET " + setClause
	}
	return cypher, params
}

// updateEntityCypher builds a partial update for an existing entity.
// Returns ok=false when the event carried no fields.
func updateEntityCypher(label string, fields map[string]any) (string, map[string]any, bool) {
	setClause, params := buildSetClause("n", fields)
	if setClause == "" {
		return "", nil, false
	}
	cypher := fmt.Sprintf("MATCH (n:%s {extId: $id}) SET %s", label, setClause)
	return cypher, params, true
}
