package newsclient

import (
	"fmt"
	"strings"
)

// makeOR joins terms into a boolean OR clause.
func makeOR(terms []string) string {
	return strings.Join(terms, " OR ")
}

// ChunkGroup builds one or more queries of the form
// "(baseLeft) AND (t1 OR t2 OR ...)", packing terms into each query until
// adding the next one would exceed maxLen characters. A single term that
// cannot fit even alone is force-emitted as its own query rather than lost.
func ChunkGroup(baseLeft string, terms []string, maxLen int) []string {
	remaining := append([]string(nil), terms...)

	var chunks []string
	var cur []string
	for len(remaining) > 0 {
		next := remaining[0]
		trial := fmt.Sprintf("(%s) AND (%s)", baseLeft, makeOR(append(append([]string(nil), cur...), next)))
		if len(trial) <= maxLen {
			cur = append(cur, next)
			remaining = remaining[1:]
			continue
		}
		if len(cur) == 0 {
			// single oversized term: emit alone and move on
			chunks = append(chunks, fmt.Sprintf("(%s) AND (%s)", baseLeft, next))
			remaining = remaining[1:]
			continue
		}
		chunks = append(chunks, fmt.Sprintf("(%s) AND (%s)", baseLeft, makeOR(cur)))
		cur = nil
	}
	if len(cur) > 0 {
		chunks = append(chunks, fmt.Sprintf("(%s) AND (%s)", baseLeft, makeOR(cur)))
	}
	return chunks
}

// BuildQueries assembles the full sub-query list: the broad core query made
// of the base terms, followed by one or more chunks per term group. When the
// core itself exceeds the budget it degrades to the bare baseLeft term.
func BuildQueries(baseTerms []string, baseLeft string, groups [][]string, maxLen int) []string {
	core := makeOR(baseTerms)
	if len(core) > maxLen {
		core = baseLeft
	}

	queries := []string{core}
	for _, group := range groups {
		queries = append(queries, ChunkGroup(baseLeft, group, maxLen)...)
	}
	return queries
}
