package rag

import (
	"fmt"
	"strings"

	"matchday/web/types"
)

// CitationToken returns the stable, greppable token that tags a context entry
// in the assembled prompt. The generation step's output is validated against
// these tokens, so they must appear verbatim.
func CitationToken(matchID string) string {
	return fmt.Sprintf("[match:%s]", matchID)
}

// BuildPrompt assembles the retrieved summaries and the user's question into a
// single bounded prompt. Entries keep their retrieval order (closest first).
// When the character budget is exceeded, entries are dropped wholesale from
// the tail, never cut mid-text; the first entry is always kept. The returned
// slice holds exactly the entries present in the prompt so callers can shape a
// matching source list.
func BuildPrompt(query string, results []types.SearchResult, charBudget int) (string, []types.SearchResult) {
	if len(results) == 0 {
		return "", nil
	}

	kept := results
	if charBudget > 0 {
		for len(kept) > 1 && promptSize(query, kept) > charBudget {
			kept = kept[:len(kept)-1]
		}
	}

	var sb strings.Builder
	sb.WriteString("Context:\n")
	for _, r := range kept {
		sb.WriteString(CitationToken(r.MatchID.String()))
		sb.WriteString(" ")
		sb.WriteString(strings.TrimSpace(r.Content))
		sb.WriteString("\n")
	}
	sb.WriteString("\nQuestion: ")
	sb.WriteString(strings.TrimSpace(query))
	return sb.String(), kept
}

func promptSize(query string, results []types.SearchResult) int {
	size := len("Context:\n") + len("\nQuestion: ") + len(query)
	for _, r := range results {
		size += len(CitationToken(r.MatchID.String())) + 1 + len(r.Content) + 1
	}
	return size
}
