package rag

import (
	"strings"
	"testing"

	"matchday/web/types"

	"github.com/google/uuid"
)

func searchResult(content string, similarity float64) types.SearchResult {
	return types.SearchResult{
		MatchID:    uuid.New(),
		Content:    content,
		Similarity: similarity,
	}
}

func TestBuildPromptCitationTokens(t *testing.T) {
	results := []types.SearchResult{
		searchResult("Arsenal beat Chelsea 3-1.", 0.91),
		searchResult("Liverpool and Everton drew 0-0.", 0.85),
	}

	prompt, kept := BuildPrompt("who won the derby", results, 0)

	if len(kept) != len(results) {
		t.Fatalf("BuildPrompt() kept %d entries, want %d", len(kept), len(results))
	}
	for _, r := range results {
		token := CitationToken(r.MatchID.String())
		if !strings.Contains(prompt, token) {
			t.Errorf("prompt missing citation token %s", token)
		}
		if !strings.Contains(prompt, r.Content) {
			t.Errorf("prompt missing untruncated content %q", r.Content)
		}
	}
	if !strings.Contains(prompt, "Question: who won the derby") {
		t.Errorf("prompt missing the user question: %q", prompt)
	}
}

func TestBuildPromptPreservesOrder(t *testing.T) {
	first := searchResult("first entry", 0.9)
	second := searchResult("second entry", 0.5)

	prompt, _ := BuildPrompt("q", []types.SearchResult{first, second}, 0)

	posFirst := strings.Index(prompt, first.MatchID.String())
	posSecond := strings.Index(prompt, second.MatchID.String())
	if posFirst < 0 || posSecond < 0 || posFirst > posSecond {
		t.Errorf("entries out of retrieval order in prompt:\n%s", prompt)
	}
}

func TestBuildPromptBudgetDropsWholeTailEntries(t *testing.T) {
	long := strings.Repeat("x", 200)
	results := []types.SearchResult{
		searchResult(long, 0.9),
		searchResult(long, 0.8),
		searchResult(long, 0.7),
	}

	// Budget fits roughly one entry; the tail must go wholesale.
	prompt, kept := BuildPrompt("q", results, 350)

	if len(kept) != 1 {
		t.Fatalf("BuildPrompt() kept %d entries, want 1", len(kept))
	}
	if kept[0].MatchID != results[0].MatchID {
		t.Error("BuildPrompt() dropped the closest entry instead of the tail")
	}
	// The surviving entry must be intact, not cut mid-text.
	if !strings.Contains(prompt, long) {
		t.Error("surviving entry was truncated mid-text")
	}
	for _, dropped := range results[1:] {
		if strings.Contains(prompt, dropped.MatchID.String()) {
			t.Errorf("dropped entry %s still present in prompt", dropped.MatchID)
		}
	}
}

func TestBuildPromptKeepsFirstEntryOverBudget(t *testing.T) {
	only := searchResult(strings.Repeat("y", 500), 0.9)

	prompt, kept := BuildPrompt("q", []types.SearchResult{only}, 100)

	if len(kept) != 1 {
		t.Fatalf("BuildPrompt() kept %d entries, want the single closest one", len(kept))
	}
	if !strings.Contains(prompt, only.Content) {
		t.Error("single over-budget entry was truncated")
	}
}

func TestBuildPromptEmptyResults(t *testing.T) {
	prompt, kept := BuildPrompt("q", nil, 1000)
	if prompt != "" || kept != nil {
		t.Errorf("BuildPrompt() with no results = (%q, %v), want empty", prompt, kept)
	}
}

func TestBuildPromptNoFabricatedTokens(t *testing.T) {
	results := []types.SearchResult{
		searchResult("summary one", 0.9),
		searchResult("summary two", 0.8),
	}
	prompt, _ := BuildPrompt("q", results, 0)

	known := map[string]bool{}
	for _, r := range results {
		known[CitationToken(r.MatchID.String())] = true
	}

	// Every [match:...] token in the prompt must belong to a retrieved row.
	rest := prompt
	for {
		start := strings.Index(rest, "[match:")
		if start < 0 {
			break
		}
		end := strings.Index(rest[start:], "]")
		if end < 0 {
			t.Fatalf("unterminated citation token in prompt: %q", rest[start:])
		}
		token := rest[start : start+end+1]
		if !known[token] {
			t.Errorf("prompt contains fabricated citation token %s", token)
		}
		rest = rest[start+end+1:]
	}
}
