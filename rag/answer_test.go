package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"matchday/config"
	apperrors "matchday/errors"
	"matchday/web/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type stubEmbedder struct {
	calls  int
	vector []float32
	err    error
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.vector, nil
}

type stubSearcher struct {
	calls     int
	gotCount  int
	gotFilter map[string]string
	results   []types.SearchResult
	err       error
}

func (s *stubSearcher) SearchEmbeddings(ctx context.Context, queryEmbedding []float32, matchCount int, filter map[string]string) ([]types.SearchResult, error) {
	s.calls++
	s.gotCount = matchCount
	s.gotFilter = filter
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

type stubGenerator struct {
	calls     int
	gotPrompt string
	answer    string
	err       error
}

func (s *stubGenerator) Chat(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	s.calls++
	s.gotPrompt = userPrompt
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

func testConfig() *config.Config {
	return &config.Config{
		DefaultResultCount:   5,
		MaxResultCount:       10,
		ContextCharBudget:    6000,
		CurrentSeason:        "2023/24",
		HighScoringThreshold: 4,
	}
}

func newTestService(e *stubEmbedder, s *stubSearcher, g *stubGenerator) *Service {
	logger, _ := zap.NewDevelopment()
	return New(testConfig(), e, s, g, logger)
}

func retrievedMatch(id string, home, away string) types.SearchResult {
	matchID := uuid.NewSHA1(uuid.NameSpaceOID, []byte(id))
	return types.SearchResult{
		MatchID:    matchID,
		Content:    fmt.Sprintf("%s beat %s 3-1.", home, away),
		Similarity: 0.9,
		Metadata: map[string]string{
			"home_team": home,
			"away_team": away,
			"date":      time.Date(2023, 9, 2, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
		},
	}
}

func TestClampResultCount(t *testing.T) {
	svc := newTestService(&stubEmbedder{}, &stubSearcher{}, &stubGenerator{})

	tests := []struct {
		name      string
		requested *int
		want      int
	}{
		{"nil_uses_default", nil, 5},
		{"zero_clamps_to_one", intPtr(0), 1},
		{"negative_clamps_to_one", intPtr(-3), 1},
		{"in_range_passes_through", intPtr(7), 7},
		{"above_max_clamps_to_max", intPtr(50), 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.ClampResultCount(tt.requested); got != tt.want {
				t.Errorf("ClampResultCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAnswerHappyPath(t *testing.T) {
	m1 := retrievedMatch("m1", "Arsenal", "Chelsea")
	m2 := retrievedMatch("m2", "Fulham", "Brentford")

	embedder := &stubEmbedder{vector: []float32{0.1, 0.2, 0.3}}
	searcher := &stubSearcher{results: []types.SearchResult{m1, m2}}
	generator := &stubGenerator{answer: fmt.Sprintf("Two wins: %s and %s.",
		CitationToken(m1.MatchID.String()), CitationToken(m2.MatchID.String()))}
	svc := newTestService(embedder, searcher, generator)

	resp, err := svc.Answer(context.Background(), "high scoring games in London", intPtr(2), nil)
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	if !resp.Success {
		t.Error("Answer() response not marked successful")
	}
	if len(resp.Sources) != 2 {
		t.Fatalf("Answer() returned %d sources, want 2", len(resp.Sources))
	}
	if resp.Sources[0].ID != m1.MatchID.String() || resp.Sources[1].ID != m2.MatchID.String() {
		t.Errorf("sources out of order: %+v", resp.Sources)
	}
	if resp.Sources[0].HomeTeam != "Arsenal" || resp.Sources[0].Date == "" {
		t.Errorf("source missing pass-through metadata: %+v", resp.Sources[0])
	}
	for _, src := range resp.Sources {
		if !strings.Contains(resp.Answer, CitationToken(src.ID)) {
			t.Errorf("answer missing citation token for source %s", src.ID)
		}
	}
	if embedder.calls != 1 || searcher.calls != 1 || generator.calls != 1 {
		t.Errorf("call counts embed=%d search=%d generate=%d, want 1 each",
			embedder.calls, searcher.calls, generator.calls)
	}
	if searcher.gotCount != 2 {
		t.Errorf("searcher received matchCount=%d, want 2", searcher.gotCount)
	}
}

func TestAnswerEmptyQueryMakesNoOutboundCalls(t *testing.T) {
	embedder := &stubEmbedder{}
	searcher := &stubSearcher{}
	generator := &stubGenerator{}
	svc := newTestService(embedder, searcher, generator)

	for _, query := range []string{"", "   ", "\n\t"} {
		_, err := svc.Answer(context.Background(), query, nil, nil)
		if !errors.Is(err, apperrors.ErrValidation) {
			t.Errorf("Answer(%q) error = %v, want ErrValidation", query, err)
		}
	}
	if embedder.calls != 0 || searcher.calls != 0 || generator.calls != 0 {
		t.Errorf("outbound calls made for invalid input: embed=%d search=%d generate=%d",
			embedder.calls, searcher.calls, generator.calls)
	}
}

func TestAnswerSearchUnavailablePassesThrough(t *testing.T) {
	searchErr := fmt.Errorf("%w: function search_match_embeddings does not exist (run the pgvector migration to enable semantic search)", apperrors.ErrSearchUnavailable)
	embedder := &stubEmbedder{vector: []float32{0.1}}
	searcher := &stubSearcher{err: searchErr}
	generator := &stubGenerator{}
	svc := newTestService(embedder, searcher, generator)

	_, err := svc.Answer(context.Background(), "who won", nil, nil)
	if !errors.Is(err, apperrors.ErrSearchUnavailable) {
		t.Fatalf("Answer() error = %v, want ErrSearchUnavailable", err)
	}
	if generator.calls != 0 {
		t.Error("generation attempted after search failure")
	}
}

func TestAnswerGenerationFailureFailsRequest(t *testing.T) {
	embedder := &stubEmbedder{vector: []float32{0.1}}
	searcher := &stubSearcher{results: []types.SearchResult{retrievedMatch("m1", "Wolves", "Everton")}}
	generator := &stubGenerator{err: fmt.Errorf("%w: provider status 429", apperrors.ErrGeneration)}
	svc := newTestService(embedder, searcher, generator)

	_, err := svc.Answer(context.Background(), "who won", nil, nil)
	if !errors.Is(err, apperrors.ErrGeneration) {
		t.Fatalf("Answer() error = %v, want ErrGeneration", err)
	}
}

func TestAnswerNoResultsSkipsGeneration(t *testing.T) {
	embedder := &stubEmbedder{vector: []float32{0.1}}
	searcher := &stubSearcher{}
	generator := &stubGenerator{}
	svc := newTestService(embedder, searcher, generator)

	resp, err := svc.Answer(context.Background(), "matches on the moon", nil, nil)
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if resp.Answer != NoMatchesAnswer {
		t.Errorf("Answer() = %q, want %q", resp.Answer, NoMatchesAnswer)
	}
	if len(resp.Sources) != 0 {
		t.Errorf("Answer() returned %d sources, want 0", len(resp.Sources))
	}
	if generator.calls != 0 {
		t.Error("generation called with empty context")
	}
}

func TestAnswerSanitizesFilters(t *testing.T) {
	embedder := &stubEmbedder{vector: []float32{0.1}}
	searcher := &stubSearcher{results: []types.SearchResult{retrievedMatch("m1", "Arsenal", "Spurs")}}
	generator := &stubGenerator{answer: "ok"}
	svc := newTestService(embedder, searcher, generator)

	filters := map[string]string{
		"home_team":           "Arsenal",
		"bad key; DROP TABLE": "x",
		"  ":                  "y",
		"empty_value":         "",
	}
	if _, err := svc.Answer(context.Background(), "arsenal home games", nil, filters); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	if len(searcher.gotFilter) != 1 || searcher.gotFilter["home_team"] != "Arsenal" {
		t.Errorf("searcher received filter %v, want only home_team", searcher.gotFilter)
	}
}
