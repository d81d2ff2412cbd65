package rag

import (
	"context"
	"regexp"
	"strings"

	apperrors "matchday/errors"
	"matchday/prompts"
	"matchday/web/types"

	"go.uber.org/zap"
)

// NoMatchesAnswer is returned without a generation call when retrieval finds
// nothing: paying for an LLM call with an empty context buys nothing.
const NoMatchesAnswer = "No stored matches are relevant to this question."

var filterKeyPattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ClampResultCount maps a requested result count into [1, max]. A nil request
// falls back to the configured default; zero and negatives clamp to 1, values
// above the maximum clamp to the maximum. Never an error.
func (s *Service) ClampResultCount(requested *int) int {
	if requested == nil {
		return s.cfg.DefaultResultCount
	}
	k := *requested
	if k < 1 {
		return 1
	}
	if k > s.cfg.MaxResultCount {
		return s.cfg.MaxResultCount
	}
	return k
}

// sanitizeFilters drops pairs with empty or unsafe keys. Values are passed to
// the database as a flat JSONB document, so containment reduces to per-key
// equality on strings.
func (s *Service) sanitizeFilters(filters map[string]string) map[string]string {
	cleaned := make(map[string]string, len(filters))
	for key, value := range filters {
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		if !filterKeyPattern.MatchString(key) {
			s.logger.Warn("Skipping metadata filter with invalid key", zap.String("key", key))
			continue
		}
		cleaned[key] = value
	}
	return cleaned
}

// Answer runs the full semantic-query pipeline. Validation happens before any
// network call so malformed requests cost nothing. Each stage failure carries
// its sentinel error for the HTTP layer to map to a status code.
func (s *Service) Answer(ctx context.Context, query string, resultCount *int, filters map[string]string) (types.SemanticQueryResponse, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return types.SemanticQueryResponse{}, apperrors.WrapError(apperrors.ErrValidation, "query must not be empty")
	}

	k := s.ClampResultCount(resultCount)
	cleanFilters := s.sanitizeFilters(filters)

	queryEmbedding, err := s.embedder.Embed(ctx, trimmed)
	if err != nil {
		return types.SemanticQueryResponse{}, err
	}

	results, err := s.searcher.SearchEmbeddings(ctx, queryEmbedding, k, cleanFilters)
	if err != nil {
		return types.SemanticQueryResponse{}, err
	}

	if len(results) == 0 {
		s.logger.Debug("Semantic query retrieved no matches", zap.String("query", trimmed))
		return types.SemanticQueryResponse{
			Success: true,
			Answer:  NoMatchesAnswer,
			Sources: []types.Source{},
		}, nil
	}

	prompt, kept := BuildPrompt(trimmed, results, s.cfg.ContextCharBudget)

	answer, err := s.generator.Chat(ctx, prompts.SemanticAnswer(), prompt)
	if err != nil {
		return types.SemanticQueryResponse{}, err
	}

	s.logger.Info("Answered semantic query",
		zap.Int("retrieved", len(results)),
		zap.Int("cited_context", len(kept)))

	return types.SemanticQueryResponse{
		Success: true,
		Answer:  answer,
		Sources: shapeSources(kept),
	}, nil
}

// shapeSources builds the citation list from the entries that actually made
// it into the prompt, reading display fields from the metadata bag.
func shapeSources(results []types.SearchResult) []types.Source {
	sources := make([]types.Source, 0, len(results))
	for _, r := range results {
		sources = append(sources, types.Source{
			ID:              r.MatchID.String(),
			SimilarityScore: r.Similarity,
			Date:            r.Metadata["date"],
			HomeTeam:        r.Metadata["home_team"],
			AwayTeam:        r.Metadata["away_team"],
		})
	}
	return sources
}
