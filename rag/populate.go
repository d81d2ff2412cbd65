package rag

import (
	"context"

	apperrors "matchday/errors"
	"matchday/web/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PopulationStore is the slice of the database the offline embedding batch
// needs.
type PopulationStore interface {
	MatchesWithoutEmbeddings(ctx context.Context, limit int) ([]types.Match, error)
	UpsertMatchEmbedding(ctx context.Context, matchID uuid.UUID, content string, metadata map[string]string, embedding []float32) error
}

// PopulateEmbeddings builds a summary, metadata bag and embedding for every
// match that has none yet. It runs offline (a flag on the main binary), in
// batches, and stops at the first hard failure so a misconfigured provider
// does not burn through the whole table.
func (s *Service) PopulateEmbeddings(ctx context.Context, store PopulationStore) (int, error) {
	batchSize := s.cfg.PopulateBatchSize
	if batchSize <= 0 {
		batchSize = 25
	}

	populated := 0
	for {
		matches, err := store.MatchesWithoutEmbeddings(ctx, batchSize)
		if err != nil {
			return populated, apperrors.WrapError(err, "fetch matches without embeddings")
		}
		if len(matches) == 0 {
			return populated, nil
		}

		for _, m := range matches {
			content := Summary(m)
			bag := MetadataBag(m, s.cfg.CurrentSeason, s.cfg.HighScoringThreshold)

			embedding, err := s.embedder.Embed(ctx, content)
			if err != nil {
				return populated, apperrors.WrapErrorf(err, "embed summary for match %s", m.ID)
			}
			if err := store.UpsertMatchEmbedding(ctx, m.ID, content, bag, embedding); err != nil {
				return populated, apperrors.WrapErrorf(err, "store embedding for match %s", m.ID)
			}
			populated++
		}

		s.logger.Info("Populated match embeddings batch",
			zap.Int("batch", len(matches)),
			zap.Int("total", populated))
	}
}
