package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	apperrors "matchday/errors"
	"matchday/web/types"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"
)

// UpsertMatchEmbedding stores or replaces the derived summary, metadata bag
// and embedding for a match. One row per match.
func (s *PostgresStore) UpsertMatchEmbedding(ctx context.Context, matchID uuid.UUID, content string, metadata map[string]string, embedding []float32) error {
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata for match embedding: %w", err)
	}

	query := `
	        INSERT INTO match_embeddings (match_id, content, embedding, metadata, created_at)
	        VALUES ($1, $2, $3, $4, NOW())
	        ON CONFLICT (match_id)
	        DO UPDATE SET content = EXCLUDED.content, embedding = EXCLUDED.embedding, metadata = EXCLUDED.metadata, created_at = NOW()
	    `

	if _, err := s.DB.ExecContext(ctx, query, matchID, content, pgvector.NewVector(embedding), string(metaJSON)); err != nil {
		return apperrors.WrapError(classifyVectorError(err), "failed to upsert match embedding")
	}
	return nil
}

// SearchEmbeddings runs the similarity-search function over the embedding
// table. Results come back closest first; ties break on match_id so the
// ordering is deterministic for a fixed table. An empty filter matches every
// row; a non-empty filter selects rows whose metadata contains all pairs.
func (s *PostgresStore) SearchEmbeddings(ctx context.Context, queryEmbedding []float32, matchCount int, filter map[string]string) ([]types.SearchResult, error) {
	if matchCount < 1 {
		matchCount = 1
	}
	if filter == nil {
		filter = map[string]string{}
	}
	filterJSON, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search filter: %w", err)
	}

	query := `SELECT match_id, content, metadata, similarity FROM search_match_embeddings($1, $2, $3::jsonb)`
	rows, err := s.DB.QueryContext(ctx, query, pgvector.NewVector(queryEmbedding), matchCount, string(filterJSON))
	if err != nil {
		return nil, apperrors.WrapError(classifyVectorError(err), "similarity search")
	}
	defer rows.Close()

	var results []types.SearchResult
	for rows.Next() {
		var r types.SearchResult
		var metaJSON []byte
		if err := rows.Scan(&r.MatchID, &r.Content, &metaJSON, &r.Similarity); err != nil {
			return nil, apperrors.WrapError(err, "scan search result")
		}
		if len(metaJSON) > 0 {
			if err := json.Unmarshal(metaJSON, &r.Metadata); err != nil {
				return nil, apperrors.WrapError(err, "decode search result metadata")
			}
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// MatchesWithoutEmbeddings returns matches that have no embedding row yet,
// oldest first, for the offline population batch. limit <= 0 means all.
func (s *PostgresStore) MatchesWithoutEmbeddings(ctx context.Context, limit int) ([]types.Match, error) {
	query := matchSelect + `
	LEFT JOIN match_embeddings me ON me.match_id = m.match_id
	WHERE me.match_id IS NULL
	ORDER BY m.match_date, m.match_id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.WrapError(err, "list matches without embeddings")
	}
	defer rows.Close()

	var matches []types.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, apperrors.WrapError(err, "scan match")
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// CountMatchEmbeddings reports how many matches carry an embedding row.
func (s *PostgresStore) CountMatchEmbeddings(ctx context.Context) (int, error) {
	var count int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM match_embeddings`).Scan(&count)
	if err != nil {
		return 0, apperrors.WrapError(classifyVectorError(err), "count match embeddings")
	}
	return count, nil
}

// SQLSTATE classes that mean the vector extension, table or function has not
// been installed, as opposed to a transient database failure.
var missingObjectCodes = map[string]bool{
	"42883": true, // undefined_function
	"42P01": true, // undefined_table
	"42704": true, // undefined_object
	"0A000": true, // feature_not_supported
}

// classifyVectorError maps missing-object database errors to
// ErrSearchUnavailable so callers can disable semantic search while the rest
// of the API stays up.
func classifyVectorError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && missingObjectCodes[pgErr.Code] {
		return fmt.Errorf("%w: %s (run the pgvector migration to enable semantic search)", apperrors.ErrSearchUnavailable, pgErr.Message)
	}
	// Stubs and older drivers surface plain errors; fall back on the message.
	if strings.Contains(err.Error(), "does not exist") {
		return fmt.Errorf("%w: %v (run the pgvector migration to enable semantic search)", apperrors.ErrSearchUnavailable, err)
	}
	return err
}
