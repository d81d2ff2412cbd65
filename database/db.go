package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

type PostgresStore struct {
	DB     *sql.DB
	logger *zap.Logger
}

// PoolOptions bound the shared connection set. A request that cannot acquire
// a connection fails on its statement context rather than queuing forever.
type PoolOptions struct {
	MaxOpenConns    int
	ConnMaxIdleTime time.Duration
}

func NewPostgresStore(connStr string, opts PoolOptions, logger *zap.Logger) (*PostgresStore, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, err
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	logger.Info("Successfully connected to the database")
	return &PostgresStore{DB: db, logger: logger}, nil
}

func (s *PostgresStore) Close() error {
	return s.DB.Close()
}

// EnsureSchema creates the required tables, views and the similarity-search
// function if they do not already exist. embeddingDims fixes the vector
// dimensionality for every stored row.
func (s *PostgresStore) EnsureSchema(ctx context.Context, embeddingDims int) error {
	if embeddingDims <= 0 {
		return fmt.Errorf("embedding dimensionality must be positive, got %d", embeddingDims)
	}

	// The vector extension needs superuser rights on some managed Postgres
	// offerings. A failure here is not fatal: the rest of the API keeps
	// working and semantic search reports itself unavailable.
	if _, err := s.DB.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		s.logger.Warn("Could not create vector extension; semantic search will be unavailable", zap.Error(err))
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS stadiums (
            stadium_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            name TEXT NOT NULL UNIQUE,
            city TEXT NOT NULL,
            capacity INTEGER NOT NULL CHECK (capacity > 0)
        )`,
		`CREATE TABLE IF NOT EXISTS clubs (
            club_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            stadium_id UUID REFERENCES stadiums(stadium_id),
            name TEXT NOT NULL UNIQUE,
            founded INTEGER,
            logo_url TEXT
        )`,
		`CREATE TABLE IF NOT EXISTS players (
            player_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            club_id UUID NOT NULL REFERENCES clubs(club_id) ON DELETE CASCADE,
            name TEXT NOT NULL,
            position TEXT NOT NULL,
            nationality TEXT NOT NULL,
            age INTEGER NOT NULL CHECK (age BETWEEN 16 AND 50),
            UNIQUE (club_id, name)
        )`,
		`CREATE TABLE IF NOT EXISTS matches (
            match_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            home_club_id UUID NOT NULL REFERENCES clubs(club_id),
            away_club_id UUID NOT NULL REFERENCES clubs(club_id),
            match_date DATE NOT NULL,
            home_goals INTEGER NOT NULL DEFAULT 0,
            away_goals INTEGER NOT NULL DEFAULT 0,
            attendance INTEGER,
            referee TEXT,
            CHECK (home_club_id <> away_club_id),
            UNIQUE (home_club_id, away_club_id, match_date)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_matches_date ON matches(match_date)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_home_club ON matches(home_club_id)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_away_club ON matches(away_club_id)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS match_embeddings (
            match_id UUID PRIMARY KEY REFERENCES matches(match_id) ON DELETE CASCADE,
            content TEXT NOT NULL,
            embedding vector(%d) NOT NULL,
            metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`, embeddingDims),
		`CREATE INDEX IF NOT EXISTS idx_match_embeddings_metadata ON match_embeddings USING gin (metadata)`,
	}

	for _, stmt := range stmts {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	if err := s.ensureViews(ctx); err != nil {
		return err
	}

	return s.ensureSearchFunction(ctx, embeddingDims)
}

func (s *PostgresStore) ensureViews(ctx context.Context) error {
	// Running league table. Each match contributes two rows (home and away
	// perspective); RANK over points, goal difference, goals scored matches
	// the competition's tie-break order.
	standings := `
        CREATE OR REPLACE VIEW league_standings AS
        WITH results AS (
            SELECT home_club_id AS club_id,
                   home_goals   AS goals_for,
                   away_goals   AS goals_against,
                   CASE WHEN home_goals > away_goals THEN 3
                        WHEN home_goals = away_goals THEN 1
                        ELSE 0 END AS points
            FROM matches
            UNION ALL
            SELECT away_club_id,
                   away_goals,
                   home_goals,
                   CASE WHEN away_goals > home_goals THEN 3
                        WHEN away_goals = home_goals THEN 1
                        ELSE 0 END
            FROM matches
        )
        SELECT c.club_id,
               c.name AS club,
               COUNT(r.club_id)                                        AS played,
               COUNT(*) FILTER (WHERE r.points = 3)                    AS won,
               COUNT(*) FILTER (WHERE r.points = 1)                    AS drawn,
               COUNT(*) FILTER (WHERE r.points = 0)                    AS lost,
               COALESCE(SUM(r.goals_for), 0)                           AS goals_for,
               COALESCE(SUM(r.goals_against), 0)                       AS goals_against,
               COALESCE(SUM(r.goals_for) - SUM(r.goals_against), 0)    AS goal_difference,
               COALESCE(SUM(r.points), 0)                              AS points,
               RANK() OVER (
                   ORDER BY COALESCE(SUM(r.points), 0) DESC,
                            COALESCE(SUM(r.goals_for) - SUM(r.goals_against), 0) DESC,
                            COALESCE(SUM(r.goals_for), 0) DESC,
                            c.name ASC
               ) AS position
        FROM clubs c
        LEFT JOIN results r ON r.club_id = c.club_id
        GROUP BY c.club_id, c.name`

	// Last five results per club, most recent first.
	form := `
        CREATE OR REPLACE VIEW club_form AS
        SELECT club_id, match_id, match_date, opponent_id, venue, scored, conceded,
               CASE WHEN scored > conceded THEN 'W'
                    WHEN scored = conceded THEN 'D'
                    ELSE 'L' END AS result,
               recency
        FROM (
            SELECT r.*,
                   ROW_NUMBER() OVER (PARTITION BY r.club_id ORDER BY r.match_date DESC, r.match_id) AS recency
            FROM (
                SELECT home_club_id AS club_id, match_id, match_date,
                       away_club_id AS opponent_id, 'H' AS venue,
                       home_goals AS scored, away_goals AS conceded
                FROM matches
                UNION ALL
                SELECT away_club_id, match_id, match_date,
                       home_club_id, 'A', away_goals, home_goals
                FROM matches
            ) r
        ) ranked
        WHERE recency <= 5`

	for _, stmt := range []string{standings, form} {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create view: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) ensureSearchFunction(ctx context.Context, embeddingDims int) error {
	fn := fmt.Sprintf(`
        CREATE OR REPLACE FUNCTION search_match_embeddings(
            query_embedding vector(%d),
            match_count integer,
            filter jsonb DEFAULT '{}'::jsonb
        )
        RETURNS TABLE (
            match_id uuid,
            content text,
            metadata jsonb,
            similarity double precision
        )
        LANGUAGE sql STABLE AS $$
            SELECT me.match_id,
                   me.content,
                   me.metadata,
                   1 - (me.embedding <=> query_embedding) AS similarity
            FROM match_embeddings me
            WHERE me.metadata @> filter
            ORDER BY me.embedding <=> query_embedding, me.match_id
            LIMIT match_count;
        $$`, embeddingDims)

	if _, err := s.DB.ExecContext(ctx, fn); err != nil {
		// Function creation fails when the vector extension is missing.
		// Leave the rest of the schema usable and let search report it.
		s.logger.Warn("Could not create search_match_embeddings function", zap.Error(err))
	}
	return nil
}
