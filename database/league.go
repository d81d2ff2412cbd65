package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperrors "matchday/errors"
	"matchday/web/types"

	"github.com/google/uuid"
)

const matchSelect = `
	SELECT m.match_id, m.match_date, m.home_club_id, m.away_club_id,
	       hc.name, ac.name, m.home_goals, m.away_goals, m.attendance, m.referee,
	       COALESCE(s.name, ''), COALESCE(s.city, '')
	FROM matches m
	JOIN clubs hc ON hc.club_id = m.home_club_id
	JOIN clubs ac ON ac.club_id = m.away_club_id
	LEFT JOIN stadiums s ON s.stadium_id = hc.stadium_id`

func scanMatch(row interface{ Scan(...any) error }) (types.Match, error) {
	var m types.Match
	var attendance sql.NullInt64
	var referee sql.NullString
	err := row.Scan(&m.ID, &m.Date, &m.HomeClubID, &m.AwayClubID,
		&m.HomeClub, &m.AwayClub, &m.HomeGoals, &m.AwayGoals,
		&attendance, &referee, &m.Stadium, &m.City)
	if err != nil {
		return types.Match{}, err
	}
	if attendance.Valid {
		v := int(attendance.Int64)
		m.Attendance = &v
	}
	if referee.Valid {
		v := referee.String
		m.Referee = &v
	}
	return m, nil
}

// ListMatches returns played fixtures ordered by date descending. clubID
// narrows the listing to matches the club took part in; limit <= 0 means no
// limit.
func (s *PostgresStore) ListMatches(ctx context.Context, clubID *uuid.UUID, limit int) ([]types.Match, error) {
	query := matchSelect
	args := []any{}
	if clubID != nil {
		query += ` WHERE m.home_club_id = $1 OR m.away_club_id = $1`
		args = append(args, *clubID)
	}
	query += ` ORDER BY m.match_date DESC, m.match_id`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, len(args)+1)
		args = append(args, limit)
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.WrapError(err, "list matches")
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

func (s *PostgresStore) GetMatchByID(ctx context.Context, matchID uuid.UUID) (types.Match, error) {
	row := s.DB.QueryRowContext(ctx, matchSelect+` WHERE m.match_id = $1`, matchID)
	m, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Match{}, apperrors.WrapErrorf(apperrors.ErrNotFound, "match %s", matchID)
		}
		return types.Match{}, apperrors.WrapError(err, "get match")
	}
	return m, nil
}

func (s *PostgresStore) ListClubs(ctx context.Context) ([]types.Club, error) {
	query := `
		SELECT c.club_id, c.name, c.founded, c.logo_url,
		       COALESCE(s.name, ''), COALESCE(s.city, ''), COALESCE(s.capacity, 0)
		FROM clubs c
		LEFT JOIN stadiums s ON s.stadium_id = c.stadium_id
		ORDER BY c.name`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.WrapError(err, "list clubs")
	}
	defer rows.Close()

	var clubs []types.Club
	for rows.Next() {
		c, err := scanClub(rows)
		if err != nil {
			return nil, apperrors.WrapError(err, "scan club")
		}
		clubs = append(clubs, c)
	}
	return clubs, rows.Err()
}

func (s *PostgresStore) GetClubByID(ctx context.Context, clubID uuid.UUID) (types.Club, error) {
	query := `
		SELECT c.club_id, c.name, c.founded, c.logo_url,
		       COALESCE(s.name, ''), COALESCE(s.city, ''), COALESCE(s.capacity, 0)
		FROM clubs c
		LEFT JOIN stadiums s ON s.stadium_id = c.stadium_id
		WHERE c.club_id = $1`
	c, err := scanClub(s.DB.QueryRowContext(ctx, query, clubID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Club{}, apperrors.WrapErrorf(apperrors.ErrNotFound, "club %s", clubID)
		}
		return types.Club{}, apperrors.WrapError(err, "get club")
	}
	return c, nil
}

func scanClub(row interface{ Scan(...any) error }) (types.Club, error) {
	var c types.Club
	var founded sql.NullInt64
	var logoURL sql.NullString
	err := row.Scan(&c.ID, &c.Name, &founded, &logoURL, &c.Stadium, &c.City, &c.StadiumCapacity)
	if err != nil {
		return types.Club{}, err
	}
	if founded.Valid {
		v := int(founded.Int64)
		c.Founded = &v
	}
	if logoURL.Valid {
		v := logoURL.String
		c.LogoURL = &v
	}
	return c, nil
}

func (s *PostgresStore) ListPlayersByClub(ctx context.Context, clubID uuid.UUID) ([]types.Player, error) {
	query := `
		SELECT player_id, club_id, name, position, nationality, age
		FROM players
		WHERE club_id = $1
		ORDER BY name`
	rows, err := s.DB.QueryContext(ctx, query, clubID)
	if err != nil {
		return nil, apperrors.WrapError(err, "list players")
	}
	defer rows.Close()

	var players []types.Player
	for rows.Next() {
		var p types.Player
		if err := rows.Scan(&p.ID, &p.ClubID, &p.Name, &p.Position, &p.Nationality, &p.Age); err != nil {
			return nil, apperrors.WrapError(err, "scan player")
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (s *PostgresStore) ListStadiums(ctx context.Context) ([]types.Stadium, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT stadium_id, name, city, capacity FROM stadiums ORDER BY name`)
	if err != nil {
		return nil, apperrors.WrapError(err, "list stadiums")
	}
	defer rows.Close()

	var stadiums []types.Stadium
	for rows.Next() {
		var st types.Stadium
		if err := rows.Scan(&st.ID, &st.Name, &st.City, &st.Capacity); err != nil {
			return nil, apperrors.WrapError(err, "scan stadium")
		}
		stadiums = append(stadiums, st)
	}
	return stadiums, rows.Err()
}

// LeagueStandings reads the league_standings view, ordered by table position.
func (s *PostgresStore) LeagueStandings(ctx context.Context) ([]types.Standing, error) {
	query := `
		SELECT position, club_id, club, played, won, drawn, lost,
		       goals_for, goals_against, goal_difference, points
		FROM league_standings
		ORDER BY position, club`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.WrapError(err, "query standings")
	}
	defer rows.Close()

	var standings []types.Standing
	for rows.Next() {
		var st types.Standing
		if err := rows.Scan(&st.Position, &st.ClubID, &st.Club, &st.Played, &st.Won, &st.Drawn,
			&st.Lost, &st.GoalsFor, &st.GoalsAgainst, &st.GoalDifference, &st.Points); err != nil {
			return nil, apperrors.WrapError(err, "scan standing")
		}
		standings = append(standings, st)
	}
	return standings, rows.Err()
}

// ClubForm returns the club's last five results, most recent first.
func (s *PostgresStore) ClubForm(ctx context.Context, clubID uuid.UUID) ([]types.FormEntry, error) {
	query := `
		SELECT f.match_id, f.match_date, c.name, f.venue, f.scored, f.conceded, f.result
		FROM club_form f
		JOIN clubs c ON c.club_id = f.opponent_id
		WHERE f.club_id = $1
		ORDER BY f.recency`
	rows, err := s.DB.QueryContext(ctx, query, clubID)
	if err != nil {
		return nil, apperrors.WrapError(err, "query club form")
	}
	defer rows.Close()

	var form []types.FormEntry
	for rows.Next() {
		var f types.FormEntry
		if err := rows.Scan(&f.MatchID, &f.Date, &f.Opponent, &f.Venue, &f.Scored, &f.Conceded, &f.Result); err != nil {
			return nil, apperrors.WrapError(err, "scan form entry")
		}
		form = append(form, f)
	}
	return form, rows.Err()
}
