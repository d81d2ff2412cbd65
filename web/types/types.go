package types

import (
	"time"

	"github.com/google/uuid"
)

// Match represents one played fixture. Matches are loaded by the batch ETL
// and never mutated by the API.
type Match struct {
	ID         uuid.UUID `json:"id"`
	Date       time.Time `json:"date"`
	HomeClubID uuid.UUID `json:"homeClubId"`
	AwayClubID uuid.UUID `json:"awayClubId"`
	HomeClub   string    `json:"homeClub"`
	AwayClub   string    `json:"awayClub"`
	HomeGoals  int       `json:"homeGoals"`
	AwayGoals  int       `json:"awayGoals"`
	Attendance *int      `json:"attendance,omitempty"`
	Referee    *string   `json:"referee,omitempty"`
	Stadium    string    `json:"stadium,omitempty"`
	City       string    `json:"city,omitempty"`
}

// Club is a reference entity with its home stadium denormalized for display.
type Club struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Founded         *int      `json:"founded,omitempty"`
	LogoURL         *string   `json:"logoUrl,omitempty"`
	Stadium         string    `json:"stadium"`
	City            string    `json:"city"`
	StadiumCapacity int       `json:"stadiumCapacity"`
}

type Player struct {
	ID          uuid.UUID `json:"id"`
	ClubID      uuid.UUID `json:"clubId"`
	Name        string    `json:"name"`
	Position    string    `json:"position"`
	Nationality string    `json:"nationality"`
	Age         int       `json:"age"`
}

type Stadium struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	City     string    `json:"city"`
	Capacity int       `json:"capacity"`
}

// Standing is one row of the league_standings view.
type Standing struct {
	Position       int       `json:"position"`
	ClubID         uuid.UUID `json:"clubId"`
	Club           string    `json:"club"`
	Played         int       `json:"played"`
	Won            int       `json:"won"`
	Drawn          int       `json:"drawn"`
	Lost           int       `json:"lost"`
	GoalsFor       int       `json:"goalsFor"`
	GoalsAgainst   int       `json:"goalsAgainst"`
	GoalDifference int       `json:"goalDifference"`
	Points         int       `json:"points"`
}

// FormEntry is one of a club's last five results, most recent first.
type FormEntry struct {
	MatchID  uuid.UUID `json:"matchId"`
	Date     time.Time `json:"date"`
	Opponent string    `json:"opponent"`
	Venue    string    `json:"venue"` // "H" or "A"
	Scored   int       `json:"scored"`
	Conceded int       `json:"conceded"`
	Result   string    `json:"result"` // "W", "D" or "L"
}

// SearchResult is one row returned by the vector similarity function,
// parsed at the database boundary.
type SearchResult struct {
	MatchID    uuid.UUID         `json:"matchId"`
	Content    string            `json:"content"`
	Metadata   map[string]string `json:"metadata"`
	Similarity float64           `json:"similarity"`
}

// SemanticQueryRequest is the POST /api/semantic-query body. ResultCount is
// a pointer so an omitted field falls back to the configured default while an
// explicit 0 still goes through clamping.
type SemanticQueryRequest struct {
	Query       string            `json:"query"`
	ResultCount *int              `json:"resultCount"`
	Filters     map[string]string `json:"filters"`
}

// Source describes one cited match in a semantic-query answer.
type Source struct {
	ID              string  `json:"id"`
	SimilarityScore float64 `json:"similarityScore"`
	Date            string  `json:"date"`
	HomeTeam        string  `json:"homeTeam"`
	AwayTeam        string  `json:"awayTeam"`
}

// SemanticQueryResponse is the success envelope for semantic queries.
type SemanticQueryResponse struct {
	Success bool     `json:"success"`
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}
