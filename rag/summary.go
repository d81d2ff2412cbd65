package rag

import (
	"fmt"
	"strconv"
	"strings"

	"matchday/web/types"
)

// Summary builds the deterministic natural-language text stored and embedded
// for a match. The phrasing is fixed so repopulating the table produces
// byte-identical content for unchanged matches.
func Summary(m types.Match) string {
	var sb strings.Builder

	switch {
	case m.HomeGoals > m.AwayGoals:
		fmt.Fprintf(&sb, "On %s, %s beat %s %d-%d", m.Date.Format("2 January 2006"),
			m.HomeClub, m.AwayClub, m.HomeGoals, m.AwayGoals)
	case m.HomeGoals < m.AwayGoals:
		fmt.Fprintf(&sb, "On %s, %s won %d-%d away against %s", m.Date.Format("2 January 2006"),
			m.AwayClub, m.AwayGoals, m.HomeGoals, m.HomeClub)
	default:
		fmt.Fprintf(&sb, "On %s, %s and %s drew %d-%d", m.Date.Format("2 January 2006"),
			m.HomeClub, m.AwayClub, m.HomeGoals, m.AwayGoals)
	}

	if m.Stadium != "" {
		fmt.Fprintf(&sb, " at %s", m.Stadium)
		if m.City != "" {
			fmt.Fprintf(&sb, " in %s", m.City)
		}
	}
	sb.WriteString(".")

	if m.Attendance != nil {
		fmt.Fprintf(&sb, " Attendance: %s.", groupDigits(*m.Attendance))
	}
	if m.Referee != nil && *m.Referee != "" {
		fmt.Fprintf(&sb, " Referee: %s.", *m.Referee)
	}
	return sb.String()
}

// MetadataBag builds the structured attributes stored alongside a match
// embedding. Values are flat strings so JSONB containment filtering behaves
// as per-key equality.
func MetadataBag(m types.Match, season string, highScoringThreshold int) map[string]string {
	bag := map[string]string{
		"home_team": m.HomeClub,
		"away_team": m.AwayClub,
		"date":      m.Date.Format("2006-01-02"),
		"season":    season,
	}
	if m.Stadium != "" {
		bag["stadium"] = m.Stadium
	}
	if m.City != "" {
		bag["city"] = m.City
	}
	if highScoringThreshold > 0 && m.HomeGoals+m.AwayGoals >= highScoringThreshold {
		bag["high_scoring"] = "true"
	}
	return bag
}

// groupDigits formats a non-negative integer with comma separators.
func groupDigits(n int) string {
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	var sb strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		sb.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if sb.Len() > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(s[i : i+3])
	}
	return sb.String()
}
