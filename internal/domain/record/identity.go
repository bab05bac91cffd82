package record

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Identity is the canonical game key: date, same-day game sequence and
// the home team's short code, e.g. 202309070kan. It is composed once at
// ingestion and reused verbatim on every subsequent load.
type Identity struct {
	GameDate time.Time
	Sequence int
	HomeTeam string
}

// ComposeBoxscoreID builds the identity token. Sequence is zero unless
// the same pairing played more than once that day (doubleheaders).
func ComposeBoxscoreID(gameDate time.Time, sequence int, homeTeam string) (string, error) {
	if gameDate.IsZero() {
		return "", fmt.Errorf("game date is required")
	}
	if sequence < 0 || sequence > 9 {
		return "", fmt.Errorf("game sequence %d out of range [0, 9]", sequence)
	}
	team := strings.ToLower(strings.TrimSpace(homeTeam))
	if team == "" {
		return "", fmt.Errorf("home team code is required")
	}
	for _, r := range team {
		if !unicode.IsLower(r) && !unicode.IsDigit(r) {
			return "", fmt.Errorf("invalid home team code %q", homeTeam)
		}
	}

	return gameDate.Format("20060102") + strconv.Itoa(sequence) + team, nil
}

// ParseBoxscoreID splits an identity token back into its parts.
func ParseBoxscoreID(id string) (Identity, error) {
	if len(id) < 10 {
		return Identity{}, fmt.Errorf("boxscore id %q too short", id)
	}

	date, err := time.Parse("20060102", id[:8])
	if err != nil {
		return Identity{}, fmt.Errorf("boxscore id %q: invalid date: %w", id, err)
	}
	sequence, err := strconv.Atoi(id[8:9])
	if err != nil {
		return Identity{}, fmt.Errorf("boxscore id %q: invalid sequence: %w", id, err)
	}
	team := id[9:]
	if team != strings.ToLower(team) {
		return Identity{}, fmt.Errorf("boxscore id %q: team code must be lowercase", id)
	}

	return Identity{GameDate: date, Sequence: sequence, HomeTeam: team}, nil
}

func (i Identity) String() string {
	id, err := ComposeBoxscoreID(i.GameDate, i.Sequence, i.HomeTeam)
	if err != nil {
		return ""
	}
	return id
}

// IsDoubleheader reports whether the identity is a later game of a
// same-day multi-game pairing.
func (i Identity) IsDoubleheader() bool {
	return i.Sequence > 0
}
