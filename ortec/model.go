package ortec

import (
	"encoding/json"
	"io"
)

// Statistic is one metric value keyed by its metadata id.
type Statistic struct {
	Statistic int     `json:"Statistic"`
	Value     float64 `json:"Value"`
}

// PlayerStatistics is the statistics block of one player in one match.
type PlayerStatistics struct {
	PersonID   int         `json:"PersonId"`
	Statistics []Statistic `json:"Statistics"`
}

// TeamRef identifies a team inside the match feed.
type TeamRef struct {
	ID int `json:"Id"`
}

// TeamStatBlock carries one team's statistics split per match phase. The
// overtime slices are absent for matches without extra time.
type TeamStatBlock struct {
	Total          []Statistic `json:"Total"`
	FirstHalf      []Statistic `json:"FirstHalf"`
	SecondHalf     []Statistic `json:"SecondHalf"`
	FirstOverTime  []Statistic `json:"FirstOverTime"`
	SecondOverTime []Statistic `json:"SecondOverTime"`
}

// MatchStatistics is the statistics feed for one match registration.
type MatchStatistics struct {
	ID          int     `json:"Id"`
	HomeTeam    TeamRef `json:"HomeTeam"`
	AwayTeam    TeamRef `json:"AwayTeam"`
	DateTime    string  `json:"DateTime"`
	Round       int     `json:"Round"`
	LastChanged string  `json:"LastChanged"`
	MatchStatus string  `json:"MatchStatus"`
	VenueID     int     `json:"VenueId"`

	HomePlayerStatistics []PlayerStatistics `json:"HomePlayerStatistics"`
	HomeKeeperStatistics []PlayerStatistics `json:"HomeKeeperStatistics"`
	AwayPlayerStatistics []PlayerStatistics `json:"AwayPlayerStatistics"`
	AwayKeeperStatistics []PlayerStatistics `json:"AwayKeeperStatistics"`

	HomeTeamStats TeamStatBlock `json:"HomeTeamStats"`
	AwayTeamStats TeamStatBlock `json:"AwayTeamStats"`
}

// Person is one selection member. Height and Weight are pointers because
// some records miss them entirely.
type Person struct {
	ID                 int      `json:"Id"`
	FirstName          string   `json:"FirstName"`
	SurNamePrefix      string   `json:"SurNamePrefix"`
	SurName            string   `json:"SurName"`
	ActiveSelection    bool     `json:"ActiveSelection"`
	NickName           string   `json:"NickName"`
	NationalityCode    string   `json:"NationalityCode"`
	DateOfBirth        string   `json:"DateOfBirth"`
	DefaultPosition    int      `json:"DefaultPosition"`
	Role               string   `json:"Role"`
	DefaultShirtNumber int      `json:"DefaultShirtNumber"`
	PreferredFoot      string   `json:"PreferredFoot"`
	Height             *float64 `json:"Height"`
	Weight             *float64 `json:"Weight"`
}

func decodeJSON(r io.Reader, v any) error {
	return json.NewDecoder(r).Decode(v)
}
