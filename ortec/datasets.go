package ortec

import (
	"sort"

	"github.com/clubdata/clubsync/export"
	"github.com/clubdata/clubsync/schema"
)

// PlayersStatsDataset flattens the player and keeper statistics of both
// sides into one row per (match, person, statistic).
func PlayersStatsDataset(ms *MatchStatistics, matchID int) export.Dataset {
	ds := export.Dataset{
		Table:   schema.TablePlayersStats,
		Columns: []string{"MatchID", "PersonID", "StatisticID", "StatisticValue"},
	}

	blocks := [][]PlayerStatistics{
		ms.HomePlayerStatistics,
		ms.HomeKeeperStatistics,
		ms.AwayPlayerStatistics,
		ms.AwayKeeperStatistics,
	}
	for _, block := range blocks {
		for _, player := range block {
			for _, stat := range player.Statistics {
				ds.Rows = append(ds.Rows, []any{matchID, player.PersonID, stat.Statistic, stat.Value})
			}
		}
	}
	return ds
}

// TeamsStatsDataset flattens both teams' phase-split statistics into one row
// per (match, team, statistic). Overtime values stay nil for matches
// without extra time.
func TeamsStatsDataset(ms *MatchStatistics, matchID int) export.Dataset {
	ds := export.Dataset{
		Table: schema.TableTeamsStats,
		Columns: []string{"MatchID", "TeamID", "StatisticID", "Total", "FirstHalf", "SecondHalf",
			"FirstOverTime", "SecondOverTime"},
	}

	sides := []struct {
		teamID int
		block  TeamStatBlock
	}{
		{ms.HomeTeam.ID, ms.HomeTeamStats},
		{ms.AwayTeam.ID, ms.AwayTeamStats},
	}
	for _, side := range sides {
		for i, total := range side.block.Total {
			row := []any{
				matchID,
				side.teamID,
				total.Statistic,
				total.Value,
				phaseValue(side.block.FirstHalf, i),
				phaseValue(side.block.SecondHalf, i),
				phaseValue(side.block.FirstOverTime, i),
				phaseValue(side.block.SecondOverTime, i),
			}
			ds.Rows = append(ds.Rows, row)
		}
	}
	return ds
}

func phaseValue(stats []Statistic, i int) any {
	if i < len(stats) {
		return stats[i].Value
	}
	return nil
}

// PersonsDataset flattens one team's selection.
func PersonsDataset(persons []Person, teamID int) export.Dataset {
	ds := export.Dataset{
		Table: schema.TablePersons,
		Columns: []string{"TeamID", "PersonID", "FirstName", "SurNamePrefix", "SurName",
			"ActiveSelection", "NickName", "NationalityCode", "DateOfBirth", "DefaultPosition",
			"Role", "DefaultShirtNumber", "PreferredFoot", "Height", "Weight"},
	}
	for _, p := range persons {
		ds.Rows = append(ds.Rows, []any{
			teamID, p.ID, p.FirstName, p.SurNamePrefix, p.SurName,
			p.ActiveSelection, p.NickName, p.NationalityCode, p.DateOfBirth, p.DefaultPosition,
			p.Role, p.DefaultShirtNumber, p.PreferredFoot, floatOrNil(p.Height), floatOrNil(p.Weight),
		})
	}
	return ds
}

func floatOrNil(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

// MatchInfoDataset is the single-row match header.
func MatchInfoDataset(ms *MatchStatistics) export.Dataset {
	return export.Dataset{
		Table: schema.TableMatches,
		Columns: []string{"MatchID", "HomeTeamID", "AwayTeamID", "DateTime", "Round",
			"LastChanged", "MatchStatus", "VenueId"},
		Rows: [][]any{{
			ms.ID, ms.HomeTeam.ID, ms.AwayTeam.ID, ms.DateTime, ms.Round,
			ms.LastChanged, ms.MatchStatus, ms.VenueID,
		}},
	}
}

// TeamsDataset flattens the selections list, dropping the SelectionType
// marker the provider tacks on.
func TeamsDataset(teams []map[string]any) export.Dataset {
	return datasetFromObjects(schema.TableTeams, teams, "SelectionType")
}

// MetadataDataset flattens one metadata catalog into the given table.
func MetadataDataset(table string, objects []map[string]any) export.Dataset {
	return datasetFromObjects(table, objects)
}

// LineupDataset is the (team, person) pair list for the join table.
func LineupDataset(persons []Person, teamID int) export.Dataset {
	ds := export.Dataset{
		Table:   schema.TableTeamsLineUp,
		Columns: []string{"TeamID", "PersonID"},
	}
	for _, p := range persons {
		ds.Rows = append(ds.Rows, []any{teamID, p.ID})
	}
	return ds
}

// datasetFromObjects turns loosely-shaped API objects into a dataset with a
// deterministic column order: Id first when present, the rest sorted.
func datasetFromObjects(table string, objects []map[string]any, drop ...string) export.Dataset {
	ds := export.Dataset{Table: table}
	if len(objects) == 0 {
		ds.Columns = []string{"Id"}
		return ds
	}

	dropped := map[string]bool{}
	for _, name := range drop {
		dropped[name] = true
	}

	for key := range objects[0] {
		if key == "Id" || dropped[key] {
			continue
		}
		ds.Columns = append(ds.Columns, key)
	}
	sort.Strings(ds.Columns)
	if _, ok := objects[0]["Id"]; ok {
		ds.Columns = append([]string{"Id"}, ds.Columns...)
	}

	for _, obj := range objects {
		row := make([]any, 0, len(ds.Columns))
		for _, column := range ds.Columns {
			row = append(row, obj[column])
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds
}
