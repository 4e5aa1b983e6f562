package schema

// Sports dataset table names. Change them only here; the exporters and the
// reconciler pick them up from these constants.
const (
	TableTeams           = "Teams"
	TablePersons         = "Persons"
	TablePlayersStats    = "PlayersStats"
	TablePlayerStatsMeta = "PlayerStatsMeta"
	TableTeamsStats      = "TeamsStats"
	TableTeamStatsMeta   = "TeamStatsMeta"
	TablePositionsMeta   = "PositionsMeta"
	TableVenuesMeta      = "VenuesMeta"
	TableMatches         = "Matches"
	TableTeamsLineUp     = "TeamsLineUp"
)

// Social dataset table names.
const (
	TableProjects       = "projects"
	TableTrendingTopics = "trending_topics"
	TableSources        = "sources"
	TableSentiment      = "sentiment"
	TableAuthors        = "authors"
)

// SportsTables is the closed set of tables the reconciler operates on.
func SportsTables() []string {
	return []string{
		TableTeams,
		TablePersons,
		TablePlayersStats,
		TablePlayerStatsMeta,
		TableTeamsStats,
		TableTeamStatsMeta,
		TablePositionsMeta,
		TableVenuesMeta,
		TableMatches,
		TableTeamsLineUp,
	}
}

// SocialTables lists the social analytics tables, used by the clean command.
func SocialTables() []string {
	return []string{
		TableProjects,
		TableTrendingTopics,
		TableSources,
		TableSentiment,
		TableAuthors,
	}
}

// SportsRelations is the declared key layout of the sports dataset.
// PlayersStats and TeamsStats carry no primary key of their own; they are
// keyed through their foreign keys only.
func SportsRelations() []TableSpec {
	return []TableSpec{
		{Name: TableTeams, PrimaryKey: "Id"},
		{Name: TableMatches, PrimaryKey: "MatchID", ForeignKeys: []ForeignKeySpec{
			{Column: "HomeTeamID", ReferencesTable: TableTeams, ReferencesColumn: "Id"},
			{Column: "AwayTeamID", ReferencesTable: TableTeams, ReferencesColumn: "Id"},
			{Column: "VenueId", ReferencesTable: TableVenuesMeta, ReferencesColumn: "Id"},
		}},
		{Name: TablePersons, PrimaryKey: "PersonID", ForeignKeys: []ForeignKeySpec{
			{Column: "DefaultPosition", ReferencesTable: TablePositionsMeta, ReferencesColumn: "Id"},
		}},
		{Name: TableVenuesMeta, PrimaryKey: "Id"},
		{Name: TablePlayerStatsMeta, PrimaryKey: "Id"},
		{Name: TableTeamStatsMeta, PrimaryKey: "Id"},
		{Name: TablePositionsMeta, PrimaryKey: "Id"},
		{Name: TablePlayersStats, ForeignKeys: []ForeignKeySpec{
			{Column: "MatchID", ReferencesTable: TableMatches, ReferencesColumn: "MatchID"},
			{Column: "PersonID", ReferencesTable: TablePersons, ReferencesColumn: "PersonID"},
			{Column: "StatisticID", ReferencesTable: TablePlayerStatsMeta, ReferencesColumn: "Id"},
		}},
		{Name: TableTeamsStats, ForeignKeys: []ForeignKeySpec{
			{Column: "MatchID", ReferencesTable: TableMatches, ReferencesColumn: "MatchID"},
			{Column: "TeamID", ReferencesTable: TableTeams, ReferencesColumn: "Id"},
			{Column: "StatisticID", ReferencesTable: TableTeamStatsMeta, ReferencesColumn: "Id"},
		}},
	}
}

// LineupJoinTable is the many-to-many table between Teams and Persons,
// created only once both sides carry the keys it references.
func LineupJoinTable() JoinTableSpec {
	return JoinTableSpec{
		Name: TableTeamsLineUp,
		Left: JoinSide{
			Table:        TableTeams,
			Column:       "TeamID",
			RefColumn:    "Id",
			RequiredKeys: []string{"Id"},
		},
		Right: JoinSide{
			Table:        TablePersons,
			Column:       "PersonID",
			RefColumn:    "PersonID",
			RequiredKeys: []string{"PersonID", "DefaultPosition"},
		},
	}
}
