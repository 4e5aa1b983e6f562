package coosto

import (
	"time"

	"github.com/clubdata/clubsync/export"
	"github.com/clubdata/clubsync/schema"
)

// SavedQuery is one saved search project.
type SavedQuery struct {
	Name string `json:"name"`
	ID   int    `json:"id"`
}

// TrendingTopic is one trending topic with its score.
type TrendingTopic struct {
	Topic string  `json:"topic"`
	Score float64 `json:"score"`
}

// sentiment is the breakdown every query endpoint shares.
type sentiment struct {
	Frequency int     `json:"freq"`
	Overall   float64 `json:"sent"`
	Positive  float64 `json:"sentp"`
	Negative  float64 `json:"sentn"`
	Neutral   float64 `json:"sent0"`
}

// SourceType is the sentiment breakdown of one source type.
type SourceType struct {
	Name string `json:"sourcetype"`
	sentiment
}

// SentimentDay is the sentiment breakdown of one day, keyed by a unix
// timestamp.
type SentimentDay struct {
	Time int64 `json:"time"`
	sentiment
}

// Author is one author with sentiment and reach numbers.
type Author struct {
	Author    string  `json:"author"`
	Influence float64 `json:"influence"`
	Gender    string  `json:"gender"`
	Followers int     `json:"followers"`
	Reactions int     `json:"reactions"`
	sentiment
}

// ProjectsDataset flattens the saved query list.
func ProjectsDataset(queries []SavedQuery) export.Dataset {
	ds := export.Dataset{
		Table:   schema.TableProjects,
		Columns: []string{"Name", "ID"},
	}
	for _, q := range queries {
		ds.Rows = append(ds.Rows, []any{q.Name, q.ID})
	}
	return ds
}

// TrendingTopicsDataset flattens the trending topic list.
func TrendingTopicsDataset(topics []TrendingTopic) export.Dataset {
	ds := export.Dataset{
		Table:   schema.TableTrendingTopics,
		Columns: []string{"Topic", "Score"},
	}
	for _, t := range topics {
		ds.Rows = append(ds.Rows, []any{t.Topic, t.Score})
	}
	return ds
}

// SourceTypesDataset flattens the per-source sentiment breakdown.
func SourceTypesDataset(sources []SourceType) export.Dataset {
	ds := export.Dataset{
		Table: schema.TableSources,
		Columns: []string{"Name", "Frequency", "Overall_sentiment", "Positive_sentiment",
			"Negative_sentiment", "Neutral_sentiment"},
	}
	for _, s := range sources {
		ds.Rows = append(ds.Rows, []any{s.Name, s.Frequency, s.Overall, s.Positive, s.Negative, s.Neutral})
	}
	return ds
}

// SentimentDataset flattens the per-day series. Timestamps become UTC
// dates.
func SentimentDataset(days []SentimentDay) export.Dataset {
	ds := export.Dataset{
		Table: schema.TableSentiment,
		Columns: []string{"Date", "Frequency", "Overall_sentiment", "Positive_sentiment",
			"Negative_sentiment", "Neutral_sentiment"},
	}
	for _, d := range days {
		date := time.Unix(d.Time, 0).UTC().Format("2006-01-02")
		ds.Rows = append(ds.Rows, []any{date, d.Frequency, d.Overall, d.Positive, d.Negative, d.Neutral})
	}
	return ds
}

// AuthorsDataset flattens the author list.
func AuthorsDataset(authors []Author) export.Dataset {
	ds := export.Dataset{
		Table: schema.TableAuthors,
		Columns: []string{"Author", "Freq", "Sent", "SentP", "SentN", "Sent0",
			"Influence", "Gender", "Followers", "Reactions"},
	}
	for _, a := range authors {
		ds.Rows = append(ds.Rows, []any{a.Author, a.Frequency, a.Overall, a.Positive, a.Negative,
			a.Neutral, a.Influence, a.Gender, a.Followers, a.Reactions})
	}
	return ds
}
