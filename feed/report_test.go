package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cian-feed/models"
)

func TestSummarize(t *testing.T) {
	doc := &models.Feed{
		Version: "2",
		Objects: []models.Object{
			{
				Status: "published",
				Photos: models.Photos{Photo: []models.Photo{{FullURL: "https://img/a.jpg"}}},
				Contacts: &models.Contacts{
					Contact: models.Contact{Name: "Агент"},
				},
				BargainTerms: models.BargainTerms{Price: "50000"},
			},
			{
				Status:       "published",
				BargainTerms: models.BargainTerms{Price: "70000"},
			},
			{
				Status:       "draft",
				BargainTerms: models.BargainTerms{Price: "0"},
			},
		},
	}
	listings := []*models.ListingRecord{
		{Agent: &models.AgentRecord{}},
		{},
		{},
	}

	report := Summarize(doc, listings)

	assert.Equal(t, 3, report.TotalObjects)
	assert.Equal(t, 1, report.WithPhotos)
	assert.Equal(t, 1, report.WithContacts)
	assert.Equal(t, 1, report.WithAgent)
	assert.Equal(t, 1, report.ZeroPrice)
	assert.InDelta(t, 60000, report.AveragePrice, 0.001)
	assert.Equal(t, map[string]int{"published": 2, "draft": 1}, report.ObjectsByStatus)
}

func TestSummarizeEmptyFeed(t *testing.T) {
	report := Summarize(&models.Feed{Version: "2"}, nil)

	require.NotNil(t, report)
	assert.Equal(t, 0, report.TotalObjects)
	assert.Zero(t, report.AveragePrice)
}

func TestReportString(t *testing.T) {
	report := &Report{
		TotalObjects:    2,
		WithPhotos:      1,
		WithContacts:    2,
		WithAgent:       1,
		ZeroPrice:       0,
		AveragePrice:    60000,
		ObjectsByStatus: map[string]int{"published": 2},
	}

	assert.Equal(t,
		"objects=2 photos=1 contacts=2 agents=1 zero_price=0 avg_price=60000 status[published=2]",
		report.String())
}
