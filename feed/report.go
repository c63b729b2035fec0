package feed

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"cian-feed/models"
)

// Report summarizes one generated feed: coverage counters the operators
// watch after every export.
type Report struct {
	TotalObjects    int
	WithPhotos      int
	WithContacts    int
	WithAgent       int
	ZeroPrice       int
	AveragePrice    float64
	ObjectsByStatus map[string]int
}

// Summarize computes a Report over an assembled document and its source
// rows.
func Summarize(doc *models.Feed, listings []*models.ListingRecord) *Report {
	report := &Report{ObjectsByStatus: make(map[string]int)}
	report.TotalObjects = len(doc.Objects)

	var priced int
	var totalPrice float64
	for _, obj := range doc.Objects {
		if len(obj.Photos.Photo) > 0 {
			report.WithPhotos++
		}
		if obj.Contacts != nil {
			report.WithContacts++
		}
		report.ObjectsByStatus[obj.Status]++

		price, err := strconv.ParseFloat(obj.BargainTerms.Price, 64)
		if err != nil || price == 0 {
			report.ZeroPrice++
			continue
		}
		priced++
		totalPrice += price
	}
	if priced > 0 {
		report.AveragePrice = totalPrice / float64(priced)
	}

	for _, r := range listings {
		if r.Agent != nil {
			report.WithAgent++
		}
	}
	return report
}

// String renders the report as a compact one-line summary for logs.
func (r *Report) String() string {
	statuses := make([]string, 0, len(r.ObjectsByStatus))
	for status, n := range r.ObjectsByStatus {
		statuses = append(statuses, fmt.Sprintf("%s=%d", status, n))
	}
	sort.Strings(statuses)
	return fmt.Sprintf(
		"objects=%d photos=%d contacts=%d agents=%d zero_price=%d avg_price=%.0f status[%s]",
		r.TotalObjects, r.WithPhotos, r.WithContacts, r.WithAgent,
		r.ZeroPrice, r.AveragePrice, strings.Join(statuses, " "),
	)
}
